// Package memstore is an in-memory core.Store with PostgreSQL-like
// integrity errors and fault injection. It backs the pipeline and HTTP
// tests that must not depend on a running database.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/JonMunkholm/hireload/internal/core"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store keeps one map of records per entity.
type Store struct {
	mu       sync.Mutex
	tables   map[core.Entity]map[int64]core.Record
	failures map[int64]error
	pingErr  error

	snapshots  int
	batchCalls int
	rowCalls   int
}

var _ core.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		tables:   make(map[core.Entity]map[int64]core.Record),
		failures: make(map[int64]error),
	}
}

// Seed stores records directly, bypassing integrity checks.
func (s *Store) Seed(entity core.Entity, records ...core.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(entity)
	for _, r := range records {
		t[r.ID] = r
	}
}

// FailOn makes every write that touches id fail with err. A batch containing
// id fails as a whole.
func (s *Store) FailOn(id int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[id] = err
}

// Records returns the stored records of entity ordered by id.
func (s *Store) Records(entity core.Entity) []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tables[entity]
	out := make([]core.Record, 0, len(t))
	for _, r := range t {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Calls reports how many snapshot, batch and row calls were made.
func (s *Store) Calls() (snapshots, batches, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots, s.batchCalls, s.rowCalls
}

// FailPing makes Ping return err.
func (s *Store) FailPing(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pingErr = err
}

// Ping reports the error set by FailPing.
func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pingErr
}

// Truncate removes all records.
func (s *Store) Truncate(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = make(map[core.Entity]map[int64]core.Record)
	return nil
}

// ExistingIDs implements core.Store.
func (s *Store) ExistingIDs(ctx context.Context, def core.TableDefinition) (map[int64]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots++

	ids := make(map[int64]struct{}, len(s.tables[def.Info.Key]))
	for id := range s.tables[def.Info.Key] {
		ids[id] = struct{}{}
	}
	return ids, nil
}

// WriteBatch implements core.Store. Nothing is stored unless every record
// can be written.
func (s *Store) WriteBatch(ctx context.Context, def core.TableDefinition, mode core.WriteMode, records []core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchCalls++

	staged := make(map[int64]core.Record, len(s.table(def.Info.Key))+len(records))
	for id, r := range s.table(def.Info.Key) {
		staged[id] = r
	}
	for _, r := range records {
		if err := s.check(def, mode, staged, r); err != nil {
			return err
		}
		staged[r.ID] = r
	}

	s.tables[def.Info.Key] = staged
	return nil
}

// WriteRow implements core.Store.
func (s *Store) WriteRow(ctx context.Context, def core.TableDefinition, mode core.WriteMode, record core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rowCalls++

	t := s.table(def.Info.Key)
	if err := s.check(def, mode, t, record); err != nil {
		return err
	}
	t[record.ID] = record
	return nil
}

func (s *Store) table(entity core.Entity) map[int64]core.Record {
	t, ok := s.tables[entity]
	if !ok {
		t = make(map[int64]core.Record)
		s.tables[entity] = t
	}
	return t
}

// check mirrors the primary key and unique name constraints of the schema.
func (s *Store) check(def core.TableDefinition, mode core.WriteMode, t map[int64]core.Record, r core.Record) error {
	if err, ok := s.failures[r.ID]; ok {
		return err
	}

	if _, exists := t[r.ID]; exists && mode == core.ModeInsert {
		return uniqueViolation(def.Info.Table+"_pkey", fmt.Sprintf("(id)=(%d)", r.ID))
	}

	if len(def.Info.UniqueKey) > 0 && r.Name.Valid {
		for id, other := range t {
			if id != r.ID && other.Name.Valid && other.Name.String == r.Name.String {
				return uniqueViolation(
					fmt.Sprintf("%s_%s_key", def.Info.Table, def.Info.UniqueKey[0]),
					fmt.Sprintf("(%s)=(%s)", def.Info.UniqueKey[0], r.Name.String),
				)
			}
		}
	}
	return nil
}

func uniqueViolation(constraint, key string) *pgconn.PgError {
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23505",
		Message:        fmt.Sprintf("duplicate key value violates unique constraint %q", constraint),
		Detail:         fmt.Sprintf("Key %s already exists.", key),
		ConstraintName: constraint,
	}
}
