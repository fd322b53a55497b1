package database

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/hireload/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store writes ingested records to PostgreSQL.
//
// Batch inserts use COPY inside a transaction, so a single conflicting row
// aborts the batch and the writer falls back to WriteRow. Merges are sent as
// one pipelined batch of upserts in a transaction.
type Store struct {
	pool *pgxpool.Pool
}

var _ core.Store = (*Store)(nil)

// NewStore creates a Store over pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ExistingIDs implements core.Store.
func (s *Store) ExistingIDs(ctx context.Context, def core.TableDefinition) (map[int64]struct{}, error) {
	rows, err := s.pool.Query(ctx, "SELECT id FROM "+quoteIdent(def.Info.Table))
	if err != nil {
		return nil, fmt.Errorf("query %s ids: %w", def.Info.Table, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan %s ids: %w", def.Info.Table, err)
	}

	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// WriteBatch implements core.Store.
func (s *Store) WriteBatch(ctx context.Context, def core.TableDefinition, mode core.WriteMode, records []core.Record) error {
	if len(records) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if mode == core.ModeInsert {
			return copyRecords(ctx, tx, def, records)
		}
		return upsertRecords(ctx, tx, def, records)
	})
}

// WriteRow implements core.Store.
func (s *Store) WriteRow(ctx context.Context, def core.TableDefinition, mode core.WriteMode, record core.Record) error {
	query := insertSQL(def)
	if mode == core.ModeMerge {
		query = upsertSQL(def)
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return execRecord(ctx, tx, query, def, record)
	})
}

// Truncate empties the three tables in one statement.
func (s *Store) Truncate(ctx context.Context) error {
	tables := make([]string, 0, core.TableCount())
	for _, def := range core.All() {
		tables = append(tables, quoteIdent(def.Info.Table))
	}
	if len(tables) == 0 {
		return nil
	}

	if _, err := s.pool.Exec(ctx, "TRUNCATE "+strings.Join(tables, ", ")+" CASCADE"); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func copyRecords(ctx context.Context, tx pgx.Tx, def core.TableDefinition, records []core.Record) error {
	_, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{def.Info.Table},
		def.DBColumns(),
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			return def.CopyRow(records[i]), nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy into %s: %w", def.Info.Table, err)
	}
	return nil
}

func upsertRecords(ctx context.Context, tx pgx.Tx, def core.TableDefinition, records []core.Record) error {
	query := upsertSQL(def)

	b := &pgx.Batch{}
	for _, r := range records {
		b.Queue(query, def.CopyRow(r)...)
	}

	br := tx.SendBatch(ctx, b)
	for range records {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("upsert into %s: %w", def.Info.Table, err)
		}
	}
	return br.Close()
}

func execRecord(ctx context.Context, db core.DBTX, query string, def core.TableDefinition, record core.Record) error {
	if _, err := db.Exec(ctx, query, def.CopyRow(record)...); err != nil {
		return fmt.Errorf("write %s id %d: %w", def.Info.Table, record.ID, err)
	}
	return nil
}

// insertSQL builds a single-row INSERT over def.DBColumns.
func insertSQL(def core.TableDefinition) string {
	columns := def.DBColumns()
	cols := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = quoteIdent(c)
		params[i] = "$" + strconv.Itoa(i+1)
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(def.Info.Table),
		strings.Join(cols, ", "),
		strings.Join(params, ", "),
	)
}

// upsertSQL overwrites every non-key column, nulls included.
func upsertSQL(def core.TableDefinition) string {
	columns := def.DBColumns()
	sets := make([]string, 0, len(columns)-1)
	for _, c := range columns[1:] {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", quoteIdent(c), quoteIdent(c)))
	}

	return fmt.Sprintf("%s ON CONFLICT (%s) DO UPDATE SET %s",
		insertSQL(def),
		quoteIdent(columns[0]),
		strings.Join(sets, ", "),
	)
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
