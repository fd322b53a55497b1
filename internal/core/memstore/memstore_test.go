package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/JonMunkholm/hireload/internal/core"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var departments = core.TableDefinition{
	Info: core.TableInfo{
		Key:       core.EntityDepartments,
		Table:     "departments",
		UniqueKey: []string{"department"},
	},
}

func named(id int64, name string) core.Record {
	return core.Record{ID: id, Name: pgtype.Text{String: name, Valid: true}}
}

func TestStore_WriteBatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Seed(core.EntityDepartments, named(2, "Legal"))

	err := s.WriteBatch(ctx, departments, core.ModeInsert, []core.Record{named(1, "Sales"), named(2, "Support")})

	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "23505", pgErr.Code)
	assert.Equal(t, "departments_pkey", pgErr.ConstraintName)
	assert.Equal(t, []core.Record{named(2, "Legal")}, s.Records(core.EntityDepartments))
}

func TestStore_UniqueName(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.WriteRow(ctx, departments, core.ModeInsert, named(1, "Sales")))

	err := s.WriteRow(ctx, departments, core.ModeInsert, named(2, "Sales"))
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "departments_department_key", pgErr.ConstraintName)

	// Renaming a row to its own name is not a collision.
	require.NoError(t, s.WriteRow(ctx, departments, core.ModeMerge, named(1, "Sales")))
}

func TestStore_MergeOverwrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Seed(core.EntityDepartments, named(1, "Sales"))

	require.NoError(t, s.WriteBatch(ctx, departments, core.ModeMerge, []core.Record{named(1, "Sales EMEA")}))
	assert.Equal(t, []core.Record{named(1, "Sales EMEA")}, s.Records(core.EntityDepartments))

	snapshots, batches, rows := s.Calls()
	assert.Equal(t, 0, snapshots)
	assert.Equal(t, 1, batches)
	assert.Equal(t, 0, rows)
}

func TestStore_FailOn(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("connection reset by peer")
	s.FailOn(3, boom)

	err := s.WriteBatch(ctx, departments, core.ModeInsert, []core.Record{named(1, "A"), named(3, "C")})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, s.Records(core.EntityDepartments))

	require.NoError(t, s.WriteRow(ctx, departments, core.ModeInsert, named(1, "A")))
	assert.ErrorIs(t, s.WriteRow(ctx, departments, core.ModeInsert, named(3, "C")), boom)
}

func TestStore_ExistingIDsAndTruncate(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Seed(core.EntityDepartments, named(1, "A"), named(5, "E"))

	ids, err := s.ExistingIDs(ctx, departments)
	require.NoError(t, err)
	assert.Equal(t, map[int64]struct{}{1: {}, 5: {}}, ids)

	require.NoError(t, s.Truncate(ctx))
	ids, err = s.ExistingIDs(ctx, departments)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New()
	_, err := s.ExistingIDs(ctx, departments)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.WriteBatch(ctx, departments, core.ModeInsert, []core.Record{named(1, "A")}), context.Canceled)
}
