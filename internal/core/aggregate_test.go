package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRows is a minimal pgx.Rows over in-memory values.
type fakeRows struct {
	data   [][]any
	pos    int
	err    error
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.data[r.pos-1], nil
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d targets for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *int64:
			*p = row[i].(int64)
		default:
			return fmt.Errorf("scan: unsupported target %T", d)
		}
	}
	return nil
}

type fakeQuerier struct {
	rows    *fakeRows
	err     error
	gotSQL  string
	gotArgs []any
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.gotSQL = sql
	q.gotArgs = args
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func TestQuarterlyHiring(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{data: [][]any{
		{"Accounting", "Analyst", int64(2), int64(1), int64(0), int64(0)},
		{"Engineering", "Developer", int64(0), int64(0), int64(3), int64(1)},
	}}}

	got, err := NewAggregator(q).QuarterlyHiring(context.Background(), 2021)
	require.NoError(t, err)

	assert.Equal(t, []QuarterlyHiring{
		{Department: "Accounting", Job: "Analyst", Q1: 2, Q2: 1},
		{Department: "Engineering", Job: "Developer", Q3: 3, Q4: 1},
	}, got)
	assert.True(t, q.rows.closed)

	require.Len(t, q.gotArgs, 2)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), q.gotArgs[0])
	assert.Equal(t, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), q.gotArgs[1])
	assert.Contains(t, q.gotSQL, "ORDER BY d.department, j.job")
}

func TestQuarterlyHiring_EmptyIsNotNil(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{}}

	got, err := NewAggregator(q).QuarterlyHiring(context.Background(), 2021)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDepartmentsAboveMean(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{data: [][]any{
		{int64(8), "Support", int64(10)},
	}}}

	got, err := NewAggregator(q).DepartmentsAboveMean(context.Background(), 2022)
	require.NoError(t, err)

	assert.Equal(t, []DepartmentHires{{ID: 8, Department: "Support", Hired: 10}}, got)
	assert.Equal(t, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), q.gotArgs[0])
	assert.Contains(t, q.gotSQL, "hired > (SELECT AVG(hired)")
	assert.Contains(t, q.gotSQL, "ORDER BY hired DESC")
}

func TestAggregator_Errors(t *testing.T) {
	boom := errors.New("connection reset")

	_, err := NewAggregator(&fakeQuerier{err: boom}).QuarterlyHiring(context.Background(), 2021)
	require.ErrorIs(t, err, boom)

	_, err = NewAggregator(&fakeQuerier{rows: &fakeRows{err: boom}}).DepartmentsAboveMean(context.Background(), 2021)
	require.ErrorIs(t, err, boom)
}

func TestReportHeaders(t *testing.T) {
	assert.Equal(t, []string{"department", "job", "Q1", "Q2", "Q3", "Q4"}, QuarterlyHiringHeaders)
	assert.Equal(t, []string{"id", "department", "hired"}, DepartmentsAboveMeanHeaders)
}
