package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ids(records []Record) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func recs(idList ...int64) []Record {
	out := make([]Record, len(idList))
	for i, id := range idList {
		out[i] = Record{ID: id, Line: i + 1}
	}
	return out
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name       string
		records    []Record
		existing   map[int64]struct{}
		update     bool
		inserts    []int64
		updates    []int64
		duplicates []int64
	}{
		{
			name:    "all new",
			records: recs(1, 2, 3),
			inserts: []int64{1, 2, 3},
		},
		{
			name:       "existing skipped without update",
			records:    recs(1, 2, 3),
			existing:   map[int64]struct{}{2: {}},
			inserts:    []int64{1, 3},
			duplicates: []int64{2},
		},
		{
			name:     "existing merged with update",
			records:  recs(1, 2, 3),
			existing: map[int64]struct{}{2: {}, 3: {}},
			update:   true,
			inserts:  []int64{1},
			updates:  []int64{2, 3},
		},
		{
			name:       "repeated id within upload",
			records:    recs(5, 6, 5, 5),
			inserts:    []int64{5, 6},
			duplicates: []int64{5, 5},
		},
		{
			name:       "repeated id of stored row in update mode writes once",
			records:    recs(9, 9),
			existing:   map[int64]struct{}{9: {}},
			update:     true,
			updates:    []int64{9},
			duplicates: []int64{9},
		},
		{
			name:       "everything already stored",
			records:    recs(1, 2),
			existing:   map[int64]struct{}{1: {}, 2: {}},
			duplicates: []int64{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Reconcile(tt.records, tt.existing, tt.update)

			assert.Equal(t, nonNil(tt.inserts), ids(plan.Inserts))
			assert.Equal(t, nonNil(tt.updates), ids(plan.Updates))
			assert.Equal(t, nonNil(tt.duplicates), ids(plan.Duplicates))
			assert.Equal(t, len(tt.records), len(plan.Inserts)+len(plan.Updates)+len(plan.Duplicates))
		})
	}
}

func TestReconcile_KeepsFirstOccurrence(t *testing.T) {
	records := []Record{
		{ID: 1, Line: 1, Name: ToPgText("first")},
		{ID: 1, Line: 2, Name: ToPgText("second")},
	}

	plan := Reconcile(records, nil, false)

	assert.Equal(t, "first", plan.Inserts[0].Name.String)
	assert.Equal(t, 2, plan.Duplicates[0].Line)
}

func TestPlanEmpty(t *testing.T) {
	assert.True(t, (&Plan{Duplicates: recs(1)}).Empty())
	assert.False(t, (&Plan{Updates: recs(1)}).Empty())
}

func nonNil(v []int64) []int64 {
	if v == nil {
		return []int64{}
	}
	return v
}
