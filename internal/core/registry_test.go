package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckDefinition(t *testing.T) {
	build := func([]string, ValidateOptions) (Record, error) { return Record{}, nil }
	copyRow := func(Record) []any { return nil }
	id := FieldSpec{Name: "id", DBColumn: "id", Required: true}

	valid := TableDefinition{
		Info:        TableInfo{Key: "widgets"},
		FieldSpecs:  []FieldSpec{id, {Name: "name", DBColumn: "name"}},
		BuildRecord: build,
		CopyRow:     copyRow,
	}
	assert.NoError(t, checkDefinition(valid))

	tests := []struct {
		name   string
		mutate func(*TableDefinition)
		want   string
	}{
		{"no key", func(d *TableDefinition) { d.Info.Key = "" }, "missing key"},
		{"no fields", func(d *TableDefinition) { d.FieldSpecs = nil }, "no fields"},
		{"optional id", func(d *TableDefinition) {
			d.FieldSpecs = []FieldSpec{{Name: "id", DBColumn: "id"}}
		}, "required id column"},
		{"id not first", func(d *TableDefinition) {
			d.FieldSpecs = []FieldSpec{{Name: "name", DBColumn: "name", Required: true}, id}
		}, "required id column"},
		{"no builder", func(d *TableDefinition) { d.BuildRecord = nil }, "BuildRecord"},
		{"unnamed column", func(d *TableDefinition) {
			d.FieldSpecs = []FieldSpec{id, {Name: "name"}}
		}, `field "name"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := valid
			def.FieldSpecs = append([]FieldSpec(nil), valid.FieldSpecs...)
			tt.mutate(&def)
			err := checkDefinition(def)
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestRegister_PanicsOnInvalidDefinition(t *testing.T) {
	assert.Panics(t, func() { Register(TableDefinition{Info: TableInfo{Key: "broken"}}) })
	_, ok := Get("broken")
	assert.False(t, ok)
}
