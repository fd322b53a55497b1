package tables

import (
	"github.com/JonMunkholm/hireload/internal/core"
)

func init() {
	registerDepartments()
}

var departmentFields = []core.FieldSpec{
	{Name: "id", DBColumn: "id", Required: true},
	{Name: "department", DBColumn: "department", Required: true},
}

func registerDepartments() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       core.EntityDepartments,
			Label:     "Departments",
			Table:     "departments",
			UniqueKey: []string{"department"},
		},
		FieldSpecs:  departmentFields,
		BuildRecord: buildNamedRecord(departmentFields),
		CopyRow:     copyNamedRow,
	})
}

// buildNamedRecord handles the two-column id/name catalogues.
func buildNamedRecord(fields []core.FieldSpec) core.BuildRecordFunc {
	return func(cells []string, _ core.ValidateOptions) (core.Record, error) {
		id, err := core.IDField(fields[0], cells[0])
		if err != nil {
			return core.Record{}, err
		}
		name, err := core.TextField(fields[1], cells[1])
		if err != nil {
			return core.Record{}, err
		}
		return core.Record{ID: id, Name: name}, nil
	}
}

func copyNamedRow(r core.Record) []any {
	return []any{r.ID, r.Name}
}
