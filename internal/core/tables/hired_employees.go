package tables

import (
	"github.com/JonMunkholm/hireload/internal/core"
)

func init() {
	registerHiredEmployees()
}

var hiredEmployeeFields = []core.FieldSpec{
	{Name: "id", DBColumn: "id", Required: true},
	{Name: "name", DBColumn: "name"},
	{Name: "datetime", DBColumn: "datetime"},
	{Name: "department_id", DBColumn: "department_id"},
	{Name: "job_id", DBColumn: "job_id"},
}

func registerHiredEmployees() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:   core.EntityHiredEmployees,
			Label: "Hired employees",
			Table: "hired_employees",
		},
		FieldSpecs:  hiredEmployeeFields,
		BuildRecord: buildHiredEmployee,
		CopyRow: func(r core.Record) []any {
			return []any{r.ID, r.Name, r.HiredAt, r.DepartmentID, r.JobID}
		},
		AllowUpdate: true,
		TrackNulls:  true,
	})
}

// buildHiredEmployee fails on the id or, under the reject policy, on a
// future hire date. Unparseable optional values are stored as null so a messy
// export still lands its valid parts.
func buildHiredEmployee(cells []string, opts core.ValidateOptions) (core.Record, error) {
	id, err := core.IDField(hiredEmployeeFields[0], cells[0])
	if err != nil {
		return core.Record{}, err
	}

	name, err := core.TextField(hiredEmployeeFields[1], cells[1])
	if err != nil {
		return core.Record{}, err
	}
	hiredAt, err := core.ApplyFutureHirePolicy(hiredEmployeeFields[2], core.ToPgTimestamptz(cells[2]), opts)
	if err != nil {
		return core.Record{}, err
	}

	return core.Record{
		ID:           id,
		Name:         name,
		HiredAt:      hiredAt,
		DepartmentID: core.ToPgInt8(cells[3]),
		JobID:        core.ToPgInt8(cells[4]),
	}, nil
}
