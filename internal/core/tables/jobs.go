package tables

import (
	"github.com/JonMunkholm/hireload/internal/core"
)

func init() {
	registerJobs()
}

var jobFields = []core.FieldSpec{
	{Name: "id", DBColumn: "id", Required: true},
	{Name: "job", DBColumn: "job", Required: true},
}

func registerJobs() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:       core.EntityJobs,
			Label:     "Jobs",
			Table:     "jobs",
			UniqueKey: []string{"job"},
		},
		FieldSpecs:  jobFields,
		BuildRecord: buildNamedRecord(jobFields),
		CopyRow:     copyNamedRow,
	})
}
