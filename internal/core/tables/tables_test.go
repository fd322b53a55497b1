package tables

import (
	"testing"
	"time"

	"github.com/JonMunkholm/hireload/internal/config"
	"github.com/JonMunkholm/hireload/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistered(t *testing.T) {
	for _, key := range []core.Entity{core.EntityDepartments, core.EntityJobs, core.EntityHiredEmployees} {
		def, ok := core.Get(key)
		require.True(t, ok, "table %s not registered", key)
		assert.Equal(t, len(def.FieldSpecs), def.Width())
		assert.Equal(t, "id", def.DBColumns()[0])
		assert.Len(t, def.DBColumns(), def.Width())
		assert.Equal(t, def.Info.Columns, def.DBColumns())
	}

	emp, _ := core.Get(core.EntityHiredEmployees)
	assert.True(t, emp.AllowUpdate)
	assert.True(t, emp.TrackNulls)

	dept, _ := core.Get(core.EntityDepartments)
	assert.False(t, dept.AllowUpdate)
	assert.Equal(t, []string{"id", "department"}, dept.Info.Columns)
}

func TestBuildNamedRecord(t *testing.T) {
	build := buildNamedRecord(jobFields)

	tests := []struct {
		name    string
		cells   []string
		wantErr string
		want    string
	}{
		{name: "valid", cells: []string{"1", " Marketing Assistant "}, want: "Marketing Assistant"},
		{name: "float id", cells: []string{"2.0", "Analyst"}, want: "Analyst"},
		{name: "missing id", cells: []string{"", "Analyst"}, wantErr: "id: required field is empty"},
		{name: "zero id", cells: []string{"0", "Analyst"}, wantErr: "id: must be greater than 0"},
		{name: "text id", cells: []string{"abc", "Analyst"}, wantErr: "id: must be an integer"},
		{name: "blank title", cells: []string{"3", "  "}, wantErr: "job: required field is empty"},
		{name: "null title", cells: []string{"3", "NaN"}, wantErr: "job: required field is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := build(tt.cells, core.ValidateOptions{})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Name.String)
			assert.Positive(t, rec.ID)
		})
	}
}

func TestBuildHiredEmployee(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	opts := core.ValidateOptions{Now: now, FutureHirePolicy: config.FutureHireAccept}

	rec, err := buildHiredEmployee([]string{"4535", "Marcelo Gonzalez", "2021-07-27T16:02:08Z", "1", "2"}, opts)
	require.NoError(t, err)
	assert.Equal(t, int64(4535), rec.ID)
	assert.Equal(t, "Marcelo Gonzalez", rec.Name.String)
	assert.Equal(t, time.Date(2021, 7, 27, 16, 2, 8, 0, time.UTC), rec.HiredAt.Time)
	assert.Equal(t, int64(1), rec.DepartmentID.Int64)
	assert.Equal(t, int64(2), rec.JobID.Int64)

	rec, err = buildHiredEmployee([]string{"7", "", "yesterday", "x", "NaN"}, opts)
	require.NoError(t, err)
	assert.False(t, rec.Name.Valid)
	assert.False(t, rec.HiredAt.Valid)
	assert.False(t, rec.DepartmentID.Valid)
	assert.False(t, rec.JobID.Valid)

	_, err = buildHiredEmployee([]string{"", "Name", "", "", ""}, opts)
	require.Error(t, err)
}

func TestBuildHiredEmployee_FutureHirePolicy(t *testing.T) {
	now := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	cells := []string{"1", "Ana", "2022-01-01T00:00:00Z", "1", "1"}

	rec, err := buildHiredEmployee(cells, core.ValidateOptions{Now: now, FutureHirePolicy: config.FutureHireAccept})
	require.NoError(t, err)
	assert.True(t, rec.HiredAt.Valid)

	rec, err = buildHiredEmployee(cells, core.ValidateOptions{Now: now, FutureHirePolicy: config.FutureHireNull})
	require.NoError(t, err)
	assert.False(t, rec.HiredAt.Valid)

	_, err = buildHiredEmployee(cells, core.ValidateOptions{Now: now, FutureHirePolicy: config.FutureHireReject})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hire date is in the future")
}
