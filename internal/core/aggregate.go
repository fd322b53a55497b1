package core

// aggregate.go holds the two read-only hiring reports.
//
// Both are scoped to one calendar year in UTC and run as a single query.
// The year is bound as a half-open timestamp range so the hire time index
// on hired_employees can be used.

import (
	"context"
	"fmt"
	"time"
)

const quarterlyHiringSQL = `
SELECT
    d.department,
    j.job,
    COUNT(*) FILTER (WHERE EXTRACT(QUARTER FROM e.datetime AT TIME ZONE 'UTC') = 1) AS q1,
    COUNT(*) FILTER (WHERE EXTRACT(QUARTER FROM e.datetime AT TIME ZONE 'UTC') = 2) AS q2,
    COUNT(*) FILTER (WHERE EXTRACT(QUARTER FROM e.datetime AT TIME ZONE 'UTC') = 3) AS q3,
    COUNT(*) FILTER (WHERE EXTRACT(QUARTER FROM e.datetime AT TIME ZONE 'UTC') = 4) AS q4
FROM hired_employees e
JOIN departments d ON d.id = e.department_id
JOIN jobs j ON j.id = e.job_id
WHERE e.datetime >= $1 AND e.datetime < $2
GROUP BY d.department, j.job
ORDER BY d.department, j.job`

const departmentsAboveMeanSQL = `
WITH hired_by_department AS (
    SELECT d.id, d.department, COUNT(*) AS hired
    FROM hired_employees e
    JOIN departments d ON d.id = e.department_id
    WHERE e.datetime >= $1 AND e.datetime < $2
    GROUP BY d.id, d.department
)
SELECT id, department, hired
FROM hired_by_department
WHERE hired > (SELECT AVG(hired) FROM hired_by_department)
ORDER BY hired DESC, id`

// Report names used in logs and metrics.
const (
	ReportQuarterlyHiring      = "quarterly_hiring"
	ReportDepartmentsAboveMean = "departments_above_mean"
)

// QuarterlyHiringHeaders are the column names of the quarterly report.
var QuarterlyHiringHeaders = []string{"department", "job", "Q1", "Q2", "Q3", "Q4"}

// DepartmentsAboveMeanHeaders are the column names of the above-mean report.
var DepartmentsAboveMeanHeaders = []string{"id", "department", "hired"}

// QuarterlyHiring is the hire count per quarter for one department and job.
type QuarterlyHiring struct {
	Department string `json:"department"`
	Job        string `json:"job"`
	Q1         int64  `json:"Q1"`
	Q2         int64  `json:"Q2"`
	Q3         int64  `json:"Q3"`
	Q4         int64  `json:"Q4"`
}

// DepartmentHires is the yearly hire count of one department.
type DepartmentHires struct {
	ID         int64  `json:"id"`
	Department string `json:"department"`
	Hired      int64  `json:"hired"`
}

// Aggregator runs the hiring reports.
type Aggregator struct {
	db Querier
}

// NewAggregator creates an aggregator reading from db.
func NewAggregator(db Querier) *Aggregator {
	return &Aggregator{db: db}
}

// yearRange returns [Jan 1 year, Jan 1 year+1) in UTC.
func yearRange(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// QuarterlyHiring counts hires per quarter of year for every department and
// job pair with at least one hire, ordered by department then job.
func (a *Aggregator) QuarterlyHiring(ctx context.Context, year int) ([]QuarterlyHiring, error) {
	start := time.Now()
	defer func() { recordReport(ReportQuarterlyHiring, time.Since(start)) }()

	from, to := yearRange(year)
	rows, err := a.db.Query(ctx, quarterlyHiringSQL, from, to)
	if err != nil {
		return nil, fmt.Errorf("quarterly hiring: %w", err)
	}
	defer rows.Close()

	result := []QuarterlyHiring{}
	for rows.Next() {
		var r QuarterlyHiring
		if err := rows.Scan(&r.Department, &r.Job, &r.Q1, &r.Q2, &r.Q3, &r.Q4); err != nil {
			return nil, fmt.Errorf("quarterly hiring: scan: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("quarterly hiring: %w", err)
	}

	return result, nil
}

// DepartmentsAboveMean returns departments that hired strictly more than the
// mean of all departments with at least one hire in year.
func (a *Aggregator) DepartmentsAboveMean(ctx context.Context, year int) ([]DepartmentHires, error) {
	start := time.Now()
	defer func() { recordReport(ReportDepartmentsAboveMean, time.Since(start)) }()

	from, to := yearRange(year)
	rows, err := a.db.Query(ctx, departmentsAboveMeanSQL, from, to)
	if err != nil {
		return nil, fmt.Errorf("departments above mean: %w", err)
	}
	defer rows.Close()

	result := []DepartmentHires{}
	for rows.Next() {
		var r DepartmentHires
		if err := rows.Scan(&r.ID, &r.Department, &r.Hired); err != nil {
			return nil, fmt.Errorf("departments above mean: scan: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("departments above mean: %w", err)
	}

	return result, nil
}
