package web

import (
	"net/http"

	"github.com/JonMunkholm/hireload/internal/core"
)

// ReportResponse is the tabular body of both report endpoints.
type ReportResponse[T any] struct {
	Year    int      `json:"year"`
	Headers []string `json:"headers"`
	Rows    []T      `json:"rows"`
}

// handleQuarterlyHiring returns hires per quarter for each department and job.
func (s *Server) handleQuarterlyHiring(w http.ResponseWriter, r *http.Request) {
	year, err := s.parseYear(r)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	rows, err := s.reports.QuarterlyHiring(r.Context(), year)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	writeJSON(w, r, http.StatusOK, ReportResponse[core.QuarterlyHiring]{
		Year:    year,
		Headers: core.QuarterlyHiringHeaders,
		Rows:    rows,
	})
}

// handleDepartmentsAboveMean returns departments that hired more than the
// yearly mean.
func (s *Server) handleDepartmentsAboveMean(w http.ResponseWriter, r *http.Request) {
	year, err := s.parseYear(r)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	rows, err := s.reports.DepartmentsAboveMean(r.Context(), year)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	writeJSON(w, r, http.StatusOK, ReportResponse[core.DepartmentHires]{
		Year:    year,
		Headers: core.DepartmentsAboveMeanHeaders,
		Rows:    rows,
	})
}
