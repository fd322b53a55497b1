package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/hireload/internal/core"
)

// parseBoolParam parses an optional boolean query parameter.
func parseBoolParam(r *http.Request, name string) (bool, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", errInvalidParam, name, val)
	}
	return b, nil
}

// parseYear reads ?year=, falling back to the configured report year.
func (s *Server) parseYear(r *http.Request) (int, error) {
	val := r.URL.Query().Get("year")
	if val == "" {
		return s.cfg.Report.DefaultYear, nil
	}
	year, err := strconv.Atoi(val)
	if err != nil || year < 1900 || year > 9999 {
		return 0, fmt.Errorf("%w: year=%q", errInvalidParam, val)
	}
	return year, nil
}

// TableResponse describes one registered entity.
type TableResponse struct {
	Key         core.Entity `json:"key"`
	Label       string      `json:"label"`
	Columns     []string    `json:"columns"`
	AllowUpdate bool        `json:"allow_update"`
}

// handleListTables lists the entities that can be uploaded and their
// positional columns.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	defs := core.All()
	out := make([]TableResponse, 0, len(defs))
	for _, def := range defs {
		out = append(out, TableResponse{
			Key:         def.Info.Key,
			Label:       def.Info.Label,
			Columns:     def.Info.Columns,
			AllowUpdate: def.AllowUpdate,
		})
	}
	writeJSON(w, r, http.StatusOK, out)
}

// handleUploadStatus returns the current state of the upload limiter.
// Used for monitoring and to check if the system can accept more uploads.
func (s *Server) handleUploadStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.UploadStatus())
}
