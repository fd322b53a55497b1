package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/JonMunkholm/hireload/internal/core"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead is the body allowance on top of the file size limit for
// multipart boundaries and headers.
const multipartOverhead = 64 << 10

// multipartMemory is how much of the form is kept in memory before the
// multipart reader spools to a temp file.
const multipartMemory = 1 << 20

// CatalogSummary is the summary shape for departments and jobs uploads.
type CatalogSummary struct {
	TotalProcessed int            `json:"total_procesados"`
	Inserted       int            `json:"insertados"`
	Duplicates     int            `json:"duplicados"`
	Errors         int            `json:"errores"`
	ErrorDetails   []string       `json:"detalles_errores"`
	ErrorCodes     map[string]int `json:"codigos_errores"`
}

// EmployeeSummary is the summary shape for hired employees uploads.
type EmployeeSummary struct {
	TotalRows             int            `json:"total_rows"`
	ProcessedSuccessfully int            `json:"processed_successfully"`
	Updated               int            `json:"updated"`
	Duplicates            int            `json:"duplicates"`
	RowsWithNullValues    core.NullStats `json:"rows_with_null_values"`
	InvalidRecords        int            `json:"invalid_records"`
	FailedRecords         int            `json:"failed_records"`
	Errors                []string       `json:"errors"`
	ErrorCodes            map[string]int `json:"error_codes"`
}

// UploadResponse is the body of a successful upload.
type UploadResponse struct {
	Message  string `json:"message"`
	UploadID string `json:"upload_id"`
	Summary  any    `json:"summary"`
}

// handleUpload ingests one multipart CSV file for the entity in the path.
// Row problems are reported in the summary with status 200.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	entity := core.Entity(chi.URLParam(r, "entity"))
	if _, err := core.Lookup(entity); err != nil {
		respondError(w, r, err, 0)
		return
	}

	update, err := parseBoolParam(r, "update_existing")
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	maxSize := s.service.MaxFileSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	file, header, err := openUpload(r)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	defer file.Close()

	if header.Size > maxSize {
		respondError(w, r, fmt.Errorf("%w: %d bytes", core.ErrFileTooLarge, header.Size), 0)
		return
	}
	if err := sniffText(file, header.Size); err != nil {
		respondError(w, r, err, 0)
		return
	}

	result, err := s.service.Upload(r.Context(), core.UploadRequest{
		Entity:         entity,
		FileName:       header.Filename,
		Reader:         file,
		UpdateExisting: update,
	})
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	writeJSON(w, r, http.StatusOK, toUploadResponse(result))
}

// openUpload parses the multipart form and returns the "file" part.
func openUpload(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, nil, fmt.Errorf("%w: %w", core.ErrFileTooLarge, err)
		}
		return nil, nil, fmt.Errorf("%w: %w", errInvalidForm, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errNoFile
	}
	return file, header, nil
}

// sniffText rejects binary payloads such as spreadsheets renamed to .csv,
// then rewinds the file. Empty files are left to the decoder.
func sniffText(file multipart.File, size int64) error {
	if size == 0 {
		return nil
	}

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidForm, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", errInvalidForm, err)
	}

	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return nil
		}
	}
	return fmt.Errorf("%w: detected %s", core.ErrNotText, mtype.String())
}

func toUploadResponse(result *core.UploadResult) UploadResponse {
	details := result.Details
	if details == nil {
		details = []string{}
	}
	codes := result.ErrorCodes
	if codes == nil {
		codes = map[string]int{}
	}

	if result.Entity == core.EntityHiredEmployees {
		return UploadResponse{
			Message: fmt.Sprintf("Processed %d rows: %d successful, %d invalid, %d failed",
				result.TotalRows, result.Written(), result.Invalid, result.Failed),
			UploadID: result.UploadID,
			Summary: EmployeeSummary{
				TotalRows:             result.TotalRows,
				ProcessedSuccessfully: result.Written(),
				Updated:               result.Updated,
				Duplicates:            result.Duplicates,
				RowsWithNullValues:    result.Nulls,
				InvalidRecords:        result.Invalid,
				FailedRecords:         result.Failed,
				Errors:                details,
				ErrorCodes:            codes,
			},
		}
	}

	return UploadResponse{
		Message:  "Proceso completado",
		UploadID: result.UploadID,
		Summary: CatalogSummary{
			TotalProcessed: result.TotalRows,
			Inserted:       result.Inserted,
			Duplicates:     result.Duplicates,
			Errors:         result.Errors(),
			ErrorDetails:   details,
			ErrorCodes:     codes,
		},
	}
}
