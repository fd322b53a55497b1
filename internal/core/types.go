package core

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// Sentinel errors. Callers match them with errors.Is; messages are chosen so
// MapError can turn them into user-facing codes.
var (
	ErrEmptyFile          = errors.New("empty file")
	ErrInvalidCSV         = errors.New("invalid csv")
	ErrFileTooLarge       = errors.New("file too large")
	ErrInvalidExtension   = errors.New("invalid file extension: file must be a csv")
	ErrNotText            = errors.New("file is not text")
	ErrUnknownEntity      = errors.New("unknown entity")
	ErrUpdateNotSupported = errors.New("update mode not supported for entity")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrConstraint marks an integrity violation raised by storage. Store
	// implementations that do not surface *pgconn.PgError wrap it instead.
	ErrConstraint = errors.New("constraint violation")
)

// Querier is the read side of the storage engine.
// Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store is the storage boundary used by the ingestion pipeline.
//
// WriteBatch must be all-or-nothing: either every record is committed or the
// transaction is rolled back. WriteRow commits a single record in its own
// unit of work so that failures cannot affect siblings.
type Store interface {
	ExistingIDs(ctx context.Context, def TableDefinition) (map[int64]struct{}, error)
	WriteBatch(ctx context.Context, def TableDefinition, mode WriteMode, records []Record) error
	WriteRow(ctx context.Context, def TableDefinition, mode WriteMode, record Record) error
}

// WriteMode selects between plain inserts and full-overwrite merges.
type WriteMode int

const (
	ModeInsert WriteMode = iota
	ModeMerge
)

func (m WriteMode) String() string {
	if m == ModeMerge {
		return "merge"
	}
	return "insert"
}

// Entity identifies one of the ingested feeds.
type Entity string

const (
	EntityDepartments    Entity = "departments"
	EntityJobs           Entity = "jobs"
	EntityHiredEmployees Entity = "hired_employees"
)

// Record is a validated row ready for storage. Which optional fields are
// meaningful depends on the entity: departments and jobs only use Name.
type Record struct {
	ID           int64
	Line         int
	Name         pgtype.Text
	HiredAt      pgtype.Timestamptz
	DepartmentID pgtype.Int8
	JobID        pgtype.Int8
}

// RowError describes a row that could not be decoded, validated or written.
type RowError struct {
	Line   int    // 1-based line in the uploaded file, 0 if unknown
	ID     string // raw id cell, empty if not available
	Reason string
	Code   string // MapReason code of Reason
}

func newRowError(line int, id, reason string) RowError {
	return RowError{Line: line, ID: id, Reason: reason, Code: MapReason(reason).Code}
}

func (e RowError) String() string {
	switch {
	case e.ID != "" && e.Line > 0:
		return "line " + strconv.Itoa(e.Line) + " (id " + e.ID + "): " + e.Reason
	case e.ID != "":
		return "id " + e.ID + ": " + e.Reason
	case e.Line > 0:
		return "line " + strconv.Itoa(e.Line) + ": " + e.Reason
	default:
		return e.Reason
	}
}

// NullStats counts null optional fields among valid employee rows.
type NullStats struct {
	Names       int `json:"null_names"`
	Datetimes   int `json:"null_datetimes"`
	Departments int `json:"null_departments"`
	Jobs        int `json:"null_jobs"`
}

// UploadResult contains the final result of an upload operation.
type UploadResult struct {
	UploadID   string
	Entity     Entity
	FileName   string
	TotalRows  int
	Inserted   int
	Updated    int
	Duplicates int
	Invalid    int
	Failed     int
	Nulls      NullStats

	// Details holds at most MaxErrorDetails human readable row problems,
	// invalid rows first in file order, then write failures.
	Details []string

	// ErrorCodes counts every row problem by code, uncapped.
	ErrorCodes map[string]int

	Duration time.Duration
}

// Written returns the number of rows committed by the upload.
func (r *UploadResult) Written() int {
	return r.Inserted + r.Updated
}

// Errors returns the number of row-level problems (invalid plus failed writes).
func (r *UploadResult) Errors() int {
	return r.Invalid + r.Failed
}

// MaxErrorDetails bounds the number of row problems returned to callers.
const MaxErrorDetails = 5

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// FieldSpec describes one positional CSV column.
type FieldSpec struct {
	Name     string // Column name used in messages
	DBColumn string // Database column name
	Required bool   // Null or blank values make the row invalid
}

// TableInfo contains descriptive information about an entity table.
type TableInfo struct {
	Key     Entity   // Unique identifier: "hired_employees"
	Label   string   // Display name: "Hired employees"
	Table   string   // Storage table name
	Columns []string // CSV columns in positional order

	// UniqueKey lists non-id columns that must be unique in storage.
	UniqueKey []string
}

// ValidateOptions carries per-upload settings that affect row validation.
type ValidateOptions struct {
	Now              time.Time
	FutureHirePolicy string
}

// BuildRecordFunc converts decoded cells into a Record. The returned error is
// the reason the row is invalid; it never aborts the upload.
type BuildRecordFunc func(cells []string, opts ValidateOptions) (Record, error)

// CopyRowFunc converts a record into storage values, one per FieldSpec.
type CopyRowFunc func(r Record) []any

// TableDefinition contains everything needed to ingest one entity.
type TableDefinition struct {
	Info        TableInfo
	FieldSpecs  []FieldSpec
	BuildRecord BuildRecordFunc

	// CopyRow returns values ordered like DBColumns.
	CopyRow CopyRowFunc

	// AllowUpdate permits merge mode (full overwrite of existing ids).
	AllowUpdate bool

	// TrackNulls enables null statistics over the optional columns.
	TrackNulls bool
}

// Width returns the number of positional CSV columns.
func (t TableDefinition) Width() int {
	return len(t.Info.Columns)
}

// DBColumns returns the storage column of every field in CSV order. The first
// one is the primary key.
func (t TableDefinition) DBColumns() []string {
	cols := make([]string, len(t.FieldSpecs))
	for i, spec := range t.FieldSpecs {
		cols[i] = spec.DBColumn
	}
	return cols
}
