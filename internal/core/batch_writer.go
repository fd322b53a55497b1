package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
)

// ContextCheckInterval is how often to check for context cancellation
// while writing row by row.
var ContextCheckInterval = 100

// DefaultBatchSize is used when the writer is built with a non-positive size.
const DefaultBatchSize = 1000

// WriteSummary reports what a BatchWriter committed.
type WriteSummary struct {
	Written int
	Failed  []RowError
}

// BatchWriter commits records in fixed-size transactional batches.
//
// Each batch is first written as a unit. If that fails the batch is rolled
// back and its rows are retried one at a time, so a single bad row costs only
// itself. Integrity violations become row errors; anything else stops the
// upload. Batches committed before a fatal error stay committed.
type BatchWriter struct {
	store     Store
	batchSize int
	logger    *slog.Logger
}

// NewBatchWriter creates a writer over store.
func NewBatchWriter(store Store, batchSize int, logger *slog.Logger) *BatchWriter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchWriter{store: store, batchSize: batchSize, logger: logger}
}

// Write commits records using mode. It performs no storage calls when
// records is empty.
func (w *BatchWriter) Write(ctx context.Context, def TableDefinition, mode WriteMode, records []Record) (WriteSummary, error) {
	var summary WriteSummary

	for start, batch := 0, 0; start < len(records); start, batch = start+w.batchSize, batch+1 {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("write cancelled before batch %d: %w", batch, err)
		}

		end := min(start+w.batchSize, len(records))
		chunk := records[start:end]

		err := w.store.WriteBatch(ctx, def, mode, chunk)
		if err == nil {
			summary.Written += len(chunk)
			recordBatch(def.Info.Key, batchCommitted)
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return summary, fmt.Errorf("write cancelled in batch %d: %w", batch, ctxErr)
		}

		w.logger.Warn("batch write failed, retrying row by row",
			"entity", def.Info.Key,
			"mode", mode.String(),
			"batch", batch,
			"rows", len(chunk),
			"error", err,
		)
		recordBatch(def.Info.Key, batchFallback)

		if err := w.writeRows(ctx, def, mode, batch, chunk, &summary); err != nil {
			recordBatch(def.Info.Key, batchAborted)
			return summary, err
		}
	}

	return summary, nil
}

// writeRows is the per-row fallback for one failed batch.
func (w *BatchWriter) writeRows(ctx context.Context, def TableDefinition, mode WriteMode, batch int, chunk []Record, summary *WriteSummary) error {
	for i, rec := range chunk {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("write cancelled in batch %d: %w", batch, err)
			}
		}

		err := w.store.WriteRow(ctx, def, mode, rec)
		if err == nil {
			summary.Written++
			continue
		}

		if !IsRowError(err) {
			return fmt.Errorf("%w: batch %d, id %d: %w", ErrStorageUnavailable, batch, rec.ID, err)
		}

		reason := rowReason(err)
		w.logger.Warn("row rejected by storage",
			"entity", def.Info.Key,
			"batch", batch,
			"id", rec.ID,
			"line", rec.Line,
			"reason", reason,
		)
		summary.Failed = append(summary.Failed, newRowError(0, strconv.FormatInt(rec.ID, 10), reason))
	}
	return nil
}

// IsRowError reports whether err was caused by the row's own values: an
// integrity violation (SQLSTATE class 23) or a data exception (class 22) such
// as an invalid byte sequence. Anything else, connectivity and server
// resource failures included, is not the row's fault.
func IsRowError(err error) bool {
	if errors.Is(err, ErrConstraint) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch sqlstateClass(pgErr.Code) {
		case "22", "23":
			return true
		}
	}
	return false
}

func sqlstateClass(code string) string {
	if len(code) < 2 {
		return ""
	}
	return code[:2]
}

func rowReason(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return "duplicate key: " + pgErr.Message
		case "23503":
			return "unknown reference: " + pgErr.Message
		case "23502":
			return "missing value: " + pgErr.Message
		}
		if sqlstateClass(pgErr.Code) == "22" {
			return "invalid value: " + pgErr.Message
		}
		return pgErr.Message
	}
	return err.Error()
}
