package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/JonMunkholm/hireload/internal/logging"
	"github.com/google/uuid"
)

// UploadRequest is one CSV payload for one entity.
type UploadRequest struct {
	Entity         Entity
	FileName       string
	Reader         io.Reader
	UpdateExisting bool
}

// Upload ingests a CSV payload synchronously.
//
// Row-level problems never fail the call; they are counted in the result.
// An error is returned only for problems with the payload as a whole
// (extension, size, structure) or when storage becomes unavailable. In the
// latter case batches committed before the failure stay committed.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	def, err := Lookup(req.Entity)
	if err != nil {
		return nil, err
	}
	if req.UpdateExisting && !def.AllowUpdate {
		return nil, fmt.Errorf("%w: %s", ErrUpdateNotSupported, def.Info.Key)
	}
	if !strings.EqualFold(filepath.Ext(req.FileName), ".csv") {
		return nil, ErrInvalidExtension
	}

	release, err := s.uploadLimiter.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, s.UploadTimeout())
	defer cancel()

	uploadID := uuid.New().String()
	logger := logging.WithFields(ctx,
		"upload_id", uploadID,
		"entity", def.Info.Key,
		"file", req.FileName,
	)
	logger.Info("upload started", "update_existing", req.UpdateExisting)

	start := time.Now()
	result, err := s.process(ctx, logger, def, req)
	elapsed := time.Since(start)

	if err != nil {
		recordUpload(def.Info.Key, "error", elapsed)
		logger.Error("upload failed", "error", err, "duration", elapsed)
		return nil, err
	}

	result.UploadID = uploadID
	result.Duration = elapsed
	recordUpload(def.Info.Key, "ok", elapsed)

	logger.Info("upload completed",
		"total", result.TotalRows,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"duplicates", result.Duplicates,
		"invalid", result.Invalid,
		"failed", result.Failed,
		"duration", elapsed,
	)
	return result, nil
}

func (s *Service) process(ctx context.Context, logger *slog.Logger, def TableDefinition, req UploadRequest) (*UploadResult, error) {
	entity := def.Info.Key

	reader, counter := WrapForStreaming(req.Reader, s.cfg.MaxFileSize)
	decoded, err := Decode(reader, def.Width())
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", req.FileName, err)
	}
	logger.Debug("decoded upload", "bytes", counter.BytesRead, "records", decoded.Total())

	report := ValidateRows(def, decoded.Rows, ValidateOptions{
		Now:              s.now(),
		FutureHirePolicy: s.cfg.FutureHirePolicy,
	})

	rejected := mergeRowErrors(decoded.Errors, report.Invalid)
	for _, re := range rejected {
		logger.Warn("row rejected", "line", re.Line, "id", re.ID, "reason", re.Reason)
	}

	result := &UploadResult{
		Entity:    entity,
		FileName:  req.FileName,
		TotalRows: decoded.Total(),
		Invalid:   len(rejected),
		Nulls:     report.Nulls,
	}
	recordRows(entity, outcomeInvalid, result.Invalid)

	var plan *Plan
	if len(report.Valid) > 0 {
		existing, err := s.store.ExistingIDs(ctx, def)
		if err != nil {
			return nil, fmt.Errorf("%w: load existing ids: %w", ErrStorageUnavailable, err)
		}
		plan = Reconcile(report.Valid, existing, req.UpdateExisting)
	} else {
		plan = &Plan{}
	}

	result.Duplicates = len(plan.Duplicates)
	recordRows(entity, outcomeDuplicate, result.Duplicates)

	var failed []RowError
	if !plan.Empty() {
		writer := NewBatchWriter(s.store, s.cfg.BatchSize, logger)

		inserted, err := writer.Write(ctx, def, ModeInsert, plan.Inserts)
		result.Inserted = inserted.Written
		failed = append(failed, inserted.Failed...)
		recordRows(entity, outcomeInserted, inserted.Written)
		if err != nil {
			logger.Error("insert aborted", "committed", inserted.Written, "error", err)
			return nil, err
		}

		updated, err := writer.Write(ctx, def, ModeMerge, plan.Updates)
		result.Updated = updated.Written
		failed = append(failed, updated.Failed...)
		recordRows(entity, outcomeUpdated, updated.Written)
		if err != nil {
			logger.Error("update aborted",
				"inserted", result.Inserted,
				"committed", updated.Written,
				"error", err,
			)
			return nil, err
		}
	} else {
		logger.Info("nothing new to write", "duplicates", result.Duplicates)
	}

	result.Failed = len(failed)
	recordRows(entity, outcomeFailed, result.Failed)
	result.Details = errorDetails(rejected, failed)
	result.ErrorCodes = errorCodes(rejected, failed)

	return result, nil
}

// mergeRowErrors interleaves decode and validation failures in file order.
func mergeRowErrors(decodeErrs, invalid []RowError) []RowError {
	out := make([]RowError, 0, len(decodeErrs)+len(invalid))
	out = append(out, decodeErrs...)
	out = append(out, invalid...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Line < out[j].Line
	})
	return out
}

// errorCodes counts every rejected and failed row by code.
func errorCodes(rejected, failed []RowError) map[string]int {
	codes := make(map[string]int)
	for _, group := range [][]RowError{rejected, failed} {
		for _, re := range group {
			codes[re.Code]++
		}
	}
	return codes
}

// errorDetails returns at most MaxErrorDetails messages, rejected rows first.
func errorDetails(rejected, failed []RowError) []string {
	details := make([]string, 0, MaxErrorDetails)
	for _, group := range [][]RowError{rejected, failed} {
		for _, re := range group {
			if len(details) == MaxErrorDetails {
				return details
			}
			details = append(details, re.String())
		}
	}
	return details
}
