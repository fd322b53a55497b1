package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/hireload/internal/config"
)

// Service runs uploads through decode, validation, reconciliation and
// batched writes. It holds no per-upload state; the only shared state is
// the upload limiter.
type Service struct {
	store         Store
	cfg           config.UploadConfig
	uploadLimiter *UploadLimiter

	now func() time.Time
}

// ServiceOption configures optional Service behavior.
type ServiceOption func(*Service)

// WithClock sets the time source used to detect future hire dates.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service writing to store.
func NewService(store Store, cfg config.UploadConfig, opts ...ServiceOption) *Service {
	s := &Service{
		store:         store,
		cfg:           cfg,
		uploadLimiter: NewUploadLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadTimeout returns the maximum duration for a single upload.
func (s *Service) UploadTimeout() time.Duration {
	if s.cfg.Timeout <= 0 {
		return 10 * time.Minute
	}
	return s.cfg.Timeout
}

// MaxFileSize returns the upload size limit in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.cfg.MaxFileSize
}

// UploadStatus reports limiter occupancy.
func (s *Service) UploadStatus() UploadLimiterStatus {
	return s.uploadLimiter.Status()
}

// WaitForUploads blocks until in-flight uploads finish or ctx is done.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.uploadLimiter.WaitForDrain(ctx)
}
