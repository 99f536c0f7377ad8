package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"yt2mp3/domain/retention"
	"yt2mp3/infrastructure/logfields"
	"yt2mp3/infrastructure/metrics"
)

// SweepService removes delivered files that have outlived the retention window
type SweepService struct {
	store    retention.Store
	recorder metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewSweepService creates a new sweep service
func NewSweepService(store retention.Store, recorder metrics.Recorder, logger *slog.Logger) *SweepService {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SweepService{
		store:    store,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Sweep deletes every stored file older than maxAge.
// A failure on one file does not stop the sweep; all failures are joined into the returned error.
func (s *SweepService) Sweep(ctx context.Context, maxAge time.Duration) (*retention.SweepResult, error) {
	result := &retention.SweepResult{}
	if maxAge <= 0 {
		return result, retention.ErrInvalidMaxAge
	}

	files, err := s.store.List()
	if err != nil {
		return result, fmt.Errorf("failed to list files: %w", err)
	}

	now := s.now()
	var errs []error
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if !f.ExpiredAt(now, maxAge) {
			result.Kept++
			continue
		}
		if err := s.store.Remove(f.Name); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", f.Name, err))
			continue
		}
		result.RemovedFiles = append(result.RemovedFiles, retention.RemovedFile{
			Name: f.Name,
			Size: f.Size,
		})
		result.FreedBytes += f.Size
	}

	s.recorder.AddSweep(len(result.RemovedFiles), result.FreedBytes)
	if len(result.RemovedFiles) > 0 {
		s.logger.Info("Swept expired output files",
			slog.Int("removed", len(result.RemovedFiles)),
			logfields.Bytes(result.FreedBytes),
			slog.Int("kept", result.Kept))
	}

	return result, errors.Join(errs...)
}
