package conversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"yt2mp3/domain/conversion"
	"yt2mp3/infrastructure/logfields"
	"yt2mp3/infrastructure/metrics"
)

// ConvertInput represents the input for a conversion
type ConvertInput struct {
	URL string
}

// Result contains the outcome of a successful conversion
type Result struct {
	Path      string // location in stable storage
	Name      string // delivered file name
	Title     string
	MediaType string
	Size      int64
	Elapsed   time.Duration
	Source    *conversion.SourceInfo
}

// Service coordinates one URL-to-audio conversion: workspace, tool chain,
// result lookup and relocation into stable storage.
type Service struct {
	workspaces conversion.WorkspaceProvider
	downloader conversion.AudioDownloader
	locator    conversion.ArtifactLocator
	placer     conversion.OutputPlacer

	codec    string
	quality  string
	limiter  *semaphore.Weighted
	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option is a functional option for configuring Service
type Option func(*Service)

// WithAudio sets the target codec and quality
func WithAudio(codec, quality string) Option {
	return func(s *Service) {
		s.codec = codec
		s.quality = quality
	}
}

// WithMaxConcurrent bounds simultaneous tool-chain invocations. Zero or less means unlimited.
func WithMaxConcurrent(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limiter = semaphore.NewWeighted(int64(n))
		} else {
			s.limiter = nil
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a new conversion Service
func NewService(
	workspaces conversion.WorkspaceProvider,
	downloader conversion.AudioDownloader,
	locator conversion.ArtifactLocator,
	placer conversion.OutputPlacer,
	opts ...Option,
) *Service {
	s := &Service{
		workspaces: workspaces,
		downloader: downloader,
		locator:    locator,
		placer:     placer,
		codec:      conversion.DefaultCodec,
		quality:    conversion.DefaultQuality,
		recorder:   metrics.NoopRecorder{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Convert fetches the audio behind input.URL and places it in stable storage.
// The request workspace is removed before Convert returns, whatever the outcome.
func (s *Service) Convert(ctx context.Context, input ConvertInput) (result *Result, err error) {
	start := time.Now()
	defer func() {
		outcome := OutcomeFor(err)
		r := recover()
		if r != nil {
			outcome = metrics.OutcomeError
		}
		s.recorder.IncConversion(outcome)
		s.recorder.ObserveConversionDuration(time.Since(start))
		if r != nil {
			panic(r)
		}
	}()

	req, err := conversion.NewRequest(input.URL, s.codec, s.quality)
	if err != nil {
		return nil, err
	}

	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("waiting for a conversion slot: %w", err)
		}
		defer s.limiter.Release(1)
	}

	s.recorder.AddInflight(1)
	defer s.recorder.AddInflight(-1)

	stageStart := time.Now()
	ws, err := s.workspaces.Acquire()
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := ws.Release(); rerr != nil {
			s.logger.Warn("Failed to release workspace", logfields.Path(ws.Path()), logfields.Error(rerr))
		}
	}()
	s.observeStage(metrics.StageWorkspace, stageStart)

	stageStart = time.Now()
	info, err := s.downloader.Download(ctx, req, ws.Path())
	s.observeStage(metrics.StageInvoke, stageStart)
	if err != nil {
		s.logger.Error("Tool chain failed", logfields.URL(req.SourceURL), logfields.Error(err))
		return nil, err
	}

	stageStart = time.Now()
	artifact, err := s.locator.Locate(ws.Path(), req.Extension())
	s.observeStage(metrics.StageLocate, stageStart)
	if err != nil {
		s.logger.Error("No output produced", logfields.URL(req.SourceURL), logfields.Path(ws.Path()), logfields.Error(err))
		return nil, err
	}

	title := info.DisplayTitle()

	stageStart = time.Now()
	placed, err := s.placer.Place(artifact, title, req.Extension())
	s.observeStage(metrics.StageRelocate, stageStart)
	if err != nil {
		s.logger.Error("Failed to move output", logfields.Path(artifact), logfields.Error(err))
		return nil, err
	}

	result = &Result{
		Path:      placed.Path,
		Name:      placed.Name,
		Title:     title,
		MediaType: req.MediaType(),
		Size:      placed.Size,
		Elapsed:   time.Since(start),
		Source:    info,
	}

	s.logger.Info("Conversion complete",
		logfields.URL(req.SourceURL),
		logfields.Title(title),
		logfields.File(placed.Name),
		logfields.Bytes(placed.Size),
		logfields.Duration(result.Elapsed))

	return result, nil
}

func (s *Service) observeStage(stage string, since time.Time) {
	d := time.Since(since)
	s.recorder.ObserveStageDuration(stage, d)
	s.logger.Debug("Stage finished", logfields.Stage(stage), logfields.Duration(d))
}

// OutcomeFor classifies a Convert error for metrics
func OutcomeFor(err error) metrics.Outcome {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, conversion.ErrInvalidURL):
		return metrics.OutcomeInvalid
	case errors.Is(err, conversion.ErrInvocationFailed):
		return metrics.OutcomeInvocationFailed
	case errors.Is(err, conversion.ErrNoOutput):
		return metrics.OutcomeNoOutput
	default:
		return metrics.OutcomeError
	}
}
