// Package ytdlp drives the yt-dlp extractor (with ffmpeg as its audio
// post-processor) to turn a source URL into an audio file on disk.
package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"yt2mp3/domain/conversion"
	"yt2mp3/infrastructure/logfields"
)

// OutputTemplate names files after the source title and the produced extension
const OutputTemplate = "%(title)s.%(ext)s"

// DefaultFormat prefers an audio-only stream and falls back to the best muxed one
const DefaultFormat = "bestaudio/best"

// Executor runs a configured yt-dlp command against a URL
type Executor interface {
	Run(ctx context.Context, args ...string) (*ytdlp.Result, error)
}

// CommandFactory builds the yt-dlp invocation for one request
type CommandFactory func(req *conversion.Request, dir string) Executor

// Downloader implements conversion.AudioDownloader on top of yt-dlp
type Downloader struct {
	executable     string
	ffmpegLocation string
	timeout        time.Duration
	newCommand     CommandFactory
	logger         *slog.Logger
}

// Option is a functional option for configuring Downloader
type Option func(*Downloader)

// WithExecutable sets a custom yt-dlp executable path
func WithExecutable(path string) Option {
	return func(d *Downloader) {
		d.executable = path
	}
}

// WithFFmpegLocation points yt-dlp at a specific ffmpeg binary or directory
func WithFFmpegLocation(path string) Option {
	return func(d *Downloader) {
		d.ffmpegLocation = path
	}
}

// WithTimeout bounds each invocation. Zero means no limit.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Downloader) {
		d.timeout = timeout
	}
}

// WithCommandFactory replaces the yt-dlp command builder (for testing)
func WithCommandFactory(factory CommandFactory) Option {
	return func(d *Downloader) {
		d.newCommand = factory
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(d *Downloader) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDownloader creates a new yt-dlp backed downloader
func NewDownloader(opts ...Option) *Downloader {
	d := &Downloader{
		executable: "yt-dlp",
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.newCommand == nil {
		d.newCommand = d.buildCommand
	}
	return d
}

// Download implements conversion.AudioDownloader
func (d *Downloader) Download(ctx context.Context, req *conversion.Request, dir string) (*conversion.SourceInfo, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	d.logger.Debug("Invoking yt-dlp", logfields.URL(req.SourceURL), logfields.Path(dir))

	result, err := d.newCommand(req, dir).Run(ctx, req.SourceURL)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: timed out after %s", conversion.ErrInvocationFailed, d.timeout)
		}
		return nil, fmt.Errorf("%w: %v", conversion.ErrInvocationFailed, err)
	}

	return sourceInfoFrom(result, d.logger), nil
}

func (d *Downloader) buildCommand(req *conversion.Request, dir string) Executor {
	cmd := ytdlp.New().
		SetExecutable(d.executable).
		Format(DefaultFormat).
		Output(filepath.Join(dir, OutputTemplate)).
		ExtractAudio().
		AudioFormat(req.Codec).
		AudioQuality(req.Quality).
		NoProgress().
		NoCheckCertificates().
		Quiet().
		DumpJSON().
		NoSimulate()

	if d.ffmpegLocation != "" {
		cmd = cmd.FFmpegLocation(d.ffmpegLocation)
	}
	return cmd
}

// sourceInfoFrom reads the metadata yt-dlp printed for the first extracted entry.
// Missing or unparsable metadata is not an error; the title falls back downstream.
func sourceInfoFrom(result *ytdlp.Result, logger *slog.Logger) *conversion.SourceInfo {
	if result == nil {
		return &conversion.SourceInfo{}
	}

	infos, err := result.GetExtractedInfo()
	if err != nil || len(infos) == 0 {
		logger.Debug("yt-dlp reported no metadata", logfields.Error(err))
		return &conversion.SourceInfo{}
	}
	return infoFrom(infos[0])
}

func infoFrom(info *ytdlp.ExtractedInfo) *conversion.SourceInfo {
	if info == nil {
		return &conversion.SourceInfo{}
	}

	out := &conversion.SourceInfo{ID: info.ID}
	if info.Extractor != nil {
		out.Extractor = *info.Extractor
	}
	if info.Title != nil {
		out.Title = *info.Title
	}
	if info.Duration != nil {
		out.DurationSeconds = *info.Duration
	}
	return out
}

var _ conversion.AudioDownloader = (*Downloader)(nil)
