// Package toolchain verifies the external binaries the converter shells out to.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"yt2mp3/infrastructure/logfields"
)

// Tool describes an external binary and the argument that makes it print its version
type Tool struct {
	Name        string
	Path        string
	VersionFlag string
}

// ToolStatus is the outcome of verifying one tool
type ToolStatus struct {
	Tool    Tool
	Version string
	Err     error
}

// OK reports whether the tool responded to its version flag
func (s ToolStatus) OK() bool {
	return s.Err == nil
}

// Checker verifies that yt-dlp and ffmpeg are installed and executable
type Checker struct {
	ytdlpPath  string
	ffmpegPath string
	runner     CommandRunner
	logger     *slog.Logger
}

// CheckerOption is a functional option for configuring Checker
type CheckerOption func(*Checker)

// WithYtdlpPath sets a custom yt-dlp executable path
func WithYtdlpPath(path string) CheckerOption {
	return func(c *Checker) {
		if path != "" {
			c.ytdlpPath = path
		}
	}
}

// WithFFmpegPath sets a custom ffmpeg executable path.
// An existing directory is taken to contain the ffmpeg binary, as yt-dlp's
// --ffmpeg-location does.
func WithFFmpegPath(path string) CheckerOption {
	return func(c *Checker) {
		if path != "" {
			c.ffmpegPath = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) CheckerOption {
	return func(c *Checker) {
		c.runner = runner
	}
}

// WithLogger sets the logger used to report each check
func WithLogger(logger *slog.Logger) CheckerOption {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChecker creates a new Checker
func NewChecker(opts ...CheckerOption) *Checker {
	c := &Checker{
		ytdlpPath:  "yt-dlp",
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Tools returns the binaries the checker verifies, in check order
func (c *Checker) Tools() []Tool {
	return []Tool{
		{Name: "yt-dlp", Path: c.ytdlpPath, VersionFlag: "--version"},
		{Name: "ffmpeg", Path: ffmpegBinary(c.ffmpegPath), VersionFlag: "-version"},
	}
}

// Check runs every tool's version command and reports each outcome
func (c *Checker) Check(ctx context.Context) []ToolStatus {
	tools := c.Tools()
	statuses := make([]ToolStatus, 0, len(tools))
	for _, tool := range tools {
		out, err := c.runner.Output(ctx, tool.Path, tool.VersionFlag)
		status := ToolStatus{Tool: tool}
		if err != nil {
			status.Err = fmt.Errorf("%s not found or not executable: %w", tool.Name, err)
			c.logger.Debug("Tool check failed", logfields.Tool(tool.Name), logfields.Path(tool.Path), logfields.Error(err))
		} else {
			status.Version = firstLine(string(out))
			c.logger.Debug("Tool available", logfields.Tool(tool.Name), logfields.Path(tool.Path), slog.String("version", status.Version))
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// VerifyInstalled checks that every tool is available, joining all failures
func (c *Checker) VerifyInstalled(ctx context.Context) error {
	var errs []error
	for _, status := range c.Check(ctx) {
		if status.Err != nil {
			errs = append(errs, status.Err)
		}
	}
	return errors.Join(errs...)
}

func ffmpegBinary(location string) string {
	if strings.HasSuffix(location, "/") {
		return location + "ffmpeg"
	}
	if info, err := os.Stat(location); err == nil && info.IsDir() {
		return filepath.Join(location, "ffmpeg")
	}
	return location
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
