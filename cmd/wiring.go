package cmd

import (
	"log/slog"

	appconv "yt2mp3/application/conversion"
	"yt2mp3/infrastructure/config"
	"yt2mp3/infrastructure/filesystem"
	"yt2mp3/infrastructure/metrics"
	"yt2mp3/infrastructure/toolchain"
	"yt2mp3/infrastructure/workspace"
	"yt2mp3/infrastructure/ytdlp"
)

// Dependencies groups the production adapters built from configuration
type Dependencies struct {
	Service *appconv.Service
	Store   *filesystem.OutputStore
	Checker *toolchain.Checker
}

// BuildDependencies wires the production adapters for cfg
func BuildDependencies(cfg *config.Config, recorder metrics.Recorder, logger *slog.Logger) *Dependencies {
	store := filesystem.NewOutputStore(cfg.Paths.OutputDirectory)

	downloader := ytdlp.NewDownloader(
		ytdlp.WithExecutable(cfg.Tools.YtdlpPath),
		ytdlp.WithFFmpegLocation(cfg.Tools.FFmpegPath),
		ytdlp.WithTimeout(cfg.Tools.Timeout),
		ytdlp.WithLogger(logger),
	)

	service := appconv.NewService(
		workspace.NewManager(cfg.Paths.WorkspaceRoot, workspace.WithLogger(logger)),
		downloader,
		filesystem.NewLocator(),
		store,
		appconv.WithAudio(cfg.Audio.Codec, cfg.Audio.Quality),
		appconv.WithMaxConcurrent(cfg.Server.MaxConcurrent),
		appconv.WithRecorder(recorder),
		appconv.WithLogger(logger),
	)

	checker := toolchain.NewChecker(
		toolchain.WithYtdlpPath(cfg.Tools.YtdlpPath),
		toolchain.WithFFmpegPath(cfg.Tools.FFmpegPath),
		toolchain.WithLogger(logger),
	)

	return &Dependencies{Service: service, Store: store, Checker: checker}
}
