package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appretention "yt2mp3/application/retention"
	"yt2mp3/infrastructure/config"
	"yt2mp3/infrastructure/httpapi"
	"yt2mp3/infrastructure/logfields"
	"yt2mp3/infrastructure/metrics"
	"yt2mp3/infrastructure/scheduler"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Start the HTTP server exposing:

  GET /health              liveness check
  GET /api/download?url=   convert a URL and return the MP3
  GET /                    browser front page
  GET /metrics             Prometheus metrics (when enabled)

When retention.max_age is set, old files in the output directory are swept
every retention.sweep_interval.

Example:
  yt2mp3 serve --addr 127.0.0.1:8000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8000)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Address = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Address, err)
	}

	return RunServeWithDependencies(ctx, cfg, listener, slog.Default())
}

// RunServeWithDependencies serves on listener until ctx is cancelled (for testing)
func RunServeWithDependencies(ctx context.Context, cfg *config.Config, listener net.Listener, logger *slog.Logger) error {
	var (
		recorder       metrics.Recorder = metrics.NoopRecorder{}
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		prom := metrics.NewPrometheusRecorder(nil)
		recorder = prom
		metricsHandler = prom.HTTPHandler()
	}

	deps := BuildDependencies(cfg, recorder, logger)

	verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := deps.Checker.VerifyInstalled(verifyCtx); err != nil {
		logger.Warn("External tools unavailable, conversions will fail", logfields.Error(err))
	}
	cancel()

	if err := deps.Store.EnsureDir(); err != nil {
		listener.Close()
		return err
	}

	server := httpapi.NewServer(deps.Service,
		httpapi.WithIndexFile(cfg.Paths.IndexFile),
		httpapi.WithMetricsHandler(metricsHandler),
		httpapi.WithLogger(logger),
	)

	httpServer := &http.Server{
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var sched *scheduler.Scheduler
	if cfg.Retention.MaxAge > 0 {
		s, err := scheduler.New(logger)
		if err != nil {
			listener.Close()
			return err
		}
		sweeper := appretention.NewSweepService(deps.Store, recorder, logger)
		if _, err := s.ScheduleSweep(ctx, cfg.Retention.SweepInterval, cfg.Retention.MaxAge, sweeper); err != nil {
			listener.Close()
			_ = s.Stop()
			return err
		}
		sched = s
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening",
			slog.String("address", listener.Addr().String()),
			logfields.Path(deps.Store.Dir()))
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if sched != nil {
		sched.Start()
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if sched != nil {
			if err := sched.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("scheduler shutdown: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
