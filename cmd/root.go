package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"yt2mp3/infrastructure/config"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	envFile string
	verbose bool
	cfg     *config.Config
	cfgErr  error
)

// OutputWriter is where commands print their results (allows capturing in tests)
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// DefaultOutput is the default output writer for commands
var DefaultOutput OutputWriter = os.Stdout

var rootCmd = &cobra.Command{
	Use:   "yt2mp3",
	Short: "Turn video links into MP3 downloads",
	Long: `yt2mp3 is a small private backend that accepts a video URL, extracts the
audio with yt-dlp, transcodes it to MP3 with ffmpeg and hands the file back.

  - Serve the HTTP API and browser page
  - Convert a single URL from the command line
  - Sweep old files out of the output directory

Example:
  yt2mp3 serve --addr :8000
  yt2mp3 fetch --url "https://www.youtube.com/watch?v=..."`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(os.Stderr, verbose)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with YT2MP3_* overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}
	cfg, cfgErr = loadConfig(cfgFile, envFile)
}

// loadConfig reads the YAML file, then the dotenv file, then the environment
func loadConfig(path, dotenv string) (*config.Config, error) {
	c, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dotenv != "" {
		if err := config.LoadEnvFile(dotenv); err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnv(c, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// GetConfig returns the loaded configuration, or the error that prevented loading it
func GetConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, cfgErr
	}
	if cfg == nil {
		return config.Default(), nil
	}
	return cfg, nil
}

// setupLogging installs the default slog logger: JSON when w is not a terminal, text otherwise
func setupLogging(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
