package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	appconv "yt2mp3/application/conversion"
	"yt2mp3/infrastructure/filesystem"
	"yt2mp3/infrastructure/metrics"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	fetchURL    string
	fetchOutDir string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Convert a single URL from the command line",
	Long: `Run one conversion without the HTTP server and move the resulting MP3
into --out (the current directory by default).

Example:
  yt2mp3 fetch --url "https://www.youtube.com/watch?v=..." --out ~/Music`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVar(&fetchURL, "url", "", "source URL (required)")
	fetchCmd.Flags().StringVar(&fetchOutDir, "out", ".", "directory to write the MP3 into")
	fetchCmd.MarkFlagRequired("url")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	deps := BuildDependencies(cfg, metrics.NoopRecorder{}, slog.Default())
	return RunFetchWithDependencies(cmd.Context(), deps.Service, fetchURL, fetchOutDir, DefaultOutput)
}

// Converter runs one conversion
type Converter interface {
	Convert(ctx context.Context, input appconv.ConvertInput) (*appconv.Result, error)
}

// RunFetchWithDependencies runs the fetch command with injected dependencies (for testing)
func RunFetchWithDependencies(ctx context.Context, converter Converter, url, outDir string, output OutputWriter) error {
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	fmt.Fprintf(output, "Converting %s...\n", url)

	result, err := converter.Convert(ctx, appconv.ConvertInput{URL: url})
	if err != nil {
		return err
	}

	dst := filepath.Join(outDir, result.Name)
	if err := filesystem.Move(result.Path, dst); err != nil {
		return fmt.Errorf("failed to move %s into %s: %w", result.Name, outDir, err)
	}

	fmt.Fprintf(output, "Saved %q to %s (%s in %s)\n",
		result.Title, dst, humanize.Bytes(uint64(result.Size)), result.Elapsed.Round(100*time.Millisecond))
	return nil
}
