package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	appretention "yt2mp3/application/retention"
	"yt2mp3/domain/retention"
	"yt2mp3/infrastructure/filesystem"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var sweepMaxAge time.Duration

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete old files from the output directory",
	Long: `Remove delivered MP3 files older than --max-age from the output directory.

Defaults to retention.max_age from the config file.

Example:
  yt2mp3 sweep --max-age 24h`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().DurationVar(&sweepMaxAge, "max-age", 0, "remove files older than this (default from config)")
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	maxAge := sweepMaxAge
	if maxAge == 0 {
		maxAge = cfg.Retention.MaxAge
	}
	if maxAge <= 0 {
		return fmt.Errorf("no retention age set; pass --max-age or set retention.max_age")
	}

	store := filesystem.NewOutputStore(cfg.Paths.OutputDirectory)
	return RunSweepWithDependencies(cmd.Context(), store, maxAge, DefaultOutput)
}

// RunSweepWithDependencies runs the sweep command with injected dependencies (for testing)
func RunSweepWithDependencies(ctx context.Context, store retention.Store, maxAge time.Duration, output OutputWriter) error {
	svc := appretention.NewSweepService(store, nil, slog.Default())

	result, err := svc.Sweep(ctx, maxAge)
	if result != nil && len(result.RemovedFiles) > 0 {
		w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "REMOVED\tSIZE")
		for _, f := range result.RemovedFiles {
			fmt.Fprintf(w, "%s\t%s\n", f.Name, humanize.Bytes(uint64(f.Size)))
		}
		if ferr := w.Flush(); ferr != nil {
			return ferr
		}
	}
	if result != nil {
		fmt.Fprintf(output, "Removed %d file(s), freed %s, kept %d\n",
			len(result.RemovedFiles), humanize.Bytes(uint64(result.FreedBytes)), result.Kept)
	}
	return err
}
