package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"yt2mp3/infrastructure/toolchain"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify yt-dlp and ffmpeg are installed",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	checker := toolchain.NewChecker(
		toolchain.WithYtdlpPath(cfg.Tools.YtdlpPath),
		toolchain.WithFFmpegPath(cfg.Tools.FFmpegPath),
	)
	return RunCheckWithDependencies(cmd.Context(), checker, DefaultOutput)
}

// RunCheckWithDependencies runs the check command with injected dependencies (for testing)
func RunCheckWithDependencies(ctx context.Context, checker *toolchain.Checker, output OutputWriter) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	statuses := checker.Check(ctx)

	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tPATH\tSTATUS")
	failed := 0
	for _, s := range statuses {
		status := s.Version
		if !s.OK() {
			status = "MISSING: " + s.Err.Error()
			failed++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Tool.Name, s.Tool.Path, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tools unavailable", failed, len(statuses))
	}
	return nil
}
