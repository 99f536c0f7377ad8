package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"yt2mp3/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command walks through the listen address, output and workspace
directories, tool locations, audio settings and retention.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath
	}
	return RunSetupWithPrompter(DefaultPrompter, path, DefaultOutput)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out OutputWriter) error {
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to yt2mp3 setup!")
	fmt.Fprintln(out)

	cfg := config.Default()

	if err := promptServer(prompter, cfg); err != nil {
		return err
	}
	if err := promptPaths(prompter, cfg); err != nil {
		return err
	}
	if err := promptTools(prompter, cfg); err != nil {
		return err
	}
	if err := promptAudio(prompter, cfg); err != nil {
		return err
	}
	if err := promptRetention(prompter, cfg); err != nil {
		return err
	}

	enabled, err := prompter.Confirm("Expose Prometheus metrics at /metrics?", cfg.Metrics.Enabled)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Metrics.Enabled = enabled

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptServer(prompter Prompter, cfg *config.Config) error {
	addr, err := prompter.Input("Listen address for the HTTP server?", cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if addr != "" {
		cfg.Server.Address = addr
	}

	limit, err := prompter.Input("Maximum simultaneous conversions (0 = unlimited)?", strconv.Itoa(cfg.Server.MaxConcurrent))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return fmt.Errorf("max concurrent must be a non-negative number")
		}
		cfg.Server.MaxConcurrent = n
	}
	return nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	out, err := prompter.Input("Where should converted MP3 files be kept? (empty = system temp)", cfg.Paths.OutputDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Paths.OutputDirectory = out

	ws, err := prompter.Input("Where should per-request scratch directories go? (empty = system temp)", cfg.Paths.WorkspaceRoot)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Paths.WorkspaceRoot = ws

	index, err := prompter.Input("Custom front page HTML file?", cfg.Paths.IndexFile)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Paths.IndexFile = index

	return nil
}

func promptTools(prompter Prompter, cfg *config.Config) error {
	ytdlpPath, err := prompter.Input("Path to yt-dlp?", cfg.Tools.YtdlpPath)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if ytdlpPath == "" {
		return fmt.Errorf("yt-dlp path is required")
	}
	cfg.Tools.YtdlpPath = ytdlpPath

	ffmpegPath, err := prompter.Input("Path to ffmpeg? (empty = search PATH)", cfg.Tools.FFmpegPath)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Tools.FFmpegPath = ffmpegPath

	return nil
}

func promptAudio(prompter Prompter, cfg *config.Config) error {
	quality, err := prompter.Input("MP3 quality in kbps?", cfg.Audio.Quality)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if quality != "" {
		cfg.Audio.Quality = quality
	}
	return nil
}

func promptRetention(prompter Prompter, cfg *config.Config) error {
	sweep, err := prompter.Confirm("Delete converted files after a while?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if !sweep {
		cfg.Retention.MaxAge = 0
		return nil
	}

	age, err := prompter.Input("Keep files for how long? (e.g. 24h)", "24h")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	d, err := time.ParseDuration(age)
	if err != nil || d <= 0 {
		return fmt.Errorf("retention age must be a positive duration like 24h")
	}
	cfg.Retention.MaxAge = d
	return nil
}
