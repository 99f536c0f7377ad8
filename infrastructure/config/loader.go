package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the config file is looked for when --config is not given
const DefaultPath = "config/config.yaml"

// EnvPrefix prefixes every environment override
const EnvPrefix = "YT2MP3_"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Paths     PathsConfig     `yaml:"paths"`
	Tools     ToolsConfig     `yaml:"tools"`
	Audio     AudioConfig     `yaml:"audio"`
	Retention RetentionConfig `yaml:"retention"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MaxConcurrent   int           `yaml:"max_concurrent"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// PathsConfig contains directory paths for conversions
type PathsConfig struct {
	WorkspaceRoot   string `yaml:"workspace_root"`
	OutputDirectory string `yaml:"output_directory"`
	IndexFile       string `yaml:"index_file"`
}

// ToolsConfig locates the external binaries
type ToolsConfig struct {
	YtdlpPath  string        `yaml:"ytdlp_path"`
	FFmpegPath string        `yaml:"ffmpeg_path"`
	Timeout    time.Duration `yaml:"timeout"`
}

// AudioConfig contains audio extraction settings
type AudioConfig struct {
	Codec   string `yaml:"codec"`
	Quality string `yaml:"quality"`
}

// RetentionConfig controls the output directory sweep. A zero MaxAge keeps files forever.
type RetentionConfig struct {
	MaxAge        time.Duration `yaml:"max_age"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8000",
			ShutdownTimeout: 30 * time.Second,
		},
		Paths: PathsConfig{
			IndexFile: "web/index.html",
		},
		Tools: ToolsConfig{
			YtdlpPath: "yt-dlp",
		},
		Audio: AudioConfig{
			Codec:   "mp3",
			Quality: "192",
		},
		Retention: RetentionConfig{
			SweepInterval: 10 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads the configuration from the specified YAML file on top of the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process environment.
// Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with YT2MP3_* variables found through lookup
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	var errs []error
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + key); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	str("ADDRESS", &cfg.Server.Address)
	str("OUTPUT_DIR", &cfg.Paths.OutputDirectory)
	str("WORKSPACE_ROOT", &cfg.Paths.WorkspaceRoot)
	str("INDEX_FILE", &cfg.Paths.IndexFile)
	str("YTDLP_PATH", &cfg.Tools.YtdlpPath)
	str("FFMPEG_PATH", &cfg.Tools.FFmpegPath)
	dur("TOOL_TIMEOUT", &cfg.Tools.Timeout)
	dur("RETENTION_MAX_AGE", &cfg.Retention.MaxAge)

	if v, ok := lookup(EnvPrefix + "MAX_CONCURRENT"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_CONCURRENT: %w", EnvPrefix, err))
		} else {
			cfg.Server.MaxConcurrent = n
		}
	}
	if v, ok := lookup(EnvPrefix + "METRICS_ENABLED"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMETRICS_ENABLED: %w", EnvPrefix, err))
		} else {
			cfg.Metrics.Enabled = b
		}
	}

	return errors.Join(errs...)
}

// Validate reports settings that cannot work
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Address) == "" {
		errs = append(errs, errors.New("server.address is required"))
	}
	if c.Server.MaxConcurrent < 0 {
		errs = append(errs, errors.New("server.max_concurrent must not be negative"))
	}
	if c.Tools.Timeout < 0 {
		errs = append(errs, errors.New("tools.timeout must not be negative"))
	}
	if c.Retention.MaxAge < 0 {
		errs = append(errs, errors.New("retention.max_age must not be negative"))
	}
	if c.Retention.MaxAge > 0 && c.Retention.SweepInterval <= 0 {
		errs = append(errs, errors.New("retention.sweep_interval must be positive when retention is enabled"))
	}
	return errors.Join(errs...)
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
