package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Errors for config management
var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
)

// field binds a dotted key to the struct field it reads and writes
type field struct {
	get func(*Config) string
	set func(*Config, string) error
}

func stringField(ptr func(*Config) *string) field {
	return field{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, v string) error {
			*ptr(c) = strings.TrimSpace(v)
			return nil
		},
	}
}

func intField(ptr func(*Config) *int) field {
	return field{
		get: func(c *Config) string { return strconv.Itoa(*ptr(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			*ptr(c) = n
			return nil
		},
	}
}

func durationField(ptr func(*Config) *time.Duration) field {
	return field{
		get: func(c *Config) string { return ptr(c).String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			*ptr(c) = d
			return nil
		},
	}
}

func boolField(ptr func(*Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*ptr(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return err
			}
			*ptr(c) = b
			return nil
		},
	}
}

var fields = map[string]field{
	"server.address":          stringField(func(c *Config) *string { return &c.Server.Address }),
	"server.max_concurrent":   intField(func(c *Config) *int { return &c.Server.MaxConcurrent }),
	"server.shutdown_timeout": durationField(func(c *Config) *time.Duration { return &c.Server.ShutdownTimeout }),
	"paths.workspace_root":    stringField(func(c *Config) *string { return &c.Paths.WorkspaceRoot }),
	"paths.output_directory":  stringField(func(c *Config) *string { return &c.Paths.OutputDirectory }),
	"paths.index_file":        stringField(func(c *Config) *string { return &c.Paths.IndexFile }),
	"tools.ytdlp_path":        stringField(func(c *Config) *string { return &c.Tools.YtdlpPath }),
	"tools.ffmpeg_path":       stringField(func(c *Config) *string { return &c.Tools.FFmpegPath }),
	"tools.timeout":           durationField(func(c *Config) *time.Duration { return &c.Tools.Timeout }),
	"audio.codec":             stringField(func(c *Config) *string { return &c.Audio.Codec }),
	"audio.quality":           stringField(func(c *Config) *string { return &c.Audio.Quality }),
	"retention.max_age":       durationField(func(c *Config) *time.Duration { return &c.Retention.MaxAge }),
	"retention.sweep_interval": durationField(func(c *Config) *time.Duration {
		return &c.Retention.SweepInterval
	}),
	"metrics.enabled": boolField(func(c *Config) *bool { return &c.Metrics.Enabled }),
}

// Entry is a single key/value pair of the configuration
type Entry struct {
	Key   string
	Value string
}

// ConfigManager reads and edits config entries by dotted key
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Keys returns every supported key, sorted
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the current value of key
func (m *ConfigManager) Get(key string) (string, error) {
	f, ok := fields[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return f.get(m.config), nil
}

// List returns every entry, sorted by key
func (m *ConfigManager) List() []Entry {
	keys := Keys()
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: k, Value: fields[k].get(m.config)})
	}
	return entries
}

// Set parses value into key, validates the result and saves the file.
// The in-memory config is left untouched when parsing or validation fails.
func (m *ConfigManager) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	candidate := *m.config
	if err := f.set(&candidate, value); err != nil {
		return fmt.Errorf("%w for %s: %v", ErrInvalidValue, key, err)
	}
	if err := candidate.Validate(); err != nil {
		return fmt.Errorf("%w for %s: %v", ErrInvalidValue, key, err)
	}

	*m.config = candidate
	return m.save()
}

func (m *ConfigManager) save() error {
	return Save(m.config, m.configPath)
}
