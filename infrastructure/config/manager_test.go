package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigManager_GetAndList(t *testing.T) {
	mgr := NewConfigManager(Default(), filepath.Join(t.TempDir(), "config.yaml"))

	tests := []struct {
		key  string
		want string
	}{
		{"server.address", ":8000"},
		{"server.max_concurrent", "0"},
		{"server.shutdown_timeout", "30s"},
		{"audio.quality", "192"},
		{"retention.max_age", "0s"},
		{"metrics.enabled", "true"},
		{" Audio.Codec ", "mp3"},
	}
	for _, tt := range tests {
		got, err := mgr.Get(tt.key)
		if err != nil {
			t.Errorf("Get(%q) error = %v", tt.key, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}

	entries := mgr.List()
	if len(entries) != len(Keys()) {
		t.Fatalf("List() returned %d entries, want %d", len(entries), len(Keys()))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Key >= entries[i].Key {
			t.Errorf("List() not sorted at %d: %q >= %q", i, entries[i-1].Key, entries[i].Key)
		}
	}
}

func TestConfigManager_Set(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	mgr := NewConfigManager(cfg, path)

	if err := mgr.Set("retention.max_age", "72h"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if cfg.Retention.MaxAge != 72*time.Hour {
		t.Errorf("MaxAge = %v, want 72h", cfg.Retention.MaxAge)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Retention.MaxAge != 72*time.Hour {
		t.Errorf("saved MaxAge = %v, want 72h", loaded.Retention.MaxAge)
	}
}

func TestConfigManager_SetErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{"unknown key", "google.token", "x", ErrUnknownKey},
		{"bad int", "server.max_concurrent", "lots", ErrInvalidValue},
		{"bad duration", "tools.timeout", "forever", ErrInvalidValue},
		{"bad bool", "metrics.enabled", "maybe", ErrInvalidValue},
		{"fails validation", "server.max_concurrent", "-3", ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			mgr := NewConfigManager(cfg, filepath.Join(t.TempDir(), "config.yaml"))

			err := mgr.Set(tt.key, tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Set() error = %v, want %v", err, tt.wantErr)
			}
			if *cfg != *Default() {
				t.Error("config should be unchanged after a failed Set")
			}
		})
	}
}
