package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./badmusic.db" {
			t.Errorf("expected database path ./badmusic.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Playback.Debounce() != 500*time.Millisecond {
			t.Errorf("expected 500ms debounce, got %v", config.Playback.Debounce())
		}

		if config.Playback.Cooldown() != time.Second {
			t.Errorf("expected 1s cooldown, got %v", config.Playback.Cooldown())
		}

		if config.Storage.SongsBucket != "songs" {
			t.Errorf("expected songs bucket, got %s", config.Storage.SongsBucket)
		}
	})

	t.Run("Playback Fallbacks", func(t *testing.T) {
		var p PlaybackConfig
		if p.Debounce() != 500*time.Millisecond {
			t.Errorf("expected default debounce, got %v", p.Debounce())
		}
		if p.Cooldown() != time.Second {
			t.Errorf("expected default cooldown, got %v", p.Cooldown())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
driver = "postgres"
url = "postgres://localhost/badmusic"

[server]
host = "0.0.0.0"
port = 8080

[playback]
debounce_ms = 250
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Driver != "postgres" {
			t.Errorf("expected postgres driver, got %s", config.Database.Driver)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.Playback.Debounce() != 250*time.Millisecond {
			t.Errorf("expected 250ms debounce, got %v", config.Playback.Debounce())
		}

		if config.Playback.Cooldown() != time.Second {
			t.Errorf("expected cooldown default to survive partial file, got %v", config.Playback.Cooldown())
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name    string
			mutate  func(c *Config)
			wantErr bool
		}{
			{name: "defaults", mutate: func(c *Config) {}},
			{name: "sqlite without path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
			{name: "postgres without url", mutate: func(c *Config) { c.Database.Driver = "postgres" }, wantErr: true},
			{name: "rest without url", mutate: func(c *Config) { c.Database.Driver = "rest"; c.Backend.URL = "" }, wantErr: true},
			{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mongo" }, wantErr: true},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				c := DefaultConfig()
				tt.mutate(c)
				err := c.Validate()
				if tt.wantErr {
					if !errors.Is(err, ErrInvalidConfig) {
						t.Errorf("expected ErrInvalidConfig, got %v", err)
					}
				} else if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			})
		}
	})

	t.Run("SaveConfig round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		config := DefaultConfig()
		config.Database.Driver = "rest"
		config.Backend.URL = "https://abc.supabase.co"
		config.Backend.AnonKey = "anon"

		if err := SaveConfig(path, config); err != nil {
			t.Fatalf("SaveConfig() error = %v", err)
		}

		loaded, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if loaded.Backend.URL != config.Backend.URL || loaded.Backend.AnonKey != "anon" || loaded.Database.Driver != "rest" {
			t.Errorf("unexpected round trip %+v", loaded.Backend)
		}
		if loaded.Playback.CacheSize != config.Playback.CacheSize {
			t.Errorf("expected cache size %d, got %d", config.Playback.CacheSize, loaded.Playback.CacheSize)
		}
	})
}
