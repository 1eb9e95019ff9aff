package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	LogLevel string         `toml:"log_level"`
	Database DatabaseConfig `toml:"database"`
	Backend  BackendConfig  `toml:"backend"`
	Storage  StorageConfig  `toml:"storage"`
	Playback PlaybackConfig `toml:"playback"`
	Server   ServerConfig   `toml:"server"`
	User     UserConfig     `toml:"user"`
}

// DatabaseConfig selects and configures the remote data backend.
type DatabaseConfig struct {
	Driver       string `toml:"driver"` // sqlite, postgres or rest
	Path         string `toml:"path"`
	URL          string `toml:"url"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// BackendConfig contains the hosted REST backend endpoint and key.
type BackendConfig struct {
	URL     string `toml:"url"`
	AnonKey string `toml:"anon_key"`
}

// StorageConfig describes where uploaded media is served from.
type StorageConfig struct {
	URL          string `toml:"url"`
	SongsBucket  string `toml:"songs_bucket"`
	ImagesBucket string `toml:"images_bucket"`
}

// PlaybackConfig tunes the play request coordinator.
type PlaybackConfig struct {
	DebounceMS    int     `toml:"debounce_ms"`
	CooldownMS    int     `toml:"cooldown_ms"`
	IncrementRate float64 `toml:"increment_rate"`
	CacheSize     int     `toml:"cache_size"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host      string  `toml:"host"`
	Port      int     `toml:"port"`
	RateLimit float64 `toml:"rate_limit"`
}

// UserConfig identifies the local listener for liked songs.
type UserConfig struct {
	ID string `toml:"id"`
}

// Debounce returns the debounce window, falling back to 500ms.
func (p PlaybackConfig) Debounce() time.Duration {
	if p.DebounceMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(p.DebounceMS) * time.Millisecond
}

// Cooldown returns the cooldown window, falling back to 1000ms.
func (p PlaybackConfig) Cooldown() time.Duration {
	if p.CooldownMS <= 0 {
		return time.Second
	}
	return time.Duration(p.CooldownMS) * time.Millisecond
}

// Addr returns host:port for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Validate checks that the selected driver has what it needs.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "", "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("%w: database.path is required for sqlite", ErrInvalidConfig)
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("%w: database.url is required for postgres", ErrInvalidConfig)
		}
	case "rest":
		if c.Backend.URL == "" {
			return fmt.Errorf("%w: backend.url is required for rest", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
