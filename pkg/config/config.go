package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Source kinds.
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// Environment overrides applied by Load. They are never written back to disk.
const (
	EnvSourcePath    = "TRAILVIEW_SOURCE_PATH"
	EnvServerAddress = "TRAILVIEW_SERVER_ADDRESS"
)

// Config holds the application configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Playback PlaybackConfig `yaml:"playback"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Console  ConsoleConfig  `yaml:"console"`
}

// SourceConfig selects where the recording is read from.
type SourceConfig struct {
	Kind  string `yaml:"kind"`  // "csv", "sqlite"
	Path  string `yaml:"path"`  // CSV file or SQLite database
	Table string `yaml:"table"` // sqlite only
}

// PlaybackConfig holds replay settings.
type PlaybackConfig struct {
	Interval Duration `yaml:"interval"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// ConsoleConfig controls the terminal viewer.
type ConsoleConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:  SourceCSV,
			Path:  "./data/telemetry.csv",
			Table: "samples",
		},
		Playback: PlaybackConfig{
			Interval: Duration(100 * time.Millisecond),
		},
		Server: ServerConfig{
			Address: "localhost:1921",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		Console: ConsoleConfig{
			Enabled: false,
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT save back to disk.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvSourcePath); v != "" {
		cfg.Source.Path = v
	}
	if v := os.Getenv(EnvServerAddress); v != "" {
		cfg.Server.Address = v
	}
}

var tableRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate reports settings the application cannot start with.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case "", SourceCSV, SourceSQLite:
	default:
		return fmt.Errorf("invalid source kind '%s': must be '%s' or '%s'", c.Source.Kind, SourceCSV, SourceSQLite)
	}
	if c.Source.Kind == SourceSQLite && c.Source.Table != "" && !tableRe.MatchString(c.Source.Table) {
		return fmt.Errorf("invalid source table '%s'", c.Source.Table)
	}
	if c.Playback.Interval <= 0 {
		return fmt.Errorf("playback interval must be positive, got %s", time.Duration(c.Playback.Interval))
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# trailview Configuration
# ----------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
# Environment overrides: TRAILVIEW_SOURCE_PATH, TRAILVIEW_SERVER_ADDRESS

`)
	data = append(header, data...)

	reKind := regexp.MustCompile(`(?m)^(\s+)kind:`)
	data = reKind.ReplaceAll(data, []byte("${1}# Options: csv, sqlite\n${1}kind:"))

	reLevel := regexp.MustCompile(`(?m)^(\s+)level:`)
	data = reLevel.ReplaceAll(data, []byte("${1}# Options: DEBUG, INFO, WARN, ERROR\n${1}level:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
