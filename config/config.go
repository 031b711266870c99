package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/agriclimate/schema"
)

// Environment variables that override the file.
const (
	EnvData   = "AGRICLIMATE_DATA"
	EnvAddr   = "AGRICLIMATE_ADDR"
	EnvSchema = "AGRICLIMATE_SCHEMA"
	EnvLevel  = "AGRICLIMATE_LOG_LEVEL"
)

// DefaultDataPath is where the dataset lives unless configured otherwise.
const DefaultDataPath = "data/climate_change_impact_on_agriculture_2024.csv"

// Config holds all agriclimate configuration.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Server  ServerConfig  `yaml:"server"`
	Render  RenderConfig  `yaml:"render"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig locates and describes the dataset.
type DataConfig struct {
	// Source is a file path or an http(s) URL.
	Source string `yaml:"source"`
	// Schema names a preset; ignored when Columns is set.
	Schema  string         `yaml:"schema"`
	Columns *schema.Schema `yaml:"columns,omitempty"`

	Watch       bool   `yaml:"watch"`
	Debounce    string `yaml:"debounce"`
	LoadTimeout string `yaml:"load_timeout"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// RenderConfig sets chart dimensions and colours.
type RenderConfig struct {
	Width   int      `yaml:"width"`
	Height  int      `yaml:"height"`
	Palette []string `yaml:"palette,omitempty"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level    string `yaml:"level"`    // debug, info, warn, error
	Encoding string `yaml:"encoding"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Source:      DefaultDataPath,
			Schema:      schema.PresetKaggle2024,
			Watch:       true,
			Debounce:    "500ms",
			LoadTimeout: "30s",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "10s",
			WriteTimeout:    "30s",
			ShutdownTimeout: "10s",
		},
		Render: RenderConfig{
			Width:  800,
			Height: 500,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
			// Defaults.
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvData); v != "" {
		c.Data.Source = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvSchema); v != "" {
		c.Data.Schema = v
		c.Data.Columns = nil
	}
	if v := os.Getenv(EnvLevel); v != "" {
		c.Logging.Level = v
	}
}

// ResolveSchema returns the explicit column layout if set, else the preset.
func (c *Config) ResolveSchema() (schema.Schema, error) {
	if c.Data.Columns != nil {
		sch := *c.Data.Columns
		if sch.Name == "" {
			sch.Name = "custom"
		}
		if err := sch.Validate(); err != nil {
			return schema.Schema{}, err
		}
		return sch, nil
	}
	return schema.Preset(c.Data.Schema)
}

// ============================================================================
// DURATION GETTERS
// ============================================================================

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// GetDebounce returns the watcher debounce window.
func (c *Config) GetDebounce() time.Duration {
	return parseDuration(c.Data.Debounce, 500*time.Millisecond)
}

// GetLoadTimeout returns the dataset fetch timeout.
func (c *Config) GetLoadTimeout() time.Duration {
	return parseDuration(c.Data.LoadTimeout, 30*time.Second)
}

// GetReadTimeout returns the HTTP read timeout.
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 10*time.Second)
}

// GetWriteTimeout returns the HTTP write timeout.
func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 30*time.Second)
}

// GetShutdownTimeout returns how long graceful shutdown may take.
func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// GetLogLevel parses the configured level, defaulting to info.
func (c *Config) GetLogLevel() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// ValidEncodings lists the supported log encodings.
var ValidEncodings = []string{"json", "console"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Data.Source) == "" {
		return fmt.Errorf("data source not configured (set data.source or %s)", EnvData)
	}
	if _, err := c.ResolveSchema(); err != nil {
		return err
	}
	if c.Render.Width < 0 || c.Render.Height < 0 {
		return fmt.Errorf("invalid render size %dx%d", c.Render.Width, c.Render.Height)
	}
	for _, col := range c.Render.Palette {
		if !isHexColor(col) {
			return fmt.Errorf("invalid palette colour %q (want #rrggbb)", col)
		}
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	validEncoding := false
	for _, e := range ValidEncodings {
		if c.Logging.Encoding == e {
			validEncoding = true
			break
		}
	}
	if !validEncoding {
		return fmt.Errorf("invalid log encoding: %s (valid: %v)", c.Logging.Encoding, ValidEncodings)
	}
	return nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
