package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Color modes for report output.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the fulfill.yaml configuration.
type Config struct {
	// LogLevel is a zap level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level,omitempty"`

	// Color controls ANSI colors in reports: auto, always or never.
	// Auto enables colors only when stdout is a terminal.
	Color string `yaml:"color,omitempty"`

	// Catalog is the path of the SQLite impl catalog.
	Catalog string `yaml:"catalog,omitempty"`

	// Chain prints the full cause chain under each error.
	Chain bool `yaml:"chain,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{LogLevel: "info", Color: ColorAuto, Catalog: DefaultCatalogPath}
}

// ParseConfig parses and validates configuration data. Missing fields keep
// their defaults.
func ParseConfig(data []byte, filename string) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

// LoadConfig reads path. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data, path)
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode %q (want auto, always or never)", c.Color)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return nil
}
