// Package config loads schemactl settings from an optional TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/goliatone/go-endpointschema/pkg/codec"
	"github.com/goliatone/go-endpointschema/pkg/schema"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "SCHEMACTL_CONFIG"

// DefaultPath is read when neither a flag nor EnvPath names a file. A missing
// default file is not an error.
const DefaultPath = "schemactl.toml"

// Config is the CLI configuration. Zero fields fall back to Default.
type Config struct {
	StoreDir    string `toml:"store_dir"`
	Format      string `toml:"format"`
	LogLevel    string `toml:"log_level"`
	DefaultMode string `toml:"default_mode"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		StoreDir: "schemas",
		Format:   string(codec.FormatYAML),
		LogLevel: "info",
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := codec.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("config: format: %w", err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.DefaultMode != "" && !schema.Mode(c.DefaultMode).IsValid() {
		return fmt.Errorf("config: default_mode: unknown mode %q", c.DefaultMode)
	}
	if strings.TrimSpace(c.StoreDir) == "" {
		return errors.New("config: store_dir must not be empty")
	}
	return nil
}

// Level returns the parsed log level.
func (c Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// Mode returns DefaultMode as a schema mode; empty when unset.
func (c Config) Mode() schema.Mode {
	return schema.Mode(strings.ToUpper(strings.TrimSpace(c.DefaultMode)))
}

// Merge overlays the non-empty fields of other onto c.
func (c Config) Merge(other Config) Config {
	if other.StoreDir != "" {
		c.StoreDir = other.StoreDir
	}
	if other.Format != "" {
		c.Format = other.Format
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.DefaultMode != "" {
		c.DefaultMode = other.DefaultMode
	}
	return c
}

// Parse decodes TOML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	var file Config
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	cfg := Default().Merge(file)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads path, falling back to EnvPath and then DefaultPath when path is
// empty. Only an explicitly named file must exist.
func Load(path string) (Config, error) {
	return load(path, DefaultPath)
}

func load(path, fallback string) (Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		path, explicit = fallback, false
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is operator supplied
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%w (%s)", err, path)
	}
	return cfg, nil
}

// ParseLevel accepts debug, info, warn and error, case-insensitively.
func ParseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log_level: unknown level %q", raw)
	}
	return level, nil
}
