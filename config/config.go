// Package config loads hostelctl configuration.
//
// Sources are layered, later ones winning:
//
//  1. built-in defaults
//  2. an optional YAML file ($HOSTEL_CONFIG, then DefaultPaths)
//  3. HOSTEL_ environment variables
//
// Environment names map to keys by lower-casing and turning "__" into a
// section separator: HOSTEL_API__BASE_URL sets api.base_url and
// HOSTEL_API__BREAKER__ENABLED sets api.breaker.enabled.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-hostel-admin/auth"
	"github.com/goliatone/go-hostel-admin/cache"
	"github.com/goliatone/go-hostel-admin/internal/logging"
	"github.com/goliatone/go-hostel-admin/internal/validation"
	"github.com/goliatone/go-hostel-admin/query"
	"github.com/goliatone/go-hostel-admin/transport"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "HOSTEL_"
	// PathEnvVar names an explicit config file.
	PathEnvVar = "HOSTEL_CONFIG"

	TextCodeInvalidConfig = "INVALID_CONFIG"
)

// DefaultPaths are searched in order when no path is given.
var DefaultPaths = []string{
	"hostelctl.yaml",
	"hostelctl.yml",
}

// Config is the complete client configuration.
type Config struct {
	API     transport.Config   `koanf:"api"`
	Query   query.Config       `koanf:"query"`
	Cache   cache.Config       `koanf:"cache"`
	Auth    auth.StorageConfig `koanf:"auth"`
	Logging logging.Config     `koanf:"logging"`
	Metrics MetricsConfig      `koanf:"metrics"`
}

// MetricsConfig controls the Prometheus collectors.
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		API:     transport.DefaultConfig(),
		Query:   query.DefaultConfig(),
		Cache:   cache.DefaultConfig(),
		Auth:    auth.DefaultStorageConfig(),
		Logging: logging.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, the YAML file at path (or the
// first file found when path is empty) and the environment.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, errors.Wrap(err, errors.CategoryInternal, "load default configuration")
	}

	if path == "" {
		path = findFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, errors.Wrap(err, errors.CategoryBadInput, "load configuration file").
				WithTextCode(TextCodeInvalidConfig).
				WithMetadata(map[string]any{"path": path})
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, errors.Wrap(err, errors.CategoryInternal, "load environment configuration")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, errors.CategoryBadInput, "decode configuration").
			WithTextCode(TextCodeInvalidConfig)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	return validation.Struct(c, "invalid configuration")
}

func findFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		p := filepath.Join(dir, "hostelctl", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envKey maps HOSTEL_API__BASE_URL to api.base_url. Names without a section
// separator are ignored, and so is HOSTEL_CONFIG.
func envKey(name string) string {
	if name == PathEnvVar {
		return ""
	}
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	if !strings.Contains(key, "__") {
		return ""
	}
	return strings.ReplaceAll(key, "__", ".")
}
