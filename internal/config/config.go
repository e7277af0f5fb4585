// Package config loads CLI and server settings from a YAML (or JSON) file
// overlaid by REWIND_* environment variables.
package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/rewind/pkg/schema"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "REWIND_"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config is the full runtime configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" json:"store" envPrefix:"STORE_"`
	History    HistoryConfig    `yaml:"history" json:"history" envPrefix:"HISTORY_"`
	Encryption EncryptionConfig `yaml:"encryption" json:"encryption" envPrefix:"ENCRYPTION_"`
	HTTP       HTTPConfig       `yaml:"http" json:"http" envPrefix:"HTTP_"`
	Metrics    MetricsConfig    `yaml:"metrics" json:"metrics" envPrefix:"METRICS_"`
	Log        LogConfig        `yaml:"log" json:"log" envPrefix:"LOG_"`
}

// StoreConfig selects and configures the session store.
type StoreConfig struct {
	Backend string      `yaml:"backend" json:"backend" env:"BACKEND"`
	Path    string      `yaml:"path" json:"path" env:"PATH"`
	Redis   RedisConfig `yaml:"redis" json:"redis" envPrefix:"REDIS_"`
}

// RedisConfig configures the Redis store and its distributed locker.
type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr" env:"ADDR"`
	Password string        `yaml:"password" json:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" json:"db" env:"DB"`
	Prefix   string        `yaml:"prefix" json:"prefix" env:"PREFIX"`
	TTL      time.Duration `yaml:"ttl" json:"ttl" env:"TTL"`
	LockTTL  time.Duration `yaml:"lock_ttl" json:"lock_ttl" env:"LOCK_TTL"`
}

// HistoryConfig shapes every session's document and timeline.
type HistoryConfig struct {
	MaxEntries int               `yaml:"max_entries" json:"max_entries" env:"MAX_ENTRIES"`
	Slices     []string          `yaml:"slices" json:"slices" env:"SLICES" envSeparator:","`
	FieldTypes map[string]string `yaml:"field_types" json:"field_types" env:"FIELD_TYPES"`
}

// EncryptionConfig holds at-rest protection settings.
// Keys are base64 encoded and only read from the environment.
type EncryptionConfig struct {
	Key          string   `yaml:"-" json:"-" env:"KEY"`
	FallbackKeys []string `yaml:"-" json:"-" env:"FALLBACK_KEYS" envSeparator:","`
	Redact       []string `yaml:"redact" json:"redact" env:"REDACT" envSeparator:","`
}

// HTTPConfig configures the HTTP API.
type HTTPConfig struct {
	Addr        string   `yaml:"addr" json:"addr" env:"ADDR"`
	CORSOrigins []string `yaml:"cors_origins" json:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
}

// MetricsConfig configures the Prometheus endpoint.
// An empty Addr serves /metrics on the HTTP API listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled" env:"ENABLED"`
	Addr    string `yaml:"addr" json:"addr" env:"ADDR"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level string `yaml:"level" json:"level" env:"LEVEL"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend: BackendMemory,
			Path:    ".rewind",
			Redis: RedisConfig{
				Addr:    "localhost:6379",
				LockTTL: 30 * time.Second,
			},
		},
		HTTP: HTTPConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the file at path over the defaults, then applies the environment.
// A missing file is not an error; an empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Validate checks values that cannot be caught by decoding.
func (c Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendMemory, BackendRedis:
	case BackendFile:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for the file backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}

	if c.History.MaxEntries < 0 {
		errs = append(errs, errors.New("history.max_entries cannot be negative"))
	}

	if _, err := schema.Parse(c.History.FieldTypes); err != nil {
		errs = append(errs, fmt.Errorf("history.field_types: %w", err))
	}

	if _, _, err := c.Encryption.Keys(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Keys decodes the encryption keys. A nil active key means encryption is off.
func (e EncryptionConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if e.Key == "" {
		return nil, nil, nil
	}
	if active, err = decodeKey(e.Key); err != nil {
		return nil, nil, fmt.Errorf("encryption.key: %w", err)
	}
	for i, k := range e.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("encryption.fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
