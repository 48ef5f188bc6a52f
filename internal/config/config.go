// Package config handles reading and writing config.yaml in the data directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/intentional-app/intentional/internal/deeplink"
	"github.com/intentional-app/intentional/internal/store"
)

// Environment variables that override the file.
const (
	EnvMode    = "INTENTIONAL_ENV"
	EnvDataDir = "INTENTIONAL_DATA_DIR"
)

// Config is the top-level structure for config.yaml.
type Config struct {
	Version     int               `yaml:"version"`
	Environment EnvironmentConfig `yaml:"environment"`
	Storage     StorageConfig     `yaml:"storage"`
	Retention   RetentionConfig   `yaml:"retention"`
	Questions   QuestionsConfig   `yaml:"questions"`
	Log         LogConfig         `yaml:"log"`
	Timezone    string            `yaml:"timezone"` // IANA name, empty for the system zone
}

// EnvironmentConfig selects the deep-link scheme family.
type EnvironmentConfig struct {
	Mode          string   `yaml:"mode"` // "production" | "development"
	AppScheme     string   `yaml:"app_scheme"`
	TunnelSchemes []string `yaml:"tunnel_schemes"`
	TunnelHost    string   `yaml:"tunnel_host"`
	TunnelPort    int      `yaml:"tunnel_port"`
}

// StorageConfig picks the store backend.
type StorageConfig struct {
	Backend string `yaml:"backend"` // "sqlite" | "memory"
	Path    string `yaml:"path"`    // relative to the data directory
}

// RetentionConfig bounds the stored history.
type RetentionConfig struct {
	Sessions        int `yaml:"sessions"`
	QuestionHistory int `yaml:"question_history"`
}

// QuestionsConfig tunes question selection.
type QuestionsConfig struct {
	RecentDays int `yaml:"recent_days"`
}

// LogConfig controls the diagnostic log.
type LogConfig struct {
	Level string `yaml:"level"`
}

const configFile = "config.yaml"

// DataDir returns the data directory: $INTENTIONAL_DATA_DIR, or
// intentional/ under the user config directory.
func DataDir() (string, error) {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(base, "intentional"), nil
}

// ReadConfig reads config.yaml from dir, applies environment overrides and
// validates the result.
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault reads config.yaml from dir, falling back to the defaults
// when the file does not exist.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := ReadConfig(dir)
	if err == nil {
		return cfg, nil
	}
	if _, statErr := os.Stat(filepath.Join(dir, configFile)); os.IsNotExist(statErr) {
		cfg = DefaultConfig()
		cfg.applyEnv()
		return cfg, cfg.Validate()
	}
	return nil, err
}

// WriteConfig writes cfg to config.yaml in dir.
// Creates dir if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dir, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Environment: EnvironmentConfig{
			Mode:          string(deeplink.FamilyProduction),
			AppScheme:     "intentional",
			TunnelSchemes: []string{"exp", "exps"},
			TunnelHost:    "localhost",
			TunnelPort:    8081,
		},
		Storage: StorageConfig{
			Backend: "sqlite",
			Path:    "intentional.db",
		},
		Retention: RetentionConfig{
			Sessions:        store.DefaultMaxSessions,
			QuestionHistory: store.DefaultMaxHistory,
		},
		Questions: QuestionsConfig{
			RecentDays: 14,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func (c *Config) applyEnv() {
	if mode := os.Getenv(EnvMode); mode != "" {
		c.Environment.Mode = mode
	}
}

// Validate rejects unknown modes and backends and unparseable zones.
func (c *Config) Validate() error {
	switch deeplink.Family(c.Environment.Mode) {
	case deeplink.FamilyProduction, deeplink.FamilyDevelopment:
	default:
		return fmt.Errorf("config: unknown environment mode %q", c.Environment.Mode)
	}
	if c.Environment.AppScheme == "" {
		return fmt.Errorf("config: environment.app_scheme is required")
	}
	switch c.Storage.Backend {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// DeepLinkEnvironment resolves the scheme environment once at startup.
func (c *Config) DeepLinkEnvironment() deeplink.Environment {
	env := deeplink.Environment{
		Family:    deeplink.Family(c.Environment.Mode),
		AppScheme: c.Environment.AppScheme,
	}
	if env.Family == deeplink.FamilyDevelopment {
		env.TunnelSchemes = c.Environment.TunnelSchemes
		env.TunnelHost = c.Environment.TunnelHost
		env.TunnelPort = c.Environment.TunnelPort
	}
	return env
}

// Location returns the zone used for time-of-day rules.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone: %w", err)
	}
	return loc, nil
}

// StoreOptions returns the retention settings for the store.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		MaxSessions: c.Retention.Sessions,
		MaxHistory:  c.Retention.QuestionHistory,
	}
}

// StorePath returns the database path, resolved against dir.
func (c *Config) StorePath(dir string) string {
	if filepath.IsAbs(c.Storage.Path) {
		return c.Storage.Path
	}
	return filepath.Join(dir, c.Storage.Path)
}

// OpenStore opens the configured backend.
func (c *Config) OpenStore(dir string) (store.Store, error) {
	if c.Storage.Backend == "memory" {
		return store.NewMemory(c.StoreOptions()), nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return store.OpenSQLite(c.StorePath(dir), c.StoreOptions())
}
