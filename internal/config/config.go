// Package config handles reading and writing ~/.sprout/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for config.yaml.
type Config struct {
	// APIBase is the root of the concept API, e.g. https://api.example.com
	APIBase string `yaml:"api_base"`
	// TimeoutSeconds bounds every remote call. Generous by default: step
	// generation is slow on the server side.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// StatePath locates the sqlite file holding the persisted session.
	StatePath string `yaml:"state_path"`
}

const configDir = ".sprout"
const configFile = "config.yaml"

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		APIBase:        "http://localhost:8000/api",
		TimeoutSeconds: 30,
		StatePath:      filepath.Join(home, configDir, "state.db"),
	}
}

// ReadConfig reads <home>/.sprout/config.yaml.
func ReadConfig(home string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(home, configDir, configFile))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// WriteConfig writes cfg to <home>/.sprout/config.yaml, creating the
// directory if needed.
func WriteConfig(home string, cfg *Config) error {
	dir := filepath.Join(home, configDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, configFile), data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Load resolves the effective configuration: config.yaml when present,
// defaults otherwise, then environment overrides. A .env file in the working
// directory is honored when present.
func Load() *Config {
	_ = godotenv.Load()
	cfg := DefaultConfig()
	if home, err := os.UserHomeDir(); err == nil {
		if fromFile, err := ReadConfig(home); err == nil {
			merge(cfg, fromFile)
		}
	}
	ApplyEnv(cfg)
	return cfg
}

// ApplyEnv overlays SPROUT_* environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("SPROUT_API_BASE"); v != "" {
		cfg.APIBase = v
	}
	if v := os.Getenv("SPROUT_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("SPROUT_STATE_PATH"); v != "" {
		cfg.StatePath = v
	}
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func merge(dst, src *Config) {
	if src.APIBase != "" {
		dst.APIBase = src.APIBase
	}
	if src.TimeoutSeconds > 0 {
		dst.TimeoutSeconds = src.TimeoutSeconds
	}
	if src.StatePath != "" {
		dst.StatePath = src.StatePath
	}
}
