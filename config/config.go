// Package config loads the client configuration from a TOML file under the
// user config dir, with environment overrides for scripted use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const envBaseURL = "REELRATE_API_URL"

// Config is the application configuration.
type Config struct {
	API APIConfig `toml:"api"`
}

// APIConfig locates the remote movie rating API.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the transport timeout; the gateway has no policy beyond it.
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 12 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:5000",
			TimeoutSeconds: 12,
		},
	}
}

// Load reads and parses a TOML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	config := Default()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return config, nil
}

// Resolve builds the effective configuration: defaults, overlaid by the
// config file when present, overlaid by the environment. A config file that
// exists but cannot be parsed leaves the defaults in place; the parse error
// is returned alongside so the caller can warn instead of silently pointing
// the client at the default endpoint.
func Resolve() (*Config, error) {
	config := Default()
	var loadErr error
	if path, err := Path(); err == nil {
		if _, err := os.Stat(path); err == nil {
			loaded, err := Load(path)
			if err != nil {
				loadErr = err
			} else {
				config = loaded
			}
		}
	}
	if url := os.Getenv(envBaseURL); url != "" {
		config.API.BaseURL = url
	}
	return config, loadErr
}

// Path returns the expected config file location.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "reelrate", "config.toml"), nil
}
