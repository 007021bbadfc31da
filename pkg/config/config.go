package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = ".envdefs.yaml"

// Config defines runtime settings for envdefs.
type Config struct {
	EnvFile   string    `yaml:"envFile"`
	Format    string    `yaml:"format"`
	Output    string    `yaml:"output"`
	LogLevel  string    `yaml:"logLevel"`
	LogFormat string    `yaml:"logFormat"`
	Run       RunConfig `yaml:"run"`
}

// RunConfig controls `envdefs run`.
type RunConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

func Default() *Config {
	return &Config{
		EnvFile:   ".env",
		Format:    "header",
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

// LoadConfig loads configuration from a YAML file and environment overrides.
// A missing file is only an error when required is set.
func LoadConfig(path string, required bool) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !required:
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if v := os.Getenv("ENVDEFS_ENV_FILE"); v != "" {
		cfg.EnvFile = v
	}
	if v := os.Getenv("ENVDEFS_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("ENVDEFS_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("ENVDEFS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ENVDEFS_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("ENVDEFS_RUN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse ENVDEFS_RUN_TIMEOUT: %w", err)
		}
		cfg.Run.Timeout = d
	}

	return cfg, nil
}

// DefaultConfigPath returns the config file used when --config is not given.
func DefaultConfigPath() string {
	if path := os.Getenv("ENVDEFS_CONFIG"); path != "" {
		return path
	}
	return DefaultFile
}
