package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// fileConfig is the optional on-disk configuration. Flags override it.
type fileConfig struct {
	Scan    scanConfig    `mapstructure:"scan"`
	Mounts  mountsConfig  `mapstructure:"mounts"`
	Logging loggingConfig `mapstructure:"logging"`
}

type scanConfig struct {
	Workers  int `mapstructure:"workers"`
	TopFiles int `mapstructure:"top_files"`
}

type mountsConfig struct {
	ExcludeFSTypes []string `mapstructure:"exclude_fstypes"`
}

type loggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// loadConfig reads configPath when given, otherwise looks for
// ~/.config/diskscan/config.yaml. A missing default file is not an
// error.
func loadConfig(configPath string) (*fileConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("scan.workers", 0)
	v.SetDefault("scan.top_files", 0)
	v.SetDefault("mounts.exclude_fstypes", []string{})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "diskscan"))
		}
		v.SetConfigName("config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg fileConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *fileConfig) validate() error {
	if c.Scan.Workers < 0 {
		return fmt.Errorf("scan.workers must be >= 0")
	}
	if c.Scan.TopFiles < 0 {
		return fmt.Errorf("scan.top_files must be >= 0")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}
	return nil
}
