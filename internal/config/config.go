package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full warden configuration.
type Config struct {
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// WorkspaceConfig declares the sandbox boundary.
type WorkspaceConfig struct {
	// Root is the sandbox root; file operations may not escape it.
	// Empty disables containment.
	Root string `mapstructure:"root"`
	// WorkingDir is the base for relative paths; defaults to Root.
	WorkingDir string `mapstructure:"working_dir"`
	// MaxReadBytes caps the size of files the read tool accepts.
	MaxReadBytes int64 `mapstructure:"max_read_bytes"`
}

// CacheConfig tunes the tool result cache.
type CacheConfig struct {
	MaxSize int           `mapstructure:"max_size"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			MaxSize: 256,
			TTL:     5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from an optional yaml file and WARDEN_* env
// variables layered over the defaults. A missing file is not an error unless
// it was requested explicitly.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	defaults := Default()
	v.SetDefault("workspace.root", defaults.Workspace.Root)
	v.SetDefault("workspace.working_dir", defaults.Workspace.WorkingDir)
	v.SetDefault("workspace.max_read_bytes", defaults.Workspace.MaxReadBytes)
	v.SetDefault("cache.max_size", defaults.Cache.MaxSize)
	v.SetDefault("cache.ttl", defaults.Cache.TTL)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	v.SetEnvPrefix("WARDEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("warden")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/warden")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
