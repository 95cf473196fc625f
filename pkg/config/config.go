package config

import (
	"time"

	"github.com/sdejongh/renamr/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Rename  RenameConfig  `yaml:"rename" mapstructure:"rename"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Exclude []string      `yaml:"exclude" mapstructure:"exclude"`
}

// RenameConfig holds the default rule and preview timing
type RenameConfig struct {
	Pattern         string        `yaml:"pattern" mapstructure:"pattern"`
	Replacement     string        `yaml:"replacement" mapstructure:"replacement"`
	RegexTimeout    time.Duration `yaml:"regex_timeout" mapstructure:"regex_timeout"`
	PreviewDebounce time.Duration `yaml:"preview_debounce" mapstructure:"preview_debounce"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format" mapstructure:"format"`     // "human" or "json"
	Progress bool   `yaml:"progress" mapstructure:"progress"` // Show progress bar during apply
	Quiet    bool   `yaml:"quiet" mapstructure:"quiet"`       // Suppress non-error output
	Color    bool   `yaml:"color" mapstructure:"color"`       // Colour states in human output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	Format     string `yaml:"format" mapstructure:"format"` // "json" or "text"
	Level      string `yaml:"level" mapstructure:"level"`   // "debug", "info", "warn", "error"
	File       string `yaml:"file" mapstructure:"file"`     // Log file path (empty = no file log)
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Rename: RenameConfig{
			RegexTimeout:    5 * time.Millisecond,
			PreviewDebounce: 0,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Quiet:    false,
			Color:    true,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Format:     "json",
			Level:      "info",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Exclude: []string{
			".git/",
			"*.tmp",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Rename.RegexTimeout < 0 {
		return &models.ValidationError{
			Field:   "rename.regex_timeout",
			Message: "must not be negative",
		}
	}

	if c.Rename.PreviewDebounce < 0 {
		return &models.ValidationError{
			Field:   "rename.preview_debounce",
			Message: "must not be negative",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 {
		return &models.ValidationError{
			Field:   "logging.max_size_mb",
			Message: "rotation limits must not be negative",
		}
	}

	return nil
}
