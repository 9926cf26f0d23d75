// Package config provides configuration management for workdesk.
// Configurations are loaded from TOML files with XDG-compliant paths.
package config

import (
	"errors"
	"fmt"
)

// Config holds the complete application configuration.
type Config struct {
	Workshop WorkshopConfig `toml:"workshop"`
	Display  DisplayConfig  `toml:"display"`
	Logging  LoggingConfig  `toml:"logging"`
	Database DatabaseConfig `toml:"database"`
}

// WorkshopConfig contains organization identity settings.
type WorkshopConfig struct {
	Name        string `toml:"name"`
	Department  string `toml:"department"`
	DefaultUnit string `toml:"default_unit"`
}

// DisplayConfig controls TUI appearance.
type DisplayConfig struct {
	ColorScheme ColorScheme `toml:"color_scheme"`
	DateFormat  string      `toml:"date_format"`
	TimeFormat  string      `toml:"time_format"`
}

// ColorScheme defines the terminal color palette.
type ColorScheme string

const (
	ColorSchemeGreen ColorScheme = "green"
	ColorSchemeAmber ColorScheme = "amber"
	ColorSchemeWhite ColorScheme = "white"
)

// LoggingConfig controls application logging.
type LoggingConfig struct {
	Level      LogLevel `toml:"level"`
	File       string   `toml:"file"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// LogLevel defines logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// DatabaseConfig controls SQLite database settings.
type DatabaseConfig struct {
	Path                string `toml:"path"`
	BackupIntervalHours int    `toml:"backup_interval_hours"`
	BackupRetentionDays int    `toml:"backup_retention_days"`
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Workshop.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("workshop: %w", err))
	}
	if err := c.Display.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("display: %w", err))
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}
	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks workshop identity settings.
func (w *WorkshopConfig) Validate() error {
	if w.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// Validate checks display settings.
func (d *DisplayConfig) Validate() error {
	switch d.ColorScheme {
	case ColorSchemeGreen, ColorSchemeAmber, ColorSchemeWhite:
		return nil
	default:
		return fmt.Errorf("unknown color_scheme %q", d.ColorScheme)
	}
}

// Validate checks logging settings.
func (l *LoggingConfig) Validate() error {
	switch l.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("unknown level %q", l.Level)
	}
	if l.MaxSizeMB < 0 {
		return errors.New("max_size_mb must be non-negative")
	}
	if l.MaxBackups < 0 {
		return errors.New("max_backups must be non-negative")
	}
	return nil
}

// Validate checks database settings.
func (d *DatabaseConfig) Validate() error {
	if d.Path == "" {
		return errors.New("path is required")
	}
	if d.BackupIntervalHours < 0 {
		return errors.New("backup_interval_hours must be non-negative")
	}
	if d.BackupRetentionDays < 0 {
		return errors.New("backup_retention_days must be non-negative")
	}
	return nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Workshop: WorkshopConfig{
			Name:        "Workshop",
			Department:  "",
			DefaultUnit: "шт",
		},
		Display: DisplayConfig{
			ColorScheme: ColorSchemeGreen,
			DateFormat:  "2006-01-02",
			TimeFormat:  "15:04",
		},
		Logging: LoggingConfig{
			Level:      LogLevelInfo,
			File:       "workdesk.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Database: DatabaseConfig{
			Path:                "workdesk.db",
			BackupIntervalHours: 24,
			BackupRetentionDays: 30,
		},
	}
}
