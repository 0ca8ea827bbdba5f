package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/cli/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !output.OutputMode(c.OutputFormat).IsValid() {
		return fmt.Errorf("invalid output format %q (expected one of: %s)",
			c.OutputFormat, strings.Join(output.ValidModes, ", "))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}
	if c.Export.TextFile == "" {
		return fmt.Errorf("export.text_file is required")
	}
	if c.Export.CSVFile == "" {
		return fmt.Errorf("export.csv_file is required")
	}
	if c.UI.Port < 0 || c.UI.Port > 65535 {
		return fmt.Errorf("ui.port must be between 0 and 65535, got %d", c.UI.Port)
	}
	if c.UI.Debounce < 0 {
		return fmt.Errorf("ui.debounce must not be negative")
	}
	if c.UI.ShutdownTimeout <= 0 {
		return fmt.Errorf("ui.shutdown_timeout must be positive")
	}
	if c.UI.MaxViews <= 0 {
		return fmt.Errorf("ui.max_views must be positive, got %d", c.UI.MaxViews)
	}
	return nil
}

// ParseLogLevel maps a level name to a slog level. The empty string is Warn.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q (expected debug, info, warn or error)", s)
	}
}

// Level returns the effective log level. An explicit log_level wins over
// verbose, which selects Debug.
func (c *Config) Level() slog.Level {
	if c.LogLevel == "" && c.Verbose {
		return slog.LevelDebug
	}
	lvl, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return lvl
}
