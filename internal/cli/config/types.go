// Package config provides configuration management for the lineage-explorer CLI.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	StatePath    string       `koanf:"state_path"`
	OutputFormat string       `koanf:"output"`
	Verbose      bool         `koanf:"verbose"`
	LogLevel     string       `koanf:"log_level"`
	Export       ExportConfig `koanf:"export"`
	UI           UIConfig     `koanf:"ui"`

	// ProjectRoot is the directory relative paths resolve against.
	ProjectRoot string `koanf:"-"`
}

// ExportConfig controls where export writes its files.
type ExportConfig struct {
	Dir      string `koanf:"dir"`
	TextFile string `koanf:"text_file"`
	CSVFile  string `koanf:"csv_file"`
}

// UIConfig holds configuration for the web server.
type UIConfig struct {
	Port            int           `koanf:"port"`
	SessionSecret   string        `koanf:"session_secret"`
	Watch           bool          `koanf:"watch"`
	Debounce        time.Duration `koanf:"debounce"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxViews        int           `koanf:"max_views"`
}

// Default configuration values.
const (
	DefaultStateFile       = ".lineage-explorer/state.db"
	DefaultOutput          = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultExportDir       = "."
	DefaultTextFile        = "lineage.txt"
	DefaultCSVFile         = "lineage.csv"
	DefaultPort            = 8765
	DefaultDebounce        = 200 * time.Millisecond
	DefaultShutdownTimeout = 5 * time.Second
	DefaultMaxViews        = 1024
)

// Default returns a Config populated with defaults only.
func Default() *Config {
	return &Config{
		StatePath:    DefaultStateFile,
		OutputFormat: DefaultOutput,
		Export: ExportConfig{
			Dir:      DefaultExportDir,
			TextFile: DefaultTextFile,
			CSVFile:  DefaultCSVFile,
		},
		UI: UIConfig{
			Port:            DefaultPort,
			Watch:           true,
			Debounce:        DefaultDebounce,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxViews:        DefaultMaxViews,
		},
	}
}
