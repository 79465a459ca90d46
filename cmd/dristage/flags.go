package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	InputDir        string
	Kinds           string
	LogLevel        string
	LogFormat       string
	DryRun          bool
	ShutdownTimeout time.Duration
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool
}

func parseFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&cfg.ConfigPath, "config",
		getEnv("DRISTAGE_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: DRISTAGE_CONFIG)")

	fs.StringVar(&cfg.ConfigPath, "c",
		getEnv("DRISTAGE_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: DRISTAGE_CONFIG)")

	fs.StringVar(&cfg.InputDir, "input-dir", "",
		"Directory of <kind>.jsonl record files, overrides input.directory")

	fs.StringVar(&cfg.Kinds, "kinds", "",
		"Comma-separated kinds to stage, overrides input.kinds")

	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("DRISTAGE_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: DRISTAGE_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("DRISTAGE_LOG_FORMAT", "json"),
		"Log format: json, text (env: DRISTAGE_LOG_FORMAT)")

	fs.BoolVar(&cfg.DryRun, "dry-run",
		getEnvBool("DRISTAGE_DRY_RUN", false),
		"Stage into an in-memory store and log the diffs (env: DRISTAGE_DRY_RUN)")

	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("DRISTAGE_SHUTDOWN_TIMEOUT", 10*time.Second),
		"Graceful shutdown timeout (env: DRISTAGE_SHUTDOWN_TIMEOUT)")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	fs.Usage = func() {
		printDetailedHelp(fs, stderr)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if cfg.ShowHelp {
		fs.Usage()
	}
	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	if !slices.Contains([]string{"json", "text"}, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %s", cfg.ShutdownTimeout)
	}

	return nil
}

func printDetailedHelp(fs *flag.FlagSet, w io.Writer) {
	_, _ = fmt.Fprintf(w, `%s - stage legacy catalogue records into the triple store

Usage: %s [options]

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(w, `
Examples:
  # Stage every kind found in a directory
  %s --config=dristage.yaml --input-dir=/data/export

  # Re-stage only assets and variations, logging text
  %s --config=dristage.yaml --kinds=asset,variation --log-format=text

  # Show what would change without writing to the store
  %s --input-dir=/data/export --dry-run --log-level=debug

  # Validate configuration only
  %s --config=dristage.yaml --validate

Version: %s
Build: %s
`, appName, appName, appName, appName, Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
