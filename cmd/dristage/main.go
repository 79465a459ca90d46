// Package main implements dristage, which stages legacy archival
// catalogue records into the triple store.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/nationalarchives/dri-data-migration-sub000/config"
	"github.com/nationalarchives/dri-data-migration-sub000/staging"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "dristage"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cliCfg, logger, shouldExit, err := initializeCLI(args, stdout, stderr)
	if shouldExit || err != nil {
		return err
	}

	cfg, err := initializeConfiguration(cliCfg)
	if err != nil {
		return err
	}

	if cliCfg.Validate {
		logger.Info("Configuration is valid", "config", cfg.String())
		return nil
	}

	report, err := newApp(cfg, cliCfg, logger).execute(ctx)
	logReport(logger, report)
	if err != nil {
		return fmt.Errorf("staging run: %w", err)
	}

	totals := report.Totals()
	logger.Info("Staging complete",
		"processed", totals.Processed,
		"updated", totals.Updated,
		"unchanged", totals.Unchanged,
		"skipped", totals.Skipped,
		"failed", totals.Failed,
		"duration", report.Duration)
	return nil
}

// initializeCLI parses flags and sets up logging
func initializeCLI(args []string, stdout, stderr io.Writer) (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg, err := parseFlags(args, stderr)
	if err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		_, _ = fmt.Fprintf(stdout, "%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat, stdout)
	slog.SetDefault(logger)

	logger.Info("Starting dristage",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath,
		"dry_run", cliCfg.DryRun)

	return cliCfg, logger, false, nil
}

// initializeConfiguration loads the configuration layers and applies
// command-line overrides before validating.
func initializeConfiguration(cliCfg *CLIConfig) (*config.Config, error) {
	loader := config.NewLoader()
	if cliCfg.ConfigPath != "" {
		loader.AddLayer(cliCfg.ConfigPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cliCfg.InputDir != "" {
		cfg.Input.Directory = cliCfg.InputDir
	}
	if cliCfg.Kinds != "" {
		kinds, err := staging.ParseKinds(cliCfg.Kinds)
		if err != nil {
			return nil, fmt.Errorf("invalid --kinds: %w", err)
		}
		cfg.Input.Kinds = make([]string, len(kinds))
		for i, k := range kinds {
			cfg.Input.Kinds[i] = k.String()
		}
	}

	validate := cfg.Validate
	if cliCfg.DryRun {
		validate = cfg.ValidateOffline
	}
	if err := validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if info, err := os.Stat(cfg.Input.Directory); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("input directory %s is not readable", cfg.Input.Directory)
	}

	return cfg, nil
}
