package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nationalarchives/dri-data-migration-sub000/config"
	"github.com/nationalarchives/dri-data-migration-sub000/health"
	"github.com/nationalarchives/dri-data-migration-sub000/metric"
	"github.com/nationalarchives/dri-data-migration-sub000/natsclient"
	"github.com/nationalarchives/dri-data-migration-sub000/resolver"
	"github.com/nationalarchives/dri-data-migration-sub000/staging"
	"github.com/nationalarchives/dri-data-migration-sub000/storage"
	"github.com/nationalarchives/dri-data-migration-sub000/storage/memory"
	"github.com/nationalarchives/dri-data-migration-sub000/storage/sparql"
)

const natsConnectTimeout = 10 * time.Second

// app wires one staging run from a loaded configuration.
type app struct {
	cfg             *config.Config
	logger          *slog.Logger
	registry        *metric.MetricsRegistry
	monitor         *health.Monitor
	dryRun          bool
	shutdownTimeout time.Duration

	// store replaces the configured store when set.
	store storage.Store
}

func newApp(cfg *config.Config, cli *CLIConfig, logger *slog.Logger) *app {
	return &app{
		cfg:             cfg,
		logger:          logger,
		registry:        metric.NewMetricsRegistry(),
		monitor:         health.NewMonitor(),
		dryRun:          cli.DryRun,
		shutdownTimeout: cli.ShutdownTimeout,
	}
}

// execute loads the inputs and stages them, serving metrics alongside
// when enabled.
func (a *app) execute(ctx context.Context) (staging.Report, error) {
	kinds, err := a.cfg.Kinds()
	if err != nil {
		return staging.Report{}, err
	}

	in, err := loadInputs(a.cfg.Input.Directory, kinds)
	if err != nil {
		return staging.Report{}, fmt.Errorf("load inputs: %w", err)
	}

	store, err := a.newStore()
	if err != nil {
		return staging.Report{}, err
	}

	core := a.registry.CoreMetrics()
	opts := []staging.Option{
		staging.WithLogger(a.logger),
		staging.WithMetrics(core),
		staging.WithKinds(kinds...),
	}

	notifier, closeNotifier, err := a.newNotifier(ctx)
	if err != nil {
		return staging.Report{}, err
	}
	defer closeNotifier()
	if notifier != nil {
		opts = append(opts, staging.WithNotifier(notifier))
	}

	res, err := resolver.New(ctx, store, a.cfg.Resolver(),
		resolver.WithLogger(a.logger),
		resolver.WithMetrics(a.registry))
	if err != nil {
		return staging.Report{}, fmt.Errorf("create resolver: %w", err)
	}
	defer func() { _ = res.Close() }()

	runner := staging.NewRunner(store, res, opts...)

	g, gctx := errgroup.WithContext(ctx)

	var server *metric.Server
	if a.cfg.Metrics.Enabled {
		server = metric.NewServer(a.cfg.Metrics.Port, a.cfg.Metrics.Path, a.registry)
		server.SetHealthHandler(health.Handler(a.monitor, appName))
		a.logger.Info("Serving metrics", "address", server.Address())
		g.Go(server.Start)
	}

	var report staging.Report
	a.monitor.UpdateHealthy("ingest", "running")
	g.Go(func() error {
		defer a.stopServer(server)
		var runErr error
		report, runErr = runner.Run(gctx, in)
		a.reportHealth(report, runErr)
		return runErr
	})

	err = g.Wait()
	return report, err
}

func (a *app) reportHealth(report staging.Report, err error) {
	if err != nil {
		a.monitor.Update("ingest", health.FromError("ingest", err))
		return
	}
	if failed := report.Totals().Failed; failed > 0 {
		a.monitor.UpdateDegraded("ingest", fmt.Sprintf("%d records failed", failed))
		return
	}
	a.monitor.UpdateHealthy("ingest", "completed")
}

func (a *app) stopServer(server *metric.Server) {
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		a.logger.Warn("Metrics server did not stop cleanly", "error", err)
	}
}

func (a *app) newStore() (storage.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	if a.dryRun {
		a.logger.Info("Dry run: staging into an in-memory store")
		return memory.New(memory.WithLogger(a.logger)), nil
	}

	client, err := sparql.NewClient(a.cfg.Store.SPARQL(), staging.Queries(),
		sparql.WithLogger(a.logger),
		sparql.WithMetrics(a.registry.CoreMetrics()))
	if err != nil {
		return nil, fmt.Errorf("create store client: %w", err)
	}
	return client, nil
}

// newNotifier returns the change notifier for this run, or nil when
// changes are not published. The returned func releases its connection.
func (a *app) newNotifier(ctx context.Context) (staging.ChangeNotifier, func(), error) {
	noop := func() {}
	if a.dryRun {
		return diffLogger{logger: a.logger}, noop, nil
	}
	if !a.cfg.NATS.Enabled {
		return nil, noop, nil
	}

	nc := a.cfg.NATS
	opts := []natsclient.ClientOption{
		natsclient.WithLogger(a.logger),
		natsclient.WithMetrics(a.registry.CoreMetrics()),
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(nc.MaxReconnects),
		natsclient.WithReconnectWait(nc.ReconnectWait.Std()),
		natsclient.WithHealthChangeCallback(func(healthy bool) {
			if healthy {
				a.monitor.UpdateHealthy("nats", "connected")
			} else {
				a.monitor.UpdateUnhealthy("nats", "disconnected")
			}
		}),
	}
	switch {
	case nc.Token != "":
		opts = append(opts, natsclient.WithToken(nc.Token))
	case nc.Username != "":
		opts = append(opts, natsclient.WithCredentials(nc.Username, nc.Password))
	}

	client, err := natsclient.NewClient(nc.URL, opts...)
	if err != nil {
		return nil, noop, fmt.Errorf("create NATS client: %w", err)
	}
	closeClient := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()
		if err := client.Close(closeCtx); err != nil {
			a.logger.Warn("NATS client did not close cleanly", "error", err)
		}
	}

	a.logger.Info("Connecting to NATS", "url", client.URL())
	connCtx, cancel := context.WithTimeout(ctx, natsConnectTimeout)
	defer cancel()
	if err := client.Connect(connCtx); err != nil {
		closeClient()
		return nil, noop, fmt.Errorf("connect to NATS: %w", err)
	}
	if err := client.WaitForConnection(connCtx); err != nil {
		closeClient()
		return nil, noop, fmt.Errorf("NATS connection timeout: %w", err)
	}

	pubOpts := []natsclient.PublisherOption{
		natsclient.WithSubjectPrefix(nc.SubjectPrefix),
		natsclient.WithPublisherMetrics(a.registry.CoreMetrics()),
		natsclient.WithPublisherLogger(a.logger),
	}
	changes := natsclient.NewChangePublisher(client, pubOpts...)

	if nc.Stream != "" {
		stream, err := natsclient.NewStreamPublisher(ctx, client, nc.Stream, changes.Subjects())
		if err != nil {
			closeClient()
			return nil, noop, fmt.Errorf("ensure stream %s: %w", nc.Stream, err)
		}
		changes = natsclient.NewChangePublisher(stream, pubOpts...)
		a.logger.Info("Publishing changes to stream", "stream", nc.Stream, "subjects", changes.Subjects())
	}

	return changes, closeClient, nil
}

// diffLogger reports the diffs a dry run would have applied.
type diffLogger struct {
	logger *slog.Logger
}

func (d diffLogger) Notify(ctx context.Context, report staging.ChangeReport) error {
	d.logger.InfoContext(ctx, "Dry run diff",
		"kind", report.Kind,
		"record_id", report.RecordID,
		"subject", report.Subject,
		"added", report.Added,
		"removed", report.Removed)
	d.logger.DebugContext(ctx, "Dry run diff triples",
		"record_id", report.RecordID,
		"insert", report.Insert,
		"delete", report.Delete)
	return nil
}

func logReport(logger *slog.Logger, report staging.Report) {
	for _, res := range report.Results {
		logger.Info("Kind staged",
			"kind", res.Kind,
			"processed", res.Processed,
			"updated", res.Updated,
			"unchanged", res.Unchanged,
			"skipped", res.Skipped,
			"failed", res.Failed,
			"triples_added", res.Added,
			"triples_removed", res.Removed,
			"duration", res.Duration)
	}
}
