package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nationalarchives/dri-data-migration-sub000/config"
	"github.com/nationalarchives/dri-data-migration-sub000/input/jsonl"
	"github.com/nationalarchives/dri-data-migration-sub000/metric"
	"github.com/nationalarchives/dri-data-migration-sub000/staging"
	"github.com/nationalarchives/dri-data-migration-sub000/storage/memory"
	"github.com/nationalarchives/dri-data-migration-sub000/testutil"
)

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for kind, content := range testutil.RecordLines {
		require.NoError(t, os.WriteFile(jsonl.Path(dir, kind), []byte(content), 0600))
	}
	return dir
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"--version"}, &stdout, &stderr))
	assert.Equal(t, "dristage version "+Version+"\n", stdout.String())
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-h"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "--dry-run")
	assert.Contains(t, stderr.String(), "-input-dir")
}

func TestRun_InvalidFlags(t *testing.T) {
	tests := [][]string{
		{"--log-level=loud"},
		{"--log-format=xml"},
		{"--config=does-not-exist.yaml"},
		{"--shutdown-timeout=0s"},
		{"--no-such-flag"},
		{"stray"},
	}

	for _, args := range tests {
		t.Run(args[0], func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), args, &stdout, &stderr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid flags")
		})
	}
}

func TestRun_DryRun(t *testing.T) {
	dir := writeFixtures(t)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"--dry-run", "--input-dir", dir}, &stdout, &stderr)
	require.NoError(t, err)

	logs := stdout.String()
	assert.Contains(t, logs, `"msg":"Dry run diff"`)
	assert.Contains(t, logs, `"msg":"Staging complete"`)
	assert.Contains(t, logs, `"processed":13`)
	assert.Contains(t, logs, `"skipped":1`)
}

func TestRun_DryRunKinds(t *testing.T) {
	dir := writeFixtures(t)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(),
		[]string{"--dry-run", "--input-dir", dir, "--kinds", "access-condition,legislation", "--log-format", "text"},
		&stdout, &stderr)
	require.NoError(t, err)

	logs := stdout.String()
	assert.Contains(t, logs, "processed=3")
	assert.NotContains(t, logs, "kind=asset")
}

func TestRun_UnknownKind(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"--dry-run", "--input-dir", t.TempDir(), "--kinds", "folder"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--kinds")
}

func TestRun_RequiresStoreUnlessDryRun(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"--input-dir", t.TempDir()}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRun_MissingInputDirectory(t *testing.T) {
	var stdout, stderr bytes.Buffer
	missing := filepath.Join(t.TempDir(), "absent")
	err := run(context.Background(), []string{"--dry-run", "--input-dir", missing}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not readable")
}

func TestRun_ValidateOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dristage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  query_endpoint: http://localhost:7200/repositories/staging
  update_endpoint: http://localhost:7200/repositories/staging/statements
  password: hunter2
`), 0600))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"--config", path, "--validate", "--input-dir", t.TempDir()}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Configuration is valid")
	assert.NotContains(t, stdout.String(), "hunter2")
}

func TestRun_EmptyEnumerationFails(t *testing.T) {
	// Assets alone cannot run against a store with no code lists.
	dir := writeFixtures(t)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"--dry-run", "--input-dir", dir, "--kinds", "asset"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "staging run")
}

func TestApp_ExecuteAgainstStore(t *testing.T) {
	dir := writeFixtures(t)
	cfg := config.Default()
	cfg.Input.Directory = dir

	store := memory.New()
	a := newApp(cfg, &CLIConfig{ShutdownTimeout: time.Second}, testutil.NewLogRecorder().Logger())
	a.store = store

	report, err := a.execute(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Results, len(staging.IngestOrder))
	assert.Equal(t, 12, report.Totals().Updated)
	assert.Positive(t, store.Graph().Len())

	status, ok := a.monitor.Get("ingest")
	require.True(t, ok)
	assert.True(t, status.IsHealthy())
	assert.Equal(t, "completed", status.Message)

	// A second run over the same store changes nothing.
	updates := store.UpdateCount()
	a.registry = metric.NewMetricsRegistry()
	report, err = a.execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Totals().Updated)
	assert.Equal(t, updates, store.UpdateCount())
}

func TestApp_ExecuteCancelled(t *testing.T) {
	dir := writeFixtures(t)
	cfg := config.Default()
	cfg.Input.Directory = dir

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newApp(cfg, &CLIConfig{DryRun: true, ShutdownTimeout: time.Second}, testutil.NewLogRecorder().Logger())
	_, err := a.execute(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	status, ok := a.monitor.Get("ingest")
	require.True(t, ok)
	assert.True(t, status.IsUnhealthy())
}

func TestLoadInputs(t *testing.T) {
	dir := writeFixtures(t)

	in, err := loadInputs(dir, nil)
	require.NoError(t, err)
	assert.Len(t, in.AccessConditions, 2)
	assert.Len(t, in.Subsets, 2)
	assert.Len(t, in.Variations, 2)
	assert.Len(t, in.Changes, 1)

	in, err = loadInputs(dir, []staging.Kind{staging.KindAsset})
	require.NoError(t, err)
	assert.Len(t, in.Assets, 2)
	assert.Empty(t, in.AccessConditions)

	in, err = loadInputs(t.TempDir(), nil)
	require.NoError(t, err, "missing files stage nothing")
	assert.Empty(t, in.Assets)

	bad := t.TempDir()
	require.NoError(t, os.WriteFile(jsonl.Path(bad, "subset"), []byte("{\"id\":\n"), 0600))
	_, err = loadInputs(bad, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subset.jsonl")
}
