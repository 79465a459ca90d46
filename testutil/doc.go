// Package testutil provides test doubles and fixtures shared by the
// ingestion engine's package tests.
//
// # Overview
//
// LogRecorder is an slog.Handler that keeps every record so tests can
// assert on warnings:
//
//	rec := testutil.NewLogRecorder()
//	logger := slog.New(rec)
//	// ... run code under test with logger
//	assert.Len(t, rec.Records(slog.LevelWarn), 1)
//
// FailingStore wraps a storage.Store and fails selected calls, for testing
// how the engine reacts to transport failures:
//
//	store := testutil.NewFailingStore(memory.New())
//	store.FailUpdates(errors.ErrStoreUnavailable)
//
// MockNATSClient records published payloads per subject and matches the
// publish signature of natsclient.Client.
//
// The fixtures in data.go are JSON-lines legacy records for every kind,
// shaped as the extraction component produces them. They are raw text so
// that tests decode them through the same reader the CLI uses.
//
// # Thread Safety
//
// All doubles are safe for concurrent use.
package testutil
