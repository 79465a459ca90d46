package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// LogEntry is one captured log record with its attributes flattened.
type LogEntry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogRecorder is an slog.Handler that captures every record at or above
// its level.
type LogRecorder struct {
	level slog.Leveler
	attrs []slog.Attr
	group string
	sink  *logSink
}

type logSink struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewLogRecorder captures records of every level.
func NewLogRecorder() *LogRecorder {
	return &LogRecorder{level: slog.LevelDebug, sink: &logSink{}}
}

// Logger returns a logger writing to r.
func (r *LogRecorder) Logger() *slog.Logger {
	return slog.New(r)
}

// Enabled implements slog.Handler.
func (r *LogRecorder) Enabled(_ context.Context, level slog.Level) bool {
	return level >= r.level.Level()
}

// Handle implements slog.Handler.
func (r *LogRecorder) Handle(_ context.Context, record slog.Record) error {
	entry := LogEntry{
		Level:   record.Level,
		Message: record.Message,
		Attrs:   make(map[string]any, record.NumAttrs()+len(r.attrs)),
	}
	for _, a := range r.attrs {
		entry.Attrs[a.Key] = a.Value.Resolve().Any()
	}
	record.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if r.group != "" {
			key = r.group + "." + key
		}
		entry.Attrs[key] = a.Value.Resolve().Any()
		return true
	})

	r.sink.mu.Lock()
	r.sink.entries = append(r.sink.entries, entry)
	r.sink.mu.Unlock()
	return nil
}

// WithAttrs implements slog.Handler.
func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *r
	clone.attrs = append(append([]slog.Attr{}, r.attrs...), attrs...)
	return &clone
}

// WithGroup implements slog.Handler.
func (r *LogRecorder) WithGroup(name string) slog.Handler {
	clone := *r
	if clone.group != "" {
		name = clone.group + "." + name
	}
	clone.group = name
	return &clone
}

// Entries returns every captured record.
func (r *LogRecorder) Entries() []LogEntry {
	r.sink.mu.Lock()
	defer r.sink.mu.Unlock()

	out := make([]LogEntry, len(r.sink.entries))
	copy(out, r.sink.entries)
	return out
}

// Records returns the captured records of exactly level.
func (r *LogRecorder) Records(level slog.Level) []LogEntry {
	var out []LogEntry
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the captured records whose message contains substr.
func (r *LogRecorder) Find(substr string) []LogEntry {
	var out []LogEntry
	for _, e := range r.Entries() {
		if strings.Contains(e.Message, substr) {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards the captured records.
func (r *LogRecorder) Reset() {
	r.sink.mu.Lock()
	r.sink.entries = nil
	r.sink.mu.Unlock()
}
