// Package memory provides an in-memory staging store that evaluates query
// patterns directly over a graph. It backs dry runs and tests.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nationalarchives/dri-data-migration-sub000/graph"
	"github.com/nationalarchives/dri-data-migration-sub000/storage"
)

// Store is an in-memory storage.Store. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	g       *graph.Graph
	updates []*graph.Diff
	queries []storage.Query
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger logs every applied update.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithGraph seeds the store with a copy of g.
func WithGraph(g *graph.Graph) Option {
	return func(s *Store) {
		s.g = g.Clone()
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{g: graph.New()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Construct evaluates the query's pattern.
func (s *Store) Construct(_ context.Context, q storage.Query) (*graph.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries = append(s.queries, q)
	return q.Pattern.Evaluate(s.g, q.IntParam("limit"), q.IntParam("offset")), nil
}

// Update applies diff and records it.
func (s *Store) Update(_ context.Context, diff *graph.Diff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	diff.ApplyInPlace(s.g)
	s.updates = append(s.updates, diff)

	if s.logger != nil {
		s.logger.Info("Update applied",
			"added", diff.Added.Len(),
			"removed", diff.Removed.Len())
		s.logger.Debug("Update triples",
			"insert", graph.Marshal(diff.Added),
			"delete", graph.Marshal(diff.Removed))
	}
	return nil
}

// Graph returns a copy of the stored graph.
func (s *Store) Graph() *graph.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.Clone()
}

// Updates returns the applied diffs in order.
func (s *Store) Updates() []*graph.Diff {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*graph.Diff(nil), s.updates...)
}

// UpdateCount returns the number of update requests received.
func (s *Store) UpdateCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.updates)
}

// Queries returns the construct queries received, in order.
func (s *Store) Queries() []storage.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]storage.Query(nil), s.queries...)
}

// ResetCounters forgets recorded updates and queries but keeps the graph.
func (s *Store) ResetCounters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = nil
	s.queries = nil
}
