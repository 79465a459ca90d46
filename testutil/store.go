package testutil

import (
	"context"
	"sync"

	"github.com/nationalarchives/dri-data-migration-sub000/graph"
	"github.com/nationalarchives/dri-data-migration-sub000/storage"
)

// FailingStore wraps a storage.Store and returns configured errors instead
// of delegating. It counts every call, failed or not.
type FailingStore struct {
	inner storage.Store

	mu             sync.Mutex
	constructErr   error
	updateErr      error
	failAfter      int
	constructCalls int
	updateCalls    int
}

// NewFailingStore wraps inner. Nothing fails until configured.
func NewFailingStore(inner storage.Store) *FailingStore {
	return &FailingStore{inner: inner, failAfter: -1}
}

// FailConstructs makes every Construct call return err.
func (s *FailingStore) FailConstructs(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.constructErr = err
}

// FailUpdates makes every Update call return err.
func (s *FailingStore) FailUpdates(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateErr = err
}

// FailUpdatesAfter lets n updates through and fails the rest with err.
func (s *FailingStore) FailUpdatesAfter(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAfter = n
	s.updateErr = err
}

// Construct implements storage.Store.
func (s *FailingStore) Construct(ctx context.Context, q storage.Query) (*graph.Graph, error) {
	s.mu.Lock()
	s.constructCalls++
	err := s.constructErr
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return s.inner.Construct(ctx, q)
}

// Update implements storage.Store.
func (s *FailingStore) Update(ctx context.Context, diff *graph.Diff) error {
	s.mu.Lock()
	s.updateCalls++
	err := s.updateErr
	if s.failAfter >= 0 && s.updateCalls <= s.failAfter {
		err = nil
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	return s.inner.Update(ctx, diff)
}

// ConstructCalls returns the number of Construct calls.
func (s *FailingStore) ConstructCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.constructCalls
}

// UpdateCalls returns the number of Update calls.
func (s *FailingStore) UpdateCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateCalls
}
