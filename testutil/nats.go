package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
)

// ErrMockClosed is returned by a closed MockNATSClient.
var ErrMockClosed = errors.New("mock client closed")

// MockNATSClient records published payloads per subject. Its Publish
// matches natsclient.Client.
type MockNATSClient struct {
	mu       sync.RWMutex
	messages map[string][][]byte
	err      error
	closed   bool
}

// NewMockNATSClient creates a new mock NATS client.
func NewMockNATSClient() *MockNATSClient {
	return &MockNATSClient{
		messages: make(map[string][][]byte),
	}
}

// FailPublishes makes every later Publish return err.
func (c *MockNATSClient) FailPublishes(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Publish records data under subject.
func (c *MockNATSClient) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrMockClosed
	}
	if c.err != nil {
		return c.err
	}
	c.messages[subject] = append(c.messages[subject], append([]byte(nil), data...))
	return nil
}

// GetMessages returns a copy of the payloads published on subject.
func (c *MockNATSClient) GetMessages(subject string) [][]byte {
	c.mu.RLock()
	defer c.mu.RUnlock()

	msgs := c.messages[subject]
	if msgs == nil {
		return nil
	}
	result := make([][]byte, len(msgs))
	copy(result, msgs)
	return result
}

// GetMessageCount returns the number of messages on a subject.
func (c *MockNATSClient) GetMessageCount(subject string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages[subject])
}

// Subjects returns every subject published to, sorted.
func (c *MockNATSClient) Subjects() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.messages))
	for s := range c.messages {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Close closes the mock client.
func (c *MockNATSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// AssertMessageReceived checks that a message was received on a subject.
func AssertMessageReceived(t *testing.T, client *MockNATSClient, subject string) {
	t.Helper()

	if len(client.GetMessages(subject)) == 0 {
		t.Fatalf("expected message on subject %s, got none", subject)
	}
}

// AssertNoMessages checks that no messages were received on a subject.
func AssertNoMessages(t *testing.T, client *MockNATSClient, subject string) {
	t.Helper()

	if n := client.GetMessageCount(subject); n > 0 {
		t.Fatalf("expected no messages on subject %s, got %d", subject, n)
	}
}
