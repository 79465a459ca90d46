package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain", "store.Update: apply diff failed: store unavailable", "store.Update: apply diff failed: store unavailable"},
		{"unix path", "failed to open /etc/dristage/config.yaml", "failed to open [PATH]"},
		{"windows path", "cannot read C:\\exports\\asset.jsonl", "cannot read [PATH]"},
		{"http url", "POST https://graphdb.internal/repositories/staging failed", "POST [URL] failed"},
		{"nats url", "cannot connect to nats://localhost:4222", "cannot connect to [URL]"},
		{"ip address", "timeout connecting to 192.168.1.100", "timeout connecting to [IP]"},
		{"port", "failed to bind to :9090", "failed to bind to [PORT]"},
		{"credential", "auth failed with password:hunter2", "auth failed with [REDACTED]"},
		{"token", "rejected token=abc123 for https://10.0.0.1:7200/sparql", "rejected [REDACTED] for [URL]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeErrorMessage(tt.input))
		})
	}
}

func TestFromError(t *testing.T) {
	ok := FromError("ingest", nil)
	assert.True(t, ok.IsHealthy())
	assert.True(t, ok.Healthy)

	failed := FromError("ingest", fmt.Errorf("POST https://graphdb/sparql: store unavailable"))
	assert.True(t, failed.IsUnhealthy())
	assert.False(t, failed.Healthy)
	assert.Equal(t, "POST [URL] store unavailable", failed.Message)
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name string
		subs []Status
		want State
	}{
		{"none", nil, StateHealthy},
		{"all healthy", []Status{NewHealthy("a", ""), NewHealthy("b", "")}, StateHealthy},
		{"one degraded", []Status{NewHealthy("a", ""), NewDegraded("b", "")}, StateDegraded},
		{"unhealthy wins", []Status{NewUnhealthy("a", ""), NewDegraded("b", "")}, StateUnhealthy},
		{"unhealthy wins in any order", []Status{NewDegraded("a", ""), NewUnhealthy("b", ""), NewHealthy("c", "")}, StateUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate("dristage", tt.subs)
			assert.Equal(t, tt.want, got.State)
			assert.Equal(t, tt.want == StateHealthy, got.Healthy)
			assert.Len(t, got.SubStatuses, len(tt.subs))
		})
	}
}

func TestAggregate_CopiesSubStatuses(t *testing.T) {
	subs := []Status{NewHealthy("a", "")}
	got := Aggregate("dristage", subs)
	subs[0].Message = "changed"
	assert.Empty(t, got.SubStatuses[0].Message)
}

func TestMonitor(t *testing.T) {
	m := NewMonitor()

	_, ok := m.Get("ingest")
	assert.False(t, ok)
	assert.True(t, m.AggregateHealth("dristage").IsHealthy())

	m.UpdateHealthy("nats", "connected")
	m.UpdateDegraded("ingest", "2 records failed")

	got, ok := m.Get("ingest")
	require.True(t, ok)
	assert.Equal(t, "ingest", got.Component)
	assert.False(t, got.Timestamp.IsZero())

	agg := m.AggregateHealth("dristage")
	assert.True(t, agg.IsDegraded())
	require.Len(t, agg.SubStatuses, 2)
	assert.Equal(t, "ingest", agg.SubStatuses[0].Component)
	assert.Equal(t, "nats", agg.SubStatuses[1].Component)

	m.UpdateUnhealthy("nats", "disconnected")
	assert.True(t, m.AggregateHealth("dristage").IsUnhealthy())

	// Update names the status after the part it is filed under.
	m.Update("nats", NewHealthy("other", "reconnected"))
	got, _ = m.Get("nats")
	assert.Equal(t, "nats", got.Component)
}

func TestMonitor_ConcurrentAccess(t *testing.T) {
	m := NewMonitor()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.UpdateHealthy(fmt.Sprintf("part-%d", i%4), "ok")
		}()
		go func() {
			defer wg.Done()
			_ = m.AggregateHealth("dristage")
		}()
	}
	wg.Wait()
	assert.Len(t, m.AggregateHealth("dristage").SubStatuses, 4)
}

func TestHandler(t *testing.T) {
	m := NewMonitor()
	h := Handler(m, "dristage")

	serve := func() (*httptest.ResponseRecorder, Status) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		var status Status
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		return rec, status
	}

	m.UpdateHealthy("ingest", "staging assets")
	rec, status := serve()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "dristage", status.Component)
	assert.Equal(t, StateHealthy, status.State)

	m.UpdateDegraded("ingest", "1 record failed")
	rec, status = serve()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StateDegraded, status.State)

	m.Update("nats", FromError("nats", fmt.Errorf("connection closed")))
	rec, status = serve()
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, StateUnhealthy, status.State)
	assert.Len(t, status.SubStatuses, 2)
}
