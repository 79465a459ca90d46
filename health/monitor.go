package health

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Monitor tracks the health of named parts in a thread-safe manner.
type Monitor struct {
	mu       sync.RWMutex
	statuses map[string]Status
}

// NewMonitor creates an empty monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		statuses: make(map[string]Status),
	}
}

// Update records the status of the named part.
func (m *Monitor) Update(name string, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status.Component = name
	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now()
	}
	m.statuses[name] = status
}

// UpdateHealthy marks the named part healthy.
func (m *Monitor) UpdateHealthy(name, message string) {
	m.Update(name, NewHealthy(name, message))
}

// UpdateDegraded marks the named part degraded.
func (m *Monitor) UpdateDegraded(name, message string) {
	m.Update(name, NewDegraded(name, message))
}

// UpdateUnhealthy marks the named part unhealthy.
func (m *Monitor) UpdateUnhealthy(name, message string) {
	m.Update(name, NewUnhealthy(name, message))
}

// Get returns the status of the named part.
func (m *Monitor) Get(name string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, ok := m.statuses[name]
	return status, ok
}

// AggregateHealth combines every part's status, ordered by name.
func (m *Monitor) AggregateHealth(systemName string) Status {
	m.mu.RLock()
	subStatuses := make([]Status, 0, len(m.statuses))
	for _, status := range m.statuses {
		subStatuses = append(subStatuses, status)
	}
	m.mu.RUnlock()

	sort.Slice(subStatuses, func(i, j int) bool {
		return subStatuses[i].Component < subStatuses[j].Component
	})
	return Aggregate(systemName, subStatuses)
}

// Handler serves the aggregate health as JSON. Unhealthy is reported
// with 503; healthy and degraded with 200.
func Handler(m *Monitor, systemName string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status := m.AggregateHealth(systemName)
		w.Header().Set("Content-Type", "application/json")
		if status.IsUnhealthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(status)
	})
}
