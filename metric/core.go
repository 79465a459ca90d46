// Package metric provides the Prometheus registry, the core ingestion
// metrics and the HTTP server that exposes them.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "dristage"

// Record outcomes used as the outcome label.
const (
	OutcomeUpdated   = "updated"
	OutcomeUnchanged = "unchanged"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// Resolution sources used as the source label.
const (
	SourceCache       = "cache"
	SourceStore       = "store"
	SourceMinted      = "minted"
	SourceMiss        = "miss"
	SourceEnumeration = "enumeration"
)

// Metrics contains the ingestion engine's metrics.
type Metrics struct {
	RecordsTotal         *prometheus.CounterVec
	TriplesTotal         *prometheus.CounterVec
	BuildDuration        *prometheus.HistogramVec
	StoreRequestsTotal   *prometheus.CounterVec
	StoreRequestDuration *prometheus.HistogramVec
	ResolutionsTotal     *prometheus.CounterVec
	NotificationsTotal   *prometheus.CounterVec
	NATSConnected        prometheus.Gauge
}

// NewMetrics creates the ingestion metrics, unregistered.
func NewMetrics() *Metrics {
	return &Metrics{
		RecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "records",
				Name:      "total",
				Help:      "Records processed by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),

		TriplesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "triples",
				Name:      "total",
				Help:      "Triples added or removed by applied diffs",
			},
			[]string{"kind", "direction"},
		),

		BuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "build",
				Name:      "duration_seconds",
				Help:      "Per-record fetch, build, diff and apply duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),

		StoreRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "store",
				Name:      "requests_total",
				Help:      "Store requests by operation and status",
			},
			[]string{"operation", "status"},
		),

		StoreRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "store",
				Name:      "request_duration_seconds",
				Help:      "Store request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "resolver",
				Name:      "resolutions_total",
				Help:      "Entity resolutions by category and source",
			},
			[]string{"category", "source"},
		),

		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "notifications",
				Name:      "total",
				Help:      "Change notifications by kind and status",
			},
			[]string{"kind", "status"},
		),

		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "nats",
				Name:      "connected",
				Help:      "NATS connection status (0=disconnected, 1=connected)",
			},
		),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RecordsTotal,
		m.TriplesTotal,
		m.BuildDuration,
		m.StoreRequestsTotal,
		m.StoreRequestDuration,
		m.ResolutionsTotal,
		m.NotificationsTotal,
		m.NATSConnected,
	}
}

// RecordOutcome counts one processed record. Safe on a nil receiver.
func (m *Metrics) RecordOutcome(kind, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RecordsTotal.WithLabelValues(kind, outcome).Inc()
	m.BuildDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// RecordDiff counts the triples of an applied diff.
func (m *Metrics) RecordDiff(kind string, added, removed int) {
	if m == nil {
		return
	}
	m.TriplesTotal.WithLabelValues(kind, "added").Add(float64(added))
	m.TriplesTotal.WithLabelValues(kind, "removed").Add(float64(removed))
}

// RecordStoreRequest counts one store round-trip.
func (m *Metrics) RecordStoreRequest(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StoreRequestsTotal.WithLabelValues(operation, status).Inc()
	m.StoreRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordResolution counts one resolver lookup.
func (m *Metrics) RecordResolution(category, source string) {
	if m == nil {
		return
	}
	m.ResolutionsTotal.WithLabelValues(category, source).Inc()
}

// RecordNotification counts one change notification.
func (m *Metrics) RecordNotification(kind string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.NotificationsTotal.WithLabelValues(kind, status).Inc()
}

// SetNATSConnected records the NATS connection state.
func (m *Metrics) SetNATSConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.NATSConnected.Set(1)
	} else {
		m.NATSConnected.Set(0)
	}
}
