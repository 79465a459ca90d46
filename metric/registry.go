package metric

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nationalarchives/dri-data-migration-sub000/errors"
)

// MetricsRegistrar defines the interface for registering component metrics
type MetricsRegistrar interface {
	RegisterCounter(serviceName, metricName string, counter prometheus.Counter) error
	RegisterGauge(serviceName, metricName string, gauge prometheus.Gauge) error
	RegisterCounterVec(serviceName, metricName string, counterVec *prometheus.CounterVec) error
	RegisterHistogramVec(serviceName, metricName string, histogramVec *prometheus.HistogramVec) error
	Unregister(serviceName, metricName string) bool
}

// MetricsRegistry owns the Prometheus registry and the core ingestion metrics.
type MetricsRegistry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
	registeredMetrics  map[string]prometheus.Collector
	mu                 sync.RWMutex
}

// NewMetricsRegistry creates a registry with core metrics and Go runtime collectors.
func NewMetricsRegistry() *MetricsRegistry {
	registry := &MetricsRegistry{
		prometheusRegistry: prometheus.NewRegistry(),
		registeredMetrics:  make(map[string]prometheus.Collector),
		Metrics:            NewMetrics(),
	}

	registry.prometheusRegistry.MustRegister(registry.Metrics.collectors()...)
	registry.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return registry
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *MetricsRegistry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// CoreMetrics returns the core ingestion metrics
func (r *MetricsRegistry) CoreMetrics() *Metrics {
	return r.Metrics
}

// register adds collector under "service.metric", rejecting duplicates.
func (r *MetricsRegistry) register(op, serviceName, metricName string, collector prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", serviceName, metricName)

	if _, exists := r.registeredMetrics[key]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("metric %s already registered for service %s", metricName, serviceName),
			"MetricsRegistry", op, "duplicate metric registration")
	}

	if err := r.prometheusRegistry.Register(collector); err != nil {
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if stderrors.As(err, &alreadyRegErr) {
			return errors.WrapInvalid(err, "MetricsRegistry", op,
				fmt.Sprintf("prometheus conflict for metric %s", metricName))
		}
		return errors.WrapFatal(err, "MetricsRegistry", op, "register with prometheus")
	}

	r.registeredMetrics[key] = collector
	return nil
}

// RegisterCounter registers a counter metric for a service
func (r *MetricsRegistry) RegisterCounter(serviceName, metricName string, counter prometheus.Counter) error {
	return r.register("RegisterCounter", serviceName, metricName, counter)
}

// RegisterGauge registers a gauge metric for a service
func (r *MetricsRegistry) RegisterGauge(serviceName, metricName string, gauge prometheus.Gauge) error {
	return r.register("RegisterGauge", serviceName, metricName, gauge)
}

// RegisterCounterVec registers a counter vector metric for a service
func (r *MetricsRegistry) RegisterCounterVec(serviceName, metricName string, counterVec *prometheus.CounterVec) error {
	return r.register("RegisterCounterVec", serviceName, metricName, counterVec)
}

// RegisterHistogramVec registers a histogram vector metric for a service
func (r *MetricsRegistry) RegisterHistogramVec(
	serviceName, metricName string, histogramVec *prometheus.HistogramVec) error {
	return r.register("RegisterHistogramVec", serviceName, metricName, histogramVec)
}

// Unregister removes a metric from the registry
func (r *MetricsRegistry) Unregister(serviceName, metricName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", serviceName, metricName)

	collector, exists := r.registeredMetrics[key]
	if !exists {
		return false
	}

	if !r.prometheusRegistry.Unregister(collector) {
		return false
	}
	delete(r.registeredMetrics, key)
	return true
}
