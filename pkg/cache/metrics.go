package cache

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nationalarchives/dri-data-migration-sub000/metric"
)

type cacheMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	sets      prometheus.Counter
	deletes   prometheus.Counter
	evictions prometheus.Counter
	size      prometheus.Gauge
}

func newCacheMetrics(registry *metric.MetricsRegistry, prefix string) (*cacheMetrics, error) {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metric.Namespace,
			Subsystem:   "cache",
			Name:        name,
			ConstLabels: prometheus.Labels{"cache": prefix},
			Help:        help,
		})
	}

	m := &cacheMetrics{
		hits:      counter("hits_total", "Total number of cache hits"),
		misses:    counter("misses_total", "Total number of cache misses"),
		sets:      counter("sets_total", "Total number of cache set operations"),
		deletes:   counter("deletes_total", "Total number of cache delete operations"),
		evictions: counter("evictions_total", "Total number of cache evictions"),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metric.Namespace,
			Subsystem:   "cache",
			Name:        "size",
			ConstLabels: prometheus.Labels{"cache": prefix},
			Help:        "Current number of entries in cache",
		}),
	}

	counters := []struct {
		name string
		c    prometheus.Counter
	}{
		{"cache_hits", m.hits},
		{"cache_misses", m.misses},
		{"cache_sets", m.sets},
		{"cache_deletes", m.deletes},
		{"cache_evictions", m.evictions},
	}
	for _, c := range counters {
		if err := registry.RegisterCounter(prefix, c.name, c.c); err != nil {
			return nil, err
		}
	}
	if err := registry.RegisterGauge(prefix, "cache_size", m.size); err != nil {
		return nil, err
	}

	return m, nil
}
