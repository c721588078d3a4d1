// Package metrics provides a small counter registry backed by Prometheus.
package metrics

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry tracks named counters with dynamic label sets.
//
// Counters are registered lazily on first increment; the label keys seen on
// that first call fix the label schema for the counter.
type Registry struct {
	mu       sync.Mutex
	registry *prometheus.Registry
	counters map[string]*prometheus.CounterVec
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		registry: prometheus.NewRegistry(),
		counters: make(map[string]*prometheus.CounterVec),
	}
}

// IncrementCounter adds 1 to the named counter with the given labels.
func (r *Registry) IncrementCounter(name string, labels map[string]string) {
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	vec, ok := r.counters[name]
	if !ok {
		keys := make([]string, 0, len(labels))
		for k := range labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		vec = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name}, keys)
		if err := r.registry.Register(vec); err != nil {
			return
		}
		r.counters[name] = vec
	}

	if c, err := vec.GetMetricWith(labels); err == nil {
		c.Inc()
	}
}

// Gatherer exposes the underlying registry for scraping or inspection.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
