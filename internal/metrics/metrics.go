// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics provides Prometheus metrics for the policy-engine
// servers. Metrics live on a private registry so tests and multiple
// servers in one process do not collide.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	registry *prometheus.Registry

	// Request metrics, labelled by operation (clause, policy, catalog,
	// search) and outcome (ok, error).
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// LookupsTotal counts clause lookups by per-clause status.
	LookupsTotal *prometheus.CounterVec

	// SearchResultsTotal counts hits returned by full-text search.
	SearchResultsTotal prometheus.Counter

	// Index metrics describe the currently published snapshot.
	IndexGeneration prometheus.Gauge
	IndexPolicies   prometheus.Gauge
	IndexWarnings   prometheus.Gauge
	IndexBuiltAt    prometheus.Gauge
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policy_engine_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"operation", "status"},
	)

	m.RequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "policy_engine_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	m.LookupsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policy_engine_clause_lookups_total",
			Help: "Clause lookups by resolution status",
		},
		[]string{"status"},
	)

	m.SearchResultsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "policy_engine_search_results_total",
			Help: "Total number of search hits returned",
		},
	)

	m.IndexGeneration = factory.NewGauge(prometheus.GaugeOpts{
		Name: "policy_engine_index_generation",
		Help: "Generation number of the published index",
	})
	m.IndexPolicies = factory.NewGauge(prometheus.GaugeOpts{
		Name: "policy_engine_index_policies",
		Help: "Number of policies in the published index",
	})
	m.IndexWarnings = factory.NewGauge(prometheus.GaugeOpts{
		Name: "policy_engine_index_build_warnings",
		Help: "Artifacts skipped while building the published index",
	})
	m.IndexBuiltAt = factory.NewGauge(prometheus.GaugeOpts{
		Name: "policy_engine_index_built_timestamp_seconds",
		Help: "Unix time the published index was built",
	})

	return m
}

// ObserveRequest records one API request.
func (m *Metrics) ObserveRequest(operation string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(operation, status).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveLookup records the status of one resolved clause.
func (m *Metrics) ObserveLookup(status string) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(status).Inc()
}

// ObserveSearch records the number of hits a search returned.
func (m *Metrics) ObserveSearch(hits int) {
	if m == nil {
		return
	}
	m.SearchResultsTotal.Add(float64(hits))
}

// SetIndex publishes the statistics of a newly swapped-in index.
func (m *Metrics) SetIndex(generation uint64, policies, warnings int, builtAt time.Time) {
	if m == nil {
		return
	}
	m.IndexGeneration.Set(float64(generation))
	m.IndexPolicies.Set(float64(policies))
	m.IndexWarnings.Set(float64(warnings))
	m.IndexBuiltAt.Set(float64(builtAt.Unix()))
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
