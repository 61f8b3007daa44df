// Package metrics exports the service's Prometheus collectors: push-style
// counters fed by the scheduler and pull-style gauges read from the live
// gateway and catalog cache at scrape time.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/computerwizzy/shopify-inventory-sync/internal/catalogcache"
	"github.com/computerwizzy/shopify-inventory-sync/internal/resilience"
)

// Recorder owns the registry and every collector the service exports.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal    *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	recordsTotal *prometheus.CounterVec
}

// NewRecorder creates a registry with the Go and process collectors plus the
// service's own metrics.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Recorder{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_sync_runs_total",
			Help: "Sync runs by trigger and outcome.",
		}, []string{"trigger", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inventory_sync_run_duration_seconds",
			Help:    "Duration of sync runs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"trigger"}),
		recordsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_sync_records_total",
			Help: "Feed records by sync result.",
		}, []string{"result"}),
	}

	registry.MustRegister(r.runsTotal)
	registry.MustRegister(r.runDuration)
	registry.MustRegister(r.recordsTotal)

	return r
}

// Registry returns the Prometheus registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the text exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordRun counts one finished sync run and observes its duration.
func (r *Recorder) RecordRun(trigger string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failed"
	}
	r.runsTotal.WithLabelValues(trigger, status).Inc()
	r.runDuration.WithLabelValues(trigger).Observe(duration.Seconds())
}

// RecordRecords counts the per-record results of one sync run.
func (r *Recorder) RecordRecords(synced, failed, skipped int) {
	if synced > 0 {
		r.recordsTotal.WithLabelValues("synced").Add(float64(synced))
	}
	if failed > 0 {
		r.recordsTotal.WithLabelValues("failed").Add(float64(failed))
	}
	if skipped > 0 {
		r.recordsTotal.WithLabelValues("skipped").Add(float64(skipped))
	}
}

// ObserveGateway registers gauges that read the breaker and limiter snapshot
// at scrape time.
func (r *Recorder) ObserveGateway(stats func() resilience.Stats) {
	r.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "inventory_sync_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open).",
	}, func() float64 {
		switch stats().BreakerState {
		case resilience.StateOpen:
			return 2
		case resilience.StateHalfOpen:
			return 1
		default:
			return 0
		}
	}))

	r.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "inventory_sync_rate_limit_delay_seconds",
		Help: "Current adaptive rate limiter delay.",
	}, func() float64 {
		return float64(stats().CurrentDelayMs) / 1000
	}))

	r.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "inventory_sync_breaker_failures",
		Help: "Consecutive failures counted by the circuit breaker.",
	}, func() float64 {
		return float64(stats().FailureCount)
	}))
}

// ObserveCatalogCache registers collectors that read the cache counters at
// scrape time.
func (r *Recorder) ObserveCatalogCache(stats func() catalogcache.Stats) {
	r.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "inventory_sync_catalog_entries",
		Help: "Variants in the cached catalog snapshot.",
	}, func() float64 {
		return float64(stats().Entries)
	}))

	r.registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "inventory_sync_catalog_cache_hits_total",
		Help: "Catalog cache hits.",
	}, func() float64 {
		return float64(stats().Hits)
	}))

	r.registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "inventory_sync_catalog_cache_misses_total",
		Help: "Catalog cache misses.",
	}, func() float64 {
		return float64(stats().Misses)
	}))
}
