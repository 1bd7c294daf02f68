// Package metrics implements the observability hooks with Prometheus
// collectors.
//
// A [Registry] owns its own prometheus.Registry, so tests and embedded uses
// never collide with the global default. The CLI registers one at startup,
// exposes it on /metrics from the serve command, and can dump it to a
// node_exporter textfile after a batch build.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/rivergraph/pkg/observability"
)

const namespace = "rivergraph"

// Registry holds all metrics for the application.
type Registry struct {
	// Pipeline metrics
	StageRuns     *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	StageItems    *prometheus.GaugeVec
	BuildDuration prometheus.Histogram
	GraphNodes    prometheus.Gauge
	GraphEdges    prometheus.Gauge

	// Cache metrics
	CacheLookups    *prometheus.CounterVec
	CacheWriteBytes *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every collector registered.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	f := promauto.With(r.registry)

	r.StageRuns = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_runs_total",
			Help:      "Pipeline stage executions by outcome",
		},
		[]string{"stage", "status"},
	)
	r.StageDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
	r.StageItems = f.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_items",
			Help:      "Items produced by the last run of each pipeline stage",
		},
		[]string{"stage"},
	)
	r.BuildDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "End-to-end network build latency in seconds",
			Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 300},
		},
	)
	r.GraphNodes = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "graph_nodes",
		Help:      "Nodes in the most recently built network",
	})
	r.GraphEdges = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "graph_edges",
		Help:      "Edges in the most recently built network",
	})

	r.CacheLookups = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by key type and result",
		},
		[]string{"key_type", "result"},
	)
	r.CacheWriteBytes = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_write_bytes_total",
			Help:      "Bytes written to the cache by key type",
		},
		[]string{"key_type"},
	)

	r.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	r.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	return r
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// WriteTextfile writes the current values to path for the node_exporter
// textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// Install registers r as the global pipeline, cache and server hooks.
func (r *Registry) Install() {
	observability.SetPipelineHooks(r)
	observability.SetCacheHooks(r)
	observability.SetServerHooks(r)
}

// OnStageStart is a no-op; durations are reported on completion.
func (r *Registry) OnStageStart(context.Context, string) {}

// OnStageComplete records a stage run.
func (r *Registry) OnStageComplete(_ context.Context, stage string, items int, d time.Duration, err error) {
	r.StageRuns.WithLabelValues(stage, status(err)).Inc()
	r.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err == nil {
		r.StageItems.WithLabelValues(stage).Set(float64(items))
	}
}

// OnBuildComplete records a finished build.
func (r *Registry) OnBuildComplete(_ context.Context, nodes, edges int, d time.Duration, err error) {
	r.BuildDuration.Observe(d.Seconds())
	if err != nil {
		return
	}
	r.GraphNodes.Set(float64(nodes))
	r.GraphEdges.Set(float64(edges))
}

// OnCacheHit records a cache hit.
func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheLookups.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss records a cache miss.
func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheLookups.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet records a cache write.
func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheWriteBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest records a served HTTP request.
func (r *Registry) OnRequest(_ context.Context, method, route string, code int, d time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

var (
	_ observability.PipelineHooks = (*Registry)(nil)
	_ observability.CacheHooks    = (*Registry)(nil)
	_ observability.ServerHooks   = (*Registry)(nil)
)
