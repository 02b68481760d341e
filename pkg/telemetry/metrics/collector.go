package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mercator-hq/argus/pkg/config"
)

// Skip reasons recorded by the instrumentation entry point.
const (
	SkipUnsafeCaller = "unsafe_caller"
	SkipNoContext    = "no_context"
	SkipNoResult     = "no_result"
)

// Extraction miss kinds.
const (
	MissModel  = "model"
	MissTokens = "tokens"
)

// Collector manages the agent's Prometheus metrics.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	interceptedCalls *prometheus.CounterVec
	skippedCalls     *prometheus.CounterVec
	extractionMisses *prometheus.CounterVec
	handlerDuration  prometheus.Histogram
	tokens           *prometheus.HistogramVec
	cacheEntries     *prometheus.GaugeVec
}

// NewCollector creates a metrics collector. A nil registry allocates a fresh
// one. When cfg.Enabled is false, a disabled collector is returned whose
// recording methods are no-ops.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if !cfg.Enabled {
		return &Collector{}
	}

	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "argus"
	}
	subsystem := cfg.Subsystem
	if subsystem == "" {
		subsystem = "agent"
	}

	c := &Collector{
		enabled:  true,
		registry: registry,

		interceptedCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "intercepted_calls_total",
			Help:      "Intercepted SDK calls that produced telemetry records.",
		}, []string{"provider", "model", "complete"}),

		skippedCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "skipped_calls_total",
			Help:      "Interception callbacks that produced no records, by reason.",
		}, []string{"reason"}),

		extractionMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "extraction_misses_total",
			Help:      "Model or token extraction misses on normalized results.",
		}, []string{"kind"}),

		handlerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handler_duration_seconds",
			Help:      "Time spent inside the instrumentation callback.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),

		tokens: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tokens",
			Help:      "Token counts recovered per intercepted call.",
			Buckets:   []float64{100, 500, 1000, 5000, 10000, 50000, 100000},
		}, []string{"provider", "direction"}),

		cacheEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "locator_cache_entries",
			Help:      "Entries in the locator's container and type caches.",
		}, []string{"cache"}),
	}

	registry.MustRegister(
		c.interceptedCalls,
		c.skippedCalls,
		c.extractionMisses,
		c.handlerDuration,
		c.tokens,
		c.cacheEntries,
	)

	return c
}

// RecordInterception records one handled call.
func (c *Collector) RecordInterception(provider, model string, complete bool, duration time.Duration, inputTokens, outputTokens int64) {
	if c == nil || !c.enabled {
		return
	}

	completeLabel := "false"
	if complete {
		completeLabel = "true"
	}

	c.interceptedCalls.WithLabelValues(provider, model, completeLabel).Inc()
	c.handlerDuration.Observe(duration.Seconds())
	c.tokens.WithLabelValues(provider, "input").Observe(float64(inputTokens))
	c.tokens.WithLabelValues(provider, "output").Observe(float64(outputTokens))
}

// RecordSkip records a callback that produced no records.
func (c *Collector) RecordSkip(reason string) {
	if c == nil || !c.enabled {
		return
	}
	c.skippedCalls.WithLabelValues(reason).Inc()
}

// RecordExtractionMiss records a model or token extraction miss.
func (c *Collector) RecordExtractionMiss(kind string) {
	if c == nil || !c.enabled {
		return
	}
	c.extractionMisses.WithLabelValues(kind).Inc()
}

// UpdateCacheSize updates a locator cache gauge.
func (c *Collector) UpdateCacheSize(cache string, size int) {
	if c == nil || !c.enabled {
		return
	}
	c.cacheEntries.WithLabelValues(cache).Set(float64(size))
}

// Registry returns the Prometheus registry, or nil when disabled.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler returns an HTTP handler serving the collector's metrics.
func (c *Collector) Handler() http.Handler {
	if c == nil || !c.enabled {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
