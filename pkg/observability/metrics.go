package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application.
// A nil *Collector is valid and records nothing, which keeps tests and the
// CLI free of metric plumbing.
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// Optional push sink for deployments without a scraper
	cloudWatch *CloudWatchSink

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Upstream metrics
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	UpstreamRetries  *prometheus.CounterVec
	BreakerState     *prometheus.GaugeVec

	// Query bus metrics
	QueryDuration *prometheus.HistogramVec

	// Selection and graph metrics
	SelectionRestarts prometheus.Counter
	Selections        *prometheus.CounterVec
	GraphNodes        prometheus.Histogram
	GraphEdges        prometheus.Histogram
	PrunedNodes       prometheus.Counter

	// Seed corpus metrics
	SeedCategories prometheus.Gauge
	CorpusReloads  prometheus.Counter
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Total number of upstream HTTP calls by outcome",
			},
			[]string{"upstream", "outcome"},
		),
		UpstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Upstream HTTP call duration in seconds",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"upstream"},
		),
		UpstreamRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_retries_total",
				Help:      "Total number of retried upstream fetches",
			},
			[]string{"upstream"},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Query handling duration in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"query", "outcome"},
		),
		SelectionRestarts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selection_restarts_total",
				Help:      "Total number of restarted random selections",
			},
		),
		Selections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selections_total",
				Help:      "Total number of article selections by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		GraphNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "graph_nodes",
				Help:      "Number of nodes in built graphs",
				Buckets:   prometheus.LinearBuckets(0, 10, 8),
			},
		),
		GraphEdges: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "graph_edges",
				Help:      "Number of edges in built graphs",
				Buckets:   prometheus.LinearBuckets(0, 15, 8),
			},
		),
		PrunedNodes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pruned_nodes_total",
				Help:      "Total number of nodes removed by pruning",
			},
		),
		SeedCategories: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "seed_categories",
				Help:      "Number of seed categories in the active corpus",
			},
		),
		CorpusReloads: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "seed_corpus_reloads_total",
				Help:      "Total number of applied seed corpus reloads",
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.UpstreamRequests,
		c.UpstreamDuration,
		c.UpstreamRetries,
		c.BreakerState,
		c.QueryDuration,
		c.SelectionRestarts,
		c.Selections,
		c.GraphNodes,
		c.GraphEdges,
		c.PrunedNodes,
		c.SeedCategories,
		c.CorpusReloads,
	)

	return c
}

// WithCloudWatch mirrors request, upstream, selection and graph metrics to
// sink
func (c *Collector) WithCloudWatch(sink *CloudWatchSink) *Collector {
	c.cloudWatch = sink
	return c
}

// Flush publishes metrics buffered for CloudWatch, if configured
func (c *Collector) Flush(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.cloudWatch.Flush(ctx)
}

// RecordHTTP records one served HTTP request
func (c *Collector) RecordHTTP(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())

	dims := map[string]string{"Route": method + " " + route, "Status": strconv.Itoa(status)}
	c.cloudWatch.add("Requests", 1, types.StandardUnitCount, dims)
	c.cloudWatch.add("RequestLatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dims)
}

// RecordUpstream records one upstream HTTP call
func (c *Collector) RecordUpstream(upstream, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.UpstreamRequests.WithLabelValues(upstream, outcome).Inc()
	c.UpstreamDuration.WithLabelValues(upstream).Observe(duration.Seconds())

	dims := map[string]string{"Upstream": upstream, "Outcome": outcome}
	c.cloudWatch.add("UpstreamCalls", 1, types.StandardUnitCount, dims)
	c.cloudWatch.add("UpstreamLatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dims)
}

// RecordRetry records a retried upstream fetch
func (c *Collector) RecordRetry(upstream string) {
	if c == nil {
		return
	}
	c.UpstreamRetries.WithLabelValues(upstream).Inc()
}

// SetBreakerState publishes a circuit breaker state
func (c *Collector) SetBreakerState(name string, state int) {
	if c == nil {
		return
	}
	c.BreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordQuery records one dispatched query
func (c *Collector) RecordQuery(query, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.QueryDuration.WithLabelValues(query, outcome).Observe(duration.Seconds())
}

// RecordRestart records a restarted random selection
func (c *Collector) RecordRestart() {
	if c == nil {
		return
	}
	c.SelectionRestarts.Inc()
	c.cloudWatch.add("SelectionRestarts", 1, types.StandardUnitCount, nil)
}

// RecordSelection records a finished selection
func (c *Collector) RecordSelection(mode, outcome string) {
	if c == nil {
		return
	}
	c.Selections.WithLabelValues(mode, outcome).Inc()
	c.cloudWatch.add("Selections", 1, types.StandardUnitCount, map[string]string{"Mode": mode, "Outcome": outcome})
}

// RecordGraph records the size of a built graph
func (c *Collector) RecordGraph(nodes, edges, pruned int) {
	if c == nil {
		return
	}
	c.GraphNodes.Observe(float64(nodes))
	c.GraphEdges.Observe(float64(edges))
	c.PrunedNodes.Add(float64(pruned))

	c.cloudWatch.add("GraphNodes", float64(nodes), types.StandardUnitCount, nil)
	c.cloudWatch.add("GraphEdges", float64(edges), types.StandardUnitCount, nil)
	c.cloudWatch.add("PrunedNodes", float64(pruned), types.StandardUnitCount, nil)
}

// SetSeedCategories publishes the size of the active seed corpus
func (c *Collector) SetSeedCategories(n int) {
	if c == nil {
		return
	}
	c.SeedCategories.Set(float64(n))
}

// RecordCorpusReload records an applied seed corpus reload
func (c *Collector) RecordCorpusReload(categories int) {
	if c == nil {
		return
	}
	c.CorpusReloads.Inc()
	c.SeedCategories.Set(float64(categories))
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Handler exposes the registry for scraping
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
