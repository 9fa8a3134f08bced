package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/grouper/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Metrics are registered lazily on first use, so constructing a collector
// that is never used leaves the registry untouched.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	// Roster metrics
	rosterLoads        *prometheus.CounterVec
	rosterLoadDuration *prometheus.HistogramVec
	rosterSize         prometheus.Gauge

	// Grouping metrics
	groupings     *prometheus.CounterVec
	groupsFormed  prometheus.Histogram
	groupsClamped prometheus.Counter

	// HTTP metrics
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "grouper" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "grouper"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.rosterLoads = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "roster",
			Name:      "loads_total",
			Help:      "Total roster loads by source and result (success, failure).",
		}, []string{"source", "result"})

		p.rosterLoadDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "roster",
			Name:      "load_duration_seconds",
			Help:      "Roster load latency in seconds by source.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2.5, 10), // 1ms .. ~3.8s
		}, []string{"source"})

		p.rosterSize = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "roster",
			Name:      "people",
			Help:      "Number of people in the most recently loaded roster.",
		})

		p.groupings = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "grouping",
			Name:      "partitions_total",
			Help:      "Total partition passes by strategy.",
		}, []string{"strategy"})

		p.groupsFormed = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "grouping",
			Name:      "effective_groups",
			Help:      "Number of groups produced per partition pass.",
			Buckets:   []float64{0, 1, 2, 3, 4, 6, 8, 12, 16, 32},
		})

		p.groupsClamped = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "grouping",
			Name:      "clamped_total",
			Help:      "Partition passes that produced fewer groups than requested.",
		})

		p.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status code.",
		}, []string{"route", "code"})

		p.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"})

		p.reg.MustRegister(p.rosterLoads)
		p.reg.MustRegister(p.rosterLoadDuration)
		p.reg.MustRegister(p.rosterSize)
		p.reg.MustRegister(p.groupings)
		p.reg.MustRegister(p.groupsFormed)
		p.reg.MustRegister(p.groupsClamped)
		p.reg.MustRegister(p.httpRequests)
		p.reg.MustRegister(p.httpDuration)
	})
}

// RosterMetrics implementation

// RecordRosterLoad counts a roster load and observes its latency.
func (p *PrometheusCollector) RecordRosterLoad(source string, duration float64, success bool) {
	p.ensureRegistered()

	result := "success"
	if !success {
		result = "failure"
	}
	p.rosterLoads.WithLabelValues(source, result).Inc()
	p.rosterLoadDuration.WithLabelValues(source).Observe(duration)
}

// RecordRosterSize sets the roster size gauge.
func (p *PrometheusCollector) RecordRosterSize(count int) {
	p.ensureRegistered()
	p.rosterSize.Set(float64(count))
}

// GroupingMetrics implementation

// RecordGrouping counts a partition pass and observes the produced group count.
func (p *PrometheusCollector) RecordGrouping(strategy string, requested, effective int) {
	p.ensureRegistered()
	p.groupings.WithLabelValues(strategy).Inc()
	p.groupsFormed.Observe(float64(effective))
	if effective < requested {
		p.groupsClamped.Inc()
	}
}

// HTTPMetrics implementation

// RecordHTTPRequest counts a served request and observes its latency.
func (p *PrometheusCollector) RecordHTTPRequest(route string, code int, duration float64) {
	p.ensureRegistered()
	p.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	p.httpDuration.WithLabelValues(route).Observe(duration)
}
