// Package prometheus exposes ChemSource metrics on a private registry.
package prometheus

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
)

// MetricsCollector registers metric vectors and serves the scrape endpoint.
type MetricsCollector interface {
	RegisterCounter(name, help string, labels ...string) CounterVec
	RegisterGauge(name, help string, labels ...string) GaugeVec
	RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec
	Handler() http.Handler
}

type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
}

type Counter interface {
	Inc()
	Add(delta float64)
}

type GaugeVec interface {
	WithLabelValues(lvs ...string) Gauge
}

type Gauge interface {
	Set(value float64)
	Inc()
	Dec()
}

type HistogramVec interface {
	WithLabelValues(lvs ...string) Histogram
}

type Histogram interface {
	Observe(value float64)
}

// CollectorConfig configures a Registry.
type CollectorConfig struct {
	// Namespace prefixes every metric name. Required.
	Namespace string

	// RuntimeMetrics adds the Go runtime and process collectors.
	RuntimeMetrics bool
}

// Registry is a MetricsCollector backed by its own prometheus.Registry, so
// several instances (tests, multiple apps in one process) never collide.
// Registering a name twice returns the existing vector; registering it with a
// different metric type returns a no-op vector and logs a warning.
type Registry struct {
	namespace string
	reg       *prometheus.Registry
	logger    logging.Logger

	mu   sync.Mutex
	vecs map[string]prometheus.Collector
}

// NewMetricsCollector creates a Registry.
func NewMetricsCollector(cfg CollectorConfig, logger logging.Logger) (*Registry, error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("prometheus: namespace is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	reg := prometheus.NewRegistry()
	if cfg.RuntimeMetrics {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: cfg.Namespace}),
		)
	}

	return &Registry{
		namespace: cfg.Namespace,
		reg:       reg,
		logger:    logger,
		vecs:      make(map[string]prometheus.Collector),
	}, nil
}

// Handler serves the registry in the OpenMetrics or text format, with the
// handler's own request counters.
func (r *Registry) Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(r.reg,
		promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{EnableOpenMetrics: true}))
}

func (r *Registry) RegisterCounter(name, help string, labels ...string) CounterVec {
	vec, ok := register(r, name, "counter", prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      name,
		Help:      help,
	}, labels))
	if !ok {
		return noopVec[Counter]{}
	}
	return counterVec{vec}
}

func (r *Registry) RegisterGauge(name, help string, labels ...string) GaugeVec {
	vec, ok := register(r, name, "gauge", prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      name,
		Help:      help,
	}, labels))
	if !ok {
		return noopVec[Gauge]{}
	}
	return gaugeVec{vec}
}

// RegisterHistogram registers a histogram; nil buckets use
// DefaultHTTPDurationBuckets.
func (r *Registry) RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec {
	if buckets == nil {
		buckets = DefaultHTTPDurationBuckets
	}
	vec, ok := register(r, name, "histogram", prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels))
	if !ok {
		return noopVec[Histogram]{}
	}
	return histogramVec{vec}
}

func register[V prometheus.Collector](r *Registry, name, kind string, vec V) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fqName := prometheus.BuildFQName(r.namespace, "", name)
	if existing, found := r.vecs[fqName]; found {
		typed, ok := existing.(V)
		if !ok {
			r.logger.Warn("metric registered with another type",
				logging.String("name", fqName), logging.String("type", kind))
		}
		return typed, ok
	}

	if err := r.reg.Register(vec); err != nil {
		r.logger.Error("failed to register metric",
			logging.String("name", fqName), logging.String("type", kind), logging.Err(err))
		var zero V
		return zero, false
	}
	r.vecs[fqName] = vec
	return vec, true
}

type counterVec struct{ vec *prometheus.CounterVec }

func (v counterVec) WithLabelValues(lvs ...string) Counter { return v.vec.WithLabelValues(lvs...) }

type gaugeVec struct{ vec *prometheus.GaugeVec }

func (v gaugeVec) WithLabelValues(lvs ...string) Gauge { return v.vec.WithLabelValues(lvs...) }

type histogramVec struct{ vec *prometheus.HistogramVec }

func (v histogramVec) WithLabelValues(lvs ...string) Histogram { return v.vec.WithLabelValues(lvs...) }

// noop satisfies Counter, Gauge and Histogram.
type noop struct{}

func (noop) Inc()            {}
func (noop) Dec()            {}
func (noop) Add(float64)     {}
func (noop) Set(float64)     {}
func (noop) Observe(float64) {}

type noopVec[M any] struct{}

func (noopVec[M]) WithLabelValues(...string) M {
	var m interface{} = noop{}
	return m.(M)
}

//Personal.AI order the ending
