package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds the ChemSource application metrics.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Discovery pipeline
	SearchesTotal      CounterVec
	SearchDuration     HistogramVec
	CandidatesTotal    CounterVec
	EvidenceTotal      CounterVec
	SuppliersReturned  HistogramVec
	PageFetchDuration  HistogramVec
	RerankRequestTotal CounterVec

	// Delivery
	SinkDeliveriesTotal CounterVec

	BuildInfo GaugeVec
}

var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultSearchDurationBuckets = []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300}
	DefaultFetchDurationBuckets  = []float64{.1, .25, .5, 1, 2.5, 5, 10, 15, 30}
	DefaultSupplierCountBuckets  = []float64{0, 1, 2, 5, 10, 20, 50}
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	m.SearchesTotal = collector.RegisterCounter("searches_total", "Supplier searches by status", "status")
	m.SearchDuration = collector.RegisterHistogram("search_duration_seconds", "End-to-end supplier search duration", DefaultSearchDurationBuckets)
	m.CandidatesTotal = collector.RegisterCounter("candidates_total", "Candidate pages returned by web search")
	m.EvidenceTotal = collector.RegisterCounter("evidence_total", "Evidence extraction outcomes", "outcome")
	m.SuppliersReturned = collector.RegisterHistogram("suppliers_returned", "Suppliers returned per search", DefaultSupplierCountBuckets)
	m.PageFetchDuration = collector.RegisterHistogram("page_fetch_duration_seconds", "Page fetch duration by hop", DefaultFetchDurationBuckets, "hop")
	m.RerankRequestTotal = collector.RegisterCounter("rerank_requests_total", "Relevance scoring requests", "strategy", "outcome")

	m.SinkDeliveriesTotal = collector.RegisterCounter("sink_deliveries_total", "Result deliveries by sink", "sink", "status")

	m.BuildInfo = collector.RegisterGauge("build_info", "Build information (always 1)", "version", "commit")

	return m
}

// RecordHTTPRequest records one served HTTP request.
func (m *AppMetrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackInFlight counts a request as active until the returned func is called.
func (m *AppMetrics) TrackInFlight(method string) func() {
	g := m.HTTPActiveRequests.WithLabelValues(method)
	g.Inc()
	return g.Dec
}

func (m *AppMetrics) ObserveSearch(status string, elapsed time.Duration) {
	m.SearchesTotal.WithLabelValues(status).Inc()
	m.SearchDuration.WithLabelValues().Observe(elapsed.Seconds())
}

func (m *AppMetrics) ObserveCandidates(n int) {
	m.CandidatesTotal.WithLabelValues().Add(float64(n))
}

func (m *AppMetrics) ObserveEvidence(outcome string) {
	m.EvidenceTotal.WithLabelValues(outcome).Inc()
}

func (m *AppMetrics) ObserveSuppliers(n int) {
	m.SuppliersReturned.WithLabelValues().Observe(float64(n))
}

func (m *AppMetrics) ObserveFetch(hop string, elapsed time.Duration) {
	m.PageFetchDuration.WithLabelValues(hop).Observe(elapsed.Seconds())
}

// ObserveRerank counts one relevance scoring attempt.
func (m *AppMetrics) ObserveRerank(strategy, outcome string) {
	m.RerankRequestTotal.WithLabelValues(strategy, outcome).Inc()
}

// ObserveDelivery counts one result-set delivery to a sink.
func (m *AppMetrics) ObserveDelivery(sink string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.SinkDeliveriesTotal.WithLabelValues(sink, status).Inc()
}

// SetBuildInfo publishes the running build.
func (m *AppMetrics) SetBuildInfo(version, commit string) {
	m.BuildInfo.WithLabelValues(version, commit).Set(1)
}

//Personal.AI order the ending
