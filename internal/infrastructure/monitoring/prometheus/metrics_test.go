package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "chemsource"}, nil)
	require.NoError(t, err)
	return NewAppMetrics(c), c
}

func TestNewAppMetrics_AllMetricsRegistered(t *testing.T) {
	m, _ := newTestAppMetrics(t)
	require.NotNil(t, m)

	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.HTTPActiveRequests)
	assert.NotNil(t, m.SearchesTotal)
	assert.NotNil(t, m.SearchDuration)
	assert.NotNil(t, m.CandidatesTotal)
	assert.NotNil(t, m.EvidenceTotal)
	assert.NotNil(t, m.SuppliersReturned)
	assert.NotNil(t, m.PageFetchDuration)
	assert.NotNil(t, m.RerankRequestTotal)
	assert.NotNil(t, m.SinkDeliveriesTotal)
	assert.NotNil(t, m.BuildInfo)
}

func TestNewAppMetrics_Idempotent(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "chemsource"}, nil)
	require.NoError(t, err)
	first := NewAppMetrics(c)
	second := NewAppMetrics(c)

	first.ObserveEvidence("found")
	second.ObserveEvidence("found")

	assert.Equal(t, 2.0, sampleValue(t, scrapeMetrics(t, c), "chemsource_evidence_total", `outcome="found"`))
}

func TestAppMetrics_PipelineObservations(t *testing.T) {
	m, c := newTestAppMetrics(t)

	m.ObserveSearch("ok", 12*time.Second)
	m.ObserveSearch("invalid", 0)
	m.ObserveCandidates(17)
	m.ObserveCandidates(3)
	m.ObserveEvidence("found")
	m.ObserveEvidence("absent")
	m.ObserveEvidence("found")
	m.ObserveSuppliers(4)
	m.ObserveFetch("primary", 800*time.Millisecond)
	m.ObserveFetch("follow", 2*time.Second)

	out := scrapeMetrics(t, c)
	assert.Equal(t, 1.0, sampleValue(t, out, "chemsource_searches_total", `status="ok"`))
	assert.Equal(t, 1.0, sampleValue(t, out, "chemsource_searches_total", `status="invalid"`))
	assert.Equal(t, 2.0, sampleValue(t, out, "chemsource_search_duration_seconds_count"))
	assert.Equal(t, 20.0, sampleValue(t, out, "chemsource_candidates_total"))
	assert.Equal(t, 2.0, sampleValue(t, out, "chemsource_evidence_total", `outcome="found"`))
	assert.Equal(t, 1.0, sampleValue(t, out, "chemsource_evidence_total", `outcome="absent"`))
	assert.Equal(t, 4.0, sampleValue(t, out, "chemsource_suppliers_returned_sum"))
	assert.Equal(t, 1.0, sampleValue(t, out, "chemsource_page_fetch_duration_seconds_count", `hop="primary"`))
	assert.Equal(t, 1.0, sampleValue(t, out, "chemsource_page_fetch_duration_seconds_count", `hop="follow"`))
}

func TestAppMetrics_ObserveRerank(t *testing.T) {
	m, c := newTestAppMetrics(t)
	m.ObserveRerank("cohere", "success")
	m.ObserveRerank("cohere", "fallback")
	m.ObserveRerank("local", "success")

	out := scrapeMetrics(t, c)
	assert.Equal(t, 1.0, sampleValue(t, out, "chemsource_rerank_requests_total", `strategy="cohere"`, `outcome="fallback"`))
	assert.Equal(t, 1.0, sampleValue(t, out, "chemsource_rerank_requests_total", `strategy="local"`, `outcome="success"`))
}

func TestAppMetrics_ObserveDelivery(t *testing.T) {
	m, c := newTestAppMetrics(t)
	m.ObserveDelivery("kafka", nil)
	m.ObserveDelivery("kafka", errors.New("broker down"))
	m.ObserveDelivery("minio", nil)

	out := scrapeMetrics(t, c)
	assert.Equal(t, 1.0, sampleValue(t, out, "chemsource_sink_deliveries_total", `sink="kafka"`, `status="success"`))
	assert.Equal(t, 1.0, sampleValue(t, out, "chemsource_sink_deliveries_total", `sink="kafka"`, `status="failure"`))
	assert.Equal(t, 1.0, sampleValue(t, out, "chemsource_sink_deliveries_total", `sink="minio"`))
}

func TestAppMetrics_RecordHTTPRequest(t *testing.T) {
	m, c := newTestAppMetrics(t)
	m.RecordHTTPRequest("POST", "/api/v1/search", 200, 150*time.Millisecond)
	m.RecordHTTPRequest("POST", "/api/v1/search", 400, time.Millisecond)

	out := scrapeMetrics(t, c)
	assert.Equal(t, 1.0, sampleValue(t, out, "chemsource_http_requests_total", `status_code="200"`))
	assert.Equal(t, 1.0, sampleValue(t, out, "chemsource_http_requests_total", `status_code="400"`))
	assert.Equal(t, 2.0, sampleValue(t, out, "chemsource_http_request_duration_seconds_count", `path="/api/v1/search"`))
}

func TestAppMetrics_TrackInFlight(t *testing.T) {
	m, c := newTestAppMetrics(t)
	doneA := m.TrackInFlight("POST")
	doneB := m.TrackInFlight("POST")
	assert.Equal(t, 2.0, sampleValue(t, scrapeMetrics(t, c), "chemsource_http_active_requests", `method="POST"`))

	doneA()
	doneB()
	assert.Equal(t, 0.0, sampleValue(t, scrapeMetrics(t, c), "chemsource_http_active_requests", `method="POST"`))
}

func TestAppMetrics_SetBuildInfo(t *testing.T) {
	m, c := newTestAppMetrics(t)
	m.SetBuildInfo("1.2.0", "abc123")
	assert.Equal(t, 1.0, sampleValue(t, scrapeMetrics(t, c), "chemsource_build_info", `version="1.2.0"`, `commit="abc123"`))
}

//Personal.AI order the ending
