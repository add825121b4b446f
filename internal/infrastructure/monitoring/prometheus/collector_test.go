package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) *Registry {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

// sampleValue returns the value of the first sample named name whose label
// set contains every fragment, e.g. `method="GET"`.
func sampleValue(t *testing.T, output, name string, fragments ...string) float64 {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		series := fields[0]
		metric := series
		if i := strings.IndexByte(series, '{'); i >= 0 {
			metric = series[:i]
		}
		if metric != name {
			continue
		}
		matched := true
		for _, f := range fragments {
			if !strings.Contains(series, f) {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		require.NoError(t, err)
		return v
	}
	t.Fatalf("sample %s %v not found", name, fragments)
	return 0
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestNewMetricsCollector_NilLogger(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test"}, nil)
	require.NoError(t, err)
	c.RegisterCounter("x_total", "x").WithLabelValues().Inc()
	assert.Equal(t, 1.0, sampleValue(t, scrapeMetrics(t, c), "test_x_total"))
}

func TestNewMetricsCollector_RuntimeMetrics(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", RuntimeMetrics: true}, nil)
	require.NoError(t, err)
	out := scrapeMetrics(t, c)
	assert.Contains(t, out, "go_goroutines")
	assert.NotContains(t, scrapeMetrics(t, newTestCollector(t)), "go_goroutines")
}

func TestHandler_CountsScrapes(t *testing.T) {
	c := newTestCollector(t)
	scrapeMetrics(t, c)
	out := scrapeMetrics(t, c)
	assert.Equal(t, 1.0, sampleValue(t, out, "promhttp_metric_handler_requests_total", `code="200"`))
}

func TestRegisterCounter_WithLabels(t *testing.T) {
	c := newTestCollector(t)
	counter := c.RegisterCounter("evidence", "Evidence outcomes", "outcome")
	counter.WithLabelValues("found").Add(5)
	counter.WithLabelValues("absent").Inc()

	output := scrapeMetrics(t, c)
	assert.Equal(t, 5.0, sampleValue(t, output, "test_evidence", `outcome="found"`))
	assert.Equal(t, 1.0, sampleValue(t, output, "test_evidence", `outcome="absent"`))
}

func TestRegisterCounter_DuplicateSharesVector(t *testing.T) {
	c := newTestCollector(t)
	c1 := c.RegisterCounter("dup_counter", "help")
	c2 := c.RegisterCounter("dup_counter", "help")

	c1.WithLabelValues().Inc()
	c2.WithLabelValues().Inc()

	assert.Equal(t, 2.0, sampleValue(t, scrapeMetrics(t, c), "test_dup_counter"))
}

func TestRegisterGauge_Operations(t *testing.T) {
	c := newTestCollector(t)
	gauge := c.RegisterGauge("in_flight", "In-flight pages").WithLabelValues()
	gauge.Set(10)
	gauge.Inc()
	gauge.Dec()
	gauge.Dec()

	assert.Equal(t, 9.0, sampleValue(t, scrapeMetrics(t, c), "test_in_flight"))
}

func TestRegisterHistogram_DefaultBuckets(t *testing.T) {
	c := newTestCollector(t)
	hist := c.RegisterHistogram("latency", "Latency", nil)
	hist.WithLabelValues().Observe(0.1)
	hist.WithLabelValues().Observe(20)

	output := scrapeMetrics(t, c)
	assert.Equal(t, 2.0, sampleValue(t, output, "test_latency_count"))
	assert.Equal(t, 1.0, sampleValue(t, output, "test_latency_bucket", `le="0.1"`))
	assert.Equal(t, 1.0, sampleValue(t, output, "test_latency_bucket", `le="10"`))
}

func TestConcurrentRegistration(t *testing.T) {
	c := newTestCollector(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RegisterCounter("concurrent_metric", "help", "id").WithLabelValues("1").Inc()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50.0, sampleValue(t, scrapeMetrics(t, c), "test_concurrent_metric", `id="1"`))
}

func TestTypeConflictReturnsNoop(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("conflict", "help").WithLabelValues().Inc()

	gauge := c.RegisterGauge("conflict", "help")
	gauge.WithLabelValues("ignored").Set(10)
	c.RegisterHistogram("conflict", "help", nil).WithLabelValues().Observe(1)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "# TYPE test_conflict counter")
	assert.Equal(t, 1.0, sampleValue(t, output, "test_conflict"))
}

//Personal.AI order the ending
