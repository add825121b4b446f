package discovery

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/turtacn/ChemSource/internal/domain/supplier"
	"github.com/turtacn/ChemSource/internal/infrastructure/web"
	"github.com/turtacn/ChemSource/internal/intelligence/rerank"
	"github.com/turtacn/ChemSource/pkg/errors"
)

type fakeFetcher struct {
	mu       sync.Mutex
	pages    map[string]*web.Page
	errs     map[string]error
	calls    []string
	timeouts []time.Duration
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]*web.Page{}, errs: map[string]error{}}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, timeout time.Duration) (*web.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	f.timeouts = append(f.timeouts, timeout)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if p, ok := f.pages[url]; ok {
		cp := *p
		cp.URL = url
		return &cp, nil
	}
	return nil, errors.New(errors.ErrCodeFetchFailed, "unexpected status 404").WithDetail(url)
}

type fakeSource struct {
	candidates []supplier.Candidate
	err        error
	pages      int
}

func (s *fakeSource) Search(_ context.Context, _, _ string, pages int) ([]supplier.Candidate, error) {
	s.pages = pages
	return s.candidates, s.err
}

type extractResult struct {
	rec   *supplier.EvidenceRecord
	err   error
	panic bool
	delay time.Duration
}

type fakeExtractor struct {
	results  map[string]extractResult
	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (e *fakeExtractor) Extract(_ context.Context, url, _ string) (*supplier.EvidenceRecord, error) {
	e.calls.Add(1)
	n := e.inFlight.Add(1)
	defer e.inFlight.Add(-1)
	for {
		m := e.maxSeen.Load()
		if n <= m || e.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	r := e.results[url]
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if r.panic {
		panic("boom")
	}
	return r.rec, r.err
}

type fakeScorer struct {
	mu         sync.Mutex
	byText     map[string]float64
	fallback   float64
	queries    []string
	strategies []rerank.Strategy
}

func (s *fakeScorer) Score(_ context.Context, query, text string, strategy rerank.Strategy) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	s.strategies = append(s.strategies, strategy)
	if v, ok := s.byText[text]; ok {
		return v
	}
	return s.fallback
}

type countingMetrics struct {
	mu         sync.Mutex
	searches   map[string]int
	evidence   map[string]int
	candidates int
	suppliers  int
	fetchByHop map[string]int
	delivered  map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{searches: map[string]int{}, evidence: map[string]int{}, fetchByHop: map[string]int{}, delivered: map[string]int{}}
}

func (m *countingMetrics) ObserveSearch(status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches[status]++
}

func (m *countingMetrics) ObserveDelivery(sink string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		m.delivered[sink]++
	}
}

func (m *countingMetrics) ObserveCandidates(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates += n
}

func (m *countingMetrics) ObserveEvidence(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evidence[outcome]++
}

func (m *countingMetrics) ObserveSuppliers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suppliers += n
}

func (m *countingMetrics) ObserveFetch(hop string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchByHop[hop]++
}

// memoryCache mimics the redis cache contract: JSON values, a null marker
// for nil loader results and COMMON_012 when the marker is read.
type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	loads   int
	failGet error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) GetOrSet(ctx context.Context, key string, dest interface{}, _ time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	c.mu.Lock()
	if c.failGet != nil {
		c.mu.Unlock()
		return c.failGet
	}
	raw, ok := c.data[key]
	c.mu.Unlock()
	if ok {
		if string(raw) == "__null__" {
			return errors.New(errors.ErrCodeCachedNull, "cached null")
		}
		return json.Unmarshal(raw, dest)
	}

	c.mu.Lock()
	c.loads++
	c.mu.Unlock()
	v, err := loader(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if v == nil {
		c.data[key] = []byte("__null__")
		return errors.New(errors.ErrCodeCachedNull, "cached null")
	}
	raw, err = json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return json.Unmarshal(raw, dest)
}

type recordingSink struct {
	mu      sync.Mutex
	name    string
	err     error
	results []*supplier.ResultSet
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(_ context.Context, rs *supplier.ResultSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, rs)
	return s.err
}

//Personal.AI order the ending
