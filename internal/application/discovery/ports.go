// Package discovery orchestrates supplier discovery for a chemical: candidate
// search, evidence extraction across a bounded worker pool, relevance and
// confidence scoring, country filtering and ranking.
package discovery

import (
	"context"
	"time"

	"github.com/turtacn/ChemSource/internal/domain/supplier"
	"github.com/turtacn/ChemSource/internal/infrastructure/web"
	"github.com/turtacn/ChemSource/internal/intelligence/rerank"
)

// CandidateSource returns search hits for a chemical, deduplicated by link.
type CandidateSource interface {
	Search(ctx context.Context, chemicalName, identifier string, pages int) ([]supplier.Candidate, error)
}

// PageFetcher retrieves a page within timeout.
type PageFetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (*web.Page, error)
}

// RelevanceScorer scores query/text relevance in [0,1]. It never fails.
type RelevanceScorer interface {
	Score(ctx context.Context, query, text string, strategy rerank.Strategy) float64
}

// EvidenceExtractor confirms an identifier on a candidate page or its one-hop
// children. A nil record with a nil error means no evidence was found; an
// error means the candidate page itself could not be retrieved.
type EvidenceExtractor interface {
	Extract(ctx context.Context, url, identifier string) (*supplier.EvidenceRecord, error)
}

// EvidenceCache is the subset of the key/value cache CachingExtractor uses.
// GetOrSet stores a nil loader result as a null marker and reports it with a
// COMMON_012 error.
type EvidenceCache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
}

// ResultSink receives completed result sets. Delivery is best effort.
type ResultSink interface {
	Name() string
	Deliver(ctx context.Context, rs *supplier.ResultSet) error
}

// Metrics records pipeline activity.
type Metrics interface {
	ObserveSearch(status string, elapsed time.Duration)
	ObserveCandidates(n int)
	ObserveEvidence(outcome string)
	ObserveSuppliers(n int)
	ObserveFetch(hop string, elapsed time.Duration)
	ObserveDelivery(sink string, err error)
}

// Evidence outcomes.
const (
	OutcomeFound  = "found"
	OutcomeAbsent = "absent"
	OutcomeFailed = "failed"
)

// Fetch hops.
const (
	HopPrimary = "primary"
	HopFollow  = "follow"
)

type nopMetrics struct{}

func (nopMetrics) ObserveSearch(string, time.Duration) {}
func (nopMetrics) ObserveCandidates(int)               {}
func (nopMetrics) ObserveEvidence(string)              {}
func (nopMetrics) ObserveSuppliers(int)                {}
func (nopMetrics) ObserveFetch(string, time.Duration)  {}
func (nopMetrics) ObserveDelivery(string, error)       {}

// NopMetrics discards observations.
func NopMetrics() Metrics { return nopMetrics{} }

//Personal.AI order the ending
