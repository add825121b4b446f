package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/ChemSource/internal/domain/supplier"
	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSource/internal/intelligence/rerank"
	"github.com/turtacn/ChemSource/pkg/errors"
)

// PipelineConfig configures Pipeline.
type PipelineConfig struct {
	SearchPages int
	Limits      Limits
}

// Pipeline runs one discovery request end to end.
type Pipeline struct {
	source    CandidateSource
	extractor EvidenceExtractor
	scorer    RelevanceScorer
	config    PipelineConfig
	logger    logging.Logger
	metrics   Metrics
}

// NewPipeline creates a Pipeline. logger and metrics may be nil.
func NewPipeline(source CandidateSource, extractor EvidenceExtractor, scorer RelevanceScorer, cfg PipelineConfig, logger logging.Logger, metrics Metrics) *Pipeline {
	if cfg.SearchPages <= 0 {
		cfg.SearchPages = 2
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &Pipeline{
		source:    source,
		extractor: extractor,
		scorer:    scorer,
		config:    cfg,
		logger:    logger.Named("pipeline"),
		metrics:   metrics,
	}
}

// Run searches for candidates, extracts evidence from up to MaxCandidates of
// them with at most MaxWorkers in flight, scores the records, filters them
// by country and returns at most Limit suppliers, unique by domain, in
// descending confidence order.
//
// Only search-provider configuration errors and cancellation are returned.
// Per-candidate failures drop that candidate. If both country lists are set
// the allow-list wins.
func (p *Pipeline) Run(ctx context.Context, req Request) (*supplier.ResultSet, error) {
	req = req.withDefaults(p.config.Limits)
	strategy, err := rerank.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid rerank strategy")
	}

	query := req.Query()
	rs := supplier.Empty(req.ChemicalName, req.CAS)
	rs.RunID = uuid.NewString()
	rs.Query = query

	log := p.logger.With(
		logging.String("run_id", rs.RunID),
		logging.String("cas", req.CAS),
	)
	log.Info("discovery started", logging.String("query", query))

	candidates, err := p.source.Search(ctx, req.ChemicalName, req.CAS, p.config.SearchPages)
	if err != nil {
		return nil, err
	}
	if len(candidates) > req.MaxCandidates {
		candidates = candidates[:req.MaxCandidates]
	}
	rs.Candidates = len(candidates)
	p.metrics.ObserveCandidates(len(candidates))

	if len(candidates) == 0 {
		log.Info("no candidates found")
		return rs, nil
	}

	slots := make([]*supplier.ScoredSupplier, len(candidates))

	var g errgroup.Group
	g.SetLimit(req.MaxWorkers)
	for i := range candidates {
		i, c := i, candidates[i]
		g.Go(func() error {
			slots[i] = p.process(ctx, log, c, req.CAS, query, strategy)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "discovery interrupted")
	}

	scored := make([]supplier.ScoredSupplier, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			scored = append(scored, *s)
		}
	}
	rs.Evidence = len(scored)

	filtered := req.Filter().Apply(scored)
	rs.Suppliers = supplier.RankAndDedup(filtered, req.Limit)
	rs.GeneratedAt = time.Now().UTC()
	p.metrics.ObserveSuppliers(len(rs.Suppliers))

	log.Info("discovery finished",
		logging.Int("candidates", rs.Candidates),
		logging.Int("evidence", rs.Evidence),
		logging.Int("filtered_out", len(scored)-len(filtered)),
		logging.Int("suppliers", len(rs.Suppliers)),
	)
	return rs, nil
}

// process handles one candidate. It never panics and returns nil when the
// candidate yields no evidence.
func (p *Pipeline) process(ctx context.Context, log logging.Logger, c supplier.Candidate, identifier, query string, strategy rerank.Strategy) (out *supplier.ScoredSupplier) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("candidate panicked", logging.String("url", c.Link), logging.String("panic", fmt.Sprint(r)))
			p.metrics.ObserveEvidence(OutcomeFailed)
			out = nil
		}
	}()

	rec, err := p.extractor.Extract(ctx, c.Link, identifier)
	if err != nil {
		log.Debug("candidate fetch failed", logging.String("url", c.Link), logging.Err(err))
		p.metrics.ObserveEvidence(OutcomeFailed)
		return nil
	}
	if rec == nil {
		p.metrics.ObserveEvidence(OutcomeAbsent)
		return nil
	}
	p.metrics.ObserveEvidence(OutcomeFound)

	relevance := p.scorer.Score(ctx, query, c.SearchText(), strategy)
	s := supplier.Score(c, rec, relevance, identifier)
	return &s
}

//Personal.AI order the ending
