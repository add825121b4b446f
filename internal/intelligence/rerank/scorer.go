// Package rerank scores how relevant a candidate snippet is to a supplier
// query. Two backends are available: a remote rerank service and an
// in-process lexical model. The Scorer picks between them per call and
// never returns an error; a failed path scores 0.
package rerank

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
)

// Strategy selects the scoring backend.
type Strategy string

const (
	// StrategyAuto tries the remote service and falls back to the local model.
	StrategyAuto Strategy = "auto"
	// StrategyRemote uses only the remote service.
	StrategyRemote Strategy = "remote"
	// StrategyLocal uses only the local model.
	StrategyLocal Strategy = "local"
)

// ParseStrategy accepts auto, remote, local and the aliases cohere and bge.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return StrategyAuto, nil
	case "remote", "cohere":
		return StrategyRemote, nil
	case "local", "bge":
		return StrategyLocal, nil
	default:
		return "", fmt.Errorf("rerank: unknown strategy %q", s)
	}
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

// Reranker is a remote cross-encoder service. Scores are returned in the
// order of docs.
type Reranker interface {
	Rerank(ctx context.Context, query string, docs []string) ([]float64, error)
	ModelName() string
}

// LocalModel is a loaded in-process model. Score must be safe for
// concurrent use.
type LocalModel interface {
	Score(query, text string) float64
	Name() string
}

// ModelSource hands out the process-wide local model, loading it on first use.
type ModelSource interface {
	Model(ctx context.Context) (LocalModel, error)
}

// Recorder receives one event per backend call. outcome is one of
// ok, zero, error, unavailable.
type Recorder interface {
	ObserveRerank(strategy, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRerank(string, string) {}

// ---------------------------------------------------------------------------
// Result type
// ---------------------------------------------------------------------------

// RemoteResult is the outcome of one remote call. OK is false whenever the
// call did not produce a score; Score is then 0 and Err says why.
type RemoteResult struct {
	Score float64
	OK    bool
	Err   error
}

// ---------------------------------------------------------------------------
// Scorer
// ---------------------------------------------------------------------------

// Scorer dispatches relevance scoring to the configured backends.
type Scorer struct {
	remote        Reranker
	local         ModelSource
	zeroAsFailure bool
	logger        logging.Logger
	recorder      Recorder
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithZeroAsFailure makes StrategyAuto fall back to the local model when the
// remote call succeeds with a score of exactly 0.
func WithZeroAsFailure(v bool) Option {
	return func(s *Scorer) { s.zeroAsFailure = v }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Scorer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Scorer) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewScorer builds a Scorer. remote and local may be nil; a missing backend
// behaves like a failing one.
func NewScorer(remote Reranker, local ModelSource, opts ...Option) *Scorer {
	s := &Scorer{
		remote:        remote,
		local:         local,
		zeroAsFailure: true,
		logger:        logging.NewNopLogger(),
		recorder:      nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns a relevance score in [0, 1] for text against query.
func (s *Scorer) Score(ctx context.Context, query, text string, strategy Strategy) float64 {
	switch strategy {
	case StrategyRemote:
		return s.ScoreRemote(ctx, query, text).Score
	case StrategyLocal:
		return s.scoreLocalOrZero(ctx, query, text)
	case StrategyAuto, "":
		res := s.ScoreRemote(ctx, query, text)
		if res.OK && !(s.zeroAsFailure && res.Score == 0) {
			return res.Score
		}
		s.logger.Debug("remote rerank unusable, using local model",
			logging.Bool("remote_ok", res.OK),
			logging.Float64("remote_score", res.Score),
		)
		return s.scoreLocalOrZero(ctx, query, text)
	default:
		s.logger.Warn("unknown rerank strategy, using auto", logging.String("strategy", string(strategy)))
		return s.Score(ctx, query, text, StrategyAuto)
	}
}

// ScoreRemote calls the remote service for a single document.
func (s *Scorer) ScoreRemote(ctx context.Context, query, text string) (res RemoteResult) {
	if s.remote == nil {
		s.recorder.ObserveRerank(string(StrategyRemote), "unavailable")
		return RemoteResult{Err: fmt.Errorf("rerank: no remote reranker configured")}
	}
	defer func() {
		if r := recover(); r != nil {
			res = RemoteResult{Err: fmt.Errorf("rerank: remote panic: %v", r)}
			s.recorder.ObserveRerank(string(StrategyRemote), "error")
		}
	}()

	scores, err := s.remote.Rerank(ctx, query, []string{text})
	if err != nil {
		s.logger.Debug("remote rerank failed",
			logging.String("model", s.remote.ModelName()),
			logging.Err(err),
		)
		s.recorder.ObserveRerank(string(StrategyRemote), "error")
		return RemoteResult{Err: err}
	}
	if len(scores) == 0 {
		s.recorder.ObserveRerank(string(StrategyRemote), "error")
		return RemoteResult{Err: fmt.Errorf("rerank: remote returned no scores")}
	}

	score := clampUnit(scores[0])
	if score == 0 {
		s.recorder.ObserveRerank(string(StrategyRemote), "zero")
	} else {
		s.recorder.ObserveRerank(string(StrategyRemote), "ok")
	}
	return RemoteResult{Score: score, OK: true}
}

// ScoreLocal runs the local model, loading it if needed.
func (s *Scorer) ScoreLocal(ctx context.Context, query, text string) (score float64, err error) {
	if s.local == nil {
		s.recorder.ObserveRerank(string(StrategyLocal), "unavailable")
		return 0, fmt.Errorf("rerank: no local model configured")
	}
	defer func() {
		if r := recover(); r != nil {
			score, err = 0, fmt.Errorf("rerank: local panic: %v", r)
			s.recorder.ObserveRerank(string(StrategyLocal), "error")
		}
	}()

	model, err := s.local.Model(ctx)
	if err != nil {
		s.recorder.ObserveRerank(string(StrategyLocal), "error")
		return 0, err
	}
	score = clampUnit(model.Score(query, text))
	s.recorder.ObserveRerank(string(StrategyLocal), "ok")
	return score, nil
}

func (s *Scorer) scoreLocalOrZero(ctx context.Context, query, text string) float64 {
	score, err := s.ScoreLocal(ctx, query, text)
	if err != nil {
		s.logger.Warn("local rerank failed", logging.Err(err))
		return 0
	}
	return score
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

//Personal.AI order the ending
