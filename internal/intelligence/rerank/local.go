package rerank

import (
	"context"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
)

// ---------------------------------------------------------------------------
// Provider
// ---------------------------------------------------------------------------

// Loader builds a LocalModel. It runs at most once at a time.
type Loader func(ctx context.Context) (LocalModel, error)

// LocalProvider owns the process-wide local model. The first caller of Model
// triggers the load; concurrent first callers share that load. A failed load
// is retried by the next caller.
type LocalProvider struct {
	load   Loader
	model  atomic.Pointer[LocalModel]
	group  singleflight.Group
	logger logging.Logger
}

var _ ModelSource = (*LocalProvider)(nil)

// NewLocalProvider wraps load. A nil logger is replaced with a no-op one.
func NewLocalProvider(load Loader, logger logging.Logger) *LocalProvider {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &LocalProvider{load: load, logger: logger}
}

// Model returns the loaded model, loading it on first use.
func (p *LocalProvider) Model(ctx context.Context) (LocalModel, error) {
	if m := p.model.Load(); m != nil {
		return *m, nil
	}

	v, err, _ := p.group.Do("model", func() (interface{}, error) {
		if m := p.model.Load(); m != nil {
			return *m, nil
		}
		start := time.Now()
		m, err := p.load(ctx)
		if err != nil {
			p.logger.Error("local rerank model load failed", logging.Err(err))
			return nil, err
		}
		p.model.Store(&m)
		p.logger.Info("local rerank model loaded",
			logging.String("model", m.Name()),
			logging.Duration("took", time.Since(start)),
		)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(LocalModel), nil
}

// Loaded reports whether the model has been initialized.
func (p *LocalProvider) Loaded() bool {
	return p.model.Load() != nil
}

// ---------------------------------------------------------------------------
// Lexical model
// ---------------------------------------------------------------------------

// Weights parameterize the lexical cross-scorer:
//
//	score = sigmoid(bias + identifier·idHit + coverage·tokenCoverage
//	                + intent·min(intentHits, cap) + evidence·min(evidenceHits, cap)
//	                - negative·min(negativeHits, cap))
type Weights struct {
	Bias          float64  `yaml:"bias"`
	Identifier    float64  `yaml:"identifier"`
	Coverage      float64  `yaml:"coverage"`
	Intent        float64  `yaml:"intent"`
	Evidence      float64  `yaml:"evidence"`
	Negative      float64  `yaml:"negative"`
	MaxTermHits   int      `yaml:"max_term_hits"`
	IntentTerms   []string `yaml:"intent_terms"`
	EvidenceTerms []string `yaml:"evidence_terms"`
	NegativeTerms []string `yaml:"negative_terms"`
}

// DefaultWeights returns the built-in weights.
func DefaultWeights() Weights {
	return Weights{
		Bias:        -3.0,
		Identifier:  2.5,
		Coverage:    2.0,
		Intent:      0.6,
		Evidence:    0.8,
		Negative:    1.2,
		MaxTermHits: 3,
		IntentTerms: []string{
			"supplier", "suppliers", "manufacturer", "manufacturers", "distributor",
			"buy", "purchase", "price", "quote", "order", "bulk", "wholesale", "in stock",
		},
		EvidenceTerms: []string{"sds", "msds", "tds", "datasheet", "coa", "specification", "catalog", "purity"},
		NegativeTerms: []string{"wikipedia", "news", "patent", "pubchem", "toxicity study", "journal", "forum"},
	}
}

// LexicalModel is a deterministic term-overlap scorer. It is immutable after
// construction and safe for concurrent use.
type LexicalModel struct {
	w        Weights
	intent   []string
	evidence []string
	negative []string
}

var _ LocalModel = (*LexicalModel)(nil)

// NewLexicalModel builds a model from w. Missing term lists and a
// non-positive cap are taken from DefaultWeights.
func NewLexicalModel(w Weights) *LexicalModel {
	d := DefaultWeights()
	if w.MaxTermHits <= 0 {
		w.MaxTermHits = d.MaxTermHits
	}
	if len(w.IntentTerms) == 0 {
		w.IntentTerms = d.IntentTerms
	}
	if len(w.EvidenceTerms) == 0 {
		w.EvidenceTerms = d.EvidenceTerms
	}
	if len(w.NegativeTerms) == 0 {
		w.NegativeTerms = d.NegativeTerms
	}
	return &LexicalModel{
		w:        w,
		intent:   lowerAll(w.IntentTerms),
		evidence: lowerAll(w.EvidenceTerms),
		negative: lowerAll(w.NegativeTerms),
	}
}

// Name implements LocalModel.
func (m *LexicalModel) Name() string { return "lexical-cross-scorer" }

var reToken = regexp.MustCompile(`[\p{L}\p{N}]+(?:-[\p{L}\p{N}]+)*`)

// Score implements LocalModel.
func (m *LexicalModel) Score(query, text string) float64 {
	lowerText := strings.ToLower(text)
	textTokens := make(map[string]struct{})
	for _, t := range reToken.FindAllString(lowerText, -1) {
		textTokens[t] = struct{}{}
	}

	var idTotal, idHits, wordTotal, wordHits int
	for _, t := range reToken.FindAllString(strings.ToLower(query), -1) {
		if hasDigit(t) {
			idTotal++
			if strings.Contains(lowerText, t) {
				idHits++
			}
			continue
		}
		wordTotal++
		if _, ok := textTokens[t]; ok {
			wordHits++
		}
	}

	z := m.w.Bias
	if idTotal > 0 {
		z += m.w.Identifier * float64(idHits) / float64(idTotal)
	}
	if wordTotal > 0 {
		z += m.w.Coverage * float64(wordHits) / float64(wordTotal)
	}
	z += m.w.Intent * float64(m.hits(lowerText, m.intent))
	z += m.w.Evidence * float64(m.hits(lowerText, m.evidence))
	z -= m.w.Negative * float64(m.hits(lowerText, m.negative))

	return sigmoid(z)
}

func (m *LexicalModel) hits(text string, terms []string) int {
	n := 0
	for _, t := range terms {
		if containsTerm(text, t) {
			n++
			if n >= m.w.MaxTermHits {
				break
			}
		}
	}
	return n
}

// containsTerm matches term on word boundaries.
func containsTerm(text, term string) bool {
	for i := 0; ; {
		j := strings.Index(text[i:], term)
		if j < 0 {
			return false
		}
		start, end := i+j, i+j+len(term)
		if (start == 0 || !isWordByte(text[start-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		i = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

func hasDigit(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// LoadWeights reads a YAML weights file. Fields absent from the file keep
// their DefaultWeights values.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()
	data, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("rerank: read weights %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return w, fmt.Errorf("rerank: parse weights %q: %w", path, err)
	}
	return w, nil
}

// LexicalLoader returns a Loader for the lexical model. An empty path uses
// DefaultWeights.
func LexicalLoader(weightsPath string) Loader {
	return func(ctx context.Context) (LocalModel, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w := DefaultWeights()
		if weightsPath != "" {
			loaded, err := LoadWeights(weightsPath)
			if err != nil {
				return nil, err
			}
			w = loaded
		}
		return NewLexicalModel(w), nil
	}
}

//Personal.AI order the ending
