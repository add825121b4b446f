package rerank

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/turtacn/ChemSource/pkg/errors"
)

// CohereConfig configures CohereClient.
type CohereConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

type cohereRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type cohereResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// CohereClient calls the Cohere rerank API.
type CohereClient struct {
	http   *resty.Client
	config CohereConfig
}

var _ Reranker = (*CohereClient)(nil)

// NewCohereClient creates a client. An empty API key is accepted here and
// reported on every Rerank call.
func NewCohereClient(cfg CohereConfig) *CohereClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &CohereClient{http: client, config: cfg}
}

// ModelName implements Reranker.
func (c *CohereClient) ModelName() string {
	return c.config.Model
}

// Rerank implements Reranker. Scores come back in the order of docs;
// documents the service omitted score 0.
func (c *CohereClient) Rerank(ctx context.Context, query string, docs []string) ([]float64, error) {
	if c.config.APIKey == "" {
		return nil, errors.New(errors.ErrCodeMissingCredential, "COHERE_API_KEY is not configured")
	}
	if len(docs) == 0 {
		return []float64{}, nil
	}

	var result cohereResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.config.APIKey).
		SetBody(cohereRequest{
			Model:     c.config.Model,
			Query:     query,
			Documents: docs,
			TopN:      len(docs),
		}).
		SetResult(&result).
		Post(c.config.Endpoint)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRerankFailed, "cohere rerank request failed")
	}
	if resp.IsError() {
		return nil, errors.New(errors.ErrCodeRerankFailed, "cohere rerank API error").
			WithDetail(fmt.Sprintf("status %d: %s", resp.StatusCode(), truncate(resp.String(), 200)))
	}

	scores := make([]float64, len(docs))
	for _, r := range result.Results {
		if r.Index < 0 || r.Index >= len(docs) {
			return nil, errors.New(errors.ErrCodeRerankFailed, "cohere returned out-of-range index").
				WithDetail(fmt.Sprintf("index %d", r.Index))
		}
		scores[r.Index] = r.RelevanceScore
	}
	return scores, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

//Personal.AI order the ending
