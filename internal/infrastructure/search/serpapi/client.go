// Package serpapi implements the supplier candidate source on top of the
// SerpAPI Google search endpoint.
package serpapi

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/turtacn/ChemSource/internal/domain/supplier"
	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSource/pkg/errors"
)

// QueryTemplates target supplier directories and marketplaces. {name} and
// {id} are replaced with the chemical name and identifier.
var QueryTemplates = []string{
	`"{name}" "{id}" supplier`,
	`"{name}" "{id}" SDS`,
	`"{id}" catalog`,
	`"{id}" site:buyersguidechem.com`,
	`"{id}" site:chemondis.com`,
	`"{id}" site:thomasnet.com`,
	`"{id}" site:chemspider.com vendor`,
	`"{name}" CAS "{id}" buy OR purchase`,
}

// Config configures Client.
type Config struct {
	Endpoint          string
	APIKey            string
	Engine            string
	ResultsPerPage    int
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// Client queries SerpAPI.
type Client struct {
	http    *resty.Client
	config  Config
	limiter *rate.Limiter
	logger  logging.Logger
}

type searchResponse struct {
	OrganicResults []organicResult `json:"organic_results"`
	Error          string          `json:"error"`
}

type organicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// NewClient creates a Client.
func NewClient(cfg Config, logger logging.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://serpapi.com/search.json"
	}
	if cfg.Engine == "" {
		cfg.Engine = "google"
	}
	if cfg.ResultsPerPage <= 0 {
		cfg.ResultsPerPage = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Client{
		http: resty.New().
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json"),
		config:  cfg,
		limiter: rate.NewLimiter(limit, cfg.Burst),
		logger:  logger.Named("serpapi"),
	}
}

// Queries expands the templates for a chemical.
func Queries(chemicalName, identifier string) []string {
	r := strings.NewReplacer("{name}", chemicalName, "{id}", identifier)
	out := make([]string, len(QueryTemplates))
	for i, tpl := range QueryTemplates {
		out[i] = r.Replace(tpl)
	}
	return out
}

// Search runs every query template for pages result pages each and returns
// the hits deduplicated by link in first-seen order. Failed requests are
// logged and skipped. A missing API key fails before any request is made.
func (c *Client) Search(ctx context.Context, chemicalName, identifier string, pages int) ([]supplier.Candidate, error) {
	if strings.TrimSpace(c.config.APIKey) == "" {
		return nil, errors.New(errors.ErrCodeMissingCredential, "search API key is not configured").
			WithDetail("set CHEMSOURCE_SEARCH_API_KEY or SERPAPI_KEY")
	}
	if pages <= 0 {
		pages = 1
	}

	seen := make(map[string]struct{})
	var out []supplier.Candidate

	for _, query := range Queries(chemicalName, identifier) {
		for p := 0; p < pages; p++ {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			results, err := c.page(ctx, query, p*c.config.ResultsPerPage)
			if err != nil {
				c.logger.Warn("search request failed",
					logging.String("query", query),
					logging.Int("page", p),
					logging.Err(err),
				)
				continue
			}
			for _, r := range results {
				link := strings.TrimSpace(r.Link)
				if link == "" {
					continue
				}
				if _, dup := seen[link]; dup {
					continue
				}
				seen[link] = struct{}{}
				out = append(out, supplier.Candidate{
					Title:   r.Title,
					Link:    link,
					Snippet: r.Snippet,
					Query:   query,
				})
			}
		}
	}

	c.logger.Info("search completed",
		logging.String("identifier", identifier),
		logging.Int("candidates", len(out)),
	)
	return out, nil
}

func (c *Client) page(ctx context.Context, query string, start int) ([]organicResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var result searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"engine":  c.config.Engine,
			"q":       query,
			"num":     strconv.Itoa(c.config.ResultsPerPage),
			"start":   strconv.Itoa(start),
			"api_key": c.config.APIKey,
		}).
		SetResult(&result).
		SetError(&result).
		Get(c.config.Endpoint)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSearchFailed, "search request")
	}
	if resp.IsError() {
		return nil, errors.Newf(errors.ErrCodeSearchFailed, "search returned status %d", resp.StatusCode()).
			WithDetail(result.Error)
	}
	if result.Error != "" && len(result.OrganicResults) == 0 {
		// SerpAPI reports "no results" this way with a 200.
		c.logger.Debug("search returned no results", logging.String("query", query), logging.String("reason", result.Error))
	}
	return result.OrganicResults, nil
}

//Personal.AI order the ending
