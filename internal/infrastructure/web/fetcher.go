// Package web fetches supplier pages over HTTP and reduces them to the
// visible text, title and outbound links the evidence extractor works on.
package web

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSource/pkg/errors"
)

// Page is a fetched document.
type Page struct {
	// URL is the final URL after redirects.
	URL   string
	Title string
	// Text is the visible body text, whitespace-collapsed.
	Text string
	// Links are raw href values in document order.
	Links []string
}

// FetcherConfig configures Fetcher.
type FetcherConfig struct {
	UserAgent      string
	MaxBodyBytes   int64
	DefaultTimeout time.Duration
	MaxRedirects   int
}

// Fetcher retrieves pages with resty.
type Fetcher struct {
	http   *resty.Client
	config FetcherConfig
	logger logging.Logger
}

// NewFetcher creates a Fetcher. Zero config values fall back to defaults.
func NewFetcher(cfg FetcherConfig, logger logging.Logger) *Fetcher {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 5 << 20
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = 30 * time.Second
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = 10
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (compatible; ChemSource/1.0)"
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	client := resty.New().
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,text/plain;q=0.8,*/*;q=0.5").
		SetHeader("Accept-Language", "en-US,en;q=0.8").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(cfg.MaxRedirects))

	return &Fetcher{http: client, config: cfg, logger: logger.Named("fetcher")}
}

// Fetch downloads rawURL within timeout (DefaultTimeout when <= 0) and
// parses it. Non-2xx responses and non-text content are errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (*Page, error) {
	if timeout <= 0 {
		timeout = f.config.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := f.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFetchFailed, "fetch page").WithDetail(rawURL)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() || resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, errors.New(errors.ErrCodeFetchFailed, fmt.Sprintf("unexpected status %d", resp.StatusCode())).WithDetail(rawURL)
	}

	mediaType := contentType(resp.Header().Get("Content-Type"))
	if !isTextual(mediaType) {
		return nil, errors.New(errors.ErrCodeFetchNotHTML, "unsupported content type "+mediaType).WithDetail(rawURL)
	}

	raw, err := io.ReadAll(io.LimitReader(body, f.config.MaxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFetchFailed, "read page body").WithDetail(rawURL)
	}

	finalURL := rawURL
	if rr := resp.RawResponse; rr != nil && rr.Request != nil && rr.Request.URL != nil {
		finalURL = rr.Request.URL.String()
	}

	var page *Page
	if mediaType == "text/plain" {
		page = &Page{URL: finalURL, Text: collapseSpace(string(raw))}
	} else {
		page, err = ParseHTML(finalURL, raw)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeFetchFailed, "parse page").WithDetail(rawURL)
		}
	}

	f.logger.Debug("page fetched",
		logging.String("url", rawURL),
		logging.Int("status", resp.StatusCode()),
		logging.Int("bytes", len(raw)),
		logging.Int("links", len(page.Links)),
	)
	return page, nil
}

func contentType(header string) string {
	if header == "" {
		return "text/html"
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(header, ";")[0]))
	}
	return mt
}

func isTextual(mediaType string) bool {
	switch mediaType {
	case "text/html", "application/xhtml+xml", "text/plain":
		return true
	}
	return false
}

//Personal.AI order the ending
