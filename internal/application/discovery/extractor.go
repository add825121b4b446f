package discovery

import (
	"context"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/turtacn/ChemSource/internal/domain/supplier"
	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
)

// ExtractorConfig bounds the work done per candidate.
type ExtractorConfig struct {
	PageTimeout time.Duration
	HopTimeout  time.Duration
	MaxLinks    int
}

const maxSupplierNameRunes = 120

// Extractor visits a candidate page and at most one hop of hinted links.
type Extractor struct {
	fetcher PageFetcher
	config  ExtractorConfig
	logger  logging.Logger
	metrics Metrics
}

// NewExtractor creates an Extractor. metrics may be nil.
func NewExtractor(fetcher PageFetcher, cfg ExtractorConfig, logger logging.Logger, metrics Metrics) *Extractor {
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 30 * time.Second
	}
	if cfg.HopTimeout <= 0 {
		cfg.HopTimeout = 20 * time.Second
	}
	if cfg.MaxLinks <= 0 {
		cfg.MaxLinks = 150
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &Extractor{fetcher: fetcher, config: cfg, logger: logger.Named("extractor"), metrics: metrics}
}

// Extract returns an EvidenceRecord when identifier appears verbatim on the
// page at rawURL or on the first hinted link that contains it.
func (e *Extractor) Extract(ctx context.Context, rawURL, identifier string) (*supplier.EvidenceRecord, error) {
	start := time.Now()
	page, err := e.fetcher.Fetch(ctx, rawURL, e.config.PageTimeout)
	e.metrics.ObserveFetch(HopPrimary, time.Since(start))
	if err != nil {
		return nil, err
	}

	emails := supplier.ExtractEmails(page.Text)
	evidenceURL := ""

	if strings.Contains(page.Text, identifier) {
		evidenceURL = rawURL
	} else {
		for _, link := range e.followLinks(rawURL, page.Links) {
			if ctx.Err() != nil {
				break
			}
			hopStart := time.Now()
			child, err := e.fetcher.Fetch(ctx, link, e.config.HopTimeout)
			e.metrics.ObserveFetch(HopFollow, time.Since(hopStart))
			if err != nil {
				e.logger.Debug("follow link failed", logging.String("url", link), logging.Err(err))
				continue
			}
			if strings.Contains(child.Text, identifier) {
				evidenceURL = link
				emails = supplier.MergeEmails(emails, supplier.ExtractEmails(child.Text))
				break
			}
		}
	}

	if evidenceURL == "" {
		return nil, nil
	}

	domain := supplier.DomainOf(rawURL)
	return &supplier.EvidenceRecord{
		SupplierName: supplierName(page.Title, domain),
		Website:      supplier.WebsiteOf(rawURL),
		EvidenceURL:  evidenceURL,
		Emails:       emails,
		Country:      supplier.ClassifyCountry(rawURL, page.Text),
	}, nil
}

// followLinks resolves the first MaxLinks hrefs against base and keeps the
// ones carrying a hint token, in document order.
func (e *Extractor) followLinks(base string, hrefs []string) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}
	if len(hrefs) > e.config.MaxLinks {
		hrefs = hrefs[:e.config.MaxLinks]
	}

	var out []string
	for _, href := range hrefs {
		if href == "" || strings.HasPrefix(href, "mailto:") {
			continue
		}
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		abs := baseURL.ResolveReference(ref).String()
		if supplier.HasLinkHint(abs) {
			out = append(out, abs)
		}
	}
	return out
}

func supplierName(title, domain string) string {
	name := title
	if i := strings.Index(name, "|"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxSupplierNameRunes {
		name = string([]rune(name)[:maxSupplierNameRunes])
	}
	if name == "" {
		return domain
	}
	return name
}

//Personal.AI order the ending
