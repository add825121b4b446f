package supplier

import (
	"math"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Confidence weights.
const (
	WeightIdentifierMatch = 3.0
	WeightDatasheetPage   = 2.0
	WeightCatalogPage     = 1.5
	WeightDirectory       = 1.0
	WeightRelevance       = 4.0
	WeightContact         = 0.5
	MaxConfidence         = 10.0
)

// Confidence combines the independent trust signals of a candidate into a
// score in [0, 10], rounded to two decimals.
func Confidence(candidateText string, rec *EvidenceRecord, relevance float64, identifier string) float64 {
	var score float64

	id := strings.ToLower(strings.TrimSpace(identifier))
	if id != "" && strings.Contains(strings.ToLower(candidateText), id) {
		score += WeightIdentifierMatch
	}

	if rec != nil {
		evidence := strings.ToLower(rec.EvidenceURL)
		switch {
		case containsAny(evidence, datasheetHints):
			score += WeightDatasheetPage
		case containsAny(evidence, catalogHints):
			score += WeightCatalogPage
		}
		if IsDirectoryURL(rec.EvidenceURL) {
			score += WeightDirectory
		}
		if rec.HasEmails() {
			score += WeightContact
		}
	}

	score += WeightRelevance * clampUnit(relevance)

	return math.Min(MaxConfidence, round2(score))
}

// IsDirectoryURL reports whether rawURL is hosted on a known chemical
// directory or marketplace, including its subdomains.
func IsDirectoryURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		registrable = host
	}
	for _, d := range directoryDomains {
		if registrable == d {
			return true
		}
	}
	return false
}

// HasLinkHint reports whether a link is worth following for evidence.
func HasLinkHint(link string) bool {
	return containsAny(strings.ToLower(link), linkHints)
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
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

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

//Personal.AI order the ending
