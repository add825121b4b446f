package supplier

import (
	"net/url"
	"regexp"
	"strings"
)

var reEmail = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// ExtractEmails returns the distinct email-like strings in text, in order of
// first appearance.
func ExtractEmails(text string) []string {
	matches := reEmail.FindAllString(text, -1)
	return MergeEmails(nil, matches)
}

// MergeEmails appends the addresses of extra not already present in base.
func MergeEmails(base []string, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, e := range list {
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

// DomainOf returns the host (with port, if any) of rawURL, or "" when it
// cannot be parsed.
func DomainOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// WebsiteOf normalizes rawURL to https://{domain}.
func WebsiteOf(rawURL string) string {
	return "https://" + DomainOf(rawURL)
}

// ResolveContact picks the first extracted email, or synthesizes
// info@{domain} when none was found.
func ResolveContact(rec *EvidenceRecord, domain string) (string, EmailProvenance) {
	if rec.HasEmails() {
		return rec.Emails[0], EmailFound
	}
	return "info@" + domain, EmailGenerated
}

// Score turns an evidence record into a ScoredSupplier.
func Score(c Candidate, rec *EvidenceRecord, relevance float64, identifier string) ScoredSupplier {
	domain := DomainOf(rec.Website)
	email, provenance := ResolveContact(rec, domain)
	country := rec.Country
	if country == "" {
		country = UnknownCountry
	}
	return ScoredSupplier{
		SupplierName:    rec.SupplierName,
		Website:         rec.Website,
		ContactEmail:    email,
		EmailStatus:     provenance,
		EvidenceURL:     rec.EvidenceURL,
		ConfidenceScore: Confidence(c.SearchText(), rec, relevance, identifier),
		RelevanceScore:  clampUnit(relevance),
		Country:         country,
		Domain:          domain,
	}
}

//Personal.AI order the ending
