package supplier

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/turtacn/ChemSource/pkg/errors"
)

// ClassifyCountry infers a supplier country from its URL and page text.
// Rules, first match wins:
//  1. locale path segments or subdomains, only under a generic TLD
//  2. country-code TLD
//  3. country keywords in the lower-cased text, in table order
//
// It returns UnknownCountry when nothing matches.
func ClassifyCountry(rawURL, pageText string) string {
	if host, path, ok := splitURL(rawURL); ok {
		suffix, _ := publicsuffix.PublicSuffix(host)
		tld := lastLabel(suffix)

		if _, generic := genericTLDs[tld]; generic {
			if c := matchLocale(host, path); c != "" {
				return c
			}
		}
		if c, ok := countryTLDs[tld]; ok {
			return c
		}
	}

	text := strings.ToLower(pageText)
	for _, rule := range textRules {
		for _, p := range rule.patterns {
			if p.MatchString(text) {
				return rule.country
			}
		}
	}
	return UnknownCountry
}

func splitURL(rawURL string) (host, path string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", false
	}
	host = strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return "", "", false
	}
	return host, strings.ToLower(u.EscapedPath()), true
}

func lastLabel(s string) string {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// matchLocale checks directory-style markers ("/us/") and locale
// subdomains ("usa.example.com").
func matchLocale(host, path string) string {
	segments := pathSegments(path)
	subs := subdomainLabels(host)
	for _, rule := range localeRules {
		for _, seg := range rule.segments {
			if _, ok := segments[seg]; ok {
				return rule.country
			}
		}
		for _, sub := range rule.subdomains {
			if _, ok := subs[sub]; ok {
				return rule.country
			}
		}
	}
	return ""
}

// pathSegments returns the segments that are followed by a slash, so
// "/us/en/p" yields {us, en} and "/us" yields nothing.
func pathSegments(path string) map[string]struct{} {
	parts := strings.Split(path, "/")
	out := make(map[string]struct{}, len(parts))
	for i := 1; i < len(parts)-1; i++ {
		if parts[i] != "" {
			out[parts[i]] = struct{}{}
		}
	}
	return out
}

func subdomainLabels(host string) map[string]struct{} {
	out := make(map[string]struct{})
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil || registrable == host {
		return out
	}
	for _, l := range strings.Split(strings.TrimSuffix(host, "."+registrable), ".") {
		out[l] = struct{}{}
	}
	return out
}

// Countries returns every country name the classifier can emit, sorted,
// followed by UnknownCountry.
func Countries() []string {
	out := make([]string, 0, len(knownCountries)+1)
	out = append(out, knownCountries...)
	return append(out, UnknownCountry)
}

// CountryCodes returns a copy of the short-code table.
func CountryCodes() map[string]string {
	out := make(map[string]string, len(countryCodes))
	for k, v := range countryCodes {
		out[k] = v
	}
	return out
}

// ResolveCountry maps a short code ("de", "USA") or a name in any case
// ("united kingdom") to its canonical name.
func ResolveCountry(s string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", errors.New(errors.ErrCodeUnknownCountry, "empty country")
	}
	if name, ok := countryCodes[key]; ok {
		return name, nil
	}
	for _, name := range Countries() {
		if strings.ToLower(name) == key {
			return name, nil
		}
	}
	return "", errors.New(errors.ErrCodeUnknownCountry, "unknown country").WithDetail(s)
}

// ResolveCountries resolves each entry of list, dropping duplicates and
// preserving first-seen order.
func ResolveCountries(list []string) ([]string, error) {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, item := range list {
		if strings.TrimSpace(item) == "" {
			continue
		}
		name, err := ResolveCountry(item)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

//Personal.AI order the ending
