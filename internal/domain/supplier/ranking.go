package supplier

import (
	"sort"
)

// CountryFilter keeps or drops suppliers by country. When both lists are set,
// Allowed takes precedence.
type CountryFilter struct {
	Allowed  []string
	Excluded []string
}

// Keep reports whether a supplier from country passes the filter.
func (f CountryFilter) Keep(country string) bool {
	if country == "" {
		country = UnknownCountry
	}
	if len(f.Allowed) > 0 {
		return contains(f.Allowed, country)
	}
	if len(f.Excluded) > 0 {
		return !contains(f.Excluded, country)
	}
	return true
}

// Apply returns the suppliers that pass the filter, preserving order.
func (f CountryFilter) Apply(in []ScoredSupplier) []ScoredSupplier {
	out := make([]ScoredSupplier, 0, len(in))
	for _, s := range in {
		if f.Keep(s.Country) {
			out = append(out, s)
		}
	}
	return out
}

// RankAndDedup stable-sorts by descending confidence, keeps the first entry
// per domain and stops after limit entries. in is not modified.
func RankAndDedup(in []ScoredSupplier, limit int) []ScoredSupplier {
	if limit <= 0 {
		return []ScoredSupplier{}
	}
	sorted := append([]ScoredSupplier(nil), in...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ConfidenceScore > sorted[j].ConfidenceScore
	})

	seen := make(map[string]struct{}, len(sorted))
	out := make([]ScoredSupplier, 0, min(limit, len(sorted)))
	for _, s := range sorted {
		if _, dup := seen[s.Domain]; dup {
			continue
		}
		seen[s.Domain] = struct{}{}
		out = append(out, s)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
