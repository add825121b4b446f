package supplier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sup(domain, country string, confidence float64) ScoredSupplier {
	return ScoredSupplier{SupplierName: domain, Domain: domain, Country: country, ConfidenceScore: confidence}
}

func TestRankAndDedup_OrderDedupLimit(t *testing.T) {
	in := []ScoredSupplier{
		sup("a.com", "Germany", 4),
		sup("b.com", "China", 9),
		sup("a.com", "Germany", 8),
		sup("c.com", "France", 6),
		sup("d.com", "Japan", 1),
	}

	out := RankAndDedup(in, 3)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"b.com", "a.com", "c.com"}, []string{out[0].Domain, out[1].Domain, out[2].Domain})
	assert.Equal(t, 8.0, out[1].ConfidenceScore)

	assert.Equal(t, "a.com", in[0].Domain, "input must not be reordered")
}

func TestRankAndDedup_StableTies(t *testing.T) {
	in := []ScoredSupplier{sup("x.com", "", 5), sup("y.com", "", 5), sup("z.com", "", 5)}
	out := RankAndDedup(in, 10)
	assert.Equal(t, []string{"x.com", "y.com", "z.com"}, []string{out[0].Domain, out[1].Domain, out[2].Domain})
}

func TestRankAndDedup_Properties(t *testing.T) {
	var in []ScoredSupplier
	for i := 0; i < 40; i++ {
		in = append(in, sup([]string{"a.com", "b.com", "c.com", "d.com", "e.com", "f.com", "g.com"}[i%7], "", float64((i*37)%100)/10))
	}

	for limit := 0; limit <= 10; limit++ {
		out := RankAndDedup(in, limit)
		assert.LessOrEqual(t, len(out), limit)
		seen := map[string]bool{}
		for i, s := range out {
			assert.False(t, seen[s.Domain], "duplicate domain %s", s.Domain)
			seen[s.Domain] = true
			if i > 0 {
				assert.GreaterOrEqual(t, out[i-1].ConfidenceScore, s.ConfidenceScore)
			}
		}
	}
}

func TestCountryFilter_AllowList(t *testing.T) {
	var in []ScoredSupplier
	for i, c := range []string{"Germany", "China", "France", "Germany", "Japan", "India", "China", "Italy", "Spain", "Canada"} {
		in = append(in, sup(string(rune('a'+i))+".com", c, float64(i)))
	}

	out := RankAndDedup(CountryFilter{Allowed: []string{"Germany"}}.Apply(in), 10)
	require.Len(t, out, 2)
	assert.Equal(t, "d.com", out[0].Domain)
	assert.Equal(t, "a.com", out[1].Domain)
}

func TestCountryFilter_ExcludeList(t *testing.T) {
	in := []ScoredSupplier{sup("a.com", "China", 1), sup("b.com", "", 2), sup("c.com", "Germany", 3)}
	out := CountryFilter{Excluded: []string{"China", UnknownCountry}}.Apply(in)
	require.Len(t, out, 1)
	assert.Equal(t, "c.com", out[0].Domain)
}

func TestCountryFilter_AllowTakesPrecedence(t *testing.T) {
	f := CountryFilter{Allowed: []string{"China"}, Excluded: []string{"China"}}
	assert.True(t, f.Keep("China"))
	assert.False(t, f.Keep("Germany"))
	assert.True(t, CountryFilter{}.Keep("Anywhere"))
}

//Personal.AI order the ending
