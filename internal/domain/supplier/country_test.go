package supplier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemSource/pkg/errors"
)

func TestClassifyCountry(t *testing.T) {
	cases := []struct {
		name string
		url  string
		text string
		want string
	}{
		{"path marker under com", "https://www.sigmaaldrich.com/US/en/product/sial/w246506", "", "United States"},
		{"german path marker", "https://www.example.com/de/products/", "", "Germany"},
		{"china long marker", "https://www.example.com/china/catalog/", "", "China"},
		{"locale subdomain", "https://usa.vwr.com/store/", "", "United States"},
		{"gb subdomain", "https://gb.example.com/", "", "United Kingdom"},
		{"marker needs trailing slash", "https://example.com/us", "", UnknownCountry},
		{"cctld", "https://www.chemicalbook.de/ProductList.aspx", "", "Germany"},
		{"second level cctld", "https://www.merck.co.uk/", "", "United Kingdom"},
		{"cctld ignores path markers", "https://www.example.de/us/catalog", "", "Germany"},
		{"cctld beats text", "https://shop.example.jp/", "Head office in Germany", "Japan"},
		{"text under generic tld", "https://example.com/products", "Our headquarters are in Hamburg, Germany", "Germany"},
		{"text table order", "https://example.org/about", "Offices in Tokyo and Shanghai", "China"},
		{"unicode keyword", "https://example.net/", "总部位于中国", "China"},
		{"no signal", "https://example.com/", "Industrial solvents", UnknownCountry},
		{"unparsable url falls back to text", "::not a url::", "Made in Canada", "Canada"},
		{"empty", "", "", UnknownCountry},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyCountry(tc.url, tc.text))
		})
	}
}

func TestClassifyCountry_Deterministic(t *testing.T) {
	url := "https://example.com/en/"
	text := "Distribution centres in Sydney and Toronto"
	first := ClassifyCountry(url, text)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, ClassifyCountry(url, text))
	}
	assert.Equal(t, "Canada", first)
}

func TestCountries_ContainsUnknownLast(t *testing.T) {
	list := Countries()
	require.NotEmpty(t, list)
	assert.Equal(t, UnknownCountry, list[len(list)-1])
	assert.Contains(t, list, "Germany")
	assert.Contains(t, list, "Austria")
	assert.Contains(t, list, "Finland")
}

func TestResolveCountry(t *testing.T) {
	cases := map[string]string{
		"de":             "Germany",
		"USA":            "United States",
		" gb ":           "United Kingdom",
		"united kingdom": "United Kingdom",
		"South Korea":    "South Korea",
		"unknown":        UnknownCountry,
	}
	for in, want := range cases {
		got, err := ResolveCountry(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ResolveCountry("Atlantis")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownCountry))

	_, err = ResolveCountry("")
	assert.Error(t, err)
}

func TestResolveCountries_DedupesAndSkipsBlank(t *testing.T) {
	got, err := ResolveCountries([]string{"cn", "China", "", "de"})
	require.NoError(t, err)
	assert.Equal(t, []string{"China", "Germany"}, got)

	_, err = ResolveCountries([]string{"de", "xx"})
	assert.Error(t, err)
}

func TestCountryCodes_IsCopy(t *testing.T) {
	codes := CountryCodes()
	codes["de"] = "Nowhere"
	assert.Equal(t, "Germany", CountryCodes()["de"])
}

//Personal.AI order the ending
