package supplier

import (
	"regexp"
	"sort"
)

// The heuristic tables below are built once at package init and never
// mutated; accessors hand out copies.

// linkHints are the tokens that make an outbound link worth a one-hop fetch.
var linkHints = []string{"sds", "tds", "safety data", "product", "catalog", "datasheet"}

// datasheetHints score +2.0; catalogHints score +1.5 when no datasheet hint matched.
var (
	datasheetHints = []string{"sds", "tds", "datasheet"}
	catalogHints   = []string{"catalog", "product"}
)

// directoryDomains are known chemical marketplaces and directories.
var directoryDomains = []string{
	"buyersguidechem.com",
	"chemondis.com",
	"thomasnet.com",
	"chemspider.com",
	"molport.com",
}

// genericTLDs carry no country signal; URL locale markers are only trusted
// under one of these.
var genericTLDs = map[string]struct{}{
	"com":  {},
	"net":  {},
	"org":  {},
	"info": {},
	"biz":  {},
}

type localeRule struct {
	country    string
	segments   []string
	subdomains []string
}

// localeRules are evaluated in order; the first matching rule wins.
var localeRules = []localeRule{
	{country: "United States", segments: []string{"us"}, subdomains: []string{"usa"}},
	{country: "United Kingdom", segments: []string{"uk"}, subdomains: []string{"gb"}},
	{country: "Germany", segments: []string{"de"}},
	{country: "France", segments: []string{"fr"}},
	{country: "Canada", segments: []string{"ca"}},
	{country: "Australia", segments: []string{"au"}},
	{country: "Japan", segments: []string{"jp"}},
	{country: "China", segments: []string{"cn", "china"}},
	{country: "India", segments: []string{"in", "india"}},
	{country: "Singapore", segments: []string{"sg"}},
}

// countryTLDs maps the last label of a host to a country.
var countryTLDs = map[string]string{
	"us": "United States",
	"uk": "United Kingdom",
	"de": "Germany",
	"fr": "France",
	"it": "Italy",
	"es": "Spain",
	"nl": "Netherlands",
	"be": "Belgium",
	"ch": "Switzerland",
	"at": "Austria",
	"se": "Sweden",
	"dk": "Denmark",
	"no": "Norway",
	"fi": "Finland",
	"ca": "Canada",
	"au": "Australia",
	"nz": "New Zealand",
	"jp": "Japan",
	"cn": "China",
	"kr": "South Korea",
	"in": "India",
	"sg": "Singapore",
	"hk": "Hong Kong",
	"tw": "Taiwan",
	"br": "Brazil",
	"mx": "Mexico",
	"ru": "Russia",
}

type textRule struct {
	country  string
	patterns []*regexp.Regexp
}

func mustPatterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// textRules are matched against lower-cased page text in declaration order.
var textRules = []textRule{
	{"United States", mustPatterns(`\busa\b`, `united states`, `\bu\.s\.a\b`, `\bus\b`, `america`)},
	{"United Kingdom", mustPatterns(`united kingdom`, `\buk\b`, `britain`, `england`, `scotland`, `wales`)},
	{"Germany", mustPatterns(`germany`, `deutschland`, `german`)},
	{"France", mustPatterns(`france`, `french`, `français`)},
	{"China", mustPatterns(`china`, `chinese`, `中国`, `beijing`, `shanghai`)},
	{"Japan", mustPatterns(`japan`, `japanese`, `日本`, `tokyo`, `osaka`)},
	{"India", mustPatterns(`india`, `indian`, `mumbai`, `delhi`, `bangalore`)},
	{"Canada", mustPatterns(`canada`, `canadian`, `toronto`, `vancouver`)},
	{"Australia", mustPatterns(`australia`, `australian`, `sydney`, `melbourne`)},
	{"Netherlands", mustPatterns(`netherlands`, `dutch`, `amsterdam`)},
	{"Switzerland", mustPatterns(`switzerland`, `swiss`, `zurich`)},
	{"Singapore", mustPatterns(`singapore`, `singaporean`)},
	{"South Korea", mustPatterns(`south korea`, `korea`, `korean`, `seoul`)},
	{"Italy", mustPatterns(`italy`, `italian`, `milano`, `rome`)},
	{"Spain", mustPatterns(`spain`, `spanish`, `madrid`, `barcelona`)},
	{"Belgium", mustPatterns(`belgium`, `belgian`, `brussels`)},
	{"Sweden", mustPatterns(`sweden`, `swedish`, `stockholm`)},
	{"Denmark", mustPatterns(`denmark`, `danish`, `copenhagen`)},
	{"Norway", mustPatterns(`norway`, `norwegian`, `oslo`)},
	{"Finland", mustPatterns(`finland`, `finnish`, `helsinki`)},
}

// countryCodes maps short codes accepted by ResolveCountry to names.
var countryCodes = map[string]string{
	"us":  "United States",
	"usa": "United States",
	"uk":  "United Kingdom",
	"gb":  "United Kingdom",
	"de":  "Germany",
	"fr":  "France",
	"it":  "Italy",
	"es":  "Spain",
	"nl":  "Netherlands",
	"be":  "Belgium",
	"ch":  "Switzerland",
	"at":  "Austria",
	"se":  "Sweden",
	"dk":  "Denmark",
	"no":  "Norway",
	"fi":  "Finland",
	"ca":  "Canada",
	"au":  "Australia",
	"nz":  "New Zealand",
	"jp":  "Japan",
	"cn":  "China",
	"kr":  "South Korea",
	"in":  "India",
	"sg":  "Singapore",
	"hk":  "Hong Kong",
	"tw":  "Taiwan",
	"br":  "Brazil",
	"mx":  "Mexico",
	"ru":  "Russia",
}

// knownCountries is the sorted set of names the classifier can emit.
var knownCountries = buildKnownCountries()

func buildKnownCountries() []string {
	set := make(map[string]struct{})
	for _, r := range localeRules {
		set[r.country] = struct{}{}
	}
	for _, c := range countryTLDs {
		set[c] = struct{}{}
	}
	for _, r := range textRules {
		set[r.country] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// LinkHints returns the one-hop link hint tokens.
func LinkHints() []string {
	return append([]string(nil), linkHints...)
}

// DirectoryDomains returns the known directory/marketplace domains.
func DirectoryDomains() []string {
	return append([]string(nil), directoryDomains...)
}

//Personal.AI order the ending
