package discovery

import (
	"strings"

	"github.com/turtacn/ChemSource/internal/domain/supplier"
	"github.com/turtacn/ChemSource/internal/intelligence/rerank"
	"github.com/turtacn/ChemSource/pkg/errors"
)

// Request describes one discovery run.
type Request struct {
	ChemicalName      string   `json:"chemical_name"`
	CAS               string   `json:"cas_number"`
	Limit             int      `json:"limit,omitempty"`
	MaxCandidates     int      `json:"max_candidates,omitempty"`
	MaxWorkers        int      `json:"max_workers,omitempty"`
	ExcludedCountries []string `json:"exclude_countries,omitempty"`
	AllowedCountries  []string `json:"only_countries,omitempty"`
	Strategy          string   `json:"rerank,omitempty"`
	SkipValidation    bool     `json:"skip_validation,omitempty"`
}

// Limits bounds caller-supplied values.
type Limits struct {
	DefaultLimit         int
	MaxLimit             int
	DefaultMaxCandidates int
	DefaultMaxWorkers    int
	DefaultStrategy      rerank.Strategy
}

// Query is the relevance query for the request.
func (r Request) Query() string {
	return r.ChemicalName + " " + r.CAS
}

// Filter is the country filter for the request.
func (r Request) Filter() supplier.CountryFilter {
	return supplier.CountryFilter{Allowed: r.AllowedCountries, Excluded: r.ExcludedCountries}
}

// Validate rejects caller input errors: missing fields, an out-of-range
// limit, both country lists at once, unknown countries and, unless
// SkipValidation is set, a malformed CAS number. Country names are
// canonicalized in place.
func (r *Request) Validate(l Limits) error {
	r.ChemicalName = strings.TrimSpace(r.ChemicalName)
	r.CAS = strings.TrimSpace(r.CAS)

	if r.ChemicalName == "" {
		return errors.InvalidParam("chemical_name is required")
	}
	if r.CAS == "" {
		return errors.InvalidParam("cas_number is required")
	}
	if !r.SkipValidation {
		if err := supplier.ValidateCAS(r.CAS); err != nil {
			return err
		}
	}

	maxLimit := l.MaxLimit
	if maxLimit <= 0 {
		maxLimit = 50
	}
	if r.Limit != 0 && (r.Limit < 1 || r.Limit > maxLimit) {
		return errors.Newf(errors.ErrCodeBadRequest, "limit must be between 1 and %d", maxLimit)
	}
	if r.MaxCandidates < 0 || r.MaxWorkers < 0 {
		return errors.InvalidParam("max_candidates and max_workers must not be negative")
	}

	if len(r.AllowedCountries) > 0 && len(r.ExcludedCountries) > 0 {
		return errors.InvalidParam("only one of exclude_countries and only_countries may be set")
	}

	var err error
	if r.AllowedCountries, err = supplier.ResolveCountries(r.AllowedCountries); err != nil {
		return err
	}
	if r.ExcludedCountries, err = supplier.ResolveCountries(r.ExcludedCountries); err != nil {
		return err
	}

	if r.Strategy != "" {
		if _, err := rerank.ParseStrategy(r.Strategy); err != nil {
			return errors.Wrap(err, errors.ErrCodeBadRequest, "invalid rerank strategy")
		}
	}
	return nil
}

// withDefaults fills zero values from l.
func (r Request) withDefaults(l Limits) Request {
	if r.Limit <= 0 {
		r.Limit = l.DefaultLimit
		if r.Limit <= 0 {
			r.Limit = 10
		}
	}
	if r.MaxCandidates <= 0 {
		r.MaxCandidates = l.DefaultMaxCandidates
		if r.MaxCandidates <= 0 {
			r.MaxCandidates = 40
		}
	}
	if r.MaxWorkers <= 0 {
		r.MaxWorkers = l.DefaultMaxWorkers
		if r.MaxWorkers <= 0 {
			r.MaxWorkers = 5
		}
	}
	if r.Strategy == "" {
		r.Strategy = string(l.DefaultStrategy)
	}
	return r
}

//Personal.AI order the ending
