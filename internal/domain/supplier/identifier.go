package supplier

import (
	"regexp"
	"strings"

	"github.com/turtacn/ChemSource/pkg/errors"
)

// reCASFormat matches the CAS Registry Number layout NNNNNNN-NN-N.
var reCASFormat = regexp.MustCompile(`^\d{2,7}-\d{2}-\d$`)

// ValidateCAS checks the format and check digit of a CAS Registry Number.
//
// Check digit: with the digits of the first two groups reversed,
// Σ digit[i]·(i+1) mod 10 must equal the last group.
func ValidateCAS(cas string) error {
	cas = strings.TrimSpace(cas)
	if !reCASFormat.MatchString(cas) {
		return errors.New(errors.ErrCodeInvalidIdentifier, "CAS number must match NNNNNNN-NN-N").WithDetail(cas)
	}
	if !casCheckDigitValid(cas) {
		return errors.New(errors.ErrCodeInvalidIdentifier, "CAS number check digit mismatch").WithDetail(cas)
	}
	return nil
}

func casCheckDigitValid(cas string) bool {
	parts := strings.Split(cas, "-")
	if len(parts) != 3 || len(parts[2]) != 1 {
		return false
	}
	digits := parts[0] + parts[1]
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[len(digits)-1-i]-'0') * (i + 1)
	}
	return sum%10 == int(parts[2][0]-'0')
}

// Example is a well-known chemical used for demos and smoke tests.
type Example struct {
	Name string `json:"name" yaml:"name"`
	CAS  string `json:"cas" yaml:"cas"`
}

var examples = []Example{
	{Name: "Eucalyptol", CAS: "470-82-6"},
	{Name: "N-Methyl-2-pyrrolidone", CAS: "872-50-4"},
	{Name: "Potassium methoxide", CAS: "865-33-8"},
	{Name: "Polysorbate 80", CAS: "9005-65-6"},
	{Name: "Acetone", CAS: "67-64-1"},
}

// Examples returns the built-in example chemicals.
func Examples() []Example {
	return append([]Example(nil), examples...)
}

//Personal.AI order the ending
