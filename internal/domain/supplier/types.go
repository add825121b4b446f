// Package supplier holds the chemical-supplier domain model: evidence records,
// scored suppliers, result sets, and the pure heuristics that operate on them
// (country inference, confidence scoring, identifier validation, contact
// resolution).
package supplier

import (
	"time"
)

// UnknownCountry is reported when no country heuristic matches.
const UnknownCountry = "Unknown"

// EmailProvenance records where a contact email came from.
type EmailProvenance string

const (
	// EmailFound marks an address extracted from a fetched page.
	EmailFound EmailProvenance = "found"
	// EmailGenerated marks an address synthesized as info@{domain}.
	EmailGenerated EmailProvenance = "generated"
)

// Candidate is a single search hit handed to the pipeline.
type Candidate struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Query   string `json:"query"`
}

// SearchText is the title and snippet joined by a space.
func (c Candidate) SearchText() string {
	return c.Title + " " + c.Snippet
}

// EvidenceRecord is produced when the identifier was confirmed on the
// candidate page or one of its one-hop children.
type EvidenceRecord struct {
	SupplierName string   `json:"supplier_name"`
	Website      string   `json:"website"`
	EvidenceURL  string   `json:"evidence_url"`
	Emails       []string `json:"emails"`
	Country      string   `json:"country"`
}

// HasEmails reports whether at least one address was extracted.
func (r *EvidenceRecord) HasEmails() bool {
	return r != nil && len(r.Emails) > 0
}

// ScoredSupplier is an EvidenceRecord combined with relevance, confidence and
// the resolved contact.
type ScoredSupplier struct {
	SupplierName    string          `json:"supplier_name" yaml:"supplier_name"`
	Website         string          `json:"website" yaml:"website"`
	ContactEmail    string          `json:"contact_email,omitempty" yaml:"contact_email,omitempty"`
	EmailStatus     EmailProvenance `json:"email_status" yaml:"email_status"`
	EvidenceURL     string          `json:"evidence_url" yaml:"evidence_url"`
	ConfidenceScore float64         `json:"confidence_score" yaml:"confidence_score"`
	RelevanceScore  float64         `json:"relevance_score" yaml:"relevance_score"`
	Country         string          `json:"country" yaml:"country"`
	Domain          string          `json:"domain" yaml:"domain"`
}

// ResultSet is the terminal artifact of a discovery run. Suppliers are in
// descending confidence order and unique by domain.
type ResultSet struct {
	RunID        string           `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	ChemicalName string           `json:"chemical_name" yaml:"chemical_name"`
	CAS          string           `json:"cas" yaml:"cas"`
	Query        string           `json:"query,omitempty" yaml:"query,omitempty"`
	Candidates   int              `json:"candidates" yaml:"candidates"`
	Evidence     int              `json:"evidence" yaml:"evidence"`
	GeneratedAt  time.Time        `json:"generated_at" yaml:"generated_at"`
	Suppliers    []ScoredSupplier `json:"suppliers" yaml:"suppliers"`
}

// Empty returns a ResultSet with no suppliers.
func Empty(chemicalName, cas string) *ResultSet {
	return &ResultSet{
		ChemicalName: chemicalName,
		CAS:          cas,
		GeneratedAt:  time.Now().UTC(),
		Suppliers:    []ScoredSupplier{},
	}
}

//Personal.AI order the ending
