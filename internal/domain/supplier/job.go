package supplier

import (
	"context"
	"time"
)

// JobStatus is the lifecycle state of an asynchronous search.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether no further transitions will happen.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// SearchJob tracks one asynchronous discovery run.
type SearchJob struct {
	ID           string     `json:"job_id"`
	Status       JobStatus  `json:"status"`
	ChemicalName string     `json:"chemical_name"`
	CAS          string     `json:"cas"`
	Error        string     `json:"error,omitempty"`
	ErrorCode    string     `json:"error_code,omitempty"`
	Result       *ResultSet `json:"result,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// JobRepository persists SearchJobs. Get returns a COMMON_005 error for
// unknown or expired ids.
type JobRepository interface {
	Create(ctx context.Context, job *SearchJob) error
	Get(ctx context.Context, id string) (*SearchJob, error)
	Update(ctx context.Context, job *SearchJob) error
}

// ResultsPublishedEvent announces a completed result set.
type ResultsPublishedEvent struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	OccurredAt   time.Time `json:"occurred_at"`
	RunID        string    `json:"run_id"`
	ChemicalName string    `json:"chemical_name"`
	CAS          string    `json:"cas"`
	Suppliers    int       `json:"suppliers"`
	Domains      []string  `json:"domains"`
	Countries    []string  `json:"countries"`
	TopSupplier  string    `json:"top_supplier,omitempty"`
	TopScore     float64   `json:"top_score,omitempty"`
}

// EventTypeResultsPublished is the event_type of ResultsPublishedEvent.
const EventTypeResultsPublished = "supplier.results.published"

// NewResultsPublishedEvent summarizes rs. eventID must be unique.
func NewResultsPublishedEvent(eventID string, rs *ResultSet) *ResultsPublishedEvent {
	ev := &ResultsPublishedEvent{
		EventID:      eventID,
		EventType:    EventTypeResultsPublished,
		OccurredAt:   time.Now().UTC(),
		RunID:        rs.RunID,
		ChemicalName: rs.ChemicalName,
		CAS:          rs.CAS,
		Suppliers:    len(rs.Suppliers),
		Domains:      make([]string, 0, len(rs.Suppliers)),
	}
	seen := make(map[string]struct{})
	for _, s := range rs.Suppliers {
		ev.Domains = append(ev.Domains, s.Domain)
		if _, ok := seen[s.Country]; !ok {
			seen[s.Country] = struct{}{}
			ev.Countries = append(ev.Countries, s.Country)
		}
	}
	if len(rs.Suppliers) > 0 {
		ev.TopSupplier = rs.Suppliers[0].SupplierName
		ev.TopScore = rs.Suppliers[0].ConfidenceScore
	}
	return ev
}

//Personal.AI order the ending
