package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/ChemSource/internal/domain/supplier"
	"github.com/turtacn/ChemSource/pkg/errors"
)

// MemoryJobStore keeps jobs in process memory. Expired jobs are dropped
// lazily on access.
type MemoryJobStore struct {
	mu   sync.RWMutex
	ttl  time.Duration
	jobs map[string]supplier.SearchJob
	now  func() time.Time
}

// NewMemoryJobStore creates a MemoryJobStore. ttl <= 0 keeps jobs forever.
func NewMemoryJobStore(ttl time.Duration) *MemoryJobStore {
	return &MemoryJobStore{ttl: ttl, jobs: make(map[string]supplier.SearchJob), now: time.Now}
}

func (s *MemoryJobStore) Create(_ context.Context, job *supplier.SearchJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	if _, exists := s.jobs[job.ID]; exists {
		return errors.New(errors.ErrCodeConflict, "job already exists").WithDetail(job.ID)
	}
	s.jobs[job.ID] = *job
	return nil
}

func (s *MemoryJobStore) Get(_ context.Context, id string) (*supplier.SearchJob, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok || s.expired(job) {
		return nil, errors.NotFound("job not found").WithDetail(id)
	}
	return &job, nil
}

func (s *MemoryJobStore) Update(_ context.Context, job *supplier.SearchJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return errors.NotFound("job not found").WithDetail(job.ID)
	}
	s.jobs[job.ID] = *job
	return nil
}

func (s *MemoryJobStore) expired(job supplier.SearchJob) bool {
	return s.ttl > 0 && s.now().Sub(job.UpdatedAt) > s.ttl
}

func (s *MemoryJobStore) evictLocked() {
	for id, job := range s.jobs {
		if s.expired(job) {
			delete(s.jobs, id)
		}
	}
}

//Personal.AI order the ending
