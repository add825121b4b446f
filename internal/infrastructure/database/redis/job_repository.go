package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/ChemSource/internal/domain/supplier"
	"github.com/turtacn/ChemSource/pkg/errors"
)

// JobRepository stores SearchJobs as JSON strings that expire ttl after
// their last write.
type JobRepository struct {
	client *Client
	prefix string
	ttl    time.Duration
}

var _ supplier.JobRepository = (*JobRepository)(nil)

// NewJobRepository creates a JobRepository. Keys are {prefix}job:{id}.
func NewJobRepository(client *Client, prefix string, ttl time.Duration) *JobRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JobRepository{client: client, prefix: prefix, ttl: ttl}
}

func (r *JobRepository) key(id string) string {
	return r.prefix + "job:" + id
}

func (r *JobRepository) Create(ctx context.Context, job *supplier.SearchJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	ok, err := r.client.SetNX(ctx, r.key(job.ID), data, r.ttl).Result()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to create job")
	}
	if !ok {
		return errors.New(errors.ErrCodeConflict, "job already exists").WithDetail(job.ID)
	}
	return nil
}

func (r *JobRepository) Get(ctx context.Context, id string) (*supplier.SearchJob, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err == redis.Nil {
		return nil, errors.NotFound("job not found").WithDetail(id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to load job")
	}
	var job supplier.SearchJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, ErrSerializationFailed.WithCause(err)
	}
	return &job, nil
}

func (r *JobRepository) Update(ctx context.Context, job *supplier.SearchJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	ok, err := r.client.SetXX(ctx, r.key(job.ID), data, r.ttl).Result()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to update job")
	}
	if !ok {
		return errors.NotFound("job not found").WithDetail(job.ID)
	}
	return nil
}

//Personal.AI order the ending
