package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/ChemSource/internal/domain/supplier"
	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSource/pkg/errors"
)

// Runner executes a validated request.
type Runner interface {
	Run(ctx context.Context, req Request) (*supplier.ResultSet, error)
}

// ServiceConfig configures Service.
type ServiceConfig struct {
	Limits          Limits
	AsyncRunTimeout time.Duration
}

// Search outcome labels.
const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// Service is the entry point used by the CLI and the HTTP API.
type Service struct {
	runner  Runner
	jobs    supplier.JobRepository
	sinks   []ResultSink
	config  ServiceConfig
	logger  logging.Logger
	metrics Metrics
	wg      sync.WaitGroup
}

// NewService creates a Service. jobs may be nil when async submission is not
// needed.
func NewService(runner Runner, jobs supplier.JobRepository, cfg ServiceConfig, logger logging.Logger, metrics Metrics, sinks ...ResultSink) *Service {
	if cfg.AsyncRunTimeout <= 0 {
		cfg.AsyncRunTimeout = 15 * time.Minute
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &Service{
		runner:  runner,
		jobs:    jobs,
		sinks:   sinks,
		config:  cfg,
		logger:  logger.Named("discovery"),
		metrics: metrics,
	}
}

// Limits returns the request bounds the service enforces.
func (s *Service) Limits() Limits {
	return s.config.Limits
}

// Search validates req, runs it and hands the result to every sink.
func (s *Service) Search(ctx context.Context, req Request) (*supplier.ResultSet, error) {
	start := time.Now()
	if err := req.Validate(s.config.Limits); err != nil {
		s.metrics.ObserveSearch(StatusInvalid, time.Since(start))
		return nil, err
	}

	rs, err := s.runner.Run(ctx, req)
	if err != nil {
		s.metrics.ObserveSearch(StatusError, time.Since(start))
		s.logger.Error("discovery failed",
			logging.String("cas", req.CAS),
			logging.String("code", errors.GetCode(err).String()),
			logging.Err(err),
		)
		return nil, err
	}
	s.metrics.ObserveSearch(StatusOK, time.Since(start))

	s.deliver(ctx, rs)
	return rs, nil
}

// Submit validates req, records a pending job and runs it in the background
// under the async run timeout. The returned job is the pending snapshot.
func (s *Service) Submit(ctx context.Context, req Request) (*supplier.SearchJob, error) {
	if s.jobs == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "async search is not enabled")
	}
	if err := req.Validate(s.config.Limits); err != nil {
		s.metrics.ObserveSearch(StatusInvalid, 0)
		return nil, err
	}

	now := time.Now().UTC()
	job := &supplier.SearchJob{
		ID:           uuid.NewString(),
		Status:       supplier.JobPending,
		ChemicalName: req.ChemicalName,
		CAS:          req.CAS,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.AsyncRunTimeout)
	s.wg.Add(1)
	go func(job supplier.SearchJob) {
		defer s.wg.Done()
		defer cancel()
		s.runJob(runCtx, &job, req)
	}(*job)

	return job, nil
}

// Job returns the current state of an async job.
func (s *Service) Job(ctx context.Context, id string) (*supplier.SearchJob, error) {
	if s.jobs == nil {
		return nil, errors.NotFound("job not found").WithDetail(id)
	}
	return s.jobs.Get(ctx, id)
}

// Wait blocks until every submitted job has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) runJob(ctx context.Context, job *supplier.SearchJob, req Request) {
	log := s.logger.With(logging.String("job_id", job.ID))

	job.Status = supplier.JobRunning
	job.UpdatedAt = time.Now().UTC()
	if err := s.jobs.Update(ctx, job); err != nil {
		log.Warn("job status update failed", logging.Err(err))
	}

	rs, err := s.Search(ctx, req)
	job.UpdatedAt = time.Now().UTC()
	if err != nil {
		job.Status = supplier.JobFailed
		job.Error = err.Error()
		job.ErrorCode = errors.GetCode(err).String()
	} else {
		job.Status = supplier.JobCompleted
		job.Result = rs
	}

	// The run context may have expired; the final state must still land.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.jobs.Update(storeCtx, job); err != nil {
		log.Error("job result update failed", logging.Err(err))
		return
	}
	log.Info("job finished", logging.String("status", string(job.Status)))
}

func (s *Service) deliver(ctx context.Context, rs *supplier.ResultSet) {
	for _, sink := range s.sinks {
		err := sink.Deliver(ctx, rs)
		s.metrics.ObserveDelivery(sink.Name(), err)
		if err != nil {
			s.logger.Warn("result sink failed",
				logging.String("sink", sink.Name()),
				logging.String("run_id", rs.RunID),
				logging.Err(err),
			)
		}
	}
}

//Personal.AI order the ending
