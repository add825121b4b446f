// Package bootstrap builds the discovery service and its infrastructure from
// configuration. Both binaries share it.
package bootstrap

import (
	"context"
	"strings"

	"github.com/turtacn/ChemSource/internal/application/discovery"
	"github.com/turtacn/ChemSource/internal/config"
	"github.com/turtacn/ChemSource/internal/domain/supplier"
	"github.com/turtacn/ChemSource/internal/infrastructure/database/redis"
	"github.com/turtacn/ChemSource/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemSource/internal/infrastructure/search/serpapi"
	"github.com/turtacn/ChemSource/internal/infrastructure/storage/minio"
	"github.com/turtacn/ChemSource/internal/infrastructure/web"
	"github.com/turtacn/ChemSource/internal/intelligence/rerank"
	"github.com/turtacn/ChemSource/pkg/errors"
)

// HealthChecker reports whether a dependency is usable.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// App holds the constructed components. Optional parts are nil when their
// config section is disabled.
type App struct {
	Config    *config.Config
	Logger    logging.Logger
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics
	Service   *discovery.Service
	Archive   *minio.ResultArchive
	Checkers  []HealthChecker

	closers []func() error
}

// New wires every component enabled in cfg. Infrastructure that is enabled
// but unreachable is an error; kafka topic provisioning failures are only
// logged.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	app := &App{Config: cfg, Logger: logger}

	var (
		dm discovery.Metrics
		rr rerank.Recorder
	)
	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:      cfg.Metrics.Namespace,
			RuntimeMetrics: true,
		}, logger)
		if err != nil {
			return nil, err
		}
		app.Collector = collector
		app.Metrics = prometheus.NewAppMetrics(collector)
		app.Metrics.SetBuildInfo(config.Version, config.GitCommit)
		dm, rr = app.Metrics, app.Metrics
	}

	strategy, err := rerank.ParseStrategy(cfg.Rerank.Strategy)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidConfig, "invalid rerank strategy")
	}
	limits := discovery.Limits{
		DefaultLimit:         cfg.Pipeline.DefaultLimit,
		MaxLimit:             cfg.Pipeline.MaxLimit,
		DefaultMaxCandidates: cfg.Pipeline.MaxCandidates,
		DefaultMaxWorkers:    cfg.Pipeline.MaxWorkers,
		DefaultStrategy:      strategy,
	}

	source := serpapi.NewClient(serpapi.Config{
		Endpoint:          cfg.Search.Endpoint,
		APIKey:            cfg.Search.APIKey,
		Engine:            cfg.Search.Engine,
		ResultsPerPage:    cfg.Search.ResultsPerPage,
		RequestsPerSecond: cfg.Search.RequestsPerSecond,
		Burst:             cfg.Search.Burst,
		Timeout:           cfg.Search.Timeout,
	}, logger)

	fetcher := web.NewFetcher(web.FetcherConfig{
		UserAgent:      cfg.Fetch.UserAgent,
		MaxBodyBytes:   cfg.Fetch.MaxBodyBytes,
		DefaultTimeout: cfg.Fetch.PageTimeout,
	}, logger)

	scorer := rerank.NewScorer(
		newRemoteReranker(cfg.Rerank),
		rerank.NewLocalProvider(rerank.LexicalLoader(cfg.Rerank.Local.WeightsPath), logger.Named("rerank")),
		rerank.WithZeroAsFailure(cfg.Rerank.ZeroAsFailure),
		rerank.WithLogger(logger.Named("rerank")),
		rerank.WithRecorder(rr),
	)

	var extractor discovery.EvidenceExtractor = discovery.NewExtractor(fetcher, discovery.ExtractorConfig{
		PageTimeout: cfg.Fetch.PageTimeout,
		HopTimeout:  cfg.Fetch.HopTimeout,
		MaxLinks:    cfg.Fetch.MaxLinks,
	}, logger, dm)

	var jobs supplier.JobRepository
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(RedisClientConfig(cfg.Redis), logger)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, client.Close)
		app.Checkers = append(app.Checkers, pingCheck{client})

		cache := redis.NewRedisCache(client, logger, redis.WithPrefix(cfg.Redis.Prefix), redis.WithDefaultTTL(cfg.Redis.EvidenceTTL))
		extractor = discovery.NewCachingExtractor(extractor, cache, cfg.Redis.EvidenceTTL, logger)
		jobs = redis.NewJobRepository(client, cfg.Redis.Prefix, cfg.Pipeline.JobTTL)
	} else {
		jobs = discovery.NewMemoryJobStore(cfg.Pipeline.JobTTL)
	}

	var sinks []discovery.ResultSink
	if cfg.Kafka.Enabled {
		publisher, err := app.newResultPublisher(ctx, cfg.Kafka)
		if err != nil {
			app.Close()
			return nil, err
		}
		sinks = append(sinks, publisher)
	}
	if cfg.MinIO.Enabled {
		client, err := minio.NewMinIOClient(ctx, MinIOClientConfig(cfg.MinIO), logger)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, client.Close)
		app.Checkers = append(app.Checkers, pingCheck{client})
		app.Archive = minio.NewResultArchive(client, logger)
		sinks = append(sinks, app.Archive)
	}

	pipeline := discovery.NewPipeline(source, extractor, scorer, discovery.PipelineConfig{
		SearchPages: cfg.Search.Pages,
		Limits:      limits,
	}, logger, dm)

	app.Service = discovery.NewService(pipeline, jobs, discovery.ServiceConfig{
		Limits:          limits,
		AsyncRunTimeout: cfg.Pipeline.AsyncRunTimeout,
	}, logger, dm, sinks...)

	logger.Info("discovery service ready",
		logging.String("rerank", string(strategy)),
		logging.Bool("redis", cfg.Redis.Enabled),
		logging.Bool("kafka", cfg.Kafka.Enabled),
		logging.Bool("minio", cfg.MinIO.Enabled),
		logging.Bool("metrics", cfg.Metrics.Enabled),
	)
	return app, nil
}

// newRemoteReranker returns nil when no API key is configured so the scorer
// treats the remote backend as unavailable without a network round trip.
func newRemoteReranker(cfg config.RerankConfig) rerank.Reranker {
	if strings.TrimSpace(cfg.Cohere.APIKey) == "" {
		return nil
	}
	return rerank.NewCohereClient(rerank.CohereConfig{
		Endpoint: cfg.Cohere.Endpoint,
		APIKey:   cfg.Cohere.APIKey,
		Model:    cfg.Cohere.Model,
		Timeout:  cfg.Cohere.Timeout,
	})
}

func (a *App) newResultPublisher(ctx context.Context, cfg config.KafkaConfig) (*kafka.ResultPublisher, error) {
	sec := KafkaSecurity(cfg)
	if cfg.EnsureTopic {
		a.ensureTopic(ctx, cfg, sec)
	}
	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:          cfg.Brokers,
		CompressionCodec: cfg.Compression,
		Security:         sec,
	}, a.Logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, producer.Close)
	return kafka.NewResultPublisher(producer, cfg.Topic, a.Logger), nil
}

func (a *App) ensureTopic(ctx context.Context, cfg config.KafkaConfig, sec kafka.SecurityConfig) {
	tm, err := kafka.NewTopicManager(ctx, cfg.Brokers, sec, a.Logger)
	if err != nil {
		a.Logger.Warn("kafka topic manager unavailable", logging.Err(err))
		return
	}
	defer tm.Close()
	if err := tm.EnsureTopic(ctx, kafka.ResultsTopic(cfg.Topic, cfg.Partitions, cfg.ReplicationFactor)); err != nil {
		a.Logger.Warn("kafka topic provisioning failed", logging.String("topic", cfg.Topic), logging.Err(err))
	}
}

// KafkaSecurity maps the kafka config section onto the client security
// settings. TLS is enabled whenever a CA certificate is configured.
func KafkaSecurity(cfg config.KafkaConfig) kafka.SecurityConfig {
	return kafka.SecurityConfig{
		SASLMechanism: cfg.SASLMechanism,
		SASLUsername:  cfg.SASLUsername,
		SASLPassword:  cfg.SASLPassword,
		TLSEnabled:    cfg.TLSCertPath != "",
		TLSCertPath:   cfg.TLSCertPath,
	}
}

// RedisClientConfig maps the redis config section onto the client config.
func RedisClientConfig(cfg config.RedisConfig) *redis.Config {
	return &redis.Config{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	}
}

// MinIOClientConfig maps the minio config section onto the client config.
func MinIOClientConfig(cfg config.MinIOConfig) *minio.MinIOConfig {
	return &minio.MinIOConfig{
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKey,
		SecretAccessKey: cfg.SecretKey,
		UseSSL:          cfg.UseSSL,
		Region:          cfg.Region,
		Bucket:          cfg.Bucket,
		RetentionDays:   cfg.RetentionDays,
	}
}

// Close waits for background jobs and releases infrastructure clients in
// reverse construction order.
func (a *App) Close() error {
	if a.Service != nil {
		a.Service.Wait()
	}
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

type pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// pingCheck adapts a client's Ping to HealthChecker.
type pingCheck struct {
	p pinger
}

func (c pingCheck) Name() string                    { return c.p.Name() }
func (c pingCheck) Check(ctx context.Context) error { return c.p.Ping(ctx) }

//Personal.AI order the ending
