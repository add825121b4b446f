package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
)

const (
	DefaultServerHost         = "0.0.0.0"
	DefaultServerPort         = 8000
	DefaultServerReadTimeout  = 15 * time.Second
	DefaultServerWriteTimeout = 300 * time.Second
	DefaultRateLimitRPS       = 0.1
	DefaultRateLimitBurst     = 5

	DefaultSearchEndpoint          = "https://serpapi.com/search.json"
	DefaultSearchEngine            = "google"
	DefaultSearchPages             = 2
	DefaultSearchResultsPerPage    = 10
	DefaultSearchRequestsPerSecond = 5.0
	DefaultSearchBurst             = 1
	DefaultSearchTimeout           = 30 * time.Second

	DefaultFetchPageTimeout  = 30 * time.Second
	DefaultFetchHopTimeout   = 20 * time.Second
	DefaultFetchMaxLinks     = 150
	DefaultFetchMaxBodyBytes = 5 << 20
	DefaultFetchUserAgent    = "Mozilla/5.0 (compatible; ChemSource/1.0; +https://github.com/turtacn/ChemSource)"

	DefaultRerankStrategy = StrategyAuto
	DefaultCohereEndpoint = "https://api.cohere.com/v1/rerank"
	DefaultCohereModel    = "rerank-v3.5"
	DefaultCohereTimeout  = 15 * time.Second

	DefaultMaxCandidates   = 40
	DefaultMaxWorkers      = 5
	DefaultLimit           = 10
	DefaultMaxLimit        = 50
	DefaultJobTTL          = 24 * time.Hour
	DefaultAsyncRunTimeout = 15 * time.Minute

	DefaultRedisAddr        = "localhost:6379"
	DefaultRedisPrefix      = "chemsource:"
	DefaultRedisEvidenceTTL = 6 * time.Hour
	DefaultRedisDialTimeout = 5 * time.Second

	DefaultKafkaTopic   = "chemsource.results"
	DefaultKafkaGroupID = "chemsource-events"
	DefaultMinIOBucket  = "chemsource-results"
	DefaultMinIORegion  = "us-east-1"
	DefaultMetricsNS    = "chemsource"
	DefaultLogLevel     = logging.LevelInfo
	DefaultLogFormat    = logging.FormatJSON
)

// NewDefaultConfig returns a Config with every field at its default.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Rerank.ZeroAsFailure = true
	cfg.Metrics.Enabled = true
	cfg.Server.RateLimitRPS = DefaultRateLimitRPS
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields. Boolean switches are left as they
// are; their defaults come from setViperDefaults or NewDefaultConfig.
func ApplyDefaults(cfg *Config) {
	// ── Server ──
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = DefaultRateLimitBurst
	}

	// ── Log ──
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Search ──
	if cfg.Search.Endpoint == "" {
		cfg.Search.Endpoint = DefaultSearchEndpoint
	}
	if cfg.Search.Engine == "" {
		cfg.Search.Engine = DefaultSearchEngine
	}
	if cfg.Search.Pages == 0 {
		cfg.Search.Pages = DefaultSearchPages
	}
	if cfg.Search.ResultsPerPage == 0 {
		cfg.Search.ResultsPerPage = DefaultSearchResultsPerPage
	}
	if cfg.Search.RequestsPerSecond == 0 {
		cfg.Search.RequestsPerSecond = DefaultSearchRequestsPerSecond
	}
	if cfg.Search.Burst == 0 {
		cfg.Search.Burst = DefaultSearchBurst
	}
	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = DefaultSearchTimeout
	}

	// ── Fetch ──
	if cfg.Fetch.PageTimeout == 0 {
		cfg.Fetch.PageTimeout = DefaultFetchPageTimeout
	}
	if cfg.Fetch.HopTimeout == 0 {
		cfg.Fetch.HopTimeout = DefaultFetchHopTimeout
	}
	if cfg.Fetch.MaxLinks == 0 {
		cfg.Fetch.MaxLinks = DefaultFetchMaxLinks
	}
	if cfg.Fetch.MaxBodyBytes == 0 {
		cfg.Fetch.MaxBodyBytes = DefaultFetchMaxBodyBytes
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = DefaultFetchUserAgent
	}

	// ── Rerank ──
	if cfg.Rerank.Strategy == "" {
		cfg.Rerank.Strategy = DefaultRerankStrategy
	}
	if cfg.Rerank.Cohere.Endpoint == "" {
		cfg.Rerank.Cohere.Endpoint = DefaultCohereEndpoint
	}
	if cfg.Rerank.Cohere.Model == "" {
		cfg.Rerank.Cohere.Model = DefaultCohereModel
	}
	if cfg.Rerank.Cohere.Timeout == 0 {
		cfg.Rerank.Cohere.Timeout = DefaultCohereTimeout
	}

	// ── Pipeline ──
	if cfg.Pipeline.MaxCandidates == 0 {
		cfg.Pipeline.MaxCandidates = DefaultMaxCandidates
	}
	if cfg.Pipeline.MaxWorkers == 0 {
		cfg.Pipeline.MaxWorkers = DefaultMaxWorkers
	}
	if cfg.Pipeline.DefaultLimit == 0 {
		cfg.Pipeline.DefaultLimit = DefaultLimit
	}
	if cfg.Pipeline.MaxLimit == 0 {
		cfg.Pipeline.MaxLimit = DefaultMaxLimit
	}
	if cfg.Pipeline.JobTTL == 0 {
		cfg.Pipeline.JobTTL = DefaultJobTTL
	}
	if cfg.Pipeline.AsyncRunTimeout == 0 {
		cfg.Pipeline.AsyncRunTimeout = DefaultAsyncRunTimeout
	}

	// ── Redis ──
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = DefaultRedisPrefix
	}
	if cfg.Redis.EvidenceTTL == 0 {
		cfg.Redis.EvidenceTTL = DefaultRedisEvidenceTTL
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = DefaultRedisDialTimeout
	}

	// ── Sinks ──
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.Partitions == 0 {
		cfg.Kafka.Partitions = 3
	}
	if cfg.Kafka.ReplicationFactor == 0 {
		cfg.Kafka.ReplicationFactor = 1
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.Region == "" {
		cfg.MinIO.Region = DefaultMinIORegion
	}
	if cfg.MinIO.RetentionDays == 0 {
		cfg.MinIO.RetentionDays = 90
	}

	// ── Metrics ──
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNS
	}
}

// setViperDefaults registers every key with viper so that environment
// overrides are picked up by Unmarshal even without a config file.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", d.Server.RateLimitRPS)
	v.SetDefault("server.rate_limit_burst", d.Server.RateLimitBurst)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("search.endpoint", d.Search.Endpoint)
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.engine", d.Search.Engine)
	v.SetDefault("search.pages", d.Search.Pages)
	v.SetDefault("search.results_per_page", d.Search.ResultsPerPage)
	v.SetDefault("search.requests_per_second", d.Search.RequestsPerSecond)
	v.SetDefault("search.burst", d.Search.Burst)
	v.SetDefault("search.timeout", d.Search.Timeout)

	v.SetDefault("fetch.page_timeout", d.Fetch.PageTimeout)
	v.SetDefault("fetch.hop_timeout", d.Fetch.HopTimeout)
	v.SetDefault("fetch.max_links", d.Fetch.MaxLinks)
	v.SetDefault("fetch.max_body_bytes", d.Fetch.MaxBodyBytes)
	v.SetDefault("fetch.user_agent", d.Fetch.UserAgent)

	v.SetDefault("rerank.strategy", d.Rerank.Strategy)
	v.SetDefault("rerank.zero_as_failure", true)
	v.SetDefault("rerank.cohere.endpoint", d.Rerank.Cohere.Endpoint)
	v.SetDefault("rerank.cohere.api_key", "")
	v.SetDefault("rerank.cohere.model", d.Rerank.Cohere.Model)
	v.SetDefault("rerank.cohere.timeout", d.Rerank.Cohere.Timeout)
	v.SetDefault("rerank.local.weights_path", "")

	v.SetDefault("pipeline.max_candidates", d.Pipeline.MaxCandidates)
	v.SetDefault("pipeline.max_workers", d.Pipeline.MaxWorkers)
	v.SetDefault("pipeline.default_limit", d.Pipeline.DefaultLimit)
	v.SetDefault("pipeline.max_limit", d.Pipeline.MaxLimit)
	v.SetDefault("pipeline.job_ttl", d.Pipeline.JobTTL)
	v.SetDefault("pipeline.async_run_timeout", d.Pipeline.AsyncRunTimeout)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", d.Redis.Prefix)
	v.SetDefault("redis.evidence_ttl", d.Redis.EvidenceTTL)
	v.SetDefault("redis.dial_timeout", d.Redis.DialTimeout)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", d.Kafka.Topic)
	v.SetDefault("kafka.group_id", d.Kafka.GroupID)
	v.SetDefault("kafka.compression", "")
	v.SetDefault("kafka.sasl_mechanism", "")
	v.SetDefault("kafka.sasl_username", "")
	v.SetDefault("kafka.sasl_password", "")
	v.SetDefault("kafka.tls_cert_path", "")
	v.SetDefault("kafka.ensure_topic", false)
	v.SetDefault("kafka.partitions", d.Kafka.Partitions)
	v.SetDefault("kafka.replication_factor", d.Kafka.ReplicationFactor)

	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", d.MinIO.Bucket)
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.region", d.MinIO.Region)
	v.SetDefault("minio.retention_days", d.MinIO.RetentionDays)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
}

//Personal.AI order the ending
