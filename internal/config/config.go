// Package config provides configuration loading, defaults, and validation for
// ChemSource.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
)

// Build information, injected via -ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Log      logging.LogConfig `mapstructure:"log"`
	Search   SearchConfig      `mapstructure:"search"`
	Fetch    FetchConfig       `mapstructure:"fetch"`
	Rerank   RerankConfig      `mapstructure:"rerank"`
	Pipeline PipelineConfig    `mapstructure:"pipeline"`
	Redis    RedisConfig       `mapstructure:"redis"`
	Kafka    KafkaConfig       `mapstructure:"kafka"`
	MinIO    MinIOConfig       `mapstructure:"minio"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
	// RateLimitRPS is the sustained per-client rate on search endpoints.
	// Zero or negative disables the limiter.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SearchConfig holds the web search provider settings.
type SearchConfig struct {
	Endpoint          string        `mapstructure:"endpoint"`
	APIKey            string        `mapstructure:"api_key"`
	Engine            string        `mapstructure:"engine"`
	Pages             int           `mapstructure:"pages"`
	ResultsPerPage    int           `mapstructure:"results_per_page"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// FetchConfig holds page fetching settings.
type FetchConfig struct {
	PageTimeout  time.Duration `mapstructure:"page_timeout"`
	HopTimeout   time.Duration `mapstructure:"hop_timeout"`
	MaxLinks     int           `mapstructure:"max_links"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	UserAgent    string        `mapstructure:"user_agent"`
}

// RerankConfig selects and configures the relevance strategy.
type RerankConfig struct {
	Strategy      string       `mapstructure:"strategy"`
	ZeroAsFailure bool         `mapstructure:"zero_as_failure"`
	Cohere        CohereConfig `mapstructure:"cohere"`
	Local         LocalConfig  `mapstructure:"local"`
}

// CohereConfig configures the remote rerank service.
type CohereConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LocalConfig configures the in-process model.
type LocalConfig struct {
	WeightsPath string `mapstructure:"weights_path"`
}

// PipelineConfig holds orchestrator limits.
type PipelineConfig struct {
	MaxCandidates   int           `mapstructure:"max_candidates"`
	MaxWorkers      int           `mapstructure:"max_workers"`
	DefaultLimit    int           `mapstructure:"default_limit"`
	MaxLimit        int           `mapstructure:"max_limit"`
	JobTTL          time.Duration `mapstructure:"job_ttl"`
	AsyncRunTimeout time.Duration `mapstructure:"async_run_timeout"`
}

// RedisConfig configures the evidence cache and async job store.
type RedisConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	Prefix      string        `mapstructure:"prefix"`
	EvidenceTTL time.Duration `mapstructure:"evidence_ttl"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// KafkaConfig configures result event publishing.
type KafkaConfig struct {
	Enabled           bool     `mapstructure:"enabled"`
	Brokers           []string `mapstructure:"brokers"`
	Topic             string   `mapstructure:"topic"`
	GroupID           string   `mapstructure:"group_id"`
	Compression       string   `mapstructure:"compression"`
	SASLMechanism     string   `mapstructure:"sasl_mechanism"`
	SASLUsername      string   `mapstructure:"sasl_username"`
	SASLPassword      string   `mapstructure:"sasl_password"`
	TLSCertPath       string   `mapstructure:"tls_cert_path"`
	EnsureTopic       bool     `mapstructure:"ensure_topic"`
	Partitions        int      `mapstructure:"partitions"`
	ReplicationFactor int      `mapstructure:"replication_factor"`
}

// MinIOConfig configures result archiving.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`

	// RetentionDays expires archived results; negative keeps them forever.
	RetentionDays int `mapstructure:"retention_days"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// Known rerank strategies.
const (
	StrategyAuto   = "auto"
	StrategyRemote = "remote"
	StrategyLocal  = "local"
)

// Validate checks the configuration for values that would make the service
// unusable. A missing search API key is not an error here; it is reported
// when a search is attempted.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range", c.Server.Port)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Search.Pages < 1 {
		return fmt.Errorf("config: search.pages must be positive, got %d", c.Search.Pages)
	}
	if c.Search.RequestsPerSecond <= 0 {
		return fmt.Errorf("config: search.requests_per_second must be positive")
	}
	if c.Fetch.MaxLinks < 1 {
		return fmt.Errorf("config: fetch.max_links must be positive, got %d", c.Fetch.MaxLinks)
	}
	switch strings.ToLower(c.Rerank.Strategy) {
	case StrategyAuto, StrategyRemote, StrategyLocal:
	default:
		return fmt.Errorf("config: rerank.strategy %q is not one of auto, remote, local", c.Rerank.Strategy)
	}
	p := c.Pipeline
	if p.MaxCandidates < 1 {
		return fmt.Errorf("config: pipeline.max_candidates must be positive, got %d", p.MaxCandidates)
	}
	if p.MaxWorkers < 1 {
		return fmt.Errorf("config: pipeline.max_workers must be positive, got %d", p.MaxWorkers)
	}
	if p.MaxLimit < 1 || p.MaxLimit > 50 {
		return fmt.Errorf("config: pipeline.max_limit %d must be within [1, 50]", p.MaxLimit)
	}
	if p.DefaultLimit < 1 || p.DefaultLimit > p.MaxLimit {
		return fmt.Errorf("config: pipeline.default_limit %d must be within [1, %d]", p.DefaultLimit, p.MaxLimit)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis is enabled")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers is required when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required when kafka is enabled")
		}
		switch c.Kafka.SASLMechanism {
		case "", "PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512":
		default:
			return fmt.Errorf("config: unsupported kafka.sasl_mechanism %q", c.Kafka.SASLMechanism)
		}
	}
	if c.MinIO.Enabled && (c.MinIO.Endpoint == "" || c.MinIO.Bucket == "") {
		return fmt.Errorf("config: minio.endpoint and minio.bucket are required when minio is enabled")
	}
	return nil
}

//Personal.AI order the ending
