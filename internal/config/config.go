package config

import (
	"time"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Broker         BrokerConfig         `mapstructure:"broker"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Dispatch       DispatchConfig       `mapstructure:"dispatch"`
	Pipelinq       PipelinqConfig       `mapstructure:"pipelinq"`
	ObjectStore    ObjectStoreConfig    `mapstructure:"object_store"`
	Tags           TagsConfig           `mapstructure:"tags"`
	Management     ManagementConfig     `mapstructure:"management"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Tracing        TracingConfig        `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port                int `mapstructure:"port"`
	ReadTimeoutSeconds  int `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig `mapstructure:"postgres"`
	Redis         RedisConfig    `mapstructure:"redis"`
	MongoDB       MongoDBConfig  `mapstructure:"mongodb"`
	RunMigrations bool           `mapstructure:"run_migrations"`
	MigrationsDir string         `mapstructure:"migrations_dir"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MongoDBConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type BrokerConfig struct {
	Type  string      `mapstructure:"type"`
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers            []string    `mapstructure:"brokers"`
	GroupID            string      `mapstructure:"group_id"`
	ObjectEventsTopic  string      `mapstructure:"object_events_topic"`
	NotificationsTopic string      `mapstructure:"notifications_topic"`
	SettingsTopic      string      `mapstructure:"settings_topic"`
	DLQTopic           string      `mapstructure:"dlq_topic"`
	StartOffset        string      `mapstructure:"start_offset"` // "earliest" (default) or "latest"
	Retry              RetryConfig `mapstructure:"retry"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DispatchConfig drives the change-event to activity/notification pipeline.
type DispatchConfig struct {
	AppID              string                  `mapstructure:"app_id"`
	BaseURL            string                  `mapstructure:"base_url"`
	DefaultLanguage    string                  `mapstructure:"default_language"`
	ActivityCollection string                  `mapstructure:"activity_collection"`
	DedupTTLSeconds    int                     `mapstructure:"dedup_ttl_seconds"`
	OnRedisError       string                  `mapstructure:"on_redis_error"` // "allow" (default) or "deny"
	SuppressionRules   []SuppressionRuleConfig `mapstructure:"suppression_rules"`
}

// SuppressionRuleConfig is a CEL expression; a change event whose evaluation
// returns true is dropped before fan-out.
type SuppressionRuleConfig struct {
	Name       string `mapstructure:"name"`
	Expression string `mapstructure:"expression"`
}

// PipelinqConfig holds static app settings used when no settings database is
// configured.
type PipelinqConfig struct {
	Register string            `mapstructure:"register"`
	Schemas  map[string]string `mapstructure:"schemas"`
}

type ObjectStoreConfig struct {
	BaseURL        string      `mapstructure:"base_url"`
	Username       string      `mapstructure:"username"`
	Password       string      `mapstructure:"password"`
	TimeoutSeconds int         `mapstructure:"timeout_seconds"`
	Retry          RetryConfig `mapstructure:"retry"`
}

type TagsConfig struct {
	EnsureDefaultsOnStart bool     `mapstructure:"ensure_defaults_on_start"`
	LeadSources           []string `mapstructure:"lead_sources"`
	RequestChannels       []string `mapstructure:"request_channels"`
}

type ManagementConfig struct {
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	RPS             float64 `mapstructure:"rps"`
	Burst           int     `mapstructure:"burst"`
	CleanupInterval int     `mapstructure:"cleanup_interval"`
	MaxAge          int     `mapstructure:"max_age"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

type TracingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"service_name"`
	OTLP        OTLPConfig    `mapstructure:"otlp"`
	Sampler     SamplerConfig `mapstructure:"sampler"`
}

type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type SamplerConfig struct {
	Type  string  `mapstructure:"type"`
	Param float64 `mapstructure:"param"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
