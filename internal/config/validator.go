package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// SchemaSettingKeys are the app setting keys that hold schema ids, one per
// entity type.
var SchemaSettingKeys = []string{
	"client_schema",
	"contact_schema",
	"lead_schema",
	"request_schema",
	"pipeline_schema",
}

func ValidateStatic(cfg *Config) error {
	var errs []error

	validators := []func() error{
		func() error { return validateServer(cfg.Server) },
		func() error { return validateBroker(cfg.Broker) },
		func() error { return validateDatabase(cfg.Database) },
		func() error { return validateDispatch(cfg.Dispatch) },
		func() error { return validatePipelinq(cfg.Pipelinq) },
		func() error { return validateObjectStore(cfg.ObjectStore) },
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeoutSeconds <= 0 {
		return &ValidationError{Field: "server.read_timeout_seconds", Message: "read timeout must be positive"}
	}

	if cfg.WriteTimeoutSeconds <= 0 {
		return &ValidationError{Field: "server.write_timeout_seconds", Message: "write timeout must be positive"}
	}

	return nil
}

func validateBroker(cfg BrokerConfig) error {
	if cfg.Type != "kafka" {
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("unknown broker type: %q (supported: kafka)", cfg.Type),
		}
	}
	return validateKafka(cfg.Kafka)
}

func validateKafka(cfg KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return &ValidationError{Field: "broker.kafka.brokers", Message: "at least one Kafka broker is required"}
	}

	for i, broker := range cfg.Brokers {
		if broker == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("broker.kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.GroupID == "" {
		return &ValidationError{Field: "broker.kafka.group_id", Message: "Kafka consumer group ID is required"}
	}

	if cfg.NotificationsTopic == "" {
		return &ValidationError{Field: "broker.kafka.notifications_topic", Message: "notifications topic is required"}
	}

	switch cfg.StartOffset {
	case "", "earliest", "latest":
	default:
		return &ValidationError{
			Field:   "broker.kafka.start_offset",
			Message: fmt.Sprintf("invalid start offset: %s (valid: earliest, latest)", cfg.StartOffset),
		}
	}

	return validateRetry("broker.kafka.retry", cfg.Retry)
}

func validateRetry(field string, cfg RetryConfig) error {
	if cfg.MaxAttempts < 0 {
		return &ValidationError{Field: field + ".max_attempts", Message: "max_attempts must be non-negative"}
	}

	if cfg.InitialInterval < 0 || cfg.MaxInterval < 0 {
		return &ValidationError{Field: field, Message: "intervals must be non-negative"}
	}

	if cfg.MaxInterval > 0 && cfg.InitialInterval > 0 && cfg.MaxInterval < cfg.InitialInterval {
		return &ValidationError{
			Field:   field + ".max_interval",
			Message: "max_interval must be greater than or equal to initial_interval",
		}
	}

	if cfg.Multiplier <= 0 {
		return &ValidationError{Field: field + ".multiplier", Message: "multiplier must be positive"}
	}

	return nil
}

func validateDatabase(cfg DatabaseConfig) error {
	if cfg.Postgres.Host != "" || cfg.Postgres.Port > 0 {
		if err := validatePostgres(cfg.Postgres); err != nil {
			return err
		}
	}

	if cfg.Redis.Host != "" || cfg.Redis.Port > 0 {
		if cfg.Redis.Host == "" {
			return &ValidationError{Field: "database.redis.host", Message: "Redis host is required"}
		}
		if cfg.Redis.Port < 1 || cfg.Redis.Port > 65535 {
			return &ValidationError{
				Field:   "database.redis.port",
				Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Redis.Port),
			}
		}
	}

	if cfg.MongoDB.URI != "" {
		if !strings.HasPrefix(cfg.MongoDB.URI, "mongodb://") && !strings.HasPrefix(cfg.MongoDB.URI, "mongodb+srv://") {
			return &ValidationError{
				Field:   "database.mongodb.uri",
				Message: "MongoDB URI must start with mongodb:// or mongodb+srv://",
			}
		}
		if cfg.MongoDB.Database == "" {
			return &ValidationError{Field: "database.mongodb.database", Message: "MongoDB database name is required"}
		}
	}

	if cfg.RunMigrations && cfg.Postgres.Host == "" {
		return &ValidationError{Field: "database.run_migrations", Message: "migrations require a PostgreSQL database"}
	}

	return nil
}

func validatePostgres(cfg PostgresConfig) error {
	if cfg.Host == "" {
		return &ValidationError{Field: "database.postgres.host", Message: "PostgreSQL host is required"}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.postgres.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.User == "" {
		return &ValidationError{Field: "database.postgres.user", Message: "PostgreSQL user is required"}
	}

	if cfg.DBName == "" {
		return &ValidationError{Field: "database.postgres.dbname", Message: "PostgreSQL database name is required"}
	}

	validSSLModes := map[string]bool{
		"disable": true, "allow": true, "prefer": true,
		"require": true, "verify-ca": true, "verify-full": true,
	}
	if cfg.SSLMode != "" && !validSSLModes[strings.ToLower(cfg.SSLMode)] {
		return &ValidationError{
			Field:   "database.postgres.sslmode",
			Message: fmt.Sprintf("invalid SSL mode: %s", cfg.SSLMode),
		}
	}

	return nil
}

func validateDispatch(cfg DispatchConfig) error {
	if cfg.AppID == "" {
		return &ValidationError{Field: "dispatch.app_id", Message: "app id is required"}
	}

	if cfg.DefaultLanguage == "" {
		return &ValidationError{Field: "dispatch.default_language", Message: "default language is required"}
	}

	if cfg.BaseURL != "" {
		if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
			return &ValidationError{Field: "dispatch.base_url", Message: fmt.Sprintf("invalid URL: %v", err)}
		}
	}

	if cfg.DedupTTLSeconds < 0 {
		return &ValidationError{Field: "dispatch.dedup_ttl_seconds", Message: "TTL must be non-negative"}
	}

	switch strings.ToLower(cfg.OnRedisError) {
	case "", "allow", "deny":
	default:
		return &ValidationError{
			Field:   "dispatch.on_redis_error",
			Message: fmt.Sprintf("invalid on_redis_error value: %s (valid: allow, deny)", cfg.OnRedisError),
		}
	}

	names := make(map[string]bool, len(cfg.SuppressionRules))
	for i, rule := range cfg.SuppressionRules {
		field := fmt.Sprintf("dispatch.suppression_rules[%d]", i)
		if rule.Name == "" {
			return &ValidationError{Field: field + ".name", Message: "rule name is required"}
		}
		if names[rule.Name] {
			return &ValidationError{Field: field + ".name", Message: fmt.Sprintf("duplicate rule name %q", rule.Name)}
		}
		names[rule.Name] = true
		if strings.TrimSpace(rule.Expression) == "" {
			return &ValidationError{Field: field + ".expression", Message: "expression is required"}
		}
	}

	return nil
}

func validatePipelinq(cfg PipelinqConfig) error {
	known := make(map[string]bool, len(SchemaSettingKeys))
	for _, key := range SchemaSettingKeys {
		known[key] = true
	}
	for key := range cfg.Schemas {
		if !known[key] {
			return &ValidationError{
				Field:   "pipelinq.schemas." + key,
				Message: fmt.Sprintf("unknown schema key (valid: %s)", strings.Join(SchemaSettingKeys, ", ")),
			}
		}
	}
	return nil
}

func validateObjectStore(cfg ObjectStoreConfig) error {
	if cfg.BaseURL == "" {
		return nil
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return &ValidationError{Field: "object_store.base_url", Message: "base URL must be an http(s) URL"}
	}
	if cfg.TimeoutSeconds < 0 {
		return &ValidationError{Field: "object_store.timeout_seconds", Message: "timeout must be non-negative"}
	}
	return validateRetry("object_store.retry", cfg.Retry)
}
