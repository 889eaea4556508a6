package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
server:
  port: 9090
broker:
  kafka:
    brokers: ["localhost:9092"]
    group_id: pipelinq-dispatch
    retry:
      initial_interval: 500ms
      max_interval: 5s
pipelinq:
  register: "7"
  schemas:
    lead_schema: "12"
    request_schema: "13"
dispatch:
  base_url: "https://cloud.example.org/apps/pipelinq/"
  suppression_rules:
    - name: skip-imports
      expression: 'object.source == "import"'
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, testConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 15, cfg.Server.ReadTimeoutSeconds)
	assert.Equal(t, "kafka", cfg.Broker.Type)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Broker.Kafka.Brokers)
	assert.Equal(t, "pipelinq.notifications", cfg.Broker.Kafka.NotificationsTopic)
	assert.Equal(t, 500*time.Millisecond, cfg.Broker.Kafka.Retry.InitialInterval)
	assert.Equal(t, 5*time.Second, cfg.Broker.Kafka.Retry.MaxInterval)
	assert.Equal(t, "pipelinq", cfg.Dispatch.AppID)
	assert.Equal(t, "en", cfg.Dispatch.DefaultLanguage)
	assert.Equal(t, "7", cfg.Pipelinq.Register)
	assert.Equal(t, "12", cfg.Pipelinq.Schemas["lead_schema"])
	require.Len(t, cfg.Dispatch.SuppressionRules, 1)
	assert.Equal(t, "skip-imports", cfg.Dispatch.SuppressionRules[0].Name)
	assert.True(t, cfg.Tags.EnsureDefaultsOnStart)
}

func TestLoadConfig_EnvOverridesBrokers(t *testing.T) {
	t.Setenv("BROKER_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg, err := LoadConfig(writeConfig(t, testConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Broker.Kafka.Brokers)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidSchemaKey(t *testing.T) {
	content := testConfigYAML + "\n" + `
tags:
  lead_sources: ["web"]
`
	cfg, err := LoadConfig(writeConfig(t, content))
	require.NoError(t, err)
	assert.Equal(t, []string{"web"}, cfg.Tags.LeadSources)

	cfg.Pipelinq.Schemas["deal_schema"] = "99"
	err = ValidateStatic(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipelinq.schemas.deal_schema")
}
