//go:build integration

package broker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelinq/internal/config"
	"pipelinq/internal/logger"
	"pipelinq/internal/testutil"
	"pipelinq/pkg/models"
	"pipelinq/pkg/retry"
)

func kafkaConfig(brokers []string, groupID string) config.KafkaConfig {
	return config.KafkaConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		DLQTopic: "test.dlq",
		Retry: config.RetryConfig{
			MaxAttempts:     2,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2,
		},
	}
}

func startConsumer(t *testing.T, brokers []string, groupID, topic string, handler HandlerFunc) {
	t.Helper()
	consumer := NewKafkaConsumer(kafkaConfig(brokers, groupID), logger.NopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go consumer.Consume(ctx, topic, handler)
	t.Cleanup(func() {
		cancel()
		consumer.Close()
	})
}

func TestKafka_PublishAndConsume(t *testing.T) {
	brokers := testutil.Kafka(t, "test.events", "test.dlq")
	ctx := context.Background()

	producer := NewKafkaProducer(kafkaConfig(brokers, ""), logger.NopLogger())
	defer producer.Close()

	received := make(chan models.MessageEnvelope, 1)
	startConsumer(t, brokers, "test-group", "test.events", func(ctx context.Context, msg models.MessageEnvelope) error {
		received <- msg
		return nil
	})

	msg := models.MessageEnvelope{
		ID:       "evt-1",
		Source:   "test",
		Payload:  map[string]interface{}{"action": "created"},
		Metadata: models.Metadata{EventType: models.EventTypeSettingsUpdated},
	}
	require.NoError(t, producer.Publish(ctx, "test.events", msg))

	select {
	case got := <-received:
		assert.Equal(t, "evt-1", got.ID)
		assert.Equal(t, "created", got.Payload["action"])
		assert.Equal(t, models.EventTypeSettingsUpdated, got.Metadata.EventType)
	case <-time.After(30 * time.Second):
		t.Fatal("message not consumed")
	}
}

func TestKafka_FatalErrorGoesToDLQ(t *testing.T) {
	brokers := testutil.Kafka(t, "test.events", "test.dlq")
	ctx := context.Background()

	producer := NewKafkaProducer(kafkaConfig(brokers, ""), logger.NopLogger())
	defer producer.Close()

	startConsumer(t, brokers, "test-group", "test.events", func(ctx context.Context, msg models.MessageEnvelope) error {
		return retry.NewFatalError(assert.AnError)
	})

	dead := make(chan models.MessageEnvelope, 1)
	startConsumer(t, brokers, "test-dlq-group", "test.dlq", func(ctx context.Context, msg models.MessageEnvelope) error {
		dead <- msg
		return nil
	})

	require.NoError(t, producer.Publish(ctx, "test.events", models.MessageEnvelope{ID: "evt-bad", Source: "test"}))

	select {
	case got := <-dead:
		assert.Equal(t, "evt-bad", got.ID)
		assert.Equal(t, "test.events", got.Metadata.Attributes["dlq_source_topic"])
	case <-time.After(30 * time.Second):
		t.Fatal("message not routed to the DLQ")
	}
}
