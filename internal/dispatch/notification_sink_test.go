package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelinq/pkg/models"
)

type captureProducer struct {
	topic string
	msgs  []models.MessageEnvelope
}

func (c *captureProducer) Publish(ctx context.Context, topic string, msg models.MessageEnvelope) error {
	c.topic = topic
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *captureProducer) Close() error { return nil }

func TestKafkaNotificationSink_WrapsNotification(t *testing.T) {
	producer := &captureProducer{}
	sink := NewKafkaNotificationSink(producer, "pipelinq.notifications", "dispatch-service")

	n := OutboundNotification{
		ID:           "n-1",
		AppID:        "pipelinq",
		Subject:      "lead_assigned",
		TargetUserID: "alice",
		ObjectType:   "lead",
		ObjectID:     "42",
		Timestamp:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, sink.Notify(context.Background(), n))

	require.Len(t, producer.msgs, 1)
	env := producer.msgs[0]
	assert.Equal(t, "pipelinq.notifications", producer.topic)
	assert.Equal(t, "n-1", env.ID)
	assert.Equal(t, EventTypeNotification, env.Metadata.EventType)
	assert.Equal(t, "alice", env.Payload["target_user_id"])

	var decoded OutboundNotification
	require.NoError(t, models.DecodePayload(env.Payload, &decoded))
	assert.Equal(t, n, decoded)
}
