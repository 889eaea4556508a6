package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pipelinq/internal/broker"
	"pipelinq/internal/constants"
	"pipelinq/pkg/logging"
	"pipelinq/pkg/models"
)

// EventProducer announces settings changes to the dispatch services.
type EventProducer struct {
	producer broker.Producer
	topic    string
}

func NewEventProducer(producer broker.Producer, topic string) *EventProducer {
	return &EventProducer{
		producer: producer,
		topic:    topic,
	}
}

func (p *EventProducer) PublishSettingsUpdated(ctx context.Context, keys []string, changedBy string) error {
	if p == nil || p.producer == nil || p.topic == "" {
		return nil
	}

	event := models.SettingsUpdateEvent{
		EventType: models.EventTypeSettingsUpdated,
		Keys:      keys,
		ChangedBy: changedBy,
		Timestamp: time.Now(),
	}

	builder, err := models.NewMessageEnvelopeBuilder().
		WithID(uuid.New().String()).
		WithSource(constants.ServiceNameManagement).
		WithEventType(event.EventType).
		WithTraceID(logging.GetTraceID(ctx)).
		WithPayloadStruct(event)
	if err != nil {
		return fmt.Errorf("failed to build settings event: %w", err)
	}

	return p.producer.Publish(ctx, p.topic, builder.Build())
}
