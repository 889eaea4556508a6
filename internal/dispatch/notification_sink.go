package dispatch

import (
	"context"
	"fmt"

	"pipelinq/internal/broker"
	"pipelinq/pkg/logging"
	"pipelinq/pkg/models"
)

const EventTypeNotification = "pipelinq.notification"

// KafkaNotificationSink publishes notifications on the notifications topic
// for the host's notification delivery.
type KafkaNotificationSink struct {
	producer broker.Producer
	topic    string
	source   string
}

func NewKafkaNotificationSink(producer broker.Producer, topic, source string) *KafkaNotificationSink {
	return &KafkaNotificationSink{
		producer: producer,
		topic:    topic,
		source:   source,
	}
}

func (s *KafkaNotificationSink) Notify(ctx context.Context, notification OutboundNotification) error {
	builder, err := models.NewMessageEnvelopeBuilder().
		WithID(notification.ID).
		WithSource(s.source).
		WithTimestamp(notification.Timestamp).
		WithEventType(EventTypeNotification).
		WithTraceID(logging.GetTraceID(ctx)).
		WithPayloadStruct(notification)
	if err != nil {
		return fmt.Errorf("failed to build notification envelope: %w", err)
	}

	if err := s.producer.Publish(ctx, s.topic, builder.Build()); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}
