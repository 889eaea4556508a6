// Package config_handler reacts to settings_updated events published by the
// management service.
package config_handler

import (
	"context"

	"pipelinq/internal/logger"
	"pipelinq/pkg/models"
)

// Invalidator drops state derived from the app settings.
type Invalidator interface {
	Invalidate()
}

type Handler struct {
	expectedEventType string
	invalidators      []Invalidator
	logger            logger.Logger
}

func NewHandler(expectedEventType string, log logger.Logger, invalidators ...Invalidator) *Handler {
	return &Handler{
		expectedEventType: expectedEventType,
		invalidators:      invalidators,
		logger:            log,
	}
}

func NewSettingsHandler(log logger.Logger, invalidators ...Invalidator) *Handler {
	return NewHandler(models.EventTypeSettingsUpdated, log, invalidators...)
}

// HandleConfigUpdateEvent invalidates every registered cache when envelope
// carries the expected event type. Other events are ignored.
func (h *Handler) HandleConfigUpdateEvent(ctx context.Context, envelope models.MessageEnvelope) error {
	eventType := envelope.Metadata.EventType
	if eventType == "" {
		if eventTypeVal, ok := envelope.Payload["event_type"].(string); ok {
			eventType = eventTypeVal
		} else {
			h.logger.WarnwCtx(ctx, "Config event missing event_type", "id", envelope.ID)
			return nil
		}
	}

	if eventType != h.expectedEventType {
		return nil
	}

	var event models.SettingsUpdateEvent
	if err := models.DecodePayload(envelope.Payload, &event); err != nil {
		h.logger.ErrorwCtx(ctx, "Failed to decode settings event", "error", err, "id", envelope.ID)
		return err
	}

	h.logger.InfowCtx(ctx, "Received settings update event",
		"event_type", eventType,
		"keys", event.Keys,
		"changed_by", event.ChangedBy,
	)

	for _, inv := range h.invalidators {
		inv.Invalidate()
	}
	return nil
}
