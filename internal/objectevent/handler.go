// Package objectevent is the ingress of the dispatch pipeline: it turns
// object register change events into dispatched activities and
// notifications.
package objectevent

import (
	"context"
	"fmt"
	"time"

	"pipelinq/internal/changes"
	"pipelinq/internal/dispatch"
	"pipelinq/internal/logger"
	"pipelinq/internal/schema"
	"pipelinq/pkg/actor"
	"pipelinq/pkg/logging"
	"pipelinq/pkg/metrics"
	"pipelinq/pkg/models"
	"pipelinq/pkg/retry"
	"pipelinq/pkg/tracing"
)

// Results recorded per handled event.
const (
	ResultDispatched    = "dispatched"
	ResultNoChange      = "no_change"
	ResultUnknownSchema = "unknown_schema"
	ResultIgnoredEntity = "ignored_entity"
	ResultDuplicate     = "duplicate"
	ResultInvalid       = "invalid"
	ResultIgnoredType   = "ignored_type"
)

type Resolver interface {
	Resolve(ctx context.Context, schemaID string) (schema.EntityTag, bool)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, e changes.Event, changedFields ...string) dispatch.Outcome
}

type Suppressor interface {
	Suppressed(ctx context.Context, e changes.Event, old, new changes.Snapshot) string
}

type Deduplicator interface {
	Claim(ctx context.Context, msg models.MessageEnvelope) (bool, string, error)
	Release(ctx context.Context, key string)
}

type Handler struct {
	resolver   Resolver
	dispatcher Dispatcher
	suppressor Suppressor
	dedup      Deduplicator
	logger     logger.Logger
}

// NewHandler wires the pipeline. suppressor and dedup are optional.
func NewHandler(resolver Resolver, dispatcher Dispatcher, suppressor Suppressor, dedup Deduplicator, log logger.Logger) *Handler {
	return &Handler{
		resolver:   resolver,
		dispatcher: dispatcher,
		suppressor: suppressor,
		dedup:      dedup,
		logger:     log,
	}
}

// HandleMessage is the broker handler for the object events topic. Invalid
// payloads fail fatally so they land in the DLQ without retries.
func (h *Handler) HandleMessage(ctx context.Context, envelope models.MessageEnvelope) error {
	start := time.Now()

	var event models.ObjectEvent
	if err := models.DecodePayload(envelope.Payload, &event); err != nil {
		metrics.ObserveObjectEvent("", ResultInvalid, time.Since(start))
		return retry.NewFatalError(fmt.Errorf("failed to decode object event %s: %w", envelope.ID, err))
	}
	if err := models.ValidateObjectEvent(&event); err != nil {
		metrics.ObserveObjectEvent("", ResultInvalid, time.Since(start))
		return retry.NewFatalError(fmt.Errorf("invalid object event %s: %w", envelope.ID, err))
	}

	ctx = actor.WithUser(ctx, event.Actor)
	ctx = logging.WithObjectID(ctx, event.Object.ID)

	switch event.Type {
	case models.EventTypeObjectCreated, models.EventTypeObjectUpdated:
	default:
		metrics.ObserveObjectEvent("", ResultIgnoredType, time.Since(start))
		h.logger.DebugwCtx(ctx, "Ignoring object event", "type", event.Type)
		return nil
	}

	if h.dedup != nil {
		first, key, err := h.dedup.Claim(ctx, envelope)
		if err != nil {
			return err
		}
		if !first {
			metrics.ObserveObjectEvent("", ResultDuplicate, time.Since(start))
			h.logger.InfowCtx(ctx, "Skipping duplicate object event")
			return nil
		}
		if err := h.route(ctx, event); err != nil {
			h.dedup.Release(ctx, key)
			return err
		}
		return nil
	}

	return h.route(ctx, event)
}

func (h *Handler) route(ctx context.Context, event models.ObjectEvent) error {
	switch event.Type {
	case models.EventTypeObjectCreated:
		h.OnObjectCreated(ctx, event.Object)
	case models.EventTypeObjectUpdated:
		h.OnObjectUpdated(ctx, event.OldObject, event.Object)
	}
	return ctx.Err()
}

// OnObjectCreated dispatches the creation of a lead or request.
func (h *Handler) OnObjectCreated(ctx context.Context, object models.RegisterObject) []dispatch.Outcome {
	ctx, span := tracing.GetTracer("dispatch-service").Start(ctx, "objectevent.created")
	defer span.End()

	start := time.Now()
	tag, result, ok := h.classify(ctx, object)
	if !ok {
		metrics.ObserveObjectEvent(string(tag), result, time.Since(start))
		return nil
	}

	data := changes.Snapshot(object.Data)
	outcomes := h.dispatchAll(ctx, []changes.Event{changes.Created(tag, object.ID, data)}, nil, data, nil)
	metrics.ObserveObjectEvent(string(tag), ResultDispatched, time.Since(start))
	return outcomes
}

// OnObjectUpdated diffs old against new and dispatches every detected
// change. A missing old object diffs against an empty snapshot.
func (h *Handler) OnObjectUpdated(ctx context.Context, old *models.RegisterObject, object models.RegisterObject) []dispatch.Outcome {
	ctx, span := tracing.GetTracer("dispatch-service").Start(ctx, "objectevent.updated")
	defer span.End()

	start := time.Now()
	tag, result, ok := h.classify(ctx, object)
	if !ok {
		metrics.ObserveObjectEvent(string(tag), result, time.Since(start))
		return nil
	}

	oldData := changes.Snapshot{}
	if old != nil && old.Data != nil {
		oldData = changes.Snapshot(old.Data)
	}
	newData := changes.Snapshot(object.Data)

	events := changes.Diff(tag, object.ID, oldData, newData)
	if len(events) == 0 {
		metrics.ObserveObjectEvent(string(tag), ResultNoChange, time.Since(start))
		return nil
	}

	changed, err := changes.ChangedFields(oldData, newData)
	if err != nil {
		h.logger.WarnwCtx(ctx, "Failed to compute changed fields", "error", err)
	}

	outcomes := h.dispatchAll(ctx, events, oldData, newData, changed)
	metrics.ObserveObjectEvent(string(tag), ResultDispatched, time.Since(start))
	return outcomes
}

// classify resolves the entity type and keeps leads and requests only.
func (h *Handler) classify(ctx context.Context, object models.RegisterObject) (schema.EntityTag, string, bool) {
	tag, ok := h.resolver.Resolve(ctx, object.Schema)
	if !ok {
		h.logger.DebugwCtx(ctx, "Ignoring object of unknown schema", "schema", object.Schema)
		return "", ResultUnknownSchema, false
	}
	if tag != schema.EntityLead && tag != schema.EntityRequest {
		return tag, ResultIgnoredEntity, false
	}
	return tag, "", true
}

func (h *Handler) dispatchAll(ctx context.Context, events []changes.Event, old, new changes.Snapshot, changedFields []string) []dispatch.Outcome {
	outcomes := make([]dispatch.Outcome, 0, len(events))
	for _, e := range events {
		if h.suppressor != nil {
			if rule := h.suppressor.Suppressed(ctx, e, old, new); rule != "" {
				h.logger.InfowCtx(ctx, "Change event suppressed",
					"event", e.Kind(),
					"rule", rule,
				)
				continue
			}
		}

		outcome := h.dispatcher.Dispatch(ctx, e, changedFields...)
		h.logger.InfowCtx(ctx, "Change event dispatched",
			"event", e.Kind(),
			"entity", e.Ref().Entity,
			"activity_delivered", outcome.Activity.Delivered,
			"notification_delivered", outcome.Notification.Delivered,
			"notification_reason", outcome.Notification.Reason,
		)
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}
