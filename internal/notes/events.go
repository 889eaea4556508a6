// Package notes stores the notes users leave on CRM objects and announces
// them to the assignee of the object.
package notes

import (
	"context"
	"fmt"

	"pipelinq/internal/changes"
	"pipelinq/internal/dispatch"
	"pipelinq/internal/logger"
	"pipelinq/internal/objectstore"
	"pipelinq/internal/schema"
	"pipelinq/internal/settings"
	"pipelinq/pkg/metrics"
)

// Trigger results.
const (
	resultDispatched     = "dispatched"
	resultUnknownType    = "unknown_type"
	resultNotConfigured  = "not_configured"
	resultFetchFailed    = "fetch_failed"
	resultObjectNotFound = "object_not_found"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, e changes.Event, changedFields ...string) dispatch.Outcome
}

// EventService dispatches note_added for a note on a client, contact, lead
// or request. The object is fetched from the register for its title and
// assignee.
type EventService struct {
	store      objectstore.Store
	settings   schema.SettingsSource
	dispatcher Dispatcher
	logger     logger.Logger
}

func NewEventService(store objectstore.Store, source schema.SettingsSource, dispatcher Dispatcher, log logger.Logger) *EventService {
	return &EventService{
		store:      store,
		settings:   source,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// TriggerNoteEvents never fails: every problem is logged at warning level
// and turns the call into a no-op.
func (s *EventService) TriggerNoteEvents(ctx context.Context, objectType, objectID string) {
	tag, ok := noteEntity(objectType)
	if !ok {
		s.logger.WarnwCtx(ctx, "Note event skipped: unsupported object type", "object_type", objectType)
		metrics.NoteEventsTotal.WithLabelValues(resultUnknownType).Inc()
		return
	}
	s.OnNoteAdded(ctx, tag, objectID)
}

// OnNoteAdded is TriggerNoteEvents for an already resolved entity type.
func (s *EventService) OnNoteAdded(ctx context.Context, tag schema.EntityTag, objectID string) {
	if !acceptsNotes(tag) {
		s.logger.WarnwCtx(ctx, "Note event skipped: unsupported entity", "entity", tag)
		metrics.NoteEventsTotal.WithLabelValues(resultUnknownType).Inc()
		return
	}

	obj, result, err := s.fetch(ctx, tag, objectID)
	if err != nil {
		s.logger.WarnwCtx(ctx, "Failed to trigger note events",
			"entity", tag,
			"object_id", objectID,
			"error", err,
		)
		metrics.NoteEventsTotal.WithLabelValues(result).Inc()
		return
	}

	title := obj.Title()
	if title == "" {
		title = fmt.Sprintf("%s %s", tag, objectID)
	}

	event := changes.NoteAdded{
		Target: changes.Target{
			Entity:   tag,
			ObjectID: objectID,
			Title:    title,
		},
		CurrentAssignee: changes.Snapshot(obj).Field(changes.FieldAssignee),
	}
	s.dispatcher.Dispatch(ctx, event)
	metrics.NoteEventsTotal.WithLabelValues(resultDispatched).Inc()
}

func (s *EventService) fetch(ctx context.Context, tag schema.EntityTag, objectID string) (objectstore.Object, string, error) {
	values, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, resultNotConfigured, fmt.Errorf("failed to load settings: %w", err)
	}

	register, schemaID := values[settings.KeyRegister], values[tag.SettingKey()]
	if register == "" || schemaID == "" {
		return nil, resultNotConfigured, fmt.Errorf("register or %s not configured", tag.SettingKey())
	}

	obj, err := s.store.FindObject(ctx, register, schemaID, objectID)
	if err != nil {
		return nil, resultFetchFailed, err
	}
	if obj == nil {
		return nil, resultObjectNotFound, fmt.Errorf("object %s not found", objectID)
	}
	return obj, "", nil
}

// noteEntity accepts the four entity types notes can be attached to.
func noteEntity(objectType string) (schema.EntityTag, bool) {
	tag, ok := schema.ParseEntityTag(objectType)
	if !ok || !acceptsNotes(tag) {
		return "", false
	}
	return tag, true
}

func acceptsNotes(tag schema.EntityTag) bool {
	switch tag {
	case schema.EntityClient, schema.EntityContact, schema.EntityLead, schema.EntityRequest:
		return true
	}
	return false
}
