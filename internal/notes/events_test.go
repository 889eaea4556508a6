package notes

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelinq/internal/changes"
	"pipelinq/internal/dispatch"
	"pipelinq/internal/logger"
	"pipelinq/internal/objectstore"
	"pipelinq/internal/schema"
)

type fakeStore struct {
	objects map[string]objectstore.Object
	err     error
	calls   []string
}

func (f *fakeStore) FindObject(ctx context.Context, register, schemaID, id string) (objectstore.Object, error) {
	f.calls = append(f.calls, register+"/"+schemaID+"/"+id)
	if f.err != nil {
		return nil, f.err
	}
	return f.objects[id], nil
}

func (f *fakeStore) FindAll(ctx context.Context, q objectstore.Query) ([]objectstore.Object, error) {
	return nil, nil
}

func (f *fakeStore) SaveObject(ctx context.Context, register, schemaID string, data objectstore.Object) (objectstore.Object, error) {
	return data, nil
}

type mapSettings map[string]string

func (m mapSettings) GetSettings(ctx context.Context) (map[string]string, error) {
	return m, nil
}

type recordingDispatcher struct {
	events []changes.Event
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, e changes.Event, changedFields ...string) dispatch.Outcome {
	d.events = append(d.events, e)
	return dispatch.Outcome{}
}

var configured = mapSettings{
	"register":       "reg",
	"lead_schema":    "s-lead",
	"request_schema": "s-request",
	"client_schema":  "s-client",
}

func TestTriggerNoteEvents_DispatchesNoteAdded(t *testing.T) {
	store := &fakeStore{objects: map[string]objectstore.Object{
		"42": {"id": "42", "title": "Acme", "assignee": "alice"},
	}}
	d := &recordingDispatcher{}
	svc := NewEventService(store, configured, d, logger.NopLogger())

	svc.TriggerNoteEvents(context.Background(), "pipelinq_lead", "42")

	assert.Equal(t, []string{"reg/s-lead/42"}, store.calls)
	require.Len(t, d.events, 1)
	note, ok := d.events[0].(changes.NoteAdded)
	require.True(t, ok)
	assert.Equal(t, schema.EntityLead, note.Entity)
	assert.Equal(t, "Acme", note.Title)
	assert.Equal(t, "alice", note.CurrentAssignee)
}

func TestTriggerNoteEvents_BareTagAndDefaultTitle(t *testing.T) {
	store := &fakeStore{objects: map[string]objectstore.Object{"7": {"id": "7"}}}
	d := &recordingDispatcher{}
	svc := NewEventService(store, configured, d, logger.NopLogger())

	svc.TriggerNoteEvents(context.Background(), "request", "7")

	require.Len(t, d.events, 1)
	assert.Equal(t, "request 7", d.events[0].Ref().Title)
	assert.Equal(t, "", d.events[0].Assignee())
}

func TestTriggerNoteEvents_NoOps(t *testing.T) {
	tests := []struct {
		name       string
		objectType string
		settings   mapSettings
		store      *fakeStore
	}{
		{"unknown type", "pipelinq_invoice", configured, &fakeStore{}},
		{"pipeline is not noted", "pipelinq_pipeline", configured, &fakeStore{}},
		{"missing schema setting", "pipelinq_contact", configured, &fakeStore{}},
		{"missing register", "pipelinq_lead", mapSettings{"lead_schema": "s-lead"}, &fakeStore{}},
		{"fetch fails", "pipelinq_lead", configured, &fakeStore{err: errors.New("boom")}},
		{"object missing", "pipelinq_lead", configured, &fakeStore{objects: map[string]objectstore.Object{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &recordingDispatcher{}
			svc := NewEventService(tt.store, tt.settings, d, logger.NopLogger())

			assert.NotPanics(t, func() {
				svc.TriggerNoteEvents(context.Background(), tt.objectType, "42")
			})
			assert.Empty(t, d.events)
		})
	}
}

func TestOnNoteAdded_PipelineIsNotNoted(t *testing.T) {
	store := &fakeStore{objects: map[string]objectstore.Object{"9": {"id": "9", "title": "Sales"}}}
	d := &recordingDispatcher{}
	settings := mapSettings{"register": "reg", "pipeline_schema": "s-pipe"}
	svc := NewEventService(store, settings, d, logger.NopLogger())

	svc.OnNoteAdded(context.Background(), schema.EntityPipeline, "9")

	assert.Empty(t, store.calls)
	assert.Empty(t, d.events)
}
