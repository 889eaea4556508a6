package notes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelinq/internal/api"
	"pipelinq/internal/logger"
	"pipelinq/pkg/actor"
	pkgerrors "pipelinq/pkg/errors"
	"pipelinq/pkg/middleware"
)

type memoryRepo struct {
	notes map[string]Note
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{notes: map[string]Note{}}
}

func (m *memoryRepo) Create(ctx context.Context, note *Note) error {
	m.notes[note.ID] = *note
	return nil
}

func (m *memoryRepo) Get(ctx context.Context, id string) (*Note, error) {
	n, ok := m.notes[id]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	return &n, nil
}

func (m *memoryRepo) List(ctx context.Context, objectType, objectID string, limit int) ([]Note, error) {
	var out []Note
	for _, n := range m.notes {
		if n.ObjectType == objectType && n.ObjectID == objectID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.notes[id]; !ok {
		return pkgerrors.ErrNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m *memoryRepo) DeleteAll(ctx context.Context, objectType, objectID string) (int64, error) {
	var n int64
	for id, note := range m.notes {
		if note.ObjectType == objectType && note.ObjectID == objectID {
			delete(m.notes, id)
			n++
		}
	}
	return n, nil
}

type recordingTrigger struct {
	calls []string
}

func (r *recordingTrigger) TriggerNoteEvents(ctx context.Context, objectType, objectID string) {
	r.calls = append(r.calls, objectType+"/"+objectID)
}

func as(user string) context.Context {
	return actor.WithUser(context.Background(), user)
}

func TestAdd_TriggersEvents(t *testing.T) {
	repo := newMemoryRepo()
	trigger := &recordingTrigger{}
	svc := NewService(repo, trigger, logger.NopLogger())

	note, err := svc.Add(as("alice"), "pipelinq_lead", "42", "  call back tomorrow ")
	require.NoError(t, err)

	assert.Equal(t, "call back tomorrow", note.Message)
	assert.Equal(t, "alice", note.ActorID)
	assert.NotEmpty(t, note.ID)
	assert.Equal(t, []string{"pipelinq_lead/42"}, trigger.calls)
}

func TestAdd_Validation(t *testing.T) {
	svc := NewService(newMemoryRepo(), &recordingTrigger{}, logger.NopLogger())

	_, err := svc.Add(context.Background(), "pipelinq_lead", "42", "hi")
	assert.ErrorIs(t, err, pkgerrors.ErrUnauthorized)

	_, err = svc.Add(as("alice"), "pipelinq_lead", "42", "   ")
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = svc.Add(as("alice"), "", "42", "hi")
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestList_NewestFirstAndCapped(t *testing.T) {
	repo := newMemoryRepo()
	base := time.Now()
	for i := 0; i < 250; i++ {
		id := fmt.Sprintf("n%d", i)
		repo.notes[id] = Note{ID: id, ObjectType: "pipelinq_lead", ObjectID: "42", CreatedAt: base.Add(time.Duration(i) * time.Second)}
	}
	svc := NewService(repo, nil, logger.NopLogger())

	notes, err := svc.List(context.Background(), "pipelinq_lead", "42", 1000)
	require.NoError(t, err)
	require.Len(t, notes, 200)
	assert.True(t, notes[0].CreatedAt.After(notes[1].CreatedAt))

	notes, err = svc.List(context.Background(), "pipelinq_lead", "42", 0)
	require.NoError(t, err)
	assert.Len(t, notes, 50)
}

func TestDelete_OwnNotesOnly(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, logger.NopLogger())

	note, err := svc.Add(as("alice"), "pipelinq_request", "7", "hello")
	require.NoError(t, err)

	err = svc.Delete(as("bob"), note.ID)
	assert.ErrorIs(t, err, pkgerrors.ErrForbidden)
	assert.Len(t, repo.notes, 1)

	require.NoError(t, svc.Delete(as("alice"), note.ID))
	assert.Empty(t, repo.notes)

	err = svc.Delete(as("alice"), note.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestDeleteAll(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, logger.NopLogger())

	_, err := svc.Add(as("alice"), "pipelinq_client", "1", "a")
	require.NoError(t, err)
	_, err = svc.Add(as("bob"), "pipelinq_client", "1", "b")
	require.NoError(t, err)
	_, err = svc.Add(as("bob"), "pipelinq_client", "2", "c")
	require.NoError(t, err)

	n, err := svc.DeleteAll(as("alice"), "pipelinq_client", "1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Len(t, repo.notes, 1)
}

func TestHandler_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newMemoryRepo()
	trigger := &recordingTrigger{}
	router := gin.New()
	router.Use(middleware.ActorMiddleware())
	api.Mount(router, NewHandler(NewService(repo, trigger, logger.NopLogger()), logger.NopLogger()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes/pipelinq_lead/42", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(actor.HeaderUserID, "alice")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{"pipelinq_lead/42"}, trigger.calls)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/notes/pipelinq_lead/42", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"hi"`)

	var id string
	for k := range repo.notes {
		id = k
	}
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/notes/single/"+id, nil)
	req.Header.Set(actor.HeaderUserID, "bob")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/notes/single/"+id, nil)
	req.Header.Set(actor.HeaderUserID, "alice")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
