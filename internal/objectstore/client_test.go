package objectstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelinq/internal/config"
	"pipelinq/internal/logger"
	"pipelinq/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.ObjectStoreConfig{
		BaseURL:  srv.URL + "/",
		Username: "admin",
		Password: "secret",
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
		},
	}, config.CircuitBreakerConfig{}, logger.NopLogger())
}

func TestFindObject(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/objects/reg/lead-schema/42", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "admin", user)
		assert.Equal(t, "secret", pass)
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "42", "title": "Acme", "assignee": "alice"})
	})

	obj, err := c.FindObject(context.Background(), "reg", "lead-schema", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", obj.ID())
	assert.Equal(t, "Acme", obj.Title())
	assert.Equal(t, "alice", obj["assignee"])
}

func TestFindObject_NotFoundIsNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.FindObject(context.Background(), "reg", "lead-schema", "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFindObject_RetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "42"})
	})

	obj, err := c.FindObject(context.Background(), "reg", "lead-schema", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", obj.ID())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFindAll(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/objects/reg/pipeline-schema", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("_limit"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{{"id": "p1", "title": "Sales Pipeline"}},
		})
	})

	objs, err := c.FindAll(context.Background(), Query{Register: "reg", Schema: "pipeline-schema", Limit: 1})
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "Sales Pipeline", objs[0].Title())
}

func TestSaveObject_CreateAndUpdate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "/api/objects/reg/pipeline-schema", r.URL.Path)
			body["id"] = "new-id"
		case http.MethodPut:
			assert.Equal(t, "/api/objects/reg/pipeline-schema/p1", r.URL.Path)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
		json.NewEncoder(w).Encode(body)
	})

	created, err := c.SaveObject(context.Background(), "reg", "pipeline-schema", Object{"title": "Sales"})
	require.NoError(t, err)
	assert.Equal(t, "new-id", created.ID())

	updated, err := c.SaveObject(context.Background(), "reg", "pipeline-schema", Object{"id": "p1", "title": "Sales"})
	require.NoError(t, err)
	assert.Equal(t, "p1", updated.ID())
}
