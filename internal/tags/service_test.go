package tags

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelinq/internal/api"
	"pipelinq/internal/logger"
)

// memoryStore mirrors the Postgres constraints: names unique across
// categories ignoring case, one assignment per (category, tag).
type memoryStore struct {
	mu          sync.Mutex
	nextID      int64
	tags        map[int64]string
	assignments map[Category]map[int64]bool
	failCreate  string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		tags:        map[int64]string{},
		assignments: map[Category]map[int64]bool{},
	}
}

func (m *memoryStore) CreateTag(ctx context.Context, name string) (Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name == m.failCreate {
		return Tag{}, assert.AnError
	}
	for _, existing := range m.tags {
		if strings.EqualFold(existing, name) {
			return Tag{}, errTagExists
		}
	}
	m.nextID++
	m.tags[m.nextID] = name
	return Tag{ID: m.nextID, Name: name}, nil
}

func (m *memoryStore) GetTagByName(ctx context.Context, name string) (Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.tags {
		if strings.EqualFold(existing, name) {
			return Tag{ID: id, Name: existing}, nil
		}
	}
	return Tag{}, ErrTagNotFound
}

func (m *memoryStore) RenameTag(ctx context.Context, id int64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tags[id]; !ok {
		return ErrTagNotFound
	}
	for other, existing := range m.tags {
		if other != id && strings.EqualFold(existing, name) {
			return ErrDuplicateTagName
		}
	}
	m.tags[id] = name
	return nil
}

func (m *memoryStore) DeleteTag(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tags, id)
	for _, assigned := range m.assignments {
		delete(assigned, id)
	}
	return nil
}

func (m *memoryStore) AssignTag(ctx context.Context, category Category, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.assignments[category] == nil {
		m.assignments[category] = map[int64]bool{}
	}
	m.assignments[category][id] = true
	return nil
}

func (m *memoryStore) UnassignTag(ctx context.Context, category Category, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.assignments[category], id)
	return nil
}

func (m *memoryStore) TagsForCategory(ctx context.Context, category Category) ([]Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Tag
	for id := range m.assignments[category] {
		out = append(out, Tag{ID: id, Name: m.tags[id]})
	}
	return out, nil
}

func (m *memoryStore) CategoriesForTag(ctx context.Context, id int64) ([]Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Category
	for category, ids := range m.assignments {
		if ids[id] {
			out = append(out, category)
		}
	}
	return out, nil
}

func names(tags []Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Name
	}
	return out
}

func newTestService() (*Service, *memoryStore) {
	store := newMemoryStore()
	return NewService(store, logger.NopLogger()), store
}

func TestAddTag(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tag, err := svc.AddTag(ctx, CategoryLeadSource, "  Website ")
	require.NoError(t, err)
	assert.Equal(t, "Website", tag.Name)

	_, err = svc.AddTag(ctx, CategoryLeadSource, "   ")
	assert.ErrorIs(t, err, ErrEmptyTagName)

	_, err = svc.AddTag(ctx, CategoryLeadSource, "WEBSITE")
	assert.ErrorIs(t, err, ErrDuplicateTagName)
}

func TestAddTag_ReusesGlobalTagAcrossCategories(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	lead, err := svc.AddTag(ctx, CategoryLeadSource, "phone")
	require.NoError(t, err)
	channel, err := svc.AddTag(ctx, CategoryRequestChannel, "Phone")
	require.NoError(t, err)

	assert.Equal(t, lead.ID, channel.ID)
	assert.Len(t, store.tags, 1)
}

func TestRenameTag(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	email, err := svc.AddTag(ctx, CategoryLeadSource, "email")
	require.NoError(t, err)
	_, err = svc.AddTag(ctx, CategoryLeadSource, "phone")
	require.NoError(t, err)

	_, err = svc.RenameTag(ctx, CategoryLeadSource, email.ID, "Phone")
	assert.ErrorIs(t, err, ErrDuplicateTagName)

	renamed, err := svc.RenameTag(ctx, CategoryLeadSource, email.ID, "email")
	require.NoError(t, err)
	assert.Equal(t, Tag{ID: email.ID, Name: "email"}, renamed)

	renamed, err = svc.RenameTag(ctx, CategoryLeadSource, email.ID, "E-mail")
	require.NoError(t, err)
	assert.Equal(t, "E-mail", renamed.Name)

	_, err = svc.RenameTag(ctx, CategoryLeadSource, email.ID, " ")
	assert.ErrorIs(t, err, ErrEmptyTagName)
}

func TestRemoveTag_SharedTagSurvives(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	phone, err := svc.AddTag(ctx, CategoryLeadSource, "phone")
	require.NoError(t, err)
	_, err = svc.AddTag(ctx, CategoryRequestChannel, "phone")
	require.NoError(t, err)

	require.NoError(t, svc.RemoveTag(ctx, CategoryLeadSource, phone.ID))

	leads, err := svc.ListTags(ctx, CategoryLeadSource)
	require.NoError(t, err)
	assert.Empty(t, leads)

	channels, err := svc.ListTags(ctx, CategoryRequestChannel)
	require.NoError(t, err)
	assert.Equal(t, []string{"phone"}, names(channels))
	assert.Contains(t, store.tags, phone.ID)

	require.NoError(t, svc.RemoveTag(ctx, CategoryRequestChannel, phone.ID))
	assert.NotContains(t, store.tags, phone.ID)
}

func TestRemoveTag_UnknownCategoryDoesNotKeepTag(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	tag, err := svc.AddTag(ctx, CategoryLeadSource, "legacy")
	require.NoError(t, err)
	require.NoError(t, store.AssignTag(ctx, Category("retired_category"), tag.ID))

	require.NoError(t, svc.RemoveTag(ctx, CategoryLeadSource, tag.ID))
	assert.NotContains(t, store.tags, tag.ID)
}

func TestEnsureDefaults_Idempotent(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaults(ctx, CategoryRequestChannel, DefaultRequestChannels))
	first, err := svc.ListTags(ctx, CategoryRequestChannel)
	require.NoError(t, err)

	require.NoError(t, svc.EnsureDefaults(ctx, CategoryRequestChannel, DefaultRequestChannels))
	second, err := svc.ListTags(ctx, CategoryRequestChannel)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"counter", "email", "phone", "post", "website"}, names(second))
	assert.Len(t, store.tags, len(DefaultRequestChannels))
}

func TestEnsureDefaults_SkipsFailures(t *testing.T) {
	svc, store := newTestService()
	store.failCreate = "email"

	require.NoError(t, svc.EnsureDefaults(context.Background(), CategoryRequestChannel, []string{"phone", "email", "post"}))

	tags, err := svc.ListTags(context.Background(), CategoryRequestChannel)
	require.NoError(t, err)
	assert.Equal(t, []string{"phone", "post"}, names(tags))
}

func TestListTags_SortedCaseInsensitive(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	for _, n := range []string{"beta", "Alpha", "gamma", "Delta"} {
		_, err := svc.AddTag(ctx, CategoryLeadSource, n)
		require.NoError(t, err)
	}

	tags, err := svc.ListTags(ctx, CategoryLeadSource)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "beta", "Delta", "gamma"}, names(tags))
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService()
	router := gin.New()
	api.Mount(router, NewHandler(svc, logger.NopLogger()))

	post := func(path, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, post("/api/v1/lead-sources", `{"name":"website"}`).Code)
	assert.Equal(t, http.StatusConflict, post("/api/v1/lead-sources", `{"name":"Website"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post("/api/v1/request-channels", `{"name":" "}`).Code)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/lead-sources", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"website"}]`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/lead-sources/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/lead-sources/1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
