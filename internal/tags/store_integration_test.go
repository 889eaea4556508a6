//go:build integration

package tags

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelinq/internal/logger"
	"pipelinq/internal/testutil"
	pkgerrors "pipelinq/pkg/errors"
)

func TestPostgresStore_CreateIsCaseInsensitiveUnique(t *testing.T) {
	store := NewPostgresStore(testutil.Postgres(t))
	ctx := context.Background()

	tag, err := store.CreateTag(ctx, "Website")
	require.NoError(t, err)
	assert.NotZero(t, tag.ID)

	_, err = store.CreateTag(ctx, "website")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))

	found, err := store.GetTagByName(ctx, "WEBSITE")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, found.ID)
	assert.Equal(t, "Website", found.Name)
}

func TestPostgresStore_AssignAndCascade(t *testing.T) {
	store := NewPostgresStore(testutil.Postgres(t))
	ctx := context.Background()

	tag, err := store.CreateTag(ctx, "Email")
	require.NoError(t, err)

	require.NoError(t, store.AssignTag(ctx, CategoryLeadSource, tag.ID))
	require.NoError(t, store.AssignTag(ctx, CategoryLeadSource, tag.ID))
	require.NoError(t, store.AssignTag(ctx, CategoryRequestChannel, tag.ID))

	leads, err := store.TagsForCategory(ctx, CategoryLeadSource)
	require.NoError(t, err)
	require.Len(t, leads, 1)

	require.NoError(t, store.UnassignTag(ctx, CategoryLeadSource, tag.ID))
	leads, err = store.TagsForCategory(ctx, CategoryLeadSource)
	require.NoError(t, err)
	assert.Empty(t, leads)

	require.NoError(t, store.DeleteTag(ctx, tag.ID))
	channels, err := store.TagsForCategory(ctx, CategoryRequestChannel)
	require.NoError(t, err)
	assert.Empty(t, channels)
}

func TestPostgresStore_RenameMissingAndTaken(t *testing.T) {
	store := NewPostgresStore(testutil.Postgres(t))
	ctx := context.Background()

	err := store.RenameTag(ctx, 9999, "Ghost")
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = store.CreateTag(ctx, "Phone")
	require.NoError(t, err)
	other, err := store.CreateTag(ctx, "Fax")
	require.NoError(t, err)

	err = store.RenameTag(ctx, other.ID, "phone")
	assert.ErrorIs(t, err, ErrDuplicateTagName)
}

func TestService_ConcurrentAddSharesOneTag(t *testing.T) {
	store := NewPostgresStore(testutil.Postgres(t))
	svc := NewService(store, logger.NopLogger())
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, len(Categories))
	for i, category := range Categories {
		wg.Add(1)
		go func(i int, category Category) {
			defer wg.Done()
			_, errs[i] = svc.AddTag(ctx, category, "Referral")
		}(i, category)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	leads, err := svc.ListTags(ctx, CategoryLeadSource)
	require.NoError(t, err)
	channels, err := svc.ListTags(ctx, CategoryRequestChannel)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	require.Len(t, channels, 1)
	assert.Equal(t, leads[0].ID, channels[0].ID)
}

func TestPostgresStore_CategoriesForTag(t *testing.T) {
	store := NewPostgresStore(testutil.Postgres(t))
	ctx := context.Background()

	tag, err := store.CreateTag(ctx, "Post")
	require.NoError(t, err)

	categories, err := store.CategoriesForTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Empty(t, categories)

	require.NoError(t, store.AssignTag(ctx, CategoryLeadSource, tag.ID))
	require.NoError(t, store.AssignTag(ctx, CategoryRequestChannel, tag.ID))

	categories, err = store.CategoriesForTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Category{CategoryLeadSource, CategoryRequestChannel}, categories)
}
