package tags

import (
	"context"
	"sort"
	"strings"

	"pipelinq/internal/logger"
	pkgerrors "pipelinq/pkg/errors"
	"pipelinq/pkg/metrics"
)

type Service struct {
	store  Store
	logger logger.Logger
}

func NewService(store Store, log logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: log,
	}
}

// ListTags returns the tags of category sorted case-insensitively by name.
func (s *Service) ListTags(ctx context.Context, category Category) ([]Tag, error) {
	tags, err := s.store.TagsForCategory(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	sort.SliceStable(tags, func(i, j int) bool {
		return strings.ToLower(tags[i].Name) < strings.ToLower(tags[j].Name)
	})
	if tags == nil {
		tags = []Tag{}
	}
	return tags, nil
}

func (s *Service) AddTag(ctx context.Context, category Category, name string) (tag Tag, err error) {
	defer func() { metrics.IncTagOperation(string(category), "add", err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return Tag{}, ErrEmptyTagName
	}
	if err := s.ensureUnique(ctx, category, name, 0); err != nil {
		return Tag{}, err
	}

	tag, err = s.createOrReuse(ctx, name)
	if err != nil {
		return Tag{}, err
	}
	if err := s.store.AssignTag(ctx, category, tag.ID); err != nil {
		return Tag{}, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.logger.InfowCtx(ctx, "Tag added", "category", category, "name", tag.Name, "tag_id", tag.ID)
	return tag, nil
}

// RenameTag renames the global tag, so every category that shares it sees
// the new name.
func (s *Service) RenameTag(ctx context.Context, category Category, id int64, newName string) (tag Tag, err error) {
	defer func() { metrics.IncTagOperation(string(category), "rename", err) }()

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return Tag{}, ErrEmptyTagName
	}
	if err := s.ensureUnique(ctx, category, newName, id); err != nil {
		return Tag{}, err
	}

	if err := s.store.RenameTag(ctx, id, newName); err != nil {
		return Tag{}, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.logger.InfowCtx(ctx, "Tag renamed", "category", category, "name", newName, "tag_id", id)
	return Tag{ID: id, Name: newName}, nil
}

// RemoveTag unassigns the tag from category and deletes it once no other
// category uses it.
func (s *Service) RemoveTag(ctx context.Context, category Category, id int64) (err error) {
	defer func() { metrics.IncTagOperation(string(category), "remove", err) }()

	if err := s.store.UnassignTag(ctx, category, id); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	used, err := s.usedElsewhere(ctx, category, id)
	if err != nil {
		return err
	}
	if !used {
		if err := s.store.DeleteTag(ctx, id); err != nil {
			return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
		}
	}

	s.logger.InfowCtx(ctx, "Tag removed", "category", category, "tag_id", id, "deleted", !used)
	return nil
}

// EnsureDefaults adds every name the category lacks. Failures are logged and
// skipped.
func (s *Service) EnsureDefaults(ctx context.Context, category Category, names []string) error {
	existing, err := s.ListTags(ctx, category)
	if err != nil {
		return err
	}

	have := make(map[string]bool, len(existing))
	for _, tag := range existing {
		have[strings.ToLower(tag.Name)] = true
	}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if have[key] {
			continue
		}
		if _, err := s.AddTag(ctx, category, name); err != nil {
			s.logger.WarnwCtx(ctx, "Failed to create default tag",
				"category", category,
				"name", name,
				"error", err,
			)
			continue
		}
		have[key] = true
	}
	return nil
}

func (s *Service) ensureUnique(ctx context.Context, category Category, name string, excludeID int64) error {
	tags, err := s.store.TagsForCategory(ctx, category)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	for _, tag := range tags {
		if excludeID != 0 && tag.ID == excludeID {
			continue
		}
		if strings.EqualFold(tag.Name, name) {
			return ErrDuplicateTagName.WithDetail("name", name)
		}
	}
	return nil
}

func (s *Service) createOrReuse(ctx context.Context, name string) (Tag, error) {
	tag, err := s.store.CreateTag(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !pkgerrors.IsConflict(err) {
		return Tag{}, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	tag, err = s.store.GetTagByName(ctx, name)
	if err != nil {
		return Tag{}, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return tag, nil
}

// usedElsewhere reports whether a known category other than category still
// holds the tag.
func (s *Service) usedElsewhere(ctx context.Context, category Category, id int64) (bool, error) {
	categories, err := s.store.CategoriesForTag(ctx, id)
	if err != nil {
		return false, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	for _, other := range categories {
		if other != category && other.Valid() {
			return true, nil
		}
	}
	return false, nil
}
