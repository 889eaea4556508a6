package settings

import (
	"context"
	"sort"
	"strings"
	"time"

	"pipelinq/internal/logger"
	"pipelinq/pkg/actor"
	pkgerrors "pipelinq/pkg/errors"
)

type Service struct {
	app    AppRepository
	users  UserRepository
	events *EventProducer
	logger logger.Logger
}

type ServiceOption func(*Service)

func WithEvents(events *EventProducer) ServiceOption {
	return func(s *Service) {
		s.events = events
	}
}

func NewService(app AppRepository, users UserRepository, log logger.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		app:    app,
		users:  users,
		logger: log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetSettings returns every known key, empty when unset.
func (s *Service) GetSettings(ctx context.Context) (map[string]string, error) {
	stored, err := s.app.GetSettings(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	out := make(map[string]string, len(Keys()))
	for _, key := range Keys() {
		out[key] = stored[key]
	}
	return out, nil
}

// UpdateSettings stores the given keys and tells the dispatch services to
// drop their schema caches. A failed announcement is
// logged and does not fail the update.
func (s *Service) UpdateSettings(ctx context.Context, values map[string]string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, pkgerrors.ErrValidation.WithMessage("no settings given")
	}

	keys := make([]string, 0, len(values))
	cleaned := make(map[string]string, len(values))
	for key, value := range values {
		if !isKnownKey(key) {
			return nil, pkgerrors.ErrValidation.
				WithMessage("unknown setting key").
				WithDetail("key", key)
		}
		cleaned[key] = strings.TrimSpace(value)
		keys = append(keys, key)
	}
	sort.Strings(keys)

	changedBy := actor.FromContext(ctx)
	if err := s.app.SetSettings(ctx, cleaned, changedBy); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	if err := s.events.PublishSettingsUpdated(ctx, keys, changedBy); err != nil {
		s.logger.WarnwCtx(ctx, "Failed to publish settings update event",
			"keys", keys,
			"error", err,
		)
	}

	s.logger.InfowCtx(ctx, "App settings updated", "keys", keys)
	return s.GetSettings(ctx)
}

func (s *Service) GetUserSettings(ctx context.Context) (UserSettings, error) {
	userID, ok := actor.Required(ctx)
	if !ok {
		return UserSettings{}, pkgerrors.ErrUnauthorized
	}

	stored, found, err := s.users.GetUserSettings(ctx, userID)
	if err != nil {
		return UserSettings{}, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	if !found {
		return DefaultUserSettings(userID), nil
	}
	return stored, nil
}

func (s *Service) UpdateUserSettings(ctx context.Context, req UpdateUserSettingsRequest) (UserSettings, error) {
	current, err := s.GetUserSettings(ctx)
	if err != nil {
		return UserSettings{}, err
	}

	req.apply(&current)
	current.UpdatedAt = time.Now()
	if err := s.users.SaveUserSettings(ctx, current); err != nil {
		return UserSettings{}, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return current, nil
}
