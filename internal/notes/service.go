package notes

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"pipelinq/internal/constants"
	"pipelinq/internal/logger"
	"pipelinq/pkg/actor"
	pkgerrors "pipelinq/pkg/errors"
)

// Trigger announces a freshly added note.
type Trigger interface {
	TriggerNoteEvents(ctx context.Context, objectType, objectID string)
}

type Service struct {
	repo    Repository
	trigger Trigger
	logger  logger.Logger
}

func NewService(repo Repository, trigger Trigger, log logger.Logger) *Service {
	return &Service{
		repo:    repo,
		trigger: trigger,
		logger:  log,
	}
}

// List returns the newest notes first, at most constants.MaxLimit.
func (s *Service) List(ctx context.Context, objectType, objectID string, limit int) ([]Note, error) {
	if err := validateTarget(objectType, objectID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = constants.DefaultLimit
	}
	if limit > constants.MaxLimit {
		limit = constants.MaxLimit
	}

	notes, err := s.repo.List(ctx, objectType, objectID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return notes, nil
}

func (s *Service) Add(ctx context.Context, objectType, objectID, message string) (*Note, error) {
	userID, ok := actor.Required(ctx)
	if !ok {
		return nil, pkgerrors.ErrUnauthorized
	}
	if err := validateTarget(objectType, objectID); err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, pkgerrors.ErrValidation.WithMessage("Note message cannot be empty")
	}

	note := &Note{
		ID:         uuid.New().String(),
		ObjectType: objectType,
		ObjectID:   objectID,
		Message:    message,
		ActorID:    userID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	if s.trigger != nil {
		s.trigger.TriggerNoteEvents(ctx, objectType, objectID)
	}
	return note, nil
}

// Delete removes a note written by the acting user.
func (s *Service) Delete(ctx context.Context, noteID string) error {
	userID, ok := actor.Required(ctx)
	if !ok {
		return pkgerrors.ErrUnauthorized
	}

	note, err := s.repo.Get(ctx, noteID)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	if note.ActorID != userID {
		return pkgerrors.ErrForbidden.WithMessage("You can only delete your own notes")
	}

	if err := s.repo.Delete(ctx, noteID); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return nil
}

func (s *Service) DeleteAll(ctx context.Context, objectType, objectID string) (int64, error) {
	if _, ok := actor.Required(ctx); !ok {
		return 0, pkgerrors.ErrUnauthorized
	}
	if err := validateTarget(objectType, objectID); err != nil {
		return 0, err
	}

	n, err := s.repo.DeleteAll(ctx, objectType, objectID)
	if err != nil {
		return 0, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	s.logger.InfowCtx(ctx, "Notes deleted", "object_type", objectType, "object_id", objectID, "count", n)
	return n, nil
}

func validateTarget(objectType, objectID string) error {
	if strings.TrimSpace(objectType) == "" || strings.TrimSpace(objectID) == "" {
		return pkgerrors.ErrValidation.WithMessage("object type and object id are required")
	}
	return nil
}
