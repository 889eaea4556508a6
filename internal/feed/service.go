// Package feed serves the activity stream with subjects rendered in the
// reader's language.
package feed

import (
	"context"

	"pipelinq/internal/constants"
	"pipelinq/internal/dispatch"
	"pipelinq/internal/logger"
	"pipelinq/internal/subject"
	pkgerrors "pipelinq/pkg/errors"
)

type Query struct {
	ObjectType string
	ObjectID   string
	Type       string
	Lang       string
	// AffectedUserID, when set, keeps activities about that user only.
	AffectedUserID string
	Limit          int
}

type Item struct {
	dispatch.OutboundActivity
	Rendered subject.Rendered `json:"rendered"`
}

type Lister interface {
	List(ctx context.Context, filter dispatch.ActivityFilter) ([]dispatch.OutboundActivity, error)
}

type Service struct {
	activities Lister
	renderer   *subject.Renderer
	logger     logger.Logger
}

func NewService(activities Lister, renderer *subject.Renderer, log logger.Logger) *Service {
	return &Service{
		activities: activities,
		renderer:   renderer,
		logger:     log,
	}
}

// MatchLanguage maps an Accept-Language header to a catalog language.
func (s *Service) MatchLanguage(acceptLanguage string) string {
	return s.renderer.MatchLanguage(acceptLanguage)
}

func (s *Service) List(ctx context.Context, q Query) ([]Item, error) {
	if q.Type != "" && !knownType(q.Type) {
		return nil, pkgerrors.ErrValidation.WithMessage("unknown activity type").WithDetail("type", q.Type)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = constants.DefaultLimit
	}
	if limit > constants.MaxLimit {
		limit = constants.MaxLimit
	}

	activities, err := s.activities.List(ctx, dispatch.ActivityFilter{
		ObjectType:     q.ObjectType,
		ObjectID:       q.ObjectID,
		Type:           q.Type,
		AffectedUserID: q.AffectedUserID,
		Limit:          limit,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrServiceUnavailable)
	}

	items := make([]Item, 0, len(activities))
	for _, a := range activities {
		items = append(items, Item{
			OutboundActivity: a,
			Rendered:         s.render(ctx, q.Lang, a),
		})
	}
	return items, nil
}

// render falls back to the raw subject key so one bad entry does not break
// the feed.
func (s *Service) render(ctx context.Context, lang string, a dispatch.OutboundActivity) subject.Rendered {
	rendered, err := s.renderer.Render(lang, a.Subject, a.SubjectParams, a.ObjectID)
	if err != nil {
		s.logger.WarnwCtx(ctx, "Failed to render activity subject",
			"activity_id", a.ID,
			"subject", a.Subject,
			"error", err,
		)
		return subject.Rendered{Parsed: string(a.Subject), Rich: string(a.Subject)}
	}
	return rendered
}

func knownType(t string) bool {
	switch t {
	case dispatch.TypeAssignment, dispatch.TypeStageStatus, dispatch.TypeNotes:
		return true
	}
	return false
}
