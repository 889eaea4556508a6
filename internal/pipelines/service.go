package pipelines

import (
	"context"
	"fmt"

	"pipelinq/internal/logger"
	"pipelinq/internal/objectstore"
	"pipelinq/internal/schema"
	"pipelinq/internal/settings"
	pkgerrors "pipelinq/pkg/errors"
	"pipelinq/pkg/models"
)

type CreateDefaultsResult struct {
	Created []string `json:"created"`
	Skipped bool     `json:"skipped"`
}

type Service struct {
	store    objectstore.Store
	settings schema.SettingsSource
	logger   logger.Logger
}

func NewService(store objectstore.Store, source schema.SettingsSource, log logger.Logger) *Service {
	return &Service{
		store:    store,
		settings: source,
		logger:   log,
	}
}

// CreateDefaults saves the default pipelines unless the pipeline schema
// already holds at least one object.
func (s *Service) CreateDefaults(ctx context.Context) (CreateDefaultsResult, error) {
	values, err := s.settings.GetSettings(ctx)
	if err != nil {
		return CreateDefaultsResult{}, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	register, schemaID := values[settings.KeyRegister], values[schema.EntityPipeline.SettingKey()]
	if register == "" || schemaID == "" {
		s.logger.WarnwCtx(ctx, "Cannot create default pipelines: register or pipeline schema not configured")
		return CreateDefaultsResult{}, pkgerrors.ErrNotConfigured.
			WithMessage("register or pipeline schema not configured")
	}

	existing, err := s.store.FindAll(ctx, objectstore.Query{Register: register, Schema: schemaID, Limit: 1})
	if err != nil {
		return CreateDefaultsResult{}, pkgerrors.Wrap(err, pkgerrors.ErrServiceUnavailable)
	}
	if len(existing) > 0 {
		s.logger.InfowCtx(ctx, "Default pipelines already exist, skipping creation")
		return CreateDefaultsResult{Skipped: true}, nil
	}

	result := CreateDefaultsResult{Created: []string{}}
	for _, p := range Defaults() {
		data, err := models.ToPayload(p)
		if err != nil {
			return result, fmt.Errorf("failed to encode pipeline %s: %w", p.Title, err)
		}
		if _, err := s.store.SaveObject(ctx, register, schemaID, data); err != nil {
			return result, pkgerrors.Wrap(err, pkgerrors.ErrServiceUnavailable)
		}
		result.Created = append(result.Created, p.Title)
		s.logger.InfowCtx(ctx, "Created default pipeline", "title", p.Title)
	}
	return result, nil
}
