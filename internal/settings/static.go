package settings

import (
	"context"

	"pipelinq/internal/config"
)

// StaticSource serves the app settings from the pipelinq config section.
type StaticSource struct {
	values map[string]string
}

func NewStaticSource(cfg config.PipelinqConfig) *StaticSource {
	values := make(map[string]string, len(cfg.Schemas)+1)
	for k, v := range cfg.Schemas {
		values[k] = v
	}
	if cfg.Register != "" {
		values[KeyRegister] = cfg.Register
	}
	return &StaticSource{values: values}
}

func (s *StaticSource) GetSettings(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}

type getter interface {
	GetSettings(ctx context.Context) (map[string]string, error)
}

// LayeredSource reads primary and fills keys it leaves empty from fallback.
type LayeredSource struct {
	primary  getter
	fallback getter
}

func NewLayeredSource(primary, fallback getter) *LayeredSource {
	return &LayeredSource{primary: primary, fallback: fallback}
}

func (l *LayeredSource) GetSettings(ctx context.Context) (map[string]string, error) {
	values, err := l.primary.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	defaults, err := l.fallback.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = make(map[string]string, len(defaults))
	}
	for k, v := range defaults {
		if values[k] == "" {
			values[k] = v
		}
	}
	return values, nil
}
