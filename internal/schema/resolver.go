// Package schema maps the opaque schema ids carried by object register
// events to pipelinq entity types.
package schema

import (
	"context"
	"strings"
	"sync"

	"pipelinq/internal/logger"
	"pipelinq/pkg/metrics"
)

type EntityTag string

const (
	EntityClient   EntityTag = "client"
	EntityContact  EntityTag = "contact"
	EntityLead     EntityTag = "lead"
	EntityRequest  EntityTag = "request"
	EntityPipeline EntityTag = "pipeline"
)

// AllEntityTags is the schema catalogue in settings-key order.
var AllEntityTags = []EntityTag{EntityClient, EntityContact, EntityLead, EntityRequest, EntityPipeline}

// SettingKey returns the app settings key holding the schema id for t.
func (t EntityTag) SettingKey() string {
	return string(t) + "_schema"
}

func (t EntityTag) Valid() bool {
	for _, tag := range AllEntityTags {
		if tag == t {
			return true
		}
	}
	return false
}

// ParseEntityTag accepts bare tags ("lead") and note object types
// ("pipelinq_lead").
func ParseEntityTag(s string) (EntityTag, bool) {
	tag := EntityTag(strings.TrimPrefix(strings.TrimSpace(s), "pipelinq_"))
	if !tag.Valid() {
		return "", false
	}
	return tag, true
}

type SettingsSource interface {
	GetSettings(ctx context.Context) (map[string]string, error)
}

// Resolver caches the schema id to entity type table. The table is built on
// first use and kept until Invalidate; a failed build leaves it empty.
type Resolver struct {
	source SettingsSource
	logger logger.Logger

	mu    sync.Mutex
	built bool
	table map[string]EntityTag
}

func NewResolver(source SettingsSource, log logger.Logger) *Resolver {
	return &Resolver{
		source: source,
		logger: log,
	}
}

// Resolve returns the entity type for schemaID. Unknown and empty ids
// resolve to false.
func (r *Resolver) Resolve(ctx context.Context, schemaID string) (EntityTag, bool) {
	if schemaID == "" {
		return "", false
	}
	table := r.getOrBuild(ctx)
	tag, ok := table[schemaID]
	return tag, ok
}

// Invalidate drops the cached table; the next Resolve rebuilds it.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.built = false
	r.table = nil
	metrics.SchemaMapSize.Set(0)
}

func (r *Resolver) getOrBuild(ctx context.Context) map[string]EntityTag {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.built {
		return r.table
	}

	r.built = true
	r.table = map[string]EntityTag{}

	settings, err := r.source.GetSettings(ctx)
	if err != nil {
		metrics.SchemaMapBuildsTotal.WithLabelValues("error").Inc()
		r.logger.ErrorwCtx(ctx, "Failed to build schema map",
			"error", err,
		)
		return r.table
	}

	for _, tag := range AllEntityTags {
		id := settings[tag.SettingKey()]
		if id == "" {
			continue
		}
		r.table[id] = tag
	}

	metrics.SchemaMapBuildsTotal.WithLabelValues("success").Inc()
	metrics.SchemaMapSize.Set(float64(len(r.table)))
	r.logger.DebugwCtx(ctx, "Schema map built",
		"schemas", len(r.table),
	)
	return r.table
}
