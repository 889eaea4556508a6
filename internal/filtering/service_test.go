package filtering

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelinq/internal/changes"
	"pipelinq/internal/config"
	"pipelinq/internal/logger"
	"pipelinq/internal/schema"
	"pipelinq/pkg/actor"
)

func stageEvent() changes.Event {
	return changes.StageChanged{
		Target:          changes.Target{Entity: schema.EntityLead, ObjectID: "1", Title: "Acme"},
		NewStage:        "Won",
		CurrentAssignee: "alice",
	}
}

func TestSuppressed_MatchesRule(t *testing.T) {
	svc, err := NewService([]config.SuppressionRuleConfig{
		{Name: "importer", Expression: `actor == "importer"`},
		{Name: "closed-lost", Expression: `event == "stage_changed" && object.stage == "Lost"`},
	}, logger.NopLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, svc.RuleCount())

	ctx := actor.WithUser(context.Background(), "importer")
	assert.Equal(t, "importer", svc.Suppressed(ctx, stageEvent(), nil, changes.Snapshot{"stage": "Won"}))

	ctx = actor.WithUser(context.Background(), "bob")
	assert.Equal(t, "", svc.Suppressed(ctx, stageEvent(), nil, changes.Snapshot{"stage": "Won"}))
	assert.Equal(t, "closed-lost", svc.Suppressed(ctx, stageEvent(), nil, changes.Snapshot{"stage": "Lost"}))
}

func TestSuppressed_EvaluationErrorDoesNotSuppress(t *testing.T) {
	svc, err := NewService([]config.SuppressionRuleConfig{
		{Name: "needs-old", Expression: `old.stage == "New"`},
	}, logger.NopLogger())
	require.NoError(t, err)

	assert.Equal(t, "", svc.Suppressed(context.Background(), stageEvent(), nil, changes.Snapshot{}))
}

func TestSetRules_InvalidKeepsPrevious(t *testing.T) {
	svc, err := NewService(nil, logger.NopLogger())
	require.NoError(t, err)
	require.NoError(t, svc.SetRules([]config.SuppressionRuleConfig{{Name: "a", Expression: `entity == "lead"`}}))

	err = svc.SetRules([]config.SuppressionRuleConfig{{Name: "bad", Expression: `title`}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.Equal(t, 1, svc.RuleCount())

	_, err = NewService([]config.SuppressionRuleConfig{{Name: "bad", Expression: `nope ==`}}, logger.NopLogger())
	assert.Error(t, err)
}
