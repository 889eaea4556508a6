package cel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvaluator(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)
	assert.NotNil(t, eval)
}

func TestValidateExpression(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name      string
		expr      string
		wantError bool
	}{
		{name: "valid simple expression", expr: `entity == "lead"`},
		{name: "object field access", expr: `object.stage == "Won"`},
		{name: "invalid expression", expr: `invalid syntax here!!!`, wantError: true},
		{name: "undefined variable", expr: `payload.status == "x"`, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eval.ValidateExpression(tt.expr)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFilterExpression(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	assert.NoError(t, eval.ValidateFilterExpression(`actor == "system"`))
	assert.NoError(t, eval.ValidateFilterExpression(`title.startsWith("[test]")`))
	assert.Error(t, eval.ValidateFilterExpression(`title`))
}

func TestEvaluateFilter(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	ctx := context.Background()
	act := Activation{
		Event:    "stage_changed",
		Entity:   "lead",
		ObjectID: "42",
		Title:    "[import] Acme",
		Assignee: "alice",
		Actor:    "importer",
		Object:   map[string]interface{}{"stage": "Won", "value": 1500.0},
		Old:      map[string]interface{}{"stage": "New"},
	}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"actor match", `actor == "importer"`, true},
		{"actor mismatch", `actor == "bob"`, false},
		{"event and entity", `event == "stage_changed" && entity == "lead"`, true},
		{"title prefix", `title.startsWith("[import]")`, true},
		{"numeric field", `object.value > 1000.0`, true},
		{"old field", `old.stage == "New" && object.stage == "Won"`, true},
		{"has on missing field", `has(old.assignee)`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateFilter(ctx, tt.expr, act)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateFilter_MissingKeyErrors(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	_, err = eval.EvaluateFilter(context.Background(), `old.stage == "New"`, Activation{})
	assert.Error(t, err)
}
