package cel

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"
)

// Activation is the variable set a change-event expression sees.
type Activation struct {
	Event    string
	Entity   string
	ObjectID string
	Title    string
	Assignee string
	Actor    string
	Object   map[string]interface{}
	Old      map[string]interface{}
}

func (a Activation) vars() map[string]interface{} {
	object := a.Object
	if object == nil {
		object = map[string]interface{}{}
	}
	old := a.Old
	if old == nil {
		old = map[string]interface{}{}
	}
	return map[string]interface{}{
		"event":     a.Event,
		"entity":    a.Entity,
		"object_id": a.ObjectID,
		"title":     a.Title,
		"assignee":  a.Assignee,
		"actor":     a.Actor,
		"object":    object,
		"old":       old,
	}
}

type Evaluator struct {
	env *cel.Env
}

func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("event", cel.StringType),
		cel.Variable("entity", cel.StringType),
		cel.Variable("object_id", cel.StringType),
		cel.Variable("title", cel.StringType),
		cel.Variable("assignee", cel.StringType),
		cel.Variable("actor", cel.StringType),
		cel.Variable("object", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("old", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Evaluator{env: env}, nil
}

func (e *Evaluator) ValidateExpression(expression string) error {
	_, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("CEL expression validation failed: %w", issues.Err())
	}
	return nil
}

func (e *Evaluator) ValidateFilterExpression(expression string) error {
	_, err := e.compileBool(expression)
	return err
}

// CompileFilter compiles a boolean expression once for repeated evaluation.
func (e *Evaluator) CompileFilter(expression string) (cel.Program, error) {
	ast, err := e.compileBool(expression)
	if err != nil {
		return nil, err
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}
	return program, nil
}

func (e *Evaluator) EvaluateFilter(ctx context.Context, expression string, act Activation) (bool, error) {
	program, err := e.CompileFilter(expression)
	if err != nil {
		return false, err
	}
	return EvaluateProgram(ctx, program, act)
}

func EvaluateProgram(ctx context.Context, program cel.Program, act Activation) (bool, error) {
	result, _, err := program.ContextEval(ctx, act.vars())
	if err != nil {
		return false, fmt.Errorf("failed to evaluate CEL expression: %w", err)
	}

	boolVal, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return bool, got %T", result.Value())
	}
	return boolVal, nil
}

func (e *Evaluator) compileBool(expression string) (*cel.Ast, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL expression validation failed: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("filter expression must return bool, got %v", ast.OutputType())
	}
	return ast, nil
}
