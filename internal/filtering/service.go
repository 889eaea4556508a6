// Package filtering evaluates the configured CEL suppression rules against
// detected change events.
package filtering

import (
	"context"
	"fmt"
	"sync"

	"pipelinq/internal/changes"
	"pipelinq/internal/config"
	"pipelinq/internal/logger"
	"pipelinq/pkg/actor"
	"pipelinq/pkg/cel"
	"pipelinq/pkg/metrics"
	"pipelinq/pkg/tracing"
)

type Service struct {
	rules     []Rule
	rulesMu   sync.RWMutex
	evaluator *cel.Evaluator
	logger    logger.Logger
}

func NewService(rules []config.SuppressionRuleConfig, log logger.Logger) (*Service, error) {
	evaluator, err := cel.NewEvaluator()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL evaluator: %w", err)
	}

	s := &Service{
		evaluator: evaluator,
		logger:    log,
	}
	if err := s.SetRules(rules); err != nil {
		return nil, err
	}
	return s, nil
}

// SetRules compiles and replaces the active rules. On error the previous
// rules stay active.
func (s *Service) SetRules(cfg []config.SuppressionRuleConfig) error {
	compiled := make([]Rule, 0, len(cfg))
	for _, rc := range cfg {
		program, err := s.evaluator.CompileFilter(rc.Expression)
		if err != nil {
			return fmt.Errorf("suppression rule %q: %w", rc.Name, err)
		}
		compiled = append(compiled, Rule{Name: rc.Name, Expression: rc.Expression, program: program})
	}

	s.rulesMu.Lock()
	s.rules = compiled
	s.rulesMu.Unlock()
	return nil
}

func (s *Service) RuleCount() int {
	s.rulesMu.RLock()
	defer s.rulesMu.RUnlock()
	return len(s.rules)
}

// Suppressed returns the name of the first rule matching e, or "" when the
// event should be dispatched. Evaluation errors never suppress.
func (s *Service) Suppressed(ctx context.Context, e changes.Event, old, new changes.Snapshot) string {
	s.rulesMu.RLock()
	rules := s.rules
	s.rulesMu.RUnlock()
	if len(rules) == 0 {
		return ""
	}

	ctx, span := tracing.GetTracer("dispatch-service").Start(ctx, "filtering.suppressed")
	defer span.End()

	t := e.Ref()
	act := cel.Activation{
		Event:    e.Kind(),
		Entity:   string(t.Entity),
		ObjectID: t.ObjectID,
		Title:    t.Title,
		Assignee: e.Assignee(),
		Actor:    actor.FromContext(ctx),
		Object:   new,
		Old:      old,
	}

	for _, rule := range rules {
		matched, err := cel.EvaluateProgram(ctx, rule.program, act)
		if err != nil {
			metrics.FallbackUsageTotal.WithLabelValues("filtering", "allow_on_error").Inc()
			s.logger.WarnwCtx(ctx, "Suppression rule evaluation error, ignoring rule",
				"rule_name", rule.Name,
				"error", err,
			)
			continue
		}
		if matched {
			metrics.SuppressedEventsTotal.WithLabelValues(rule.Name).Inc()
			s.logger.DebugwCtx(ctx, "Change event suppressed",
				"rule_name", rule.Name,
				"event", e.Kind(),
			)
			return rule.Name
		}
	}
	return ""
}
