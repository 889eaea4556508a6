package dispatch

import (
	"context"

	"pipelinq/internal/config"
	"pipelinq/pkg/circuitbreaker"
)

type CircuitBreakerActivityRepository struct {
	repo ActivityRepository
	cb   *circuitbreaker.Wrapper
}

func NewCircuitBreakerActivityRepository(repo ActivityRepository, cfg config.CircuitBreakerConfig) *CircuitBreakerActivityRepository {
	return &CircuitBreakerActivityRepository{
		repo: repo,
		cb:   circuitbreaker.New("mongo-activities", cfg),
	}
}

func (r *CircuitBreakerActivityRepository) Publish(ctx context.Context, activity OutboundActivity) error {
	return r.cb.Do(ctx, func() error {
		return r.repo.Publish(ctx, activity)
	})
}

func (r *CircuitBreakerActivityRepository) List(ctx context.Context, filter ActivityFilter) ([]OutboundActivity, error) {
	return circuitbreaker.Call(ctx, r.cb, func() ([]OutboundActivity, error) {
		return r.repo.List(ctx, filter)
	})
}

type CircuitBreakerNotificationSink struct {
	sink NotificationSink
	cb   *circuitbreaker.Wrapper
}

func NewCircuitBreakerNotificationSink(sink NotificationSink, cfg config.CircuitBreakerConfig) *CircuitBreakerNotificationSink {
	return &CircuitBreakerNotificationSink{
		sink: sink,
		cb:   circuitbreaker.New("kafka-notifications", cfg),
	}
}

func (s *CircuitBreakerNotificationSink) Notify(ctx context.Context, notification OutboundNotification) error {
	return s.cb.Do(ctx, func() error {
		return s.sink.Notify(ctx, notification)
	})
}
