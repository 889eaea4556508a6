// Package deduplication guards the dispatch pipeline against redelivered
// object events with a Redis idempotency key per event.
package deduplication

import (
	"context"
	"fmt"
	"time"

	"pipelinq/internal/config"
	"pipelinq/internal/constants"
	"pipelinq/internal/logger"
	"pipelinq/pkg/metrics"
	"pipelinq/pkg/models"
	"pipelinq/pkg/tracing"
)

type Service struct {
	repo         Repository
	hasher       *Hasher
	ttl          time.Duration
	onRedisError string
	logger       logger.Logger
}

func NewService(repo Repository, cfg config.DispatchConfig, log logger.Logger) *Service {
	ttl := time.Duration(cfg.DedupTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	onRedisError := cfg.OnRedisError
	if onRedisError == "" {
		onRedisError = constants.FallbackAllow
	}
	return &Service{
		repo:         repo,
		hasher:       NewHasher("sha256"),
		ttl:          ttl,
		onRedisError: onRedisError,
		logger:       log,
	}
}

// Claim reports whether msg is seen for the first time. The returned key is
// passed to Release when processing fails so that a redelivery is handled.
func (s *Service) Claim(ctx context.Context, msg models.MessageEnvelope) (bool, string, error) {
	ctx, span := tracing.GetTracer("dispatch-service").Start(ctx, "deduplication.claim")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return false, "", err
	}

	key, err := s.Key(msg)
	if err != nil {
		return false, "", err
	}

	start := time.Now()
	first, err := s.repo.SetNX(ctx, key, time.Now().Unix(), s.ttl)
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveDedup(duration, "error")
		return s.handleRedisError(ctx, err, msg.ID, key)
	}

	status := "duplicate"
	if first {
		status = "unique"
	}
	metrics.ObserveDedup(duration, status)
	return first, key, nil
}

// Release forgets a claimed key. Failures are logged only.
func (s *Service) Release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		s.logger.WarnwCtx(ctx, "Failed to release idempotency key",
			"error", err,
			"key", key,
		)
	}
}

func (s *Service) Key(msg models.MessageEnvelope) (string, error) {
	values := map[string]interface{}{
		"id":   msg.ID,
		"type": msg.Payload["type"],
	}
	if object, ok := msg.Payload["object"].(map[string]interface{}); ok {
		values["object_id"] = object["id"]
	}

	hash, err := s.hasher.ComputeHash(values, keyFields)
	if err != nil {
		return "", fmt.Errorf("failed to compute idempotency key for message %s: %w", msg.ID, err)
	}
	return constants.CacheKeyPrefixEvent + hash, nil
}

func (s *Service) handleRedisError(ctx context.Context, err error, msgID, key string) (bool, string, error) {
	if s.onRedisError == constants.FallbackAllow {
		metrics.FallbackUsageTotal.WithLabelValues("deduplication", "allow_on_error").Inc()
		s.logger.WarnwCtx(ctx, "Redis error during idempotency check, allowing event (fallback: allow)",
			"error", err,
		)
		return true, "", nil
	}

	metrics.FallbackUsageTotal.WithLabelValues("deduplication", "deny_on_error").Inc()
	return false, key, fmt.Errorf("redis error during idempotency check for message %s: %w", msgID, err)
}
