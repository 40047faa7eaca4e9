package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository"
)

const keyPrefix = "servicecontrol:phase:"

// PhaseRepository is a read-through Redis cache in front of a phase store.
// Only found phases are cached; misses and Redis failures always go to the
// underlying repository.
type PhaseRepository struct {
	next   repository.PhaseRepository
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewPhaseRepository wraps next with a Redis cache
func NewPhaseRepository(next repository.PhaseRepository, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *PhaseRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &PhaseRepository{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		logger: logger,
	}
}

type cachedPhase struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func codeKey(code domain.PhaseCode) string { return keyPrefix + "code:" + string(code) }
func idKey(id uuid.UUID) string           { return keyPrefix + "id:" + id.String() }

func (c *PhaseRepository) GetByCode(ctx context.Context, code domain.PhaseCode) (*domain.Phase, error) {
	if phase := c.get(ctx, codeKey(code)); phase != nil {
		return phase, nil
	}
	phase, err := c.next.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	c.set(ctx, phase)
	return phase, nil
}

func (c *PhaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Phase, error) {
	if phase := c.get(ctx, idKey(id)); phase != nil {
		return phase, nil
	}
	phase, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, phase)
	return phase, nil
}

func (c *PhaseRepository) CreateIfAbsent(ctx context.Context, phase *domain.Phase) (*domain.Phase, error) {
	stored, err := c.next.CreateIfAbsent(ctx, phase)
	if err != nil {
		return nil, err
	}
	c.set(ctx, stored)
	return stored, nil
}

// List is not cached; it is only used by admin views.
func (c *PhaseRepository) List(ctx context.Context) ([]*domain.Phase, error) {
	return c.next.List(ctx)
}

// Invalidate drops the cached entries for a phase
func (c *PhaseRepository) Invalidate(ctx context.Context, phase *domain.Phase) {
	if err := c.redis.Del(ctx, codeKey(phase.Code), idKey(phase.ID)).Err(); err != nil {
		c.logger.Warn("Failed to invalidate cached phase", zap.String("code", string(phase.Code)), zap.Error(err))
	}
}

func (c *PhaseRepository) get(ctx context.Context, key string) *domain.Phase {
	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
	case errors.Is(err, redis.Nil):
		return nil
	default:
		c.logger.Warn("Redis error (continuing with store)", zap.String("key", key), zap.Error(err))
		return nil
	}

	var cp cachedPhase
	if err := json.Unmarshal(data, &cp); err != nil {
		c.logger.Warn("Failed to unmarshal cached phase (continuing with store)", zap.String("key", key), zap.Error(err))
		return nil
	}
	return &domain.Phase{
		ID:        cp.ID,
		Code:      domain.PhaseCode(cp.Code),
		Name:      cp.Name,
		CreatedBy: cp.CreatedBy,
		CreatedAt: cp.CreatedAt,
	}
}

func (c *PhaseRepository) set(ctx context.Context, phase *domain.Phase) {
	data, err := json.Marshal(cachedPhase{
		ID:        phase.ID,
		Code:      string(phase.Code),
		Name:      phase.Name,
		CreatedBy: phase.CreatedBy,
		CreatedAt: phase.CreatedAt,
	})
	if err != nil {
		c.logger.Warn("Failed to marshal phase", zap.Error(err))
		return
	}

	pipe := c.redis.TxPipeline()
	pipe.Set(ctx, codeKey(phase.Code), data, c.ttl)
	pipe.Set(ctx, idKey(phase.ID), data, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("Failed to cache phase", zap.String("code", string(phase.Code)), zap.Error(fmt.Errorf("redis: %w", err)))
	}
}
