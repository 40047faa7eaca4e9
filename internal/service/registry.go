package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

// phaseInvalidator is implemented by phase stores that cache rows
type phaseInvalidator interface {
	Invalidate(ctx context.Context, phase *domain.Phase)
}

// PhaseRegistry resolves phase codes to stored phase rows. Every lookup
// asks the phase store; a caching store may answer from its cache, and a
// write that finds the row gone calls Invalidate.
type PhaseRegistry struct {
	repo   repository.PhaseRepository
	logger *zap.Logger
}

// NewPhaseRegistry creates a registry over the given phase store
func NewPhaseRegistry(repo repository.PhaseRepository, logger *zap.Logger) *PhaseRegistry {
	return &PhaseRegistry{
		repo:   repo,
		logger: logger,
	}
}

// Find returns the configured phase or nil when it does not exist
func (r *PhaseRegistry) Find(ctx context.Context, code domain.PhaseCode) (*domain.Phase, error) {
	p, err := r.repo.GetByCode(ctx, code)
	if errors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Internal("find phase", err)
	}
	return p, nil
}

// GetOrCreate returns the phase, creating it when absent. Concurrent callers
// converge on the same row.
func (r *PhaseRegistry) GetOrCreate(ctx context.Context, code domain.PhaseCode, createdBy *uuid.UUID) (*domain.Phase, error) {
	if !code.IsValid() {
		return nil, &errors.ErrValidation{
			Message: "unknown phase",
			Fields:  map[string]string{"phase": string(code)},
		}
	}

	p, err := r.Find(ctx, code)
	if err != nil || p != nil {
		return p, err
	}

	p, err = r.repo.CreateIfAbsent(ctx, &domain.Phase{
		Code:      code,
		Name:      code.DisplayName(),
		CreatedBy: createdBy,
	})
	if err != nil {
		return nil, errors.Internal("create phase", err)
	}

	r.logger.Info("Phase configured", zap.String("code", string(p.Code)), zap.String("name", p.Name))
	return p, nil
}

// List returns every configured phase
func (r *PhaseRegistry) List(ctx context.Context) ([]*domain.Phase, error) {
	phases, err := r.repo.List(ctx)
	if err != nil {
		return nil, errors.Internal("list phases", err)
	}
	return phases, nil
}

// Invalidate drops a phase row the store no longer holds from any cache in
// front of it
func (r *PhaseRegistry) Invalidate(ctx context.Context, phase *domain.Phase) {
	r.logger.Warn("Dropping stale phase",
		zap.String("code", string(phase.Code)),
		zap.String("phase_id", phase.ID.String()),
	)
	if inv, ok := r.repo.(phaseInvalidator); ok {
		inv.Invalidate(ctx, phase)
	}
}
