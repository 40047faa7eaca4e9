package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

func TestPhaseRegistry_Find(t *testing.T) {
	f := newFixture(t)

	pending, err := f.registry.Find(f.ctx, domain.PhasePending)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, "PENDENTE", pending.Name)

	missing, err := f.registry.Find(f.ctx, domain.PhaseInProduction)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPhaseRegistry_GetOrCreateConverges(t *testing.T) {
	f := newFixture(t)

	const workers = 8
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := f.registry.GetOrCreate(f.ctx, domain.PhaseInProduction, &f.admin.ID)
			if assert.NoError(t, err) {
				ids[i] = p.ID.String()
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}

	phases, err := f.registry.List(f.ctx)
	require.NoError(t, err)
	count := 0
	for _, p := range phases {
		if p.Code == domain.PhaseInProduction {
			count++
			assert.Equal(t, "EM_PRODUCAO", p.Name)
		}
	}
	assert.Equal(t, 1, count)
}

func TestPhaseRegistry_RejectsUnknownCode(t *testing.T) {
	f := newFixture(t)

	_, err := f.registry.GetOrCreate(f.ctx, domain.PhaseCode("SHIPPED"), nil)
	assert.Equal(t, errors.KindValidation, errors.KindOf(err))
}

func TestPhaseRegistry_FindSeesDeletion(t *testing.T) {
	f := newFixture(t)

	refused, err := f.registry.Find(f.ctx, domain.PhaseRefused)
	require.NoError(t, err)
	require.NotNil(t, refused)

	f.store.DeletePhase(domain.PhaseRefused)
	gone, err := f.registry.Find(f.ctx, domain.PhaseRefused)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

// stickyPhases caches every GetByCode hit until Invalidate, like the Redis
// decorator does before its TTL runs out.
type stickyPhases struct {
	repository.PhaseRepository

	mu          sync.Mutex
	hits        map[domain.PhaseCode]*domain.Phase
	invalidated []domain.PhaseCode
}

func newStickyPhases(next repository.PhaseRepository) *stickyPhases {
	return &stickyPhases{PhaseRepository: next, hits: map[domain.PhaseCode]*domain.Phase{}}
}

func (s *stickyPhases) GetByCode(ctx context.Context, code domain.PhaseCode) (*domain.Phase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.hits[code]; ok {
		return p, nil
	}
	p, err := s.PhaseRepository.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	s.hits[code] = p
	return p, nil
}

func (s *stickyPhases) Invalidate(_ context.Context, phase *domain.Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hits, phase.Code)
	s.invalidated = append(s.invalidated, phase.Code)
}

func TestPhaseRegistry_InvalidateReachesCache(t *testing.T) {
	f := newFixture(t)
	sticky := newStickyPhases(f.repos.Phase)
	registry := NewPhaseRegistry(sticky, zap.NewNop())

	refused, err := registry.Find(f.ctx, domain.PhaseRefused)
	require.NoError(t, err)
	require.NotNil(t, refused)
	f.store.DeletePhase(domain.PhaseRefused)

	stale, err := registry.Find(f.ctx, domain.PhaseRefused)
	require.NoError(t, err)
	assert.NotNil(t, stale)

	registry.Invalidate(f.ctx, stale)
	gone, err := registry.Find(f.ctx, domain.PhaseRefused)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.Equal(t, []domain.PhaseCode{domain.PhaseRefused}, sticky.invalidated)
}
