package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository/memory"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

// unreachableRedis points at a closed port so every command fails fast.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestPhaseRepository_FallsBackWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.SeedDefaults()
	repos := store.Repositories()

	cached := NewPhaseRepository(repos.Phase, unreachableRedis(t), time.Minute, zap.NewNop())

	phase, err := cached.GetByCode(ctx, domain.PhasePending)
	require.NoError(t, err)
	assert.Equal(t, domain.PhasePending, phase.Code)

	byID, err := cached.GetByID(ctx, phase.ID)
	require.NoError(t, err)
	assert.Equal(t, phase.ID, byID.ID)

	created, err := cached.CreateIfAbsent(ctx, &domain.Phase{Code: domain.PhaseInProduction})
	require.NoError(t, err)
	assert.Equal(t, "EM_PRODUCAO", created.Name)
}

func TestPhaseRepository_MissIsNotCached(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	cached := NewPhaseRepository(store.Repositories().Phase, unreachableRedis(t), time.Minute, zap.NewNop())

	_, err := cached.GetByCode(ctx, domain.PhaseAwaitingPayment)
	assert.True(t, errors.IsNotFound(err))

	_, err = store.Repositories().Phase.CreateIfAbsent(ctx, &domain.Phase{Code: domain.PhaseAwaitingPayment})
	require.NoError(t, err)

	phase, err := cached.GetByCode(ctx, domain.PhaseAwaitingPayment)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAwaitingPayment, phase.Code)
}
