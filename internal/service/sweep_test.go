package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roupadegala/servicecontrol/internal/domain"
)

func TestAdvancePhases_FlagsAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, func(r *IntakeRequest) { r.Order.ReturnDate = f.day(1) })
	require.False(t, order.IsLate)

	f.now = f.now.AddDate(0, 0, 3)

	first, err := f.lifecycle.AdvancePhases(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Checked: 1, Flagged: 1}, first)
	assert.True(t, f.reload(t, order.ID).IsLate)
	assert.Equal(t, domain.PhasePending, f.reload(t, order.ID).Phase)

	second, err := f.lifecycle.AdvancePhases(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Checked: 1}, second)

	events, err := f.lifecycle.Events(f.ctx, f.admin, order.ID)
	require.NoError(t, err)
	var flagged []*domain.OrderEvent
	for _, e := range events {
		if e.EventType == domain.OrderEventLateFlagChanged {
			flagged = append(flagged, e)
		}
	}
	require.Len(t, flagged, 1)
	assert.Nil(t, flagged[0].ActorID)
	assert.Equal(t, "return", flagged[0].EventData["event"])
}

func TestAdvancePhases_ClearsWhenRescheduled(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, func(r *IntakeRequest) { r.Order.PickupDate = f.day(-1) })
	require.True(t, order.IsLate)

	_, err := f.lifecycle.Update(f.ctx, f.attendant, order.ID, OrderPatch{PickupDate: f.day(4)})
	require.NoError(t, err)

	result, err := f.lifecycle.AdvancePhases(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Cleared)
	assert.False(t, f.reload(t, order.ID).IsLate)
}

func TestAdvancePhases_SkipsTerminalAndPhaseless(t *testing.T) {
	f := newFixture(t)

	refused := f.createOrder(t, func(r *IntakeRequest) { r.Order.ReturnDate = f.day(1) })
	_, err := f.lifecycle.Refuse(f.ctx, f.admin, refused.ID, RefuseRequest{Justification: "desistência"})
	require.NoError(t, err)

	orphan := f.createOrder(t, func(r *IntakeRequest) { r.Order.ReturnDate = f.day(1) })
	f.store.DeletePhase(domain.PhasePending)

	f.now = f.now.AddDate(0, 0, 5)
	result, err := f.lifecycle.AdvancePhases(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, result)

	assert.False(t, f.reload(t, refused.ID).IsLate)
	assert.False(t, f.reload(t, orphan.ID).IsLate)
}

func TestLateEvent_FittingOnlyWhilePending(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, func(r *IntakeRequest) { r.Order.FittingDate = f.day(-1) })
	require.True(t, order.IsLate)

	accepted, err := f.lifecycle.Accept(f.ctx, f.admin, order.ID)
	require.NoError(t, err)
	assert.False(t, accepted.IsLate)
}
