package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

func TestComputeMetrics_Empty(t *testing.T) {
	f := newFixture(t)

	m, err := f.reporter.ComputeMetrics(f.ctx, f.reception)
	require.NoError(t, err)

	assert.Equal(t, f.today(), m.Today)
	assert.Equal(t, f.today().AddDate(0, 0, 10), m.UpcomingTo)
	assert.Len(t, m.Phases, len(domain.AllPhaseCodes))
	for _, code := range domain.AllPhaseCodes {
		assert.Zero(t, m.Phases[code], code)
	}
	for _, bucket := range []map[domain.EventType]int{m.Overdue, m.DueToday, m.Upcoming} {
		assert.Equal(t, map[domain.EventType]int{
			domain.EventFitting: 0,
			domain.EventPickup:  0,
			domain.EventReturn:  0,
		}, bucket)
	}
}

func TestComputeMetrics_ClientDenied(t *testing.T) {
	f := newFixture(t)

	_, err := f.reporter.ComputeMetrics(f.ctx, f.client)
	assert.Equal(t, errors.KindPermissionDenied, errors.KindOf(err))
}

func TestComputeMetrics_Buckets(t *testing.T) {
	f := newFixture(t)

	f.createOrder(t, func(r *IntakeRequest) { r.Order.ReturnDate = f.day(-2) })
	f.createOrder(t, func(r *IntakeRequest) { r.Order.FittingDate = f.day(0) })
	f.createOrder(t, func(r *IntakeRequest) { r.Order.ReturnDate = f.day(10) })
	f.createOrder(t, func(r *IntakeRequest) { r.Order.ReturnDate = f.day(11) })
	f.createOrder(t, func(r *IntakeRequest) { r.Order.PickupDate = f.day(1) })

	m, err := f.reporter.ComputeMetrics(f.ctx, f.admin)
	require.NoError(t, err)

	assert.Equal(t, 5, m.Phases[domain.PhasePending])
	assert.Equal(t, 1, m.Phases[domain.PhaseLate])

	assert.Equal(t, 1, m.Overdue[domain.EventReturn])
	assert.Equal(t, 0, m.Overdue[domain.EventFitting])
	assert.Equal(t, 1, m.DueToday[domain.EventFitting])
	assert.Equal(t, 1, m.Upcoming[domain.EventReturn])
	assert.Equal(t, 1, m.Upcoming[domain.EventPickup])
	assert.Equal(t, 0, m.Upcoming[domain.EventFitting])
}

func TestComputeMetrics_SweepsFirstAndIsStable(t *testing.T) {
	f := newFixture(t)
	f.createOrder(t, func(r *IntakeRequest) { r.Order.ReturnDate = f.day(1) })

	f.now = f.now.AddDate(0, 0, 3)

	first, err := f.reporter.ComputeMetrics(f.ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Sweep.Flagged)
	assert.Equal(t, 1, first.Phases[domain.PhaseLate])
	assert.Equal(t, 1, first.Overdue[domain.EventReturn])

	second, err := f.reporter.ComputeMetrics(f.ctx, f.admin)
	require.NoError(t, err)
	assert.Zero(t, second.Sweep.Flagged)
	assert.Equal(t, first.Phases, second.Phases)
	assert.Equal(t, first.Overdue, second.Overdue)
	assert.Equal(t, first.Upcoming, second.Upcoming)
}

func TestComputeMetrics_Financials(t *testing.T) {
	f := newFixture(t)

	f.createOrder(t, nil) // today: 500 ordered, 100 received
	f.createOrder(t, func(r *IntakeRequest) {
		r.Order.OrderDate = strPtr("2026-03-16") // Monday of this week
		r.Order.TotalValue = 300
		r.Order.AdvancePayment = 300
	})
	f.createOrder(t, func(r *IntakeRequest) {
		r.Order.OrderDate = strPtr("2026-03-02")
		r.Order.TotalValue = 200
		r.Order.AdvancePayment = 50
	})
	f.createOrder(t, func(r *IntakeRequest) {
		r.Order.OrderDate = strPtr("2026-02-27")
		r.Order.TotalValue = 999
	})
	refused := f.createOrder(t, func(r *IntakeRequest) { r.Order.TotalValue = 1000 })
	_, err := f.lifecycle.Refuse(f.ctx, f.admin, refused.ID, RefuseRequest{Justification: "desistiu"})
	require.NoError(t, err)

	m, err := f.reporter.ComputeMetrics(f.ctx, f.admin)
	require.NoError(t, err)

	day := m.Financials.Day
	assert.Equal(t, 1, day.OrderCount)
	assert.Equal(t, 500.0, day.TotalOrdered)
	assert.Equal(t, 100.0, day.TotalReceived)

	week := m.Financials.Week
	assert.Equal(t, f.today().AddDate(0, 0, -2), week.From)
	assert.Equal(t, 2, week.OrderCount)
	assert.Equal(t, 800.0, week.TotalOrdered)
	assert.Equal(t, 400.0, week.TotalReceived)

	month := m.Financials.Month
	assert.Equal(t, 3, month.OrderCount)
	assert.Equal(t, 1000.0, month.TotalOrdered)
	assert.Equal(t, 450.0, month.TotalReceived)
}
