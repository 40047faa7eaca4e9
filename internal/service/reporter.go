package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

// Period is the money summary of one calendar period
type Period struct {
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	TotalOrdered  float64   `json:"total_ordered"`
	TotalReceived float64   `json:"total_received"`
	OrderCount    int       `json:"order_count"`
}

// FinancialSummary groups the day, week and month periods containing today
type FinancialSummary struct {
	Day   Period `json:"day"`
	Week  Period `json:"week"`
	Month Period `json:"month"`
}

// Metrics is the dashboard payload
type Metrics struct {
	Today      time.Time                `json:"today"`
	Phases     map[domain.PhaseCode]int `json:"phases"`
	Overdue    map[domain.EventType]int `json:"overdue"`
	DueToday   map[domain.EventType]int `json:"due_today"`
	Upcoming   map[domain.EventType]int `json:"upcoming"`
	UpcomingTo time.Time                `json:"upcoming_to"`
	Financials FinancialSummary         `json:"financials"`
	Sweep      SweepResult              `json:"sweep"`
}

// Reporter computes dashboard metrics
type Reporter struct {
	repos     *repository.Repositories
	lifecycle *OrderLifecycle
	logger    *zap.Logger
	settings
}

// NewReporter creates a reporter. The lifecycle engine supplies the sweep
// that runs before every computation.
func NewReporter(repos *repository.Repositories, lifecycle *OrderLifecycle, logger *zap.Logger, opts ...Option) *Reporter {
	return &Reporter{
		repos:     repos,
		lifecycle: lifecycle,
		logger:    logger,
		settings:  newSettings(opts),
	}
}

// ComputeMetrics sweeps lateness, then counts orders per phase and groups
// scheduled dates into overdue, today and upcoming buckets.
func (r *Reporter) ComputeMetrics(ctx context.Context, actor *domain.Actor) (*Metrics, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	sweep, err := r.lifecycle.AdvancePhases(ctx)
	if err != nil {
		return nil, err
	}

	today := r.today()
	horizon := today.AddDate(0, 0, r.upcomingDays)
	m := &Metrics{
		Today:      today,
		Phases:     make(map[domain.PhaseCode]int, len(domain.AllPhaseCodes)),
		Overdue:    newEventCounts(),
		DueToday:   newEventCounts(),
		Upcoming:   newEventCounts(),
		UpcomingTo: horizon,
		Sweep:      sweep,
	}

	for _, code := range domain.AllPhaseCodes {
		m.Phases[code] = 0
	}
	counts, err := r.repos.Report.CountByPhase(ctx)
	if err != nil {
		return nil, errors.Internal("count orders by phase", err)
	}
	for _, c := range counts {
		if c.Phase.IsValid() && c.Phase != domain.PhaseLate {
			m.Phases[c.Phase] = c.Count
		}
	}
	if m.Phases[domain.PhaseLate], err = r.repos.Report.CountLate(ctx); err != nil {
		return nil, errors.Internal("count late orders", err)
	}

	scheduled, err := r.repos.Report.ListScheduled(ctx)
	if err != nil {
		return nil, errors.Internal("list scheduled orders", err)
	}
	for _, order := range scheduled {
		if !order.IsActive() {
			continue
		}
		if event, late := order.LateEvent(today); late {
			m.Overdue[event]++
		}
		for _, event := range order.ScheduledOn(today) {
			m.DueToday[event]++
		}
		for _, event := range order.ScheduledBetween(today, horizon) {
			m.Upcoming[event]++
		}
	}

	if m.Financials, err = r.financials(ctx, today); err != nil {
		return nil, err
	}

	return m, nil
}

func (r *Reporter) financials(ctx context.Context, today time.Time) (FinancialSummary, error) {
	// weeks start on Monday
	offset := (int(today.Weekday()) + 6) % 7
	weekStart := today.AddDate(0, 0, -offset)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	var summary FinancialSummary
	for _, p := range []struct {
		dst      *Period
		from, to time.Time
	}{
		{&summary.Day, today, today},
		{&summary.Week, weekStart, weekStart.AddDate(0, 0, 6)},
		{&summary.Month, monthStart, monthStart.AddDate(0, 1, -1)},
	} {
		f, err := r.repos.Report.Financials(ctx, p.from, p.to)
		if err != nil {
			return summary, errors.Internal("compute financials", err)
		}
		*p.dst = Period{
			From:          p.from,
			To:            p.to,
			TotalOrdered:  f.TotalOrdered,
			TotalReceived: f.TotalReceived,
			OrderCount:    f.OrderCount,
		}
	}
	return summary, nil
}

func newEventCounts() map[domain.EventType]int {
	return map[domain.EventType]int{
		domain.EventFitting: 0,
		domain.EventPickup:  0,
		domain.EventReturn:  0,
	}
}
