package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

// SweepResult summarises one lateness sweep
type SweepResult struct {
	Checked int `json:"checked"`
	Flagged int `json:"flagged"`
	Cleared int `json:"cleared"`
}

// AdvancePhases recomputes the late flag of every active order against
// today's date in the shop timezone. Only orders whose flag changes are
// written, so running it twice in a row changes nothing the second time.
// Terminal and phase-less orders are never touched.
func (s *OrderLifecycle) AdvancePhases(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	orders, err := s.repos.ServiceOrder.ListActive(ctx)
	if err != nil {
		return result, errors.Internal("list active orders", err)
	}

	today := s.today()
	for _, order := range orders {
		if !order.IsActive() {
			continue
		}
		result.Checked++

		event, late := order.LateEvent(today)
		if late == order.IsLate {
			continue
		}

		if err := s.repos.ServiceOrder.SetLateFlag(ctx, order.ID, late); err != nil {
			return result, errors.Internal("set late flag", err)
		}
		if late {
			result.Flagged++
		} else {
			result.Cleared++
		}

		data := map[string]interface{}{"is_late": late}
		if late {
			data["event"] = string(event)
		}
		s.recordEvent(ctx, nil, order.ID, domain.OrderEventLateFlagChanged, data)
	}

	if result.Flagged > 0 || result.Cleared > 0 {
		s.logger.Info("Lateness sweep updated orders",
			zap.Int("checked", result.Checked),
			zap.Int("flagged", result.Flagged),
			zap.Int("cleared", result.Cleared),
		)
	}

	return result, nil
}
