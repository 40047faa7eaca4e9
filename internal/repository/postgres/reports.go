package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository"
)

type reportRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewReportRepository creates the dashboard query repository on top of the
// shared pool.
func NewReportRepository(db *sql.DB, logger *zap.Logger) *reportRepository {
	return &reportRepository{
		db:     sqlx.NewDb(db, "postgres"),
		logger: logger,
	}
}

type phaseCountRow struct {
	Phase string `db:"phase"`
	Count int    `db:"count"`
}

func (r *reportRepository) CountByPhase(ctx context.Context) ([]repository.PhaseCount, error) {
	query := `
		SELECT p.code AS phase, COUNT(o.id) AS count
		FROM service_orders o
		JOIN service_order_phases p ON p.id = o.phase_id
		GROUP BY p.code
	`

	var rows []phaseCountRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		r.logger.Error("Failed to count orders by phase", zap.Error(err))
		return nil, err
	}

	counts := make([]repository.PhaseCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, repository.PhaseCount{Phase: domain.PhaseCode(row.Phase), Count: row.Count})
	}
	return counts, nil
}

func (r *reportRepository) CountLate(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM service_orders o
		JOIN service_order_phases p ON p.id = o.phase_id
		WHERE o.is_late = TRUE AND p.code NOT IN ($1, $2)
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, domain.PhaseCompleted, domain.PhaseRefused); err != nil {
		r.logger.Error("Failed to count late orders", zap.Error(err))
		return 0, err
	}
	return count, nil
}

type scheduleRow struct {
	ID          uuid.UUID    `db:"id"`
	Phase       string       `db:"phase"`
	IsLate      bool         `db:"is_late"`
	FittingDate sql.NullTime `db:"fitting_date"`
	PickupDate  sql.NullTime `db:"pickup_date"`
	ReturnDate  sql.NullTime `db:"return_date"`
	RetrievedAt sql.NullTime `db:"retrieved_at"`
	ReturnedAt  sql.NullTime `db:"returned_at"`
}

// ListScheduled loads only the columns the dashboard buckets need.
func (r *reportRepository) ListScheduled(ctx context.Context) ([]*domain.Order, error) {
	query := `
		SELECT o.id, p.code AS phase, o.is_late,
			o.fitting_date, o.pickup_date, o.return_date, o.retrieved_at, o.returned_at
		FROM service_orders o
		JOIN service_order_phases p ON p.id = o.phase_id
		WHERE p.code NOT IN ($1, $2)
			AND (o.fitting_date IS NOT NULL OR o.pickup_date IS NOT NULL OR o.return_date IS NOT NULL)
	`

	var rows []scheduleRow
	if err := r.db.SelectContext(ctx, &rows, query, domain.PhaseCompleted, domain.PhaseRefused); err != nil {
		r.logger.Error("Failed to list scheduled orders", zap.Error(err))
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, &domain.Order{
			ID:          row.ID,
			Phase:       domain.PhaseCode(row.Phase),
			IsLate:      row.IsLate,
			FittingDate: datePtr(row.FittingDate),
			PickupDate:  datePtr(row.PickupDate),
			ReturnDate:  datePtr(row.ReturnDate),
			RetrievedAt: timePtr(row.RetrievedAt),
			ReturnedAt:  timePtr(row.ReturnedAt),
		})
	}
	return orders, nil
}

type financialsRow struct {
	TotalOrdered  float64 `db:"total_ordered"`
	TotalReceived float64 `db:"total_received"`
	OrderCount    int     `db:"order_count"`
}

func (r *reportRepository) Financials(ctx context.Context, from, to time.Time) (repository.Financials, error) {
	query := `
		SELECT COALESCE(SUM(o.total_value), 0)::float8 AS total_ordered,
			COALESCE(SUM(o.advance_payment), 0)::float8 AS total_received,
			COUNT(o.id) AS order_count
		FROM service_orders o
		LEFT JOIN service_order_phases p ON p.id = o.phase_id
		WHERE o.order_date BETWEEN $1::date AND $2::date
			AND (p.code IS NULL OR p.code <> $3)
	`

	var row financialsRow
	if err := r.db.GetContext(ctx, &row, query,
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
		domain.PhaseRefused,
	); err != nil {
		r.logger.Error("Failed to compute financials", zap.Error(err))
		return repository.Financials{}, err
	}

	return repository.Financials(row), nil
}
