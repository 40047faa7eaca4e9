package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

const orderColumns = `
	o.id, o.renter_id, o.employee_id, o.attendant_id,
	o.order_date, o.event_date, o.fitting_date, o.pickup_date, o.return_date,
	o.production_date, o.payment_due_date,
	o.paid_at, o.retrieved_at, o.returned_at, o.refused_at, o.completed_at,
	o.total_value, o.advance_payment, o.remaining_payment, o.payment_method,
	o.purchase, o.came_from, o.occasion, o.renter_role, o.observations,
	o.phase_id, p.code, o.is_late, o.justification_refusal, o.refusal_reason_id,
	o.created_by, o.updated_by, o.canceled_by, o.created_at, o.updated_at
`

const orderFrom = `
	FROM service_orders o
	LEFT JOIN service_order_phases p ON p.id = o.phase_id
`

type serviceOrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewServiceOrderRepository creates a new service order repository
func NewServiceOrderRepository(db *sql.DB, logger *zap.Logger) *serviceOrderRepository {
	return &serviceOrderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *serviceOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO service_orders (
			id, renter_id, employee_id, attendant_id,
			order_date, event_date, fitting_date, pickup_date, return_date,
			production_date, payment_due_date,
			paid_at, retrieved_at, returned_at, refused_at, completed_at,
			total_value, advance_payment, remaining_payment, payment_method,
			purchase, came_from, occasion, renter_role, observations,
			phase_id, is_late, justification_refusal, refusal_reason_id,
			created_by, updated_by, canceled_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34)
	`

	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.RenterID,
		order.EmployeeID,
		order.AttendantID,
		order.OrderDate,
		order.EventDate,
		order.FittingDate,
		order.PickupDate,
		order.ReturnDate,
		order.ProductionDate,
		order.PaymentDueDate,
		order.PaidAt,
		order.RetrievedAt,
		order.ReturnedAt,
		order.RefusedAt,
		order.CompletedAt,
		order.TotalValue,
		order.AdvancePayment,
		order.RemainingPayment,
		order.PaymentMethod,
		order.Purchase,
		order.CameFrom,
		order.Occasion,
		order.RenterRole,
		order.Observations,
		order.PhaseID,
		order.IsLate,
		order.RefusalJustification,
		order.RefusalReasonID,
		order.CreatedBy,
		order.UpdatedBy,
		order.CanceledBy,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create service order", zap.Error(err))
		return err
	}

	return nil
}

func (r *serviceOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + ` WHERE o.id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "service_order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get service order", zap.String("order_id", id.String()), zap.Error(err))
		return nil, err
	}

	return order, nil
}

// Update writes every mutable column; concurrent writers are last-writer-wins.
func (r *serviceOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	return r.update(ctx, r.db, order)
}

// UpdateWithItems writes the order row and swaps its item list in one
// transaction.
func (r *serviceOrderRepository) UpdateWithItems(ctx context.Context, order *domain.Order, items []*domain.OrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin order update transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	if err := r.update(ctx, tx, order); err != nil {
		return err
	}
	if err := replaceItemsTx(ctx, tx, r.logger, order.ID, items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit order update", zap.String("order_id", order.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (r *serviceOrderRepository) update(ctx context.Context, db execer, order *domain.Order) error {
	query := `
		UPDATE service_orders SET
			employee_id = $2, attendant_id = $3,
			order_date = $4, event_date = $5, fitting_date = $6, pickup_date = $7, return_date = $8,
			production_date = $9, payment_due_date = $10,
			paid_at = $11, retrieved_at = $12, returned_at = $13, refused_at = $14, completed_at = $15,
			total_value = $16, advance_payment = $17, remaining_payment = $18, payment_method = $19,
			purchase = $20, came_from = $21, occasion = $22, renter_role = $23, observations = $24,
			phase_id = $25, is_late = $26, justification_refusal = $27, refusal_reason_id = $28,
			updated_by = $29, canceled_by = $30, updated_at = $31
		WHERE id = $1
	`

	order.UpdatedAt = time.Now()

	result, err := db.ExecContext(ctx, query,
		order.ID,
		order.EmployeeID,
		order.AttendantID,
		order.OrderDate,
		order.EventDate,
		order.FittingDate,
		order.PickupDate,
		order.ReturnDate,
		order.ProductionDate,
		order.PaymentDueDate,
		order.PaidAt,
		order.RetrievedAt,
		order.ReturnedAt,
		order.RefusedAt,
		order.CompletedAt,
		order.TotalValue,
		order.AdvancePayment,
		order.RemainingPayment,
		order.PaymentMethod,
		order.Purchase,
		order.CameFrom,
		order.Occasion,
		order.RenterRole,
		order.Observations,
		order.PhaseID,
		order.IsLate,
		order.RefusalJustification,
		order.RefusalReasonID,
		order.UpdatedBy,
		order.CanceledBy,
		order.UpdatedAt,
	)

	if err != nil {
		if isPhaseForeignKeyViolation(err) {
			return &errors.ErrNotFound{Resource: "phase", ID: order.PhaseID.String()}
		}
		r.logger.Error("Failed to update service order", zap.String("order_id", order.ID.String()), zap.Error(err))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return &errors.ErrNotFound{Resource: "service_order", ID: order.ID.String()}
	}

	return nil
}

// isPhaseForeignKeyViolation reports a phase_id pointing at a deleted phase row
func isPhaseForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if !stderrors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23503" && strings.Contains(pqErr.Constraint, "phase_id")
}

func (r *serviceOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Phase != nil {
		if *filter.Phase == domain.PhaseLate {
			where = append(where, "o.is_late = TRUE AND p.code IS NOT NULL AND p.code NOT IN ("+
				arg(domain.PhaseCompleted)+", "+arg(domain.PhaseRefused)+")")
		} else {
			where = append(where, "p.code = "+arg(*filter.Phase))
		}
	}
	if filter.Late != nil {
		where = append(where, "o.is_late = "+arg(*filter.Late))
	}

	query := `SELECT ` + orderColumns + orderFrom
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY o.order_date DESC, o.created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	return r.queryOrders(ctx, "list service orders", query, args...)
}

func (r *serviceOrderRepository) ListActive(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + `
		WHERE p.code IS NOT NULL AND p.code NOT IN ($1, $2)
		ORDER BY o.created_at ASC
	`
	return r.queryOrders(ctx, "list active service orders", query, domain.PhaseCompleted, domain.PhaseRefused)
}

func (r *serviceOrderRepository) SetLateFlag(ctx context.Context, id uuid.UUID, late bool) error {
	query := `
		UPDATE service_orders
		SET is_late = $2
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, late)
	if err != nil {
		r.logger.Error("Failed to set late flag", zap.String("order_id", id.String()), zap.Error(err))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return &errors.ErrNotFound{Resource: "service_order", ID: id.String()}
	}

	return nil
}

func (r *serviceOrderRepository) queryOrders(ctx context.Context, op, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to "+op, zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var employeeID, attendantID, phaseID, refusalReasonID uuid.NullUUID
	var createdBy, updatedBy, canceledBy uuid.NullUUID
	var fittingDate, pickupDate, returnDate, productionDate, paymentDueDate sql.NullTime
	var paidAt, retrievedAt, returnedAt, refusedAt, completedAt sql.NullTime
	var paymentMethod, cameFrom, renterRole, observations, justification sql.NullString
	var phaseCode sql.NullString

	err := row.Scan(
		&order.ID,
		&order.RenterID,
		&employeeID,
		&attendantID,
		&order.OrderDate,
		&order.EventDate,
		&fittingDate,
		&pickupDate,
		&returnDate,
		&productionDate,
		&paymentDueDate,
		&paidAt,
		&retrievedAt,
		&returnedAt,
		&refusedAt,
		&completedAt,
		&order.TotalValue,
		&order.AdvancePayment,
		&order.RemainingPayment,
		&paymentMethod,
		&order.Purchase,
		&cameFrom,
		&order.Occasion,
		&renterRole,
		&observations,
		&phaseID,
		&phaseCode,
		&order.IsLate,
		&justification,
		&refusalReasonID,
		&createdBy,
		&updatedBy,
		&canceledBy,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.OrderDate = domain.DateOnly(order.OrderDate)
	order.EventDate = domain.DateOnly(order.EventDate)
	order.EmployeeID = uuidPtr(employeeID)
	order.AttendantID = uuidPtr(attendantID)
	order.PhaseID = uuidPtr(phaseID)
	order.RefusalReasonID = uuidPtr(refusalReasonID)
	order.CreatedBy = uuidPtr(createdBy)
	order.UpdatedBy = uuidPtr(updatedBy)
	order.CanceledBy = uuidPtr(canceledBy)
	order.FittingDate = datePtr(fittingDate)
	order.PickupDate = datePtr(pickupDate)
	order.ReturnDate = datePtr(returnDate)
	order.ProductionDate = datePtr(productionDate)
	order.PaymentDueDate = datePtr(paymentDueDate)
	order.PaidAt = timePtr(paidAt)
	order.RetrievedAt = timePtr(retrievedAt)
	order.ReturnedAt = timePtr(returnedAt)
	order.RefusedAt = timePtr(refusedAt)
	order.CompletedAt = timePtr(completedAt)
	order.PaymentMethod = stringPtr(paymentMethod)
	order.CameFrom = stringPtr(cameFrom)
	order.RenterRole = stringPtr(renterRole)
	order.Observations = stringPtr(observations)
	order.RefusalJustification = stringPtr(justification)
	if phaseCode.Valid {
		order.Phase = domain.PhaseCode(phaseCode.String)
	}

	return &order, nil
}

func uuidPtr(v uuid.NullUUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := v.UUID
	return &id
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func datePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	d := domain.DateOnly(v.Time)
	return &d
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
