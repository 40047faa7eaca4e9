package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

type phaseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPhaseRepository creates a new phase repository
func NewPhaseRepository(db *sql.DB, logger *zap.Logger) *phaseRepository {
	return &phaseRepository{
		db:     db,
		logger: logger,
	}
}

func (r *phaseRepository) GetByCode(ctx context.Context, code domain.PhaseCode) (*domain.Phase, error) {
	query := `
		SELECT id, code, name, created_by, created_at
		FROM service_order_phases
		WHERE code = $1
	`

	phase, err := scanPhase(r.db.QueryRowContext(ctx, query, code))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "phase", ID: string(code)}
	}
	if err != nil {
		r.logger.Error("Failed to get phase by code", zap.String("code", string(code)), zap.Error(err))
		return nil, err
	}

	return phase, nil
}

func (r *phaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Phase, error) {
	query := `
		SELECT id, code, name, created_by, created_at
		FROM service_order_phases
		WHERE id = $1
	`

	phase, err := scanPhase(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "phase", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get phase by ID", zap.Error(err))
		return nil, err
	}

	return phase, nil
}

// CreateIfAbsent relies on the unique code constraint: a concurrent insert of
// the same code is swallowed by ON CONFLICT and the winner's row is read back.
func (r *phaseRepository) CreateIfAbsent(ctx context.Context, phase *domain.Phase) (*domain.Phase, error) {
	query := `
		INSERT INTO service_order_phases (id, code, name, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO NOTHING
	`

	if phase.ID == uuid.Nil {
		phase.ID = uuid.New()
	}
	if phase.CreatedAt.IsZero() {
		phase.CreatedAt = time.Now()
	}
	if phase.Name == "" {
		phase.Name = phase.Code.DisplayName()
	}

	_, err := r.db.ExecContext(ctx, query,
		phase.ID,
		phase.Code,
		phase.Name,
		phase.CreatedBy,
		phase.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create phase", zap.String("code", string(phase.Code)), zap.Error(err))
		return nil, err
	}

	return r.GetByCode(ctx, phase.Code)
}

func (r *phaseRepository) List(ctx context.Context) ([]*domain.Phase, error) {
	query := `
		SELECT id, code, name, created_by, created_at
		FROM service_order_phases
		ORDER BY created_at ASC, code ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list phases", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var phases []*domain.Phase
	for rows.Next() {
		phase, err := scanPhase(rows)
		if err != nil {
			return nil, err
		}
		phases = append(phases, phase)
	}

	return phases, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPhase(row rowScanner) (*domain.Phase, error) {
	var phase domain.Phase
	var createdBy uuid.NullUUID

	if err := row.Scan(
		&phase.ID,
		&phase.Code,
		&phase.Name,
		&createdBy,
		&phase.CreatedAt,
	); err != nil {
		return nil, err
	}

	if createdBy.Valid {
		phase.CreatedBy = &createdBy.UUID
	}

	return &phase, nil
}
