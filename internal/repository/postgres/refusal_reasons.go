package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

type refusalReasonRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRefusalReasonRepository creates a new refusal reason repository
func NewRefusalReasonRepository(db *sql.DB, logger *zap.Logger) *refusalReasonRepository {
	return &refusalReasonRepository{
		db:     db,
		logger: logger,
	}
}

func (r *refusalReasonRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RefusalReason, error) {
	query := `
		SELECT id, name, created_at
		FROM refusal_reasons
		WHERE id = $1
	`

	var reason domain.RefusalReason
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reason.ID,
		&reason.Name,
		&reason.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "refusal_reason", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get refusal reason", zap.Error(err))
		return nil, err
	}

	return &reason, nil
}

func (r *refusalReasonRepository) List(ctx context.Context) ([]*domain.RefusalReason, error) {
	query := `
		SELECT id, name, created_at
		FROM refusal_reasons
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list refusal reasons", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var reasons []*domain.RefusalReason
	for rows.Next() {
		var reason domain.RefusalReason
		if err := rows.Scan(&reason.ID, &reason.Name, &reason.CreatedAt); err != nil {
			return nil, err
		}
		reasons = append(reasons, &reason)
	}

	return reasons, rows.Err()
}
