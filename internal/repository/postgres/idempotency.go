package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

type idempotencyKeyRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewIdempotencyKeyRepository creates the intake idempotency store.
// A missing key is reported as nil, nil.
func NewIdempotencyKeyRepository(db *sql.DB, logger *zap.Logger) *idempotencyKeyRepository {
	return &idempotencyKeyRepository{db: db, logger: logger}
}

func (r *idempotencyKeyRepository) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT key, actor_id, service_order_id, request_hash, created_at
		FROM idempotency_keys
		WHERE key = $1
	`, key)

	var k domain.IdempotencyKey
	err := row.Scan(&k.Key, &k.ActorID, &k.OrderID, &k.RequestHash, &k.CreatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to load idempotency key", zap.Error(err))
		return nil, err
	}
	return &k, nil
}

// Create stores the key. A key that already exists, even for the same
// order, is a conflict; the first writer wins.
func (r *idempotencyKeyRepository) Create(ctx context.Context, key *domain.IdempotencyKey) error {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO idempotency_keys (key, actor_id, service_order_id, request_hash)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO NOTHING
		RETURNING created_at
	`, key.Key, key.ActorID, key.OrderID, key.RequestHash)

	err := row.Scan(&key.CreatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return &errors.ErrConflict{Message: "idempotency key already exists"}
	}
	if err != nil {
		r.logger.Error("Failed to store idempotency key",
			zap.String("service_order_id", key.OrderID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
