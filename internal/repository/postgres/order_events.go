package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
)

type orderEventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderEventRepository creates the audit trail store
func NewOrderEventRepository(db *sql.DB, logger *zap.Logger) *orderEventRepository {
	return &orderEventRepository{db: db, logger: logger}
}

func (r *orderEventRepository) Create(ctx context.Context, event *domain.OrderEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	// nil data is stored as SQL NULL, not the JSON literal null
	var data interface{}
	if len(event.EventData) > 0 {
		raw, err := json.Marshal(event.EventData)
		if err != nil {
			return fmt.Errorf("encode %s event data: %w", event.EventType, err)
		}
		data = raw
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO order_events (id, service_order_id, actor_id, event_type, event_data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, event.ID, event.OrderID, event.ActorID, event.EventType, data).Scan(&event.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to record order event",
			zap.String("service_order_id", event.OrderID.String()),
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *orderEventRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, service_order_id, actor_id, event_type, event_data, created_at
		FROM order_events
		WHERE service_order_id = $1
		ORDER BY created_at, id
	`, orderID)
	if err != nil {
		r.logger.Error("Failed to list order events", zap.String("service_order_id", orderID.String()), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.OrderEvent, 0)
	for rows.Next() {
		var (
			e       domain.OrderEvent
			actorID uuid.NullUUID
			raw     []byte
		)
		if err := rows.Scan(&e.ID, &e.OrderID, &actorID, &e.EventType, &raw, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ActorID = uuidPtr(actorID)
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &e.EventData); err != nil {
				return nil, fmt.Errorf("decode event %s data: %w", e.ID, err)
			}
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
