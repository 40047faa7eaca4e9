package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
)

type serviceOrderItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewServiceOrderItemRepository creates a new service order item repository
func NewServiceOrderItemRepository(db *sql.DB, logger *zap.Logger) *serviceOrderItemRepository {
	return &serviceOrderItemRepository{
		db:     db,
		logger: logger,
	}
}

// ReplaceForOrder removes the order's items and inserts the new set in one
// transaction, so a failed insert leaves the previous list in place.
func (r *serviceOrderItemRepository) ReplaceForOrder(ctx context.Context, orderID uuid.UUID, items []*domain.OrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin item replace transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	if err := replaceItemsTx(ctx, tx, r.logger, orderID, items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit item replace", zap.Error(err))
		return err
	}

	return nil
}

func replaceItemsTx(ctx context.Context, tx *sql.Tx, logger *zap.Logger, orderID uuid.UUID, items []*domain.OrderItem) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM service_order_items WHERE service_order_id = $1`, orderID); err != nil {
		logger.Error("Failed to delete service order items", zap.String("order_id", orderID.String()), zap.Error(err))
		return err
	}
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO service_order_items (
			id, service_order_id, product_id, temporary_product_id,
			color_catalogue_id, color_id, adjustment_needed, adjustment_value,
			adjustment_notes, created_by, created_at
		)
		VALUES `

	const cols = 11
	args := make([]interface{}, 0, len(items)*cols)
	now := time.Now()

	for i, item := range items {
		if i > 0 {
			query += ", "
		}
		query += "("
		for c := 1; c <= cols; c++ {
			if c > 1 {
				query += ", "
			}
			query += fmt.Sprintf("$%d", i*cols+c)
		}
		query += ")"

		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		item.OrderID = orderID

		productID, temporaryProductID := item.ProductRefs()
		if productID == nil && temporaryProductID == nil {
			return fmt.Errorf("order item %s has no product", item.ID)
		}

		args = append(args,
			item.ID,
			item.OrderID,
			productID,
			temporaryProductID,
			item.ColorCatalogueID,
			item.ColorCombinationID,
			item.AdjustmentNeeded,
			item.AdjustmentValue,
			item.AdjustmentNotes,
			item.CreatedBy,
			item.CreatedAt,
		)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		logger.Error("Failed to insert service order items", zap.String("order_id", orderID.String()), zap.Error(err))
		return err
	}
	return nil
}

func (r *serviceOrderItemRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error) {
	query := `
		SELECT i.id, i.service_order_id, i.product_id, i.temporary_product_id,
			i.color_catalogue_id, i.color_id, i.adjustment_needed, i.adjustment_value,
			i.adjustment_notes, i.created_by, i.created_at,
			pr.label_code, pr.description, pr.on_stock,
			tp.product_type, tp.size, tp.sleeve_length, tp.leg_length, tp.waist_size,
			tp.collar_size, tp.color, tp.brand, tp.fabric, tp.description
		FROM service_order_items i
		LEFT JOIN products pr ON pr.id = i.product_id
		LEFT JOIN temporary_products tp ON tp.id = i.temporary_product_id
		WHERE i.service_order_id = $1
		ORDER BY i.created_at ASC, i.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to get service order items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []*domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		var productID, temporaryProductID, colorCatalogueID, colorID, createdBy uuid.NullUUID
		var adjustmentValue sql.NullInt64
		var adjustmentNotes sql.NullString
		var labelCode, productDescription sql.NullString
		var onStock sql.NullBool
		var tp [10]sql.NullString

		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&productID,
			&temporaryProductID,
			&colorCatalogueID,
			&colorID,
			&item.AdjustmentNeeded,
			&adjustmentValue,
			&adjustmentNotes,
			&createdBy,
			&item.CreatedAt,
			&labelCode,
			&productDescription,
			&onStock,
			&tp[0], &tp[1], &tp[2], &tp[3], &tp[4], &tp[5], &tp[6], &tp[7], &tp[8], &tp[9],
		)
		if err != nil {
			return nil, err
		}

		product, err := domain.ItemProductFromRefs(uuidPtr(productID), uuidPtr(temporaryProductID))
		if err != nil {
			r.logger.Error("Corrupt service order item", zap.String("item_id", item.ID.String()), zap.Error(err))
			return nil, err
		}
		switch p := product.(type) {
		case domain.CatalogItem:
			p.Product = &domain.Product{
				ID:          p.ProductID,
				LabelCode:   labelCode.String,
				Description: productDescription.String,
				OnStock:     onStock.Bool,
			}
			product = p
		case domain.AdHocItem:
			p.TemporaryProduct = &domain.TemporaryProduct{
				ID:           p.TemporaryProductID,
				ProductType:  tp[0].String,
				Size:         tp[1].String,
				SleeveLength: tp[2].String,
				LegLength:    tp[3].String,
				WaistSize:    tp[4].String,
				CollarSize:   tp[5].String,
				Color:        tp[6].String,
				Brand:        tp[7].String,
				Fabric:       tp[8].String,
				Description:  tp[9].String,
			}
			product = p
		}
		item.Product = product

		item.ColorCatalogueID = uuidPtr(colorCatalogueID)
		item.ColorCombinationID = uuidPtr(colorID)
		item.CreatedBy = uuidPtr(createdBy)
		item.AdjustmentNotes = stringPtr(adjustmentNotes)
		if adjustmentValue.Valid {
			v := int(adjustmentValue.Int64)
			item.AdjustmentValue = &v
		}

		items = append(items, &item)
	}

	return items, rows.Err()
}
