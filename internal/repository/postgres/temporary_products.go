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

const temporaryProductColumns = `
	id, product_type, size, sleeve_length, leg_length, waist_size,
	collar_size, color, brand, fabric, description, created_by, created_at
`

type temporaryProductRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTemporaryProductRepository creates a new temporary product repository
func NewTemporaryProductRepository(db *sql.DB, logger *zap.Logger) *temporaryProductRepository {
	return &temporaryProductRepository{
		db:     db,
		logger: logger,
	}
}

func (r *temporaryProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TemporaryProduct, error) {
	query := `SELECT ` + temporaryProductColumns + ` FROM temporary_products WHERE id = $1`

	product, err := scanTemporaryProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "temporary_product", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get temporary product", zap.Error(err))
		return nil, err
	}

	return product, nil
}

// FindOrCreate inserts against the unique description tuple and reads back
// whichever row holds it.
func (r *temporaryProductRepository) FindOrCreate(ctx context.Context, product *domain.TemporaryProduct) (*domain.TemporaryProduct, error) {
	insert := `
		INSERT INTO temporary_products (` + temporaryProductColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (product_type, size, sleeve_length, leg_length, waist_size,
			collar_size, color, brand, fabric, description) DO NOTHING
	`

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, insert,
		product.ID,
		product.ProductType,
		product.Size,
		product.SleeveLength,
		product.LegLength,
		product.WaistSize,
		product.CollarSize,
		product.Color,
		product.Brand,
		product.Fabric,
		product.Description,
		product.CreatedBy,
		product.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create temporary product", zap.Error(err))
		return nil, err
	}

	query := `SELECT ` + temporaryProductColumns + `
		FROM temporary_products
		WHERE product_type = $1 AND size = $2 AND sleeve_length = $3 AND leg_length = $4
			AND waist_size = $5 AND collar_size = $6 AND color = $7 AND brand = $8
			AND fabric = $9 AND description = $10
	`

	stored, err := scanTemporaryProduct(r.db.QueryRowContext(ctx, query,
		product.ProductType,
		product.Size,
		product.SleeveLength,
		product.LegLength,
		product.WaistSize,
		product.CollarSize,
		product.Color,
		product.Brand,
		product.Fabric,
		product.Description,
	))
	if err != nil {
		r.logger.Error("Failed to read back temporary product", zap.Error(err))
		return nil, err
	}

	return stored, nil
}

func scanTemporaryProduct(row rowScanner) (*domain.TemporaryProduct, error) {
	var product domain.TemporaryProduct
	var createdBy uuid.NullUUID

	if err := row.Scan(
		&product.ID,
		&product.ProductType,
		&product.Size,
		&product.SleeveLength,
		&product.LegLength,
		&product.WaistSize,
		&product.CollarSize,
		&product.Color,
		&product.Brand,
		&product.Fabric,
		&product.Description,
		&createdBy,
		&product.CreatedAt,
	); err != nil {
		return nil, err
	}
	product.CreatedBy = uuidPtr(createdBy)

	return &product, nil
}
