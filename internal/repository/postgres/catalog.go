package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

type catalogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *sql.DB, logger *zap.Logger) *catalogRepository {
	return &catalogRepository{
		db:     db,
		logger: logger,
	}
}

func (r *catalogRepository) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, label_code, description, on_stock
		FROM products
		WHERE id = $1
	`

	var product domain.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.LabelCode,
		&product.Description,
		&product.OnStock,
	)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get product", zap.Error(err))
		return nil, err
	}

	return &product, nil
}

func (r *catalogRepository) FindColorCombination(ctx context.Context, catalogueID, intensityID uuid.UUID) (*domain.ColorCombination, error) {
	query := `
		SELECT c.id, c.color_catalogue_id, c.color_intensity_id,
			cc.description || ' ' || ci.description
		FROM colors c
		JOIN color_catalogue cc ON cc.id = c.color_catalogue_id
		JOIN color_intensity ci ON ci.id = c.color_intensity_id
		WHERE c.color_catalogue_id = $1 AND c.color_intensity_id = $2
	`

	var combination domain.ColorCombination
	err := r.db.QueryRowContext(ctx, query, catalogueID, intensityID).Scan(
		&combination.ID,
		&combination.ColorCatalogueID,
		&combination.ColorIntensityID,
		&combination.Description,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to find color combination", zap.Error(err))
		return nil, err
	}

	return &combination, nil
}
