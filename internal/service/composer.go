package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/internal/repository"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

// ItemSpec describes one requested piece. ProductID selects a catalog
// product; otherwise TemporaryProduct describes an ad-hoc garment.
type ItemSpec struct {
	ProductID        *uuid.UUID `json:"product_id,omitempty"`
	TemporaryProduct *AdHocSpec `json:"temporary_product,omitempty"`
	ColorCatalogueID *uuid.UUID `json:"color_catalogue_id,omitempty"`
	ColorIntensityID *uuid.UUID `json:"color_intensity_id,omitempty"`
	AdjustmentNeeded bool       `json:"adjustment_needed"`
	AdjustmentValue  *int       `json:"adjustment_value,omitempty" validate:"omitempty,gte=0"`
	AdjustmentNotes  *string    `json:"adjustment_notes,omitempty" validate:"omitempty,max=255"`
}

// AdHocSpec is the free-text description of a garment not in the catalog
type AdHocSpec struct {
	ProductType  string `json:"product_type" validate:"required,max=20"`
	Size         string `json:"size" validate:"max=10"`
	SleeveLength string `json:"sleeve_length" validate:"max=10"`
	LegLength    string `json:"leg_length" validate:"max=10"`
	WaistSize    string `json:"waist_size" validate:"max=10"`
	CollarSize   string `json:"collar_size" validate:"max=10"`
	Color        string `json:"color" validate:"max=50"`
	Brand        string `json:"brand" validate:"max=100"`
	Fabric       string `json:"fabric" validate:"max=100"`
	Description  string `json:"description" validate:"max=255"`
}

func (a AdHocSpec) normalized() AdHocSpec {
	return AdHocSpec{
		ProductType:  strings.TrimSpace(a.ProductType),
		Size:         strings.TrimSpace(a.Size),
		SleeveLength: strings.TrimSpace(a.SleeveLength),
		LegLength:    strings.TrimSpace(a.LegLength),
		WaistSize:    strings.TrimSpace(a.WaistSize),
		CollarSize:   strings.TrimSpace(a.CollarSize),
		Color:        strings.TrimSpace(a.Color),
		Brand:        strings.TrimSpace(a.Brand),
		Fabric:       strings.TrimSpace(a.Fabric),
		Description:  strings.TrimSpace(a.Description),
	}
}

// specKey is the full descriptive + adjustment tuple used to drop duplicates
type specKey struct {
	productID        uuid.UUID
	adHoc            AdHocSpec
	colorCatalogueID uuid.UUID
	colorIntensityID uuid.UUID
	adjustmentNeeded bool
	adjustmentValue  string
	adjustmentNotes  string
}

func (s ItemSpec) key() specKey {
	k := specKey{adjustmentNeeded: s.AdjustmentNeeded, adjustmentValue: "-", adjustmentNotes: "\x00"}
	if s.ProductID != nil {
		k.productID = *s.ProductID
	} else if s.TemporaryProduct != nil {
		k.adHoc = s.TemporaryProduct.normalized()
	}
	if s.ColorCatalogueID != nil {
		k.colorCatalogueID = *s.ColorCatalogueID
	}
	if s.ColorIntensityID != nil {
		k.colorIntensityID = *s.ColorIntensityID
	}
	if s.AdjustmentValue != nil {
		k.adjustmentValue = strconv.Itoa(*s.AdjustmentValue)
	}
	if s.AdjustmentNotes != nil {
		k.adjustmentNotes = *s.AdjustmentNotes
	}
	return k
}

// ItemComposer turns item specs into order items
type ItemComposer struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewItemComposer creates a new item composer
func NewItemComposer(repos *repository.Repositories, logger *zap.Logger) *ItemComposer {
	return &ItemComposer{
		repos:  repos,
		logger: logger,
	}
}

// Compose resolves every spec. Exact duplicates are skipped. The first
// invalid spec or unknown catalog product aborts the whole composition, and
// catalog references are checked before any ad-hoc product is written.
func (c *ItemComposer) Compose(ctx context.Context, actor *domain.Actor, specs []ItemSpec) ([]*domain.OrderItem, error) {
	seen := make(map[specKey]bool, len(specs))
	unique := make([]ItemSpec, 0, len(specs))
	for i, spec := range specs {
		if err := validateItemSpec(i, spec); err != nil {
			return nil, err
		}
		k := spec.key()
		if seen[k] {
			c.logger.Debug("Skipping duplicate item spec", zap.Int("index", i))
			continue
		}
		seen[k] = true
		unique = append(unique, spec)
	}

	products := make(map[uuid.UUID]*domain.Product)
	for _, spec := range unique {
		if spec.ProductID == nil {
			continue
		}
		if _, ok := products[*spec.ProductID]; ok {
			continue
		}
		product, err := c.repos.Catalog.GetProduct(ctx, *spec.ProductID)
		if err != nil {
			return nil, errors.Internal("get product", err)
		}
		products[product.ID] = product
	}

	var createdBy *uuid.UUID
	if actor != nil {
		id := actor.ID
		createdBy = &id
	}

	items := make([]*domain.OrderItem, 0, len(unique))
	for _, spec := range unique {
		item := &domain.OrderItem{
			ColorCatalogueID: spec.ColorCatalogueID,
			AdjustmentNeeded: spec.AdjustmentNeeded,
			AdjustmentValue:  spec.AdjustmentValue,
			AdjustmentNotes:  spec.AdjustmentNotes,
			CreatedBy:        createdBy,
		}

		if spec.ProductID != nil {
			product := products[*spec.ProductID]
			item.Product = domain.CatalogItem{ProductID: product.ID, Product: product}
		} else {
			adHoc := spec.TemporaryProduct.normalized()
			tp, err := c.repos.TemporaryProduct.FindOrCreate(ctx, &domain.TemporaryProduct{
				ProductType:  adHoc.ProductType,
				Size:         adHoc.Size,
				SleeveLength: adHoc.SleeveLength,
				LegLength:    adHoc.LegLength,
				WaistSize:    adHoc.WaistSize,
				CollarSize:   adHoc.CollarSize,
				Color:        adHoc.Color,
				Brand:        adHoc.Brand,
				Fabric:       adHoc.Fabric,
				Description:  adHoc.Description,
				CreatedBy:    createdBy,
			})
			if err != nil {
				return nil, errors.Internal("find or create temporary product", err)
			}
			item.Product = domain.AdHocItem{TemporaryProductID: tp.ID, TemporaryProduct: tp}
		}

		// lookup only: a missing pairing leaves the item without a combination
		if spec.ColorCatalogueID != nil && spec.ColorIntensityID != nil {
			combination, err := c.repos.Catalog.FindColorCombination(ctx, *spec.ColorCatalogueID, *spec.ColorIntensityID)
			if err != nil {
				return nil, errors.Internal("find color combination", err)
			}
			if combination != nil {
				id := combination.ID
				item.ColorCombinationID = &id
			}
		}

		items = append(items, item)
	}

	return items, nil
}

func validateItemSpec(i int, spec ItemSpec) error {
	field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }

	switch {
	case spec.ProductID != nil && spec.TemporaryProduct != nil:
		return &errors.ErrValidation{
			Message: "item must reference either a product or a temporary product, not both",
			Fields:  map[string]string{field("product_id"): "conflicts with temporary_product"},
		}
	case spec.ProductID == nil && spec.TemporaryProduct == nil:
		return &errors.ErrValidation{
			Message: "item must reference a product or describe a temporary product",
			Fields:  map[string]string{field("product_id"): "required"},
		}
	case spec.ProductID != nil && *spec.ProductID == uuid.Nil:
		return &errors.ErrValidation{
			Message: "invalid product id",
			Fields:  map[string]string{field("product_id"): "required"},
		}
	}

	if err := validateStruct(spec); err != nil {
		return prefixFields(err, fmt.Sprintf("items[%d]", i))
	}
	if spec.TemporaryProduct != nil {
		normalized := spec.TemporaryProduct.normalized()
		if err := validateStruct(normalized); err != nil {
			return prefixFields(err, fmt.Sprintf("items[%d].temporary_product", i))
		}
	}
	return nil
}

func prefixFields(err error, prefix string) error {
	v, ok := err.(*errors.ErrValidation)
	if !ok {
		return err
	}
	fields := make(map[string]string, len(v.Fields))
	for k, msg := range v.Fields {
		fields[prefix+"."+k] = msg
	}
	return &errors.ErrValidation{Message: v.Message, Fields: fields}
}
