package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ItemProduct is what an order item rents or sells: either a CatalogItem or
// an AdHocItem. There is no third case.
type ItemProduct interface {
	itemProduct()
}

// CatalogItem references a catalog product
type CatalogItem struct {
	ProductID uuid.UUID
	Product   *Product // loaded for detail views
}

// AdHocItem references a temporary (free-text) product
type AdHocItem struct {
	TemporaryProductID uuid.UUID
	TemporaryProduct   *TemporaryProduct // loaded for detail views
}

func (CatalogItem) itemProduct() {}
func (AdHocItem) itemProduct()   {}

// OrderItem is one rented or sold piece within an order
type OrderItem struct {
	ID                 uuid.UUID
	OrderID            uuid.UUID
	Product            ItemProduct
	ColorCatalogueID   *uuid.UUID
	ColorCombinationID *uuid.UUID
	AdjustmentNeeded   bool
	AdjustmentValue    *int
	AdjustmentNotes    *string
	CreatedBy          *uuid.UUID
	CreatedAt          time.Time
}

// ProductRefs splits the variant into the two nullable storage columns
func (i *OrderItem) ProductRefs() (productID, temporaryProductID *uuid.UUID) {
	switch p := i.Product.(type) {
	case CatalogItem:
		id := p.ProductID
		return &id, nil
	case AdHocItem:
		id := p.TemporaryProductID
		return nil, &id
	default:
		return nil, nil
	}
}

// ItemProductFromRefs rebuilds the variant from the two storage columns.
func ItemProductFromRefs(productID, temporaryProductID *uuid.UUID) (ItemProduct, error) {
	switch {
	case productID != nil && temporaryProductID != nil:
		return nil, fmt.Errorf("order item references both product %s and temporary product %s", productID, temporaryProductID)
	case productID != nil:
		return CatalogItem{ProductID: *productID}, nil
	case temporaryProductID != nil:
		return AdHocItem{TemporaryProductID: *temporaryProductID}, nil
	default:
		return nil, fmt.Errorf("order item references neither a product nor a temporary product")
	}
}
