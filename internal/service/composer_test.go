package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roupadegala/servicecontrol/internal/domain"
	"github.com/roupadegala/servicecontrol/pkg/errors"
)

func suit() *AdHocSpec {
	return &AdHocSpec{ProductType: "TERNO", Size: "48", Color: "Preto", Fabric: "Lã fria"}
}

func TestCompose_DeduplicatesAdHoc(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, nil)

	padded := suit()
	padded.ProductType = "  TERNO "

	items := []ItemSpec{{TemporaryProduct: suit()}, {TemporaryProduct: padded}}
	updated, err := f.lifecycle.Update(f.ctx, f.attendant, order.ID, OrderPatch{Items: &items})
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	adHoc, ok := updated.Items[0].Product.(domain.AdHocItem)
	require.True(t, ok)
	require.NotNil(t, adHoc.TemporaryProduct)
	assert.Equal(t, "TERNO", adHoc.TemporaryProduct.ProductType)
	assert.Equal(t, 1, f.store.CountTemporaryProducts())

	// the same description on another order reuses the stored row
	other := f.createOrder(t, nil)
	_, err = f.lifecycle.Update(f.ctx, f.attendant, other.ID, OrderPatch{Items: &items})
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.CountTemporaryProducts())
}

func TestCompose_DifferentAdjustmentsAreDistinct(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, nil)

	two := 2
	items := []ItemSpec{
		{TemporaryProduct: suit()},
		{TemporaryProduct: suit(), AdjustmentNeeded: true, AdjustmentValue: &two},
	}
	updated, err := f.lifecycle.Update(f.ctx, f.attendant, order.ID, OrderPatch{Items: &items})
	require.NoError(t, err)

	assert.Len(t, updated.Items, 2)
	assert.Equal(t, 1, f.store.CountTemporaryProducts())
}

func TestCompose_UnknownProductAbortsUpdate(t *testing.T) {
	f := newFixture(t)
	dress := f.store.AddProduct(&domain.Product{LabelCode: "VST-001", Description: "Vestido longo", OnStock: true})
	order := f.createOrder(t, func(r *IntakeRequest) {
		r.Items = []ItemSpec{{ProductID: &dress.ID}}
	})
	require.Len(t, order.Items, 1)

	missing := uuid.New()
	items := []ItemSpec{{TemporaryProduct: suit()}, {ProductID: &missing}}
	_, err := f.lifecycle.Update(f.ctx, f.attendant, order.ID, OrderPatch{Items: &items})
	assert.True(t, errors.IsNotFound(err))

	assert.Equal(t, 0, f.store.CountTemporaryProducts())
	stored, err := f.repos.ServiceOrderItem.GetByOrderID(f.ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	catalog, ok := stored[0].Product.(domain.CatalogItem)
	require.True(t, ok)
	assert.Equal(t, dress.ID, catalog.ProductID)
}

func TestCompose_InvalidSpecs(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, nil)
	id := uuid.New()

	cases := []struct {
		name  string
		spec  ItemSpec
		field string
	}{
		{"both references", ItemSpec{ProductID: &id, TemporaryProduct: suit()}, "items[0].product_id"},
		{"no reference", ItemSpec{}, "items[0].product_id"},
		{"blank product type", ItemSpec{TemporaryProduct: &AdHocSpec{ProductType: "   "}}, "items[0].temporary_product.product_type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items := []ItemSpec{tc.spec}
			_, err := f.lifecycle.Update(f.ctx, f.attendant, order.ID, OrderPatch{Items: &items})
			var v *errors.ErrValidation
			require.ErrorAs(t, err, &v)
			assert.Contains(t, v.Fields, tc.field)
		})
	}
}

func TestCompose_ColorCombinationLookup(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, nil)

	catalogue, intensity := uuid.New(), uuid.New()
	combo := f.store.AddColorCombination(&domain.ColorCombination{
		ColorCatalogueID: catalogue,
		ColorIntensityID: intensity,
		Description:      "AZUL MARINHO",
	})
	unknownIntensity := uuid.New()

	items := []ItemSpec{
		{TemporaryProduct: suit(), ColorCatalogueID: &catalogue, ColorIntensityID: &intensity},
		{TemporaryProduct: suit(), ColorCatalogueID: &catalogue, ColorIntensityID: &unknownIntensity},
	}
	updated, err := f.lifecycle.Update(f.ctx, f.attendant, order.ID, OrderPatch{Items: &items})
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)

	var found, missing int
	for _, item := range updated.Items {
		require.NotNil(t, item.ColorCatalogueID)
		assert.Equal(t, catalogue, *item.ColorCatalogueID)
		if item.ColorCombinationID != nil {
			assert.Equal(t, combo.ID, *item.ColorCombinationID)
			found++
		} else {
			missing++
		}
	}
	assert.Equal(t, 1, found)
	assert.Equal(t, 1, missing)
}

func TestCompose_EmptyListClearsItems(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, func(r *IntakeRequest) {
		r.Items = []ItemSpec{{TemporaryProduct: suit()}}
	})
	require.Len(t, order.Items, 1)

	empty := []ItemSpec{}
	updated, err := f.lifecycle.Update(f.ctx, f.attendant, order.ID, OrderPatch{Items: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.Items)
}

func TestCompose_ExactlyOneReference(t *testing.T) {
	f := newFixture(t)
	dress := f.store.AddProduct(&domain.Product{LabelCode: "VST-002", Description: "Vestido curto"})
	order := f.createOrder(t, func(r *IntakeRequest) {
		r.Items = []ItemSpec{{ProductID: &dress.ID}, {TemporaryProduct: suit()}}
	})

	stored, err := f.repos.ServiceOrderItem.GetByOrderID(f.ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, item := range stored {
		productID, temporaryID := item.ProductRefs()
		assert.True(t, (productID == nil) != (temporaryID == nil))
		require.NotNil(t, item.CreatedBy)
		assert.Equal(t, f.attendant.ID, *item.CreatedBy)
	}
}
