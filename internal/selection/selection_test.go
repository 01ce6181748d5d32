package selection

import (
	"testing"

	"github.com/jeffloic/artisan-showroom/internal/cart"
	"github.com/jeffloic/artisan-showroom/internal/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FallsBackToDefaultModel(t *testing.T) {
	cat := catalog.Default()

	assert.Equal(t, catalog.DefaultModelID, New(&mockCart{}, cat, "").Current().ModelID)
	assert.Equal(t, catalog.DefaultModelID, New(&mockCart{}, cat, "throne").Current().ModelID)
	assert.Equal(t, "modern-chair", New(&mockCart{}, cat, "modern-chair").Current().ModelID)
}

func TestNew_DefaultsToWalnut(t *testing.T) {
	cur := New(&mockCart{}, catalog.Default(), "").Current()
	assert.Equal(t, "Walnut", cur.Material)
	assert.Equal(t, "#8B4513", cur.Color)
	assert.Equal(t, 0, cur.MaterialIndex)
}

func TestSelectMaterial_SetsMaterialAndColorTogether(t *testing.T) {
	c := New(&mockCart{}, catalog.Default(), "")

	cur, err := c.SelectMaterial(1)
	require.NoError(t, err)
	assert.Equal(t, "Ebony", cur.Material)
	assert.Equal(t, "#1C1C1C", cur.Color)

	cur, err = c.SelectMaterialByName("birch")
	require.NoError(t, err)
	assert.Equal(t, "Birch", cur.Material)
	assert.Equal(t, "#F5F0E8", cur.Color)
}

func TestSelectMaterial_OutOfRange(t *testing.T) {
	c := New(&mockCart{}, catalog.Default(), "")

	_, err := c.SelectMaterial(3)
	assert.ErrorIs(t, err, ErrUnknownMaterial)
	_, err = c.SelectMaterial(-1)
	assert.ErrorIs(t, err, ErrUnknownMaterial)
	_, err = c.SelectMaterialByName("Oak")
	assert.ErrorIs(t, err, ErrUnknownMaterial)

	assert.Equal(t, "Walnut", c.Current().Material)
}

func TestSelectModel_KeepsMaterial(t *testing.T) {
	c := New(&mockCart{}, catalog.Default(), "")
	_, err := c.SelectMaterial(2)
	require.NoError(t, err)

	cur := c.SelectModel("sofa-chair")
	assert.Equal(t, "sofa-chair", cur.ModelID)
	assert.Equal(t, "Birch", cur.Material)

	cur = c.SelectModel("nope")
	assert.Equal(t, catalog.DefaultModelID, cur.ModelID)
}

func TestAddCurrentSelectionToCart(t *testing.T) {
	mc := &mockCart{}
	c := New(mc, catalog.Default(), "modern-chair")
	_, err := c.SelectMaterial(1)
	require.NoError(t, err)

	candidate, err := c.AddCurrentSelectionToCart()
	require.NoError(t, err)

	require.Len(t, mc.added, 1)
	assert.Equal(t, candidate, mc.added[0])
	assert.Equal(t, "modern-chair", candidate.ID)
	assert.Equal(t, "Custom modern chair", candidate.Name)
	assert.Equal(t, "Ebony", candidate.Material)
	assert.Equal(t, "#1C1C1C", candidate.Color)
	assert.True(t, decimal.NewFromInt(850).Equal(candidate.UnitPrice))
	assert.Equal(t, 1, mc.opened)
}

func TestAddCurrentSelectionToCart_InvalidPrice(t *testing.T) {
	mc := &mockCart{}
	cat := &mockCatalog{products: map[string]catalog.Product{
		catalog.DefaultModelID: {ID: catalog.DefaultModelID, Price: decimal.Zero},
	}}
	c := New(mc, cat, "")

	_, err := c.AddCurrentSelectionToCart()
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.Empty(t, mc.added)
	assert.Zero(t, mc.opened)
}

func TestAddCurrentSelectionToCart_MergesInRealCart(t *testing.T) {
	store := cart.NewStore()
	c := New(store, catalog.Default(), "wooden-clock")

	_, err := c.AddCurrentSelectionToCart()
	require.NoError(t, err)
	_, err = c.AddCurrentSelectionToCart()
	require.NoError(t, err)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, store.IsOpen())
	assert.True(t, decimal.NewFromInt(800).Equal(store.Total()))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Custom puffy chair", DisplayName("puffy-chair"))
	assert.Equal(t, "Custom skameka", DisplayName("skameka"))
}
