package cart

import (
	"context"
	"fmt"
	"testing"

	"heat/internal/domain/model"
	"heat/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 連番IDでテストを決定的にする
type seqIDs struct{ n int }

func (g *seqIDs) NewID() string {
	g.n++
	return fmt.Sprintf("item-%d", g.n)
}

func arepa(opts ...model.CartItemOption) Candidate {
	return Candidate{
		ProductID:       "p-arepa",
		ProductName:     "Arepa",
		BasePrice:       3000,
		SelectedOptions: opts,
		Category:        model.CategoryArepas,
	}
}

func queso(qty int64) model.CartItemOption {
	return model.CartItemOption{ID: "queso", Name: "Queso", PriceModifier: 500, Quantity: qty}
}

func pollo(qty int64) model.CartItemOption {
	return model.CartItemOption{ID: "pollo", Name: "Pollo", PriceModifier: 1200, Quantity: qty}
}

func TestSignature_OrderIndependent(t *testing.T) {
	a := Signature([]model.CartItemOption{queso(2), pollo(1)})
	b := Signature([]model.CartItemOption{pollo(1), queso(2)})
	assert.Equal(t, a, b)
	assert.Equal(t, "pollo:1|queso:2", a)
}

func TestSignature_ZeroQuantityIgnored(t *testing.T) {
	assert.Equal(t, Signature([]model.CartItemOption{queso(2)}), Signature([]model.CartItemOption{queso(2), pollo(0)}))
}

func TestAddItem_SameConfigurationMerges(t *testing.T) {
	c := New(&seqIDs{})

	first := c.AddItem(arepa(queso(2), pollo(1)))
	second := c.AddItem(arepa(pollo(1), queso(2)))

	require.Len(t, c.Items, 1)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(2), c.Items[0].Quantity)
}

func TestAddItem_DifferentOptionsAreDistinct(t *testing.T) {
	c := New(&seqIDs{})

	c.AddItem(arepa(queso(2)))
	c.AddItem(arepa(queso(1)))
	c.AddItem(arepa())

	require.Len(t, c.Items, 3)
	for _, it := range c.Items {
		assert.Equal(t, int64(1), it.Quantity)
	}
	assert.Equal(t, "item-1", c.Items[0].ID)
	assert.Equal(t, "item-3", c.Items[2].ID)
}

func TestAddItem_DifferentProductSameOptionsAreDistinct(t *testing.T) {
	c := New(&seqIDs{})

	c.AddItem(arepa(queso(1)))
	other := arepa(queso(1))
	other.ProductID = "p-perro"
	c.AddItem(other)

	assert.Len(t, c.Items, 2)
}

func TestAddItem_DropsZeroQuantityOptions(t *testing.T) {
	c := New(&seqIDs{})

	item := c.AddItem(arepa(queso(1), pollo(0)))

	require.Len(t, item.SelectedOptions, 1)
	assert.Equal(t, "queso", item.SelectedOptions[0].ID)
}

func TestDecrement_RemovesAtOne(t *testing.T) {
	c := New(&seqIDs{})
	item := c.AddItem(arepa())
	c.AddItem(arepa())

	assert.True(t, c.Decrement(item.ID))
	assert.Equal(t, int64(1), c.Items[0].Quantity)

	assert.True(t, c.Decrement(item.ID))
	assert.True(t, c.IsEmpty())

	assert.False(t, c.Decrement(item.ID))
}

func TestIncrement(t *testing.T) {
	c := New(&seqIDs{})
	item := c.AddItem(arepa())

	assert.True(t, c.Increment(item.ID))
	assert.True(t, c.Increment(item.ID))
	assert.Equal(t, int64(3), c.ItemCount())
	assert.False(t, c.Increment("missing"))
}

func TestSetQuantity(t *testing.T) {
	c := New(&seqIDs{})
	item := c.AddItem(arepa())

	assert.True(t, c.SetQuantity(item.ID, 5))
	assert.Equal(t, int64(5), c.Items[0].Quantity)

	assert.True(t, c.SetQuantity(item.ID, 0))
	assert.True(t, c.IsEmpty())

	assert.False(t, c.SetQuantity(item.ID, 3))
}

func TestQuantityIsCapped(t *testing.T) {
	c := New(&seqIDs{})
	item := c.AddItem(arepa())

	assert.True(t, c.SetQuantity(item.ID, 1<<62))
	assert.Equal(t, MaxQuantity, c.Items[0].Quantity)

	// 上限では増えない
	assert.True(t, c.Increment(item.ID))
	c.AddItem(arepa())
	assert.Equal(t, MaxQuantity, c.Items[0].Quantity)
	assert.Equal(t, MaxQuantity*3000, c.Subtotal())

	restored := Restore([]model.CartItem{{ID: "x", ProductID: "p-arepa", BasePrice: 3000, Quantity: 1 << 40}}, nil)
	assert.Equal(t, MaxQuantity, restored.Items[0].Quantity)
}

func TestSetQuantity_NegativeRemoves(t *testing.T) {
	c := New(&seqIDs{})
	item := c.AddItem(arepa())

	assert.True(t, c.SetQuantity(item.ID, -2))
	assert.Empty(t, c.Items)
}

func TestRemoveItem_MissingIsNoop(t *testing.T) {
	c := New(&seqIDs{})
	c.AddItem(arepa())

	assert.False(t, c.RemoveItem("nope"))
	assert.Len(t, c.Items, 1)
}

func TestNeverHoldsNonPositiveQuantity(t *testing.T) {
	c := New(&seqIDs{})
	a := c.AddItem(arepa())
	b := c.AddItem(arepa(queso(1)))

	c.Decrement(a.ID)
	c.SetQuantity(b.ID, -1)
	c.AddItem(arepa(pollo(2)))

	for _, it := range c.Items {
		assert.Greater(t, it.Quantity, int64(0))
	}
}

func TestClear_ClosesDrawer(t *testing.T) {
	c := New(&seqIDs{})
	c.AddItem(arepa())
	c.OpenDrawer()
	require.True(t, c.IsDrawerOpen())

	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.False(t, c.IsDrawerOpen())
}

func TestDrawerToggle(t *testing.T) {
	c := New(nil)
	c.ToggleDrawer()
	assert.True(t, c.IsDrawerOpen())
	c.ToggleDrawer()
	assert.False(t, c.IsDrawerOpen())
	c.OpenDrawer()
	c.CloseDrawer()
	assert.False(t, c.IsDrawerOpen())
}

func TestSubtotal_EqualsSumOfLineTotals(t *testing.T) {
	c := New(&seqIDs{})
	c.AddItem(arepa(queso(2), pollo(1)))
	c.AddItem(arepa(queso(2), pollo(1)))
	c.AddItem(Candidate{ProductID: "p-perro", ProductName: "Perro", BasePrice: 5000})

	var sum int64
	for _, it := range c.Items {
		sum += pricing.ItemTotal(it) * it.Quantity
	}

	assert.Equal(t, sum, c.Subtotal())
	assert.Equal(t, int64(10400+5000), c.Subtotal())
	assert.Equal(t, int64(3), c.ItemCount())
}

func TestRestore_DropsInvalidEntries(t *testing.T) {
	c := Restore([]model.CartItem{
		{ID: "a", ProductID: "p", Quantity: 0},
		{ID: "b", ProductID: "p", Quantity: 2, SelectedOptions: []model.CartItemOption{queso(0), pollo(1)}},
	}, &seqIDs{})

	require.Len(t, c.Items, 1)
	assert.Equal(t, "b", c.Items[0].ID)
	assert.Len(t, c.Items[0].SelectedOptions, 1)
	assert.False(t, c.IsDrawerOpen())
}

func TestEncodeDecode_OnlyItems(t *testing.T) {
	c := New(&seqIDs{})
	c.AddItem(arepa(queso(1)))
	c.OpenDrawer()

	raw, err := Encode(c.Items)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "drawer")

	items, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, c.Items, items)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	items, err := s.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)

	c := New(&seqIDs{})
	c.AddItem(arepa())
	require.NoError(t, s.Save(ctx, "u1", c.Items))

	items, err = s.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, s.Delete(ctx, "u1"))
	items, err = s.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "heat-cart:abc", Key("abc"))
}
