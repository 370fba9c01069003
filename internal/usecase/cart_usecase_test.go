package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"heat/internal/cart"
	"heat/internal/domain/model"
	repo "heat/internal/repository"
	"heat/internal/usecase"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func arepa() model.Product {
	return model.Product{
		ID:          "p-arepa",
		Name:        "Arepa",
		Category:    model.CategoryArepas,
		BasePrice:   3000,
		IsAvailable: true,
	}
}

func newCartUsecase(t *testing.T, store cart.Store) (*usecase.CartUsecase, *ProductRepoMock) {
	t.Helper()
	products := new(ProductRepoMock)
	products.On("FindByID", mock.Anything, "p-arepa").Return(arepa(), nil).Maybe()
	uc := usecase.NewCartUsecase(store, usecase.NewProductUsecase(products), &seqIDs{}, zerolog.Nop())
	return uc, products
}

func TestCartUsecase_AddItem_MergesSameConfiguration(t *testing.T) {
	uc, _ := newCartUsecase(t, cart.NewMemoryStore())
	ctx := context.Background()
	s := customer("u1")

	// 初期構成: 3000 + queso 500 + jamon 800 + mantequilla 100 + sal 500
	out, err := uc.AddItem(ctx, s, usecase.ConfigureInput{ProductID: "p-arepa"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(4900), out.Items[0].UnitTotal)

	out, err = uc.AddItem(ctx, s, usecase.ConfigureInput{ProductID: "p-arepa"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(2), out.Items[0].Quantity)
	assert.Equal(t, int64(9800), out.Items[0].LineTotal)

	// 別構成は別明細
	out, err = uc.AddItem(ctx, s, usecase.ConfigureInput{ProductID: "p-arepa", Preset: "Arepa Doble Queso"})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, int64(4000), out.Items[1].UnitTotal)
	assert.Equal(t, int64(3), out.ItemCount)
	assert.Equal(t, int64(13800), out.Subtotal)
	assert.False(t, out.IsEmpty)
}

func TestCartUsecase_AddItem_ExplicitOptionsAreClamped(t *testing.T) {
	uc, _ := newCartUsecase(t, cart.NewMemoryStore())

	out, err := uc.AddItem(context.Background(), customer("u1"), usecase.ConfigureInput{
		ProductID: "p-arepa",
		Options:   []usecase.OptionSelection{{ID: "queso", Quantity: 5}},
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	require.Len(t, out.Items[0].SelectedOptions, 1)
	assert.Equal(t, int64(3), out.Items[0].SelectedOptions[0].Quantity)
	assert.Equal(t, int64(4500), out.Items[0].UnitTotal)
}

func TestCartUsecase_AddItem_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unauthenticated", func(t *testing.T) {
		uc, _ := newCartUsecase(t, cart.NewMemoryStore())
		_, err := uc.AddItem(ctx, model.Session{}, usecase.ConfigureInput{ProductID: "p-arepa"})
		assertHTTPError(t, err, http.StatusUnauthorized, "no autenticado")
	})

	t.Run("unknown option", func(t *testing.T) {
		uc, _ := newCartUsecase(t, cart.NewMemoryStore())
		_, err := uc.AddItem(ctx, customer("u1"), usecase.ConfigureInput{
			ProductID: "p-arepa",
			Options:   []usecase.OptionSelection{{ID: "pinya", Quantity: 1}},
		})
		assertHTTPError(t, err, http.StatusBadRequest, "Opción inválida")
	})

	t.Run("product not found", func(t *testing.T) {
		products := new(ProductRepoMock)
		products.On("FindByID", mock.Anything, "missing").Return(model.Product{}, repo.ErrNotFound)
		uc := usecase.NewCartUsecase(cart.NewMemoryStore(), usecase.NewProductUsecase(products), &seqIDs{}, zerolog.Nop())

		_, err := uc.AddItem(ctx, customer("u1"), usecase.ConfigureInput{ProductID: "missing"})
		assertHTTPError(t, err, http.StatusNotFound, "Producto no encontrado")
	})

	t.Run("product unavailable", func(t *testing.T) {
		p := arepa()
		p.IsAvailable = false
		products := new(ProductRepoMock)
		products.On("FindByID", mock.Anything, "p-arepa").Return(p, nil)
		uc := usecase.NewCartUsecase(cart.NewMemoryStore(), usecase.NewProductUsecase(products), &seqIDs{}, zerolog.Nop())

		_, err := uc.AddItem(ctx, customer("u1"), usecase.ConfigureInput{ProductID: "p-arepa"})
		assertHTTPError(t, err, http.StatusBadRequest, "no disponible")
	})
}

func TestCartUsecase_QuantityOperations(t *testing.T) {
	uc, _ := newCartUsecase(t, cart.NewMemoryStore())
	ctx := context.Background()
	s := customer("u1")

	out, err := uc.AddItem(ctx, s, usecase.ConfigureInput{ProductID: "p-arepa"})
	require.NoError(t, err)
	id := out.Items[0].ID

	out, err = uc.Increment(ctx, s, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.Items[0].Quantity)

	out, err = uc.SetQuantity(ctx, s, id, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.ItemCount)

	out, err = uc.Decrement(ctx, s, id)
	require.NoError(t, err)
	assert.Equal(t, int64(4), out.Items[0].Quantity)

	// 上限超えは拒否して数量はそのまま
	_, err = uc.SetQuantity(ctx, s, id, cart.MaxQuantity+1)
	assertHTTPError(t, err, http.StatusBadRequest, "Cantidad máxima: 99")
	out, err = uc.Get(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, int64(4), out.Items[0].Quantity)

	// 0 以下は削除
	out, err = uc.SetQuantity(ctx, s, id, 0)
	require.NoError(t, err)
	assert.True(t, out.IsEmpty)

	_, err = uc.Increment(ctx, s, id)
	assertHTTPError(t, err, http.StatusNotFound, "no encontrado en el carrito")

	// Remove は無くてもエラーにしない
	out, err = uc.Remove(ctx, s, id)
	require.NoError(t, err)
	assert.True(t, out.IsEmpty)
}

func TestCartUsecase_DecrementLastUnitRemoves(t *testing.T) {
	uc, _ := newCartUsecase(t, cart.NewMemoryStore())
	ctx := context.Background()
	s := customer("u1")

	out, err := uc.AddItem(ctx, s, usecase.ConfigureInput{ProductID: "p-arepa"})
	require.NoError(t, err)

	out, err = uc.Decrement(ctx, s, out.Items[0].ID)
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, int64(0), out.Subtotal)
}

func TestCartUsecase_CartsAreIsolatedPerUser(t *testing.T) {
	uc, _ := newCartUsecase(t, cart.NewMemoryStore())
	ctx := context.Background()

	_, err := uc.AddItem(ctx, customer("u1"), usecase.ConfigureInput{ProductID: "p-arepa"})
	require.NoError(t, err)

	other, err := uc.Get(ctx, customer("u2"))
	require.NoError(t, err)
	assert.True(t, other.IsEmpty)

	mine, err := uc.Get(ctx, customer("u1"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.ItemCount)
}

func TestCartUsecase_Clear(t *testing.T) {
	uc, _ := newCartUsecase(t, cart.NewMemoryStore())
	ctx := context.Background()
	s := customer("u1")

	_, err := uc.AddItem(ctx, s, usecase.ConfigureInput{ProductID: "p-arepa"})
	require.NoError(t, err)

	out, err := uc.Clear(ctx, s)
	require.NoError(t, err)
	assert.True(t, out.IsEmpty)

	out, err = uc.Get(ctx, s)
	require.NoError(t, err)
	assert.True(t, out.IsEmpty)
}

// Load/Save が失敗する Store
type brokenStore struct{ err error }

func (b brokenStore) Load(context.Context, string) ([]model.CartItem, error) { return nil, b.err }
func (b brokenStore) Save(context.Context, string, []model.CartItem) error   { return b.err }
func (b brokenStore) Delete(context.Context, string) error                   { return b.err }

func TestCartUsecase_StoreFailure(t *testing.T) {
	uc, _ := newCartUsecase(t, brokenStore{err: errors.New("redis down")})
	ctx := context.Background()

	_, err := uc.Get(ctx, customer("u1"))
	assertHTTPError(t, err, http.StatusInternalServerError, "Error al cargar el carrito")

	_, err = uc.Clear(ctx, customer("u1"))
	assertHTTPError(t, err, http.StatusInternalServerError, "Error al vaciar el carrito")
}
