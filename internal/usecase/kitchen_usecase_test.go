package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"heat/internal/domain/model"
	"heat/internal/pricing"
	repo "heat/internal/repository"
	"heat/internal/usecase"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func withItems(o model.Order, items ...model.OrderItem) model.Order {
	o.Items = items
	return o
}

func item(product string, qty int64, opts string) model.OrderItem {
	return model.OrderItem{ProductName: product, Quantity: qty, SelectedOptions: json.RawMessage(opts)}
}

func TestKitchenUsecase_Summary(t *testing.T) {
	orders := new(OrderRepoMock)
	orders.On("List", mock.Anything, mock.MatchedBy(func(f repo.OrderListFilter) bool {
		return f.UserID == nil && f.Limit == 0 &&
			assert.ObjectsAreEqual([]model.OrderStatus{model.OrderStatusPending, model.OrderStatusCooking}, f.Statuses)
	})).Return([]model.Order{
		withItems(order("o-1", "u1", model.OrderStatusPending),
			item("Arepa", 2, `[{"name":"Queso","quantity":2}]`),
			item("Perro", 1, `[]`),
		),
		withItems(order("o-2", "u2", model.OrderStatusCooking),
			item("Arepa", 1, `[{"name":"Queso","quantity":2}]`),
			item("Chorizo", 1, `[]`),
		),
	}, nil)

	uc := usecase.NewKitchenUsecase(orders, new(OrderItemRepoMock), zerolog.Nop())
	out, err := uc.Summary(context.Background(), staff("admin-1"))
	require.NoError(t, err)

	assert.Equal(t, []usecase.SummaryLine{
		{Name: "Arepa (Queso)", Quantity: 3},
		{Name: "Chorizo", Quantity: 1},
		{Name: "Perro", Quantity: 1},
	}, out.Lines)
	assert.Equal(t, "Resumen de pedidos pendientes: 3 Arepa (Queso). 1 Chorizo. 1 Perro", out.Text)
}

func TestKitchenUsecase_Summary_Errors(t *testing.T) {
	ctx := context.Background()

	uc := usecase.NewKitchenUsecase(new(OrderRepoMock), new(OrderItemRepoMock), zerolog.Nop())
	_, err := uc.Summary(ctx, customer("u1"))
	assertHTTPError(t, err, http.StatusForbidden, "Acceso denegado")

	orders := new(OrderRepoMock)
	orders.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	uc = usecase.NewKitchenUsecase(orders, new(OrderItemRepoMock), zerolog.Nop())
	_, err = uc.Summary(ctx, staff("admin-1"))
	assertHTTPError(t, err, http.StatusInternalServerError, "Error al cargar pedidos")
}

func TestSummaryText_Empty(t *testing.T) {
	assert.Equal(t, "No hay pedidos pendientes", usecase.SummaryText(nil))
}

func TestOrderSpeech(t *testing.T) {
	o := withItems(model.Order{PlateCode: "A-012", Total: 10400},
		item("Arepa", 2, `[{"name":"Queso","quantity":2},{"name":"Jamón","quantity":1}]`),
		item("", 1, `[]`),
	)

	want := "Pedido A-012. 2 Arepa con 2 Queso, Jamón. 1 Producto. Total: " + pricing.FormatNumber(10400) + " pesos"
	assert.Equal(t, want, usecase.OrderSpeech(o))
}

func TestKitchenUsecase_Speech(t *testing.T) {
	orders := new(OrderRepoMock)
	items := new(OrderItemRepoMock)
	orders.On("FindByID", mock.Anything, "o-1").Return(model.Order{ID: "o-1", PlateCode: "C-101"}, nil)
	items.On("ListByOrderID", mock.Anything, "o-1").Return([]model.OrderItem{item("Perro", 1, `[]`)}, nil)
	orders.On("FindByID", mock.Anything, "missing").Return(model.Order{}, repo.ErrNotFound)

	uc := usecase.NewKitchenUsecase(orders, items, zerolog.Nop())

	text, err := uc.Speech(context.Background(), staff("admin-1"), "o-1")
	require.NoError(t, err)
	assert.Equal(t, "Pedido C-101. 1 Perro", text)

	_, err = uc.Speech(context.Background(), staff("admin-1"), "missing")
	assertHTTPError(t, err, http.StatusNotFound, "Pedido no encontrado")
}
