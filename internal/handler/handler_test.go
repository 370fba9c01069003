package handler_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"heat/internal/cart"
	"heat/internal/domain/model"
	"heat/internal/handler"
	"heat/internal/lifecycle"
	"heat/internal/middleware"
	"heat/internal/realtime"
	repo "heat/internal/repository"
	"heat/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =====================
// fakes
// =====================

type productsFake map[string]model.Product

func (f productsFake) List(_ context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	out := []model.Product{}
	for _, p := range f {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f productsFake) FindByID(_ context.Context, id string) (model.Product, error) {
	p, ok := f[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

type ordersFake map[string]model.Order

func (f ordersFake) Create(context.Context, *model.Order) error { return nil }

func (f ordersFake) FindByID(_ context.Context, id string) (model.Order, error) {
	o, ok := f[id]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (f ordersFake) List(_ context.Context, lf repo.OrderListFilter) ([]model.Order, error) {
	out := []model.Order{}
	for _, o := range f {
		if lf.UserID != nil && !o.IsOwnedBy(*lf.UserID) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f ordersFake) UpdateStatus(_ context.Context, id string, status model.OrderStatus) error {
	o, ok := f[id]
	if !ok {
		return repo.ErrNotFound
	}
	o.Status = status
	f[id] = o
	return nil
}

type auditFake struct {
	logs   []model.AuditLog
	filter repo.AuditLogFilter
}

func (a *auditFake) Create(_ context.Context, l model.AuditLog) error {
	a.logs = append(a.logs, l)
	return nil
}

func (a *auditFake) List(_ context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	a.filter = f
	return a.logs, nil
}

type itemsFake struct{}

func (itemsFake) CreateBulk(context.Context, string, []model.OrderItem) error { return nil }
func (itemsFake) ListByOrderID(context.Context, string) ([]model.OrderItem, error) {
	return []model.OrderItem{}, nil
}

type qrFake struct{}

func (qrFake) Generate(string) ([]byte, error) { return []byte("\x89PNG"), nil }

// =====================
// helper
// =====================

// JWT の代わりにセッションを直接入れる
func withSession(s model.Session) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if s.UserID != "" {
				c.Set(middleware.CtxSessionKey, s)
			}
			return next(c)
		}
	}
}

type testServer struct {
	orders ordersFake
	audit  *auditFake
	hub    *realtime.Hub
}

func newEcho(t *testing.T, s model.Session) (*echo.Echo, *testServer) {
	t.Helper()
	log := zerolog.Nop()

	products := productsFake{
		"p-arepa": {ID: "p-arepa", Name: "Arepa", Category: model.CategoryArepas, BasePrice: 3000, IsAvailable: true},
	}
	ts := &testServer{
		orders: ordersFake{
			"o-1": {ID: "o-1", UserID: strPtr("u1"), PlateCode: "A-001", Status: model.OrderStatusPending, Total: 4900},
		},
		audit: &auditFake{},
		hub:   realtime.NewHub(4, log),
	}

	productUC := usecase.NewProductUsecase(products)
	cartUC := usecase.NewCartUsecase(cart.NewMemoryStore(), productUC, nil, log)
	registry := lifecycle.NewRegistry(ts.orders, lifecycle.LogNotifier{Log: log}, log)
	statusUC := usecase.NewOrderStatusUsecase(ts.orders, ts.audit, registry, log)
	historyUC := usecase.NewOrderHistoryUsecase(ts.orders, ts.hub, log)
	kitchenUC := usecase.NewKitchenUsecase(ts.orders, itemsFake{}, log)
	qrUC := usecase.NewOrderQRUsecase(ts.orders, qrFake{}, "https://heat.example", log)

	e := echo.New()
	auth := withSession(s)
	handler.NewProductHandler(productUC).RegisterRoutes(e)
	handler.NewCartHandler(cartUC).RegisterRoutes(e, auth)
	handler.NewOrderHandler(nil, historyUC, statusUC, qrUC, log).RegisterRoutes(e, nil, auth)
	handler.NewAdminOrderHandler(statusUC, kitchenUC).RegisterRoutes(e, auth)
	handler.NewAdminAuditHandler(usecase.NewAuditLogUsecase(ts.audit, log)).RegisterRoutes(e, auth)
	return e, ts
}

func strPtr(s string) *string { return &s }

func do(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var r handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&r))
	return r.Error
}

// =====================
// tests
// =====================

func TestProductHandler(t *testing.T) {
	e, _ := newEcho(t, model.Session{})

	rec := do(t, e, http.MethodGet, "/products?category=arepas", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, e, http.MethodGet, "/products?category=sushi", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Categoría inválida", decodeError(t, rec))

	rec = do(t, e, http.MethodGet, "/menu/perros", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var menu usecase.MenuOutput
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&menu))
	assert.Equal(t, int64(5000), menu.BasePrice)
}

func TestCartHandler_Flow(t *testing.T) {
	e, _ := newEcho(t, model.Session{UserID: "u1", Role: model.RoleCustomer})

	rec := do(t, e, http.MethodPost, "/cart/items", `{"product_id":"p-arepa","preset":"Arepa Doble Queso"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out usecase.CartOutput
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(4000), out.Subtotal)

	id := out.Items[0].ID
	rec = do(t, e, http.MethodPatch, "/cart/items/"+id, `{"quantity":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, int64(12000), out.Subtotal)

	// quantity 無しは 400
	rec = do(t, e, http.MethodPatch, "/cart/items/"+id, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPost, "/cart/items/nope/increment", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e, http.MethodDelete, "/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.True(t, out.IsEmpty)
}

func TestCartHandler_Unauthenticated(t *testing.T) {
	e, _ := newEcho(t, model.Session{})

	rec := do(t, e, http.MethodGet, "/cart", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Usuario no autenticado", decodeError(t, rec))
}

func TestOrderHandler_ListAndCancelOwn(t *testing.T) {
	e, ts := newEcho(t, model.Session{UserID: "u1", Role: model.RoleCustomer})

	rec := do(t, e, http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []usecase.OrderView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "Pendiente", list[0].StatusLabel)

	rec = do(t, e, http.MethodPost, "/orders/o-1/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.OrderStatusCancelled, ts.orders["o-1"].Status)
	assert.Empty(t, ts.audit.logs)
}

func TestOrderHandler_QR(t *testing.T) {
	e, _ := newEcho(t, model.Session{UserID: "u1", Role: model.RoleCustomer})

	rec := do(t, e, http.MethodGet, "/orders/o-1/qr", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))

	other, _ := newEcho(t, model.Session{UserID: "u2", Role: model.RoleCustomer})
	rec = do(t, other, http.MethodGet, "/orders/o-1/qr", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminOrderHandler(t *testing.T) {
	t.Run("customer is forbidden", func(t *testing.T) {
		e, ts := newEcho(t, model.Session{UserID: "u1", Role: model.RoleCustomer})

		rec := do(t, e, http.MethodPost, "/admin/orders/o-1/advance", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, model.OrderStatusPending, ts.orders["o-1"].Status)
	})

	t.Run("staff advances and audits", func(t *testing.T) {
		e, ts := newEcho(t, model.Session{UserID: "admin-1", Role: model.RoleAdmin})

		rec := do(t, e, http.MethodPost, "/admin/orders/o-1/advance", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var out usecase.StatusOutput
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
		assert.Equal(t, "Cocinando", out.StatusLabel)
		assert.Equal(t, model.OrderStatusCooking, ts.orders["o-1"].Status)
		require.Len(t, ts.audit.logs, 1)
		assert.Equal(t, model.AuditActionAdvanceOrderStatus, ts.audit.logs[0].Action)
	})

	t.Run("summary", func(t *testing.T) {
		e, _ := newEcho(t, model.Session{UserID: "dev-1", Role: model.RoleDev})

		rec := do(t, e, http.MethodGet, "/admin/orders/summary", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var out usecase.SummaryOutput
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
		assert.Equal(t, "No hay pedidos pendientes", out.Text)
	})

	t.Run("unknown order", func(t *testing.T) {
		e, _ := newEcho(t, model.Session{UserID: "admin-1", Role: model.RoleAdmin})

		rec := do(t, e, http.MethodPost, "/admin/orders/o-404/cancel", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Pedido no encontrado", decodeError(t, rec))
	})
}

type sseEvent struct {
	name string
	data string
}

// readEvent は次のイベントを1つ読む（コメント行は飛ばす）
func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "":
			if ev.name != "" {
				return ev
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestOrderHandler_Stream(t *testing.T) {
	e, ts := newEcho(t, model.Session{UserID: "u1", Role: model.RoleCustomer})
	srv := httptest.NewServer(e)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/orders/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get(echo.HeaderContentType))
	r := bufio.NewReader(resp.Body)

	ev := readEvent(t, r)
	require.Equal(t, "snapshot", ev.name)
	var snapshot []usecase.OrderView
	require.NoError(t, json.Unmarshal([]byte(ev.data), &snapshot))
	require.Len(t, snapshot, 1)
	assert.Equal(t, model.OrderStatusPending, snapshot[0].Status)

	// snapshot の時点で購読は始まっている
	ts.hub.Publish(model.OrderChange{OrderID: "o-9", UserID: "u2", Status: model.OrderStatusReady})
	ts.hub.Publish(model.OrderChange{OrderID: "o-1", UserID: "u1", Status: model.OrderStatusCooking})

	ev = readEvent(t, r)
	require.Equal(t, "status", ev.name)
	var patch usecase.OrderView
	require.NoError(t, json.Unmarshal([]byte(ev.data), &patch))
	assert.Equal(t, "o-1", patch.ID)
	assert.Equal(t, model.OrderStatusCooking, patch.Status)
	assert.Equal(t, "Cocinando", patch.StatusLabel)
}

func TestOrderHandler_StreamUnauthenticated(t *testing.T) {
	e, ts := newEcho(t, model.Session{})

	rec := do(t, e, http.MethodGet, "/orders/stream", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, ts.hub.Len())
}

func TestAdminAuditHandler(t *testing.T) {
	e, ts := newEcho(t, model.Session{UserID: "admin-1", Role: model.RoleAdmin})

	rec := do(t, e, http.MethodPost, "/admin/orders/o-1/advance", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, e, http.MethodGet, "/admin/audit-logs?order_id=o-1&limit=10&offset=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page usecase.AuditLogPage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	require.Len(t, page.Entries, 1)
	assert.Equal(t, model.OrderStatusPending, page.Entries[0].From)
	assert.Equal(t, model.OrderStatusCooking, page.Entries[0].To)
	assert.Equal(t, 10, page.Limit)
	require.NotNil(t, ts.audit.filter.ResourceID)
	assert.Equal(t, "o-1", *ts.audit.filter.ResourceID)

	rec = do(t, e, http.MethodGet, "/admin/audit-logs?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Paginación inválida", decodeError(t, rec))
}

func TestAdminAuditHandler_CustomerForbidden(t *testing.T) {
	e, _ := newEcho(t, model.Session{UserID: "u1", Role: model.RoleCustomer})

	rec := do(t, e, http.MethodGet, "/admin/audit-logs", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
