package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"heat/internal/domain/model"
	"heat/internal/middleware"
	"heat/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// SSE のキープアライブ間隔
const streamPingInterval = 25 * time.Second

type OrderHandler struct {
	checkout *usecase.CheckoutUsecase
	history  *usecase.OrderHistoryUsecase
	status   *usecase.OrderStatusUsecase
	qr       *usecase.OrderQRUsecase
	log      zerolog.Logger
}

func NewOrderHandler(
	checkout *usecase.CheckoutUsecase,
	history *usecase.OrderHistoryUsecase,
	status *usecase.OrderStatusUsecase,
	qr *usecase.OrderQRUsecase,
	log zerolog.Logger,
) *OrderHandler {
	return &OrderHandler{
		checkout: checkout,
		history:  history,
		status:   status,
		qr:       qr,
		log:      log,
	}
}

type SubmissionResponse struct {
	Placing bool   `json:"placing"`
	Error   string `json:"error,omitempty"`
}

// placeLimit は POST /orders にだけ掛ける（nil 可）
func (h *OrderHandler) RegisterRoutes(e *echo.Echo, placeLimit echo.MiddlewareFunc, auth ...echo.MiddlewareFunc) {
	g := e.Group("/orders", auth...)

	if placeLimit != nil {
		g.POST("", h.create, placeLimit)
	} else {
		g.POST("", h.create)
	}
	g.GET("", h.list)
	g.GET("/submission", h.submission)
	g.GET("/stream", h.stream)
	g.GET("/:id/qr", h.qrCode)
	g.POST("/:id/cancel", h.cancel)
}

// body は受け取り設定（model.DeliveryConfig）
func (h *OrderHandler) create(c echo.Context) error {
	var req model.DeliveryConfig
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Solicitud inválida"})
	}

	out, err := h.checkout.PlaceOrder(c.Request().Context(), middleware.SessionFrom(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	out, err := h.history.List(c.Request().Context(), middleware.SessionFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 注文確定の実行中フラグと直前のエラー
func (h *OrderHandler) submission(c echo.Context) error {
	s := middleware.SessionFrom(c)
	return c.JSON(http.StatusOK, SubmissionResponse{
		Placing: h.checkout.IsPlacing(s.UserID),
		Error:   h.checkout.LastError(s.UserID),
	})
}

func (h *OrderHandler) cancel(c echo.Context) error {
	out, err := h.status.CancelOwn(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) qrCode(c echo.Context) error {
	png, err := h.qr.PNG(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Response().Header().Set("Cache-Control", "private, max-age=3600")
	return c.Blob(http.StatusOK, "image/png", png)
}

// stream は Server-Sent Events。
// 最初に "snapshot"（一覧）、以後は status が変わるたびに "status"（その注文）を送る。
func (h *OrderHandler) stream(c echo.Context) error {
	ctx := c.Request().Context()
	s := middleware.SessionFrom(c)

	patches := make(chan usecase.OrderView, 16)
	view, stop, err := h.history.Watch(ctx, s, func(v usecase.OrderView) {
		select {
		case patches <- v:
		default:
			h.log.Warn().Str("order_id", v.ID).Msg("stream is slow, dropping status patch")
		}
	})
	if err != nil {
		return writeError(c, err)
	}
	defer stop()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, "snapshot", view.Orders()); err != nil {
		return nil
	}

	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case v := <-patches:
			if err := writeEvent(w, "status", v); err != nil {
				return nil
			}
		case <-ping.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}

func writeEvent(w *echo.Response, name string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, b); err != nil {
		return err
	}
	w.Flush()
	return nil
}
