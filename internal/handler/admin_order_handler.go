package handler

import (
	"net/http"

	"heat/internal/middleware"
	"heat/internal/usecase"

	"github.com/labstack/echo/v4"
)

// スタッフ（admin / dev）向けの注文操作
type AdminOrderHandler struct {
	status  *usecase.OrderStatusUsecase
	kitchen *usecase.KitchenUsecase
}

func NewAdminOrderHandler(status *usecase.OrderStatusUsecase, kitchen *usecase.KitchenUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{status: status, kitchen: kitchen}
}

type SpeechResponse struct {
	Text string `json:"text"`
}

// auth の後ろに StaffGuard を付ける
func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, auth ...echo.MiddlewareFunc) {
	mws := append(append([]echo.MiddlewareFunc{}, auth...), middleware.StaffGuard())
	g := e.Group("/admin/orders", mws...)

	g.GET("/summary", h.summary)
	g.GET("/:id/speech", h.speech)
	g.POST("/:id/advance", h.advance)
	g.POST("/:id/cancel", h.cancel)
}

func (h *AdminOrderHandler) advance(c echo.Context) error {
	out, err := h.status.Advance(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) cancel(c echo.Context) error {
	out, err := h.status.Cancel(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) summary(c echo.Context) error {
	out, err := h.kitchen.Summary(c.Request().Context(), middleware.SessionFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) speech(c echo.Context) error {
	text, err := h.kitchen.Speech(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SpeechResponse{Text: text})
}
