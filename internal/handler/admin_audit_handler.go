package handler

import (
	"net/http"
	"strconv"

	"heat/internal/middleware"
	"heat/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminAuditHandler struct {
	uc *usecase.AuditLogUsecase
}

func NewAdminAuditHandler(uc *usecase.AuditLogUsecase) *AdminAuditHandler {
	return &AdminAuditHandler{uc: uc}
}

func (h *AdminAuditHandler) RegisterRoutes(e *echo.Echo, auth ...echo.MiddlewareFunc) {
	mws := append(append([]echo.MiddlewareFunc{}, auth...), middleware.StaffGuard())
	e.GET("/admin/audit-logs", h.list, mws...)
}

// ?order_id=&actor_id=&action=&limit=&offset=
func (h *AdminAuditHandler) list(c echo.Context) error {
	q := usecase.AuditLogQuery{
		OrderID: c.QueryParam("order_id"),
		ActorID: c.QueryParam("actor_id"),
		Action:  c.QueryParam("action"),
	}
	var err error
	if q.Limit, err = intParam(c, "limit"); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Paginación inválida"})
	}
	if q.Offset, err = intParam(c, "offset"); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Paginación inválida"})
	}

	out, err := h.uc.List(c.Request().Context(), middleware.SessionFrom(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 未指定は 0
func intParam(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
