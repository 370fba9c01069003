package server

import (
	"net/http"
	"time"

	"heat/internal/config"
	"heat/internal/handler"
	"heat/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type Handlers struct {
	Product    *handler.ProductHandler
	Cart       *handler.CartHandler
	Order      *handler.OrderHandler
	Profile    *handler.ProfileHandler
	AdminOrder *handler.AdminOrderHandler
	AdminAudit *handler.AdminAuditHandler
}

// RegisterRoutes は認証付きのルートをまとめて登録する
func RegisterRoutes(e *echo.Echo, cfg config.Config, roles middleware.RoleSource, log zerolog.Logger, h Handlers) {
	auth := []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg),
		middleware.LoadSession(roles, log),
	}

	h.Product.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, auth...)
	h.Order.RegisterRoutes(e, CheckoutLimiter(cfg.CheckoutRatePerMin), auth...)
	h.Profile.RegisterRoutes(e, auth...)
	h.AdminOrder.RegisterRoutes(e, auth...)
	h.AdminAudit.RegisterRoutes(e, auth...)
}

// CheckoutLimiter はユーザーごとに注文確定の回数を制限する（perMin <= 0 なら制限なし）
func CheckoutLimiter(perMin int) echo.MiddlewareFunc {
	if perMin <= 0 {
		return nil
	}

	cfg := echomw.RateLimiterConfig{
		Skipper: echomw.DefaultSkipper,
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(
			echomw.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(float64(perMin) / 60),
				Burst:     perMin,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if s := middleware.SessionFrom(c); s.IsAuthenticated() {
				return s.UserID, nil
			}
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, handler.ErrorResponse{Error: "Solicitud rechazada"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, handler.ErrorResponse{Error: "Demasiados pedidos, intenta de nuevo en un momento"})
		},
	}
	return echomw.RateLimiterWithConfig(cfg)
}
