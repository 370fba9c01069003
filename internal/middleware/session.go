package middleware

import (
	"context"
	"net/http"

	"heat/internal/domain/model"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ロールの取得元（ProfileUsecase が実装）
type RoleSource interface {
	Role(ctx context.Context, userID string) (model.Role, error)
}

// LoadSession は AuthJWT の後に置き、ロールを引いて model.Session を context に入れる。
// ロールが引けないときは customer として扱う。
func LoadSession(roles RoleSource, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(CtxUserIDKey).(string)
			if !ok || userID == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			email, _ := c.Get(CtxEmailKey).(string)

			role, err := roles.Role(c.Request().Context(), userID)
			if err != nil {
				log.Warn().Err(err).Str("user_id", userID).Msg("role lookup failed, falling back to customer")
				role = model.RoleCustomer
			}

			c.Set(CtxSessionKey, model.Session{UserID: userID, Email: email, Role: role})
			return next(c)
		}
	}
}

// SessionFrom は context のセッション。無ければゼロ値（未認証）。
func SessionFrom(c echo.Context) model.Session {
	s, _ := c.Get(CtxSessionKey).(model.Session)
	return s
}

// StaffGuard は admin / dev だけ通す
func StaffGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := SessionFrom(c)
			if !s.IsAuthenticated() {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//customerは拒否
			if !s.Role.IsStaff() {
				return c.JSON(http.StatusForbidden, errorJSON("staff only"))
			}

			return next(c)
		}
	}
}
