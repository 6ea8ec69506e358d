// Package middleware holds the echo middleware shared by all routes.
package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/daikitazaki/foodswho/internal/model"
)

// Authenticator resolves an access token to its user; nil means no
// session.
type Authenticator interface {
	Current(ctx context.Context, accessToken string) (*model.User, error)
}

// JWTAuth rejects requests without a live session.  A token that is well
// signed but was signed out, or whose user is gone, counts as no session.
// On success the user is available through CurrentUser.
func JWTAuth(auth Authenticator, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := AccessToken(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			u, err := auth.Current(c.Request().Context(), raw)
			if err != nil {
				log.Error("session lookup failed", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session lookup failed"})
			}
			if u == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(ctxUser, u)
			c.Set(ctxUserID, u.ID)
			return next(c)
		}
	}
}
