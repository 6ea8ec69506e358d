package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/daikitazaki/foodswho/internal/model"
	"github.com/daikitazaki/foodswho/internal/utils"
)

// AccessCookie carries the access token for browser clients that do not
// send an Authorization header.
const AccessCookie = "access_token"

const (
	ctxUserID = "user_id"
	ctxUser   = "user"
)

// AccessToken returns the raw access token of the request: the Bearer
// header first, then the access cookie.  Empty when neither is present.
func AccessToken(c echo.Context) string {
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if ck, err := c.Cookie(AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}

// Identify records the subject of a validly signed access token under
// "user_id" without touching the store.  It never rejects a request; it
// only lets the rate limiter key on the caller.
func Identify(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw := AccessToken(c); raw != "" {
				if claims, err := utils.ParseAccessToken(secret, raw); err == nil {
					c.Set(ctxUserID, claims.UserID)
				}
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user stored by JWTAuth, or nil.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(ctxUser).(*model.User)
	return u
}

// userID is the rate-limit identity of the request, "guest" when unknown.
func userID(c echo.Context) string {
	if u := CurrentUser(c); u != nil {
		return u.ID
	}
	if s, ok := c.Get(ctxUserID).(string); ok && s != "" {
		return s
	}
	return "guest"
}
