// Package router registers every HTTP route on an echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/daikitazaki/foodswho/internal/handler"
	"github.com/daikitazaki/foodswho/internal/middleware"
)

// Handlers bundles what the routes dispatch to.
type Handlers struct {
	Pages        *handler.PageHandler
	Auth         *handler.AuthHandler
	Restaurants  *handler.RestaurantHandler
	Reviews      *handler.ReviewHandler
	Reservations *handler.ReservationHandler
}

// Register mounts the routes.  api carries the middleware shared by every
// /v1 route (identity, rate limit); auth guards routes that need a
// session.
func Register(e *echo.Echo, h Handlers, sessions middleware.Authenticator, api []echo.MiddlewareFunc, log *zap.Logger) {
	e.GET("/healthz", handler.Health)
	e.GET("/bbb", handler.LegacyRedirect)

	v1 := e.Group("/v1", api...)
	auth := middleware.JWTAuth(sessions, log)

	pages := v1.Group("/pages")
	pages.GET("/home", h.Pages.Home)
	pages.GET("/restaurants/:id", h.Pages.Restaurant)
	pages.GET("/search", h.Pages.Search)
	pages.GET("/reviews", h.Pages.AllReviews)
	pages.GET("/create-review", h.Pages.CreateReview)
	pages.GET("/reserve/:id", h.Pages.Reserve)
	pages.GET("/session", h.Pages.Session)

	a := v1.Group("/auth")
	a.POST("/register", h.Auth.Register)
	a.POST("/login", h.Auth.Login)
	a.POST("/logout", h.Auth.Logout)
	a.POST("/refresh", h.Auth.Refresh)
	a.GET("/session", h.Auth.Current)

	v1.POST("/restaurants", h.Restaurants.Create)
	v1.POST("/reviews", h.Reviews.Create, auth)
	v1.POST("/restaurants/:id/reservations", h.Reservations.Create, auth)
	v1.GET("/my-reservations", h.Reservations.Mine, auth)
}
