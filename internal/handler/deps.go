// Package handler implements the HTTP surface: page endpoints that render
// view slots, and form submissions that write through the store.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/daikitazaki/foodswho/internal/model"
	"github.com/daikitazaki/foodswho/internal/repository"
	"github.com/daikitazaki/foodswho/internal/service"
	"github.com/daikitazaki/foodswho/internal/view"
)

// dbTimeout bounds a single write issued by a handler.
const dbTimeout = 5 * time.Second

type RestaurantStore interface {
	List(ctx context.Context, q repository.RestaurantQuery) ([]model.Restaurant, error)
	GetByID(ctx context.Context, id string) (*model.Restaurant, error)
	Create(ctx context.Context, r *model.Restaurant) error
}

type ReviewStore interface {
	List(ctx context.Context, q repository.ReviewQuery) ([]model.Review, error)
	Create(ctx context.Context, rv *model.Review) error
}

type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	ListByUser(ctx context.Context, userID string) ([]model.Reservation, error)
}

// Sessions is the auth API the handlers need; *service.SessionService
// implements it.
type Sessions interface {
	SignUp(ctx context.Context, email, password string) (model.User, error)
	SignIn(ctx context.Context, email, password string) (service.Session, error)
	SignOut(ctx context.Context, access, refresh string) error
	Current(ctx context.Context, access string) (*model.User, error)
	Refresh(ctx context.Context, refresh string) (service.Session, error)
}

// Events receives activity notifications after successful writes.
type Events interface {
	ReviewCreated(ctx context.Context, rv model.Review) error
	ReservationCreated(ctx context.Context, res model.Reservation, username string) error
}

type noEvents struct{}

func (noEvents) ReviewCreated(context.Context, model.Review) error { return nil }
func (noEvents) ReservationCreated(context.Context, model.Reservation, string) error {
	return nil
}

func orNoEvents(ev Events) Events {
	if ev == nil {
		return noEvents{}
	}
	return ev
}

// respond writes a submission outcome.  Successful outcomes use ok; failed
// ones get a status derived from what went wrong.
func respond[Out any](c echo.Context, ok int, out view.Outcome[Out]) error {
	if out.Status == view.SubmitSubmitted {
		return c.JSON(ok, out)
	}
	return c.JSON(failureStatus(out.Err(), out.Rejected()), out)
}

func failureStatus(err error, rejected bool) int {
	switch {
	case rejected:
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, repository.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, repository.ErrRestaurantNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
