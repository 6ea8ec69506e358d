package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/daikitazaki/foodswho/internal/middleware"
	"github.com/daikitazaki/foodswho/internal/model"
	"github.com/daikitazaki/foodswho/internal/view"
)

// ReservationCookie holds the provisional copy of the last reservation.
const ReservationCookie = "reservation"

var (
	errNoDateTime  = errors.New("Please select a reservation date and time.")
	errBadDateTime = errors.New("Please enter the reservation date and time as YYYY-MM-DDThh:mm.")
)

// Accepted datetime inputs: RFC 3339 and the HTML datetime-local format.
var dateTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

type ReservationHandler struct {
	Reservations ReservationStore
	Events       Events
	Validate     *validator.Validate
}

func NewReservationHandler(rs ReservationStore, ev Events, v *validator.Validate) *ReservationHandler {
	return &ReservationHandler{Reservations: rs, Events: orNoEvents(ev), Validate: v}
}

type reservationForm struct {
	DateTime string `json:"datetime" form:"datetime"`
}

func parseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errNoDateTime
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errBadDateTime
}

// Create books a table.  There is no availability or duplicate check: the
// same submission twice stores two reservations.  Requires JWTAuth.
func (h *ReservationHandler) Create(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	restaurantID := c.Param("id")
	var in reservationForm
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sub := &view.Submitter[reservationForm, model.Reservation]{
		Validate: h.Validate,
		Check: func(in reservationForm) error {
			_, err := parseDateTime(in.DateTime)
			return err
		},
		Write: func(ctx context.Context, in reservationForm) (model.Reservation, error) {
			at, err := parseDateTime(in.DateTime)
			if err != nil {
				return model.Reservation{}, err
			}
			res := model.Reservation{UserID: user.ID, RestaurantID: restaurantID, DateTime: at}
			if err := h.Reservations.Create(ctx, &res); err != nil {
				return model.Reservation{}, err
			}
			setReservationCookie(c, model.ReservationCookie{Username: user.Email, Date: at, RestaurantID: restaurantID})
			return res, nil
		},
		Redirect: "/",
	}
	out := sub.Submit(ctx, in)
	if out.Status == view.SubmitSubmitted {
		out.Message = fmt.Sprintf("Reservation completed: %s, %s", user.Email, strings.TrimSpace(in.DateTime))
		_ = h.Events.ReservationCreated(c.Request().Context(), *out.Item, user.Email)
	}
	return respond(c, http.StatusCreated, out)
}

// Mine lists the caller's reservations.  Requires JWTAuth.
func (h *ReservationHandler) Mine(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Reservations.ListByUser(ctx, user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": view.Message(err)})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func setReservationCookie(c echo.Context, rc model.ReservationCookie) {
	b, err := json.Marshal(rc)
	if err != nil {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     ReservationCookie,
		Value:    url.QueryEscape(string(b)),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
}
