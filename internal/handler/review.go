package handler

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/daikitazaki/foodswho/internal/middleware"
	"github.com/daikitazaki/foodswho/internal/model"
	"github.com/daikitazaki/foodswho/internal/view"
)

type ReviewHandler struct {
	Reviews  ReviewStore
	Events   Events
	Validate *validator.Validate
}

func NewReviewHandler(rv ReviewStore, ev Events, v *validator.Validate) *ReviewHandler {
	return &ReviewHandler{Reviews: rv, Events: orNoEvents(ev), Validate: v}
}

type reviewForm struct {
	Title        string `json:"title" form:"title" validate:"required"`
	Content      string `json:"content" form:"content" validate:"required"`
	RestaurantID string `json:"restaurant_id" form:"restaurant_id" validate:"required"`
}

// Create posts a review signed with the session email.  Requires JWTAuth.
func (h *ReviewHandler) Create(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var in reviewForm
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sub := &view.Submitter[reviewForm, model.Review]{
		Validate: h.Validate,
		Write: func(ctx context.Context, in reviewForm) (model.Review, error) {
			rv := model.Review{Title: in.Title, Content: in.Content, Username: user.Email, RestaurantID: in.RestaurantID}
			err := h.Reviews.Create(ctx, &rv)
			return rv, err
		},
		Message:  "Review posted!",
		Redirect: "/",
	}
	out := sub.Submit(ctx, in)
	if out.Status == view.SubmitSubmitted {
		_ = h.Events.ReviewCreated(c.Request().Context(), *out.Item)
	}
	return respond(c, http.StatusCreated, out)
}
