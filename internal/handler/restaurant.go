package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/daikitazaki/foodswho/internal/model"
	"github.com/daikitazaki/foodswho/internal/view"
)

type RestaurantHandler struct {
	Restaurants RestaurantStore
	Validate    *validator.Validate
}

func NewRestaurantHandler(rs RestaurantStore, v *validator.Validate) *RestaurantHandler {
	return &RestaurantHandler{Restaurants: rs, Validate: v}
}

type restaurantForm struct {
	Name        string `json:"name" form:"name" validate:"required"`
	Description string `json:"description" form:"description" validate:"required"`
	ImageURL    string `json:"image_url" form:"image_url" validate:"required"`
}

// Create registers a restaurant with exactly the submitted values.
func (h *RestaurantHandler) Create(c echo.Context) error {
	var in restaurantForm
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sub := &view.Submitter[restaurantForm, model.Restaurant]{
		Validate: h.Validate,
		Write: func(ctx context.Context, in restaurantForm) (model.Restaurant, error) {
			r := model.Restaurant{Name: in.Name, Description: in.Description, ImageURL: in.ImageURL}
			err := h.Restaurants.Create(ctx, &r)
			return r, err
		},
		Message:       "Restaurant registered!",
		Redirect:      "/",
		RedirectAfter: 2 * time.Second,
	}
	return respond(c, http.StatusCreated, sub.Submit(ctx, in))
}
