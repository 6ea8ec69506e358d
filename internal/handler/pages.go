package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/daikitazaki/foodswho/internal/middleware"
	"github.com/daikitazaki/foodswho/internal/model"
	"github.com/daikitazaki/foodswho/internal/repository"
	"github.com/daikitazaki/foodswho/internal/view"
)

// NoResults is the search page message for an empty, successful search.
const NoResults = "No restaurants found."

// PageHandler serves the read-only pages.  Every request gets its own
// view.Controller; all of a page's slots are fetched concurrently and the
// response waits at most Wait for them.
type PageHandler struct {
	Restaurants RestaurantStore
	Reviews     ReviewStore
	Sessions    Sessions
	Wait        time.Duration
	Log         *zap.Logger
}

func NewPageHandler(rs RestaurantStore, rv ReviewStore, s Sessions, wait time.Duration, log *zap.Logger) *PageHandler {
	if wait <= 0 {
		wait = 3 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PageHandler{Restaurants: rs, Reviews: rv, Sessions: s, Wait: wait, Log: log}
}

type page struct {
	name    string
	ctrl    *view.Controller
	slots   map[string]any
	session *view.Slot[*model.User]
}

func (h *PageHandler) open(name string) *page {
	return &page{name: name, ctrl: view.NewController(name, h.Log), slots: map[string]any{}}
}

func fetch[T any](c echo.Context, p *page, name string, empty T, fn func(context.Context) (T, error)) *view.Slot[T] {
	s := view.NewSlot(name, empty)
	p.slots[name] = s
	view.Fetch(c.Request().Context(), p.ctrl, s, fn)
	return s
}

// withSession adds the session slot.  The token is read here because the
// echo.Context must not be touched from the fetch goroutine.
func (h *PageHandler) withSession(c echo.Context, p *page) {
	raw := middleware.AccessToken(c)
	p.session = fetch(c, p, "session", (*model.User)(nil), func(ctx context.Context) (*model.User, error) {
		return h.Sessions.Current(ctx, raw)
	})
}

func (h *PageHandler) settle(c echo.Context, p *page) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Wait)
	defer cancel()
	if !p.ctrl.Wait(ctx) {
		h.Log.Debug("page rendered before all slots resolved", zap.String("page", p.name))
	}
	p.ctrl.LogErrors()
}

func (h *PageHandler) render(c echo.Context, p *page, extra echo.Map) error {
	body := echo.Map{"page": p.name, "slots": p.slots}
	if p.session != nil {
		body["menu"] = view.AccountMenu(p.session.State().Data)
	}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(http.StatusOK, body)
}

// Home lists every restaurant by name.
func (h *PageHandler) Home(c echo.Context) error {
	p := h.open("home")
	fetch(c, p, "restaurants", []model.Restaurant{}, func(ctx context.Context) ([]model.Restaurant, error) {
		return h.Restaurants.List(ctx, repository.RestaurantQuery{OrderBy: "name"})
	})
	h.withSession(c, p)
	h.settle(c, p)
	return h.render(c, p, nil)
}

// Restaurant shows one restaurant with its reviews.
func (h *PageHandler) Restaurant(c echo.Context) error {
	id := c.Param("id")
	p := h.open("restaurant")
	fetch(c, p, "restaurant", (*model.Restaurant)(nil), func(ctx context.Context) (*model.Restaurant, error) {
		return h.Restaurants.GetByID(ctx, id)
	})
	fetch(c, p, "reviews", []model.Review{}, func(ctx context.Context) ([]model.Review, error) {
		return h.Reviews.List(ctx, repository.ReviewQuery{RestaurantID: id})
	})
	h.withSession(c, p)
	h.settle(c, p)
	return h.render(c, p, echo.Map{"reserve": "/reserve/" + id})
}

// Search filters restaurants.  query and category run one filtered select
// in the store; otherwise everything is loaded and narrowed by filter.
func (h *PageHandler) Search(c echo.Context) error {
	query := c.QueryParam("query")
	category := c.QueryParam("category")
	filter := c.QueryParam("filter")

	p := h.open("search")
	results := fetch(c, p, "restaurants", []model.Restaurant{}, func(ctx context.Context) ([]model.Restaurant, error) {
		if query != "" || category != "" {
			return h.Restaurants.List(ctx, repository.RestaurantQuery{Name: query, Category: category, OrderBy: "name"})
		}
		all, err := h.Restaurants.List(ctx, repository.RestaurantQuery{OrderBy: "name"})
		if err != nil {
			return nil, err
		}
		return view.FilterByName(all, func(r model.Restaurant) string { return r.Name }, filter), nil
	})
	h.settle(c, p)

	extra := echo.Map{"query": query, "category": category, "filter": filter}
	if st := results.State(); st.Status == view.StatusSuccess && len(st.Data) == 0 {
		extra["message"] = NoResults
	}
	return h.render(c, p, extra)
}

// AllReviews lists every review, newest first.
func (h *PageHandler) AllReviews(c echo.Context) error {
	p := h.open("reviews")
	fetch(c, p, "reviews", []model.Review{}, func(ctx context.Context) ([]model.Review, error) {
		return h.Reviews.List(ctx, repository.ReviewQuery{})
	})
	h.settle(c, p)
	return h.render(c, p, nil)
}

// CreateReview feeds the review form: the restaurant picker and the
// session the review will be signed with.
func (h *PageHandler) CreateReview(c echo.Context) error {
	p := h.open("create-review")
	fetch(c, p, "restaurants", []model.Restaurant{}, func(ctx context.Context) ([]model.Restaurant, error) {
		return h.Restaurants.List(ctx, repository.RestaurantQuery{OrderBy: "name"})
	})
	h.withSession(c, p)
	h.settle(c, p)
	return h.render(c, p, nil)
}

// Reserve feeds the reservation form and echoes the last reservation
// kept in the browser cookie.
func (h *PageHandler) Reserve(c echo.Context) error {
	p := h.open("reserve")
	h.withSession(c, p)
	h.settle(c, p)
	return h.render(c, p, echo.Map{
		"restaurant_id":    c.Param("id"),
		"last_reservation": lastReservation(c),
	})
}

// Session backs the login page: the current session and its menu.
func (h *PageHandler) Session(c echo.Context) error {
	p := h.open("login")
	h.withSession(c, p)
	h.settle(c, p)
	return h.render(c, p, nil)
}

func lastReservation(c echo.Context) *model.ReservationCookie {
	ck, err := c.Cookie(ReservationCookie)
	if err != nil {
		return nil
	}
	raw, err := url.QueryUnescape(ck.Value)
	if err != nil {
		return nil
	}
	var rc model.ReservationCookie
	if err := json.Unmarshal([]byte(raw), &rc); err != nil {
		return nil
	}
	return &rc
}
