package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/daikitazaki/foodswho/internal/middleware"
	"github.com/daikitazaki/foodswho/internal/model"
	"github.com/daikitazaki/foodswho/internal/repository"
	"github.com/daikitazaki/foodswho/internal/service"
	"github.com/daikitazaki/foodswho/internal/utils"
)

type fakeRestaurants struct {
	mu      sync.Mutex
	items   []model.Restaurant
	err     error
	block   chan struct{}
	queries []repository.RestaurantQuery
	created []model.Restaurant
}

func (f *fakeRestaurants) List(_ context.Context, q repository.RestaurantQuery) ([]model.Restaurant, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Restaurant{}, f.items...), nil
}

func (f *fakeRestaurants) GetByID(_ context.Context, id string) (*model.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.items {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, repository.ErrRestaurantNotFound
}

func (f *fakeRestaurants) Create(_ context.Context, r *model.Restaurant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	r.ID = "r-new"
	f.created = append(f.created, *r)
	return nil
}

type fakeReviews struct {
	mu      sync.Mutex
	items   []model.Review
	err     error
	created []model.Review
}

func (f *fakeReviews) List(_ context.Context, q repository.ReviewQuery) ([]model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Review{}
	for _, rv := range f.items {
		if q.RestaurantID == "" || rv.RestaurantID == q.RestaurantID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (f *fakeReviews) Create(_ context.Context, rv *model.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	rv.ID = "rv-new"
	f.created = append(f.created, *rv)
	return nil
}

type fakeReservations struct {
	mu      sync.Mutex
	created []model.Reservation
}

func (f *fakeReservations) Create(_ context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	res.ID = "res-" + string(rune('a'+len(f.created)))
	f.created = append(f.created, *res)
	return nil
}

func (f *fakeReservations) ListByUser(_ context.Context, userID string) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Reservation{}
	for _, r := range f.created {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeSessions hands out the token "tok-<email>" for the password
// "hunter22".
type fakeSessions struct {
	mu        sync.Mutex
	live      map[string]*model.User
	signUpErr error
	signedUp  []string
}

func newFakeSessions() *fakeSessions { return &fakeSessions{live: map[string]*model.User{}} }

func (f *fakeSessions) SignUp(_ context.Context, email, _ string) (model.User, error) {
	if f.signUpErr != nil {
		return model.User{}, f.signUpErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedUp = append(f.signedUp, email)
	return model.User{ID: "u-new", Email: email}, nil
}

func (f *fakeSessions) SignIn(_ context.Context, email, password string) (service.Session, error) {
	if password != "hunter22" {
		return service.Session{}, service.ErrInvalidCredentials
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &model.User{ID: "u-1", Email: email}
	tok := "tok-" + email
	f.live[tok] = u
	return service.Session{
		User:    *u,
		Access:  utils.AccessToken{Token: tok, Exp: time.Now().Add(time.Hour)},
		Refresh: utils.RefreshToken{Raw: "refresh-" + email, Exp: time.Now().Add(24 * time.Hour)},
	}, nil
}

func (f *fakeSessions) SignOut(_ context.Context, access, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, access)
	return nil
}

func (f *fakeSessions) Current(_ context.Context, access string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live[access], nil
}

func (f *fakeSessions) Refresh(context.Context, string) (service.Session, error) {
	return service.Session{}, service.ErrInvalidRefreshToken
}

type fakeEvents struct {
	mu           sync.Mutex
	reviews      []model.Review
	reservations []model.Reservation
}

func (f *fakeEvents) ReviewCreated(_ context.Context, rv model.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews = append(f.reviews, rv)
	return nil
}

func (f *fakeEvents) ReservationCreated(_ context.Context, res model.Reservation, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reservations = append(f.reservations, res)
	return nil
}

type testApp struct {
	e            *echo.Echo
	restaurants  *fakeRestaurants
	reviews      *fakeReviews
	reservations *fakeReservations
	sessions     *fakeSessions
	events       *fakeEvents
}

func newTestApp(t *testing.T, wait time.Duration) *testApp {
	t.Helper()
	log := zaptest.NewLogger(t)
	a := &testApp{
		e:            echo.New(),
		restaurants:  &fakeRestaurants{},
		reviews:      &fakeReviews{},
		reservations: &fakeReservations{},
		sessions:     newFakeSessions(),
		events:       &fakeEvents{},
	}
	v := NewValidator()
	a.e.Validator = v

	pages := NewPageHandler(a.restaurants, a.reviews, a.sessions, wait, log)
	auth := NewAuthHandler(a.sessions, v.V, false, log)
	requireAuth := middleware.JWTAuth(a.sessions, log)

	a.e.GET("/bbb", LegacyRedirect)
	a.e.GET("/v1/pages/home", pages.Home)
	a.e.GET("/v1/pages/restaurants/:id", pages.Restaurant)
	a.e.GET("/v1/pages/search", pages.Search)
	a.e.GET("/v1/pages/reviews", pages.AllReviews)
	a.e.GET("/v1/pages/reserve/:id", pages.Reserve)
	a.e.GET("/v1/pages/session", pages.Session)
	a.e.POST("/v1/auth/register", auth.Register)
	a.e.POST("/v1/auth/login", auth.Login)
	a.e.POST("/v1/auth/logout", auth.Logout)
	a.e.POST("/v1/auth/refresh", auth.Refresh)
	a.e.GET("/v1/auth/session", auth.Current)
	a.e.POST("/v1/restaurants", NewRestaurantHandler(a.restaurants, v.V).Create)
	a.e.POST("/v1/reviews", NewReviewHandler(a.reviews, a.events, v.V).Create, requireAuth)
	res := NewReservationHandler(a.reservations, a.events, v.V)
	a.e.POST("/v1/restaurants/:id/reservations", res.Create, requireAuth)
	a.e.GET("/v1/my-reservations", res.Mine, requireAuth)
	return a
}

func (a *testApp) do(method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) doWithCookie(method, path string, ck *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// decode turns a JSON response into nested maps.
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func slot(t *testing.T, body map[string]any, name string) map[string]any {
	t.Helper()
	slots, ok := body["slots"].(map[string]any)
	require.True(t, ok, "no slots in %v", body)
	s, ok := slots[name].(map[string]any)
	require.True(t, ok, "no slot %q in %v", name, slots)
	return s
}
