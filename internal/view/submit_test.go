package view

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daikitazaki/foodswho/internal/model"
)

type reviewForm struct {
	Title        string `json:"title" validate:"required"`
	Content      string `json:"content" validate:"required"`
	RestaurantID string `json:"restaurant_id" validate:"required"`
}

func TestSubmit_ValidationRunsBeforeWrite(t *testing.T) {
	writes := 0
	s := &Submitter[reviewForm, string]{
		Validate: NewValidator(),
		Write: func(context.Context, reviewForm) (string, error) {
			writes++
			return "ok", nil
		},
	}

	out := s.Submit(context.Background(), reviewForm{Content: "Fresh fish", RestaurantID: "r-1"})
	assert.Equal(t, SubmitError, out.Status)
	assert.Equal(t, "title is required", out.Error)
	assert.Equal(t, reviewForm{Content: "Fresh fish", RestaurantID: "r-1"}, out.Form)
	assert.Zero(t, writes)
	assert.True(t, out.Rejected())
	assert.Equal(t, SubmitError, s.Status())

	out = s.Submit(context.Background(), reviewForm{})
	assert.Equal(t, "title is required; content is required; restaurant_id is required", out.Error)
	assert.Zero(t, writes)
}

func TestSubmit_CheckRunsBeforeWrite(t *testing.T) {
	writes := 0
	s := &Submitter[reviewForm, string]{
		Check: func(reviewForm) error { return errors.New("Please select a reservation date and time.") },
		Write: func(context.Context, reviewForm) (string, error) { writes++; return "", nil },
	}
	out := s.Submit(context.Background(), reviewForm{})
	assert.Equal(t, "Please select a reservation date and time.", out.Error)
	assert.Zero(t, writes)
}

func TestSubmit_SuccessCarriesNavigation(t *testing.T) {
	s := &Submitter[reviewForm, model.Restaurant]{
		Validate: NewValidator(),
		Write: func(_ context.Context, in reviewForm) (model.Restaurant, error) {
			return model.Restaurant{ID: "r-9", Name: in.Title}, nil
		},
		Message:       "Restaurant registered!",
		Redirect:      "/",
		RedirectAfter: 2 * time.Second,
	}
	assert.Equal(t, SubmitIdle, s.Status())

	out := s.Submit(context.Background(), reviewForm{Title: "a", Content: "b", RestaurantID: "c"})
	assert.Equal(t, SubmitSubmitted, out.Status)
	assert.Equal(t, "Restaurant registered!", out.Message)
	assert.Equal(t, "/", out.Redirect)
	assert.EqualValues(t, 2000, out.RedirectAfterMS)
	require.NotNil(t, out.Item)
	assert.Equal(t, "r-9", out.Item.ID)
	assert.Nil(t, out.Form)
}

func TestSubmit_WriteErrorIsVerbatimAndFormPreserved(t *testing.T) {
	s := &Submitter[reviewForm, string]{
		Validate: NewValidator(),
		Write: func(context.Context, reviewForm) (string, error) {
			return "", errors.New(`insert or update on table "reviews" violates foreign key constraint`)
		},
	}
	in := reviewForm{Title: "t", Content: "c", RestaurantID: "missing"}
	out := s.Submit(context.Background(), in)
	assert.Equal(t, SubmitError, out.Status)
	assert.Equal(t, `insert or update on table "reviews" violates foreign key constraint`, out.Error)
	assert.Equal(t, in, out.Form)
	assert.False(t, out.Rejected())
	assert.EqualError(t, out.Err(), out.Error)
}

func TestSubmit_DoubleSubmitWritesTwice(t *testing.T) {
	writes := 0
	s := &Submitter[reviewForm, int]{
		Validate: NewValidator(),
		Write: func(context.Context, reviewForm) (int, error) {
			writes++
			return writes, nil
		},
	}
	in := reviewForm{Title: "t", Content: "c", RestaurantID: "r"}
	first := s.Submit(context.Background(), in)
	second := s.Submit(context.Background(), in)

	assert.Equal(t, 2, writes)
	assert.Equal(t, 1, *first.Item)
	assert.Equal(t, 2, *second.Item)
}

func TestSubmit_RetryAfterError(t *testing.T) {
	fail := true
	s := &Submitter[reviewForm, string]{
		Write: func(context.Context, reviewForm) (string, error) {
			if fail {
				return "", errors.New("network down")
			}
			return "ok", nil
		},
	}
	assert.Equal(t, SubmitError, s.Submit(context.Background(), reviewForm{}).Status)
	fail = false
	assert.Equal(t, SubmitSubmitted, s.Submit(context.Background(), reviewForm{}).Status)
}
