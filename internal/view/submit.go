package view

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

type SubmitStatus string

const (
	SubmitIdle       SubmitStatus = "idle"
	SubmitSubmitting SubmitStatus = "submitting"
	SubmitSubmitted  SubmitStatus = "submitted"
	SubmitError      SubmitStatus = "error"
)

// Outcome is what a form submission renders.  On error the submitted
// values are echoed back in Form so the user does not lose them.
type Outcome[Out any] struct {
	Status          SubmitStatus `json:"status"`
	Message         string       `json:"message,omitempty"`
	Redirect        string       `json:"redirect,omitempty"`
	RedirectAfterMS int64        `json:"redirect_after_ms,omitempty"`
	Item            *Out         `json:"item,omitempty"`
	Error           string       `json:"error,omitempty"`
	Form            any          `json:"form,omitempty"`

	rejected bool
	err      error
}

// Rejected reports whether the submission failed before the write ran.
func (o Outcome[Out]) Rejected() bool { return o.rejected }

// Err is the failure behind an error outcome, nil otherwise.
func (o Outcome[Out]) Err() error { return o.err }

// Submitter runs a form submission: required-field validation, an
// optional Check, then exactly one Write.  Nothing stops a second Submit
// from writing again.
type Submitter[In, Out any] struct {
	Validate      *validator.Validate
	Check         func(In) error
	Write         func(context.Context, In) (Out, error)
	Message       string
	Redirect      string
	RedirectAfter time.Duration

	mu     sync.Mutex
	status SubmitStatus
}

func (s *Submitter[In, Out]) Status() SubmitStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == "" {
		return SubmitIdle
	}
	return s.status
}

func (s *Submitter[In, Out]) set(st SubmitStatus) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// Submit validates in and, if it passes, performs the write.
func (s *Submitter[In, Out]) Submit(ctx context.Context, in In) Outcome[Out] {
	s.set(SubmitSubmitting)

	if s.Validate != nil {
		if err := s.Validate.Struct(in); err != nil {
			return s.failed(err, ValidationMessage(err), in, true)
		}
	}
	if s.Check != nil {
		if err := s.Check(in); err != nil {
			return s.failed(err, Message(err), in, true)
		}
	}

	out, err := s.Write(ctx, in)
	if err != nil {
		return s.failed(err, Message(err), in, false)
	}

	s.set(SubmitSubmitted)
	return Outcome[Out]{
		Status:          SubmitSubmitted,
		Message:         s.Message,
		Redirect:        s.Redirect,
		RedirectAfterMS: s.RedirectAfter.Milliseconds(),
		Item:            &out,
	}
}

func (s *Submitter[In, Out]) failed(err error, msg string, in In, rejected bool) Outcome[Out] {
	s.set(SubmitError)
	return Outcome[Out]{Status: SubmitError, Error: msg, Form: in, rejected: rejected, err: err}
}
