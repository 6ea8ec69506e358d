// Package view drives the data lifecycle of a single page visit.
//
// A page owns a Controller and one Slot per piece of data it shows.  Each
// slot is fetched at most once, concurrently with the others, and moves
// idle -> loading -> success|error.  Success and error are terminal: a
// slot is never refetched, retried or reset during the controller's
// lifetime.  Mutations go through a Submitter instead.
package view

import (
	"encoding/json"
	"sync"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is the JSON snapshot of a slot.
type State[T any] struct {
	Status Status `json:"status"`
	Data   T      `json:"data"`
	Error  string `json:"error,omitempty"`
}

// Slot holds one piece of per-page state.  The zero Slot is not usable;
// build one with NewSlot.
type Slot[T any] struct {
	name  string
	empty T

	mu    sync.Mutex
	state State[T]
}

// NewSlot returns an idle slot whose data starts at (and on failure stays
// at) empty.
func NewSlot[T any](name string, empty T) *Slot[T] {
	return &Slot[T]{name: name, empty: empty, state: State[T]{Status: StatusIdle, Data: empty}}
}

func (s *Slot[T]) Name() string { return s.name }

// State returns a copy of the current snapshot.
func (s *Slot[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Slot[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.State())
}

// begin moves idle to loading.  It reports false for any other status.
func (s *Slot[T]) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status != StatusIdle {
		return false
	}
	s.state.Status = StatusLoading
	return true
}

func (s *Slot[T]) succeed(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status != StatusLoading {
		return
	}
	s.state = State[T]{Status: StatusSuccess, Data: v}
}

func (s *Slot[T]) fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status != StatusLoading {
		return
	}
	s.state = State[T]{Status: StatusError, Data: s.empty, Error: msg}
}
