// Package queue defines the activity events exchanged over RabbitMQ and
// the background consumer that records them.
package queue

import "time"

// Queue names. Each event type has its own durable queue.
const (
	ReviewCreatedQueue      = "review.created"
	ReservationCreatedQueue = "reservation.created"
)

// ReviewCreatedEvent is published after a review row was inserted.
type ReviewCreatedEvent struct {
	ReviewID     string    `json:"review_id"`
	RestaurantID string    `json:"restaurant_id"`
	Username     string    `json:"username"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReservationCreatedEvent is published after a reservation row was inserted.
type ReservationCreatedEvent struct {
	ReservationID string    `json:"reservation_id"`
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	RestaurantID  string    `json:"restaurant_id"`
	DateTime      time.Time `json:"datetime"`
	CreatedAt     time.Time `json:"created_at"`
}
