package model

import "time"

// Reservation records that a user asked for a table at a restaurant at a
// given time.  Nothing checks availability or uniqueness: duplicate and
// overlapping reservations are stored as-is.
type Reservation struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	RestaurantID string    `db:"restaurant_id" json:"restaurant_id"`
	DateTime     time.Time `db:"datetime" json:"datetime"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ReservationCookie is the provisional copy of the last reservation kept in
// the browser's `reservation` cookie.  It is display-only and never read
// back into the store.
type ReservationCookie struct {
	Username     string    `json:"username"`
	Date         time.Time `json:"date"`
	RestaurantID string    `json:"restaurantId"`
}
