package model

import "time"

// Review is a user's write-up of a restaurant.  Reviews are created by a
// direct insert and have no edit or delete path.  Username carries the
// reviewer's email as seen in the session at submit time.
type Review struct {
	ID           string    `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Content      string    `db:"content" json:"content"`
	Username     string    `db:"username" json:"username"`
	RestaurantID string    `db:"restaurant_id" json:"restaurant_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
