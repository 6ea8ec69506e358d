package model

import "time"

// Restaurant represents a row in the `restaurants` table.  Restaurants are
// read-only from the browsing pages; the only write path is the
// registration form, which fills name, description and image URL.
//
// Fields:
//  ID          – opaque UUID identifier.
//  Name        – display name, matched by search.
//  Description – free text shown on list and detail pages.
//  ImageURL    – picture shown on the detail page.
//  Rating      – average rating, NULL until someone sets it.
//  Address     – street address (nullable).
//  Phone       – phone number (nullable).
//  Category    – cuisine category such as 和食 (nullable), matched by equality.
//  CreatedAt   – timestamp of creation.
type Restaurant struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	ImageURL    string    `db:"image_url" json:"image_url"`
	Rating      *float64  `db:"rating" json:"rating"`
	Address     *string   `db:"address" json:"address"`
	Phone       *string   `db:"phone" json:"phone"`
	Category    *string   `db:"category" json:"category"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
