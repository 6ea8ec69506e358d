package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/daikitazaki/foodswho/internal/model"
)

// ReviewRepo reads and inserts rows of the reviews table.
type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// ReviewQuery narrows List to one restaurant and/or caps the row count.
type ReviewQuery struct {
	RestaurantID string
	Limit        int
}

// List returns reviews newest first.
func (r *ReviewRepo) List(ctx context.Context, q ReviewQuery) ([]model.Review, error) {
	stmt := "SELECT id, title, content, username, restaurant_id, created_at FROM reviews"
	args := []any{}
	if q.RestaurantID != "" {
		stmt += " WHERE restaurant_id = ?"
		args = append(args, q.RestaurantID)
	}
	stmt += " ORDER BY created_at DESC, id"
	if q.Limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Review, 0)
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.Title, &rv.Content, &rv.Username, &rv.RestaurantID, &rv.CreatedAt); err != nil {
			return nil, err
		}
		if _, err := uuid.Parse(rv.ID); err != nil {
			return nil, fmt.Errorf("%w: review id %q", ErrInvalidRecord, rv.ID)
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts the review exactly as given.  Calling it twice with the
// same values stores two reviews.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	rv.ID = uuid.NewString()
	rv.CreatedAt = time.Now().UTC().Truncate(time.Second)
	const q = `INSERT INTO reviews (id, title, content, username, restaurant_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, rv.ID, rv.Title, rv.Content, rv.Username, rv.RestaurantID, rv.CreatedAt)
	return err
}
