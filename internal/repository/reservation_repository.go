package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/daikitazaki/foodswho/internal/model"
)

// ReservationRepo inserts and lists reservations.  There is deliberately no
// availability query: the store accepts any number of reservations for the
// same restaurant and time.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// Create inserts one row per call.  DateTime is stored in UTC.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	res.ID = uuid.NewString()
	res.DateTime = res.DateTime.UTC()
	res.CreatedAt = time.Now().UTC().Truncate(time.Second)
	const q = `INSERT INTO reservations (id, user_id, restaurant_id, datetime, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, res.ID, res.UserID, res.RestaurantID, res.DateTime, res.CreatedAt)
	return err
}

// ListByUser returns the user's reservations ordered by reservation time.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID string) ([]model.Reservation, error) {
	const q = `SELECT id, user_id, restaurant_id, datetime, created_at
	           FROM reservations WHERE user_id = ? ORDER BY datetime, id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.UserID, &res.RestaurantID, &res.DateTime, &res.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
