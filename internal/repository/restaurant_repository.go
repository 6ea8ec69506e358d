package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daikitazaki/foodswho/internal/model"
)

const restaurantColumns = "id, name, description, image_url, rating, address, phone, category, created_at"

// RestaurantRepo encapsulates all queries against the restaurants table.
type RestaurantRepo struct {
	db *sql.DB
}

// NewRestaurantRepo constructs a RestaurantRepo with the provided DB handle.
func NewRestaurantRepo(db *sql.DB) *RestaurantRepo {
	return &RestaurantRepo{db: db}
}

// List runs a select-all or a filtered select depending on which fields
// of q are set.  An empty result is an empty slice, never an error.
func (r *RestaurantRepo) List(ctx context.Context, q RestaurantQuery) ([]model.Restaurant, error) {
	cond, args := q.where()
	stmt := "SELECT " + restaurantColumns + " FROM restaurants"
	if cond != "" {
		stmt += " WHERE " + cond
	}
	stmt += q.orderBy()
	if q.Limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Restaurant, 0)
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rest)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches a single restaurant.  It returns ErrRestaurantNotFound
// when the id is unknown (or not even a UUID).
func (r *RestaurantRepo) GetByID(ctx context.Context, id string) (*model.Restaurant, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrRestaurantNotFound
	}
	row := r.db.QueryRowContext(ctx, "SELECT "+restaurantColumns+" FROM restaurants WHERE id = ?", id)
	rest, err := scanRestaurant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	return &rest, nil
}

// Create inserts the literal name, description and image URL.  The id and
// creation time are assigned here and written back into rest.
func (r *RestaurantRepo) Create(ctx context.Context, rest *model.Restaurant) error {
	rest.ID = uuid.NewString()
	rest.CreatedAt = time.Now().UTC().Truncate(time.Second)
	const q = "INSERT INTO restaurants (id, name, description, image_url, created_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, q, rest.ID, rest.Name, rest.Description, rest.ImageURL, rest.CreatedAt); err != nil {
		return err
	}
	return nil
}

// scanRestaurant parses one row at the fetch boundary.  Nullable columns
// become nil pointers; an id that is not a UUID is rejected.
func scanRestaurant(s scanner) (model.Restaurant, error) {
	var (
		rest     model.Restaurant
		desc     sql.NullString
		imageURL sql.NullString
		rating   sql.NullFloat64
		address  sql.NullString
		phone    sql.NullString
		category sql.NullString
	)
	if err := s.Scan(&rest.ID, &rest.Name, &desc, &imageURL, &rating, &address, &phone, &category, &rest.CreatedAt); err != nil {
		return model.Restaurant{}, err
	}
	if _, err := uuid.Parse(rest.ID); err != nil {
		return model.Restaurant{}, fmt.Errorf("%w: restaurant id %q", ErrInvalidRecord, rest.ID)
	}
	if strings.TrimSpace(rest.Name) == "" {
		return model.Restaurant{}, fmt.Errorf("%w: restaurant %s has no name", ErrInvalidRecord, rest.ID)
	}
	rest.Description = desc.String
	rest.ImageURL = imageURL.String
	if rating.Valid {
		v := rating.Float64
		rest.Rating = &v
	}
	rest.Address = nullable(address)
	rest.Phone = nullable(phone)
	rest.Category = nullable(category)
	return rest, nil
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
