// Package repository is the application's view of the external store: one
// repo per table over database/sql.  The sentinel values below let handlers
// tell "nothing there" apart from store failures.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrInvalidRecord is returned when a row read from the store does not
// match the expected record shape (for example an id that is not a UUID
// or a NULL in a required column).
var ErrInvalidRecord = errors.New("invalid record")

// ErrRestaurantNotFound is returned when no restaurant has the given id.
var ErrRestaurantNotFound = errors.New("restaurant not found")

// ErrEmailExists is returned when signing up with an email that is
// already registered.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateKey reports whether err is MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
