package store

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUnavailable indicates the data store could not be reached.
var ErrUnavailable = errors.New("store unavailable")

// IsConstraintViolation reports whether err is a Postgres integrity
// constraint violation (SQLSTATE class 23).
func IsConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "23")
	}
	return false
}

// IsUnavailable reports whether err stems from a connectivity failure rather
// than a rejected statement.
func IsUnavailable(err error) bool {
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}
