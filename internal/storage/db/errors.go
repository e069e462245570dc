package db

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a lookup by id matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned on a unique constraint violation.
	ErrDuplicate = errors.New("duplicate record")
	// ErrUnavailable marks failures to reach the database at all.
	ErrUnavailable = errors.New("database unavailable")
	// ErrOutOfRange is returned when a value does not fit its column, such
	// as stock overflowing INTEGER.
	ErrOutOfRange = errors.New("numeric value out of range")
)

const (
	uniqueViolationCode   = "23505"
	numericOutOfRangeCode = "22003"
)

// Classify joins err with the matching sentinel above so callers can use
// errors.Is without importing pgx.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errors.Join(ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return errors.Join(ErrDuplicate, err)
		case numericOutOfRangeCode:
			return errors.Join(ErrOutOfRange, err)
		}
		return err
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connectErr) ||
		errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		pgconn.Timeout(err) {
		return errors.Join(ErrUnavailable, err)
	}

	return err
}
