package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hoteler/hotel-bookings/internal/domain"
)

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// mapConstraintErr translates Postgres constraint violations into the
// domain conflict error; everything else passes through.
func mapConstraintErr(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgExclusionViolation:
			return fmt.Errorf("%w: %s", domain.ErrConflict, msg)
		}
	}
	return err
}
