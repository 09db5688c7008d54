package store

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// mapUniqueViolation turns a pg unique-constraint failure into a typed store
// error based on the constraint that fired, so callers never match on driver
// error codes themselves.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "uq_rounds_active_seed":
		return ErrSeedTaken
	case "uq_rounds_open_per_room":
		return ErrOpenRoundExists
	default:
		return ErrDuplicateKey
	}
}
