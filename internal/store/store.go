package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrSeedTaken is returned when a round insert hits the active-seed
	// uniqueness index. Callers treat it as a seed collision.
	ErrSeedTaken = errors.New("server seed already active")
	// ErrOpenRoundExists is returned when a round insert hits the
	// one-open-round-per-room index.
	ErrOpenRoundExists = errors.New("open round already exists for room")
	// ErrDuplicateKey is returned for any other unique violation.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Store wraps DB access. Postgres is the single serialization point for all
// financial state; nothing balance-related is cached in process.
type Store struct {
	Pool *pgxpool.Pool
}

func New(dsn string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}

// WithTx runs fn inside a transaction. Any error (or panic unwind) rolls the
// whole transaction back; fn must not commit or roll back itself.
func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
