package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateUser(ctx context.Context, username string, initialCents int64) (string, error) {
	id := NewID()
	_, err := s.Pool.Exec(ctx, `INSERT INTO users (id, username, balance_cents) VALUES ($1,$2,$3)`, id, username, initialCents)
	if err != nil {
		return "", mapUniqueViolation(err)
	}
	return id, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	row := s.Pool.QueryRow(ctx, `SELECT id, username, balance_cents, created_at, updated_at FROM users WHERE id = $1`, id)
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.BalanceCents, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.Pool.QueryRow(ctx, `SELECT id, username, balance_cents, created_at, updated_at FROM users WHERE username = $1`, username)
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.BalanceCents, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &u, nil
}

func (s *Store) GetBalance(ctx context.Context, userID string) (int64, error) {
	row := s.Pool.QueryRow(ctx, `SELECT balance_cents FROM users WHERE id = $1`, userID)
	var bal int64
	if err := row.Scan(&bal); err != nil {
		return 0, mapNotFound(err)
	}
	return bal, nil
}

// DeductStakeTx performs the atomic check-and-deduct: one conditional update
// that only fires while the balance covers the stake. It reports whether a
// row was affected; zero rows means insufficient funds. Splitting this into
// a read followed by a write would reopen the concurrent-overdraw race.
func (s *Store) DeductStakeTx(ctx context.Context, tx pgx.Tx, userID string, stakeCents int64) (bool, int64, error) {
	row := tx.QueryRow(ctx, `
		UPDATE users
		SET balance_cents = balance_cents - $2, updated_at = now()
		WHERE id = $1 AND balance_cents >= $2
		RETURNING balance_cents
	`, userID, stakeCents)
	var newBal int64
	if err := row.Scan(&newBal); err != nil {
		if mapNotFound(err) == ErrNotFound {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, newBal, nil
}

// CreditBalanceTx locks the user row and credits it, returning the balance
// after the credit.
func (s *Store) CreditBalanceTx(ctx context.Context, tx pgx.Tx, userID string, amountCents int64) (int64, error) {
	row := tx.QueryRow(ctx, `
		UPDATE users
		SET balance_cents = balance_cents + $2, updated_at = now()
		WHERE id = $1
		RETURNING balance_cents
	`, userID, amountCents)
	var newBal int64
	if err := row.Scan(&newBal); err != nil {
		return 0, mapNotFound(err)
	}
	return newBal, nil
}

// Topup credits a user outside of round flow and records the transaction.
func (s *Store) Topup(ctx context.Context, userID string, amountCents int64) (int64, error) {
	var newBal int64
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		bal, err := s.CreditBalanceTx(ctx, tx, userID, amountCents)
		if err != nil {
			return err
		}
		newBal = bal
		_, err = s.InsertTransactionTx(ctx, tx, userID, TxTopup, amountCents, "", "admin topup")
		return err
	})
	if err != nil {
		return 0, err
	}
	return newBal, nil
}

func (s *Store) LockUserTx(ctx context.Context, tx pgx.Tx, userID string) (int64, error) {
	row := tx.QueryRow(ctx, `SELECT balance_cents FROM users WHERE id = $1 FOR UPDATE`, userID)
	var bal int64
	if err := row.Scan(&bal); err != nil {
		return 0, mapNotFound(err)
	}
	return bal, nil
}
