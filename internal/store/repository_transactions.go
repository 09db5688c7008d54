package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// InsertTransactionTx appends to the transaction log. Entries are immutable;
// nothing in the codebase updates them apart from SettlePendingTransactions.
func (s *Store) InsertTransactionTx(ctx context.Context, tx pgx.Tx, userID, kind string, amountCents int64, roundID, description string) (string, error) {
	id := NewID()
	var ref *string
	if roundID != "" {
		ref = &roundID
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO transactions (id, user_id, kind, amount_cents, round_id, description)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, id, userID, kind, amountCents, ref, description)
	return id, err
}

func (s *Store) ListTransactionsByUser(ctx context.Context, userID string, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, user_id, kind, amount_cents, status, round_id, description, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Transaction{}
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Kind, &t.AmountCents, &t.Status, &t.RoundID, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) ListTransactionsByRound(ctx context.Context, roundID string) ([]Transaction, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, user_id, kind, amount_cents, status, round_id, description, created_at
		FROM transactions
		WHERE round_id = $1
		ORDER BY created_at ASC
	`, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Transaction{}
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Kind, &t.AmountCents, &t.Status, &t.RoundID, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SettlePendingTransactions flips pending entries to settled. The only status
// transition the log permits.
func (s *Store) SettlePendingTransactions(ctx context.Context, roundID string) error {
	_, err := s.Pool.Exec(ctx, `UPDATE transactions SET status = 'settled' WHERE round_id = $1 AND status = 'pending'`, roundID)
	return err
}
