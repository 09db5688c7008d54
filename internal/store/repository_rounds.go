package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const roundColumns = `id, room_id, server_seed, prize_pool_cents, commission_cents, client_seed, nonce, proof, result_hash, winner_user_id, started_at, completed_at, archived_at, created_at`

func scanRound(row pgx.Row) (*Round, error) {
	var r Round
	if err := row.Scan(&r.ID, &r.RoomID, &r.ServerSeed, &r.PrizePoolCents, &r.CommissionCents, &r.ClientSeed, &r.Nonce, &r.Proof, &r.ResultHash, &r.WinnerUserID, &r.StartedAt, &r.CompletedAt, &r.ArchivedAt, &r.CreatedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &r, nil
}

// CreateRoundTx inserts a fresh round with its committed server seed.
// Returns ErrSeedTaken when the seed collides with another active round and
// ErrOpenRoundExists when the room already has an open round.
func (s *Store) CreateRoundTx(ctx context.Context, tx pgx.Tx, roomID, serverSeed string) (*Round, error) {
	id := NewID()
	row := tx.QueryRow(ctx, `
		INSERT INTO rounds (id, room_id, server_seed)
		VALUES ($1,$2,$3)
		RETURNING `+roundColumns+`
	`, id, roomID, serverSeed)
	r, err := scanRound(row)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return r, nil
}

func (s *Store) GetRound(ctx context.Context, id string) (*Round, error) {
	return scanRound(s.Pool.QueryRow(ctx, `SELECT `+roundColumns+` FROM rounds WHERE id = $1`, id))
}

func (s *Store) GetOpenRoundTx(ctx context.Context, tx pgx.Tx, roomID string) (*Round, error) {
	return scanRound(tx.QueryRow(ctx, `
		SELECT `+roundColumns+` FROM rounds
		WHERE room_id = $1 AND completed_at IS NULL AND archived_at IS NULL
	`, roomID))
}

func (s *Store) GetOpenRound(ctx context.Context, roomID string) (*Round, error) {
	return scanRound(s.Pool.QueryRow(ctx, `
		SELECT `+roundColumns+` FROM rounds
		WHERE room_id = $1 AND completed_at IS NULL AND archived_at IS NULL
	`, roomID))
}

// LatestCompletedRound returns the most recently resolved round for a room,
// archived or not. Used for the cooldown clock and the public history.
func (s *Store) LatestCompletedRoundTx(ctx context.Context, tx pgx.Tx, roomID string) (*Round, error) {
	return scanRound(tx.QueryRow(ctx, `
		SELECT `+roundColumns+` FROM rounds
		WHERE room_id = $1 AND completed_at IS NOT NULL
		ORDER BY completed_at DESC
		LIMIT 1
	`, roomID))
}

// LockOpenRoundSkipLocked attempts the resolution lock. A concurrent resolver
// already holding the row makes this return (nil, false, nil) instead of
// blocking, so duplicate triggers degrade to a no-op.
func (s *Store) LockOpenRoundSkipLocked(ctx context.Context, tx pgx.Tx, roundID string) (*Round, bool, error) {
	r, err := scanRound(tx.QueryRow(ctx, `
		SELECT `+roundColumns+` FROM rounds
		WHERE id = $1 AND completed_at IS NULL AND archived_at IS NULL
		FOR UPDATE SKIP LOCKED
	`, roundID))
	if err != nil {
		if err == ErrNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return r, true, nil
}

func (s *Store) AddToPrizePoolTx(ctx context.Context, tx pgx.Tx, roundID string, deltaCents int64) error {
	tag, err := tx.Exec(ctx, `UPDATE rounds SET prize_pool_cents = prize_pool_cents + $2 WHERE id = $1`, roundID, deltaCents)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) MarkRoundStartedTx(ctx context.Context, tx pgx.Tx, roundID string) error {
	_, err := tx.Exec(ctx, `UPDATE rounds SET started_at = now() WHERE id = $1 AND started_at IS NULL`, roundID)
	return err
}

type RoundResolution struct {
	ClientSeed      string
	Nonce           string
	Proof           []byte
	ResultHash      string
	WinnerUserID    string
	CommissionCents int64
}

func (s *Store) CompleteRoundTx(ctx context.Context, tx pgx.Tx, roundID string, res RoundResolution) error {
	tag, err := tx.Exec(ctx, `
		UPDATE rounds
		SET client_seed = $2, nonce = $3, proof = $4, result_hash = $5,
		    winner_user_id = $6, commission_cents = $7, completed_at = now()
		WHERE id = $1 AND completed_at IS NULL
	`, roundID, res.ClientSeed, res.Nonce, res.Proof, res.ResultHash, res.WinnerUserID, res.CommissionCents)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ArchiveCompletedRoundsTx releases the seed-uniqueness slot of the room's
// resolved rounds so a new round can commit a seed.
func (s *Store) ArchiveCompletedRoundsTx(ctx context.Context, tx pgx.Tx, roomID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE rounds SET archived_at = now()
		WHERE room_id = $1 AND completed_at IS NOT NULL AND archived_at IS NULL
	`, roomID)
	return err
}

// ArchiveRoundTx archives a single round regardless of completion, used by
// admin cancellation.
func (s *Store) ArchiveRoundTx(ctx context.Context, tx pgx.Tx, roundID string) error {
	tag, err := tx.Exec(ctx, `UPDATE rounds SET archived_at = now() WHERE id = $1 AND archived_at IS NULL`, roundID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListCompletedRounds(ctx context.Context, roomID string, limit, offset int) ([]Round, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT `+roundColumns+` FROM rounds
		WHERE room_id = $1 AND completed_at IS NOT NULL
		ORDER BY completed_at DESC
		LIMIT $2 OFFSET $3
	`, roomID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Round{}
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}
