package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const participantColumns = `id, round_id, user_id, stake_cents, is_winner, position, won_cents, joined_at`

func scanParticipant(row pgx.Row) (*Participant, error) {
	var p Participant
	if err := row.Scan(&p.ID, &p.RoundID, &p.UserID, &p.StakeCents, &p.IsWinner, &p.Position, &p.WonCents, &p.JoinedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}

func (s *Store) InsertParticipantTx(ctx context.Context, tx pgx.Tx, roundID, userID string, stakeCents int64) (*Participant, error) {
	id := NewID()
	row := tx.QueryRow(ctx, `
		INSERT INTO participants (id, round_id, user_id, stake_cents)
		VALUES ($1,$2,$3,$4)
		RETURNING `+participantColumns+`
	`, id, roundID, userID, stakeCents)
	p, err := scanParticipant(row)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return p, nil
}

func (s *Store) GetParticipantTx(ctx context.Context, tx pgx.Tx, roundID, userID string) (*Participant, error) {
	return scanParticipant(tx.QueryRow(ctx, `
		SELECT `+participantColumns+` FROM participants WHERE round_id = $1 AND user_id = $2
	`, roundID, userID))
}

func (s *Store) DeleteParticipantTx(ctx context.Context, tx pgx.Tx, roundID, userID string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM participants WHERE round_id = $1 AND user_id = $2`, roundID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CountParticipantsTx(ctx context.Context, tx pgx.Tx, roundID string) (int, error) {
	row := tx.QueryRow(ctx, `SELECT COUNT(1) FROM participants WHERE round_id = $1`, roundID)
	var c int
	if err := row.Scan(&c); err != nil {
		return 0, err
	}
	return c, nil
}

func (s *Store) CountParticipants(ctx context.Context, roundID string) (int, error) {
	row := s.Pool.QueryRow(ctx, `SELECT COUNT(1) FROM participants WHERE round_id = $1`, roundID)
	var c int
	if err := row.Scan(&c); err != nil {
		return 0, err
	}
	return c, nil
}

// ListParticipantsTx returns the round's participants in join order. The
// fairness digest depends on this ordering being stable, so ties on join
// time fall back to the row id.
func (s *Store) ListParticipantsTx(ctx context.Context, tx pgx.Tx, roundID string) ([]Participant, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+participantColumns+` FROM participants
		WHERE round_id = $1
		ORDER BY joined_at ASC, id ASC
	`, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectParticipants(rows)
}

func (s *Store) ListParticipants(ctx context.Context, roundID string) ([]Participant, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+participantColumns+` FROM participants
		WHERE round_id = $1
		ORDER BY joined_at ASC, id ASC
	`, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectParticipants(rows)
}

func collectParticipants(rows pgx.Rows) ([]Participant, error) {
	out := []Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Store) MarkParticipantWinnerTx(ctx context.Context, tx pgx.Tx, roundID, userID string, position int, wonCents int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE participants SET is_winner = true, position = $3, won_cents = $4
		WHERE round_id = $1 AND user_id = $2
	`, roundID, userID, position, wonCents)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) InsertWinnerTx(ctx context.Context, tx pgx.Tx, roundID, userID string, position int, prizeCents int64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO winners (id, round_id, user_id, position, prize_cents)
		VALUES ($1,$2,$3,$4,$5)
	`, NewID(), roundID, userID, position, prizeCents)
	return mapUniqueViolation(err)
}

func (s *Store) ListWinners(ctx context.Context, roundID string) ([]Winner, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, round_id, user_id, position, prize_cents, created_at
		FROM winners WHERE round_id = $1 ORDER BY position ASC
	`, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Winner{}
	for rows.Next() {
		var w Winner
		if err := rows.Scan(&w.ID, &w.RoundID, &w.UserID, &w.Position, &w.PrizeCents, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
