package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const roomColumns = `id, name, stake_cents, min_players, max_players, winner_count, fee_rate, distribution, auto_start, status, is_active, created_at`

func scanRoom(row pgx.Row) (*Room, error) {
	var r Room
	if err := row.Scan(&r.ID, &r.Name, &r.StakeCents, &r.MinPlayers, &r.MaxPlayers, &r.WinnerCount, &r.FeeRate, &r.Distribution, &r.AutoStart, &r.Status, &r.IsActive, &r.CreatedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &r, nil
}

type NewRoom struct {
	Name         string
	StakeCents   int64
	MinPlayers   int
	MaxPlayers   int
	WinnerCount  int
	FeeRate      float64
	Distribution string
	AutoStart    bool
}

func (s *Store) CreateRoom(ctx context.Context, nr NewRoom) (string, error) {
	id := NewID()
	if nr.Distribution == "" {
		nr.Distribution = DistributionEqual
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO rooms (id, name, stake_cents, min_players, max_players, winner_count, fee_rate, distribution, auto_start)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, id, nr.Name, nr.StakeCents, nr.MinPlayers, nr.MaxPlayers, nr.WinnerCount, nr.FeeRate, nr.Distribution, nr.AutoStart)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetRoom(ctx context.Context, id string) (*Room, error) {
	return scanRoom(s.Pool.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id))
}

// GetRoomForUpdateTx takes the exclusive room row lock that serializes every
// join/leave/cancel for the room.
func (s *Store) GetRoomForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*Room, error) {
	return scanRoom(tx.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1 FOR UPDATE`, id))
}

func (s *Store) ListRooms(ctx context.Context) ([]Room, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+roomColumns+` FROM rooms WHERE is_active ORDER BY stake_cents ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Room{}
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Store) SetRoomStatusTx(ctx context.Context, tx pgx.Tx, id, status string) error {
	tag, err := tx.Exec(ctx, `UPDATE rooms SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateRoom hides a room from listings. Rooms with an open round keep it
// until the round resolves or is cancelled.
func (s *Store) DeactivateRoom(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE rooms SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CountRooms(ctx context.Context) (int, error) {
	row := s.Pool.QueryRow(ctx, `SELECT COUNT(1) FROM rooms`)
	var c int
	if err := row.Scan(&c); err != nil {
		return 0, err
	}
	return c, nil
}

func (s *Store) EnsureDefaultRooms(ctx context.Context) error {
	c, err := s.CountRooms(ctx)
	if err != nil {
		return err
	}
	if c > 0 {
		return nil
	}
	defaults := []NewRoom{
		{Name: "Penny", StakeCents: 100, MinPlayers: 2, MaxPlayers: 20, WinnerCount: 1, FeeRate: 0.05, Distribution: DistributionEqual, AutoStart: true},
		{Name: "Silver", StakeCents: 1000, MinPlayers: 3, MaxPlayers: 50, WinnerCount: 3, FeeRate: 0.05, Distribution: DistributionWeighted, AutoStart: true},
		{Name: "Gold", StakeCents: 5000, MinPlayers: 5, MaxPlayers: 100, WinnerCount: 5, FeeRate: 0.03, Distribution: DistributionWeighted, AutoStart: true},
	}
	for _, nr := range defaults {
		if _, err := s.CreateRoom(ctx, nr); err != nil {
			return err
		}
	}
	return nil
}
