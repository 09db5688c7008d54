package store

import "context"

// InsertJoinRequest records an idempotency key before its operation runs.
// Returns false when the key already exists, meaning the operation must not
// execute again; the caller replays the stored outcome instead.
func (s *Store) InsertJoinRequest(ctx context.Context, key, userID, roomID, operation string) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `
		INSERT INTO join_requests (request_key, user_id, room_id, operation)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (request_key) DO NOTHING
	`, key, userID, roomID, operation)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) SaveJoinRequestOutcome(ctx context.Context, key string, outcome []byte) error {
	_, err := s.Pool.Exec(ctx, `UPDATE join_requests SET outcome = $2 WHERE request_key = $1`, key, outcome)
	return err
}

// DeleteJoinRequest releases a key whose operation failed, so the client's
// retry with the same key can run.
func (s *Store) DeleteJoinRequest(ctx context.Context, key string) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM join_requests WHERE request_key = $1`, key)
	return err
}

func (s *Store) GetJoinRequest(ctx context.Context, key string) (*JoinRequest, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT request_key, user_id, room_id, operation, outcome, created_at
		FROM join_requests WHERE request_key = $1
	`, key)
	var jr JoinRequest
	if err := row.Scan(&jr.RequestKey, &jr.UserID, &jr.RoomID, &jr.Operation, &jr.Outcome, &jr.CreatedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &jr, nil
}
