package public

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid_request")
	ErrRoomNotFound     = errors.New("room_not_found")
	ErrRoundNotFound    = errors.New("round_not_found")
	ErrRoundNotComplete = errors.New("round_not_complete")
	ErrUserNotFound     = errors.New("user_not_found")
)
