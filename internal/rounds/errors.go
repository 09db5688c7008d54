package rounds

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("invalid_request")
	ErrRoomNotFound      = errors.New("room_not_found")
	ErrRoomClosed        = errors.New("room_closed")
	ErrRoomResetting     = errors.New("room_resetting")
	ErrRoomFull          = errors.New("room_full")
	ErrRoundInProgress   = errors.New("round_in_progress")
	ErrRoomNotWaiting    = errors.New("room_not_waiting")
	ErrNotParticipant    = errors.New("not_a_participant")
	ErrInsufficientFunds = errors.New("insufficient_funds")
	// ErrSeedCollision means a freshly generated server seed collided twice
	// in a row. Either the generator is broken or someone is probing; never
	// proceed on a stale seed.
	ErrSeedCollision = errors.New("seed_collision")
	ErrNoParticipants = errors.New("no_participants")
)

// CooldownError rejects a join while the room's post-round cooldown is
// running. RemainingSeconds is computed server-side; clients never supply it.
type CooldownError struct {
	RemainingSeconds int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown_active: %ds remaining", e.RemainingSeconds)
}
