package rounds

import (
	"math"
	"sync"
	"time"

	"lotto-rooms/internal/store"
)

// StateMachine gates which ledger operations are legal in which room state.
//
// The persisted statuses are waiting, active and completed. "Resetting" is a
// purely signaled transitional state: it exists to close the window where a
// room could appear joinable mid-transition, and is never written to the
// database.
type StateMachine struct {
	cooldown time.Duration

	mu        sync.Mutex
	resetting map[string]time.Time
}

func NewStateMachine(cooldown time.Duration) *StateMachine {
	return &StateMachine{
		cooldown:  cooldown,
		resetting: map[string]time.Time{},
	}
}

func (m *StateMachine) Cooldown() time.Duration { return m.cooldown }

// ValidTransition reports whether a persisted status change is part of the
// room lifecycle cycle.
func (m *StateMachine) ValidTransition(from, to string) bool {
	switch from {
	case store.RoomWaiting:
		return to == store.RoomActive
	case store.RoomActive:
		return to == store.RoomCompleted
	case store.RoomCompleted:
		return to == store.RoomWaiting || to == store.RoomActive
	default:
		return false
	}
}

// MarkResetting flags the room as mid-transition until cleared or expired.
// The expiry bounds the damage of a crashed transition leaving the flag set.
func (m *StateMachine) MarkResetting(roomID string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetting[roomID] = time.Now().Add(ttl)
}

func (m *StateMachine) ClearResetting(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.resetting, roomID)
}

func (m *StateMachine) IsResetting(roomID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	deadline, ok := m.resetting[roomID]
	if !ok {
		return false
	}
	if time.Now().After(deadline) {
		delete(m.resetting, roomID)
		return false
	}
	return true
}

// CooldownRemaining returns the whole seconds a joiner still has to wait
// after the round completed at completedAt, rounding up so the displayed
// wait never undershoots the server-enforced one.
func (m *StateMachine) CooldownRemaining(completedAt, now time.Time) int {
	elapsed := now.Sub(completedAt)
	if elapsed >= m.cooldown {
		return 0
	}
	return int(math.Ceil((m.cooldown - elapsed).Seconds()))
}
