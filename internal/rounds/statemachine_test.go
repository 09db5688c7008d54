package rounds

import (
	"testing"
	"time"

	"lotto-rooms/internal/store"
)

func TestValidTransitions(t *testing.T) {
	m := NewStateMachine(10 * time.Second)
	cases := []struct {
		from, to string
		want     bool
	}{
		{store.RoomWaiting, store.RoomActive, true},
		{store.RoomActive, store.RoomCompleted, true},
		{store.RoomCompleted, store.RoomWaiting, true},
		{store.RoomCompleted, store.RoomActive, true},
		{store.RoomWaiting, store.RoomCompleted, false},
		{store.RoomActive, store.RoomWaiting, false},
		{store.RoomCompleted, store.RoomCompleted, false},
		{"bogus", store.RoomWaiting, false},
	}
	for _, tt := range cases {
		if got := m.ValidTransition(tt.from, tt.to); got != tt.want {
			t.Fatalf("ValidTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCooldownRemaining(t *testing.T) {
	m := NewStateMachine(10 * time.Second)
	completed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if got := m.CooldownRemaining(completed, completed.Add(5*time.Second)); got != 5 {
		t.Fatalf("remaining at T+5s = %d, want 5", got)
	}
	if got := m.CooldownRemaining(completed, completed.Add(11*time.Second)); got != 0 {
		t.Fatalf("remaining at T+11s = %d, want 0", got)
	}
	if got := m.CooldownRemaining(completed, completed.Add(10*time.Second)); got != 0 {
		t.Fatalf("remaining at exactly T+10s = %d, want 0", got)
	}
	// Partial seconds round up so the client never retries early.
	if got := m.CooldownRemaining(completed, completed.Add(9500*time.Millisecond)); got != 1 {
		t.Fatalf("remaining at T+9.5s = %d, want 1", got)
	}
}

func TestResettingSignal(t *testing.T) {
	m := NewStateMachine(10 * time.Second)
	if m.IsResetting("room-1") {
		t.Fatalf("fresh room reported resetting")
	}
	m.MarkResetting("room-1", time.Minute)
	if !m.IsResetting("room-1") {
		t.Fatalf("marked room not resetting")
	}
	if m.IsResetting("room-2") {
		t.Fatalf("unrelated room reported resetting")
	}
	m.ClearResetting("room-1")
	if m.IsResetting("room-1") {
		t.Fatalf("cleared room still resetting")
	}
}

func TestResettingSignalExpires(t *testing.T) {
	m := NewStateMachine(10 * time.Second)
	m.MarkResetting("room-1", time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if m.IsResetting("room-1") {
		t.Fatalf("expired resetting flag still set")
	}
}
