// Package notify carries post-commit side effects to observers. The core
// depends only on the Notifier interface; the websocket hub is one
// implementation of it. Events are emitted strictly after the transaction
// that produced them committed, so observers can lag but never see state
// that later rolled back.
package notify

// Event names on the wire.
const (
	EventBalanceChanged  = "balance_changed"
	EventRoomStatus      = "room_status"
	EventParticipantJoin = "participant_joined"
	EventParticipantLeft = "participant_left"
	EventGameStarting    = "game_starting"
	EventRoundResolved   = "round_resolved"
)

type BalanceChanged struct {
	UserID     string `json:"user_id"`
	NewBalance int64  `json:"new_balance_cents"`
	Delta      int64  `json:"delta_cents"`
	Reason     string `json:"reason"`
}

type RoomStatus struct {
	RoomID           string `json:"room_id"`
	Status           string `json:"status"`
	ParticipantCount int    `json:"participant_count"`
}

type ParticipantEvent struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	RoomID   string `json:"room_id"`
}

type GameStarting struct {
	RoomID           string `json:"room_id"`
	CountdownSeconds int    `json:"countdown_seconds"`
}

type RoundResolved struct {
	RoomID     string   `json:"room_id"`
	RoundID    string   `json:"round_id"`
	WinnerIDs  []string `json:"winner_ids"`
	PrizePool  int64    `json:"prize_pool_cents"`
	ResultHash string   `json:"result_hash"`
}

type Notifier interface {
	EmitToRoom(roomID, event string, data any)
	EmitGlobal(event string, data any)
}

// Nop drops every event. Used in tests and tooling.
type Nop struct{}

func (Nop) EmitToRoom(string, string, any) {}
func (Nop) EmitGlobal(string, any)         {}
