package play

type JoinResponse struct {
	RoomID           string `json:"room_id"`
	RoundID          string `json:"round_id"`
	UserID           string `json:"user_id"`
	AlreadyJoined    bool   `json:"already_joined"`
	StakeCents       int64  `json:"stake_cents"`
	NewBalanceCents  int64  `json:"new_balance_cents"`
	ParticipantCount int    `json:"participant_count"`
	RoomStatus       string `json:"room_status"`
	RoundStarted     bool   `json:"round_started"`
	Replayed         bool   `json:"replayed,omitempty"`
}

type LeaveResponse struct {
	RoomID           string `json:"room_id"`
	RoundID          string `json:"round_id"`
	UserID           string `json:"user_id"`
	RefundCents      int64  `json:"refund_cents"`
	NewBalanceCents  int64  `json:"new_balance_cents"`
	ParticipantCount int    `json:"participant_count"`
}

type ResolveResponse struct {
	NoOp            bool             `json:"no_op"`
	RoomID          string           `json:"room_id"`
	RoundID         string           `json:"round_id,omitempty"`
	PrizePoolCents  int64            `json:"prize_pool_cents,omitempty"`
	CommissionCents int64            `json:"commission_cents,omitempty"`
	ResultHash      string           `json:"result_hash,omitempty"`
	Winners         []ResolveWinner  `json:"winners,omitempty"`
}

type ResolveWinner struct {
	UserID     string `json:"user_id"`
	Position   int    `json:"position"`
	PrizeCents int64  `json:"prize_cents"`
}

type CancelResponse struct {
	NoOp          bool   `json:"no_op"`
	RoomID        string `json:"room_id"`
	RoundID       string `json:"round_id,omitempty"`
	RefundedCount int    `json:"refunded_count"`
}
