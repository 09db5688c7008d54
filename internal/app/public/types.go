package public

import (
	"time"

	"lotto-rooms/internal/fairness"
)

type RoomsResponse struct {
	Items []RoomItem `json:"items"`
}

type RoomItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	StakeCents   int64   `json:"stake_cents"`
	MinPlayers   int     `json:"min_players"`
	MaxPlayers   int     `json:"max_players"`
	WinnerCount  int     `json:"winner_count"`
	FeeRate      float64 `json:"fee_rate"`
	Distribution string  `json:"distribution"`
	Status       string  `json:"status"`
}

type RoomDetailResponse struct {
	Room             RoomItem `json:"room"`
	OpenRoundID      string   `json:"open_round_id,omitempty"`
	ParticipantCount int      `json:"participant_count"`
	PrizePoolCents   int64    `json:"prize_pool_cents"`
	Participants     []string `json:"participants"`
}

type HistoryResponse struct {
	Items  []HistoryItem `json:"items"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

type HistoryItem struct {
	RoundID         string       `json:"round_id"`
	PrizePoolCents  int64        `json:"prize_pool_cents"`
	CommissionCents int64        `json:"commission_cents"`
	ResultHash      string       `json:"result_hash"`
	CompletedAt     *time.Time   `json:"completed_at"`
	Winners         []WinnerItem `json:"winners"`
}

type WinnerItem struct {
	UserID     string `json:"user_id"`
	Position   int    `json:"position"`
	PrizeCents int64  `json:"prize_cents"`
}

// VerifyResponse exposes everything needed to recompute a completed round's
// outcome offline. Seeds are only ever revealed here, after completion.
type VerifyResponse struct {
	RoundID          string           `json:"round_id"`
	ServerSeed       string           `json:"server_seed"`
	ClientSeed       string           `json:"client_seed"`
	RoundNonce       string           `json:"round_nonce"`
	Participants     []string         `json:"participants"`
	Proofs           []fairness.Proof `json:"proofs"`
	ResultHash       string           `json:"result_hash"`
	RecordedWinnerID string           `json:"recorded_winner_id"`
	Valid            bool             `json:"valid"`
}

type TransactionsResponse struct {
	Items  []TransactionItem `json:"items"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

type TransactionItem struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	AmountCents int64     `json:"amount_cents"`
	RoundID     string    `json:"round_id,omitempty"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type BalanceResponse struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	BalanceCents int64  `json:"balance_cents"`
}
