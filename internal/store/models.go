package store

import "time"

// Room statuses.
const (
	RoomWaiting   = "waiting"
	RoomActive    = "active"
	RoomCompleted = "completed"
)

// Distribution modes.
const (
	DistributionEqual    = "equal"
	DistributionWeighted = "weighted"
)

// Transaction kinds.
const (
	TxStake  = "stake"
	TxPayout = "payout"
	TxRefund = "refund"
	TxTopup  = "topup"
)

type User struct {
	ID           string
	Username     string
	BalanceCents int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Room struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	StakeCents   int64   `json:"stake_cents"`
	MinPlayers   int     `json:"min_players"`
	MaxPlayers   int     `json:"max_players"`
	WinnerCount  int     `json:"winner_count"`
	FeeRate      float64 `json:"fee_rate"`
	Distribution string  `json:"distribution"`
	AutoStart    bool    `json:"auto_start"`
	Status       string  `json:"status"`
	IsActive     bool    `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Round struct {
	ID              string
	RoomID          string
	ServerSeed      string
	PrizePoolCents  int64
	CommissionCents *int64
	ClientSeed      *string
	Nonce           *string
	Proof           []byte
	ResultHash      *string
	WinnerUserID    *string
	StartedAt       *time.Time
	CompletedAt     *time.Time
	ArchivedAt      *time.Time
	CreatedAt       time.Time
}

type Participant struct {
	ID         string
	RoundID    string
	UserID     string
	StakeCents int64
	IsWinner   bool
	Position   *int
	WonCents   *int64
	JoinedAt   time.Time
}

type Winner struct {
	ID         string
	RoundID    string
	UserID     string
	Position   int
	PrizeCents int64
	CreatedAt  time.Time
}

type Transaction struct {
	ID          string
	UserID      string
	Kind        string
	AmountCents int64
	Status      string
	RoundID     *string
	Description string
	CreatedAt   time.Time
}

type JoinRequest struct {
	RequestKey string
	UserID     string
	RoomID     string
	Operation  string
	Outcome    []byte
	CreatedAt  time.Time
}
