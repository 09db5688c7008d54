// Package prize computes the platform commission and per-winner payouts for
// a resolved round. All amounts are integer cents; the distributed total plus
// the retained commission always equals the prize pool exactly.
package prize

import (
	"errors"
	"math"
)

var (
	ErrInvalidFeeRate     = errors.New("fee rate must be within [0, 1]")
	ErrInvalidWinnerCount = errors.New("winner count must be at least 1")
	ErrInvalidPool        = errors.New("prize pool must not be negative")
	ErrUnknownMode        = errors.New("unknown distribution mode")
)

const (
	ModeEqual    = "equal"
	ModeWeighted = "weighted"
)

// weightTables maps winner count to per-position weight in basis points,
// first place first. Integer weights keep the floor arithmetic exact; float
// weights like 0.35 have no exact binary form and can floor a cent short.
// Counts above five fall back to equal weights.
var weightTables = map[int][]int64{
	1: {10000},
	2: {6500, 3500},
	3: {5000, 3000, 2000},
	4: {4000, 3000, 2000, 1000},
	5: {3500, 2500, 2000, 1200, 800},
}

type Payout struct {
	Position    int
	AmountCents int64
}

type Result struct {
	CommissionCents int64
	NetCents        int64
	Payouts         []Payout
}

// Distribute splits poolCents among winnerCount positions.
//
// Equal mode floors each share; the leftover cents are added to the retained
// commission rather than silently dropped. Weighted mode floors every
// position except the last, which receives the exact remainder so the
// distributed total equals the net prize to the cent.
func Distribute(poolCents int64, feeRate float64, winnerCount int, mode string) (Result, error) {
	if poolCents < 0 {
		return Result{}, ErrInvalidPool
	}
	if feeRate < 0 || feeRate > 1 {
		return Result{}, ErrInvalidFeeRate
	}
	if winnerCount < 1 {
		return Result{}, ErrInvalidWinnerCount
	}

	commission := int64(math.Round(float64(poolCents) * feeRate))
	if commission > poolCents {
		commission = poolCents
	}
	net := poolCents - commission

	var payouts []Payout
	switch mode {
	case ModeEqual:
		share := net / int64(winnerCount)
		payouts = make([]Payout, winnerCount)
		for i := range payouts {
			payouts[i] = Payout{Position: i + 1, AmountCents: share}
		}
		leftover := net - share*int64(winnerCount)
		commission += leftover
		net -= leftover
	case ModeWeighted:
		payouts = weightedPayouts(net, winnerCount)
	default:
		return Result{}, ErrUnknownMode
	}

	return Result{CommissionCents: commission, NetCents: net, Payouts: payouts}, nil
}

func weightedPayouts(net int64, winnerCount int) []Payout {
	weights, ok := weightTables[winnerCount]
	if !ok {
		weights = make([]int64, winnerCount)
		for i := range weights {
			weights[i] = 10000 / int64(winnerCount)
		}
	}
	payouts := make([]Payout, winnerCount)
	var distributed int64
	for i := 0; i < winnerCount-1; i++ {
		amount := net * weights[i] / 10000
		payouts[i] = Payout{Position: i + 1, AmountCents: amount}
		distributed += amount
	}
	// Last position takes the exact remainder; any floor leakage from the
	// earlier positions lands here instead of disappearing.
	payouts[winnerCount-1] = Payout{Position: winnerCount, AmountCents: net - distributed}
	return payouts
}
