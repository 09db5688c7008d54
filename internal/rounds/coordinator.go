package rounds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"lotto-rooms/internal/audit"
	"lotto-rooms/internal/fairness"
	"lotto-rooms/internal/prize"
	"lotto-rooms/internal/store"
)

// resettingTTL bounds how long a room stays in the signaled resetting state
// if the process dies mid-cancellation.
const resettingTTL = 5 * time.Second

var errResolutionNoOp = errors.New("resolution no-op")

// Coordinator resolves rounds at most once no matter how many triggers race:
// the scheduled timer, a manual admin action and a participant threshold all
// funnel through Resolve, and only the one holding the round row proceeds.
type Coordinator struct {
	store *store.Store
	sm    *StateMachine
	audit audit.Sink
}

func NewCoordinator(st *store.Store, sm *StateMachine, sink audit.Sink) *Coordinator {
	return &Coordinator{store: st, sm: sm, audit: sink}
}

type WinnerPayout struct {
	UserID          string
	Position        int
	PrizeCents      int64
	NewBalanceCents int64
}

type Resolution struct {
	NoOp             bool
	RoomID           string
	RoundID          string
	PrizePoolCents   int64
	CommissionCents  int64
	ResultHash       string
	ParticipantCount int
	Winners          []WinnerPayout
}

type Refund struct {
	UserID          string
	AmountCents     int64
	NewBalanceCents int64
}

type Cancellation struct {
	NoOp    bool
	RoomID  string
	RoundID string
	Refunds []Refund
}

// Resolve selects the winners of the room's open round, pays them, and
// completes the round. A concurrently running resolution makes this a no-op
// rather than an error or a double payout.
//
// Lock order is room first, then round. The round lock uses SKIP LOCKED so a
// resolver path can never wait on another resolver; taking the room lock
// first keeps the ordering identical to Join and rules out a deadlock
// between an in-flight join (room held, wants the round row) and a resolver
// (round held, wants the room row).
func (c *Coordinator) Resolve(ctx context.Context, roomID, trigger string) (*Resolution, error) {
	if roomID == "" {
		return nil, ErrValidation
	}
	res := &Resolution{RoomID: roomID}
	var seedUsage *audit.SeedUsage

	err := c.store.WithTx(ctx, func(tx pgx.Tx) error {
		room, err := c.store.GetRoomForUpdateTx(ctx, tx, roomID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRoomNotFound
			}
			return err
		}
		open, err := c.store.GetOpenRoundTx(ctx, tx, roomID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Already resolved, or never started.
				return errResolutionNoOp
			}
			return err
		}
		round, locked, err := c.store.LockOpenRoundSkipLocked(ctx, tx, open.ID)
		if err != nil {
			return err
		}
		if !locked {
			return errResolutionNoOp
		}

		participants, err := c.store.ListParticipantsTx(ctx, tx, round.ID)
		if err != nil {
			return err
		}
		if len(participants) == 0 {
			return ErrNoParticipants
		}
		ids := make([]string, len(participants))
		for i, p := range participants {
			ids[i] = p.UserID
		}

		winnerCount := room.WinnerCount
		if winnerCount > len(participants) {
			winnerCount = len(participants)
		}
		if winnerCount < 1 {
			winnerCount = 1
		}

		clientSeed, err := fairness.GenerateClientSeed()
		if err != nil {
			return err
		}
		nonce := fairness.RoundNonce(round.ID)

		var proofs []fairness.Proof
		if winnerCount > 1 {
			proofs, err = fairness.SelectWinners(round.ServerSeed, clientSeed, nonce, ids, winnerCount)
		} else {
			var p fairness.Proof
			p, err = fairness.SelectWinner(round.ServerSeed, clientSeed, nonce, ids)
			proofs = []fairness.Proof{p}
		}
		if err != nil {
			// fairness.ErrRetryExhausted surfaces here; the rollback leaves
			// the round open for manual intervention.
			return err
		}

		dist, err := prize.Distribute(round.PrizePoolCents, room.FeeRate, winnerCount, room.Distribution)
		if err != nil {
			return err
		}

		res.Winners = make([]WinnerPayout, 0, winnerCount)
		for i, p := range proofs {
			payout := dist.Payouts[i]
			newBal, err := c.store.CreditBalanceTx(ctx, tx, p.WinnerID, payout.AmountCents)
			if err != nil {
				return err
			}
			if err := c.store.MarkParticipantWinnerTx(ctx, tx, round.ID, p.WinnerID, payout.Position, payout.AmountCents); err != nil {
				return err
			}
			if err := c.store.InsertWinnerTx(ctx, tx, round.ID, p.WinnerID, payout.Position, payout.AmountCents); err != nil {
				return err
			}
			if _, err := c.store.InsertTransactionTx(ctx, tx, p.WinnerID, store.TxPayout, payout.AmountCents, round.ID, fmt.Sprintf("prize: position %d", payout.Position)); err != nil {
				return err
			}
			res.Winners = append(res.Winners, WinnerPayout{
				UserID:          p.WinnerID,
				Position:        payout.Position,
				PrizeCents:      payout.AmountCents,
				NewBalanceCents: newBal,
			})
		}

		proofJSON, err := json.Marshal(proofs)
		if err != nil {
			return err
		}
		resultHash := fairness.ResultHash(proofs)
		if err := c.store.CompleteRoundTx(ctx, tx, round.ID, store.RoundResolution{
			ClientSeed:      clientSeed,
			Nonce:           nonce,
			Proof:           proofJSON,
			ResultHash:      resultHash,
			WinnerUserID:    proofs[0].WinnerID,
			CommissionCents: dist.CommissionCents,
		}); err != nil {
			return err
		}
		if err := c.store.SetRoomStatusTx(ctx, tx, roomID, store.RoomCompleted); err != nil {
			return err
		}

		res.RoundID = round.ID
		res.PrizePoolCents = round.PrizePoolCents
		res.CommissionCents = dist.CommissionCents
		res.ResultHash = resultHash
		res.ParticipantCount = len(participants)
		seedUsage = &audit.SeedUsage{
			RoomID:       roomID,
			RoundID:      round.ID,
			ServerSeed:   round.ServerSeed,
			ClientSeed:   clientSeed,
			Nonce:        nonce,
			Participants: ids,
			WinnerIndex:  proofs[0].WinnerIndex,
			WinnerID:     proofs[0].WinnerID,
			ResultHash:   resultHash,
			Context:      "resolution trigger: " + trigger,
		}
		return nil
	})
	if errors.Is(err, errResolutionNoOp) {
		return &Resolution{NoOp: true, RoomID: roomID}, nil
	}
	if err != nil {
		return nil, err
	}
	c.audit.LogSeedUsage(*seedUsage)
	return res, nil
}

// Cancel aborts the room's open round: every participant gets a compensating
// refund transaction, the round is archived, and the room returns to
// WAITING. The room reports resetting for the duration so no join slips in
// mid-transition.
func (c *Coordinator) Cancel(ctx context.Context, roomID string) (*Cancellation, error) {
	if roomID == "" {
		return nil, ErrValidation
	}
	c.sm.MarkResetting(roomID, resettingTTL)
	defer c.sm.ClearResetting(roomID)

	res := &Cancellation{RoomID: roomID}
	err := c.store.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := c.store.GetRoomForUpdateTx(ctx, tx, roomID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRoomNotFound
			}
			return err
		}
		open, err := c.store.GetOpenRoundTx(ctx, tx, roomID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return errResolutionNoOp
			}
			return err
		}
		round, locked, err := c.store.LockOpenRoundSkipLocked(ctx, tx, open.ID)
		if err != nil {
			return err
		}
		if !locked {
			return errResolutionNoOp
		}

		participants, err := c.store.ListParticipantsTx(ctx, tx, round.ID)
		if err != nil {
			return err
		}
		for _, p := range participants {
			newBal, err := c.store.CreditBalanceTx(ctx, tx, p.UserID, p.StakeCents)
			if err != nil {
				return err
			}
			if err := c.store.AddToPrizePoolTx(ctx, tx, round.ID, -p.StakeCents); err != nil {
				return err
			}
			if _, err := c.store.InsertTransactionTx(ctx, tx, p.UserID, store.TxRefund, p.StakeCents, round.ID, "refund: round cancelled"); err != nil {
				return err
			}
			res.Refunds = append(res.Refunds, Refund{UserID: p.UserID, AmountCents: p.StakeCents, NewBalanceCents: newBal})
		}
		if err := c.store.ArchiveRoundTx(ctx, tx, round.ID); err != nil {
			return err
		}
		if err := c.store.SetRoomStatusTx(ctx, tx, roomID, store.RoomWaiting); err != nil {
			return err
		}
		res.RoundID = round.ID
		return nil
	})
	if errors.Is(err, errResolutionNoOp) {
		return &Cancellation{NoOp: true, RoomID: roomID}, nil
	}
	if err != nil {
		return nil, err
	}
	c.audit.LogSecurityEvent(audit.SecurityEvent{
		Type:     "round_cancelled",
		Severity: audit.SeverityInfo,
		Details:  map[string]any{"room_id": roomID, "round_id": res.RoundID, "refunds": len(res.Refunds)},
	})
	return res, nil
}
