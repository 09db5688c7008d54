package rounds

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"lotto-rooms/internal/audit"
	"lotto-rooms/internal/fairness"
	"lotto-rooms/internal/store"
)

// Ledger serializes joins and leaves against the wager pool and user
// balances. Every mutation runs inside one transaction under the room row
// lock; on any error the transaction rolls back completely, so no partial
// deduction or orphaned participant row is ever observable.
type Ledger struct {
	store *store.Store
	sm    *StateMachine
	audit audit.Sink
}

func NewLedger(st *store.Store, sm *StateMachine, sink audit.Sink) *Ledger {
	return &Ledger{store: st, sm: sm, audit: sink}
}

type JoinResult struct {
	RoomID           string
	RoundID          string
	UserID           string
	AlreadyJoined    bool
	StakeCents       int64
	NewBalanceCents  int64
	ParticipantCount int
	RoomStatus       string
	RoundStarted     bool
}

type LeaveResult struct {
	RoomID           string
	RoundID          string
	UserID           string
	RefundCents      int64
	NewBalanceCents  int64
	ParticipantCount int
}

// Join stakes the room's wager for userID in the room's open round, creating
// the round (with a freshly committed server seed) when none exists. Re-entry
// by an existing participant is idempotent and touches no balance.
func (l *Ledger) Join(ctx context.Context, roomID, userID string) (*JoinResult, error) {
	if roomID == "" || userID == "" {
		return nil, ErrValidation
	}
	if l.sm.IsResetting(roomID) {
		return nil, ErrRoomResetting
	}

	res := &JoinResult{RoomID: roomID, UserID: userID}
	var postCommit []func()

	err := l.store.WithTx(ctx, func(tx pgx.Tx) error {
		room, err := l.store.GetRoomForUpdateTx(ctx, tx, roomID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRoomNotFound
			}
			return err
		}
		if !room.IsActive {
			return ErrRoomClosed
		}

		round, err := l.store.GetOpenRoundTx(ctx, tx, roomID)
		switch {
		case err == nil:
			// Re-entry short-circuit: an existing participant already holds
			// a valid stake, so this succeeds regardless of room status and
			// must not double-charge.
			p, perr := l.store.GetParticipantTx(ctx, tx, round.ID, userID)
			if perr == nil {
				count, cerr := l.store.CountParticipantsTx(ctx, tx, round.ID)
				if cerr != nil {
					return cerr
				}
				res.AlreadyJoined = true
				res.RoundID = round.ID
				res.StakeCents = p.StakeCents
				res.ParticipantCount = count
				res.RoomStatus = room.Status
				return nil
			}
			if !errors.Is(perr, store.ErrNotFound) {
				return perr
			}
			if room.Status != store.RoomWaiting {
				return ErrRoundInProgress
			}
		case errors.Is(err, store.ErrNotFound):
			if room.Status == store.RoomCompleted {
				if remaining, gerr := l.cooldownRemaining(ctx, tx, roomID); gerr != nil {
					return gerr
				} else if remaining > 0 {
					return &CooldownError{RemainingSeconds: remaining}
				}
				if serr := l.store.SetRoomStatusTx(ctx, tx, roomID, store.RoomWaiting); serr != nil {
					return serr
				}
				room.Status = store.RoomWaiting
			}
			if room.Status != store.RoomWaiting {
				return ErrRoomNotWaiting
			}
			if aerr := l.store.ArchiveCompletedRoundsTx(ctx, tx, roomID); aerr != nil {
				return aerr
			}
			round, err = l.createRound(ctx, tx, room, &postCommit)
			if err != nil {
				return err
			}
		default:
			return err
		}
		res.RoundID = round.ID

		count, err := l.store.CountParticipantsTx(ctx, tx, round.ID)
		if err != nil {
			return err
		}
		if count >= room.MaxPlayers {
			return ErrRoomFull
		}

		// Single conditional statement: the deduct only happens while the
		// balance still covers the stake, which closes the concurrent
		// overdraw race a read-then-write sequence would open.
		ok, newBal, err := l.store.DeductStakeTx(ctx, tx, userID, room.StakeCents)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientFunds
		}

		if _, err := l.store.InsertParticipantTx(ctx, tx, round.ID, userID, room.StakeCents); err != nil {
			return err
		}
		if err := l.store.AddToPrizePoolTx(ctx, tx, round.ID, room.StakeCents); err != nil {
			return err
		}
		if _, err := l.store.InsertTransactionTx(ctx, tx, userID, store.TxStake, -room.StakeCents, round.ID, "stake: "+room.Name); err != nil {
			return err
		}
		count++

		res.StakeCents = room.StakeCents
		res.NewBalanceCents = newBal
		res.ParticipantCount = count
		res.RoomStatus = room.Status

		if room.AutoStart && room.Status == store.RoomWaiting && count >= room.MinPlayers {
			if err := l.store.SetRoomStatusTx(ctx, tx, roomID, store.RoomActive); err != nil {
				return err
			}
			if err := l.store.MarkRoundStartedTx(ctx, tx, round.ID); err != nil {
				return err
			}
			res.RoomStatus = store.RoomActive
			res.RoundStarted = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, fn := range postCommit {
		fn()
	}
	return res, nil
}

// Leave refunds a pre-start participant. Legal only while the room is
// WAITING; the refund, pool decrement and participant delete commit together
// or not at all.
func (l *Ledger) Leave(ctx context.Context, roomID, userID string) (*LeaveResult, error) {
	if roomID == "" || userID == "" {
		return nil, ErrValidation
	}
	if l.sm.IsResetting(roomID) {
		return nil, ErrRoomResetting
	}

	res := &LeaveResult{RoomID: roomID, UserID: userID}
	err := l.store.WithTx(ctx, func(tx pgx.Tx) error {
		room, err := l.store.GetRoomForUpdateTx(ctx, tx, roomID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRoomNotFound
			}
			return err
		}
		if room.Status != store.RoomWaiting {
			return ErrRoomNotWaiting
		}

		round, err := l.store.GetOpenRoundTx(ctx, tx, roomID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotParticipant
			}
			return err
		}
		p, err := l.store.GetParticipantTx(ctx, tx, round.ID, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotParticipant
			}
			return err
		}

		if _, err := l.store.LockUserTx(ctx, tx, userID); err != nil {
			return err
		}
		if err := l.store.DeleteParticipantTx(ctx, tx, round.ID, userID); err != nil {
			return err
		}
		newBal, err := l.store.CreditBalanceTx(ctx, tx, userID, p.StakeCents)
		if err != nil {
			return err
		}
		if err := l.store.AddToPrizePoolTx(ctx, tx, round.ID, -p.StakeCents); err != nil {
			return err
		}
		if _, err := l.store.InsertTransactionTx(ctx, tx, userID, store.TxRefund, p.StakeCents, round.ID, "refund: left before start"); err != nil {
			return err
		}
		count, err := l.store.CountParticipantsTx(ctx, tx, round.ID)
		if err != nil {
			return err
		}

		res.RoundID = round.ID
		res.RefundCents = p.StakeCents
		res.NewBalanceCents = newBal
		res.ParticipantCount = count
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// createRound commits a fresh server seed. A unique violation on the active
// seed index aborts the current statement scope, so each attempt runs in a
// savepoint; the collision is retried exactly once with a regenerated seed
// and logged as a security event either way.
func (l *Ledger) createRound(ctx context.Context, tx pgx.Tx, room *store.Room, postCommit *[]func()) (*store.Round, error) {
	for attempt := 0; attempt < 2; attempt++ {
		seed, err := fairness.GenerateServerSeed()
		if err != nil {
			return nil, err
		}
		sp, err := tx.Begin(ctx)
		if err != nil {
			return nil, err
		}
		round, err := l.store.CreateRoundTx(ctx, sp, room.ID, seed)
		if err == nil {
			if err := sp.Commit(ctx); err != nil {
				return nil, err
			}
			roomID, roundID := room.ID, round.ID
			*postCommit = append(*postCommit, func() {
				l.audit.LogSeedGeneration(audit.SeedGeneration{
					RoomID:  roomID,
					RoundID: roundID,
					Seed:    seed,
					Context: "round created on first join",
				})
			})
			return round, nil
		}
		_ = sp.Rollback(ctx)
		switch {
		case errors.Is(err, store.ErrSeedTaken):
			l.audit.LogSecurityEvent(audit.SecurityEvent{
				Type:     "seed_collision",
				Severity: audit.SeverityCritical,
				Details:  map[string]any{"room_id": room.ID, "attempt": attempt + 1},
			})
		case errors.Is(err, store.ErrOpenRoundExists):
			// Lost a create race despite the room lock; use the winner.
			return l.store.GetOpenRoundTx(ctx, tx, room.ID)
		default:
			return nil, err
		}
	}
	return nil, ErrSeedCollision
}

func (l *Ledger) cooldownRemaining(ctx context.Context, tx pgx.Tx, roomID string) (int, error) {
	last, err := l.store.LatestCompletedRoundTx(ctx, tx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if last.CompletedAt == nil {
		return 0, nil
	}
	return l.sm.CooldownRemaining(*last.CompletedAt, time.Now()), nil
}
