// Package play is the write-side application service: it drives joins,
// leaves, and round resolution through the ledger and coordinator, guards
// mutating requests with idempotency keys, and emits websocket events after
// the underlying transaction committed.
package play

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"lotto-rooms/internal/notify"
	"lotto-rooms/internal/rounds"
	"lotto-rooms/internal/store"
)

type Service struct {
	store    *store.Store
	ledger   *rounds.Ledger
	coord    *rounds.Coordinator
	notifier notify.Notifier

	// countdown is the delay between a round starting and its automatic
	// resolution.
	countdown time.Duration

	log zerolog.Logger
}

func NewService(st *store.Store, led *rounds.Ledger, coord *rounds.Coordinator, n notify.Notifier, countdown time.Duration, log zerolog.Logger) *Service {
	return &Service{
		store:     st,
		ledger:    led,
		coord:     coord,
		notifier:  n,
		countdown: countdown,
		log:       log,
	}
}

// Join stakes the user into the room's open round. When requestKey is
// non-empty the call is idempotent: a retry with the same key returns the
// stored outcome of the original call instead of staking twice.
func (s *Service) Join(ctx context.Context, roomID, userID, requestKey string) (*JoinResponse, error) {
	if requestKey != "" {
		replay, err := s.claimRequest(ctx, requestKey, userID, roomID, "join")
		if err != nil {
			return nil, err
		}
		if replay != nil {
			var resp JoinResponse
			if err := json.Unmarshal(replay, &resp); err != nil {
				return nil, err
			}
			resp.Replayed = true
			return &resp, nil
		}
	}

	res, err := s.ledger.Join(ctx, roomID, userID)
	if err != nil {
		if requestKey != "" {
			if derr := s.store.DeleteJoinRequest(ctx, requestKey); derr != nil {
				s.log.Warn().Err(derr).Str("request_key", requestKey).Msg("release idempotency key")
			}
		}
		return nil, err
	}

	resp := &JoinResponse{
		RoomID:           res.RoomID,
		RoundID:          res.RoundID,
		UserID:           res.UserID,
		AlreadyJoined:    res.AlreadyJoined,
		StakeCents:       res.StakeCents,
		NewBalanceCents:  res.NewBalanceCents,
		ParticipantCount: res.ParticipantCount,
		RoomStatus:       res.RoomStatus,
		RoundStarted:     res.RoundStarted,
	}
	if requestKey != "" {
		if raw, merr := json.Marshal(resp); merr == nil {
			if serr := s.store.SaveJoinRequestOutcome(ctx, requestKey, raw); serr != nil {
				s.log.Warn().Err(serr).Str("request_key", requestKey).Msg("save idempotency outcome")
			}
		}
	}

	if !res.AlreadyJoined {
		s.emitJoin(ctx, res)
	}
	if res.RoundStarted {
		s.notifier.EmitToRoom(roomID, notify.EventGameStarting, notify.GameStarting{
			RoomID:           roomID,
			CountdownSeconds: int(s.countdown / time.Second),
		})
		s.scheduleResolve(roomID)
	}
	return resp, nil
}

func (s *Service) Leave(ctx context.Context, roomID, userID, requestKey string) (*LeaveResponse, error) {
	if requestKey != "" {
		replay, err := s.claimRequest(ctx, requestKey, userID, roomID, "leave")
		if err != nil {
			return nil, err
		}
		if replay != nil {
			var resp LeaveResponse
			if err := json.Unmarshal(replay, &resp); err != nil {
				return nil, err
			}
			return &resp, nil
		}
	}

	res, err := s.ledger.Leave(ctx, roomID, userID)
	if err != nil {
		if requestKey != "" {
			if derr := s.store.DeleteJoinRequest(ctx, requestKey); derr != nil {
				s.log.Warn().Err(derr).Str("request_key", requestKey).Msg("release idempotency key")
			}
		}
		return nil, err
	}

	resp := &LeaveResponse{
		RoomID:           res.RoomID,
		RoundID:          res.RoundID,
		UserID:           res.UserID,
		RefundCents:      res.RefundCents,
		NewBalanceCents:  res.NewBalanceCents,
		ParticipantCount: res.ParticipantCount,
	}
	if requestKey != "" {
		if raw, merr := json.Marshal(resp); merr == nil {
			if serr := s.store.SaveJoinRequestOutcome(ctx, requestKey, raw); serr != nil {
				s.log.Warn().Err(serr).Str("request_key", requestKey).Msg("save idempotency outcome")
			}
		}
	}

	s.notifier.EmitToRoom(roomID, notify.EventParticipantLeft, notify.ParticipantEvent{
		UserID:   userID,
		Username: s.username(ctx, userID),
		RoomID:   roomID,
	})
	s.notifier.EmitToRoom(roomID, notify.EventBalanceChanged, notify.BalanceChanged{
		UserID:     userID,
		NewBalance: res.NewBalanceCents,
		Delta:      res.RefundCents,
		Reason:     "refund",
	})
	return resp, nil
}

// Resolve runs the room's round resolution immediately, for the admin
// trigger. The countdown timer racing it is harmless: whichever loses the
// round lock reports a no-op.
func (s *Service) Resolve(ctx context.Context, roomID string) (*ResolveResponse, error) {
	res, err := s.coord.Resolve(ctx, roomID, "admin")
	if err != nil {
		return nil, err
	}
	return s.afterResolution(res), nil
}

func (s *Service) Cancel(ctx context.Context, roomID string) (*CancelResponse, error) {
	res, err := s.coord.Cancel(ctx, roomID)
	if err != nil {
		return nil, err
	}
	resp := &CancelResponse{NoOp: res.NoOp, RoomID: res.RoomID, RoundID: res.RoundID, RefundedCount: len(res.Refunds)}
	if res.NoOp {
		return resp, nil
	}
	for _, r := range res.Refunds {
		s.notifier.EmitToRoom(roomID, notify.EventBalanceChanged, notify.BalanceChanged{
			UserID:     r.UserID,
			NewBalance: r.NewBalanceCents,
			Delta:      r.AmountCents,
			Reason:     "refund",
		})
	}
	s.notifier.EmitToRoom(roomID, notify.EventRoomStatus, notify.RoomStatus{
		RoomID: roomID,
		Status: store.RoomWaiting,
	})
	return resp, nil
}

// claimRequest returns (nil, nil) when the key is fresh and the caller should
// run the operation, the stored outcome when a finished duplicate is
// replayed, and ErrRequestInFlight when the original is still running.
func (s *Service) claimRequest(ctx context.Context, key, userID, roomID, operation string) ([]byte, error) {
	inserted, err := s.store.InsertJoinRequest(ctx, key, userID, roomID, operation)
	if err != nil {
		return nil, err
	}
	if inserted {
		return nil, nil
	}
	jr, err := s.store.GetJoinRequest(ctx, key)
	if err != nil {
		return nil, err
	}
	if jr.UserID != userID || jr.RoomID != roomID || jr.Operation != operation {
		return nil, ErrInvalidRequest
	}
	if len(jr.Outcome) == 0 {
		return nil, ErrRequestInFlight
	}
	return jr.Outcome, nil
}

func (s *Service) emitJoin(ctx context.Context, res *rounds.JoinResult) {
	s.notifier.EmitToRoom(res.RoomID, notify.EventParticipantJoin, notify.ParticipantEvent{
		UserID:   res.UserID,
		Username: s.username(ctx, res.UserID),
		RoomID:   res.RoomID,
	})
	s.notifier.EmitToRoom(res.RoomID, notify.EventBalanceChanged, notify.BalanceChanged{
		UserID:     res.UserID,
		NewBalance: res.NewBalanceCents,
		Delta:      -res.StakeCents,
		Reason:     "stake",
	})
	s.notifier.EmitToRoom(res.RoomID, notify.EventRoomStatus, notify.RoomStatus{
		RoomID:           res.RoomID,
		Status:           res.RoomStatus,
		ParticipantCount: res.ParticipantCount,
	})
}

// scheduleResolve arms the countdown for a just-started round. The timer
// fires with a fresh background context: the join request that armed it has
// long since returned.
func (s *Service) scheduleResolve(roomID string) {
	time.AfterFunc(s.countdown, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		res, err := s.coord.Resolve(ctx, roomID, "countdown")
		if err != nil {
			s.log.Error().Err(err).Str("room_id", roomID).Msg("countdown resolution failed")
			return
		}
		s.afterResolution(res)
	})
}

func (s *Service) afterResolution(res *rounds.Resolution) *ResolveResponse {
	resp := &ResolveResponse{
		NoOp:            res.NoOp,
		RoomID:          res.RoomID,
		RoundID:         res.RoundID,
		PrizePoolCents:  res.PrizePoolCents,
		CommissionCents: res.CommissionCents,
		ResultHash:      res.ResultHash,
	}
	if res.NoOp {
		return resp
	}
	winnerIDs := make([]string, 0, len(res.Winners))
	for _, w := range res.Winners {
		resp.Winners = append(resp.Winners, ResolveWinner{UserID: w.UserID, Position: w.Position, PrizeCents: w.PrizeCents})
		winnerIDs = append(winnerIDs, w.UserID)
		s.notifier.EmitToRoom(res.RoomID, notify.EventBalanceChanged, notify.BalanceChanged{
			UserID:     w.UserID,
			NewBalance: w.NewBalanceCents,
			Delta:      w.PrizeCents,
			Reason:     "payout",
		})
	}
	s.notifier.EmitToRoom(res.RoomID, notify.EventRoundResolved, notify.RoundResolved{
		RoomID:     res.RoomID,
		RoundID:    res.RoundID,
		WinnerIDs:  winnerIDs,
		PrizePool:  res.PrizePoolCents,
		ResultHash: res.ResultHash,
	})
	s.notifier.EmitToRoom(res.RoomID, notify.EventRoomStatus, notify.RoomStatus{
		RoomID:           res.RoomID,
		Status:           store.RoomCompleted,
		ParticipantCount: res.ParticipantCount,
	})
	return resp
}

func (s *Service) username(ctx context.Context, userID string) string {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return ""
	}
	return u.Username
}
