package public

import (
	"context"
	"encoding/json"
	"errors"

	"lotto-rooms/internal/fairness"
	"lotto-rooms/internal/store"
)

type Service struct {
	store *store.Store
}

const historyMaxRows = 100

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

func roomItem(r *store.Room) RoomItem {
	return RoomItem{
		ID:           r.ID,
		Name:         r.Name,
		StakeCents:   r.StakeCents,
		MinPlayers:   r.MinPlayers,
		MaxPlayers:   r.MaxPlayers,
		WinnerCount:  r.WinnerCount,
		FeeRate:      r.FeeRate,
		Distribution: r.Distribution,
		Status:       r.Status,
	}
}

func (s *Service) Rooms(ctx context.Context) (*RoomsResponse, error) {
	items, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RoomItem, 0, len(items))
	for i := range items {
		out = append(out, roomItem(&items[i]))
	}
	return &RoomsResponse{Items: out}, nil
}

func (s *Service) RoomDetail(ctx context.Context, roomID string) (*RoomDetailResponse, error) {
	if roomID == "" {
		return nil, ErrInvalidRequest
	}
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	resp := &RoomDetailResponse{Room: roomItem(room), Participants: []string{}}
	round, err := s.store.GetOpenRound(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return resp, nil
		}
		return nil, err
	}
	resp.OpenRoundID = round.ID
	resp.PrizePoolCents = round.PrizePoolCents
	participants, err := s.store.ListParticipants(ctx, round.ID)
	if err != nil {
		return nil, err
	}
	resp.ParticipantCount = len(participants)
	for _, p := range participants {
		resp.Participants = append(resp.Participants, p.UserID)
	}
	return resp, nil
}

func (s *Service) RoundHistory(ctx context.Context, roomID string, limit, offset int) (*HistoryResponse, error) {
	if roomID == "" {
		return nil, ErrInvalidRequest
	}
	if limit <= 0 || limit > historyMaxRows {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if _, err := s.store.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	rounds, err := s.store.ListCompletedRounds(ctx, roomID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]HistoryItem, 0, len(rounds))
	for _, r := range rounds {
		item := HistoryItem{
			RoundID:        r.ID,
			PrizePoolCents: r.PrizePoolCents,
			CompletedAt:    r.CompletedAt,
			Winners:        []WinnerItem{},
		}
		if r.CommissionCents != nil {
			item.CommissionCents = *r.CommissionCents
		}
		if r.ResultHash != nil {
			item.ResultHash = *r.ResultHash
		}
		winners, err := s.store.ListWinners(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		for _, w := range winners {
			item.Winners = append(item.Winners, WinnerItem{UserID: w.UserID, Position: w.Position, PrizeCents: w.PrizeCents})
		}
		out = append(out, item)
	}
	return &HistoryResponse{Items: out, Limit: limit, Offset: offset}, nil
}

// VerifyRound returns the fairness material for a completed round and
// re-checks every stored proof. Rounds still in play stay sealed so the
// committed server seed is never revealed early.
func (s *Service) VerifyRound(ctx context.Context, roundID string) (*VerifyResponse, error) {
	if roundID == "" {
		return nil, ErrInvalidRequest
	}
	round, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	if round.CompletedAt == nil {
		return nil, ErrRoundNotComplete
	}

	var proofs []fairness.Proof
	if len(round.Proof) > 0 {
		if err := json.Unmarshal(round.Proof, &proofs); err != nil {
			return nil, err
		}
	}
	resp := &VerifyResponse{
		RoundID:    round.ID,
		ServerSeed: round.ServerSeed,
		Proofs:     proofs,
		Valid:      true,
	}
	if round.ClientSeed != nil {
		resp.ClientSeed = *round.ClientSeed
	}
	if round.Nonce != nil {
		resp.RoundNonce = *round.Nonce
	}
	if round.ResultHash != nil {
		resp.ResultHash = *round.ResultHash
	}
	if round.WinnerUserID != nil {
		resp.RecordedWinnerID = *round.WinnerUserID
	}
	if len(proofs) > 0 {
		resp.Participants = proofs[0].Participants
	}
	for _, p := range proofs {
		if err := fairness.Verify(p); err != nil {
			resp.Valid = false
			break
		}
	}
	if resp.Valid && resp.ResultHash != "" && fairness.ResultHash(proofs) != resp.ResultHash {
		resp.Valid = false
	}
	return resp, nil
}

func (s *Service) Transactions(ctx context.Context, userID string, limit, offset int) (*TransactionsResponse, error) {
	if userID == "" {
		return nil, ErrInvalidRequest
	}
	if limit <= 0 || limit > historyMaxRows {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	txs, err := s.store.ListTransactionsByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]TransactionItem, 0, len(txs))
	for _, tx := range txs {
		item := TransactionItem{
			ID:          tx.ID,
			Kind:        tx.Kind,
			AmountCents: tx.AmountCents,
			Description: tx.Description,
			Status:      tx.Status,
			CreatedAt:   tx.CreatedAt,
		}
		if tx.RoundID != nil {
			item.RoundID = *tx.RoundID
		}
		out = append(out, item)
	}
	return &TransactionsResponse{Items: out, Limit: limit, Offset: offset}, nil
}

func (s *Service) Balance(ctx context.Context, userID string) (*BalanceResponse, error) {
	if userID == "" {
		return nil, ErrInvalidRequest
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &BalanceResponse{UserID: u.ID, Username: u.Username, BalanceCents: u.BalanceCents}, nil
}
