package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	appplay "lotto-rooms/internal/app/play"
	"lotto-rooms/internal/store"

	"github.com/go-chi/chi/v5"
)

type AdminHandlers struct {
	store   *store.Store
	playSvc *appplay.Service
}

func NewAdminHandlers(st *store.Store, playSvc *appplay.Service) *AdminHandlers {
	return &AdminHandlers{store: st, playSvc: playSvc}
}

func (h *AdminHandlers) CreateRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name         string  `json:"name"`
			StakeCents   int64   `json:"stake_cents"`
			MinPlayers   int     `json:"min_players"`
			MaxPlayers   int     `json:"max_players"`
			WinnerCount  int     `json:"winner_count"`
			FeeRate      float64 `json:"fee_rate"`
			Distribution string  `json:"distribution"`
			AutoStart    *bool   `json:"auto_start"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.Name == "" || body.StakeCents <= 0 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if body.MinPlayers < 2 {
			body.MinPlayers = 2
		}
		if body.MaxPlayers <= 0 {
			body.MaxPlayers = 100
		}
		if body.WinnerCount <= 0 {
			body.WinnerCount = 1
		}
		if body.FeeRate < 0 || body.FeeRate > 1 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_fee_rate")
			return
		}
		if body.Distribution == "" {
			body.Distribution = store.DistributionEqual
		}
		if body.Distribution != store.DistributionEqual && body.Distribution != store.DistributionWeighted {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_distribution")
			return
		}
		autoStart := true
		if body.AutoStart != nil {
			autoStart = *body.AutoStart
		}
		id, err := h.store.CreateRoom(r.Context(), store.NewRoom{
			Name:         body.Name,
			StakeCents:   body.StakeCents,
			MinPlayers:   body.MinPlayers,
			MaxPlayers:   body.MaxPlayers,
			WinnerCount:  body.WinnerCount,
			FeeRate:      body.FeeRate,
			Distribution: body.Distribution,
			AutoStart:    autoStart,
		})
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "room_id": id})
	}
}

func (h *AdminHandlers) DeactivateRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h.store.DeactivateRoom(r.Context(), chi.URLParam(r, "room_id"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				WriteHTTPError(w, http.StatusNotFound, "room_not_found")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

func (h *AdminHandlers) ResolveRound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.playSvc.Resolve(r.Context(), chi.URLParam(r, "room_id"))
		if err != nil {
			writePlayError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *AdminHandlers) CancelRound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.playSvc.Cancel(r.Context(), chi.URLParam(r, "room_id"))
		if err != nil {
			writePlayError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *AdminHandlers) CreateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username     string `json:"username"`
			BalanceCents int64  `json:"balance_cents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.Username == "" || body.BalanceCents < 0 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		id, err := h.store.CreateUser(r.Context(), body.Username, body.BalanceCents)
		if err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				WriteHTTPError(w, http.StatusConflict, "username_taken")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "user_id": id})
	}
}

func (h *AdminHandlers) Topup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID      string `json:"user_id"`
			AmountCents int64  `json:"amount_cents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if body.UserID == "" || body.AmountCents <= 0 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		bal, err := h.store.Topup(r.Context(), body.UserID, body.AmountCents)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				WriteHTTPError(w, http.StatusNotFound, "user_not_found")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "balance_cents": bal})
	}
}
