package httptransport

import (
	"encoding/json"
	"net/http"

	apppublic "lotto-rooms/internal/app/public"
	"lotto-rooms/internal/store"

	"github.com/go-chi/chi/v5"
)

type PublicHandlers struct {
	publicSvc *apppublic.Service
	store     *store.Store
}

func NewPublicHandlers(publicSvc *apppublic.Service, st *store.Store) *PublicHandlers {
	return &PublicHandlers{publicSvc: publicSvc, store: st}
}

func (h *PublicHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

func (h *PublicHandlers) Rooms() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.publicSvc.Rooms(r.Context())
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PublicHandlers) RoomDetail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.publicSvc.RoomDetail(r.Context(), chi.URLParam(r, "room_id"))
		if err != nil {
			writePublicError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PublicHandlers) RoundHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		resp, err := h.publicSvc.RoundHistory(r.Context(), chi.URLParam(r, "room_id"), limit, offset)
		if err != nil {
			writePublicError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PublicHandlers) VerifyRound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.publicSvc.VerifyRound(r.Context(), chi.URLParam(r, "round_id"))
		if err != nil {
			writePublicError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PublicHandlers) Transactions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		resp, err := h.publicSvc.Transactions(r.Context(), chi.URLParam(r, "user_id"), limit, offset)
		if err != nil {
			writePublicError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PublicHandlers) Balance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.publicSvc.Balance(r.Context(), chi.URLParam(r, "user_id"))
		if err != nil {
			writePublicError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
