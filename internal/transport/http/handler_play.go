package httptransport

import (
	"encoding/json"
	"net/http"

	appplay "lotto-rooms/internal/app/play"

	"github.com/go-chi/chi/v5"
)

// RequestKeyHeader carries the client idempotency key for join/leave.
const RequestKeyHeader = "X-Request-Key"

type PlayHandlers struct {
	playSvc *appplay.Service
}

func NewPlayHandlers(playSvc *appplay.Service) *PlayHandlers {
	return &PlayHandlers{playSvc: playSvc}
}

func (h *PlayHandlers) Join() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		metricJoinTotal.Add(1)
		resp, err := h.playSvc.Join(r.Context(), chi.URLParam(r, "room_id"), body.UserID, r.Header.Get(RequestKeyHeader))
		if err != nil {
			metricJoinErrors.Add(1)
			writePlayError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func (h *PlayHandlers) Leave() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		metricLeaveTotal.Add(1)
		resp, err := h.playSvc.Leave(r.Context(), chi.URLParam(r, "room_id"), body.UserID, r.Header.Get(RequestKeyHeader))
		if err != nil {
			metricLeaveErrors.Add(1)
			writePlayError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
