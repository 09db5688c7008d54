package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	appplay "lotto-rooms/internal/app/play"
	apppublic "lotto-rooms/internal/app/public"
	"lotto-rooms/internal/rounds"
)

// writePlayError maps a service error from a mutating call onto the HTTP
// surface. Cooldown rejections carry their remaining seconds so clients can
// back off exactly.
func writePlayError(w http.ResponseWriter, err error) {
	var cd *rounds.CooldownError
	if errors.As(err, &cd) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":             "cooldown_active",
			"remaining_seconds": cd.RemainingSeconds,
		})
		return
	}
	switch {
	case errors.Is(err, rounds.ErrValidation), errors.Is(err, appplay.ErrInvalidRequest):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, rounds.ErrRoomNotFound):
		WriteHTTPError(w, http.StatusNotFound, "room_not_found")
	case errors.Is(err, rounds.ErrInsufficientFunds):
		WriteHTTPError(w, http.StatusPaymentRequired, "insufficient_funds")
	case errors.Is(err, rounds.ErrRoomClosed):
		WriteHTTPError(w, http.StatusConflict, "room_closed")
	case errors.Is(err, rounds.ErrRoomResetting):
		WriteHTTPError(w, http.StatusConflict, "room_resetting")
	case errors.Is(err, rounds.ErrRoomFull):
		WriteHTTPError(w, http.StatusConflict, "room_full")
	case errors.Is(err, rounds.ErrRoundInProgress):
		WriteHTTPError(w, http.StatusConflict, "round_in_progress")
	case errors.Is(err, rounds.ErrRoomNotWaiting):
		WriteHTTPError(w, http.StatusConflict, "room_not_waiting")
	case errors.Is(err, rounds.ErrNotParticipant):
		WriteHTTPError(w, http.StatusConflict, "not_participant")
	case errors.Is(err, rounds.ErrNoParticipants):
		WriteHTTPError(w, http.StatusConflict, "no_participants")
	case errors.Is(err, rounds.ErrSeedCollision):
		WriteHTTPError(w, http.StatusServiceUnavailable, "try_again")
	case errors.Is(err, appplay.ErrRequestInFlight):
		WriteHTTPError(w, http.StatusConflict, "request_in_flight")
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}

func writePublicError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apppublic.ErrInvalidRequest):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, apppublic.ErrRoomNotFound):
		WriteHTTPError(w, http.StatusNotFound, "room_not_found")
	case errors.Is(err, apppublic.ErrRoundNotFound):
		WriteHTTPError(w, http.StatusNotFound, "round_not_found")
	case errors.Is(err, apppublic.ErrUserNotFound):
		WriteHTTPError(w, http.StatusNotFound, "user_not_found")
	case errors.Is(err, apppublic.ErrRoundNotComplete):
		WriteHTTPError(w, http.StatusConflict, "round_not_complete")
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}
