package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	appplay "lotto-rooms/internal/app/play"
	apppublic "lotto-rooms/internal/app/public"
	"lotto-rooms/internal/rounds"
)

func TestWritePlayErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{rounds.ErrValidation, http.StatusBadRequest, "invalid_request"},
		{rounds.ErrRoomNotFound, http.StatusNotFound, "room_not_found"},
		{rounds.ErrInsufficientFunds, http.StatusPaymentRequired, "insufficient_funds"},
		{rounds.ErrRoomClosed, http.StatusConflict, "room_closed"},
		{rounds.ErrRoomResetting, http.StatusConflict, "room_resetting"},
		{rounds.ErrRoomFull, http.StatusConflict, "room_full"},
		{rounds.ErrRoundInProgress, http.StatusConflict, "round_in_progress"},
		{rounds.ErrRoomNotWaiting, http.StatusConflict, "room_not_waiting"},
		{rounds.ErrNotParticipant, http.StatusConflict, "not_participant"},
		{rounds.ErrNoParticipants, http.StatusConflict, "no_participants"},
		{rounds.ErrSeedCollision, http.StatusServiceUnavailable, "try_again"},
		{appplay.ErrRequestInFlight, http.StatusConflict, "request_in_flight"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writePlayError(rec, tc.err)
		if rec.Code != tc.status {
			t.Fatalf("%v: status = %d, want %d", tc.err, rec.Code, tc.status)
		}
		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%v: invalid JSON body: %v", tc.err, err)
		}
		if body["error"] != tc.code {
			t.Fatalf("%v: code = %v, want %s", tc.err, body["error"], tc.code)
		}
	}
}

func TestWritePlayErrorCooldown(t *testing.T) {
	rec := httptest.NewRecorder()
	writePlayError(rec, &rounds.CooldownError{RemainingSeconds: 7})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var body struct {
		Error            string `json:"error"`
		RemainingSeconds int    `json:"remaining_seconds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Error != "cooldown_active" || body.RemainingSeconds != 7 {
		t.Fatalf("body = %+v", body)
	}
}

func TestWritePublicErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apppublic.ErrInvalidRequest, http.StatusBadRequest},
		{apppublic.ErrRoomNotFound, http.StatusNotFound},
		{apppublic.ErrRoundNotFound, http.StatusNotFound},
		{apppublic.ErrUserNotFound, http.StatusNotFound},
		{apppublic.ErrRoundNotComplete, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writePublicError(rec, tc.err)
		if rec.Code != tc.status {
			t.Fatalf("%v: status = %d, want %d", tc.err, rec.Code, tc.status)
		}
	}
}

func TestAdminAuthMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := AdminAuthMiddleware("secret")(next)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/rooms", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing key: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/admin/rooms", nil)
	req.Header.Set("X-Admin-Key", "secret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("header key: status = %d, want 204", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/admin/rooms", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("bearer key: status = %d, want 204", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/admin/rooms", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong key: status = %d, want 401", rec.Code)
	}

	// No configured key disables the check.
	open := AdminAuthMiddleware("")(next)
	req = httptest.NewRequest(http.MethodPost, "/api/admin/rooms", nil)
	rec = httptest.NewRecorder()
	open.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("open mode: status = %d, want 204", rec.Code)
	}
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?limit=10&offset=5", nil)
	limit, offset := ParsePagination(req)
	if limit != 10 || offset != 5 {
		t.Fatalf("got %d/%d, want 10/5", limit, offset)
	}
	req = httptest.NewRequest(http.MethodGet, "/x?limit=9999&offset=-3", nil)
	limit, offset = ParsePagination(req)
	if limit != 100 || offset != 0 {
		t.Fatalf("got %d/%d, want clamped 100/0", limit, offset)
	}
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	limit, offset = ParsePagination(req)
	if limit != 50 || offset != 0 {
		t.Fatalf("got %d/%d, want defaults 50/0", limit, offset)
	}
}
