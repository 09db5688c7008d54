package httptransport

import (
	"net/http"
	"testing"
	"time"

	appplay "lotto-rooms/internal/app/play"
	"lotto-rooms/internal/config"
	"lotto-rooms/internal/notify"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func TestRouterRegistersRoutes(t *testing.T) {
	playSvc := appplay.NewService(nil, nil, nil, notify.Nop{}, 5*time.Second, zerolog.Nop())
	r := NewRouter(nil, config.ServerConfig{AdminAPIKey: "k"}, playSvc, notify.NewHub())

	want := []struct {
		method string
		route  string
	}{
		{http.MethodGet, "/healthz"},
		{http.MethodGet, "/ws/rooms/{room_id}"},
		{http.MethodGet, "/api/public/rooms"},
		{http.MethodGet, "/api/public/rooms/{room_id}"},
		{http.MethodGet, "/api/public/rooms/{room_id}/history"},
		{http.MethodGet, "/api/public/rounds/{round_id}/verify"},
		{http.MethodGet, "/api/users/{user_id}/balance"},
		{http.MethodGet, "/api/users/{user_id}/transactions"},
		{http.MethodPost, "/api/rooms/{room_id}/join"},
		{http.MethodPost, "/api/rooms/{room_id}/leave"},
		{http.MethodPost, "/api/admin/rooms"},
		{http.MethodPost, "/api/admin/rooms/{room_id}/deactivate"},
		{http.MethodPost, "/api/admin/rooms/{room_id}/resolve"},
		{http.MethodPost, "/api/admin/rooms/{room_id}/cancel"},
		{http.MethodPost, "/api/admin/users"},
		{http.MethodPost, "/api/admin/topup"},
	}

	registered := map[string]bool{}
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		registered[method+" "+route] = true
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	for _, w := range want {
		if !registered[w.method+" "+w.route] {
			t.Fatalf("route not registered: %s %s", w.method, w.route)
		}
	}
}
