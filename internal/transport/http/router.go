package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	appplay "lotto-rooms/internal/app/play"
	apppublic "lotto-rooms/internal/app/public"
	"lotto-rooms/internal/config"
	"lotto-rooms/internal/notify"
	"lotto-rooms/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func NewRouter(st *store.Store, cfg config.ServerConfig, playSvc *appplay.Service, hub *notify.Hub) *chi.Mux {
	publicSvc := apppublic.NewService(st)

	publicHandlers := NewPublicHandlers(publicSvc, st)
	playHandlers := NewPlayHandlers(playSvc)
	adminHandlers := NewAdminHandlers(st, playSvc)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", publicHandlers.Health())

	r.Get("/ws/rooms/{room_id}", func(w http.ResponseWriter, req *http.Request) {
		hub.ServeRoom(w, req, chi.URLParam(req, "room_id"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())

		r.Get("/public/rooms", publicHandlers.Rooms())
		r.Get("/public/rooms/{room_id}", publicHandlers.RoomDetail())
		r.Get("/public/rooms/{room_id}/history", publicHandlers.RoundHistory())
		r.Get("/public/rounds/{round_id}/verify", publicHandlers.VerifyRound())
		r.Get("/users/{user_id}/balance", publicHandlers.Balance())
		r.Get("/users/{user_id}/transactions", publicHandlers.Transactions())

		r.Post("/rooms/{room_id}/join", playHandlers.Join())
		r.Post("/rooms/{room_id}/leave", playHandlers.Leave())

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Post("/admin/rooms", adminHandlers.CreateRoom())
			r.Post("/admin/rooms/{room_id}/deactivate", adminHandlers.DeactivateRoom())
			r.Post("/admin/rooms/{room_id}/resolve", adminHandlers.ResolveRound())
			r.Post("/admin/rooms/{room_id}/cancel", adminHandlers.CancelRound())
			r.Post("/admin/users", adminHandlers.CreateUser())
			r.Post("/admin/topup", adminHandlers.Topup())
			r.Get("/admin/debug/vars", expvar.Handler().ServeHTTP)
		})
	})

	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 64)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
