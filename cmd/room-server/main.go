package main

import (
	"context"
	"net/http"
	"time"

	"lotto-rooms/internal/app/play"
	"lotto-rooms/internal/audit"
	"lotto-rooms/internal/config"
	"lotto-rooms/internal/logging"
	"lotto-rooms/internal/notify"
	"lotto-rooms/internal/rounds"
	"lotto-rooms/internal/store"
	httptransport "lotto-rooms/internal/transport/http"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	appCfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(appCfg.Log)
	cfg := appCfg.Server

	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}
	if cfg.SeedDefaultRooms {
		if err := st.EnsureDefaultRooms(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("ensure default rooms failed")
		}
	}

	recorder := audit.NewRecorder(audit.NewLogSink(log.Logger), 256)
	recorder.Start(context.Background())

	hub := notify.NewHub()
	sm := rounds.NewStateMachine(time.Duration(cfg.RoundCooldownSeconds) * time.Second)
	led := rounds.NewLedger(st, sm, recorder)
	coord := rounds.NewCoordinator(st, sm, recorder)
	playSvc := play.NewService(st, led, coord, hub, time.Duration(cfg.CountdownSeconds)*time.Second, log.Logger)

	r := httptransport.NewRouter(st, cfg, playSvc, hub)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}
