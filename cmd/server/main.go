package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"fight-club/internal/api"
	"fight-club/internal/auth"
	"fight-club/internal/config"
	"fight-club/internal/leaderboard"
	"fight-club/internal/logging"
	"fight-club/internal/matchmaking"
	"fight-club/internal/store"
	"fight-club/internal/teams"
)

// eloDefaultK is the rating-change sensitivity used for every battle. Not
// yet exposed via config since no deployment has needed to tune it.
const eloDefaultK = 32

func main() {
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := logging.New(appConfig.Logging)
	logger.Info("fight club battle service starting")

	db, err := store.Open(appConfig.Persistence)
	if err != nil {
		logger.WithError(err).Fatal("opening store")
	}

	teamManager := teams.NewManager(db)
	if persisted, err := db.LoadTeams(); err != nil {
		logger.WithError(err).Warn("loading persisted teams")
	} else {
		logger.WithField("count", len(persisted)).Info("loaded persisted teams")
	}

	ratings, err := db.LoadRatings()
	if err != nil {
		logger.WithError(err).Warn("loading persisted ratings")
		ratings = map[string]int{}
	}
	board := leaderboard.NewFromSnapshot(1, ratings)

	sessionSecure := os.Getenv("FIGHTCLUB_COOKIE_SECURE") == "true"
	sessionMgr, err := auth.NewManager(appConfig.Auth, sessionSecure, logger)
	if err != nil {
		logger.WithError(err).Fatal("building session manager")
	}

	pool := matchmaking.NewPool(appConfig.Matchmaking)

	deps := &api.Dependencies{
		Teams:         teamManager,
		Leaderboard:   board,
		Auth:          sessionMgr,
		Matchmaking:   pool,
		Store:         db,
		Log:           logger,
		EloKFactor:    eloDefaultK,
		DefaultRating: appConfig.Matchmaking.DefaultRating,
	}

	debugCfg := api.DefaultObservabilityConfig()
	if os.Getenv("FIGHTCLUB_DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(debugCfg); err != nil {
			logger.WithError(err).Warn("debug server disabled")
		}
	}

	server := api.NewServer(deps)
	server.ReadTimeout = appConfig.Server.ReadTimeout
	// WriteTimeout comes straight from config (default 10s); configuring 0
	// removes the limit.
	server.WriteTimeout = appConfig.Server.WriteTimeout

	port := appConfig.Server.Port
	if port <= 0 {
		port = 8080
	}
	addr := ":" + strconv.Itoa(port)

	go func() {
		logger.WithField("addr", addr).Info("api server listening")
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("api server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("server shutdown error")
	}
	if err := db.Close(); err != nil {
		logger.WithError(err).Warn("store close error")
	}
	logger.Info("goodbye")
}
