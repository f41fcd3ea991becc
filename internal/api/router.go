package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"fight-club/internal/auth"
)

// RouterConfig contains every dependency needed to construct the HTTP
// router. Designed for dependency injection: tests build one with
// lightweight in-memory collaborators and exercise it via
// httptest.NewServer without touching the real store or a live sqlite
// file.
type RouterConfig struct {
	Deps *Dependencies

	RateLimiter     *RequestLimiter
	RateLimitConfig *RateLimitConfig
	CORSOrigins     []string
	DisableLogging  bool
	ReplayHub       *ReplayHub
}

// NewRouter builds the HTTP router. It opens no listeners and is safe to
// wrap with httptest.NewServer. When cfg.RateLimiter is nil it builds one
// with NewRequestLimiter, which starts that limiter's cleanup goroutine.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		var authMgr *auth.Manager
		if cfg.Deps != nil {
			authMgr = cfg.Deps.Auth
		}
		rateLimiter = NewRequestLimiter(rateLimitCfg, authMgr)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	replayHub := cfg.ReplayHub
	if replayHub == nil {
		replayHub = NewReplayHub()
	}

	h := &routerHandlers{deps: cfg.Deps}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/guest", h.handleGuestLogin)
		r.Get("/auth/status", h.handleAuthStatus)
		r.Post("/auth/logout", h.handleLogout)

		r.Post("/battles", h.handleCreateBattle)
		r.Get("/battles/{id}", h.handleGetBattle)
		r.Get("/battles/{id}/replay", func(w http.ResponseWriter, req *http.Request) {
			h.handleReplayBattle(w, req, replayHub)
		})

		r.Post("/teams", h.handleCreateTeam)
		r.Get("/teams/mine", h.handleListMyTeams)
		r.Get("/teams/top", h.handleTopTeams)
		r.Get("/teams/{id}", h.handleGetTeam)
		r.Put("/teams/{id}/roster", h.handleSetRoster)
		r.Post("/teams/{id}/queue", h.handleQueueTeam)

		r.Get("/leaderboard", h.handleLeaderboardTop)
		r.Get("/leaderboard/{id}/around", h.handleLeaderboardAround)
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
