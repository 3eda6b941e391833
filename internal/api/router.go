package api

import (
	"net/http"
	"time"

	"github.com/mrbrackebusch-code/wave-defense-hero-engine-v18/internal/game"
	"github.com/mrbrackebusch-code/wave-defense-hero-engine-v18/internal/render"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineInterface defines the engine methods used by the API.
// *game.Engine satisfies it; tests substitute a mock.
type EngineInterface interface {
	MatchID() string
	GetSnapshot() *game.GameSnapshot
	Stats() game.WorldStats
	Scoreboard(n int) []game.ScoreEntry
	RecentEvents(limit int) []game.Event
	GetEventLogStats() map[string]interface{}

	AddHero(x, y float64) (game.HeroID, error)
	HeroMirror(hero game.HeroID) (game.HeroMirror, error)
	SetIntent(hero game.HeroID, button game.Button) error
	SetDirections(hero game.HeroID, dirs uint8) error
	ExecuteMove(hero game.HeroID, button game.Button) error
	ResolveSupportPuzzle(hero game.HeroID, success bool) error
	ApplySupportBuff(hero game.HeroID, kind game.BuffKind, power, durationMs int) error
	SpawnEnemy(kind game.EnemyKind, x, y float64) (game.EnemyID, error)
}

var _ EngineInterface = (*game.Engine)(nil)

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
// Example usage in tests:
//
//	router := api.NewRouter(api.RouterConfig{
//	    Engine: mockEngine,
//	    RateLimitConfig: &api.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
//	})
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the combat engine (required)
	Engine EngineInterface

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one is created from RateLimitConfig (or the default).
	RateLimiter     *IPRateLimiter
	RateLimitConfig *RateLimitConfig

	// Origins for CORS and the websocket origin check. Nil uses DefaultOrigins.
	Origins []string

	// AdminToken guards spawn/buff routes. Empty leaves them open.
	AdminToken string

	// Renderer draws /api/debug/frame.png. Nil uses scale 4.
	Renderer *render.Renderer

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

type routerHandlers struct {
	engine   EngineInterface
	renderer *render.Renderer
}

// NewRouter constructs the HTTP router with all middleware and routes.
// It starts no goroutines of its own beyond a fresh rate limiter's cleanup loop,
// and opens no listeners, so it is safe to use with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	// Rate limiting before CORS to reject early
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	origins := NewOriginPolicy(cfg.Origins)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins.Origins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", AdminTokenHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	renderer := cfg.Renderer
	if renderer == nil {
		renderer = render.NewRenderer(4)
	}
	h := &routerHandlers{engine: cfg.Engine, renderer: renderer}
	admin := NewAdminAuth(cfg.AdminToken)

	r.Route("/api", func(r chi.Router) {
		// World state
		r.Get("/state", h.handleGetState)
		r.Get("/snapshot", h.handleGetSnapshot)
		r.Get("/stats", h.handleGetStats)
		r.Get("/scoreboard", h.handleGetScoreboard)
		r.Get("/events", h.handleGetEvents)
		r.Get("/debug/frame.png", h.handleDebugFrame)

		// Heroes
		r.Post("/heroes", h.handleAddHero)
		r.Route("/heroes/{heroID}", func(r chi.Router) {
			r.Get("/mirror", h.handleHeroMirror)
			r.Post("/intent", h.handleSetIntent)
			r.Post("/directions", h.handleSetDirections)
			r.Post("/move", h.handleExecuteMove)
			r.Post("/support", h.handleResolveSupport)
			r.With(admin.Middleware).Post("/buff", h.handleApplyBuff)
		})

		// Enemies
		r.With(admin.Middleware).Post("/enemies", h.handleSpawnEnemy)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok", "matchId": cfg.Engine.MatchID()})
	})

	return r
}

// metricsMiddleware records latency per route pattern (bounded label set)
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				endpoint = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordRequest(r.Method, endpoint, status, time.Since(start))
	})
}
