package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// ServerOptions configures NewServer
type ServerOptions struct {
	RouterConfig

	// BroadcastHz is how often snapshots are pushed to WebSocket clients
	BroadcastHz int

	// TrustProxy honors X-Forwarded-For / X-Real-IP for client addresses
	TrustProxy bool
}

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with WebSocket hub for real-time updates.
type Server struct {
	engine      EngineInterface
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
	hz          int
}

// NewServer creates a new API server.
//
// Background workers do NOT start until Start() is called, so tests can
// construct a server and use Router() without goroutines or listeners.
func NewServer(opts ServerOptions) *Server {
	s := &Server{
		engine: opts.Engine,
		hz:     opts.BroadcastHz,
	}

	s.rateLimiter = opts.RateLimiter
	if s.rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if opts.RateLimitConfig != nil {
			rateLimitCfg = *opts.RateLimitConfig
		}
		rateLimitCfg.TrustProxyHeaders = opts.TrustProxy
		s.rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}

	cfg := opts.RouterConfig
	cfg.RateLimiter = s.rateLimiter
	s.router = NewRouter(cfg)

	s.wsHub = NewWebSocketHub(opts.Engine, NewOriginPolicy(opts.Origins), opts.TrustProxy)
	s.router.Get("/ws", s.wsHub.HandleWebSocket)

	return s
}

// Start runs the hub, the snapshot broadcast loop and the HTTP listener
// until ctx is cancelled, then shuts the listener down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	go s.wsHub.Run(ctx)
	go s.wsHub.RunBroadcastLoop(ctx, s.hz)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("🌐 API server starting on %s", addr)
	log.Printf("🔌 WebSocket: ws://localhost%s/ws", addr)

	err := serveUntilDone(ctx, srv)
	s.Stop()
	return err
}

// Router returns the HTTP handler for use with httptest.
// Use this in integration tests instead of calling Start().
//
// Example:
//
//	server := api.NewServer(api.ServerOptions{RouterConfig: api.RouterConfig{Engine: engine}})
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/state")
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub exposes the WebSocket hub so tests can drive it without Start
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Stop releases background resources owned by the server
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
