package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/mrbrackebusch-code/wave-defense-hero-engine-v18/internal/config"
	"github.com/mrbrackebusch-code/wave-defense-hero-engine-v18/internal/game"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality (no per-hero labels)
var (
	// Combat engine metrics
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "combat_tick_duration_seconds",
		Help:    "Time spent in a world step",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025},
	})

	heroCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "combat_heroes",
		Help: "Current number of heroes",
	})

	enemyCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "combat_enemies",
		Help: "Current number of live enemies",
	})

	projectileCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "combat_projectiles",
		Help: "Current number of active projectiles",
	})

	movesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "combat_moves_total",
		Help: "Moves executed",
	}, []string{"family"}) // Bounded: strength, agility, intellect, heal

	rejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "combat_move_rejections_total",
		Help: "Moves rejected before execution",
	}, []string{"reason"}) // Bounded: see rejectionReason

	detonationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "combat_spell_detonations_total",
		Help: "Spell detonations",
	})

	killsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "combat_enemy_kills_total",
		Help: "Enemies killed",
	}, []string{"kind"}) // Bounded: GRUNT, BRUTE

	heroDamageTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "combat_hero_damage_total",
		Help: "Contact damage taken by heroes",
	})

	// Event log metrics
	eventLogTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "event_log_total",
		Help: "Total events logged",
	})

	eventLogDropped = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "event_log_dropped",
		Help: "Events dropped due to rate limiting or buffer full",
	})

	// DoS detection metrics - use ONLY bounded label values
	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"

	// HTTP metrics with bounded labels
	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is the route pattern, not the URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	// WebSocket metrics
	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "WebSocket messages by direction",
	}, []string{"direction"}) // Bounded: "out", "in"
)

// PromObserver feeds combat outcomes into Prometheus. It implements game.Observer.
type PromObserver struct{}

func (PromObserver) MoveExecuted(family game.Family) {
	movesTotal.WithLabelValues(family.String()).Inc()
}

func (PromObserver) MoveRejected(reason error) {
	rejectionsTotal.WithLabelValues(rejectionReason(reason)).Inc()
}

func (PromObserver) SpellDetonated() {
	detonationsTotal.Inc()
}

func (PromObserver) EnemyKilled(kind game.EnemyKind) {
	killsTotal.WithLabelValues(kind.String()).Inc()
}

func (PromObserver) HeroDamaged(amount int) {
	heroDamageTotal.Add(float64(amount))
}

var _ game.Observer = PromObserver{}

// rejectionReason maps an engine error onto a fixed label set
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, game.ErrHeroBusy):
		return "busy"
	case errors.Is(err, game.ErrControllingSpell):
		return "controlling"
	case errors.Is(err, game.ErrPuzzleActive):
		return "puzzle"
	case errors.Is(err, game.ErrInsufficientMana):
		return "mana"
	case errors.Is(err, game.ErrInvalidMoveDescriptor):
		return "invalid_descriptor"
	case errors.Is(err, game.ErrMissingActor):
		return "missing_actor"
	default:
		return "other"
	}
}

// TickRecorder is installed as the engine tick hook.
func TickRecorder(d time.Duration, stats game.WorldStats) {
	tickDuration.Observe(d.Seconds())
	heroCount.Set(float64(stats.Heroes))
	enemyCount.Set(float64(stats.Enemies))
	projectileCount.Set(float64(stats.Projectiles))
}

// InstrumentEngine wires the observer and tick hook into an engine
func InstrumentEngine(e *game.Engine) {
	e.SetObserver(PromObserver{})
	e.SetTickHook(TickRecorder)
}

// UpdateEventLogStats copies event log counters into gauges
func UpdateEventLogStats(total, dropped uint64) {
	eventLogTotal.Set(float64(total))
	eventLogDropped.Set(float64(dropped))
}

// RecordConnectionRejected increments the rejection counter
// reason must be one of: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages counts one message in direction "out" or "in"
func IncrementWSMessages(direction string) {
	wsMessagesTotal.WithLabelValues(direction).Inc()
}

// DebugHandler builds the pprof + metrics mux, behind basic auth when configured
func DebugHandler(cfg config.ObservabilityConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if cfg.BasicAuthUser != "" {
		return basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}
	return mux
}

// ServeDebug runs the observability server until ctx is cancelled.
// It MUST bind to localhost unless ALLOW_DEBUG_EXTERNAL=true.
func ServeDebug(ctx context.Context, cfg config.ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	if !isLoopbackAddr(cfg.ListenAddr) && os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
		log.Println("⚠️ Debug server forced to localhost for security")
		cfg.ListenAddr = "127.0.0.1:6060"
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           DebugHandler(cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("📊 Debug server starting on %s", cfg.ListenAddr)
	log.Printf("   - pprof:   http://%s/debug/pprof/", cfg.ListenAddr)
	log.Printf("   - metrics: http://%s/metrics", cfg.ListenAddr)

	return serveUntilDone(ctx, srv)
}

func isLoopbackAddr(addr string) bool {
	for _, prefix := range []string{"127.0.0.1:", "localhost:", "[::1]:"} {
		if len(addr) > len(prefix) && addr[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// serveUntilDone runs srv and shuts it down gracefully when ctx ends
func serveUntilDone(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// basicAuthMiddleware adds basic authentication to the handler
func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
