package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrbrackebusch-code/wave-defense-hero-engine-v18/internal/api"
	"github.com/mrbrackebusch-code/wave-defense-hero-engine-v18/internal/config"
	"github.com/mrbrackebusch-code/wave-defense-hero-engine-v18/internal/game"
	"github.com/mrbrackebusch-code/wave-defense-hero-engine-v18/internal/render"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", getEnvWithDefault("CONFIG_PATH", "config.yaml"), "path to YAML config")
	flag.Parse()

	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  WAVE DEFENSE - HERO ENGINE")
	log.Println("🎮 ================================")

	appConfig, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	strategy, err := appConfig.NewStrategy()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	worldCfg := appConfig.ToWorldConfig()
	engine := game.NewEngine(appConfig.World.TickRate, worldCfg, strategy)
	api.InstrumentEngine(engine)

	limits := engine.GetLimits()
	log.Printf("🗺️ Arena %gx%g at %d TPS, heal mode %s", worldCfg.Width, worldCfg.Height, appConfig.World.TickRate, worldCfg.HealCastMode)
	log.Printf("🛡️ Resource limits: %d heroes, %d enemies, %d projectiles",
		limits.MaxHeroes, limits.MaxEnemies, limits.MaxProjectiles)
	if worldCfg.SpawnIntervalMs > 0 {
		log.Printf("👾 Spawner every %dms (seed %d)", worldCfg.SpawnIntervalMs, worldCfg.Seed)
	} else {
		log.Println("👾 Spawner disabled")
	}

	if err := engine.StartEventLog(appConfig.Server.EventLogPath); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
	}

	if appConfig.Server.AdminToken != "" {
		log.Println("🔐 Admin routes require a token")
	} else {
		log.Println("⚠️ Admin routes are OPEN (set ADMIN_TOKEN to protect them)")
	}

	server := api.NewServer(api.ServerOptions{
		RouterConfig: api.RouterConfig{
			Engine:     engine,
			Origins:    appConfig.Server.CORSOrigins,
			AdminToken: appConfig.Server.AdminToken,
			Renderer:   render.NewRenderer(4),
		},
		BroadcastHz: appConfig.Server.BroadcastHz,
		TrustProxy:  appConfig.Server.TrustProxy,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Run(ctx)
	})
	g.Go(func() error {
		return server.Start(ctx, appConfig.Server.Addr())
	})
	g.Go(func() error {
		return api.ServeDebug(ctx, appConfig.Observability)
	})
	g.Go(func() error {
		exportEventLogStats(ctx, engine)
		return nil
	})

	log.Println("✅ Server ready! Press Ctrl+C to stop.")

	if err := g.Wait(); err != nil {
		log.Printf("❌ %v", err)
	}

	log.Println("🛑 Shutting down...")
	engine.StopEventLog()
	log.Println("👋 Goodbye!")
}

// exportEventLogStats copies event log counters into Prometheus until ctx ends
func exportEventLogStats(ctx context.Context, engine *game.Engine) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := engine.GetEventLogStats()
			total, _ := stats["total"].(uint64)
			dropped, _ := stats["dropped"].(uint64)
			api.UpdateEventLogStats(total, dropped)
		}
	}
}

func getEnvWithDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
