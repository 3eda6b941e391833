// Package config provides centralized configuration management.
// Defaults live here; environment variables and an optional YAML file
// override them.
//
// Precedence: defaults < YAML file < environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/mrbrackebusch-code/wave-defense-hero-engine-v18/internal/game"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// WORLD CONFIGURATION
// =============================================================================

// WorldConfig holds arena dimensions and the engine tick rate.
type WorldConfig struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	TickRate int     `yaml:"tick_rate"` // Ticks per second
}

// DefaultWorld returns the stock arena.
func DefaultWorld() WorldConfig {
	return WorldConfig{
		Width:    160,
		Height:   120,
		TickRate: 60,
	}
}

func (c *WorldConfig) applyEnv() {
	if w := getEnvFloat("WORLD_WIDTH", 0); w > 0 {
		c.Width = w
	}
	if h := getEnvFloat("WORLD_HEIGHT", 0); h > 0 {
		c.Height = h
	}
	if tr := getEnvInt("TICK_RATE", 0); tr > 0 {
		c.TickRate = tr
	}
}

// =============================================================================
// COMBAT CONFIGURATION
// =============================================================================

// CombatConfig holds the move ladders and hero defaults.
type CombatConfig struct {
	SamplerIntervalMs int    `yaml:"sampler_interval_ms"`
	RegenIntervalMs   int    `yaml:"regen_interval_ms"`
	RegenPct          int    `yaml:"regen_pct"`
	HeroHP            int    `yaml:"hero_hp"`
	HeroMana          int    `yaml:"hero_mana"`
	HealCastMode      string `yaml:"heal_cast_mode"` // "support" or "spell"
}

// DefaultCombat returns the stock combat tuning.
func DefaultCombat() CombatConfig {
	return CombatConfig{
		SamplerIntervalMs: 80,
		RegenIntervalMs:   500,
		RegenPct:          2,
		HeroHP:            game.DefaultHeroHP,
		HeroMana:          game.DefaultHeroMana,
		HealCastMode:      string(game.HealCastSupport),
	}
}

func (c *CombatConfig) applyEnv() {
	if v := getEnvInt("SAMPLER_INTERVAL_MS", 0); v > 0 {
		c.SamplerIntervalMs = v
	}
	if v := getEnvInt("REGEN_INTERVAL_MS", 0); v > 0 {
		c.RegenIntervalMs = v
	}
	if v := getEnvInt("REGEN_PCT", -1); v >= 0 {
		c.RegenPct = v
	}
	if mode := os.Getenv("HEAL_CAST_MODE"); mode != "" {
		c.HealCastMode = mode
	}
}

// =============================================================================
// SPAWNER CONFIGURATION
// =============================================================================

// SpawnerConfig controls enemy waves.
type SpawnerConfig struct {
	IntervalMs int   `yaml:"interval_ms"` // <= 0 disables spawning
	Seed       int64 `yaml:"seed"`
}

// DefaultSpawner returns the stock spawner.
func DefaultSpawner() SpawnerConfig {
	return SpawnerConfig{
		IntervalMs: 1200,
		Seed:       1,
	}
}

func (c *SpawnerConfig) applyEnv() {
	if v := os.Getenv("SPAWN_INTERVAL_MS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			c.IntervalMs = i
		}
	}
	if v := os.Getenv("SPAWN_SEED"); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = i
		}
	}
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// LimitsConfig caps world population (DoS protection).
type LimitsConfig struct {
	MaxHeroes      int `yaml:"max_heroes"`
	MaxEnemies     int `yaml:"max_enemies"`
	MaxProjectiles int `yaml:"max_projectiles"`
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() LimitsConfig {
	return LimitsConfig{
		MaxHeroes:      game.DefaultLimits.MaxHeroes,
		MaxEnemies:     game.DefaultLimits.MaxEnemies,
		MaxProjectiles: game.DefaultLimits.MaxProjectiles,
	}
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int      `yaml:"port"`
	CORSOrigins  []string `yaml:"cors_origins"`
	EventLogPath string   `yaml:"event_log_path"` // Empty keeps events in memory
	AdminToken   string   `yaml:"admin_token"`    // Guards spawn/buff routes; empty disables
	TrustProxy   bool     `yaml:"trust_proxy"`    // Honor X-Forwarded-For for rate limiting
	BroadcastHz  int      `yaml:"broadcast_hz"`   // WebSocket snapshot rate
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:        3000,
		BroadcastHz: 10,
	}
}

func (c *ServerConfig) applyEnv() {
	if p := getEnvInt("PORT", 0); p > 0 {
		c.Port = p
	}
	if path := os.Getenv("EVENT_LOG_PATH"); path != "" {
		c.EventLogPath = path
	}
	if tok := os.Getenv("ADMIN_TOKEN"); tok != "" {
		c.AdminToken = tok
	}
	if os.Getenv("TRUST_PROXY") == "true" {
		c.TrustProxy = true
	}
	if hz := getEnvInt("BROADCAST_HZ", 0); hz > 0 {
		c.BroadcastHz = hz
	}
}

// Addr returns the listen address for the API server
func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// =============================================================================
// OBSERVABILITY CONFIGURATION
// =============================================================================

// ObservabilityConfig configures the debug server (pprof + metrics).
type ObservabilityConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ListenAddr    string `yaml:"listen_addr"` // Localhost only unless ALLOW_DEBUG_EXTERNAL=true
	BasicAuthUser string `yaml:"basic_auth_user"`
	BasicAuthPass string `yaml:"basic_auth_pass"`
}

// DefaultObservability returns safe defaults
func DefaultObservability() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

func (c *ObservabilityConfig) applyEnv() {
	if os.Getenv("DEBUG_SERVER_ENABLED") == "false" {
		c.Enabled = false
	}
	if addr := os.Getenv("DEBUG_LISTEN_ADDR"); addr != "" {
		c.ListenAddr = addr
	}
	if u := os.Getenv("DEBUG_AUTH_USER"); u != "" {
		c.BasicAuthUser = u
		c.BasicAuthPass = os.Getenv("DEBUG_AUTH_PASS")
	}
}

// =============================================================================
// LOADOUTS
// =============================================================================

// Loadouts maps hero slot -> button ("A", "B", "A+B") -> raw move descriptor
// [family, t1, t2, t3, t4, element, animId].
type Loadouts map[int]map[string][]int

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	World         WorldConfig         `yaml:"world"`
	Combat        CombatConfig        `yaml:"combat"`
	Spawner       SpawnerConfig       `yaml:"spawner"`
	Limits        LimitsConfig        `yaml:"limits"`
	Server        ServerConfig        `yaml:"server"`
	Observability ObservabilityConfig `yaml:"observability"`
	Loadouts      Loadouts            `yaml:"loadouts"`
	Debug         bool                `yaml:"debug"`
}

// Default returns the complete configuration without any overrides.
func Default() AppConfig {
	return AppConfig{
		World:         DefaultWorld(),
		Combat:        DefaultCombat(),
		Spawner:       DefaultSpawner(),
		Limits:        DefaultLimits(),
		Server:        DefaultServer(),
		Observability: DefaultObservability(),
	}
}

// FromEnv returns defaults with environment overrides.
func FromEnv() AppConfig {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

func (c *AppConfig) applyEnv() {
	c.World.applyEnv()
	c.Combat.applyEnv()
	c.Spawner.applyEnv()
	c.Server.applyEnv()
	c.Observability.applyEnv()
	if os.Getenv("DEBUG") == "true" {
		c.Debug = true
	}
}

// Load reads a YAML file over the defaults, then applies the environment.
// A missing file is not an error; an empty path skips the file.
func Load(path string) (AppConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the engine cannot repair on its own.
func (c AppConfig) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world size %vx%v must be positive", c.World.Width, c.World.Height)
	}
	switch game.HealCastMode(c.Combat.HealCastMode) {
	case game.HealCastSupport, game.HealCastSpell:
	default:
		return fmt.Errorf("unknown heal_cast_mode %q", c.Combat.HealCastMode)
	}
	if _, err := c.Loadouts.Resolve(); err != nil {
		return err
	}
	return nil
}

// ToWorldConfig converts to the engine's world configuration.
func (c AppConfig) ToWorldConfig() game.WorldConfig {
	return game.WorldConfig{
		Width:             c.World.Width,
		Height:            c.World.Height,
		SamplerIntervalMs: c.Combat.SamplerIntervalMs,
		RegenIntervalMs:   c.Combat.RegenIntervalMs,
		RegenPct:          c.Combat.RegenPct,
		HeroHP:            c.Combat.HeroHP,
		HeroMana:          c.Combat.HeroMana,
		HealCastMode:      game.HealCastMode(c.Combat.HealCastMode),
		SpawnIntervalMs:   c.Spawner.IntervalMs,
		Seed:              c.Spawner.Seed,
		Limits: game.ResourceLimits{
			MaxHeroes:      c.Limits.MaxHeroes,
			MaxEnemies:     c.Limits.MaxEnemies,
			MaxProjectiles: c.Limits.MaxProjectiles,
		},
		Debug: c.Debug,
	}
}

// Resolve validates every descriptor and returns them keyed by engine types.
func (l Loadouts) Resolve() (map[game.HeroID]map[game.Button][]int, error) {
	out := make(map[game.HeroID]map[game.Button][]int, len(l))
	for slot, moves := range l {
		if slot < 0 {
			return nil, fmt.Errorf("loadout slot %d: negative slot", slot)
		}
		m := make(map[game.Button][]int, len(moves))
		for name, raw := range moves {
			b, ok := game.ParseButton(name)
			if !ok || b == game.ButtonNone {
				return nil, fmt.Errorf("loadout slot %d: unknown button %q", slot, name)
			}
			if _, err := game.ParseMoveDescriptor(raw); err != nil {
				return nil, fmt.Errorf("loadout slot %d button %s: %w", slot, name, err)
			}
			m[b] = raw
		}
		out[game.HeroID(slot)] = m
	}
	return out, nil
}

// NewStrategy builds the engine's loadout strategy with configured overrides.
func (c AppConfig) NewStrategy() (*game.LoadoutStrategy, error) {
	resolved, err := c.Loadouts.Resolve()
	if err != nil {
		return nil, err
	}
	s := game.NewLoadoutStrategy()
	for hero, moves := range resolved {
		s.SetLoadout(hero, moves)
	}
	return s, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
