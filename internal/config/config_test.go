package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mrbrackebusch-code/wave-defense-hero-engine-v18/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultMatchesEngineDefaults(t *testing.T) {
	cfg := Default()
	wc := cfg.ToWorldConfig()
	def := game.DefaultWorldConfig()

	assert.Equal(t, def.Width, wc.Width)
	assert.Equal(t, def.Height, wc.Height)
	assert.Equal(t, def.SamplerIntervalMs, wc.SamplerIntervalMs)
	assert.Equal(t, def.RegenIntervalMs, wc.RegenIntervalMs)
	assert.Equal(t, def.RegenPct, wc.RegenPct)
	assert.Equal(t, def.HeroHP, wc.HeroHP)
	assert.Equal(t, def.HeroMana, wc.HeroMana)
	assert.Equal(t, def.HealCastMode, wc.HealCastMode)
	assert.Equal(t, def.SpawnIntervalMs, wc.SpawnIntervalMs)
	assert.Equal(t, game.DefaultLimits, wc.Limits)
	assert.Equal(t, 60, cfg.World.TickRate)
	assert.Equal(t, ":3000", cfg.Server.Addr())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := writeFile(t, `
world:
  width: 320
  tick_rate: 30
combat:
  heal_cast_mode: spell
  regen_pct: 5
spawner:
  interval_ms: 0
  seed: 42
loadouts:
  1:
    A: [1, 10, 20, 30, 40, 0, 2]
    A+B: [2, 0, 0, 0, 0, 4, 3]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 320.0, cfg.World.Width)
	assert.Equal(t, 120.0, cfg.World.Height, "unset fields keep defaults")
	assert.Equal(t, 30, cfg.World.TickRate)
	assert.Equal(t, "spell", cfg.Combat.HealCastMode)
	assert.Equal(t, 5, cfg.Combat.RegenPct)
	assert.Equal(t, 80, cfg.Combat.SamplerIntervalMs)
	assert.Equal(t, 0, cfg.Spawner.IntervalMs)
	assert.Equal(t, int64(42), cfg.Spawner.Seed)

	wc := cfg.ToWorldConfig()
	assert.Equal(t, game.HealCastSpell, wc.HealCastMode)
	assert.Equal(t, 0, wc.SpawnIntervalMs)

	strat, err := cfg.NewStrategy()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 10, 20, 30, 40, 0, 2}, strat.Loadout(1, game.ButtonA))
	assert.Equal(t, []int{2, 0, 0, 0, 0, 4, 3}, strat.Loadout(1, game.ButtonAB))
	assert.Equal(t, game.DefaultLoadout()[game.ButtonB], strat.Loadout(1, game.ButtonB), "unset buttons fall back")
	assert.Equal(t, game.DefaultLoadout()[game.ButtonA], strat.Loadout(0, game.ButtonA))
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed yaml", "world: [1, 2"},
		{"unknown heal mode", "combat:\n  heal_cast_mode: prayer\n"},
		{"zero width", "world:\n  width: -1\n"},
		{"unknown button", "loadouts:\n  0:\n    C: [0, 0, 0, 0, 0, 0, 0]\n"},
		{"short descriptor", "loadouts:\n  0:\n    A: [0, 1, 2]\n"},
		{"bad family", "loadouts:\n  0:\n    B: [9, 0, 0, 0, 0, 0, 0]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadInvalidDescriptorWrapsSentinel(t *testing.T) {
	_, err := Load(writeFile(t, "loadouts:\n  2:\n    A: [7, 0, 0, 0, 0, 0, 0]\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, game.ErrInvalidMoveDescriptor)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "world:\n  tick_rate: 30\nserver:\n  port: 4000\n")
	t.Setenv("TICK_RATE", "120")
	t.Setenv("SPAWN_INTERVAL_MS", "0")
	t.Setenv("HEAL_CAST_MODE", "spell")
	t.Setenv("DEBUG_SERVER_ENABLED", "false")
	t.Setenv("PORT", "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.World.TickRate)
	assert.Equal(t, 0, cfg.Spawner.IntervalMs)
	assert.Equal(t, "spell", cfg.Combat.HealCastMode)
	assert.False(t, cfg.Observability.Enabled)
	assert.Equal(t, 4000, cfg.Server.Port, "unparseable env values are ignored")
}

func TestFromEnvDebugAuth(t *testing.T) {
	t.Setenv("DEBUG_AUTH_USER", "ops")
	t.Setenv("DEBUG_AUTH_PASS", "secret")
	t.Setenv("DEBUG", "true")

	cfg := FromEnv()
	assert.Equal(t, "ops", cfg.Observability.BasicAuthUser)
	assert.Equal(t, "secret", cfg.Observability.BasicAuthPass)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.ToWorldConfig().Debug)
}
