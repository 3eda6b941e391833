package game

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mrbrackebusch-code/wave-defense-hero-engine-v18/internal/game/spatial"
)

// HealCastMode selects what a heal-family move does.
type HealCastMode string

const (
	HealCastSupport HealCastMode = "support" // Puzzle-gated buff beams
	HealCastSpell   HealCastMode = "spell"   // Steerable heal orb
)

// WorldConfig holds the tunables of one combat world.
type WorldConfig struct {
	Width, Height float64

	SamplerIntervalMs int // Move sampling ladder
	RegenIntervalMs   int // Mana regen ladder
	RegenPct          int // Percent of max mana per regen step

	HeroHP       int
	HeroMana     int
	HealCastMode HealCastMode

	SpawnIntervalMs int // <= 0 disables the spawner
	Seed            int64

	Limits ResourceLimits
	Debug  bool
}

// DefaultWorldConfig returns the stock arena
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Width:             160,
		Height:            120,
		SamplerIntervalMs: 80,
		RegenIntervalMs:   500,
		RegenPct:          2,
		HeroHP:            DefaultHeroHP,
		HeroMana:          DefaultHeroMana,
		HealCastMode:      HealCastSupport,
		SpawnIntervalMs:   1200,
		Seed:              1,
		Limits:            DefaultLimits,
	}
}

// gridCellSize covers the largest swing plus an actor
const gridCellSize = 32.0

// Observer receives combat outcomes for metrics. All methods are called
// with the world lock held and must not block.
type Observer interface {
	MoveExecuted(family Family)
	MoveRejected(reason error)
	SpellDetonated()
	EnemyKilled(kind EnemyKind)
	HeroDamaged(amount int)
}

type nopObserver struct{}

func (nopObserver) MoveExecuted(Family) {}
func (nopObserver) MoveRejected(error) {}
func (nopObserver) SpellDetonated() {}
func (nopObserver) EnemyKilled(EnemyKind) {}
func (nopObserver) HeroDamaged(int) {}

type worldMetrics struct {
	moves       int
	rejections  int
	detonations int
	kills       int
	spawns      int
	contacts    int
}

// WorldStats is a point-in-time summary of world counters
type WorldStats struct {
	Clock       int64 `json:"clock"`
	Heroes      int   `json:"heroes"`
	Enemies     int   `json:"enemies"`
	Projectiles int   `json:"projectiles"`
	Moves       int   `json:"moves"`
	Rejections  int   `json:"rejections"`
	Detonations int   `json:"detonations"`
	Kills       int   `json:"kills"`
	Spawns      int   `json:"spawns"`
	Contacts    int   `json:"contacts"`
}

type pendingInput struct {
	intent Button
	dirs   uint8
}

// World is the combat world. It owns every hero, enemy and projectile and is
// advanced only by Step. World is not safe for concurrent use; Engine wraps it.
type World struct {
	MatchID string

	cfg      WorldConfig
	strategy Strategy
	events   EventSink
	observer Observer
	debug    bool

	heroes      []*Hero
	enemies     []Enemy
	freeEnemies []uint32
	projectiles []*Projectile
	nextProjID  ProjectileID

	input map[HeroID]pendingInput

	grid       *spatial.SpatialGrid
	candidates []uint32
	spawner    *Spawner

	now        int64
	lastStep   int64
	started    bool
	startedAt  int64
	dtSec      float64
	nextSample int64
	nextRegen  int64

	metrics worldMetrics
	scores  Scoreboard
}

// NewWorld creates an empty world. A nil strategy uses NewLoadoutStrategy;
// a nil sink discards events.
func NewWorld(cfg WorldConfig, strategy Strategy, events EventSink) *World {
	if strategy == nil {
		strategy = NewLoadoutStrategy()
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		def := DefaultWorldConfig()
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	if cfg.Limits.MaxEnemies <= 0 {
		cfg.Limits = DefaultLimits
	}
	if cfg.HealCastMode == "" {
		cfg.HealCastMode = HealCastSupport
	}

	w := &World{
		MatchID:     uuid.NewString(),
		cfg:         cfg,
		strategy:    strategy,
		events:      events,
		observer:    nopObserver{},
		debug:       cfg.Debug,
		heroes:      make([]*Hero, 0, cfg.Limits.MaxHeroes),
		enemies:     make([]Enemy, 0, cfg.Limits.MaxEnemies),
		projectiles: make([]*Projectile, 0, cfg.Limits.MaxProjectiles),
		input:       make(map[HeroID]pendingInput),
		grid:        spatial.NewSpatialGrid(cfg.Width, cfg.Height, gridCellSize, cfg.Limits.MaxEnemies),
		candidates:  make([]uint32, 0, 64),
	}
	if cfg.SpawnIntervalMs > 0 {
		w.spawner = NewSpawner(cfg.SpawnIntervalMs, cfg.Seed, cfg.Width, cfg.Height)
	}
	return w
}

// SetObserver installs a metrics observer
func (w *World) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	w.observer = o
}

// Config returns the world configuration
func (w *World) Config() WorldConfig {
	return w.cfg
}

// Now returns the clock value of the last Step
func (w *World) Now() int64 {
	return w.now
}

// AddHero places a new hero and returns its handle.
func (w *World) AddHero(x, y float64) (HeroID, error) {
	if w.cfg.Limits.MaxHeroes > 0 && len(w.heroes) >= w.cfg.Limits.MaxHeroes {
		return 0, fmt.Errorf("hero limit %d reached", w.cfg.Limits.MaxHeroes)
	}
	id := HeroID(len(w.heroes))
	w.heroes = append(w.heroes, NewHero(id, x, y, w.cfg.HeroHP, w.cfg.HeroMana))
	w.scores.Track(id)
	return id, nil
}

// Hero returns the hero for a handle, or nil
func (w *World) Hero(id HeroID) *Hero {
	return w.hero(id)
}

func (w *World) hero(id HeroID) *Hero {
	if id < 0 || int(id) >= len(w.heroes) {
		return nil
	}
	return w.heroes[id]
}

// HeroMirror returns the mirrored status fields for a hero.
func (w *World) HeroMirror(id HeroID) (HeroMirror, error) {
	h := w.hero(id)
	if h == nil {
		return HeroMirror{}, fmt.Errorf("hero %d: %w", id, ErrMissingActor)
	}
	return h.mirror, nil
}

// Enemy resolves an enemy handle, or nil if it is stale or dead.
func (w *World) Enemy(id EnemyID) *Enemy {
	if int(id.Index) >= len(w.enemies) {
		return nil
	}
	e := &w.enemies[id.Index]
	if !e.Alive() || e.ID.Gen != id.Gen {
		return nil
	}
	return e
}

// SpawnEnemy places an enemy of a kind, reusing a free slot when possible.
func (w *World) SpawnEnemy(kind EnemyKind, x, y float64) (EnemyID, error) {
	tmpl := EnemyTemplates[EnemyGrunt]
	if int(kind) >= 0 && int(kind) < len(EnemyTemplates) {
		tmpl = EnemyTemplates[kind]
	}

	var slot uint32
	var gen uint32
	switch {
	case len(w.freeEnemies) > 0:
		slot = w.freeEnemies[len(w.freeEnemies)-1]
		w.freeEnemies = w.freeEnemies[:len(w.freeEnemies)-1]
		gen = w.enemies[slot].ID.Gen + 1
		for _, p := range w.projectiles {
			p.hits.clear(slot)
		}
	case len(w.enemies) < w.cfg.Limits.MaxEnemies:
		slot = uint32(len(w.enemies))
		w.enemies = append(w.enemies, Enemy{})
	default:
		return EnemyID{}, fmt.Errorf("enemy limit %d reached", w.cfg.Limits.MaxEnemies)
	}

	id := EnemyID{Index: slot, Gen: gen}
	w.enemies[slot] = Enemy{
		ID:          id,
		Kind:        kind,
		X:           x,
		Y:           y,
		W:           ActorSize,
		H:           ActorSize,
		HP:          tmpl.MaxHP,
		MaxHP:       tmpl.MaxHP,
		Speed:       tmpl.Speed,
		TouchDamage: tmpl.TouchDamage,
		alive:       true,
	}
	w.metrics.spawns++
	w.emit(EventEnemySpawned, -1, EnemyPayload{Index: slot, Gen: gen, Kind: kind.String(), X: x, Y: y})
	return id, nil
}

// SetIntent latches a move button for a hero; it is applied at the next Step.
func (w *World) SetIntent(id HeroID, button Button) error {
	if w.hero(id) == nil {
		return fmt.Errorf("hero %d: %w", id, ErrMissingActor)
	}
	in := w.input[id]
	in.intent = button
	w.input[id] = in
	return nil
}

// SetDirections latches the held direction mask for a hero.
func (w *World) SetDirections(id HeroID, dirs uint8) error {
	if w.hero(id) == nil {
		return fmt.Errorf("hero %d: %w", id, ErrMissingActor)
	}
	in := w.input[id]
	in.dirs = dirs & (DirUp | DirDown | DirLeft | DirRight)
	w.input[id] = in
	return nil
}

// Step advances the world to now. now must be read once per tick from a
// monotonic clock; every phase uses the same value.
func (w *World) Step(now int64) {
	if !w.started {
		w.started = true
		w.startedAt = now
		w.lastStep = now
		w.nextSample = now
		w.nextRegen = now + int64(w.cfg.RegenIntervalMs)
		w.emit(EventMatchStarted, -1, MatchStartedPayload{Heroes: len(w.heroes), Seed: w.cfg.Seed})
	}
	dt := now - w.lastStep
	if dt < 0 {
		dt = 0
	}
	w.dtSec = float64(dt) / 1000
	w.lastStep = now
	w.now = now

	w.updateFacing()
	w.latchInput()
	w.runLadders(now)
	w.updateControlLocks()
	w.updateBuffs(now)
	w.updateKinematics(now)
	w.resolveHits(now)
	w.cleanup(now)
}

func (w *World) updateFacing() {
	for _, h := range w.heroes {
		if h.Alive() {
			h.updateFacing()
		}
	}
}

func (w *World) latchInput() {
	for id, in := range w.input {
		h := w.hero(id)
		if !h.Alive() {
			continue
		}
		h.Intent = in.intent
		h.Dirs = in.dirs
	}
}

// runLadders fires the move sampler and the mana regen on their own intervals.
func (w *World) runLadders(now int64) {
	if w.cfg.SamplerIntervalMs > 0 && now >= w.nextSample {
		w.nextSample = advanceLadder(w.nextSample, now, w.cfg.SamplerIntervalMs)
		for _, h := range w.heroes {
			if !h.Alive() || h.Intent == ButtonNone {
				continue
			}
			w.sampleMove(h)
		}
	}

	if w.cfg.RegenIntervalMs > 0 && now >= w.nextRegen {
		w.nextRegen = advanceLadder(w.nextRegen, now, w.cfg.RegenIntervalMs)
		for _, h := range w.heroes {
			if !h.Alive() || h.Mana >= h.MaxMana {
				continue
			}
			gain := max(1, idiv(h.MaxMana*w.cfg.RegenPct, 100))
			h.Mana = min(h.MaxMana, h.Mana+gain)
		}
	}
}

// advanceLadder moves a ladder deadline past now without bursting after a stall.
func advanceLadder(next, now int64, intervalMs int) int64 {
	next += int64(intervalMs)
	if next <= now {
		next = now + int64(intervalMs)
	}
	return next
}

func (w *World) updateBuffs(now int64) {
	for _, h := range w.heroes {
		if !h.Alive() {
			continue
		}
		h.Buffs.Update(now)
		h.refreshMirror()
	}
}

// updateKinematics integrates actors, runs enemy AI and advances every projectile model.
func (w *World) updateKinematics(now int64) {
	if w.spawner != nil {
		if kind, x, y, ok := w.spawner.Next(now, now-w.startedAt); ok {
			if _, err := w.SpawnEnemy(kind, x, y); err != nil && w.debug {
				log.Printf("⚠️ Spawner: %v", err)
			}
		}
	}

	for _, h := range w.heroes {
		if !h.Alive() {
			continue
		}
		h.X = clampF(h.X+h.VX*w.dtSec, 0, w.cfg.Width)
		h.Y = clampF(h.Y+h.VY*w.dtSec, 0, w.cfg.Height)
	}
	for i := range w.enemies {
		e := &w.enemies[i]
		if !e.Alive() {
			continue
		}
		e.X += e.VX * w.dtSec
		e.Y += e.VY * w.dtSec
	}

	w.rebuildGrid()

	for i := range w.enemies {
		if e := &w.enemies[i]; e.Alive() {
			e.think(w.heroes, now)
		}
	}

	// Index loop: projectiles spawned during this pass run next tick
	n := len(w.projectiles)
	for i := 0; i < n; i++ {
		p := w.projectiles[i]
		if !p.done && !p.Update(w, now) {
			p.done = true
		}
	}
}

func (w *World) rebuildGrid() {
	w.grid.Clear()
	for i := range w.enemies {
		if e := &w.enemies[i]; e.Alive() {
			w.grid.Insert(uint32(i), e.X, e.Y)
		}
	}
}

// cleanup expires enemy effects, compacts projectiles and refreshes mirrors.
func (w *World) cleanup(now int64) {
	for i := range w.enemies {
		e := &w.enemies[i]
		if !e.Alive() {
			continue
		}
		if e.Debuffs.Expire(now) {
			e.VX, e.VY = 0, 0
		}
	}

	n := 0
	for _, p := range w.projectiles {
		if p.done {
			w.dropProjectile(p)
			continue
		}
		w.projectiles[n] = p
		n++
	}
	for i := n; i < len(w.projectiles); i++ {
		w.projectiles[i] = nil
	}
	w.projectiles = w.projectiles[:n]

	for _, h := range w.heroes {
		h.refreshMirror()
	}
}

// dropProjectile releases anything the projectile still holds on its owner.
func (w *World) dropProjectile(p *Projectile) {
	if p.Kind != KindSpell {
		return
	}
	if owner := w.hero(p.Owner); owner != nil && owner.Controlling && owner.ControlledSpell == p.ID {
		owner.releaseSpell()
	}
}

func (w *World) newProjectile(kind ProjectileKind, h *Hero, dmg int, heal bool, status StatusPayload) *Projectile {
	w.nextProjID++
	p := &Projectile{
		ID:        w.nextProjID,
		Kind:      kind,
		Owner:     h.ID,
		Family:    h.Family,
		Button:    h.Button,
		Damage:    dmg,
		Heal:      heal,
		Status:    status,
		CreatedAt: w.now,
	}
	w.projectiles = append(w.projectiles, p)
	return p
}

// Projectile looks up a live projectile by ID
func (w *World) Projectile(id ProjectileID) *Projectile {
	for _, p := range w.projectiles {
		if p.ID == id && !p.done {
			return p
		}
	}
	return nil
}

// damageEnemy applies damage from a hero (or -1) and handles the kill.
func (w *World) damageEnemy(e *Enemy, by HeroID, amount int) {
	hp := e.HP
	killed := e.Damage(amount)
	w.scores.AddDamage(by, hp-e.HP)
	if killed {
		w.metrics.kills++
		w.freeEnemies = append(w.freeEnemies, e.ID.Index)
		w.scores.AddKill(by)
		w.observer.EnemyKilled(e.Kind)
		w.emit(EventEnemyKilled, by, EnemyPayload{
			Index: e.ID.Index,
			Gen:   e.ID.Gen,
			Kind:  e.Kind.String(),
			X:     e.X,
			Y:     e.Y,
		})
	}
}

func (w *World) emit(t EventType, actor HeroID, payload interface{}) {
	if w.events == nil {
		return
	}
	actorID := ""
	if actor >= 0 {
		actorID = HeroActorID(actor)
	}
	w.events.Emit(NewEvent(t, w.MatchID, w.now, actorID, payload))
}

func (w *World) enemyViews() []EnemyView {
	out := make([]EnemyView, 0, len(w.enemies))
	for i := range w.enemies {
		e := &w.enemies[i]
		if e.Alive() {
			out = append(out, EnemyView{ID: e.ID, Kind: e.Kind, X: e.X, Y: e.Y, HP: e.HP})
		}
	}
	return out
}

func (w *World) heroViews() []HeroView {
	out := make([]HeroView, 0, len(w.heroes))
	for _, h := range w.heroes {
		if h.Alive() {
			out = append(out, h.view(w.now))
		}
	}
	return out
}

// Stats returns world counters
func (w *World) Stats() WorldStats {
	s := WorldStats{
		Clock:       w.now,
		Heroes:      len(w.heroes),
		Projectiles: len(w.projectiles),
		Moves:       w.metrics.moves,
		Rejections:  w.metrics.rejections,
		Detonations: w.metrics.detonations,
		Kills:       w.metrics.kills,
		Spawns:      w.metrics.spawns,
		Contacts:    w.metrics.contacts,
	}
	for i := range w.enemies {
		if w.enemies[i].Alive() {
			s.Enemies++
		}
	}
	return s
}

// Scoreboard returns up to n ranked hero totals (n <= 0 returns all)
func (w *World) Scoreboard(n int) []ScoreEntry {
	return w.scores.Ranking(n)
}

// Elapsed returns the time since the first Step
func (w *World) Elapsed() time.Duration {
	return time.Duration(w.now-w.startedAt) * time.Millisecond
}
