package game

import (
	"sync/atomic"
	"time"
)

// ResourceLimits defines hard caps on world population
type ResourceLimits struct {
	MaxHeroes      int
	MaxEnemies     int
	MaxProjectiles int
}

// DefaultLimits provides safe default limits
var DefaultLimits = ResourceLimits{
	MaxHeroes:      4,
	MaxEnemies:     64,
	MaxProjectiles: 128,
}

// HeroSnapshot is an immutable copy of hero state for rendering
type HeroSnapshot struct {
	ID          HeroID     `json:"id" msgpack:"id"`
	X           float64    `json:"x" msgpack:"x"`
	Y           float64    `json:"y" msgpack:"y"`
	W           float64    `json:"w" msgpack:"w"`
	H           float64    `json:"h" msgpack:"h"`
	HP          int        `json:"hp" msgpack:"hp"`
	MaxHP       int        `json:"maxHp" msgpack:"maxHp"`
	Mana        int        `json:"mana" msgpack:"mana"`
	MaxMana     int        `json:"maxMana" msgpack:"maxMana"`
	Facing      string     `json:"facing" msgpack:"facing"`
	Family      string     `json:"family" msgpack:"family"`
	Locked      bool       `json:"locked" msgpack:"locked"`
	Controlling bool       `json:"controlling" msgpack:"controlling"`
	Puzzle      bool       `json:"puzzle" msgpack:"puzzle"`
	Dead        bool       `json:"dead" msgpack:"dead"`
	Combo       int        `json:"combo" msgpack:"combo"`
	Mirror      HeroMirror `json:"mirror" msgpack:"mirror"`
}

// EnemySnapshot is an immutable copy of enemy state for rendering
type EnemySnapshot struct {
	Index    uint32  `json:"index" msgpack:"index"`
	Gen      uint32  `json:"gen" msgpack:"gen"`
	Kind     string  `json:"kind" msgpack:"kind"`
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	W        float64 `json:"w" msgpack:"w"`
	H        float64 `json:"h" msgpack:"h"`
	HP       int     `json:"hp" msgpack:"hp"`
	MaxHP    int     `json:"maxHp" msgpack:"maxHp"`
	Slowed   bool    `json:"slowed" msgpack:"slowed"`
	Weakened bool    `json:"weakened" msgpack:"weakened"`
}

// GameSnapshot is a complete immutable world state for rendering.
// All slices are pre-allocated and capped by ResourceLimits.
type GameSnapshot struct {
	Sequence  uint64    `json:"sequence" msgpack:"sequence"`
	Timestamp time.Time `json:"timestamp" msgpack:"timestamp"`
	MatchID   string    `json:"matchId" msgpack:"matchId"`
	Clock     int64     `json:"clock" msgpack:"clock"`
	Width     float64   `json:"width" msgpack:"width"`
	Height    float64   `json:"height" msgpack:"height"`

	Heroes      []HeroSnapshot       `json:"heroes" msgpack:"heroes"`
	Enemies     []EnemySnapshot      `json:"enemies" msgpack:"enemies"`
	Projectiles []ProjectileSnapshot `json:"projectiles" msgpack:"projectiles"`

	AliveHeroes int `json:"aliveHeroes" msgpack:"aliveHeroes"`
	Kills       int `json:"kills" msgpack:"kills"`
}

// Clone returns a deep copy that stays valid after the pool reuses the slot
func (s *GameSnapshot) Clone() *GameSnapshot {
	c := *s
	c.Heroes = append([]HeroSnapshot(nil), s.Heroes...)
	c.Enemies = append([]EnemySnapshot(nil), s.Enemies...)
	c.Projectiles = append([]ProjectileSnapshot(nil), s.Projectiles...)
	return &c
}

// SnapshotPool pre-allocates snapshots to avoid GC pressure.
// Triple buffering keeps the tick goroutine from blocking on readers.
type SnapshotPool struct {
	snapshots [3]GameSnapshot
	limits    ResourceLimits
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic - monotonic sequence
}

// NewSnapshotPool creates a pool with pre-allocated slices
func NewSnapshotPool(limits ResourceLimits) *SnapshotPool {
	pool := &SnapshotPool{limits: limits}
	for i := range pool.snapshots {
		pool.snapshots[i] = GameSnapshot{
			Heroes:      make([]HeroSnapshot, 0, limits.MaxHeroes),
			Enemies:     make([]EnemySnapshot, 0, limits.MaxEnemies),
			Projectiles: make([]ProjectileSnapshot, 0, limits.MaxProjectiles),
		}
	}
	return pool
}

// AcquireWrite gets the next write slot (producer only, called from the tick).
// Returns a snapshot with reset slices but preserved capacity.
func (p *SnapshotPool) AcquireWrite() *GameSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Heroes = snap.Heroes[:0]
	snap.Enemies = snap.Enemies[:0]
	snap.Projectiles = snap.Projectiles[:0]
	snap.AliveHeroes = 0

	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()
	return snap
}

// PublishWrite marks the write complete and advances the read pointer
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead gets the latest complete snapshot
func (p *SnapshotPool) AcquireRead() *GameSnapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}

// GetLimits returns the resource limits
func (p *SnapshotPool) GetLimits() ResourceLimits {
	return p.limits
}

// FillSnapshot copies world state into snap, respecting the pool's caps.
func (w *World) FillSnapshot(snap *GameSnapshot, limits ResourceLimits) {
	snap.MatchID = w.MatchID
	snap.Clock = w.now
	snap.Width, snap.Height = w.cfg.Width, w.cfg.Height
	snap.Kills = w.metrics.kills

	for _, h := range w.heroes {
		if !h.Dead {
			snap.AliveHeroes++
		}
		if len(snap.Heroes) >= limits.MaxHeroes {
			continue
		}
		snap.Heroes = append(snap.Heroes, HeroSnapshot{
			ID:          h.ID,
			X:           h.X,
			Y:           h.Y,
			W:           h.W,
			H:           h.H,
			HP:          h.HP,
			MaxHP:       h.MaxHP,
			Mana:        h.Mana,
			MaxMana:     h.MaxMana,
			Facing:      h.FacingName(),
			Family:      h.Family.String(),
			Locked:      h.Locked,
			Controlling: h.Controlling,
			Puzzle:      h.PuzzleLocked,
			Dead:        h.Dead,
			Combo:       h.Combo.Count,
			Mirror:      h.mirror,
		})
	}

	for i := range w.enemies {
		e := &w.enemies[i]
		if !e.Alive() || len(snap.Enemies) >= limits.MaxEnemies {
			continue
		}
		snap.Enemies = append(snap.Enemies, EnemySnapshot{
			Index:    e.ID.Index,
			Gen:      e.ID.Gen,
			Kind:     e.Kind.String(),
			X:        e.X,
			Y:        e.Y,
			W:        e.W,
			H:        e.H,
			HP:       e.HP,
			MaxHP:    e.MaxHP,
			Slowed:   e.Debuffs.SlowActive(w.now),
			Weakened: e.Debuffs.WeakenActive(w.now),
		})
	}

	for _, p := range w.projectiles {
		if p.done || len(snap.Projectiles) >= limits.MaxProjectiles {
			continue
		}
		snap.Projectiles = append(snap.Projectiles, p.ToSnapshot(w))
	}
}
