package game

import "math"

// EnemyID addresses an enemy slot. Gen changes each time the slot is reused,
// so a stale handle never resolves to a newer enemy.
type EnemyID struct {
	Index uint32
	Gen   uint32
}

// EnemyKind selects an enemy template.
type EnemyKind int

const (
	EnemyGrunt EnemyKind = iota
	EnemyBrute
)

func (k EnemyKind) String() string {
	if k == EnemyBrute {
		return "BRUTE"
	}
	return "GRUNT"
}

// ParseEnemyKind maps a kind name; anything unknown is a grunt.
func ParseEnemyKind(s string) EnemyKind {
	if s == "BRUTE" || s == "brute" {
		return EnemyBrute
	}
	return EnemyGrunt
}

// EnemyTemplate holds the spawn stats for a kind.
type EnemyTemplate struct {
	MaxHP       int
	Speed       int
	TouchDamage int
}

// EnemyTemplates is indexed by EnemyKind.
var EnemyTemplates = [...]EnemyTemplate{
	EnemyGrunt: {MaxHP: 50, Speed: 28, TouchDamage: 8},
	EnemyBrute: {MaxHP: 160, Speed: 18, TouchDamage: 15},
}

// Attack cycle phases and timings (ms)
const (
	attackIdle = iota
	attackLunge
	attackRecoil
	attackRest

	AttackLungeMs    = 120
	AttackRecoilMs   = 90
	AttackRestMs     = 220
	AttackCooldownMs = 600
)

// Enemy is a world-controlled actor.
type Enemy struct {
	ID          EnemyID
	Kind        EnemyKind
	X, Y        float64
	VX, VY      float64
	W, H        float64
	HP, MaxHP   int
	Speed       int
	TouchDamage int
	Debuffs     Debuffs

	attackPhase    int
	attackUntil    int64
	attackCooldown int64
	alive          bool
}

// Alive reports whether the slot holds a live enemy
func (e *Enemy) Alive() bool {
	return e != nil && e.alive
}

// Rect returns the enemy's bounding box
func (e *Enemy) Rect() Rect {
	return Rect{X: e.X, Y: e.Y, W: e.W, H: e.H}
}

// Damage reduces HP, clamping at zero. Returns true if the enemy died.
func (e *Enemy) Damage(amount int) bool {
	if !e.alive || amount <= 0 {
		return false
	}
	e.HP -= amount
	if e.HP <= 0 {
		e.HP = 0
		e.alive = false
		e.VX, e.VY = 0, 0
		return true
	}
	return false
}

// EnemyView is the read-only enemy summary handed to the move logic hook.
type EnemyView struct {
	ID   EnemyID
	Kind EnemyKind
	X, Y float64
	HP   int
}

// think runs homing and the attack cycle for one enemy.
func (e *Enemy) think(heroes []*Hero, now int64) {
	if e.Debuffs.KnockedBack(now) {
		return
	}

	var target *Hero
	best := math.MaxFloat64
	for _, h := range heroes {
		if !h.Alive() {
			continue
		}
		dx, dy := h.X-e.X, h.Y-e.Y
		if d2 := dx*dx + dy*dy; d2 < best {
			best = d2
			target = h
		}
	}
	if target == nil {
		e.VX, e.VY = 0, 0
		return
	}

	dx, dy := target.X-e.X, target.Y-e.Y
	mag := math.Sqrt(dx*dx + dy*dy)
	if mag == 0 {
		mag = 1
	}

	if e.attackPhase == attackIdle && now >= e.attackCooldown &&
		SignificantOverlap(target.Rect(), e.Rect(), ContactOverlapPct) {
		e.attackPhase = attackLunge
		e.attackUntil = now + AttackLungeMs
	}

	speed := e.Speed
	if e.Debuffs.SlowActive(now) {
		speed = idiv(speed*max(0, 100-e.Debuffs.SlowPct), 100)
	}

	switch e.attackPhase {
	case attackLunge:
		e.VX, e.VY = dx*float64(2*speed)/mag, dy*float64(2*speed)/mag
		if now >= e.attackUntil {
			e.attackPhase = attackRecoil
			e.attackUntil = now + AttackRecoilMs
		}
	case attackRecoil:
		e.VX, e.VY = -dx*float64(speed)/mag, -dy*float64(speed)/mag
		if now >= e.attackUntil {
			e.attackPhase = attackRest
			e.attackUntil = now + AttackRestMs
			e.attackCooldown = now + AttackCooldownMs
		}
	case attackRest:
		e.VX, e.VY = 0, 0
		if now >= e.attackUntil {
			e.attackPhase = attackIdle
		}
	default:
		e.VX, e.VY = dx*float64(speed)/mag, dy*float64(speed)/mag
	}
}
