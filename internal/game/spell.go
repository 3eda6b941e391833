package game

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/looplab/fsm"
)

// Spell lifecycle states and events
const (
	SpellSteering  = "steering"
	SpellDetonated = "detonated"
	SpellDone      = "done"

	spellEventDetonate = "detonate"
	spellEventFinish   = "finish"
)

// Spell tuning
const (
	SpellSpeed         = 30.0 // Cast speed, px/s
	SpellSteerAccel    = 40.0 // Velocity added per pressed direction per tick
	SpellMaxSpeed      = 80.0
	SpellOrbRadius     = 2.5
	SpellHardExtraMs   = 1000
	SpellDefaultRadius = 16
	// DefaultTargetingMs is the control window when the stat block has none
	DefaultTargetingMs = 5000

	spellMinLingerMs      = 200
	spellMaxLingerMs      = 1200
	spellIntLingerFloorMs = 400
	spellHealLingerMs     = 500
	spellCleanupMs        = 100
)

// AreaSign selects what a detonation does to the actors it reaches.
type AreaSign int

const (
	AreaDamage AreaSign = iota // Damage + weaken enemies
	AreaHeal                   // Heal heroes
)

// Spell is a steerable orb that detonates once into an area effect.
type Spell struct {
	Sign   AreaSign
	VX, VY float64
	Radius int

	ControlUntil int64
	DetonatedAt  int64
	DestroyAt    int64
	LingerMs     int
	TermX, TermY float64

	fsm *fsm.FSM
}

func newSpell(sign AreaSign, vx, vy float64, radius int, controlUntil int64) *Spell {
	if radius <= 0 {
		radius = SpellDefaultRadius
	}
	return &Spell{
		Sign:         sign,
		VX:           vx,
		VY:           vy,
		Radius:       radius,
		ControlUntil: controlUntil,
		fsm: fsm.NewFSM(
			SpellSteering,
			fsm.Events{
				{Name: spellEventDetonate, Src: []string{SpellSteering}, Dst: SpellDetonated},
				{Name: spellEventFinish, Src: []string{SpellDetonated}, Dst: SpellDone},
			},
			fsm.Callbacks{},
		),
	}
}

// State returns the lifecycle state name
func (s *Spell) State() string {
	return s.fsm.Current()
}

// Detonated reports whether the area effect has fired
func (s *Spell) Detonated() bool {
	return !s.fsm.Is(SpellSteering)
}

// steer applies held directions to the orb velocity and caps its speed.
func (s *Spell) steer(dirs uint8) {
	dx, dy := dirVector(dirs)
	if dx == 0 && dy == 0 {
		return
	}
	s.VX += dx * SpellSteerAccel
	s.VY += dy * SpellSteerAccel
	if sp := math.Hypot(s.VX, s.VY); sp > SpellMaxSpeed {
		s.VX = s.VX * SpellMaxSpeed / sp
		s.VY = s.VY * SpellMaxSpeed / sp
	}
}

func (s *Spell) update(p *Projectile, w *World, owner *Hero, now int64) bool {
	if s.Detonated() {
		if now >= s.DestroyAt {
			_ = s.fsm.Event(context.Background(), spellEventFinish)
			return false
		}
		return true
	}

	if now >= s.ControlUntil {
		if err := s.detonate(p, w, now, p.X, p.Y); err != nil {
			return false
		}
		return true
	}

	if owner.Controlling && owner.ControlledSpell == p.ID {
		s.steer(owner.Dirs)
	}
	p.X += s.VX * w.dtSec
	p.Y += s.VY * w.dtSec
	return true
}

func (s *Spell) hitsRect(p *Projectile, r Rect) bool {
	if s.Detonated() {
		return false
	}
	return CircleHitsRect(p.X, p.Y, SpellOrbRadius, r)
}

// detonate fires the area effect once and frees the caster.
func (s *Spell) detonate(p *Projectile, w *World, now int64, x, y float64) error {
	if err := s.fsm.Event(context.Background(), spellEventDetonate); err != nil {
		return fmt.Errorf("projectile %d: %w", p.ID, ErrDoubleDetonation)
	}

	if owner := w.hero(p.Owner); owner != nil && owner.ControlledSpell == p.ID {
		owner.releaseSpell()
	}

	s.TermX, s.TermY = x, y
	s.VX, s.VY = 0, 0
	p.X, p.Y = x, y
	s.DetonatedAt = now

	switch s.Sign {
	case AreaHeal:
		s.LingerMs = clampI(spellHealLingerMs, spellMinLingerMs, spellMaxLingerMs)
		w.applyArea(p.Owner, x, y, float64(s.Radius), AreaHeal, BasePower(FamilyHeal), StatusPayload{}, now)
	default:
		s.LingerMs = clampI(max(spellIntLingerFloorMs, p.Status.WeakenDurationMs), spellMinLingerMs, spellMaxLingerMs)
		w.applyArea(p.Owner, x, y, float64(s.Radius), AreaDamage, p.Damage, p.Status, now)
	}
	s.DestroyAt = now + int64(s.LingerMs+spellCleanupMs)
	if p.ExpiresAt > 0 && p.ExpiresAt < s.DestroyAt {
		p.ExpiresAt = s.DestroyAt
	}

	w.metrics.detonations++
	w.observer.SpellDetonated()
	w.emit(EventSpellDetonated, p.Owner, SpellDetonatedPayload{
		ProjectileID: uint64(p.ID),
		Heal:         s.Sign == AreaHeal,
		X:            x,
		Y:            y,
		Radius:       s.Radius,
	})
	if w.debug {
		log.Printf("💥 Spell %d from hero %d detonated at (%.1f, %.1f) r=%d", p.ID, p.Owner, x, y, s.Radius)
	}
	return nil
}

func (w *World) spawnSpell(h *Hero, sign AreaSign, nx, ny float64, dmg int, status StatusPayload) *Projectile {
	targeting := h.Stats.TargetingTime
	if targeting <= 0 {
		targeting = DefaultTargetingMs
	}

	p := w.newProjectile(KindSpell, h, dmg, sign == AreaHeal, status)
	p.X, p.Y = h.X, h.Y
	p.ExpiresAt = w.now + int64(targeting+SpellHardExtraMs)
	p.spell = newSpell(sign, nx*SpellSpeed, ny*SpellSpeed, h.Stats.Radius, w.now+int64(targeting))

	h.VX, h.VY = 0, 0
	h.Controlling = true
	h.ControlledSpell = p.ID
	return p
}

// applyArea is the single area-effect primitive shared by damage and heal detonations.
// Results are credited to hero by (-1 for none).
func (w *World) applyArea(by HeroID, x, y, radius float64, sign AreaSign, amount int, status StatusPayload, now int64) {
	r2 := radius * radius
	switch sign {
	case AreaHeal:
		for _, h := range w.heroes {
			if !h.Alive() {
				continue
			}
			dx, dy := h.X-x, h.Y-y
			if dx*dx+dy*dy <= r2 {
				w.scores.AddHealing(by, h.Heal(amount))
			}
		}
	default:
		for _, slot := range w.grid.QueryRadius(x, y, radius) {
			e := &w.enemies[slot]
			if !e.Alive() {
				continue
			}
			dx, dy := e.X-x, e.Y-y
			if dx*dx+dy*dy > r2 {
				continue
			}
			if amount > 0 {
				w.damageEnemy(e, by, amount)
			}
			if status.WeakenPct > 0 && status.WeakenDurationMs > 0 && e.Alive() {
				e.Debuffs.ApplyWeaken(status.WeakenPct, now+int64(status.WeakenDurationMs))
			}
		}
	}
}
