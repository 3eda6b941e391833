package game

import (
	"fmt"
	"log"
	"math"
)

// Support cast tuning
const (
	SupportPuzzleLength     = 4
	SupportBaseDurationMs   = 2000
	SupportDurationPerPower = 25
	SupportBeamStep         = 3.0 // Pixels the beam head travels per tick
	supportBeamSnapDist     = 2.0
)

// Support puzzle directions, as reported by the puzzle front end.
const (
	SupportDirUp = iota
	SupportDirDown
	SupportDirLeft
	SupportDirRight
)

// SupportBeam carries one share of a support grant from caster to target.
type SupportBeam struct {
	Target     HeroID
	Kind       BuffKind
	Power      int
	DurationMs int
	Travel     float64
}

func (b *SupportBeam) update(p *Projectile, w *World, caster *Hero) bool {
	target := w.hero(b.Target)
	if !target.Alive() {
		return false
	}

	dx, dy := target.X-caster.X, target.Y-caster.Y
	dist := math.Hypot(dx, dy)
	// ApplySupportBuff only fails for a dead target, ruled out above
	if dist < supportBeamSnapDist {
		_ = w.ApplySupportBuff(b.Target, b.Kind, b.Power, b.DurationMs)
		return false
	}

	b.Travel += SupportBeamStep
	if b.Travel >= dist {
		_ = w.ApplySupportBuff(b.Target, b.Kind, b.Power, b.DurationMs)
		return false
	}
	p.X = caster.X + dx*b.Travel/dist
	p.Y = caster.Y + dy*b.Travel/dist
	return true
}

// beginSupportCast stores a pending grant and hands the hero to the puzzle.
func (w *World) beginSupportCast(h *Hero) {
	channel := h.Stats.ChannelPower
	if channel < 0 {
		channel = 0
	}
	kind := BuffHaste
	if t := h.Traits.Clamped(); t[2] > t[1] {
		kind = BuffDamageAmp
	}
	h.pending = &supportGrant{
		Kind:       kind,
		Power:      max(1, idiv(channel*h.Stats.DamageMult, 100)),
		DurationMs: SupportBaseDurationMs + SupportDurationPerPower*channel,
	}
	h.PuzzleLocked = true
	h.VX, h.VY = 0, 0
	w.strategy.BeginSupportPuzzle(h.ID, SupportPuzzleLength)
}

// ResolveSupportPuzzle reports the puzzle outcome for a hero. Success splits
// the pending grant into beams toward every live hero; failure discards it.
// Either way the puzzle lock is released.
func (w *World) ResolveSupportPuzzle(id HeroID, success bool) error {
	h := w.hero(id)
	if !h.Alive() {
		return fmt.Errorf("hero %d: %w", id, ErrMissingActor)
	}
	grant := h.pending
	h.pending = nil
	h.PuzzleLocked = false

	if !success || grant == nil {
		w.emit(EventSupportResolved, id, SupportResolvedPayload{Success: false})
		return nil
	}

	targets := make([]*Hero, 0, len(w.heroes))
	for _, t := range w.heroes {
		if t.Alive() {
			targets = append(targets, t)
		}
	}
	perTarget := max(1, idiv(grant.Power, len(targets)))
	for _, t := range targets {
		p := w.newProjectile(KindSupportBeam, h, 0, false, StatusPayload{})
		p.X, p.Y = h.X, h.Y
		p.beam = &SupportBeam{
			Target:     t.ID,
			Kind:       grant.Kind,
			Power:      perTarget,
			DurationMs: grant.DurationMs,
		}
	}

	w.emit(EventSupportResolved, id, SupportResolvedPayload{
		Success: true,
		Kind:    grant.Kind.String(),
		Power:   perTarget,
		Targets: len(targets),
	})
	return nil
}

// ApplySupportBuff adds a buff to the target and heals it by power at once.
func (w *World) ApplySupportBuff(target HeroID, kind BuffKind, power, durationMs int) error {
	h := w.hero(target)
	if !h.Alive() {
		return fmt.Errorf("hero %d: %w", target, ErrMissingActor)
	}
	h.Buffs.Add(kind, power, durationMs, w.now)
	h.Heal(power)
	w.emit(EventBuffApplied, target, BuffAppliedPayload{
		Kind:       kind.String(),
		Power:      power,
		DurationMs: durationMs,
	})
	if w.debug {
		log.Printf("✨ Hero %d gained %s power=%d for %dms", target, kind, power, durationMs)
	}
	return nil
}
