package game

import (
	"errors"
	"fmt"
	"log"
)

// sampleMove runs ExecuteMove for a held intent. Busy-type rejections are
// expected every sample while a move plays out and are not counted.
func (w *World) sampleMove(h *Hero) {
	err := w.ExecuteMove(h.ID, h.Intent)
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, ErrHeroBusy), errors.Is(err, ErrControllingSpell), errors.Is(err, ErrPuzzleActive):
		return
	}
	w.metrics.rejections++
	w.observer.MoveRejected(err)
}

// ExecuteMove validates and performs a hero move at the current world clock.
// On any error the world is left unchanged except for the persisted
// descriptor fields when the rejection is for mana.
func (w *World) ExecuteMove(id HeroID, button Button) error {
	h := w.hero(id)
	if !h.Alive() {
		return fmt.Errorf("hero %d: %w", id, ErrMissingActor)
	}
	now := w.now

	switch {
	case now < h.BusyUntil:
		return ErrHeroBusy
	case h.Controlling:
		return ErrControllingSpell
	case h.PuzzleLocked:
		return ErrPuzzleActive
	}

	raw := w.strategy.DecideMove(button, id, w.enemyViews(), w.heroViews())
	desc, err := ParseMoveDescriptor(raw)
	if err != nil {
		log.Printf("⚠️ Hero %d: bad move descriptor for %q: %v", id, button, raw)
		w.emit(EventMoveRejected, id, MoveRejectedPayload{Button: string(button), Reason: err.Error()})
		return fmt.Errorf("hero %d button %q: %w", id, button, err)
	}

	stats := DeriveStats(desc.Family, BaseMoveDuration(desc.Family, button), desc.Traits)
	h.Family = desc.Family
	h.Button = button
	h.Traits = desc.Traits
	h.Element = desc.Element
	h.AnimID = desc.AnimID
	h.Stats = stats

	cost := max(0, desc.Traits.Sum())
	if h.Mana < cost {
		w.emit(EventInsufficientMana, id, InsufficientManaPayload{Button: string(button), Cost: cost, Mana: h.Mana})
		return fmt.Errorf("hero %d needs %d mana, has %d: %w", id, cost, h.Mana, ErrInsufficientMana)
	}
	h.Mana -= cost

	nx, ny := h.AimOrDefault()
	lunge := ClampLunge(stats.LungeSpeed, h.Buffs.HasteMult)

	switch desc.Family {
	case FamilyStrength, FamilyAgility:
		h.VX, h.VY = nx*lunge, ny*lunge
	default:
		h.VX, h.VY = 0, 0
	}

	if desc.Family != FamilyHeal {
		h.Locked = true
		h.BusyUntil = now + int64(stats.MoveDuration)
	}

	if desc.Family == FamilyAgility {
		h.DashUntil = now + int64(stats.MoveDuration+stats.LandingBuffer)
		if stats.ComboWindow > 0 {
			h.ComboUntil = now + int64(stats.MoveDuration+stats.ComboWindow)
		} else {
			h.ComboUntil = 0
		}
	} else {
		h.DashUntil = 0
		h.ComboUntil = 0
	}

	w.strategy.Animate(id, AnimKeyForID(desc.AnimID), stats.MoveDuration, h.FacingName())

	dmg := MoveDamage(desc.Family, stats, h.Buffs.DamageAmpMult)
	heal := desc.Element == ElementHeal

	switch desc.Family {
	case FamilyStrength:
		w.spawnArcSwing(h, nx, ny, dmg, heal, StatusPayload{
			KnockbackPct: stats.KnockbackPct,
		})
	case FamilyAgility:
		w.spawnThrust(h, nx, ny, AgilityReach(lunge, stats.MoveDuration), dmg, heal, StatusPayload{
			SlowPct:        stats.SlowPct,
			SlowDurationMs: stats.SlowDuration,
		})
	case FamilyIntellect:
		w.spawnSpell(h, AreaDamage, nx, ny, dmg, StatusPayload{
			WeakenPct:        stats.WeakenPct,
			WeakenDurationMs: stats.WeakenDuration,
		})
	case FamilyHeal:
		if w.cfg.HealCastMode == HealCastSpell {
			w.spawnSpell(h, AreaHeal, nx, ny, BasePower(FamilyHeal), StatusPayload{})
		} else {
			w.beginSupportCast(h)
		}
	}

	w.metrics.moves++
	w.observer.MoveExecuted(desc.Family)
	w.emit(EventMoveExecuted, id, MovePayload{
		Button:     string(button),
		Family:     desc.Family.String(),
		Traits:     desc.Traits,
		ManaCost:   cost,
		Damage:     dmg,
		DurationMs: stats.MoveDuration,
	})
	return nil
}

// updateControlLocks releases timed move locks and walks free heroes.
func (w *World) updateControlLocks() {
	now := w.now
	for _, h := range w.heroes {
		if !h.Alive() {
			continue
		}

		if h.Locked && !h.Controlling {
			if h.BusyUntil > 0 && now >= h.BusyUntil {
				h.unlock()
			} else {
				// Keep the stored lunge velocity
				continue
			}
		}

		if h.Locked || h.Controlling || h.PuzzleLocked {
			continue
		}

		dx, dy := dirVector(h.Dirs)
		nx, ny, err := normalize(dx, dy)
		if err != nil {
			h.VX, h.VY = 0, 0
			continue
		}
		speed := HeroWalkSpeed * h.Buffs.HasteMult
		h.VX, h.VY = nx*speed, ny*speed
	}
}
