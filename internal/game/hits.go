package game

import "math"

// resolveHits runs weapon/enemy, spell/hero and hero/enemy contact tests.
func (w *World) resolveHits(now int64) {
	for _, p := range w.projectiles {
		if p.done {
			continue
		}
		switch p.Kind {
		case KindArcSwing, KindThrust:
			w.resolveWeaponHits(p, now)
		case KindSpell:
			w.resolveSpellHits(p, now)
		}
	}
	w.resolveContacts(now)
}

// queryEnemies copies broad-phase candidates so nested queries cannot clobber them.
func (w *World) queryEnemies(cx, cy, radius float64) []uint32 {
	w.candidates = append(w.candidates[:0], w.grid.QueryRadius(cx, cy, radius+ActorSize)...)
	return w.candidates
}

// resolveWeaponHits applies a strength or agility weapon to every enemy it touches, once each.
func (w *World) resolveWeaponHits(p *Projectile, now int64) {
	owner := w.hero(p.Owner)
	if !owner.Alive() {
		return
	}
	cx, cy, r := p.Bounds()
	for _, slot := range w.queryEnemies(cx, cy, r) {
		e := &w.enemies[slot]
		if !e.Alive() || p.hits.has(slot) || !p.HitsRect(e.Rect()) {
			continue
		}
		p.hits.set(slot)
		w.applyWeaponHit(p, owner, e, now)
	}
}

func (w *World) applyWeaponHit(p *Projectile, owner *Hero, e *Enemy, now int64) {
	st := p.Status
	if st.SlowPct > 0 && st.SlowDurationMs > 0 {
		e.Debuffs.ApplySlow(st.SlowPct, now+int64(st.SlowDurationMs))
	}
	if st.WeakenPct > 0 && st.WeakenDurationMs > 0 {
		e.Debuffs.ApplyWeaken(st.WeakenPct, now+int64(st.WeakenDurationMs))
	}

	dmg := p.Damage
	if p.Family == FamilyAgility {
		dmg = max(1, idiv(dmg*owner.Combo.Mult(), 100))
		owner.Combo.RegisterHit(now, p.Button)
	}

	w.damageEnemy(e, owner.ID, dmg)
	if p.Heal {
		w.scores.AddHealing(owner.ID, owner.Heal(dmg))
	}

	if st.KnockbackPct > 0 && e.Alive() {
		nx, ny, err := normalize(e.X-owner.X, e.Y-owner.Y)
		if err != nil {
			nx, ny = owner.AimOrDefault()
		}
		e.VX, e.VY = nx*KnockbackSpeed, ny*KnockbackSpeed
		e.Debuffs.KnockbackUntil = now + int64(KnockbackBaseMs+KnockbackPerPctMs*st.KnockbackPct)
	}
}

// resolveSpellHits detonates a steering spell on its first valid overlap:
// damage spells on enemies, heal orbs on heroes other than the caster.
func (w *World) resolveSpellHits(p *Projectile, now int64) {
	if p.spell.Detonated() {
		return
	}

	if p.spell.Sign == AreaHeal {
		for _, h := range w.heroes {
			if h.ID == p.Owner || !h.Alive() {
				continue
			}
			if p.HitsRect(h.Rect()) {
				_ = p.Detonate(w, now, p.X, p.Y)
				return
			}
		}
		return
	}

	for _, slot := range w.queryEnemies(p.X, p.Y, SpellOrbRadius) {
		e := &w.enemies[slot]
		if e.Alive() && p.HitsRect(e.Rect()) {
			_ = p.Detonate(w, now, p.X, p.Y)
			return
		}
	}
}

// resolveContacts applies enemy touch damage to heroes.
func (w *World) resolveContacts(now int64) {
	for _, h := range w.heroes {
		if !h.Alive() || now < h.IFrameUntil {
			continue
		}
		if h.Family == FamilyAgility && h.Locked && now < h.DashUntil {
			continue
		}

		hr := h.Rect()
		for _, slot := range w.queryEnemies(h.X, h.Y, math.Max(h.W, h.H)) {
			e := &w.enemies[slot]
			if !e.Alive() || !SignificantOverlap(hr, e.Rect(), ContactOverlapPct) {
				continue
			}

			dmg := e.TouchDamage
			if dmg <= 0 {
				dmg = DefaultTouchDamage
			}
			if e.Debuffs.WeakenActive(now) {
				if e.Debuffs.WeakenPct >= 100 {
					dmg = 0
				} else {
					dmg = idiv(dmg*(100-e.Debuffs.WeakenPct), 100)
				}
			} else if e.Debuffs.WeakenUntil > 0 && now >= e.Debuffs.WeakenUntil {
				e.Debuffs.WeakenPct = 0
				e.Debuffs.WeakenUntil = 0
			}
			if dmg <= 0 {
				continue
			}

			dealt := h.Damage(dmg)
			h.IFrameUntil = now + ContactIFramesMs
			w.scores.AddDamageTaken(h.ID, dealt, h.Dead)
			w.metrics.contacts++
			w.observer.HeroDamaged(dealt)
			w.emit(EventHeroDamaged, h.ID, HeroDamagedPayload{EnemyIndex: slot, Damage: dealt, HP: h.HP})
			if h.Dead {
				w.emit(EventHeroDowned, h.ID, nil)
			}
			break
		}
	}
}
