package game

import (
	"errors"
	"math"
	"testing"
)

func intellectWorld(t *testing.T, traits Traits) (*World, *Hero, *EventRecorder) {
	t.Helper()
	w, _, rec := newTestWorld(t, map[Button][]int{
		ButtonA: move(FamilyIntellect, traits[0], traits[1], traits[2], traits[3], ElementElectric, 3),
	})
	h := addHero(t, w, 100, 100)
	w.Step(0)
	if err := w.ExecuteMove(h.ID, ButtonA); err != nil {
		t.Fatalf("ExecuteMove failed: %v", err)
	}
	return w, h, rec
}

func TestSpellTimerDetonation(t *testing.T) {
	w, h, rec := intellectWorld(t, Traits{})

	p := w.Projectile(1)
	if p == nil || p.Kind != KindSpell {
		t.Fatal("Expected spell with id 1")
	}
	if !h.Controlling || h.ControlledSpell != p.ID {
		t.Fatalf("Expected caster controlling spell %d", p.ID)
	}
	if p.spell.ControlUntil != 500 {
		t.Errorf("Expected control window until 500, got %d", p.spell.ControlUntil)
	}

	stepRange(w, 10, 490, 10)
	if p.spell.Detonated() {
		t.Fatal("Spell detonated early")
	}
	if p.spell.State() != SpellSteering {
		t.Errorf("Expected steering, got %s", p.spell.State())
	}
	if err := w.ExecuteMove(h.ID, ButtonA); !errors.Is(err, ErrControllingSpell) {
		t.Errorf("Expected ErrControllingSpell while steering, got %v", err)
	}

	w.Step(500)
	if p.spell.State() != SpellDetonated {
		t.Fatalf("Expected detonated at 500, got %s", p.spell.State())
	}
	if p.spell.DetonatedAt != 500 {
		t.Errorf("Expected DetonatedAt 500, got %d", p.spell.DetonatedAt)
	}
	if h.Controlling || h.Locked || h.BusyUntil != 0 {
		t.Errorf("Expected caster released, got controlling=%v locked=%v busyUntil=%d",
			h.Controlling, h.Locked, h.BusyUntil)
	}
	if rec.Count(EventSpellDetonated) != 1 {
		t.Errorf("Expected 1 spell_detonated event, got %d", rec.Count(EventSpellDetonated))
	}

	// Linger is max(400, weaken duration) plus cleanup
	if p.spell.DestroyAt != 1100 {
		t.Errorf("Expected DestroyAt 1100, got %d", p.spell.DestroyAt)
	}
	w.Step(1099)
	if w.Projectile(1) == nil {
		t.Fatal("Expected spell lingering at 1099")
	}
	w.Step(1100)
	if w.Projectile(1) != nil {
		t.Error("Expected spell removed at 1100")
	}
}

func TestSpellDoubleDetonation(t *testing.T) {
	w, h, rec := intellectWorld(t, Traits{})
	w.Step(100)
	p := w.Projectile(1)

	if err := p.Detonate(w, w.Now(), p.X, p.Y); err != nil {
		t.Fatalf("First detonation failed: %v", err)
	}
	if h.Controlling {
		t.Error("Expected caster released on manual detonation")
	}

	err := p.Detonate(w, w.Now(), p.X, p.Y)
	if !errors.Is(err, ErrDoubleDetonation) {
		t.Errorf("Expected ErrDoubleDetonation, got %v", err)
	}
	if rec.Count(EventSpellDetonated) != 1 {
		t.Errorf("Expected exactly 1 detonation event, got %d", rec.Count(EventSpellDetonated))
	}
	if w.Stats().Detonations != 1 {
		t.Errorf("Expected 1 detonation counted, got %d", w.Stats().Detonations)
	}
}

func TestSpellSteering(t *testing.T) {
	w, h, _ := intellectWorld(t, Traits{0, 0, 10, 0})
	w.SetDirections(h.ID, DirDown)

	stepRange(w, 10, 100, 10)
	p := w.Projectile(1)
	s := p.spell

	if s.VY <= 0 {
		t.Errorf("Expected downward velocity, got %v", s.VY)
	}
	if sp := math.Hypot(s.VX, s.VY); sp > SpellMaxSpeed+1e-9 {
		t.Errorf("Expected speed capped at %v, got %v", SpellMaxSpeed, sp)
	}
	if p.Y <= 100 {
		t.Errorf("Expected orb to drift down, got y=%v", p.Y)
	}
	if h.VX != 0 || h.VY != 0 || h.X != 100 || h.Y != 100 {
		t.Errorf("Expected caster to stand still while steering, got pos (%v, %v) vel (%v, %v)",
			h.X, h.Y, h.VX, h.VY)
	}
}

func TestSpellDetonatesOnEnemy(t *testing.T) {
	w, _, _ := newTestWorld(t, map[Button][]int{
		ButtonAB: move(FamilyIntellect, 0, 5, 10, 0, ElementElectric, 3),
	})
	h := addHero(t, w, 100, 100)
	id, _ := w.SpawnEnemy(EnemyGrunt, 130, 100)
	w.Step(0)
	if err := w.ExecuteMove(h.ID, ButtonAB); err != nil {
		t.Fatalf("ExecuteMove failed: %v", err)
	}
	p := w.Projectile(1)

	var now int64
	for now = 10; now <= 900 && !p.spell.Detonated(); now += 10 {
		w.Step(now)
	}
	if !p.spell.Detonated() {
		t.Fatal("Expected the spell to detonate on contact")
	}
	if p.spell.DetonatedAt >= p.spell.ControlUntil {
		t.Errorf("Expected contact detonation before the timer, got %d", p.spell.DetonatedAt)
	}

	e := w.Enemy(id)
	if e == nil {
		t.Fatal("Expected grunt to survive")
	}
	if e.HP != 46 {
		t.Errorf("Expected grunt HP 46, got %d", e.HP)
	}
	if !e.Debuffs.WeakenActive(w.Now()) || e.Debuffs.WeakenPct != 5 {
		t.Errorf("Expected 5%% weaken, got %+v", e.Debuffs)
	}
	if h.Controlling {
		t.Error("Expected caster released")
	}
}

func TestAreaDamageUsesCenterDistance(t *testing.T) {
	w, _, _ := newTestWorld(t, nil)
	w.Step(0)
	near, _ := w.SpawnEnemy(EnemyGrunt, 110, 100)
	far, _ := w.SpawnEnemy(EnemyGrunt, 120, 100)
	w.rebuildGrid()

	w.applyArea(-1, 100, 100, 16, AreaDamage, 10, StatusPayload{WeakenPct: 20, WeakenDurationMs: 100}, 0)

	if e := w.Enemy(near); e.HP != 40 || e.Debuffs.WeakenPct != 20 {
		t.Errorf("Expected near enemy hit and weakened, got HP %d weaken %d", e.HP, e.Debuffs.WeakenPct)
	}
	// Rect overlaps the circle but the center is 20px away
	if e := w.Enemy(far); e.HP != 50 {
		t.Errorf("Expected far enemy untouched, got HP %d", e.HP)
	}
}

func TestHealSpellMode(t *testing.T) {
	w, _, rec := newTestWorld(t, map[Button][]int{
		ButtonA: move(FamilyHeal, 0, 0, 0, 0, ElementHeal, 1),
	})
	w.cfg.HealCastMode = HealCastSpell
	caster := addHero(t, w, 100, 100)
	ally := addHero(t, w, 110, 100)
	ally.HP = 50
	w.Step(0)

	if err := w.ExecuteMove(caster.ID, ButtonA); err != nil {
		t.Fatalf("ExecuteMove failed: %v", err)
	}
	if caster.Locked {
		t.Error("Expected no timed lock for a heal move")
	}
	p := w.Projectile(1)
	if p == nil || p.spell == nil || p.spell.Sign != AreaHeal {
		t.Fatal("Expected a heal orb")
	}
	if p.spell.ControlUntil != DefaultTargetingMs {
		t.Errorf("Expected default targeting window, got %d", p.spell.ControlUntil)
	}

	w.Step(10)
	if !p.spell.Detonated() {
		t.Fatal("Expected the orb to burst on the ally")
	}
	if ally.HP != 58 {
		t.Errorf("Expected ally HP 58, got %d", ally.HP)
	}
	if caster.Controlling {
		t.Error("Expected caster released")
	}
	if rec.Count(EventSpellDetonated) != 1 {
		t.Errorf("Expected 1 detonation event, got %d", rec.Count(EventSpellDetonated))
	}
}
