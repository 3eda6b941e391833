package game

import (
	"errors"
	"testing"
)

func supportWorld(t *testing.T, traits Traits) (*World, *scriptStrategy, *EventRecorder, *Hero, *Hero) {
	t.Helper()
	w, strat, rec := newTestWorld(t, map[Button][]int{
		ButtonA: move(FamilyHeal, traits[0], traits[1], traits[2], traits[3], ElementHeal, 1),
	})
	caster := addHero(t, w, 100, 100)
	ally := addHero(t, w, 130, 100)
	w.Step(0)
	if err := w.ExecuteMove(caster.ID, ButtonA); err != nil {
		t.Fatalf("ExecuteMove failed: %v", err)
	}
	return w, strat, rec, caster, ally
}

func TestSupportCastStartsPuzzle(t *testing.T) {
	w, strat, _, caster, _ := supportWorld(t, Traits{10, 0, 20, 0})

	if len(strat.puzzles) != 1 || strat.puzzles[0] != SupportPuzzleLength {
		t.Fatalf("Expected one puzzle of length %d, got %v", SupportPuzzleLength, strat.puzzles)
	}
	if !caster.PuzzleLocked {
		t.Error("Expected caster puzzle-locked")
	}
	if caster.Locked {
		t.Error("Expected no timed lock for a heal move")
	}
	if caster.Mana != DefaultHeroMana-30 {
		t.Errorf("Expected mana %d, got %d", DefaultHeroMana-30, caster.Mana)
	}
	g := caster.pending
	if g == nil {
		t.Fatal("Expected a pending grant")
	}
	if g.Kind != BuffDamageAmp || g.Power != 42 || g.DurationMs != 2750 {
		t.Errorf("Expected damage_amp 42 for 2750ms, got %s %d for %dms", g.Kind, g.Power, g.DurationMs)
	}
	if len(w.projectiles) != 0 {
		t.Errorf("Expected no beams before the puzzle resolves, got %d", len(w.projectiles))
	}

	if err := w.ExecuteMove(caster.ID, ButtonA); !errors.Is(err, ErrPuzzleActive) {
		t.Errorf("Expected ErrPuzzleActive, got %v", err)
	}
}

func TestSupportPuzzleSuccess(t *testing.T) {
	w, _, rec, caster, ally := supportWorld(t, Traits{10, 0, 20, 0})
	ally.HP = 50

	if err := w.ResolveSupportPuzzle(caster.ID, true); err != nil {
		t.Fatalf("ResolveSupportPuzzle failed: %v", err)
	}
	if caster.PuzzleLocked || caster.pending != nil {
		t.Error("Expected puzzle lock and grant cleared")
	}
	if len(w.projectiles) != 2 {
		t.Fatalf("Expected a beam per live hero, got %d", len(w.projectiles))
	}

	stepRange(w, 10, 150, 10)

	if len(w.projectiles) != 0 {
		t.Errorf("Expected beams delivered, got %d left", len(w.projectiles))
	}
	for _, h := range []*Hero{caster, ally} {
		if len(h.Buffs.Buffs) != 1 || h.Buffs.Buffs[0].Kind != BuffDamageAmp || h.Buffs.Buffs[0].Power != 21 {
			t.Errorf("Hero %d: expected one damage_amp 21, got %+v", h.ID, h.Buffs.Buffs)
		}
		if !approx(h.Buffs.DamageAmpMult, 1.21) {
			t.Errorf("Hero %d: expected amp 1.21, got %v", h.ID, h.Buffs.DamageAmpMult)
		}
	}
	if ally.HP != 71 {
		t.Errorf("Expected ally healed to 71, got %d", ally.HP)
	}
	if rec.Count(EventSupportResolved) != 1 || rec.Count(EventBuffApplied) != 2 {
		t.Errorf("Expected 1 resolve and 2 buff events, got %d and %d",
			rec.Count(EventSupportResolved), rec.Count(EventBuffApplied))
	}
}

func TestSupportPuzzleFailure(t *testing.T) {
	w, _, rec, caster, ally := supportWorld(t, Traits{10, 0, 20, 0})

	if err := w.ResolveSupportPuzzle(caster.ID, false); err != nil {
		t.Fatalf("ResolveSupportPuzzle failed: %v", err)
	}
	if caster.PuzzleLocked || caster.pending != nil {
		t.Error("Expected puzzle lock and grant cleared")
	}
	stepRange(w, 10, 150, 10)

	if len(w.projectiles) != 0 {
		t.Errorf("Expected no beams, got %d", len(w.projectiles))
	}
	if len(caster.Buffs.Buffs) != 0 || len(ally.Buffs.Buffs) != 0 {
		t.Error("Expected no buffs after a failed puzzle")
	}
	if caster.Mana != DefaultHeroMana-30 {
		t.Errorf("Expected the cast to stay paid, got mana %d", caster.Mana)
	}
	if rec.Count(EventSupportResolved) != 1 {
		t.Errorf("Expected 1 resolve event, got %d", rec.Count(EventSupportResolved))
	}

	if err := w.ExecuteMove(caster.ID, ButtonA); err != nil {
		t.Errorf("Expected caster free to act again, got %v", err)
	}
}

func TestSupportHasteWhenSpeedTraitLeads(t *testing.T) {
	w, _, _, caster, _ := supportWorld(t, Traits{10, 20, 0, 0})

	g := caster.pending
	if g == nil || g.Kind != BuffHaste || g.Power != 30 {
		t.Fatalf("Expected haste 30, got %+v", g)
	}

	w.ResolveSupportPuzzle(caster.ID, true)
	w.Step(10)
	w.Step(20)

	if !approx(caster.Buffs.HasteMult, 1.15) {
		t.Errorf("Expected caster haste 1.15, got %v", caster.Buffs.HasteMult)
	}
}

func TestResolveSupportPuzzleMissingHero(t *testing.T) {
	w, _, _ := newTestWorld(t, nil)
	if err := w.ResolveSupportPuzzle(2, true); !errors.Is(err, ErrMissingActor) {
		t.Errorf("Expected ErrMissingActor, got %v", err)
	}
	if err := w.ApplySupportBuff(2, BuffHaste, 10, 100); !errors.Is(err, ErrMissingActor) {
		t.Errorf("Expected ErrMissingActor, got %v", err)
	}
}
