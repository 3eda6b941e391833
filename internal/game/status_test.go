package game

import (
	"encoding/json"
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComboChain(t *testing.T) {
	var c ComboState

	tests := []struct {
		now       int64
		button    Button
		wantCount int
		wantMult  int
	}{
		{0, ButtonA, 1, 100},
		{250, ButtonB, 2, 120},
		{600, ButtonA, 1, 100}, // gap too long
		{700, ButtonA, 1, 100}, // same button
		{800, ButtonB, 2, 120},
		{900, ButtonA, 3, 140},
		{1000, ButtonB, 4, 160},
		{1100, ButtonA, 4, 160}, // capped
	}

	for _, tt := range tests {
		count, mult := c.RegisterHit(tt.now, tt.button)
		if count != tt.wantCount || mult != tt.wantMult {
			t.Errorf("t=%d %s: expected (%d, %d), got (%d, %d)",
				tt.now, tt.button, tt.wantCount, tt.wantMult, count, mult)
		}
	}

	c.Reset()
	if c.Count != 0 || c.Mult() != 100 {
		t.Errorf("Expected reset combo, got count=%d mult=%d", c.Count, c.Mult())
	}
}

func TestBuffLedgerClamps(t *testing.T) {
	tests := []struct {
		name      string
		kind      BuffKind
		power     int
		wantHaste float64
		wantAmp   float64
	}{
		{"neutral shield", BuffShield, 40, 1, 1},
		{"haste", BuffHaste, 50, 1.5, 1},
		{"haste capped", BuffHaste, 500, 3, 1},
		{"amp", BuffDamageAmp, 20, 1, 1.2},
		{"amp floored", BuffDamageAmp, -80, 1, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewBuffLedger()
			l.Add(tt.kind, tt.power, 1000, 0)
			l.Update(10)

			if !approx(l.HasteMult, tt.wantHaste) {
				t.Errorf("Expected haste %v, got %v", tt.wantHaste, l.HasteMult)
			}
			if !approx(l.DamageAmpMult, tt.wantAmp) {
				t.Errorf("Expected amp %v, got %v", tt.wantAmp, l.DamageAmpMult)
			}
		})
	}
}

func TestBuffLedgerStacksAndExpires(t *testing.T) {
	l := NewBuffLedger()
	l.Add(BuffHaste, 30, 500, 0)
	l.Add(BuffHaste, 20, 1000, 0)
	l.Add(BuffDamageAmp, 10, 200, 0)

	l.Update(100)
	if !approx(l.HasteMult, 1.5) || !approx(l.DamageAmpMult, 1.1) {
		t.Errorf("Expected 1.5 / 1.1, got %v / %v", l.HasteMult, l.DamageAmpMult)
	}

	l.Update(500)
	if len(l.Buffs) != 1 {
		t.Fatalf("Expected 1 buff left, got %d", len(l.Buffs))
	}
	if l.Buffs[0].Power != 20 {
		t.Errorf("Expected the 20-power haste to survive, got %+v", l.Buffs[0])
	}
	if !approx(l.HasteMult, 1.2) || !approx(l.DamageAmpMult, 1) {
		t.Errorf("Expected 1.2 / 1, got %v / %v", l.HasteMult, l.DamageAmpMult)
	}

	l.Update(1000)
	if len(l.Buffs) != 0 || l.HasteMult != 1 {
		t.Errorf("Expected empty neutral ledger, got %d buffs haste %v", len(l.Buffs), l.HasteMult)
	}
}

func TestBuffLedgerSnapshotJSON(t *testing.T) {
	l := NewBuffLedger()
	if got := l.SnapshotJSON(); got != "[]" {
		t.Errorf("Expected [], got %s", got)
	}

	l.Add(BuffDamageAmp, 15, 100, 50)
	var decoded []Buff
	if err := json.Unmarshal([]byte(l.SnapshotJSON()), &decoded); err != nil {
		t.Fatalf("Snapshot is not JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Kind != BuffDamageAmp || decoded[0].ExpiresAt != 150 {
		t.Errorf("Unexpected snapshot %+v", decoded)
	}
}

func TestDebuffsExpire(t *testing.T) {
	var d Debuffs
	d.ApplySlow(20, 100)
	d.ApplyWeaken(30, 200)
	d.KnockbackUntil = 150

	if !d.SlowActive(50) || !d.WeakenActive(50) || !d.KnockedBack(50) {
		t.Error("Expected all effects active at t=50")
	}
	if d.Expire(120) {
		t.Error("Knockback should not end at t=120")
	}
	if d.SlowActive(120) || d.SlowPct != 0 {
		t.Errorf("Expected slow cleared, got %+v", d)
	}
	if !d.Expire(150) {
		t.Error("Expected knockback to end at t=150")
	}
	d.Expire(200)
	if d != (Debuffs{}) {
		t.Errorf("Expected all debuffs cleared, got %+v", d)
	}
}
