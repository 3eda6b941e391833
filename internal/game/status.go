package game

import (
	"encoding/json"
)

// Debuffs holds the timed status effects on one enemy.
// A zero Until means the effect is inactive.
type Debuffs struct {
	SlowPct        int
	SlowUntil      int64
	WeakenPct      int
	WeakenUntil    int64
	KnockbackUntil int64
}

// ApplySlow overwrites the current slow
func (d *Debuffs) ApplySlow(pct int, until int64) {
	d.SlowPct = pct
	d.SlowUntil = until
}

// ApplyWeaken overwrites the current weaken
func (d *Debuffs) ApplyWeaken(pct int, until int64) {
	d.WeakenPct = pct
	d.WeakenUntil = until
}

// SlowActive reports whether a slow is in effect at now
func (d *Debuffs) SlowActive(now int64) bool {
	return d.SlowUntil > 0 && now < d.SlowUntil && d.SlowPct > 0
}

// WeakenActive reports whether a weaken is in effect at now
func (d *Debuffs) WeakenActive(now int64) bool {
	return d.WeakenUntil > 0 && now < d.WeakenUntil && d.WeakenPct > 0
}

// KnockedBack reports whether the enemy is still flying from a knockback
func (d *Debuffs) KnockedBack(now int64) bool {
	return d.KnockbackUntil > 0 && now < d.KnockbackUntil
}

// Expire clears every timer that has run out.
// Returns true if a knockback ended this call (caller zeroes velocity).
func (d *Debuffs) Expire(now int64) (knockbackEnded bool) {
	if d.SlowUntil > 0 && now >= d.SlowUntil {
		d.SlowPct = 0
		d.SlowUntil = 0
	}
	if d.WeakenUntil > 0 && now >= d.WeakenUntil {
		d.WeakenPct = 0
		d.WeakenUntil = 0
	}
	if d.KnockbackUntil > 0 && now >= d.KnockbackUntil {
		d.KnockbackUntil = 0
		knockbackEnded = true
	}
	return knockbackEnded
}

// BuffKind identifies a hero buff.
type BuffKind int

const (
	BuffHaste     BuffKind = 1
	BuffDamageAmp BuffKind = 2
	BuffShield    BuffKind = 3
)

func (k BuffKind) String() string {
	switch k {
	case BuffHaste:
		return "haste"
	case BuffDamageAmp:
		return "damage_amp"
	case BuffShield:
		return "shield"
	default:
		return "unknown"
	}
}

// Buff is one timed entry in a hero's ledger.
type Buff struct {
	Kind      BuffKind `json:"kind" msgpack:"kind"`
	Power     int      `json:"power" msgpack:"power"`
	ExpiresAt int64    `json:"expiresAt" msgpack:"expiresAt"`
}

// Buff multiplier bounds
const (
	MinBuffMult = 0.5
	MaxBuffMult = 3.0
)

// BuffLedger is the ordered list of active buffs on a hero plus the
// multipliers derived from it on the last Update.
type BuffLedger struct {
	Buffs         []Buff
	HasteMult     float64
	DamageAmpMult float64
}

// NewBuffLedger returns an empty ledger with neutral multipliers
func NewBuffLedger() BuffLedger {
	return BuffLedger{HasteMult: 1, DamageAmpMult: 1}
}

// Add appends a buff expiring durationMs after now
func (l *BuffLedger) Add(kind BuffKind, power, durationMs int, now int64) {
	l.Buffs = append(l.Buffs, Buff{
		Kind:      kind,
		Power:     power,
		ExpiresAt: now + int64(durationMs),
	})
}

// Update prunes expired buffs (in place) and recomputes the multipliers.
func (l *BuffLedger) Update(now int64) {
	haste, amp := 0, 0
	n := 0
	for _, b := range l.Buffs {
		if now >= b.ExpiresAt {
			continue
		}
		switch b.Kind {
		case BuffHaste:
			haste += b.Power
		case BuffDamageAmp:
			amp += b.Power
		}
		l.Buffs[n] = b
		n++
	}
	l.Buffs = l.Buffs[:n]

	l.HasteMult = clampF(1+float64(haste)/100, MinBuffMult, MaxBuffMult)
	l.DamageAmpMult = clampF(1+float64(amp)/100, MinBuffMult, MaxBuffMult)
}

// SnapshotJSON serializes the active buffs. Always a JSON array.
func (l *BuffLedger) SnapshotJSON() string {
	if len(l.Buffs) == 0 {
		return "[]"
	}
	data, err := json.Marshal(l.Buffs)
	if err != nil {
		return "[]"
	}
	return string(data)
}
