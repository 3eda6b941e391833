package game

// MoveStats is the derived stat block for one move execution.
// Fields that a family does not set stay at zero.
type MoveStats struct {
	DamageMult     int // Percent applied to the family's base power
	MoveDuration   int // Milliseconds the hero is committed to the move
	SwingMs        int // Arc-swing lifetime (strength)
	LungeSpeed     int // Pixels/second before haste (strength, agility)
	ArcDeg         int // Full sweep angle (strength)
	KnockbackPct   int // Knockback strength (strength)
	ComboWindow    int // Extra ms after the move to keep a combo alive (agility)
	LandingBuffer  int // Extra ms of dash protection (agility)
	SlowPct        int
	SlowDuration   int
	TargetingTime  int // Steering window for spells (intellect)
	Radius         int // Detonation radius in pixels (intellect)
	ChannelPower   int // Intellect channel / heal support budget
	WeakenPct      int
	WeakenDuration int
}

// Stat limits
const (
	MaxArcDeg        = 360
	MaxLungeSpeed    = 500
	MinMoveDuration  = 50
	MinTargetingTime = 50
)

// DeriveStats computes the stat block for a family from base duration and traits.
// Negative traits count as zero. Pure and total: unknown families get the base block.
func DeriveStats(family Family, baseDurationMs int, traits Traits) MoveStats {
	t := traits.Clamped()
	t1, t2, t3, t4 := t[0], t[1], t[2], t[3]

	s := MoveStats{
		DamageMult:   100,
		MoveDuration: baseDurationMs,
	}

	switch family {
	case FamilyStrength:
		s.DamageMult = 80 + 2*t1
		s.MoveDuration = baseDurationMs + 10*t1
		s.SwingMs = 400 + 5*t1
		s.LungeSpeed = 10 + t2
		s.ArcDeg = min(MaxArcDeg, 30+t3)
		s.KnockbackPct = 150 + 5*t4

	case FamilyAgility:
		s.ComboWindow = 200 + 5*t1
		s.DamageMult = 60 + t1
		s.LungeSpeed = 250 + 5*t2
		s.MoveDuration = max(MinMoveDuration, baseDurationMs+2*t1)
		s.LandingBuffer = 80 + 2*t3
		s.SlowPct = 10 + 2*t4
		s.SlowDuration = 200 + 20*t4

	case FamilyIntellect:
		s.TargetingTime = max(MinTargetingTime, 500+50*t3)
		s.Radius = 8 + t2
		s.DamageMult = 60 + 2*t1
		s.ChannelPower = 100 + 5*t1
		s.MoveDuration = max(MinMoveDuration, baseDurationMs+5*t1)
		s.WeakenPct = 5 + t4
		s.WeakenDuration = 500 + 20*t4

	case FamilyHeal:
		s.ChannelPower = t1 + t2 + t3 + t4
		s.DamageMult = 100 + 2*t3
		s.MoveDuration = max(MinMoveDuration, baseDurationMs+3*t1+2*t3-2*t2)
	}

	return s
}

// BaseMoveDuration returns the family's base commitment in ms.
// The combined A+B button adds a fixed 150ms.
func BaseMoveDuration(family Family, button Button) int {
	base := 300
	switch family {
	case FamilyStrength:
		base = 400
	case FamilyAgility:
		base = 250
	case FamilyIntellect, FamilyHeal:
		base = 350
	}
	if button == ButtonAB {
		base += 150
	}
	return base
}

// BasePower returns the unscaled damage (or heal) of a family's move.
func BasePower(family Family) int {
	switch family {
	case FamilyStrength:
		return 15
	case FamilyAgility:
		return 10
	case FamilyIntellect, FamilyHeal:
		return 8
	default:
		return 5
	}
}

// MoveDamage scales base power by the stat multiplier and the caster's damage amp.
// Never below 1.
func MoveDamage(family Family, stats MoveStats, dmgAmpMult float64) int {
	dmg := max(1, idiv(BasePower(family)*stats.DamageMult, 100))
	if dmgAmpMult > 0 && dmgAmpMult != 1 {
		dmg = max(1, int(float64(dmg)*dmgAmpMult))
	}
	return dmg
}

// ClampLunge applies haste and the [0, MaxLungeSpeed] bound.
func ClampLunge(lungeSpeed int, hasteMult float64) float64 {
	v := float64(lungeSpeed) * hasteMult
	if v < 0 {
		return 0
	}
	if v > MaxLungeSpeed {
		return MaxLungeSpeed
	}
	return v
}

// AgilityReach is the thrust travel L for a lunge held over the move duration.
func AgilityReach(lunge float64, moveDurationMs int) int {
	return max(1, idiv(int(lunge)*moveDurationMs, 1000))
}

// idiv is integer division truncating toward zero (Go's native semantics).
func idiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return a / b
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampI(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
