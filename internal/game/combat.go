package game

// Combo and contact constants. Server-authoritative.
const (
	// ComboGapMs is the longest gap between hits that still chains a combo
	ComboGapMs = 300
	// MaxComboCount caps the chain length
	MaxComboCount = 4

	// ContactIFramesMs is hero invulnerability after taking contact damage
	ContactIFramesMs = 600
	// ContactOverlapPct is the minimum share of the hero's area an enemy must cover
	ContactOverlapPct = 25
	// DefaultTouchDamage replaces a non-positive enemy touch damage
	DefaultTouchDamage = 5

	// KnockbackSpeed is the enemy velocity (px/s) applied on a knockback hit
	KnockbackSpeed = 40.0
	// KnockbackBaseMs + KnockbackPerPctMs*pct is the knockback duration
	KnockbackBaseMs   = 150
	KnockbackPerPctMs = 5
)

// ComboScale is the damage percent for each combo count (index 0 = no hits yet).
var ComboScale = [MaxComboCount + 1]int{100, 100, 120, 140, 160}

// ComboState tracks the agility hit chain for one hero.
type ComboState struct {
	Count       int
	LastHitTime int64
	LastButton  Button
	hasHit      bool
}

// RegisterHit records a hit and returns the new count and damage multiplier.
// The chain advances only when the gap is short AND the button changed.
func (c *ComboState) RegisterHit(now int64, button Button) (int, int) {
	if c.hasHit && now-c.LastHitTime < ComboGapMs && button != c.LastButton {
		c.Count++
		if c.Count > MaxComboCount {
			c.Count = MaxComboCount
		}
	} else {
		c.Count = 1
	}

	c.LastHitTime = now
	c.LastButton = button
	c.hasHit = true

	return c.Count, ComboScale[c.Count]
}

// Mult returns the multiplier for the current count (100 before any hit).
func (c *ComboState) Mult() int {
	if c.Count < 0 || c.Count > MaxComboCount {
		return 100
	}
	return ComboScale[c.Count]
}

// Reset clears the chain
func (c *ComboState) Reset() {
	*c = ComboState{}
}
