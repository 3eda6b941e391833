package game

import "math"

// HeroID addresses a hero slot in the world. Slots are never reused.
type HeroID int

// Hero defaults
const (
	DefaultHeroHP     = 100
	DefaultHeroMana   = 1000
	DefaultTraitValue = 25
	ActorSize         = 16.0
	// HeroWalkSpeed is the free-walking speed (px/s) before haste
	HeroWalkSpeed = 50.0
)

// Hero is a player-controlled actor. All fields are owned by the World and
// mutated only from within Step or a World method.
type Hero struct {
	ID     HeroID
	X, Y   float64 // Center
	VX, VY float64 // Pixels/second
	W, H   float64

	HP, MaxHP     int
	Mana, MaxMana int
	Dead          bool

	// Facing components are in {-1, 0, 1}; never both zero after spawn
	FacingX, FacingY int

	// Last executed move
	Family  Family
	Button  Button
	Traits  Traits
	Element Element
	AnimID  int
	Stats   MoveStats

	// Control state
	Locked          bool
	BusyUntil       int64
	Controlling     bool
	ControlledSpell ProjectileID
	PuzzleLocked    bool
	pending         *supportGrant

	DashUntil   int64
	ComboUntil  int64
	IFrameUntil int64

	Combo ComboState
	Buffs BuffLedger

	// Latched input
	Intent Button
	Dirs   uint8

	mirror HeroMirror
}

// HeroMirror is the externally visible per-hero status, refreshed every tick.
type HeroMirror struct {
	BusyUntil     int64   `json:"busyUntil" msgpack:"busyUntil"`
	MoveSpeedMult float64 `json:"moveSpeedMult" msgpack:"moveSpeedMult"`
	DamageAmpMult float64 `json:"damageAmpMult" msgpack:"damageAmpMult"`
	BuffsJSON     string  `json:"buffsJson" msgpack:"buffsJson"`
}

// supportGrant is a heal-family buff waiting on the support puzzle.
type supportGrant struct {
	Kind       BuffKind
	Power      int
	DurationMs int
}

// NewHero creates a hero at (x, y) with default stats.
func NewHero(id HeroID, x, y float64, maxHP, maxMana int) *Hero {
	if maxHP <= 0 {
		maxHP = DefaultHeroHP
	}
	if maxMana < 0 {
		maxMana = DefaultHeroMana
	}
	h := &Hero{
		ID:      id,
		X:       x,
		Y:       y,
		W:       ActorSize,
		H:       ActorSize,
		HP:      maxHP,
		MaxHP:   maxHP,
		Mana:    maxMana,
		MaxMana: maxMana,
		FacingX: 1,
		Traits:  Traits{DefaultTraitValue, DefaultTraitValue, DefaultTraitValue, DefaultTraitValue},
		Buffs:   NewBuffLedger(),
	}
	h.refreshMirror()
	return h
}

// Alive reports whether the hero can act
func (h *Hero) Alive() bool {
	return h != nil && !h.Dead
}

// Rect returns the hero's bounding box
func (h *Hero) Rect() Rect {
	return Rect{X: h.X, Y: h.Y, W: h.W, H: h.H}
}

// Aim returns the normalized facing vector, or ErrDegenerateDirection when facing is zero.
func (h *Hero) Aim() (float64, float64, error) {
	return normalize(float64(h.FacingX), float64(h.FacingY))
}

// AimOrDefault recovers a degenerate facing to (1, 0)
func (h *Hero) AimOrDefault() (float64, float64) {
	nx, ny, err := h.Aim()
	if err != nil {
		return 1, 0
	}
	return nx, ny
}

// FacingName is the cardinal name passed to the animation hook.
func (h *Hero) FacingName() string {
	switch {
	case h.FacingY < 0:
		return "up"
	case h.FacingY > 0:
		return "down"
	case h.FacingX < 0:
		return "left"
	default:
		return "right"
	}
}

// updateFacing sets facing from the sign of velocity. Stationary heroes keep their facing.
func (h *Hero) updateFacing() {
	sx, sy := sign(h.VX), sign(h.VY)
	if sx == 0 && sy == 0 {
		return
	}
	h.FacingX, h.FacingY = sx, sy
}

// Damage reduces HP, clamping at zero. Returns the damage actually dealt.
func (h *Hero) Damage(amount int) int {
	if amount <= 0 || h.Dead {
		return 0
	}
	if amount > h.HP {
		amount = h.HP
	}
	h.HP -= amount
	if h.HP <= 0 {
		h.HP = 0
		h.Dead = true
		h.VX, h.VY = 0, 0
	}
	return amount
}

// Heal restores HP up to MaxHP. Returns the amount restored.
func (h *Hero) Heal(amount int) int {
	if amount <= 0 || h.Dead {
		return 0
	}
	if h.HP+amount > h.MaxHP {
		amount = h.MaxHP - h.HP
	}
	h.HP += amount
	return amount
}

// unlock releases a timed move lock
func (h *Hero) unlock() {
	h.Locked = false
	h.BusyUntil = 0
	h.VX, h.VY = 0, 0
}

// releaseSpell ends spell control and frees the hero immediately
func (h *Hero) releaseSpell() {
	h.Controlling = false
	h.ControlledSpell = 0
	h.unlock()
}

func (h *Hero) refreshMirror() {
	h.mirror = HeroMirror{
		BusyUntil:     h.BusyUntil,
		MoveSpeedMult: h.Buffs.HasteMult,
		DamageAmpMult: h.Buffs.DamageAmpMult,
		BuffsJSON:     h.Buffs.SnapshotJSON(),
	}
}

// HeroView is the read-only hero summary handed to the move logic hook.
type HeroView struct {
	ID      HeroID
	X, Y    float64
	HP      int
	Mana    int
	Facing  string
	Busy    bool
	Family  Family
	Traits  Traits
	Element Element
}

func (h *Hero) view(now int64) HeroView {
	return HeroView{
		ID:      h.ID,
		X:       h.X,
		Y:       h.Y,
		HP:      h.HP,
		Mana:    h.Mana,
		Facing:  h.FacingName(),
		Busy:    now < h.BusyUntil || h.Controlling || h.PuzzleLocked,
		Family:  h.Family,
		Traits:  h.Traits,
		Element: h.Element,
	}
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func normalize(x, y float64) (float64, float64, error) {
	m := math.Sqrt(x*x + y*y)
	if m < 1e-9 {
		return 0, 0, ErrDegenerateDirection
	}
	return x / m, y / m, nil
}

// dirVector converts a direction mask to unit-step components
func dirVector(dirs uint8) (float64, float64) {
	var dx, dy float64
	if dirs&DirLeft != 0 {
		dx--
	}
	if dirs&DirRight != 0 {
		dx++
	}
	if dirs&DirUp != 0 {
		dy--
	}
	if dirs&DirDown != 0 {
		dy++
	}
	return dx, dy
}
