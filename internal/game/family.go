package game

// Family selects which stat formulas and kinematics model a move uses.
type Family int

const (
	FamilyStrength Family = iota
	FamilyAgility
	FamilyIntellect
	FamilyHeal
)

// String returns the lowercase family name
func (f Family) String() string {
	switch f {
	case FamilyStrength:
		return "strength"
	case FamilyAgility:
		return "agility"
	case FamilyIntellect:
		return "intellect"
	case FamilyHeal:
		return "heal"
	default:
		return "unknown"
	}
}

// Valid reports whether f is one of the four move families
func (f Family) Valid() bool {
	return f >= FamilyStrength && f <= FamilyHeal
}

// Element is the damage flavor carried by a move descriptor.
// The combat core passes it through untouched.
type Element int

const (
	ElementNone Element = iota
	ElementGrass
	ElementFire
	ElementWater
	ElementElectric
	ElementHeal
)

// Button is a discrete move intent sampled from a hero's controller.
type Button string

const (
	ButtonNone Button = ""
	ButtonA    Button = "A"
	ButtonB    Button = "B"
	ButtonAB   Button = "A+B"
)

// ParseButton validates an intent string
func ParseButton(s string) (Button, bool) {
	switch Button(s) {
	case ButtonNone, ButtonA, ButtonB, ButtonAB:
		return Button(s), true
	}
	return ButtonNone, false
}

// AnimKey names the animation handed to the Animate hook.
type AnimKey string

const (
	AnimIdle AnimKey = "idle"
	AnimA    AnimKey = "A-Move"
	AnimB    AnimKey = "B-Move"
	AnimAB   AnimKey = "A+B Move"
)

// AnimKeyForID maps a descriptor animation id to its key. Unknown ids fall back to idle.
func AnimKeyForID(id int) AnimKey {
	switch id {
	case 1:
		return AnimA
	case 2:
		return AnimB
	case 3:
		return AnimAB
	default:
		return AnimIdle
	}
}

// Direction bits for held directional input (steering and walking).
const (
	DirUp uint8 = 1 << iota
	DirDown
	DirLeft
	DirRight
)

// Traits are the four tunable per-hero integers; meaning depends on the family.
type Traits [4]int

// Clamped returns a copy with negative values floored at zero
func (t Traits) Clamped() Traits {
	for i, v := range t {
		if v < 0 {
			t[i] = 0
		}
	}
	return t
}

// Sum returns t1+t2+t3+t4 without clamping
func (t Traits) Sum() int {
	return t[0] + t[1] + t[2] + t[3]
}

// MoveDescriptor is the decoded output of the move logic hook.
type MoveDescriptor struct {
	Family  Family
	Traits  Traits
	Element Element
	AnimID  int
}

// DescriptorFields is the minimum length of a raw move descriptor:
// family, t1..t4, element, animId.
const DescriptorFields = 7

// ParseMoveDescriptor decodes raw hook output. Extra trailing fields are ignored.
func ParseMoveDescriptor(raw []int) (MoveDescriptor, error) {
	if len(raw) < DescriptorFields {
		return MoveDescriptor{}, ErrInvalidMoveDescriptor
	}
	d := MoveDescriptor{
		Family:  Family(raw[0]),
		Traits:  Traits{raw[1], raw[2], raw[3], raw[4]},
		Element: Element(raw[5]),
		AnimID:  raw[6],
	}
	if !d.Family.Valid() {
		return MoveDescriptor{}, ErrInvalidMoveDescriptor
	}
	return d, nil
}

// Encode returns the raw 7-field form of the descriptor
func (d MoveDescriptor) Encode() []int {
	return []int{int(d.Family), d.Traits[0], d.Traits[1], d.Traits[2], d.Traits[3], int(d.Element), d.AnimID}
}
