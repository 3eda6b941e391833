package game

import "fmt"

// ProjectileID is a monotonically increasing handle. Zero means "none".
type ProjectileID uint64

// ProjectileKind selects the kinematics model. Closed set.
type ProjectileKind int

const (
	KindArcSwing ProjectileKind = iota
	KindThrust
	KindSpell
	KindSupportBeam
)

func (k ProjectileKind) String() string {
	switch k {
	case KindArcSwing:
		return "arc_swing"
	case KindThrust:
		return "thrust"
	case KindSpell:
		return "spell"
	case KindSupportBeam:
		return "support_beam"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// StatusPayload is the on-hit debuff a weapon carries.
type StatusPayload struct {
	SlowPct          int
	SlowDurationMs   int
	WeakenPct        int
	WeakenDurationMs int
	KnockbackPct     int
}

// Projectile is a weapon or effect entity owned by a hero.
// Exactly one of the model pointers is set, matching Kind.
type Projectile struct {
	ID     ProjectileID
	Kind   ProjectileKind
	Owner  HeroID
	Family Family
	Button Button

	Damage int
	Heal   bool
	Status StatusPayload

	// Reference point: hero center for swings, anchor for thrusts,
	// orb position for spells, beam head for support beams.
	X, Y float64

	CreatedAt int64
	ExpiresAt int64 // Hard lifespan; 0 = none

	hits hitMask
	done bool

	arc    *ArcSwing
	thrust *Thrust
	spell  *Spell
	beam   *SupportBeam
}

// Done reports whether the projectile is waiting for removal
func (p *Projectile) Done() bool {
	return p.done
}

// Update advances the projectile's model. Returns false if it should be removed.
func (p *Projectile) Update(w *World, now int64) bool {
	if p.done {
		return false
	}
	owner := w.hero(p.Owner)
	if !owner.Alive() {
		return false
	}
	if p.ExpiresAt > 0 && now >= p.ExpiresAt {
		return false
	}

	switch p.Kind {
	case KindArcSwing:
		return p.arc.update(p, owner, now)
	case KindThrust:
		return p.thrust.update(p, owner, now)
	case KindSpell:
		return p.spell.update(p, w, owner, now)
	case KindSupportBeam:
		return p.beam.update(p, w, owner)
	}
	return false
}

// HitsRect tests the projectile's current hit envelope against a rect.
func (p *Projectile) HitsRect(r Rect) bool {
	switch p.Kind {
	case KindArcSwing:
		return p.arc.sector.HitsRect(r)
	case KindThrust:
		return p.thrust.hitsRect(r)
	case KindSpell:
		return p.spell.hitsRect(p, r)
	}
	return false
}

// Bounds returns a circle enclosing the hit envelope, for broad-phase queries.
func (p *Projectile) Bounds() (cx, cy, radius float64) {
	switch p.Kind {
	case KindArcSwing:
		return p.arc.sector.CX, p.arc.sector.CY, p.arc.Outer
	case KindThrust:
		t := p.thrust
		return t.AnchorX, t.AnchorY, t.FrontStop + ThrustHalfWidth
	case KindSpell:
		return p.X, p.Y, SpellOrbRadius
	}
	return p.X, p.Y, 0
}

// Detonate triggers a spell's area effect at (x, y). Only valid for spells.
func (p *Projectile) Detonate(w *World, now int64, x, y float64) error {
	if p.Kind != KindSpell || p.spell == nil {
		return fmt.Errorf("projectile %d (%s): %w", p.ID, p.Kind, ErrMissingActor)
	}
	return p.spell.detonate(p, w, now, x, y)
}

// hitMask is a bitset of enemy slots already struck by a projectile.
type hitMask []uint64

func (m hitMask) has(slot uint32) bool {
	i := int(slot >> 6)
	return i < len(m) && m[i]&(1<<(slot&63)) != 0
}

func (m *hitMask) set(slot uint32) {
	i := int(slot >> 6)
	for len(*m) <= i {
		*m = append(*m, 0)
	}
	(*m)[i] |= 1 << (slot & 63)
}

func (m hitMask) clear(slot uint32) {
	i := int(slot >> 6)
	if i < len(m) {
		m[i] &^= 1 << (slot & 63)
	}
}

// ProjectileSnapshot is an immutable copy of projectile state for rendering
type ProjectileSnapshot struct {
	ID      ProjectileID `json:"id" msgpack:"id"`
	Kind    string       `json:"kind" msgpack:"kind"`
	Owner   HeroID       `json:"owner" msgpack:"owner"`
	X       float64      `json:"x" msgpack:"x"`
	Y       float64      `json:"y" msgpack:"y"`
	Angle   float64      `json:"angle" msgpack:"angle"`
	HalfArc float64      `json:"halfArc,omitempty" msgpack:"halfArc,omitempty"`
	Inner   float64      `json:"inner,omitempty" msgpack:"inner,omitempty"`
	Outer   float64      `json:"outer,omitempty" msgpack:"outer,omitempty"`
	Back    float64      `json:"back,omitempty" msgpack:"back,omitempty"`
	Front   float64      `json:"front,omitempty" msgpack:"front,omitempty"`
	Radius  float64      `json:"radius,omitempty" msgpack:"radius,omitempty"`
	State   string       `json:"state,omitempty" msgpack:"state,omitempty"`
	Heal    bool         `json:"heal,omitempty" msgpack:"heal,omitempty"`
	TargetX float64      `json:"targetX,omitempty" msgpack:"targetX,omitempty"`
	TargetY float64      `json:"targetY,omitempty" msgpack:"targetY,omitempty"`
}

// ToSnapshot creates an immutable snapshot for rendering
func (p *Projectile) ToSnapshot(w *World) ProjectileSnapshot {
	s := ProjectileSnapshot{
		ID:    p.ID,
		Kind:  p.Kind.String(),
		Owner: p.Owner,
		X:     p.X,
		Y:     p.Y,
		Heal:  p.Heal,
	}
	switch p.Kind {
	case KindArcSwing:
		s.Angle = p.arc.sector.Angle
		s.HalfArc = p.arc.sector.HalfArc
		s.Inner = p.arc.sector.Inner0
		s.Outer = p.arc.sector.Outer
	case KindThrust:
		s.Angle = p.thrust.Angle
		s.Back = p.thrust.Back
		s.Front = p.thrust.Front
	case KindSpell:
		s.State = p.spell.State()
		s.Radius = float64(p.spell.Radius)
	case KindSupportBeam:
		if t := w.hero(p.beam.Target); t != nil {
			s.TargetX, s.TargetY = t.X, t.Y
		}
	}
	return s
}
