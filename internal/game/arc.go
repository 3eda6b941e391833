package game

import "math"

// Arc-swing timing
const (
	// arcSpearPhase is the fraction of the swing spent thrusting straight out
	arcSpearPhase = 0.25
	// arcInnerPad is the gap between the hero's bounding circle and the swing
	arcInnerPad = 2.0
)

// ArcSwing is the strength weapon: a short spear thrust that opens into a
// widening sector pinned to the hero. Facing is frozen at cast.
type ArcSwing struct {
	NX, NY  float64
	Inner0  float64
	Outer   float64
	ArcDeg  int
	SwingMs int

	Progress float64 // 0..1
	sector   Sector
}

// StrengthInnerRadius is the radius of the circle that contains the hero box plus padding.
func StrengthInnerRadius(w, h float64) float64 {
	return math.Sqrt((w/2)*(w/2)+(h/2)*(h/2)) + arcInnerPad
}

func newArcSwing(h *Hero, nx, ny float64, arcDeg, swingMs int) *ArcSwing {
	inner0 := StrengthInnerRadius(h.W, h.H)
	a := &ArcSwing{
		NX:      nx,
		NY:      ny,
		Inner0:  inner0,
		Outer:   inner0 + math.Max(h.W, h.H),
		ArcDeg:  clampI(arcDeg, 0, MaxArcDeg),
		SwingMs: max(1, swingMs),
	}
	a.shape(h.X, h.Y, 0)
	return a
}

// shape rebuilds the hit sector for progress t at center (cx, cy).
func (a *ArcSwing) shape(cx, cy, t float64) {
	a.Progress = t
	s := Sector{
		CX:     cx,
		CY:     cy,
		Angle:  math.Atan2(a.NY, a.NX),
		Inner0: a.Inner0,
	}

	if t <= arcSpearPhase {
		s.Outer = a.Inner0 + (a.Outer-a.Inner0)*t/arcSpearPhase
		s.InnerMax = a.Inner0
	} else {
		sweep := (t - arcSpearPhase) / (1 - arcSpearPhase)
		halfDeg := float64(a.ArcDeg) / 2 * sweep
		s.HalfArc = halfDeg * math.Pi / 180
		s.InnerMax = a.Outer - 1
		s.Outer = a.Outer
	}
	a.sector = s
}

func (a *ArcSwing) update(p *Projectile, h *Hero, now int64) bool {
	age := now - p.CreatedAt
	if age >= int64(a.SwingMs) {
		return false
	}
	p.X, p.Y = h.X, h.Y
	a.shape(h.X, h.Y, float64(age)/float64(a.SwingMs))
	return true
}

// Sector returns the current hit sector
func (a *ArcSwing) Sector() Sector {
	return a.sector
}

func (w *World) spawnArcSwing(h *Hero, nx, ny float64, dmg int, heal bool, status StatusPayload) *Projectile {
	arc := newArcSwing(h, nx, ny, h.Stats.ArcDeg, h.Stats.SwingMs)
	p := w.newProjectile(KindArcSwing, h, dmg, heal, status)
	p.X, p.Y = h.X, h.Y
	p.ExpiresAt = w.now + int64(arc.SwingMs)
	p.arc = arc
	return p
}
