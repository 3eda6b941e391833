package game

import "math"

// Thrust timing and geometry
const (
	ThrustLeadFactor = 2.5  // Arrow extends this much faster than the hero advances
	ThrustReelMs     = 200  // Reel-in duration once fully extended
	ThrustHalfWidth  = 2.0  // Hit half-width in pixels
	thrustMinDtSec   = 0.0005
	thrustNoseGap    = 2.0
	thrustMinLen     = 4.0
	// thrustSafetyMs bounds a thrust whose hero never advances
	thrustSafetyMs = 1000
)

// Thrust is the agility weapon: a segment along the dash ray that leads the
// hero out to its planned reach, then reels its tail in.
type Thrust struct {
	NX, NY           float64
	Angle            float64
	AnchorX, AnchorY float64
	Reach            int // Planned center-to-tip reach L

	Attach    float64 // Hero front edge along the ray
	FrontStop float64 // Where the leading edge parks
	MaxLen    float64

	Len     float64
	Reached bool
	ReachT  int64
	Back    float64
	Front   float64

	lastT int64
	prevS float64
}

func newThrust(h *Hero, nx, ny float64, reach int, now int64) *Thrust {
	t := &Thrust{
		NX:      nx,
		NY:      ny,
		Angle:   math.Atan2(ny, nx),
		AnchorX: h.X,
		AnchorY: h.Y,
		Reach:   max(1, reach),
		lastT:   now,
	}
	t.Attach = 0.5 * (math.Abs(nx)*h.W + math.Abs(ny)*h.H)
	t.FrontStop = float64(t.Reach) - thrustNoseGap
	if t.FrontStop <= t.Attach {
		t.FrontStop = t.Attach + thrustMinLen
	}
	t.MaxLen = t.FrontStop - t.Attach
	t.Back, t.Front = t.Attach, t.Attach
	return t
}

func (t *Thrust) update(p *Projectile, h *Hero, now int64) bool {
	sHero := (h.X-t.AnchorX)*t.NX + (h.Y-t.AnchorY)*t.NY
	dt := math.Max(thrustMinDtSec, float64(now-t.lastT)/1000)
	vHero := math.Max(0, (sHero-t.prevS)/dt)
	t.prevS = sHero
	t.lastT = now

	if !t.Reached {
		t.Len += ThrustLeadFactor * vHero * dt
		if t.Len >= t.MaxLen {
			t.Len = t.MaxLen
			t.Reached = true
			t.ReachT = now
		}
		t.Back = t.Attach
		t.Front = t.Attach + t.Len
		return true
	}

	u := clampF(float64(now-t.ReachT)/ThrustReelMs, 0, 1)
	t.Len = t.MaxLen * (1 - u)
	if t.Len <= 0 {
		return false
	}
	t.Front = t.FrontStop
	t.Back = t.Front - t.Len
	return true
}

// Segment returns the world-space endpoints of the current thrust
func (t *Thrust) Segment() (bx, by, fx, fy float64) {
	return t.AnchorX + t.NX*t.Back, t.AnchorY + t.NY*t.Back,
		t.AnchorX + t.NX*t.Front, t.AnchorY + t.NY*t.Front
}

func (t *Thrust) hitsRect(r Rect) bool {
	if t.Front <= t.Back {
		return false
	}
	bx, by, fx, fy := t.Segment()
	return SegmentHitsRect(bx, by, fx, fy, ThrustHalfWidth, r)
}

func (w *World) spawnThrust(h *Hero, nx, ny float64, reach, dmg int, heal bool, status StatusPayload) *Projectile {
	p := w.newProjectile(KindThrust, h, dmg, heal, status)
	p.thrust = newThrust(h, nx, ny, reach, w.now)
	p.X, p.Y = h.X, h.Y
	p.ExpiresAt = w.now + int64(h.Stats.MoveDuration+h.Stats.LandingBuffer+ThrustReelMs+thrustSafetyMs)
	return p
}
