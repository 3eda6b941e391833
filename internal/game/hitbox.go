package game

import "math"

// Rect is an axis-aligned box centered on (X, Y).
// All hit volumes are tested against actor rects with O(1) math.
type Rect struct {
	X, Y float64
	W, H float64
}

func (r Rect) Left() float64   { return r.X - r.W/2 }
func (r Rect) Right() float64  { return r.X + r.W/2 }
func (r Rect) Top() float64    { return r.Y - r.H/2 }
func (r Rect) Bottom() float64 { return r.Y + r.H/2 }

// Area returns W*H
func (r Rect) Area() float64 {
	return r.W * r.H
}

// OverlapArea returns the area of the intersection of two rects (0 if disjoint).
func (r Rect) OverlapArea(o Rect) float64 {
	w := math.Min(r.Right(), o.Right()) - math.Max(r.Left(), o.Left())
	h := math.Min(r.Bottom(), o.Bottom()) - math.Max(r.Top(), o.Top())
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Contains reports whether the point lies inside the rect (edges inclusive)
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left() && x <= r.Right() && y >= r.Top() && y <= r.Bottom()
}

// Expand grows the rect by m on every side
func (r Rect) Expand(m float64) Rect {
	return Rect{X: r.X, Y: r.Y, W: r.W + 2*m, H: r.H + 2*m}
}

// SignificantOverlap reports whether other covers at least pct percent of subject's area.
func SignificantOverlap(subject, other Rect, pct int) bool {
	area := subject.Area()
	if area <= 0 {
		return false
	}
	return subject.OverlapArea(other)*100 >= area*float64(pct)
}

// SegmentHitsRect tests a segment of half-width hw against a rect.
// The rect is inflated by hw and the segment clipped against it (Liang-Barsky).
func SegmentHitsRect(ax, ay, bx, by, hw float64, r Rect) bool {
	box := r.Expand(hw)
	dx, dy := bx-ax, by-ay
	t0, t1 := 0.0, 1.0

	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return false
			}
			if t < t1 {
				t1 = t
			}
		}
		return true
	}

	return clip(-dx, ax-box.Left()) &&
		clip(dx, box.Right()-ax) &&
		clip(-dy, ay-box.Top()) &&
		clip(dy, box.Bottom()-ay) &&
		t0 <= t1
}

// DistSqPointToRect is the squared distance from a point to the nearest point of r.
func DistSqPointToRect(px, py float64, r Rect) float64 {
	cx := clampF(px, r.Left(), r.Right())
	cy := clampF(py, r.Top(), r.Bottom())
	dx, dy := px-cx, py-cy
	return dx*dx + dy*dy
}

// CircleHitsRect tests a circle against a rect
func CircleHitsRect(cx, cy, radius float64, r Rect) bool {
	return DistSqPointToRect(cx, cy, r) <= radius*radius
}

// Sector is a swept annular wedge centered on (CX, CY) facing Angle.
// The inner edge is not a circle: it tapers outward from Inner0 on the
// facing ray to InnerMax at the wedge edges.
type Sector struct {
	CX, CY   float64
	Angle    float64 // Facing, radians
	HalfArc  float64 // Radians; 0 means a straight spear
	Inner0   float64
	InnerMax float64
	Outer    float64
}

// innerAt returns the inner radius at angular offset a from the facing
func (s Sector) innerAt(a float64) float64 {
	if s.HalfArc <= 0 {
		return s.Inner0
	}
	r := s.Inner0 + (s.InnerMax-s.Inner0)*math.Abs(a)/s.HalfArc
	return clampF(r, s.Inner0, s.InnerMax)
}

// ContainsPoint reports whether (x, y) is inside the wedge
func (s Sector) ContainsPoint(x, y float64) bool {
	dx, dy := x-s.CX, y-s.CY
	d := math.Sqrt(dx*dx + dy*dy)
	if d > s.Outer {
		return false
	}
	a := normalizeAngle(math.Atan2(dy, dx) - s.Angle)
	if math.Abs(a) > s.HalfArc {
		return false
	}
	return d >= s.innerAt(a)
}

// sectorSampleStep is the spacing (px) of the rect sample lattice
const sectorSampleStep = 2.0

// HitsRect tests the wedge against a rect by sampling a lattice over the rect
// plus the wedge's tip and edge endpoints.
func (s Sector) HitsRect(r Rect) bool {
	// Wedge landmarks inside the rect
	for _, a := range [3]float64{0, -s.HalfArc, s.HalfArc} {
		ang := s.Angle + a
		ix, iy := s.CX+math.Cos(ang)*s.innerAt(a), s.CY+math.Sin(ang)*s.innerAt(a)
		ox, oy := s.CX+math.Cos(ang)*s.Outer, s.CY+math.Sin(ang)*s.Outer
		if SegmentHitsRect(ix, iy, ox, oy, 0, r) {
			return true
		}
	}

	nx := int(math.Ceil(r.W/sectorSampleStep)) + 1
	ny := int(math.Ceil(r.H/sectorSampleStep)) + 1
	for i := 0; i < nx; i++ {
		x := math.Min(r.Left()+float64(i)*sectorSampleStep, r.Right())
		for j := 0; j < ny; j++ {
			y := math.Min(r.Top()+float64(j)*sectorSampleStep, r.Bottom())
			if s.ContainsPoint(x, y) {
				return true
			}
		}
	}
	return false
}

// normalizeAngle normalizes an angle to the range [-π, π].
func normalizeAngle(angle float64) float64 {
	const twoPi = 2 * math.Pi
	angle = math.Mod(angle, twoPi)
	if angle < 0 {
		angle += twoPi
	}
	if angle > math.Pi {
		angle -= twoPi
	}
	return angle
}
