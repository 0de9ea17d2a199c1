package geom

import "math"

// SegmentCrossesRect reports whether segment a-b passes through the interior
// of r. A segment that runs along the border or touches a corner does not
// cross it.
func SegmentCrossesRect(a, b Point, r Rect) bool {
	// Cheap rejection on the segment's bounding box
	if math.Max(a.X, b.X) <= r.Min.X || math.Min(a.X, b.X) >= r.Max.X ||
		math.Max(a.Y, b.Y) <= r.Min.Y || math.Min(a.Y, b.Y) >= r.Max.Y {
		return false
	}

	// Orthogonal segments are the common case for routed wires
	if a.X == b.X {
		return a.X > r.Min.X && a.X < r.Max.X
	}
	if a.Y == b.Y {
		return a.Y > r.Min.Y && a.Y < r.Max.Y
	}

	// Liang-Barsky clip against the closed rectangle
	dx := b.X - a.X
	dy := b.Y - a.Y
	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{a.X - r.Min.X, r.Max.X - a.X, a.Y - r.Min.Y, r.Max.Y - a.Y}
	t0, t1 := 0.0, 1.0
	for i := 0; i < 4; i++ {
		if p[i] == 0 {
			if q[i] < 0 {
				return false
			}
			continue
		}
		t := q[i] / p[i]
		if p[i] < 0 {
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
	}
	mid := Lerp(a, b, (t0+t1)/2)
	return r.ContainsStrict(mid)
}

// DistToSegment returns the distance from p to segment a-b together with the
// parameter t in [0,1] of the closest point on the segment.
func DistToSegment(p, a, b Point) (float64, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return p.Dist(a), 0
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = clamp01(t)
	return p.Dist(Lerp(a, b, t)), t
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
