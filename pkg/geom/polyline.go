package geom

import "math"

// Projection locates a point on a polyline by segment and parameter.
type Projection struct {
	Segment int
	T       float64
	Dist    float64
}

// Project finds the point of path closest to p. Ties go to the lower segment
// index. Ok is false when path has fewer than two points.
func Project(path []Point, p Point) (Projection, bool) {
	if len(path) < 2 {
		return Projection{}, false
	}
	best := Projection{Segment: -1, Dist: math.Inf(1)}
	for i := 0; i+1 < len(path); i++ {
		d, t := DistToSegment(p, path[i], path[i+1])
		if d < best.Dist {
			best = Projection{Segment: i, T: t, Dist: d}
		}
	}
	return best, true
}

// PointAt resolves a (segment, t) pair against path. The segment index is
// clamped to the path's range so a pair recorded on a longer path still
// resolves after the path loses bends.
func PointAt(path []Point, seg int, t float64) Point {
	switch len(path) {
	case 0:
		return Point{}
	case 1:
		return path[0]
	}
	if seg < 0 {
		seg = 0
	}
	if seg > len(path)-2 {
		seg = len(path) - 2
	}
	return Lerp(path[seg], path[seg+1], clamp01(t))
}

// Length returns the total length of path.
func Length(path []Point) float64 {
	var l float64
	for i := 0; i+1 < len(path); i++ {
		l += path[i].Dist(path[i+1])
	}
	return l
}

// CrossesRect reports whether any segment of path crosses the interior of r.
func CrossesRect(path []Point, r Rect) bool {
	for i := 0; i+1 < len(path); i++ {
		if SegmentCrossesRect(path[i], path[i+1], r) {
			return true
		}
	}
	return false
}

// IsOrthogonal reports whether every segment of path is horizontal or vertical.
func IsOrthogonal(path []Point) bool {
	for i := 0; i+1 < len(path); i++ {
		if path[i].X != path[i+1].X && path[i].Y != path[i+1].Y {
			return false
		}
	}
	return true
}

// Simplify drops repeated points and interior points that are collinear with
// their neighbours. Endpoints are always kept.
func Simplify(path []Point) []Point {
	if len(path) < 2 {
		return append([]Point(nil), path...)
	}
	out := make([]Point, 0, len(path))
	for _, p := range path {
		if len(out) > 0 && out[len(out)-1].Near(p, Epsilon) {
			continue
		}
		out = append(out, p)
	}
	if len(out) < 3 {
		return out
	}

	res := []Point{out[0]}
	for i := 1; i < len(out)-1; i++ {
		prev := res[len(res)-1]
		cur := out[i]
		next := out[i+1]
		cross := (cur.X-prev.X)*(next.Y-cur.Y) - (cur.Y-prev.Y)*(next.X-cur.X)
		if math.Abs(cross) < 0.5 {
			continue
		}
		res = append(res, cur)
	}
	res = append(res, out[len(out)-1])
	return res
}
