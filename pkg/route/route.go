// Package route computes orthogonal wire paths that avoid component bodies.
//
// A route is tried in increasing cost order: a straight segment, the two
// single-bend L shapes, two double-bend Z shapes through a snapped midline,
// and finally an A* search over a uniform grid. When every strategy fails the
// router returns a single bend, so wire creation never blocks on geometry.
package route

import (
	"math"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/geom"
)

// NoExclude can be passed as an exclude index when no obstacle is skipped.
const NoExclude = -1

// Strategy names the step that produced a route.
type Strategy int

const (
	Straight Strategy = iota
	LShape
	ZShape
	GridSearch
	Fallback
)

func (s Strategy) String() string {
	switch s {
	case Straight:
		return "straight"
	case LShape:
		return "L"
	case ZShape:
		return "Z"
	case GridSearch:
		return "grid"
	case Fallback:
		return "fallback"
	}
	return "unknown"
}

// Router computes orthogonal routes. A Router holds no per-route state and
// routing the same input twice returns the same polyline.
type Router struct {
	cfg Config
}

// New creates a router. A nil config selects DefaultConfig.
func New(cfg *Config) (*Router, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Router{cfg: c}, nil
}

// Config returns the router's effective configuration.
func (r *Router) Config() Config {
	return r.cfg
}

// Route returns the turning points of a path from start to end that keeps
// clear of every obstacle except those at indices excludeA and excludeB.
// The result does not include start or end and is empty for a straight run.
func (r *Router) Route(start, end geom.Point, obstacles []geom.Rect, excludeA, excludeB int) []geom.Point {
	turns, _ := r.RouteWithStrategy(start, end, obstacles, excludeA, excludeB)
	return turns
}

// RouteWithStrategy is Route that also reports which step succeeded.
func (r *Router) RouteWithStrategy(start, end geom.Point, obstacles []geom.Rect, excludeA, excludeB int) ([]geom.Point, Strategy) {
	blocks := r.blockers(obstacles, excludeA, excludeB)
	aligned := start.X == end.X || start.Y == end.Y

	if aligned && clear([]geom.Point{start, end}, blocks) {
		return nil, Straight
	}

	for _, corner := range []geom.Point{
		{X: start.X, Y: end.Y},
		{X: end.X, Y: start.Y},
	} {
		path := []geom.Point{start, corner, end}
		if clear(path, blocks) {
			return turnsOf(path), LShape
		}
	}

	midX := r.snap((start.X + end.X) / 2)
	midY := r.snap((start.Y + end.Y) / 2)
	for _, path := range [][]geom.Point{
		{start, {X: midX, Y: start.Y}, {X: midX, Y: end.Y}, end},
		{start, {X: start.X, Y: midY}, {X: end.X, Y: midY}, end},
	} {
		if clear(path, blocks) {
			return turnsOf(path), ZShape
		}
	}

	if turns, ok := r.search(start, end, obstacles, blocks); ok {
		return turns, GridSearch
	}

	if aligned {
		return nil, Fallback
	}
	return []geom.Point{{X: end.X, Y: start.Y}}, Fallback
}

// blockers inflates every obstacle that is not excluded.
func (r *Router) blockers(obstacles []geom.Rect, excludeA, excludeB int) []geom.Rect {
	blocks := make([]geom.Rect, 0, len(obstacles))
	for i, o := range obstacles {
		if i == excludeA || i == excludeB {
			continue
		}
		blocks = append(blocks, o.Inflate(r.cfg.Padding))
	}
	return blocks
}

func (r *Router) snap(v float64) float64 {
	g := r.cfg.GridSize
	return math.Round(v/g) * g
}

func clear(path []geom.Point, blocks []geom.Rect) bool {
	for _, b := range blocks {
		if geom.CrossesRect(path, b) {
			return false
		}
	}
	return true
}

// turnsOf simplifies a full path and strips its endpoints.
func turnsOf(path []geom.Point) []geom.Point {
	s := geom.Simplify(path)
	if len(s) <= 2 {
		return nil
	}
	return s[1 : len(s)-1]
}
