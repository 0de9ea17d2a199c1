package route

import (
	"testing"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/geom"
)

func fullPath(start, end geom.Point, turns []geom.Point) []geom.Point {
	path := []geom.Point{start}
	path = append(path, turns...)
	return append(path, end)
}

func newRouter(t *testing.T) *Router {
	t.Helper()
	r, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestRouteStrategies(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name      string
		start     geom.Point
		end       geom.Point
		obstacles []geom.Rect
		want      Strategy
		wantTurns int
	}{
		{
			name:  "aligned and clear",
			start: geom.Pt(60, 20),
			end:   geom.Pt(200, 20),
			want:  Straight,
		},
		{
			name:      "vertical first L",
			start:     geom.Pt(60, 20),
			end:       geom.Pt(200, 120),
			want:      LShape,
			wantTurns: 1,
		},
		{
			name:      "second L when first is blocked",
			start:     geom.Pt(60, 20),
			end:       geom.Pt(200, 120),
			obstacles: []geom.Rect{geom.XYWH(40, 60, 40, 40)},
			want:      LShape,
			wantTurns: 1,
		},
		{
			name:  "Z through vertical midline",
			start: geom.Pt(60, 20),
			end:   geom.Pt(200, 120),
			obstacles: []geom.Rect{
				geom.XYWH(40, 60, 40, 40),
				geom.XYWH(180, 0, 40, 40),
			},
			want:      ZShape,
			wantTurns: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turns, got := r.RouteWithStrategy(tt.start, tt.end, tt.obstacles, NoExclude, NoExclude)
			if got != tt.want {
				t.Errorf("strategy = %v, want %v (turns %v)", got, tt.want, turns)
			}
			if len(turns) != tt.wantTurns {
				t.Errorf("got %d turns %v, want %d", len(turns), turns, tt.wantTurns)
			}
			path := fullPath(tt.start, tt.end, turns)
			if !geom.IsOrthogonal(path) {
				t.Errorf("path %v is not orthogonal", path)
			}
			for _, o := range tt.obstacles {
				if geom.CrossesRect(path, o) {
					t.Errorf("path %v crosses obstacle %v", path, o)
				}
			}
		})
	}
}

func TestRouteAroundObstacle(t *testing.T) {
	r := newRouter(t)

	// A at (0,0), C at (100,0), B at (200,0); all 60x40
	obstacles := []geom.Rect{
		geom.XYWH(0, 0, 60, 40),
		geom.XYWH(100, 0, 60, 40),
		geom.XYWH(200, 0, 60, 40),
	}
	start := geom.Pt(60, 20)
	end := geom.Pt(200, 20)

	turns, strategy := r.RouteWithStrategy(start, end, obstacles, 0, 2)
	if len(turns) == 0 {
		t.Fatalf("expected a detour, got a straight wire")
	}
	if strategy != GridSearch {
		t.Errorf("strategy = %v, want grid", strategy)
	}

	path := fullPath(start, end, turns)
	if geom.CrossesRect(path, obstacles[1]) {
		t.Errorf("path %v crosses the blocking component", path)
	}
	if geom.CrossesRect(path, obstacles[1].Inflate(r.Config().Padding)) {
		t.Errorf("path %v ignores the clearance padding", path)
	}
	if !geom.IsOrthogonal(path) {
		t.Errorf("path %v is not orthogonal", path)
	}
}

func TestRouteIdempotent(t *testing.T) {
	r := newRouter(t)
	obstacles := []geom.Rect{
		geom.XYWH(0, 0, 60, 40),
		geom.XYWH(100, -30, 40, 200),
		geom.XYWH(250, 80, 60, 40),
	}
	start := geom.Pt(60, 20)
	end := geom.Pt(250, 100)

	first := r.Route(start, end, obstacles, 0, 2)
	second := r.Route(start, end, obstacles, 0, 2)
	if len(first) != len(second) {
		t.Fatalf("routes differ: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("turn %d differs: %v vs %v", i, first[i], second[i])
		}
	}
	if geom.CrossesRect(fullPath(start, end, first), obstacles[1]) {
		t.Errorf("path %v crosses the wall", first)
	}
}

func TestRouteFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCells = 1
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Endpoints enclosed by one obstacle cannot be separated from it
	obstacles := []geom.Rect{geom.XYWH(0, 0, 300, 300)}
	turns, strategy := r.RouteWithStrategy(geom.Pt(50, 50), geom.Pt(150, 250), obstacles, NoExclude, NoExclude)
	if strategy != Fallback {
		t.Errorf("strategy = %v, want fallback", strategy)
	}
	if len(turns) != 1 || turns[0] != geom.Pt(150, 50) {
		t.Errorf("fallback turns = %v, want [(150,50)]", turns)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GridSize = 0
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error for zero grid size")
	}

	cfg = DefaultConfig()
	cfg.Padding = -1
	if _, err := New(cfg); err == nil {
		t.Errorf("expected error for negative padding")
	}

	cfg = DefaultConfig()
	cfg.MarginCells = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.MarginCells != 1 {
		t.Errorf("MarginCells = %d, want 1", cfg.MarginCells)
	}
}
