package hittest

import (
	"math"
	"testing"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/geom"
)

// wired returns an input pin feeding a NOT gate over a straight wire from
// (60,20) to (200,20).
func wired(t *testing.T) *circuit.Circuit {
	t.Helper()
	c := circuit.New(nil)
	in := c.AddComponent(circuit.KindInputPin, 0, 0)
	not := c.AddComponent(circuit.KindNot, 200, 0)
	if _, err := c.AddConnection(circuit.FromOutput(in, 0), circuit.ToInput(not, 0)); err != nil {
		t.Fatalf("AddConnection: %v", err)
	}
	return c
}

func TestResolve(t *testing.T) {
	c := wired(t)
	r := NewResolver()

	tests := []struct {
		name      string
		p         geom.Point
		kind      Kind
		component int
		pin       int
		conn      int
	}{
		{"output pin centre", geom.Pt(60, 20), OutputPin, 0, 0, -1},
		{"near input pin", geom.Pt(203, 21), InputPin, 1, 0, -1},
		{"on wire", geom.Pt(130, 22), Wire, -1, -1, 0},
		{"off wire", geom.Pt(130, 30), None, -1, -1, -1},
		{"inside body", geom.Pt(230, 5), Body, 1, -1, -1},
		{"empty canvas", geom.Pt(500, 500), None, -1, -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := r.Resolve(c, tt.p)
			if h.Kind != tt.kind || h.Component != tt.component || h.Pin != tt.pin || h.Connection != tt.conn {
				t.Errorf("Resolve(%v) = %v (comp %d pin %d conn %d), want %v (comp %d pin %d conn %d)",
					tt.p, h.Kind, h.Component, h.Pin, h.Connection, tt.kind, tt.component, tt.pin, tt.conn)
			}
		})
	}
}

func TestWireProjection(t *testing.T) {
	c := wired(t)
	h := NewResolver().Resolve(c, geom.Pt(130, 22))
	if h.Kind != Wire {
		t.Fatalf("kind = %v, want wire", h.Kind)
	}
	if h.Segment != 0 || math.Abs(h.T-0.5) > 1e-9 {
		t.Errorf("segment %d t %.3f, want 0 and 0.5", h.Segment, h.T)
	}
	if !h.Point.Near(geom.Pt(130, 20), 1e-9) || math.Abs(h.Dist-2) > 1e-9 {
		t.Errorf("point %v dist %.3f, want (130,20) and 2", h.Point, h.Dist)
	}
}

func TestTapBeatsPin(t *testing.T) {
	c := wired(t)
	tap, err := c.AddTap(0, geom.Pt(62, 20))
	if err != nil {
		t.Fatalf("AddTap: %v", err)
	}
	h := NewResolver().Resolve(c, geom.Pt(62, 20))
	if h.Kind != Tap || h.Connection != 0 || h.Tap != tap {
		t.Fatalf("Resolve = %v, want tap %d on wire 0", h, tap)
	}
	src, ok := h.Source()
	if !ok || src != circuit.FromTap(0, tap) {
		t.Errorf("Source() = %v, %v", src, ok)
	}
}

func TestTapFollowsReroute(t *testing.T) {
	c := wired(t)
	if _, err := c.AddTap(0, geom.Pt(130, 20)); err != nil {
		t.Fatalf("AddTap: %v", err)
	}
	// Moving the sink changes the path; the tap must be found where the
	// new path puts it, not at its old pixel.
	if err := c.MoveComponent(1, 200, 100); err != nil {
		t.Fatalf("MoveComponent: %v", err)
	}
	want, err := c.TapPoint(0, 0)
	if err != nil {
		t.Fatalf("TapPoint: %v", err)
	}
	h := NewResolver().Taps(c, want)
	if h.Kind != Tap || h.Dist != 0 {
		t.Errorf("Taps(%v) = %v, want exact tap", want, h)
	}
}

func TestTopmostBody(t *testing.T) {
	c := circuit.New(nil)
	c.AddComponent(circuit.KindAnd, 0, 0)
	c.AddComponent(circuit.KindOr, 20, 0)

	h := NewResolver().Resolve(c, geom.Pt(40, 5))
	if h.Kind != Body || h.Component != 1 {
		t.Errorf("Resolve = %v, want component 1", h)
	}

	r := NewResolver()
	r.Bodies = false
	if h := r.Resolve(c, geom.Pt(40, 5)); h.Kind != None {
		t.Errorf("Resolve without bodies = %v, want none", h)
	}
}

func TestSinkConversion(t *testing.T) {
	c := wired(t)
	h := NewResolver().Resolve(c, geom.Pt(200, 20))
	sink, ok := h.Sink()
	if !ok || sink != circuit.ToInput(1, 0) {
		t.Errorf("Sink() = %v, %v, want component 1 in 0", sink, ok)
	}
	if _, ok := h.Source(); ok {
		t.Errorf("input pin converted to a source")
	}
}
