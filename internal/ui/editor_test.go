package ui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/logic"
)

func newEditor(t *testing.T) (*Editor, *[]string) {
	t.Helper()
	e, err := NewEditor(nil, nil)
	if err != nil {
		t.Fatalf("NewEditor: %v", err)
	}
	var logs []string
	e.SetLogger(func(format string, args ...any) {
		logs = append(logs, fmt.Sprintf(format, args...))
	})
	return e, &logs
}

func click(e *Editor, p geom.Point) {
	e.Press(p)
	e.Release(p)
}

func place(e *Editor, kind circuit.Kind, x, y float64) {
	e.Place = kind
	click(e, geom.Pt(x, y))
}

func wire(e *Editor, from, to geom.Point) {
	e.Press(from)
	e.Drag(from.Add(to).Mul(0.5))
	e.Release(to)
}

// inverter places in(0,0) -> NOT(200,0) -> out(400,0) and wires them.
func inverter(t *testing.T) (*Editor, *[]string) {
	t.Helper()
	e, logs := newEditor(t)
	place(e, circuit.KindInputPin, 3, -4)
	place(e, circuit.KindNot, 200, 0)
	place(e, circuit.KindOutputPin, 400, 0)
	wire(e, geom.Pt(60, 20), geom.Pt(201, 21))
	wire(e, geom.Pt(260, 20), geom.Pt(400, 20))
	if n := len(e.Circuit.Connections); n != 2 {
		t.Fatalf("connections = %d, want 2 (log: %v)", n, *logs)
	}
	return e, logs
}

func TestPlaceSnapsToGrid(t *testing.T) {
	e, _ := newEditor(t)
	place(e, circuit.KindAnd, 117, 44)
	comp := e.Circuit.Component(0)
	if comp == nil || comp.Kind != circuit.KindAnd {
		t.Fatalf("component 0 = %+v, want AND", comp)
	}
	if comp.X != 120 || comp.Y != 40 {
		t.Errorf("placed at (%v, %v), want (120, 40)", comp.X, comp.Y)
	}
	if e.Place != circuit.KindUnknown {
		t.Errorf("palette kind still armed: %v", e.Place)
	}
	if e.Selected.Component != 0 {
		t.Errorf("selection = %+v, want component 0", e.Selected)
	}
}

func TestWireAndSimulate(t *testing.T) {
	e, _ := inverter(t)
	c := e.Circuit
	if got := c.Connections[0].From; got != circuit.FromOutput(0, 0) {
		t.Errorf("wire 0 from %v", got)
	}
	if got := c.Connections[1].To; got != circuit.ToInput(2, 0) {
		t.Errorf("wire 1 to %v", got)
	}

	e.SetSimulate(true)
	if got := c.Components[2].Value; got != logic.High {
		t.Errorf("NOT(0) = %v, want 1", got)
	}

	// Clicking the input body toggles it
	click(e, geom.Pt(30, 30))
	if got := c.Components[0].Value; got != logic.High {
		t.Fatalf("input = %v after click, want 1", got)
	}
	if got := c.Components[2].Value; got != logic.Low {
		t.Errorf("NOT(1) = %v, want 0", got)
	}
	if !strings.Contains(e.Status(), "settled") {
		t.Errorf("status = %q", e.Status())
	}

	e.SetSimulate(false)
	if got := c.Components[2].Value; got != logic.Unknown {
		t.Errorf("output after stop = %v, want X", got)
	}
}

func TestWireRejected(t *testing.T) {
	e, logs := inverter(t)

	// output to output is not a connection
	wire(e, geom.Pt(60, 20), geom.Pt(260, 20))
	// NOT output back into its own input
	wire(e, geom.Pt(260, 20), geom.Pt(200, 20))

	if n := len(e.Circuit.Connections); n != 2 {
		t.Errorf("connections = %d, want 2", n)
	}
	found := false
	for _, l := range *logs {
		if strings.HasPrefix(l, "[ERROR]") && strings.Contains(l, circuit.ErrSelfLoop.Error()) {
			found = true
		}
	}
	if !found {
		t.Errorf("self loop not logged: %v", *logs)
	}
}

func TestBranchFromWire(t *testing.T) {
	e, _ := inverter(t)
	place(e, circuit.KindOutputPin, 400, 100)

	wire(e, geom.Pt(130, 21), geom.Pt(400, 120))

	c := e.Circuit
	if n := len(c.Connections); n != 3 {
		t.Fatalf("connections = %d, want 3", n)
	}
	if got := c.Connections[2].From; got != circuit.FromTap(0, 0) {
		t.Errorf("branch source = %v, want tap 0 of wire 0", got)
	}
	at, err := c.TapPoint(0, 0)
	if err != nil {
		t.Fatalf("TapPoint: %v", err)
	}
	if !at.Near(geom.Pt(130, 20), 1e-6) {
		t.Errorf("tap at %v, want (130, 20)", at)
	}

	_ = c.SetInputValue(0, logic.High)
	e.SetSimulate(true)
	if got := c.Components[3].Value; got != logic.High {
		t.Errorf("branch output = %v, want 1", got)
	}
}

func TestDragMovesAndReroutes(t *testing.T) {
	e, _ := inverter(t)
	e.Press(geom.Pt(230, 30))
	e.Drag(geom.Pt(231, 80))
	e.Drag(geom.Pt(233, 134))
	e.Release(geom.Pt(233, 134))

	c := e.Circuit
	comp := c.Component(1)
	if comp.X != 200 || comp.Y != 100 {
		t.Fatalf("NOT at (%v, %v), want (200, 100)", comp.X, comp.Y)
	}
	path := c.Path(0)
	if end := path[len(path)-1]; !end.Near(geom.Pt(200, 120), 1e-9) {
		t.Errorf("wire 0 ends at %v, want the moved input pin", end)
	}
	if !geom.IsOrthogonal(path) {
		t.Errorf("wire 0 not orthogonal: %v", path)
	}
	if c.Components[0].Value != logic.Low {
		t.Errorf("drag toggled an input")
	}
}

func TestDeleteSelection(t *testing.T) {
	e, _ := inverter(t)
	click(e, geom.Pt(230, 30))
	if e.Selected.Component != 1 {
		t.Fatalf("selection = %+v, want NOT", e.Selected)
	}
	if err := e.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(e.Circuit.Components) != 2 || len(e.Circuit.Connections) != 0 {
		t.Errorf("after delete: %d components, %d wires", len(e.Circuit.Components), len(e.Circuit.Connections))
	}
	if err := e.Delete(); err != nil {
		t.Errorf("Delete with empty selection: %v", err)
	}
}

func TestAdjustInputs(t *testing.T) {
	e, _ := newEditor(t)
	place(e, circuit.KindAnd, 0, 0)
	if err := e.AdjustInputs(1); err != nil {
		t.Fatalf("AdjustInputs: %v", err)
	}
	if got := e.Circuit.Components[0].Inputs; got != 3 {
		t.Errorf("inputs = %d, want 3", got)
	}
	if err := e.AdjustInputs(-2); err == nil {
		t.Errorf("expected error below the minimum")
	}
}

func TestSaveLoad(t *testing.T) {
	e, _ := inverter(t)
	if err := e.Save(""); err == nil {
		t.Errorf("Save without a name succeeded")
	}
	path := filepath.Join(t.TempDir(), "inv.json")
	if err := e.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	other, _ := newEditor(t)
	if err := other.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(other.Circuit.Components) != 3 || len(other.Circuit.Connections) != 2 {
		t.Errorf("loaded %d components, %d wires", len(other.Circuit.Components), len(other.Circuit.Connections))
	}
	if other.Path != path {
		t.Errorf("path = %q", other.Path)
	}
	if err := other.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("Load of a missing file succeeded")
	}
}

func TestCamera(t *testing.T) {
	cam := NewCamera(200, 100)
	p := geom.Pt(13, -7)
	s := cam.WorldToScreen(p)
	if back := cam.ScreenToWorld(s.X, s.Y); !back.Near(p, 1e-9) {
		t.Errorf("round trip %v -> %v", p, back)
	}

	before := cam.ScreenToWorld(40, 30)
	cam.ZoomAt(40, 30, 2.5)
	if after := cam.ScreenToWorld(40, 30); !after.Near(before, 1e-9) {
		t.Errorf("zoom moved the anchor: %v -> %v", before, after)
	}
	cam.ZoomAt(0, 0, 1000)
	if cam.Zoom != MaxZoom {
		t.Errorf("zoom = %v, want clamp at %v", cam.Zoom, MaxZoom)
	}

	cam.Fit(geom.R(0, 0, 100, 50))
	if math.Abs(cam.Zoom-1.8) > 1e-9 || !cam.Center.Near(geom.Pt(50, 25), 1e-9) {
		t.Errorf("fit = zoom %v centre %v", cam.Zoom, cam.Center)
	}
	cam.Pan(18, 0)
	if !cam.Center.Near(geom.Pt(40, 25), 1e-9) {
		t.Errorf("pan centre = %v", cam.Center)
	}
}
