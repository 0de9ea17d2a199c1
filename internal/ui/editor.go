package ui

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/document"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/hittest"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/sim"
)

type dragMode int

const (
	dragNone dragMode = iota
	dragMove
	dragWire
)

// Selection is the component or connection the user last picked. Unused
// fields are -1.
type Selection struct {
	Component  int
	Connection int
}

// Editor turns pointer gestures in canvas coordinates into circuit edits.
// It holds no window state so it can run headless.
type Editor struct {
	Circuit  *circuit.Circuit
	Path     string
	Resolver *hittest.Resolver

	// Place is the palette kind dropped on the next press. KindUnknown
	// means pick and drag instead.
	Place circuit.Kind

	Simulate   bool
	LastResult sim.Result

	Selected Selection

	engine *sim.Engine
	logf   func(format string, args ...any)

	mode   dragMode
	from   circuit.Source
	grab   geom.Point
	cursor geom.Point
	moved  bool
}

// NewEditor wraps c. A nil circuit starts an empty one and a nil config
// selects the engine defaults.
func NewEditor(c *circuit.Circuit, cfg *sim.Config) (*Editor, error) {
	engine, err := sim.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("ui: %w", err)
	}
	if c == nil {
		c = circuit.New(nil)
	}
	return &Editor{
		Circuit:  c,
		Resolver: hittest.NewResolver(),
		Selected: Selection{Component: -1, Connection: -1},
		engine:   engine,
		logf:     func(string, ...any) {},
	}, nil
}

// SetLogger routes editor messages, typically to the log pane.
func (e *Editor) SetLogger(logf func(format string, args ...any)) {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	e.logf = logf
}

func (e *Editor) clearSelection() {
	e.Selected = Selection{Component: -1, Connection: -1}
}

// Press starts a gesture at p.
func (e *Editor) Press(p geom.Point) {
	e.cursor = p
	e.moved = false
	e.mode = dragNone

	if e.Place != circuit.KindUnknown {
		i := e.Circuit.AddComponent(e.Place, circuit.SnapToGrid(p.X), circuit.SnapToGrid(p.Y))
		e.logf("[EDIT] Placed %s as component %d", e.Place, i)
		e.Place = circuit.KindUnknown
		e.clearSelection()
		e.Selected.Component = i
		e.changed()
		return
	}

	hit := e.Resolver.Resolve(e.Circuit, p)
	e.clearSelection()
	switch hit.Kind {
	case hittest.Tap, hittest.OutputPin:
		e.from, _ = hit.Source()
		e.mode = dragWire
	case hittest.InputPin:
		e.Selected.Component = hit.Component
	case hittest.Wire:
		t, err := e.Circuit.AddTap(hit.Connection, hit.Point)
		if err != nil && !errors.Is(err, circuit.ErrDuplicateTap) {
			e.logf("[ERROR] %v", err)
			return
		}
		if err == nil {
			e.logf("[EDIT] Tap %d added on wire %d", t, hit.Connection)
		}
		e.Selected.Connection = hit.Connection
		e.from = circuit.FromTap(hit.Connection, t)
		e.mode = dragWire
	case hittest.Body:
		comp := e.Circuit.Component(hit.Component)
		e.Selected.Component = hit.Component
		e.grab = p.Sub(geom.Pt(comp.X, comp.Y))
		e.mode = dragMove
	}
}

// Drag continues the gesture at p.
func (e *Editor) Drag(p geom.Point) {
	if !p.Near(e.cursor, geom.Epsilon) {
		e.moved = true
	}
	e.cursor = p
	if e.mode != dragMove {
		return
	}
	at := p.Sub(e.grab)
	x, y := circuit.SnapToGrid(at.X), circuit.SnapToGrid(at.Y)
	comp := e.Circuit.Component(e.Selected.Component)
	if comp == nil || (comp.X == x && comp.Y == y) {
		return
	}
	if err := e.Circuit.MoveComponent(e.Selected.Component, x, y); err != nil {
		e.logf("[ERROR] %v", err)
	}
}

// Release ends the gesture at p. A wire gesture dropped on an input pin
// creates a connection; a click on an input pin body toggles its value.
func (e *Editor) Release(p geom.Point) {
	mode := e.mode
	e.mode = dragNone
	e.cursor = p

	switch mode {
	case dragWire:
		sink, ok := e.Resolver.Resolve(e.Circuit, p).Sink()
		if !ok {
			return
		}
		k, err := e.Circuit.AddConnection(e.from, sink)
		if err != nil {
			e.logf("[ERROR] %v", err)
			return
		}
		e.logf("[EDIT] Wire %d: %v -> %v", k, e.from, sink)
		e.clearSelection()
		e.Selected.Connection = k
		e.changed()
	case dragMove:
		comp := e.Circuit.Component(e.Selected.Component)
		if comp == nil {
			return
		}
		if !e.moved && comp.Kind == circuit.KindInputPin {
			if err := e.Circuit.ToggleInput(e.Selected.Component); err != nil {
				e.logf("[ERROR] %v", err)
				return
			}
			e.logf("[SIM] Input %d set to %v", e.Selected.Component, comp.Value)
		}
		e.changed()
	}
}

// Preview returns the rubber band of a wire being drawn.
func (e *Editor) Preview() (from, to geom.Point, ok bool) {
	if e.mode != dragWire {
		return geom.Point{}, geom.Point{}, false
	}
	switch e.from.Kind {
	case circuit.SourceTap:
		at, err := e.Circuit.TapPoint(e.from.Index, e.from.Pin)
		if err != nil {
			return geom.Point{}, geom.Point{}, false
		}
		from = at
	default:
		comp := e.Circuit.Component(e.from.Index)
		if comp == nil {
			return geom.Point{}, geom.Point{}, false
		}
		from = comp.OutputPin(e.from.Pin)
	}
	return from, e.cursor, true
}

// Cancel abandons the gesture in progress.
func (e *Editor) Cancel() {
	e.mode = dragNone
	e.Place = circuit.KindUnknown
}

// Delete removes the selection.
func (e *Editor) Delete() error {
	var err error
	switch {
	case e.Selected.Component >= 0:
		err = e.Circuit.DeleteComponent(e.Selected.Component)
		if err == nil {
			e.logf("[EDIT] Deleted component %d", e.Selected.Component)
		}
	case e.Selected.Connection >= 0:
		err = e.Circuit.DeleteConnection(e.Selected.Connection)
		if err == nil {
			e.logf("[EDIT] Deleted wire %d", e.Selected.Connection)
		}
	default:
		return nil
	}
	e.clearSelection()
	if err != nil {
		return err
	}
	e.changed()
	return nil
}

// AdjustInputs changes the input count of the selected gate by delta.
func (e *Editor) AdjustInputs(delta int) error {
	comp := e.Circuit.Component(e.Selected.Component)
	if comp == nil {
		return nil
	}
	if err := e.Circuit.SetInputCount(e.Selected.Component, comp.Inputs+delta); err != nil {
		return err
	}
	e.changed()
	return nil
}

// AdjustScale grows or shrinks the selected component by delta.
func (e *Editor) AdjustScale(delta float64) error {
	comp := e.Circuit.Component(e.Selected.Component)
	if comp == nil {
		return nil
	}
	return e.Circuit.SetScale(e.Selected.Component, comp.Scale+delta)
}

// SetSimulate turns propagation on or off. Turning it off clears every
// computed value.
func (e *Editor) SetSimulate(on bool) {
	e.Simulate = on
	if !on {
		sim.Reset(e.Circuit)
		e.LastResult = sim.Result{}
		e.logf("[SIM] Simulation stopped")
		return
	}
	e.logf("[SIM] Simulation started")
	e.Propagate()
}

// Propagate runs the engine once and reports runs that hit the pass cap.
func (e *Editor) Propagate() sim.Result {
	e.LastResult = e.engine.Propagate(e.Circuit)
	if !e.LastResult.Converged {
		e.logf("[SIM] No fixed point after %d passes, loops %v", e.LastResult.Passes, e.LastResult.Loops)
	}
	return e.LastResult
}

// changed re-evaluates after a signal-affecting edit.
func (e *Editor) changed() {
	if e.Simulate {
		e.Propagate()
	}
}

// Save writes the circuit to path, or to the last used path when empty.
func (e *Editor) Save(path string) error {
	if path == "" {
		path = e.Path
	}
	if path == "" {
		return errors.New("ui: no file name")
	}
	if err := document.SaveFile(path, e.Circuit); err != nil {
		return err
	}
	e.Path = path
	e.logf("[INFO] Saved %s", path)
	return nil
}

// Load replaces the circuit with the file at path. Connections the loader
// dropped are logged and the rest of the file is kept.
func (e *Editor) Load(path string) error {
	c, err := document.LoadFile(path, e.Circuit.Router())
	if c == nil {
		return err
	}
	if err != nil {
		if errors.Is(err, document.ErrMalformed) {
			return err
		}
		e.logf("[WARN] %v", err)
	}
	e.Circuit = c
	e.Path = path
	e.clearSelection()
	e.mode = dragNone
	e.logf("[INFO] Loaded %s: %d components, %d wires", path, len(c.Components), len(c.Connections))
	e.changed()
	return nil
}

// Status is the one-line summary for the status bar.
func (e *Editor) Status() string {
	s := fmt.Sprintf("%d components, %d wires", len(e.Circuit.Components), len(e.Circuit.Connections))
	if e.Place != circuit.KindUnknown {
		s += " | placing " + e.Place.String()
	}
	if e.Simulate {
		if e.LastResult.Converged {
			s += fmt.Sprintf(" | settled in %d passes", e.LastResult.Passes)
		} else {
			s += " | oscillating"
		}
	}
	return s
}
