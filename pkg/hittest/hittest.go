// Package hittest maps a point on the canvas to the circuit element under
// it: a tap, a pin, a wire segment or a component body.
package hittest

import (
	"fmt"
	"math"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/geom"
)

// Kind identifies what a Hit refers to.
type Kind int

const (
	None Kind = iota
	Tap
	OutputPin
	InputPin
	Wire
	Body
)

func (k Kind) String() string {
	switch k {
	case Tap:
		return "tap"
	case OutputPin:
		return "output pin"
	case InputPin:
		return "input pin"
	case Wire:
		return "wire"
	case Body:
		return "body"
	}
	return "none"
}

// Hit is the result of resolving a point. Fields that do not apply to the
// Kind are -1.
type Hit struct {
	Kind       Kind
	Component  int
	Pin        int
	Connection int
	Tap        int
	Segment    int
	T          float64
	Point      geom.Point // centre of the element, or the projection for Wire
	Dist       float64
}

func miss() Hit {
	return Hit{Kind: None, Component: -1, Pin: -1, Connection: -1, Tap: -1, Segment: -1}
}

func (h Hit) String() string {
	switch h.Kind {
	case Tap:
		return fmt.Sprintf("tap %d on wire %d", h.Tap, h.Connection)
	case OutputPin, InputPin:
		return fmt.Sprintf("%s %d of component %d", h.Kind, h.Pin, h.Component)
	case Wire:
		return fmt.Sprintf("wire %d segment %d t=%.3f", h.Connection, h.Segment, h.T)
	case Body:
		return fmt.Sprintf("component %d", h.Component)
	}
	return "nothing"
}

// Source converts a tap or output pin hit into a connection source.
func (h Hit) Source() (circuit.Source, bool) {
	switch h.Kind {
	case Tap:
		return circuit.FromTap(h.Connection, h.Tap), true
	case OutputPin:
		return circuit.FromOutput(h.Component, h.Pin), true
	}
	return circuit.Source{}, false
}

// Sink converts an input pin hit into a connection sink.
func (h Hit) Sink() (circuit.Sink, bool) {
	if h.Kind != InputPin {
		return circuit.Sink{}, false
	}
	return circuit.ToInput(h.Component, h.Pin), true
}

// Resolver holds the pick radii in canvas units.
type Resolver struct {
	TapRadius     float64 // default: 6
	PinRadius     float64 // default: 6
	WireTolerance float64 // default: 4
	Bodies        bool    // fall back to component bodies (default: true)
}

// NewResolver returns a resolver with the default radii.
func NewResolver() *Resolver {
	return &Resolver{
		TapRadius:     6,
		PinRadius:     6,
		WireTolerance: 4,
		Bodies:        true,
	}
}

// Resolve returns the element at p. Taps win over pins, pins over wires and
// wires over bodies. Within one class the closest element wins; for bodies
// the topmost, which is the one with the highest index.
func (r *Resolver) Resolve(c *circuit.Circuit, p geom.Point) Hit {
	if h := r.Taps(c, p); h.Kind != None {
		return h
	}
	if h := r.Pins(c, p); h.Kind != None {
		return h
	}
	if h := r.Wires(c, p); h.Kind != None {
		return h
	}
	if r.Bodies {
		return r.Body(c, p)
	}
	return miss()
}

// Taps finds the closest tap within TapRadius. Tap positions are computed
// from the current paths.
func (r *Resolver) Taps(c *circuit.Circuit, p geom.Point) Hit {
	best := miss()
	best.Dist = math.Inf(1)
	for k := range c.Connections {
		for t := range c.Connections[k].Taps {
			at, err := c.TapPoint(k, t)
			if err != nil {
				continue
			}
			if d := at.Dist(p); d <= r.TapRadius && d < best.Dist {
				best = Hit{Kind: Tap, Component: -1, Pin: -1, Connection: k, Tap: t, Segment: -1, Point: at, Dist: d}
			}
		}
	}
	return best
}

// Pins finds the closest pin centre within PinRadius. On equal distance an
// output pin beats an input pin.
func (r *Resolver) Pins(c *circuit.Circuit, p geom.Point) Hit {
	best := miss()
	best.Dist = math.Inf(1)
	consider := func(kind Kind, comp, pin int, at geom.Point) {
		if d := at.Dist(p); d <= r.PinRadius && d < best.Dist {
			best = Hit{Kind: kind, Component: comp, Pin: pin, Connection: -1, Tap: -1, Segment: -1, Point: at, Dist: d}
		}
	}
	for i := range c.Components {
		comp := &c.Components[i]
		for pin := 0; pin < comp.Outputs; pin++ {
			consider(OutputPin, i, pin, comp.OutputPin(pin))
		}
	}
	for i := range c.Components {
		comp := &c.Components[i]
		for pin := 0; pin < comp.Inputs; pin++ {
			consider(InputPin, i, pin, comp.InputPin(pin))
		}
	}
	return best
}

// Wires finds the closest wire within WireTolerance and reports where on
// its path the point projects.
func (r *Resolver) Wires(c *circuit.Circuit, p geom.Point) Hit {
	best := miss()
	best.Dist = math.Inf(1)
	for k := range c.Connections {
		path := c.Path(k)
		proj, ok := geom.Project(path, p)
		if !ok || proj.Dist > r.WireTolerance || proj.Dist >= best.Dist {
			continue
		}
		best = Hit{
			Kind:       Wire,
			Component:  -1,
			Pin:        -1,
			Connection: k,
			Tap:        -1,
			Segment:    proj.Segment,
			T:          proj.T,
			Point:      geom.PointAt(path, proj.Segment, proj.T),
			Dist:       proj.Dist,
		}
	}
	return best
}

// Body returns the topmost component whose footprint contains p.
func (r *Resolver) Body(c *circuit.Circuit, p geom.Point) Hit {
	for i := len(c.Components) - 1; i >= 0; i-- {
		fp := c.Components[i].Footprint()
		if fp.Contains(p) {
			return Hit{Kind: Body, Component: i, Pin: -1, Connection: -1, Tap: -1, Segment: -1, Point: fp.Center()}
		}
	}
	return miss()
}
