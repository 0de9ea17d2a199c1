package circuit

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/logic"
)

// SourceKind tells what endpoint A of a connection refers to.
type SourceKind int

const (
	SourceOutput SourceKind = iota // component output pin
	SourceTap                      // tap on another connection
)

// Source is endpoint A of a connection. For SourceOutput, Index is the
// component and Pin the output pin; for SourceTap, Index is the parent
// connection and Pin the tap.
type Source struct {
	Kind  SourceKind
	Index int
	Pin   int
}

// FromOutput refers to output pin of component comp.
func FromOutput(comp, pin int) Source {
	return Source{Kind: SourceOutput, Index: comp, Pin: pin}
}

// FromTap refers to tap of connection conn.
func FromTap(conn, tap int) Source {
	return Source{Kind: SourceTap, Index: conn, Pin: tap}
}

// IsTap reports whether the source is a tap on another connection.
func (s Source) IsTap() bool { return s.Kind == SourceTap }

func (s Source) String() string {
	if s.IsTap() {
		return fmt.Sprintf("wire %d tap %d", s.Index, s.Pin)
	}
	return fmt.Sprintf("component %d out %d", s.Index, s.Pin)
}

// Sink is endpoint B of a connection: always a component input.
type Sink struct {
	Component int
	Pin       int
}

// ToInput refers to input pin of component comp.
func ToInput(comp, pin int) Sink {
	return Sink{Component: comp, Pin: pin}
}

func (s Sink) String() string {
	return fmt.Sprintf("component %d in %d", s.Component, s.Pin)
}

// Tap is a branch point stored relative to the owning connection's path.
type Tap struct {
	Segment int
	T       float64
}

// Connection is a wire from a source to a component input.
type Connection struct {
	From   Source
	To     Sink
	Route  []geom.Point // turning points between the endpoints
	Taps   []Tap
	Signal logic.Signal
}

// touches reports whether the connection attaches directly to component i.
func (c *Connection) touches(i int) bool {
	return (c.From.Kind == SourceOutput && c.From.Index == i) || c.To.Component == i
}
