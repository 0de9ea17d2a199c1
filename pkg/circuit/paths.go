package circuit

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/geom"
)

// Path returns the full polyline of connection i: source point, turning
// points, sink point. Nothing is cached; taps on the path resolve against
// whatever the path is now.
func (c *Circuit) Path(i int) []geom.Point {
	conn := c.Connection(i)
	if conn == nil {
		return nil
	}
	path := make([]geom.Point, 0, len(conn.Route)+2)
	path = append(path, c.SourcePoint(i))
	path = append(path, conn.Route...)
	return append(path, c.SinkPoint(i))
}

// SourcePoint resolves endpoint A of connection i to a pixel position.
func (c *Circuit) SourcePoint(i int) geom.Point {
	p, _ := c.sourcePoint(i, len(c.Connections))
	return p
}

// sourcePoint follows tap chains at most depth hops, which bounds the walk
// even on corrupt input.
func (c *Circuit) sourcePoint(i, depth int) (geom.Point, bool) {
	conn := c.Connection(i)
	if conn == nil || depth < 0 {
		return geom.Point{}, false
	}
	if conn.From.Kind == SourceOutput {
		comp := c.Component(conn.From.Index)
		if comp == nil {
			return geom.Point{}, false
		}
		return comp.OutputPin(conn.From.Pin), true
	}
	return c.tapPoint(conn.From.Index, conn.From.Pin, depth-1)
}

// SinkPoint resolves endpoint B of connection i to a pixel position.
func (c *Circuit) SinkPoint(i int) geom.Point {
	conn := c.Connection(i)
	if conn == nil {
		return geom.Point{}
	}
	comp := c.Component(conn.To.Component)
	if comp == nil {
		return geom.Point{}
	}
	return comp.InputPin(conn.To.Pin)
}

// TapPoint resolves tap t of connection i against the current path.
func (c *Circuit) TapPoint(i, t int) (geom.Point, error) {
	conn := c.Connection(i)
	if conn == nil {
		return geom.Point{}, fmt.Errorf("circuit: tap %d of connection %d: %w", t, i, ErrNoConnection)
	}
	if t < 0 || t >= len(conn.Taps) {
		return geom.Point{}, fmt.Errorf("circuit: tap %d of connection %d: %w", t, i, ErrNoTap)
	}
	p, _ := c.tapPoint(i, t, len(c.Connections))
	return p, nil
}

func (c *Circuit) tapPoint(i, t, depth int) (geom.Point, bool) {
	conn := c.Connection(i)
	if conn == nil || t < 0 || t >= len(conn.Taps) || depth < 0 {
		return geom.Point{}, false
	}
	start, ok := c.sourcePoint(i, depth)
	if !ok {
		return geom.Point{}, false
	}
	path := make([]geom.Point, 0, len(conn.Route)+2)
	path = append(path, start)
	path = append(path, conn.Route...)
	path = append(path, c.SinkPoint(i))
	tap := conn.Taps[t]
	return geom.PointAt(path, tap.Segment, tap.T), true
}

// AddTap projects p onto connection i and records the closest point as a
// new tap. When an existing tap already resolves within TapTolerance of that
// point, its index is returned together with ErrDuplicateTap.
func (c *Circuit) AddTap(i int, p geom.Point) (int, error) {
	conn := c.Connection(i)
	if conn == nil {
		return -1, fmt.Errorf("circuit: add tap on connection %d: %w", i, ErrNoConnection)
	}
	path := c.Path(i)
	proj, ok := geom.Project(path, p)
	if !ok {
		return -1, fmt.Errorf("circuit: add tap on connection %d: degenerate path", i)
	}
	at := geom.PointAt(path, proj.Segment, proj.T)

	for t := range conn.Taps {
		existing, ok := c.tapPoint(i, t, len(c.Connections))
		if ok && existing.Near(at, c.TapTolerance) {
			return t, fmt.Errorf("circuit: add tap on connection %d: %w", i, ErrDuplicateTap)
		}
	}
	conn.Taps = append(conn.Taps, Tap{Segment: proj.Segment, T: proj.T})
	return len(conn.Taps) - 1, nil
}

// Driver returns the component whose output ultimately feeds connection i,
// following tap chains to their root.
func (c *Circuit) Driver(i int) (comp, pin int, ok bool) {
	conn := c.Connection(i)
	if conn == nil {
		return -1, -1, false
	}
	from := conn.From
	for hops := 0; from.Kind == SourceTap; hops++ {
		parent := c.Connection(from.Index)
		if parent == nil || hops > len(c.Connections) {
			return -1, -1, false
		}
		from = parent.From
	}
	if c.Component(from.Index) == nil {
		return -1, -1, false
	}
	return from.Index, from.Pin, true
}

func (c *Circuit) driverOf(from Source) (int, bool) {
	if from.Kind == SourceOutput {
		return from.Index, true
	}
	comp, _, ok := c.Driver(from.Index)
	return comp, ok
}
