package circuit

import (
	"math"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/logic"
)

// Footprint geometry shared by every kind.
const (
	BaseWidth  = 60.0
	BaseHeight = 40.0
	GridSize   = 10.0
)

// Component is a placed circuit element. Pin positions are derived from
// position, scale and pin counts on every call.
type Component struct {
	Kind        Kind
	X, Y        float64
	Scale       float64
	Inputs      int
	Outputs     int
	Color       string
	StrokeWidth float64

	// Value is the current output. Input pins are driven externally.
	Value logic.Signal
}

// NewComponent builds a component with the kind's default arity.
func NewComponent(kind Kind, x, y float64) Component {
	info := kind.Info()
	c := Component{
		Kind:        kind,
		X:           x,
		Y:           y,
		Scale:       1,
		Inputs:      info.Inputs,
		Outputs:     info.Outputs,
		StrokeWidth: 1,
	}
	if kind == KindInputPin {
		c.Value = logic.Low
	}
	return c
}

func (c *Component) scale() float64 {
	if c.Scale < 1 {
		return 1
	}
	return c.Scale
}

// Size returns the footprint width and height.
func (c *Component) Size() (float64, float64) {
	s := c.scale()
	return BaseWidth * s, BaseHeight * s
}

// Footprint returns the component body rectangle.
func (c *Component) Footprint() geom.Rect {
	w, h := c.Size()
	return geom.XYWH(c.X, c.Y, w, h)
}

// InputPin returns the centre of input pin i on the left edge.
func (c *Component) InputPin(i int) geom.Point {
	_, h := c.Size()
	return geom.Point{X: c.X, Y: c.Y + pinOffset(h, c.Inputs, i)}
}

// OutputPin returns the centre of output pin i on the right edge.
func (c *Component) OutputPin(i int) geom.Point {
	w, h := c.Size()
	return geom.Point{X: c.X + w, Y: c.Y + pinOffset(h, c.Outputs, i)}
}

// pinOffset spaces n pins evenly along an edge of length h.
func pinOffset(h float64, n, i int) float64 {
	if n < 1 {
		n = 1
	}
	return h / float64(n+1) * float64(i+1)
}

// SnapToGrid rounds v to the nearest grid line, halves rounding up.
func SnapToGrid(v float64) float64 {
	return math.Floor((v+GridSize/2)/GridSize) * GridSize
}
