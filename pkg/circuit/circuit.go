package circuit

import (
	"errors"
	"fmt"
	"sort"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/logic"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/route"
)

// Errors returned for invalid topology. Operations that fail leave the
// circuit unchanged.
var (
	ErrNoComponent  = errors.New("no such component")
	ErrNoConnection = errors.New("no such connection")
	ErrNoTap        = errors.New("no such tap")
	ErrPinRange     = errors.New("pin index out of range")
	ErrSelfLoop     = errors.New("source and sink are the same component")
	ErrNotInputPin  = errors.New("component is not an input pin")
	ErrDuplicateTap = errors.New("tap already exists at this point")
)

// DefaultTapTolerance is the distance under which two taps are the same.
const DefaultTapTolerance = 6.0

// Circuit is the editable model: components and connections in dense
// slices where the slice index is the identity. Only DeleteComponent and
// DeleteConnection shift indices.
type Circuit struct {
	Components  []Component
	Connections []Connection

	// TapTolerance rejects a new tap this close to an existing one.
	TapTolerance float64

	router *route.Router
}

// New creates an empty circuit. A nil router selects the default config.
func New(r *route.Router) *Circuit {
	if r == nil {
		r, _ = route.New(nil)
	}
	return &Circuit{
		TapTolerance: DefaultTapTolerance,
		router:       r,
	}
}

// Router returns the router used to lay out connections.
func (c *Circuit) Router() *route.Router {
	return c.router
}

// AddComponent places a component with the kind's default arity and returns
// its index.
func (c *Circuit) AddComponent(kind Kind, x, y float64) int {
	return c.AppendComponent(NewComponent(kind, x, y))
}

// AppendComponent adds a fully specified component, as done when loading.
func (c *Circuit) AppendComponent(comp Component) int {
	if comp.Scale < 1 {
		comp.Scale = 1
	}
	c.Components = append(c.Components, comp)
	return len(c.Components) - 1
}

// Component returns a pointer to component i or nil when out of range.
func (c *Circuit) Component(i int) *Component {
	if i < 0 || i >= len(c.Components) {
		return nil
	}
	return &c.Components[i]
}

// Connection returns a pointer to connection i or nil when out of range.
func (c *Circuit) Connection(i int) *Connection {
	if i < 0 || i >= len(c.Connections) {
		return nil
	}
	return &c.Connections[i]
}

// MoveComponent moves component i and re-routes every connection attached
// to it, then every connection hanging off a tap of a re-routed one.
func (c *Circuit) MoveComponent(i int, x, y float64) error {
	comp := c.Component(i)
	if comp == nil {
		return fmt.Errorf("circuit: move component %d: %w", i, ErrNoComponent)
	}
	comp.X, comp.Y = x, y
	c.rerouteAttached(i)
	return nil
}

// SetScale resizes component i. Scales below 1 are raised to 1.
func (c *Circuit) SetScale(i int, scale float64) error {
	comp := c.Component(i)
	if comp == nil {
		return fmt.Errorf("circuit: scale component %d: %w", i, ErrNoComponent)
	}
	if scale < 1 {
		scale = 1
	}
	comp.Scale = scale
	c.rerouteAttached(i)
	return nil
}

// SetInputCount changes the number of inputs of component i within the
// kind's limits. Connections into removed pins are deleted.
func (c *Circuit) SetInputCount(i, n int) error {
	comp := c.Component(i)
	if comp == nil {
		return fmt.Errorf("circuit: input count of component %d: %w", i, ErrNoComponent)
	}
	info := comp.Kind.Info()
	if n < info.MinInputs || n > info.MaxInputs {
		return fmt.Errorf("circuit: %s takes %d..%d inputs, got %d: %w",
			comp.Kind, info.MinInputs, info.MaxInputs, n, ErrPinRange)
	}
	comp.Inputs = n

	var drop []int
	for k := range c.Connections {
		if to := c.Connections[k].To; to.Component == i && to.Pin >= n {
			drop = append(drop, k)
		}
	}
	c.deleteConnections(drop)
	c.rerouteAttached(i)
	return nil
}

// SetInputValue drives input pin component i.
func (c *Circuit) SetInputValue(i int, v logic.Signal) error {
	comp := c.Component(i)
	if comp == nil {
		return fmt.Errorf("circuit: set input %d: %w", i, ErrNoComponent)
	}
	if comp.Kind != KindInputPin {
		return fmt.Errorf("circuit: set input %d (%s): %w", i, comp.Kind, ErrNotInputPin)
	}
	comp.Value = v
	return nil
}

// ToggleInput flips input pin i between 0 and 1. An undriven pin becomes 1.
func (c *Circuit) ToggleInput(i int) error {
	comp := c.Component(i)
	if comp == nil {
		return fmt.Errorf("circuit: toggle input %d: %w", i, ErrNoComponent)
	}
	next := logic.High
	if comp.Value == logic.High {
		next = logic.Low
	}
	return c.SetInputValue(i, next)
}

// DeleteComponent removes component i, every connection attached to it and
// every connection sourced from their taps. Component indices above i shift
// down by one in the remaining connections.
func (c *Circuit) DeleteComponent(i int) error {
	if c.Component(i) == nil {
		return fmt.Errorf("circuit: delete component %d: %w", i, ErrNoComponent)
	}

	var drop []int
	for k := range c.Connections {
		if c.Connections[k].touches(i) {
			drop = append(drop, k)
		}
	}
	c.deleteConnections(drop)

	c.Components = append(c.Components[:i], c.Components[i+1:]...)
	for k := range c.Connections {
		conn := &c.Connections[k]
		if conn.From.Kind == SourceOutput && conn.From.Index > i {
			conn.From.Index--
		}
		if conn.To.Component > i {
			conn.To.Component--
		}
	}
	return nil
}

// AddConnection validates and routes a new connection and returns its
// index. Rejected connections are not stored.
func (c *Circuit) AddConnection(from Source, to Sink) (int, error) {
	if err := c.checkEndpoints(from, to, len(c.Connections)); err != nil {
		return -1, err
	}
	c.Connections = append(c.Connections, Connection{From: from, To: to})
	idx := len(c.Connections) - 1
	c.Reroute(idx)
	return idx, nil
}

// RestoreConnection adds a connection with its stored route and taps, as
// done when loading. Endpoints are validated like AddConnection; a tap
// source must refer to a connection already present.
func (c *Circuit) RestoreConnection(conn Connection) (int, error) {
	if err := c.checkEndpoints(conn.From, conn.To, len(c.Connections)); err != nil {
		return -1, err
	}
	conn.Route = append([]geom.Point(nil), conn.Route...)
	conn.Taps = append([]Tap(nil), conn.Taps...)
	conn.Signal = logic.Unknown
	c.Connections = append(c.Connections, conn)
	return len(c.Connections) - 1, nil
}

// checkEndpoints validates a prospective connection at index self.
func (c *Circuit) checkEndpoints(from Source, to Sink, self int) error {
	sink := c.Component(to.Component)
	if sink == nil {
		return fmt.Errorf("circuit: sink %v: %w", to, ErrNoComponent)
	}
	if to.Pin < 0 || to.Pin >= sink.Inputs {
		return fmt.Errorf("circuit: sink %v: %w", to, ErrPinRange)
	}

	switch from.Kind {
	case SourceOutput:
		src := c.Component(from.Index)
		if src == nil {
			return fmt.Errorf("circuit: source %v: %w", from, ErrNoComponent)
		}
		if from.Pin < 0 || from.Pin >= src.Outputs {
			return fmt.Errorf("circuit: source %v: %w", from, ErrPinRange)
		}
	case SourceTap:
		if from.Index < 0 || from.Index >= self {
			return fmt.Errorf("circuit: source %v: %w", from, ErrNoConnection)
		}
		if from.Pin < 0 || from.Pin >= len(c.Connections[from.Index].Taps) {
			return fmt.Errorf("circuit: source %v: %w", from, ErrNoTap)
		}
	default:
		return fmt.Errorf("circuit: source %v: unknown source kind %d", from, from.Kind)
	}

	if driver, ok := c.driverOf(from); ok && driver == to.Component {
		return fmt.Errorf("circuit: %v -> %v: %w", from, to, ErrSelfLoop)
	}
	return nil
}

// DeleteConnection removes connection i and, transitively, every connection
// sourced from its taps. Connection indices above removed ones shift down.
func (c *Circuit) DeleteConnection(i int) error {
	if c.Connection(i) == nil {
		return fmt.Errorf("circuit: delete connection %d: %w", i, ErrNoConnection)
	}
	c.deleteConnections([]int{i})
	return nil
}

// deleteConnections removes roots and their tap descendants in one pass and
// rewrites parent references of the survivors.
func (c *Circuit) deleteConnections(roots []int) {
	if len(roots) == 0 {
		return
	}
	doomed := c.descendants(roots)

	remap := make([]int, len(c.Connections))
	kept := c.Connections[:0]
	for k := range c.Connections {
		if doomed[k] {
			remap[k] = -1
			continue
		}
		remap[k] = len(kept)
		kept = append(kept, c.Connections[k])
	}
	for k := len(kept); k < len(c.Connections); k++ {
		c.Connections[k] = Connection{}
	}
	c.Connections = kept

	for k := range c.Connections {
		if from := &c.Connections[k].From; from.Kind == SourceTap {
			from.Index = remap[from.Index]
		}
	}
}

// descendants returns roots plus every connection reachable through taps.
func (c *Circuit) descendants(roots []int) map[int]bool {
	set := make(map[int]bool, len(roots))
	queue := append([]int(nil), roots...)
	for _, r := range roots {
		set[r] = true
	}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for k := range c.Connections {
			from := c.Connections[k].From
			if from.Kind == SourceTap && from.Index == parent && !set[k] {
				set[k] = true
				queue = append(queue, k)
			}
		}
	}
	return set
}

// rerouteAttached re-routes the connections touching component i and then
// their tap descendants, parents before children.
func (c *Circuit) rerouteAttached(i int) {
	var roots []int
	for k := range c.Connections {
		if c.Connections[k].touches(i) {
			roots = append(roots, k)
		}
	}
	if len(roots) == 0 {
		return
	}
	set := c.descendants(roots)
	order := make([]int, 0, len(set))
	for k := range set {
		order = append(order, k)
	}
	// Parents always precede their children in the slice
	sort.Ints(order)
	for _, k := range order {
		c.Reroute(k)
	}
}

// Reroute recomputes the route of connection i from its current endpoints
// and clamps its taps to the new path.
func (c *Circuit) Reroute(i int) {
	conn := c.Connection(i)
	if conn == nil {
		return
	}
	start := c.SourcePoint(i)
	end := c.SinkPoint(i)

	excludeA := route.NoExclude
	if conn.From.Kind == SourceOutput {
		excludeA = conn.From.Index
	}
	conn.Route = c.router.Route(start, end, c.Obstacles(), excludeA, conn.To.Component)

	segs := len(conn.Route) // path has len(Route)+2 points
	for t := range conn.Taps {
		if conn.Taps[t].Segment > segs {
			conn.Taps[t].Segment = segs
		}
	}
}

// RerouteAll recomputes every route in index order.
func (c *Circuit) RerouteAll() {
	for k := range c.Connections {
		c.Reroute(k)
	}
}

// Obstacles returns every component footprint, indexed like Components.
func (c *Circuit) Obstacles() []geom.Rect {
	rects := make([]geom.Rect, len(c.Components))
	for i := range c.Components {
		rects[i] = c.Components[i].Footprint()
	}
	return rects
}

// Bounds covers every component and every routed path.
func (c *Circuit) Bounds() geom.Rect {
	var r geom.Rect
	first := true
	add := func(o geom.Rect) {
		if first {
			r, first = o, false
			return
		}
		r = r.Union(o)
	}
	for i := range c.Components {
		add(c.Components[i].Footprint())
	}
	for k := range c.Connections {
		add(geom.Bounds(c.Path(k)...))
	}
	return r
}
