// Package sim evaluates a circuit to a fixed point over the ternary signal
// domain.
package sim

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/logic"
)

// Result summarises one Propagate call.
type Result struct {
	Passes    int   // passes run, including the final quiet pass
	Converged bool  // false when MaxPasses was reached with values still changing
	Changes   []int // values changed in each pass

	// Loops lists the components of each feedback loop, filled in when the
	// run did not converge.
	Loops [][]int
}

// Engine runs signal propagation. It holds no circuit state.
type Engine struct {
	cfg Config
}

// New creates an engine. A nil config selects DefaultConfig.
func New(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: c}, nil
}

// Propagate pushes signals until nothing changes or the pass cap is hit.
// Each pass first copies sources onto connections, then recomputes every
// component that is not an input pin.
func (e *Engine) Propagate(c *circuit.Circuit) Result {
	sinks := make([][]int, len(c.Components))
	for k := range c.Connections {
		to := c.Connections[k].To.Component
		if to >= 0 && to < len(sinks) {
			sinks[to] = append(sinks[to], k)
		}
	}

	var res Result
	for res.Passes < e.cfg.MaxPasses {
		res.Passes++
		changed := e.pass(c, sinks)
		res.Changes = append(res.Changes, changed)
		if changed == 0 {
			res.Converged = true
			return res
		}
	}
	if e.cfg.FindLoops {
		res.Loops = FeedbackLoops(c)
	}
	return res
}

func (e *Engine) pass(c *circuit.Circuit, sinks [][]int) int {
	changed := 0

	// Sources onto wires. Tap parents precede their children, so a value
	// crosses a whole tap chain in one pass.
	for k := range c.Connections {
		conn := &c.Connections[k]
		v := logic.Unknown
		switch conn.From.Kind {
		case circuit.SourceOutput:
			if comp := c.Component(conn.From.Index); comp != nil {
				v = comp.Value
			}
		case circuit.SourceTap:
			if parent := c.Connection(conn.From.Index); parent != nil {
				v = parent.Signal
			}
		}
		if conn.Signal != v {
			conn.Signal = v
			changed++
		}
	}

	// Wires into components
	for i := range c.Components {
		comp := &c.Components[i]
		if comp.Kind == circuit.KindInputPin {
			continue
		}
		in := gather(c, comp, sinks[i])
		if out := comp.Kind.Evaluate(in); out != comp.Value {
			comp.Value = out
			changed++
		}
	}
	return changed
}

// gather builds the input vector of comp. Unconnected pins read Unknown; with
// several wires on one pin the first known signal wins.
func gather(c *circuit.Circuit, comp *circuit.Component, wires []int) []logic.Signal {
	in := make([]logic.Signal, comp.Inputs)
	for _, k := range wires {
		conn := &c.Connections[k]
		pin := conn.To.Pin
		if pin < 0 || pin >= len(in) {
			continue
		}
		if in[pin] == logic.Unknown {
			in[pin] = conn.Signal
		}
	}
	return in
}

// Reset clears every wire and every computed output to Unknown. Input pins
// keep their driven values.
func Reset(c *circuit.Circuit) {
	for k := range c.Connections {
		c.Connections[k].Signal = logic.Unknown
	}
	for i := range c.Components {
		if c.Components[i].Kind != circuit.KindInputPin {
			c.Components[i].Value = logic.Unknown
		}
	}
}

// FeedbackLoops returns the strongly connected groups of components in the
// driver-to-sink graph. Each loop is sorted, and loops are ordered by their
// first component.
func FeedbackLoops(c *circuit.Circuit) [][]int {
	g := simple.NewDirectedGraph()
	for i := range c.Components {
		g.AddNode(simple.Node(i))
	}
	selfLoops := make(map[int]bool)
	for k := range c.Connections {
		from, _, ok := c.Driver(k)
		to := c.Connections[k].To.Component
		if !ok || c.Component(to) == nil {
			continue
		}
		if from == to {
			selfLoops[from] = true
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(from), simple.Node(to)))
	}

	var loops [][]int
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) == 1 && !selfLoops[int(scc[0].ID())] {
			continue
		}
		ids := make([]int, len(scc))
		for i, n := range scc {
			ids[i] = int(n.ID())
		}
		sort.Ints(ids)
		loops = append(loops, ids)
	}
	sort.Slice(loops, func(i, j int) bool { return loops[i][0] < loops[j][0] })
	return loops
}
