package circuit

import (
	"fmt"
	"sort"
)

// PinRef names one pin of one component.
type PinRef struct {
	Component int  `json:"component"`
	Pin       int  `json:"pin"`
	Output    bool `json:"output"`
}

func (p PinRef) String() string {
	dir := "in"
	if p.Output {
		dir = "out"
	}
	return fmt.Sprintf("%d.%s%d", p.Component, dir, p.Pin)
}

// Net is an electrical net: one driving output plus every input it reaches,
// directly or through taps.
type Net struct {
	ID          int      `json:"id"`
	Pins        []PinRef `json:"pins"`
	Connections []int    `json:"connections"`
}

// Drivers returns the output pins of the net.
func (n *Net) Drivers() []PinRef {
	var out []PinRef
	for _, p := range n.Pins {
		if p.Output {
			out = append(out, p)
		}
	}
	return out
}

// Netlist groups pins into nets with a union-find structure.
type Netlist struct {
	parent map[PinRef]PinRef
	rank   map[PinRef]int

	// Final nets after calling Finalize()
	Nets []*Net

	allPins []PinRef
	wires   map[PinRef][]int
}

// NewNetlist creates a netlist in which every pin is its own net.
func NewNetlist(pins []PinRef) *Netlist {
	nl := &Netlist{
		parent:  make(map[PinRef]PinRef, len(pins)),
		rank:    make(map[PinRef]int, len(pins)),
		allPins: append([]PinRef(nil), pins...),
		wires:   make(map[PinRef][]int),
	}
	for _, p := range pins {
		nl.parent[p] = p
	}
	return nl
}

// Connect merges the nets of a and b, recording connection conn on the
// result. Pins not given to NewNetlist are added on first use.
func (nl *Netlist) Connect(a, b PinRef, conn int) {
	nl.add(a)
	nl.add(b)
	rootA := nl.Find(a)
	rootB := nl.Find(b)
	if rootA != rootB {
		// Union by rank
		switch {
		case nl.rank[rootA] < nl.rank[rootB]:
			nl.parent[rootA] = rootB
		case nl.rank[rootA] > nl.rank[rootB]:
			nl.parent[rootB] = rootA
		default:
			nl.parent[rootB] = rootA
			nl.rank[rootA]++
		}
	}
	nl.wires[a] = append(nl.wires[a], conn)
}

func (nl *Netlist) add(p PinRef) {
	if _, ok := nl.parent[p]; ok {
		return
	}
	nl.parent[p] = p
	nl.allPins = append(nl.allPins, p)
}

// Find returns the representative pin of p's net, compressing the path.
func (nl *Netlist) Find(p PinRef) PinRef {
	root := p
	for nl.parent[root] != root {
		root = nl.parent[root]
	}
	for cur := p; cur != root; {
		next := nl.parent[cur]
		nl.parent[cur] = root
		cur = next
	}
	return root
}

// Finalize builds Nets from the union-find state. Single-pin nets are
// skipped; pins and nets are sorted for stable output.
func (nl *Netlist) Finalize() {
	groups := make(map[PinRef][]PinRef)
	conns := make(map[PinRef][]int)
	for _, p := range nl.allPins {
		root := nl.Find(p)
		groups[root] = append(groups[root], p)
		conns[root] = append(conns[root], nl.wires[p]...)
	}

	nl.Nets = nl.Nets[:0]
	for root, pins := range groups {
		if len(pins) < 2 {
			continue
		}
		sort.Slice(pins, func(i, j int) bool { return pinLess(pins[i], pins[j]) })
		ids := conns[root]
		sort.Ints(ids)
		nl.Nets = append(nl.Nets, &Net{Pins: pins, Connections: dedupe(ids)})
	}
	sort.Slice(nl.Nets, func(i, j int) bool {
		return pinLess(nl.Nets[i].Pins[0], nl.Nets[j].Pins[0])
	})
	for i, n := range nl.Nets {
		n.ID = i
	}
}

func pinLess(a, b PinRef) bool {
	if a.Component != b.Component {
		return a.Component < b.Component
	}
	if a.Output != b.Output {
		return a.Output
	}
	return a.Pin < b.Pin
}

func dedupe(ids []int) []int {
	out := ids[:0]
	for i, id := range ids {
		if i == 0 || id != ids[i-1] {
			out = append(out, id)
		}
	}
	return out
}

// Nets groups the circuit into electrical nets. A connection sourced from a
// tap joins the net of the output that drives its parent.
func (c *Circuit) Nets() []*Net {
	nl := NewNetlist(nil)
	for k := range c.Connections {
		comp, pin, ok := c.Driver(k)
		if !ok {
			continue
		}
		to := c.Connections[k].To
		nl.Connect(
			PinRef{Component: comp, Pin: pin, Output: true},
			PinRef{Component: to.Component, Pin: to.Pin},
			k,
		)
	}
	nl.Finalize()
	return nl.Nets
}
