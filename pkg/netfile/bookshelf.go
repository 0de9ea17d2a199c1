// Package netfile converts circuits to and from interchange formats: a
// Bookshelf-style .nodes/.nets pair for placement and routing tools, and a
// KiCad-style S-expression netlist.
package netfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/route"
)

// ErrSkipped wraps each record the importer could not turn into a
// component or connection.
var ErrSkipped = errors.New("record skipped")

// NodeName is the exported name of component i.
func NodeName(i int) string { return "c" + strconv.Itoa(i) }

// NetName is the exported name of connection k.
func NetName(k int) string { return "n" + strconv.Itoa(k) }

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func isTerminal(k circuit.Kind) bool {
	return k == circuit.KindInputPin || k == circuit.KindOutputPin
}

// ExportNodesAndNets writes c as a .nodes and a .nets file. Every
// connection becomes a two-pin net; a tap source names the parent net and
// the tap with "branch".
func ExportNodesAndNets(c *circuit.Circuit, nodesW, netsW io.Writer) error {
	if err := writeNodes(c, nodesW); err != nil {
		return fmt.Errorf("netfile: write nodes: %w", err)
	}
	if err := writeNets(c, netsW); err != nil {
		return fmt.Errorf("netfile: write nets: %w", err)
	}
	return nil
}

func writeNodes(c *circuit.Circuit, w io.Writer) error {
	bw := bufio.NewWriter(w)
	terminals := 0
	for i := range c.Components {
		if isTerminal(c.Components[i].Kind) {
			terminals++
		}
	}
	fmt.Fprintf(bw, "UCLA nodes 1.0\n# %d components\n\n", len(c.Components))
	fmt.Fprintf(bw, "NumNodes : %d\nNumTerminals : %d\n\n", len(c.Components), terminals)
	for i := range c.Components {
		comp := &c.Components[i]
		w, h := comp.Size()
		fmt.Fprintf(bw, "%s %s %s", NodeName(i), num(w), num(h))
		if isTerminal(comp.Kind) {
			fmt.Fprint(bw, " terminal")
		}
		fmt.Fprintf(bw, " : %s %s", num(comp.X), num(comp.Y))
		if comp.Kind != circuit.KindUnknown {
			fmt.Fprintf(bw, " kind %q", comp.Kind.String())
		}
		fmt.Fprintf(bw, " pins %d %d scale %s\n", comp.Inputs, comp.Outputs, num(comp.Scale))
	}
	return bw.Flush()
}

func writeNets(c *circuit.Circuit, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "UCLA nets 1.0\n\nNumNets : %d\nNumPins : %d\n\n", len(c.Connections), 2*len(c.Connections))
	for k := range c.Connections {
		conn := &c.Connections[k]
		from, to := c.SourcePoint(k), c.SinkPoint(k)

		fmt.Fprintf(bw, "NetDegree : 2 %s\n", NetName(k))
		if conn.From.IsTap() {
			fmt.Fprintf(bw, "  %s O : %s %s branch %d\n", NetName(conn.From.Index), num(from.X), num(from.Y), conn.From.Pin)
		} else {
			fmt.Fprintf(bw, "  %s O : %s %s pin %d\n", NodeName(conn.From.Index), num(from.X), num(from.Y), conn.From.Pin)
		}
		fmt.Fprintf(bw, "  %s I : %s %s pin %d\n", NodeName(conn.To.Component), num(to.X), num(to.Y), conn.To.Pin)
		if len(conn.Route) > 0 {
			fmt.Fprint(bw, "  route")
			for _, p := range conn.Route {
				fmt.Fprintf(bw, " %s %s", num(p.X), num(p.Y))
			}
			fmt.Fprintln(bw)
		}
		for _, tap := range conn.Taps {
			fmt.Fprintf(bw, "  tap %d %s\n", tap.Segment, num(tap.T))
		}
	}
	return bw.Flush()
}

// ImportGenericNetlist rebuilds a circuit from a .nodes and a .nets file.
// Missing optional fields take defaults. Records that do not describe a
// valid component or connection are skipped; the returned error then joins
// one ErrSkipped per record while the circuit holds the rest. A syntax
// error fails the whole import.
func ImportGenericNetlist(nodesR, netsR io.Reader, r *route.Router) (*circuit.Circuit, error) {
	p, err := NewParser()
	if err != nil {
		return nil, fmt.Errorf("netfile: %w", err)
	}
	nodes, err := p.ParseNodes(nodesR)
	if err != nil {
		return nil, fmt.Errorf("netfile: nodes: %w", err)
	}
	nets, err := p.ParseNets(netsR)
	if err != nil {
		return nil, fmt.Errorf("netfile: nets: %w", err)
	}

	c := circuit.New(r)
	var errs []error
	nodeIndex := make(map[string]int, len(nodes.Nodes))
	for _, n := range nodes.Nodes {
		if _, dup := nodeIndex[n.Name]; dup {
			errs = append(errs, fmt.Errorf("netfile: node %s: duplicate name: %w", n.Name, ErrSkipped))
			continue
		}
		nodeIndex[n.Name] = c.AppendComponent(n.component())
	}

	netIndex := make(map[string]int, len(nets.Nets))
	for _, rec := range nets.Nets {
		k, err := addNet(c, rec, nodeIndex, netIndex)
		if err != nil {
			errs = append(errs, fmt.Errorf("netfile: net %s: %w: %w", rec.Name, ErrSkipped, err))
			continue
		}
		netIndex[rec.Name] = k
	}
	return c, errors.Join(errs...)
}

func (n *NodeLine) component() circuit.Component {
	kind := circuit.KindUnknown
	if n.Kind != nil {
		kind = circuit.ParseKind(*n.Kind)
	}
	var x, y float64
	if n.Position != nil {
		x, y = n.Position.X, n.Position.Y
	}
	comp := circuit.NewComponent(kind, x, y)
	if n.Pins != nil {
		comp.Inputs = max(0, n.Pins.Inputs)
		comp.Outputs = max(0, n.Pins.Outputs)
	}
	switch {
	case n.Scale != nil && *n.Scale >= 1:
		comp.Scale = *n.Scale
	case n.Width >= circuit.BaseWidth:
		comp.Scale = n.Width / circuit.BaseWidth
	}
	return comp
}

func pinOr(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func addNet(c *circuit.Circuit, rec *NetRecord, nodeIndex, netIndex map[string]int) (int, error) {
	var src, sink *NetPin
	for _, pin := range rec.Pins {
		switch pin.Dir {
		case "O":
			if src != nil {
				return -1, errors.New("more than one driver")
			}
			src = pin
		case "I":
			if sink != nil {
				return -1, errors.New("more than one sink")
			}
			sink = pin
		}
	}
	if src == nil || sink == nil {
		return -1, fmt.Errorf("need one O and one I pin, have %d pins", len(rec.Pins))
	}

	comp, ok := nodeIndex[sink.Node]
	if !ok {
		return -1, fmt.Errorf("unknown node %s", sink.Node)
	}
	to := circuit.ToInput(comp, pinOr(sink.Pin))

	var from circuit.Source
	if i, ok := nodeIndex[src.Node]; ok {
		from = circuit.FromOutput(i, pinOr(src.Pin))
	} else if k, ok := netIndex[src.Node]; ok {
		from = circuit.FromTap(k, pinOr(src.Branch))
	} else {
		return -1, fmt.Errorf("unknown source %s", src.Node)
	}

	var taps []circuit.Tap
	for _, tl := range rec.Taps {
		taps = append(taps, circuit.Tap{Segment: tl.Segment, T: min(max(tl.T, 0), 1)})
	}

	if len(rec.Route) > 0 {
		conn := circuit.Connection{From: from, To: to, Taps: clampTaps(taps, len(rec.Route))}
		for _, p := range rec.Route {
			conn.Route = append(conn.Route, geom.Pt(p.X, p.Y))
		}
		return c.RestoreConnection(conn)
	}
	k, err := c.AddConnection(from, to)
	if err != nil {
		return -1, err
	}
	c.Connections[k].Taps = clampTaps(taps, len(c.Connections[k].Route))
	return k, nil
}

// clampTaps keeps segment indices on a path with routeLen turning points.
func clampTaps(taps []circuit.Tap, routeLen int) []circuit.Tap {
	for i := range taps {
		taps[i].Segment = min(max(taps[i].Segment, 0), routeLen)
	}
	return taps
}
