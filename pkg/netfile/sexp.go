package netfile

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chewxy/sexp"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/circuit"
)

// SexpOptions controls the S-expression netlist header.
type SexpOptions struct {
	Source string // design source file name, optional
	Tool   string
}

// DefaultSexpOptions returns the default header values.
func DefaultSexpOptions() SexpOptions {
	return SexpOptions{Tool: "otl"}
}

// RefName is the reference designator of component i.
func RefName(i int) string { return "U" + strconv.Itoa(i+1) }

// PinName names an input pin "I<n>" and an output pin "O<n>".
func PinName(p circuit.PinRef) string {
	if p.Output {
		return "O" + strconv.Itoa(p.Pin)
	}
	return "I" + strconv.Itoa(p.Pin)
}

// node is a tiny S-expression builder.
type node struct {
	head  string
	atoms []string
	kids  []*node
}

func list(head string, atoms ...string) *node {
	return &node{head: head, atoms: atoms}
}

func (n *node) add(kids ...*node) *node {
	n.kids = append(n.kids, kids...)
	return n
}

func (n *node) write(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString("(")
	b.WriteString(n.head)
	for _, a := range n.atoms {
		b.WriteString(" ")
		b.WriteString(strconv.Quote(a))
	}
	if len(n.kids) == 0 {
		b.WriteString(")")
		return
	}
	for _, k := range n.kids {
		b.WriteString("\n")
		k.write(b, depth+1)
	}
	b.WriteString(")")
}

// FormatSexp renders c as a KiCad-style netlist:
//
//	(export (version "E") (design ...) (components (comp ...)) (nets (net ...)))
//
// Nets are electrical nets, so a driver and every input reached through
// taps share one net.
func FormatSexp(c *circuit.Circuit, opts SexpOptions) string {
	design := list("design").add(list("tool", opts.Tool))
	if opts.Source != "" {
		design.add(list("source", opts.Source))
	}

	comps := list("components")
	for i := range c.Components {
		comp := &c.Components[i]
		value := comp.Kind.String()
		if value == "" {
			value = "unknown"
		}
		comps.add(list("comp").add(
			list("ref", RefName(i)),
			list("value", value),
			list("property").add(list("name", "x"), list("value", num(comp.X))),
			list("property").add(list("name", "y"), list("value", num(comp.Y))),
			list("property").add(list("name", "scale"), list("value", num(comp.Scale))),
		))
	}

	nets := list("nets")
	for _, n := range c.Nets() {
		name := fmt.Sprintf("Net-%d", n.ID+1)
		if d := n.Drivers(); len(d) > 0 {
			name = fmt.Sprintf("Net-%s-%s", RefName(d[0].Component), PinName(d[0]))
		}
		net := list("net").add(list("code", strconv.Itoa(n.ID+1)), list("name", name))
		for _, p := range n.Pins {
			kind := "input"
			if p.Output {
				kind = "output"
			}
			net.add(list("node").add(list("ref", RefName(p.Component)), list("pin", PinName(p)), list("pintype", kind)))
		}
		nets.add(net)
	}

	root := list("export").add(list("version", "E"), design, comps, nets)
	var b strings.Builder
	root.write(&b, 0)
	b.WriteString("\n")
	return b.String()
}

// ExportSexp writes the S-expression netlist of c. The text is parsed back
// before writing so a malformed netlist never reaches w.
func ExportSexp(c *circuit.Circuit, w io.Writer, opts SexpOptions) error {
	text := FormatSexp(c, opts)
	exprs, err := sexp.ParseString(text)
	if err != nil {
		return fmt.Errorf("netfile: sexp self-check: %w", err)
	}
	if len(exprs) != 1 || exprs[0].IsLeaf() {
		return fmt.Errorf("netfile: sexp self-check: expected one list, got %d expressions", len(exprs))
	}
	if _, err := io.WriteString(w, text); err != nil {
		return fmt.Errorf("netfile: write sexp: %w", err)
	}
	return nil
}
