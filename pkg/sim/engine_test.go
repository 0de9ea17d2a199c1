package sim

import (
	"reflect"
	"testing"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/logic"
)

func newEngine(t *testing.T, cfg *Config) *Engine {
	t.Helper()
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func mustConnect(t *testing.T, c *circuit.Circuit, from circuit.Source, to circuit.Sink) int {
	t.Helper()
	k, err := c.AddConnection(from, to)
	if err != nil {
		t.Fatalf("AddConnection(%v, %v): %v", from, to, err)
	}
	return k
}

func TestAndWithUnknownInput(t *testing.T) {
	c := circuit.New(nil)
	in0 := c.AddComponent(circuit.KindInputPin, 0, 0)
	in1 := c.AddComponent(circuit.KindInputPin, 0, 200)
	not := c.AddComponent(circuit.KindNot, 100, 100)
	and := c.AddComponent(circuit.KindAnd, 200, 40)
	out := c.AddComponent(circuit.KindOutputPin, 320, 40)

	mustConnect(t, c, circuit.FromOutput(in0, 0), circuit.ToInput(and, 0))
	mustConnect(t, c, circuit.FromOutput(not, 0), circuit.ToInput(and, 1))
	mustConnect(t, c, circuit.FromOutput(and, 0), circuit.ToInput(out, 0))
	if err := c.SetInputValue(in0, logic.High); err != nil {
		t.Fatalf("SetInputValue: %v", err)
	}

	e := newEngine(t, nil)

	// NOT has no driver, so the second AND input is unknown
	if res := e.Propagate(c); !res.Converged {
		t.Fatalf("did not converge: %+v", res)
	}
	if got := c.Components[and].Value; got != logic.Unknown {
		t.Errorf("AND(1, X) = %v, want X", got)
	}

	mustConnect(t, c, circuit.FromOutput(in1, 0), circuit.ToInput(not, 0))
	if err := c.SetInputValue(in1, logic.High); err != nil {
		t.Fatalf("SetInputValue: %v", err)
	}
	e.Propagate(c)
	if got := c.Components[and].Value; got != logic.Low {
		t.Errorf("AND(1, 0) = %v, want 0", got)
	}

	if err := c.SetInputValue(in1, logic.Low); err != nil {
		t.Fatalf("SetInputValue: %v", err)
	}
	e.Propagate(c)
	if got := c.Components[and].Value; got != logic.High {
		t.Errorf("AND(1, 1) = %v, want 1", got)
	}
	if got := c.Components[out].Value; got != logic.High {
		t.Errorf("output pin = %v, want 1", got)
	}
}

func TestPropagateIsFixedPoint(t *testing.T) {
	c := circuit.New(nil)
	a := c.AddComponent(circuit.KindInputPin, 0, 0)
	b := c.AddComponent(circuit.KindInputPin, 0, 100)
	xor := c.AddComponent(circuit.KindXor, 150, 40)
	out := c.AddComponent(circuit.KindOutputPin, 300, 40)
	mustConnect(t, c, circuit.FromOutput(a, 0), circuit.ToInput(xor, 0))
	mustConnect(t, c, circuit.FromOutput(b, 0), circuit.ToInput(xor, 1))
	mustConnect(t, c, circuit.FromOutput(xor, 0), circuit.ToInput(out, 0))
	_ = c.SetInputValue(a, logic.High)

	e := newEngine(t, nil)
	first := e.Propagate(c)
	if !first.Converged {
		t.Fatalf("did not converge: %+v", first)
	}
	snapshot := func() []logic.Signal {
		var s []logic.Signal
		for _, conn := range c.Connections {
			s = append(s, conn.Signal)
		}
		for _, comp := range c.Components {
			s = append(s, comp.Value)
		}
		return s
	}
	before := snapshot()

	second := e.Propagate(c)
	if !second.Converged || second.Passes != 1 || second.Changes[0] != 0 {
		t.Errorf("second run = %+v, want one quiet pass", second)
	}
	if after := snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("signals changed: %v -> %v", before, after)
	}
	if got := c.Components[out].Value; got != logic.High {
		t.Errorf("XOR(1, 0) at output = %v, want 1", got)
	}
}

func TestPropagateThroughTapChain(t *testing.T) {
	c := circuit.New(nil)
	in := c.AddComponent(circuit.KindInputPin, 0, 0)
	buf := c.AddComponent(circuit.KindBuffer, 150, 0)
	out1 := c.AddComponent(circuit.KindOutputPin, 300, 0)
	out2 := c.AddComponent(circuit.KindOutputPin, 300, 150)
	out3 := c.AddComponent(circuit.KindOutputPin, 450, 300)

	mustConnect(t, c, circuit.FromOutput(in, 0), circuit.ToInput(buf, 0))
	main := mustConnect(t, c, circuit.FromOutput(buf, 0), circuit.ToInput(out1, 0))
	tap, err := c.AddTap(main, c.SourcePoint(main).Add(geom.Pt(40, 0)))
	if err != nil {
		t.Fatalf("AddTap: %v", err)
	}
	branch := mustConnect(t, c, circuit.FromTap(main, tap), circuit.ToInput(out2, 0))
	tap2, err := c.AddTap(branch, c.SinkPoint(branch).Sub(geom.Pt(20, 0)))
	if err != nil {
		t.Fatalf("AddTap on branch: %v", err)
	}
	mustConnect(t, c, circuit.FromTap(branch, tap2), circuit.ToInput(out3, 0))
	_ = c.SetInputValue(in, logic.High)

	res := newEngine(t, nil).Propagate(c)
	if !res.Converged {
		t.Fatalf("did not converge: %+v", res)
	}
	for _, o := range []int{out1, out2, out3} {
		if got := c.Components[o].Value; got != logic.High {
			t.Errorf("output %d = %v, want 1", o, got)
		}
	}
}

func TestOscillationIsCappedAndReported(t *testing.T) {
	c := circuit.New(nil)
	n1 := c.AddComponent(circuit.KindNot, 0, 0)
	n2 := c.AddComponent(circuit.KindNot, 200, 0)
	mustConnect(t, c, circuit.FromOutput(n1, 0), circuit.ToInput(n2, 0))
	mustConnect(t, c, circuit.FromOutput(n2, 0), circuit.ToInput(n1, 0))

	// Seed one known value into the ring
	c.Components[n1].Value = logic.Low

	e := newEngine(t, &Config{MaxPasses: 20, FindLoops: true})
	res := e.Propagate(c)
	if res.Converged {
		t.Fatalf("ring of inverters converged: %+v", res)
	}
	if res.Passes != 20 || len(res.Changes) != 20 {
		t.Errorf("passes = %d (%d change counts), want 20", res.Passes, len(res.Changes))
	}
	if want := [][]int{{n1, n2}}; !reflect.DeepEqual(res.Loops, want) {
		t.Errorf("loops = %v, want %v", res.Loops, want)
	}
}

func TestFeedbackLoopsAcyclic(t *testing.T) {
	c := circuit.New(nil)
	in := c.AddComponent(circuit.KindInputPin, 0, 0)
	out := c.AddComponent(circuit.KindOutputPin, 200, 0)
	mustConnect(t, c, circuit.FromOutput(in, 0), circuit.ToInput(out, 0))
	if loops := FeedbackLoops(c); len(loops) != 0 {
		t.Errorf("loops = %v, want none", loops)
	}
}

func TestReset(t *testing.T) {
	c := circuit.New(nil)
	in := c.AddComponent(circuit.KindInputPin, 0, 0)
	out := c.AddComponent(circuit.KindOutputPin, 200, 0)
	k := mustConnect(t, c, circuit.FromOutput(in, 0), circuit.ToInput(out, 0))
	newEngine(t, nil).Propagate(c)
	if c.Components[out].Value != logic.Low {
		t.Fatalf("output = %v, want 0", c.Components[out].Value)
	}

	Reset(c)
	if c.Components[out].Value != logic.Unknown || c.Connections[k].Signal != logic.Unknown {
		t.Errorf("Reset left values behind")
	}
	if c.Components[in].Value != logic.Low {
		t.Errorf("Reset cleared the driven input")
	}
}

func TestConfigValidate(t *testing.T) {
	if _, err := New(&Config{MaxPasses: 0}); err == nil {
		t.Errorf("expected error for zero max passes")
	}
}
