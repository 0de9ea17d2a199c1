package circuit

import (
	"strings"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/logic"
)

// Kind identifies a component type. It is resolved once from the type name
// when a component is created or loaded.
type Kind int

const (
	KindUnknown Kind = iota
	KindInputPin
	KindOutputPin
	KindAnd
	KindOr
	KindNot
	KindNand
	KindNor
	KindXor
	KindXnor
	KindBuffer
	KindOddParity
	KindEvenParity
	KindControlledBuffer
	KindControlledInverter
	numKinds
)

// KindInfo is the fixed per-kind table entry.
type KindInfo struct {
	Name      string
	Inputs    int // default input count
	Outputs   int // default output count
	MinInputs int
	MaxInputs int
	Rule      logic.Rule
}

const maxGateInputs = 8

var kindTable = [numKinds]KindInfo{
	KindUnknown:            {Name: "", Rule: logic.Undriven},
	KindInputPin:           {Name: "Input Pin", Inputs: 0, Outputs: 1, Rule: logic.Undriven},
	KindOutputPin:          {Name: "Output Pin", Inputs: 1, Outputs: 0, MinInputs: 1, MaxInputs: 1, Rule: logic.Probe},
	KindAnd:                {Name: "AND", Inputs: 2, Outputs: 1, MinInputs: 2, MaxInputs: maxGateInputs, Rule: logic.And},
	KindOr:                 {Name: "OR", Inputs: 2, Outputs: 1, MinInputs: 2, MaxInputs: maxGateInputs, Rule: logic.Or},
	KindNot:                {Name: "NOT", Inputs: 1, Outputs: 1, MinInputs: 1, MaxInputs: 1, Rule: logic.Not},
	KindNand:               {Name: "NAND", Inputs: 2, Outputs: 1, MinInputs: 2, MaxInputs: maxGateInputs, Rule: logic.Nand},
	KindNor:                {Name: "NOR", Inputs: 2, Outputs: 1, MinInputs: 2, MaxInputs: maxGateInputs, Rule: logic.Nor},
	KindXor:                {Name: "XOR", Inputs: 2, Outputs: 1, MinInputs: 2, MaxInputs: maxGateInputs, Rule: logic.Xor},
	KindXnor:               {Name: "XNOR", Inputs: 2, Outputs: 1, MinInputs: 2, MaxInputs: maxGateInputs, Rule: logic.Xnor},
	KindBuffer:             {Name: "Buffer", Inputs: 1, Outputs: 1, MinInputs: 1, MaxInputs: 1, Rule: logic.Buffer},
	KindOddParity:          {Name: "Odd Parity", Inputs: 2, Outputs: 1, MinInputs: 2, MaxInputs: maxGateInputs, Rule: logic.Xor},
	KindEvenParity:         {Name: "Even Parity", Inputs: 2, Outputs: 1, MinInputs: 2, MaxInputs: maxGateInputs, Rule: logic.Xnor},
	KindControlledBuffer:   {Name: "Controlled Buffer", Inputs: 2, Outputs: 1, MinInputs: 2, MaxInputs: 2, Rule: logic.ControlledBuffer},
	KindControlledInverter: {Name: "Controlled Inverter", Inputs: 2, Outputs: 1, MinInputs: 2, MaxInputs: 2, Rule: logic.ControlledInverter},
}

// Info returns the table entry for k. Out-of-range kinds map to KindUnknown.
func (k Kind) Info() KindInfo {
	if k < 0 || k >= numKinds {
		return kindTable[KindUnknown]
	}
	return kindTable[k]
}

func (k Kind) String() string {
	if name := k.Info().Name; name != "" {
		return name
	}
	return "Unknown"
}

// Evaluate applies the kind's combinational rule.
func (k Kind) Evaluate(in []logic.Signal) logic.Signal {
	return k.Info().Rule(in)
}

// ParseKind resolves a type name. Matching ignores case, spaces, dashes and
// underscores, so "Input Pin", "input_pin" and "INPUTPIN" are equivalent.
// Unrecognised names give KindUnknown.
func ParseKind(name string) Kind {
	key := normalizeKind(name)
	if key == "" {
		return KindUnknown
	}
	for k := KindInputPin; k < numKinds; k++ {
		if normalizeKind(kindTable[k].Name) == key {
			return k
		}
	}
	switch key {
	case "input", "in":
		return KindInputPin
	case "output", "out", "probe":
		return KindOutputPin
	case "inverter":
		return KindNot
	case "buf":
		return KindBuffer
	}
	return KindUnknown
}

func normalizeKind(name string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(name)))
}

// Kinds lists every placeable kind in palette order.
func Kinds() []Kind {
	ks := make([]Kind, 0, numKinds-1)
	for k := KindInputPin; k < numKinds; k++ {
		ks = append(ks, k)
	}
	return ks
}
