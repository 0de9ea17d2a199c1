package logic

// Rule computes a component output from its ordered input vector.
// Every rule returns Unknown for an empty vector.
type Rule func(in []Signal) Signal

// anyUnknown reports whether in is empty or holds an Unknown.
func anyUnknown(in []Signal) bool {
	if len(in) == 0 {
		return true
	}
	for _, s := range in {
		if s == Unknown {
			return true
		}
	}
	return false
}

func contains(in []Signal, v Signal) bool {
	for _, s := range in {
		if s == v {
			return true
		}
	}
	return false
}

func parity(in []Signal) Signal {
	ones := 0
	for _, s := range in {
		if s == High {
			ones++
		}
	}
	return FromBool(ones%2 == 1)
}

// And is 0 when any input is 0, 1 when all are 1.
func And(in []Signal) Signal {
	if anyUnknown(in) {
		return Unknown
	}
	return FromBool(!contains(in, Low))
}

// Nand inverts And.
func Nand(in []Signal) Signal {
	return And(in).Not()
}

// Or is 1 when any input is 1.
func Or(in []Signal) Signal {
	if anyUnknown(in) {
		return Unknown
	}
	return FromBool(contains(in, High))
}

// Nor inverts Or.
func Nor(in []Signal) Signal {
	return Or(in).Not()
}

// Xor is 1 for an odd count of ones. It doubles as the odd-parity rule.
func Xor(in []Signal) Signal {
	if anyUnknown(in) {
		return Unknown
	}
	return parity(in)
}

// Xnor is 1 for an even count of ones. It doubles as the even-parity rule.
func Xnor(in []Signal) Signal {
	return Xor(in).Not()
}

// Not inverts its first input.
func Not(in []Signal) Signal {
	if len(in) == 0 {
		return Unknown
	}
	return in[0].Not()
}

// Buffer passes its first input through.
func Buffer(in []Signal) Signal {
	if len(in) == 0 {
		return Unknown
	}
	return in[0]
}

// ControlledBuffer passes data (input 0) while control (input 1) is 1 and
// reports Unknown otherwise.
func ControlledBuffer(in []Signal) Signal {
	if len(in) < 2 || in[1] != High {
		return Unknown
	}
	return in[0]
}

// ControlledInverter is ControlledBuffer with the data inverted.
func ControlledInverter(in []Signal) Signal {
	return ControlledBuffer(in).Not()
}

// Probe passes through the first known input. Output pins use it.
func Probe(in []Signal) Signal {
	for _, s := range in {
		if s.Known() {
			return s
		}
	}
	return Unknown
}

// Undriven ignores its inputs. It stands in for unrecognised kinds.
func Undriven([]Signal) Signal {
	return Unknown
}
