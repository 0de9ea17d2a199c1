// Package logic implements the ternary signal domain and the combinational
// rules evaluated by the propagation engine.
package logic

import (
	"fmt"
	"strings"
)

// Signal is a ternary logic value. The zero value is Unknown so that wires
// and pins start undriven.
type Signal int8

const (
	Unknown Signal = iota
	Low
	High
)

// String returns "0", "1" or "X".
func (s Signal) String() string {
	switch s {
	case Low:
		return "0"
	case High:
		return "1"
	}
	return "X"
}

// Known reports whether s is 0 or 1.
func (s Signal) Known() bool {
	return s == Low || s == High
}

// Not inverts a known signal and leaves Unknown unchanged.
func (s Signal) Not() Signal {
	switch s {
	case Low:
		return High
	case High:
		return Low
	}
	return Unknown
}

// FromBool converts a boolean to Low or High.
func FromBool(b bool) Signal {
	if b {
		return High
	}
	return Low
}

// ParseSignal accepts 0/1/x as well as low/high/unknown, case-insensitive.
func ParseSignal(s string) (Signal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "low", "l", "false":
		return Low, nil
	case "1", "high", "h", "true":
		return High, nil
	case "x", "unknown", "?":
		return Unknown, nil
	}
	return Unknown, fmt.Errorf("logic: invalid signal %q", s)
}
