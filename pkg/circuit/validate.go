package circuit

import (
	"errors"
	"fmt"
)

// Validate checks every structural invariant and returns all violations
// joined together, or nil for a consistent circuit.
func (c *Circuit) Validate() error {
	var errs []error
	for i := range c.Components {
		comp := &c.Components[i]
		if comp.Scale < 1 {
			errs = append(errs, fmt.Errorf("circuit: component %d: scale %v below 1", i, comp.Scale))
		}
		if comp.Inputs < 0 || comp.Outputs < 0 {
			errs = append(errs, fmt.Errorf("circuit: component %d: negative pin count", i))
		}
	}
	for k := range c.Connections {
		conn := &c.Connections[k]
		if err := c.checkEndpoints(conn.From, conn.To, k); err != nil {
			errs = append(errs, fmt.Errorf("connection %d: %w", k, err))
		}
		for t, tap := range conn.Taps {
			if tap.Segment < 0 || tap.Segment > len(conn.Route) || tap.T < 0 || tap.T > 1 {
				errs = append(errs, fmt.Errorf("circuit: connection %d tap %d: (%d, %v) off path", k, t, tap.Segment, tap.T))
			}
		}
	}
	return errors.Join(errs...)
}
