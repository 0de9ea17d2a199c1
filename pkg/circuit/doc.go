// Package circuit is the editable circuit model.
//
// Components and connections live in dense slices and are referred to by
// index. A connection runs from a component output, or from a tap on
// another connection, to a component input, and carries the turning points
// computed by the router. Taps are stored as (segment, t) pairs on the
// owning connection's path and resolve to pixels only when asked, so they
// follow the wire when it is re-routed.
//
// Every mutation validates its arguments first and leaves the model
// unchanged on error.
package circuit
