// Package document reads and writes the editor's JSON save file.
//
// Loading is tolerant: missing fields take safe defaults, connections that
// no longer make sense are dropped, and input that cannot be parsed yields
// an empty circuit together with an error the caller may log.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLogic/pkg/route"
)

var (
	// ErrMalformed reports input that is not a save file at all.
	ErrMalformed = errors.New("malformed save file")
	// ErrDropped wraps each connection skipped while loading.
	ErrDropped = errors.New("connection dropped")
)

// File is the on-disk layout.
type File struct {
	Components  []ComponentRecord  `json:"components"`
	Connections []ConnectionRecord `json:"connections"`
}

// ComponentRecord is one saved component. Pointer fields are optional.
type ComponentRecord struct {
	Type        string   `json:"type"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	Scale       *float64 `json:"scale,omitempty"`
	InputCount  *int     `json:"inputCount,omitempty"`
	OutputCount *int     `json:"outputCount,omitempty"`
	Color       string   `json:"color,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty"`
}

// ConnectionRecord is one saved wire. Unused endpoint fields hold -1.
type ConnectionRecord struct {
	AComponentIndex        *int         `json:"aComponentIndex,omitempty"`
	APin                   *int         `json:"aPin,omitempty"`
	AParentConnectionIndex *int         `json:"aParentConnectionIndex,omitempty"`
	ATapIndex              *int         `json:"aTapIndex,omitempty"`
	BComponentIndex        *int         `json:"bComponentIndex,omitempty"`
	BPin                   *int         `json:"bPin,omitempty"`
	Polyline               []geom.Point `json:"polyline"`
	Taps                   []TapRecord  `json:"taps"`
}

// TapRecord is a saved tap. CachedPixel is written for external readers and
// ignored on load.
type TapRecord struct {
	SegmentIndex int         `json:"segmentIndex"`
	T            float64     `json:"t"`
	CachedPixel  *geom.Point `json:"cachedPixel,omitempty"`
}

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// FromCircuit captures c in save-file form.
func FromCircuit(c *circuit.Circuit) *File {
	f := &File{
		Components:  make([]ComponentRecord, 0, len(c.Components)),
		Connections: make([]ConnectionRecord, 0, len(c.Connections)),
	}
	for i := range c.Components {
		comp := &c.Components[i]
		f.Components = append(f.Components, ComponentRecord{
			Type:        comp.Kind.String(),
			X:           comp.X,
			Y:           comp.Y,
			Scale:       floatp(comp.Scale),
			InputCount:  intp(comp.Inputs),
			OutputCount: intp(comp.Outputs),
			Color:       comp.Color,
			StrokeWidth: floatp(comp.StrokeWidth),
		})
	}
	for k := range c.Connections {
		conn := &c.Connections[k]
		rec := ConnectionRecord{
			AComponentIndex:        intp(-1),
			APin:                   intp(-1),
			AParentConnectionIndex: intp(-1),
			ATapIndex:              intp(-1),
			BComponentIndex:        intp(conn.To.Component),
			BPin:                   intp(conn.To.Pin),
			Polyline:               append([]geom.Point{}, conn.Route...),
			Taps:                   make([]TapRecord, 0, len(conn.Taps)),
		}
		if conn.From.IsTap() {
			rec.AParentConnectionIndex = intp(conn.From.Index)
			rec.ATapIndex = intp(conn.From.Pin)
		} else {
			rec.AComponentIndex = intp(conn.From.Index)
			rec.APin = intp(conn.From.Pin)
		}
		for t, tap := range conn.Taps {
			tr := TapRecord{SegmentIndex: tap.Segment, T: tap.T}
			if at, err := c.TapPoint(k, t); err == nil {
				tr.CachedPixel = &at
			}
			rec.Taps = append(rec.Taps, tr)
		}
		f.Connections = append(f.Connections, rec)
	}
	return f
}

// Circuit rebuilds a circuit from f. Every component is kept. Connections
// are restored in file order with their stored routes; one that fails
// validation is skipped, and so is every connection tapping it. The
// returned error joins one ErrDropped per skipped connection.
func (f *File) Circuit(r *route.Router) (*circuit.Circuit, error) {
	c := circuit.New(r)
	for _, rec := range f.Components {
		c.AppendComponent(rec.component())
	}

	var errs []error
	// file index -> model index, -1 once dropped
	remap := make([]int, len(f.Connections))
	for fk, rec := range f.Connections {
		remap[fk] = -1
		conn, err := rec.connection(remap[:fk])
		if err == nil {
			remap[fk], err = c.RestoreConnection(conn)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("document: connection %d: %w: %w", fk, ErrDropped, err))
		}
	}
	return c, errors.Join(errs...)
}

func (rec *ComponentRecord) component() circuit.Component {
	kind := circuit.ParseKind(rec.Type)
	comp := circuit.NewComponent(kind, rec.X, rec.Y)
	comp.Inputs = max(0, intOr(rec.InputCount, comp.Inputs))
	comp.Outputs = max(0, intOr(rec.OutputCount, comp.Outputs))
	if rec.Scale != nil && *rec.Scale >= 1 {
		comp.Scale = *rec.Scale
	}
	if rec.StrokeWidth != nil && *rec.StrokeWidth > 0 {
		comp.StrokeWidth = *rec.StrokeWidth
	}
	comp.Color = rec.Color
	return comp
}

// connection converts rec using the model indices of earlier connections.
func (rec *ConnectionRecord) connection(remap []int) (circuit.Connection, error) {
	var conn circuit.Connection
	conn.To = circuit.ToInput(intOr(rec.BComponentIndex, -1), intOr(rec.BPin, -1))

	if parent := intOr(rec.AParentConnectionIndex, -1); parent >= 0 {
		if parent >= len(remap) || remap[parent] < 0 {
			return conn, fmt.Errorf("parent connection %d unavailable", parent)
		}
		conn.From = circuit.FromTap(remap[parent], intOr(rec.ATapIndex, -1))
	} else {
		conn.From = circuit.FromOutput(intOr(rec.AComponentIndex, -1), intOr(rec.APin, -1))
	}

	conn.Route = rec.Polyline
	segs := len(rec.Polyline)
	for _, tr := range rec.Taps {
		tap := circuit.Tap{Segment: tr.SegmentIndex, T: min(max(tr.T, 0), 1)}
		tap.Segment = min(max(tap.Segment, 0), segs)
		conn.Taps = append(conn.Taps, tap)
	}
	return conn, nil
}

// Save writes c as indented JSON.
func Save(w io.Writer, c *circuit.Circuit) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromCircuit(c)); err != nil {
		return fmt.Errorf("document: encode: %w", err)
	}
	return nil
}

// Load reads a save file. The circuit is never nil: on ErrMalformed it is
// empty, and on dropped connections it holds everything that survived.
func Load(rd io.Reader, r *route.Router) (*circuit.Circuit, error) {
	var f File
	if err := json.NewDecoder(rd).Decode(&f); err != nil {
		return circuit.New(r), fmt.Errorf("document: %w: %w", ErrMalformed, err)
	}
	return f.Circuit(r)
}

// SaveFile writes c to path.
func SaveFile(path string, c *circuit.Circuit) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("document: %w", err)
	}
	if err := Save(out, c); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// LoadFile reads the save file at path. A missing file is an error; an
// unreadable one is handled like Load.
func LoadFile(path string, r *route.Router) (*circuit.Circuit, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	defer in.Close()
	return Load(in, r)
}
