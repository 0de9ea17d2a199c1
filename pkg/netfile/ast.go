package netfile

// Header is the "UCLA nodes 1.0" style first line.
type Header struct {
	Format  string  `"UCLA" @Ident`
	Version float64 `@Number`
}

// Count is a "NumNodes : 4" style line. Counts are informational.
type Count struct {
	Key   string `@( KwNumNodes | KwNumTerminals | KwNumNets | KwNumPins ) Colon`
	Value int    `@Number`
}

// NodesFile is a parsed .nodes file.
type NodesFile struct {
	Header *Header     `@@`
	Counts []*Count    `@@*`
	Nodes  []*NodeLine `@@*`
}

// NodeLine describes one node. Everything after the size is optional.
type NodeLine struct {
	Name     string     `@Ident`
	Width    float64    `@Number`
	Height   float64    `@Number`
	Terminal bool       `@KwTerminal?`
	Position *XY        `( Colon @@ )?`
	Kind     *string    `( KwKind @String )?`
	Pins     *PinCounts `( KwPins @@ )?`
	Scale    *float64   `( KwScale @Number )?`
}

// XY is a coordinate pair.
type XY struct {
	X float64 `@Number`
	Y float64 `@Number`
}

// PinCounts is the "pins <in> <out>" attribute.
type PinCounts struct {
	Inputs  int `@Number`
	Outputs int `@Number`
}

// NetsFile is a parsed .nets file.
type NetsFile struct {
	Header *Header      `@@`
	Counts []*Count     `@@*`
	Nets   []*NetRecord `@@*`
}

// NetRecord is one net. This format writes one net per connection, so a
// record normally has one driving pin and one sink.
type NetRecord struct {
	Degree int        `KwNetDegree Colon @Number`
	Name   string     `@Ident`
	Pins   []*NetPin  `@@*`
	Route  []*XY      `( KwRoute @@* )?`
	Taps   []*TapLine `@@*`
}

// NetPin is one endpoint of a net. Node may name a node, or for a tap
// source the net that carries the tap.
type NetPin struct {
	Node     string `@Ident`
	Dir      string `@( "I" | "O" | "B" )`
	Position *XY    `( Colon @@ )?`
	Pin      *int   `( KwPin @Number )?`
	Branch   *int   `( KwBranch @Number )?`
}

// TapLine is a "tap <segment> <t>" line.
type TapLine struct {
	Segment int     `KwTap @Number`
	T       float64 `@Number`
}
