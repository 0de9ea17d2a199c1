package netfile

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// BookshelfLexer tokenises .nodes and .nets files. Keywords are matched
// before identifiers.
var BookshelfLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},

	// Header counts
	{Name: "KwNumNodes", Pattern: `\bNumNodes\b`},
	{Name: "KwNumTerminals", Pattern: `\bNumTerminals\b`},
	{Name: "KwNumNets", Pattern: `\bNumNets\b`},
	{Name: "KwNumPins", Pattern: `\bNumPins\b`},
	{Name: "KwNetDegree", Pattern: `\bNetDegree\b`},

	// Node attributes
	{Name: "KwTerminal", Pattern: `\bterminal\b`},
	{Name: "KwKind", Pattern: `\bkind\b`},
	{Name: "KwPins", Pattern: `\bpins\b`},
	{Name: "KwScale", Pattern: `\bscale\b`},

	// Net attributes
	{Name: "KwPin", Pattern: `\bpin\b`},
	{Name: "KwBranch", Pattern: `\bbranch\b`},
	{Name: "KwRoute", Pattern: `\broute\b`},
	{Name: "KwTap", Pattern: `\btap\b`},

	{Name: "Colon", Pattern: `:`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Number", Pattern: `[-+]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][-+]?[0-9]+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_\-\.\[\]/]*`},
})
