package netfile

import (
	"fmt"
	"io"

	"github.com/alecthomas/participle/v2"
)

// Parser reads Bookshelf-style .nodes and .nets files.
type Parser struct {
	nodes *participle.Parser[NodesFile]
	nets  *participle.Parser[NetsFile]
}

// NewParser creates a new parser instance
func NewParser() (*Parser, error) {
	opts := []participle.Option{
		participle.Lexer(BookshelfLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.Unquote("String"),
		participle.UseLookahead(2),
	}
	nodes, err := participle.Build[NodesFile](opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build nodes parser: %w", err)
	}
	nets, err := participle.Build[NetsFile](opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build nets parser: %w", err)
	}
	return &Parser{nodes: nodes, nets: nets}, nil
}

// ParseNodes parses a .nodes file from a reader
func (p *Parser) ParseNodes(r io.Reader) (*NodesFile, error) {
	f, err := p.nodes.Parse("nodes", r)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return f, nil
}

// ParseNets parses a .nets file from a reader
func (p *Parser) ParseNets(r io.Reader) (*NetsFile, error) {
	f, err := p.nets.Parse("nets", r)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return f, nil
}
