// Package frontend parses C and C++ headers into an ast.Tree.
//
// The grammar covers the declaration subset of the languages that matters to
// proxy generation: namespaces, linkage blocks, typedefs and aliases, enums,
// records, function declarations and templates (recognized and skipped).
// Function bodies and initializers are kept as balanced token sequences. No
// macro expansion is performed; headers that rely on macros should be run
// through the preprocessor first, whose line markers are ignored.
package frontend

import (
	stderrors "errors"
	"os"

	"github.com/alecthomas/participle/v2"

	"github.com/toyz/sapigen/internal/ast"
	"github.com/toyz/sapigen/internal/errors"
)

var headerParser = participle.MustBuild[File](
	participle.Lexer(headerLexer),
	participle.Elide("Comment", "Preprocessor", "Whitespace"),
	participle.UseLookahead(256),
)

// Parser turns header source into declaration trees. It holds no per-parse
// state and is safe for concurrent use.
type Parser struct {
	prelude bool
}

// Option configures a Parser
type Option func(*Parser)

// WithoutPrelude disables the implicit fixed-width typedefs (size_t,
// int32_t, ...) normally declared at the top of every tree
func WithoutPrelude() Option {
	return func(p *Parser) {
		p.prelude = false
	}
}

// New creates a header parser
func New(opts ...Option) *Parser {
	p := &Parser{prelude: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile reads and parses one header
func (p *Parser) ParseFile(path string) (*ast.Tree, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", path, err)
	}
	return p.ParseSource(path, src)
}

// ParseSource parses src as a header named filename
func (p *Parser) ParseSource(filename string, src []byte) (*ast.Tree, error) {
	file, err := headerParser.ParseBytes(filename, src)
	if err != nil {
		return nil, wrapParseError(filename, err)
	}

	tree := ast.NewTree(filename)
	l := newLowerer(tree)
	if p.prelude {
		l.declarePrelude()
	}
	l.lowerFile(file)
	return tree, nil
}

// wrapParseError converts a participle error into an IOBoundary error
// located at the offending token
func wrapParseError(filename string, err error) error {
	var perr participle.Error
	if !stderrors.As(err, &perr) {
		return errors.WrapIOBoundary(filename, err)
	}
	pos := perr.Position()
	file := pos.Filename
	if file == "" {
		file = filename
	}
	return errors.WrapIOBoundary(filename, stderrors.New(perr.Message())).
		WithLocation(errors.SourceLocation{File: file, Line: pos.Line, Column: pos.Column}).
		WithSuggestions("Run the header through the preprocessor (cc -E) if it relies on macros")
}
