package frontend

import "github.com/toyz/sapigen/internal/ast"

// preludeTypedefs are the standard library typedefs every header may use
// without including anything, laid out for LP64 targets
var preludeTypedefs = []struct {
	name string
	kind ast.BuiltinKind
}{
	{"size_t", ast.ULong},
	{"ssize_t", ast.Long},
	{"ptrdiff_t", ast.Long},
	{"intptr_t", ast.Long},
	{"uintptr_t", ast.ULong},
	{"off_t", ast.Long},
	{"int8_t", ast.SChar},
	{"int16_t", ast.Short},
	{"int32_t", ast.Int},
	{"int64_t", ast.Long},
	{"uint8_t", ast.UChar},
	{"uint16_t", ast.UShort},
	{"uint32_t", ast.UInt},
	{"uint64_t", ast.ULong},
	{"__int128_t", ast.Int128},
	{"__uint128_t", ast.UInt128},
}

// declarePrelude adds the implicit typedefs to the translation unit
func (l *lowerer) declarePrelude() {
	root := l.tree.Root()
	for _, td := range preludeTypedefs {
		id := l.tree.Add(root, ast.Decl{
			Kind:       ast.TypedefDecl,
			Name:       td.name,
			Underlying: ast.Q(ast.Builtin{Kind: td.kind}),
			Implicit:   true,
			Loc:        ast.SourceLocation{File: "<built-in>"},
		})
		l.declareOrdinary(root, td.name, id)
	}
}
