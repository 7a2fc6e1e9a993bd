package models

import (
	"strings"

	"github.com/toyz/sapigen/internal/ast"
)

// TypeDescriptor is a type referenced by a collected function together with
// the declaration that names it. Tree is borrowed from the front end.
type TypeDescriptor struct {
	Tree          *ast.Tree
	QualType      ast.QualType
	Spelling      string     // type as written, e.g. "const Point *"
	Kind          TypeKind   // kind of the named type behind pointers
	Decl          ast.DeclID // named declaration, ast.NoDecl for builtins
	QualifiedName string     // qualified name of Decl, or Spelling
	Namespace     []string   // enclosing namespaces, outer to inner
	Passing       Passing
}

// TypeKey identifies a type across functions and translation units
type TypeKey struct {
	Kind          TypeKind
	QualifiedName string
}

// Key returns the deduplication key of the descriptor
func (t TypeDescriptor) Key() TypeKey {
	return TypeKey{Kind: t.Kind, QualifiedName: t.QualifiedName}
}

// NamespacePath joins the namespace path with "::". Anonymous namespaces
// are empty segments.
func (t TypeDescriptor) NamespacePath() string {
	return strings.Join(t.Namespace, "::")
}

// HasDecl reports whether the descriptor refers to a declaration
func (t TypeDescriptor) HasDecl() bool {
	return t.Decl != ast.NoDecl
}

// Parameter is one parameter of a collected function
type Parameter struct {
	Type  TypeDescriptor
	Name  string // declared name, may be empty
	Index int    // zero-based position
}

// FunctionDescriptor is a free function selected for proxying
type FunctionDescriptor struct {
	Tree          *ast.Tree
	Decl          ast.DeclID
	QualifiedName string
	Name          string // plain name, used as the dispatcher token
	Return        TypeDescriptor
	Params        []Parameter
	Variadic      bool
	Location      ast.SourceLocation
}

// Prototype returns the declaration as written in the input
func (f *FunctionDescriptor) Prototype() string {
	if f.Tree == nil || !f.Tree.Valid(f.Decl) {
		return f.QualifiedName + "()"
	}
	return f.Tree.Prototype(f.Decl)
}
