// Package ast holds the declaration tree for one translation unit.
//
// A Tree is an arena: declarations live in a single slice and refer to each
// other through DeclID indices. Front ends build a Tree once; everything
// downstream (collector, type mapper, emitter) treats it as read-only and
// only holds borrowed references into it.
package ast

import (
	"fmt"
	"strings"
)

// DeclID addresses a declaration inside a Tree
type DeclID int32

// NoDecl is the DeclID of a missing declaration
const NoDecl DeclID = -1

// DeclKind is the tag of a declaration
type DeclKind int

const (
	TranslationUnitDecl DeclKind = iota
	NamespaceDecl
	LinkageSpecDecl
	FunctionDecl
	MethodDecl
	FunctionTemplateDecl
	TypedefDecl
	EnumDecl
	RecordDecl
)

// String returns the string representation of the declaration kind
func (k DeclKind) String() string {
	switch k {
	case TranslationUnitDecl:
		return "TranslationUnit"
	case NamespaceDecl:
		return "Namespace"
	case LinkageSpecDecl:
		return "LinkageSpec"
	case FunctionDecl:
		return "Function"
	case MethodDecl:
		return "Method"
	case FunctionTemplateDecl:
		return "FunctionTemplate"
	case TypedefDecl:
		return "Typedef"
	case EnumDecl:
		return "Enum"
	case RecordDecl:
		return "Record"
	default:
		return fmt.Sprintf("DeclKind(%d)", int(k))
	}
}

// TagKind distinguishes struct, class and union records
type TagKind int

const (
	TagStruct TagKind = iota
	TagClass
	TagUnion
)

// String returns the keyword introducing the record
func (t TagKind) String() string {
	switch t {
	case TagClass:
		return "class"
	case TagUnion:
		return "union"
	default:
		return "struct"
	}
}

// SourceLocation is a position in an input file
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// String returns a formatted string representation of the location
func (s SourceLocation) String() string {
	switch {
	case s.File == "":
		return "unknown location"
	case s.Line == 0:
		return s.File
	case s.Column == 0:
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	}
}

// Param is one declared function parameter
type Param struct {
	Name string
	Type QualType
	Loc  SourceLocation
}

// Field is one data member of a record
type Field struct {
	Name string
	Type QualType
}

// Enumerator is one named constant of an enum
type Enumerator struct {
	Name  string
	Value string // initializer as written, empty when implicit
}

// Decl is a single node of the declaration tree. Which fields are meaningful
// depends on Kind.
type Decl struct {
	ID       DeclID
	Kind     DeclKind
	Name     string
	Parent   DeclID
	Children []DeclID
	Loc      SourceLocation

	// Implicit marks declarations the front end provides itself
	// (e.g. size_t) rather than ones read from the input.
	Implicit bool

	// FunctionDecl, MethodDecl, FunctionTemplateDecl
	Result   QualType
	Params   []Param
	Variadic bool

	// TypedefDecl
	Underlying QualType
	Alias      bool // declared with "using X = ..."

	// EnumDecl
	Enumerators []Enumerator
	IntegerType *QualType // fixed underlying type, nil if none
	Scoped      bool

	// RecordDecl
	Tag       TagKind
	Fields    []Field
	Complete  bool
	Templated bool

	// NamespaceDecl
	Inline bool

	// LinkageSpecDecl
	Language string
}

// IsAnonymous reports whether the declaration has no name
func (d *Decl) IsAnonymous() bool {
	return d.Name == ""
}

// Tree is the declaration arena of one translation unit
type Tree struct {
	file  string
	decls []Decl
}

// NewTree creates a tree containing only the translation unit declaration
func NewTree(file string) *Tree {
	t := &Tree{file: file}
	t.decls = append(t.decls, Decl{
		ID:     0,
		Kind:   TranslationUnitDecl,
		Parent: NoDecl,
		Loc:    SourceLocation{File: file},
	})
	return t
}

// File returns the path of the parsed translation unit
func (t *Tree) File() string {
	return t.file
}

// Root returns the translation unit declaration
func (t *Tree) Root() DeclID {
	return 0
}

// Len returns the number of declarations in the tree
func (t *Tree) Len() int {
	return len(t.decls)
}

// Valid reports whether id addresses a declaration of this tree
func (t *Tree) Valid(id DeclID) bool {
	return id >= 0 && int(id) < len(t.decls)
}

// Decl returns the declaration with the given id. The returned node belongs to
// the tree and must not be modified once the tree has been handed out.
func (t *Tree) Decl(id DeclID) *Decl {
	if !t.Valid(id) {
		panic(fmt.Sprintf("ast: invalid DeclID %d", id))
	}
	return &t.decls[id]
}

// Add appends d as the last child of parent and returns its id
func (t *Tree) Add(parent DeclID, d Decl) DeclID {
	id := DeclID(len(t.decls))
	d.ID = id
	d.Parent = parent
	d.Children = nil
	t.decls = append(t.decls, d)
	if t.Valid(parent) {
		t.decls[parent].Children = append(t.decls[parent].Children, id)
	}
	return id
}

// Parent returns the lexical context of id, NoDecl for the root
func (t *Tree) Parent(id DeclID) DeclID {
	return t.Decl(id).Parent
}

// Walk visits the subtree rooted at id in declaration order. Returning false
// from fn skips the children of the visited node.
func (t *Tree) Walk(id DeclID, fn func(id DeclID) bool) {
	if !fn(id) {
		return
	}
	for _, child := range t.Decl(id).Children {
		t.Walk(child, fn)
	}
}

// IsFreeFunction reports whether id is a non-member, non-template function
func (t *Tree) IsFreeFunction(id DeclID) bool {
	d := t.Decl(id)
	if d.Kind != FunctionDecl {
		return false
	}
	for ctx := d.Parent; ctx != NoDecl; ctx = t.Parent(ctx) {
		if k := t.Decl(ctx).Kind; k == RecordDecl || k == FunctionDecl {
			return false
		}
	}
	return true
}

// QualifiedName returns the name of id prefixed with every enclosing namespace
// and record, separated by "::". Linkage specifications are transparent and
// anonymous namespaces are rendered the way compilers print them.
func (t *Tree) QualifiedName(id DeclID) string {
	return t.qualifiedName(id, "(anonymous namespace)")
}

// SpelledName is QualifiedName with anonymous namespaces left out, which is
// how the declaration can be named from outside its namespace.
func (t *Tree) SpelledName(id DeclID) string {
	return t.qualifiedName(id, "")
}

func (t *Tree) qualifiedName(id DeclID, anonymous string) string {
	d := t.Decl(id)
	parts := []string{d.Name}
	for ctx := d.Parent; ctx != NoDecl; ctx = t.Parent(ctx) {
		c := t.Decl(ctx)
		switch c.Kind {
		case NamespaceDecl:
			if c.IsAnonymous() {
				if anonymous != "" {
					parts = append(parts, anonymous)
				}
				continue
			}
			parts = append(parts, c.Name)
		case RecordDecl, FunctionDecl, MethodDecl:
			if !c.IsAnonymous() {
				parts = append(parts, c.Name)
			}
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "::")
}
