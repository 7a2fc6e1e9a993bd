package ast

import (
	"strings"
)

// printer renders types and declarations back into C/C++ source
type printer struct {
	tree *Tree
	// inlineAnonymous prints anonymous records and enums as full definitions
	// instead of placeholders, as needed by "typedef struct { ... } name".
	inlineAnonymous bool
}

// Spell returns the source spelling of q, e.g. "const char *"
func (t *Tree) Spell(q QualType) string {
	return printer{tree: t}.spell(q, "")
}

// SpellAs returns a declaration of name with type q, e.g. "void (*cb)(int)".
// An empty name yields the same result as Spell.
func (t *Tree) SpellAs(q QualType, name string) string {
	return printer{tree: t}.spell(q, name)
}

// Prototype returns the function declaration id as written, with its
// qualified name and parameter names: "int ns::Add(int a, int b)"
func (t *Tree) Prototype(id DeclID) string {
	d := t.Decl(id)
	p := printer{tree: t}
	params := make([]string, 0, len(d.Params)+1)
	for _, param := range d.Params {
		params = append(params, p.spell(param.Type, param.Name))
	}
	if d.Variadic {
		params = append(params, "...")
	}
	return p.spell(d.Result, t.QualifiedName(id)+"("+strings.Join(params, ", ")+")")
}

// PrintDecl re-serializes a declaration into compilable source, without the
// terminating semicolon. Records print their full definition when complete.
func (t *Tree) PrintDecl(id DeclID) string {
	d := t.Decl(id)
	p := printer{tree: t, inlineAnonymous: true}
	switch d.Kind {
	case TypedefDecl:
		if d.Alias {
			return "using " + d.Name + " = " + p.spell(d.Underlying, "")
		}
		return "typedef " + p.spell(d.Underlying, d.Name)
	case EnumDecl:
		return p.enumDefinition(d)
	case RecordDecl:
		return p.recordDefinition(d)
	case FunctionDecl, MethodDecl, FunctionTemplateDecl:
		return t.Prototype(id)
	case NamespaceDecl:
		if d.IsAnonymous() {
			return "namespace"
		}
		return "namespace " + d.Name
	case LinkageSpecDecl:
		return `extern "` + d.Language + `"`
	default:
		return ""
	}
}

func (p printer) spell(q QualType, inner string) string {
	switch ty := q.Type.(type) {
	case Pointer:
		return p.spell(ty.Pointee, derived(ty.Pointee, "*"+cvSuffix(q), inner))
	case Reference:
		op := "&"
		if ty.RValue {
			op = "&&"
		}
		return p.spell(ty.Pointee, derived(ty.Pointee, op, inner))
	case Array:
		return p.spell(ty.Elem, inner+"["+ty.Size+"]")
	case FunctionProto:
		return p.spell(ty.Result, inner+"("+p.paramList(ty.Params, ty.Variadic)+")")
	}
	base := cvPrefix(q) + p.baseName(q.Type)
	if inner == "" {
		return base
	}
	return base + " " + inner
}

func (p printer) baseName(ty Type) string {
	switch ty := ty.(type) {
	case Builtin:
		return ty.Kind.String()
	case TypedefType:
		return p.tree.SpelledName(ty.Decl)
	case EnumType:
		d := p.tree.Decl(ty.Decl)
		if d.IsAnonymous() {
			if p.inlineAnonymous {
				return p.enumDefinition(d)
			}
			return "enum (unnamed)"
		}
		return p.tree.SpelledName(ty.Decl)
	case RecordType:
		d := p.tree.Decl(ty.Decl)
		if d.IsAnonymous() {
			if p.inlineAnonymous {
				return p.recordDefinition(d)
			}
			return d.Tag.String() + " (unnamed)"
		}
		return p.tree.SpelledName(ty.Decl) + ty.Args
	case Unresolved:
		return ty.Name
	case nil:
		return "<null type>"
	default:
		return "<unknown type>"
	}
}

func (p printer) paramList(params []QualType, variadic bool) string {
	parts := make([]string, 0, len(params)+1)
	for _, param := range params {
		parts = append(parts, p.spell(param, ""))
	}
	if variadic {
		parts = append(parts, "...")
	}
	return strings.Join(parts, ", ")
}

func (p printer) enumDefinition(d *Decl) string {
	var b strings.Builder
	b.WriteString("enum")
	if d.Scoped {
		b.WriteString(" class")
	}
	if !d.IsAnonymous() {
		b.WriteString(" " + d.Name)
	}
	if d.IntegerType != nil {
		b.WriteString(" : " + p.spell(*d.IntegerType, ""))
	}
	if !d.Complete {
		return b.String()
	}
	if len(d.Enumerators) == 0 {
		b.WriteString(" {}")
		return b.String()
	}
	items := make([]string, 0, len(d.Enumerators))
	for _, e := range d.Enumerators {
		if e.Value != "" {
			items = append(items, e.Name+" = "+e.Value)
		} else {
			items = append(items, e.Name)
		}
	}
	b.WriteString(" { " + strings.Join(items, ", ") + " }")
	return b.String()
}

func (p printer) recordDefinition(d *Decl) string {
	head := d.Tag.String()
	if !d.IsAnonymous() {
		head += " " + d.Name
	}
	if !d.Complete {
		return head
	}
	if len(d.Fields) == 0 {
		return head + " {}"
	}
	var b strings.Builder
	b.WriteString(head + " {")
	for _, f := range d.Fields {
		b.WriteString(" " + p.spell(f.Type, f.Name) + ";")
	}
	b.WriteString(" }")
	return b.String()
}

// derived builds the declarator of a pointer or reference to pointee.
// Pointers to arrays and functions need parentheses: "(*)[4]", "(*cb)(int)".
func derived(pointee QualType, op, inner string) string {
	s := joinDeclarator(op, inner)
	switch pointee.Type.(type) {
	case Array, FunctionProto:
		return "(" + s + ")"
	}
	return s
}

func joinDeclarator(op, inner string) string {
	if inner == "" {
		return op
	}
	last := op[len(op)-1]
	if isIdentByte(last) && inner[0] != '[' && inner[0] != ')' {
		return op + " " + inner
	}
	return op + inner
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func cvPrefix(q QualType) string {
	s := ""
	if q.Const {
		s += "const "
	}
	if q.Volatile {
		s += "volatile "
	}
	return s
}

func cvSuffix(q QualType) string {
	s := ""
	if q.Const {
		s += "const"
	}
	if q.Volatile {
		if s != "" {
			s += " "
		}
		s += "volatile"
	}
	return s
}
