package ast

// Type is the sum of all type nodes. The set is closed: only the types in
// this file implement it, and consumers dispatch with exhaustive switches.
type Type interface {
	isType()
}

// BuiltinKind enumerates the fundamental types
type BuiltinKind int

const (
	Void BuiltinKind = iota
	Bool
	Char
	SChar
	UChar
	WChar
	Char16
	Char32
	Short
	UShort
	Int
	UInt
	Long
	ULong
	LongLong
	ULongLong
	Int128
	UInt128
	Float
	Double
	LongDouble
	NullPtr
)

var builtinSpellings = map[BuiltinKind]string{
	Void:       "void",
	Bool:       "bool",
	Char:       "char",
	SChar:      "signed char",
	UChar:      "unsigned char",
	WChar:      "wchar_t",
	Char16:     "char16_t",
	Char32:     "char32_t",
	Short:      "short",
	UShort:     "unsigned short",
	Int:        "int",
	UInt:       "unsigned int",
	Long:       "long",
	ULong:      "unsigned long",
	LongLong:   "long long",
	ULongLong:  "unsigned long long",
	Int128:     "__int128",
	UInt128:    "unsigned __int128",
	Float:      "float",
	Double:     "double",
	LongDouble: "long double",
	NullPtr:    "std::nullptr_t",
}

// String returns the C spelling of the builtin kind
func (k BuiltinKind) String() string {
	if s, ok := builtinSpellings[k]; ok {
		return s
	}
	return "<unknown builtin>"
}

// Builtin is a fundamental type
type Builtin struct {
	Kind BuiltinKind
}

// Pointer is T*
type Pointer struct {
	Pointee QualType
}

// Reference is T& or, when RValue is set, T&&
type Reference struct {
	Pointee QualType
	RValue  bool
}

// Array is T[Size]; Size is empty for an unknown bound
type Array struct {
	Elem QualType
	Size string
}

// TypedefType names a typedef or alias declaration
type TypedefType struct {
	Decl DeclID
}

// EnumType names an enum declaration
type EnumType struct {
	Decl DeclID
}

// RecordType names a struct, class or union declaration. Args holds template
// arguments as written, including the angle brackets.
type RecordType struct {
	Decl DeclID
	Args string
}

// FunctionProto is a function type
type FunctionProto struct {
	Result   QualType
	Params   []QualType
	Variadic bool
}

// Unresolved is a name the front end could not bind to a declaration, e.g. a
// type coming from a header that was not parsed.
type Unresolved struct {
	Name string
}

func (Builtin) isType()       {}
func (Pointer) isType()       {}
func (Reference) isType()     {}
func (Array) isType()         {}
func (TypedefType) isType()   {}
func (EnumType) isType()      {}
func (RecordType) isType()    {}
func (FunctionProto) isType() {}
func (Unresolved) isType()    {}

// QualType is a type together with its cv-qualifiers
type QualType struct {
	Type     Type
	Const    bool
	Volatile bool
}

// Q wraps an unqualified type
func Q(t Type) QualType {
	return QualType{Type: t}
}

// IsNull reports whether q carries no type
func (q QualType) IsNull() bool {
	return q.Type == nil
}

// WithoutConst returns q with the top-level const removed
func (q QualType) WithoutConst() QualType {
	q.Const = false
	return q
}

// Desugar strips typedef layers from q, accumulating their qualifiers
func (t *Tree) Desugar(q QualType) QualType {
	for {
		td, ok := q.Type.(TypedefType)
		if !ok {
			return q
		}
		under := t.Decl(td.Decl).Underlying
		under.Const = under.Const || q.Const
		under.Volatile = under.Volatile || q.Volatile
		q = under
	}
}

// IsVoid reports whether q is void once typedefs are looked through
func (t *Tree) IsVoid(q QualType) bool {
	b, ok := t.Desugar(q).Type.(Builtin)
	return ok && b.Kind == Void
}

// IsPointer reports whether q is a pointer once typedefs are looked through
func (t *Tree) IsPointer(q QualType) bool {
	_, ok := t.Desugar(q).Type.(Pointer)
	return ok
}

// IsReference reports whether q is a reference once typedefs are looked through
func (t *Tree) IsReference(q QualType) bool {
	_, ok := t.Desugar(q).Type.(Reference)
	return ok
}

// IsFunctionReference reports whether q is a function type or a pointer or
// reference to one
func (t *Tree) IsFunctionReference(q QualType) bool {
	q = t.Desugar(q)
	switch ty := q.Type.(type) {
	case FunctionProto:
		return true
	case Pointer:
		_, ok := t.Desugar(ty.Pointee).Type.(FunctionProto)
		return ok
	case Reference:
		_, ok := t.Desugar(ty.Pointee).Type.(FunctionProto)
		return ok
	}
	return false
}

// NamedDecl strips pointer, reference and array layers from q (without
// looking through typedefs) and returns the declaration of the type that
// remains, or NoDecl if it is not a named type.
func NamedDecl(q QualType) DeclID {
	for {
		switch ty := q.Type.(type) {
		case Pointer:
			q = ty.Pointee
		case Reference:
			q = ty.Pointee
		case Array:
			q = ty.Elem
		case TypedefType:
			return ty.Decl
		case EnumType:
			return ty.Decl
		case RecordType:
			return ty.Decl
		default:
			return NoDecl
		}
	}
}
