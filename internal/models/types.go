package models

// TypeKind classifies the named type reached after stripping pointer,
// reference and array layers
type TypeKind int

const (
	TypeKindOther TypeKind = iota
	TypeKindTypedef
	TypeKindEnum
	TypeKindRecord
)

// String returns the string representation of the type kind
func (k TypeKind) String() string {
	switch k {
	case TypeKindTypedef:
		return "typedef"
	case TypeKindEnum:
		return "enum"
	case TypeKindRecord:
		return "record"
	default:
		return "other"
	}
}

// Passing describes how a value crosses the sandbox boundary
type Passing int

const (
	// PassValue boxes the value into a transport wrapper
	PassValue Passing = iota
	// PassPointer forwards the pointer unchanged
	PassPointer
	// PassReference forwards the reference unchanged
	PassReference
)

// String returns the string representation of the passing mode
func (p Passing) String() string {
	switch p {
	case PassPointer:
		return "pointer"
	case PassReference:
		return "reference"
	default:
		return "value"
	}
}

// IsIndirect reports whether the argument is forwarded without a wrapper
func (p Passing) IsIndirect() bool {
	return p == PassPointer || p == PassReference
}

// WellKnownNamespaces are namespace roots whose types are provided by the
// sandbox runtime or the standard library and never forward-declared
var WellKnownNamespaces = []string{"std", "sapi", "__gnu_cxx"}
