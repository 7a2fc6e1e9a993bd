package registry

import "github.com/toyz/sapigen/internal/ast"

// WrapperRegistryInterface defines the interface for looking up the
// transport wrapper that boxes a builtin value for a sandbox call
type WrapperRegistryInterface interface {
	RegisterWrapper(kind ast.BuiltinKind, wrapper string) error
	RegisterSpelling(spelling, wrapper string) error
	GetWrapper(kind ast.BuiltinKind) (string, bool)
	HasWrapper(kind ast.BuiltinKind) bool
	ListWrappers() []string
}
