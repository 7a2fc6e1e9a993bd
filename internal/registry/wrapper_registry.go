package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/toyz/sapigen/internal/ast"
	"github.com/toyz/sapigen/internal/errors"
)

// BuiltinWrappers maps fundamental types to the ::sapi::v variable types
// that carry them across the sandbox boundary. Character types follow the
// Linux ABI: plain char and wchar_t are signed, wchar_t is 32 bits wide.
var BuiltinWrappers = map[ast.BuiltinKind]string{
	ast.Bool:       "::sapi::v::Bool",
	ast.Char:       "::sapi::v::Char",
	ast.SChar:      "::sapi::v::Char",
	ast.UChar:      "::sapi::v::UChar",
	ast.WChar:      "::sapi::v::Long",
	ast.Short:      "::sapi::v::Short",
	ast.UShort:     "::sapi::v::UShort",
	ast.Int:        "::sapi::v::Int",
	ast.UInt:       "::sapi::v::UInt",
	ast.Long:       "::sapi::v::Long",
	ast.ULong:      "::sapi::v::ULong",
	ast.LongLong:   "::sapi::v::LLong",
	ast.ULongLong:  "::sapi::v::ULLong",
	ast.Float:      "::sapi::v::Reg<float>",
	ast.Double:     "::sapi::v::Reg<double>",
	ast.LongDouble: "::sapi::v::Reg<long double>",
}

// WrapperRegistry manages the builtin transport wrappers
type WrapperRegistry struct {
	wrappers map[ast.BuiltinKind]string
	mu       sync.RWMutex
}

// NewWrapperRegistry creates a new wrapper registry with the builtin wrappers
func NewWrapperRegistry() *WrapperRegistry {
	registry := &WrapperRegistry{
		wrappers: make(map[ast.BuiltinKind]string, len(BuiltinWrappers)),
	}
	for kind, wrapper := range BuiltinWrappers {
		registry.wrappers[kind] = wrapper
	}
	return registry
}

// RegisterWrapper registers the wrapper of a builtin type that has none
func (r *WrapperRegistry) RegisterWrapper(kind ast.BuiltinKind, wrapper string) error {
	wrapper = strings.TrimSpace(wrapper)
	if wrapper == "" {
		return errors.ConfigurationError("wrappers",
			fmt.Sprintf("empty wrapper for builtin type '%s'", kind))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.wrappers[kind]; exists {
		return errors.ConfigurationError("wrappers",
			fmt.Sprintf("builtin type '%s' is already wrapped by '%s'", kind, existing))
	}

	r.wrappers[kind] = wrapper
	return nil
}

// RegisterSpelling registers a wrapper for the builtin type spelled as in C,
// e.g. "char16_t" or "unsigned __int128"
func (r *WrapperRegistry) RegisterSpelling(spelling, wrapper string) error {
	kind, ok := builtinKind(spelling)
	if !ok {
		return errors.ConfigurationError("wrappers",
			fmt.Sprintf("'%s' is not a builtin type", spelling)).
			WithSuggestions("Wrappers can only be registered for fundamental types such as char16_t or __int128")
	}
	return r.RegisterWrapper(kind, wrapper)
}

// GetWrapper retrieves the wrapper of a builtin type
func (r *WrapperRegistry) GetWrapper(kind ast.BuiltinKind) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wrapper, exists := r.wrappers[kind]
	return wrapper, exists
}

// HasWrapper checks if a builtin type can be passed by value
func (r *WrapperRegistry) HasWrapper(kind ast.BuiltinKind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.wrappers[kind]
	return exists
}

// ListWrappers returns the spellings of all wrapped builtin types, sorted
func (r *WrapperRegistry) ListWrappers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.wrappers))
	for kind := range r.wrappers {
		types = append(types, kind.String())
	}
	sort.Strings(types)
	return types
}

func builtinKind(spelling string) (ast.BuiltinKind, bool) {
	spelling = strings.Join(strings.Fields(spelling), " ")
	for kind := ast.Void; kind <= ast.NullPtr; kind++ {
		if kind.String() == spelling {
			return kind, true
		}
	}
	return 0, false
}
