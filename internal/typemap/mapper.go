// Package typemap decides how each parameter and return value crosses the
// sandbox boundary and spells the proxy signature accordingly.
package typemap

import (
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/toyz/sapigen/internal/ast"
	"github.com/toyz/sapigen/internal/errors"
	"github.com/toyz/sapigen/internal/models"
	"github.com/toyz/sapigen/internal/registry"
)

const (
	statusType   = "::absl::Status"
	statusOrType = "::absl::StatusOr"
	ptrType      = "::sapi::v::Ptr*"
	regWrapper   = "::sapi::v::Reg"
	enumWrapper  = "::sapi::v::IntBase"
)

// Unsupported is returned by Classify for a type that cannot be marshalled
type Unsupported struct {
	Spelling string
	Reason   string
}

func (e *Unsupported) Error() string {
	return fmt.Sprintf("unsupported type '%s': %s", e.Spelling, e.Reason)
}

// Mapper implements the TypeMapper interface
type Mapper struct {
	wrappers registry.WrapperRegistryInterface
}

// New creates a mapper backed by wrappers. A nil registry uses the builtin
// wrappers only.
func New(wrappers registry.WrapperRegistryInterface) *Mapper {
	if wrappers == nil {
		wrappers = registry.NewWrapperRegistry()
	}
	return &Mapper{wrappers: wrappers}
}

// Wrappers returns the builtin types that have a transport wrapper, sorted
func (m *Mapper) Wrappers() []string {
	return m.wrappers.ListWrappers()
}

// FromOptions creates a mapper whose registry also holds the wrappers
// configured in opts
func FromOptions(opts *models.GeneratorOptions) (*Mapper, error) {
	wrappers := registry.NewWrapperRegistry()
	if opts == nil {
		return New(wrappers), nil
	}

	spellings := make([]string, 0, len(opts.Wrappers))
	for spelling := range opts.Wrappers {
		spellings = append(spellings, spelling)
	}
	sort.Strings(spellings)

	var multi *errors.MultipleErrors
	for _, spelling := range spellings {
		if err := wrappers.RegisterSpelling(spelling, opts.Wrappers[spelling]); err != nil {
			var sapiErr errors.SapiError
			if stderrors.As(err, &sapiErr) {
				errors.AddToMultiple(&multi, sapiErr)
			} else {
				errors.AddToMultiple(&multi, errors.WrapConfigurationError("wrappers", "register", err))
			}
		}
	}
	if err := multi.ErrorOrNil(); err != nil {
		return nil, err
	}
	return New(wrappers), nil
}

// Classify decides how a value of type q crosses the boundary. Typedefs are
// looked through. Arrays decay to pointers as they do in parameter lists.
func (m *Mapper) Classify(tree *ast.Tree, q ast.QualType) (models.Passing, error) {
	return m.classify(tree, q, "passed")
}

func (m *Mapper) classify(tree *ast.Tree, q ast.QualType, verb string) (models.Passing, error) {
	unsupported := func(reason string) (models.Passing, error) {
		return models.PassValue, &Unsupported{Spelling: tree.Spell(q), Reason: reason}
	}

	if tree.IsFunctionReference(q) {
		return unsupported("functions and function pointers cannot cross the sandbox boundary")
	}

	switch ty := tree.Desugar(q).Type.(type) {
	case ast.Pointer:
		return models.PassPointer, nil
	case ast.Reference:
		if verb == "returned" {
			return unsupported("references cannot be returned through ::absl::StatusOr")
		}
		return models.PassReference, nil
	case ast.Array:
		return models.PassPointer, nil
	case ast.Builtin:
		if ty.Kind == ast.Void {
			return unsupported("void is not a value")
		}
		if !m.wrappers.HasWrapper(ty.Kind) {
			return unsupported(fmt.Sprintf("no transport wrapper for builtin type '%s'", ty.Kind))
		}
		return models.PassValue, nil
	case ast.EnumType:
		return models.PassValue, nil
	case ast.RecordType:
		return unsupported(fmt.Sprintf("records cannot be %s by value", verb))
	case ast.Unresolved:
		return unsupported("type is not declared in the parsed input")
	default:
		return unsupported("unknown type")
	}
}

// Wrapper returns the transport wrapper holding a value of type q. Pointers
// are wrapped as registers with the pointee's const removed. References have
// no wrapper.
func (m *Mapper) Wrapper(tree *ast.Tree, q ast.QualType) (string, error) {
	if _, err := m.classify(tree, q, "passed"); err != nil {
		return "", err
	}

	switch ty := tree.Desugar(q).Type.(type) {
	case ast.Pointer:
		return regWrapper + "<" + tree.Spell(ast.Q(ast.Pointer{Pointee: ty.Pointee.WithoutConst()})) + ">", nil
	case ast.Reference:
		return "", &Unsupported{Spelling: tree.Spell(q), Reason: "references have no transport wrapper"}
	case ast.Array:
		return regWrapper + "<" + tree.Spell(ast.Q(ast.Pointer{Pointee: ty.Elem.WithoutConst()})) + ">", nil
	case ast.EnumType:
		unqualified := q
		unqualified.Const, unqualified.Volatile = false, false
		return enumWrapper + "<" + tree.Spell(unqualified) + ">", nil
	case ast.Builtin:
		wrapper, _ := m.wrappers.GetWrapper(ty.Kind)
		return wrapper, nil
	}
	return "", &Unsupported{Spelling: tree.Spell(q), Reason: "unknown type"}
}

// ParamName returns the proxy parameter name. The suffix keeps parameters
// from colliding with the generated locals.
func ParamName(name string, index int) string {
	if name != "" {
		return name + "_"
	}
	return fmt.Sprintf("unnamed%d_", index)
}

// reservedNames are the identifiers every proxy body uses besides its
// parameters
var reservedNames = []string{"sandbox_", "v_ret_"}

// paramNames hands out parameter names that are unique within one proxy
// method, counting the wrapper local a value parameter declares
type paramNames map[string]bool

func newParamNames() paramNames {
	taken := make(paramNames)
	for _, name := range reservedNames {
		taken[name] = true
	}
	return taken
}

// claim returns name, with underscores appended until neither it nor its
// wrapper local is taken
func (t paramNames) claim(name string, boxed bool) string {
	for t[name] || (boxed && t["v_"+name]) {
		name += "_"
	}
	t[name] = true
	if boxed {
		t["v_"+name] = true
	}
	return name
}

// MapFunction maps a collected function onto a proxy stub. Every
// unsupported type in the signature is reported.
func (m *Mapper) MapFunction(fd *models.FunctionDescriptor) (*models.ProxyStub, error) {
	tree := fd.Tree
	loc := errors.SourceLocation{File: fd.Location.File, Line: fd.Location.Line, Column: fd.Location.Column}
	var multi *errors.MultipleErrors

	fail := func(err error) {
		var u *Unsupported
		if stderrors.As(err, &u) {
			errors.AddToMultiple(&multi, errors.NewUnsupportedType(fd.QualifiedName, u.Spelling, u.Reason).WithLocation(loc))
			return
		}
		errors.AddToMultiple(&multi, errors.Wrap(errors.GenerationErrorCode, "failed to map "+fd.QualifiedName, err).
			WithContext("function_name", fd.QualifiedName).
			WithLocation(loc))
	}

	stub := &models.ProxyStub{
		Function:  fd,
		Name:      fd.Name,
		Prototype: fd.Prototype(),
	}

	if fd.Variadic {
		errors.AddToMultiple(&multi, errors.NewUnsupportedType(fd.QualifiedName, "...",
			"variadic arguments cannot be marshalled").WithLocation(loc))
	}

	ret := fd.Return.QualType
	if tree.IsVoid(ret) {
		stub.ReturnType = statusType
	} else if _, err := m.classify(tree, ret, "returned"); err != nil {
		fail(err)
	} else {
		stub.ReturnType = statusOrType + "<" + tree.Spell(ret.WithoutConst()) + ">"
		stub.ReturnWrapper, _ = m.Wrapper(tree, ret)
	}

	names := newParamNames()
	for _, p := range fd.Params {
		passing, err := m.Classify(tree, p.Type.QualType)
		if err != nil {
			fail(err)
			continue
		}

		param := models.ProxyParam{Passing: passing}
		if passing.IsIndirect() {
			param.Type = ptrType
		} else {
			param.Type = tree.Spell(p.Type.QualType)
			param.Wrapper, _ = m.Wrapper(tree, p.Type.QualType)
		}
		param.Name = names.claim(ParamName(p.Name, p.Index), param.Wrapper != "")
		stub.Params = append(stub.Params, param)
	}

	if err := multi.ErrorOrNil(); err != nil {
		return nil, err
	}
	return stub, nil
}
