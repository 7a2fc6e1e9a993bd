package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/sapigen/internal/ast"
	"github.com/toyz/sapigen/internal/errors"
)

func record(name string, ns ...string) TypeDescriptor {
	return TypeDescriptor{Kind: TypeKindRecord, QualifiedName: name, Namespace: ns, Decl: 1}
}

func TestTypeSet_AddDeduplicatesAndKeepsOrder(t *testing.T) {
	set := NewTypeSet()

	assert.True(t, set.Add(record("b::Point", "b")))
	assert.True(t, set.Add(record("a::Point", "a")))
	assert.False(t, set.Add(record("b::Point", "b")))
	assert.True(t, set.Add(TypeDescriptor{Kind: TypeKindTypedef, QualifiedName: "b::Point", Namespace: []string{"b"}}))

	all := set.All()
	require.Len(t, all, 3)
	assert.Equal(t, "b::Point", all[0].QualifiedName)
	assert.Equal(t, "a::Point", all[1].QualifiedName)
	assert.True(t, set.Contains(TypeKey{Kind: TypeKindRecord, QualifiedName: "a::Point"}))
}

func TestTypeSet_FiltersWellKnownNamespaces(t *testing.T) {
	set := NewTypeSet("absl")

	assert.False(t, set.Add(record("std::string", "std")))
	assert.False(t, set.Add(record("std::__1::basic_string", "std", "__1")))
	assert.False(t, set.Add(record("sapi::v::Int", "sapi", "v")))
	assert.False(t, set.Add(record("__gnu_cxx::foo", "__gnu_cxx")))
	assert.False(t, set.Add(record("absl::Status", "absl")))
	assert.True(t, set.Add(record("mystd::string", "mystd")))
	assert.True(t, set.Add(record("Global")))
	assert.Equal(t, 2, set.Len())
}

func TestCollection_Merge(t *testing.T) {
	first := NewCollection()
	assert.True(t, first.AddFunction(FunctionDescriptor{QualifiedName: "Add", Name: "Add"}))
	assert.False(t, first.AddFunction(FunctionDescriptor{QualifiedName: "Add", Name: "Add"}))
	first.Types.Add(record("Point"))

	second := NewCollection()
	second.AddFunction(FunctionDescriptor{QualifiedName: "Add", Name: "Add"})
	second.AddFunction(FunctionDescriptor{QualifiedName: "ns::Sub", Name: "Sub"})
	second.Types.Add(record("Point"))
	second.Types.Add(record("ns::Rect", "ns"))

	first.Merge(second)
	require.Len(t, first.Functions, 2)
	assert.Equal(t, "ns::Sub", first.Functions[1].QualifiedName)
	assert.True(t, first.HasFunction("ns::Sub"))
	assert.Equal(t, 2, first.Types.Len())
}

func TestGeneratorOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    GeneratorOptions
		wantErr bool
	}{
		{"valid", GeneratorOptions{Name: "zlib", Namespace: "sapi::zlib"}, false},
		{"leading scope", GeneratorOptions{Name: "zlib", Namespace: "::zlib"}, false},
		{"missing name", GeneratorOptions{}, true},
		{"bad name", GeneratorOptions{Name: "z-lib"}, true},
		{"bad namespace", GeneratorOptions{Name: "z", Namespace: "a:b"}, true},
		{"trailing scope", GeneratorOptions{Name: "z", Namespace: "sapi::"}, true},
		{"empty segment", GeneratorOptions{Name: "z", Namespace: "a::::b"}, true},
		{"segment starts with a digit", GeneratorOptions{Name: "z", Namespace: "a::1b"}, true},
		{"empty function", GeneratorOptions{Name: "z", FunctionNames: []string{"f", " "}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			multi, ok := err.(*errors.MultipleErrors)
			require.True(t, ok)
			assert.True(t, multi.HasCode(errors.ConfigurationErrorCode))
		})
	}
}

func TestGeneratorOptions_Helpers(t *testing.T) {
	opts := GeneratorOptions{Namespace: "::a::b", EmbedName: "zlib-sapi"}
	assert.Equal(t, []string{"a", "b"}, opts.NamespaceSegments())
	assert.True(t, opts.HasEmbed())
	assert.Nil(t, (&GeneratorOptions{}).NamespaceSegments())
}

func TestProxyParam(t *testing.T) {
	value := ProxyParam{Name: "a_", Type: "int", Wrapper: "::sapi::v::Int", Passing: PassValue}
	ptr := ProxyParam{Name: "buf_", Type: "::sapi::v::Ptr*", Passing: PassPointer}

	assert.Equal(t, "v_a_", value.WrapperVar())
	assert.Equal(t, "&v_a_", value.CallArg())
	assert.Equal(t, "buf_", ptr.CallArg())
	assert.True(t, (&ProxyStub{}).ReturnsVoid())
}

func TestProxyStub_HasLocals(t *testing.T) {
	value := ProxyParam{Name: "a_", Type: "int", Wrapper: "::sapi::v::Int", Passing: PassValue}
	ptr := ProxyParam{Name: "buf_", Type: "::sapi::v::Ptr*", Passing: PassPointer}

	assert.False(t, (&ProxyStub{}).HasLocals())
	assert.False(t, (&ProxyStub{Params: []ProxyParam{ptr}}).HasLocals())
	assert.True(t, (&ProxyStub{Params: []ProxyParam{ptr, value}}).HasLocals())
	assert.True(t, (&ProxyStub{ReturnWrapper: "::sapi::v::Int"}).HasLocals())
}

func TestFunctionDescriptor_Prototype(t *testing.T) {
	tree := ast.NewTree("x.h")
	id := tree.Add(tree.Root(), ast.Decl{Kind: ast.FunctionDecl, Name: "Noop", Result: ast.Q(ast.Builtin{Kind: ast.Void})})

	fd := FunctionDescriptor{Tree: tree, Decl: id, QualifiedName: "Noop"}
	assert.Equal(t, "void Noop()", fd.Prototype())
	assert.Equal(t, "Orphan()", (&FunctionDescriptor{QualifiedName: "Orphan"}).Prototype())
}
