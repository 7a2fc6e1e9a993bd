package generator

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/sapigen/internal/ast"
	"github.com/toyz/sapigen/internal/errors"
	"github.com/toyz/sapigen/internal/frontend"
	"github.com/toyz/sapigen/internal/models"
)

func parse(t *testing.T, src string) *ast.Tree {
	t.Helper()
	tree, err := frontend.New().ParseSource("input.h", []byte(src))
	require.NoError(t, err)
	return tree
}

func TestGenerate(t *testing.T) {
	tree := parse(t, `
namespace zlib { struct z_stream; }
int Add(int a, int b);
int deflateInit(zlib::z_stream* strm, int level);
void Unused(void);
`)

	header, err := New(&models.GeneratorOptions{
		Name:          "Zlib",
		Namespace:     "sapi::zlib",
		OutFile:       "zlib.sapi.h",
		FunctionNames: []string{"Add", "deflateInit"},
	}).Generate(tree)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(header, "// AUTO-GENERATED by the Sandboxed API generator.\n"))
	assert.Contains(t, header, "#ifndef ZLIB_SAPI_H_\n")
	assert.Contains(t, header, "\nnamespace sapi::zlib {\n")
	assert.Contains(t, header, "namespace zlib {\nstruct z_stream;\n}  // namespace zlib\n")
	assert.Contains(t, header, "class ZlibApi {")
	assert.Contains(t, header, "::absl::StatusOr<int> Add(int a_, int b_) {")
	assert.Contains(t, header, `SAPI_RETURN_IF_ERROR(sandbox_->Call("Add", &v_ret_, &v_a_, &v_b_));`)
	assert.Contains(t, header, "::absl::StatusOr<int> deflateInit(::sapi::v::Ptr* strm_, int level_) {")
	assert.Contains(t, header, `sandbox_->Call("deflateInit", &v_ret_, strm_, &v_level_)`)
	assert.NotContains(t, header, "Unused")
	assert.NotContains(t, header, "Sandbox :")
}

func TestGenerate_SeededGuardIsReproducible(t *testing.T) {
	tree := parse(t, "int Add(int a, int b);\n")
	opts := &models.GeneratorOptions{Name: "Calc", GuardSeed: "calc"}

	first, err := New(opts).Generate(tree)
	require.NoError(t, err)
	second, err := New(opts).Generate(tree)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "SANDBOXED_API_GENERATED_HEADER_")

	fixed, err := New(&models.GeneratorOptions{Name: "Calc"}).
		WithGuardSource(func() uint64 { return 0xabc }).
		Generate(tree)
	require.NoError(t, err)
	assert.Contains(t, fixed, "#define SANDBOXED_API_GENERATED_HEADER_0000000000000ABC_\n")
}

func TestGenerate_AggregatesErrors(t *testing.T) {
	tree := parse(t, `
struct Outer { struct Inner {}; };
struct Pair { int a; int b; };
void Nested(Outer::Inner* p);
Pair Swap(Pair p);
typedef void (*cb_t)(int);
cb_t Handler(void);
int Fine(int x);
`)

	header, err := New(&models.GeneratorOptions{Name: "Lib"}).Generate(tree)
	require.Error(t, err)
	assert.Empty(t, header)

	var multi *errors.MultipleErrors
	require.True(t, stderrors.As(err, &multi))
	assert.Len(t, multi.GetByCode(errors.UnresolvedDeclContextCode), 1)
	// Swap fails for its return and its parameter, Handler for its return
	assert.Len(t, multi.GetByCode(errors.UnsupportedTypeCode), 3)

	for _, e := range multi.Errors {
		assert.NotEmpty(t, e.Context()["function_name"], e.Error())
		assert.Equal(t, "input.h", e.Location().File)
	}
}

func TestGenerate_InvalidOptions(t *testing.T) {
	tree := parse(t, "int f();\n")

	tests := []struct {
		name string
		opts *models.GeneratorOptions
	}{
		{name: "nil options", opts: nil},
		{name: "bad name", opts: &models.GeneratorOptions{Name: "1bad"}},
		{name: "bad namespace", opts: &models.GeneratorOptions{Name: "Lib", Namespace: "a:b"}},
		{name: "bad wrapper", opts: &models.GeneratorOptions{Name: "Lib", Wrappers: map[string]string{"string": "::sapi::v::Str"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.opts)
			assert.Error(t, g.Err())

			header, err := g.Generate(tree)
			require.Error(t, err)
			assert.Empty(t, header)

			var multi *errors.MultipleErrors
			require.True(t, stderrors.As(err, &multi))
			assert.True(t, multi.HasCode(errors.ConfigurationErrorCode))

			_, err = g.Collect(tree)
			assert.Error(t, err)
			_, err = g.Emit(models.NewCollection())
			assert.Error(t, err)
		})
	}
}

func TestCollectAndEmit_MultipleTranslationUnits(t *testing.T) {
	g := New(&models.GeneratorOptions{Name: "Multi", OutFile: "multi.h"})
	require.NoError(t, g.Err())

	first, err := g.Collect(parse(t, `
namespace a { struct A; }
int Shared(int x);
void UseA(a::A* p);
`))
	require.NoError(t, err)
	second, err := g.Collect(parse(t, `
namespace a { struct A; }
namespace b { struct B; }
int Shared(int x);
void UseB(b::B* p, a::A* q);
`))
	require.NoError(t, err)

	first.Merge(second)
	header, err := g.Emit(first)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(header, "StatusOr<int> Shared("))
	assert.Equal(t, 1, strings.Count(header, "struct A;"))
	assert.Contains(t, header, "namespace a {\nstruct A;\n}  // namespace a\nnamespace b {\nstruct B;\n}  // namespace b\n")
	assert.Less(t, strings.Index(header, " UseA("), strings.Index(header, " UseB("))
	assert.Equal(t, g.Options().Name, "Multi")
}

func TestGenerator_Wrappers(t *testing.T) {
	plain := New(&models.GeneratorOptions{Name: "Lib"})
	assert.Contains(t, plain.Wrappers(), "int")
	assert.NotContains(t, plain.Wrappers(), "char32_t")

	wide := New(&models.GeneratorOptions{Name: "Lib", Wrappers: map[string]string{"char32_t": "::sapi::v::UInt"}})
	require.NoError(t, wide.Err())
	assert.Contains(t, wide.Wrappers(), "char32_t")

	header, err := wide.Generate(parse(t, "char32_t Upper(char32_t c);\n"))
	require.NoError(t, err)
	assert.Contains(t, header, "::sapi::v::UInt v_c_(c_);")
}
