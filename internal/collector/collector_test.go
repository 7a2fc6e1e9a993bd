package collector

import (
	stderrors "errors"
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

func functionNames(c *models.Collection) []string {
	names := make([]string, 0, len(c.Functions))
	for _, fd := range c.Functions {
		names = append(names, fd.QualifiedName)
	}
	return names
}

func typeNames(c *models.Collection) []string {
	var names []string
	for _, td := range c.Types.All() {
		names = append(names, td.Kind.String()+" "+td.QualifiedName)
	}
	return names
}

func TestCollectSelection(t *testing.T) {
	src := `
int Add(int a, int b);
namespace math {
int Mul(int a, int b);
int Add(int a, int b);
struct Acc {
  int Sum(int x);
};
template <typename T> T Max(T a, T b);
}
extern "C" int c_add(int, int);
`
	tests := []struct {
		name     string
		allow    []string
		expected []string
	}{
		{
			name:     "empty allowlist selects every free function",
			expected: []string{"Add", "math::Mul", "math::Add", "c_add"},
		},
		{
			name:     "plain name matches in every namespace",
			allow:    []string{"Add"},
			expected: []string{"Add", "math::Add"},
		},
		{
			name:     "qualified name",
			allow:    []string{"math::Add", "c_add"},
			expected: []string{"math::Add", "c_add"},
		},
		{
			name:     "leading scope operator",
			allow:    []string{"::math::Mul"},
			expected: []string{"math::Mul"},
		},
		{
			name:     "methods and templates are ignored",
			allow:    []string{"Sum", "Max", "math::Acc::Sum"},
			expected: []string{},
		},
	}

	tree := parse(t, src)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(&models.GeneratorOptions{FunctionNames: tt.allow}).Collect(tree)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, functionNames(c))
		})
	}
}

func TestCollectRedeclaration(t *testing.T) {
	tree := parse(t, `
int Add(int a, int b);
int Add(int x, int y);
`)
	c, err := New(nil).Collect(tree)
	require.NoError(t, err)
	require.Len(t, c.Functions, 1)
	assert.Equal(t, "a", c.Functions[0].Params[0].Name)
}

func TestCollectDescriptors(t *testing.T) {
	tree := parse(t, `
namespace geo {
struct Point { int x; int y; };
}
double Length(const geo::Point& p, geo::Point* out, int n, const char* label);
`)
	c, err := New(nil).Collect(tree)
	require.NoError(t, err)
	require.Len(t, c.Functions, 1)

	fd := c.Functions[0]
	assert.Equal(t, "Length", fd.Name)
	assert.Equal(t, "Length", fd.QualifiedName)
	assert.Equal(t, "input.h", fd.Location.File)
	assert.Equal(t, "double Length(const geo::Point &p, geo::Point *out, int n, const char *label)", fd.Prototype())

	assert.Equal(t, models.TypeKindOther, fd.Return.Kind)
	assert.Equal(t, models.PassValue, fd.Return.Passing)

	require.Len(t, fd.Params, 4)
	tests := []struct {
		kind     models.TypeKind
		passing  models.Passing
		name     string
		spelling string
	}{
		{models.TypeKindRecord, models.PassReference, "geo::Point", "const geo::Point &"},
		{models.TypeKindRecord, models.PassPointer, "geo::Point", "geo::Point *"},
		{models.TypeKindOther, models.PassValue, "int", "int"},
		{models.TypeKindOther, models.PassPointer, "const char *", "const char *"},
	}
	for i, tt := range tests {
		p := fd.Params[i]
		assert.Equal(t, i, p.Index)
		assert.Equal(t, tt.kind, p.Type.Kind, "param %d", i)
		assert.Equal(t, tt.passing, p.Type.Passing, "param %d", i)
		assert.Equal(t, tt.name, p.Type.QualifiedName, "param %d", i)
		assert.Equal(t, tt.spelling, p.Type.Spelling, "param %d", i)
	}
	assert.Equal(t, []string{"geo"}, fd.Params[0].Type.Namespace)

	assert.Equal(t, []string{"record geo::Point"}, typeNames(c))
}

func TestCollectTypedefPassing(t *testing.T) {
	tree := parse(t, `
typedef struct Ctx* ctx_handle;
typedef int& int_ref;
void Use(ctx_handle h, int_ref r);
`)
	c, err := New(nil).Collect(tree)
	require.NoError(t, err)
	require.Len(t, c.Functions, 1)

	params := c.Functions[0].Params
	assert.Equal(t, models.PassPointer, params[0].Type.Passing)
	assert.Equal(t, models.TypeKindTypedef, params[0].Type.Kind)
	assert.Equal(t, models.PassReference, params[1].Type.Passing)
}

func TestCollectClosureOrder(t *testing.T) {
	tree := parse(t, `
namespace lib {
enum Mode : int { kFast, kSafe };
struct Options { Mode mode; int level; };
typedef struct { Options* opts; } Config;
typedef void (*log_fn)(const Options* o);
}
void Configure(lib::Config* cfg, lib::log_fn log);
`)
	c, err := New(nil).Collect(tree)
	require.NoError(t, err)

	// dependencies come before the types that mention them, and the
	// anonymous record is left to the typedef naming it
	assert.Equal(t, []string{
		"enum lib::Mode",
		"record lib::Options",
		"typedef lib::Config",
		"typedef lib::log_fn",
	}, typeNames(c))
}

func TestCollectRecursiveRecord(t *testing.T) {
	tree := parse(t, `
struct Node { struct Node* next; int value; };
int Length(struct Node* head);
`)
	c, err := New(nil).Collect(tree)
	require.NoError(t, err)
	assert.Equal(t, []string{"record Node"}, typeNames(c))
}

func TestCollectFiltersWellKnownNamespaces(t *testing.T) {
	tree := parse(t, `
namespace std { class string; }
namespace absl { struct Span; }
namespace app { struct Item; }
void Put(const std::string& key, absl::Span* span, app::Item* item);
`)

	c, err := New(nil).Collect(tree)
	require.NoError(t, err)
	assert.Equal(t, []string{"record absl::Span", "record app::Item"}, typeNames(c))

	c, err = New(&models.GeneratorOptions{FilteredNamespaces: []string{"absl"}}).Collect(tree)
	require.NoError(t, err)
	assert.Equal(t, []string{"record app::Item"}, typeNames(c))
}

func TestCollectSkipsImplicitAndTemplatedTypes(t *testing.T) {
	tree := parse(t, `
template <typename T> struct Box { T value; };
size_t Fill(Box<int>* box, size_t n);
`)
	c, err := New(nil).Collect(tree)
	require.NoError(t, err)
	require.Len(t, c.Functions, 1)
	assert.Empty(t, typeNames(c))
	assert.Equal(t, models.TypeKindTypedef, c.Functions[0].Return.Kind)
}

func TestCollectNamespacePaths(t *testing.T) {
	tree := parse(t, `
namespace outer {
namespace {
struct Hidden {};
}
extern "C" {
struct Visible {};
}
inline namespace v1 {
struct Versioned {};
}
}
void Use(outer::Hidden* h, outer::Visible* v, outer::Versioned* w);
`)
	c, err := New(nil).Collect(tree)
	require.NoError(t, err)

	types := c.Types.All()
	require.Len(t, types, 3)
	assert.Equal(t, []string{"outer", ""}, types[0].Namespace)
	assert.Equal(t, "outer::(anonymous namespace)::Hidden", types[0].QualifiedName)
	assert.Equal(t, []string{"outer"}, types[1].Namespace)
	assert.Equal(t, []string{"outer", "v1"}, types[2].Namespace)
}

func TestCollectUnresolvedDeclContext(t *testing.T) {
	tree := parse(t, `
struct Outer {
  struct Inner { int a; };
  Inner in;
};
void Bad(Outer::Inner* p);
void Good(struct Outer* p);
`)
	c, err := New(nil).Collect(tree)
	require.Error(t, err)

	var multi *errors.MultipleErrors
	require.True(t, stderrors.As(err, &multi))
	require.Equal(t, 1, multi.Count())

	e := multi.Errors[0]
	assert.Equal(t, errors.UnresolvedDeclContextCode, e.ErrorCode())
	assert.Equal(t, "Bad", e.Context()["function_name"])
	assert.Equal(t, "input.h", e.Location().File)
	assert.Equal(t, 6, e.Location().Line)
	assert.Contains(t, e.Error(), "Outer::Inner")

	// the failing function contributes nothing, the other one is kept
	assert.Equal(t, []string{"Good"}, functionNames(c))
	assert.Equal(t, []string{"record Outer"}, typeNames(c))
}

func TestCollectErrorsDoNotLeakTypes(t *testing.T) {
	tree := parse(t, `
struct Outer { struct Inner {}; };
struct Used {};
void Bad(Used* u, Outer::Inner* p);
`)
	c, err := New(nil).Collect(tree)
	require.Error(t, err)
	assert.Empty(t, c.Functions)
	assert.Zero(t, c.Types.Len())
}

func TestNamespacePath(t *testing.T) {
	tree := parse(t, `
namespace a { namespace b { struct S {}; } }
struct R { struct N {}; };
`)
	s := ast.NoDecl
	n := ast.NoDecl
	tree.Walk(tree.Root(), func(id ast.DeclID) bool {
		switch tree.QualifiedName(id) {
		case "a::b::S":
			s = id
		case "R::N":
			n = id
		}
		return true
	})
	require.NotEqual(t, ast.NoDecl, s)
	require.NotEqual(t, ast.NoDecl, n)

	path, _, ok := NamespacePath(tree, s)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, path)

	_, ctx, ok := NamespacePath(tree, n)
	assert.False(t, ok)
	assert.Equal(t, "R", tree.Decl(ctx).Name)
}

func TestUnmatched(t *testing.T) {
	tree := parse(t, `
namespace ns { int f(); namespace { int g(); } }
int h();
`)
	allow := []string{"ns::f", "ns::g", "h", "missing", "::other::fn"}
	c, err := New(&models.GeneratorOptions{FunctionNames: allow}).Collect(tree)
	require.NoError(t, err)

	assert.Equal(t, []string{"ns::f", "ns::(anonymous namespace)::g", "h"}, functionNames(c))
	assert.Equal(t, []string{"missing", "::other::fn"}, Unmatched(allow, c))
}
