package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSampleTree() (*Tree, map[string]DeclID) {
	tree := NewTree("sample.h")
	ids := make(map[string]DeclID)

	ids["ns"] = tree.Add(tree.Root(), Decl{Kind: NamespaceDecl, Name: "ns"})
	ids["anon"] = tree.Add(ids["ns"], Decl{Kind: NamespaceDecl})
	ids["extc"] = tree.Add(ids["anon"], Decl{Kind: LinkageSpecDecl, Language: "C"})
	ids["Point"] = tree.Add(ids["extc"], Decl{
		Kind:     RecordDecl,
		Name:     "Point",
		Tag:      TagStruct,
		Complete: true,
		Fields: []Field{
			{Name: "x", Type: Q(Builtin{Kind: Int})},
			{Name: "y", Type: Q(Builtin{Kind: Int})},
		},
	})
	ids["Inner"] = tree.Add(ids["Point"], Decl{Kind: EnumDecl, Name: "Inner", Complete: true})
	ids["Add"] = tree.Add(ids["ns"], Decl{
		Kind:   FunctionDecl,
		Name:   "Add",
		Result: Q(Builtin{Kind: Int}),
		Params: []Param{
			{Name: "a", Type: Q(Builtin{Kind: Int})},
			{Name: "b", Type: Q(Builtin{Kind: Int})},
		},
	})
	ids["Method"] = tree.Add(ids["Point"], Decl{Kind: FunctionDecl, Name: "Method"})
	return tree, ids
}

func TestTree_AddAndWalk(t *testing.T) {
	tree, ids := newSampleTree()

	assert.Equal(t, "sample.h", tree.File())
	assert.Equal(t, 8, tree.Len())
	assert.Equal(t, ids["ns"], tree.Parent(ids["anon"]))
	assert.Equal(t, NoDecl, tree.Parent(tree.Root()))

	var visited []DeclID
	tree.Walk(tree.Root(), func(id DeclID) bool {
		visited = append(visited, id)
		return tree.Decl(id).Kind != RecordDecl
	})
	assert.Contains(t, visited, ids["Point"])
	assert.NotContains(t, visited, ids["Inner"])
	assert.Equal(t, tree.Root(), visited[0])
}

func TestTree_DeclPanicsOnInvalidID(t *testing.T) {
	tree := NewTree("x.h")
	assert.False(t, tree.Valid(NoDecl))
	assert.Panics(t, func() { tree.Decl(42) })
}

func TestTree_Names(t *testing.T) {
	tree, ids := newSampleTree()

	assert.Equal(t, "ns::(anonymous namespace)::Point", tree.QualifiedName(ids["Point"]))
	assert.Equal(t, "ns::Point", tree.SpelledName(ids["Point"]))
	assert.Equal(t, "ns::Point::Inner", tree.SpelledName(ids["Inner"]))
	assert.Equal(t, "ns::Add", tree.QualifiedName(ids["Add"]))
}

func TestTree_IsFreeFunction(t *testing.T) {
	tree, ids := newSampleTree()

	assert.True(t, tree.IsFreeFunction(ids["Add"]))
	assert.False(t, tree.IsFreeFunction(ids["Method"]))
	assert.False(t, tree.IsFreeFunction(ids["Point"]))
}

func TestTree_Spell(t *testing.T) {
	tree, ids := newSampleTree()
	intT := Q(Builtin{Kind: Int})
	charT := Q(Builtin{Kind: Char})
	constChar := QualType{Type: Builtin{Kind: Char}, Const: true}

	tests := []struct {
		name     string
		q        QualType
		declName string
		expected string
	}{
		{"builtin", intT, "", "int"},
		{"const char pointer", Q(Pointer{Pointee: constChar}), "", "const char *"},
		{"named pointer", Q(Pointer{Pointee: constChar}), "s", "const char *s"},
		{"const pointer", QualType{Type: Pointer{Pointee: charT}, Const: true}, "p", "char *const p"},
		{"pointer to const pointer", Q(Pointer{Pointee: QualType{Type: Pointer{Pointee: charT}, Const: true}}), "pp", "char *const *pp"},
		{"reference", Q(Reference{Pointee: intT}), "r", "int &r"},
		{"rvalue reference", Q(Reference{Pointee: intT, RValue: true}), "", "int &&"},
		{"array", Q(Array{Elem: intT, Size: "4"}), "a", "int a[4]"},
		{"pointer to array", Q(Pointer{Pointee: Q(Array{Elem: intT, Size: "4"})}), "pa", "int (*pa)[4]"},
		{"function pointer", Q(Pointer{Pointee: Q(FunctionProto{Result: Q(Builtin{Kind: Void}), Params: []QualType{intT}})}), "cb", "void (*cb)(int)"},
		{"variadic proto", Q(Pointer{Pointee: Q(FunctionProto{Result: intT, Params: []QualType{constChar}, Variadic: true})}), "", "int (*)(const char, ...)"},
		{"record", Q(RecordType{Decl: ids["Point"]}), "", "ns::Point"},
		{"unresolved", Q(Unresolved{Name: "std::string"}), "s", "std::string s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tree.SpellAs(tt.q, tt.declName))
		})
	}
}

func TestTree_Prototype(t *testing.T) {
	tree, ids := newSampleTree()
	assert.Equal(t, "int ns::Add(int a, int b)", tree.Prototype(ids["Add"]))
}

func TestTree_PrintDecl(t *testing.T) {
	tree := NewTree("x.h")
	root := tree.Root()
	intT := Q(Builtin{Kind: Int})

	point := tree.Add(root, Decl{
		Kind: RecordDecl, Name: "Point", Tag: TagStruct, Complete: true,
		Fields: []Field{{Name: "x", Type: intT}, {Name: "y", Type: intT}},
	})
	fwd := tree.Add(root, Decl{Kind: RecordDecl, Name: "Opaque", Tag: TagClass})
	color := tree.Add(root, Decl{
		Kind: EnumDecl, Name: "Color", Scoped: true, Complete: true,
		IntegerType: &QualType{Type: Builtin{Kind: UChar}},
		Enumerators: []Enumerator{{Name: "kRed"}, {Name: "kBlue", Value: "2"}},
	})
	anon := tree.Add(root, Decl{Kind: RecordDecl, Tag: TagStruct, Complete: true, Fields: []Field{{Name: "v", Type: intT}}})
	td := tree.Add(root, Decl{Kind: TypedefDecl, Name: "Anon", Underlying: Q(RecordType{Decl: anon})})
	alias := tree.Add(root, Decl{Kind: TypedefDecl, Name: "Id", Alias: true, Underlying: Q(Builtin{Kind: ULong})})
	cb := tree.Add(root, Decl{
		Kind: TypedefDecl, Name: "callback_t",
		Underlying: Q(Pointer{Pointee: Q(FunctionProto{Result: intT, Params: []QualType{Q(Pointer{Pointee: Q(Builtin{Kind: Void})})}})}),
	})

	assert.Equal(t, "struct Point { int x; int y; }", tree.PrintDecl(point))
	assert.Equal(t, "class Opaque", tree.PrintDecl(fwd))
	assert.Equal(t, "enum class Color : unsigned char { kRed, kBlue = 2 }", tree.PrintDecl(color))
	assert.Equal(t, "typedef struct { int v; } Anon", tree.PrintDecl(td))
	assert.Equal(t, "using Id = unsigned long", tree.PrintDecl(alias))
	assert.Equal(t, "typedef int (*callback_t)(void *)", tree.PrintDecl(cb))
}

func TestTree_Desugar(t *testing.T) {
	tree := NewTree("x.h")
	intT := Q(Builtin{Kind: Int})
	myInt := tree.Add(tree.Root(), Decl{Kind: TypedefDecl, Name: "my_int", Underlying: intT})
	fn := tree.Add(tree.Root(), Decl{
		Kind: TypedefDecl, Name: "fn_t",
		Underlying: Q(Pointer{Pointee: Q(FunctionProto{Result: intT})}),
	})
	voidT := tree.Add(tree.Root(), Decl{Kind: TypedefDecl, Name: "nothing", Underlying: Q(Builtin{Kind: Void})})

	q := tree.Desugar(QualType{Type: TypedefType{Decl: myInt}, Const: true})
	require.Equal(t, Builtin{Kind: Int}, q.Type)
	assert.True(t, q.Const)

	assert.True(t, tree.IsFunctionReference(Q(TypedefType{Decl: fn})))
	assert.True(t, tree.IsPointer(Q(TypedefType{Decl: fn})))
	assert.False(t, tree.IsReference(Q(TypedefType{Decl: fn})))
	assert.True(t, tree.IsVoid(Q(TypedefType{Decl: voidT})))
	assert.False(t, tree.IsVoid(intT))
}

func TestNamedDecl(t *testing.T) {
	assert.Equal(t, DeclID(3), NamedDecl(Q(Pointer{Pointee: Q(Array{Elem: Q(RecordType{Decl: 3})})})))
	assert.Equal(t, DeclID(5), NamedDecl(Q(Reference{Pointee: Q(TypedefType{Decl: 5})})))
	assert.Equal(t, NoDecl, NamedDecl(Q(Builtin{Kind: Int})))
}
