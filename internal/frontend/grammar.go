package frontend

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// headerLexer tokenizes C and C++ headers. Keywords get their own token type
// so that identifiers captured by the grammar are never reserved words.
// Preprocessor lines and comments are elided: input is expected to be either
// plain declarations or the output of the preprocessor.
var headerLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*([^*]|\*+[^*/])*\*+/`},
	{Name: "Preprocessor", Pattern: `#(\\\n|[^\n])*`},
	{Name: "String", Pattern: `(u8|[uUL])?"(\\.|[^"\\\n])*"`},
	{Name: "Char", Pattern: `(u8|[uUL])?'(\\.|[^'\\\n])*'`},
	{Name: "Number", Pattern: `(0[xX][0-9a-fA-F']+|[0-9][0-9']*(\.[0-9]*)?([eE][-+]?[0-9]+)?|\.[0-9]+([eE][-+]?[0-9]+)?)[uUlLfFzZ]*`},
	{Name: "Keyword", Pattern: `(` + strings.Join(keywords, "|") + `)\b`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Scope", Pattern: `::`},
	{Name: "Ellipsis", Pattern: `\.\.\.`},
	{Name: "Brace", Pattern: `[{}]`},
	{Name: "Paren", Pattern: `[()]`},
	{Name: "Bracket", Pattern: `[\[\]]`},
	{Name: "Angle", Pattern: `[<>]`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Semi", Pattern: `;`},
	{Name: "Punct", Pattern: `&&|\|\||->|[-+*/%&|^~!=:?.]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// keywords are the reserved words the grammar relies on. Longer spellings
// come first where one keyword is a prefix of another.
var keywords = []string{
	"namespace", "inline", "__inline__", "__inline", "extern", "template", "typename",
	"typedef", "using", "public", "private", "protected", "static_assert", "_Static_assert",
	"struct", "class", "union", "enum", "operator", "const", "volatile",
	"restrict", "__restrict__", "__restrict", "static", "constexpr", "consteval",
	"constinit", "virtual", "explicit", "friend", "mutable", "register",
	"thread_local", "__thread", "__extension__", "noexcept", "throw",
	"__attribute__", "__declspec", "alignas", "_Alignas", "__asm__", "__asm", "asm",
	"decltype", "typeof", "__typeof__", "__typeof", "sizeof", "new", "delete",
	"void", "bool", "_Bool", "char8_t", "char16_t", "char32_t", "char", "wchar_t",
	"short", "int", "long", "signed", "__signed__", "__signed", "unsigned",
	"float", "double", "__int128", "auto",
}

// File is the root of a parsed header
type File struct {
	Decls []*Declaration `@@*`
}

// Declaration is any declaration that may appear at namespace or class scope
type Declaration struct {
	Pos lexer.Position

	Extension    bool            `@'__extension__'*`
	Namespace    *Namespace      `( @@`
	Alias        *NamespaceAlias `| @@`
	Linkage      *Linkage        `| @@`
	Template     *Template       `| @@`
	Typedef      *Typedef        `| @@`
	Using        *Using          `| @@`
	Access       *Access         `| @@`
	StaticAssert *StaticAssert   `| @@`
	Simple       *SimpleDecl     `| @@`
	Empty        bool            `| @';' )`
}

// Namespace is a namespace definition, possibly nested ("a::b") or anonymous
type Namespace struct {
	Pos lexer.Position

	Inline bool           `@'inline'?`
	Names  []string       `'namespace' ( @Ident ( '::' @Ident )* )?`
	Attrs  []*Attribute   `@@*`
	Decls  []*Declaration `'{' @@* '}'`
}

// NamespaceAlias is "namespace a = b::c;"
type NamespaceAlias struct {
	Name   string    `'namespace' @Ident '='`
	Target *QualName `@@ ';'`
}

// Linkage is an extern "C" block or single declaration
type Linkage struct {
	Pos lexer.Position

	Language string         `'extern' @String`
	Decls    []*Declaration `( '{' @@* '}'`
	Single   *Declaration   `| @@ )`
}

// Template is a template declaration; the parameter list is kept as text
type Template struct {
	Params *AngleBlock  `'template' @@?`
	Decl   *Declaration `@@`
}

// Typedef is a typedef declaration with one or more declarators
type Typedef struct {
	Pos lexer.Position

	Spec        *DeclSpec     `'typedef' @@`
	Declarators []*Declarator `@@ ( ',' @@ )* ';'`
}

// Using is an alias declaration, a using-declaration or a using-directive
type Using struct {
	Pos lexer.Position

	Alias  string       `'using' ( @Ident`
	Attrs  []*Attribute `  @@* '='`
	Spec   *DeclSpec    `  @@`
	Target *Declarator  `  @@?`
	Other  []string     `| @( 'namespace' | 'typename' | 'enum' | Ident | Scope | Angle | Comma )+ ) ';'`
}

// Access is an access specifier inside a class body
type Access struct {
	Specifier string `@( 'public' | 'private' | 'protected' ) ':'`
}

// StaticAssert is a static assertion, ignored by lowering
type StaticAssert struct {
	Args *ParenBlock `( 'static_assert' | '_Static_assert' ) @@ ';'`
}

// SimpleDecl declares variables, functions and types, or defines a function
type SimpleDecl struct {
	Pos lexer.Position

	Spec  *DeclSpec         `@@?`
	Decls []*InitDeclarator `( @@ ( ',' @@ )* )?`
	Body  *BraceBlock       `( @@`
	Semi  bool              `| @';' )`
}

// DeclSpec is the type part of a declaration: specifiers, qualifiers and
// at most one type specifier. Constructors and conversion operators have none.
type DeclSpec struct {
	Pos lexer.Position

	Attrs   []*Attribute `( @@`
	Prefix  []string     `| @( 'const' | 'volatile' | 'static' | 'extern' | 'inline' | '__inline' | '__inline__' | 'constexpr' | 'consteval' | 'constinit' | 'virtual' | 'explicit' | 'friend' | 'mutable' | 'register' | 'thread_local' | '__thread' | 'typename' | '__extension__' | 'restrict' | '__restrict' | '__restrict__' ) )*`
	Builtin []string     `( @( 'void' | 'bool' | '_Bool' | 'char8_t' | 'char16_t' | 'char32_t' | 'char' | 'wchar_t' | 'short' | 'int' | 'long' | 'signed' | '__signed__' | '__signed' | 'unsigned' | 'float' | 'double' | '__int128' | 'auto' )+`
	Record  *RecordSpec  `| @@`
	Enum    *EnumSpec    `| @@`
	Typeof  *TypeofSpec  `| @@`
	Named   *QualName    `| @@ )?`
	Suffix  []string     `( @( 'const' | 'volatile' | 'restrict' | '__restrict' | '__restrict__' )`
	Trail   []*Attribute `| @@ )*`
}

// RecordSpec is a struct, class or union specifier, with or without a body
type RecordSpec struct {
	Pos lexer.Position

	Tag   string       `@( 'struct' | 'class' | 'union' )`
	Attrs []*Attribute `@@*`
	Name  *QualName    `@@?`
	Final bool         `@'final'?`
	Bases []string     `( ':' @( Ident | Keyword | Scope | Angle | Comma | Number | Paren | Punct )+ )?`
	Body  *RecordBody  `@@?`
}

// RecordBody holds the member declarations of a record
type RecordBody struct {
	Decls []*Declaration `'{' @@* '}'`
}

// EnumSpec is an enum specifier, with or without a body
type EnumSpec struct {
	Pos lexer.Position

	Scoped bool         `'enum' @( 'class' | 'struct' )?`
	Attrs  []*Attribute `@@*`
	Name   *QualName    `@@?`
	Base   *DeclSpec    `( ':' @@ )?`
	Body   *EnumBody    `@@?`
}

// EnumBody holds the enumerators of an enum
type EnumBody struct {
	Items []*Enumerator `'{' ( @@ ( ',' @@ )* ','? )? '}'`
}

// Enumerator is one enum constant with its optional initializer
type Enumerator struct {
	Name  string       `@Ident`
	Attrs []*Attribute `@@*`
	Value []*ExprItem  `( '=' @@+ )?`
}

// TypeofSpec is decltype(...) or the GNU typeof extension
type TypeofSpec struct {
	Keyword string      `@( 'decltype' | 'typeof' | '__typeof__' | '__typeof' )`
	Expr    *ParenBlock `@@`
}

// QualName is a possibly qualified name with template arguments
type QualName struct {
	Pos lexer.Position

	Global bool        `@'::'?`
	Parts  []*NamePart `@@ ( '::' @@ )*`
}

// NamePart is one component of a qualified name
type NamePart struct {
	Template bool        `@'template'?`
	Tilde    bool        `@'~'?`
	Name     string      `@Ident`
	Args     *AngleBlock `@@?`
}

// Declarator names the declared entity and derives its type from the
// DeclSpec: pointers, arrays, functions and nested declarators.
type Declarator struct {
	Pos lexer.Position

	Ptrs     []*PtrOp       `@@*`
	Nested   *Declarator    `( '(' @@ ')'`
	Operator *OperatorName  `| @@`
	Name     *QualName      `| @@ )?`
	Arrays   []*ArraySuffix `@@*`
	Params   *ParamList     `( @@`
	Trailing []*Trailing    `  @@* )?`
	Attrs    []*Attribute   `@@*`
}

// PtrOp is a pointer or reference operator with its cv-qualifiers
type PtrOp struct {
	Op    string       `@( '*' | '&&' | '&' )`
	Attrs []*Attribute `@@*`
	Quals []string     `@( 'const' | 'volatile' | 'restrict' | '__restrict' | '__restrict__' )*`
}

// OperatorName is an overloaded operator or conversion function name
type OperatorName struct {
	Call   bool     `'operator' ( @( '(' ')' )`
	Index  bool     `| @( '[' ']' )`
	Tokens []string `| @( Punct | Angle | Comma | Keyword | Ident )+ )`
}

// ArraySuffix is "[size]"
type ArraySuffix struct {
	Size []*ArrayItem `'[' @@* ']'`
}

// ParamList is a function parameter list
type ParamList struct {
	Params   []*ParamDecl `'(' ( @@ ( ',' @@ )* )?`
	Variadic bool         `( ','? @'...' )? ')'`
}

// ParamDecl is one function parameter
type ParamDecl struct {
	Pos lexer.Position

	Spec    *DeclSpec   `@@`
	Decl    *Declarator `@@?`
	Default []*ExprItem `( '=' @@+ )?`
}

// Trailing is anything that may follow a function parameter list
type Trailing struct {
	Qual     string          `  @( 'const' | 'volatile' | '&&' | '&' | 'override' | 'final' )`
	Noexcept *ExceptionSpec  `| @@`
	Return   *TrailingReturn `| @@`
	Attr     *Attribute      `| @@`
}

// ExceptionSpec is noexcept or a dynamic exception specification
type ExceptionSpec struct {
	Keyword string      `@( 'noexcept' | 'throw' )`
	Args    *ParenBlock `@@?`
}

// TrailingReturn is "-> type"
type TrailingReturn struct {
	Spec *DeclSpec   `'->' @@`
	Decl *Declarator `@@?`
}

// InitDeclarator is a declarator with its bit-field width or initializer.
// Constructor initializer lists land in Bits.
type InitDeclarator struct {
	Decl *Declarator  `@@?`
	Bits []*InitItem  `( ':' @@+ )?`
	Init *Initializer `@@?`
}

// Initializer is "= expr" or "(...)". A braced initializer without '=' is
// indistinguishable from a function body and is not supported.
type Initializer struct {
	Value  []*ExprItem `  '=' @@+`
	Parens *ParenBlock `| @@`
}

// InitItem is a token of a bit-field width or constructor initializer list;
// it never spans a brace so that a following function body stays intact
type InitItem struct {
	Parens *ParenBlock `  @@`
	Token  string      `| @( Ident | Keyword | Number | String | Char | Scope | Angle | Comma | Punct )`
}

// Attribute is a GNU, Microsoft, asm-label or standard attribute
type Attribute struct {
	GNU *ParenBlock `  ( '__attribute__' | '__declspec' | 'alignas' | '_Alignas' | '__asm__' | '__asm' | 'asm' ) @@`
	Std []string    `| '[' '[' @( Ident | Keyword | Number | String | Scope | Comma | Paren | Punct | Ellipsis )* ']' ']'`
}

// ParenBlock is a balanced parenthesized token sequence
type ParenBlock struct {
	Items []*ParenItem `'(' @@* ')'`
}

// ParenItem is a token or nested block inside parentheses
type ParenItem struct {
	Nested *ParenBlock `  @@`
	Token  string      `| @( Ident | Keyword | Number | String | Char | Scope | Ellipsis | Brace | Bracket | Angle | Comma | Semi | Punct )`
}

// BraceBlock is a balanced braced token sequence, such as a function body
type BraceBlock struct {
	Items []*BraceItem `'{' @@* '}'`
}

// BraceItem is a token or nested block inside braces
type BraceItem struct {
	Nested *BraceBlock `  @@`
	Token  string      `| @( Ident | Keyword | Number | String | Char | Scope | Ellipsis | Paren | Bracket | Angle | Comma | Semi | Punct )`
}

// AngleBlock is a template argument or parameter list
type AngleBlock struct {
	Items []*AngleItem `'<' @@* '>'`
}

// AngleItem is a token or nested block inside angle brackets
type AngleItem struct {
	Nested *AngleBlock `  @@`
	Parens *ParenBlock `| @@`
	Token  string      `| @( Ident | Keyword | Number | String | Char | Scope | Ellipsis | Bracket | Comma | Punct )`
}

// ExprItem is a token of an expression that ends at a comma, semicolon or
// closing brace: enumerator values, default arguments, initializers
type ExprItem struct {
	Parens *ParenBlock `  @@`
	Braced *BraceBlock `| @@`
	Token  string      `| @( Ident | Keyword | Number | String | Char | Scope | Ellipsis | Bracket | Angle | Punct )`
}

// ArrayItem is a token of an array bound
type ArrayItem struct {
	Parens *ParenBlock `  @@`
	Token  string      `| @( Ident | Keyword | Number | String | Char | Scope | Angle | Comma | Punct )`
}

func (b *ParenBlock) String() string {
	parts := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		if item.Nested != nil {
			parts = append(parts, item.Nested.String())
		} else {
			parts = append(parts, item.Token)
		}
	}
	return "(" + joinTokens(parts) + ")"
}

func (b *AngleBlock) String() string {
	parts := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		switch {
		case item.Nested != nil:
			parts = append(parts, item.Nested.String())
		case item.Parens != nil:
			parts = append(parts, item.Parens.String())
		default:
			parts = append(parts, item.Token)
		}
	}
	return "<" + joinTokens(parts) + ">"
}

func (b *BraceBlock) String() string {
	parts := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		if item.Nested != nil {
			parts = append(parts, item.Nested.String())
		} else {
			parts = append(parts, item.Token)
		}
	}
	return "{" + joinTokens(parts) + "}"
}

// exprText reconstructs an expression from its items
func exprText(items []*ExprItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		switch {
		case item.Parens != nil:
			parts = append(parts, item.Parens.String())
		case item.Braced != nil:
			parts = append(parts, item.Braced.String())
		default:
			parts = append(parts, item.Token)
		}
	}
	return joinTokens(parts)
}

func arrayText(items []*ArrayItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item.Parens != nil {
			parts = append(parts, item.Parens.String())
		} else {
			parts = append(parts, item.Token)
		}
	}
	return joinTokens(parts)
}

// String returns the name as written, e.g. "::ns::Vec<int>"
func (q *QualName) String() string {
	var b strings.Builder
	if q.Global {
		b.WriteString("::")
	}
	for i, part := range q.Parts {
		if i > 0 {
			b.WriteString("::")
		}
		b.WriteString(part.String())
	}
	return b.String()
}

func (p *NamePart) String() string {
	s := p.Name
	if p.Tilde {
		s = "~" + s
	}
	if p.Args != nil {
		s += p.Args.String()
	}
	return s
}

// joinTokens glues tokens back together, separating words that would
// otherwise merge and putting a space after commas
func joinTokens(parts []string) string {
	var b strings.Builder
	prev := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		if prev != "" && (prev == "," || (isWordByte(prev[len(prev)-1]) && isWordByte(part[0]))) {
			b.WriteByte(' ')
		}
		b.WriteString(part)
		prev = part
	}
	return b.String()
}

func isWordByte(c byte) bool {
	return c == '_' || c == '\'' || c == '"' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// empty reports whether the declarator matched no tokens. Every part of a
// declarator is optional, so the grammar produces empty ones after
// constructors and before the closing parenthesis of "()".
func (d *Declarator) empty() bool {
	return d == nil || (len(d.Ptrs) == 0 && d.Nested == nil && d.Operator == nil &&
		d.Name == nil && len(d.Arrays) == 0 && d.Params == nil && len(d.Attrs) == 0)
}

func (s *DeclSpec) empty() bool {
	return s == nil || (len(s.Attrs) == 0 && len(s.Prefix) == 0 && len(s.Builtin) == 0 &&
		s.Record == nil && s.Enum == nil && s.Typeof == nil && s.Named == nil &&
		len(s.Suffix) == 0 && len(s.Trail) == 0)
}

func (p *ParamDecl) empty() bool {
	return p == nil || (p.Spec.empty() && p.Decl.empty() && len(p.Default) == 0)
}
