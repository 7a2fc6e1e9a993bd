package frontend

import (
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/sapigen/internal/ast"
)

// lowerer turns the parse tree into an ast.Tree, binding type names to their
// declarations. Names it cannot bind become ast.Unresolved.
//
// Decl pointers returned by the tree are invalidated by Add, so they are
// never held across a call that may declare something.
type lowerer struct {
	tree   *ast.Tree
	scopes map[ast.DeclID]*scope
}

func newLowerer(tree *ast.Tree) *lowerer {
	return &lowerer{
		tree:   tree,
		scopes: make(map[ast.DeclID]*scope),
	}
}

func (l *lowerer) lowerFile(f *File) {
	l.lowerDecls(l.tree.Root(), f.Decls, false)
}

func (l *lowerer) lowerDecls(ctx ast.DeclID, decls []*Declaration, templated bool) {
	for _, d := range decls {
		l.lowerDecl(ctx, d, templated)
	}
}

func (l *lowerer) lowerDecl(ctx ast.DeclID, d *Declaration, templated bool) {
	if d == nil {
		return
	}
	switch {
	case d.Namespace != nil:
		l.lowerNamespace(ctx, d.Namespace)
	case d.Alias != nil:
		l.lowerNamespaceAlias(ctx, d.Alias)
	case d.Linkage != nil:
		l.lowerLinkage(ctx, d.Linkage)
	case d.Template != nil:
		l.lowerDecl(ctx, d.Template.Decl, true)
	case d.Typedef != nil:
		if !templated {
			l.lowerTypedef(ctx, d.Typedef)
		}
	case d.Using != nil:
		if !templated {
			l.lowerUsing(ctx, d.Using)
		}
	case d.Simple != nil:
		l.lowerSimple(ctx, d.Simple, templated)
	}
}

func (l *lowerer) lowerNamespace(ctx ast.DeclID, ns *Namespace) {
	if len(ns.Names) == 0 {
		ctx = l.openNamespace(ctx, "", ns.Inline, ns.Pos)
	}
	for i, name := range ns.Names {
		ctx = l.openNamespace(ctx, name, ns.Inline && i == len(ns.Names)-1, ns.Pos)
	}
	l.lowerDecls(ctx, ns.Decls, false)
}

// openNamespace returns the namespace name in ctx, creating it on first use.
// Reopened namespaces share a single declaration.
func (l *lowerer) openNamespace(ctx ast.DeclID, name string, inline bool, pos lexer.Position) ast.DeclID {
	if id, ok := l.scopeOf(ctx).namespaces[name]; ok {
		return id
	}
	id := l.tree.Add(ctx, ast.Decl{
		Kind:   ast.NamespaceDecl,
		Name:   name,
		Inline: inline,
		Loc:    location(pos),
	})
	l.declareNamespace(ctx, name, id)
	return id
}

func (l *lowerer) lowerNamespaceAlias(ctx ast.DeclID, alias *NamespaceAlias) {
	if alias.Target == nil {
		return
	}
	names := make([]string, len(alias.Target.Parts))
	for i, part := range alias.Target.Parts {
		names[i] = part.Name
	}
	if target, ok := l.resolveContainers(ctx, alias.Target.Global, names); ok {
		l.declareNamespace(ctx, alias.Name, target)
	}
}

func (l *lowerer) lowerLinkage(ctx ast.DeclID, link *Linkage) {
	language, err := strconv.Unquote(link.Language)
	if err != nil {
		language = link.Language
	}
	id := l.tree.Add(ctx, ast.Decl{
		Kind:     ast.LinkageSpecDecl,
		Language: language,
		Loc:      location(link.Pos),
	})
	if link.Single != nil {
		l.lowerDecl(id, link.Single, false)
		return
	}
	l.lowerDecls(id, link.Decls, false)
}

func (l *lowerer) lowerTypedef(ctx ast.DeclID, td *Typedef) {
	base := l.lowerSpec(ctx, td.Spec, false, false)
	for _, d := range td.Declarators {
		dd := l.declarator(ctx, base, d)
		if dd.name == nil || len(dd.name.Parts) != 1 {
			continue
		}
		l.addTypedef(ctx, dd.name.Parts[0].Name, dd.typ, false, dd.pos)
	}
}

func (l *lowerer) lowerUsing(ctx ast.DeclID, u *Using) {
	if u.Alias == "" || u.Spec == nil {
		return
	}
	q := l.lowerSpec(ctx, u.Spec, false, false)
	if u.Target != nil {
		q = l.declarator(ctx, q, u.Target).typ
	}
	l.addTypedef(ctx, u.Alias, q, true, u.Pos)
}

// addTypedef declares a typedef unless the same scope already has a typedef
// of that name, as happens with the implicit prelude
func (l *lowerer) addTypedef(ctx ast.DeclID, name string, q ast.QualType, alias bool, pos lexer.Position) {
	if existing, ok := l.find(ctx, name, lookupOrdinary); ok && l.tree.Decl(existing).Kind == ast.TypedefDecl {
		return
	}
	id := l.tree.Add(ctx, ast.Decl{
		Kind:       ast.TypedefDecl,
		Name:       name,
		Underlying: q,
		Alias:      alias,
		Loc:        location(pos),
	})
	l.declareOrdinary(ctx, name, id)
}

func (l *lowerer) lowerSimple(ctx ast.DeclID, s *SimpleDecl, templated bool) {
	if hasPrefix(s.Spec, "friend") {
		return
	}
	standalone := true
	for _, init := range s.Decls {
		if init != nil && !init.Decl.empty() {
			standalone = false
		}
	}
	base := l.lowerSpec(ctx, s.Spec, standalone, templated)
	inRecord := l.tree.Decl(ctx).Kind == ast.RecordDecl

	if standalone && inRecord && s.Spec != nil && s.Spec.Record != nil &&
		s.Spec.Record.Name == nil && s.Spec.Record.Body != nil {
		// anonymous struct or union member
		l.addField(ctx, ast.Field{Type: base})
		return
	}

	for _, init := range s.Decls {
		if init == nil || init.Decl.empty() {
			continue
		}
		dd := l.declarator(ctx, base, init.Decl)
		if dd.operator || dd.name == nil {
			continue
		}
		if proto, ok := dd.typ.Type.(ast.FunctionProto); ok && dd.params != nil {
			l.addFunction(ctx, dd, proto, templated)
			continue
		}
		if inRecord && !hasPrefix(s.Spec, "static") && len(dd.name.Parts) == 1 {
			l.addField(ctx, ast.Field{Name: dd.name.Parts[0].Name, Type: dd.typ})
		}
	}
}

func (l *lowerer) addFunction(ctx ast.DeclID, dd declarator, proto ast.FunctionProto, templated bool) {
	owner, ok := l.resolveContext(ctx, dd.name)
	if !ok {
		return
	}
	name := dd.name.Parts[len(dd.name.Parts)-1]
	if name.Tilde {
		return
	}

	kind := ast.FunctionDecl
	switch {
	case l.tree.Decl(owner).Kind == ast.RecordDecl:
		if owner != ctx {
			// out-of-line member definition
			return
		}
		kind = ast.MethodDecl
	case templated || name.Args != nil:
		kind = ast.FunctionTemplateDecl
	}

	l.tree.Add(owner, ast.Decl{
		Kind:     kind,
		Name:     name.Name,
		Result:   proto.Result,
		Params:   dd.params,
		Variadic: proto.Variadic,
		Loc:      location(dd.pos),
	})
}

func (l *lowerer) addField(record ast.DeclID, f ast.Field) {
	d := l.tree.Decl(record)
	d.Fields = append(d.Fields, f)
}

// declarator is the result of applying a Declarator to a base type
type declarator struct {
	name     *QualName
	operator bool
	typ      ast.QualType
	params   []ast.Param // parameters of the declarator naming the entity
	pos      lexer.Position
}

// declarator derives the declared type from base, inside out: pointer
// operators bind to the base first, then the function and array suffixes,
// and the result becomes the base of a nested declarator.
func (l *lowerer) declarator(ctx ast.DeclID, base ast.QualType, d *Declarator) declarator {
	t := base
	for _, p := range d.Ptrs {
		t = applyPtrOp(t, p)
	}

	var params []ast.Param
	if d.Params != nil {
		params = l.lowerParams(ctx, d.Params)
		types := make([]ast.QualType, len(params))
		for i, p := range params {
			types[i] = p.Type
		}
		t = ast.Q(ast.FunctionProto{Result: t, Params: types, Variadic: d.Params.Variadic})
	}
	for i := len(d.Arrays) - 1; i >= 0; i-- {
		t = ast.Q(ast.Array{Elem: t, Size: arrayText(d.Arrays[i].Size)})
	}

	if d.Nested != nil {
		return l.declarator(ctx, t, d.Nested)
	}

	result := declarator{
		name:     d.Name,
		operator: d.Operator != nil,
		typ:      t,
		pos:      d.Pos,
	}
	if d.Params != nil {
		result.params = params
		if result.params == nil {
			result.params = []ast.Param{}
		}
	}
	if d.Name != nil {
		result.pos = d.Name.Pos
	}
	return result
}

func applyPtrOp(t ast.QualType, p *PtrOp) ast.QualType {
	var q ast.QualType
	switch p.Op {
	case "&":
		q = ast.Q(ast.Reference{Pointee: t})
	case "&&":
		q = ast.Q(ast.Reference{Pointee: t, RValue: true})
	default:
		q = ast.Q(ast.Pointer{Pointee: t})
	}
	for _, qual := range p.Quals {
		switch qual {
		case "const":
			q.Const = true
		case "volatile":
			q.Volatile = true
		}
	}
	return q
}

// lowerParams lowers a parameter list. "(void)" declares no parameters;
// array and function parameters decay to pointers.
func (l *lowerer) lowerParams(ctx ast.DeclID, pl *ParamList) []ast.Param {
	if len(pl.Params) == 1 && isVoidParam(pl.Params[0]) {
		return nil
	}
	params := make([]ast.Param, 0, len(pl.Params))
	for _, pd := range pl.Params {
		if pd.empty() {
			continue
		}
		q := l.lowerSpec(ctx, pd.Spec, false, false)
		param := ast.Param{Loc: location(pd.Pos)}
		if !pd.Decl.empty() {
			dd := l.declarator(ctx, q, pd.Decl)
			q = dd.typ
			if dd.name != nil && len(dd.name.Parts) == 1 {
				param.Name = dd.name.Parts[0].Name
			}
		}
		param.Type = decay(q)
		params = append(params, param)
	}
	return params
}

func isVoidParam(pd *ParamDecl) bool {
	if pd == nil || !pd.Decl.empty() || pd.Spec == nil {
		return false
	}
	return len(pd.Spec.Builtin) == 1 && pd.Spec.Builtin[0] == "void"
}

func decay(q ast.QualType) ast.QualType {
	switch ty := q.Type.(type) {
	case ast.Array:
		return ast.Q(ast.Pointer{Pointee: ty.Elem})
	case ast.FunctionProto:
		return ast.Q(ast.Pointer{Pointee: q})
	}
	return q
}

// lowerSpec computes the base type of a DeclSpec. standalone is set when
// the specifier is not followed by any declarator, which turns "struct X;"
// into a declaration in the current scope.
func (l *lowerer) lowerSpec(ctx ast.DeclID, spec *DeclSpec, standalone, templated bool) ast.QualType {
	if spec == nil {
		return ast.Q(ast.Builtin{Kind: ast.Int})
	}

	var q ast.QualType
	switch {
	case len(spec.Builtin) > 0:
		q = ast.Q(builtinType(spec.Builtin))
	case spec.Record != nil:
		q = ast.Q(l.lowerRecordSpec(ctx, spec.Record, standalone, templated))
	case spec.Enum != nil:
		q = ast.Q(l.lowerEnumSpec(ctx, spec.Enum, standalone))
	case spec.Typeof != nil:
		q = ast.Q(ast.Unresolved{Name: spec.Typeof.Keyword + spec.Typeof.Expr.String()})
	case spec.Named != nil:
		q = ast.Q(l.namedType(ctx, spec.Named))
	default:
		q = ast.Q(ast.Builtin{Kind: ast.Int})
	}

	for _, word := range append(append([]string{}, spec.Prefix...), spec.Suffix...) {
		switch word {
		case "const":
			q.Const = true
		case "volatile":
			q.Volatile = true
		}
	}
	return q
}

// namedType binds a type name to its declaration
func (l *lowerer) namedType(ctx ast.DeclID, name *QualName) ast.Type {
	id, ok := l.resolve(ctx, name, lookupOrdinary)
	if !ok {
		return ast.Unresolved{Name: name.String()}
	}
	last := name.Parts[len(name.Parts)-1]
	switch l.tree.Decl(id).Kind {
	case ast.TypedefDecl:
		return ast.TypedefType{Decl: id}
	case ast.EnumDecl:
		return ast.EnumType{Decl: id}
	case ast.RecordDecl:
		args := ""
		if last.Args != nil {
			args = last.Args.String()
		}
		return ast.RecordType{Decl: id, Args: args}
	}
	return ast.Unresolved{Name: name.String()}
}

func (l *lowerer) lowerRecordSpec(ctx ast.DeclID, r *RecordSpec, standalone, templated bool) ast.Type {
	tag := tagKind(r.Tag)
	args := ""
	if r.Name != nil {
		if last := r.Name.Parts[len(r.Name.Parts)-1]; last.Args != nil {
			args = last.Args.String()
		}
	}

	if r.Body == nil {
		id, ok := l.referenceTag(ctx, r.Name, standalone, ast.Decl{
			Kind:      ast.RecordDecl,
			Tag:       tag,
			Templated: templated && standalone,
			Loc:       location(r.Pos),
		})
		if !ok {
			return ast.Unresolved{Name: r.Name.String()}
		}
		return ast.RecordType{Decl: id, Args: args}
	}

	id := l.defineTag(ctx, r.Name, ast.Decl{
		Kind: ast.RecordDecl,
		Tag:  tag,
		Loc:  location(r.Pos),
	})
	d := l.tree.Decl(id)
	d.Complete = true
	d.Tag = tag
	d.Templated = d.Templated || templated || args != ""
	if !d.Templated {
		l.lowerDecls(id, r.Body.Decls, false)
	}
	return ast.RecordType{Decl: id, Args: args}
}

func (l *lowerer) lowerEnumSpec(ctx ast.DeclID, e *EnumSpec, standalone bool) ast.Type {
	var base *ast.QualType
	if e.Base != nil {
		q := l.lowerSpec(ctx, e.Base, false, false)
		base = &q
	}

	proto := ast.Decl{
		Kind:        ast.EnumDecl,
		Scoped:      e.Scoped,
		IntegerType: base,
		Loc:         location(e.Pos),
	}
	if e.Body == nil {
		id, ok := l.referenceTag(ctx, e.Name, standalone, proto)
		if !ok {
			return ast.Unresolved{Name: e.Name.String()}
		}
		return ast.EnumType{Decl: id}
	}

	id := l.defineTag(ctx, e.Name, proto)
	enumerators := make([]ast.Enumerator, 0, len(e.Body.Items))
	for _, item := range e.Body.Items {
		if item == nil {
			continue
		}
		enumerators = append(enumerators, ast.Enumerator{Name: item.Name, Value: exprText(item.Value)})
	}
	d := l.tree.Decl(id)
	d.Complete = true
	d.Enumerators = enumerators
	if base != nil {
		d.IntegerType = base
	}
	return ast.EnumType{Decl: id}
}

// referenceTag handles "struct X" without a body. A standalone forward
// declaration binds in the current scope; an elaborated type specifier binds
// to any visible declaration or else declares X in the enclosing namespace.
// Qualified names that do not resolve are reported as not found.
func (l *lowerer) referenceTag(ctx ast.DeclID, name *QualName, standalone bool, proto ast.Decl) (ast.DeclID, bool) {
	if name == nil {
		return l.tree.Add(ctx, proto), true
	}
	if standalone && len(name.Parts) == 1 {
		if id, ok := l.find(ctx, name.Parts[0].Name, lookupTag); ok {
			return id, true
		}
		return l.addTag(ctx, name.Parts[0].Name, proto), true
	}
	if id, ok := l.resolve(ctx, name, lookupTag); ok {
		return id, true
	}
	if len(name.Parts) != 1 {
		return ast.NoDecl, false
	}
	return l.addTag(l.enclosingNamespace(ctx), name.Parts[0].Name, proto), true
}

// defineTag returns the declaration a definition completes: a prior
// incomplete declaration of the same name in the defining scope, or a new one
func (l *lowerer) defineTag(ctx ast.DeclID, name *QualName, proto ast.Decl) ast.DeclID {
	if name == nil {
		return l.tree.Add(ctx, proto)
	}
	owner := ctx
	if len(name.Parts) > 1 {
		if id, ok := l.resolveContext(ctx, name); ok {
			owner = id
		}
	}
	simple := name.Parts[len(name.Parts)-1].Name
	if id, ok := l.find(owner, simple, lookupTag); ok {
		if existing := l.tree.Decl(id); !existing.Complete && existing.Kind == proto.Kind {
			return id
		}
	}
	return l.addTag(owner, simple, proto)
}

func (l *lowerer) addTag(ctx ast.DeclID, name string, proto ast.Decl) ast.DeclID {
	proto.Name = name
	id := l.tree.Add(ctx, proto)
	l.declareTag(ctx, name, id)
	return id
}

func tagKind(tag string) ast.TagKind {
	switch tag {
	case "class":
		return ast.TagClass
	case "union":
		return ast.TagUnion
	default:
		return ast.TagStruct
	}
}

// builtinType combines fundamental type keywords, e.g. "long unsigned int"
func builtinType(words []string) ast.Type {
	var (
		unsigned, signed bool
		longs            int
		kind             = ast.Int
		explicit         bool
	)
	for _, w := range words {
		switch w {
		case "unsigned":
			unsigned = true
		case "signed", "__signed", "__signed__":
			signed = true
		case "long":
			longs++
		case "short":
			kind, explicit = ast.Short, true
		case "int":
		case "char":
			kind, explicit = ast.Char, true
		case "char8_t":
			kind, explicit = ast.UChar, true
		case "void":
			return ast.Builtin{Kind: ast.Void}
		case "bool", "_Bool":
			return ast.Builtin{Kind: ast.Bool}
		case "wchar_t":
			return ast.Builtin{Kind: ast.WChar}
		case "char16_t":
			return ast.Builtin{Kind: ast.Char16}
		case "char32_t":
			return ast.Builtin{Kind: ast.Char32}
		case "float":
			return ast.Builtin{Kind: ast.Float}
		case "double":
			kind, explicit = ast.Double, true
		case "__int128":
			kind, explicit = ast.Int128, true
		case "auto":
			return ast.Unresolved{Name: "auto"}
		}
	}

	switch {
	case explicit && kind == ast.Double:
		if longs > 0 {
			return ast.Builtin{Kind: ast.LongDouble}
		}
		return ast.Builtin{Kind: ast.Double}
	case explicit && kind == ast.Char:
		switch {
		case unsigned:
			return ast.Builtin{Kind: ast.UChar}
		case signed:
			return ast.Builtin{Kind: ast.SChar}
		}
		return ast.Builtin{Kind: ast.Char}
	case explicit && kind == ast.Short:
		if unsigned {
			return ast.Builtin{Kind: ast.UShort}
		}
		return ast.Builtin{Kind: ast.Short}
	case explicit && kind == ast.Int128:
		if unsigned {
			return ast.Builtin{Kind: ast.UInt128}
		}
		return ast.Builtin{Kind: ast.Int128}
	case explicit:
		return ast.Builtin{Kind: kind}
	case longs >= 2:
		if unsigned {
			return ast.Builtin{Kind: ast.ULongLong}
		}
		return ast.Builtin{Kind: ast.LongLong}
	case longs == 1:
		if unsigned {
			return ast.Builtin{Kind: ast.ULong}
		}
		return ast.Builtin{Kind: ast.Long}
	case unsigned:
		return ast.Builtin{Kind: ast.UInt}
	}
	return ast.Builtin{Kind: ast.Int}
}

func hasPrefix(spec *DeclSpec, word string) bool {
	if spec == nil {
		return false
	}
	for _, w := range spec.Prefix {
		if w == word {
			return true
		}
	}
	return false
}

func location(pos lexer.Position) ast.SourceLocation {
	return ast.SourceLocation{File: pos.Filename, Line: pos.Line, Column: pos.Column}
}
