package frontend

import "github.com/toyz/sapigen/internal/ast"

// scope holds the names declared directly in one declaration context
type scope struct {
	// ordinary names: typedefs, and records or enums not hidden by a typedef
	ordinary map[string]ast.DeclID
	// tags: records and enums, as named by "struct X" or "enum X"
	tags map[string]ast.DeclID
	// namespaces, including anonymous ones under the empty name
	namespaces map[string]ast.DeclID
}

func newScope() *scope {
	return &scope{
		ordinary:   make(map[string]ast.DeclID),
		tags:       make(map[string]ast.DeclID),
		namespaces: make(map[string]ast.DeclID),
	}
}

// scopeOf returns the scope names declared in ctx belong to. Linkage
// specifications do not open a scope of their own.
func (l *lowerer) scopeOf(ctx ast.DeclID) *scope {
	for l.tree.Decl(ctx).Kind == ast.LinkageSpecDecl {
		ctx = l.tree.Parent(ctx)
	}
	s, ok := l.scopes[ctx]
	if !ok {
		s = newScope()
		l.scopes[ctx] = s
	}
	return s
}

// transparent reports whether names declared in ctx are also visible in the
// enclosing scope: anonymous and inline namespaces, and linkage blocks
func (l *lowerer) transparent(ctx ast.DeclID) bool {
	d := l.tree.Decl(ctx)
	switch d.Kind {
	case ast.LinkageSpecDecl:
		return true
	case ast.NamespaceDecl:
		return d.IsAnonymous() || d.Inline
	}
	return false
}

// visibleScopes returns ctx's scope followed by the enclosing scopes its
// names leak into
func (l *lowerer) visibleScopes(ctx ast.DeclID) []*scope {
	scopes := []*scope{l.scopeOf(ctx)}
	for l.transparent(ctx) && l.tree.Parent(ctx) != ast.NoDecl {
		ctx = l.tree.Parent(ctx)
		s := l.scopeOf(ctx)
		if s != scopes[len(scopes)-1] {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

func (l *lowerer) declareOrdinary(ctx ast.DeclID, name string, id ast.DeclID) {
	for _, s := range l.visibleScopes(ctx) {
		s.ordinary[name] = id
	}
}

// declareTag registers a record or enum. Its name is also an ordinary name
// unless a typedef of the same name already took it.
func (l *lowerer) declareTag(ctx ast.DeclID, name string, id ast.DeclID) {
	for _, s := range l.visibleScopes(ctx) {
		s.tags[name] = id
		if existing, ok := s.ordinary[name]; !ok || l.tree.Decl(existing).Kind != ast.TypedefDecl {
			s.ordinary[name] = id
		}
	}
}

func (l *lowerer) declareNamespace(ctx ast.DeclID, name string, id ast.DeclID) {
	l.scopeOf(ctx).namespaces[name] = id
	if name == "" {
		return
	}
	for _, s := range l.visibleScopes(ctx)[1:] {
		s.namespaces[name] = id
	}
}

// lookupKind selects which names a lookup considers
type lookupKind int

const (
	lookupOrdinary lookupKind = iota
	lookupTag
)

// find looks name up in the scope of ctx only
func (l *lowerer) find(ctx ast.DeclID, name string, kind lookupKind) (ast.DeclID, bool) {
	s := l.scopeOf(ctx)
	if kind == lookupTag {
		id, ok := s.tags[name]
		return id, ok
	}
	id, ok := s.ordinary[name]
	return id, ok
}

// findContainer looks up a namespace or a record that may contain further
// names, as named by a qualifier
func (l *lowerer) findContainer(ctx ast.DeclID, name string) (ast.DeclID, bool) {
	s := l.scopeOf(ctx)
	if id, ok := s.namespaces[name]; ok {
		return id, true
	}
	if id, ok := s.tags[name]; ok && l.tree.Decl(id).Kind == ast.RecordDecl {
		return id, true
	}
	if id, ok := s.ordinary[name]; ok {
		// typedef struct {...} T; T::member
		if td := l.tree.Decl(id); td.Kind == ast.TypedefDecl {
			if rec, ok := td.Underlying.Type.(ast.RecordType); ok {
				return rec.Decl, true
			}
		}
	}
	return ast.NoDecl, false
}

// resolve looks up a possibly qualified name from ctx outward
func (l *lowerer) resolve(ctx ast.DeclID, q *QualName, kind lookupKind) (ast.DeclID, bool) {
	if q == nil || len(q.Parts) == 0 {
		return ast.NoDecl, false
	}
	names := make([]string, len(q.Parts))
	for i, part := range q.Parts {
		names[i] = part.Name
	}

	if q.Global {
		return l.resolveIn(l.tree.Root(), names, kind)
	}
	for c := ctx; c != ast.NoDecl; c = l.tree.Parent(c) {
		if id, ok := l.resolveIn(c, names, kind); ok {
			return id, true
		}
	}
	return ast.NoDecl, false
}

// resolveIn resolves names starting at the scope of ctx, descending through
// namespaces and records for every qualifier
func (l *lowerer) resolveIn(ctx ast.DeclID, names []string, kind lookupKind) (ast.DeclID, bool) {
	for _, qualifier := range names[:len(names)-1] {
		next, ok := l.findContainer(ctx, qualifier)
		if !ok {
			return ast.NoDecl, false
		}
		ctx = next
	}
	return l.find(ctx, names[len(names)-1], kind)
}

// resolveContext resolves the qualifier of a qualified declarator name,
// e.g. "ns" in "void ns::f()"
func (l *lowerer) resolveContext(ctx ast.DeclID, q *QualName) (ast.DeclID, bool) {
	if len(q.Parts) < 2 {
		return ctx, true
	}
	names := make([]string, 0, len(q.Parts)-1)
	for _, part := range q.Parts[:len(q.Parts)-1] {
		names = append(names, part.Name)
	}
	return l.resolveContainers(ctx, q.Global, names)
}

// resolveContainers resolves a chain of namespace or record names, looking
// up the first one from ctx outward
func (l *lowerer) resolveContainers(ctx ast.DeclID, global bool, names []string) (ast.DeclID, bool) {
	if len(names) == 0 {
		return ast.NoDecl, false
	}
	start := ast.NoDecl
	if global {
		if id, ok := l.findContainer(l.tree.Root(), names[0]); ok {
			start = id
		}
	} else {
		for c := ctx; c != ast.NoDecl && start == ast.NoDecl; c = l.tree.Parent(c) {
			if id, ok := l.findContainer(c, names[0]); ok {
				start = id
			}
		}
	}
	if start == ast.NoDecl {
		return ast.NoDecl, false
	}
	for _, name := range names[1:] {
		next, ok := l.findContainer(start, name)
		if !ok {
			return ast.NoDecl, false
		}
		start = next
	}
	return start, true
}

// enclosingNamespace returns the nearest namespace or translation unit
// containing ctx, where C++ places implicitly declared records
func (l *lowerer) enclosingNamespace(ctx ast.DeclID) ast.DeclID {
	for c := ctx; c != ast.NoDecl; c = l.tree.Parent(c) {
		switch l.tree.Decl(c).Kind {
		case ast.NamespaceDecl, ast.TranslationUnitDecl:
			return c
		}
	}
	return l.tree.Root()
}
