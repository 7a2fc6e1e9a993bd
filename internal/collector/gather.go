package collector

import (
	"github.com/toyz/sapigen/internal/ast"
	"github.com/toyz/sapigen/internal/errors"
	"github.com/toyz/sapigen/internal/models"
)

// gatherer computes the type closure of one function signature
type gatherer struct {
	tree  *ast.Tree
	types *models.TypeSet
	seen  map[ast.DeclID]bool
}

func newGatherer(tree *ast.Tree, types *models.TypeSet) *gatherer {
	return &gatherer{
		tree:  tree,
		types: types,
		seen:  make(map[ast.DeclID]bool),
	}
}

// describe builds the descriptor of a signature type and gathers the types
// it depends on. The named type must live in a namespace.
func (g *gatherer) describe(q ast.QualType) (models.TypeDescriptor, errors.SapiError) {
	td := models.TypeDescriptor{
		Tree:     g.tree,
		QualType: q,
		Spelling: g.tree.Spell(q),
		Decl:     ast.NamedDecl(q),
		Passing:  passing(g.tree, q),
	}
	if td.Decl == ast.NoDecl {
		td.Kind = models.TypeKindOther
		td.QualifiedName = td.Spelling
		g.gatherType(q)
		return td, nil
	}

	ns, ctx, ok := NamespacePath(g.tree, td.Decl)
	if !ok {
		return td, errors.NewUnresolvedDeclContext(g.tree.QualifiedName(td.Decl), describeContext(g.tree, ctx))
	}
	td.Kind = kindOf(g.tree.Decl(td.Decl).Kind)
	td.QualifiedName = g.tree.QualifiedName(td.Decl)
	td.Namespace = ns

	g.gatherType(q)
	return td, nil
}

// gatherType visits every declaration q mentions
func (g *gatherer) gatherType(q ast.QualType) {
	switch ty := q.Type.(type) {
	case ast.Pointer:
		g.gatherType(ty.Pointee)
	case ast.Reference:
		g.gatherType(ty.Pointee)
	case ast.Array:
		g.gatherType(ty.Elem)
	case ast.FunctionProto:
		g.gatherType(ty.Result)
		for _, p := range ty.Params {
			g.gatherType(p)
		}
	case ast.TypedefType:
		g.gather(ty.Decl)
	case ast.EnumType:
		g.gather(ty.Decl)
	case ast.RecordType:
		g.gather(ty.Decl)
	case ast.Builtin, ast.Unresolved, nil:
	}
}

// gather adds the declaration id after everything it depends on, so that
// dependencies are declared first. Types that cannot be named from a
// namespace are left to their enclosing declaration.
func (g *gatherer) gather(id ast.DeclID) {
	if g.seen[id] {
		return
	}
	g.seen[id] = true

	d := g.tree.Decl(id)
	if d.Implicit {
		return
	}
	ns, _, ok := NamespacePath(g.tree, id)
	if !ok || g.types.IsFiltered(ns) {
		return
	}

	switch d.Kind {
	case ast.TypedefDecl:
		g.gatherType(d.Underlying)
	case ast.EnumDecl:
		if d.IntegerType != nil {
			g.gatherType(*d.IntegerType)
		}
	case ast.RecordDecl:
		if d.Templated {
			return
		}
		for _, f := range d.Fields {
			g.gatherType(f.Type)
		}
	default:
		return
	}

	if d.IsAnonymous() {
		// printed inline by the typedef naming it
		return
	}
	g.types.Add(g.descriptorOf(id, ns))
}

func (g *gatherer) descriptorOf(id ast.DeclID, ns []string) models.TypeDescriptor {
	var q ast.QualType
	switch g.tree.Decl(id).Kind {
	case ast.TypedefDecl:
		q = ast.Q(ast.TypedefType{Decl: id})
	case ast.EnumDecl:
		q = ast.Q(ast.EnumType{Decl: id})
	default:
		q = ast.Q(ast.RecordType{Decl: id})
	}
	return models.TypeDescriptor{
		Tree:          g.tree,
		QualType:      q,
		Spelling:      g.tree.Spell(q),
		Kind:          kindOf(g.tree.Decl(id).Kind),
		Decl:          id,
		QualifiedName: g.tree.QualifiedName(id),
		Namespace:     ns,
		Passing:       models.PassValue,
	}
}

func kindOf(k ast.DeclKind) models.TypeKind {
	switch k {
	case ast.TypedefDecl:
		return models.TypeKindTypedef
	case ast.EnumDecl:
		return models.TypeKindEnum
	case ast.RecordDecl:
		return models.TypeKindRecord
	default:
		return models.TypeKindOther
	}
}

func passing(tree *ast.Tree, q ast.QualType) models.Passing {
	switch {
	case tree.IsPointer(q):
		return models.PassPointer
	case tree.IsReference(q):
		return models.PassReference
	default:
		return models.PassValue
	}
}
