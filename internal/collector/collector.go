// Package collector walks a declaration tree, selects the free functions to
// proxy and computes the closure of the types their signatures reference.
package collector

import (
	"fmt"
	"strings"

	"github.com/toyz/sapigen/internal/ast"
	"github.com/toyz/sapigen/internal/errors"
	"github.com/toyz/sapigen/internal/models"
)

// Collector implements the DeclarationCollector interface
type Collector struct {
	allow      map[string]bool
	extraRoots []string
}

// New creates a collector for the allowlist and namespace filters in opts.
// An empty allowlist selects every free function.
func New(opts *models.GeneratorOptions) *Collector {
	c := &Collector{allow: make(map[string]bool)}
	if opts == nil {
		return c
	}
	for _, name := range opts.FunctionNames {
		if name = normalizeName(name); name != "" {
			c.allow[name] = true
		}
	}
	c.extraRoots = append(c.extraRoots, opts.FilteredNamespaces...)
	return c
}

// Collect walks tree in declaration order. Functions that fail to collect
// are left out of the collection and reported together as a
// *errors.MultipleErrors; the remaining functions are still collected.
func (c *Collector) Collect(tree *ast.Tree) (*models.Collection, error) {
	collection := models.NewCollection(c.extraRoots...)
	var multi *errors.MultipleErrors

	tree.Walk(tree.Root(), func(id ast.DeclID) bool {
		d := tree.Decl(id)
		switch d.Kind {
		case ast.RecordDecl, ast.FunctionTemplateDecl, ast.MethodDecl:
			// members and templates are never proxied
			return false
		case ast.FunctionDecl:
			if tree.IsFreeFunction(id) && c.selects(tree, id) {
				if err := c.collectFunction(tree, id, collection); err != nil {
					errors.AddToMultiple(&multi, err)
				}
			}
			return false
		}
		return true
	})

	return collection, multi.ErrorOrNil()
}

// selects reports whether the allowlist names the function, by plain or
// qualified name
func (c *Collector) selects(tree *ast.Tree, id ast.DeclID) bool {
	if len(c.allow) == 0 {
		return true
	}
	return c.allow[tree.Decl(id).Name] ||
		c.allow[tree.QualifiedName(id)] ||
		c.allow[tree.SpelledName(id)]
}

// collectFunction describes one function. Its types go into a scratch set
// first and reach the collection only if the whole signature collected.
func (c *Collector) collectFunction(tree *ast.Tree, id ast.DeclID, collection *models.Collection) errors.SapiError {
	d := tree.Decl(id)
	qualified := tree.QualifiedName(id)
	if collection.HasFunction(qualified) {
		// redeclaration, the first one wins
		return nil
	}

	g := newGatherer(tree, models.NewTypeSet(c.extraRoots...))
	fd := models.FunctionDescriptor{
		Tree:          tree,
		Decl:          id,
		QualifiedName: qualified,
		Name:          d.Name,
		Variadic:      d.Variadic,
		Location:      d.Loc,
	}

	var err errors.SapiError
	if fd.Return, err = g.describe(d.Result); err != nil {
		return withFunction(err, qualified, d.Loc)
	}
	for i, p := range d.Params {
		td, err := g.describe(p.Type)
		if err != nil {
			return withFunction(err, qualified, d.Loc)
		}
		fd.Params = append(fd.Params, models.Parameter{Type: td, Name: p.Name, Index: i})
	}

	collection.AddFunction(fd)
	collection.Types.Merge(g.types)
	return nil
}

// Unmatched returns the allowlist entries that name none of the collected
// functions
func Unmatched(names []string, collection *models.Collection) []string {
	found := make(map[string]bool)
	for _, fd := range collection.Functions {
		found[fd.Name] = true
		found[fd.QualifiedName] = true
		found[strings.ReplaceAll(fd.QualifiedName, "(anonymous namespace)::", "")] = true
	}
	var missing []string
	for _, name := range names {
		if n := normalizeName(name); n != "" && !found[n] {
			missing = append(missing, name)
		}
	}
	return missing
}

// NamespacePath returns the namespaces enclosing id, outer to inner.
// Anonymous namespaces are empty segments and linkage specifications are
// skipped. Any other enclosing context is returned as the offending one.
func NamespacePath(tree *ast.Tree, id ast.DeclID) ([]string, ast.DeclID, bool) {
	var path []string
	for ctx := tree.Parent(id); ctx != ast.NoDecl; ctx = tree.Parent(ctx) {
		d := tree.Decl(ctx)
		switch d.Kind {
		case ast.NamespaceDecl:
			path = append(path, d.Name)
		case ast.LinkageSpecDecl:
		case ast.TranslationUnitDecl:
			reverse(path)
			return path, ast.NoDecl, true
		default:
			return nil, ctx, false
		}
	}
	reverse(path)
	return path, ast.NoDecl, true
}

func withFunction(err errors.SapiError, function string, loc ast.SourceLocation) errors.SapiError {
	base, ok := err.(*errors.BaseError)
	if !ok {
		return err
	}
	base = base.WithContext("function_name", function)
	if base.Location().IsEmpty() {
		base = base.WithLocation(errors.SourceLocation{File: loc.File, Line: loc.Line, Column: loc.Column})
	}
	return base
}

func describeContext(tree *ast.Tree, ctx ast.DeclID) string {
	d := tree.Decl(ctx)
	name := tree.QualifiedName(ctx)
	if d.IsAnonymous() {
		name = "(anonymous)"
	}
	return fmt.Sprintf("%s '%s'", strings.ToLower(d.Kind.String()), name)
}

func normalizeName(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "::")
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
