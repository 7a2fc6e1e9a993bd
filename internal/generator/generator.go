// Package generator runs one generation pass: collect the selected
// functions from a declaration tree, map them and emit the proxy header.
package generator

import (
	"github.com/toyz/sapigen/internal/ast"
	"github.com/toyz/sapigen/internal/collector"
	"github.com/toyz/sapigen/internal/emitter"
	"github.com/toyz/sapigen/internal/errors"
	"github.com/toyz/sapigen/internal/models"
	"github.com/toyz/sapigen/internal/typemap"
)

// Generator implements the HeaderGenerator interface
type Generator struct {
	opts      *models.GeneratorOptions
	collector collector.DeclarationCollector
	mapper    *typemap.Mapper
	emitter   *emitter.Emitter
	setupErr  error
}

// New creates a generator for opts. Invalid options are reported by the
// first call that needs them.
func New(opts *models.GeneratorOptions) *Generator {
	if opts == nil {
		opts = &models.GeneratorOptions{}
	}
	g := &Generator{
		opts:      opts,
		collector: collector.New(opts),
	}

	var multi *errors.MultipleErrors
	if err := opts.Validate(); err != nil {
		merge(&multi, err)
	}
	mapper, err := typemap.FromOptions(opts)
	if err != nil {
		merge(&multi, err)
		mapper = typemap.New(nil)
	}
	g.mapper = mapper
	g.emitter = emitter.New(opts, mapper)
	g.setupErr = multi.ErrorOrNil()
	return g
}

// WithGuardSource replaces the source of the fallback include guard
func (g *Generator) WithGuardSource(source emitter.GuardSource) *Generator {
	g.emitter.WithGuardSource(source)
	return g
}

// Err returns the option errors found by New, if any
func (g *Generator) Err() error {
	return g.setupErr
}

// Wrappers returns the builtin types the pass can box, configured ones
// included
func (g *Generator) Wrappers() []string {
	return g.mapper.Wrappers()
}

// Options returns the options of the pass
func (g *Generator) Options() *models.GeneratorOptions {
	return g.opts
}

// Collect selects the functions of one translation unit. The collection
// holds every function that collected, even when others failed.
func (g *Generator) Collect(tree *ast.Tree) (*models.Collection, error) {
	if g.setupErr != nil {
		return models.NewCollection(g.opts.FilteredNamespaces...), g.setupErr
	}
	return g.collector.Collect(tree)
}

// Emit maps the collection and renders the header
func (g *Generator) Emit(collection *models.Collection) (string, error) {
	if g.setupErr != nil {
		return "", g.setupErr
	}
	return g.emitter.Emit(collection)
}

// Generate runs a full pass over tree. Collection and mapping errors of all
// functions are reported together; if there is any, no header is returned.
func (g *Generator) Generate(tree *ast.Tree) (string, error) {
	if g.setupErr != nil {
		return "", g.setupErr
	}

	var multi *errors.MultipleErrors
	collection, err := g.collector.Collect(tree)
	if err != nil {
		merge(&multi, err)
	}

	stubs, err := g.emitter.MapFunctions(collection.Functions)
	if err != nil {
		merge(&multi, err)
	}
	if err := multi.ErrorOrNil(); err != nil {
		return "", err
	}

	return g.emitter.EmitHeader(collection.Types, stubs)
}

// merge adds err to multi, flattening aggregated errors
func merge(multi **errors.MultipleErrors, err error) {
	if *multi == nil {
		*multi = errors.NewMultipleErrors()
	}
	(*multi).Merge(err)
}
