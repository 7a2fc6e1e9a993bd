// Package emitter assembles the proxy header from a collection of functions
// and the types they depend on.
package emitter

import (
	"slices"
	"strings"

	"github.com/toyz/sapigen/internal/ast"
	"github.com/toyz/sapigen/internal/errors"
	"github.com/toyz/sapigen/internal/models"
	"github.com/toyz/sapigen/internal/templates"
	"github.com/toyz/sapigen/internal/typemap"
)

const typesComment = "// Types this API depends on\n"

// Emitter implements the HeaderEmitter interface
type Emitter struct {
	opts      *models.GeneratorOptions
	mapper    typemap.TypeMapper
	templates *templates.TemplateRegistry
	guard     GuardSource
}

// New creates an emitter for opts. The fallback include guard is seeded
// from opts.GuardSeed when set and random otherwise.
func New(opts *models.GeneratorOptions, mapper typemap.TypeMapper) *Emitter {
	if opts == nil {
		opts = &models.GeneratorOptions{}
	}
	if mapper == nil {
		mapper = typemap.New(nil)
	}
	e := &Emitter{
		opts:      opts,
		mapper:    mapper,
		templates: templates.Default(),
		guard:     RandomGuard,
	}
	if opts.GuardSeed != "" {
		e.guard = SeededGuard(opts.GuardSeed)
	}
	return e
}

// WithGuardSource replaces the source of the fallback include guard
func (e *Emitter) WithGuardSource(source GuardSource) *Emitter {
	e.guard = source
	return e
}

// Guard returns the include guard of the header
func (e *Emitter) Guard() string {
	return IncludeGuard(e.opts.OutFile, e.guard)
}

// Emit maps every collected function and assembles the header. A function
// that fails to map does not stop the others from being mapped, but any
// failure yields no header.
func (e *Emitter) Emit(collection *models.Collection) (string, error) {
	stubs, err := e.MapFunctions(collection.Functions)
	if err != nil {
		return "", err
	}
	return e.EmitHeader(collection.Types, stubs)
}

// MapFunctions maps functions in order and aggregates their errors
func (e *Emitter) MapFunctions(functions []models.FunctionDescriptor) ([]*models.ProxyStub, error) {
	var multi *errors.MultipleErrors
	stubs := make([]*models.ProxyStub, 0, len(functions))

	for i := range functions {
		stub, err := e.mapper.MapFunction(&functions[i])
		if err != nil {
			addError(&multi, err)
			continue
		}
		stubs = append(stubs, stub)
	}

	if err := multi.ErrorOrNil(); err != nil {
		return nil, err
	}
	return stubs, nil
}

// EmitHeader assembles the header from already mapped stubs
func (e *Emitter) EmitHeader(types *models.TypeSet, stubs []*models.ProxyStub) (string, error) {
	var b Builder

	if err := e.execute(&b, templates.NoticeTemplate, nil); err != nil {
		return "", err
	}
	err := b.Guard(e.Guard(), func() error {
		if err := e.execute(&b, templates.IncludesTemplate, nil); err != nil {
			return err
		}
		if e.opts.HasEmbed() {
			data := templates.EmbedIncludeData{Path: e.embedIncludePath()}
			if err := e.execute(&b, templates.EmbedIncludeTemplate, data); err != nil {
				return err
			}
		}

		return b.Namespace(strings.Join(e.opts.NamespaceSegments(), "::"), func() error {
			e.writeTypes(&b, types)
			if e.opts.HasEmbed() {
				data := templates.ClassData{
					ClassName: e.opts.Name + "Sandbox",
					EmbedID:   strings.ReplaceAll(e.opts.EmbedName, "-", "_"),
				}
				if err := e.execute(&b, templates.EmbedClassTemplate, data); err != nil {
					return err
				}
			}
			return e.writeAPIClass(&b, stubs)
		})
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func (e *Emitter) writeAPIClass(b *Builder, stubs []*models.ProxyStub) error {
	data := templates.ClassData{ClassName: e.opts.Name + "Api"}
	if err := e.execute(b, templates.APIClassHeaderTemplate, data); err != nil {
		return err
	}
	for _, stub := range stubs {
		if err := e.execute(b, templates.FunctionStubTemplate, stub); err != nil {
			return err
		}
	}
	return e.execute(b, templates.APIClassFooterTemplate, nil)
}

// writeTypes writes the forward declarations. Consecutive types in the same
// namespace share one namespace block.
func (e *Emitter) writeTypes(b *Builder, types *models.TypeSet) {
	if types == nil || types.Len() == 0 {
		return
	}
	all := types.All()

	b.WriteString("\n" + typesComment)
	for start := 0; start < len(all); {
		end := start + 1
		for end < len(all) && slices.Equal(all[end].Namespace, all[start].Namespace) {
			end++
		}
		group := all[start:end]
		_ = b.NamespacePath(group[0].Namespace, func() error {
			for _, td := range group {
				b.WriteString(Declaration(td) + ";\n")
			}
			return nil
		})
		start = end
	}
}

// Declaration returns the source declaring td inside its namespace. Records
// are forward-declared, typedefs and enums are re-serialized in full.
func Declaration(td models.TypeDescriptor) string {
	d := td.Tree.Decl(td.Decl)
	if d.Kind == ast.RecordDecl {
		return d.Tag.String() + " " + d.Name
	}
	return td.Tree.PrintDecl(td.Decl)
}

// embedIncludePath joins the embed directory and name with forward slashes
func (e *Emitter) embedIncludePath() string {
	dir := strings.TrimSuffix(strings.ReplaceAll(e.opts.EmbedDir, `\`, "/"), "/")
	if dir == "" {
		return e.opts.EmbedName
	}
	return dir + "/" + e.opts.EmbedName
}

func (e *Emitter) execute(b *Builder, name string, data interface{}) error {
	out, err := e.templates.Execute(name, data)
	if err != nil {
		return err
	}
	b.WriteString(out)
	return nil
}

func addError(multi **errors.MultipleErrors, err error) {
	if *multi == nil {
		*multi = errors.NewMultipleErrors()
	}
	(*multi).Merge(err)
}
