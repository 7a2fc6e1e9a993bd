// Package templates holds the C++ text snippets the emitter assembles a
// proxy header from.
package templates

import (
	"bytes"
	"fmt"
	"sync"
	"text/template"

	"github.com/toyz/sapigen/internal/errors"
)

// EmbedIncludeData fills the embed include snippet
type EmbedIncludeData struct {
	Path string // "<embed_dir>/<embed_name>" with forward slashes
}

// ClassData fills the class snippets
type ClassData struct {
	ClassName string
	EmbedID   string // embed name as a C identifier, embed class only
}

var (
	defaultRegistry     *TemplateRegistry
	defaultRegistryOnce sync.Once
)

// Default returns the shared registry
func Default() *TemplateRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewTemplateRegistry()
	})
	return defaultRegistry
}

// Execute renders the named template with data
func (tr *TemplateRegistry) Execute(name string, data interface{}) (string, error) {
	tmpl, err := tr.lookup(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.WrapTemplateError(name, "execute", err)
	}
	return buf.String(), nil
}

// lookup parses a template on first use and caches it
func (tr *TemplateRegistry) lookup(name string) (*template.Template, error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if tmpl, ok := tr.parsed[name]; ok {
		return tmpl, nil
	}
	text, ok := tr.Get(name)
	if !ok {
		return nil, errors.WrapTemplateError(name, "find", fmt.Errorf("template %s is not registered", name))
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, errors.WrapTemplateError(name, "parse", err)
	}
	tr.parsed[name] = tmpl
	return tmpl, nil
}
