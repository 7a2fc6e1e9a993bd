package templates

import (
	"sync"
	"text/template"
)

// Snippet names
const (
	NoticeTemplate         = "notice"
	IncludesTemplate       = "includes"
	EmbedIncludeTemplate   = "embed-include"
	EmbedClassTemplate     = "embed-class"
	APIClassHeaderTemplate = "api-class-header"
	APIClassFooterTemplate = "api-class-footer"
	FunctionStubTemplate   = "function-stub"
)

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
	parsed    map[string]*template.Template
	mu        sync.Mutex
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
		parsed:    make(map[string]*template.Template),
	}

	registry.registerPrologTemplates()
	registry.registerClassTemplates()
	registry.registerFunctionTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	text, exists := tr.templates[name]
	return text, exists
}

// registerPrologTemplates registers the header notice and includes
func (tr *TemplateRegistry) registerPrologTemplates() {
	tr.templates[NoticeTemplate] = `// AUTO-GENERATED by the Sandboxed API generator.
// Edits will be discarded when regenerating this file.

`

	tr.templates[IncludesTemplate] = `#include <cstdint>
#include <type_traits>

#include "absl/base/macros.h"
#include "absl/status/status.h"
#include "absl/status/statusor.h"
#include "sandboxed_api/sandbox.h"
#include "sandboxed_api/util/status_macros.h"
#include "sandboxed_api/vars.h"
`

	// Include paths use forward slashes on every platform
	tr.templates[EmbedIncludeTemplate] = `
#include "{{.Path}}_embed.h"
`
}

// registerClassTemplates registers the sandbox and API class scaffolding
func (tr *TemplateRegistry) registerClassTemplates() {
	tr.templates[EmbedClassTemplate] = `
// Sandbox with embedded sandboxee and default policy
class {{.ClassName}} : public ::sapi::Sandbox {
 public:
  {{.ClassName}}() : ::sapi::Sandbox({{.EmbedID}}_embed_create()) {}
};
`

	tr.templates[APIClassHeaderTemplate] = `
// Sandboxed API
class {{.ClassName}} {
 public:
  explicit {{.ClassName}}(::sapi::Sandbox* sandbox) : sandbox_(sandbox) {}

  ABSL_DEPRECATED("Call sandbox() instead")
  ::sapi::Sandbox* GetSandbox() const { return sandbox(); }
  ::sapi::Sandbox* sandbox() const { return sandbox_; }
`

	tr.templates[APIClassFooterTemplate] = `
 private:
  ::sapi::Sandbox* sandbox_;
};
`
}

// registerFunctionTemplates registers the proxy method body. Value
// arguments are boxed into their wrappers, pointers and references are
// forwarded as they are.
func (tr *TemplateRegistry) registerFunctionTemplates() {
	tr.templates[FunctionStubTemplate] = `
  // {{.Prototype}}
  {{.ReturnType}} {{.Name}}({{range $i, $p := .Params}}{{if $i}}, {{end}}{{$p.Type}} {{$p.Name}}{{end}}) {
{{- if not .ReturnsVoid}}
    {{.ReturnWrapper}} v_ret_;
{{- end}}
{{- range .Params}}{{if .Wrapper}}
    {{.Wrapper}} {{.WrapperVar}}({{.Name}});
{{- end}}{{end}}
{{- if .HasLocals}}
{{end}}
    SAPI_RETURN_IF_ERROR(sandbox_->Call("{{.Name}}", {{if .ReturnsVoid}}nullptr{{else}}&v_ret_{{end}}{{range .Params}}, {{.CallArg}}{{end}}));
    return {{if .ReturnsVoid}}::absl::OkStatus(){{else}}v_ret_.GetValue(){{end}};
  }
`
}
