package models

import (
	"strings"

	"github.com/toyz/sapigen/internal/errors"
	"github.com/toyz/sapigen/internal/utils"
)

var (
	nameValidator      = utils.IsValidCIdentifier("name")
	namespaceValidator = utils.NewValidatorChain[string](
		utils.Custom("namespace", "must not end with '::'", func(ns string) bool {
			return !strings.HasSuffix(ns, "::")
		}),
		func(ns string) error {
			segments := strings.Split(strings.TrimPrefix(ns, "::"), "::")
			return utils.ValidateEach("namespace", utils.IsValidCIdentifier("namespace"))(segments)
		},
	)
)

// GeneratorOptions configures one generation pass. Options are read-only
// once the pass starts.
type GeneratorOptions struct {
	WorkDir       string   // directory relative input paths are resolved against
	Name          string   // base name of the generated classes
	Namespace     string   // namespace wrapping the generated code, may be empty
	OutFile       string   // output file name, derives the include guard
	EmbedDir      string   // directory of the embedded sandboxee header
	EmbedName     string   // embedded sandboxee name; empty disables the embed class
	FunctionNames []string // allowlist, empty selects every free function

	// GuardSeed makes the include guard deterministic when OutFile is empty
	GuardSeed string
	// FilteredNamespaces are extra namespace roots whose types are never
	// forward-declared, in addition to the well-known ones
	FilteredNamespaces []string
	// Wrappers adds transport wrappers for builtin types that have none,
	// keyed by the builtin spelling, e.g. "char16_t": "::sapi::v::UShort"
	Wrappers map[string]string
}

// HasEmbed reports whether the embedded sandbox class is generated
func (o *GeneratorOptions) HasEmbed() bool {
	return o.EmbedName != ""
}

// NamespaceSegments splits Namespace on "::"
func (o *GeneratorOptions) NamespaceSegments() []string {
	if o.Namespace == "" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(o.Namespace, "::"), "::")
}

// Validate checks that the options can produce a compilable header
func (o *GeneratorOptions) Validate() error {
	var multi *errors.MultipleErrors

	if o.Name == "" {
		errors.AddToMultiple(&multi, errors.ConfigurationError("name", "an API name is required").
			WithSuggestions("Pass --name, e.g. --name=zlib"))
	} else if nameValidator(o.Name) != nil {
		errors.AddToMultiple(&multi, errors.ConfigurationError("name",
			"'"+o.Name+"' is not a valid C++ identifier"))
	}

	if o.Namespace != "" && namespaceValidator.Validate(o.Namespace) != nil {
		errors.AddToMultiple(&multi, errors.ConfigurationError("namespace",
			"'"+o.Namespace+"' is not a valid namespace name").
			WithSuggestions("Use '::' to separate nested namespaces, e.g. sapi::zlib"))
	}

	for _, fn := range o.FunctionNames {
		if strings.TrimSpace(fn) == "" {
			errors.AddToMultiple(&multi, errors.ConfigurationError("functions", "empty function name in allowlist"))
			break
		}
	}

	return multi.ErrorOrNil()
}
