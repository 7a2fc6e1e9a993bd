package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/sapigen/internal/errors"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     os.Stderr,
	}
}

// SetOutput redirects the report
func (r *DiagnosticReporter) SetOutput(w io.Writer) *DiagnosticReporter {
	r.out = w
	return r
}

// ReportWarning provides user-friendly warning reporting
func (r *DiagnosticReporter) ReportWarning(message string, suggestions ...string) {
	orange := color.New(color.FgYellow, color.Bold)
	orange.Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
	if r.verbose {
		for _, s := range suggestions {
			fmt.Fprintf(r.out, "    %s\n", s)
		}
	}
}

// ReportError provides comprehensive error reporting. Aggregated errors are
// reported one by one.
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(r.out, "\nERROR: Header Generation Failed\n")
	fmt.Fprintf(r.out, "===============================\n\n")

	var multi *errors.MultipleErrors
	var sapiErr errors.SapiError
	switch {
	case stderrors.As(err, &multi) && multi.Count() > 1:
		fmt.Fprintf(r.out, "%d errors, no header was written.\n\n", multi.Count())
		for i, e := range multi.Errors {
			fmt.Fprintf(r.out, "[%d/%d] ", i+1, multi.Count())
			r.reportSapiError(e)
		}
		r.printAdditionalHelp(multi.Errors[0].ErrorCode())
	case stderrors.As(err, &sapiErr):
		r.reportSapiError(sapiErr)
		r.printAdditionalHelp(sapiErr.ErrorCode())
	default:
		fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())
	}

	fmt.Fprintf(r.out, "\n")
}

// reportSapiError reports one structured error with context and suggestions
func (r *DiagnosticReporter) reportSapiError(err errors.SapiError) {
	r.printErrorHeader(err.ErrorCode())

	message := err.Error()
	if base, ok := err.(*errors.BaseError); ok {
		message = base.Message
	}
	fmt.Fprintf(r.out, "Message: %s\n\n", message)

	if r.verbose && err.Unwrap() != nil {
		fmt.Fprintf(r.out, "Underlying cause: %s\n\n", err.Unwrap().Error())
	}

	if loc := err.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n\n", loc.String())
	}

	if ctx := err.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}

	if len(err.Suggestions()) > 0 {
		r.printSuggestions(err.Suggestions())
	}

	if r.verbose {
		r.printVerboseDebuggingInfo(err)
	}
}

// printErrorHeader prints a formatted error header based on error code
func (r *DiagnosticReporter) printErrorHeader(code errors.ErrorCode) {
	var errorTypeStr string

	switch code {
	case errors.UnsupportedTypeCode:
		errorTypeStr = "Unsupported Type"
	case errors.UnresolvedDeclContextCode:
		errorTypeStr = "Unresolved Declaration Context"
	case errors.IOBoundaryCode:
		errorTypeStr = "Parse Error"
	case errors.ConfigurationErrorCode:
		errorTypeStr = "Configuration Error"
	case errors.FileSystemErrorCode:
		errorTypeStr = "File System Error"
	case errors.GenerationErrorCode:
		errorTypeStr = "Code Generation Error"
	default:
		errorTypeStr = "Unknown Error"
	}

	fmt.Fprintf(r.out, "Type: %s\n", errorTypeStr)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(errorTypeStr)+6))
}

// printContext prints context information in a readable format
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	fmt.Fprintf(r.out, "Context:\n")

	importantKeys := []string{"function_name", "type", "reason", "declaration", "context", "path"}
	printed := make(map[string]bool)

	for _, key := range importantKeys {
		if value, exists := context[key]; exists {
			fmt.Fprintf(r.out, "   %s: %v\n", r.formatContextKey(key), value)
			printed[key] = true
		}
	}

	var rest []string
	for key := range context {
		if !printed[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(r.out, "   %s: %v\n", r.formatContextKey(key), context[key])
	}

	fmt.Fprintf(r.out, "\n")
}

// formatContextKey formats context keys to be more readable
func (r *DiagnosticReporter) formatContextKey(key string) string {
	switch key {
	case "function_name":
		return "Function"
	case "config_type":
		return "Setting"
	default:
		parts := strings.Split(key, "_")
		for i, part := range parts {
			if len(part) > 0 {
				parts[i] = strings.ToUpper(part[:1]) + part[1:]
			}
		}
		return strings.Join(parts, " ")
	}
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")

	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}

	fmt.Fprintf(r.out, "\n")
}

// printAdditionalHelp prints additional help based on error code
func (r *DiagnosticReporter) printAdditionalHelp(code errors.ErrorCode) {
	switch code {
	case errors.UnsupportedTypeCode:
		fmt.Fprintf(r.out, "Marshallable Types:\n")
		fmt.Fprintf(r.out, "  - Builtin integer, character, floating point and bool values\n")
		fmt.Fprintf(r.out, "  - Enums, passed as their underlying integer\n")
		fmt.Fprintf(r.out, "  - Pointers and references to anything, passed as ::sapi::v::Ptr*\n\n")

	case errors.IOBoundaryCode:
		fmt.Fprintf(r.out, "Parsing Requirements:\n")
		fmt.Fprintf(r.out, "  - Macros are not expanded; run the header through cc -E first\n")
		fmt.Fprintf(r.out, "  - Only declarations are needed, function bodies are skipped\n\n")
	}

	fmt.Fprintf(r.out, "For more help:\n")
	fmt.Fprintf(r.out, "  - Run with --verbose for more detailed output\n")
	fmt.Fprintf(r.out, "  - Run with --help for the available options\n")
}

// printVerboseDebuggingInfo prints additional debugging information in verbose mode
func (r *DiagnosticReporter) printVerboseDebuggingInfo(err errors.SapiError) {
	fmt.Fprintf(r.out, "Verbose Debug Information:\n")
	fmt.Fprintf(r.out, "  Error Code: %s (%d)\n", err.ErrorCode(), int(err.ErrorCode()))

	if cause := err.Unwrap(); cause != nil {
		fmt.Fprintf(r.out, "  Error Chain:\n")
		level := 1
		for cause != nil {
			fmt.Fprintf(r.out, "    %d. %s\n", level, cause.Error())
			cause = stderrors.Unwrap(cause)
			level++
		}
	}

	fmt.Fprintf(r.out, "\n")
}

// Debug prints debug information when verbose mode is enabled
func (r *DiagnosticReporter) Debug(format string, args ...interface{}) {
	if r.verbose {
		fmt.Fprintf(r.out, "[DEBUG] "+format+"\n", args...)
	}
}

// GenerationSummary contains information about the generation process
type GenerationSummary struct {
	HeadersScanned     int
	HeadersProcessed   int
	DuplicatesSkipped  int
	FunctionsCollected int
	TypesDeclared      int
	OutputFile         string
}

// Stats returns the summary as diagnostic statistics
func (s GenerationSummary) Stats() map[string]interface{} {
	output := s.OutputFile
	if output == "" {
		output = "<stdout>"
	}
	return map[string]interface{}{
		"Headers processed":   s.HeadersProcessed,
		"Duplicate headers":   s.DuplicatesSkipped,
		"Functions generated": s.FunctionsCollected,
		"Types declared":      s.TypesDeclared,
		"Output":              output,
	}
}
