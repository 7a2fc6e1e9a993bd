package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/toyz/sapigen/internal/collector"
	"github.com/toyz/sapigen/internal/errors"
	"github.com/toyz/sapigen/internal/generator"
	"github.com/toyz/sapigen/internal/utils"
)

// Generator coordinates the CLI generation process
type Generator struct {
	scanner     *DirectoryScanner
	reader      *utils.FileReader
	reporter    *DiagnosticReporter
	diagnostics *utils.DiagnosticSystem
	stdout      io.Writer
	summary     GenerationSummary
}

// NewGenerator creates a CLI generator reporting through diagnostics
func NewGenerator(verbose bool, diagnostics *utils.DiagnosticSystem) *Generator {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	fp := utils.NewFileProcessor()
	return &Generator{
		scanner:     NewDirectoryScannerWithProcessor(fp),
		reader:      fp.Reader(),
		reporter:    NewDiagnosticReporter(verbose),
		diagnostics: diagnostics,
		stdout:      os.Stdout,
	}
}

// SetOutput sets where the header goes when no output file is configured,
// and where warnings and errors are reported
func (g *Generator) SetOutput(stdout, stderr io.Writer) *Generator {
	g.stdout = stdout
	g.reporter.SetOutput(stderr)
	return g
}

// Reporter returns the error reporter
func (g *Generator) Reporter() *DiagnosticReporter {
	return g.reporter
}

// GetSummary returns the generation summary
func (g *Generator) GetSummary() GenerationSummary {
	return g.summary
}

// Run executes the complete generation process. Errors are returned
// unreported; the caller decides how to present them.
func (g *Generator) Run(ctx context.Context, cfg *Config) error {
	startTime := time.Now()
	g.summary = GenerationSummary{OutputFile: cfg.OutputPath()}

	if err := cfg.Validate(); err != nil {
		return err
	}
	opts := cfg.ToOptions()
	gen := generator.New(opts)
	if err := gen.Err(); err != nil {
		return err
	}

	g.diagnostics.Verbose("Starting header generation at %s", startTime.Format("15:04:05"))
	g.diagnostics.Verbose("Builtin types with a transport wrapper: %s", strings.Join(gen.Wrappers(), ", "))
	g.diagnostics.Banner("generating " + opts.Name + "Api")

	g.diagnostics.PhaseHeader("Scanning inputs")
	files, err := g.scanner.ScanInputs(cfg.InputPatterns())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.ConfigurationError("inputs", "no header files found").
			WithContext("inputs", cfg.Inputs).
			WithSuggestions("Use 'dir/...' to scan subdirectories",
				"Headers are recognized by the extensions "+joinExtensions())
	}
	g.summary.HeadersScanned = len(files)
	for _, f := range files {
		g.diagnostics.PhaseItem(f)
	}

	g.diagnostics.PhaseHeader("Collecting declarations")
	processor := NewProcessor(g.reader, cfg.Jobs)
	collection, results, collectErr := processor.Collect(ctx, gen, files)
	if collection == nil {
		return collectErr
	}
	g.diagnostics.Verbose("%s held in the content cache", plural(g.reader.CachedFiles(), "header"))
	for _, r := range results {
		switch {
		case r.Duplicate:
			g.summary.DuplicatesSkipped++
			g.diagnostics.Verbose("%s has the same content as an earlier input, skipped", r.Path)
		case r.Err == nil:
			g.summary.HeadersProcessed++
		}
	}

	for _, name := range collector.Unmatched(opts.FunctionNames, collection) {
		g.reporter.ReportWarning("function '"+name+"' was not found in any input",
			"Check the spelling and the namespace of the function")
	}
	if len(opts.FunctionNames) == 0 {
		g.diagnostics.Verbose("no allowlist given, every free function is generated")
	}

	header, emitErr := gen.Emit(collection)
	if collectErr != nil || emitErr != nil {
		multi := errors.NewMultipleErrors()
		multi.Merge(collectErr)
		multi.Merge(emitErr)
		return multi
	}
	g.summary.FunctionsCollected = len(collection.Functions)
	g.summary.TypesDeclared = collection.Types.Len()
	g.diagnostics.PhaseProgress("Collected " + plural(g.summary.FunctionsCollected, "function") +
		" and " + plural(g.summary.TypesDeclared, "type"))

	if opts.OutFile == "" && opts.GuardSeed == "" {
		g.reporter.ReportWarning("no output file or guard seed given, the include guard is random and the output is not reproducible",
			"Pass --out or --guard-seed")
	}

	if err := g.write(cfg.OutputPath(), header); err != nil {
		return err
	}

	g.diagnostics.Verbose("Finished in %s", time.Since(startTime).Round(time.Millisecond))
	return nil
}

func (g *Generator) write(path, header string) error {
	if path == "" {
		if _, err := io.WriteString(g.stdout, header); err != nil {
			return errors.WrapFileSystemError("write", "<stdout>", err)
		}
		return nil
	}

	g.diagnostics.PhaseProgress("Writing " + path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapFileSystemError("create directory for", path, err)
		}
	}
	if err := os.WriteFile(path, []byte(header), 0o644); err != nil {
		return errors.WrapFileSystemError("write", path, err)
	}
	return nil
}

func joinExtensions() string {
	return strings.Join(utils.HeaderExtensions, ", ")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
