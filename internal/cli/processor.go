package cli

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/toyz/sapigen/internal/errors"
	"github.com/toyz/sapigen/internal/frontend"
	"github.com/toyz/sapigen/internal/generator"
	"github.com/toyz/sapigen/internal/models"
	"github.com/toyz/sapigen/internal/utils"
)

// UnitResult is the outcome of collecting one translation unit
type UnitResult struct {
	Path       string
	Digest     string
	Collection *models.Collection
	Err        error
	// Duplicate is set when an earlier input had the same content
	Duplicate bool
}

// Processor parses and collects translation units in parallel
type Processor struct {
	parser *frontend.Parser
	reader *utils.FileReader
	jobs   int
}

// NewProcessor creates a processor running at most jobs units at once;
// jobs <= 0 uses one per CPU
func NewProcessor(reader *utils.FileReader, jobs int) *Processor {
	if reader == nil {
		reader = utils.NewFileReader()
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return &Processor{
		parser: frontend.New(),
		reader: reader,
		jobs:   jobs,
	}
}

// Process collects every path with gen. Results are returned in the order
// of paths. Per-unit failures are recorded in the results; only cancellation
// of ctx aborts the run.
func (p *Processor) Process(ctx context.Context, gen *generator.Generator, paths []string) ([]UnitResult, error) {
	results := make([]UnitResult, len(paths))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.jobs)
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = p.collect(gen, path)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for i := range results {
		r := &results[i]
		if r.Digest == "" {
			continue
		}
		if seen[r.Digest] {
			r.Duplicate = true
		}
		seen[r.Digest] = true
	}
	return results, nil
}

// Collect runs Process and merges the units in input order into one
// collection. Errors of all units are aggregated.
func (p *Processor) Collect(ctx context.Context, gen *generator.Generator, paths []string) (*models.Collection, []UnitResult, error) {
	results, err := p.Process(ctx, gen, paths)
	if err != nil {
		return nil, nil, err
	}

	merged := models.NewCollection(gen.Options().FilteredNamespaces...)
	var multi *errors.MultipleErrors
	for _, r := range results {
		if r.Duplicate {
			continue
		}
		if r.Err != nil {
			if multi == nil {
				multi = errors.NewMultipleErrors()
			}
			multi.Merge(r.Err)
		}
		merged.Merge(r.Collection)
	}
	return merged, results, multi.ErrorOrNil()
}

func (p *Processor) collect(gen *generator.Generator, path string) UnitResult {
	result := UnitResult{Path: path}

	file, err := p.reader.ReadHeader(path)
	if err != nil {
		result.Err = err
		return result
	}
	result.Digest = file.Digest

	tree, err := p.parser.ParseSource(file.Path, file.Content)
	if err != nil {
		result.Err = err
		return result
	}

	result.Collection, result.Err = gen.Collect(tree)
	return result
}
