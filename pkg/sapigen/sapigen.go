// Package sapigen generates Sandboxed API proxy headers from C and C++
// headers.
//
// A generated header declares a <Name>Api class with one method per selected
// function. Each method marshals its arguments into ::sapi::v variables and
// forwards the call to the sandboxee through ::sapi::Sandbox::Call.
//
//	header, err := sapigen.GenerateSource("zlib.h", src, &sapigen.Options{
//		Name:          "Zlib",
//		Namespace:     "sapi::zlib",
//		OutFile:       "zlib.sapi.h",
//		FunctionNames: []string{"deflateInit_", "deflate"},
//	})
package sapigen

import (
	"context"

	"github.com/toyz/sapigen/internal/cli"
	"github.com/toyz/sapigen/internal/errors"
	"github.com/toyz/sapigen/internal/frontend"
	"github.com/toyz/sapigen/internal/generator"
	"github.com/toyz/sapigen/internal/models"
)

// Options configures a generation pass
type Options = models.GeneratorOptions

// Error is implemented by every error the generator reports
type Error = errors.SapiError

// MultipleErrors aggregates the errors of a pass
type MultipleErrors = errors.MultipleErrors

// Error codes
const (
	UnsupportedType       = errors.UnsupportedTypeCode
	UnresolvedDeclContext = errors.UnresolvedDeclContextCode
	IOBoundary            = errors.IOBoundaryCode
	ConfigurationError    = errors.ConfigurationErrorCode
	FileSystemError       = errors.FileSystemErrorCode
)

// GenerateSource generates the proxy header for a single header held in
// memory. filename is only used in error locations.
func GenerateSource(filename string, src []byte, opts *Options) (string, error) {
	g := generator.New(opts)
	if err := g.Err(); err != nil {
		return "", err
	}
	tree, err := frontend.New().ParseSource(filename, src)
	if err != nil {
		return "", err
	}
	return g.Generate(tree)
}

// GenerateFiles generates one proxy header from several header files. The
// files are parsed concurrently and contribute to the header in the order
// given; functions and types declared in more than one file appear once.
func GenerateFiles(ctx context.Context, paths []string, opts *Options) (string, error) {
	g := generator.New(opts)
	if err := g.Err(); err != nil {
		return "", err
	}

	collection, _, collectErr := cli.NewProcessor(nil, 0).Collect(ctx, g, paths)
	if collection == nil {
		return "", collectErr
	}

	header, emitErr := g.Emit(collection)
	if collectErr != nil || emitErr != nil {
		multi := errors.NewMultipleErrors()
		multi.Merge(collectErr)
		multi.Merge(emitErr)
		return "", multi
	}
	return header, nil
}
