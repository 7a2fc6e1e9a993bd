package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/sapigen/internal/errors"
	"github.com/toyz/sapigen/internal/utils"
)

// DirectoryScanner expands input patterns into header files
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner() *DirectoryScanner {
	return &DirectoryScanner{
		fileProcessor: utils.NewFileProcessor(),
	}
}

// NewDirectoryScannerWithProcessor creates a scanner sharing fp
func NewDirectoryScannerWithProcessor(fp *utils.FileProcessor) *DirectoryScanner {
	return &DirectoryScanner{fileProcessor: fp}
}

// ScanInputs expands patterns into header paths, keeping the order of the
// patterns and dropping repeats. A file is taken as is whatever its
// extension; a directory contributes its headers, and "dir/..." also the
// headers of its subdirectories.
func (s *DirectoryScanner) ScanInputs(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		key := path
		if abs, err := filepath.Abs(path); err == nil {
			key = abs
		}
		if !seen[key] {
			seen[key] = true
			files = append(files, path)
		}
	}

	var multi *errors.MultipleErrors
	for _, pattern := range patterns {
		dir, recursive := splitRecursive(pattern)

		info, err := os.Stat(dir)
		if err != nil {
			errors.AddToMultiple(&multi, errors.WrapFileSystemError("stat", dir, err).
				WithSuggestions("Check that the input path exists"))
			continue
		}

		if !info.IsDir() {
			if recursive {
				errors.AddToMultiple(&multi, errors.Newf(errors.FileSystemErrorCode,
					"'%s' is not a directory", dir).WithContext("path", dir))
				continue
			}
			add(filepath.Clean(dir))
			continue
		}

		headers, err := s.fileProcessor.FindHeaders(dir, recursive)
		if err != nil {
			errors.AddToMultiple(&multi, errors.WrapFileSystemError("scan", dir, err))
			continue
		}
		for _, h := range headers {
			add(h)
		}
	}

	if err := multi.ErrorOrNil(); err != nil {
		return nil, err
	}
	return files, nil
}

// splitRecursive strips a trailing "/..." from pattern
func splitRecursive(pattern string) (string, bool) {
	p := filepath.ToSlash(pattern)
	if p == "..." {
		return ".", true
	}
	if strings.HasSuffix(p, "/...") {
		base := pattern[:len(pattern)-4]
		if base == "" {
			base = "/"
		}
		return base, true
	}
	return pattern, false
}
