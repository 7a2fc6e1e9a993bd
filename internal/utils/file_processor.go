package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/sapigen/internal/errors"
)

// HeaderExtensions are the file extensions treated as C/C++ headers
var HeaderExtensions = []string{".h", ".hh", ".hpp", ".hxx", ".h++"}

// FileProcessor provides utilities for common file processing operations
type FileProcessor struct {
	fileReader *FileReader
}

// NewFileProcessor creates a new file processor
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{
		fileReader: NewFileReader(),
	}
}

// NewFileProcessorWithReader creates a file processor with an existing FileReader
func NewFileProcessorWithReader(reader *FileReader) *FileProcessor {
	return &FileProcessor{
		fileReader: reader,
	}
}

// Reader returns the reader used for header content
func (fp *FileProcessor) Reader() *FileReader {
	return fp.fileReader
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info fs.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info fs.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
	// Recursive descends into subdirectories accepted by DirectoryFilter
	Recursive bool
}

// IsHeader reports whether path has a header extension
func IsHeader(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, h := range HeaderExtensions {
		if ext == h {
			return true
		}
	}
	return false
}

// HeaderFileFilter selects C/C++ header files
func HeaderFileFilter() FileFilter {
	return func(path string, info fs.DirEntry) bool {
		return !info.IsDir() && IsHeader(info.Name())
	}
}

// DefaultDirectoryFilter skips common directories that shouldn't contain source code
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		".git":         true,
		".svn":         true,
		".hg":          true,
		"testdata":     true,
		"build":        true,
		"dist":         true,
		"bazel-out":    true,
	}

	return func(path string, info fs.DirEntry) bool {
		if !info.IsDir() {
			return true
		}
		name := info.Name()
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}
		return !skipDirs[name]
	}
}

// WalkFiles walks rootDir and returns the files accepted by the filters in
// lexical order
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matchedFiles []string

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return err
		}

		if d.IsDir() {
			if path == rootDir {
				return nil
			}
			if !options.Recursive {
				return filepath.SkipDir
			}
			if options.DirectoryFilter != nil && !options.DirectoryFilter(path, d) {
				return filepath.SkipDir
			}
			return nil
		}

		if options.FileFilter == nil || options.FileFilter(path, d) {
			matchedFiles = append(matchedFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapFileSystemError("walk", rootDir, err)
	}

	sort.Strings(matchedFiles)
	return matchedFiles, nil
}

// FindHeaders returns the headers in dir, descending into subdirectories
// when recursive is set
func (fp *FileProcessor) FindHeaders(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.WrapFileSystemError("stat", dir, err)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.FileSystemErrorCode, "'%s' is not a directory", dir).
			WithContext("path", dir)
	}
	return fp.WalkFiles(dir, FileWalkOptions{
		FileFilter:      HeaderFileFilter(),
		DirectoryFilter: DefaultDirectoryFilter(),
		Recursive:       recursive,
	})
}
