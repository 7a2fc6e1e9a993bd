package cli

import (
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/sapigen/internal/errors"
)

func TestDirectoryScanner_ScanInputs(t *testing.T) {
	root := t.TempDir()
	for _, f := range []string{
		"zlib.h",
		"api.hpp",
		"impl.c",
		"detail/inner.h",
		"detail/deep/more.hxx",
		"vendor/dep.h",
		".cache/gen.h",
	} {
		writeFile(t, filepath.Join(root, f), "int f();\n")
	}
	extra := writeFile(t, filepath.Join(root, "extra.inc"), "int g();\n")

	tests := []struct {
		name     string
		patterns []string
		expected []string
	}{
		{
			name:     "single file",
			patterns: []string{filepath.Join(root, "zlib.h")},
			expected: []string{"zlib.h"},
		},
		{
			name:     "explicit file with any extension",
			patterns: []string{extra},
			expected: []string{"extra.inc"},
		},
		{
			name:     "directory is not recursive",
			patterns: []string{root},
			expected: []string{"api.hpp", "zlib.h"},
		},
		{
			name:     "recursive pattern skips vendor and hidden dirs",
			patterns: []string{root + "/..."},
			expected: []string{"api.hpp", "detail/deep/more.hxx", "detail/inner.h", "zlib.h"},
		},
		{
			name:     "order follows patterns and repeats are dropped",
			patterns: []string{filepath.Join(root, "zlib.h"), root, filepath.Join(root, "detail") + "/..."},
			expected: []string{"zlib.h", "api.hpp", "detail/deep/more.hxx", "detail/inner.h"},
		},
	}

	scanner := NewDirectoryScanner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := scanner.ScanInputs(tt.patterns)
			require.NoError(t, err)

			var rel []string
			for _, f := range files {
				r, err := filepath.Rel(root, f)
				require.NoError(t, err)
				rel = append(rel, filepath.ToSlash(r))
			}
			assert.Equal(t, tt.expected, rel)
		})
	}
}

func TestDirectoryScanner_Errors(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, filepath.Join(root, "a.h"), "int f();\n")

	_, err := NewDirectoryScanner().ScanInputs([]string{
		filepath.Join(root, "missing.h"),
		file + "/...",
		filepath.Join(root, "gone") + "/...",
	})
	require.Error(t, err)

	var multi *errors.MultipleErrors
	require.True(t, stderrors.As(err, &multi))
	assert.Equal(t, 3, multi.Count())
	assert.Len(t, multi.GetByCode(errors.FileSystemErrorCode), 3)
}

func TestSplitRecursive(t *testing.T) {
	tests := []struct {
		pattern   string
		dir       string
		recursive bool
	}{
		{"...", ".", true},
		{"./...", ".", true},
		{"include/...", "include", true},
		{"/...", "/", true},
		{"include", "include", false},
		{"zlib.h", "zlib.h", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			dir, recursive := splitRecursive(tt.pattern)
			assert.Equal(t, tt.dir, dir)
			assert.Equal(t, tt.recursive, recursive)
		})
	}
}
