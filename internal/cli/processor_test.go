package cli

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/sapigen/internal/errors"
	"github.com/toyz/sapigen/internal/generator"
	"github.com/toyz/sapigen/internal/models"
)

func TestProcessor_CollectMergesInInputOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, src := range []string{
		"namespace a { struct A; }\nvoid UseA(a::A* p);\nint Shared(int x);\n",
		"namespace b { struct B; }\nvoid UseB(b::B* p);\nint Shared(int x);\n",
		"void UseC(int c);\n",
	} {
		paths = append(paths, writeFile(t, filepath.Join(dir, string(rune('a'+i))+".h"), src))
	}
	// same content as the first input
	paths = append(paths, writeFile(t, filepath.Join(dir, "copy.h"), "namespace a { struct A; }\nvoid UseA(a::A* p);\nint Shared(int x);\n"))

	gen := generator.New(&models.GeneratorOptions{Name: "Lib"})
	for _, jobs := range []int{0, 1, 3} {
		collection, results, err := NewProcessor(nil, jobs).Collect(context.Background(), gen, paths)
		require.NoError(t, err)
		require.Len(t, results, 4)

		var names []string
		for _, fd := range collection.Functions {
			names = append(names, fd.Name)
		}
		assert.Equal(t, []string{"UseA", "Shared", "UseB", "UseC"}, names, "jobs=%d", jobs)
		assert.Equal(t, 2, collection.Types.Len())

		assert.False(t, results[0].Duplicate)
		assert.True(t, results[3].Duplicate)
		assert.Equal(t, results[0].Digest, results[3].Digest)
		assert.Equal(t, paths[2], results[2].Path)
	}
}

func TestProcessor_AggregatesUnitErrors(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, filepath.Join(dir, "good.h"), "int Good(int x);\n"),
		writeFile(t, filepath.Join(dir, "bad.h"), "int Broken(int x;\n"),
		filepath.Join(dir, "missing.h"),
		writeFile(t, filepath.Join(dir, "nested.h"), "struct O { struct I {}; };\nvoid Use(O::I* p);\n"),
	}

	gen := generator.New(&models.GeneratorOptions{Name: "Lib"})
	collection, results, err := NewProcessor(nil, 2).Collect(context.Background(), gen, paths)
	require.Error(t, err)
	require.NotNil(t, collection)

	var multi *errors.MultipleErrors
	require.True(t, stderrors.As(err, &multi))
	assert.Equal(t, 3, multi.Count())
	assert.True(t, multi.HasCode(errors.IOBoundaryCode))
	assert.True(t, multi.HasCode(errors.FileSystemErrorCode))
	assert.True(t, multi.HasCode(errors.UnresolvedDeclContextCode))

	assert.NoError(t, results[0].Err)
	assert.True(t, collection.HasFunction("Good"))
}

func TestProcessor_Cancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "a.h"), "int f();\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := generator.New(&models.GeneratorOptions{Name: "Lib"})
	_, _, err := NewProcessor(nil, 1).Collect(ctx, gen, []string{path, path})
	assert.ErrorIs(t, err, context.Canceled)
}
