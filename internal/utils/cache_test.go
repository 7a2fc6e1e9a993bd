package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_Delete(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache[string, int]()

	for i, name := range []string{"a.h", "b.h"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("int f();\n"), 0644); err != nil {
			t.Fatal(err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		cache.SetWithFileInfo(path, i, info)
	}
	if cache.Size() != 2 {
		t.Errorf("expected size 2, got %d", cache.Size())
	}

	a := filepath.Join(dir, "a.h")
	cache.Delete(a)
	if _, ok := cache.GetWithFileValidation(a, a); ok {
		t.Error("expected a.h to be deleted")
	}
	if v, ok := cache.GetWithFileValidation(filepath.Join(dir, "b.h"), filepath.Join(dir, "b.h")); !ok || v != 1 {
		t.Errorf("expected b.h to stay cached, got %d, %v", v, ok)
	}
	if cache.Size() != 1 {
		t.Errorf("expected size 1, got %d", cache.Size())
	}
}

func TestCache_FileValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.h")
	if err := os.WriteFile(path, []byte("int f();\n"), 0644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	cache := NewCache[string, string]()
	cache.SetWithFileInfo(path, "v1", info)

	if v, ok := cache.GetWithFileValidation(path, path); !ok || v != "v1" {
		t.Fatalf("expected cached v1, got %q, %v", v, ok)
	}

	later := info.ModTime().Add(2 * time.Second)
	if err := os.WriteFile(path, []byte("int f();\nint g();\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	if _, ok := cache.GetWithFileValidation(path, path); ok {
		t.Error("expected stale entry to be invalidated")
	}
	if cache.Size() != 0 {
		t.Errorf("expected stale entry to be removed, size %d", cache.Size())
	}

	info, err = os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	cache.SetWithFileInfo(path, "v2", info)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.GetWithFileValidation(path, path); ok {
		t.Error("expected missing file to invalidate the entry")
	}
}
