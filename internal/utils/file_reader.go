package utils

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/toyz/sapigen/internal/errors"
)

// digestContext separates header digests from other BLAKE3 uses
const digestContext = "sapigen 2024 header content"

// HeaderFile is the content of one input header
type HeaderFile struct {
	Path    string
	Content []byte
	// Digest identifies the content; two paths with the same digest are
	// the same translation unit for generation purposes
	Digest string
}

// FileReader reads input headers, caching their content until the file
// changes on disk. It is safe for concurrent use.
type FileReader struct {
	contentCache *Cache[string, *HeaderFile]
}

// NewFileReader creates a new FileReader instance with caching
func NewFileReader() *FileReader {
	return &FileReader{
		contentCache: NewCache[string, *HeaderFile](),
	}
}

// ReadHeader reads the header at filePath
func (fr *FileReader) ReadHeader(filePath string) (*HeaderFile, error) {
	cleanPath, err := fr.cleanPath(filePath)
	if err != nil {
		return nil, err
	}

	if cached, ok := fr.contentCache.GetWithFileValidation(cleanPath, cleanPath); ok {
		return cached, nil
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, errors.WrapFileSystemError("stat", cleanPath, err)
	}
	if info.IsDir() {
		return nil, errors.Newf(errors.FileSystemErrorCode, "'%s' is a directory", cleanPath).
			WithContext("path", cleanPath).
			WithSuggestions("Use '" + cleanPath + "/...' to read every header below it")
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", cleanPath, err)
	}

	file := &HeaderFile{Path: cleanPath, Content: content, Digest: Digest(content)}
	fr.contentCache.SetWithFileInfo(cleanPath, file, info)
	return file, nil
}

// CachedFiles returns the number of cached headers
func (fr *FileReader) CachedFiles() int {
	return fr.contentCache.Size()
}

func (fr *FileReader) cleanPath(filePath string) (string, error) {
	if err := NotEmpty("path")(filePath); err != nil {
		return "", errors.WrapFileSystemError("read", filePath, err)
	}
	return filepath.Clean(filePath), nil
}

// Digest returns the hex BLAKE3 digest of content
func Digest(content []byte) string {
	h := blake3.NewDeriveKey(digestContext)
	_, _ = h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}
