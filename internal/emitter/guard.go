package emitter

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

const (
	guardPrefix     = "SAPI_"
	generatedPrefix = "SANDBOXED_API_GENERATED_HEADER_"
	guardContext    = "sapigen 2024 include guard"
)

// GuardSource yields the token of a guard that has no file name to derive
// it from
type GuardSource func() uint64

// RandomGuard draws the token from a random UUID. Output using it is not
// reproducible.
func RandomGuard() uint64 {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[:8])
}

// SeededGuard derives the token from seed, so that regenerating with the
// same seed yields the same guard
func SeededGuard(seed string) GuardSource {
	hasher := blake3.NewDeriveKey(guardContext)
	_, _ = hasher.Write([]byte(seed))
	sum := hasher.Sum(nil)
	token := binary.BigEndian.Uint64(sum[:8])
	return func() uint64 { return token }
}

// IncludeGuard derives the include guard macro from the output file name.
// Letters are uppercased, digits kept and runs of anything else collapse to
// one underscore. The guard never starts with a digit or an underscore and
// always ends with one. An empty name falls back to a token from source.
func IncludeGuard(filename string, source GuardSource) string {
	if filename == "" {
		if source == nil {
			source = RandomGuard
		}
		return fmt.Sprintf("%s%016X_", generatedPrefix, source())
	}

	var guard strings.Builder
	guard.Grow(len(filename) + len(guardPrefix) + 1)
	last := byte(0)
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isLetter(c) {
			c = toUpper(c)
			guard.WriteByte(c)
			last = c
			continue
		}
		if guard.Len() == 0 {
			guard.WriteString(guardPrefix)
			last = '_'
		}
		if isDigit(c) {
			guard.WriteByte(c)
			last = c
		} else if last != '_' {
			guard.WriteByte('_')
			last = '_'
		}
	}
	if last != '_' {
		guard.WriteByte('_')
	}
	return guard.String()
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
