package emitter

import (
	"fmt"
	"strings"
)

// Builder accumulates header text. Scopes write their opening text, run the
// body and write the matching closing text, so every opened guard and
// namespace is closed even when the body fails.
type Builder struct {
	sb strings.Builder
}

// WriteString appends s
func (b *Builder) WriteString(s string) {
	b.sb.WriteString(s)
}

// Printf appends formatted text
func (b *Builder) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&b.sb, format, args...)
}

// Scope writes open, runs body and writes end
func (b *Builder) Scope(open, end string, body func() error) error {
	b.sb.WriteString(open)
	err := body()
	b.sb.WriteString(end)
	return err
}

// Guard wraps body in an #ifndef include guard
func (b *Builder) Guard(guard string, body func() error) error {
	return b.Scope(
		"#ifndef "+guard+"\n#define "+guard+"\n\n",
		"\n#endif  // "+guard+"\n",
		body,
	)
}

// Namespace wraps body in a namespace block. An empty name runs body at the
// current scope.
func (b *Builder) Namespace(name string, body func() error) error {
	if name == "" {
		return body()
	}
	return b.Scope(
		"\nnamespace "+name+" {\n",
		"\n}  // namespace "+name+"\n",
		body,
	)
}

// NamespacePath wraps body in the namespaces of path, outer to inner, with
// no blank lines. Empty segments are anonymous namespaces; a path without
// any is written as one C++17 nested namespace.
func (b *Builder) NamespacePath(path []string, body func() error) error {
	if len(path) == 0 {
		return body()
	}

	anonymous := false
	for _, segment := range path {
		if segment == "" {
			anonymous = true
			break
		}
	}
	if !anonymous {
		name := strings.Join(path, "::")
		return b.Scope("namespace "+name+" {\n", "}  // namespace "+name+"\n", body)
	}

	open := namespaceLine(path[0], "namespace ", " {\n")
	end := namespaceLine(path[0], "}  // namespace", "\n")
	return b.Scope(open, end, func() error {
		return b.NamespacePath(path[1:], body)
	})
}

// Len returns the number of bytes written so far
func (b *Builder) Len() int {
	return b.sb.Len()
}

// String returns the accumulated text
func (b *Builder) String() string {
	return b.sb.String()
}

func namespaceLine(segment, prefix, suffix string) string {
	if segment == "" {
		return strings.TrimSuffix(prefix, " ") + suffix
	}
	if !strings.HasSuffix(prefix, " ") {
		prefix += " "
	}
	return prefix + segment + suffix
}
