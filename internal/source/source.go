// Package source maps header files to the source files that include them.
package source

import (
	"os"
	"path/filepath"
	"slices"
)

// DefaultSourceExtensions lists source extensions in probe priority order.
var DefaultSourceExtensions = []string{".cpp", ".cxx", ".cc", ".c", ".m", ".mm"}

// DefaultHeaderExtensions lists extensions treated as headers.
var DefaultHeaderExtensions = []string{".h", ".hxx", ".hpp", ".hh"}

// Finder locates the source file corresponding to a header.
type Finder struct {
	SourceExtensions []string
	HeaderExtensions []string
	// Exists reports whether path exists; nil uses os.Stat.
	Exists func(path string) bool
}

// NewFinder returns a Finder with the default extension sets.
func NewFinder() Finder {
	return Finder{
		SourceExtensions: DefaultSourceExtensions,
		HeaderExtensions: DefaultHeaderExtensions,
	}
}

// IsHeaderFile reports whether filename carries a header extension.
func (f Finder) IsHeaderFile(filename string) bool {
	return slices.Contains(f.headerExtensions(), filepath.Ext(filename))
}

// FindCorrespondingSourceFile returns the first existing sibling of a header
// with a source extension. Non-headers and unmatched headers are returned as is.
func (f Finder) FindCorrespondingSourceFile(filename string) string {
	if !f.IsHeaderFile(filename) {
		return filename
	}
	exists := f.Exists
	if exists == nil {
		exists = defaultExists
	}
	base := filename[:len(filename)-len(filepath.Ext(filename))]
	for _, ext := range f.sourceExtensions() {
		candidate := base + ext
		if exists(candidate) {
			return candidate
		}
	}
	return filename
}

// IsHeaderFile uses the default header extensions.
func IsHeaderFile(filename string) bool {
	return NewFinder().IsHeaderFile(filename)
}

// FindCorrespondingSourceFile uses the default extensions and the real filesystem.
func FindCorrespondingSourceFile(filename string) string {
	return NewFinder().FindCorrespondingSourceFile(filename)
}

func (f Finder) headerExtensions() []string {
	if len(f.HeaderExtensions) == 0 {
		return DefaultHeaderExtensions
	}
	return f.HeaderExtensions
}

func (f Finder) sourceExtensions() []string {
	if len(f.SourceExtensions) == 0 {
		return DefaultSourceExtensions
	}
	return f.SourceExtensions
}

func defaultExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
