package parser

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the markup flavor of a part document. Both flavors share the
// same line classifier; the format only matters for tooling that needs to
// know which files are parts.
type Format string

const (
	FormatAsciiDoc Format = "asciidoc"
	FormatMarkdown Format = "markdown"
)

// SupportedExtensions lists part file extensions this service can handle.
var SupportedExtensions = map[string]Format{
	".adoc":     FormatAsciiDoc,
	".asciidoc": FormatAsciiDoc,
	".asc":      FormatAsciiDoc,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
}

// FormatForFile returns the part format for a filename.
func FormatForFile(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if f, ok := SupportedExtensions[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("unsupported part extension: %q", ext)
}

// IsSupportedExtension checks if a file extension is a part format.
func IsSupportedExtension(filename string) bool {
	_, err := FormatForFile(filename)
	return err == nil
}
