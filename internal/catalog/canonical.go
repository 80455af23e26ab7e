// Package catalog reconciles the audio directory against the audio record
// store and matches bulk-imported rows to audio assets.
package catalog

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const ideographicSpace = "\u3000"

// Canonicalize turns a raw filename into the key used for case, width and
// Unicode-form insensitive comparison. An empty result means no match is
// possible.
func Canonicalize(name string) string {
	if name == "" {
		return ""
	}
	s := norm.NFC.String(name)
	// Fold maps Cherokee to its uppercase letters, so lower again to keep the
	// key stable. Folding can also decompose some runes, so compose last.
	s = norm.NFC.String(strings.ToLower(cases.Fold().String(s)))
	s = strings.ReplaceAll(s, ideographicSpace, " ")
	return strings.TrimSpace(s)
}

// baseName strips any directory components from a user supplied filename.
// Backslashes are treated as separators since spreadsheets exported on
// Windows often carry full paths.
func baseName(raw string) string {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "\\", "/"))
	if raw == "" {
		return ""
	}
	base := path.Base(raw)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// displayName is the form reported back to callers for unmatched filenames:
// composed and trimmed, but keeping the caller's casing.
func displayName(raw string) string {
	return strings.TrimSpace(norm.NFC.String(raw))
}
