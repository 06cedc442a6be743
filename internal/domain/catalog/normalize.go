package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks after canonical decomposition, so that
// "Café" and "Cafe" normalize to the same key.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize derives the equivalence key of a display name: diacritics
// stripped, case folded, whitespace collapsed to single spaces, outer
// whitespace trimmed. Normalize is idempotent: Normalize(Normalize(s)) ==
// Normalize(s).
func Normalize(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		// Invalid UTF-8 passes through; case folding and whitespace
		// collapsing still apply.
		out = s
	}
	out = strings.ToLower(out)
	return strings.Join(strings.Fields(out), " ")
}

// PathSeparator joins category names into a full hierarchical path.
const PathSeparator = "/"

// JoinPath builds a raw (display) category path from root-to-leaf names,
// trimming each segment.
func JoinPath(names []string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, strings.TrimSpace(n))
	}
	return strings.Join(parts, PathSeparator)
}

// PathKey derives the equivalence key of a category path: each segment
// normalized independently, then slash-joined. Normalizing per segment keeps
// a slash inside a category name from colliding with a hierarchy boundary of
// equal spelling only when the segment text itself matches.
func PathKey(names []string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, Normalize(n))
	}
	return strings.Join(parts, PathSeparator)
}

// NormalizePath re-derives the equivalence key of an already slash-joined
// path, such as a destination collection title.
func NormalizePath(path string) string {
	return PathKey(strings.Split(path, PathSeparator))
}
