package pipeline

import (
	"regexp"
	"strings"
)

// citationToken matches inline citation markers like [Reg-4].
var citationToken = regexp.MustCompile(`\[[\w-]+\]`)

// Clean collapses immediately-repeated identical citation tokens (separated
// by nothing or whitespace only) into a single occurrence and trims the
// surrounding whitespace. Differing or non-adjacent tokens are untouched.
//
// Clean is pure and total: defined for every input, identity (after
// trimming) for inputs with no repeated citations, and idempotent.
func Clean(raw string) string {
	matches := citationToken.FindAllStringIndex(raw, -1)
	if len(matches) == 0 {
		return strings.TrimSpace(raw)
	}

	var b strings.Builder
	b.Grow(len(raw))

	copied := 0    // offset into raw already written
	lastEnd := -1  // end offset of the previous citation token
	lastToken := ""

	for _, m := range matches {
		start, end := m[0], m[1]
		token := raw[start:end]

		if lastEnd >= 0 && token == lastToken && isWhitespace(raw[lastEnd:start]) {
			// Consecutive duplicate of the same token: drop it and the
			// whitespace run before it.
			copied = end
			lastEnd = end
			continue
		}

		b.WriteString(raw[copied:end])
		copied = end
		lastEnd = end
		lastToken = token
	}

	b.WriteString(raw[copied:])
	return strings.TrimSpace(b.String())
}

func isWhitespace(s string) bool {
	return strings.TrimSpace(s) == ""
}
