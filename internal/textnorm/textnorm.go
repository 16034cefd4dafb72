package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Clean canonicalizes raw abstract text before it enters the pipeline.
//
// Steps, applied in order:
//  1. NFKC normalization, so compatibility variants (ligatures, full-width
//     forms, superscripts) collapse to their standard code points.
//  2. Every run of whitespace collapses to a single ASCII space.
//  3. Non-whitespace category-C runes (control, format, surrogate,
//     private-use) are dropped.
//  4. Literal single and double quote characters are deleted.
//  5. Leading and trailing whitespace is trimmed.
//
// Clean never fails and is idempotent: Clean(Clean(x)) == Clean(x).
func Clean(text string) string {
	text = norm.NFKC.String(text)

	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case unicode.In(r, unicode.C):
			// dropped
		case r == '\'' || r == '"':
			// dropped
		default:
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
