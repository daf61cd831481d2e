package dblp

import (
	"strings"
	"unicode"
)

// NormalizeTitle reduces a title to a canonical matching key: lowercased
// with everything that is not a letter or digit removed. It is idempotent,
// and an empty input stays empty. Callers must never register or look up
// an empty normalized title.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
