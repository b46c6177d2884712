package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, drops combining marks (diacritics) and
// recomposes. "Müller" and "Muller" normalize identically.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// letterFolds maps language-specific letter variants to a base letter.
// Cyrillic soft/hard signs carry no matching value and are dropped.
var letterFolds = map[rune]rune{
	'ё': 'е',
	'й': 'и',
	'ъ': -1,
	'ь': -1,
}

// Normalize canonicalizes a name for similarity scoring: lowercase, fold
// letter variants, strip diacritics, drop everything non-alphanumeric and
// collapse whitespace.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	if folded, _, err := transform.String(stripMarks, name); err == nil {
		name = folded
	}

	var b strings.Builder
	b.Grow(len(name))
	lastSpace := true
	for _, r := range name {
		if fold, ok := letterFolds[r]; ok {
			if fold == -1 {
				continue
			}
			r = fold
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		// Any separator or punctuation becomes a single space.
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
