// Package slug builds URL keys from display names.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const separator = '-'

var folder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make lowercases name, strips diacritics and joins alphanumeric runs with '-'.
// "Pondok Ñusa Café" becomes "pondok-nusa-cafe".
func Make(name string) string {
	folded, _, err := transform.String(folder, name)
	if err != nil {
		folded = name
	}

	var builder strings.Builder

	pending := false

	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && builder.Len() > 0 {
				builder.WriteRune(separator)
			}

			builder.WriteRune(r)

			pending = false

			continue
		}

		pending = true
	}

	return builder.String()
}

// WithSuffix appends a short suffix, used when the plain slug is already taken.
func WithSuffix(base, suffix string) string {
	if suffix == "" {
		return base
	}

	if base == "" {
		return suffix
	}

	return base + string(separator) + suffix
}
