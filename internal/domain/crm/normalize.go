package crm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName lowercases a name and strips diacritics so that
// searches match regardless of accents ("José" matches "jose").
func NormalizeName(name string) string {
	stripped, _, err := transform.String(diacriticStripper, name)
	if err != nil {
		// Fall back to the raw string; a failed transform only degrades search
		stripped = name
	}
	return strings.ToLower(strings.Join(strings.Fields(stripped), " "))
}
