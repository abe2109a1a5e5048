package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var colorFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Polish letters that do not decompose to base letter + combining mark.
var colorReplacer = strings.NewReplacer("ł", "l", "Ł", "L")

// NormalizeColor folds a vendor color label into a lower-case ASCII slug
// ("Biały" -> "bialy", "Czerwony " -> "czerwony") so variant colors compare
// stably across scrapes.
func NormalizeColor(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(colorFolder, s); err == nil {
		s = folded
	}
	s = colorReplacer.Replace(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), "-")
}
