package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// NormalizePlaceName cleans up curator-entered place names: collapsed
// whitespace, title case. "  new  YORK " → "New York".
func NormalizePlaceName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	return titleCaser.String(strings.ToLower(name))
}
