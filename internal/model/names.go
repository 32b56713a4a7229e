package model

import (
	"strings"

	"golang.org/x/text/cases"
)

// FoldName normalizes a display name for case-insensitive comparison.
func FoldName(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func SameName(a, b string) bool {
	return FoldName(a) == FoldName(b)
}

// CategorySlug derives a category id from its display name: lower-cased,
// with each run of whitespace replaced by a single hyphen.
func CategorySlug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
