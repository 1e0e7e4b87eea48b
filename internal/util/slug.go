// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Matches spaces, underscores, and slashes (for replacement with dashes).
	wordSeparatorRe = regexp.MustCompile(`[\s_/]+`)
	// Matches non-alphanumeric characters (except dashes).
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9-]`)
	// Matches multiple consecutive dashes.
	multipleDashRe = regexp.MustCompile(`-+`)

	// Decompose, strip combining marks, recompose. Folds "José" to "Jose".
	diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// NormalizeHandle converts user input to a canonical public handle.
// The handle is the source of truth for published-card identity.
//
// Normalization rules:
//  1. Fold diacritics to their base letters
//  2. Trim whitespace and lowercase
//  3. Replace spaces and underscores with dashes
//  4. Remove non-alphanumeric characters (except dashes)
//  5. Collapse multiple dashes
//  6. Trim leading/trailing dashes
//
// Examples:
//
//	"Alex Johnson"  → "alex-johnson"
//	"José García"   → "jose-garcia"
//	"alex_johnson"  → "alex-johnson"
//	"🎨 Designer!"  → "designer"
func NormalizeHandle(input string) string {
	// 1. Fold diacritics
	if folded, _, err := transform.String(diacriticFolder, input); err == nil {
		input = folded
	}

	// 2. Trim and lowercase
	s := strings.ToLower(strings.TrimSpace(input))

	// 3. Replace word separators (spaces, underscores, slashes) with dashes
	s = wordSeparatorRe.ReplaceAllString(s, "-")

	// 4. Remove non-alphanumeric (except dashes)
	s = nonAlphanumericRe.ReplaceAllString(s, "")

	// 5. Collapse multiple dashes
	s = multipleDashRe.ReplaceAllString(s, "-")

	// 6. Trim leading/trailing dashes
	s = strings.Trim(s, "-")

	return s
}
