package evo

import (
	"slices"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

// BuildAlphabet NFC-normalizes raw, splits it into grapheme clusters and
// drops repeats. Symbols come back sorted so seeded runs are reproducible.
func BuildAlphabet(raw string) ([]string, error) {
	normalized := norm.NFC.String(raw)

	seen := make(map[string]struct{})
	gr := uniseg.NewGraphemes(normalized)
	for gr.Next() {
		seen[gr.Str()] = struct{}{}
	}
	if len(seen) == 0 {
		return nil, &ConfigurationError{Field: "alphabet", Err: ErrEmptyAlphabet}
	}

	symbols := make([]string, 0, len(seen))
	for symbol := range seen {
		symbols = append(symbols, symbol)
	}
	slices.Sort(symbols)
	return symbols, nil
}

// Graphemes splits s into grapheme clusters as given, without normalization.
func Graphemes(s string) []string {
	return appendGraphemes(make([]string, 0, len(s)), s)
}

func appendGraphemes(dst []string, s string) []string {
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		dst = append(dst, gr.Str())
	}
	return dst
}

// GraphemeCount returns the number of grapheme clusters in s.
func GraphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}
