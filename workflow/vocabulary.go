package workflow

import "slices"

// The controlled classification vocabulary. Models are instructed to choose
// from these values only, or to emit "unknown".
var (
	primaryStyles = []string{
		"serif",
		"sans-serif",
		"slab-serif",
		"script",
		"handwritten",
		"monospace",
		"display",
		"blackletter",
		"symbol",
	}

	subStyles = []string{
		"old-style",
		"transitional",
		"didone",
		"humanist",
		"grotesque",
		"neo-grotesque",
		"geometric",
		"rounded",
		"calligraphic",
		"casual",
		"stencil",
		"pixel",
	}
)

// ValidPrimaryStyle reports whether v is a controlled primary style or the
// unknown literal.
func ValidPrimaryStyle(v string) bool {
	return v == Unknown || slices.Contains(primaryStyles, v)
}

// ValidSubStyle reports whether v is a controlled substyle or the unknown literal.
func ValidSubStyle(v string) bool {
	return v == Unknown || slices.Contains(subStyles, v)
}

// PrimaryStyles returns the controlled primary style vocabulary.
func PrimaryStyles() []string {
	return primaryStyles
}

// SubStyles returns the controlled substyle vocabulary.
func SubStyles() []string {
	return subStyles
}
