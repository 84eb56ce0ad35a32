package points

import "strings"

// Category is a waste classification label reported by a dustbin.
type Category string

const (
	Dry    Category = "dry"
	Wet    Category = "wet"
	EWaste Category = "ewaste"
)

// valueByCategory maps a category to the points one disposal is worth.
// Kept as a table so a new waste stream is a one-line addition.
var valueByCategory = map[Category]int{
	Dry:    5,
	Wet:    8,
	EWaste: 10,
}

// FromLabel normalizes a raw wire label ("WET", "wet", " Ewaste ") to a
// Category. Unknown labels return ok=false and must be treated as a no-op.
func FromLabel(label string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(label)))
	_, ok := valueByCategory[c]
	return c, ok
}

// Value returns the points awarded for one disposal of the given category.
// Unknown categories are worth nothing.
func Value(c Category) int {
	return valueByCategory[c]
}

// Total computes the canonical total for a set of counters. Stored totals
// that disagree with this are repaired on read.
func Total(dry, wet, ewaste int) int {
	return dry*valueByCategory[Dry] + wet*valueByCategory[Wet] + ewaste*valueByCategory[EWaste]
}
