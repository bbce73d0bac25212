// Package money provides the shared rounding and tolerance comparison used
// by every numeric check. Monetary values arrive as float64 from upstream
// extraction; all equality in this engine is tolerance equality.
package money

import "math"

// Diff returns the absolute difference between a computed and a declared
// value.
func Diff(computed, declared float64) float64 {
	return math.Abs(computed - declared)
}

// WithinTolerance reports whether computed and declared agree within tol.
// A negative tolerance is treated as zero.
func WithinTolerance(computed, declared, tol float64) bool {
	if tol < 0 {
		tol = 0
	}
	return Diff(computed, declared) <= tol
}

// Round rounds half away from zero to the given number of decimal places,
// matching how the source documents round currency.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// IsZero reports whether v is zero under the given tolerance.
func IsZero(v, tol float64) bool {
	return math.Abs(v) <= tol
}
