// Package linalg provides the small amount of generic 2D geometry needed by
// the display stack: points, axis-aligned rectangles and the numeric
// capabilities they rely on.
package linalg

import "golang.org/x/exp/constraints"

// Number is the set of element types usable in geometry values.
type Number interface {
	constraints.Integer | constraints.Float
}

// Unsigned marks element types that can never be negative. Values built from
// unsigned elements are implicitly bounded below by Zero.
type Unsigned interface {
	constraints.Unsigned
}

// Zero returns the additive identity for T.
func Zero[T Number]() T {
	return 0
}

// One returns the multiplicative identity for T.
func One[T Number]() T {
	return 1
}

// WrappingSub returns a-b. For integer types the result wraps on overflow
// instead of trapping; callers must guarantee a >= b when they need the exact
// difference.
func WrappingSub[T Number](a, b T) T {
	return a - b
}
