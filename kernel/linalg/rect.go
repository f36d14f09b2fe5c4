package linalg

// Rect is an axis-aligned rectangle whose Min corner is inclusive and whose Max
// corner is exclusive. Min <= Max holds component-wise for every Rect built by
// this package, which is what makes Width and Height exact.
type Rect[T Number] struct {
	min, max Vec2[T]
}

// NewRect returns the rectangle spanning [min, max). The second return value
// is false if min > max on either axis.
func NewRect[T Number](min, max Vec2[T]) (Rect[T], bool) {
	if !min.LessEq(max) {
		return Rect[T]{}, false
	}
	return Rect[T]{min: min, max: max}, true
}

// NewRectUnchecked returns the rectangle spanning [min, max) without checking
// its corners. The caller guarantees min <= max.
func NewRectUnchecked[T Number](min, max Vec2[T]) Rect[T] {
	return Rect[T]{min: min, max: max}
}

// RectFromSize returns the rectangle at origin with the given extent. The
// extent of an unsigned rectangle can never be negative so the result always
// satisfies the corner invariant as long as origin+size does not overflow.
func RectFromSize[T Unsigned](origin, size Vec2[T]) Rect[T] {
	return Rect[T]{min: origin, max: origin.Add(size)}
}

// Min returns the inclusive top-left corner.
func (r Rect[T]) Min() Vec2[T] { return r.min }

// Max returns the exclusive bottom-right corner.
func (r Rect[T]) Max() Vec2[T] { return r.max }

// Width returns Max().X - Min().X.
func (r Rect[T]) Width() T {
	return WrappingSub(r.max.X, r.min.X)
}

// Height returns Max().Y - Min().Y.
func (r Rect[T]) Height() T {
	return WrappingSub(r.max.Y, r.min.Y)
}

// Size returns the extent of the rectangle.
func (r Rect[T]) Size() Vec2[T] {
	return Vec2[T]{X: r.Width(), Y: r.Height()}
}

// Empty reports whether the rectangle covers no points.
func (r Rect[T]) Empty() bool {
	return !r.min.Less(r.max)
}

// Contains reports whether p lies inside the rectangle.
func (r Rect[T]) Contains(p Vec2[T]) bool {
	return r.min.LessEq(p) && p.Less(r.max)
}
