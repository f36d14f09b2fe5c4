package linalg

// Vec2 is a point or extent in 2D space.
type Vec2[T Number] struct {
	X, Y T
}

// V2 returns the vector (x, y).
func V2[T Number](x, y T) Vec2[T] {
	return Vec2[T]{X: x, Y: y}
}

// UnitX returns (1, 0).
func UnitX[T Number]() Vec2[T] {
	return Vec2[T]{X: One[T]()}
}

// UnitY returns (0, 1).
func UnitY[T Number]() Vec2[T] {
	return Vec2[T]{Y: One[T]()}
}

// Add returns the component-wise sum of v and o.
func (v Vec2[T]) Add(o Vec2[T]) Vec2[T] {
	return Vec2[T]{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns the component-wise wrapping difference of v and o.
func (v Vec2[T]) Sub(o Vec2[T]) Vec2[T] {
	return Vec2[T]{X: WrappingSub(v.X, o.X), Y: WrappingSub(v.Y, o.Y)}
}

// Mul returns the component-wise product of v and o.
func (v Vec2[T]) Mul(o Vec2[T]) Vec2[T] {
	return Vec2[T]{X: v.X * o.X, Y: v.Y * o.Y}
}

// Scale multiplies both components by s.
func (v Vec2[T]) Scale(s T) Vec2[T] {
	return Vec2[T]{X: v.X * s, Y: v.Y * s}
}

// LessEq reports whether v <= o holds for both components.
func (v Vec2[T]) LessEq(o Vec2[T]) bool {
	return v.X <= o.X && v.Y <= o.Y
}

// Less reports whether v < o holds for both components.
func (v Vec2[T]) Less(o Vec2[T]) bool {
	return v.X < o.X && v.Y < o.Y
}
