package core

import "math"

// Vec2 represents a 2D vector, used for texture coordinates and 2D samples
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Subtract returns the difference of two vectors
func (v Vec2) Subtract(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Multiply returns the vector scaled by a scalar
func (v Vec2) Multiply(scalar float64) Vec2 {
	return Vec2{v.X * scalar, v.Y * scalar}
}

// Divide returns the vector divided by a scalar
func (v Vec2) Divide(scalar float64) Vec2 {
	return Vec2{v.X / scalar, v.Y / scalar}
}

// MultiplyVec returns component-wise multiplication of two vectors
func (v Vec2) MultiplyVec(other Vec2) Vec2 {
	return Vec2{v.X * other.X, v.Y * other.Y}
}

// DivideVec returns component-wise division of two vectors
func (v Vec2) DivideVec(other Vec2) Vec2 {
	return Vec2{v.X / other.X, v.Y / other.Y}
}

// Dot returns the dot product of two vectors
func (v Vec2) Dot(other Vec2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Length returns the magnitude of the vector
func (v Vec2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// LengthSquared returns the squared magnitude of the vector
func (v Vec2) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// AbsLength returns the L1 norm of the vector
func (v Vec2) AbsLength() float64 {
	return math.Abs(v.X) + math.Abs(v.Y)
}

// Normalize returns a unit vector in the same direction (NaN for the zero vector)
func (v Vec2) Normalize() Vec2 {
	length := v.Length()
	return Vec2{v.X / length, v.Y / length}
}

// NormalizeInPlace scales v to unit length
func (v *Vec2) NormalizeInPlace() {
	*v = v.Normalize()
}
