package core

// Ray represents a ray with an origin and direction.
// InvDirection caches the per-axis reciprocal of Direction for box slab tests;
// build rays with NewRay so it stays in sync.
type Ray struct {
	Origin       Vec3
	Direction    Vec3
	InvDirection Vec3
}

// NewRay creates a new ray
func NewRay(origin, direction Vec3) Ray {
	return Ray{
		Origin:       origin,
		Direction:    direction,
		InvDirection: Vec3{1 / direction.X, 1 / direction.Y, 1 / direction.Z},
	}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}
