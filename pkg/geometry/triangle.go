package geometry

import (
	"math"

	"github.com/df07/go-kdtracer/pkg/core"
)

// Epsilon is the parallel-ray and self-intersection tolerance for triangles
const Epsilon = 1e-6

// Triangle references three vertices of an externally owned buffer and
// caches its two edges. Every method that needs positions takes the buffer.
type Triangle struct {
	Indices [3]int    // Vertex buffer indices
	Edge1   core.Vec3 // v1 -> v2
	Edge2   core.Vec3 // v1 -> v3
}

// NewTriangle builds a triangle over vertices[i0], vertices[i1], vertices[i2]
func NewTriangle(vertices []Vertex, i0, i1, i2 int) Triangle {
	p0 := vertices[i0].Position
	return Triangle{
		Indices: [3]int{i0, i1, i2},
		Edge1:   vertices[i1].Position.Subtract(p0),
		Edge2:   vertices[i2].Position.Subtract(p0),
	}
}

// Corners returns the three vertex positions
func (t Triangle) Corners(vertices []Vertex) (a, b, c core.Vec3) {
	return vertices[t.Indices[0]].Position, vertices[t.Indices[1]].Position, vertices[t.Indices[2]].Position
}

// BoundingBox returns the tight box around the three corners
func (t Triangle) BoundingBox(vertices []Vertex) core.AABB {
	a, b, c := t.Corners(vertices)
	return core.NewAABBFromPoints(a, b, c)
}

// Centroid returns the average of the three corners
func (t Triangle) Centroid(vertices []Vertex) core.Vec3 {
	a, b, c := t.Corners(vertices)
	return a.Add(b).Add(c).Divide(3)
}

// GeometricNormal returns the unit normal Edge1 x Edge2 (NaN when degenerate)
func (t Triangle) GeometricNormal() core.Vec3 {
	return t.Edge1.Cross(t.Edge2).Normalize()
}

// Intersect runs the Möller-Trumbore test. On a hit, the point is
// v1 + u*Edge1 + v*Edge2 and t lies in (max(tMin, Epsilon), tMax).
func (t Triangle) Intersect(vertices []Vertex, ray core.Ray, tMin, tMax float64) (tHit, u, v float64, ok bool) {
	pvec := ray.Direction.Cross(t.Edge2)
	det := t.Edge1.Dot(pvec)

	// Ray parallel to the triangle plane. Comparisons are written so that
	// NaN inputs fall through to a miss.
	if !(math.Abs(det) >= Epsilon) {
		return 0, 0, 0, false
	}
	invDet := 1.0 / det

	tvec := ray.Origin.Subtract(vertices[t.Indices[0]].Position)
	u = tvec.Dot(pvec) * invDet
	if !(u >= 0 && u <= 1) {
		return 0, 0, 0, false
	}

	qvec := tvec.Cross(t.Edge1)
	v = ray.Direction.Dot(qvec) * invDet
	if !(v >= 0 && u+v <= 1) {
		return 0, 0, 0, false
	}

	tHit = t.Edge2.Dot(qvec) * invDet
	if !(tHit > math.Max(tMin, Epsilon) && tHit < tMax) {
		return 0, 0, 0, false
	}
	return tHit, u, v, true
}

// Barycentric returns weights with p = u*v1 + v*v2 + w*v3 for a point on
// the triangle's plane. It reports false for a degenerate triangle.
func (t Triangle) Barycentric(vertices []Vertex, p core.Vec3) (u, v, w float64, ok bool) {
	d := p.Subtract(vertices[t.Indices[0]].Position)

	d00 := t.Edge1.Dot(t.Edge1)
	d01 := t.Edge1.Dot(t.Edge2)
	d11 := t.Edge2.Dot(t.Edge2)
	d20 := d.Dot(t.Edge1)
	d21 := d.Dot(t.Edge2)

	denom := d00*d11 - d01*d01
	if denom == 0 || math.IsNaN(denom) {
		return 0, 0, 0, false
	}

	v = (d11*d20 - d01*d21) / denom
	w = (d00*d21 - d01*d20) / denom
	u = 1 - v - w
	return u, v, w, true
}
