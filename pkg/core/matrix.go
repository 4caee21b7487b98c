package core

import "math"

// Mat4 is a 4x4 row-major affine transform. Vectors are treated as columns,
// so MulPoint computes M * (x, y, z, 1).
type Mat4 [4][4]float64

// Identity returns the identity matrix
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translation returns a matrix that moves points by offset
func Translation(offset Vec3) Mat4 {
	m := Identity()
	m[0][3] = offset.X
	m[1][3] = offset.Y
	m[2][3] = offset.Z
	return m
}

// Scaling returns a matrix that scales each axis independently
func Scaling(factors Vec3) Mat4 {
	m := Identity()
	m[0][0] = factors.X
	m[1][1] = factors.Y
	m[2][2] = factors.Z
	return m
}

// Rotation returns the rotation by angle radians around axis using Rodrigues'
// formula R = I + sin(a)K + (1-cos(a))K². The axis need not be unit length;
// a zero axis returns the identity and false.
func Rotation(angle float64, axis Vec3) (Mat4, bool) {
	if axis.IsZero() {
		return Identity(), false
	}
	k := axis.Normalize()
	s, c := math.Sincos(angle)
	t := 1 - c

	return Mat4{
		{c + t*k.X*k.X, t*k.X*k.Y - s*k.Z, t*k.X*k.Z + s*k.Y, 0},
		{t*k.Y*k.X + s*k.Z, c + t*k.Y*k.Y, t*k.Y*k.Z - s*k.X, 0},
		{t*k.Z*k.X - s*k.Y, t*k.Z*k.Y + s*k.X, c + t*k.Z*k.Z, 0},
		{0, 0, 0, 1},
	}, true
}

// Mul returns the matrix product m * o
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				r[i][j] += m[i][k] * o[k][j]
			}
		}
	}
	return r
}

// MulPoint transforms a point, applying translation
func (m Mat4) MulPoint(p Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

// MulDirection transforms a direction, ignoring translation
func (m Mat4) MulDirection(d Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*d.X + m[0][1]*d.Y + m[0][2]*d.Z,
		Y: m[1][0]*d.X + m[1][1]*d.Y + m[1][2]*d.Z,
		Z: m[2][0]*d.X + m[2][1]*d.Y + m[2][2]*d.Z,
	}
}

// Transpose returns the transposed matrix
func (m Mat4) Transpose() Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// NormalMatrix returns the matrix that transforms surface normals under m:
// the inverse transpose of the upper 3x3 block. A singular block yields false.
func (m Mat4) NormalMatrix() (Mat4, bool) {
	a, b, c := m[0][0], m[0][1], m[0][2]
	d, e, f := m[1][0], m[1][1], m[1][2]
	g, h, i := m[2][0], m[2][1], m[2][2]

	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	if math.Abs(det) < 1e-12 {
		return Identity(), false
	}
	inv := 1 / det

	// Cofactor matrix divided by det is the inverse transpose
	return Mat4{
		{(e*i - f*h) * inv, -(d*i - f*g) * inv, (d*h - e*g) * inv, 0},
		{-(b*i - c*h) * inv, (a*i - c*g) * inv, -(a*h - b*g) * inv, 0},
		{(b*f - c*e) * inv, -(a*f - c*d) * inv, (a*e - b*d) * inv, 0},
		{0, 0, 0, 1},
	}, true
}
