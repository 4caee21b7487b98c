package core

import "math"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Bottom-left-far corner
	Max Vec3 // Top-right-near corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns an inverted box that any Expand or Union replaces
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}

	box := AABB{Min: points[0], Max: points[0]}
	for _, point := range points[1:] {
		box = box.Expand(point)
	}
	return box
}

// Expand returns the box grown to include the point
func (aabb AABB) Expand(point Vec3) AABB {
	return AABB{
		Min: aabb.Min.Min(point),
		Max: aabb.Max.Max(point),
	}
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return AABB{
		Min: aabb.Min.Min(other.Min),
		Max: aabb.Max.Max(other.Max),
	}
}

// Intersect runs the slab test against the ray.
// It reports whether the ray's parametric interval [0, +inf) overlaps the box
// on all three axes and returns the entry distance (negative when the origin
// is inside the box).
func (aabb AABB) Intersect(ray Ray) (bool, float64) {
	tNear := math.Inf(-1)
	tFar := math.Inf(1)

	for axis := AxisX; axis <= AxisZ; axis++ {
		lo := aabb.Min.Component(axis)
		hi := aabb.Max.Component(axis)
		origin := ray.Origin.Component(axis)

		// Parallel to the slab: inside or never
		if ray.Direction.Component(axis) == 0 {
			if origin < lo || origin > hi {
				return false, 0
			}
			continue
		}

		inv := ray.InvDirection.Component(axis)
		t1 := (lo - origin) * inv
		t2 := (hi - origin) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tNear = math.Max(tNear, t1)
		tFar = math.Min(tFar, t2)
		if tNear > tFar {
			return false, 0
		}
	}

	if tFar < 0 || math.IsNaN(tNear) || math.IsNaN(tFar) {
		return false, 0
	}
	return true, tNear
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// LongestAxis returns the axis with the longest extent
func (aabb AABB) LongestAxis() Axis {
	size := aabb.Size()
	if size.X > size.Y && size.X > size.Z {
		return AxisX
	}
	if size.Y > size.Z {
		return AxisY
	}
	return AxisZ
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}

// Contains reports whether other lies entirely inside this box
func (aabb AABB) Contains(other AABB) bool {
	return aabb.Min.X <= other.Min.X && aabb.Min.Y <= other.Min.Y && aabb.Min.Z <= other.Min.Z &&
		aabb.Max.X >= other.Max.X && aabb.Max.Y >= other.Max.Y && aabb.Max.Z >= other.Max.Z
}

// Pad returns an AABB expanded by the given amount in all directions
func (aabb AABB) Pad(amount float64) AABB {
	expansion := NewVec3(amount, amount, amount)
	return AABB{
		Min: aabb.Min.Subtract(expansion),
		Max: aabb.Max.Add(expansion),
	}
}
