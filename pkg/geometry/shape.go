// Package geometry holds the intersectable primitives: triangles over a
// shared vertex buffer, spheres, and meshes that index triangles with a
// KD-tree.
package geometry

import (
	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/material"
)

// Shape is anything a scene can hold and a ray can hit
type Shape interface {
	// Hit returns the nearest intersection with T in (tMin, tMax)
	Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
	BoundingBox() core.AABB
}
