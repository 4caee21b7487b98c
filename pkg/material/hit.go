package material

import (
	"github.com/df07/go-kdtracer/pkg/core"
)

// HitRecord contains information about a ray-object intersection.
// Material borrows from the hit geometry and is only valid while the
// geometry is alive.
type HitRecord struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Surface normal at intersection, facing against the ray
	T         float64   // Parameter t along the ray
	UV        core.Vec2 // Surface texture coordinates, if the geometry has them
	FrontFace bool      // Whether ray hit the front face
	Material  *Material // Material of the hit object
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// OutwardNormal returns the geometric normal pointing out of the surface
func (h *HitRecord) OutwardNormal() core.Vec3 {
	if h.FrontFace {
		return h.Normal
	}
	return h.Normal.Negate()
}
