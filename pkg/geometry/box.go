package geometry

import (
	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/material"
)

// NewBox creates an axis-aligned box mesh of 12 triangles. halfSize holds
// the half-extents, so (1,1,1) makes a 2x2x2 box. Rotate or move it with
// WithTransform. All faces wind counter-clockwise seen from outside.
func NewBox(center, halfSize core.Vec3, mat material.Material, opts ...MeshOption) (*Mesh, error) {
	// The 8 corners of a unit box centered at origin
	corners := [8]core.Vec3{
		core.NewVec3(-1, -1, -1), // 0: left-bottom-back
		core.NewVec3(1, -1, -1),  // 1: right-bottom-back
		core.NewVec3(1, 1, -1),   // 2: right-top-back
		core.NewVec3(-1, 1, -1),  // 3: left-top-back
		core.NewVec3(-1, -1, 1),  // 4: left-bottom-front
		core.NewVec3(1, -1, 1),   // 5: right-bottom-front
		core.NewVec3(1, 1, 1),    // 6: right-top-front
		core.NewVec3(-1, 1, 1),   // 7: left-top-front
	}

	vertices := make([]Vertex, len(corners))
	for i, c := range corners {
		vertices[i] = NewVertex(c.MultiplyVec(halfSize).Add(center))
	}

	indices := [][3]int{
		{4, 5, 6}, {4, 6, 7}, // Front (Z+)
		{1, 0, 3}, {1, 3, 2}, // Back (Z-)
		{5, 1, 2}, {5, 2, 6}, // Right (X+)
		{0, 4, 7}, {0, 7, 3}, // Left (X-)
		{7, 6, 2}, {7, 2, 3}, // Top (Y+)
		{0, 1, 5}, {0, 5, 4}, // Bottom (Y-)
	}

	return NewMesh(vertices, indices, mat, opts...)
}
