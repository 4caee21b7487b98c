package geometry

import (
	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/material"
)

// NewQuad creates a parallelogram mesh from a corner point and two edge
// vectors, split into two triangles. UVs run from (0,0) at the corner to
// (1,1) at corner+u+v; normals are left to the geometric normal u x v.
func NewQuad(corner, u, v core.Vec3, mat material.Material, opts ...MeshOption) (*Mesh, error) {
	vertices := []Vertex{
		{Position: corner, UV: core.NewVec2(0, 0), HasUV: true},
		{Position: corner.Add(u), UV: core.NewVec2(1, 0), HasUV: true},
		{Position: corner.Add(u).Add(v), UV: core.NewVec2(1, 1), HasUV: true},
		{Position: corner.Add(v), UV: core.NewVec2(0, 1), HasUV: true},
	}
	indices := [][3]int{
		{0, 1, 2},
		{0, 2, 3},
	}
	return NewMesh(vertices, indices, mat, opts...)
}
