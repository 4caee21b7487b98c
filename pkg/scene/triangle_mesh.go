package scene

import (
	"math"

	"github.com/df07/go-kdtracer/pkg/camera"
	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/geometry"
	"github.com/df07/go-kdtracer/pkg/material"
)

// NewTriangleMeshScene shows a rotated box, a pyramid and a smooth-shaded
// icosahedron on a ground quad
func NewTriangleMeshScene(aspectRatio float64) *Builder {
	b := NewBuilder().AddCamera(camera.Config{
		Projection:  camera.Perspective,
		Location:    core.NewVec3(0, 2, 6),
		Target:      core.NewVec3(0, 1, 0),
		Up:          core.NewVec3(0, 1, 0),
		AspectRatio: aspectRatio,
		VFov:        45.0,
	})

	b.AddGroundQuad(core.NewVec3(0, 0, 0), 100, material.NewLambertian(core.NewVec3(0.7, 0.7, 0.7)))

	redMetal := material.NewMetal(core.NewVec3(0.8, 0.2, 0.2), 0.1)
	blueLambertian := material.NewLambertian(core.NewVec3(0.2, 0.3, 0.8))
	goldMetal := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.05)

	// Box rotated 30° around its vertical axis
	boxCenter := core.NewVec3(-2, 0.5, 0)
	b.AddBox(core.Vec3{}, core.NewVec3(0.5, 0.5, 0.5), redMetal, aroundCenter(boxCenter, math.Pi/6))

	pyramid := pyramidMesh(1.5, 2.0, blueLambertian)
	pyramid.Transform = aroundCenter(core.NewVec3(0, 1, 0), math.Pi/4)
	b.AddMesh(pyramid)

	ico := icosahedronMesh(0.8, goldMetal)
	ico.Transform = aroundCenter(core.NewVec3(2, 0.8, 0), math.Pi/3)
	b.AddMesh(ico)

	return b
}

// aroundCenter rotates around the Y axis then moves to center
func aroundCenter(center core.Vec3, angle float64) *core.Mat4 {
	rotation, _ := core.Rotation(angle, core.NewVec3(0, 1, 0))
	m := core.Translation(center).Mul(rotation)
	return &m
}

// pyramidMesh is a square pyramid centered at the origin
func pyramidMesh(baseSize, height float64, mat material.Material) MeshSpec {
	halfBase := baseSize * 0.5
	halfHeight := height * 0.5

	return MeshSpec{
		Vertices: geometry.NewVertices(
			core.NewVec3(-halfBase, -halfHeight, -halfBase), // 0: left-back
			core.NewVec3(+halfBase, -halfHeight, -halfBase), // 1: right-back
			core.NewVec3(+halfBase, -halfHeight, +halfBase), // 2: right-front
			core.NewVec3(-halfBase, -halfHeight, +halfBase), // 3: left-front
			core.NewVec3(0, +halfHeight, 0),                 // 4: apex
		),
		Indices: [][3]int{
			{0, 1, 2}, {0, 2, 3}, // base
			{1, 0, 4}, // back
			{2, 1, 4}, // right
			{3, 2, 4}, // front
			{0, 3, 4}, // left
		},
		Material: mat,
	}
}

// icosahedronMesh is a 20-sided polyhedron centered at the origin with
// vertex normals pointing outward, so it shades like a coarse sphere
func icosahedronMesh(radius float64, mat material.Material) MeshSpec {
	phi := (1.0 + math.Sqrt(5)) / 2.0
	scale := radius / math.Sqrt(1+phi*phi)

	corners := []core.Vec3{
		core.NewVec3(-1, phi, 0), core.NewVec3(1, phi, 0),
		core.NewVec3(-1, -phi, 0), core.NewVec3(1, -phi, 0),
		core.NewVec3(0, -1, phi), core.NewVec3(0, 1, phi),
		core.NewVec3(0, -1, -phi), core.NewVec3(0, 1, -phi),
		core.NewVec3(phi, 0, -1), core.NewVec3(phi, 0, 1),
		core.NewVec3(-phi, 0, -1), core.NewVec3(-phi, 0, 1),
	}
	vertices := make([]geometry.Vertex, len(corners))
	for i, c := range corners {
		vertices[i] = geometry.Vertex{Position: c.Multiply(scale), Normal: c.Normalize()}
	}

	return MeshSpec{
		Vertices: vertices,
		Indices: [][3]int{
			// 5 faces around point 0
			{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
			// 5 adjacent faces
			{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
			// 5 faces around point 3
			{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
			// 5 adjacent faces
			{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
		},
		Material: mat,
	}
}
