package geometry

import (
	"github.com/df07/go-kdtracer/pkg/core"
)

// Vertex is one entry of a mesh's vertex buffer
type Vertex struct {
	Position core.Vec3
	Normal   core.Vec3 // Zero when the source has no normals
	UV       core.Vec2
	HasUV    bool
}

// NewVertex creates a vertex with only a position
func NewVertex(position core.Vec3) Vertex {
	return Vertex{Position: position}
}

// NewVertices wraps plain positions into a vertex buffer
func NewVertices(positions ...core.Vec3) []Vertex {
	vertices := make([]Vertex, len(positions))
	for i, p := range positions {
		vertices[i] = NewVertex(p)
	}
	return vertices
}
