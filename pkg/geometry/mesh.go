package geometry

import (
	"github.com/pkg/errors"

	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/kdtree"
	"github.com/df07/go-kdtracer/pkg/material"
)

// ErrIndexOutOfRange is returned for triangle indices outside the vertex buffer
var ErrIndexOutOfRange = errors.New("vertex index out of range")

// ErrEmptyMesh is returned for a mesh without triangles
var ErrEmptyMesh = errors.New("mesh has no triangles")

// Mesh owns a vertex buffer, the triangles indexing it, a KD-tree over the
// triangles and one material. It is read-only after NewMesh and safe for
// concurrent use.
type Mesh struct {
	vertices  []Vertex
	triangles []Triangle
	tree      *kdtree.Tree
	material  material.Material
}

// MeshOption customizes mesh construction
type MeshOption func(*meshOptions)

type meshOptions struct {
	transform *core.Mat4
	tree      kdtree.Options
}

// WithTransform applies m to positions and normals before the tree is built
func WithTransform(m core.Mat4) MeshOption {
	return func(o *meshOptions) {
		o.transform = &m
	}
}

// WithTreeOptions overrides KD-tree construction options
func WithTreeOptions(opts kdtree.Options) MeshOption {
	return func(o *meshOptions) {
		o.tree = opts
	}
}

// NewMesh builds a mesh from a vertex buffer and index triples. The mesh
// takes ownership of vertices; with a transform it keeps a transformed copy.
func NewMesh(vertices []Vertex, indices [][3]int, mat material.Material, opts ...MeshOption) (*Mesh, error) {
	var options meshOptions
	for _, opt := range opts {
		opt(&options)
	}

	if len(indices) == 0 {
		return nil, ErrEmptyMesh
	}
	for i, tri := range indices {
		for _, idx := range tri {
			if idx < 0 || idx >= len(vertices) {
				return nil, errors.Wrapf(ErrIndexOutOfRange, "triangle %d references vertex %d of %d", i, idx, len(vertices))
			}
		}
	}

	if options.transform != nil {
		transformed, err := transformVertices(vertices, *options.transform)
		if err != nil {
			return nil, err
		}
		vertices = transformed
	}

	triangles := make([]Triangle, len(indices))
	for i, tri := range indices {
		triangles[i] = NewTriangle(vertices, tri[0], tri[1], tri[2])
	}

	m := &Mesh{
		vertices:  vertices,
		triangles: triangles,
		material:  mat,
	}
	m.tree = kdtree.Build(trianglePrimitives{vertices: vertices, triangles: triangles}, options.tree)

	return m, nil
}

func transformVertices(vertices []Vertex, m core.Mat4) ([]Vertex, error) {
	normalMatrix, ok := m.NormalMatrix()
	if !ok {
		return nil, errors.New("mesh transform is singular")
	}

	out := make([]Vertex, len(vertices))
	for i, v := range vertices {
		out[i] = v
		out[i].Position = m.MulPoint(v.Position)
		if !v.Normal.IsZero() {
			out[i].Normal = normalMatrix.MulDirection(v.Normal).Normalize()
		}
	}
	return out, nil
}

// Hit returns the nearest triangle hit. Normals are interpolated from the
// vertex normals when all three are present, otherwise the geometric normal
// is used. UVs are interpolated when all three vertices carry them.
func (m *Mesh) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	hit, ok := m.tree.Hit(ray, tMin, tMax)
	if !ok {
		return nil, false
	}

	tri := m.triangles[hit.Index]
	a := m.vertices[tri.Indices[0]]
	b := m.vertices[tri.Indices[1]]
	c := m.vertices[tri.Indices[2]]
	w := 1 - hit.U - hit.V

	normal := tri.GeometricNormal()
	if !a.Normal.IsZero() && !b.Normal.IsZero() && !c.Normal.IsZero() {
		interpolated := a.Normal.Multiply(w).Add(b.Normal.Multiply(hit.U)).Add(c.Normal.Multiply(hit.V))
		if !interpolated.IsZero() {
			normal = interpolated.Normalize()
		}
	}

	record := &material.HitRecord{
		T:        hit.T,
		Point:    ray.At(hit.T),
		Material: &m.material,
	}
	record.SetFaceNormal(ray, normal)

	if a.HasUV && b.HasUV && c.HasUV {
		record.UV = a.UV.Multiply(w).Add(b.UV.Multiply(hit.U)).Add(c.UV.Multiply(hit.V))
	}

	return record, true
}

// BoundingBox returns the box around every triangle
func (m *Mesh) BoundingBox() core.AABB {
	return m.tree.Bounds()
}

// TriangleCount returns the number of triangles in this mesh
func (m *Mesh) TriangleCount() int {
	return len(m.triangles)
}

// Vertices returns the vertex buffer; callers must not modify it
func (m *Mesh) Vertices() []Vertex {
	return m.vertices
}

// Triangles returns the triangle buffer; callers must not modify it
func (m *Mesh) Triangles() []Triangle {
	return m.triangles
}

// Material returns the mesh material
func (m *Mesh) Material() material.Material {
	return m.material
}

// TreeStats returns the KD-tree construction statistics
func (m *Mesh) TreeStats() kdtree.Stats {
	return m.tree.Stats()
}

// Validate checks the KD-tree invariants
func (m *Mesh) Validate() error {
	return m.tree.Validate()
}

// trianglePrimitives adapts a triangle buffer to the KD-tree
type trianglePrimitives struct {
	vertices  []Vertex
	triangles []Triangle
}

func (p trianglePrimitives) Len() int {
	return len(p.triangles)
}

func (p trianglePrimitives) BoundingBox(i int) core.AABB {
	return p.triangles[i].BoundingBox(p.vertices)
}

func (p trianglePrimitives) Centroid(i int) core.Vec3 {
	return p.triangles[i].Centroid(p.vertices)
}

func (p trianglePrimitives) Intersect(i int, ray core.Ray, tMin, tMax float64) (kdtree.Hit, bool) {
	t, u, v, ok := p.triangles[i].Intersect(p.vertices, ray, tMin, tMax)
	if !ok {
		return kdtree.Hit{}, false
	}
	return kdtree.Hit{T: t, U: u, V: v}, true
}
