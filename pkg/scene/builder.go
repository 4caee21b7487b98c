package scene

import (
	"context"
	"math"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-kdtracer/pkg/camera"
	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/geometry"
	"github.com/df07/go-kdtracer/pkg/kdtree"
	"github.com/df07/go-kdtracer/pkg/material"
)

// MeshSpec describes a mesh to be built from raw buffers
type MeshSpec struct {
	Vertices  []geometry.Vertex
	Indices   [][3]int
	Material  material.Material
	Transform *core.Mat4 // Optional
}

// shapeFactory defers shape construction so meshes can build in parallel
type shapeFactory struct {
	name     string
	material material.Material
	build    func(opts kdtree.Options) (geometry.Shape, error)
}

// Builder assembles a Scene. Construction is all-or-nothing: Build returns
// either a fully valid scene or an error.
type Builder struct {
	cameras      []camera.Config
	activeCamera int
	shapes       []shapeFactory
	topColor     core.Vec3
	bottomColor  core.Vec3
	treeOptions  kdtree.Options
	parallelism  int
}

// NewBuilder returns a builder with the default sky gradient
func NewBuilder() *Builder {
	return &Builder{
		topColor:    core.NewVec3(0.5, 0.7, 1.0), // Light blue
		bottomColor: core.NewVec3(1.0, 1.0, 1.0), // White
	}
}

// AddCamera appends a camera; the first one is active unless SetActiveCamera says otherwise
func (b *Builder) AddCamera(config camera.Config) *Builder {
	b.cameras = append(b.cameras, config)
	return b
}

// SetActiveCamera selects the default camera by index
func (b *Builder) SetActiveCamera(i int) *Builder {
	b.activeCamera = i
	return b
}

// SetBackground sets the sky gradient
func (b *Builder) SetBackground(top, bottom core.Vec3) *Builder {
	b.topColor = top
	b.bottomColor = bottom
	return b
}

// SetTreeOptions sets KD-tree options for meshes and the scene index
func (b *Builder) SetTreeOptions(opts kdtree.Options) *Builder {
	b.treeOptions = opts
	return b
}

// SetParallelism bounds concurrent mesh builds (0 = runtime.NumCPU())
func (b *Builder) SetParallelism(n int) *Builder {
	b.parallelism = n
	return b
}

// AddSphere adds a sphere; a zero or non-finite radius fails Build
func (b *Builder) AddSphere(center core.Vec3, radius float64, mat material.Material) *Builder {
	b.shapes = append(b.shapes, shapeFactory{
		name:     "sphere",
		material: mat,
		build: func(kdtree.Options) (geometry.Shape, error) {
			if radius == 0 || math.IsNaN(radius) || math.IsInf(radius, 0) || !center.IsFinite() {
				return nil, errors.Errorf("invalid sphere center %v radius %f", center, radius)
			}
			return geometry.NewSphere(center, radius, mat), nil
		},
	})
	return b
}

// AddMesh adds a triangle mesh built from raw buffers
func (b *Builder) AddMesh(spec MeshSpec) *Builder {
	b.shapes = append(b.shapes, shapeFactory{
		name:     "mesh",
		material: spec.Material,
		build: func(opts kdtree.Options) (geometry.Shape, error) {
			meshOpts := []geometry.MeshOption{geometry.WithTreeOptions(opts)}
			if spec.Transform != nil {
				meshOpts = append(meshOpts, geometry.WithTransform(*spec.Transform))
			}
			return geometry.NewMesh(spec.Vertices, spec.Indices, spec.Material, meshOpts...)
		},
	})
	return b
}

// AddBox adds an axis-aligned box mesh, optionally transformed
func (b *Builder) AddBox(center, halfSize core.Vec3, mat material.Material, transform *core.Mat4) *Builder {
	b.shapes = append(b.shapes, shapeFactory{
		name:     "box",
		material: mat,
		build: func(opts kdtree.Options) (geometry.Shape, error) {
			meshOpts := []geometry.MeshOption{geometry.WithTreeOptions(opts)}
			if transform != nil {
				meshOpts = append(meshOpts, geometry.WithTransform(*transform))
			}
			return geometry.NewBox(center, halfSize, mat, meshOpts...)
		},
	})
	return b
}

// AddQuad adds a parallelogram mesh, optionally transformed
func (b *Builder) AddQuad(corner, u, v core.Vec3, mat material.Material, transform *core.Mat4) *Builder {
	b.shapes = append(b.shapes, shapeFactory{
		name:     "quad",
		material: mat,
		build: func(opts kdtree.Options) (geometry.Shape, error) {
			meshOpts := []geometry.MeshOption{geometry.WithTreeOptions(opts)}
			if transform != nil {
				meshOpts = append(meshOpts, geometry.WithTransform(*transform))
			}
			return geometry.NewQuad(corner, u, v, mat, meshOpts...)
		},
	})
	return b
}

// AddGroundQuad adds a large horizontal quad centered at center with its
// normal pointing up. u x v = (size,0,0) x (0,0,-size) = (0,size²,0).
func (b *Builder) AddGroundQuad(center core.Vec3, size float64, mat material.Material) *Builder {
	corner := core.NewVec3(center.X-size/2, center.Y, center.Z+size/2)
	return b.AddQuad(corner, core.NewVec3(size, 0, 0), core.NewVec3(0, 0, -size), mat, nil)
}

// ShapeCount returns the number of shapes added so far
func (b *Builder) ShapeCount() int {
	return len(b.shapes)
}

// Build validates every camera and material, builds meshes concurrently and
// indexes the result
func (b *Builder) Build(ctx context.Context) (*Scene, error) {
	if len(b.cameras) == 0 {
		return nil, errors.New("scene has no cameras")
	}
	if b.activeCamera < 0 || b.activeCamera >= len(b.cameras) {
		return nil, errors.Wrapf(ErrCameraIndex, "active camera %d of %d", b.activeCamera, len(b.cameras))
	}

	cameras := make([]*camera.Camera, len(b.cameras))
	for i, config := range b.cameras {
		cam, err := camera.New(config)
		if err != nil {
			return nil, errors.Wrapf(err, "camera %d", i)
		}
		cameras[i] = cam
	}

	for i, factory := range b.shapes {
		if err := factory.material.Validate(); err != nil {
			return nil, errors.Wrapf(err, "%s %d material", factory.name, i)
		}
	}

	shapes := make([]geometry.Shape, len(b.shapes))
	g, ctx := errgroup.WithContext(ctx)
	limit := b.parallelism
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	g.SetLimit(limit)

	for i, factory := range b.shapes {
		i, factory := i, factory
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			shape, err := factory.build(b.treeOptions)
			if err != nil {
				return errors.Wrapf(err, "%s %d", factory.name, i)
			}
			shapes[i] = shape
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := &Scene{
		Cameras:      cameras,
		ActiveCamera: b.activeCamera,
		Shapes:       shapes,
		TopColor:     b.topColor,
		BottomColor:  b.bottomColor,
	}
	if err := s.Preprocess(b.treeOptions); err != nil {
		return nil, err
	}
	return s, nil
}
