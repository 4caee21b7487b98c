// Package scene aggregates cameras and shapes into the read-mostly world a
// renderer traces against.
package scene

import (
	"math"

	"github.com/pkg/errors"

	"github.com/df07/go-kdtracer/pkg/camera"
	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/geometry"
	"github.com/df07/go-kdtracer/pkg/kdtree"
	"github.com/df07/go-kdtracer/pkg/material"
)

// ErrCameraIndex is returned when no camera exists at the requested index
var ErrCameraIndex = errors.New("camera index out of range")

// ErrInvalidBounds is returned by Preprocess for a shape that cannot be indexed
var ErrInvalidBounds = errors.New("shape bounding box is empty or not finite")

// Scene contains all the elements needed for rendering. It is not safe to
// mutate while a render is in progress; renderers serialize updates.
type Scene struct {
	Cameras      []*camera.Camera
	ActiveCamera int              // Index into Cameras used by default
	Shapes       []geometry.Shape // Objects in the scene
	TopColor     core.Vec3        // Background gradient color straight up
	BottomColor  core.Vec3        // Background gradient color straight down

	tree        *kdtree.Tree   // Index over Shapes, built by Preprocess
	treeOptions kdtree.Options // Options of the last Preprocess
}

// Preprocess builds the shape index. It must be called again after Shapes
// changes. Hit falls back to a linear scan only when the shape count differs
// from the index; replacing a shape in place leaves a stale index until the
// next Preprocess or Reindex.
func (s *Scene) Preprocess(opts kdtree.Options) error {
	for i, shape := range s.Shapes {
		if shape == nil {
			return errors.Errorf("shape %d is nil", i)
		}
		if box := shape.BoundingBox(); !box.IsValid() || !box.Center().IsFinite() {
			return errors.Wrapf(ErrInvalidBounds, "shape %d: %v", i, box)
		}
	}
	s.tree = kdtree.Build(shapePrimitives(s.Shapes), opts)
	s.treeOptions = opts
	return nil
}

// Reindex rebuilds the shape index with the options of the last Preprocess
func (s *Scene) Reindex() error {
	return s.Preprocess(s.treeOptions)
}

// Camera returns the active camera
func (s *Scene) Camera() (*camera.Camera, error) {
	return s.CameraAt(s.ActiveCamera)
}

// CameraAt returns the camera at index i
func (s *Scene) CameraAt(i int) (*camera.Camera, error) {
	if i < 0 || i >= len(s.Cameras) {
		return nil, errors.Wrapf(ErrCameraIndex, "camera %d of %d", i, len(s.Cameras))
	}
	return s.Cameras[i], nil
}

// Hit returns the nearest intersection across all shapes
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	if s.tree == nil || s.tree.Stats().Primitives != len(s.Shapes) {
		return s.hitLinear(ray, tMin, tMax)
	}

	hit, ok := s.tree.Hit(ray, tMin, tMax)
	if !ok {
		return nil, false
	}
	// The index only carries t; ask the winning shape for the full record
	return s.Shapes[hit.Index].Hit(ray, tMin, math.Nextafter(hit.T, math.Inf(1)))
}

func (s *Scene) hitLinear(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closest *material.HitRecord
	for _, shape := range s.Shapes {
		if hit, ok := shape.Hit(ray, tMin, tMax); ok {
			closest = hit
			tMax = hit.T
		}
	}
	return closest, closest != nil
}

// Background returns the sky gradient color for a ray direction
func (s *Scene) Background(direction core.Vec3) core.Vec3 {
	unit := direction.Normalize()
	if !unit.IsFinite() {
		return s.BottomColor
	}
	t := 0.5 * (unit.Y + 1.0)
	return s.BottomColor.Multiply(1.0 - t).Add(s.TopColor.Multiply(t))
}

// PrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) PrimitiveCount() int {
	count := 0
	for _, shape := range s.Shapes {
		switch obj := shape.(type) {
		case *geometry.Mesh:
			count += obj.TriangleCount()
		default:
			count++
		}
	}
	return count
}

// TreeStats returns the shape index statistics (zero before Preprocess)
func (s *Scene) TreeStats() kdtree.Stats {
	if s.tree == nil {
		return kdtree.Stats{}
	}
	return s.tree.Stats()
}

// shapePrimitives adapts shapes to the KD-tree
type shapePrimitives []geometry.Shape

func (p shapePrimitives) Len() int {
	return len(p)
}

func (p shapePrimitives) BoundingBox(i int) core.AABB {
	return p[i].BoundingBox()
}

func (p shapePrimitives) Centroid(i int) core.Vec3 {
	return p[i].BoundingBox().Center()
}

func (p shapePrimitives) Intersect(i int, ray core.Ray, tMin, tMax float64) (kdtree.Hit, bool) {
	hit, ok := p[i].Hit(ray, tMin, tMax)
	if !ok {
		return kdtree.Hit{}, false
	}
	return kdtree.Hit{T: hit.T}, true
}
