package scene

import (
	"github.com/df07/go-kdtracer/pkg/camera"
	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/material"
)

// NewDefaultScene creates the default scene: three spheres in a row, a solid
// and a hollow glass sphere in front, and a ground quad
func NewDefaultScene(aspectRatio float64) *Builder {
	b := NewBuilder().AddCamera(camera.Config{
		Projection:  camera.Perspective,
		Location:    core.NewVec3(0, 0.75, 2), // Higher and farther back
		Target:      core.NewVec3(0, 0.5, -1), // The center sphere
		Up:          core.NewVec3(0, 1, 0),
		AspectRatio: aspectRatio,
		VFov:        40.0,
	})

	// Create materials
	lambertianGreen := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0).Multiply(0.6))
	lambertianBlue := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	lambertianRed := material.NewLambertian(core.NewVec3(0.65, 0.25, 0.2))
	metalSilver := material.NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.0)
	metalGold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)
	glass := material.NewDielectric(1.5)

	b.AddSphere(core.NewVec3(0, 0.5, -1), 0.5, lambertianRed)
	b.AddSphere(core.NewVec3(-1, 0.5, -1), 0.5, metalSilver)
	b.AddSphere(core.NewVec3(1, 0.5, -1), 0.5, metalGold)
	b.AddSphere(core.NewVec3(0.5, 0.25, -0.5), 0.25, glass)

	// Hollow glass sphere with a blue sphere inside
	b.AddSphere(core.NewVec3(-0.5, 0.25, -0.5), 0.25, glass)
	b.AddSphere(core.NewVec3(-0.5, 0.25, -0.5), -0.24, glass)
	b.AddSphere(core.NewVec3(-0.5, 0.25, -0.5), 0.20, lambertianBlue)

	// Large but finite ground so the scene has proper bounds
	b.AddGroundQuad(core.NewVec3(0, 0, 0), 10000.0, lambertianGreen)

	return b
}

// NewEmptyScene has one orthographic camera and nothing to hit; every pixel
// is background
func NewEmptyScene(aspectRatio float64) *Builder {
	return NewBuilder().AddCamera(camera.Config{
		Projection:  camera.Orthographic,
		Location:    core.NewVec3(0, 0, 2),
		Target:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 1, 0),
		AspectRatio: aspectRatio,
	})
}
