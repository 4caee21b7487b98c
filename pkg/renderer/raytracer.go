package renderer

import (
	"math"

	"github.com/df07/go-kdtracer/pkg/camera"
	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/scene"
)

// Self-intersection offset for secondary rays
const shadowAcne = 0.001

// Raytracer shades the pixels of one band. It is not safe for concurrent use;
// each worker builds its own per band.
type Raytracer struct {
	scene   *scene.Scene
	camera  *camera.Camera
	config  Config
	sampler core.Sampler
	rays    int
}

// NewRaytracer creates a raytracer for one band with its own sampler
func NewRaytracer(s *scene.Scene, cam *camera.Camera, config Config, sampler core.Sampler) *Raytracer {
	return &Raytracer{
		scene:   s,
		camera:  cam,
		config:  config,
		sampler: sampler,
	}
}

// Rays returns how many rays were traced so far, bounces included
func (rt *Raytracer) Rays() int {
	return rt.rays
}

// RenderBand fills pix with the band's rows. pix must hold
// band.Rows()*Width*4 bytes.
func (rt *Raytracer) RenderBand(band Band, pix []byte) {
	width := rt.config.Width
	for y := band.StartRow; y < band.EndRow; y++ {
		row := (y - band.StartRow) * width * 4
		for x := 0; x < width; x++ {
			putPixel(pix, row+x*4, rt.samplePixel(x, y), rt.config.Gamma)
		}
	}
}

// samplePixel averages an S×S stratified grid of samples over pixel (x, y)
func (rt *Raytracer) samplePixel(x, y int) core.Vec3 {
	s := rt.config.SamplesPerAxis
	width, height := float64(rt.config.Width), float64(rt.config.Height)

	var sum core.Vec3
	for sy := 0; sy < s; sy++ {
		for sx := 0; sx < s; sx++ {
			offset := core.NewVec2(0.5, 0.5)
			if rt.config.Jitter {
				offset = rt.sampler.Get2D()
			}
			u := (float64(x) + (float64(sx)+offset.X)/float64(s)) / width
			v := (float64(y) + (float64(sy)+offset.Y)/float64(s)) / height

			// Row 0 is the top of the image
			ray := rt.camera.GetRay(2*u-1, 1-2*v)
			color := rt.shade(ray)
			if !color.IsFinite() {
				color = core.Vec3{}
			}
			sum = sum.Add(color)
		}
	}
	return sum.Multiply(1.0 / float64(s*s))
}

func (rt *Raytracer) shade(ray core.Ray) core.Vec3 {
	if rt.config.Mode == ShadeHitMask {
		return rt.hitMask(ray)
	}
	return rt.rayColor(ray, rt.config.MaxDepth)
}

func (rt *Raytracer) hitMask(ray core.Ray) core.Vec3 {
	rt.rays++
	if _, ok := rt.scene.Hit(ray, 0, math.Inf(1)); ok {
		return rt.config.HitColor
	}
	return rt.scene.Background(ray.Direction)
}

// rayColor returns the color for a given ray with material support
func (rt *Raytracer) rayColor(ray core.Ray, depth int) core.Vec3 {
	// Out of bounces, no more light is gathered
	if depth <= 0 {
		return core.Vec3{}
	}

	rt.rays++
	tMin := shadowAcne
	if depth == rt.config.MaxDepth {
		tMin = 0
	}
	hit, ok := rt.scene.Hit(ray, tMin, math.Inf(1))
	if !ok {
		return rt.scene.Background(ray.Direction)
	}
	if hit.Material == nil {
		return core.Vec3{}
	}

	scatter, ok := hit.Material.Scatter(ray, *hit, rt.sampler)
	if !ok {
		return core.Vec3{}
	}
	return scatter.Attenuation.MultiplyVec(rt.rayColor(scatter.Scattered, depth-1))
}
