// Package camera turns normalized screen coordinates into primary rays.
package camera

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-kdtracer/pkg/core"
)

var (
	// ErrDegenerateBasis is returned when the view direction or up vector
	// cannot span an orthonormal basis
	ErrDegenerateBasis = errors.New("degenerate camera basis")
	// ErrUnknownProjection is returned for projections other than orthographic and perspective
	ErrUnknownProjection = errors.New("unknown camera projection")
	// ErrZeroAxis is returned when rotating around a zero-length axis
	ErrZeroAxis = errors.New("rotation axis has zero length")
)

// Projection selects the camera variant
type Projection uint8

const (
	ProjectionUnknown Projection = iota
	Orthographic
	Perspective
)

// String returns the name used in scene descriptions
func (p Projection) String() string {
	switch p {
	case Orthographic:
		return "orthographic"
	case Perspective:
		return "perspective"
	default:
		return "unknown"
	}
}

// ParseProjection maps a scene description name to a Projection
func ParseProjection(name string) (Projection, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "orthographic", "ortho":
		return Orthographic, nil
	case "perspective":
		return Perspective, nil
	default:
		return ProjectionUnknown, errors.Wrapf(ErrUnknownProjection, "%q", name)
	}
}

// Config contains all camera configuration parameters
type Config struct {
	Projection  Projection
	Location    core.Vec3 // Eye position
	Target      core.Vec3 // Point the camera looks at
	Up          core.Vec3 // Approximate up direction
	AspectRatio float64   // Screen width / height
	ViewHeight  float64   // Orthographic: world-space height of the screen (0 = 2)
	VFov        float64   // Perspective: vertical field of view in degrees (0 = 90)
	FocalLength float64   // Perspective: distance from eye to screen plane (0 = 1)
}

// Camera generates rays for rendering. Its basis is right-handed with
// right = forward x up. A Camera is read-only during rendering; RotateLocally
// must only run while no render is in flight.
type Camera struct {
	projection Projection
	location   core.Vec3
	forward    core.Vec3
	right      core.Vec3
	up         core.Vec3

	aspectRatio float64
	halfWidth   float64
	halfHeight  float64
	focalLength float64
}

// New validates the configuration and derives the orthonormal basis
func New(config Config) (*Camera, error) {
	if config.Projection != Orthographic && config.Projection != Perspective {
		return nil, errors.Wrapf(ErrUnknownProjection, "projection %d", config.Projection)
	}
	if !(config.AspectRatio > 0) || math.IsInf(config.AspectRatio, 0) {
		return nil, errors.Errorf("aspect ratio must be positive, got %f", config.AspectRatio)
	}

	forward, right, up, err := basis(config.Target.Subtract(config.Location), config.Up)
	if err != nil {
		return nil, err
	}

	c := &Camera{
		projection:  config.Projection,
		location:    config.Location,
		forward:     forward,
		right:       right,
		up:          up,
		aspectRatio: config.AspectRatio,
	}

	switch config.Projection {
	case Orthographic:
		viewHeight := config.ViewHeight
		if viewHeight == 0 {
			viewHeight = 2
		}
		if !(viewHeight > 0) {
			return nil, errors.Errorf("orthographic view height must be positive, got %f", viewHeight)
		}
		c.halfHeight = viewHeight / 2
	case Perspective:
		vfov := config.VFov
		if vfov == 0 {
			vfov = 90
		}
		if !(vfov > 0 && vfov < 180) {
			return nil, errors.Errorf("vertical field of view must be in (0, 180) degrees, got %f", vfov)
		}
		c.focalLength = config.FocalLength
		if c.focalLength == 0 {
			c.focalLength = 1
		}
		if !(c.focalLength > 0) {
			return nil, errors.Errorf("focal length must be positive, got %f", c.focalLength)
		}
		c.halfHeight = c.focalLength * math.Tan(vfov*math.Pi/360)
	}
	c.halfWidth = c.halfHeight * c.aspectRatio

	return c, nil
}

// basis builds forward, right and true up from a view direction and an up hint
func basis(view, upHint core.Vec3) (forward, right, up core.Vec3, err error) {
	if !view.IsFinite() || !upHint.IsFinite() {
		return forward, right, up, errors.Wrap(ErrDegenerateBasis, "non-finite location, target or up")
	}
	if view.IsZero() {
		return forward, right, up, errors.Wrap(ErrDegenerateBasis, "target equals location")
	}
	if upHint.IsZero() {
		return forward, right, up, errors.Wrap(ErrDegenerateBasis, "up vector is zero")
	}

	forward = view.Normalize()
	cross := forward.Cross(upHint.Normalize())
	// Sine of the angle between forward and up
	if cross.Length() < 1e-9 {
		return forward, right, up, errors.Wrap(ErrDegenerateBasis, "up vector is collinear with the view direction")
	}
	right = cross.Normalize()
	up = right.Cross(forward).Normalize()

	return forward, right, up, nil
}

// GetRay returns the primary ray through screen point (x, y), both in
// [-1, 1] with x to the right and y up
func (c *Camera) GetRay(x, y float64) core.Ray {
	offset := c.right.Multiply(x * c.halfWidth).Add(c.up.Multiply(y * c.halfHeight))

	switch c.projection {
	case Perspective:
		screen := c.location.Add(c.forward.Multiply(c.focalLength)).Add(offset)
		return core.NewRay(screen, screen.Subtract(c.location).Normalize())
	default:
		return core.NewRay(c.location.Add(offset), c.forward)
	}
}

// RotateLocally rotates the view around an axis given in camera space
// (x = right, y = up, z = forward). The location is unchanged.
func (c *Camera) RotateLocally(angle float64, axis core.Vec3) error {
	if !axis.IsFinite() || axis.IsZero() {
		return errors.Wrapf(ErrZeroAxis, "axis %v", axis)
	}

	world := c.right.Multiply(axis.X).Add(c.up.Multiply(axis.Y)).Add(c.forward.Multiply(axis.Z))
	rotation, ok := core.Rotation(angle, world)
	if !ok {
		return errors.Wrapf(ErrZeroAxis, "axis %v", axis)
	}

	forward, right, up, err := basis(rotation.MulDirection(c.forward), rotation.MulDirection(c.up))
	if err != nil {
		return errors.Wrap(err, "rotated basis")
	}
	c.forward, c.right, c.up = forward, right, up
	return nil
}

// Projection returns the camera variant
func (c *Camera) Projection() Projection {
	return c.projection
}

// Location returns the eye position
func (c *Camera) Location() core.Vec3 {
	return c.location
}

// Forward returns the unit view direction
func (c *Camera) Forward() core.Vec3 {
	return c.forward
}

// Right returns the unit screen-right axis
func (c *Camera) Right() core.Vec3 {
	return c.right
}

// Up returns the unit screen-up axis
func (c *Camera) Up() core.Vec3 {
	return c.up
}

// AspectRatio returns screen width / height
func (c *Camera) AspectRatio() float64 {
	return c.aspectRatio
}
