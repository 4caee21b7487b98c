package renderer

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-kdtracer/pkg/core"
)

// ErrInvalidConfig is returned by Config.Validate
var ErrInvalidConfig = errors.New("invalid render config")

// ShadeMode selects how a sample ray is turned into a color
type ShadeMode uint8

const (
	// ShadePath follows material scattering up to MaxDepth bounces
	ShadePath ShadeMode = iota
	// ShadeHitMask paints HitColor wherever the primary ray hits anything
	ShadeHitMask
)

func (m ShadeMode) String() string {
	switch m {
	case ShadePath:
		return "path"
	case ShadeHitMask:
		return "hitmask"
	default:
		return "unknown"
	}
}

// ParseShadeMode maps a config name to a ShadeMode
func ParseShadeMode(name string) (ShadeMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "path", "":
		return ShadePath, nil
	case "hitmask", "hit", "mask":
		return ShadeHitMask, nil
	default:
		return ShadePath, errors.Wrapf(ErrInvalidConfig, "unknown shade mode %q", name)
	}
}

// Config contains rendering configuration
type Config struct {
	Width          int       // Image width in pixels
	Height         int       // Image height in pixels
	Workers        int       // Band workers; 0 uses runtime.NumCPU()
	SamplesPerAxis int       // S, for an S×S sample grid per pixel
	MaxDepth       int       // Maximum ray bounce depth in ShadePath
	Mode           ShadeMode // How samples are colored
	HitColor       core.Vec3 // Color for hits in ShadeHitMask
	Seed           int64     // Base seed; each band adds its index
	Jitter         bool      // Jitter samples within their grid cell
	Gamma          float64   // Output gamma; 1 disables correction
	CameraIndex    int       // Scene camera to render; -1 uses the active camera
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Width:          400,
		Height:         225,
		Workers:        0,
		SamplesPerAxis: 4,
		MaxDepth:       50,
		Mode:           ShadePath,
		HitColor:       core.NewVec3(1, 0, 0),
		Seed:           42,
		Jitter:         true,
		Gamma:          2.0,
		CameraIndex:    -1,
	}
}

// Validate reports the first setting that cannot produce an image
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return errors.Wrapf(ErrInvalidConfig, "image size %dx%d", c.Width, c.Height)
	case c.Workers < 0:
		return errors.Wrapf(ErrInvalidConfig, "workers %d", c.Workers)
	case c.SamplesPerAxis <= 0:
		return errors.Wrapf(ErrInvalidConfig, "samples per axis %d", c.SamplesPerAxis)
	case c.Mode == ShadePath && c.MaxDepth <= 0:
		return errors.Wrapf(ErrInvalidConfig, "max depth %d", c.MaxDepth)
	case c.Mode != ShadePath && c.Mode != ShadeHitMask:
		return errors.Wrapf(ErrInvalidConfig, "shade mode %d", c.Mode)
	case !(c.Gamma > 0) || math.IsInf(c.Gamma, 0):
		return errors.Wrapf(ErrInvalidConfig, "gamma %f", c.Gamma)
	case !c.HitColor.IsFinite():
		return errors.Wrapf(ErrInvalidConfig, "hit color %v", c.HitColor)
	case c.CameraIndex < -1:
		return errors.Wrapf(ErrInvalidConfig, "camera index %d", c.CameraIndex)
	}
	return nil
}
