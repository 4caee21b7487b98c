package material

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-kdtracer/pkg/core"
)

// Kind tags the material variant
type Kind uint8

const (
	KindUnknown Kind = iota
	KindLambertian
	KindMetal
	KindDielectric
)

// ErrUnknownKind is returned for material variants the renderer cannot scatter
var ErrUnknownKind = errors.New("unknown material kind")

// String returns the lower-case variant name used in scene descriptions
func (k Kind) String() string {
	switch k {
	case KindLambertian:
		return "lambertian"
	case KindMetal:
		return "metal"
	case KindDielectric:
		return "dielectric"
	default:
		return "unknown"
	}
}

// ParseKind maps a scene description name to a Kind
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lambertian", "diffuse":
		return KindLambertian, nil
	case "metal":
		return KindMetal, nil
	case "dielectric", "glass":
		return KindDielectric, nil
	default:
		return KindUnknown, errors.Wrapf(ErrUnknownKind, "%q", name)
	}
}

// Material is a closed set of scattering models. Only the fields of the
// active Kind are meaningful. Values are immutable and safe to share.
type Material struct {
	Kind            Kind
	Albedo          core.Vec3 // Lambertian and Metal reflectance
	Fuzz            float64   // Metal: 0.0 = perfect mirror, 1.0 = very fuzzy
	RefractiveIndex float64   // Dielectric index of refraction (e.g. 1.5 for glass)
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The outgoing ray
	Attenuation core.Vec3 // Color attenuation
}

// Scatter computes the outgoing ray for an incoming ray at a hit.
// It returns false when the material absorbs the ray.
func (m Material) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	switch m.Kind {
	case KindLambertian:
		return m.scatterLambertian(hit, sampler)
	case KindMetal:
		return m.scatterMetal(rayIn, hit, sampler)
	case KindDielectric:
		return m.scatterDielectric(rayIn, hit, sampler)
	default:
		return ScatterResult{}, false
	}
}

// Validate checks that the parameters make sense for the Kind
func (m Material) Validate() error {
	switch m.Kind {
	case KindLambertian, KindMetal:
		if !m.Albedo.IsFinite() {
			return errors.Errorf("%s albedo is not finite: %v", m.Kind, m.Albedo)
		}
	case KindDielectric:
		if !(m.RefractiveIndex > 0) {
			return errors.Errorf("dielectric refractive index must be positive, got %f", m.RefractiveIndex)
		}
	default:
		return errors.Wrapf(ErrUnknownKind, "kind %d", m.Kind)
	}
	return nil
}
