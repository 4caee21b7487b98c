package material

import (
	"math"

	"github.com/df07/go-kdtracer/pkg/core"
)

// NewDielectric creates a transparent material like glass that can both reflect and refract
func NewDielectric(refractiveIndex float64) Material {
	return Material{Kind: KindDielectric, RefractiveIndex: refractiveIndex}
}

// scatterDielectric reflects or refracts. Total internal reflection always
// reflects; otherwise one uniform sample picks reflection with the Schlick
// probability.
func (m Material) scatterDielectric(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// Dielectrics always attenuate by 1.0 (no color absorption for clear glass)
	attenuation := core.NewVec3(1.0, 1.0, 1.0)

	direction := rayIn.Direction
	length := direction.Length()
	if length == 0 {
		return ScatterResult{}, false
	}

	outward := hit.OutwardNormal()
	dn := direction.Dot(outward)

	var normal core.Vec3
	var niOverNt, cosine float64
	if dn > 0 {
		// Exiting the medium
		normal = outward.Negate()
		niOverNt = m.RefractiveIndex
		cosine = m.RefractiveIndex * dn / length
	} else {
		// Entering the medium
		normal = outward
		niOverNt = 1.0 / m.RefractiveIndex
		cosine = -dn / length
	}

	reflected := direction.Reflect(outward)

	refracted, canRefract := direction.Refract(normal, niOverNt)
	reflectProb := 1.0
	if canRefract {
		reflectProb = Schlick(cosine, m.RefractiveIndex)
	}

	scatteredDir := refracted
	if sampler.Get1D() < reflectProb {
		scatteredDir = reflected
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, scatteredDir),
		Attenuation: attenuation,
	}, true
}

// Schlick approximates the Fresnel reflectance: R0 + (1-R0)(1-cos)^5
func Schlick(cosine, refractiveIndex float64) float64 {
	r0 := (1 - refractiveIndex) / (1 + refractiveIndex)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-math.Min(cosine, 1), 5)
}
