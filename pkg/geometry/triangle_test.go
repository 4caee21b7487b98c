package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-kdtracer/pkg/core"
)

func unitTriangle() ([]Vertex, Triangle) {
	vertices := NewVertices(
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
	)
	return vertices, NewTriangle(vertices, 0, 1, 2)
}

func TestTriangle_Intersect(t *testing.T) {
	vertices, triangle := unitTriangle()

	tests := []struct {
		name      string
		ray       core.Ray
		tMin      float64
		tMax      float64
		shouldHit bool
		expectedT float64
		expectedU float64
		expectedV float64
	}{
		{
			name:      "Ray hits interior",
			ray:       core.NewRay(core.NewVec3(0.2, 0.2, -1), core.NewVec3(0, 0, 1)),
			tMin:      0,
			tMax:      math.Inf(1),
			shouldHit: true,
			expectedT: 1.0,
			expectedU: 0.2,
			expectedV: 0.2,
		},
		{
			name:      "Ray hits edge",
			ray:       core.NewRay(core.NewVec3(0.5, 0, -1), core.NewVec3(0, 0, 1)),
			tMin:      0.001,
			tMax:      10.0,
			shouldHit: true,
			expectedT: 1.0,
			expectedU: 0.5,
			expectedV: 0,
		},
		{
			name:      "Ray hits from behind",
			ray:       core.NewRay(core.NewVec3(0.25, 0.25, 1), core.NewVec3(0, 0, -1)),
			tMin:      0.001,
			tMax:      10.0,
			shouldHit: true,
			expectedT: 1.0,
			expectedU: 0.25,
			expectedV: 0.25,
		},
		{
			name:      "Ray misses triangle",
			ray:       core.NewRay(core.NewVec3(1, 1, -1), core.NewVec3(0, 0, 1)),
			tMin:      0.001,
			tMax:      10.0,
			shouldHit: false,
		},
		{
			name:      "Ray parallel to triangle",
			ray:       core.NewRay(core.NewVec3(0.25, 0.25, 0), core.NewVec3(1, 0, 0)),
			tMin:      0.001,
			tMax:      10.0,
			shouldHit: false,
		},
		{
			name:      "Hit beyond tMax",
			ray:       core.NewRay(core.NewVec3(0.2, 0.2, -1), core.NewVec3(0, 0, 1)),
			tMin:      0,
			tMax:      1.0,
			shouldHit: false,
		},
		{
			name:      "Hit behind origin",
			ray:       core.NewRay(core.NewVec3(0.2, 0.2, 1), core.NewVec3(0, 0, 1)),
			tMin:      math.Inf(-1),
			tMax:      math.Inf(1),
			shouldHit: false,
		},
		{
			name:      "Zero direction",
			ray:       core.NewRay(core.NewVec3(0.2, 0.2, -1), core.Vec3{}),
			tMin:      0,
			tMax:      math.Inf(1),
			shouldHit: false,
		},
		{
			name:      "NaN direction",
			ray:       core.NewRay(core.NewVec3(0.2, 0.2, -1), core.NewVec3(math.NaN(), 0, 1)),
			tMin:      0,
			tMax:      math.Inf(1),
			shouldHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hitT, u, v, isHit := triangle.Intersect(vertices, tt.ray, tt.tMin, tt.tMax)

			if isHit != tt.shouldHit {
				t.Fatalf("Expected hit=%v, got hit=%v (t=%f)", tt.shouldHit, isHit, hitT)
			}
			if !tt.shouldHit {
				return
			}

			if math.Abs(hitT-tt.expectedT) > 1e-6 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hitT)
			}
			if math.Abs(u-tt.expectedU) > 1e-6 || math.Abs(v-tt.expectedV) > 1e-6 {
				t.Errorf("Expected u,v=%f,%f, got %f,%f", tt.expectedU, tt.expectedV, u, v)
			}
		})
	}
}

func TestTriangle_IntersectParametersReconstructPoint(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	randomPoint := func() core.Vec3 {
		return core.NewVec3(random.Float64()*4-2, random.Float64()*4-2, random.Float64()*4-2)
	}

	hits := 0
	for i := 0; i < 5000; i++ {
		vertices := NewVertices(randomPoint(), randomPoint(), randomPoint())
		triangle := NewTriangle(vertices, 0, 1, 2)
		ray := core.NewRay(randomPoint().Multiply(3), randomPoint())

		hitT, u, v, ok := triangle.Intersect(vertices, ray, 0, math.Inf(1))
		if !ok {
			continue
		}
		hits++

		if u < 0 || v < 0 || u+v > 1 {
			t.Fatalf("Barycentric parameters out of range: u=%f v=%f", u, v)
		}

		onRay := ray.At(hitT)
		onTriangle := vertices[0].Position.Add(triangle.Edge1.Multiply(u)).Add(triangle.Edge2.Multiply(v))
		if onRay.Subtract(onTriangle).Length() > 1e-6 {
			t.Fatalf("Ray point %v does not match triangle point %v", onRay, onTriangle)
		}
	}

	if hits == 0 {
		t.Fatal("Expected some random rays to hit")
	}
}

func TestTriangle_Barycentric(t *testing.T) {
	vertices, triangle := unitTriangle()

	u, v, w, ok := triangle.Barycentric(vertices, core.NewVec3(0.2, 0.3, 0))
	if !ok {
		t.Fatal("Expected barycentric coordinates for a valid triangle")
	}
	if math.Abs(u-0.5) > 1e-12 || math.Abs(v-0.2) > 1e-12 || math.Abs(w-0.3) > 1e-12 {
		t.Errorf("Expected (0.5, 0.2, 0.3), got (%f, %f, %f)", u, v, w)
	}

	// Matches the Möller-Trumbore parameters
	ray := core.NewRay(core.NewVec3(0.1, 0.6, 2), core.NewVec3(0, 0, -1))
	hitT, mtU, mtV, hit := triangle.Intersect(vertices, ray, 0, math.Inf(1))
	if !hit {
		t.Fatal("Expected hit")
	}
	_, v, w, _ = triangle.Barycentric(vertices, ray.At(hitT))
	if math.Abs(v-mtU) > 1e-12 || math.Abs(w-mtV) > 1e-12 {
		t.Errorf("Barycentric (%f, %f) disagrees with intersection (%f, %f)", v, w, mtU, mtV)
	}
}

func TestTriangle_DegenerateBarycentric(t *testing.T) {
	vertices := NewVertices(
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 1, 1),
		core.NewVec3(2, 2, 2),
	)
	triangle := NewTriangle(vertices, 0, 1, 2)

	if _, _, _, ok := triangle.Barycentric(vertices, core.NewVec3(1, 1, 1)); ok {
		t.Error("Expected degenerate triangle to report false")
	}

	ray := core.NewRay(core.NewVec3(1, 0, 1), core.NewVec3(0, 1, 0))
	if _, _, _, ok := triangle.Intersect(vertices, ray, 0, math.Inf(1)); ok {
		t.Error("Expected degenerate triangle to never be hit")
	}
}

func TestTriangle_BoundingBoxAndCentroid(t *testing.T) {
	vertices := NewVertices(
		core.NewVec3(0, 0, 0),
		core.NewVec3(2, 0, 0),
		core.NewVec3(1, 3, 0),
	)
	triangle := NewTriangle(vertices, 0, 1, 2)

	bbox := triangle.BoundingBox(vertices)
	expectedMin := core.NewVec3(0, 0, 0)
	expectedMax := core.NewVec3(2, 3, 0)

	const tolerance = 1e-9
	if bbox.Min.Subtract(expectedMin).Length() > tolerance {
		t.Errorf("Expected min %v, got %v", expectedMin, bbox.Min)
	}
	if bbox.Max.Subtract(expectedMax).Length() > tolerance {
		t.Errorf("Expected max %v, got %v", expectedMax, bbox.Max)
	}

	centroid := triangle.Centroid(vertices)
	if centroid.Subtract(core.NewVec3(1, 1, 0)).Length() > tolerance {
		t.Errorf("Expected centroid (1,1,0), got %v", centroid)
	}
}
