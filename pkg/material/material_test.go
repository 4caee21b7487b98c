package material

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/df07/go-kdtracer/pkg/core"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Kind
		wantErr bool
	}{
		{"Lambertian", "lambertian", KindLambertian, false},
		{"Diffuse alias", "Diffuse", KindLambertian, false},
		{"Metal", " metal ", KindMetal, false},
		{"Glass alias", "glass", KindDielectric, false},
		{"Unknown", "plasma", KindUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%t, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, ErrUnknownKind) {
				t.Errorf("Expected ErrUnknownKind, got %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMaterial_Validate(t *testing.T) {
	if err := NewLambertian(core.NewVec3(0.5, 0.5, 0.5)).Validate(); err != nil {
		t.Errorf("Unexpected error for lambertian: %v", err)
	}
	if err := NewDielectric(0).Validate(); err == nil {
		t.Error("Expected error for zero refractive index")
	}
	if err := (Material{}).Validate(); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Expected ErrUnknownKind for zero material, got %v", err)
	}
}

func TestMaterial_UnknownKindAbsorbs(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))
	hit := HitRecord{Point: core.Vec3{}, Normal: core.NewVec3(0, 1, 0), FrontFace: true}

	if _, scattered := (Material{}).Scatter(ray, hit, core.NewSeededSampler(1)); scattered {
		t.Error("Expected unknown material to absorb")
	}
}

func TestHitRecord_SetFaceNormal(t *testing.T) {
	outward := core.NewVec3(0, 1, 0)

	var front HitRecord
	front.SetFaceNormal(core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0)), outward)
	if !front.FrontFace || front.Normal != outward {
		t.Errorf("Expected front face with outward normal, got %+v", front)
	}

	var back HitRecord
	back.SetFaceNormal(core.NewRay(core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0)), outward)
	if back.FrontFace || back.Normal != outward.Negate() {
		t.Errorf("Expected back face with flipped normal, got %+v", back)
	}
	if back.OutwardNormal() != outward {
		t.Errorf("Expected outward normal %v, got %v", outward, back.OutwardNormal())
	}
}
