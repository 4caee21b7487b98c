package scene

import (
	"bytes"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-kdtracer/pkg/camera"
	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/geometry"
	"github.com/df07/go-kdtracer/pkg/material"
)

var (
	// ErrUnknownObject is returned for object types other than sphere, mesh, box and quad
	ErrUnknownObject = errors.New("unknown object type")
	// ErrUnknownMaterial is returned when an object names an undefined material
	ErrUnknownMaterial = errors.New("unknown material")
	// ErrUnsupportedTransform is returned for a transform on an object that cannot take one
	ErrUnsupportedTransform = errors.New("transform not supported for object type")
)

// Description is the YAML scene format:
//
//	background: {top: [0.5, 0.7, 1], bottom: [1, 1, 1]}
//	active_camera: 0
//	cameras:
//	  - {type: perspective, location: [0, 1, 3], target: [0, 0, 0], up: [0, 1, 0], vfov: 40}
//	materials:
//	  red: {type: lambertian, albedo: [0.8, 0.1, 0.1]}
//	objects:
//	  - {type: sphere, center: [0, 0, 0], radius: 1, material: red}
type Description struct {
	Background   *BackgroundDesc         `yaml:"background"`
	ActiveCamera int                     `yaml:"active_camera"`
	Cameras      []CameraDesc            `yaml:"cameras"`
	Materials    map[string]MaterialDesc `yaml:"materials"`
	Objects      []ObjectDesc            `yaml:"objects"`
}

// Vec3 is a YAML [x, y, z] triple
type Vec3 [3]float64

// Vec returns the core vector
func (v Vec3) Vec() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// BackgroundDesc is the sky gradient
type BackgroundDesc struct {
	Top    Vec3 `yaml:"top"`
	Bottom Vec3 `yaml:"bottom"`
}

// CameraDesc mirrors camera.Config
type CameraDesc struct {
	Type        string  `yaml:"type"`
	Location    Vec3    `yaml:"location"`
	Target      Vec3    `yaml:"target"`
	Up          *Vec3   `yaml:"up"`
	AspectRatio float64 `yaml:"aspect_ratio"`
	ViewHeight  float64 `yaml:"view_height"`
	VFov        float64 `yaml:"vfov"`
	FocalLength float64 `yaml:"focal_length"`
}

// MaterialDesc mirrors material.Material
type MaterialDesc struct {
	Type            string  `yaml:"type"`
	Albedo          Vec3    `yaml:"albedo"`
	Fuzz            float64 `yaml:"fuzz"`
	RefractiveIndex float64 `yaml:"refractive_index"`
}

// TransformDesc is applied as translate * rotate * scale
type TransformDesc struct {
	Translate *Vec3         `yaml:"translate"`
	Rotate    *RotationDesc `yaml:"rotate"`
	Scale     *Vec3         `yaml:"scale"`
}

// RotationDesc is an angle in degrees around an axis
type RotationDesc struct {
	Angle float64 `yaml:"angle"`
	Axis  Vec3    `yaml:"axis"`
}

// ObjectDesc holds the union of fields for every object type
type ObjectDesc struct {
	Type     string `yaml:"type"`
	Material string `yaml:"material"`

	// sphere
	Center Vec3    `yaml:"center"`
	Radius float64 `yaml:"radius"`

	// mesh
	Vertices  []Vec3         `yaml:"vertices"`
	Normals   []Vec3         `yaml:"normals"`
	UVs       [][2]float64   `yaml:"uvs"`
	Triangles [][3]int       `yaml:"triangles"`
	Transform *TransformDesc `yaml:"transform"`

	// box (center shared with sphere)
	HalfSize Vec3 `yaml:"half_size"`

	// quad
	Corner Vec3 `yaml:"corner"`
	U      Vec3 `yaml:"u"`
	V      Vec3 `yaml:"v"`
}

// ParseDescription decodes a YAML scene, rejecting unknown fields
func ParseDescription(r io.Reader) (*Description, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var d Description
	if err := decoder.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty scene description")
		}
		return nil, errors.Wrap(err, "decoding scene description")
	}
	return &d, nil
}

// LoadDescription reads a YAML scene file
func LoadDescription(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading scene %s", path)
	}
	d, err := ParseDescription(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "scene %s", path)
	}
	return d, nil
}

// Builder converts the description into a scene builder. Cameras without an
// aspect ratio use defaultAspect. Every type name is resolved here, so an
// unknown camera, material or object type fails before anything is built.
func (d *Description) Builder(defaultAspect float64) (*Builder, error) {
	b := NewBuilder()
	if d.Background != nil {
		b.SetBackground(d.Background.Top.Vec(), d.Background.Bottom.Vec())
	}

	for i, cd := range d.Cameras {
		config, err := cd.config(defaultAspect)
		if err != nil {
			return nil, errors.Wrapf(err, "camera %d", i)
		}
		b.AddCamera(config)
	}
	b.SetActiveCamera(d.ActiveCamera)

	materials := make(map[string]material.Material, len(d.Materials))
	// Sorted so the first error is deterministic
	names := make([]string, 0, len(d.Materials))
	for name := range d.Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mat, err := d.Materials[name].material()
		if err != nil {
			return nil, errors.Wrapf(err, "material %q", name)
		}
		materials[name] = mat
	}

	for i, od := range d.Objects {
		mat, ok := materials[od.Material]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownMaterial, "object %d references %q", i, od.Material)
		}
		if err := od.add(b, mat); err != nil {
			return nil, errors.Wrapf(err, "object %d", i)
		}
	}

	return b, nil
}

func (cd CameraDesc) config(defaultAspect float64) (camera.Config, error) {
	projection, err := camera.ParseProjection(cd.Type)
	if err != nil {
		return camera.Config{}, err
	}
	up := core.NewVec3(0, 1, 0)
	if cd.Up != nil {
		up = cd.Up.Vec()
	}
	aspect := cd.AspectRatio
	if aspect == 0 {
		aspect = defaultAspect
	}
	return camera.Config{
		Projection:  projection,
		Location:    cd.Location.Vec(),
		Target:      cd.Target.Vec(),
		Up:          up,
		AspectRatio: aspect,
		ViewHeight:  cd.ViewHeight,
		VFov:        cd.VFov,
		FocalLength: cd.FocalLength,
	}, nil
}

func (md MaterialDesc) material() (material.Material, error) {
	kind, err := material.ParseKind(md.Type)
	if err != nil {
		return material.Material{}, err
	}
	var mat material.Material
	switch kind {
	case material.KindLambertian:
		mat = material.NewLambertian(md.Albedo.Vec())
	case material.KindMetal:
		mat = material.NewMetal(md.Albedo.Vec(), md.Fuzz)
	case material.KindDielectric:
		mat = material.NewDielectric(md.RefractiveIndex)
	}
	return mat, mat.Validate()
}

func (td *TransformDesc) matrix() (*core.Mat4, error) {
	if td == nil {
		return nil, nil
	}
	m := core.Identity()
	if td.Scale != nil {
		m = core.Scaling(td.Scale.Vec())
	}
	if td.Rotate != nil {
		rotation, ok := core.Rotation(td.Rotate.Angle*math.Pi/180, td.Rotate.Axis.Vec())
		if !ok {
			return nil, errors.New("rotation axis has zero length")
		}
		m = rotation.Mul(m)
	}
	if td.Translate != nil {
		m = core.Translation(td.Translate.Vec()).Mul(m)
	}
	return &m, nil
}

func (od ObjectDesc) add(b *Builder, mat material.Material) error {
	transform, err := od.Transform.matrix()
	if err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(od.Type)) {
	case "sphere":
		// Spheres are stored as center and radius; place them with center instead
		if transform != nil {
			return errors.Wrap(ErrUnsupportedTransform, "sphere")
		}
		b.AddSphere(od.Center.Vec(), od.Radius, mat)
	case "mesh":
		vertices, err := od.vertices()
		if err != nil {
			return err
		}
		b.AddMesh(MeshSpec{
			Vertices:  vertices,
			Indices:   od.Triangles,
			Material:  mat,
			Transform: transform,
		})
	case "box":
		b.AddBox(od.Center.Vec(), od.HalfSize.Vec(), mat, transform)
	case "quad":
		b.AddQuad(od.Corner.Vec(), od.U.Vec(), od.V.Vec(), mat, transform)
	default:
		return errors.Wrapf(ErrUnknownObject, "%q", od.Type)
	}
	return nil
}

func (od ObjectDesc) vertices() ([]geometry.Vertex, error) {
	if len(od.Normals) != 0 && len(od.Normals) != len(od.Vertices) {
		return nil, errors.Errorf("%d normals for %d vertices", len(od.Normals), len(od.Vertices))
	}
	if len(od.UVs) != 0 && len(od.UVs) != len(od.Vertices) {
		return nil, errors.Errorf("%d uvs for %d vertices", len(od.UVs), len(od.Vertices))
	}

	vertices := make([]geometry.Vertex, len(od.Vertices))
	for i, p := range od.Vertices {
		vertices[i].Position = p.Vec()
		if len(od.Normals) != 0 {
			vertices[i].Normal = od.Normals[i].Vec()
		}
		if len(od.UVs) != 0 {
			vertices[i].UV = core.NewVec2(od.UVs[i][0], od.UVs[i][1])
			vertices[i].HasUV = true
		}
	}
	return vertices, nil
}
