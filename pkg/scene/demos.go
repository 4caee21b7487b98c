package scene

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownDemo is returned by NewDemo for unregistered names
var ErrUnknownDemo = errors.New("unknown demo scene")

var demos = map[string]func(aspectRatio float64) *Builder{
	"default":    NewDefaultScene,
	"empty":      NewEmptyScene,
	"meshes":     NewTriangleMeshScene,
	"spheregrid": func(aspectRatio float64) *Builder { return NewSphereGridScene(aspectRatio, 10) },
}

// DemoNames lists the built-in scenes in sorted order
func DemoNames() []string {
	names := make([]string, 0, len(demos))
	for name := range demos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewDemo returns the builder for a built-in scene
func NewDemo(name string, aspectRatio float64) (*Builder, error) {
	factory, ok := demos[strings.ToLower(name)]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownDemo, "%q (available: %s)", name, strings.Join(DemoNames(), ", "))
	}
	return factory(aspectRatio), nil
}
