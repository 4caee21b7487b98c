package renderer

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-kdtracer/pkg/core"
	"github.com/df07/go-kdtracer/pkg/geometry"
	"github.com/df07/go-kdtracer/pkg/material"
	"github.com/df07/go-kdtracer/pkg/scene"
)

var (
	skyTop    = core.NewVec3(0, 0, 1)
	skyBottom = core.NewVec3(0, 0, 1)
	black     = material.NewLambertian(core.NewVec3(0, 0, 0))
)

// emptyScene has an orthographic camera at z=2 looking at the origin and a
// flat blue sky
func emptyScene(t *testing.T) *scene.Scene {
	t.Helper()
	s, err := scene.NewEmptyScene(1).SetBackground(skyTop, skyBottom).Build(context.Background())
	require.NoError(t, err)
	return s
}

// sphereScene adds a unit sphere at the origin; in a 4x4 frame the four
// corner pixel centers miss it and the rest hit
func sphereScene(t *testing.T, mat material.Material) *scene.Scene {
	t.Helper()
	s, err := scene.NewEmptyScene(1).
		SetBackground(skyTop, skyBottom).
		AddSphere(core.NewVec3(0, 0, 0), 1, mat).
		Build(context.Background())
	require.NoError(t, err)
	return s
}

func testConfig(width, height, workers int) Config {
	config := DefaultConfig()
	config.Width = width
	config.Height = height
	config.Workers = workers
	config.SamplesPerAxis = 1
	config.Jitter = false
	config.Gamma = 1
	config.MaxDepth = 5
	return config
}

func newTestEngine(t *testing.T, s *scene.Scene, config Config) *Engine {
	t.Helper()
	e, err := NewEngine(s, config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func isCorner(x, y, w, h int) bool {
	return (x == 0 || x == w-1) && (y == 0 || y == h-1)
}

func TestEngine_EmptySceneIsBackground(t *testing.T) {
	e := newTestEngine(t, emptyScene(t), testConfig(4, 4, 4))

	bitmap, err := e.Render()
	require.NoError(t, err)

	require.Len(t, bitmap.Pix, 64)
	for i := 0; i < len(bitmap.Pix); i += 4 {
		assert.Equal(t, []byte{0, 0, 255, 255}, bitmap.Pix[i:i+4], "pixel %d", i/4)
	}

	stats := e.LastStats()
	assert.Equal(t, 1, stats.Frame)
	require.Len(t, stats.Bands, 4)
	for i, band := range stats.Bands {
		assert.Equal(t, i, band.Index, "bands joined in row order")
		assert.Equal(t, 1, band.Rows)
	}
	assert.Equal(t, 16, stats.Rays)
}

func TestEngine_HitMask(t *testing.T) {
	config := testConfig(4, 4, 2)
	config.Mode = ShadeHitMask
	config.HitColor = core.NewVec3(1, 0, 0)
	e := newTestEngine(t, sphereScene(t, black), config)

	bitmap, err := e.Render()
	require.NoError(t, err)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := [4]byte{255, 0, 0, 255}
			if isCorner(x, y, 4, 4) {
				want = [4]byte{0, 0, 255, 255}
			}
			c := bitmap.At(x, y)
			assert.Equal(t, want, [4]byte{c.R, c.G, c.B, c.A}, "pixel (%d, %d)", x, y)
		}
	}
}

func TestEngine_PathAbsorbs(t *testing.T) {
	e := newTestEngine(t, sphereScene(t, black), testConfig(4, 4, 3))

	bitmap, err := e.Render()
	require.NoError(t, err)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c := bitmap.At(x, y)
			if isCorner(x, y, 4, 4) {
				assert.Equal(t, uint8(255), c.B, "corner (%d, %d) is sky", x, y)
			} else {
				assert.Equal(t, [4]byte{0, 0, 0, 255}, [4]byte{c.R, c.G, c.B, c.A}, "pixel (%d, %d)", x, y)
			}
		}
	}
}

func TestEngine_RemainderRows(t *testing.T) {
	tests := []struct {
		name    string
		height  int
		workers int
	}{
		{"More rows than workers", 5, 4},
		{"Fewer rows than workers", 2, 4},
		{"Single worker", 7, 1},
		{"Prime split", 13, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, emptyScene(t), testConfig(3, tt.height, tt.workers))

			bitmap, err := e.Render()
			require.NoError(t, err)
			require.Len(t, bitmap.Pix, 3*tt.height*4)
			for i := 0; i < len(bitmap.Pix); i += 4 {
				assert.Equal(t, []byte{0, 0, 255, 255}, bitmap.Pix[i:i+4], "pixel %d", i/4)
			}

			rows := 0
			for _, band := range e.LastStats().Bands {
				rows += band.Rows
			}
			assert.Equal(t, tt.height, rows)
		})
	}
}

func TestEngine_Deterministic(t *testing.T) {
	b, err := scene.NewDemo("default", 16.0/9.0)
	require.NoError(t, err)
	s, err := b.Build(context.Background())
	require.NoError(t, err)

	config := DefaultConfig()
	config.Width = 32
	config.Height = 18
	config.Workers = 3
	config.SamplesPerAxis = 2
	config.MaxDepth = 8

	first := newTestEngine(t, s, config)
	second := newTestEngine(t, s, config)

	a, err := first.Render()
	require.NoError(t, err)
	again, err := first.Render()
	require.NoError(t, err)
	other, err := second.Render()
	require.NoError(t, err)

	assert.Equal(t, a.Pix, again.Pix, "repeat render on one engine")
	assert.Equal(t, a.Pix, other.Pix, "same config on another engine")
	assert.Equal(t, 2, first.LastStats().Frame)
}

func TestEngine_ConcurrentRenders(t *testing.T) {
	e := newTestEngine(t, sphereScene(t, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))), testConfig(8, 8, 4))

	want, err := e.Render()
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Bitmap, 6)
	errs := make([]error, 6)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = e.Render()
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, want.Pix, results[i].Pix)
	}
	assert.Equal(t, 7, e.LastStats().Frame)
}

func TestEngine_UpdateScene(t *testing.T) {
	config := testConfig(4, 4, 2)
	config.Mode = ShadeHitMask
	config.HitColor = core.NewVec3(0, 1, 0)
	e := newTestEngine(t, emptyScene(t), config)

	before, err := e.Render()
	require.NoError(t, err)
	assert.Equal(t, uint8(0), before.At(1, 1).G)

	err = e.UpdateScene(func(s *scene.Scene) error {
		s.Shapes = append(s.Shapes, geometry.NewSphere(core.NewVec3(0, 0, 0), 1, black))
		return nil
	})
	require.NoError(t, err)

	after, err := e.Render()
	require.NoError(t, err)
	assert.Equal(t, uint8(255), after.At(1, 1).G)
	assert.Equal(t, uint8(0), after.At(0, 0).G)
}

func TestEngine_UpdateSceneError(t *testing.T) {
	e := newTestEngine(t, emptyScene(t), testConfig(2, 2, 1))
	boom := errors.New("boom")

	err := e.UpdateScene(func(*scene.Scene) error { return boom })
	assert.True(t, errors.Is(err, boom))

	err = e.UpdateScene(func(s *scene.Scene) error {
		s.Cameras = nil
		return nil
	})
	assert.True(t, errors.Is(err, scene.ErrCameraIndex))
}

func TestEngine_Close(t *testing.T) {
	e, err := NewEngine(emptyScene(t), testConfig(2, 2, 3))
	require.NoError(t, err)

	_, err = e.Render()
	require.NoError(t, err)

	require.NoError(t, e.Close())
	require.NoError(t, e.Close(), "second close is a no-op")

	_, err = e.Render()
	assert.True(t, errors.Is(err, ErrClosed))
	err = e.UpdateScene(func(*scene.Scene) error { return nil })
	assert.True(t, errors.Is(err, ErrClosed))

	for _, w := range e.workers {
		_, ok := <-w.results
		assert.False(t, ok, "worker %d exited", w.ID)
	}
}

func TestEngine_PoolBroken(t *testing.T) {
	e, err := NewEngine(emptyScene(t), testConfig(2, 2, 2))
	require.NoError(t, err)

	// Stop one worker behind the engine's back
	w := e.workers[1]
	w.signals <- workerSignal{kind: signalStop}
	res := <-w.results
	require.True(t, res.terminal)

	_, err = e.Render()
	assert.True(t, errors.Is(err, ErrPoolBroken))

	_, err = e.Render()
	assert.True(t, errors.Is(err, ErrPoolBroken), "pool stays broken")

	assert.True(t, errors.Is(e.Close(), ErrPoolBroken))
}

func TestNewEngine_Errors(t *testing.T) {
	s := emptyScene(t)

	_, err := NewEngine(nil, DefaultConfig())
	assert.True(t, errors.Is(err, ErrNilScene))

	bad := DefaultConfig()
	bad.Width = 0
	_, err = NewEngine(s, bad)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	missing := DefaultConfig()
	missing.CameraIndex = 3
	_, err = NewEngine(s, missing)
	assert.True(t, errors.Is(err, scene.ErrCameraIndex))
}

func TestNewEngine_DefaultWorkers(t *testing.T) {
	config := testConfig(2, 2, 0)
	e := newTestEngine(t, emptyScene(t), config)
	assert.Positive(t, e.Workers())
	assert.Equal(t, e.Workers(), e.Config().Workers)
}
