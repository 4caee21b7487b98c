// Package renderer turns a scene into pixels with a fixed pool of band
// workers.
package renderer

import (
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/df07/go-kdtracer/pkg/camera"
	"github.com/df07/go-kdtracer/pkg/scene"
)

var (
	// ErrPoolBroken is returned when a worker's result channel closes early
	ErrPoolBroken = errors.New("render worker pool broken")
	// ErrClosed is returned by calls after Close
	ErrClosed = errors.New("render engine closed")
	// ErrNilScene is returned by NewEngine without a scene
	ErrNilScene = errors.New("nil scene")
)

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine owns the scene and the worker pool. Render and UpdateScene are
// safe to call from multiple goroutines; they run one at a time.
type Engine struct {
	config Config
	logger zerolog.Logger

	sceneMu sync.RWMutex // Workers read per band, UpdateScene writes
	scene   *scene.Scene

	frameMu sync.Mutex // Serializes frames, updates and Close
	workers []*Worker
	frame   int
	closed  bool
	broken  bool

	statsMu sync.Mutex
	stats   FrameStats
}

// NewEngine validates the config, checks the camera and starts the workers
func NewEngine(s *scene.Scene, config Config, opts ...Option) (*Engine, error) {
	if s == nil {
		return nil, ErrNilScene
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Workers == 0 {
		config.Workers = runtime.NumCPU()
	}

	e := &Engine{
		config: config,
		logger: zerolog.Nop(),
		scene:  s,
	}
	for _, opt := range opts {
		opt(e)
	}

	if _, err := e.activeCamera(); err != nil {
		return nil, err
	}

	for i := 0; i < config.Workers; i++ {
		w := newWorker(i, e)
		e.workers = append(e.workers, w)
		go w.run()
	}

	e.logger.Debug().
		Int("workers", config.Workers).
		Int("width", config.Width).
		Int("height", config.Height).
		Str("mode", config.Mode.String()).
		Int("primitives", s.PrimitiveCount()).
		Msg("render engine started")
	return e, nil
}

// Config returns the effective configuration
func (e *Engine) Config() Config {
	return e.config
}

// Workers returns the pool size
func (e *Engine) Workers() int {
	return len(e.workers)
}

// LastStats returns the statistics of the most recent frame
func (e *Engine) LastStats() FrameStats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.stats
}

// activeCamera resolves the configured camera. Callers hold sceneMu or own
// the scene exclusively.
func (e *Engine) activeCamera() (*camera.Camera, error) {
	if e.config.CameraIndex < 0 {
		return e.scene.Camera()
	}
	return e.scene.CameraAt(e.config.CameraIndex)
}

func (e *Engine) usable() error {
	if e.closed {
		return ErrClosed
	}
	if e.broken {
		return ErrPoolBroken
	}
	return nil
}

// Render signals every worker with one band and blocks until all bands are
// back, then stitches them in row order.
func (e *Engine) Render() (*Bitmap, error) {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()

	if err := e.usable(); err != nil {
		return nil, err
	}

	start := time.Now()
	bands := Bands(e.config.Height, len(e.workers))
	for i, w := range e.workers {
		w.signals <- workerSignal{kind: signalRender, band: bands[i]}
	}

	bitmap := NewBitmap(e.config.Width, e.config.Height)
	stride := e.config.Width * 4
	bandStats := make([]BandStats, 0, len(bands))
	var firstErr error

	// Barrier: every worker answers before the frame is done
	for _, w := range e.workers {
		res, ok := <-w.results
		if !ok {
			e.broken = true
			if firstErr == nil {
				firstErr = errors.Wrapf(ErrPoolBroken, "worker %d", w.ID)
			}
			continue
		}
		if res.err != nil {
			if firstErr == nil {
				firstErr = errors.Wrapf(res.err, "band %d", res.band.Index)
			}
			continue
		}
		copy(bitmap.Pix[res.band.StartRow*stride:res.band.EndRow*stride], res.pix)
		bandStats = append(bandStats, BandStats{
			Index:   res.band.Index,
			Worker:  res.worker,
			Rows:    res.band.Rows(),
			Rays:    res.rays,
			Elapsed: res.elapsed,
		})
	}
	if firstErr != nil {
		e.logger.Error().Err(firstErr).Msg("frame failed")
		return nil, firstErr
	}

	e.frame++
	stats := newFrameStats(e.frame, e.config.Width, e.config.Height, time.Since(start), bandStats)
	e.statsMu.Lock()
	e.stats = stats
	e.statsMu.Unlock()

	e.logger.Info().
		Int("frame", stats.Frame).
		Dur("elapsed", stats.Elapsed).
		Int("rays", stats.Rays).
		Dur("band_mean", stats.MeanBand).
		Dur("band_stddev", stats.StdDevBand).
		Msg("frame rendered")
	return bitmap, nil
}

// UpdateScene runs fn with exclusive access to the scene between frames and
// rebuilds the shape index afterwards
func (e *Engine) UpdateScene(fn func(*scene.Scene) error) error {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()

	if err := e.usable(); err != nil {
		return err
	}

	e.sceneMu.Lock()
	defer e.sceneMu.Unlock()

	if err := fn(e.scene); err != nil {
		return errors.Wrap(err, "update scene")
	}
	if err := e.scene.Reindex(); err != nil {
		return errors.Wrap(err, "reindex scene")
	}
	if _, err := e.activeCamera(); err != nil {
		return errors.Wrap(err, "update scene")
	}

	e.logger.Debug().
		Int("shapes", len(e.scene.Shapes)).
		Int("primitives", e.scene.PrimitiveCount()).
		Msg("scene updated")
	return nil
}

// Close stops every worker and waits for its terminal acknowledgement.
// Calling Close twice is a no-op.
func (e *Engine) Close() error {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	var err error
	for _, w := range e.workers {
		select {
		case w.signals <- workerSignal{kind: signalStop}:
		default:
			// A dead worker left its signal unread
			err = errors.Wrapf(ErrPoolBroken, "worker %d", w.ID)
		}
	}
	for _, w := range e.workers {
		res, ok := <-w.results
		if (!ok || !res.terminal) && err == nil {
			err = errors.Wrapf(ErrPoolBroken, "worker %d", w.ID)
		}
		close(w.signals)
	}

	e.logger.Debug().Int("workers", len(e.workers)).Msg("render engine stopped")
	return err
}
