package renderer

import (
	"time"

	"github.com/df07/go-kdtracer/pkg/core"
)

type signalKind uint8

const (
	signalRender signalKind = iota
	signalStop
)

// workerSignal tells an idle worker what to do next
type workerSignal struct {
	kind signalKind
	band Band
}

// bandResult carries a rendered band back to the engine. A stop signal is
// answered with an empty terminal result.
type bandResult struct {
	worker   int
	band     Band
	pix      []byte
	rays     int
	elapsed  time.Duration
	err      error
	terminal bool
}

// Worker renders one band per signal. Each worker has its own signal and
// result channel so the engine can join results in band order.
type Worker struct {
	ID      int
	signals chan workerSignal
	results chan bandResult
	engine  *Engine // Reference to parent engine for scene access
}

func newWorker(id int, engine *Engine) *Worker {
	return &Worker{
		ID:      id,
		signals: make(chan workerSignal, 1),
		results: make(chan bandResult, 1),
		engine:  engine,
	}
}

// run is the worker loop: idle until signalled, render, report, repeat.
// The result channel is closed when the loop exits for any reason.
func (w *Worker) run() {
	defer close(w.results)

	for sig := range w.signals {
		if sig.kind == signalStop {
			w.results <- bandResult{worker: w.ID, terminal: true}
			return
		}
		w.results <- w.renderBand(sig.band)
	}
}

// renderBand holds the scene read lock for the whole band
func (w *Worker) renderBand(band Band) bandResult {
	e := w.engine
	start := time.Now()

	e.sceneMu.RLock()
	defer e.sceneMu.RUnlock()

	result := bandResult{worker: w.ID, band: band}
	cam, err := e.activeCamera()
	if err != nil {
		result.err = err
		return result
	}

	result.pix = make([]byte, band.Rows()*e.config.Width*4)
	rt := NewRaytracer(e.scene, cam, e.config, core.NewSeededSampler(e.config.Seed+int64(band.Index)))
	rt.RenderBand(band, result.pix)

	result.rays = rt.Rays()
	result.elapsed = time.Since(start)
	return result
}
