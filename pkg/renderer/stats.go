package renderer

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// BandStats records how one band of a frame went
type BandStats struct {
	Index   int           // Band index
	Worker  int           // Worker that rendered it
	Rows    int           // Rows in the band
	Rays    int           // Rays traced, bounces included
	Elapsed time.Duration // Wall time spent on the band
}

// FrameStats contains statistics about one Render call
type FrameStats struct {
	Frame      int           // 1-based frame counter
	Width      int           // Image width
	Height     int           // Image height
	Elapsed    time.Duration // Wall time for the whole frame
	Rays       int           // Total rays across bands
	Bands      []BandStats   // Per-band detail in row order
	MeanBand   time.Duration // Mean band duration
	StdDevBand time.Duration // Standard deviation of band durations
}

// newFrameStats summarizes band results. Band timings feed the mean and
// spread so an unbalanced split shows up in the logs.
func newFrameStats(frame, width, height int, elapsed time.Duration, bands []BandStats) FrameStats {
	fs := FrameStats{
		Frame:   frame,
		Width:   width,
		Height:  height,
		Elapsed: elapsed,
		Bands:   bands,
	}
	if len(bands) == 0 {
		return fs
	}

	seconds := make([]float64, len(bands))
	for i, b := range bands {
		seconds[i] = b.Elapsed.Seconds()
		fs.Rays += b.Rays
	}
	mean, std := 0.0, 0.0
	if len(seconds) == 1 {
		mean = seconds[0]
	} else {
		mean, std = stat.MeanStdDev(seconds, nil)
	}
	fs.MeanBand = time.Duration(mean * float64(time.Second))
	fs.StdDevBand = time.Duration(std * float64(time.Second))
	return fs
}

// PixelsPerSecond returns the frame throughput
func (fs FrameStats) PixelsPerSecond() float64 {
	if fs.Elapsed <= 0 {
		return 0
	}
	return float64(fs.Width*fs.Height) / fs.Elapsed.Seconds()
}
