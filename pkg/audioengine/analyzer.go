package audioengine

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/faiface/beep"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Analyser is a pass-through tap that keeps the most recent fftSize mono
// samples, like the web audio AnalyserNode. Data accessors are safe to call
// from any goroutine.
type Analyser struct {
	Streamer beep.Streamer

	MinDecibels float64
	MaxDecibels float64
	Smoothing   float64

	mu       sync.Mutex
	ring     []float64
	pos      int
	smoothed []float64
}

func NewAnalyser(s beep.Streamer, fftSize int, minDB, maxDB, smoothing float64) *Analyser {
	return &Analyser{
		Streamer:    s,
		MinDecibels: minDB,
		MaxDecibels: maxDB,
		Smoothing:   smoothing,
		ring:        make([]float64, fftSize),
		smoothed:    make([]float64, fftSize/2),
	}
}

// BinCount returns the number of frequency bins (fftSize/2).
func (a *Analyser) BinCount() int {
	return len(a.smoothed)
}

func (a *Analyser) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = a.Streamer.Stream(samples)
	a.mu.Lock()
	for i := 0; i < n; i++ {
		a.ring[a.pos] = (samples[i][0] + samples[i][1]) / 2
		a.pos = (a.pos + 1) % len(a.ring)
	}
	a.mu.Unlock()
	return n, ok
}

func (a *Analyser) Err() error {
	return a.Streamer.Err()
}

// snapshot menyalin ring buffer dalam urutan waktu (lama -> baru)
func (a *Analyser) snapshot() []float64 {
	out := make([]float64, len(a.ring))
	n := copy(out, a.ring[a.pos:])
	copy(out[n:], a.ring[:a.pos])
	return out
}

// FrequencyData returns byte magnitudes per bin, scaled between
// MinDecibels and MaxDecibels.
func (a *Analyser) FrequencyData() []uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()

	x := a.snapshot()
	window.Apply(x, window.Blackman)
	coeffs := fft.FFTReal(x)

	size := float64(len(x))
	span := a.MaxDecibels - a.MinDecibels
	out := make([]uint8, len(a.smoothed))
	for k := range a.smoothed {
		mag := cmplx.Abs(coeffs[k]) / size
		a.smoothed[k] = a.Smoothing*a.smoothed[k] + (1-a.Smoothing)*mag

		db := math.Inf(-1)
		if a.smoothed[k] > 0 {
			db = 20 * math.Log10(a.smoothed[k])
		}
		scaled := 255 * (db - a.MinDecibels) / span
		out[k] = uint8(Clamp(scaled, 0, 255))
	}
	return out
}

// WaveformData returns the time-domain samples mapped to bytes, 128 being
// silence.
func (a *Analyser) WaveformData() []uint8 {
	a.mu.Lock()
	x := a.snapshot()
	a.mu.Unlock()

	out := make([]uint8, len(x))
	for i, v := range x {
		out[i] = uint8(Clamp(128*(1+v), 0, 255))
	}
	return out
}
