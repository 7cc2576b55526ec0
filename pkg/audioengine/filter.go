package audioengine

import (
	"math"

	"github.com/faiface/beep"
)

// FilterType selects the biquad response of an equalizer band.
type FilterType int

const (
	LowShelf FilterType = iota
	Peaking
	HighShelf
)

func (t FilterType) String() string {
	switch t {
	case LowShelf:
		return "lowshelf"
	case Peaking:
		return "peaking"
	case HighShelf:
		return "highshelf"
	default:
		return "unknown"
	}
}

// Filter is a stereo biquad (RBJ cookbook, same curves as the web audio
// BiquadFilterNode). Gain can be changed while streaming; callers must hold
// the output lock while doing so.
type Filter struct {
	Streamer beep.Streamer

	typ  FilterType
	freq float64
	q    float64
	gain float64
	rate beep.SampleRate

	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     [2]float64
}

// NewFilter membuat satu band equalizer dengan gain 0 dB (transparan)
func NewFilter(s beep.Streamer, sr beep.SampleRate, typ FilterType, freq, q float64) *Filter {
	if q <= 0 {
		q = 1
	}
	f := &Filter{Streamer: s, typ: typ, freq: freq, q: q, rate: sr}
	f.design()
	return f
}

func (f *Filter) Type() FilterType   { return f.typ }
func (f *Filter) Frequency() float64 { return f.freq }
func (f *Filter) Gain() float64      { return f.gain }

// SetGain sets the band gain in dB and recomputes the coefficients.
func (f *Filter) SetGain(db float64) {
	f.gain = db
	f.design()
}

// Reset clears the filter history.
func (f *Filter) Reset() {
	f.x1, f.x2, f.y1, f.y2 = [2]float64{}, [2]float64{}, [2]float64{}, [2]float64{}
}

func (f *Filter) design() {
	nyquist := float64(f.rate) / 2
	freq := Clamp(f.freq, 1, nyquist*0.999)

	amp := math.Pow(10, f.gain/40)
	w0 := 2 * math.Pi * freq / float64(f.rate)
	cosw := math.Cos(w0)
	sinw := math.Sin(w0)

	var b0, b1, b2, a0, a1, a2 float64
	switch f.typ {
	case LowShelf:
		alpha := sinw / 2 * math.Sqrt2
		sq := 2 * math.Sqrt(amp) * alpha
		b0 = amp * ((amp + 1) - (amp-1)*cosw + sq)
		b1 = 2 * amp * ((amp - 1) - (amp+1)*cosw)
		b2 = amp * ((amp + 1) - (amp-1)*cosw - sq)
		a0 = (amp + 1) + (amp-1)*cosw + sq
		a1 = -2 * ((amp - 1) + (amp+1)*cosw)
		a2 = (amp + 1) + (amp-1)*cosw - sq
	case HighShelf:
		alpha := sinw / 2 * math.Sqrt2
		sq := 2 * math.Sqrt(amp) * alpha
		b0 = amp * ((amp + 1) + (amp-1)*cosw + sq)
		b1 = -2 * amp * ((amp - 1) + (amp+1)*cosw)
		b2 = amp * ((amp + 1) + (amp-1)*cosw - sq)
		a0 = (amp + 1) - (amp-1)*cosw + sq
		a1 = 2 * ((amp - 1) - (amp+1)*cosw)
		a2 = (amp + 1) - (amp-1)*cosw - sq
	default:
		alpha := sinw / (2 * f.q)
		b0 = 1 + alpha*amp
		b1 = -2 * cosw
		b2 = 1 - alpha*amp
		a0 = 1 + alpha/amp
		a1 = -2 * cosw
		a2 = 1 - alpha/amp
	}

	f.b0, f.b1, f.b2 = b0/a0, b1/a0, b2/a0
	f.a1, f.a2 = a1/a0, a2/a0
}

func (f *Filter) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.Streamer.Stream(samples)
	for i := 0; i < n; i++ {
		for c := 0; c < 2; c++ {
			x := samples[i][c]
			y := f.b0*x + f.b1*f.x1[c] + f.b2*f.x2[c] - f.a1*f.y1[c] - f.a2*f.y2[c]
			f.x2[c], f.x1[c] = f.x1[c], x
			f.y2[c], f.y1[c] = f.y1[c], y
			samples[i][c] = y
		}
	}
	return n, ok
}

func (f *Filter) Err() error {
	return f.Streamer.Err()
}
