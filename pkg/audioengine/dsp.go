package audioengine

import "math"

// ApplyQuickGain mengalikan sampel float dengan faktor lalu clamp ke [-1, 1]
func ApplyQuickGain(samples [][2]float64, factor float64) {
	for i := range samples {
		for c := range samples[i] {
			samples[i][c] = Clamp(samples[i][c]*factor, -1, 1)
		}
	}
}

// Clamp membatasi v ke rentang [lo, hi]. NaN jatuh ke lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// VolumeExponent converts a linear volume in [0,1] to the exponent used by
// effects.Volume with base 2. Zero maps to silent.
func VolumeExponent(v float64) (exp float64, silent bool) {
	if v <= 0 {
		return 0, true
	}
	return math.Log2(v), false
}
