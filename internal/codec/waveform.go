package codec

import (
	"math"
)

// WaveformPoints adalah resolusi overview sepanjang lagu
const WaveformPoints = 1000

// GenerateWaveformData membuat overview amplitudo (RMS, 0-255) dari
// sampel stereo, satu byte per blok.
func GenerateWaveformData(samples [][2]float64, points int) []byte {
	if len(samples) == 0 || points <= 0 {
		return nil
	}
	step := len(samples) / points
	if step == 0 {
		step = 1
	}

	waveform := make([]byte, 0, points)
	for i := 0; i < len(samples) && len(waveform) < points; i += step {
		var sum float64
		count := 0
		for j := i; j < i+step && j < len(samples); j++ {
			m := (samples[j][0] + samples[j][1]) / 2
			sum += m * m
			count++
		}
		rms := math.Sqrt(sum / float64(count))
		// x5 supaya lagu yang pelan tetap terlihat
		waveform = append(waveform, uint8(math.Min(rms*255*5, 255)))
	}
	return waveform
}
