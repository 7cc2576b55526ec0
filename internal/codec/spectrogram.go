package codec

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

const (
	SpectrogramWidth  = 800
	SpectrogramHeight = 200
	spectrogramFFT    = 1024
)

// GenerateSpectrogram menggambar spektrum (linear, 0..nyquist) sepanjang
// lagu ke PNG 800x200.
func GenerateSpectrogram(samples [][2]float64) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, SpectrogramWidth, SpectrogramHeight))
	for i := range img.Pix {
		if i%4 == 3 {
			img.Pix[i] = 255
		}
	}

	step := len(samples) / SpectrogramWidth
	if step < spectrogramFFT {
		step = spectrogramFFT
	}

	frame := make([]float64, spectrogramFFT)
	for x := 0; x < SpectrogramWidth; x++ {
		start := x * step
		if start+spectrogramFFT > len(samples) {
			break
		}
		for i := range frame {
			s := samples[start+i]
			frame[i] = (s[0] + s[1]) / 2
		}
		window.Apply(frame, window.Hann)
		coeffs := fft.FFTReal(frame)

		for y := 0; y < SpectrogramHeight; y++ {
			idx := (SpectrogramHeight - 1 - y) * (spectrogramFFT / 2) / SpectrogramHeight
			mag := cmplx.Abs(coeffs[idx]) * 2 / spectrogramFFT
			db := 20 * math.Log10(mag+1e-12)
			// -90..0 dB ke 0..255
			v := uint8(math.Max(0, math.Min(255, (db+90)/90*255)))
			img.Set(x, y, color.RGBA{R: v / 2, G: v, B: v / 2, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
