package codec

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"io"
)

// ProcessArtwork memotong cover menjadi kotak dari tengah lalu
// memperkecil ke maxSize (nearest neighbour). Hasilnya PNG.
func ProcessArtwork(r io.Reader, maxSize int) ([]byte, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}

	b := src.Bounds()
	side := min(b.Dx(), b.Dy())
	origin := image.Pt(b.Min.X+(b.Dx()-side)/2, b.Min.Y+(b.Dy()-side)/2)

	square := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(square, square.Bounds(), src, origin, draw.Src)

	out := side
	if maxSize > 0 && out > maxSize {
		out = maxSize
	}

	dst := square
	if out != side {
		dst = image.NewRGBA(image.Rect(0, 0, out, out))
		for y := 0; y < out; y++ {
			for x := 0; x < out; x++ {
				dst.Set(x, y, square.At(x*side/out, y*side/out))
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
