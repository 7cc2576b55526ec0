package audioengine

import (
	"errors"
	"fmt"
	"io"

	"github.com/hraban/opus"
)

// Ogg Opus selalu didecode pada 48kHz
const OpusSampleRate = 48000

type StreamDecoder struct {
	stream   *opus.Stream
	channels int
}

// NewStreamDecoder membuka stream Ogg Opus. channels diambil dari OpusHead.
func NewStreamDecoder(r io.Reader, channels int) (*StreamDecoder, error) {
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("unsupported opus channel count %d", channels)
	}
	s, err := opus.NewStream(r)
	if err != nil {
		return nil, err
	}
	return &StreamDecoder{stream: s, channels: channels}, nil
}

// DecodeAll membaca seluruh stream menjadi frame stereo float
func (sd *StreamDecoder) DecodeAll() ([][2]float64, error) {
	pcm := make([]int16, 5760*sd.channels) // 120ms @ 48kHz
	var out [][2]float64

	for {
		n, err := sd.stream.Read(pcm)
		for i := 0; i < n; i++ {
			l := float64(pcm[i*sd.channels]) / 32768.0
			r := l
			if sd.channels == 2 {
				r = float64(pcm[i*2+1]) / 32768.0
			}
			out = append(out, [2]float64{l, r})
		}
		if errors.Is(err, io.EOF) || (n == 0 && err == nil) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

func (sd *StreamDecoder) Close() error {
	return sd.stream.Close()
}
