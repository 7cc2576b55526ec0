package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"hdxdeck/pkg/audioengine"
	"hdxdeck/pkg/spec"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/go-audio/wav"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrCorruptFile       = errors.New("corrupt audio file")
)

type Format string

const (
	FormatWAV    Format = "wav"
	FormatMP3    Format = "mp3"
	FormatFLAC   Format = "flac"
	FormatVorbis Format = "ogg"
	FormatOpus   Format = "opus"
)

// Decoded adalah hasil decode penuh, sudah di-resample ke rate tujuan
type Decoded struct {
	Format     Format
	SourceRate beep.SampleRate
	Channels   int
	Rate       beep.SampleRate
	Samples    [][2]float64
}

// Duration dalam detik pada rate tujuan
func (d *Decoded) Duration() float64 {
	if d.Rate == 0 {
		return 0
	}
	return float64(len(d.Samples)) / float64(d.Rate)
}

// Buffer membungkus sampel menjadi beep.Buffer yang bisa di-seek
func (d *Decoded) Buffer() *beep.Buffer {
	buf := beep.NewBuffer(beep.Format{SampleRate: d.Rate, NumChannels: 2, Precision: 2})
	buf.Append(&frames{data: d.Samples})
	return buf
}

// Sniff menebak format dari magic bytes
func Sniff(data []byte) (Format, error) {
	switch {
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return FormatWAV, nil
	case len(data) >= 4 && string(data[:4]) == "fLaC":
		return FormatFLAC, nil
	case len(data) >= 4 && string(data[:4]) == "OggS":
		if len(data) >= 36 && string(data[28:36]) == "OpusHead" {
			return FormatOpus, nil
		}
		return FormatVorbis, nil
	case len(data) >= 3 && string(data[:3]) == "ID3":
		return FormatMP3, nil
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3, nil
	}
	return "", ErrUnsupportedFormat
}

// Decode membaca seluruh file ke memori dan me-resample ke target.
func Decode(data []byte, target beep.SampleRate) (*Decoded, error) {
	format, err := Sniff(data)
	if err != nil {
		return nil, err
	}

	var (
		src      [][2]float64
		rate     beep.SampleRate
		channels int
	)

	switch format {
	case FormatWAV:
		src, rate, channels, err = decodeWAV(data)
	case FormatOpus:
		src, channels, err = decodeOpus(data)
		rate = audioengine.OpusSampleRate
	default:
		src, rate, channels, err = decodeBeep(format, data)
	}
	if err != nil {
		return nil, err
	}
	if len(src) == 0 {
		return nil, fmt.Errorf("%w: no audio frames", ErrCorruptFile)
	}

	out := src
	if rate != target {
		rs := beep.Resample(spec.ResampleQuality, rate, target, &frames{data: src})
		out, _ = drain(rs)
	}

	return &Decoded{
		Format:     format,
		SourceRate: rate,
		Channels:   channels,
		Rate:       target,
		Samples:    out,
	}, nil
}

func decodeWAV(data []byte) ([][2]float64, beep.SampleRate, int, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("%w: invalid wav header", ErrCorruptFile)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}

	ch := int(dec.NumChans)
	depth := int(dec.BitDepth)
	if ch < 1 || depth < 8 || depth > 32 {
		return nil, 0, 0, fmt.Errorf("%w: %d channels, %d bit", ErrCorruptFile, ch, depth)
	}

	scale := float64(int64(1) << (depth - 1))
	offset := 0.0
	if depth == 8 {
		// PCM 8-bit unsigned
		offset = 128
	}
	sample := func(v int) float64 { return (float64(v) - offset) / scale }

	n := len(buf.Data) / ch
	out := make([][2]float64, n)
	for i := 0; i < n; i++ {
		l := sample(buf.Data[i*ch])
		r := l
		if ch > 1 {
			r = sample(buf.Data[i*ch+1])
		}
		out[i] = [2]float64{l, r}
	}
	return out, beep.SampleRate(dec.SampleRate), ch, nil
}

// OpusHead ada di offset 28 halaman Ogg pertama, panjang paket minimal 19 byte
const (
	opusHeadOffset = 28
	opusHeadSize   = 19
)

func decodeOpus(data []byte) ([][2]float64, int, error) {
	if len(data) < opusHeadOffset+opusHeadSize {
		return nil, 0, fmt.Errorf("%w: truncated OpusHead", ErrCorruptFile)
	}
	ch := int(data[opusHeadOffset+9])
	if ch == 0 {
		return nil, 0, fmt.Errorf("%w: opus channel count 0", ErrCorruptFile)
	}
	sd, err := audioengine.NewStreamDecoder(bytes.NewReader(data), ch)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer sd.Close()

	out, err := sd.DecodeAll()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	return out, ch, nil
}

func decodeBeep(format Format, data []byte) ([][2]float64, beep.SampleRate, int, error) {
	var (
		s   beep.StreamSeekCloser
		f   beep.Format
		err error
	)
	rc := io.NopCloser(bytes.NewReader(data))
	switch format {
	case FormatMP3:
		s, f, err = mp3.Decode(rc)
	case FormatFLAC:
		s, f, err = flac.Decode(rc)
	case FormatVorbis:
		s, f, err = vorbis.Decode(rc)
	default:
		return nil, 0, 0, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	defer s.Close()

	out, err := drain(s)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	return out, f.SampleRate, f.NumChannels, nil
}

func drain(s beep.Streamer) ([][2]float64, error) {
	var out [][2]float64
	chunk := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(chunk)
		out = append(out, chunk[:n]...)
		if !ok {
			break
		}
	}
	return out, s.Err()
}

// frames adalah streamer sederhana di atas slice
type frames struct {
	data [][2]float64
	pos  int
}

func (f *frames) Stream(samples [][2]float64) (int, bool) {
	if f.pos >= len(f.data) {
		return 0, false
	}
	n := copy(samples, f.data[f.pos:])
	f.pos += n
	return n, true
}

func (f *frames) Err() error { return nil }
