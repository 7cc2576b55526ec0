package codec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"hdxdeck/internal/codec/codectest"
	"hdxdeck/pkg/spec"
)

func TestSniff(t *testing.T) {
	opusHead := append([]byte("OggS"), make([]byte, 24)...)
	opusHead = append(opusHead, []byte("OpusHead")...)

	tests := []struct {
		name string
		data []byte
		want Format
		err  error
	}{
		{"wav", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), FormatWAV, nil},
		{"riff-not-wave", []byte("RIFF\x00\x00\x00\x00AVI "), "", ErrUnsupportedFormat},
		{"id3", []byte("ID3\x04\x00"), FormatMP3, nil},
		{"mpeg-sync", []byte{0xFF, 0xFB, 0x90, 0x00}, FormatMP3, nil},
		{"flac", []byte("fLaC\x00\x00"), FormatFLAC, nil},
		{"opus", opusHead, FormatOpus, nil},
		{"vorbis", append([]byte("OggS"), make([]byte, 40)...), FormatVorbis, nil},
		{"text", []byte("hello world"), "", ErrUnsupportedFormat},
		{"empty", nil, "", ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sniff(tt.data)
			if !errors.Is(err, tt.err) {
				t.Fatalf("Sniff err = %v, want %v", err, tt.err)
			}
			if got != tt.want {
				t.Errorf("Sniff = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeWAV(t *testing.T) {
	data := codectest.WAV(t, codectest.Tone{Rate: 48000, Channels: 2, Seconds: 1, Frequency: 440, Amplitude: 0.5})

	d, err := Decode(data, spec.SampleRate)
	if err != nil {
		t.Fatal(err)
	}
	if d.Format != FormatWAV {
		t.Errorf("Format = %q, want wav", d.Format)
	}
	if d.Channels != 2 {
		t.Errorf("Channels = %d, want 2", d.Channels)
	}
	if got := d.Duration(); got != 1 {
		t.Errorf("Duration = %v, want 1", got)
	}

	peak := 0.0
	for _, s := range d.Samples {
		peak = math.Max(peak, math.Abs(s[0]))
	}
	if math.Abs(peak-0.5) > 0.01 {
		t.Errorf("peak = %v, want ~0.5", peak)
	}

	buf := d.Buffer()
	if buf.Len() != len(d.Samples) {
		t.Errorf("Buffer.Len = %d, want %d", buf.Len(), len(d.Samples))
	}
}

func TestDecodeResamplesMono(t *testing.T) {
	data := codectest.WAV(t, codectest.Tone{Rate: 44100, Channels: 1, Seconds: 1, Frequency: 440, Amplitude: 0.5})

	d, err := Decode(data, spec.SampleRate)
	if err != nil {
		t.Fatal(err)
	}
	if d.SourceRate != 44100 || d.Rate != spec.SampleRate {
		t.Errorf("rates = %v -> %v, want 44100 -> %d", d.SourceRate, d.Rate, spec.SampleRate)
	}
	if d.Channels != 1 {
		t.Errorf("Channels = %d, want 1", d.Channels)
	}
	if got := d.Duration(); math.Abs(got-1) > 0.01 {
		t.Errorf("Duration = %v, want ~1", got)
	}
	for i, s := range d.Samples[:1000] {
		if s[0] != s[1] {
			t.Fatalf("frame %d = %v, mono should be duplicated", i, s)
		}
	}
}

func TestDecodeRejects(t *testing.T) {
	wavData := codectest.WAV(t, codectest.Tone{Seconds: 0.1, Frequency: 440, Amplitude: 0.5})

	opusHead := func(n int, channels byte) []byte {
		b := make([]byte, n)
		copy(b, "OggS")
		copy(b[28:], "OpusHead")
		if n > 37 {
			b[37] = channels
		}
		return b
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrUnsupportedFormat},
		{"text", []byte("not audio at all"), ErrUnsupportedFormat},
		{"truncated-wav", wavData[:12], ErrCorruptFile},
		{"opushead-36", opusHead(36, 0), ErrCorruptFile},
		{"opushead-38", opusHead(38, 2), ErrCorruptFile},
		{"opushead-zero-channels", opusHead(64, 0), ErrCorruptFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data, spec.SampleRate); !errors.Is(err, tt.want) {
				t.Errorf("Decode err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadMetadataFallbacks(t *testing.T) {
	data := codectest.WAV(t, codectest.Tone{Seconds: 0.1, Frequency: 440, Amplitude: 0.5})

	tests := []struct {
		name, file, title string
	}{
		{"from-name", "/music/Night Drive.wav", "Night Drive"},
		{"no-ext", "demo", "demo"},
		{"empty", "", spec.UnknownTitle},
		{"dotfile", ".wav", spec.UnknownTitle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := ReadMetadata(tt.file, data)
			if md.Title != tt.title {
				t.Errorf("Title = %q, want %q", md.Title, tt.title)
			}
			if md.Artist != spec.UnknownArtist || md.Album != spec.UnknownAlbum {
				t.Errorf("Artist/Album = %q/%q, want fallbacks", md.Artist, md.Album)
			}
			if md.Year != 0 || md.Track != 0 || md.Genre != "" {
				t.Errorf("Year/Track/Genre = %d/%d/%q, want zero values", md.Year, md.Track, md.Genre)
			}
			if md.Artwork != nil {
				t.Errorf("Artwork = %d bytes, want nil", len(md.Artwork))
			}
		})
	}
}

func TestProcessArtworkCropsSquare(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			c := color.RGBA{A: 255}
			if x >= 10 && x < 30 {
				c.R = 255
			}
			src.Set(x, y, c)
		}
	}
	var in bytes.Buffer
	if err := png.Encode(&in, src); err != nil {
		t.Fatal(err)
	}

	out, err := ProcessArtwork(&in, 600)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 20 {
		t.Fatalf("size = %v, want 20x20", b)
	}
	// crop dari tengah: seluruh kotak berasal dari bagian merah
	if r, _, _, _ := img.At(0, 0).RGBA(); r == 0 {
		t.Errorf("corner pixel not from the centre crop")
	}
}

func TestProcessArtworkDownscales(t *testing.T) {
	var in bytes.Buffer
	png.Encode(&in, image.NewRGBA(image.Rect(0, 0, 64, 64)))

	out, err := ProcessArtwork(&in, 16)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 16 || cfg.Height != 16 {
		t.Errorf("size = %dx%d, want 16x16", cfg.Width, cfg.Height)
	}
}

func TestProcessArtworkRejectsGarbage(t *testing.T) {
	if _, err := ProcessArtwork(bytes.NewReader([]byte("nope")), 600); err == nil {
		t.Error("expected decode error")
	}
}

func tone(n int, freq, amp float64) [][2]float64 {
	out := make([][2]float64, n)
	for i := range out {
		v := amp * math.Sin(2*math.Pi*freq*float64(i)/spec.SampleRate)
		out[i] = [2]float64{v, v}
	}
	return out
}

func TestWaveform(t *testing.T) {
	if got := GenerateWaveformData(nil, WaveformPoints); got != nil {
		t.Errorf("empty input = %v, want nil", got)
	}

	silent := GenerateWaveformData(make([][2]float64, 48000), WaveformPoints)
	if len(silent) != WaveformPoints {
		t.Fatalf("len = %d, want %d", len(silent), WaveformPoints)
	}
	for i, v := range silent {
		if v != 0 {
			t.Fatalf("silent point %d = %d, want 0", i, v)
		}
	}

	loud := GenerateWaveformData(tone(48000, 440, 0.5), WaveformPoints)
	if len(loud) != WaveformPoints {
		t.Fatalf("len = %d, want %d", len(loud), WaveformPoints)
	}
	if loud[WaveformPoints/2] != 255 {
		t.Errorf("loud point = %d, want 255", loud[WaveformPoints/2])
	}

	short := GenerateWaveformData(tone(10, 440, 0.5), WaveformPoints)
	if len(short) != 10 {
		t.Errorf("short input len = %d, want 10", len(short))
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint(tone(48000, 440, 0.5))
	b := Fingerprint(tone(48000, 440, 0.5))
	c := Fingerprint(tone(48000, 3000, 0.5))

	if a != b {
		t.Errorf("same audio, different fingerprints: %s vs %s", a, b)
	}
	if a == c {
		t.Errorf("different audio, same fingerprint %s", a)
	}
	if want := len(fpVersion) + 1 + 24; len(a) != want {
		t.Errorf("len(%q) = %d, want %d", a, len(a), want)
	}
}

func TestSpectrogramSize(t *testing.T) {
	out, err := GenerateSpectrogram(tone(48000, 1000, 0.5))
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != SpectrogramWidth || cfg.Height != SpectrogramHeight {
		t.Errorf("size = %dx%d, want %dx%d", cfg.Width, cfg.Height, SpectrogramWidth, SpectrogramHeight)
	}
}
