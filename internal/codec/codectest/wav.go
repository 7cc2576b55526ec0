// Package codectest builds small audio fixtures for tests.
package codectest

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Tone describes a 16-bit PCM sine fixture.
type Tone struct {
	Rate      int
	Channels  int
	Seconds   float64
	Frequency float64
	Amplitude float64
}

// WAV encodes the tone as a RIFF/WAVE file and returns its bytes.
func WAV(tb testing.TB, tone Tone) []byte {
	tb.Helper()
	if tone.Rate == 0 {
		tone.Rate = 48000
	}
	if tone.Channels == 0 {
		tone.Channels = 2
	}

	n := int(float64(tone.Rate) * tone.Seconds)
	data := make([]int, 0, n*tone.Channels)
	for i := 0; i < n; i++ {
		v := tone.Amplitude * math.Sin(2*math.Pi*tone.Frequency*float64(i)/float64(tone.Rate))
		s := int(v * 32767)
		for c := 0; c < tone.Channels; c++ {
			data = append(data, s)
		}
	}

	path := filepath.Join(tb.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		tb.Fatal(err)
	}
	enc := wav.NewEncoder(f, tone.Rate, 16, tone.Channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: tone.Channels, SampleRate: tone.Rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		tb.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		tb.Fatal(err)
	}
	if err := f.Close(); err != nil {
		tb.Fatal(err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		tb.Fatal(err)
	}
	return out
}
