package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"hdxdeck/pkg/spec"

	"github.com/rs/zerolog"
)

const (
	OutputSpeaker = "speaker"
	OutputNull    = "null"
)

// Config holds the daemon configuration, loaded from environment variables.
type Config struct {
	Socket    string
	Output    string        // speaker | null
	Buffer    time.Duration // speaker buffer
	FrameRate int           // ticks per second while playing
	LogLevel  zerolog.Level

	Bands        []float64 // equalizer centre frequencies (Hz)
	MaxFileBytes int64
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	return Config{
		Socket:       envStr("HDX_SOCKET", spec.SocketFile),
		Output:       strings.ToLower(envStr("HDX_OUTPUT", OutputSpeaker)),
		Buffer:       time.Duration(envInt("HDX_BUFFER_MS", spec.BufferMillis)) * time.Millisecond,
		FrameRate:    envInt("HDX_FRAME_RATE", spec.FrameRate),
		LogLevel:     envLevel("HDX_LOG_LEVEL", zerolog.InfoLevel),
		Bands:        envFloats("HDX_EQ_BANDS", spec.DefaultBands),
		MaxFileBytes: int64(envInt("HDX_MAX_FILE_MB", spec.MaxFileBytes>>20)) << 20,
	}
}

// Validate reports the first unusable value.
func (c Config) Validate() error {
	switch {
	case c.Socket == "":
		return fmt.Errorf("socket path is empty")
	case c.Output != OutputSpeaker && c.Output != OutputNull:
		return fmt.Errorf("unknown output %q (want %s or %s)", c.Output, OutputSpeaker, OutputNull)
	case c.Buffer <= 0:
		return fmt.Errorf("buffer must be positive, got %v", c.Buffer)
	case c.FrameRate <= 0 || c.FrameRate > 1000:
		return fmt.Errorf("frame rate out of range: %d", c.FrameRate)
	case len(c.Bands) == 0:
		return fmt.Errorf("no equalizer bands")
	case c.MaxFileBytes <= 0:
		return fmt.Errorf("max file size must be positive")
	}
	for _, b := range c.Bands {
		if b <= 0 || b >= spec.SampleRate/2 {
			return fmt.Errorf("band %g Hz outside (0, %d)", b, spec.SampleRate/2)
		}
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envLevel(key string, fallback zerolog.Level) zerolog.Level {
	if v := os.Getenv(key); v != "" {
		if l, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			return l
		}
	}
	return fallback
}

// envFloats parses a comma separated list. Any bad entry discards the whole
// value.
func envFloats(key string, fallback []float64) []float64 {
	v := os.Getenv(key)
	if v == "" {
		return append([]float64(nil), fallback...)
	}
	var out []float64
	for _, part := range strings.Split(v, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return append([]float64(nil), fallback...)
		}
		out = append(out, f)
	}
	return out
}
