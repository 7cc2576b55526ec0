// Package audioctx models the process-wide audio platform: one output
// destination with a single input slot and a clock derived from the
// frames the output has pulled.
package audioctx

import (
	"context"
	"errors"
	"sync/atomic"

	"hdxdeck/pkg/audioengine"

	"github.com/faiface/beep"
)

var (
	// ErrUnavailable is returned when the output device cannot be opened.
	ErrUnavailable = errors.New("audio platform unavailable")
	// ErrClosed is returned by operations on a closed context.
	ErrClosed = errors.New("audio context closed")
)

// State of the context clock.
type State int32

const (
	Suspended State = iota
	Running
	Closed
)

func (s State) String() string {
	switch s {
	case Suspended:
		return "suspended"
	case Running:
		return "running"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Context is the audio platform consumed by the player. Connect replaces the
// destination input atomically, so at most one chain reaches the output.
// Fields read by the audio goroutine must only be mutated between Lock and
// Unlock.
type Context interface {
	SampleRate() beep.SampleRate
	CurrentTime() float64
	State() State
	Resume(ctx context.Context) error
	Connect(s beep.Streamer)
	Disconnect()
	Lock()
	Unlock()
	Close() error
}

// destination adalah sink terakhir: satu slot input + penghitung frame.
// Stream dipanggil dengan lock output dipegang.
type destination struct {
	input  beep.Streamer
	frames atomic.Int64
	state  atomic.Int32
}

func (d *destination) Stream(samples [][2]float64) (int, bool) {
	if State(d.state.Load()) != Running {
		for i := range samples {
			samples[i] = [2]float64{}
		}
		return len(samples), true
	}

	filled := 0
	if d.input != nil {
		n, _ := d.input.Stream(samples)
		filled = n
	}
	// boost EQ bisa melewati full scale, clip sebelum ke device
	audioengine.ApplyQuickGain(samples[:filled], 1)
	// chain yang habis tetap terhubung, sisanya diisi hening
	for i := filled; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	d.frames.Add(int64(len(samples)))
	return len(samples), true
}

func (d *destination) Err() error { return nil }

func (d *destination) seconds(sr beep.SampleRate) float64 {
	return float64(d.frames.Load()) / float64(sr)
}
