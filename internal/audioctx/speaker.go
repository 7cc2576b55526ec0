package audioctx

import (
	"context"
	"fmt"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Speaker drives the destination from the beep speaker (oto) device. The
// speaker package is a process singleton, so only one Speaker may exist.
type Speaker struct {
	rate beep.SampleRate
	dest *destination
}

// NewSpeaker opens the output device. The context starts suspended, the
// first Resume starts the clock.
func NewSpeaker(sr beep.SampleRate, buffer time.Duration) (*Speaker, error) {
	if err := speaker.Init(sr, sr.N(buffer)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	s := &Speaker{rate: sr, dest: &destination{}}
	speaker.Play(s.dest)
	return s, nil
}

func (s *Speaker) SampleRate() beep.SampleRate { return s.rate }
func (s *Speaker) CurrentTime() float64        { return s.dest.seconds(s.rate) }
func (s *Speaker) State() State                { return State(s.dest.state.Load()) }

func (s *Speaker) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.State() == Closed {
		return ErrClosed
	}
	s.dest.state.Store(int32(Running))
	return nil
}

// Connect must not be called while holding Lock.
func (s *Speaker) Connect(st beep.Streamer) {
	speaker.Lock()
	s.dest.input = st
	speaker.Unlock()
}

func (s *Speaker) Disconnect() { s.Connect(nil) }

func (s *Speaker) Lock()   { speaker.Lock() }
func (s *Speaker) Unlock() { speaker.Unlock() }

func (s *Speaker) Close() error {
	if State(s.dest.state.Swap(int32(Closed))) == Closed {
		return nil
	}
	s.Disconnect()
	speaker.Clear()
	return nil
}
