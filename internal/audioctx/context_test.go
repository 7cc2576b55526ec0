package audioctx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/faiface/beep"
)

func constant(v float64) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{v, v}
		}
		return len(samples), true
	})
}

func TestOfflineStartsSuspended(t *testing.T) {
	o := NewOffline(48000)
	if o.State() != Suspended {
		t.Fatalf("State = %v, want suspended", o.State())
	}
	o.Render(time.Second)
	if o.CurrentTime() != 0 {
		t.Errorf("suspended clock advanced to %v", o.CurrentTime())
	}
}

func TestOfflineClockAdvances(t *testing.T) {
	o := NewOffline(48000)
	if err := o.Resume(context.Background()); err != nil {
		t.Fatal(err)
	}
	o.Render(1500 * time.Millisecond)
	if got := o.CurrentTime(); got != 1.5 {
		t.Errorf("CurrentTime = %v, want 1.5", got)
	}

	o.Suspend()
	o.Render(time.Second)
	if got := o.CurrentTime(); got != 1.5 {
		t.Errorf("CurrentTime after suspend = %v, want 1.5", got)
	}
}

func TestConnectReplacesInput(t *testing.T) {
	o := NewOffline(48000)
	o.Resume(context.Background())

	o.Connect(constant(0.5))
	o.Connect(constant(0.25))

	buf := make([][2]float64, 1024)
	o.Pull(buf)
	for i, v := range buf {
		if v != [2]float64{0.25, 0.25} {
			t.Fatalf("frame %d = %v, want only the last connected input", i, v)
		}
	}

	o.Disconnect()
	o.Pull(buf)
	if buf[0] != [2]float64{} {
		t.Errorf("disconnected output = %v, want silence", buf[0])
	}
}

func TestDrainedInputPadsSilence(t *testing.T) {
	o := NewOffline(48000)
	o.Resume(context.Background())
	o.Connect(beep.Take(100, constant(1)))

	buf := make([][2]float64, 300)
	o.Pull(buf)
	if buf[99] != [2]float64{1, 1} || buf[100] != [2]float64{} {
		t.Errorf("frames 99/100 = %v/%v, want signal then silence", buf[99], buf[100])
	}
	if got := o.CurrentTime(); got != 300.0/48000 {
		t.Errorf("CurrentTime = %v, want %v", got, 300.0/48000)
	}
}

func TestResumeAfterClose(t *testing.T) {
	o := NewOffline(48000)
	o.Close()
	if err := o.Resume(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Resume after Close = %v, want ErrClosed", err)
	}
}

func TestResumeHonoursContext(t *testing.T) {
	o := NewOffline(48000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := o.Resume(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Resume = %v, want context.Canceled", err)
	}
	if o.State() != Suspended {
		t.Errorf("State = %v, want suspended", o.State())
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{Suspended: "suspended", Running: "running", Closed: "closed", State(9): "unknown"}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}

func TestDestinationClipsHotInput(t *testing.T) {
	o := NewOffline(48000)
	o.Resume(context.Background())

	o.Connect(constant(3))
	buf := make([][2]float64, 512)
	o.Pull(buf)
	for i, v := range buf {
		if v != [2]float64{1, 1} {
			t.Fatalf("frame %d = %v, want clipped to full scale", i, v)
		}
	}

	o.Connect(constant(-2.5))
	o.Pull(buf)
	if buf[0] != [2]float64{-1, -1} {
		t.Errorf("negative frame = %v, want -1", buf[0])
	}
}
