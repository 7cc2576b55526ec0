package audioctx

import (
	"context"
	"sync"
	"time"

	"github.com/faiface/beep"
)

const renderQuantum = 512

// Offline renders the destination on demand instead of from a device. Time
// only advances through Render/Pull, which makes it deterministic for tests;
// Run drives it from a wall-clock ticker as a null output.
type Offline struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	dest    *destination
	scratch [][2]float64
}

func NewOffline(sr beep.SampleRate) *Offline {
	return &Offline{
		rate:    sr,
		dest:    &destination{},
		scratch: make([][2]float64, renderQuantum),
	}
}

func (o *Offline) SampleRate() beep.SampleRate { return o.rate }
func (o *Offline) CurrentTime() float64        { return o.dest.seconds(o.rate) }
func (o *Offline) State() State                { return State(o.dest.state.Load()) }

func (o *Offline) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if o.State() == Closed {
		return ErrClosed
	}
	o.dest.state.Store(int32(Running))
	return nil
}

// Suspend stops the clock, like a browser suspending an idle context.
func (o *Offline) Suspend() {
	o.dest.state.CompareAndSwap(int32(Running), int32(Suspended))
}

func (o *Offline) Connect(st beep.Streamer) {
	o.mu.Lock()
	o.dest.input = st
	o.mu.Unlock()
}

func (o *Offline) Disconnect() { o.Connect(nil) }

func (o *Offline) Lock()   { o.mu.Lock() }
func (o *Offline) Unlock() { o.mu.Unlock() }

func (o *Offline) Close() error {
	o.dest.state.Store(int32(Closed))
	o.Disconnect()
	return nil
}

// Pull renders len(buf) frames into buf.
func (o *Offline) Pull(buf [][2]float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for off := 0; off < len(buf); off += renderQuantum {
		end := off + renderQuantum
		if end > len(buf) {
			end = len(buf)
		}
		o.dest.Stream(buf[off:end])
	}
}

// Render renders d worth of frames and discards them.
func (o *Offline) Render(d time.Duration) {
	for left := o.rate.N(d); left > 0; left -= renderQuantum {
		n := renderQuantum
		if left < n {
			n = left
		}
		o.mu.Lock()
		o.dest.Stream(o.scratch[:n])
		o.mu.Unlock()
	}
}

// Run renders in real time until ctx is cancelled.
func (o *Offline) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			o.Render(now.Sub(last))
			last = now
		}
	}
}
