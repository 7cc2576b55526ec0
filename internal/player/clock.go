package player

// Clock menurunkan posisi playback dari jam audio context, bukan timer.
// Tidak thread-safe; Manager menjaganya dengan mutex.
type Clock struct {
	now     func() float64
	anchor  float64
	offset  float64
	running bool
}

func NewClock(now func() float64) *Clock {
	return &Clock{now: now}
}

// Start meng-anchor jam: anchor = now - offset
func (c *Clock) Start() {
	c.anchor = c.now() - c.offset
	c.running = true
}

// Stop membekukan posisi ke offset
func (c *Clock) Stop() {
	if !c.running {
		return
	}
	c.offset = c.now() - c.anchor
	c.running = false
}

// Set memindah posisi. Saat berjalan, anchor dihitung ulang.
func (c *Clock) Set(pos float64) {
	c.offset = pos
	if c.running {
		c.anchor = c.now() - pos
	}
}

func (c *Clock) Reset() {
	c.running = false
	c.offset = 0
	c.anchor = 0
}

func (c *Clock) Running() bool { return c.running }

func (c *Clock) Position() float64 {
	if c.running {
		return c.now() - c.anchor
	}
	return c.offset
}
