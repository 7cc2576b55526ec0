package player

import (
	"context"
	"time"

	"hdxdeck/pkg/spec"
)

// Scheduler menjalankan tick secara periodik sampai ctx dibatalkan.
// Start tidak boleh memanggil tick secara sinkron.
type Scheduler interface {
	Start(ctx context.Context, tick func())
}

// FrameScheduler men-tick sekali per frame tampilan
type FrameScheduler struct {
	interval time.Duration
}

func NewFrameScheduler(fps int) *FrameScheduler {
	if fps <= 0 {
		fps = spec.FrameRate
	}
	return &FrameScheduler{interval: time.Second / time.Duration(fps)}
}

func (s *FrameScheduler) Interval() time.Duration { return s.interval }

func (s *FrameScheduler) Start(ctx context.Context, tick func()) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick()
			}
		}
	}()
}
