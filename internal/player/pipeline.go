package player

import (
	"math"

	"hdxdeck/pkg/audioengine"
	"hdxdeck/pkg/spec"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
)

// pipeline: source -> gain -> pan -> filter... -> analyser -> destination.
// Parameter node hanya diubah saat lock audio context dipegang.
type pipeline struct {
	rate     beep.SampleRate
	source   beep.StreamSeeker
	ctrl     *beep.Ctrl
	gain     *effects.Volume
	pan      *effects.Pan
	filters  []*audioengine.Filter
	analyser *audioengine.Analyser
	duration float64
}

func newPipeline(buf *beep.Buffer, bands []Band, volume, pan float64) *pipeline {
	rate := buf.Format().SampleRate
	p := &pipeline{
		rate:     rate,
		source:   buf.Streamer(0, buf.Len()),
		duration: float64(buf.Len()) / float64(rate),
	}

	p.ctrl = &beep.Ctrl{Streamer: p.source, Paused: true}
	p.gain = &effects.Volume{Streamer: p.ctrl, Base: 2}
	p.pan = &effects.Pan{Streamer: p.gain}

	var tail beep.Streamer = p.pan
	for i, b := range bands {
		f := audioengine.NewFilter(tail, rate, filterType(i, len(bands)), b.Frequency, spec.DefaultQ)
		f.SetGain(b.Gain)
		p.filters = append(p.filters, f)
		tail = f
	}
	p.analyser = audioengine.NewAnalyser(tail, spec.FFTSize, spec.MinDecibels, spec.MaxDecibels, spec.SmoothingFactor)

	p.setVolume(volume)
	p.setPan(pan)
	return p
}

// band terendah lowshelf, tertinggi highshelf, sisanya peaking
func filterType(i, n int) audioengine.FilterType {
	switch {
	case n == 1:
		return audioengine.Peaking
	case i == 0:
		return audioengine.LowShelf
	case i == n-1:
		return audioengine.HighShelf
	default:
		return audioengine.Peaking
	}
}

func (p *pipeline) output() beep.Streamer { return p.analyser }

func (p *pipeline) setVolume(v float64) {
	p.gain.Volume, p.gain.Silent = audioengine.VolumeExponent(v)
}

func (p *pipeline) setPan(v float64) { p.pan.Pan = v }

func (p *pipeline) setGain(i int, db float64) { p.filters[i].SetGain(db) }

// seek memindah source ke detik pos dan membersihkan state filter
func (p *pipeline) seek(pos float64) error {
	frame := int(math.Round(pos * float64(p.rate)))
	if frame < 0 {
		frame = 0
	}
	if n := p.source.Len(); frame > n {
		frame = n
	}
	for _, f := range p.filters {
		f.Reset()
	}
	return p.source.Seek(frame)
}
