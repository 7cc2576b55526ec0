// Package player owns the audio graph of a single track: loading, transport,
// mixer and equalizer controls, and the tick session that keeps listeners in
// sync with the playback position.
package player

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"

	"hdxdeck/internal/audioctx"
	"hdxdeck/internal/codec"
	"hdxdeck/pkg/audioengine"
	"hdxdeck/pkg/spec"

	"github.com/rs/zerolog"
)

type Option func(*Manager)

func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithBands mengganti frekuensi equalizer. Nilai <= 0 dan duplikat dibuang,
// sisanya diurutkan naik.
func WithBands(freqs ...float64) Option {
	return func(m *Manager) {
		if bands := normalizeBands(freqs); len(bands) > 0 {
			m.bands = bands
		}
	}
}

func WithScheduler(s Scheduler) Option {
	return func(m *Manager) {
		if s != nil {
			m.sched = s
		}
	}
}

func normalizeBands(freqs []float64) []float64 {
	out := make([]float64, 0, len(freqs))
	for _, f := range freqs {
		if f > 0 && !math.IsInf(f, 0) {
			out = append(out, f)
		}
	}
	sort.Float64s(out)
	return slices.Compact(out)
}

// Manager adalah satu-satunya pemilik pipeline yang terhubung ke context.
// Semua operasi dan tick diserialkan oleh mu.
type Manager struct {
	mu    sync.Mutex
	actx  audioctx.Context
	log   zerolog.Logger
	sched Scheduler
	clock *Clock

	bands  []float64
	gains  []float64
	volume float64
	pan    float64

	status  Status
	playing bool
	track   *Track
	pipe    *pipeline

	session uint64
	cancel  context.CancelFunc
	loadGen uint64
	closed  bool

	listeners  []Listener
	outbox     []event
	delivering bool
}

// New mengambil alih actx. Context nil atau sudah ditutup menghasilkan
// ErrPlatformUnavailable.
func New(actx audioctx.Context, opts ...Option) (*Manager, error) {
	if actx == nil || actx.State() == audioctx.Closed {
		return nil, ErrPlatformUnavailable
	}
	m := &Manager{
		actx:   actx,
		log:    zerolog.Nop(),
		sched:  NewFrameScheduler(spec.FrameRate),
		bands:  slices.Clone(spec.DefaultBands),
		volume: spec.MaxVolume,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.gains = make([]float64, len(m.bands))
	m.clock = NewClock(actx.CurrentTime)
	return m, nil
}

// Load membuang pipeline lama, decode data lalu membangun pipeline baru
// dengan state mixer yang tersimpan. Decode berjalan tanpa lock; load yang
// didahului load lain mengembalikan ErrLoadSuperseded.
func (m *Manager) Load(ctx context.Context, name string, data []byte) (Track, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return Track{}, ErrClosed
	}
	m.loadGen++
	gen := m.loadGen
	m.teardownLocked()
	m.status = StatusLoading
	m.emitState()
	rate := m.actx.SampleRate()
	m.unlock()

	dec, err := codec.Decode(data, rate)
	var md codec.Metadata
	if err == nil {
		md = codec.ReadMetadata(name, data)
		err = ctx.Err()
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return Track{}, ErrClosed
	}
	if gen != m.loadGen {
		m.unlock()
		m.log.Debug().Str("track", name).Msg("load superseded")
		return Track{}, ErrLoadSuperseded
	}
	if err != nil {
		err = fmt.Errorf("load %s: %w", name, err)
		m.status = StatusEmpty
		m.emitState()
		m.emitError(err)
		m.unlock()
		m.log.Warn().Err(err).Msg("load failed")
		return Track{}, err
	}

	track := &Track{
		Name:        name,
		Title:       md.Title,
		Artist:      md.Artist,
		Album:       md.Album,
		Year:        md.Year,
		Genre:       md.Genre,
		TrackNumber: md.Track,
		Duration:    dec.Duration(),
		Format:      string(dec.Format),
		SampleRate:  int(dec.SourceRate),
		Channels:    dec.Channels,
		Size:        len(data),
		Fingerprint: codec.Fingerprint(dec.Samples),
		HasArtwork:  md.Artwork != nil,
		Artwork:     md.Artwork,
		Waveform:    codec.GenerateWaveformData(dec.Samples, codec.WaveformPoints),
		Source:      data,
	}

	m.pipe = newPipeline(dec.Buffer(), m.bandsLocked(), m.volume, m.pan)
	m.track = track
	m.clock.Reset()
	m.playing = false
	m.status = StatusReady
	m.actx.Connect(m.pipe.output())
	m.emitState()
	m.unlock()

	m.log.Info().
		Str("track", name).
		Str("format", track.Format).
		Float64("duration", track.Duration).
		Msg("track loaded")
	return *track, nil
}

// teardownLocked memutus pipeline aktif dan membatalkan sesi tick
func (m *Manager) teardownLocked() {
	m.stopSessionLocked()
	if m.pipe != nil {
		m.actx.Disconnect()
	}
	m.pipe = nil
	m.track = nil
	m.playing = false
	m.clock.Reset()
}

func (m *Manager) readyLocked() error {
	if m.closed {
		return ErrClosed
	}
	if m.pipe == nil {
		return ErrNotLoaded
	}
	return nil
}

// Play melanjutkan dari posisi terakhir. Context yang suspended di-resume
// dulu; lock dilepas selama resume.
func (m *Manager) Play(ctx context.Context) error {
	m.mu.Lock()
	if err := m.readyLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	if m.playing {
		m.mu.Unlock()
		return nil
	}
	gen := m.loadGen
	m.mu.Unlock()

	if m.actx.State() != audioctx.Running {
		if err := m.actx.Resume(ctx); err != nil {
			err = fmt.Errorf("resume audio context: %w", err)
			m.mu.Lock()
			m.emitError(err)
			m.unlock()
			return err
		}
	}

	m.mu.Lock()
	if err := m.readyLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	if gen != m.loadGen {
		m.mu.Unlock()
		return ErrLoadSuperseded
	}
	if m.playing {
		m.mu.Unlock()
		return nil
	}

	pos := m.clock.Position()
	if pos >= m.pipe.duration {
		pos = 0
		m.clock.Set(0)
	}
	m.actx.Lock()
	err := m.pipe.seek(pos)
	m.pipe.ctrl.Paused = false
	m.clock.Start()
	m.actx.Unlock()
	if err != nil {
		m.log.Warn().Err(err).Float64("pos", pos).Msg("seek on play")
	}

	m.playing = true
	m.status = StatusPlaying
	m.startSessionLocked()
	m.emitState()
	m.unlock()

	m.log.Debug().Float64("pos", pos).Msg("play")
	return nil
}

func (m *Manager) Pause() error {
	m.mu.Lock()
	if err := m.readyLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	if !m.playing {
		m.mu.Unlock()
		return nil
	}

	m.actx.Lock()
	m.pipe.ctrl.Paused = true
	m.clock.Stop()
	m.actx.Unlock()
	if pos := m.clock.Position(); pos > m.pipe.duration {
		m.clock.Set(m.pipe.duration)
	}

	m.stopSessionLocked()
	m.playing = false
	m.status = StatusReady
	m.emitState()
	m.unlock()

	m.log.Debug().Msg("pause")
	return nil
}

// Stop menghentikan output dan mengembalikan posisi ke 0
func (m *Manager) Stop() error {
	m.mu.Lock()
	if err := m.readyLocked(); err != nil {
		m.mu.Unlock()
		return err
	}

	m.actx.Lock()
	m.pipe.ctrl.Paused = true
	m.clock.Reset()
	err := m.pipe.seek(0)
	m.actx.Unlock()
	if err != nil {
		m.log.Warn().Err(err).Msg("seek on stop")
	}

	m.stopSessionLocked()
	m.playing = false
	m.status = StatusReady
	m.emitState()
	m.emitTime(0)
	m.unlock()

	m.log.Debug().Msg("stop")
	return nil
}

// Seek meng-clamp ke [0, durasi]. Saat playing, source dan anchor jam
// dipindah dalam satu lock audio supaya tidak ada jeda.
func (m *Manager) Seek(seconds float64) error {
	m.mu.Lock()
	if err := m.readyLocked(); err != nil {
		m.mu.Unlock()
		return err
	}

	if math.IsNaN(seconds) {
		seconds = 0
	}
	pos := audioengine.Clamp(seconds, 0, m.pipe.duration)
	if m.playing {
		m.actx.Lock()
		m.pipe.seek(pos)
		m.clock.Set(pos)
		m.actx.Unlock()
	} else {
		m.clock.Set(pos)
	}

	m.emitTime(pos)
	m.emitState()
	m.unlock()
	return nil
}

func (m *Manager) SetVolume(v float64) error {
	m.mu.Lock()
	if err := m.readyLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.setVolumeLocked(v)
	m.unlock()
	return nil
}

func (m *Manager) setVolumeLocked(v float64) {
	m.volume = audioengine.Clamp(v, spec.MinVolume, spec.MaxVolume)
	m.actx.Lock()
	m.pipe.setVolume(m.volume)
	m.actx.Unlock()
	m.emitState()
}

// ToggleMute: volume > 0 jadi 0, volume 0 jadi spec.MuteLevel
func (m *Manager) ToggleMute() error {
	m.mu.Lock()
	if err := m.readyLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	if m.volume > 0 {
		m.setVolumeLocked(0)
	} else {
		m.setVolumeLocked(spec.MuteLevel)
	}
	m.unlock()
	return nil
}

func (m *Manager) SetPan(p float64) error {
	m.mu.Lock()
	if err := m.readyLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	if math.IsNaN(p) {
		p = 0
	}
	m.pan = audioengine.Clamp(p, spec.MinPan, spec.MaxPan)
	m.actx.Lock()
	m.pipe.setPan(m.pan)
	m.actx.Unlock()
	m.emitState()
	m.unlock()
	return nil
}

// SetEqualizerBand mengatur gain (dB) band dengan frekuensi freq
func (m *Manager) SetEqualizerBand(freq, gainDB float64) error {
	m.mu.Lock()
	if err := m.readyLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	i := m.bandIndex(freq)
	if i < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %g Hz", ErrUnknownBand, freq)
	}
	if math.IsNaN(gainDB) {
		gainDB = 0
	}
	m.gains[i] = audioengine.Clamp(gainDB, spec.MinGainDB, spec.MaxGainDB)
	m.actx.Lock()
	m.pipe.setGain(i, m.gains[i])
	m.actx.Unlock()
	m.emitState()
	m.unlock()
	return nil
}

// ResetEqualizer mengembalikan semua band ke 0 dB
func (m *Manager) ResetEqualizer() error {
	m.mu.Lock()
	if err := m.readyLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.actx.Lock()
	for i := range m.gains {
		m.gains[i] = 0
		m.pipe.setGain(i, 0)
	}
	m.actx.Unlock()
	m.emitState()
	m.unlock()
	return nil
}

func (m *Manager) bandIndex(freq float64) int {
	for i, f := range m.bands {
		if math.Abs(f-freq) < 1e-6 {
			return i
		}
	}
	return -1
}

func (m *Manager) bandsLocked() []Band {
	out := make([]Band, len(m.bands))
	for i, f := range m.bands {
		out[i] = Band{Frequency: f, Gain: m.gains[i]}
	}
	return out
}

// FrequencyData mengembalikan spektrum analyser (0-255 per bin)
func (m *Manager) FrequencyData() ([]uint8, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.readyLocked(); err != nil {
		return nil, err
	}
	return m.pipe.analyser.FrequencyData(), nil
}

// WaveformData mengembalikan sampel time-domain terakhir (128 = nol)
func (m *Manager) WaveformData() ([]uint8, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.readyLocked(); err != nil {
		return nil, err
	}
	return m.pipe.analyser.WaveformData(), nil
}

func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() State {
	st := State{
		Status:  m.status,
		Playing: m.playing,
		Volume:  m.volume,
		Pan:     m.pan,
		Bands:   m.bandsLocked(),
	}
	if m.pipe != nil {
		st.Loaded = true
		st.Duration = m.pipe.duration
		st.Position = audioengine.Clamp(m.clock.Position(), 0, m.pipe.duration)
	}
	if m.track != nil {
		t := *m.track
		st.Track = &t
	}
	return st
}

func (m *Manager) Position() float64 { return m.Snapshot().Position }

func (m *Manager) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Manager) Pan() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pan
}

func (m *Manager) Bands() []Band {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bandsLocked()
}

func (m *Manager) Track() (Track, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.track == nil {
		return Track{}, false
	}
	return *m.track, true
}

// Close menghentikan playback, memutus pipeline, melepas semua listener
// dan menutup audio context.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.teardownLocked()
	m.status = StatusEmpty
	m.listeners = nil
	m.outbox = nil
	return m.actx.Close()
}

// ============================================================
// Tick session
// ============================================================

func (m *Manager) startSessionLocked() {
	m.stopSessionLocked()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	id := m.session
	m.sched.Start(ctx, func() { m.tick(id) })
}

func (m *Manager) stopSessionLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.session++
}

// tick dipanggil scheduler; tick dari sesi lama diabaikan
func (m *Manager) tick(id uint64) {
	m.mu.Lock()
	if id != m.session || !m.playing || m.pipe == nil {
		m.mu.Unlock()
		return
	}

	pos := m.clock.Position()
	if pos < m.pipe.duration {
		m.emitTime(pos)
		m.unlock()
		return
	}

	// akhir lagu: pause, posisi 0, Ended, lalu kembali ke Ready
	m.stopSessionLocked()
	m.actx.Lock()
	m.pipe.ctrl.Paused = true
	m.clock.Reset()
	err := m.pipe.seek(0)
	m.actx.Unlock()
	if err != nil {
		m.log.Warn().Err(err).Msg("seek on end")
	}

	m.playing = false
	m.status = StatusEnded
	m.emitState()
	m.emitTime(0)
	m.emit(event{kind: evEnded})
	m.status = StatusReady
	m.emitState()
	name := m.track.Name
	m.unlock()

	m.log.Info().Str("track", name).Msg("track ended")
}
