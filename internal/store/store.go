// Package store keeps an observable view of the player for front ends and
// forwards their intents to it.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"hdxdeck/internal/player"

	"github.com/rs/zerolog"
)

// subscriberBuffer adalah kapasitas channel per subscriber. Subscriber yang
// lambat kehilangan event, bukan memblokir player.
const subscriberBuffer = 32

// Engine adalah bagian dari player.Manager yang dipakai Store
type Engine interface {
	AddListener(player.Listener)
	RemoveListener(player.Listener)
	Snapshot() player.State
	Load(ctx context.Context, name string, data []byte) (player.Track, error)
	Play(ctx context.Context) error
	Pause() error
	Stop() error
	Seek(seconds float64) error
	SetVolume(v float64) error
	SetPan(p float64) error
	SetEqualizerBand(freq, gainDB float64) error
	ResetEqualizer() error
	ToggleMute() error
}

type BandView struct {
	player.Band
	Label     string `json:"label"`
	GainLabel string `json:"gain_label"`
}

// View adalah state yang siap ditampilkan
type View struct {
	player.State
	Loading bool       `json:"loading"`
	Error   string     `json:"error,omitempty"`
	Bands   []BandView `json:"bands"`

	TimeLabel     string `json:"time_label"`
	DurationLabel string `json:"duration_label"`
	VolumeLabel   string `json:"volume_label"`
	PanLabel      string `json:"pan_label"`
}

type Store struct {
	engine  Engine
	log     zerolog.Logger
	maxFile int64

	mu     sync.RWMutex
	view   View
	subs   map[int]chan View
	nextID int
}

// New membuat Store dan mendaftarkannya sebagai listener engine
func New(e Engine, log zerolog.Logger, maxFileBytes int64) *Store {
	s := &Store{
		engine:  e,
		log:     log,
		maxFile: maxFileBytes,
		subs:    make(map[int]chan View),
	}
	s.view = buildView(e.Snapshot(), "")
	e.AddListener(s)
	return s
}

// Close melepas Store dari engine dan menutup semua subscription
func (s *Store) Close() {
	s.engine.RemoveListener(s)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}

func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Subscribe mengembalikan channel view dan fungsi untuk berhenti
func (s *Store) Subscribe() (<-chan View, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan View, subscriberBuffer)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				close(c)
				delete(s.subs, id)
			}
		})
	}
}

// update mengubah view di bawah lock lalu menyebarkannya
func (s *Store) update(fn func(v *View)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.view)
	relabel(&s.view)
	for _, ch := range s.subs {
		select {
		case ch <- s.view:
		default:
		}
	}
}

func buildView(st player.State, errMsg string) View {
	v := View{State: st, Error: errMsg}
	relabel(&v)
	return v
}

func relabel(v *View) {
	v.Loading = v.Status == player.StatusLoading
	v.Bands = make([]BandView, len(v.State.Bands))
	for i, b := range v.State.Bands {
		v.Bands[i] = BandView{Band: b, Label: BandLabel(b.Frequency), GainLabel: GainLabel(b.Gain)}
	}
	v.TimeLabel = FormatTime(v.Position)
	v.DurationLabel = FormatTime(v.Duration)
	v.VolumeLabel = VolumeLabel(v.Volume)
	v.PanLabel = PanLabel(v.Pan)
}

// ============================================================
// player.Listener
// ============================================================

func (s *Store) OnStateChange(st player.State) {
	s.update(func(v *View) { v.State = st })
}

func (s *Store) OnTimeUpdate(sec float64) {
	s.update(func(v *View) { v.Position = sec })
}

func (s *Store) OnEnded() {
	s.update(func(v *View) {
		v.Playing = false
		v.Position = 0
	})
}

func (s *Store) OnError(err error) {
	s.update(func(v *View) { v.Error = err.Error() })
}

// ============================================================
// Intents
// ============================================================

func (s *Store) fail(op string, err error) error {
	if err != nil {
		s.log.Debug().Err(err).Str("op", op).Msg("intent failed")
		s.update(func(v *View) { v.Error = err.Error() })
	}
	return err
}

func (s *Store) Load(ctx context.Context, name string, data []byte) (player.Track, error) {
	t, err := s.engine.Load(ctx, name, data)
	if errors.Is(err, player.ErrLoadSuperseded) {
		// load yang lebih baru yang menentukan view
		return t, err
	}
	if err != nil {
		return t, s.fail("load", err)
	}
	s.update(func(v *View) { v.Error = "" })
	return t, nil
}

// LoadFile membaca file dari disk (dibatasi maxFile byte) lalu Load
func (s *Store) LoadFile(ctx context.Context, path string) (player.Track, error) {
	info, err := os.Stat(path)
	if err != nil {
		return player.Track{}, s.fail("load", err)
	}
	if info.IsDir() {
		return player.Track{}, s.fail("load", fmt.Errorf("%s is a directory", path))
	}
	if s.maxFile > 0 && info.Size() > s.maxFile {
		return player.Track{}, s.fail("load", fmt.Errorf("%s: file too large (%d bytes, max %d)", path, info.Size(), s.maxFile))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return player.Track{}, s.fail("load", err)
	}
	return s.Load(ctx, filepath.Base(path), data)
}

func (s *Store) Play(ctx context.Context) error { return s.fail("play", s.engine.Play(ctx)) }
func (s *Store) Pause() error                   { return s.fail("pause", s.engine.Pause()) }
func (s *Store) Stop() error                    { return s.fail("stop", s.engine.Stop()) }
func (s *Store) Seek(sec float64) error         { return s.fail("seek", s.engine.Seek(sec)) }
func (s *Store) SetVolume(v float64) error      { return s.fail("volume", s.engine.SetVolume(v)) }
func (s *Store) SetPan(p float64) error         { return s.fail("pan", s.engine.SetPan(p)) }
func (s *Store) ResetEqualizer() error          { return s.fail("eq-reset", s.engine.ResetEqualizer()) }
func (s *Store) ToggleMute() error              { return s.fail("mute", s.engine.ToggleMute()) }

func (s *Store) SetBand(freq, gainDB float64) error {
	return s.fail("eq", s.engine.SetEqualizerBand(freq, gainDB))
}

// Toggle: play saat berhenti, pause saat playing
func (s *Store) Toggle(ctx context.Context) error {
	if s.View().Playing {
		return s.Pause()
	}
	return s.Play(ctx)
}
