package player

import "slices"

// Listener menerima notifikasi dari Manager. Dipanggil di luar lock
// Manager, berurutan sesuai registrasi.
type Listener interface {
	OnStateChange(State)
	OnTimeUpdate(seconds float64)
	OnEnded()
	OnError(error)
}

// ListenerFuncs mengadaptasi fungsi biasa. Field nil diabaikan.
type ListenerFuncs struct {
	StateChange func(State)
	TimeUpdate  func(float64)
	Ended       func()
	Error       func(error)
}

func (f *ListenerFuncs) OnStateChange(s State) {
	if f.StateChange != nil {
		f.StateChange(s)
	}
}

func (f *ListenerFuncs) OnTimeUpdate(sec float64) {
	if f.TimeUpdate != nil {
		f.TimeUpdate(sec)
	}
}

func (f *ListenerFuncs) OnEnded() {
	if f.Ended != nil {
		f.Ended()
	}
}

func (f *ListenerFuncs) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

type eventKind int

const (
	evState eventKind = iota
	evTime
	evEnded
	evError
)

type event struct {
	kind  eventKind
	state State
	pos   float64
	err   error
}

func (e event) deliver(l Listener) {
	switch e.kind {
	case evState:
		l.OnStateChange(e.state)
	case evTime:
		l.OnTimeUpdate(e.pos)
	case evEnded:
		l.OnEnded()
	case evError:
		l.OnError(e.err)
	}
}

// AddListener mendaftarkan l. Mendaftarkan dua kali tidak berefek.
func (m *Manager) AddListener(l Listener) {
	if l == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.listeners, l) {
		m.listeners = append(m.listeners, l)
	}
}

// RemoveListener melepas l. Melepas yang tidak terdaftar tidak berefek.
func (m *Manager) RemoveListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := slices.Index(m.listeners, l); i >= 0 {
		m.listeners = slices.Delete(m.listeners, i, i+1)
	}
}

func (m *Manager) emit(e event) {
	m.outbox = append(m.outbox, e)
}

func (m *Manager) emitState() {
	m.emit(event{kind: evState, state: m.snapshotLocked()})
}

func (m *Manager) emitTime(pos float64) {
	m.emit(event{kind: evTime, pos: pos})
}

func (m *Manager) emitError(err error) {
	m.emit(event{kind: evError, err: err})
}

// unlock melepas m.mu lalu mengirim event yang antre. Hanya satu goroutine
// yang mengirim pada satu waktu; panggilan re-entrant dari listener hanya
// menambah antrean, jadi urutan event tetap sama dengan urutan lock.
func (m *Manager) unlock() {
	if m.delivering {
		m.mu.Unlock()
		return
	}
	m.delivering = true
	for len(m.outbox) > 0 {
		batch := m.outbox
		m.outbox = nil
		ls := slices.Clone(m.listeners)
		m.mu.Unlock()

		for _, e := range batch {
			for _, l := range ls {
				e.deliver(l)
			}
		}
		m.mu.Lock()
	}
	m.delivering = false
	m.mu.Unlock()
}
