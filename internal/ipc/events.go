package ipc

import (
	"math"

	"hdxdeck/internal/player"
	"hdxdeck/pkg/spec"
)

// timeStep membatasi event TIME ke owner, tick 60 Hz terlalu rapat
const timeStep = 0.1

type Event struct {
	Type     string        `json:"type"`
	State    *player.State `json:"state,omitempty"`
	Position *float64      `json:"position,omitempty"`
	Error    string        `json:"error,omitempty"`
}

func (s *Server) emitEvent(ev Event) {
	s.mu.Lock()
	owner := s.owner
	s.mu.Unlock()
	if owner == nil {
		return
	}
	if err := owner.writeLine(spec.EventPrefix + jsonLine(ev)); err != nil {
		s.log.Debug().Err(err).Msg("event sink gone")
		owner.conn.Close()
	}
}

func (s *Server) OnStateChange(st player.State) {
	s.mu.Lock()
	s.lastTime = st.Position
	s.mu.Unlock()
	s.emitEvent(Event{Type: "STATE", State: &st})
}

func (s *Server) OnTimeUpdate(sec float64) {
	s.mu.Lock()
	if math.Abs(sec-s.lastTime) < timeStep {
		s.mu.Unlock()
		return
	}
	s.lastTime = sec
	s.mu.Unlock()
	s.emitEvent(Event{Type: "TIME", Position: &sec})
}

func (s *Server) OnEnded() {
	s.emitEvent(Event{Type: "ENDED"})
}

func (s *Server) OnError(err error) {
	s.emitEvent(Event{Type: "ERROR", Error: err.Error()})
}
