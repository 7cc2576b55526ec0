// Package ipc serves the player over a unix socket, one command per line.
// The first connection to issue a control command owns the player until it
// disconnects; everyone else may only read.
package ipc

import (
	"bufio"
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"time"

	"hdxdeck/internal/player"
	"hdxdeck/internal/store"

	"github.com/rs/zerolog"
)

const writeTimeout = time.Second

// Controller adalah intent yang diteruskan ke store
type Controller interface {
	View() store.View
	LoadFile(ctx context.Context, path string) (player.Track, error)
	Play(ctx context.Context) error
	Pause() error
	Toggle(ctx context.Context) error
	Stop() error
	Seek(sec float64) error
	SetVolume(v float64) error
	SetPan(p float64) error
	SetBand(freq, gainDB float64) error
	ResetEqualizer() error
	ToggleMute() error
}

// Engine memberi data analyser dan sumber event
type Engine interface {
	AddListener(player.Listener)
	RemoveListener(player.Listener)
	FrequencyData() ([]uint8, error)
	WaveformData() ([]uint8, error)
	Track() (player.Track, bool)
}

type Server struct {
	ctl Controller
	eng Engine
	log zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	ln       net.Listener
	conns    map[*client]struct{}
	owner    *client
	lastTime float64
	closed   bool
	wg       sync.WaitGroup
}

func New(ctl Controller, eng Engine, log zerolog.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		ctl:    ctl,
		eng:    eng,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		conns:  make(map[*client]struct{}),
	}
	eng.AddListener(s)
	return s
}

// ListenAndServe membuka socket unix di path (socket lama dihapus)
func (s *Server) ListenAndServe(path string) error {
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve menerima koneksi sampai Close dipanggil
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return net.ErrClosed
	}
	s.ln = ln
	s.mu.Unlock()

	s.log.Info().Str("addr", ln.Addr().String()).Msg("ipc listening")
	for {
		c, err := ln.Accept()
		if err != nil {
			if s.isClosed() {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}
		s.ServeConn(c)
	}
}

// ServeConn menangani satu koneksi di goroutine sendiri
func (s *Server) ServeConn(c net.Conn) {
	cl := &client{conn: c}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		c.Close()
		return
	}
	s.conns[cl] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.handleConn(cl)
	}()
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close menutup listener dan semua koneksi lalu menunggu handler selesai
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.cancel()
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	for cl := range s.conns {
		cl.conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.eng.RemoveListener(s)
	return err
}

// ===============================
// Connection & ownership
// ===============================

type client struct {
	conn net.Conn
	wmu  sync.Mutex
}

func (c *client) writeLine(line string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err := c.conn.Write([]byte(line + "\n"))
	return err
}

func (s *Server) isOwner(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner == c
}

func (s *Server) claimOwner(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner == nil {
		s.owner = c
		s.log.Debug().Str("remote", c.conn.RemoteAddr().String()).Msg("control claimed")
		return true
	}
	return s.owner == c
}

// releaseOwner melepas kontrol; playback dihentikan seperti saat owner pergi
func (s *Server) releaseOwner(c *client) {
	s.mu.Lock()
	wasOwner := s.owner == c
	if wasOwner {
		s.owner = nil
	}
	s.mu.Unlock()

	if wasOwner {
		s.log.Debug().Msg("control released")
		if err := s.ctl.Stop(); err != nil && !errors.Is(err, player.ErrNotLoaded) {
			s.log.Warn().Err(err).Msg("stop on release")
		}
	}
}

func (s *Server) handleConn(c *client) {
	defer func() {
		s.releaseOwner(c)
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		c.conn.Close()
	}()

	sc := bufio.NewScanner(c.conn)
	for sc.Scan() {
		reply := s.exec(c, sc.Text())
		if reply == "" {
			continue
		}
		if err := c.writeLine(reply); err != nil {
			return
		}
	}
}
