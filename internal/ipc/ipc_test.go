package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hdxdeck/internal/audioctx"
	"hdxdeck/internal/codec/codectest"
	"hdxdeck/internal/player"
	"hdxdeck/internal/store"
	"hdxdeck/pkg/spec"

	"github.com/rs/zerolog"
)

// noTicks: posisi tidak dilaporkan, event hanya datang dari perintah
type noTicks struct{}

func (noTicks) Start(context.Context, func()) {}

type fixture struct {
	srv  *Server
	out  *audioctx.Offline
	sock string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	out := audioctx.NewOffline(spec.SampleRate)
	m, err := player.New(out, player.WithScheduler(noTicks{}))
	if err != nil {
		t.Fatal(err)
	}
	st := store.New(m, zerolog.Nop(), spec.MaxFileBytes)
	srv := New(st, m, zerolog.Nop())

	sock := filepath.Join(t.TempDir(), "hdx.sock")
	ln, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	t.Cleanup(func() {
		srv.Close()
		if err := <-done; err != nil {
			t.Errorf("Serve = %v", err)
		}
		st.Close()
		m.Close()
	})
	return &fixture{srv: srv, out: out, sock: sock}
}

type testClient struct {
	t      *testing.T
	conn   net.Conn
	r      *bufio.Reader
	events []string
}

func (f *fixture) dial(t *testing.T) *testClient {
	t.Helper()
	c, err := net.Dial("unix", f.sock)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return &testClient{t: t, conn: c, r: bufio.NewReader(c)}
}

// ask mengirim perintah dan mengembalikan balasan pertama yang bukan EVENT
func (c *testClient) ask(cmd string) string {
	c.t.Helper()
	if _, err := fmt.Fprintf(c.conn, "%s\n", cmd); err != nil {
		c.t.Fatal(err)
	}
	for {
		c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		line, err := c.r.ReadString('\n')
		if err != nil {
			c.t.Fatalf("%s: read: %v", cmd, err)
		}
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, spec.EventPrefix) {
			c.events = append(c.events, strings.TrimPrefix(line, spec.EventPrefix))
			continue
		}
		return line
	}
}

func (c *testClient) eventTypes() []string {
	var out []string
	for _, e := range c.events {
		var ev struct{ Type string }
		if err := json.Unmarshal([]byte(e), &ev); err != nil {
			c.t.Fatalf("bad event %q: %v", e, err)
		}
		out = append(out, ev.Type)
	}
	return out
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func toneFile(t *testing.T, seconds float64) string {
	return writeFile(t, "tone.wav", codectest.WAV(t, codectest.Tone{Seconds: seconds, Frequency: 440, Amplitude: 0.5}))
}

func TestReadOnlyCommands(t *testing.T) {
	f := newFixture(t)
	c := f.dial(t)

	tests := []struct{ cmd, want string }{
		{"ABOUT", "HDX-Player V.1.0"},
		{"PING", "Pong"},
		{"ping", "Pong"},
		{"WHOAMI", "OBSERVER"},
		{"SPECTRUM", "ERR NOT_LOADED"},
		{"SCOPE", "ERR NOT_LOADED"},
		{"WAVEFORM", "ERR NOT_LOADED"},
	}
	for _, tt := range tests {
		if got := c.ask(tt.cmd); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.cmd, got, tt.want)
		}
	}

	var status map[string]any
	if err := json.Unmarshal([]byte(c.ask("STATUS")), &status); err != nil {
		t.Fatal(err)
	}
	if status["status"] != "empty" || status["loaded"] != false {
		t.Errorf("STATUS = %v", status)
	}

	var bands []map[string]any
	if err := json.Unmarshal([]byte(c.ask("BANDS")), &bands); err != nil {
		t.Fatal(err)
	}
	if len(bands) != len(spec.DefaultBands) || bands[0]["label"] != "400Hz" {
		t.Errorf("BANDS = %v", bands)
	}

	// read-only tidak mengambil kontrol
	if got := c.ask("WHOAMI"); got != "OBSERVER" {
		t.Errorf("WHOAMI after reads = %q", got)
	}
}

func TestControlCommands(t *testing.T) {
	f := newFixture(t)
	c := f.dial(t)
	path := toneFile(t, 2)

	tests := []struct{ cmd, want string }{
		{"LOAD", "ERR ARG"},
		{"LOAD " + filepath.Join(t.TempDir(), "missing.wav"), "ERR FILE_NOT_FOUND"},
		{"LOAD " + writeFile(t, "junk.bin", []byte("junk junk junk")), "ERR UNSUPPORTED_FORMAT"},
		{"PLAY", "ERR NOT_LOADED"},
		{"LOAD " + path, "Track Loaded: tone"},
		{"WHOAMI", "OWNER"},
		{"PLAY", "Playing"},
		{"VOLUME 0.5", "OK"},
		{"VOLUME", "ERR ARG"},
		{"VOLUME loud", "ERR ARG"},
		{"PAN -0.25", "OK"},
		{"PAN left", "ERR ARG"},
		{"EQ 1000 6", "OK"},
		{"EQ 1234 1", "ERR UNKNOWN_BAND"},
		{"EQ 1000", "ERR ARG"},
		{"EQ 1000 -3.5", "OK"},
		{"EQ 1000 1.3", "ERR ARG"},
		{"EQ-RESET", "OK"},
		{"MUTE", "Muted"},
		{"MUTE", "Unmuted"},
		{"TOGGLE", "Paused"},
		{"TOGGLE", "Playing"},
		{"SEEK 0.5", "OK"},
		{"SEEK 1 2", "ERR ARG"},
		{"STOP", "Stopped"},
		{"REWIND", "ERR UNKNOWN"},
	}
	for _, tt := range tests {
		if got := c.ask(tt.cmd); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.cmd, got, tt.want)
		}
	}

	var view store.View
	if err := json.Unmarshal([]byte(c.ask("STATUS")), &view); err != nil {
		t.Fatal(err)
	}
	if !view.Loaded || view.Playing || view.Position != 0 {
		t.Errorf("STATUS = loaded %v playing %v pos %v", view.Loaded, view.Playing, view.Position)
	}
	if view.Volume != spec.MuteLevel || view.PanLabel != "L25" {
		t.Errorf("mixer = %v %q", view.Volume, view.PanLabel)
	}
	if view.Track == nil || view.Track.Title != "tone" {
		t.Errorf("track = %+v", view.Track)
	}
}

func TestEventsGoToOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.dial(t)
	observer := f.dial(t)

	if got := owner.ask("LOAD " + toneFile(t, 1)); !strings.HasPrefix(got, "Track Loaded") {
		t.Fatalf("LOAD = %q", got)
	}
	types := owner.eventTypes()
	if len(types) == 0 || types[0] != "STATE" {
		t.Errorf("owner events = %v, want STATE first", types)
	}

	owner.events = nil
	owner.ask("LOAD " + writeFile(t, "bad.wav", []byte("RIFF\x00\x00\x00\x00WAVE")))
	types = owner.eventTypes()
	if !containsStr(types, "ERROR") {
		t.Errorf("owner events = %v, want ERROR", types)
	}

	if got := observer.ask("PLAY"); got != "ERR CONTROL_LOCKED" {
		t.Errorf("observer PLAY = %q, want ERR CONTROL_LOCKED", got)
	}
	if len(observer.events) != 0 {
		t.Errorf("observer got events %v", observer.events)
	}
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestOwnerReleasedOnDisconnect(t *testing.T) {
	f := newFixture(t)
	a := f.dial(t)
	b := f.dial(t)

	if got := a.ask("LOAD " + toneFile(t, 1)); !strings.HasPrefix(got, "Track Loaded") {
		t.Fatalf("LOAD = %q", got)
	}
	a.ask("PLAY")
	if got := b.ask("STOP"); got != "ERR CONTROL_LOCKED" {
		t.Fatalf("STOP from b = %q", got)
	}

	a.conn.Close()
	deadline := time.Now().Add(3 * time.Second)
	for {
		if got := b.ask("WHOAMI"); got == "OBSERVER" {
			if reply := b.ask("PAUSE"); reply != "ERR CONTROL_LOCKED" {
				if reply != "Paused" {
					t.Errorf("PAUSE after takeover = %q", reply)
				}
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatal("control never released")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// owner yang pergi menghentikan playback
	var view store.View
	json.Unmarshal([]byte(b.ask("STATUS")), &view)
	if view.Playing {
		t.Error("still playing after owner left")
	}
}

func TestAnalyserCommands(t *testing.T) {
	f := newFixture(t)
	c := f.dial(t)
	c.ask("LOAD " + toneFile(t, 1))
	if got := c.ask("PLAY"); got != "Playing" {
		t.Fatalf("PLAY = %q", got)
	}
	f.out.Render(100 * time.Millisecond)

	tests := []struct {
		cmd  string
		want int
	}{
		{"SPECTRUM", spec.FFTSize / 2},
		{"SCOPE", spec.FFTSize},
		{"WAVEFORM", 1000},
	}
	for _, tt := range tests {
		var data []int
		if err := json.Unmarshal([]byte(c.ask(tt.cmd)), &data); err != nil {
			t.Fatalf("%s: %v", tt.cmd, err)
		}
		if len(data) != tt.want {
			t.Errorf("%s returned %d values, want %d", tt.cmd, len(data), tt.want)
		}
	}
}

func TestCloseDropsClients(t *testing.T) {
	f := newFixture(t)
	c := f.dial(t)
	if got := c.ask("PING"); got != "Pong" {
		t.Fatalf("PING = %q", got)
	}

	if err := f.srv.Close(); err != nil {
		t.Fatal(err)
	}
	c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := c.r.ReadString('\n'); err == nil {
		t.Error("connection still open after Close")
	} else if ne, ok := err.(net.Error); ok && ne.Timeout() {
		t.Error("connection not closed, read timed out")
	}
	if err := f.srv.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestErrReply(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{player.ErrNotLoaded, "ERR NOT_LOADED"},
		{fmt.Errorf("load x: %w", player.ErrCorruptFile), "ERR CORRUPT_FILE"},
		{player.ErrLoadSuperseded, "ERR SUPERSEDED"},
		{player.ErrPlatformUnavailable, "ERR PLATFORM_UNAVAILABLE"},
		{player.ErrClosed, "ERR CLOSED"},
		{errors.New("boom"), "ERR INTERNAL"},
	}
	for _, tt := range tests {
		if got := errReply(tt.err); got != tt.want {
			t.Errorf("errReply(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
