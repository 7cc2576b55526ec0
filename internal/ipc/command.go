package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strconv"
	"strings"

	"hdxdeck/internal/player"
	"hdxdeck/pkg/spec"
)

// onGainStep: gain EQ harus kelipatan GainStepDB
func onGainStep(db float64) bool {
	steps := db / spec.GainStepDB
	return math.Abs(steps-math.Round(steps)) < 1e-9
}

func argFloat(parts []string, idx int) (float64, bool) {
	if len(parts) <= idx {
		return 0, false
	}
	v, err := strconv.ParseFloat(parts[idx], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// errReply memetakan error ke baris "ERR <KIND>"
func errReply(err error) string {
	switch {
	case errors.Is(err, player.ErrNotLoaded):
		return "ERR NOT_LOADED"
	case errors.Is(err, player.ErrUnsupportedFormat):
		return "ERR UNSUPPORTED_FORMAT"
	case errors.Is(err, player.ErrCorruptFile):
		return "ERR CORRUPT_FILE"
	case errors.Is(err, player.ErrUnknownBand):
		return "ERR UNKNOWN_BAND"
	case errors.Is(err, player.ErrLoadSuperseded):
		return "ERR SUPERSEDED"
	case errors.Is(err, player.ErrPlatformUnavailable):
		return "ERR PLATFORM_UNAVAILABLE"
	case errors.Is(err, player.ErrClosed):
		return "ERR CLOSED"
	case errors.Is(err, fs.ErrNotExist):
		return "ERR FILE_NOT_FOUND"
	default:
		return "ERR INTERNAL"
	}
}

func jsonLine(v any) string {
	j, err := json.Marshal(v)
	if err != nil {
		return "ERR INTERNAL"
	}
	return string(j)
}

// bytesLine menulis []uint8 sebagai array angka, bukan base64
func bytesLine(b []uint8) string {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return jsonLine(out)
}

// exec menjalankan satu baris perintah dan mengembalikan balasannya
func (s *Server) exec(c *client, line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}

	// VERB + RAW ARG, path boleh mengandung spasi
	parts := strings.SplitN(line, " ", 2)
	cmd := strings.ToUpper(parts[0])
	arg := ""
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}

	// ==================================================
	// READ-ONLY COMMANDS
	// ==================================================
	switch cmd {
	case "ABOUT":
		return fmt.Sprintf("%s V.%d.%d", spec.ServerName, spec.VersionMajor, spec.VersionMinor)

	case "PING":
		return "Pong"

	case "WHOAMI":
		if s.isOwner(c) {
			return "OWNER"
		}
		return "OBSERVER"

	case "STATUS":
		return jsonLine(s.ctl.View())

	case "BANDS":
		return jsonLine(s.ctl.View().Bands)

	case "SPECTRUM":
		data, err := s.eng.FrequencyData()
		if err != nil {
			return errReply(err)
		}
		return bytesLine(data)

	case "SCOPE":
		data, err := s.eng.WaveformData()
		if err != nil {
			return errReply(err)
		}
		return bytesLine(data)

	case "WAVEFORM":
		t, ok := s.eng.Track()
		if !ok {
			return errReply(player.ErrNotLoaded)
		}
		return bytesLine(t.Waveform)
	}

	// ==================================================
	// CONTROL COMMANDS (BUTUH OWNER)
	// ==================================================
	if !s.claimOwner(c) {
		return "ERR CONTROL_LOCKED"
	}

	args := strings.Fields(arg)
	switch cmd {
	case "LOAD":
		if arg == "" {
			return "ERR ARG"
		}
		t, err := s.ctl.LoadFile(s.ctx, arg)
		if err != nil {
			return errReply(err)
		}
		return "Track Loaded: " + t.Title

	case "PLAY":
		if err := s.ctl.Play(s.ctx); err != nil {
			return errReply(err)
		}
		return "Playing"

	case "PAUSE":
		if err := s.ctl.Pause(); err != nil {
			return errReply(err)
		}
		return "Paused"

	case "TOGGLE":
		if err := s.ctl.Toggle(s.ctx); err != nil {
			return errReply(err)
		}
		if s.ctl.View().Playing {
			return "Playing"
		}
		return "Paused"

	case "STOP":
		if err := s.ctl.Stop(); err != nil {
			return errReply(err)
		}
		return "Stopped"

	case "SEEK":
		v, ok := argFloat(args, 0)
		if !ok || len(args) != 1 {
			return "ERR ARG"
		}
		if err := s.ctl.Seek(v); err != nil {
			return errReply(err)
		}
		return "OK"

	case "VOLUME":
		v, ok := argFloat(args, 0)
		if !ok || len(args) != 1 {
			return "ERR ARG"
		}
		if err := s.ctl.SetVolume(v); err != nil {
			return errReply(err)
		}
		return "OK"

	case "MUTE":
		if err := s.ctl.ToggleMute(); err != nil {
			return errReply(err)
		}
		if s.ctl.View().Volume == 0 {
			return "Muted"
		}
		return "Unmuted"

	case "PAN":
		v, ok := argFloat(args, 0)
		if !ok || len(args) != 1 {
			return "ERR ARG"
		}
		if err := s.ctl.SetPan(v); err != nil {
			return errReply(err)
		}
		return "OK"

	case "EQ":
		freq, ok1 := argFloat(args, 0)
		gain, ok2 := argFloat(args, 1)
		if !ok1 || !ok2 || len(args) != 2 || !onGainStep(gain) {
			return "ERR ARG"
		}
		if err := s.ctl.SetBand(freq, gain); err != nil {
			return errReply(err)
		}
		return "OK"

	case "EQ-RESET":
		if err := s.ctl.ResetEqualizer(); err != nil {
			return errReply(err)
		}
		return "OK"

	default:
		return "ERR UNKNOWN"
	}
}
