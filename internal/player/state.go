package player

import "fmt"

// Status adalah posisi di state machine playback
type Status int

const (
	StatusEmpty Status = iota
	StatusLoading
	StatusReady
	StatusPlaying
	StatusEnded
)

var statusNames = [...]string{"empty", "loading", "ready", "playing", "ended"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	for i, name := range statusNames {
		if name == string(b) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}

// Band adalah satu filter equalizer
type Band struct {
	Frequency float64 `json:"freq"`
	Gain      float64 `json:"gain"`
}

// Track dibuat saat load dan tidak berubah sampai load berikutnya.
// Slice di dalamnya dibagi, jangan dimodifikasi.
type Track struct {
	Name        string  `json:"name"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	Album       string  `json:"album"`
	Year        int     `json:"year"`
	Genre       string  `json:"genre"`
	TrackNumber int     `json:"track_number"`
	Duration    float64 `json:"duration"`
	Format      string  `json:"format"`
	SampleRate  int     `json:"sample_rate"`
	Channels    int     `json:"channels"`
	Size        int     `json:"size"`
	Fingerprint string  `json:"fingerprint"`
	HasArtwork  bool    `json:"has_artwork"`

	Artwork  []byte `json:"-"`
	Waveform []byte `json:"-"`
	Source   []byte `json:"-"`
}

// State adalah snapshot yang dikirim ke listener
type State struct {
	Status   Status  `json:"status"`
	Loaded   bool    `json:"loaded"`
	Playing  bool    `json:"playing"`
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
	Volume   float64 `json:"volume"`
	Pan      float64 `json:"pan"`
	Bands    []Band  `json:"bands"`
	Track    *Track  `json:"track,omitempty"`
}
