package spec

var (
	// DefaultBands adalah frekuensi tengah equalizer (Hz), urut naik
	DefaultBands = []float64{400, 1000, 2500, 6300, 16000}
)

const (
	// === IDENTITY & VERSIONING ===
	Version      = "1.0.0"
	VersionMajor = 1
	VersionMinor = 0
	ServerName   = "HDX-Player"

	// === ENGINE SPECS ===
	SampleRate      = 48000
	Channels        = 2
	BufferMillis    = 100
	FrameRate       = 60
	ResampleQuality = 4

	// === MIXER RANGES ===
	MinVolume  = 0.0
	MaxVolume  = 1.0
	MuteLevel  = 0.5 // volume setelah unmute
	MinPan     = -1.0
	MaxPan     = 1.0
	MinGainDB  = -20.0
	MaxGainDB  = 20.0
	GainStepDB = 0.5
	DefaultQ   = 1.0

	// === ANALYSER (mirip AnalyserNode) ===
	FFTSize         = 2048
	MinDecibels     = -100.0
	MaxDecibels     = -30.0
	SmoothingFactor = 0.8

	// === METADATA FALLBACK ===
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"

	// === IPC ===
	SocketFile   = "/tmp/hdx-player.sock"
	EventPrefix  = "EVENT "
	MaxFileBytes = 200 << 20
)
