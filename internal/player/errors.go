package player

import (
	"errors"

	"hdxdeck/internal/audioctx"
	"hdxdeck/internal/codec"
)

var (
	ErrNotLoaded           = errors.New("no track loaded")
	ErrUnsupportedFormat   = codec.ErrUnsupportedFormat
	ErrCorruptFile         = codec.ErrCorruptFile
	ErrPlatformUnavailable = audioctx.ErrUnavailable
	ErrUnknownBand         = errors.New("unknown equalizer band")
	ErrLoadSuperseded      = errors.New("load superseded by a newer load")
	ErrClosed              = errors.New("player closed")
)
