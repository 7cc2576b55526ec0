package codec

import (
	"bytes"
	"path/filepath"
	"strings"

	"hdxdeck/pkg/spec"

	"github.com/dhowden/tag"
)

// ArtworkSize adalah sisi maksimum cover hasil crop
const ArtworkSize = 600

type Metadata struct {
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Album   string `json:"album"`
	Year    int    `json:"year"`
	Genre   string `json:"genre"`
	Track   int    `json:"track"`
	Artwork []byte `json:"-"`
}

// ReadMetadata membaca tag (ID3, MP4, FLAC, Vorbis comment). Tag yang rusak
// atau kosong tidak dianggap error: field diisi nilai fallback.
func ReadMetadata(name string, data []byte) Metadata {
	md := Metadata{}

	if m, err := tag.ReadFrom(bytes.NewReader(data)); err == nil {
		md.Title = strings.TrimSpace(m.Title())
		md.Artist = strings.TrimSpace(m.Artist())
		md.Album = strings.TrimSpace(m.Album())
		md.Genre = strings.TrimSpace(m.Genre())
		md.Year = m.Year()
		md.Track, _ = m.Track()

		if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
			if art, err := ProcessArtwork(bytes.NewReader(pic.Data), ArtworkSize); err == nil {
				md.Artwork = art
			}
		}
	}

	if md.Title == "" {
		md.Title = titleFromName(name)
	}
	if md.Artist == "" {
		md.Artist = spec.UnknownArtist
	}
	if md.Album == "" {
		md.Album = spec.UnknownAlbum
	}
	if md.Year < 0 {
		md.Year = 0
	}
	if md.Track < 0 {
		md.Track = 0
	}
	return md
}

func titleFromName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return spec.UnknownTitle
	}
	title := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if title == "" {
		return spec.UnknownTitle
	}
	return title
}
