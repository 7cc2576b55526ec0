/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hdxdeck/internal/codec"
	"hdxdeck/internal/store"
	"hdxdeck/pkg/spec"
)

const (
	version_minor      = 0
	version_major      = 1
	developer_title    = "Developer Hardiyanto"
	developer_subtitle = "Build 27/12/2025 Ebiet Version"
	app_name           = "HDX-Probe"
	general_usage      = "Usage: ./hdx-probe -file <audio file>"
	json_dump_usage    = "Usage: ./hdx-probe -file <audio file> -jsondump"
	art_dump_usage     = "Usage: ./hdx-probe -file <audio file> -artdump <out.png>"
	spec_dump_usage    = "Usage: ./hdx-probe -file <audio file> -spectrogram <out.png>"
)

type report struct {
	File        string         `json:"file"`
	Size        int64          `json:"size"`
	Format      codec.Format   `json:"format"`
	SourceRate  int            `json:"source_rate"`
	Channels    int            `json:"channels"`
	Duration    float64        `json:"duration"`
	Fingerprint string         `json:"fingerprint"`
	Metadata    codec.Metadata `json:"metadata"`
	HasArtwork  bool           `json:"has_artwork"`
}

func main() {
	pathFlag := flag.String("file", "", "audio file (wav, mp3, flac, ogg, opus)")
	jsonDump := flag.Bool("jsondump", false, "dump report as JSON")
	artDump := flag.String("artdump", "", "write processed artwork PNG")
	specDump := flag.String("spectrogram", "", "write spectrogram PNG")
	flag.Parse()

	if *pathFlag == "" {
		fmt.Printf("\n%s %d.%d\n", app_name, version_major, version_minor)
		fmt.Printf("%s %s\n", developer_title, developer_subtitle)
		fmt.Printf("%s\n", general_usage)
		fmt.Printf("%s\n", json_dump_usage)
		fmt.Printf("%s\n", art_dump_usage)
		fmt.Printf("%s\n", spec_dump_usage)
		return
	}

	data, err := os.ReadFile(*pathFlag)
	if err != nil {
		fmt.Printf("Gagal buka file: %v\n", err)
		os.Exit(1)
	}

	dec, err := codec.Decode(data, spec.SampleRate)
	if err != nil {
		fmt.Printf("[!] Decode gagal: %v\n", err)
		os.Exit(1)
	}
	name := filepath.Base(*pathFlag)
	md := codec.ReadMetadata(name, data)

	rep := report{
		File:        name,
		Size:        int64(len(data)),
		Format:      dec.Format,
		SourceRate:  int(dec.SourceRate),
		Channels:    dec.Channels,
		Duration:    dec.Duration(),
		Fingerprint: codec.Fingerprint(dec.Samples),
		Metadata:    md,
		HasArtwork:  len(md.Artwork) > 0,
	}

	if *jsonDump {
		out, _ := json.MarshalIndent(rep, "", "  ")
		fmt.Println(string(out))
	} else {
		printTable(rep)
	}

	if *artDump != "" {
		if !rep.HasArtwork {
			fmt.Println("[!] Tidak ada artwork.")
		} else if err := os.WriteFile(*artDump, md.Artwork, 0o644); err != nil {
			fmt.Printf("[!] Gagal tulis artwork: %v\n", err)
		} else {
			fmt.Printf("Artwork -> %s (%s)\n", *artDump, formatSize(int64(len(md.Artwork))))
		}
	}

	if *specDump != "" {
		img, err := codec.GenerateSpectrogram(dec.Samples)
		if err == nil {
			err = os.WriteFile(*specDump, img, 0o644)
		}
		if err != nil {
			fmt.Printf("[!] Gagal buat spectrogram: %v\n", err)
		} else {
			fmt.Printf("Spectrogram -> %s\n", *specDump)
		}
	}
}

func printTable(r report) {
	art := "Tidak Ada Artwork"
	if r.HasArtwork {
		art = fmt.Sprintf("OK %dx%d png", codec.ArtworkSize, codec.ArtworkSize)
	}
	fmt.Println(strings.Repeat("=", 75))
	fmt.Printf(" FILE          : %s\n", r.File)
	fmt.Printf(" SIZE          : %s\n", formatSize(r.Size))
	fmt.Printf(" FORMAT        : %s, %d Hz, %d ch\n", r.Format, r.SourceRate, r.Channels)
	fmt.Printf(" DURATION      : %s\n", store.FormatTime(r.Duration))
	fmt.Println(strings.Repeat("-", 75))
	fmt.Printf(" TITLE         : %s\n", r.Metadata.Title)
	fmt.Printf(" ARTIST        : %s\n", r.Metadata.Artist)
	fmt.Printf(" ALBUM         : %s\n", r.Metadata.Album)
	fmt.Printf(" GENRE         : %s\n", r.Metadata.Genre)
	fmt.Printf(" YEAR / TRACK  : %d / %d\n", r.Metadata.Year, r.Metadata.Track)
	fmt.Printf(" ARTWORK       : %s\n", art)
	fmt.Printf(" FINGERPRINT   : %s\n", r.Fingerprint)
	fmt.Println(strings.Repeat("=", 75))
}

// Helper untuk format size yang human friendly
func formatSize(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	if exp == 0 {
		return fmt.Sprintf("%.2f Kb", float64(b)/float64(unit))
	}
	return fmt.Sprintf("%.2f Mb", float64(b)/float64(div))
}
