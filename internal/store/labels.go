package store

import (
	"fmt"
	"math"
	"strconv"
)

// FormatTime menampilkan detik sebagai MM:SS (65 -> "01:05")
func FormatTime(sec float64) string {
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec < 0 {
		sec = 0
	}
	s := int(sec)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

// VolumeLabel: 0.75 -> "75%"
func VolumeLabel(v float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(v*100)))
}

// PanLabel: 0 -> "Center", -0.3 -> "L30", 0.3 -> "R30"
func PanLabel(p float64) string {
	n := int(math.Round(p * 100))
	switch {
	case n == 0:
		return "Center"
	case n < 0:
		return "L" + strconv.Itoa(-n)
	default:
		return "R" + strconv.Itoa(n)
	}
}

// GainLabel: 6 -> "+6.0dB", -3.5 -> "-3.5dB"
func GainLabel(db float64) string {
	if db > 0 {
		return fmt.Sprintf("+%.1fdB", db)
	}
	if db == 0 {
		// hindari "-0.0dB"
		db = 0
	}
	return fmt.Sprintf("%.1fdB", db)
}

// BandLabel: 400 -> "400Hz", 2500 -> "2.5kHz"
func BandLabel(freq float64) string {
	if freq >= 1000 {
		return strconv.FormatFloat(freq/1000, 'f', -1, 64) + "kHz"
	}
	return strconv.FormatFloat(freq, 'f', -1, 64) + "Hz"
}
