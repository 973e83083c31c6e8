package raster

import (
	"fmt"
	"math"
	"strings"
)

// IntensityMode selects how a field value is quantized to an 8-bit intensity.
type IntensityMode int

const (
	// IntensityRound maps v to round(255*(v+1)/2), rounding half away from zero.
	IntensityRound IntensityMode = iota
	// IntensityTruncate maps v to trunc(255*(v+1)/2), reproducing textures
	// made by generators that cast the scaled value directly.
	IntensityTruncate
)

// String returns the config name of the mode.
func (m IntensityMode) String() string {
	switch m {
	case IntensityRound:
		return "round"
	case IntensityTruncate:
		return "truncate"
	default:
		return fmt.Sprintf("IntensityMode(%d)", int(m))
	}
}

// ParseIntensityMode resolves a config name. The empty string selects IntensityRound.
func ParseIntensityMode(s string) (IntensityMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "round":
		return IntensityRound, nil
	case "truncate", "trunc":
		return IntensityTruncate, nil
	default:
		return IntensityRound, fmt.Errorf("unknown intensity mode %q", s)
	}
}

// Quantize converts a field value to an intensity. Results outside [0, 255]
// saturate and NaN maps to 0, so every input has a defined result.
func (m IntensityMode) Quantize(v float64) uint8 {
	scaled := 255 * (v + 1) / 2
	if m == IntensityTruncate {
		scaled = math.Trunc(scaled)
	} else {
		scaled = math.Round(scaled)
	}
	return saturate(scaled)
}

// Intensity quantizes v with IntensityRound.
func Intensity(v float64) uint8 {
	return IntensityRound.Quantize(v)
}

func saturate(f float64) uint8 {
	switch {
	case math.IsNaN(f), f <= 0:
		return 0
	case f >= math.MaxUint8:
		return math.MaxUint8
	default:
		return uint8(f)
	}
}
