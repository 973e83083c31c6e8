package raster

import (
	"errors"
	"fmt"
	"image/color"
	"math"
)

var ErrInvalidPalette = errors.New("invalid palette")

// Channel computes one colour component as Scale*intensity + Offset in 8-bit
// arithmetic; sums past 255 wrap modulo 256 rather than clamp.
type Channel struct {
	Scale  uint8 `json:"scale"`
	Offset uint8 `json:"offset"`
}

// Const is a channel that ignores intensity.
func Const(v uint8) Channel {
	return Channel{Offset: v}
}

// Shift is a channel equal to intensity + offset (mod 256).
func Shift(offset uint8) Channel {
	return Channel{Scale: 1, Offset: offset}
}

// Apply evaluates the channel for intensity i.
func (c Channel) Apply(i uint8) uint8 {
	return c.Scale*i + c.Offset
}

// Band colours every intensity up to and including Max that was not claimed
// by an earlier band.
type Band struct {
	Name string  `json:"name"`
	Max  uint8   `json:"max"`
	R    Channel `json:"r"`
	G    Channel `json:"g"`
	B    Channel `json:"b"`
	A    Channel `json:"a"`
}

// Color evaluates the band's channels for intensity i.
func (b Band) Color(i uint8) color.RGBA {
	return color.RGBA{
		R: b.R.Apply(i),
		G: b.G.Apply(i),
		B: b.B.Apply(i),
		A: b.A.Apply(i),
	}
}

// Palette is an ordered set of bands partitioning 0..255.
type Palette struct {
	bands []Band
	// lookup caches the band index for every intensity.
	lookup [math.MaxUint8 + 1]uint8
}

// NewPalette validates bands and builds a palette. Band upper bounds must be
// strictly increasing and the last must be 255, so every intensity resolves
// to exactly one band.
func NewPalette(bands ...Band) (*Palette, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("%w: no bands", ErrInvalidPalette)
	}
	if len(bands) > math.MaxUint8+1 {
		return nil, fmt.Errorf("%w: %d bands exceeds 256", ErrInvalidPalette, len(bands))
	}
	for i := 1; i < len(bands); i++ {
		if bands[i].Max <= bands[i-1].Max {
			return nil, fmt.Errorf("%w: band %d (%q) max %d does not exceed previous max %d",
				ErrInvalidPalette, i, bands[i].Name, bands[i].Max, bands[i-1].Max)
		}
	}
	if last := bands[len(bands)-1]; last.Max != math.MaxUint8 {
		return nil, fmt.Errorf("%w: last band %q ends at %d, want 255", ErrInvalidPalette, last.Name, last.Max)
	}

	p := &Palette{bands: append([]Band(nil), bands...)}
	band := 0
	for i := 0; i <= math.MaxUint8; i++ {
		for uint8(i) > p.bands[band].Max {
			band++
		}
		p.lookup[i] = uint8(band)
	}
	return p, nil
}

// MustPalette is NewPalette that panics on invalid bands. Use it only for
// package-level palettes built from constants.
func MustPalette(bands ...Band) *Palette {
	p, err := NewPalette(bands...)
	if err != nil {
		panic(err)
	}
	return p
}

var defaultPalette = MustPalette(
	Band{Name: "water", Max: 100, R: Const(67), G: Shift(65), B: Shift(155), A: Const(255)},
	Band{Name: "shore", Max: 140, R: Shift(60), G: Shift(0), B: Const(44), A: Const(255)},
	Band{Name: "land", Max: 210, R: Const(92), G: Shift(45), B: Const(36), A: Const(255)},
	Band{Name: "snow", Max: 255, R: Const(244), G: Const(249), B: Const(255), A: Const(255)},
)

// DefaultPalette returns the terrain palette: water, shore, land and snow.
func DefaultPalette() *Palette {
	return defaultPalette
}

// Bands returns a copy of the palette's bands in priority order.
func (p *Palette) Bands() []Band {
	return append([]Band(nil), p.bands...)
}

// BandIndex returns the index of the band that colours intensity i.
func (p *Palette) BandIndex(i uint8) int {
	return int(p.lookup[i])
}

// Band returns the band that colours intensity i.
func (p *Palette) Band(i uint8) Band {
	return p.bands[p.lookup[i]]
}

// Color maps intensity i to its colour.
func (p *Palette) Color(i uint8) color.RGBA {
	return p.Band(i).Color(i)
}

// AppendPixel appends the 4-byte RGBA pixel for intensity i to buf.
func (p *Palette) AppendPixel(buf []byte, i uint8) []byte {
	c := p.Color(i)
	return append(buf, c.R, c.G, c.B, c.A)
}
