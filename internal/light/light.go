// Package light models colored light sources and combines their attenuation
// grids into linear RGB: additive blending across lights and bilinear
// subpixel interpolation for fractional source positions.
package light

import (
	"fmt"
)

// RGBA is a floating point color. Channels use the [0, 1] convention; the
// alpha channel is carried for consumers but does not participate in
// blending.
type RGBA struct {
	R, G, B, A float32
}

// NewRGBA builds a color from channel values.
func NewRGBA(r, g, b, a float32) RGBA {
	return RGBA{R: r, G: g, B: b, A: a}
}

// Source is a single light: a possibly fractional cell position, a color,
// an intensity scalar and a decay-rate multiplier applied to the decay grid
// while sweeping.
type Source struct {
	X, Y      float64
	Color     RGBA
	Intensity float32
	DecayRate float32
}

// Static reports whether the source sits exactly on a lattice cell, which
// makes its attenuation grid cacheable.
func (s *Source) Static() bool {
	return s.X == float64(int(s.X)) && s.Y == float64(int(s.Y))
}

// ParseHexColor parses an "RRGGBB" string into an RGBA with full alpha.
func ParseHexColor(s string) (RGBA, error) {
	if len(s) != 6 {
		return RGBA{}, fmt.Errorf("invalid hex color %q: want RRGGBB", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return RGBA{
		R: float32(r) / 255.0,
		G: float32(g) / 255.0,
		B: float32(b) / 255.0,
		A: 1.0,
	}, nil
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
