// Package tonemap maps linear blended light values into the displayable
// [0, 1] range. Three policies trade brightness preservation differently,
// and a mode-independent wall rule keeps marked cells visible in darkness.
package tonemap

import "chosenoffset.com/gridlight/internal/grid"

// Mode selects the normalization policy.
type Mode int

const (
	// Standard clamps each channel to [0, 1]. Cells near a bright source
	// saturate to white and lose local falloff detail.
	Standard Mode = iota

	// BrightnessLimit rescales the whole frame by limit/max when any
	// channel exceeds the limit. Relative falloff shape is preserved; a
	// single very bright light dims the entire frame.
	BrightnessLimit

	// Perceptual scales each cell by threshold/luminance when its Rec.709
	// luminance exceeds the threshold. Hue is preserved per cell and no
	// single bright light dominates the frame.
	Perceptual
)

// String returns the mode name for logs and config files.
func (m Mode) String() string {
	switch m {
	case Standard:
		return "standard"
	case BrightnessLimit:
		return "brightness-limit"
	case Perceptual:
		return "perceptual"
	}
	return "unknown"
}

// Rec.709 luminance weights.
const (
	lumR = 0.2126
	lumG = 0.7152
	lumB = 0.0722
)

// Luminance returns the Rec.709 luminance of a linear RGB triple.
func Luminance(r, g, b float32) float32 {
	return r*lumR + g*lumG + b*lumB
}

// Normalizer converts linear RGB grids to displayable values.
type Normalizer struct {
	Mode Mode

	// Limit is the channel ceiling for BrightnessLimit and the luminance
	// threshold for Perceptual. Values <= 0 fall back to 1.
	Limit float32

	// WallMinimum is the per-channel floor applied to wall cells after
	// tone mapping.
	WallMinimum float32
}

// New creates a normalizer with the given mode and a limit/threshold of 1.
func New(mode Mode) *Normalizer {
	return &Normalizer{Mode: mode, Limit: 1}
}

// Normalize tone-maps the grid into [0, 1] and then applies the wall
// minimum. The input is not modified; walls may be nil.
func (n *Normalizer) Normalize(in *grid.RGBGrid, walls *grid.WallMask) *grid.RGBGrid {
	out := in.Clone()
	limit := n.Limit
	if limit <= 0 {
		limit = 1
	}

	switch n.Mode {
	case BrightnessLimit:
		var max float32
		for _, v := range out.Pix {
			if v > max {
				max = v
			}
		}
		if max > limit {
			scale := limit / max
			for i := range out.Pix {
				out.Pix[i] *= scale
			}
		}
	case Perceptual:
		for i := 0; i < len(out.Pix); i += 3 {
			r, g, b := out.Pix[i], out.Pix[i+1], out.Pix[i+2]
			scale := float32(1)
			if l := Luminance(r, g, b); l > limit {
				scale = limit / l
			}
			// Low-weight channels can still exceed the displayable range at
			// threshold luminance; a per-cell ceiling keeps the reduction
			// hue-preserving instead of letting the clamp skew it.
			max := r
			if g > max {
				max = g
			}
			if b > max {
				max = b
			}
			if max*scale > 1 {
				scale = 1 / max
			}
			if scale < 1 {
				out.Pix[i] = r * scale
				out.Pix[i+1] = g * scale
				out.Pix[i+2] = b * scale
			}
		}
	}

	// Every mode ends with a channel clamp.
	for i, v := range out.Pix {
		if v < 0 {
			out.Pix[i] = 0
		} else if v > 1 {
			out.Pix[i] = 1
		}
	}

	n.applyWalls(out, walls)
	return out
}

// applyWalls raises wall cells to the configured minimum. Applied after
// tone mapping so scaling never crushes the floor.
func (n *Normalizer) applyWalls(out *grid.RGBGrid, walls *grid.WallMask) {
	if walls == nil || n.WallMinimum <= 0 {
		return
	}
	min := n.WallMinimum
	if min > 1 {
		min = 1
	}
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			if !walls.At(x, y) {
				continue
			}
			i := (y*out.Width + x) * 3
			for c := 0; c < 3; c++ {
				if out.Pix[i+c] < min {
					out.Pix[i+c] = min
				}
			}
		}
	}
}

// ToByte converts a normalized channel to an 8-bit display value.
func ToByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255.0)
}
