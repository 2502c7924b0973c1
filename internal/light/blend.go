package light

import (
	"fmt"

	"chosenoffset.com/gridlight/internal/grid"
)

// Contribution pairs one light's attenuation grid with its color and
// intensity for blending.
type Contribution struct {
	Attenuation *grid.Grid
	Color       RGBA
	Intensity   float32
}

// Blend sums the lights into a linear RGB grid: per cell and channel,
// attenuation * color * intensity, added across lights. The sum is
// commutative and left unclamped for the normalizer. No lights produces an
// all-zero grid. Out-of-range colors and intensities are clamped, never
// rejected.
func Blend(width, height int, lights []Contribution) (*grid.RGBGrid, error) {
	out, err := grid.NewRGB(width, height)
	if err != nil {
		return nil, err
	}

	for i, l := range lights {
		att := l.Attenuation
		if att == nil || att.Width != width || att.Height != height {
			return nil, fmt.Errorf("%w: light %d attenuation grid does not match %dx%d",
				grid.ErrInvalidDimensions, i, width, height)
		}

		intensity := l.Intensity
		if intensity < 0 {
			intensity = 0
		}
		cr := clamp01(l.Color.R) * intensity
		cg := clamp01(l.Color.G) * intensity
		cb := clamp01(l.Color.B) * intensity

		for j, a := range att.Cells {
			p := j * 3
			out.Pix[p] += a * cr
			out.Pix[p+1] += a * cg
			out.Pix[p+2] += a * cb
		}
	}

	return out, nil
}
