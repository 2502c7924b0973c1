package light

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"chosenoffset.com/gridlight/internal/grid"
	"chosenoffset.com/gridlight/internal/sweep"
)

// Interpolator blends sweep results from the four lattice corners around a
// fractional source position, so attenuation varies continuously as the
// source moves instead of popping at cell boundaries.
type Interpolator struct {
	Engine *sweep.Engine
}

// NewInterpolator wraps a sweep engine.
func NewInterpolator(e *sweep.Engine) *Interpolator {
	return &Interpolator{Engine: e}
}

// Calculate computes the attenuation grid for a light at a fractional
// position. An exactly integral position degenerates to a single sweep.
// Corners with zero bilinear weight are skipped; the remaining corners are
// swept in parallel and joined before the weighted merge.
func (ip *Interpolator) Calculate(decay *grid.Grid, sx, sy float64, rate float32) (*grid.Grid, error) {
	if decay == nil || decay.Width <= 0 || decay.Height <= 0 {
		return nil, fmt.Errorf("%w: nil or empty decay grid", grid.ErrInvalidDimensions)
	}
	if sx < 0 || sy < 0 || sx >= float64(decay.Width) || sy >= float64(decay.Height) {
		return nil, fmt.Errorf("%w: source (%.2f, %.2f) outside %dx%d grid",
			grid.ErrOutOfBounds, sx, sy, decay.Width, decay.Height)
	}

	x0 := int(math.Floor(sx))
	y0 := int(math.Floor(sy))
	fx := float32(sx - math.Floor(sx))
	fy := float32(sy - math.Floor(sy))

	if fx == 0 && fy == 0 {
		return ip.Engine.CalculateRate(decay, x0, y0, rate)
	}

	// Clamp the far corners so a source in the last cell row/column still
	// interpolates inside the grid.
	x1 := x0 + 1
	if x1 >= decay.Width {
		x1 = decay.Width - 1
	}
	y1 := y0 + 1
	if y1 >= decay.Height {
		y1 = decay.Height - 1
	}

	corners := [4]struct {
		x, y   int
		weight float32
	}{
		{x0, y0, (1 - fx) * (1 - fy)},
		{x1, y0, fx * (1 - fy)},
		{x0, y1, (1 - fx) * fy},
		{x1, y1, fx * fy},
	}

	var grids [4]*grid.Grid
	var g errgroup.Group
	for i := range corners {
		c := corners[i]
		if c.weight == 0 {
			continue
		}
		i := i
		g.Go(func() error {
			att, err := ip.Engine.CalculateRate(decay, c.x, c.y, rate)
			if err != nil {
				return err
			}
			grids[i] = att
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]float32, decay.Width*decay.Height)
	for i := range corners {
		if grids[i] == nil {
			continue
		}
		w := corners[i].weight
		for j, a := range grids[i].Cells {
			out[j] += a * w
		}
	}
	return grid.FromCells(decay.Width, decay.Height, out)
}
