// Package pipeline runs the full per-frame lighting computation: one
// attenuation grid per light (swept in parallel), additive color blending,
// normalization and the wall rule. Every call is pure; callers reuse the
// pipeline across frames.
package pipeline

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"chosenoffset.com/gridlight/internal/grid"
	"chosenoffset.com/gridlight/internal/light"
	"chosenoffset.com/gridlight/internal/sweep"
	"chosenoffset.com/gridlight/internal/tonemap"
)

// Pipeline wires the sweep engine, light manager and normalizer together.
type Pipeline struct {
	Engine     *sweep.Engine
	Lights     *light.Manager
	Normalizer *tonemap.Normalizer
}

// New creates a pipeline with a fresh engine and manager and the given
// normalizer.
func New(n *tonemap.Normalizer) *Pipeline {
	engine := sweep.NewEngine()
	return &Pipeline{
		Engine:     engine,
		Lights:     light.NewManager(engine),
		Normalizer: n,
	}
}

// Render computes the displayable RGB grid for all active lights over the
// decay grid. Lights fan out across goroutines and join before blending;
// a failure in any light's sweep fails the whole call.
func (p *Pipeline) Render(decay *grid.Grid, walls *grid.WallMask) (*grid.RGBGrid, error) {
	return p.RenderLights(decay, p.Lights.ActiveLights(), walls)
}

// RenderLights is Render for an explicit set of sources.
func (p *Pipeline) RenderLights(decay *grid.Grid, sources []light.Source, walls *grid.WallMask) (*grid.RGBGrid, error) {
	if decay == nil || decay.Width <= 0 || decay.Height <= 0 {
		return nil, fmt.Errorf("%w: nil or empty decay grid", grid.ErrInvalidDimensions)
	}

	contributions := make([]light.Contribution, len(sources))
	var g errgroup.Group
	for i := range sources {
		i := i
		src := sources[i]
		g.Go(func() error {
			att, err := p.Lights.Attenuation(decay, src)
			if err != nil {
				return fmt.Errorf("light %d: %w", i, err)
			}
			contributions[i] = light.Contribution{
				Attenuation: att,
				Color:       src.Color,
				Intensity:   src.Intensity,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	blended, err := light.Blend(decay.Width, decay.Height, contributions)
	if err != nil {
		return nil, err
	}
	return p.Normalizer.Normalize(blended, walls), nil
}

// Attenuation exposes the single-light path (with caching and subpixel
// interpolation) for consumers that composite on the GPU instead of using
// the CPU blend.
func (p *Pipeline) Attenuation(decay *grid.Grid, src light.Source) (*grid.Grid, error) {
	return p.Lights.Attenuation(decay, src)
}
