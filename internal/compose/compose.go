// Package compose blends light attenuation grids on the GPU. Attenuation
// values are packed into textures, combined and tone-mapped by a fragment
// shader, then softened with a blur pass. The packing and uniform-building
// helpers are plain CPU code so they stay testable without a display.
package compose

import (
	"fmt"

	"chosenoffset.com/gridlight/internal/grid"
	"chosenoffset.com/gridlight/internal/light"
	"chosenoffset.com/gridlight/internal/render"
	"chosenoffset.com/gridlight/internal/tonemap"
)

// MaxLights is the number of attenuation grids one blend pass can combine —
// all four image slots carry attenuation textures. Four also covers the
// corner grids of one subpixel light, whose bilinear weights ride in as the
// per-grid intensities.
const MaxLights = 4

// Light pairs an attenuation grid with its color and intensity for one
// compositor pass.
type Light struct {
	Attenuation *grid.Grid
	Color       light.RGBA
	Intensity   float32
}

// PackAttenuation encodes an attenuation grid as RGBA pixels with 16 bits of
// precision: the high byte in R and the low byte in G. 8-bit textures alone
// band visibly in dim regions.
func PackAttenuation(g *grid.Grid) []byte {
	pix := make([]byte, g.Width*g.Height*4)
	for i, v := range g.Cells {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		packed := uint16(v*65535 + 0.5)
		pix[i*4] = byte(packed >> 8)
		pix[i*4+1] = byte(packed)
		pix[i*4+3] = 255
	}
	return pix
}

// UnpackAttenuation decodes pixels produced by PackAttenuation.
func UnpackAttenuation(pix []byte, width, height int) (*grid.Grid, error) {
	g, err := grid.New(width, height)
	if err != nil {
		return nil, err
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("%w: %d pixel bytes for %dx%d", grid.ErrInvalidDimensions, len(pix), width, height)
	}
	for i := range g.Cells {
		packed := uint16(pix[i*4])<<8 | uint16(pix[i*4+1])
		g.Cells[i] = float32(packed) / 65535
	}
	return g, nil
}

// WallPixels renders a wall mask as RGBA pixels: white where a wall stands,
// transparent black elsewhere. The mask travels in its packed bitmask form,
// 32 cells per word. The shader only reads the red channel.
func WallPixels(words []uint32, width, height int) []byte {
	pix := make([]byte, width*height*4)
	for i := 0; i < width*height; i++ {
		if words[i/32]&(1<<(i%32)) != 0 {
			pix[i*4] = 255
			pix[i*4+1] = 255
			pix[i*4+2] = 255
			pix[i*4+3] = 255
		}
	}
	return pix
}

// NormFactor computes the global scale the brightness-limit mode applies. It
// is the one tone-mapping step that needs a whole-frame reduction, so it runs
// on the CPU and rides into the shader as a uniform.
func NormFactor(n *tonemap.Normalizer, lights []Light) float32 {
	if n.Mode != tonemap.BrightnessLimit || len(lights) == 0 {
		return 1
	}

	var maxVal float32
	cells := len(lights[0].Attenuation.Cells)
	for i := 0; i < cells; i++ {
		var r, g, b float32
		for _, l := range lights {
			a := l.Attenuation.Cells[i] * l.Intensity
			r += a * l.Color.R
			g += a * l.Color.G
			b += a * l.Color.B
		}
		if r > maxVal {
			maxVal = r
		}
		if g > maxVal {
			maxVal = g
		}
		if b > maxVal {
			maxVal = b
		}
	}
	if maxVal > n.Limit && maxVal > 0 {
		return n.Limit / maxVal
	}
	return 1
}

// Uniforms builds the uniform map for the blend shader.
func Uniforms(n *tonemap.Normalizer, lights []Light, gamma bool) map[string]interface{} {
	colors := make([]float32, MaxLights*4)
	weights := make([]float32, MaxLights)
	for i, l := range lights {
		colors[i*4] = l.Color.R
		colors[i*4+1] = l.Color.G
		colors[i*4+2] = l.Color.B
		colors[i*4+3] = l.Color.A
		weights[i] = l.Intensity
	}

	gammaFlag := float32(0)
	if gamma {
		gammaFlag = 1
	}
	return map[string]interface{}{
		"NumLights":  len(lights),
		"Colors":     colors,
		"Weights":    weights,
		"Mode":       int(n.Mode),
		"Limit":      n.Limit,
		"NormFactor": NormFactor(n, lights),
		"Gamma":      gammaFlag,
	}
}

// Compositor owns the shader passes and the per-frame textures.
type Compositor struct {
	renderer render.Renderer
	blend    render.Shader
	blur     render.Shader

	width  int
	height int

	attTextures [MaxLights]render.Image
	wallTexture render.Image
	blended     render.Image

	// Gamma applies a 2.2 gamma curve in the blend pass. Off by default;
	// the CPU path works in linear values too.
	Gamma bool
}

// New compiles the blend and blur shaders and allocates textures for a grid
// of the given size.
func New(r render.Renderer, blendSrc, blurSrc []byte, width, height int) (*Compositor, error) {
	blend, err := r.CompileShader(blendSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to compile blend shader: %w", err)
	}
	blur, err := r.CompileShader(blurSrc)
	if err != nil {
		blend.Dispose()
		return nil, fmt.Errorf("failed to compile blur shader: %w", err)
	}

	c := &Compositor{
		renderer: r,
		blend:    blend,
		blur:     blur,
		width:    width,
		height:   height,
	}
	for i := range c.attTextures {
		c.attTextures[i] = r.NewImage(width, height)
	}
	c.wallTexture = r.NewImage(width, height)
	c.blended = r.NewImage(width, height)
	return c, nil
}

// Compose blends the lights and applies the normalizer's tone mapping on the
// GPU, then blurs the result and raises wall cells to the minimum brightness,
// drawing into dst at grid resolution. dst must be at least width x height.
func (c *Compositor) Compose(dst render.Image, lights []Light, walls *grid.WallMask, n *tonemap.Normalizer) error {
	if len(lights) > MaxLights {
		return fmt.Errorf("compositor supports at most %d lights per pass, got %d", MaxLights, len(lights))
	}
	for i, l := range lights {
		if l.Attenuation.Width != c.width || l.Attenuation.Height != c.height {
			return fmt.Errorf("%w: light %d attenuation %dx%d, compositor %dx%d",
				grid.ErrInvalidDimensions, i, l.Attenuation.Width, l.Attenuation.Height, c.width, c.height)
		}
		c.attTextures[i].WritePixels(PackAttenuation(l.Attenuation))
	}
	for i := len(lights); i < MaxLights; i++ {
		c.attTextures[i].Clear()
	}

	if walls != nil {
		if walls.Width != c.width || walls.Height != c.height {
			return fmt.Errorf("%w: wall mask %dx%d, compositor %dx%d",
				grid.ErrInvalidDimensions, walls.Width, walls.Height, c.width, c.height)
		}
		c.wallTexture.WritePixels(WallPixels(walls.Pack(), c.width, c.height))
	} else {
		c.wallTexture.Clear()
	}

	c.blended.Clear()
	opts := &render.DrawRectShaderOptions{Uniforms: Uniforms(n, lights, c.Gamma)}
	for i := range c.attTextures {
		opts.Images[i] = c.attTextures[i]
	}
	c.blended.DrawRectShader(c.width, c.height, c.blend, opts)

	// The wall minimum applies after smoothing so tinted walls keep hard
	// edges.
	blurOpts := &render.DrawRectShaderOptions{
		Uniforms: map[string]interface{}{"WallMinimum": n.WallMinimum},
	}
	blurOpts.Images[0] = c.blended
	blurOpts.Images[1] = c.wallTexture
	dst.DrawRectShader(c.width, c.height, c.blur, blurOpts)
	return nil
}

// Dispose releases the compositor's GPU resources.
func (c *Compositor) Dispose() {
	c.blend.Dispose()
	c.blur.Dispose()
	for _, t := range c.attTextures {
		t.Dispose()
	}
	c.wallTexture.Dispose()
	c.blended.Dispose()
}
