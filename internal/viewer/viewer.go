// Package viewer is the interactive light playground: a cursor-driven light
// over an editable wall grid, rendered either on the CPU or through the GPU
// compositor.
//
// Controls:
//
//	mouse move   position the cursor light
//	left click   toggle a wall cell
//	right click  clear all walls (also C)
//	1 / 2 / 3    standard / brightness-limit / perceptual normalization
//	R G B Y W    cursor light color
//	- / =        decrease / increase ambient decay
//	T            toggle subpixel light positioning
//	Escape       quit
package viewer

import (
	"errors"
	"fmt"
	"image/color"

	"chosenoffset.com/gridlight/internal/compose"
	"chosenoffset.com/gridlight/internal/grid"
	"chosenoffset.com/gridlight/internal/light"
	"chosenoffset.com/gridlight/internal/pipeline"
	"chosenoffset.com/gridlight/internal/render"
	"chosenoffset.com/gridlight/internal/scene"
	"chosenoffset.com/gridlight/internal/tonemap"
)

// ErrClosed reports that the user quit the viewer.
var ErrClosed = errors.New("viewer closed")

// Viewer implements render.Game over a lighting pipeline.
type Viewer struct {
	renderer render.Renderer
	input    render.InputManager
	pipeline *pipeline.Pipeline
	comp     *compose.Compositor // nil for the CPU path

	config *scene.Config
	decay  *grid.Grid
	walls  *grid.WallMask

	baseDecay float32
	subpixel  bool

	frame  render.Image
	pixels []byte
}

// New builds a viewer for the scene. comp may be nil, selecting the CPU
// render path.
func New(r render.Renderer, input render.InputManager, config *scene.Config, comp *compose.Compositor) (*Viewer, error) {
	decay, walls, err := config.BuildGrids()
	if err != nil {
		return nil, err
	}
	n, err := config.Normalizer()
	if err != nil {
		return nil, err
	}

	p := pipeline.New(n)
	sources, err := config.Sources()
	if err != nil {
		return nil, err
	}
	for i, src := range sources {
		p.Lights.AddLight(fmt.Sprintf("scene-%d", i), src)
	}
	p.Lights.SetCursorLight(light.Source{
		Color:     light.NewRGBA(1, 1, 1, 1),
		Intensity: 1,
		DecayRate: 1,
	})
	p.Lights.EnableCursorLight(true)

	return &Viewer{
		renderer:  r,
		input:     input,
		pipeline:  p,
		comp:      comp,
		config:    config,
		decay:     decay,
		walls:     walls,
		baseDecay: config.BaseDecay,
		subpixel:  true,
		frame:     r.NewImage(config.Width, config.Height),
		pixels:    make([]byte, config.Width*config.Height*4),
	}, nil
}

// Update implements render.Game.
func (v *Viewer) Update() error {
	if v.input.IsKeyJustPressed(render.KeyEscape) {
		return ErrClosed
	}

	cx, cy := v.input.GetCursorPosition()
	gx := float64(cx) / float64(v.config.Scale)
	gy := float64(cy) / float64(v.config.Scale)
	if !v.subpixel {
		gx = float64(int(gx))
		gy = float64(int(gy))
	}
	gx = clampf(gx, 0, float64(v.config.Width)-1)
	gy = clampf(gy, 0, float64(v.config.Height)-1)
	v.pipeline.Lights.MoveCursorLight(gx, gy)

	if v.input.IsMouseButtonJustPressed(render.MouseButtonLeft) {
		v.toggleWall(int(gx), int(gy))
	}
	if v.input.IsMouseButtonJustPressed(render.MouseButtonRight) || v.input.IsKeyJustPressed(render.KeyC) {
		v.clearWalls()
	}

	switch {
	case v.input.IsKeyJustPressed(render.Key1):
		v.pipeline.Normalizer.Mode = tonemap.Standard
	case v.input.IsKeyJustPressed(render.Key2):
		v.pipeline.Normalizer.Mode = tonemap.BrightnessLimit
	case v.input.IsKeyJustPressed(render.Key3):
		v.pipeline.Normalizer.Mode = tonemap.Perceptual
	}

	switch {
	case v.input.IsKeyJustPressed(render.KeyR):
		v.setCursorColor(light.NewRGBA(1, 0.3, 0.3, 1))
	case v.input.IsKeyJustPressed(render.KeyG):
		v.setCursorColor(light.NewRGBA(0.3, 1, 0.3, 1))
	case v.input.IsKeyJustPressed(render.KeyB):
		v.setCursorColor(light.NewRGBA(0.3, 0.3, 1, 1))
	case v.input.IsKeyJustPressed(render.KeyY):
		v.setCursorColor(light.NewRGBA(1, 1, 0.3, 1))
	case v.input.IsKeyJustPressed(render.KeyW):
		v.setCursorColor(light.NewRGBA(1, 1, 1, 1))
	}

	if v.input.IsKeyJustPressed(render.KeyMinus) {
		v.adjustDecay(-0.02)
	}
	if v.input.IsKeyJustPressed(render.KeyEqual) {
		v.adjustDecay(0.02)
	}
	if v.input.IsKeyJustPressed(render.KeyT) {
		v.subpixel = !v.subpixel
	}
	return nil
}

func (v *Viewer) toggleWall(x, y int) {
	if !v.decay.InBounds(x, y) {
		return
	}
	if v.walls.Toggle(x, y) {
		v.decay.Set(x, y, v.config.WallDecay)
	} else {
		v.decay.Set(x, y, v.baseDecay)
	}
}

func (v *Viewer) clearWalls() {
	v.walls.Clear()
	v.decay.Fill(v.baseDecay)
}

func (v *Viewer) setCursorColor(c light.RGBA) {
	v.pipeline.Lights.SetCursorLight(light.Source{Color: c, Intensity: 1, DecayRate: 1})
	v.pipeline.Lights.EnableCursorLight(true)
}

// adjustDecay changes the ambient decay on every non-wall cell.
func (v *Viewer) adjustDecay(delta float32) {
	v.baseDecay += delta
	if v.baseDecay < 0 {
		v.baseDecay = 0
	}
	if v.baseDecay > 1 {
		v.baseDecay = 1
	}
	for y := 0; y < v.decay.Height; y++ {
		for x := 0; x < v.decay.Width; x++ {
			if !v.walls.At(x, y) {
				v.decay.Set(x, y, v.baseDecay)
			}
		}
	}
}

// Draw implements render.Game.
func (v *Viewer) Draw(screen render.Image) {
	if v.comp != nil {
		v.drawGPU(screen)
	} else {
		v.drawCPU(screen)
	}
	v.drawHUD(screen)
}

func (v *Viewer) drawCPU(screen render.Image) {
	out, err := v.pipeline.Render(v.decay, v.walls)
	if err != nil {
		v.renderer.DrawText(screen, "render error: "+err.Error(), 4, 4, color.White, 1)
		return
	}
	for i := 0; i < len(out.Pix)/3; i++ {
		v.pixels[i*4] = tonemap.ToByte(out.Pix[i*3])
		v.pixels[i*4+1] = tonemap.ToByte(out.Pix[i*3+1])
		v.pixels[i*4+2] = tonemap.ToByte(out.Pix[i*3+2])
		v.pixels[i*4+3] = 255
	}
	v.frame.WritePixels(v.pixels)
	v.blit(screen)
}

func (v *Viewer) drawGPU(screen render.Image) {
	sources := v.pipeline.Lights.ActiveLights()
	if len(sources) > compose.MaxLights {
		sources = sources[:compose.MaxLights]
	}

	lights := make([]compose.Light, 0, len(sources))
	for _, src := range sources {
		att, err := v.pipeline.Lights.Attenuation(v.decay, src)
		if err != nil {
			v.renderer.DrawText(screen, "sweep error: "+err.Error(), 4, 4, color.White, 1)
			return
		}
		lights = append(lights, compose.Light{
			Attenuation: att,
			Color:       src.Color,
			Intensity:   src.Intensity,
		})
	}

	if err := v.comp.Compose(v.frame, lights, v.walls, v.pipeline.Normalizer); err != nil {
		v.renderer.DrawText(screen, "compose error: "+err.Error(), 4, 4, color.White, 1)
		return
	}
	v.blit(screen)
}

// blit scales the grid-resolution frame up to the window.
func (v *Viewer) blit(screen render.Image) {
	geo := render.NewGeoM()
	geo.Scale(float64(v.config.Scale), float64(v.config.Scale))
	screen.DrawImage(v.frame, &render.DrawImageOptions{GeoM: geo})
}

func (v *Viewer) drawHUD(screen render.Image) {
	sub := "off"
	if v.subpixel {
		sub = "on"
	}
	path := "cpu"
	if v.comp != nil {
		path = "gpu"
	}
	hud := fmt.Sprintf("[%s] %s | decay %.2f | subpixel %s | 1/2/3 mode, RGBYW color, -/= decay, T subpixel, click walls",
		path, v.pipeline.Normalizer.Mode, v.baseDecay, sub)
	v.renderer.DrawText(screen, hud, 4, 4, color.White, 1)
}

// Layout implements render.Game.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.config.Width * v.config.Scale, v.config.Height * v.config.Scale
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
