package main

import (
	"bufio"
	"errors"
	"flag"
	"log"
	"os"

	"chosenoffset.com/gridlight/internal/bench"
	"chosenoffset.com/gridlight/internal/compose"
	"chosenoffset.com/gridlight/internal/export"
	"chosenoffset.com/gridlight/internal/grid"
	"chosenoffset.com/gridlight/internal/pipeline"
	ebitenrender "chosenoffset.com/gridlight/internal/render/ebiten"
	"chosenoffset.com/gridlight/internal/scene"
	"chosenoffset.com/gridlight/internal/tonemap"
	"chosenoffset.com/gridlight/internal/viewer"
)

func main() {
	interactive := flag.Bool("interactive", false, "run the interactive viewer")
	gpu := flag.Bool("gpu", false, "composite on the GPU instead of the CPU")
	benchmark := flag.Bool("benchmark", false, "run the benchmark suite and exit")
	exportPath := flag.String("export", "", "render one frame to this .png or .ppm file and exit")
	scenePath := flag.String("scene", "scene.json", "scene config file")
	mode := flag.String("mode", "", "override normalization mode (standard, brightness-limit, perceptual)")
	scale := flag.Int("scale", 0, "override display pixels per cell")
	flag.Parse()

	if *benchmark {
		if err := bench.Run(os.Stdout); err != nil {
			log.Fatalf("Benchmark failed: %v", err)
		}
		return
	}

	config, err := scene.LoadConfig(*scenePath)
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}
	if *mode != "" {
		config.Normalization = *mode
	}
	if *scale > 0 {
		config.Scale = *scale
	}

	if *exportPath != "" {
		if err := exportFrame(config, *exportPath); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		log.Printf("Wrote %s", *exportPath)
		return
	}

	if *interactive {
		if err := runViewer(config, *gpu); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := printPreview(config); err != nil {
		log.Fatalf("Render failed: %v", err)
	}
}

// printPreview renders the scene once and draws it as ASCII luminance,
// brightest cells last in the ramp.
func printPreview(config *scene.Config) error {
	out, walls, err := renderScene(config)
	if err != nil {
		return err
	}

	const ramp = " .:-=+*#%@"
	w := bufio.NewWriter(os.Stdout)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			if walls.At(x, y) {
				w.WriteByte('#')
				continue
			}
			r, g, b := out.At(x, y)
			l := tonemap.Luminance(r, g, b)
			i := int(l * float32(len(ramp)-1))
			if i >= len(ramp) {
				i = len(ramp) - 1
			}
			w.WriteByte(ramp[i])
		}
		w.WriteByte('\n')
	}
	return w.Flush()
}

// renderScene runs one full offline frame for the scene's lights.
func renderScene(config *scene.Config) (*grid.RGBGrid, *grid.WallMask, error) {
	decay, walls, err := config.BuildGrids()
	if err != nil {
		return nil, nil, err
	}
	sources, err := config.Sources()
	if err != nil {
		return nil, nil, err
	}
	n, err := config.Normalizer()
	if err != nil {
		return nil, nil, err
	}

	out, err := pipeline.New(n).RenderLights(decay, sources, walls)
	if err != nil {
		return nil, nil, err
	}
	return out, walls, nil
}

// exportFrame renders the scene's lights once and writes the image.
func exportFrame(config *scene.Config, path string) error {
	out, _, err := renderScene(config)
	if err != nil {
		return err
	}
	return export.WriteFile(path, out, config.Scale)
}

func runViewer(config *scene.Config, gpu bool) error {
	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	engine := ebitenrender.NewEngine()

	var comp *compose.Compositor
	if gpu {
		blendSrc, err := os.ReadFile("shaders/blend.kage")
		if err != nil {
			return err
		}
		blurSrc, err := os.ReadFile("shaders/blur.kage")
		if err != nil {
			return err
		}
		comp, err = compose.New(renderer, blendSrc, blurSrc, config.Width, config.Height)
		if err != nil {
			return err
		}
		defer comp.Dispose()
	}

	v, err := viewer.New(renderer, inputMgr, config, comp)
	if err != nil {
		return err
	}

	engine.SetWindowSize(config.Width*config.Scale, config.Height*config.Scale)
	engine.SetWindowTitle("gridlight")
	engine.SetWindowResizable(false)

	log.Printf("Starting viewer (%dx%d grid, scale %d)", config.Width, config.Height, config.Scale)
	if err := engine.RunGame(v); err != nil && !errors.Is(err, viewer.ErrClosed) {
		return err
	}
	return nil
}
