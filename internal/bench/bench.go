// Package bench times the lighting hot paths at several grid sizes and
// prints a small report. It exists for quick regression checks from the
// command line without a display.
package bench

import (
	"fmt"
	"io"
	"time"

	"chosenoffset.com/gridlight/internal/grid"
	"chosenoffset.com/gridlight/internal/light"
	"chosenoffset.com/gridlight/internal/sweep"
)

// Sizes are the square grid sizes the report covers.
var Sizes = []int{50, 100, 200}

// Iterations per measurement.
const iterations = 20

// Run executes the benchmark suite, writing the report to w.
func Run(w io.Writer) error {
	engine := sweep.NewEngine()
	interp := light.NewInterpolator(engine)

	for _, size := range Sizes {
		decay, err := grid.New(size, size)
		if err != nil {
			return err
		}
		decay.Fill(0.1)
		cx, cy := size/2, size/2

		sweepMs, err := timeIt(func() error {
			_, err := engine.Calculate(decay, cx, cy)
			return err
		})
		if err != nil {
			return fmt.Errorf("sweep %dx%d: %w", size, size, err)
		}

		subpixelMs, err := timeIt(func() error {
			_, err := interp.Calculate(decay, float64(cx)+0.5, float64(cy)+0.5, 1)
			return err
		})
		if err != nil {
			return fmt.Errorf("subpixel %dx%d: %w", size, size, err)
		}

		blendMs, err := timeIt(func() error {
			att, err := engine.Calculate(decay, cx, cy)
			if err != nil {
				return err
			}
			_, err = light.Blend(size, size, []light.Contribution{
				{Attenuation: att, Color: light.NewRGBA(1, 0.8, 0.4, 1), Intensity: 1},
				{Attenuation: att, Color: light.NewRGBA(0.4, 0.6, 1, 1), Intensity: 1},
			})
			return err
		})
		if err != nil {
			return fmt.Errorf("blend %dx%d: %w", size, size, err)
		}

		fmt.Fprintf(w, "%dx%d grid:\n", size, size)
		fmt.Fprintf(w, "  single sweep:     %8.3f ms\n", sweepMs)
		fmt.Fprintf(w, "  subpixel (4x):    %8.3f ms\n", subpixelMs)
		fmt.Fprintf(w, "  sweep + 2-blend:  %8.3f ms\n", blendMs)
		if subpixelMs > 0 {
			fmt.Fprintf(w, "  est. fps (1 moving light): %.0f\n", 1000/subpixelMs)
		}
	}
	return nil
}

// timeIt runs fn repeatedly and returns the mean duration in milliseconds.
func timeIt(fn func() error) (float64, error) {
	// Warm up caches and the scratch pool.
	if err := fn(); err != nil {
		return 0, err
	}

	start := time.Now()
	for i := 0; i < iterations; i++ {
		if err := fn(); err != nil {
			return 0, err
		}
	}
	elapsed := time.Since(start)
	return float64(elapsed.Microseconds()) / 1000 / iterations, nil
}
