package pipeline

import (
	"errors"
	"math"
	"testing"

	"chosenoffset.com/gridlight/internal/grid"
	"chosenoffset.com/gridlight/internal/light"
	"chosenoffset.com/gridlight/internal/tonemap"
)

func TestRenderNoLightsIsDark(t *testing.T) {
	p := New(tonemap.New(tonemap.Standard))
	decay, _ := grid.New(6, 6)
	decay.Fill(0.1)

	out, err := p.Render(decay, nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for i, v := range out.Pix {
		if v != 0 {
			t.Fatalf("channel %d = %f, want 0", i, v)
		}
	}
}

func TestRenderSingleLight(t *testing.T) {
	p := New(tonemap.New(tonemap.Standard))
	decay, _ := grid.New(9, 9)
	decay.Fill(0.1)

	p.Lights.AddLight("torch", light.Source{
		X: 4, Y: 4,
		Color:     light.NewRGBA(1.0, 0.8, 0.4, 1.0),
		Intensity: 1,
		DecayRate: 1,
	})

	out, err := p.Render(decay, nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	r, g, b := out.At(4, 4)
	if math.Abs(float64(r-1.0)) > 1e-5 || math.Abs(float64(g-0.8)) > 1e-5 || math.Abs(float64(b-0.4)) > 1e-5 {
		t.Errorf("source cell = (%f, %f, %f), want (1, 0.8, 0.4)", r, g, b)
	}

	// Farther cells are dimmer.
	rNear, _, _ := out.At(3, 4)
	rFar, _, _ := out.At(0, 4)
	if !(rNear > rFar) {
		t.Errorf("expected falloff, got near=%f far=%f", rNear, rFar)
	}
}

func TestRenderOrderIndependent(t *testing.T) {
	decay, _ := grid.New(7, 7)
	decay.Fill(0.1)

	a := light.Source{X: 1, Y: 3, Color: light.NewRGBA(1, 0, 0, 1), Intensity: 2, DecayRate: 1}
	b := light.Source{X: 5, Y: 3, Color: light.NewRGBA(0, 0, 1, 1), Intensity: 2, DecayRate: 1}

	p := New(tonemap.New(tonemap.BrightnessLimit))
	ab, err := p.RenderLights(decay, []light.Source{a, b}, nil)
	if err != nil {
		t.Fatalf("RenderLights failed: %v", err)
	}
	ba, err := p.RenderLights(decay, []light.Source{b, a}, nil)
	if err != nil {
		t.Fatalf("RenderLights failed: %v", err)
	}

	for i := range ab.Pix {
		if math.Abs(float64(ab.Pix[i]-ba.Pix[i])) > 1e-5 {
			t.Fatalf("channel %d depends on light order: %f vs %f", i, ab.Pix[i], ba.Pix[i])
		}
	}
}

func TestRenderAppliesWallRule(t *testing.T) {
	decay, _ := grid.New(5, 5)
	decay.Fill(1.0) // nothing reaches the far corner
	walls := grid.NewWallMask(5, 5)
	walls.Set(3, 3, true)

	n := tonemap.New(tonemap.Standard)
	n.WallMinimum = 0.12
	p := New(n)

	out, err := p.RenderLights(decay, nil, walls)
	if err != nil {
		t.Fatalf("RenderLights failed: %v", err)
	}

	r, g, b := out.At(3, 3)
	if r < 0.12 || g < 0.12 || b < 0.12 {
		t.Errorf("wall not raised to minimum: (%f, %f, %f)", r, g, b)
	}
}

func TestRenderPropagatesSweepErrors(t *testing.T) {
	p := New(tonemap.New(tonemap.Standard))
	decay, _ := grid.New(5, 5)

	bad := light.Source{X: 12, Y: 0, Color: light.NewRGBA(1, 1, 1, 1), Intensity: 1, DecayRate: 1}
	_, err := p.RenderLights(decay, []light.Source{bad}, nil)
	if !errors.Is(err, grid.ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestRenderFractionalLight(t *testing.T) {
	p := New(tonemap.New(tonemap.Standard))
	decay, _ := grid.New(9, 9)
	decay.Fill(0.1)

	src := light.Source{X: 4.5, Y: 4.0, Color: light.NewRGBA(1, 1, 1, 1), Intensity: 1, DecayRate: 1}
	out, err := p.RenderLights(decay, []light.Source{src}, nil)
	if err != nil {
		t.Fatalf("RenderLights failed: %v", err)
	}

	// Halfway between cells, the two straddled cells match.
	l, _, _ := out.At(4, 4)
	r, _, _ := out.At(5, 4)
	if math.Abs(float64(l-r)) > 1e-5 {
		t.Errorf("straddled cells differ: %f vs %f", l, r)
	}
}

func BenchmarkRenderTwoLights100x100(b *testing.B) {
	p := New(tonemap.New(tonemap.Perceptual))
	decay, _ := grid.New(100, 100)
	decay.Fill(0.1)

	lights := []light.Source{
		{X: 30, Y: 30, Color: light.NewRGBA(1, 0.8, 0.4, 1), Intensity: 1, DecayRate: 1},
		{X: 70.5, Y: 60.5, Color: light.NewRGBA(0.4, 0.6, 1, 1), Intensity: 1, DecayRate: 1},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.RenderLights(decay, lights, nil); err != nil {
			b.Fatal(err)
		}
	}
}
