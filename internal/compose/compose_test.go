package compose

import (
	"math"
	"testing"

	"chosenoffset.com/gridlight/internal/grid"
	"chosenoffset.com/gridlight/internal/light"
	"chosenoffset.com/gridlight/internal/tonemap"
)

func TestPackAttenuationRoundTrip(t *testing.T) {
	g, _ := grid.New(4, 3)
	for i := range g.Cells {
		g.Cells[i] = float32(i) / float32(len(g.Cells)-1)
	}

	decoded, err := UnpackAttenuation(PackAttenuation(g), 4, 3)
	if err != nil {
		t.Fatalf("UnpackAttenuation failed: %v", err)
	}
	for i := range g.Cells {
		if math.Abs(float64(decoded.Cells[i]-g.Cells[i])) > 1.0/65535 {
			t.Errorf("cell %d: %f -> %f", i, g.Cells[i], decoded.Cells[i])
		}
	}
}

func TestPackAttenuationPrecision(t *testing.T) {
	// Two dim values one 16-bit step apart must stay distinct; 8 bits alone
	// would merge them.
	g, _ := grid.New(2, 1)
	g.Cells[0] = 10.0 / 65535
	g.Cells[1] = 11.0 / 65535

	pix := PackAttenuation(g)
	if pix[1] == pix[5] {
		t.Error("low bytes collide for adjacent 16-bit values")
	}
	if pix[0] != 0 || pix[4] != 0 {
		t.Errorf("high bytes should be 0 for dim values, got %d %d", pix[0], pix[4])
	}
}

func TestPackAttenuationClamps(t *testing.T) {
	g, _ := grid.New(2, 1)
	g.Cells[0] = -0.5
	g.Cells[1] = 1.5

	pix := PackAttenuation(g)
	if pix[0] != 0 || pix[1] != 0 {
		t.Errorf("negative value should pack to 0, got %d %d", pix[0], pix[1])
	}
	if pix[4] != 255 || pix[5] != 255 {
		t.Errorf("overbright value should pack to 65535, got %d %d", pix[4], pix[5])
	}
}

func TestWallPixels(t *testing.T) {
	mask := grid.NewWallMask(3, 2)
	mask.Set(1, 1, true)

	pix := WallPixels(mask.Pack(), 3, 2)
	wallOffset := (1*3 + 1) * 4
	if pix[wallOffset] != 255 || pix[wallOffset+3] != 255 {
		t.Error("wall cell not opaque white")
	}
	if pix[0] != 0 || pix[3] != 0 {
		t.Error("empty cell should be transparent black")
	}
}

func TestNormFactorBrightnessLimit(t *testing.T) {
	g, _ := grid.New(2, 1)
	g.Cells[0] = 1
	g.Cells[1] = 0.25

	lights := []Light{
		{Attenuation: g, Color: light.NewRGBA(1, 1, 1, 1), Intensity: 2},
		{Attenuation: g, Color: light.NewRGBA(1, 0, 0, 1), Intensity: 2},
	}

	n := tonemap.New(tonemap.BrightnessLimit)
	factor := NormFactor(n, lights)
	// Brightest cell sums to 4 in red; scale brings it back to the limit.
	if math.Abs(float64(factor-0.25)) > 1e-6 {
		t.Errorf("factor = %f, want 0.25", factor)
	}
}

func TestNormFactorOtherModesAreIdentity(t *testing.T) {
	g, _ := grid.New(1, 1)
	g.Cells[0] = 1
	lights := []Light{{Attenuation: g, Color: light.NewRGBA(1, 1, 1, 1), Intensity: 5}}

	for _, mode := range []tonemap.Mode{tonemap.Standard, tonemap.Perceptual} {
		if f := NormFactor(tonemap.New(mode), lights); f != 1 {
			t.Errorf("mode %v: factor = %f, want 1", mode, f)
		}
	}
}

func TestNormFactorDimFrameUntouched(t *testing.T) {
	g, _ := grid.New(1, 1)
	g.Cells[0] = 0.3
	lights := []Light{{Attenuation: g, Color: light.NewRGBA(1, 1, 1, 1), Intensity: 1}}

	if f := NormFactor(tonemap.New(tonemap.BrightnessLimit), lights); f != 1 {
		t.Errorf("dim frame should not be rescaled, factor = %f", f)
	}
}

func TestUniformsLayout(t *testing.T) {
	g, _ := grid.New(1, 1)
	lights := []Light{
		{Attenuation: g, Color: light.NewRGBA(1, 0.5, 0.25, 1), Intensity: 2},
	}

	u := Uniforms(tonemap.New(tonemap.Perceptual), lights, true)
	if u["NumLights"] != 1 {
		t.Errorf("NumLights = %v", u["NumLights"])
	}
	colors := u["Colors"].([]float32)
	if len(colors) != MaxLights*4 {
		t.Fatalf("Colors length %d, want %d", len(colors), MaxLights*4)
	}
	if colors[0] != 1 || colors[1] != 0.5 || colors[2] != 0.25 {
		t.Errorf("light 0 color = %v", colors[:4])
	}
	if colors[4] != 0 {
		t.Error("unused light slots should be zero")
	}
	if u["Mode"] != int(tonemap.Perceptual) {
		t.Errorf("Mode = %v", u["Mode"])
	}
	if u["Gamma"] != float32(1) {
		t.Errorf("Gamma = %v", u["Gamma"])
	}
}

func TestUnpackAttenuationRejectsShortBuffer(t *testing.T) {
	if _, err := UnpackAttenuation(make([]byte, 8), 2, 2); err == nil {
		t.Error("short pixel buffer should fail")
	}
}
