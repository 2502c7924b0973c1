package tonemap

import (
	"math"
	"testing"

	"chosenoffset.com/gridlight/internal/grid"
)

func rgbGrid(t *testing.T, w, h int) *grid.RGBGrid {
	t.Helper()
	g, err := grid.NewRGB(w, h)
	if err != nil {
		t.Fatalf("NewRGB failed: %v", err)
	}
	return g
}

func TestStandardClampsToUnitRange(t *testing.T) {
	in := rgbGrid(t, 2, 2)
	in.Set(0, 0, 3.0, 0.5, -0.2)
	in.Set(1, 1, 0.25, 0.75, 1.0)

	out := New(Standard).Normalize(in, nil)
	for i, v := range out.Pix {
		if v < 0 || v > 1 {
			t.Fatalf("channel %d = %f outside [0, 1]", i, v)
		}
	}

	r, g, b := out.At(0, 0)
	if r != 1.0 || g != 0.5 || b != 0 {
		t.Errorf("got (%f, %f, %f), want (1, 0.5, 0)", r, g, b)
	}
	// In-range cells pass through untouched.
	r, g, b = out.At(1, 1)
	if r != 0.25 || g != 0.75 || b != 1.0 {
		t.Errorf("in-range cell changed: (%f, %f, %f)", r, g, b)
	}
}

func TestBrightnessLimitPreservesOrdering(t *testing.T) {
	in := rgbGrid(t, 3, 1)
	in.Set(0, 0, 4.0, 0, 0)
	in.Set(1, 0, 2.0, 0, 0)
	in.Set(2, 0, 0.5, 0, 0)

	out := New(BrightnessLimit).Normalize(in, nil)

	r0, _, _ := out.At(0, 0)
	r1, _, _ := out.At(1, 0)
	r2, _, _ := out.At(2, 0)

	// Whole frame scaled by 1/4: relative ordering and ratios survive.
	if !(r0 > r1 && r1 > r2) {
		t.Errorf("ordering lost: %f, %f, %f", r0, r1, r2)
	}
	if math.Abs(float64(r0-1.0)) > 1e-6 {
		t.Errorf("max cell = %f, want 1.0", r0)
	}
	if math.Abs(float64(r1-0.5)) > 1e-6 || math.Abs(float64(r2-0.125)) > 1e-6 {
		t.Errorf("relative scale lost: %f, %f", r1, r2)
	}
}

func TestBrightnessLimitLeavesDimFramesAlone(t *testing.T) {
	in := rgbGrid(t, 2, 1)
	in.Set(0, 0, 0.8, 0.4, 0.2)
	in.Set(1, 0, 0.1, 0.1, 0.1)

	out := New(BrightnessLimit).Normalize(in, nil)
	r, g, b := out.At(0, 0)
	if r != 0.8 || g != 0.4 || b != 0.2 {
		t.Errorf("dim frame rescaled: (%f, %f, %f)", r, g, b)
	}
}

func TestPerceptualPreservesChannelRatios(t *testing.T) {
	in := rgbGrid(t, 2, 1)
	// Over-bright orange cell and a dim cell.
	in.Set(0, 0, 8.0, 4.0, 2.0)
	in.Set(1, 0, 0.4, 0.2, 0.1)

	out := New(Perceptual).Normalize(in, nil)

	r, g, b := out.At(0, 0)
	if r > 1.0+1e-5 || g > 1.0+1e-5 || b > 1.0+1e-5 {
		t.Errorf("channels exceed range after scaling: (%f, %f, %f)", r, g, b)
	}
	// Hue preserved: r:g:b stays 4:2:1.
	if math.Abs(float64(r/g-2.0)) > 1e-4 || math.Abs(float64(g/b-2.0)) > 1e-4 {
		t.Errorf("channel ratios lost: (%f, %f, %f)", r, g, b)
	}

	// The dim cell is untouched, unlike a global rescale.
	r, g, b = out.At(1, 0)
	if r != 0.4 || g != 0.2 || b != 0.1 {
		t.Errorf("dim cell rescaled: (%f, %f, %f)", r, g, b)
	}
}

func TestPerceptualScalesIndependentLightsIndependently(t *testing.T) {
	in := rgbGrid(t, 2, 1)
	in.Set(0, 0, 5.0, 5.0, 5.0) // very bright white light
	in.Set(1, 0, 0, 0, 2.0)     // moderately bright blue light

	out := New(Perceptual).Normalize(in, nil)

	_, _, b := out.At(1, 0)
	// Blue luminance weight is small; this cell keeps most of its value
	// instead of being dimmed by the unrelated white light.
	if b < 0.9 {
		t.Errorf("blue cell dimmed by unrelated light: %f", b)
	}
}

func TestWallMinimumAppliedAfterToneMapping(t *testing.T) {
	in := rgbGrid(t, 5, 5)
	// Wall at (3,3) receives no light at all.
	walls := grid.NewWallMask(5, 5)
	walls.Set(3, 3, true)

	n := New(Standard)
	n.WallMinimum = 0.12
	out := n.Normalize(in, walls)

	r, g, b := out.At(3, 3)
	if r < 0.12 || g < 0.12 || b < 0.12 {
		t.Errorf("wall channels below minimum: (%f, %f, %f)", r, g, b)
	}

	// Non-wall dark cells stay dark.
	r, g, b = out.At(0, 0)
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("non-wall cell raised: (%f, %f, %f)", r, g, b)
	}

	// A lit wall keeps its value when already above the floor.
	in.Set(3, 3, 0.5, 0.5, 0.5)
	out = n.Normalize(in, walls)
	r, _, _ = out.At(3, 3)
	if r != 0.5 {
		t.Errorf("lit wall crushed to minimum: %f", r)
	}
}

func TestWallMinimumEveryMode(t *testing.T) {
	for _, mode := range []Mode{Standard, BrightnessLimit, Perceptual} {
		in := rgbGrid(t, 3, 3)
		in.Set(0, 0, 6.0, 6.0, 6.0) // force rescaling paths to run
		walls := grid.NewWallMask(3, 3)
		walls.Set(2, 2, true)

		n := New(mode)
		n.WallMinimum = 0.12
		out := n.Normalize(in, walls)

		r, g, b := out.At(2, 2)
		if r < 0.12 || g < 0.12 || b < 0.12 {
			t.Errorf("%v: wall below minimum: (%f, %f, %f)", mode, r, g, b)
		}
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := rgbGrid(t, 2, 2)
	in.Set(0, 0, 5.0, 1.0, 0.5)

	_ = New(BrightnessLimit).Normalize(in, nil)
	r, _, _ := in.At(0, 0)
	if r != 5.0 {
		t.Errorf("input mutated, got %f", r)
	}
}

func TestToByte(t *testing.T) {
	cases := []struct {
		in   float32
		want uint8
	}{
		{-0.5, 0},
		{0, 0},
		{0.5, 127},
		{1.0, 255},
		{2.0, 255},
	}
	for _, tc := range cases {
		if got := ToByte(tc.in); got != tc.want {
			t.Errorf("ToByte(%f) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestModeString(t *testing.T) {
	if Standard.String() != "standard" || BrightnessLimit.String() != "brightness-limit" || Perceptual.String() != "perceptual" {
		t.Error("unexpected mode names")
	}
	if Mode(99).String() != "unknown" {
		t.Error("unknown mode should stringify to unknown")
	}
}
