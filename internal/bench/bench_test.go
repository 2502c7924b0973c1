package bench

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunProducesReport(t *testing.T) {
	old := Sizes
	Sizes = []int{8}
	defer func() { Sizes = old }()

	var buf bytes.Buffer
	if err := Run(&buf); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "8x8 grid:") {
		t.Errorf("missing size header in report:\n%s", out)
	}
	for _, label := range []string{"single sweep:", "subpixel (4x):", "sweep + 2-blend:"} {
		if !strings.Contains(out, label) {
			t.Errorf("missing %q in report:\n%s", label, out)
		}
	}
}
