package grid

import "testing"

func TestWallMaskToggle(t *testing.T) {
	m := NewWallMask(4, 4)
	if m.At(1, 2) {
		t.Fatal("fresh mask should be clear")
	}

	if !m.Toggle(1, 2) {
		t.Error("toggle should set the wall")
	}
	if !m.At(1, 2) {
		t.Error("wall not set after toggle")
	}
	if m.Toggle(1, 2) {
		t.Error("second toggle should clear the wall")
	}
}

func TestWallMaskOutOfBoundsIsNotWall(t *testing.T) {
	m := NewWallMask(2, 2)
	m.Set(0, 0, true)

	if m.At(-1, 0) || m.At(0, -1) || m.At(2, 0) || m.At(0, 2) {
		t.Error("out-of-bounds lookup should report no wall")
	}

	var nilMask *WallMask
	if nilMask.At(0, 0) {
		t.Error("nil mask should report no wall")
	}
}

func TestWallMaskPackLayout(t *testing.T) {
	// 40 cells spans two words; cell 0, 31 and 33 exercise both word
	// boundaries.
	m := NewWallMask(8, 5)
	m.Cells[0] = true
	m.Cells[31] = true
	m.Cells[33] = true

	words := m.Pack()
	if len(words) != 2 {
		t.Fatalf("expected 2 words for 40 cells, got %d", len(words))
	}
	if words[0] != (1|1<<31) {
		t.Errorf("word 0 = %#x, want %#x", words[0], uint32(1|1<<31))
	}
	if words[1] != 1<<1 {
		t.Errorf("word 1 = %#x, want %#x", words[1], uint32(1<<1))
	}
}

func TestWallMaskPackRoundTrip(t *testing.T) {
	m := NewWallMask(7, 9)
	for i := 0; i < len(m.Cells); i += 5 {
		m.Cells[i] = true
	}

	got := UnpackWalls(m.Pack(), 7, 9)
	for i := range m.Cells {
		if got.Cells[i] != m.Cells[i] {
			t.Fatalf("cell %d changed across pack/unpack", i)
		}
	}
}

func TestPoolReturnsZeroedBuffers(t *testing.T) {
	p := NewPool(16)
	buf := p.Get()
	if len(buf) != 16 {
		t.Fatalf("buffer size %d, want 16", len(buf))
	}

	for i := range buf {
		buf[i] = 9
	}
	p.Put(buf)

	again := p.Get()
	for i, v := range again {
		if v != 0 {
			t.Fatalf("recycled buffer not zeroed at %d: %f", i, v)
		}
	}
}

func TestPoolDropsWrongSize(t *testing.T) {
	p := NewPool(8)
	p.Put(make([]float32, 4)) // silently dropped

	buf := p.Get()
	if len(buf) != 8 {
		t.Fatalf("pool handed out wrong size %d", len(buf))
	}
}
