package grid

// WallMask marks cells that should stay visible in darkness. It is
// independent of the decay grid: a cell can absorb light without being a
// wall and vice versa.
type WallMask struct {
	Width  int
	Height int
	Cells  []bool
}

// NewWallMask creates an all-clear mask with the given dimensions.
func NewWallMask(width, height int) *WallMask {
	return &WallMask{
		Width:  width,
		Height: height,
		Cells:  make([]bool, width*height),
	}
}

// At reports whether (x, y) is a wall. Out-of-bounds positions are not walls.
func (m *WallMask) At(x, y int) bool {
	if m == nil || x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return false
	}
	return m.Cells[y*m.Width+x]
}

// Set marks or clears the wall at (x, y).
func (m *WallMask) Set(x, y int, wall bool) {
	m.Cells[y*m.Width+x] = wall
}

// Toggle flips the wall state at (x, y) and returns the new state.
func (m *WallMask) Toggle(x, y int) bool {
	i := y*m.Width + x
	m.Cells[i] = !m.Cells[i]
	return m.Cells[i]
}

// Clear resets every cell to non-wall.
func (m *WallMask) Clear() {
	for i := range m.Cells {
		m.Cells[i] = false
	}
}

// Pack returns the mask as 32 cells per uint32 word: cell i lives in word
// i/32 at bit i%32. This is the layout the compositing backend consumes.
func (m *WallMask) Pack() []uint32 {
	words := make([]uint32, (len(m.Cells)+31)/32)
	for i, wall := range m.Cells {
		if wall {
			words[i/32] |= 1 << (i % 32)
		}
	}
	return words
}

// UnpackWalls expands a packed bitmask back into a WallMask. Extra bits past
// width*height are ignored.
func UnpackWalls(words []uint32, width, height int) *WallMask {
	m := NewWallMask(width, height)
	for i := range m.Cells {
		if i/32 >= len(words) {
			break
		}
		m.Cells[i] = words[i/32]&(1<<(i%32)) != 0
	}
	return m
}
