// Package grid provides the flat buffer types shared by the lighting
// pipeline: decay/attenuation grids, RGB output grids, and wall masks.
// All grids are row-major with index = y*width + x.
package grid

import (
	"errors"
	"fmt"
)

// Sentinel errors for shape and bounds failures. Everything else on the hot
// path clamps instead of failing.
var (
	ErrInvalidDimensions = errors.New("invalid grid dimensions")
	ErrOutOfBounds       = errors.New("position out of bounds")
)

// Grid is a flat float32 buffer with explicit dimensions. It is used both
// for decay values (0.0 = transparent, 1.0 = fully opaque) and for
// attenuation results (1.0 = full light, 0.0 = no light).
type Grid struct {
	Width  int
	Height int
	Cells  []float32

	// version increments on every mutation so callers can cache results
	// derived from a specific snapshot of the grid.
	version uint64
}

// New creates a zeroed grid with the given dimensions.
func New(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Grid{
		Width:  width,
		Height: height,
		Cells:  make([]float32, width*height),
	}, nil
}

// FromCells wraps an existing flat buffer. The buffer length must match
// width*height exactly.
func FromCells(width, height int, cells []float32) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if len(cells) != width*height {
		return nil, fmt.Errorf("%w: got %d cells for %dx%d grid", ErrInvalidDimensions, len(cells), width, height)
	}
	return &Grid{Width: width, Height: height, Cells: cells}, nil
}

// Index returns the flat index for (x, y). No bounds checking.
func (g *Grid) Index(x, y int) int {
	return y*g.Width + x
}

// InBounds reports whether (x, y) lies inside the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// At returns the value at (x, y). No bounds checking.
func (g *Grid) At(x, y int) float32 {
	return g.Cells[y*g.Width+x]
}

// Set writes a value at (x, y), clamped to [0, 1], and bumps the version.
func (g *Grid) Set(x, y int, v float32) {
	g.Cells[y*g.Width+x] = clamp01(v)
	g.version++
}

// Fill sets every cell to v (clamped) and bumps the version.
func (g *Grid) Fill(v float32) {
	v = clamp01(v)
	for i := range g.Cells {
		g.Cells[i] = v
	}
	g.version++
}

// Version returns the mutation counter for cache keying.
func (g *Grid) Version() uint64 {
	return g.version
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	cells := make([]float32, len(g.Cells))
	copy(cells, g.Cells)
	return &Grid{Width: g.Width, Height: g.Height, Cells: cells, version: g.version}
}

// PointReflect returns the grid reflected through its center, so cell (x, y)
// moves to (width-1-x, height-1-y).
func (g *Grid) PointReflect() *Grid {
	out := &Grid{Width: g.Width, Height: g.Height, Cells: make([]float32, len(g.Cells))}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			out.Cells[(g.Height-1-y)*g.Width+(g.Width-1-x)] = g.Cells[y*g.Width+x]
		}
	}
	return out
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// RGBGrid is a flat linear RGB buffer, three float32 channels per cell,
// row-major with channel index = (y*width+x)*3 + c. Values are unclamped
// until normalization.
type RGBGrid struct {
	Width  int
	Height int
	Pix    []float32
}

// NewRGB creates a zeroed RGB grid.
func NewRGB(width, height int) (*RGBGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &RGBGrid{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*3),
	}, nil
}

// At returns the r, g, b channels at (x, y).
func (g *RGBGrid) At(x, y int) (r, gg, b float32) {
	i := (y*g.Width + x) * 3
	return g.Pix[i], g.Pix[i+1], g.Pix[i+2]
}

// Set writes the r, g, b channels at (x, y).
func (g *RGBGrid) Set(x, y int, r, gg, b float32) {
	i := (y*g.Width + x) * 3
	g.Pix[i] = r
	g.Pix[i+1] = gg
	g.Pix[i+2] = b
}

// Clone returns an independent copy of the RGB grid.
func (g *RGBGrid) Clone() *RGBGrid {
	pix := make([]float32, len(g.Pix))
	copy(pix, g.Pix)
	return &RGBGrid{Width: g.Width, Height: g.Height, Pix: pix}
}
