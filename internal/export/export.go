// Package export writes normalized light grids to image files. Writers are
// read-only consumers of the pipeline's output buffer.
package export

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"

	"chosenoffset.com/gridlight/internal/grid"
	"chosenoffset.com/gridlight/internal/tonemap"
)

// WritePPM writes the grid as a plain-text P3 PPM, with each cell expanded
// to scale x scale pixels.
func WritePPM(w io.Writer, g *grid.RGBGrid, scale int) error {
	if scale < 1 {
		scale = 1
	}
	bw := bufio.NewWriter(w)

	imgW := g.Width * scale
	imgH := g.Height * scale
	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", imgW, imgH); err != nil {
		return err
	}

	for imgY := 0; imgY < imgH; imgY++ {
		for imgX := 0; imgX < imgW; imgX++ {
			r, gg, b := g.At(imgX/scale, imgY/scale)
			if _, err := fmt.Fprintf(bw, "%d %d %d ", tonemap.ToByte(r), tonemap.ToByte(gg), tonemap.ToByte(b)); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ToImage converts the grid into an NRGBA image at cell resolution.
func ToImage(g *grid.RGBGrid) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			r, gg, b := g.At(x, y)
			i := img.PixOffset(x, y)
			img.Pix[i] = tonemap.ToByte(r)
			img.Pix[i+1] = tonemap.ToByte(gg)
			img.Pix[i+2] = tonemap.ToByte(b)
			img.Pix[i+3] = 255
		}
	}
	return img
}

// WritePNG writes the grid as a PNG, upscaled by the integer scale factor
// with nearest-neighbor sampling so cells stay crisp.
func WritePNG(w io.Writer, g *grid.RGBGrid, scale int) error {
	if scale < 1 {
		scale = 1
	}
	src := ToImage(g)

	if scale == 1 {
		return png.Encode(w, src)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, g.Width*scale, g.Height*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return png.Encode(w, dst)
}

// WriteFile writes the grid to a file, choosing the format by extension:
// ".ppm" or ".png".
func WriteFile(path string, g *grid.RGBGrid, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	switch ext(path) {
	case ".ppm":
		err = WritePPM(f, g, scale)
	case ".png":
		err = WritePNG(f, g, scale)
	default:
		err = fmt.Errorf("unsupported output format %q (want .ppm or .png)", ext(path))
	}
	if err != nil {
		return err
	}
	return f.Close()
}

func ext(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}
