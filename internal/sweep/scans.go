package sweep

// transmission is the fraction of a neighbor's light that survives entering
// a cell with decay d along a step scaled by mult. Clamped to [floor, 1],
// which also absorbs out-of-range decay values without branching on them.
func transmission(d, mult, floor float32) float32 {
	t := 1 - d*mult
	if t < floor {
		return floor
	}
	if t > 1 {
		return 1
	}
	return t
}

// Each scan visits cells in one raster order and relaxes every cell against
// the neighbors already visited in that order: the cell takes the maximum
// of its current value and neighborAttenuation * transmission(cellDecay).

// sweepTLBR scans top-left to bottom-right, relaxing against the left, up
// and up-left neighbors.
func sweepTLBR(decay, att []float32, w, h int, axis, diag, floor float32) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			d := decay[idx]
			best := att[idx]

			var a float32
			if x > 0 && att[idx-1] > a {
				a = att[idx-1]
			}
			if y > 0 && att[idx-w] > a {
				a = att[idx-w]
			}
			if v := a * transmission(d, axis, floor); v > best {
				best = v
			}
			if x > 0 && y > 0 {
				if v := att[idx-w-1] * transmission(d, diag, floor); v > best {
					best = v
				}
			}
			att[idx] = best
		}
	}
}

// sweepBRTL scans bottom-right to top-left, relaxing against the right,
// down and down-right neighbors.
func sweepBRTL(decay, att []float32, w, h int, axis, diag, floor float32) {
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			idx := y*w + x
			d := decay[idx]
			best := att[idx]

			var a float32
			if x+1 < w && att[idx+1] > a {
				a = att[idx+1]
			}
			if y+1 < h && att[idx+w] > a {
				a = att[idx+w]
			}
			if v := a * transmission(d, axis, floor); v > best {
				best = v
			}
			if x+1 < w && y+1 < h {
				if v := att[idx+w+1] * transmission(d, diag, floor); v > best {
					best = v
				}
			}
			att[idx] = best
		}
	}
}

// sweepDown scans top-down, relaxing against the left and up neighbors and
// both upper diagonals.
func sweepDown(decay, att []float32, w, h int, axis, diag, floor float32) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			d := decay[idx]
			best := att[idx]

			var a float32
			if x > 0 && att[idx-1] > a {
				a = att[idx-1]
			}
			if y > 0 && att[idx-w] > a {
				a = att[idx-w]
			}
			if v := a * transmission(d, axis, floor); v > best {
				best = v
			}
			if y > 0 {
				var dd float32
				if x > 0 && att[idx-w-1] > dd {
					dd = att[idx-w-1]
				}
				if x+1 < w && att[idx-w+1] > dd {
					dd = att[idx-w+1]
				}
				if v := dd * transmission(d, diag, floor); v > best {
					best = v
				}
			}
			att[idx] = best
		}
	}
}

// sweepUp scans bottom-up, relaxing against the right and down neighbors
// and both lower diagonals.
func sweepUp(decay, att []float32, w, h int, axis, diag, floor float32) {
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			idx := y*w + x
			d := decay[idx]
			best := att[idx]

			var a float32
			if x+1 < w && att[idx+1] > a {
				a = att[idx+1]
			}
			if y+1 < h && att[idx+w] > a {
				a = att[idx+w]
			}
			if v := a * transmission(d, axis, floor); v > best {
				best = v
			}
			if y+1 < h {
				var dd float32
				if x > 0 && att[idx+w-1] > dd {
					dd = att[idx+w-1]
				}
				if x+1 < w && att[idx+w+1] > dd {
					dd = att[idx+w+1]
				}
				if v := dd * transmission(d, diag, floor); v > best {
					best = v
				}
			}
			att[idx] = best
		}
	}
}
