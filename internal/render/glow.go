package render

import (
	"image"
	"math"
)

// blurrer approximates a gaussian blur of a coverage buffer with three box
// passes per axis.
type blurrer struct {
	width   int
	height  int
	scratch []float32
	line    []float32
	lineOut []float32
}

func newBlurrer(width, height int) *blurrer {
	n := width
	if height > n {
		n = height
	}
	return &blurrer{
		width:   width,
		height:  height,
		scratch: make([]float32, width*height),
		line:    make([]float32, n),
		lineOut: make([]float32, n),
	}
}

// blur writes the blurred src into dst. A glow radius maps to a standard
// deviation of radius/2. src must be zero outside area; only area grown by the
// blur's reach is processed, and that grown rectangle is returned.
func (b *blurrer) blur(src, dst []float32, radius float64, area image.Rectangle) image.Rectangle {
	sigma := radius / 2
	copy(dst, src)
	if sigma <= 0 || area.Empty() {
		return area
	}
	// Past the canvas size a wider blur only flattens further.
	if limit := float64(b.width + b.height); sigma > limit {
		sigma = limit
	}
	boxes := boxSizes(sigma, 3)
	reach := 0
	for _, box := range boxes {
		if box > 1 {
			reach += (box - 1) / 2
		}
	}
	area = area.Inset(-reach).Intersect(image.Rect(0, 0, b.width, b.height))
	for _, box := range boxes {
		r := (box - 1) / 2
		if r <= 0 {
			continue
		}
		b.horizontal(dst, b.scratch, r, area)
		b.vertical(b.scratch, dst, r, area)
	}
	return area
}

// boxSizes returns n odd box widths whose successive application
// approximates a gaussian of the given sigma.
func boxSizes(sigma float64, n int) []int {
	ideal := math.Sqrt(12*sigma*sigma/float64(n) + 1)
	wl := int(math.Floor(ideal))
	if wl%2 == 0 {
		wl--
	}
	wu := wl + 2
	mIdeal := (12*sigma*sigma - float64(n*wl*wl) - 4*float64(n*wl) - 3*float64(n)) / (-4*float64(wl) - 4)
	m := int(math.Round(mIdeal))
	sizes := make([]int, n)
	for i := range sizes {
		if i < m {
			sizes[i] = wl
		} else {
			sizes[i] = wu
		}
	}
	return sizes
}

func (b *blurrer) horizontal(src, dst []float32, r int, area image.Rectangle) {
	w := b.width
	for y := area.Min.Y; y < area.Max.Y; y++ {
		row := src[y*w+area.Min.X : y*w+area.Max.X]
		out := dst[y*w+area.Min.X : y*w+area.Max.X]
		boxLine(row, out, r)
	}
}

func (b *blurrer) vertical(src, dst []float32, r int, area image.Rectangle) {
	w := b.width
	h := area.Dy()
	col := b.line[:h]
	out := b.lineOut[:h]
	for x := area.Min.X; x < area.Max.X; x++ {
		for i := 0; i < h; i++ {
			col[i] = src[(area.Min.Y+i)*w+x]
		}
		boxLine(col, out, r)
		for i := 0; i < h; i++ {
			dst[(area.Min.Y+i)*w+x] = out[i]
		}
	}
}

// boxLine averages a window of 2r+1 samples around each index. Samples off
// the ends count as zero, which holds when the line spans the blur's reach.
func boxLine(src, dst []float32, r int) {
	n := len(src)
	inv := 1 / float32(2*r+1)
	var acc float32
	for i := 0; i <= r && i < n; i++ {
		acc += src[i]
	}
	for i := 0; i < n; i++ {
		dst[i] = acc * inv
		if j := i + r + 1; j < n {
			acc += src[j]
		}
		if j := i - r; j >= 0 {
			acc -= src[j]
		}
	}
}
