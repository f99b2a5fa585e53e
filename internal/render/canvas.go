package render

import (
	"image"
	"math"

	"github.com/guidoenr/ribbonviz/internal/style"
)

// Canvas is a premultiplied floating point RGBA surface. Layers are
// composited onto it with a blend mode.
type Canvas struct {
	width  int
	height int
	pix    []float32 // r, g, b, a premultiplied, 4 per pixel
}

// NewCanvas allocates a transparent canvas.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		width:  width,
		height: height,
		pix:    make([]float32, width*height*4),
	}
}

// Bounds returns the canvas rectangle.
func (c *Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

// Reset clears the canvas to transparent.
func (c *Canvas) Reset() {
	for i := range c.pix {
		c.pix[i] = 0
	}
}

// At returns the premultiplied color at (x, y) in [0,1].
func (c *Canvas) At(x, y int) (r, g, b, a float32) {
	i := (y*c.width + x) * 4
	return c.pix[i], c.pix[i+1], c.pix[i+2], c.pix[i+3]
}

// Composite paints a layer of a single color. coverage holds per-pixel
// coverage in [0,1] (len width*height) and is scaled by alpha.
func (c *Canvas) Composite(coverage []float32, rgb [3]uint8, alpha float64, mode style.BlendMode) {
	c.CompositeRect(coverage, rgb, alpha, mode, c.Bounds())
}

// CompositeRect is Composite limited to area. Coverage outside area is
// ignored.
func (c *Canvas) CompositeRect(coverage []float32, rgb [3]uint8, alpha float64, mode style.BlendMode, area image.Rectangle) {
	area = area.Intersect(c.Bounds())
	if alpha <= 0 || area.Empty() || len(coverage) < c.width*c.height {
		return
	}
	alpha = math.Min(alpha, 1)
	fn := blendFunc(mode)
	cs := [3]float32{float32(rgb[0]) / 255, float32(rgb[1]) / 255, float32(rgb[2]) / 255}
	a := float32(alpha)
	pix := c.pix

	for y := area.Min.Y; y < area.Max.Y; y++ {
		for p := y*c.width + area.Min.X; p < y*c.width+area.Max.X; p++ {
			cov := coverage[p]
			if cov <= 0 {
				continue
			}
			as := cov * a
			if as > 1 {
				as = 1
			}
			i := p * 4
			ab := pix[i+3]
			if ab <= 0 {
				pix[i] = cs[0] * as
				pix[i+1] = cs[1] * as
				pix[i+2] = cs[2] * as
				pix[i+3] = as
				continue
			}
			for k := 0; k < 3; k++ {
				cbp := pix[i+k]
				cb := cbp / ab
				mixed := cs[k]
				if fn != nil {
					mixed = fn(cb, cs[k])
				}
				pix[i+k] = as*(1-ab)*cs[k] + as*ab*mixed + (1-as)*cbp
			}
			pix[i+3] = as + ab*(1-as)
		}
	}
}

// CopyTo writes the canvas into dst, which must have the canvas bounds.
func (c *Canvas) CopyTo(dst *image.RGBA) {
	for y := 0; y < c.height; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < c.width; x++ {
			i := (y*c.width + x) * 4
			o := x * 4
			row[o] = toByte(c.pix[i])
			row[o+1] = toByte(c.pix[i+1])
			row[o+2] = toByte(c.pix[i+2])
			row[o+3] = toByte(c.pix[i+3])
		}
	}
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
