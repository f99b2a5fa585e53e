package render

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/guidoenr/ribbonviz/internal/geometry"
)

const (
	curveSteps = 16
	// guardMargin keeps clipped edges far enough off canvas that the cut is
	// never visible.
	guardMargin = 4
)

// rasterizer turns paths into coverage buffers. Geometry is clipped to a
// guard band around the canvas first, so arbitrarily large coordinates cost
// no more than on-canvas ones.
type rasterizer struct {
	width  int
	height int
	z      *vector.Rasterizer
	mask   *image.Alpha
	poly   []geometry.Point
	tmp    []geometry.Point
}

func newRasterizer(width, height int) *rasterizer {
	return &rasterizer{
		width:  width,
		height: height,
		z:      vector.NewRasterizer(width, height),
		mask:   image.NewAlpha(image.Rect(0, 0, width, height)),
	}
}

// fill rasterizes the interior of p into dst and returns the bounds of the
// non-zero coverage.
func (r *rasterizer) fill(p geometry.Path, dst []float32) image.Rectangle {
	r.begin()
	g := r.guard(0)
	for _, line := range p.Flatten(curveSteps) {
		poly := r.clipPolygon(line, g)
		if len(poly) < 3 {
			continue
		}
		r.z.MoveTo(float32(poly[0].X), float32(poly[0].Y))
		for _, pt := range poly[1:] {
			r.z.LineTo(float32(pt.X), float32(pt.Y))
		}
		r.z.ClosePath()
	}
	return r.end(dst)
}

// stroke rasterizes the outline of p with the given line width into dst and
// returns the bounds of the non-zero coverage. Each flattened segment becomes
// a quad and each vertex a small polygon for the join. All pieces share one
// winding so overlaps never cancel; the joint polygon is walked clockwise to
// match the quads.
func (r *rasterizer) stroke(p geometry.Path, lineWidth float64, dst []float32) image.Rectangle {
	r.begin()
	// Any wider and the stroke already covers the whole canvas.
	if limit := float64(2 * (r.width + r.height)); lineWidth > limit {
		lineWidth = limit
	}
	hw := lineWidth / 2
	g := r.guard(lineWidth)
	for _, line := range p.Flatten(curveSteps) {
		for i := 1; i < len(line); i++ {
			if a, b, ok := clipSegment(line[i-1], line[i], g); ok {
				r.quad(a, b, hw)
			}
		}
		for _, pt := range line {
			if g.contains(pt) {
				r.joint(pt, hw)
			}
		}
	}
	return r.end(dst)
}

func (r *rasterizer) quad(a, b geometry.Point, hw float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*hw, dx/l*hw
	r.z.MoveTo(float32(a.X+nx), float32(a.Y+ny))
	r.z.LineTo(float32(b.X+nx), float32(b.Y+ny))
	r.z.LineTo(float32(b.X-nx), float32(b.Y-ny))
	r.z.LineTo(float32(a.X-nx), float32(a.Y-ny))
	r.z.ClosePath()
}

func (r *rasterizer) joint(c geometry.Point, radius float64) {
	const sides = 8
	for i := 0; i < sides; i++ {
		theta := -float64(i) * 2 * math.Pi / sides
		x := float32(c.X + radius*math.Cos(theta))
		y := float32(c.Y + radius*math.Sin(theta))
		if i == 0 {
			r.z.MoveTo(x, y)
			continue
		}
		r.z.LineTo(x, y)
	}
	r.z.ClosePath()
}

func (r *rasterizer) begin() {
	r.z.Reset(r.width, r.height)
	r.z.DrawOp = draw.Src
}

func (r *rasterizer) end(dst []float32) image.Rectangle {
	r.z.Draw(r.mask, r.mask.Bounds(), image.Opaque, image.Point{})
	minX, minY, maxX, maxY := r.width, r.height, -1, -1
	w := r.width
	for i, v := range r.mask.Pix {
		if v == 0 {
			dst[i] = 0
			continue
		}
		dst[i] = float32(v) / 255
		x, y := i%w, i/w
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		maxY = y
	}
	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// box is a float clip rectangle.
type box struct {
	minX, minY, maxX, maxY float64
}

func (r *rasterizer) guard(lineWidth float64) box {
	m := guardMargin + lineWidth
	return box{-m, -m, float64(r.width) + m, float64(r.height) + m}
}

func (b box) contains(p geometry.Point) bool {
	return p.X >= b.minX && p.X <= b.maxX && p.Y >= b.minY && p.Y <= b.maxY
}

// clipPolygon clips a closed polygon to b, edge by edge. Winding inside b is
// preserved, which is all the fill rule looks at.
func (r *rasterizer) clipPolygon(in []geometry.Point, b box) []geometry.Point {
	out := append(r.poly[:0], in...)
	edges := [4]func(geometry.Point) float64{
		func(p geometry.Point) float64 { return p.X - b.minX },
		func(p geometry.Point) float64 { return b.maxX - p.X },
		func(p geometry.Point) float64 { return p.Y - b.minY },
		func(p geometry.Point) float64 { return b.maxY - p.Y },
	}
	for _, dist := range edges {
		if len(out) == 0 {
			break
		}
		src := append(r.tmp[:0], out...)
		r.tmp = src
		out = out[:0]
		prev := src[len(src)-1]
		dPrev := dist(prev)
		for _, cur := range src {
			dCur := dist(cur)
			if (dCur >= 0) != (dPrev >= 0) {
				t := dPrev / (dPrev - dCur)
				out = append(out, geometry.Point{
					X: prev.X + t*(cur.X-prev.X),
					Y: prev.Y + t*(cur.Y-prev.Y),
				})
			}
			if dCur >= 0 {
				out = append(out, cur)
			}
			prev, dPrev = cur, dCur
		}
	}
	r.poly = out
	return out
}

// clipSegment clips a-b to b using Liang-Barsky. ok is false when nothing of
// the segment lies inside.
func clipSegment(a, c geometry.Point, b box) (geometry.Point, geometry.Point, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := c.X-a.X, c.Y-a.Y
	checks := [4][2]float64{
		{-dx, a.X - b.minX},
		{dx, b.maxX - a.X},
		{-dy, a.Y - b.minY},
		{dy, b.maxY - a.Y},
	}
	for _, pq := range checks {
		p, q := pq[0], pq[1]
		if p == 0 {
			if q < 0 {
				return a, c, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return a, c, false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return a, c, false
			}
			if t < t1 {
				t1 = t
			}
		}
	}
	start := geometry.Point{X: a.X + t0*dx, Y: a.Y + t0*dy}
	end := geometry.Point{X: a.X + t1*dx, Y: a.Y + t1*dy}
	return start, end, true
}
