package render

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/guidoenr/ribbonviz/internal/geometry"
	"github.com/guidoenr/ribbonviz/internal/style"
)

const (
	// Width and Height are the fixed drawing surface size.
	Width  = 1000
	Height = 400
)

// ErrRendererQuit is returned by a presenter when its window was closed.
var ErrRendererQuit = errors.New("renderer quit")

// Renderer paints the three channel ribbons onto a fixed-size canvas.
type Renderer struct {
	width  int
	height int

	canvas *Canvas
	raster *rasterizer
	blur   *blurrer
	frame  *image.RGBA

	fillCov   []float32
	strokeCov []float32
	shadowCov []float32

	paths [geometry.Channels]geometry.Path
	drawn bool
}

// New creates a Renderer with a blank canvas.
func New(width, height int) (*Renderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions: width=%d height=%d", width, height)
	}
	n := width * height
	return &Renderer{
		width:     width,
		height:    height,
		canvas:    NewCanvas(width, height),
		raster:    newRasterizer(width, height),
		blur:      newBlurrer(width, height),
		frame:     image.NewRGBA(image.Rect(0, 0, width, height)),
		fillCov:   make([]float32, n),
		strokeCov: make([]float32, n),
		shadowCov: make([]float32, n),
	}, nil
}

// Size returns the canvas dimensions.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// RenderFrame repaints the canvas from snapshot. Without a snapshot it does
// nothing and the previous canvas stays as it was.
func (r *Renderer) RenderFrame(cfg style.Config, snapshot []byte) {
	if snapshot == nil {
		return
	}
	r.canvas.Reset()

	params := geometry.Params{
		Width:        float64(r.width),
		Height:       float64(r.height),
		Amplitude:    cfg.Amplitude,
		SegmentWidth: cfg.SegmentWidth,
		Shift:        cfg.Shift,
	}
	for ch := 0; ch < geometry.Channels; ch++ {
		p := geometry.Channel(snapshot, ch, params)
		r.paths[ch] = p
		r.paint(p, cfg, ch)
	}
	r.canvas.CopyTo(r.frame)
	r.drawn = true
}

// paint fills then strokes one channel. Each pass casts its glow first, as a
// canvas shadow would.
func (r *Renderer) paint(p geometry.Path, cfg style.Config, channel int) {
	color := cfg.Color(channel)
	mode := cfg.Blend
	opacity := clampFloat(cfg.FillOpacity, 0, 1)

	area := r.raster.fill(p, r.fillCov)
	if cfg.Glow > 0 && opacity > 0 {
		glow := r.blur.blur(r.fillCov, r.shadowCov, cfg.Glow, area)
		r.canvas.CompositeRect(r.shadowCov, color, opacity, mode, glow)
	}
	r.canvas.CompositeRect(r.fillCov, color, opacity, mode, area)

	area = r.raster.stroke(p, strokeWidth(cfg.LineWidth), r.strokeCov)
	if cfg.Glow > 0 {
		glow := r.blur.blur(r.strokeCov, r.shadowCov, cfg.Glow, area)
		r.canvas.CompositeRect(r.shadowCov, color, 1, mode, glow)
	}
	r.canvas.CompositeRect(r.strokeCov, color, 1, mode, area)
}

// strokeWidth mirrors canvas semantics: non-positive or non-finite widths
// are ignored and the default of 1 applies.
func strokeWidth(w float64) float64 {
	if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return 1
	}
	return w
}

// Image returns the last rendered frame. The image is reused across frames.
func (r *Renderer) Image() *image.RGBA { return r.frame }

// Drawn reports whether at least one frame was rendered.
func (r *Renderer) Drawn() bool { return r.drawn }

// Paths returns the channel paths of the last rendered frame.
func (r *Renderer) Paths() [geometry.Channels]geometry.Path { return r.paths }

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
