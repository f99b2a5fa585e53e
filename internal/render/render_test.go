package render

import (
	"bytes"
	"image"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/guidoenr/ribbonviz/internal/style"
)

func TestRenderWithoutSnapshotIsNoop(t *testing.T) {
	r, err := New(Width, Height)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	r.RenderFrame(style.Defaults(), nil)
	if r.Drawn() {
		t.Fatalf("expected nothing drawn without a snapshot")
	}
	for i, v := range r.Image().Pix {
		if v != 0 {
			t.Fatalf("expected blank frame, byte %d = %d", i, v)
		}
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	snapshot := make([]byte, 128)
	for i := range snapshot {
		snapshot[i] = byte(i * 2)
	}
	cfg := style.Defaults()

	a, _ := New(Width, Height)
	b, _ := New(Width, Height)
	a.RenderFrame(cfg, snapshot)
	b.RenderFrame(cfg, snapshot)
	b.RenderFrame(cfg, snapshot)

	if !reflect.DeepEqual(a.Paths(), b.Paths()) {
		t.Fatalf("expected identical paths across repeated renders")
	}
	if !bytes.Equal(a.Image().Pix, b.Image().Pix) {
		t.Fatalf("expected identical pixels across repeated renders")
	}
}

func TestFlatRibbonSitsOnCentreLine(t *testing.T) {
	cfg := style.Defaults()
	cfg.Glow = 0
	r, _ := New(Width, Height)
	r.RenderFrame(cfg, make([]byte, 128))

	img := r.Image()
	if a := img.RGBAAt(Width/2, Height/2).A; a == 0 {
		t.Fatalf("expected centre line to be painted")
	}
	if a := img.RGBAAt(Width/2, Height/8).A; a != 0 {
		t.Fatalf("expected area far from centre to stay clear, alpha=%d", a)
	}
}

func TestInvalidDimensions(t *testing.T) {
	if _, err := New(0, 10); err == nil {
		t.Fatalf("expected error for zero width")
	}
}

func TestStrokeWidthFallback(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 1},
		{-3, 1},
		{math.NaN(), 1},
		{math.Inf(1), 1},
		{2.5, 2.5},
	}
	for _, tc := range cases {
		if got := strokeWidth(tc.in); got != tc.want {
			t.Fatalf("strokeWidth(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestBlendFunctions(t *testing.T) {
	cases := []struct {
		mode   style.BlendMode
		cb, cs float32
		want   float32
	}{
		{style.BlendMultiply, 0.5, 0.5, 0.25},
		{style.BlendScreen, 0.5, 0.5, 0.75},
		{style.BlendOverlay, 0.25, 1, 0.5},
		{style.BlendOverlay, 0.75, 0, 0.5},
		{style.BlendLighten, 0.2, 0.6, 0.6},
		{style.BlendDifference, 0.2, 0.6, 0.4},
	}
	for _, tc := range cases {
		fn := blendFunc(tc.mode)
		if fn == nil {
			t.Fatalf("%s: expected blend function", tc.mode)
		}
		if got := fn(tc.cb, tc.cs); math.Abs(float64(got-tc.want)) > 1e-6 {
			t.Fatalf("%s(%v, %v) = %v, want %v", tc.mode, tc.cb, tc.cs, got, tc.want)
		}
	}
	if blendFunc(style.BlendNormal) != nil || blendFunc("bogus") != nil {
		t.Fatalf("expected source-over for normal and unknown modes")
	}
}

func TestCompositeOnEmptyCanvasIgnoresBlend(t *testing.T) {
	c := NewCanvas(1, 1)
	c.Composite([]float32{1}, [3]uint8{255, 0, 0}, 0.5, style.BlendMultiply)
	r, g, b, a := c.At(0, 0)
	if r != 0.5 || g != 0 || b != 0 || a != 0.5 {
		t.Fatalf("unexpected pixel %v %v %v %v", r, g, b, a)
	}
}

func TestCompositeScreenOverOpaque(t *testing.T) {
	c := NewCanvas(1, 1)
	white := [3]uint8{255, 255, 255}
	c.Composite([]float32{1}, [3]uint8{128, 128, 128}, 1, style.BlendNormal)
	c.Composite([]float32{1}, white, 1, style.BlendScreen)
	r, _, _, a := c.At(0, 0)
	if a != 1 || math.Abs(float64(r)-1) > 1e-6 {
		t.Fatalf("expected white after screening white, got r=%v a=%v", r, a)
	}
}

func TestBoxSizesAreOdd(t *testing.T) {
	for _, sigma := range []float64{1, 2.5, 5, 10} {
		for _, s := range boxSizes(sigma, 3) {
			if s%2 == 0 || s < 1 {
				t.Fatalf("sigma %v: box size %d not a positive odd width", sigma, s)
			}
		}
	}
}

func TestBoxLinePreservesMassInside(t *testing.T) {
	src := []float32{0, 0, 0, 3, 0, 0, 0}
	dst := make([]float32, len(src))
	boxLine(src, dst, 1)
	want := []float32{0, 0, 1, 1, 1, 0, 0}
	for i := range want {
		if math.Abs(float64(dst[i]-want[i])) > 1e-6 {
			t.Fatalf("index %d: got %v want %v", i, dst[i], want[i])
		}
	}
}

func TestRGBToANSI(t *testing.T) {
	if got := rgbToANSI(1, 0, 0); got != 196 {
		t.Fatalf("red: got %d", got)
	}
	if got := rgbToANSI(0, 0, 0); got != 232 {
		t.Fatalf("black: got %d", got)
	}
	if got := rgbToANSI(1, 1, 1); got != 255 {
		t.Fatalf("white: got %d", got)
	}
}

func TestTerminalPresentAndFail(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out, TerminalConfig{Fd: -1, Cols: 10, Rows: 4, UseANSI: true, ShowStatus: true})
	img := image.NewRGBA(image.Rect(0, 0, 20, 8))

	if err := term.Present(img, "fps 60"); err != nil {
		t.Fatalf("present: %v", err)
	}
	if !strings.Contains(out.String(), "fps 60") {
		t.Fatalf("expected status line in output")
	}
	if !strings.Contains(out.String(), upperHalfBlock) {
		t.Fatalf("expected half blocks in output")
	}

	if err := term.Fail("no microphone"); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if !strings.Contains(out.String(), "no microphone") {
		t.Fatalf("expected failure message in output")
	}
	before := out.Len()
	_ = term.Present(img, "fps 60")
	if out.Len() != before {
		t.Fatalf("expected no drawing after failure")
	}
	_ = term.Close()
}

func TestTerminalGlyphMode(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out, TerminalConfig{Fd: -1, Cols: 4, Rows: 2, Palette: "box"})
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	if err := term.Present(img, ""); err != nil {
		t.Fatalf("present: %v", err)
	}
	if !strings.Contains(out.String(), "████") {
		t.Fatalf("expected solid glyphs for a white frame, got %q", out.String())
	}
}

func TestMultiReturnsFirstError(t *testing.T) {
	var out bytes.Buffer
	m := Multi{NewTerminal(&out, TerminalConfig{Fd: -1}), failing{}}
	if err := m.Prompt("press enter"); err != errFailing {
		t.Fatalf("expected failing presenter error, got %v", err)
	}
	if !strings.Contains(out.String(), "press enter") {
		t.Fatalf("expected terminal to still receive the prompt")
	}
}

var errFailing = errorString("failing")

type errorString string

func (e errorString) Error() string { return string(e) }

type failing struct{}

func (failing) Prompt(string) error               { return errFailing }
func (failing) Present(*image.RGBA, string) error { return errFailing }
func (failing) Fail(string) error                 { return errFailing }
func (failing) Close() error                      { return errFailing }
