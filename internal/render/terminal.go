package render

import (
	"image"
	"io"
	"strconv"
	"strings"

	"golang.org/x/term"
)

var (
	resetANSI       = "\x1b[0m"
	precomputedFG   [256]string
	precomputedBG   [256]string
	upperHalfBlock  = "▀"
	defaultTermCols = 80
	defaultTermRows = 24
)

func init() {
	for i := range precomputedFG {
		precomputedFG[i] = "\x1b[38;5;" + strconv.Itoa(i) + "m"
		precomputedBG[i] = "\x1b[48;5;" + strconv.Itoa(i) + "m"
	}
}

// Terminal draws frames as 256-color half blocks, or as glyphs when ANSI
// colors are off, scaled to the terminal size.
type Terminal struct {
	out        io.Writer
	fd         int
	useANSI    bool
	showStatus bool
	palette    []rune

	cols    int
	rows    int
	entered bool
	failed  bool
	builder strings.Builder
}

// TerminalConfig configures a Terminal presenter.
type TerminalConfig struct {
	// Fd is queried for the terminal size; -1 keeps Cols/Rows.
	Fd         int
	Cols       int
	Rows       int
	UseANSI    bool
	ShowStatus bool
	Palette    string
}

// NewTerminal returns a presenter writing to out.
func NewTerminal(out io.Writer, cfg TerminalConfig) *Terminal {
	if cfg.Cols <= 0 {
		cfg.Cols = defaultTermCols
	}
	if cfg.Rows <= 0 {
		cfg.Rows = defaultTermRows
	}
	return &Terminal{
		out:        out,
		fd:         cfg.Fd,
		useANSI:    cfg.UseANSI,
		showStatus: cfg.ShowStatus,
		palette:    Palette(cfg.Palette),
		cols:       cfg.Cols,
		rows:       cfg.Rows,
	}
}

// Prompt clears the screen and shows message centred.
func (t *Terminal) Prompt(message string) error {
	if t.failed {
		return nil
	}
	return t.message(message)
}

// Fail replaces the screen with message; later frames are ignored.
func (t *Terminal) Fail(message string) error {
	t.failed = true
	return t.message(message)
}

// Present draws img scaled to the terminal.
func (t *Terminal) Present(img *image.RGBA, status string) error {
	if t.failed {
		return nil
	}
	t.ensureDimensions()
	t.enter()

	rows := t.rows
	if t.showStatus && rows > 1 {
		rows--
	}
	b := &t.builder
	b.Reset()
	b.Grow(t.cols * rows * 12)
	b.WriteString("\x1b[H")
	if t.useANSI {
		t.halfBlocks(b, img, t.cols, rows)
	} else {
		t.glyphs(b, img, t.cols, rows)
	}
	if t.showStatus {
		b.WriteString(statusBar(status, t.cols))
	}
	_, err := io.WriteString(t.out, b.String())
	return err
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	if !t.entered {
		return nil
	}
	t.entered = false
	_, err := io.WriteString(t.out, "\x1b[?25h\x1b[?1049l"+resetANSI)
	return err
}

func (t *Terminal) halfBlocks(b *strings.Builder, img *image.RGBA, cols, rows int) {
	lastFG, lastBG := -1, -1
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			fg := cellANSI(img, col, 2*row, cols, 2*rows)
			bg := cellANSI(img, col, 2*row+1, cols, 2*rows)
			if fg != lastFG {
				b.WriteString(precomputedFG[fg])
				lastFG = fg
			}
			if bg != lastBG {
				b.WriteString(precomputedBG[bg])
				lastBG = bg
			}
			b.WriteString(upperHalfBlock)
		}
		b.WriteString(resetANSI)
		lastFG, lastBG = -1, -1
		b.WriteString("\r\n")
	}
}

func (t *Terminal) glyphs(b *strings.Builder, img *image.RGBA, cols, rows int) {
	last := len(t.palette) - 1
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			r, g, bl := cellColor(img, col, row, cols, rows)
			lum := 0.2126*r + 0.7152*g + 0.0722*bl
			b.WriteRune(t.palette[clampInt(int(lum*float64(last)+0.5), 0, last)])
		}
		b.WriteString("\r\n")
	}
}

func (t *Terminal) message(message string) error {
	t.ensureDimensions()
	t.enter()
	var b strings.Builder
	b.WriteString(resetANSI + "\x1b[2J\x1b[H")
	lines := strings.Split(message, "\n")
	top := (t.rows - len(lines)) / 2
	for i := 0; i < top; i++ {
		b.WriteString("\r\n")
	}
	for _, line := range lines {
		pad := (t.cols - len([]rune(line))) / 2
		if pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	_, err := io.WriteString(t.out, b.String())
	return err
}

func (t *Terminal) enter() {
	if t.entered {
		return
	}
	t.entered = true
	_, _ = io.WriteString(t.out, "\x1b[?1049h\x1b[2J\x1b[?25l")
}

func (t *Terminal) ensureDimensions() {
	if t.fd < 0 {
		return
	}
	w, h, err := term.GetSize(t.fd)
	if err != nil || w <= 0 || h <= 0 {
		return
	}
	t.cols = w
	t.rows = h
}

// cellColor averages the image block covered by cell (cx, cy) of a cols×rows
// grid and returns it in [0,1].
func cellColor(img *image.RGBA, cx, cy, cols, rows int) (float64, float64, float64) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	x0, x1 := cx*w/cols, (cx+1)*w/cols
	y0, y1 := cy*h/rows, (cy+1)*h/rows
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	var sr, sg, sb, n float64
	for y := y0; y < y1 && y < h; y++ {
		for x := x0; x < x1 && x < w; x++ {
			i := img.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			sr += float64(img.Pix[i])
			sg += float64(img.Pix[i+1])
			sb += float64(img.Pix[i+2])
			n++
		}
	}
	if n == 0 {
		return 0, 0, 0
	}
	return sr / n / 255, sg / n / 255, sb / n / 255
}

func cellANSI(img *image.RGBA, cx, cy, cols, rows int) int {
	r, g, b := cellColor(img, cx, cy, cols, rows)
	return rgbToANSI(r, g, b)
}

func rgbToANSI(r, g, b float64) int {
	r = clamp01(r)
	g = clamp01(g)
	b = clamp01(b)

	// Grayscale ramp for near-neutral colors
	if abs(r-g) < 0.02 && abs(g-b) < 0.02 {
		gray := int(clampFloat(r*23+0.5, 0, 23))
		return 232 + gray
	}

	ri := int(clampFloat(r*5+0.5, 0, 5))
	gi := int(clampFloat(g*5+0.5, 0, 5))
	bi := int(clampFloat(b*5+0.5, 0, 5))

	return 16 + 36*ri + 6*gi + bi
}

func statusBar(text string, width int) string {
	if width <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) >= width {
		return string(runes[:width])
	}
	return text + strings.Repeat(" ", width-len(runes))
}

func clamp01(v float64) float64 {
	return clampFloat(v, 0, 1)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
