package style

import (
	"math"
	"strings"
	"sync"
)

// BlendMode names the compositing rule used when a channel is painted over
// the channels drawn before it.
type BlendMode string

const (
	BlendNormal     BlendMode = "normal"
	BlendMultiply   BlendMode = "multiply"
	BlendScreen     BlendMode = "screen"
	BlendOverlay    BlendMode = "overlay"
	BlendLighten    BlendMode = "lighten"
	BlendDifference BlendMode = "difference"
)

var blendModeNames = []string{
	string(BlendNormal),
	string(BlendMultiply),
	string(BlendScreen),
	string(BlendOverlay),
	string(BlendLighten),
	string(BlendDifference),
}

// BlendModeNames returns the blend modes the panel offers, in panel order.
func BlendModeNames() []string {
	out := make([]string, len(blendModeNames))
	copy(out, blendModeNames)
	return out
}

// Operator returns the compositing operator name for the mode. "normal"
// paints over; anything unrecognised does too.
func (b BlendMode) Operator() string {
	switch BlendMode(strings.ToLower(string(b))) {
	case BlendMultiply, BlendScreen, BlendOverlay, BlendLighten, BlendDifference:
		return strings.ToLower(string(b))
	default:
		return "source-over"
	}
}

// RGB is a color triple as edited by the panel. Components may carry
// fractions; Color floors them.
type RGB [3]float64

// Config is the live-tunable style record read once per frame.
type Config struct {
	Smoothing    float64   `json:"smoothing" yaml:"smoothing"`
	FFTExponent  int       `json:"fft" yaml:"fft"`
	MinDecibels  float64   `json:"minDecibels" yaml:"min_decibels"`
	Glow         float64   `json:"glow" yaml:"glow"`
	FillOpacity  float64   `json:"fillOpacity" yaml:"fill_opacity"`
	LineWidth    float64   `json:"lineWidth" yaml:"line_width"`
	Blend        BlendMode `json:"blend" yaml:"blend"`
	Shift        float64   `json:"shift" yaml:"shift"`
	SegmentWidth float64   `json:"width" yaml:"width"`
	Amplitude    float64   `json:"amp" yaml:"amp"`
	Color1       RGB       `json:"color1" yaml:"color1"`
	Color2       RGB       `json:"color2" yaml:"color2"`
	Color3       RGB       `json:"color3" yaml:"color3"`
}

// Defaults returns the startup style.
func Defaults() Config {
	return Config{
		Smoothing:    0.6,
		FFTExponent:  8,
		MinDecibels:  -70,
		Glow:         10,
		FillOpacity:  0.6,
		LineWidth:    1,
		Blend:        BlendScreen,
		Shift:        50,
		SegmentWidth: 60,
		Amplitude:    1,
		Color1:       RGB{203, 36, 128},
		Color2:       RGB{41, 200, 192},
		Color3:       RGB{24, 137, 218},
	}
}

// Color returns the floored color for channel 0, 1 or 2.
func (c Config) Color(channel int) [3]uint8 {
	var src RGB
	switch channel {
	case 0:
		src = c.Color1
	case 1:
		src = c.Color2
	default:
		src = c.Color3
	}
	var out [3]uint8
	for i, v := range src {
		out[i] = uint8(clampFloat(math.Floor(v), 0, 255))
	}
	return out
}

// FFTSize returns 2^FFTExponent.
func (c Config) FFTSize() int {
	if c.FFTExponent < 0 || c.FFTExponent > 30 {
		return 0
	}
	return 1 << c.FFTExponent
}

// Patch is a partial update coming from the tuning panel. Nil fields are
// left untouched.
type Patch struct {
	Smoothing    *float64   `json:"smoothing,omitempty"`
	MinDecibels  *float64   `json:"minDecibels,omitempty"`
	Glow         *float64   `json:"glow,omitempty"`
	FillOpacity  *float64   `json:"fillOpacity,omitempty"`
	LineWidth    *float64   `json:"lineWidth,omitempty"`
	Blend        *BlendMode `json:"blend,omitempty"`
	Shift        *float64   `json:"shift,omitempty"`
	SegmentWidth *float64   `json:"width,omitempty"`
	Amplitude    *float64   `json:"amp,omitempty"`
	Color1       *RGB       `json:"color1,omitempty"`
	Color2       *RGB       `json:"color2,omitempty"`
	Color3       *RGB       `json:"color3,omitempty"`
}

// Merge applies the set fields of p. Values are stored as given.
func (c *Config) Merge(p Patch) {
	if p.Smoothing != nil {
		c.Smoothing = *p.Smoothing
	}
	if p.MinDecibels != nil {
		c.MinDecibels = *p.MinDecibels
	}
	if p.Glow != nil {
		c.Glow = *p.Glow
	}
	if p.FillOpacity != nil {
		c.FillOpacity = *p.FillOpacity
	}
	if p.LineWidth != nil {
		c.LineWidth = *p.LineWidth
	}
	if p.Blend != nil {
		c.Blend = *p.Blend
	}
	if p.Shift != nil {
		c.Shift = *p.Shift
	}
	if p.SegmentWidth != nil {
		c.SegmentWidth = *p.SegmentWidth
	}
	if p.Amplitude != nil {
		c.Amplitude = *p.Amplitude
	}
	if p.Color1 != nil {
		c.Color1 = *p.Color1
	}
	if p.Color2 != nil {
		c.Color2 = *p.Color2
	}
	if p.Color3 != nil {
		c.Color3 = *p.Color3
	}
}

// Handle is the shared style record. The panel writes through Update, the
// frame loop reads one Snapshot per frame.
type Handle struct {
	mu  sync.RWMutex
	cfg Config
}

// NewHandle wraps cfg.
func NewHandle(cfg Config) *Handle {
	return &Handle{cfg: cfg}
}

// Snapshot returns a copy of the current style.
func (h *Handle) Snapshot() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// Update mutates the style under the write lock.
func (h *Handle) Update(fn func(*Config)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(&h.cfg)
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
