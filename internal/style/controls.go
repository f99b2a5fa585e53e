package style

// ControlKind tells the panel which widget to build.
type ControlKind string

const (
	ControlSlider ControlKind = "slider"
	ControlColor  ControlKind = "color"
	ControlSelect ControlKind = "select"
)

// Control describes one panel widget bound to a Config field by its JSON key.
type Control struct {
	Key     string      `json:"key"`
	Kind    ControlKind `json:"kind"`
	Min     float64     `json:"min"`
	Max     float64     `json:"max"`
	Step    float64     `json:"step,omitempty"`
	Options []string    `json:"options,omitempty"`
}

// Controls lists the panel widgets in display order. The FFT exponent is not
// exposed.
func Controls() []Control {
	return []Control{
		{Key: "color1", Kind: ControlColor, Min: 0, Max: 255},
		{Key: "color2", Kind: ControlColor, Min: 0, Max: 255},
		{Key: "color3", Kind: ControlColor, Min: 0, Max: 255},
		{Key: "fillOpacity", Kind: ControlSlider, Min: 0, Max: 1},
		{Key: "lineWidth", Kind: ControlSlider, Min: 0, Max: 10, Step: 1},
		{Key: "glow", Kind: ControlSlider, Min: 0, Max: 100},
		{Key: "blend", Kind: ControlSelect, Options: BlendModeNames()},
		{Key: "smoothing", Kind: ControlSlider, Min: 0, Max: 1},
		{Key: "minDecibels", Kind: ControlSlider, Min: -100, Max: 0},
		{Key: "amp", Kind: ControlSlider, Min: 0, Max: 5},
		{Key: "width", Kind: ControlSlider, Min: 0, Max: 60},
		{Key: "shift", Kind: ControlSlider, Min: 0, Max: 200},
	}
}
