package render

import "github.com/guidoenr/ribbonviz/internal/style"

// separable blend of backdrop cb and source cs, both unpremultiplied.
type blendFn func(cb, cs float32) float32

// blendFunc returns nil for plain source-over.
func blendFunc(mode style.BlendMode) blendFn {
	switch mode.Operator() {
	case "multiply":
		return blendMultiply
	case "screen":
		return blendScreen
	case "overlay":
		return blendOverlay
	case "lighten":
		return blendLighten
	case "difference":
		return blendDifference
	default:
		return nil
	}
}

func blendMultiply(cb, cs float32) float32 { return cb * cs }

func blendScreen(cb, cs float32) float32 { return cb + cs - cb*cs }

func blendOverlay(cb, cs float32) float32 {
	if cb <= 0.5 {
		return blendMultiply(cs, 2*cb)
	}
	return blendScreen(cs, 2*cb-1)
}

func blendLighten(cb, cs float32) float32 {
	if cs > cb {
		return cs
	}
	return cb
}

func blendDifference(cb, cs float32) float32 {
	if cb > cs {
		return cb - cs
	}
	return cs - cb
}
