package style

import (
	"encoding/json"
	"testing"
)

func TestColorFloorsComponents(t *testing.T) {
	cfg := Defaults()
	cfg.Color1 = RGB{203.9, 36.2, 128.0}
	got := cfg.Color(0)
	want := [3]uint8{203, 36, 128}
	if got != want {
		t.Fatalf("Color(0)=%v want=%v", got, want)
	}
}

func TestColorPerChannel(t *testing.T) {
	cfg := Defaults()
	if got := cfg.Color(1); got != [3]uint8{41, 200, 192} {
		t.Fatalf("Color(1)=%v", got)
	}
	if got := cfg.Color(2); got != [3]uint8{24, 137, 218} {
		t.Fatalf("Color(2)=%v", got)
	}
}

func TestBlendOperator(t *testing.T) {
	if got := BlendNormal.Operator(); got != "source-over" {
		t.Fatalf("normal maps to %q", got)
	}
	for _, name := range BlendModeNames() {
		if name == string(BlendNormal) {
			continue
		}
		if got := BlendMode(name).Operator(); got != name {
			t.Fatalf("%s maps to %q", name, got)
		}
	}
	if got := BlendMode("bogus").Operator(); got != "source-over" {
		t.Fatalf("unknown mode maps to %q", got)
	}
}

func TestFFTSize(t *testing.T) {
	cfg := Defaults()
	if got := cfg.FFTSize(); got != 256 {
		t.Fatalf("FFTSize=%d want=256", got)
	}
}

func TestMergePassesValuesThrough(t *testing.T) {
	cfg := Defaults()
	var p Patch
	if err := json.Unmarshal([]byte(`{"amp": 9, "blend": "difference", "color2": [1.5, 2, 3]}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	cfg.Merge(p)
	if cfg.Amplitude != 9 {
		t.Fatalf("amp=%f, out-of-range values must be kept", cfg.Amplitude)
	}
	if cfg.Blend != BlendDifference {
		t.Fatalf("blend=%s", cfg.Blend)
	}
	if cfg.Color2 != (RGB{1.5, 2, 3}) {
		t.Fatalf("color2=%v", cfg.Color2)
	}
	if cfg.Shift != 50 {
		t.Fatalf("shift changed to %f", cfg.Shift)
	}
}

func TestHandleSnapshotIsCopy(t *testing.T) {
	h := NewHandle(Defaults())
	snap := h.Snapshot()
	h.Update(func(c *Config) { c.Glow = 42 })
	if snap.Glow != 10 {
		t.Fatalf("snapshot changed after update: %f", snap.Glow)
	}
	if got := h.Snapshot().Glow; got != 42 {
		t.Fatalf("update not visible: %f", got)
	}
}

func TestControlsOmitFFT(t *testing.T) {
	for _, c := range Controls() {
		if c.Key == "fft" {
			t.Fatalf("fft exponent must not be a panel control")
		}
	}
	if len(Controls()) != 12 {
		t.Fatalf("expected 12 controls, got %d", len(Controls()))
	}
}
