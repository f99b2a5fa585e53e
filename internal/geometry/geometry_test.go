package geometry

import (
	"math"
	"reflect"
	"testing"
)

func TestBandsAreInjective(t *testing.T) {
	seen := make(map[int][2]int)
	for ch := 0; ch < Channels; ch++ {
		for i := 0; i < Slots; i++ {
			b := Band(ch, i)
			if prev, ok := seen[b]; ok {
				t.Fatalf("bin %d read by %v and (%d,%d)", b, prev, ch, i)
			}
			seen[b] = [2]int{ch, i}
		}
	}
	if len(seen) != Channels*Slots {
		t.Fatalf("expected %d distinct bins, got %d", Channels*Slots, len(seen))
	}
}

func TestWeightSymmetricWithCentreMax(t *testing.T) {
	for i := 0; i < Slots; i++ {
		if Weight(i, 1.7) != Weight(Slots-1-i, 1.7) {
			t.Fatalf("weight(%d) != weight(%d)", i, Slots-1-i)
		}
		if Weight(i, 1) > Weight(2, 1) {
			t.Fatalf("weight(%d) exceeds centre weight", i)
		}
	}
	if Weight(2, 2) != 2 {
		t.Fatalf("centre weight=%f want=2", Weight(2, 2))
	}
	if math.Abs(Weight(0, 3)-1) > 1e-9 {
		t.Fatalf("edge weight=%f want=1", Weight(0, 3))
	}
}

func TestYsNeverNegative(t *testing.T) {
	for _, amp := range []float64{0, 0.5, 1, 2.5, 5} {
		for mag := 0; mag <= 255; mag += 15 {
			var mags [Slots]float64
			for i := range mags {
				mags[i] = float64(mag)
			}
			for i, y := range Ys(mags, amp, 200) {
				if y < 0 {
					t.Fatalf("y[%d]=%f for amp=%f mag=%d", i, y, amp, mag)
				}
			}
		}
	}
}

func TestZeroAmplitudeIsFlat(t *testing.T) {
	mags := [Slots]float64{255, 12, 200, 99, 1}
	for i, y := range Ys(mags, 0, 200) {
		if y != 200 {
			t.Fatalf("y[%d]=%f want=200", i, y)
		}
	}
}

func TestXsCentred(t *testing.T) {
	xs := Xs(1000, 60, 50, 0)
	if xs[0] != 50 {
		t.Fatalf("left margin=%f want=50", xs[0])
	}
	if right := 1000 - (xs[Points-1] + 60); right != 50 {
		t.Fatalf("right margin=%f want=50", right)
	}
}

func TestXsShiftPerChannel(t *testing.T) {
	base := Xs(1000, 60, 50, 0)
	shifted := Xs(1000, 60, 50, 1)
	for i := range base {
		if shifted[i] != base[i]+50 {
			t.Fatalf("x[%d]=%f want=%f", i, shifted[i], base[i]+50)
		}
	}
}

func TestZeroSegmentWidthCollapses(t *testing.T) {
	xs := Xs(1000, 0, 0, 0)
	for i, x := range xs {
		if x != 500 {
			t.Fatalf("x[%d]=%f want=500", i, x)
		}
	}
	p := Channel(nil, 0, Params{Width: 1000, Height: 400, Amplitude: 1})
	if len(p.Flatten(8)) == 0 {
		t.Fatalf("degenerate path flattened to nothing")
	}
}

func TestMagnitudesWithoutSnapshot(t *testing.T) {
	if got := Magnitudes(nil, 2); got != ([Slots]float64{}) {
		t.Fatalf("expected zeros, got %v", got)
	}
}

func TestMagnitudesReadShuffledBins(t *testing.T) {
	snap := make([]byte, 128)
	for i := range snap {
		snap[i] = byte(i)
	}
	got := Magnitudes(snap, 1)
	want := [Slots]float64{8, 20, 2, 26, 14}
	if got != want {
		t.Fatalf("Magnitudes=%v want=%v", got, want)
	}
}

func TestPathShape(t *testing.T) {
	p := Channel(nil, 0, Params{Width: 1000, Height: 400, Amplitude: 1, SegmentWidth: 60})
	cubes := 0
	for _, seg := range p {
		if seg.Op == OpCube {
			cubes++
		}
	}
	if cubes != 12 {
		t.Fatalf("cubic segments=%d want=12", cubes)
	}
	if p[0].Op != OpMove || p[0].Points[0] != (Point{0, 200}) {
		t.Fatalf("path must start at the left centre, got %+v", p[0])
	}
	if p[len(p)-1].Op != OpClose {
		t.Fatalf("path must be closed")
	}
}

func TestPathIdempotent(t *testing.T) {
	snap := make([]byte, 128)
	for i := range snap {
		snap[i] = byte(255 - i)
	}
	params := Params{Width: 1000, Height: 400, Amplitude: 2, SegmentWidth: 40, Shift: 30}
	a := Channel(snap, 2, params)
	b := Channel(snap, 2, params)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("path differs between identical calls")
	}
}

func TestLowerMirrorReflects(t *testing.T) {
	snap := make([]byte, 128)
	snap[Band(0, 2)] = 100
	g := Compute(snap, 0, Params{Width: 1000, Height: 400, Amplitude: 1, SegmentWidth: 60})
	if g.Y[2] != 100 {
		t.Fatalf("y[2]=%f want=100", g.Y[2])
	}
	p := g.Path(1000, 400)
	var lower []Point
	for _, seg := range p[10:] {
		if seg.Op == OpCube {
			lower = append(lower, seg.Points[2])
		}
	}
	if len(lower) != 6 || lower[2].Y != 300 {
		t.Fatalf("lower mirror ends=%v", lower)
	}
}
