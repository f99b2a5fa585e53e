package audio

import (
	"testing"
	"time"
)

func TestRingLatestWrapsInOrder(t *testing.T) {
	r := newRing(4)
	r.write([]float32{1, 2, 3})
	r.write([]float32{4, 5})
	dst := make([]float32, 4)
	r.latest(dst)
	want := []float32{2, 3, 4, 5}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("latest=%v want=%v", dst, want)
		}
	}
}

func TestRingLatestShorterThanBuffer(t *testing.T) {
	r := newRing(8)
	r.write([]float32{1, 2, 3, 4, 5})
	dst := make([]float32, 2)
	r.latest(dst)
	if dst[0] != 4 || dst[1] != 5 {
		t.Fatalf("latest=%v want=[4 5]", dst)
	}
}

func TestRingLatestLongerThanBufferZeroPads(t *testing.T) {
	r := newRing(2)
	r.write([]float32{7, 8, 9})
	dst := []float32{5, 5, 5, 5}
	r.latest(dst)
	want := []float32{0, 0, 8, 9}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("latest=%v want=%v", dst, want)
		}
	}
}

func TestRingPush(t *testing.T) {
	r := newRing(3)
	for _, v := range []float32{1, 2, 3, 4} {
		r.push(v)
	}
	dst := make([]float32, 3)
	r.latest(dst)
	if dst[0] != 2 || dst[2] != 4 {
		t.Fatalf("latest=%v want=[2 3 4]", dst)
	}
}

func TestSynthProducesBoundedSignal(t *testing.T) {
	now := time.Unix(100, 0)
	s := newSynth(8000, func() time.Time { return now }, 1)
	now = now.Add(2 * time.Second)
	dst := s.Latest(make([]float32, 1024))
	nonZero := false
	for _, v := range dst {
		if v < -1.1 || v > 1.1 {
			t.Fatalf("sample out of range: %f", v)
		}
		if v != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Fatalf("synth produced silence")
	}
}
