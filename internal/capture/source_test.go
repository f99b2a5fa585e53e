package capture

import (
	"errors"
	"io"
	"log"
	"math"
	"testing"

	"github.com/guidoenr/ribbonviz/internal/style"
)

type toneInput struct {
	freq   float64
	rate   float64
	closed bool
}

func (in *toneInput) Latest(dst []float32) []float32 {
	for i := range dst {
		dst[i] = float32(math.Sin(2 * math.Pi * in.freq * float64(i) / in.rate))
	}
	return dst
}

func (in *toneInput) SampleRate() float64 { return in.rate }

func (in *toneInput) Close() error {
	in.closed = true
	return nil
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestRefreshBeforeStartReturnsNil(t *testing.T) {
	s, err := New(func() (Input, error) { return &toneInput{freq: 440, rate: 44100}, nil }, style.Defaults(), quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := s.Refresh(); got != nil {
		t.Fatalf("expected nil snapshot before start, got %d bins", len(got))
	}
	if s.Running() {
		t.Fatalf("source running before start")
	}
}

func TestStartFailureIsCaptureUnavailable(t *testing.T) {
	denied := errors.New("permission denied")
	s, err := New(func() (Input, error) { return nil, denied }, style.Defaults(), quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = s.Start()
	if !errors.Is(err, ErrCaptureUnavailable) {
		t.Fatalf("Start error=%v, want ErrCaptureUnavailable", err)
	}
	if s.Refresh() != nil {
		t.Fatalf("failed source must not produce a snapshot")
	}
	if err := s.Start(); err == nil || errors.Is(err, ErrCaptureUnavailable) {
		t.Fatalf("second Start must fail as already started, got %v", err)
	}
}

func TestSnapshotSizedToBinCountAndReused(t *testing.T) {
	in := &toneInput{freq: 1000, rate: 44100}
	s, err := New(func() (Input, error) { return in, nil }, style.Defaults(), quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	first := s.Refresh()
	if len(first) != 128 {
		t.Fatalf("snapshot length=%d want=128", len(first))
	}
	second := s.Refresh()
	if &first[0] != &second[0] {
		t.Fatalf("snapshot must be refreshed in place")
	}
	nonZero := false
	for _, v := range second {
		if v != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatalf("tone produced an empty spectrum")
	}
	if err := s.Close(); err != nil || !in.closed {
		t.Fatalf("Close: err=%v closed=%v", err, in.closed)
	}
}

func TestSyncKeepsSnapshotLength(t *testing.T) {
	s, err := New(func() (Input, error) { return &toneInput{freq: 500, rate: 44100}, nil }, style.Defaults(), quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cfg := style.Defaults()
	cfg.FFTExponent = 11
	s.Sync(cfg)
	if got := len(s.Refresh()); got != 128 {
		t.Fatalf("snapshot resized to %d", got)
	}
	cfg.FFTExponent = 3
	s.Sync(cfg)
	if s.analyzer.FFTSize() != 2048 {
		t.Fatalf("invalid size must keep the previous one, got %d", s.analyzer.FFTSize())
	}
}

func TestSyncPinsMaxDecibels(t *testing.T) {
	s, err := New(func() (Input, error) { return nil, nil }, style.Defaults(), quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cfg := style.Defaults()
	cfg.MinDecibels = -55
	cfg.Smoothing = 0.25
	s.Sync(cfg)
	min, max := s.analyzer.Decibels()
	if min != -55 || max != 0 {
		t.Fatalf("decibels=[%f,%f] want=[-55,0]", min, max)
	}
	if s.analyzer.Smoothing() != 0.25 {
		t.Fatalf("smoothing=%f", s.analyzer.Smoothing())
	}
}
