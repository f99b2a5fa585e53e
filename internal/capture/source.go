// Package capture owns the frequency snapshot: it opens the audio input once,
// keeps the analyser in step with the style and refreshes the snapshot in
// place every frame.
package capture

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/guidoenr/ribbonviz/internal/analyzer"
	"github.com/guidoenr/ribbonviz/internal/style"
)

// ErrCaptureUnavailable reports that audio capture could not be started:
// no permission, no device, or an unusable audio stack.
var ErrCaptureUnavailable = errors.New("audio capture unavailable")

var errAlreadyStarted = errors.New("capture already started")

// Input is a running audio stream.
type Input interface {
	// Latest fills dst with the newest mono samples, oldest first.
	Latest(dst []float32) []float32
	SampleRate() float64
	Close() error
}

// Opener acquires the input. It is called at most once.
type Opener func() (Input, error)

// Source is the capture side of the frame loop.
type Source struct {
	open     Opener
	log      *log.Logger
	analyzer *analyzer.Analyzer

	input   Input
	samples []float32
	freqs   []byte
	started bool

	lastFFTErr string
}

// New returns an idle Source. cfg seeds the analyser before the first frame.
func New(open Opener, cfg style.Config, logger *log.Logger) (*Source, error) {
	if open == nil {
		return nil, errors.New("capture: nil opener")
	}
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	a, err := analyzer.New(analyzer.Config{FFTSize: 1 << 8})
	if err != nil {
		return nil, err
	}
	s := &Source{open: open, log: logger, analyzer: a}
	s.Sync(cfg)
	return s, nil
}

// Start acquires the input and allocates the snapshot. Failures are wrapped
// in ErrCaptureUnavailable and are final.
func (s *Source) Start() error {
	if s.started {
		return errAlreadyStarted
	}
	s.started = true

	input, err := s.open()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}
	if input == nil {
		return fmt.Errorf("%w: no input", ErrCaptureUnavailable)
	}
	s.input = input
	s.samples = make([]float32, analyzer.MaxFFTSize)
	s.freqs = make([]byte, s.analyzer.FrequencyBinCount())
	return nil
}

// Running reports whether an input is attached.
func (s *Source) Running() bool { return s.input != nil }

// SampleRate returns the input rate, or 0 before Start.
func (s *Source) SampleRate() float64 {
	if s.input == nil {
		return 0
	}
	return s.input.SampleRate()
}

// Sync copies the analyser settings from cfg. The analyser's max decibels is
// pinned at 0. Invalid sizes or ranges keep the previous setting and are
// logged once per distinct problem.
func (s *Source) Sync(cfg style.Config) {
	s.analyzer.SetSmoothing(cfg.Smoothing)

	var problems []string
	if err := s.analyzer.SetFFTSize(cfg.FFTSize()); err != nil {
		problems = append(problems, err.Error())
	}
	if err := s.analyzer.SetDecibels(cfg.MinDecibels, 0); err != nil {
		problems = append(problems, err.Error())
	}
	msg := fmt.Sprint(problems)
	if len(problems) > 0 && msg != s.lastFFTErr {
		s.log.Printf("analyser settings ignored: %s", msg)
	}
	s.lastFFTErr = msg
}

// Refresh analyses the newest samples into the snapshot and returns it. It
// returns nil before Start. The returned slice is reused every frame.
func (s *Source) Refresh() []byte {
	if s.input == nil {
		return nil
	}
	n := s.analyzer.FFTSize()
	window := s.input.Latest(s.samples[len(s.samples)-n:])
	s.analyzer.ByteFrequencyData(window, s.freqs)
	return s.freqs
}

// Snapshot returns the current snapshot without refreshing it.
func (s *Source) Snapshot() []byte { return s.freqs }

// Close releases the input.
func (s *Source) Close() error {
	if s.input == nil {
		return nil
	}
	err := s.input.Close()
	s.input = nil
	return err
}
