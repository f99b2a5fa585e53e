package analyzer

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

const (
	MinFFTSize = 32
	MaxFFTSize = 32768

	defaultFFTSize     = 2048
	defaultSmoothing   = 0.8
	defaultMinDecibels = -100
	defaultMaxDecibels = -30
)

// Analyzer converts time-domain samples into byte frequency magnitudes the
// way a browser analyser node does: Blackman window, FFT, time smoothing and
// decibel scaling.
type Analyzer struct {
	fftSize     int
	smoothing   float64
	minDecibels float64
	maxDecibels float64

	window   []float64
	input    []float64
	smoothed []float64
}

// Config controls Analyzer behavior.
type Config struct {
	FFTSize     int
	Smoothing   float64
	MinDecibels float64
	MaxDecibels float64
}

// New creates an Analyzer. Zero fields take analyser defaults.
func New(cfg Config) (*Analyzer, error) {
	if cfg.FFTSize == 0 {
		cfg.FFTSize = defaultFFTSize
	}
	if cfg.MinDecibels == 0 && cfg.MaxDecibels == 0 {
		cfg.MinDecibels = defaultMinDecibels
		cfg.MaxDecibels = defaultMaxDecibels
	}
	a := &Analyzer{smoothing: defaultSmoothing}
	if err := a.SetFFTSize(cfg.FFTSize); err != nil {
		return nil, err
	}
	if cfg.Smoothing != 0 {
		a.SetSmoothing(cfg.Smoothing)
	}
	if err := a.SetDecibels(cfg.MinDecibels, cfg.MaxDecibels); err != nil {
		return nil, err
	}
	return a, nil
}

// FFTSize returns the current transform size.
func (a *Analyzer) FFTSize() int { return a.fftSize }

// FrequencyBinCount is half the FFT size.
func (a *Analyzer) FrequencyBinCount() int { return a.fftSize / 2 }

// Smoothing returns the time smoothing constant.
func (a *Analyzer) Smoothing() float64 { return a.smoothing }

// Decibels returns the byte scaling range.
func (a *Analyzer) Decibels() (min, max float64) { return a.minDecibels, a.maxDecibels }

// SetFFTSize changes the transform size. n must be a power of two between
// MinFFTSize and MaxFFTSize. Changing the size drops the smoothing history.
func (a *Analyzer) SetFFTSize(n int) error {
	if n < MinFFTSize || n > MaxFFTSize || n != nextPow2(n) {
		return fmt.Errorf("fft size %d: must be a power of two in [%d, %d]", n, MinFFTSize, MaxFFTSize)
	}
	if n == a.fftSize {
		return nil
	}
	a.fftSize = n
	a.window = window.Blackman(n)
	a.input = make([]float64, n)
	a.smoothed = make([]float64, n/2)
	return nil
}

// SetSmoothing sets the time smoothing constant. Values outside [0,1] are
// clamped.
func (a *Analyzer) SetSmoothing(v float64) {
	a.smoothing = clamp(v, 0, 1)
}

// SetDecibels sets the byte scaling range. min must be below max.
func (a *Analyzer) SetDecibels(min, max float64) error {
	if min >= max {
		return fmt.Errorf("decibel range [%.1f, %.1f]: min must be below max", min, max)
	}
	a.minDecibels = min
	a.maxDecibels = max
	return nil
}

// ByteFrequencyData analyses the newest FFTSize samples and writes one byte
// per bin into dst, up to len(dst) bins. Missing history is treated as
// silence.
func (a *Analyzer) ByteFrequencyData(samples []float32, dst []byte) {
	n := a.fftSize
	input := a.input
	offset := len(samples) - n
	for i := 0; i < n; i++ {
		j := offset + i
		if j < 0 {
			input[i] = 0
			continue
		}
		input[i] = float64(samples[j]) * a.window[i]
	}

	spectrum := fft.FFTReal(input)

	tau := a.smoothing
	scale := 1.0 / float64(n)
	for k := range a.smoothed {
		mag := cmag(spectrum[k]) * scale
		v := tau*a.smoothed[k] + (1-tau)*mag
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		a.smoothed[k] = v
	}

	rangeScale := 255 / (a.maxDecibels - a.minDecibels)
	for k := 0; k < len(dst) && k < len(a.smoothed); k++ {
		db := linearToDecibels(a.smoothed[k])
		scaled := rangeScale * (db - a.minDecibels)
		dst[k] = byte(clamp(math.Floor(scaled), 0, 255))
	}
}

func linearToDecibels(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}

func cmag(c complex128) float64 {
	return math.Sqrt(real(c)*real(c) + imag(c)*imag(c))
}

func nextPow2(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	return n + 1
}

func clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
