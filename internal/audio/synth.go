package audio

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Synth is a synthetic input used when no microphone is wanted. It produces
// a few partials whose levels drift slowly so the ribbons keep moving.
type Synth struct {
	sampleRate float64
	now        func() time.Time
	start      time.Time

	mu       sync.Mutex
	rng      *rand.Rand
	partials []partial
}

type partial struct {
	freq  float64
	rate  float64
	phase float64
}

// NewSynth returns a synthetic source at sampleRate (44.1 kHz if zero).
func NewSynth(sampleRate float64) *Synth {
	return newSynth(sampleRate, time.Now, time.Now().UnixNano())
}

func newSynth(sampleRate float64, now func() time.Time, seed int64) *Synth {
	if sampleRate <= 0 {
		sampleRate = 44_100
	}
	rng := rand.New(rand.NewSource(seed))
	s := &Synth{
		sampleRate: sampleRate,
		now:        now,
		start:      now(),
		rng:        rng,
	}
	for _, f := range []float64{110, 220, 440, 660, 1320, 2640} {
		s.partials = append(s.partials, partial{
			freq:  f * (0.95 + rng.Float64()*0.1),
			rate:  0.3 + rng.Float64()*1.5,
			phase: rng.Float64() * 2 * math.Pi,
		})
	}
	return s
}

// SampleRate returns the synthetic sample rate.
func (s *Synth) SampleRate() float64 { return s.sampleRate }

// Latest fills dst with the samples ending at the current time.
func (s *Synth) Latest(dst []float32) []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	end := s.now().Sub(s.start).Seconds()
	n := len(dst)
	for i := range dst {
		t := end - float64(n-1-i)/s.sampleRate
		v := 0.0
		for _, p := range s.partials {
			level := 0.5 + 0.5*math.Sin(t*p.rate+p.phase)
			v += level * math.Sin(2*math.Pi*p.freq*t)
		}
		v /= float64(len(s.partials))
		v += (s.rng.Float64() - 0.5) * 0.01
		dst[i] = float32(v)
	}
	return dst
}

// Close is a no-op.
func (s *Synth) Close() error { return nil }
