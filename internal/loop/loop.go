package loop

import (
	"context"
	"sync"
	"time"
)

// RenderLoop is driven once per display frame until stopped.
type RenderLoop interface {
	Tick()
	Stop()
}

// Ticker runs a tick function at a fixed rate on a single goroutine, so
// frames never overlap.
type Ticker struct {
	interval time.Duration
	tick     func()

	stop     chan struct{}
	stopOnce sync.Once

	mu     sync.Mutex
	frames uint64
}

// NewTicker returns a Ticker calling tick fps times per second. Non-positive
// rates fall back to 60.
func NewTicker(fps float64, tick func()) *Ticker {
	if fps <= 0 {
		fps = 60
	}
	return &Ticker{
		interval: time.Duration(float64(time.Second) / fps),
		tick:     tick,
		stop:     make(chan struct{}),
	}
}

// Interval returns the time between ticks.
func (t *Ticker) Interval() time.Duration { return t.interval }

// Tick runs one frame immediately.
func (t *Ticker) Tick() {
	t.tick()
	t.mu.Lock()
	t.frames++
	t.mu.Unlock()
}

// Frames returns the number of frames run so far.
func (t *Ticker) Frames() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames
}

// Stop ends Run. It is safe to call more than once.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Done is closed once Stop is called.
func (t *Ticker) Done() <-chan struct{} { return t.stop }

// Run ticks until Stop is called or ctx ends. It returns nil after Stop and
// ctx.Err() after cancellation.
func (t *Ticker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.stop:
			return nil
		case <-ticker.C:
			select {
			case <-t.stop:
				return nil
			default:
			}
			t.Tick()
		}
	}
}
