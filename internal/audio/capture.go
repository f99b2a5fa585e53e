package audio

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Capture wraps a PortAudio input stream and keeps the newest mono samples in
// a ring buffer.
type Capture struct {
	stream     *portaudio.Stream
	sampleRate float64
	channels   int
	device     *portaudio.DeviceInfo

	mu   sync.RWMutex
	ring ring
}

// Config controls how a Capture instance is created.
type Config struct {
	DeviceName string
	// BufferSize is the number of mono samples retained. It bounds the
	// largest FFT the analyser can run.
	BufferSize int
	Channels   int
}

const (
	defaultBufferSize = 32768
	framesPerBuffer   = 512
)

// NewCapture opens and starts a PortAudio input stream.
func NewCapture(cfg Config) (*Capture, error) {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}

	device, err := findDevice(cfg.DeviceName)
	if err != nil {
		return nil, err
	}
	channels := cfg.Channels
	if device.MaxInputChannels < channels {
		channels = device.MaxInputChannels
	}

	capture := &Capture{
		sampleRate: device.DefaultSampleRate,
		channels:   channels,
		device:     device,
		ring:       newRing(cfg.BufferSize),
	}

	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: channels,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      capture.sampleRate,
		FramesPerBuffer: framesPerBuffer,
	}, capture.process)
	if err != nil {
		return nil, fmt.Errorf("open stream on %q: %w", device.Name, err)
	}
	capture.stream = stream

	if err := capture.stream.Start(); err != nil {
		_ = capture.stream.Close()
		return nil, fmt.Errorf("start stream on %q: %w", device.Name, err)
	}

	return capture, nil
}

// Close stops and closes the underlying PortAudio stream.
func (c *Capture) Close() error {
	if c.stream == nil {
		return nil
	}
	if err := c.stream.Stop(); err != nil && !errorsIsInvalidStreamState(err) {
		return err
	}
	return c.stream.Close()
}

// SampleRate returns the stream sample rate.
func (c *Capture) SampleRate() float64 {
	return c.sampleRate
}

// Device returns the PortAudio device associated with the capture stream.
func (c *Capture) Device() *portaudio.DeviceInfo {
	return c.device
}

// Latest fills dst with the newest samples, oldest first, and returns it.
func (c *Capture) Latest(dst []float32) []float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.ring.latest(dst)
	return dst
}

func (c *Capture) process(in []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channels <= 1 {
		c.ring.write(in)
		return
	}
	frames := len(in) / c.channels
	for i := 0; i < frames; i++ {
		sum := float32(0)
		base := i * c.channels
		for ch := 0; ch < c.channels; ch++ {
			sum += in[base+ch]
		}
		c.ring.push(sum / float32(c.channels))
	}
}

// ring is a fixed-size sample history.
type ring struct {
	buf   []float32
	index int
}

func newRing(size int) ring {
	return ring{buf: make([]float32, size)}
}

func (r *ring) push(v float32) {
	r.buf[r.index] = v
	r.index++
	if r.index == len(r.buf) {
		r.index = 0
	}
}

func (r *ring) write(in []float32) {
	if len(in) == 0 {
		return
	}
	if len(in) >= len(r.buf) {
		copy(r.buf, in[len(in)-len(r.buf):])
		r.index = 0
		return
	}
	n := copy(r.buf[r.index:], in)
	if n < len(in) {
		copy(r.buf, in[n:])
	}
	r.index = (r.index + len(in)) % len(r.buf)
}

// latest copies the newest len(dst) samples into dst. If dst is longer than
// the ring the leading part is zeroed.
func (r *ring) latest(dst []float32) {
	size := len(r.buf)
	n := len(dst)
	if n > size {
		for i := range dst[:n-size] {
			dst[i] = 0
		}
		dst = dst[n-size:]
		n = size
	}
	start := r.index - n
	if start < 0 {
		start += size
	}
	k := copy(dst, r.buf[start:])
	if k < n {
		copy(dst[k:], r.buf[:n-k])
	}
}

func findDevice(name string) (*portaudio.DeviceInfo, error) {
	if name != "" {
		return findDeviceByName(name)
	}

	if dev, err := portaudio.DefaultInputDevice(); err == nil && dev != nil && dev.MaxInputChannels > 0 {
		return dev, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list audio devices: %w", err)
	}

	if candidate := pickBestDevice(devices); candidate != nil {
		return candidate, nil
	}

	return nil, fmt.Errorf("no microphone input device found")
}

func findDeviceByName(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list audio devices: %w", err)
	}

	needle := strings.ToLower(name)
	for _, device := range devices {
		if device.MaxInputChannels == 0 {
			continue
		}
		if strings.Contains(strings.ToLower(device.Name), needle) {
			return device, nil
		}
	}

	return nil, fmt.Errorf("audio device %q not found", name)
}

// pickBestDevice prefers microphones over loopback/monitor sources.
func pickBestDevice(devices []*portaudio.DeviceInfo) *portaudio.DeviceInfo {
	type scored struct {
		dev   *portaudio.DeviceInfo
		score int
	}

	var (
		results  []scored
		mics     = []string{"mic", "microphone", "input", "capture", "headset"}
		loopback = []string{"monitor", "loopback", "stereo mix", "what u hear"}
	)

	for _, d := range devices {
		if d == nil || d.MaxInputChannels <= 0 {
			continue
		}
		score := 0
		lower := strings.ToLower(d.Name)
		for _, kw := range mics {
			if strings.Contains(lower, kw) {
				score += 20
				break
			}
		}
		for _, kw := range loopback {
			if strings.Contains(lower, kw) {
				score -= 30
				break
			}
		}
		if strings.Contains(lower, "default") {
			score += 10
		}
		results = append(results, scored{dev: d, score: score})
	}

	if len(results) == 0 {
		return nil
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score == results[j].score {
			return strings.ToLower(results[i].dev.Name) < strings.ToLower(results[j].dev.Name)
		}
		return results[i].score > results[j].score
	})

	return results[0].dev
}

// errorsIsInvalidStreamState checks if the provided error stems from stopping an already stopped stream.
func errorsIsInvalidStreamState(err error) bool {
	if err == nil {
		return false
	}
	const invalidStateMsg = "PaErrorCode -9986"
	return strings.Contains(err.Error(), invalidStateMsg)
}

// AutoDetectDevice returns the input device NewCapture would pick by default.
func AutoDetectDevice() (*portaudio.DeviceInfo, error) {
	return findDevice("")
}
