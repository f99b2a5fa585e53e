package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/eiannone/keyboard"

	"github.com/guidoenr/ribbonviz/internal/analyzer"
	"github.com/guidoenr/ribbonviz/internal/capture"
	"github.com/guidoenr/ribbonviz/internal/loop"
	"github.com/guidoenr/ribbonviz/internal/render"
	"github.com/guidoenr/ribbonviz/internal/style"
)

const (
	// PromptMessage is shown until capture is started.
	PromptMessage = "Press Enter (or Start in the panel) to begin capturing audio"
	// FailureMessage replaces every surface when capture cannot start.
	FailureMessage = "Audio capture is unavailable. Allow microphone access for this program and check the input device, then restart."
)

// Config configures the application runtime.
type Config struct {
	TargetFPS     float64
	ShowStatusBar bool
	// Keyboard enables Enter to start and q/Esc/Ctrl-C to quit.
	Keyboard bool
	// AutoStart starts capture without waiting for Enter or the panel.
	AutoStart   bool
	DeviceLabel string
	ProfilePath string
	Log         *log.Logger
}

// statusReporter is implemented by presenters that show frame statistics
// outside the status line.
type statusReporter interface {
	ReportStatus(fps float64, levels analyzer.Levels, text string)
}

// idler is implemented by presenters that must keep servicing their surface
// on ticks where no frame is presented.
type idler interface {
	Idle() error
}

// startNotifier is implemented by presenters that offer their own start
// control.
type startNotifier interface {
	OnStart(fn func())
}

// App ties together audio capture, rendering and the presenters. It is the
// RenderLoop driven once per display frame.
type App struct {
	cfg       Config
	style     *style.Handle
	source    *capture.Source
	renderer  *render.Renderer
	presenter render.Presenter
	reporters []statusReporter
	idlers    []idler
	ticker    *loop.Ticker
	log       *log.Logger
	prof      *profiler

	startOnce sync.Once
	startReq  chan struct{}
	failed    bool
	last      time.Time
	fps       float64
	now       func() time.Time
}

var _ loop.RenderLoop = (*App)(nil)

// New constructs the application. Capture is opened through open only once
// Start is called.
func New(cfg Config, handle *style.Handle, open capture.Opener, presenters ...render.Presenter) (*App, error) {
	if cfg.TargetFPS <= 0 {
		cfg.TargetFPS = 60
	}
	if cfg.Log == nil {
		cfg.Log = log.New(os.Stdout, "", log.LstdFlags)
	}
	if handle == nil {
		handle = style.NewHandle(style.Defaults())
	}

	source, err := capture.New(open, handle.Snapshot(), cfg.Log)
	if err != nil {
		return nil, err
	}
	renderer, err := render.New(render.Width, render.Height)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:       cfg,
		style:     handle,
		source:    source,
		renderer:  renderer,
		presenter: render.Multi(presenters),
		log:       cfg.Log,
		prof:      newProfiler(cfg.ProfilePath, cfg.Log),
		startReq:  make(chan struct{}, 1),
		now:       time.Now,
	}
	for _, p := range presenters {
		if r, ok := p.(statusReporter); ok {
			a.reporters = append(a.reporters, r)
		}
		if i, ok := p.(idler); ok {
			a.idlers = append(a.idlers, i)
		}
		if n, ok := p.(startNotifier); ok {
			n.OnStart(a.Start)
		}
	}
	a.ticker = loop.NewTicker(cfg.TargetFPS, a.frame)
	return a, nil
}

// Start requests capture. Only the first call has an effect; the capture is
// opened on the render goroutine at the next tick.
func (a *App) Start() {
	a.startOnce.Do(func() {
		a.startReq <- struct{}{}
	})
}

// Run shows the start prompt and drives frames until Stop or ctx ends.
func (a *App) Run(ctx context.Context) error {
	if err := a.presenter.Prompt(PromptMessage); err != nil {
		a.log.Printf("prompt: %v", err)
	}
	if a.cfg.AutoStart {
		a.Start()
	}

	inputCtx, cancelInput := context.WithCancel(ctx)
	defer cancelInput()
	if a.cfg.Keyboard {
		a.startInputListener(inputCtx)
	}

	return a.ticker.Run(ctx)
}

// Tick renders one frame.
func (a *App) Tick() { a.ticker.Tick() }

// Stop ends Run.
func (a *App) Stop() { a.ticker.Stop() }

// Close releases held resources.
func (a *App) Close() error {
	var errs []error
	if err := a.source.Close(); err != nil {
		errs = append(errs, fmt.Errorf("capture: %w", err))
	}
	if err := a.presenter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("presenter: %w", err))
	}
	if err := a.prof.Close(); err != nil {
		errs = append(errs, fmt.Errorf("profiler: %w", err))
	}
	return errors.Join(errs...)
}

// Failed reports whether capture failed to start.
func (a *App) Failed() bool { return a.failed }

func (a *App) frame() {
	select {
	case <-a.startReq:
		a.begin()
	default:
	}
	if a.failed {
		a.idle()
		return
	}

	a.prof.beginFrame()
	defer a.prof.endFrame()

	cfg := a.style.Snapshot()
	a.source.Sync(cfg)
	snapshot := a.source.Refresh()
	a.prof.markSection("analyse")
	if snapshot == nil {
		a.idle()
		return
	}

	a.renderer.RenderFrame(cfg, snapshot)
	a.prof.markSection("render")

	fps := a.measureFPS()
	levels := analyzer.Summarize(snapshot)
	status := ""
	if a.cfg.ShowStatusBar || len(a.reporters) > 0 {
		status = a.buildStatus(cfg, levels, fps)
	}
	if err := a.presenter.Present(a.renderer.Image(), status); err != nil {
		if errors.Is(err, render.ErrRendererQuit) {
			a.Stop()
			return
		}
		a.log.Printf("present: %v", err)
	}
	for _, r := range a.reporters {
		r.ReportStatus(fps, levels, status)
	}
	a.prof.markSection("present")
}

func (a *App) idle() {
	for _, i := range a.idlers {
		err := i.Idle()
		if errors.Is(err, render.ErrRendererQuit) {
			a.Stop()
			return
		}
		if err != nil {
			a.log.Printf("idle: %v", err)
		}
	}
}

// begin makes the single capture attempt. Failure is final: every surface
// shows FailureMessage and no frame is drawn afterwards.
func (a *App) begin() {
	if err := a.source.Start(); err != nil {
		a.failed = true
		a.log.Printf("capture failed: %v", err)
		if err := a.presenter.Fail(FailureMessage); err != nil {
			a.log.Printf("present failure: %v", err)
		}
		return
	}
	if a.cfg.DeviceLabel != "" {
		a.log.Printf("audio capture started on \"%s\" @ %.0f Hz", a.cfg.DeviceLabel, a.source.SampleRate())
	} else {
		a.log.Printf("audio capture started @ %.0f Hz", a.source.SampleRate())
	}
	a.last = time.Time{}
}

func (a *App) measureFPS() float64 {
	now := a.now()
	if !a.last.IsZero() {
		if delta := now.Sub(a.last).Seconds(); delta > 0 {
			inst := 1 / delta
			if a.fps == 0 {
				a.fps = inst
			} else {
				a.fps = a.fps*0.9 + inst*0.1
			}
		}
	}
	a.last = now
	return a.fps
}

func (a *App) buildStatus(cfg style.Config, lv analyzer.Levels, fps float64) string {
	status := fmt.Sprintf("fps %.1f | low %.2f mid %.2f high %.2f | fft %d | blend %s",
		fps, lv.Low, lv.Mid, lv.High, cfg.FFTSize(), cfg.Blend)
	if a.cfg.DeviceLabel != "" {
		status = fmt.Sprintf("%s | mic=%s", status, a.cfg.DeviceLabel)
	}
	return status
}

func (a *App) startInputListener(ctx context.Context) {
	if err := keyboard.Open(); err != nil {
		a.log.Printf("keyboard input disabled: %v", err)
		return
	}

	closeOnce := &sync.Once{}
	go func() {
		<-ctx.Done()
		closeOnce.Do(func() {
			_ = keyboard.Close()
		})
	}()

	go func() {
		defer closeOnce.Do(func() {
			_ = keyboard.Close()
		})
		for {
			char, key, err := keyboard.GetKey()
			if err != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
			switch {
			case key == keyboard.KeyEsc || key == keyboard.KeyCtrlC:
				a.Stop()
				return
			case char == 'q' || char == 'Q':
				a.Stop()
				return
			case key == keyboard.KeyEnter:
				a.Start()
			}
		}
	}()
}
