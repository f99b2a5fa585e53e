package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/guidoenr/ribbonviz/internal/app"
	"github.com/guidoenr/ribbonviz/internal/audio"
	"github.com/guidoenr/ribbonviz/internal/capture"
	"github.com/guidoenr/ribbonviz/internal/config"
	"github.com/guidoenr/ribbonviz/internal/render"
	"github.com/guidoenr/ribbonviz/internal/style"
	"github.com/guidoenr/ribbonviz/internal/web"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (default: ~/.config/ribbonviz/config.yaml)")
		deviceName = flag.String("audio-device", "", "Optional PortAudio device name (substring match)")
		targetFPS  = flag.Float64("fps", 60, "Target frames per second")
		bufferSize = flag.Int("buffer-size", 32768, "Samples kept from the input (bounds the FFT size)")
		noAudio    = flag.Bool("no-audio", false, "Run with synthetic audio (for testing)")
		debug      = flag.Bool("debug", false, "Enable verbose logging")
		backend    = flag.String("backend", "terminal", "Display backend (terminal|sdl|none)")
		webPort    = flag.Int("web-port", 8080, "Tuning panel port (0 disables)")
		showStatus = flag.Bool("status", true, "Display status bar")
		palette    = flag.String("palette", "default", "Glyph palette without color (default|box|lines|spark)")
		listDevs   = flag.Bool("list-audio-devices", false, "List available audio input devices and exit")
		noColor    = flag.Bool("no-color", false, "Disable ANSI color output")
		logFile    = flag.String("log-file", "", "Write logs to a rotating file")
		profile    = flag.String("profile", "", "Append per-frame timings as CSV to this file")
		autoStart  = flag.Bool("autostart", false, "Start capturing without waiting for Enter")
	)

	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		if err := cfg.LoadFromFile(*configPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	} else if path, err := cfg.TryLoadDefault(); err != nil {
		log.Fatalf("load config %s: %v", path, err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "audio-device":
			cfg.Audio.Device = *deviceName
		case "fps":
			cfg.Display.FPS = *targetFPS
		case "buffer-size":
			cfg.Audio.BufferSize = *bufferSize
		case "no-audio":
			cfg.Audio.Disabled = *noAudio
		case "debug":
			cfg.Log.Debug = *debug
		case "backend":
			cfg.Display.Backend = *backend
		case "web-port":
			cfg.Web.Port = *webPort
		case "status":
			cfg.Display.ShowStatus = *showStatus
		case "palette":
			cfg.Display.Palette = *palette
		case "no-color":
			cfg.Display.Color = !*noColor
		case "log-file":
			cfg.Log.File = *logFile
		}
	})

	if cfg.Display.FPS <= 0 {
		log.Fatalf("fps must be positive (got %.2f)", cfg.Display.FPS)
	}
	if cfg.Audio.BufferSize <= 0 {
		log.Fatalf("buffer-size must be positive (got %d)", cfg.Audio.BufferSize)
	}

	logger := newLogger(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *listDevs {
		if err := audio.Initialize(); err != nil {
			logger.Fatalf("failed to initialize PortAudio: %v", err)
		}
		defer audio.Terminate()
		listDevices(logger)
		return
	}
	defer audio.Terminate()

	handle := style.NewHandle(cfg.Style)

	var presenters []render.Presenter
	switch cfg.Display.Backend {
	case "terminal":
		presenters = append(presenters, render.NewTerminal(os.Stdout, render.TerminalConfig{
			Fd:         int(os.Stdout.Fd()),
			UseANSI:    cfg.Display.Color,
			ShowStatus: cfg.Display.ShowStatus,
			Palette:    cfg.Display.Palette,
		}))
	case "sdl":
		win, err := render.NewSDLWindow(render.Width, render.Height)
		if err != nil {
			logger.Fatalf("sdl backend: %v", err)
		}
		presenters = append(presenters, win)
	case "none":
	default:
		logger.Fatalf("unknown backend %q (terminal|sdl|none)", cfg.Display.Backend)
	}

	var a *app.App
	var server *web.Server
	if cfg.Web.Port > 0 {
		server = web.NewServer(web.Options{
			Style:    handle,
			OnStart:  func() { a.Start() },
			FrameFPS: cfg.Web.FrameFPS,
			Log:      logger,
		})
		presenters = append(presenters, server.Presenter())
	}
	if len(presenters) == 0 {
		logger.Fatalf("nothing to display: backend is none and the web panel is disabled")
	}

	a, err := app.New(app.Config{
		TargetFPS:     cfg.Display.FPS,
		ShowStatusBar: cfg.Display.ShowStatus,
		Keyboard:      cfg.Display.Backend == "terminal",
		AutoStart:     *autoStart,
		DeviceLabel:   cfg.Audio.Device,
		ProfilePath:   *profile,
		Log:           logger,
	}, handle, opener(cfg), presenters...)
	if err != nil {
		logger.Fatalf("failed to create app: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "cleanup error: %v\n", err)
		}
	}()

	if server != nil {
		go func() {
			if err := server.Start(cfg.Web.Port); err != nil {
				logger.Printf("[web] %v", err)
			}
		}()
		defer server.Close()
	}

	if err := a.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Fatalf("runtime error: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
}

// opener returns the capture factory: PortAudio on the configured device, or
// the synthetic generator when audio is disabled.
func opener(cfg *config.Config) capture.Opener {
	return func() (capture.Input, error) {
		if cfg.Audio.Disabled {
			return audio.NewSynth(48000), nil
		}
		if err := audio.Initialize(); err != nil {
			return nil, err
		}
		c, err := audio.NewCapture(audio.Config{
			DeviceName: cfg.Audio.Device,
			BufferSize: cfg.Audio.BufferSize,
			Channels:   2,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

func newLogger(cfg *config.Config) *log.Logger {
	logger := log.New(os.Stderr, "[ribbonviz] ", 0)
	switch {
	case cfg.Log.File != "":
		logger.SetOutput(&lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		})
		logger.SetFlags(log.LstdFlags)
	case cfg.Log.Debug:
		logger.SetOutput(os.Stdout)
		logger.SetFlags(log.LstdFlags)
	case cfg.Display.Backend == "terminal":
		// the terminal presenter owns the screen
		logger.SetOutput(io.Discard)
	}
	return logger
}

func listDevices(logger *log.Logger) {
	devices, err := audio.ListInputDevices()
	if err != nil {
		logger.Fatalf("list devices: %v", err)
	}
	fmt.Printf("\n=== Audio Input Devices ===\n\n")
	for _, dev := range devices {
		markers := ""
		if dev.IsDefault {
			markers += " (default)"
		}
		fmt.Printf("- %s [%s]%s\n    inputs:%d sample:%.0f Hz\n",
			dev.Name, dev.HostAPI, markers, dev.Channels, dev.DefaultSampleHz)
	}
	if dev, err := audio.AutoDetectDevice(); err == nil && dev != nil {
		fmt.Printf("\nAuto-detected input: %s (%.0f Hz, %d channels)\n", dev.Name, dev.DefaultSampleRate, dev.MaxInputChannels)
	}
}
