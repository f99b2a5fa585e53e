//go:build sdl

package render

import (
	"fmt"
	"image"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	// SDL calls must come from the main thread.
	runtime.LockOSThread()
}

// SDLWindow presents frames in a native window.
type SDLWindow struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	width    int
	height   int
	title    string
	failed   bool
	onStart  func()
}

// NewSDLWindow opens a window sized for width×height frames.
func NewSDLWindow(width, height int) (Presenter, error) {
	if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("sdl init: %w", err)
	}
	w := &SDLWindow{width: width, height: height}
	window, err := sdl.CreateWindow(
		"ribbonviz",
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(width), int32(height),
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE,
	)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("sdl window: %w", err)
	}
	w.window = window
	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("sdl renderer: %w", err)
	}
	w.renderer = renderer
	_ = renderer.SetLogicalSize(int32(width), int32(height))
	tex, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING,
		int32(width), int32(height),
	)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("sdl texture: %w", err)
	}
	w.texture = tex
	return w, nil
}

// Prompt shows message in the title bar over a black window.
func (w *SDLWindow) Prompt(message string) error {
	if w.failed {
		return nil
	}
	w.setTitle("ribbonviz - " + message)
	return w.blank()
}

// Present streams img into the window texture.
func (w *SDLWindow) Present(img *image.RGBA, status string) error {
	if w.failed {
		return w.poll()
	}
	if status != "" {
		w.setTitle(status)
	}
	if err := w.texture.Update(nil, img.Pix, img.Stride); err != nil {
		return err
	}
	if err := w.renderer.Clear(); err != nil {
		return err
	}
	if err := w.renderer.Copy(w.texture, nil, nil); err != nil {
		return err
	}
	w.renderer.Present()
	return w.poll()
}

// Fail blanks the window and shows message in the title bar.
func (w *SDLWindow) Fail(message string) error {
	w.failed = true
	w.setTitle(message)
	return w.blank()
}

// Idle pumps window events while no frame is presented, before capture
// starts and after it failed.
func (w *SDLWindow) Idle() error { return w.poll() }

// OnStart registers fn to run when Enter is pressed in the window.
func (w *SDLWindow) OnStart(fn func()) { w.onStart = fn }

// Close releases all SDL resources.
func (w *SDLWindow) Close() error {
	if w.texture != nil {
		w.texture.Destroy()
		w.texture = nil
	}
	if w.renderer != nil {
		w.renderer.Destroy()
		w.renderer = nil
	}
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	sdl.QuitSubSystem(sdl.INIT_VIDEO)
	return nil
}

func (w *SDLWindow) blank() error {
	_ = w.renderer.SetDrawColor(0, 0, 0, 255)
	if err := w.renderer.Clear(); err != nil {
		return err
	}
	w.renderer.Present()
	return w.poll()
}

func (w *SDLWindow) setTitle(title string) {
	if title == w.title || w.window == nil {
		return
	}
	w.window.SetTitle(title)
	w.title = title
}

func (w *SDLWindow) poll() error {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch event := event.(type) {
		case *sdl.QuitEvent:
			return ErrRendererQuit
		case *sdl.KeyboardEvent:
			if event.Type != sdl.KEYDOWN {
				continue
			}
			switch event.Keysym.Sym {
			case sdl.K_RETURN, sdl.K_KP_ENTER:
				if w.onStart != nil && !w.failed {
					w.onStart()
				}
			case sdl.K_q, sdl.K_ESCAPE:
				return ErrRendererQuit
			}
		}
	}
	return nil
}

func SupportsSDL() bool { return true }
