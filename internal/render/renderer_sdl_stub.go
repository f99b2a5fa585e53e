//go:build !sdl

package render

import "errors"

// NewSDLWindow is unavailable without the sdl build tag.
func NewSDLWindow(width, height int) (Presenter, error) {
	return nil, errors.New("SDL backend not enabled; rebuild with -tags sdl")
}

func SupportsSDL() bool { return false }
