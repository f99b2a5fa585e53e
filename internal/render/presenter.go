package render

import "image"

// Presenter puts rendered frames on a surface: a terminal, a window or the
// web panel.
type Presenter interface {
	// Prompt shows a waiting message before capture starts.
	Prompt(message string) error
	// Present shows a frame with an optional status line.
	Present(img *image.RGBA, status string) error
	// Fail replaces the surface with a static message. Nothing else is
	// drawn afterwards.
	Fail(message string) error
	Close() error
}

// Multi fans calls out to several presenters, returning the first error.
type Multi []Presenter

func (m Multi) Prompt(message string) error {
	var first error
	for _, p := range m {
		if err := p.Prompt(message); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) Present(img *image.RGBA, status string) error {
	var first error
	for _, p := range m {
		if err := p.Present(img, status); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) Fail(message string) error {
	var first error
	for _, p := range m {
		if err := p.Fail(message); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) Close() error {
	var first error
	for _, p := range m {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
