package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

var (
	initMu      sync.Mutex
	initialized bool
	initErr     error
)

// Initialize brings up PortAudio once per process. Later calls return the
// first result.
func Initialize() error {
	initMu.Lock()
	defer initMu.Unlock()
	if initialized || initErr != nil {
		return initErr
	}
	if err := portaudio.Initialize(); err != nil {
		initErr = fmt.Errorf("portaudio init: %w", err)
		return initErr
	}
	initialized = true
	return nil
}

// Terminate balances a successful Initialize. It is a no-op otherwise.
func Terminate() {
	initMu.Lock()
	defer initMu.Unlock()
	if !initialized {
		return
	}
	initialized = false
	_ = portaudio.Terminate()
}
