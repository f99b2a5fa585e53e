package web

import (
	"image"
	"time"

	"github.com/gorilla/websocket"

	"github.com/guidoenr/ribbonviz/internal/analyzer"
)

// Presenter streams frames and state to connected panels. It satisfies
// render.Presenter.
type Presenter struct {
	s   *Server
	now func() time.Time
}

// Presenter returns the server's frame sink.
func (s *Server) Presenter() *Presenter {
	return &Presenter{s: s, now: time.Now}
}

func (p *Presenter) Prompt(message string) error {
	p.s.setState(func(st *StateMessage) {
		st.Prompt = message
	})
	return nil
}

// Present encodes img as PNG at most FrameFPS times per second.
func (p *Presenter) Present(img *image.RGBA, status string) error {
	s := p.s
	now := p.now()

	s.mu.Lock()
	if s.state.Fatal != "" || now.Sub(s.lastFrame) < s.frameGap {
		s.mu.Unlock()
		return nil
	}
	s.lastFrame = now
	started := s.state.Started
	s.mu.Unlock()

	if !started {
		s.setState(func(st *StateMessage) {
			st.Started = true
			st.Prompt = ""
		})
	}
	// Present runs on the render goroutine only, so the encode buffer is
	// not shared.
	data, err := s.encodeFrame(img)
	if err != nil {
		return err
	}
	s.publish(websocket.BinaryMessage, data)
	return nil
}

// ReportStatus pushes frame statistics, throttled to twice a second.
func (p *Presenter) ReportStatus(fps float64, levels analyzer.Levels, text string) {
	s := p.s
	now := p.now()
	s.mu.Lock()
	if now.Sub(s.lastStat) < statusInterval {
		s.mu.Unlock()
		return
	}
	s.lastStat = now
	s.mu.Unlock()
	s.publishJSON(StatusMessage{Type: "status", FPS: fps, Text: text, Levels: levels})
}

// Fail tells every panel to replace its content with message.
func (p *Presenter) Fail(message string) error {
	p.s.setState(func(st *StateMessage) {
		st.Fatal = message
		st.Prompt = ""
	})
	return nil
}

func (p *Presenter) Close() error { return nil }
