package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/guidoenr/ribbonviz/internal/analyzer"
	"github.com/guidoenr/ribbonviz/internal/style"
)

//go:embed static
var staticFiles embed.FS

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	statusInterval = 500 * time.Millisecond
)

// Options configures a Server.
type Options struct {
	Style *style.Handle
	// OnStart is called when the panel's start button is pressed. The app
	// guarantees it runs at most once.
	OnStart func()
	// FrameFPS caps how often PNG frames are pushed to clients.
	FrameFPS float64
	Log      *log.Logger
}

// Server hosts the tuning panel and streams frames to it.
type Server struct {
	mu        sync.RWMutex
	style     *style.Handle
	onStart   func()
	clients   map[*websocketClient]bool
	broadcast chan outbound
	upgrader  websocket.Upgrader
	log       *log.Logger
	done      chan struct{}
	closeOnce sync.Once
	loopOnce  sync.Once
	srv       *http.Server

	state     StateMessage
	lastFrame time.Time
	lastStat  time.Time
	frameGap  time.Duration
	encoder   png.Encoder
	buf       bytes.Buffer
}

type outbound struct {
	kind int
	data []byte
}

type websocketClient struct {
	conn   *websocket.Conn
	send   chan outbound
	server *Server
}

// StateMessage tells the panel whether capture started or failed.
type StateMessage struct {
	Type    string `json:"type"`
	Started bool   `json:"started"`
	Prompt  string `json:"prompt,omitempty"`
	Fatal   string `json:"fatal,omitempty"`
}

// StatusMessage carries live frame statistics.
type StatusMessage struct {
	Type   string          `json:"type"`
	FPS    float64         `json:"fps"`
	Text   string          `json:"text,omitempty"`
	Levels analyzer.Levels `json:"levels"`
}

func NewServer(opts Options) *Server {
	if opts.Style == nil {
		opts.Style = style.NewHandle(style.Defaults())
	}
	if opts.Log == nil {
		opts.Log = log.Default()
	}
	if opts.FrameFPS <= 0 {
		opts.FrameFPS = 15
	}
	return &Server{
		style:     opts.Style,
		onStart:   opts.OnStart,
		clients:   make(map[*websocketClient]bool),
		broadcast: make(chan outbound, 256),
		log:       opts.Log,
		done:      make(chan struct{}),
		frameGap:  time.Duration(float64(time.Second) / opts.FrameFPS),
		encoder:   png.Encoder{CompressionLevel: png.BestSpeed},
		state:     StateMessage{Type: "state"},
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the panel's routes and starts the broadcast loop.
func (s *Server) Handler() http.Handler {
	s.loopOnce.Do(func() { go s.broadcastLoop() })
	mux := http.NewServeMux()
	static, _ := fs.Sub(staticFiles, "static")
	mux.Handle("/", http.FileServer(http.FS(static)))
	mux.HandleFunc("/api/style", s.handleStyle)
	mux.HandleFunc("/api/controls", s.handleControls)
	mux.HandleFunc("/api/start", s.handleStart)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Start serves the panel on port until Close. It blocks.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.mu.Lock()
	s.srv = &http.Server{Addr: addr, Handler: s.Handler()}
	srv := s.srv
	s.mu.Unlock()

	s.log.Printf("[web] panel on http://0.0.0.0%s", addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops the HTTP server and the broadcast loop.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.RLock()
		srv := s.srv
		s.mu.RUnlock()
		if srv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			err = srv.Shutdown(ctx)
		}
	})
	return err
}

func (s *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.style.Snapshot())
	case http.MethodPost:
		var patch style.Patch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.style.Update(func(c *style.Config) { c.Merge(patch) })
		writeJSON(w, s.style.Snapshot())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleControls(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, style.Controls())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.onStart != nil {
		s.onStart()
	}
	writeJSON(w, s.currentState())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.currentState())
}

func (s *Server) currentState() StateMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("[web] websocket upgrade error: %v", err)
		return
	}

	client := &websocketClient{
		conn:   conn,
		send:   make(chan outbound, 16),
		server: s,
	}

	// Registering and queueing the current state under one lock keeps any
	// later broadcast behind it.
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		_ = conn.Close()
		return
	default:
	}
	s.clients[client] = true
	if data, err := json.Marshal(s.state); err == nil {
		client.send <- outbound{kind: websocket.TextMessage, data: data}
	}
	s.mu.Unlock()

	go client.writePump()
	go client.readPump()
}

func (s *Server) broadcastLoop() {
	for {
		select {
		case <-s.done:
			s.mu.Lock()
			for client := range s.clients {
				close(client.send)
				delete(s.clients, client)
			}
			s.mu.Unlock()
			return
		case message := <-s.broadcast:
			s.mu.Lock()
			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					// slow client; frames are dropped rather than queued
					if message.kind == websocket.TextMessage {
						close(client.send)
						delete(s.clients, client)
					}
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *Server) publish(kind int, data []byte) {
	select {
	case s.broadcast <- outbound{kind: kind, data: data}:
	default:
		// drop if channel full (non-blocking)
	}
}

func (s *Server) publishJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.publish(websocket.TextMessage, data)
}

func (s *Server) setState(fn func(*StateMessage)) {
	s.mu.Lock()
	fn(&s.state)
	state := s.state
	s.mu.Unlock()
	s.publishJSON(state)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (c *websocketClient) readPump() {
	defer func() {
		c.server.mu.Lock()
		if c.server.clients[c] {
			delete(c.server.clients, c)
			close(c.send)
		}
		c.server.mu.Unlock()
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *websocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(message.kind, message.data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// encodeFrame returns img as PNG. The returned slice is owned by the caller.
func (s *Server) encodeFrame(img *image.RGBA) ([]byte, error) {
	s.buf.Reset()
	if err := s.encoder.Encode(&s.buf, img); err != nil {
		return nil, err
	}
	out := make([]byte, s.buf.Len())
	copy(out, s.buf.Bytes())
	return out, nil
}
