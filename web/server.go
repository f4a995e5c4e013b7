package web

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"callout/anim"
	"callout/config"
	"callout/menu"
	"callout/storage"
)

//go:embed static/*
var staticFiles embed.FS

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// Server represents the web dashboard server
type Server struct {
	db     *storage.DB
	config *config.Config
	store  *anim.Store
	port   int
	hub    *Hub
	mu     sync.RWMutex

	// StatusFunc supplies the live overlay state for /api/status.
	StatusFunc func() any
}

// NewServer creates a new web server
func NewServer(db *storage.DB, cfg *config.Config, store *anim.Store, port int) *Server {
	hub := NewHub()
	go hub.Run()

	return &Server{
		db:     db,
		config: cfg,
		store:  store,
		port:   port,
		hub:    hub,
	}
}

// Start starts the web server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/history/", s.handleHistory)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWebSocket)

	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to load static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("Starting web server", "port", s.port, "url", fmt.Sprintf("http://localhost:%d", s.port))

	return http.ListenAndServe(addr, mux)
}

// GetConfig returns the current configuration (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// BroadcastOverlay broadcasts an overlay state change to all clients
func (s *Server) BroadcastOverlay(snap menu.Snapshot) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeOverlay,
		Data: OverlayMessage{
			Visible: snap.State != menu.Hidden,
			Menu:    snap.Menu,
			Options: snap.Options,
			Pending: snap.Pending,
		},
	})
}

// BroadcastDispatch broadcasts a completed dispatch to all clients
func (s *Server) BroadcastDispatch(d *storage.Dispatch) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeDispatch,
		Data: DispatchMessage{
			Kind:    d.Kind,
			Menu:    d.Menu,
			Label:   d.Label,
			Success: d.Success,
			Error:   d.ErrorMessage,
		},
	})
}

// BroadcastPlayback broadcasts animation playback progress
func (s *Server) BroadcastPlayback(animation string, frame, total int) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypePlayback,
		Data: PlaybackMessage{
			Animation: animation,
			Frame:     frame,
			Total:     total,
		},
	})
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}
