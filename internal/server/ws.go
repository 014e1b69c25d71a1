package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ecosortai/ecosort/internal/app"
	"github.com/ecosortai/ecosort/internal/tracker"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// liveMessage is one update pushed to /api/live clients.
type liveMessage struct {
	Counts          map[tracker.Material]int `json:"counts"`
	AvailablePoints int                      `json:"available_points"`
	Capturing       bool                     `json:"capturing"`
	LastEvent       *tracker.Event           `json:"last_event,omitempty"`
	Timestamp       int64                    `json:"timestamp"`
}

// LiveHandler pushes detection counts and the point balance to
// WebSocket clients while the kiosk runs.
type LiveHandler struct {
	app     *app.App
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewLiveHandler creates a new LiveHandler and starts its broadcast loop.
func NewLiveHandler(a *app.App) *LiveHandler {
	h := &LiveHandler{
		app:     a,
		clients: make(map[*websocket.Conn]bool),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast sends the current kiosk state to all connected clients.
func (h *LiveHandler) broadcast() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		idle := len(h.clients) == 0
		h.mu.RUnlock()
		if idle {
			continue
		}

		msg := liveMessage{
			Counts:          h.app.Tracker().Counts(),
			AvailablePoints: h.app.Ledger().Available(),
			Capturing:       h.app.IsCapturing(),
			Timestamp:       time.Now().UnixMilli(),
		}
		if event, ok := h.app.Tracker().LastEvent(); ok {
			msg.LastEvent = &event
		}

		data, _ := json.Marshal(msg)

		h.mu.RLock()
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, data)
		}
		h.mu.RUnlock()
	}
}
