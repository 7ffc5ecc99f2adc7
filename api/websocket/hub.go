package websocket

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Hub manages all active WebSocket client connections and broadcasts events.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	log        *zap.SugaredLogger

	// onCount is called with the client count after every change.
	onCount func(int)
}

// NewHub creates a new WebSocket hub.
func NewHub(log *zap.SugaredLogger) *Hub {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// OnCount registers a callback receiving the client count after each change.
// Set it before Run.
func (h *Hub) OnCount(fn func(int)) {
	h.onCount = fn
}

// Run starts the hub's event loop. Call in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	h.log.Infow("websocket hub started")
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.counted(0)
			h.log.Infow("websocket hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.counted(count)
			h.log.Debugw("websocket client connected", "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				close(client.send)
				delete(h.clients, client)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.counted(count)
			h.log.Debugw("websocket client disconnected", "clients", count)

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Buffer full: drop and disconnect.
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) counted(n int) {
	if h.onCount != nil {
		h.onCount(n)
	}
}

// Publish sends an event to all connected clients.
func (h *Hub) Publish(event Event) {
	data := event.JSON()
	select {
	case h.broadcast <- data:
	default:
		h.log.Warnw("websocket broadcast channel full, dropping event", "type", event.Type)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
