// Package hub fans session events out to Server-Sent Events clients.
//
// Each client subscribes to one session. Messages carrying a session id go to
// that session's clients only; messages without one go to everybody.
package hub

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

// Observer is told when clients connect and disconnect
type Observer interface {
	ClientConnected()
	ClientDisconnected()
}

// Message is one event addressed to a session, or to all sessions when
// SessionID is empty
type Message struct {
	SessionID string
	Event     interface{}
}

// Client represents a connected SSE client
type Client struct {
	id        string
	sessionID string
	events    chan []byte
}

// Hub manages SSE client connections
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
	keepAlive  time.Duration
	observer   Observer
}

// New creates a new Hub
func New() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message, 256),
		keepAlive:  30 * time.Second,
	}
}

// WithObserver attaches a connection observer
func (h *Hub) WithObserver(o Observer) *Hub {
	h.observer = o
	return h
}

// WithKeepAlive sets the keep-alive comment interval
func (h *Hub) WithKeepAlive(d time.Duration) *Hub {
	if d > 0 {
		h.keepAlive = d
	}
	return h
}

// Run starts the hub's event loop. It returns when done is closed.
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			if h.observer != nil {
				h.observer.ClientConnected()
			}
			log.Printf("hub: client %s connected to session %s (total: %d)", client.id, client.sessionID, total)

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				close(client.events)
			}
			total := len(h.clients)
			h.mu.Unlock()
			if ok && h.observer != nil {
				h.observer.ClientDisconnected()
			}
			log.Printf("hub: client %s disconnected (total: %d)", client.id, total)

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Event)
			if err != nil {
				log.Printf("hub: failed to marshal event: %v", err)
				continue
			}

			frame := []byte(fmt.Sprintf("data: %s\n\n", data))

			h.mu.RLock()
			for client := range h.clients {
				if msg.SessionID != "" && msg.SessionID != client.sessionID {
					continue
				}
				select {
				case client.events <- frame:
				default:
					// Client is slow, skip this message
					log.Printf("hub: client %s is slow, skipping message", client.id)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues a message for delivery
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		log.Println("hub: broadcast channel full, dropping event")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve streams the events of one session to the client until the request
// context ends
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sessionID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	client := &Client{
		id:        fmt.Sprintf("%d", time.Now().UnixNano()),
		sessionID: sessionID,
		events:    make(chan []byte, 64),
	}

	h.register <- client
	defer func() {
		h.unregister <- client
	}()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.events:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
