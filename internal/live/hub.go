// Package live implements a Hub for broadcasting real-time match updates.
// Every score change, round change, or match end produces an event that the Hub fans out
// to the clients watching that match, so a scoreboard on a second screen updates the
// moment the scorer taps a button, without polling the API.
//
// The HTTP layer streams these events to browsers and apps as server-sent events.
package live

import (
	"context"
	"sync" // sync provides synchronization primitives like mutexes for safe concurrent access
)

// Client represents a single subscriber watching one match.
type Client struct {
	MatchID string      // Which match this client is watching; used to route messages to the right audience
	Send    chan []byte // Buffered channel of outgoing messages; the Hub writes here, the stream handler reads
}

// Message is a unit of data to broadcast to all clients watching a specific match.
type Message struct {
	MatchID string // The match this message belongs to
	Data    []byte // The raw bytes to send (JSON-encoded event)
}

// Hub manages all subscribers, grouped by match ID.
// It runs in its own goroutine and processes registration, unregistration, and
// broadcast events through channels, which keeps all map writes on a single goroutine.
type Hub struct {
	// clients is a nested map: matchID -> set of Client pointers.
	// map[*Client]bool is the usual Go "set" idiom.
	clients map[string]map[*Client]bool

	broadcast  chan *Message // Incoming messages for all clients watching a given match
	register   chan *Client  // A new client has subscribed
	unregister chan *Client  // A client has gone away
	done       chan struct{} // Closed when Run returns

	// mu protects clients so Subscribers can read it from other goroutines
	// while the Run loop modifies it.
	mu sync.RWMutex
}

// NewHub creates a Hub. The broadcast channel is buffered so publishers do not block
// while the Hub goroutine is briefly busy.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the Hub's main event loop. Start it in a goroutine ("go hub.Run(ctx)").
// It returns when ctx is cancelled, closing every remaining client's Send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for matchID, clients := range h.clients {
				for client := range clients {
					close(client.Send)
				}
				delete(h.clients, matchID)
			}
			h.mu.Unlock()
			return

		// A new client has subscribed: add it under its MatchID
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.MatchID] == nil {
				h.clients[client.MatchID] = make(map[*Client]bool)
			}
			h.clients[client.MatchID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.mu.RLock()
			var slow []*Client
			for client := range h.clients[msg.MatchID] {
				select {
				case client.Send <- msg.Data:
				// A full buffer means the client is not keeping up: drop it instead of
				// blocking delivery to everyone else.
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()
			for _, client := range slow {
				h.remove(client)
			}
		}
	}
}

// remove deletes a client and closes its Send channel. Must only run on the Run goroutine.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.clients[client.MatchID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send) // Closing the channel tells the stream handler to stop
	if len(clients) == 0 {
		delete(h.clients, client.MatchID)
	}
}

// Publish sends data to every client currently watching the given match.
// After the Hub has stopped, Publish drops the message.
func (h *Hub) Publish(matchID string, data []byte) {
	select {
	case h.broadcast <- &Message{MatchID: matchID, Data: data}:
	case <-h.done:
	}
}

// Subscribe registers a new client for a match with the given Send buffer size.
func (h *Hub) Subscribe(matchID string, buffer int) *Client {
	client := &Client{MatchID: matchID, Send: make(chan []byte, buffer)}
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
	return client
}

// Unsubscribe removes a client when its stream closes. Safe to call after the Hub
// already dropped the client.
func (h *Hub) Unsubscribe(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribers reports how many clients are watching a match.
func (h *Hub) Subscribers(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[matchID])
}
