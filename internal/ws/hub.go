// Package ws fans attendance and alert events out to connected dashboards.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

const eventBuffer = 256

// Hub owns the set of connected dashboards. Only Run mutates the set.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	events  chan Event
	joins   chan *Client
	leaves  chan *Client
	stopped chan struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		events:  make(chan Event, eventBuffer),
		joins:   make(chan *Client),
		leaves:  make(chan *Client),
		stopped: make(chan struct{}),
		logger:  logger,
	}
}

// Run serves joins, leaves and events until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				h.drop(c)
			}
			h.mu.Unlock()
			return
		case c := <-h.joins:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
		case c := <-h.leaves:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}
			h.mu.Unlock()
		case ev := <-h.events:
			h.deliver(ev)
		}
	}
}

// drop closes c's queue; the caller holds mu.
func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
}

// join registers a client unless the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.joins <- c:
		return true
	case <-h.stopped:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.leaves <- c:
	case <-h.stopped:
	}
}

func (h *Hub) deliver(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to encode hub event", "type", ev.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !c.wants(ev.Type) {
			continue
		}
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("disconnecting slow dashboard", "type", ev.Type)
			h.drop(c)
		}
	}
}

// Publish queues an event without blocking; it is dropped when the hub is
// saturated.
func (h *Hub) Publish(eventType EventType, data any) {
	select {
	case h.events <- Event{Type: eventType, Data: data, Timestamp: time.Now().UTC()}:
	default:
		h.logger.Warn("hub saturated, dropping event", "type", eventType)
	}
}

func (h *Hub) ConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
