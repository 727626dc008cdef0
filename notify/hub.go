// Package notify provides the in-process event hub used to record
// document-visit edges during rendering.
package notify

import "sync"

// Event identifies a notification kind.
type Event string

const (
	VisitStarted Event = "visit_started"
	VisitEnded   Event = "visit_ended"
)

// Hub is a minimal fire-and-forget publish/subscribe mechanism. Handlers run
// synchronously on the announcing goroutine; they must not block.
type Hub struct {
	mu   sync.RWMutex
	subs map[Event][]func(payload string)
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[Event][]func(string))}
}

// Subscribe registers a handler for the given event kind.
func (h *Hub) Subscribe(event Event, fn func(payload string)) {
	h.mu.Lock()
	h.subs[event] = append(h.subs[event], fn)
	h.mu.Unlock()
}

// Announce delivers the payload to every handler subscribed to event.
// Announcing with no subscribers is a no-op.
func (h *Hub) Announce(event Event, payload string) {
	h.mu.RLock()
	handlers := h.subs[event]
	h.mu.RUnlock()
	for _, fn := range handlers {
		fn(payload)
	}
}
