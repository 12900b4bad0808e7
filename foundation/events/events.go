// Package events fans ledger events out to the subscribers that registered
// to receive them, such as websocket clients watching a mining run.
package events

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// subscriberBuffer is the number of events held for a subscriber that is
// not ready to receive. Events past this are dropped for that subscriber.
const subscriberBuffer = 100

// Event is a single ledger event as delivered to subscribers.
type Event struct {
	Seq     uint64    `json:"seq"`
	Time    time.Time `json:"time"`
	Source  string    `json:"source"`
	Message string    `json:"message"`
}

// Hub maintains the set of subscribers and delivers every published event
// to each of them.
type Hub struct {
	seq     atomic.Uint64
	dropped atomic.Uint64

	mu   sync.RWMutex
	subs map[string]chan Event
}

// New constructs a hub for publishing and receiving events.
func New() *Hub {
	return &Hub{
		subs: make(map[string]chan Event),
	}
}

// Subscribe registers the id and returns the channel its events are
// delivered on. Subscribing an id twice returns the same channel. The
// channel is closed by Unsubscribe or Close.
func (h *Hub) Subscribe(id string) <-chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, exists := h.subs[id]; exists {
		return ch
	}

	ch := make(chan Event, subscriberBuffer)
	h.subs[id] = ch

	return ch
}

// Unsubscribe closes and removes the channel for the id.
func (h *Hub) Unsubscribe(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, exists := h.subs[id]
	if !exists {
		return fmt.Errorf("subscriber %q does not exist", id)
	}

	delete(h.subs, id)
	close(ch)

	return nil
}

// Close closes and removes every subscriber channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// Subscribers returns the number of registered subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs)
}

// Dropped returns the number of deliveries skipped because a subscriber's
// buffer was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Publish stamps the message and delivers it to every subscriber without
// blocking. The source is the text before the first colon of the message.
func (h *Hub) Publish(msg string) Event {
	evt := Event{
		Seq:     h.seq.Add(1),
		Time:    time.Now().UTC(),
		Source:  source(msg),
		Message: msg,
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- evt:
		default:
			h.dropped.Add(1)
		}
	}

	return evt
}

// source returns the component that raised the message, for example
// "database" for "database: Append: started".
func source(msg string) string {
	src, _, found := strings.Cut(msg, ":")
	if !found {
		return ""
	}
	return strings.TrimSpace(src)
}
