package realtime

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"backend-helpqueue/internal/models"
)

// subscriberBuffer is how many undelivered events a subscriber may lag
// behind before further events are dropped for it.
const subscriberBuffer = 16

type Subscriber struct {
	id        string
	sessionID string
	events    chan models.Event
}

// Events yields this subscriber's event stream in publish order. The
// channel is closed on Unsubscribe.
func (s *Subscriber) Events() <-chan models.Event {
	return s.events
}

func (s *Subscriber) ID() string {
	return s.id
}

// Hub fans out session events to the session's current subscribers.
// Publish never blocks: a subscriber that cannot keep up loses events
// (delivery is best-effort), but events it does receive arrive in
// publish order.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Subscriber]struct{}
	counter uint64
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Subscriber]struct{})}
}

func (h *Hub) Subscribe(sessionID string) *Subscriber {
	id := atomic.AddUint64(&h.counter, 1)
	sub := &Subscriber{
		id:        fmt.Sprintf("sub-%d", id),
		sessionID: sessionID,
		events:    make(chan models.Event, subscriberBuffer),
	}

	h.mu.Lock()
	room, ok := h.rooms[sessionID]
	if !ok {
		room = make(map[*Subscriber]struct{})
		h.rooms[sessionID] = room
	}
	room[sub] = struct{}{}
	total := len(room)
	h.mu.Unlock()

	log.Printf("[realtime] %s joined session %s, total: %d", sub.id, sessionID, total)
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	room, ok := h.rooms[sub.sessionID]
	if ok {
		if _, member := room[sub]; member {
			delete(room, sub)
			close(sub.events)
		}
		if len(room) == 0 {
			delete(h.rooms, sub.sessionID)
		}
	}
	h.mu.Unlock()

	log.Printf("[realtime] %s left session %s", sub.id, sub.sessionID)
}

// Publish delivers the event to every current subscriber of the
// session. Slow subscribers are skipped, never waited on. Sends happen
// under the read lock so Unsubscribe cannot close a channel mid-send.
func (h *Hub) Publish(sessionID string, ev models.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.rooms[sessionID] {
		select {
		case sub.events <- ev:
		default:
			log.Printf("[realtime] %s lagging, dropped %s event", sub.id, ev.Type)
		}
	}
}
