// Package events provides a small in-process pub/sub hub. Handlers publish
// marketplace events; subscribers (the websocket feed) receive them over a
// channel and get an explicit unsubscribe function back.
package events

import (
	"sync"
	"time"
)

// Event types published by the API.
const (
	TypeChallengeCreated  = "challenge.created"
	TypeProposalSubmitted = "proposal.submitted"
	TypeProposalDecided   = "proposal.decided"
)

// Event is one marketplace occurrence
type Event struct {
	Type    string      `json:"type"`
	At      time.Time   `json:"at"`
	Payload interface{} `json:"payload,omitempty"`
}

// Hub fans events out to subscribers
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber and returns its channel together with
// an unsubscribe function. Calling unsubscribe more than once is safe.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}

	return ch, unsubscribe
}

// Publish delivers an event to every subscriber. A subscriber that cannot
// keep up has the event dropped rather than blocking the publisher.
func (h *Hub) Publish(eventType string, payload interface{}) {
	evt := Event{
		Type:    eventType,
		At:      time.Now().UTC(),
		Payload: payload,
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribers returns the current subscriber count
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
