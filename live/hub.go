// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// sendBuffer is how many snapshots may queue for one subscriber before it
// is dropped.
const sendBuffer = 16

type subscriber struct {
	questionID string
	send       chan []byte
	// published is set once a Publish payload reached send. Guarded by Hub.mu.
	published bool
}

// Hub fans out result snapshots to the connections watching each question.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*subscriber]struct{}),
		logger: logger.With("component", "live"),
	}
}

func (h *Hub) subscribe(questionID string) *subscriber {
	s := &subscriber{questionID: questionID, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[questionID] == nil {
		h.subs[questionID] = make(map[*subscriber]struct{})
	}
	h.subs[questionID][s] = struct{}{}
	return s
}

func (h *Hub) unsubscribe(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(s)
}

// removeLocked closes s.send exactly once. Callers hold h.mu.
func (h *Hub) removeLocked(s *subscriber) {
	set, ok := h.subs[s.questionID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	close(s.send)
	if len(set) == 0 {
		delete(h.subs, s.questionID)
	}
}

// deliverInitial queues the snapshot read when s connected. It is skipped
// if a published snapshot already reached s, since that one is newer.
func (h *Hub) deliverInitial(s *subscriber, payload []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s.questionID][s]; !ok || s.published {
		return false
	}
	return h.offerLocked(s, payload)
}

// offerLocked queues payload without blocking, dropping s when its buffer
// is full. Callers hold h.mu.
func (h *Hub) offerLocked(s *subscriber, payload []byte) bool {
	select {
	case s.send <- payload:
		return true
	default:
		h.logger.Warn("dropping slow subscriber", "question_id", s.questionID)
		h.removeLocked(s)
		return false
	}
}

// Publish sends v as JSON to every subscriber of questionID. It never
// blocks on a subscriber.
func (h *Hub) Publish(questionID string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs[questionID] {
		if h.offerLocked(s, payload) {
			s.published = true
		}
	}
	return nil
}

// Subscribers reports how many connections watch questionID.
func (h *Hub) Subscribers(questionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[questionID])
}
