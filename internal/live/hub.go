// Package live fans out full-state snapshots to in-process subscribers.
//
// Every topic keeps one slot per subscriber that always holds the newest
// undelivered value. A slow subscriber skips intermediate values but never
// blocks publishers and never sees an older value after a newer one.
package live

import "sync"

// Hub delivers values of type T to subscribers grouped by topic.
type Hub[T any] struct {
	mu     sync.Mutex
	topics map[string]map[*subscriber[T]]struct{}
	closed bool
}

type subscriber[T any] struct {
	ch chan T
}

// NewHub returns an empty hub.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{topics: make(map[string]map[*subscriber[T]]struct{})}
}

// Subscribe registers a subscriber on topic. The returned function removes
// it and closes the channel; calling it more than once is safe.
func (h *Hub[T]) Subscribe(topic string) (<-chan T, func()) {
	sub := &subscriber[T]{ch: make(chan T, 1)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*subscriber[T]]struct{})
		h.topics[topic] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() { h.remove(topic, sub) })
	}
}

// Publish replaces the pending value of every subscriber on topic.
func (h *Hub[T]) Publish(topic string, value T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.topics[topic] {
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- value
	}
}

// Subscribers reports how many subscribers topic has.
func (h *Hub[T]) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}

// Close closes every subscriber channel. Later subscriptions receive a
// closed channel and later publishes are dropped.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for topic, subs := range h.topics {
		for sub := range subs {
			close(sub.ch)
		}
		delete(h.topics, topic)
	}
}

func (h *Hub[T]) remove(topic string, sub *subscriber[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[topic]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
	close(sub.ch)
}
