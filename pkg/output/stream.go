// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package output

import "sync"

// Subscriber renders output events.
// Implementations cover human text, JSON lines and styled diagnostics.
type Subscriber interface {
	// Handle processes an output event.
	// Called synchronously by Stream.Emit.
	Handle(event OutputEvent)

	// Name returns a unique identifier for this subscriber.
	Name() string

	// ShouldHandle decides if this subscriber cares about this event.
	ShouldHandle(event OutputEvent) bool
}

// Stream is a synchronous fan-out of output events to subscribers.
// Emission order is preserved per subscriber, which keeps stdout ordering
// stable for the CLI.
type Stream struct {
	subscribers []Subscriber
	mu          sync.RWMutex
}

// NewStream creates a stream with no subscribers.
func NewStream() *Stream {
	return &Stream{
		subscribers: make([]Subscriber, 0, 3),
	}
}

// Subscribe registers a subscriber. Subscribers are called in registration order.
func (s *Stream) Subscribe(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, sub)
}

// Emit hands event to every subscriber whose ShouldHandle accepts it.
// A nil stream discards events.
func (s *Stream) Emit(event OutputEvent) {
	if s == nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subscribers {
		if sub.ShouldHandle(event) {
			sub.Handle(event)
		}
	}
}

// SubscriberCount returns the number of registered subscribers.
func (s *Stream) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}
