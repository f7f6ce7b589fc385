// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package tree

import (
	"sync"

	"github.com/yggy/yggy/pkg/handle"
)

// slot identifies one queued registration: a handle at a (path, type).
type slot struct {
	path   string
	typ    string
	handle handle.Handle
}

// queue holds deferred actions in FIFO order and tracks the listens waiting
// in it. Pushing is safe from any goroutine.
type queue struct {
	mu    sync.Mutex
	items []Action
	// pending counts queued listens per slot, cancelled ones included.
	pending map[slot]int
	// cancelled counts the oldest queued listens of a slot to skip.
	cancelled map[slot]int
	// live counts queued, uncancelled listens per handle.
	live map[handle.Handle]int
}

func newQueue() *queue {
	return &queue{
		pending:   make(map[slot]int),
		cancelled: make(map[slot]int),
		live:      make(map[handle.Handle]int),
	}
}

func slotOf(a Action) slot {
	return slot{path: a.path, typ: a.typ, handle: a.handle}
}

func (q *queue) push(a Action) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, a)
	if a.kind == ActionListen {
		q.pending[slotOf(a)]++
		q.live[a.handle]++
	}
}

// drain removes and returns everything queued so far.
func (q *queue) drain() []Action {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.items
	q.items = nil
	return batch
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// isPending reports whether h has a queued listen that is not cancelled.
func (q *queue) isPending(h handle.Handle) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.live[h] > 0
}

// cancel marks the queued listens of h at p as cancelled. An empty typ
// matches every type. It reports false when no such listen is queued.
func (q *queue) cancel(p, typ string, h handle.Handle) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	total := 0
	for s, n := range q.pending {
		if s.handle != h || s.path != p || (typ != "" && s.typ != typ) {
			continue
		}
		if open := n - q.cancelled[s]; open > 0 {
			q.cancelled[s] += open
			total += open
		}
	}
	if total == 0 {
		return false
	}
	if q.live[h] -= total; q.live[h] <= 0 {
		delete(q.live, h)
	}
	return true
}

// settle accounts for a queued listen leaving the queue and reports whether
// it was cancelled.
func (q *queue) settle(a Action) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	s := slotOf(a)
	if q.pending[s]--; q.pending[s] <= 0 {
		delete(q.pending, s)
	}
	if q.cancelled[s] > 0 {
		if q.cancelled[s]--; q.cancelled[s] == 0 {
			delete(q.cancelled, s)
		}
		return true
	}
	if q.live[a.handle]--; q.live[a.handle] <= 0 {
		delete(q.live, a.handle)
	}
	return false
}
