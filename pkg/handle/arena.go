// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package handle issues opaque handles for stored values.
//
// An Arena stores values in slots addressed by (index, generation) pairs.
// Releasing a handle bumps its slot's generation, so a released handle never
// resolves again even after the slot is reused.
package handle

import (
	"fmt"
	"sync"
)

// Handle is an opaque, comparable token for a value stored in an Arena.
type Handle struct {
	index      uint32
	generation uint32
}

// Nil is the zero handle. An Arena never issues it.
var Nil Handle

// IsNil reports whether h is the zero handle.
func (h Handle) IsNil() bool {
	return h == Nil
}

func (h Handle) String() string {
	if h.IsNil() {
		return "#nil"
	}
	return fmt.Sprintf("#%d.%d", h.index, h.generation)
}

type slot[T any] struct {
	value      T
	generation uint32
	live       bool
}

// Arena is a generational store of values. The zero value is ready to use
// and safe for concurrent use.
type Arena[T any] struct {
	mu    sync.Mutex
	slots []slot[T]
	free  []uint32
	live  int
}

// NewArena creates an empty arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Acquire stores v and returns a fresh handle for it.
func (a *Arena[T]) Acquire(v T) Handle {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.live++
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.value = v
		s.live = true
		return Handle{index: idx, generation: s.generation}
	}

	// generation starts at 1 so that Nil is never issued
	a.slots = append(a.slots, slot[T]{value: v, generation: 1, live: true})
	return Handle{index: uint32(len(a.slots) - 1), generation: 1}
}

// Resolve returns the value stored under h. It reports false for Nil,
// released or foreign handles.
func (a *Arena[T]) Resolve(h Handle) (T, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var zero T
	s, ok := a.lookup(h)
	if !ok {
		return zero, false
	}
	return s.value, true
}

// Release invalidates h. It reports whether h was live.
func (a *Arena[T]) Release(h Handle) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.lookup(h)
	if !ok {
		return false
	}

	var zero T
	s.value = zero
	s.live = false
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	a.free = append(a.free, h.index)
	a.live--
	return true
}

// Len returns the number of live handles.
func (a *Arena[T]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

func (a *Arena[T]) lookup(h Handle) (*slot[T], bool) {
	if h.IsNil() || int(h.index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[h.index]
	if !s.live || s.generation != h.generation {
		return nil, false
	}
	return s, true
}
