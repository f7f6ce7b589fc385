// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package tree implements a hierarchical, path-scoped publish/subscribe
// engine.
//
// Listeners are registered for an event type at a node addressed by a
// slash-delimited path. A dispatch at a path fires the listeners registered
// there and at every descendant, depth-first in pre-order.
//
// Every Listen, Deafen and Dispatch is an Action that is either queued
// (the default) and applied by the next Poll, or applied immediately. Poll
// drains a snapshot of the queue: actions queued while it runs wait for the
// following Poll.
//
// Queueing actions is safe from any goroutine. Applying them, through Poll
// or an immediate call, must happen on one goroutine at a time; the tree is
// otherwise not synchronized.
package tree

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yggy/yggy/pkg/event"
	"github.com/yggy/yggy/pkg/handle"
	"github.com/yggy/yggy/pkg/path"
)

// Tree owns the root node, the action queue and the listener handles.
type Tree struct {
	id       string
	root     *Node
	queue    *queue
	handles  *handle.Arena[Listener]
	refs     map[handle.Handle]int
	logger   zerolog.Logger
	reporter func(error)
	tracer   func(Action, bool)
}

// New creates an empty tree.
func New(opts ...Option) *Tree {
	t := &Tree{
		id:      uuid.NewString(),
		root:    newNode("", nil),
		queue:   newQueue(),
		handles: handle.NewArena[Listener](),
		refs:    make(map[handle.Handle]int),
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With().Str("component", "tree").Str("tree", t.id).Logger()
	return t
}

// ID returns the tree's unique identifier.
func (t *Tree) ID() string {
	return t.id
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.root
}

// Lookup returns the node at p without creating anything.
func (t *Tree) Lookup(p string) (*Node, bool) {
	return t.root.request(path.Split(p))
}

// Require returns the node at p, creating missing nodes along the way.
func (t *Tree) Require(p string) *Node {
	return t.root.require(path.Split(p))
}

// Resolve returns the listener behind h.
func (t *Tree) Resolve(h handle.Handle) (Listener, bool) {
	return t.handles.Resolve(h)
}

// Handles returns the number of live listener handles.
func (t *Tree) Handles() int {
	return t.handles.Len()
}

// Pending returns the number of queued actions.
func (t *Tree) Pending() int {
	return t.queue.len()
}

// Listen registers l for typ and returns its handle. The handle is valid
// right away, even while the registration is still queued, so it can be
// deafened before the next Poll.
func (t *Tree) Listen(typ string, l Listener, opts ...ActionOption) handle.Handle {
	cfg := newActionConfig(opts)
	h := t.handles.Acquire(l)
	t.submit(newListen(cfg.path, typ, h), cfg.deferred)
	return h
}

// ListenHandle registers an existing handle for typ at another path or type.
// Registering a handle twice in the same registry is reported as
// ErrDuplicate and leaves the first registration untouched.
func (t *Tree) ListenHandle(h handle.Handle, typ string, opts ...ActionOption) {
	cfg := newActionConfig(opts)
	t.submit(newListen(cfg.path, typ, h), cfg.deferred)
}

// Deafen removes registrations at the target path. An empty typ and
// handle.Nil mean "absent":
//
//   - typ and h: remove h from the typ registry.
//   - typ only: remove every handle registered for typ.
//   - h only: remove h from every registry at the node, not descendants.
//   - neither: remove everything at the node and discard its subtree.
func (t *Tree) Deafen(typ string, h handle.Handle, opts ...ActionOption) {
	cfg := newActionConfig(opts)
	t.submit(newDeafen(cfg.path, typ, h), cfg.deferred)
}

// Dispatch fires typ with payload at the target path and its descendants.
// It returns an error only when payload is not a JSON-like value, in which
// case nothing is queued or fired.
func (t *Tree) Dispatch(typ string, payload any, opts ...ActionOption) error {
	if err := event.Validate(payload); err != nil {
		return fmt.Errorf("dispatch %q: %w", typ, err)
	}
	cfg := newActionConfig(opts)
	t.submit(newDispatch(cfg.path, typ, payload), cfg.deferred)
	return nil
}

// Poll applies every action queued before the call, in FIFO order, and
// returns how many were applied.
func (t *Tree) Poll() int {
	batch := t.queue.drain()
	if len(batch) == 0 {
		return 0
	}
	t.logger.Debug().Int("actions", len(batch)).Msg("polling queued actions")

	for _, a := range batch {
		if a.kind == ActionListen && t.queue.settle(a) {
			t.logger.Debug().Str("path", a.path).Str("type", a.typ).
				Stringer("handle", a.handle).Msg("skipping cancelled registration")
			continue
		}
		t.apply(a)
	}
	return len(batch)
}

func (t *Tree) submit(a Action, deferred bool) {
	if deferred {
		t.queue.push(a)
		if t.tracer != nil {
			t.tracer(a, true)
		}
		return
	}
	t.apply(a)
}

func (t *Tree) apply(a Action) {
	if t.tracer != nil {
		t.tracer(a, false)
	}
	switch a.kind {
	case ActionListen:
		t.onListen(a)
	case ActionDeafen:
		t.onDeafen(a)
	case ActionDispatch:
		t.onDispatch(a)
	}
}

func (t *Tree) onListen(a Action) {
	if _, ok := t.handles.Resolve(a.handle); !ok {
		t.anomaly(a.kind, a.path, a.typ, a.handle, ErrStaleHandle)
		return
	}

	node := t.root.require(path.Split(a.path))
	if !node.add(a.typ, a.handle) {
		t.anomaly(a.kind, a.path, a.typ, a.handle, ErrDuplicate)
		return
	}
	t.refs[a.handle]++

	t.logger.Debug().Str("path", a.path).Str("type", a.typ).
		Stringer("handle", a.handle).Msg("listener registered")
}

func (t *Tree) onDeafen(a Action) {
	hasType, hasHandle := a.typ != "", !a.handle.IsNil()

	node, ok := t.root.request(path.Split(a.path))
	if !ok {
		if hasHandle && t.cancelPending(a) {
			return
		}
		t.anomaly(a.kind, a.path, a.typ, a.handle, ErrNotFound)
		return
	}

	switch {
	case hasType && hasHandle:
		r, ok := node.registries[a.typ]
		if !ok || !r.remove(a.handle) {
			if t.cancelPending(a) {
				return
			}
			if !ok {
				t.anomaly(a.kind, a.path, a.typ, a.handle, ErrNotFound)
			} else {
				t.anomaly(a.kind, a.path, a.typ, a.handle, ErrMissingHandle)
			}
			return
		}
		t.unref(a.handle, false)

	case hasType:
		r, ok := node.registries[a.typ]
		if !ok {
			t.anomaly(a.kind, a.path, a.typ, a.handle, ErrNotFound)
			return
		}
		for _, h := range r.clear() {
			t.unref(h, true)
		}

	case hasHandle:
		n := node.removeHandle(a.handle)
		if n == 0 {
			if t.cancelPending(a) {
				return
			}
			t.anomaly(a.kind, a.path, a.typ, a.handle, ErrMissingHandle)
			return
		}
		for i := 0; i < n; i++ {
			t.unref(a.handle, false)
		}

	default:
		for _, h := range node.clear() {
			t.unref(h, true)
		}
	}

	t.logger.Debug().Str("path", a.path).Str("type", a.typ).
		Stringer("handle", a.handle).Msg("listeners removed")
}

// cancelPending cancels the queued listens matching a deafen that missed
// its registry, so they are skipped when polled. The handle is released once
// it sits in no registry and has no other queued listen.
func (t *Tree) cancelPending(a Action) bool {
	if !t.queue.cancel(a.path, a.typ, a.handle) {
		return false
	}
	if t.refs[a.handle] == 0 && !t.queue.isPending(a.handle) {
		t.handles.Release(a.handle)
	}
	t.logger.Debug().Str("path", a.path).Str("type", a.typ).
		Stringer("handle", a.handle).Msg("cancelled queued registration")
	return true
}

// unref drops one registration of h. The handle is released once nothing
// refers to it, or unconditionally when force is set.
func (t *Tree) unref(h handle.Handle, force bool) {
	if t.refs[h] > 1 {
		t.refs[h]--
	} else {
		delete(t.refs, h)
	}
	if force || (t.refs[h] == 0 && !t.queue.isPending(h)) {
		t.handles.Release(h)
	}
}

func (t *Tree) onDispatch(a Action) {
	node, ok := t.root.request(path.Split(a.path))
	if !ok {
		t.logger.Debug().Str("path", a.path).Str("type", a.typ).Msg("dispatch target not found")
		return
	}
	t.fire(node, a.path, a.typ, a.payload)
}

// fire invokes the listeners at n and then recurses into its children.
// Registries and child lists are snapshotted; entries removed mid-dispatch
// are skipped when their turn comes.
func (t *Tree) fire(n *Node, p, typ string, payload any) {
	if r, ok := n.registries[typ]; ok {
		for _, h := range r.snapshot() {
			if !n.Has(typ, h) {
				continue
			}
			l, ok := t.handles.Resolve(h)
			if !ok {
				t.logger.Debug().Str("path", p).Str("type", typ).
					Stringer("handle", h).Msg("skipping stale handle")
				continue
			}
			t.invoke(l, payload, &Context{Tree: t, Node: n, Path: p, Type: typ, Self: h})
		}
	}

	for _, seg := range n.Children() {
		child, ok := n.children[seg]
		if !ok {
			continue
		}
		t.fire(child, path.Join(p, seg), typ, payload)
	}
}

func (t *Tree) invoke(l Listener, payload any, c *Context) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error().Str("path", c.Path).Str("type", c.Type).
				Stringer("handle", c.Self).Interface("panic", r).Msg("listener panicked")
			t.report(ActionDispatch, c.Path, c.Type, c.Self, fmt.Errorf("%w: %v", ErrListenerPanic, r))
		}
	}()
	l(payload, c)
}

// anomaly logs a non-fatal condition and forwards it to the reporter.
func (t *Tree) anomaly(op Kind, p, typ string, h handle.Handle, err error) {
	t.logger.Warn().Err(err).Str("action", op.String()).Str("path", p).
		Str("type", typ).Stringer("handle", h).Msgf("%s had no effect", op)
	t.report(op, p, typ, h, err)
}

func (t *Tree) report(op Kind, p, typ string, h handle.Handle, err error) {
	if t.reporter == nil {
		return
	}
	t.reporter(&ActionError{Op: op, Path: p, Type: typ, Handle: h, Err: err})
}
