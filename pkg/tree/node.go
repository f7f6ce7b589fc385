// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package tree

import (
	"slices"
	"sort"

	"github.com/yggy/yggy/pkg/handle"
	"github.com/yggy/yggy/pkg/path"
)

// registry is the ordered set of handles registered for one event type.
type registry struct {
	handles []handle.Handle
	set     map[handle.Handle]struct{}
}

func newRegistry() *registry {
	return &registry{set: make(map[handle.Handle]struct{})}
}

func (r *registry) add(h handle.Handle) bool {
	if r.has(h) {
		return false
	}
	r.handles = append(r.handles, h)
	r.set[h] = struct{}{}
	return true
}

func (r *registry) remove(h handle.Handle) bool {
	if !r.has(h) {
		return false
	}
	delete(r.set, h)
	r.handles = slices.DeleteFunc(r.handles, func(x handle.Handle) bool { return x == h })
	return true
}

func (r *registry) has(h handle.Handle) bool {
	_, ok := r.set[h]
	return ok
}

// snapshot returns a copy of the handles in registration order.
func (r *registry) snapshot() []handle.Handle {
	return slices.Clone(r.handles)
}

func (r *registry) clear() []handle.Handle {
	removed := r.handles
	r.handles = nil
	r.set = make(map[handle.Handle]struct{})
	return removed
}

// Node is a vertex of a Tree. It owns its children, kept in creation order,
// and one handle registry per event type.
//
// Nodes are created by registration or by Tree.Require and are only removed
// by a deafen that clears their path. A Node is not safe for concurrent use.
type Node struct {
	segment    string
	parent     *Node
	children   map[string]*Node
	order      []string
	registries map[string]*registry
}

func newNode(segment string, parent *Node) *Node {
	return &Node{
		segment:    segment,
		parent:     parent,
		children:   make(map[string]*Node),
		registries: make(map[string]*registry),
	}
}

// Segment returns the node's own path segment; it is empty for the root.
func (n *Node) Segment() string {
	return n.segment
}

// Children returns the child segments in creation order.
func (n *Node) Children() []string {
	return slices.Clone(n.order)
}

// Child returns the direct child for segment.
func (n *Node) Child(segment string) (*Node, bool) {
	c, ok := n.children[segment]
	return c, ok
}

// Types returns the event types with at least one registered handle, sorted.
func (n *Node) Types() []string {
	types := make([]string, 0, len(n.registries))
	for typ, r := range n.registries {
		if len(r.handles) > 0 {
			types = append(types, typ)
		}
	}
	sort.Strings(types)
	return types
}

// Handlers returns the handles registered for typ in registration order.
func (n *Node) Handlers(typ string) []handle.Handle {
	r, ok := n.registries[typ]
	if !ok {
		return nil
	}
	return r.snapshot()
}

// Has reports whether h is registered for typ at this node.
func (n *Node) Has(typ string, h handle.Handle) bool {
	r, ok := n.registries[typ]
	return ok && r.has(h)
}

// Len returns the number of handles registered at this node across all types.
func (n *Node) Len() int {
	total := 0
	for _, r := range n.registries {
		total += len(r.handles)
	}
	return total
}

// Walk visits n and its descendants depth-first in pre-order. base is the
// path of n; fn receives each node's full path.
func (n *Node) Walk(base string, fn func(p string, node *Node)) {
	fn(base, n)
	for _, seg := range n.order {
		if c, ok := n.children[seg]; ok {
			c.Walk(path.Join(base, seg), fn)
		}
	}
}

// require walks segments from n, creating missing children.
func (n *Node) require(segments []string) *Node {
	cur := n
	for _, seg := range segments {
		next, ok := cur.children[seg]
		if !ok {
			next = newNode(seg, cur)
			cur.children[seg] = next
			cur.order = append(cur.order, seg)
		}
		cur = next
	}
	return cur
}

// request walks segments from n without creating anything.
func (n *Node) request(segments []string) (*Node, bool) {
	cur := n
	for _, seg := range segments {
		next, ok := cur.children[seg]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func (n *Node) add(typ string, h handle.Handle) bool {
	r, ok := n.registries[typ]
	if !ok {
		r = newRegistry()
		n.registries[typ] = r
	}
	return r.add(h)
}

// removeHandle drops h from every registry at n and returns how many
// registries held it.
func (n *Node) removeHandle(h handle.Handle) int {
	removed := 0
	for _, r := range n.registries {
		if r.remove(h) {
			removed++
		}
	}
	return removed
}

// clear empties n and its whole subtree and detaches n from its parent.
// It returns every handle that was registered in the subtree.
func (n *Node) clear() []handle.Handle {
	var removed []handle.Handle
	for _, r := range n.registries {
		removed = append(removed, r.clear()...)
	}
	n.registries = make(map[string]*registry)

	for _, seg := range n.order {
		if c, ok := n.children[seg]; ok {
			c.parent = nil
			removed = append(removed, c.clear()...)
		}
	}
	n.children = make(map[string]*Node)
	n.order = nil

	if n.parent != nil {
		n.parent.detach(n.segment)
		n.parent = nil
	}
	return removed
}

func (n *Node) detach(segment string) {
	if _, ok := n.children[segment]; !ok {
		return
	}
	delete(n.children, segment)
	n.order = slices.DeleteFunc(n.order, func(s string) bool { return s == segment })
}
