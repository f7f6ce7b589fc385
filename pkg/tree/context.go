// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package tree

import "github.com/yggy/yggy/pkg/handle"

// Context is handed to a listener each time it fires.
type Context struct {
	Tree *Tree
	Node *Node
	// Path is the path of the node currently firing, which is the dispatch
	// target or one of its descendants.
	Path string
	Type string
	// Self is the firing listener's own handle.
	Self handle.Handle
}

// Deafen removes the firing listener from the (Path, Type) registry, either
// on the next Poll or immediately.
func (c *Context) Deafen(deferred bool) {
	c.Tree.Deafen(c.Type, c.Self, WithPath(c.Path), WithDefer(deferred))
}
