// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package tree

import (
	"fmt"

	"github.com/yggy/yggy/pkg/event"
	"github.com/yggy/yggy/pkg/handle"
	"github.com/yggy/yggy/pkg/path"
)

// Kind identifies what an Action does.
type Kind uint8

const (
	ActionListen Kind = iota + 1
	ActionDeafen
	ActionDispatch
)

func (k Kind) String() string {
	switch k {
	case ActionListen:
		return "listen"
	case ActionDeafen:
		return "deafen"
	case ActionDispatch:
		return "dispatch"
	default:
		return fmt.Sprintf("action(%d)", uint8(k))
	}
}

// Action is an immutable request against a Tree. It is either queued for
// the next Poll or applied immediately.
type Action struct {
	kind    Kind
	path    string
	typ     string
	handle  handle.Handle
	payload any
}

func newListen(p, typ string, h handle.Handle) Action {
	return Action{kind: ActionListen, path: path.Clean(p), typ: typ, handle: h}
}

func newDeafen(p, typ string, h handle.Handle) Action {
	return Action{kind: ActionDeafen, path: path.Clean(p), typ: typ, handle: h}
}

// newDispatch keeps its own copy of payload so the action cannot change
// after it is queued.
func newDispatch(p, typ string, payload any) Action {
	return Action{kind: ActionDispatch, path: path.Clean(p), typ: typ, payload: event.Clone(payload)}
}

// Kind returns the action kind.
func (a Action) Kind() Kind { return a.kind }

// Path returns the canonical target path.
func (a Action) Path() string { return a.path }

// Type returns the event type. It is empty for a deafen without a type.
func (a Action) Type() string { return a.typ }

// Handle returns the handle the action refers to, or handle.Nil.
func (a Action) Handle() handle.Handle { return a.handle }

// Payload returns the dispatch payload.
func (a Action) Payload() any { return a.payload }

func (a Action) String() string {
	s := fmt.Sprintf("%s %q", a.kind, a.path)
	if a.typ != "" {
		s += " type=" + a.typ
	}
	if !a.handle.IsNil() {
		s += " handle=" + a.handle.String()
	}
	return s
}
