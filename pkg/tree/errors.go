// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package tree

import (
	"errors"
	"fmt"

	"github.com/yggy/yggy/pkg/handle"
)

// Anomalies reported by a Tree. None of them aborts the caller: the action
// is logged, handed to the reporter and otherwise ignored.
var (
	// ErrNotFound is reported when a deafen targets a path or (path, type)
	// pair with no registration.
	ErrNotFound = errors.New("no such registration")

	// ErrDuplicate is reported when a handle is registered twice in the same
	// (path, type) registry.
	ErrDuplicate = errors.New("handler already registered")

	// ErrMissingHandle is reported when a deafen names a handle absent from
	// the target registry.
	ErrMissingHandle = errors.New("handler not registered")

	// ErrStaleHandle is reported when a handle no longer resolves to a
	// listener.
	ErrStaleHandle = errors.New("stale handle")

	// ErrListenerPanic is reported when a listener panics during dispatch.
	ErrListenerPanic = errors.New("listener panicked")

	// ErrPayloadType is reported by typed listeners that receive a payload
	// of another type.
	ErrPayloadType = errors.New("unexpected payload type")
)

// ActionError describes an anomaly raised while applying an action.
type ActionError struct {
	Op     Kind
	Path   string
	Type   string
	Handle handle.Handle
	Err    error
}

// Error implements the error interface.
func (e *ActionError) Error() string {
	msg := fmt.Sprintf("%s path=%q", e.Op, e.Path)
	if e.Type != "" {
		msg += fmt.Sprintf(" type=%q", e.Type)
	}
	if !e.Handle.IsNil() {
		msg += " handle=" + e.Handle.String()
	}
	return msg + ": " + e.Err.Error()
}

// Unwrap returns the underlying sentinel.
func (e *ActionError) Unwrap() error {
	return e.Err
}
