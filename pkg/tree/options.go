// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package tree

import "github.com/rs/zerolog"

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the logger the tree derives its component logger from.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Tree) {
		t.logger = logger
	}
}

// WithReporter registers fn to receive every anomaly as an *ActionError.
// fn runs synchronously on the goroutine that applies the action.
func WithReporter(fn func(error)) Option {
	return func(t *Tree) {
		t.reporter = fn
	}
}

// WithTracer registers fn to observe actions. fn is called with queued set
// when an action is pushed onto the queue, and with queued unset right
// before an action is applied. Registrations cancelled while queued are
// never traced as applied.
func WithTracer(fn func(a Action, queued bool)) Option {
	return func(t *Tree) {
		t.tracer = fn
	}
}

// ActionOption configures a single Listen, Deafen or Dispatch call.
type ActionOption func(*actionConfig)

type actionConfig struct {
	path     string
	deferred bool
}

func newActionConfig(opts []ActionOption) actionConfig {
	cfg := actionConfig{deferred: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithPath targets the node at p instead of the root.
func WithPath(p string) ActionOption {
	return func(c *actionConfig) {
		c.path = p
	}
}

// WithDefer selects between queueing the action for the next Poll (true,
// the default) and applying it immediately (false).
func WithDefer(deferred bool) ActionOption {
	return func(c *actionConfig) {
		c.deferred = deferred
	}
}

// Immediate is shorthand for WithDefer(false).
func Immediate() ActionOption {
	return WithDefer(false)
}
