// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package appctx carries process-wide collaborators on a context.Context so
// cobra commands can share them without globals.
package appctx

import (
	"context"

	"github.com/yggy/yggy/pkg/config"
	"github.com/yggy/yggy/pkg/output"
)

type key string

const (
	configKey key = "yggy.config.manager"
	streamKey key = "yggy.output.stream"
)

// WithConfig stores the shared config manager on context.
func WithConfig(ctx context.Context, manager *config.Manager) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, configKey, manager)
}

// Config retrieves the shared config manager from context.
func Config(ctx context.Context) (*config.Manager, bool) {
	if ctx == nil {
		return nil, false
	}
	mgr, ok := ctx.Value(configKey).(*config.Manager)
	return mgr, ok && mgr != nil
}

// WithStream stores the output stream commands emit run events to.
func WithStream(ctx context.Context, stream *output.Stream) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, streamKey, stream)
}

// Stream retrieves the output stream from context.
func Stream(ctx context.Context) (*output.Stream, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(streamKey).(*output.Stream)
	return s, ok && s != nil
}
