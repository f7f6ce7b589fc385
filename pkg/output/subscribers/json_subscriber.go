// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package subscribers

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/yggy/yggy/pkg/output"
)

// JSONSubscriber writes every non-diagnostic event as one JSON object per line.
type JSONSubscriber struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONSubscriber creates a JSONSubscriber writing to w.
func NewJSONSubscriber(w io.Writer) *JSONSubscriber {
	return &JSONSubscriber{enc: json.NewEncoder(w)}
}

func (s *JSONSubscriber) Name() string { return "json-subscriber" }

func (s *JSONSubscriber) ShouldHandle(event output.OutputEvent) bool {
	return event.Type != output.EventDiag
}

func (s *JSONSubscriber) Handle(event output.OutputEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.enc.Encode(event)
}
