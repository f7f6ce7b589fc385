// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name   string
	accept EventType
	seen   []OutputEvent
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) ShouldHandle(ev OutputEvent) bool {
	return r.accept == "" || ev.Type == r.accept
}

func (r *recorder) Handle(ev OutputEvent) { r.seen = append(r.seen, ev) }

func TestStream_EmitFiltersAndKeepsOrder(t *testing.T) {
	s := NewStream()
	all := &recorder{name: "all"}
	fired := &recorder{name: "fired", accept: EventFired}
	s.Subscribe(all)
	s.Subscribe(fired)
	assert.Equal(t, 2, s.SubscriberCount())

	s.Emit(NewEvent(EventQueued))
	s.Emit(NewEvent(EventFired))
	s.Emit(Diag(LevelDebug, "hello"))

	assert.Len(t, all.seen, 3)
	assert.Equal(t, []EventType{EventQueued, EventFired, EventDiag},
		[]EventType{all.seen[0].Type, all.seen[1].Type, all.seen[2].Type})
	assert.Len(t, fired.seen, 1)
}

func TestStream_NilIsNoop(t *testing.T) {
	var s *Stream
	assert.NotPanics(t, func() { s.Emit(NewEvent(EventPoll)) })
}

func TestDiag(t *testing.T) {
	ev := Diag(LevelTrace, "x")
	assert.Equal(t, EventDiag, ev.Type)
	assert.Equal(t, LevelTrace, ev.Level)
	assert.Equal(t, "x", ev.Message)
	assert.False(t, ev.Timestamp.IsZero())
}
