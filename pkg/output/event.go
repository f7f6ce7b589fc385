// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package output

import "time"

// EventType classifies an OutputEvent.
type EventType string

const (
	// EventQueued reports an action pushed onto the tree's queue.
	EventQueued EventType = "queued"
	// EventApplied reports an action applied to the tree, immediately or by a poll.
	EventApplied EventType = "applied"
	// EventFired reports a listener invocation.
	EventFired EventType = "fired"
	// EventPoll reports a completed poll and how many actions it applied.
	EventPoll EventType = "poll"
	// EventAnomaly reports an action that had no effect, or a listener failure.
	EventAnomaly EventType = "anomaly"
	// EventSummary closes a run.
	EventSummary EventType = "summary"
	// EventDiag carries free-form diagnostics filtered by OutputLevel.
	EventDiag EventType = "diag"
)

// OutputLevel is the verbosity of a diagnostic event.
type OutputLevel int

const (
	LevelNormal OutputLevel = iota
	LevelVerbose
	LevelDebug
	LevelTrace
)

// Reason values carried by anomaly events.
const (
	ReasonNotFound      = "not-found"
	ReasonDuplicate     = "duplicate"
	ReasonMissingHandle = "missing-handle"
	ReasonStaleHandle   = "stale-handle"
	ReasonPanic         = "listener-panic"
	ReasonPayloadType   = "payload-type"
	ReasonOther         = "other"
)

// OutputEvent is one line of run output. Fields irrelevant to Type are left zero.
type OutputEvent struct {
	Type      EventType   `json:"type"`
	Level     OutputLevel `json:"-"`
	Timestamp time.Time   `json:"ts"`

	Step   int    `json:"step,omitempty"`
	Op     string `json:"op,omitempty"`
	Path   string `json:"path,omitempty"`
	Event  string `json:"event,omitempty"`
	Name   string `json:"name,omitempty"`
	Handle string `json:"handle,omitempty"`
	Count  int    `json:"count,omitempty"`

	Payload any    `json:"payload,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewEvent returns an event of the given type stamped with the current time.
func NewEvent(typ EventType) OutputEvent {
	return OutputEvent{Type: typ, Timestamp: time.Now()}
}

// Diag builds a diagnostic event at level.
func Diag(level OutputLevel, message string) OutputEvent {
	ev := NewEvent(EventDiag)
	ev.Level = level
	ev.Message = message
	return ev
}
