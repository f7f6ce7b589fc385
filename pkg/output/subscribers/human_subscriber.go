// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package subscribers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/yggy/yggy/pkg/output"
	"github.com/yggy/yggy/pkg/stringutil"
)

// HumanSubscriber renders run events as aligned text lines.
// Anomalies and diagnostics are left to DiagnosticSubscriber.
type HumanSubscriber struct {
	writer  io.Writer
	verbose bool

	op, path, name, dim, ok, bad *color.Color
}

// NewHumanSubscriber creates a HumanSubscriber. Queued and applied actions are
// only printed when verbose is set.
func NewHumanSubscriber(w io.Writer, colorEnabled, verbose bool) *HumanSubscriber {
	s := &HumanSubscriber{
		writer:  w,
		verbose: verbose,
		op:      color.New(color.FgCyan),
		path:    color.New(color.FgBlue),
		name:    color.New(color.Bold),
		dim:     color.New(color.FgHiBlack),
		ok:      color.New(color.FgGreen),
		bad:     color.New(color.FgRed),
	}
	for _, c := range []*color.Color{s.op, s.path, s.name, s.dim, s.ok, s.bad} {
		if colorEnabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// Name returns the subscriber identifier.
func (s *HumanSubscriber) Name() string { return "human-subscriber" }

// ShouldHandle accepts everything except anomalies and diagnostics.
func (s *HumanSubscriber) ShouldHandle(event output.OutputEvent) bool {
	switch event.Type {
	case output.EventFired, output.EventPoll, output.EventSummary:
		return true
	case output.EventQueued, output.EventApplied:
		return s.verbose
	default:
		return false
	}
}

// Handle writes one line per event.
func (s *HumanSubscriber) Handle(event output.OutputEvent) {
	switch event.Type {
	case output.EventQueued:
		fmt.Fprintf(s.writer, "  %s %-8s %s %s %s\n",
			s.dim.Sprint("~"), s.op.Sprint(event.Op), s.path.Sprint(displayPath(event.Path)), event.Event, s.dim.Sprint(event.Handle))
	case output.EventApplied:
		fmt.Fprintf(s.writer, "  %s %-8s %s %s %s\n",
			s.dim.Sprint("="), s.op.Sprint(event.Op), s.path.Sprint(displayPath(event.Path)), event.Event, s.dim.Sprint(event.Handle))
	case output.EventFired:
		line := fmt.Sprintf("  %s %s %s @ %s", s.ok.Sprint("*"), s.name.Sprint(event.Name), event.Event, s.path.Sprint(displayPath(event.Path)))
		if event.Payload != nil {
			line += " " + s.dim.Sprint(compact(event.Payload))
		}
		fmt.Fprintln(s.writer, line)
	case output.EventPoll:
		fmt.Fprintf(s.writer, "%s applied %d action(s)\n", s.op.Sprint("poll"), event.Count)
	case output.EventSummary:
		c := s.ok
		mark := "✓"
		if failed, _ := event.Metadata["failed"].(bool); failed {
			c, mark = s.bad, "✗"
		}
		c.Fprintf(s.writer, "%s %s\n", mark, event.Message)
	}
}

func displayPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

// maxPayload bounds the rendered payload width in runes.
const maxPayload = 72

func compact(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return stringutil.Ellipsis(fmt.Sprintf("%v", v), maxPayload)
	}
	return stringutil.Ellipsis(string(b), maxPayload)
}
