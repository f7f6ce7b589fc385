// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package subscribers

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/yggy/yggy/pkg/output"
)

// Lipgloss styles for diagnostic messages
var (
	// Unknown node or handle - yellow
	missingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	// Duplicate registration - cyan
	duplicateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	// Stale handle - orange
	staleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	// Listener failures - red
	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	// Generic diagnostic - gray
	diagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	metaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// DiagnosticSubscriber renders anomalies and verbosity-filtered diagnostics,
// typically to stderr.
type DiagnosticSubscriber struct {
	level        output.OutputLevel
	writer       io.Writer
	colorEnabled bool
	anomalies    bool
}

// NewDiagnosticSubscriber creates a DiagnosticSubscriber showing diagnostics up
// to level. When anomalies is false, anomaly events are left to another
// subscriber (JSON mode reports them on stdout).
func NewDiagnosticSubscriber(level output.OutputLevel, writer io.Writer, colorEnabled, anomalies bool) *DiagnosticSubscriber {
	return &DiagnosticSubscriber{
		level:        level,
		writer:       writer,
		colorEnabled: colorEnabled,
		anomalies:    anomalies,
	}
}

// Name returns the subscriber identifier.
func (s *DiagnosticSubscriber) Name() string {
	return "diagnostic-subscriber"
}

// ShouldHandle accepts anomalies (when enabled) and diagnostics at or below
// the subscriber's level.
func (s *DiagnosticSubscriber) ShouldHandle(event output.OutputEvent) bool {
	switch event.Type {
	case output.EventAnomaly:
		return s.anomalies
	case output.EventDiag:
		return event.Level <= s.level
	default:
		return false
	}
}

// Handle renders one event.
func (s *DiagnosticSubscriber) Handle(event output.OutputEvent) {
	var line string
	if event.Type == output.EventAnomaly {
		line = fmt.Sprintf("! step %d: %s %s %s %s: %s",
			event.Step, event.Op, displayPath(event.Path), event.Event, event.Handle, event.Message)
	} else {
		line = fmt.Sprintf("%s %s %s", getLevelPrefix(event.Level), event.Timestamp.Format("15:04:05"), event.Message)
	}

	if s.colorEnabled {
		line = styleFor(event).Render(line)
	}
	fmt.Fprintln(s.writer, line)

	if len(event.Metadata) > 0 {
		meta := fmt.Sprintf("    %+v", event.Metadata)
		if s.colorEnabled {
			meta = metaStyle.Render(meta)
		}
		fmt.Fprintln(s.writer, meta)
	}
}

func styleFor(event output.OutputEvent) lipgloss.Style {
	if event.Type != output.EventAnomaly {
		return diagStyle
	}
	switch event.Reason {
	case output.ReasonNotFound, output.ReasonMissingHandle:
		return missingStyle
	case output.ReasonDuplicate:
		return duplicateStyle
	case output.ReasonStaleHandle:
		return staleStyle
	case output.ReasonPanic, output.ReasonPayloadType:
		return failStyle
	default:
		return diagStyle
	}
}

// getLevelPrefix returns the display prefix for a given output level.
func getLevelPrefix(level output.OutputLevel) string {
	switch level {
	case output.LevelVerbose:
		return "[VERBOSE]"
	case output.LevelDebug:
		return "[DEBUG]"
	case output.LevelTrace:
		return "[TRACE]"
	default:
		return "[INFO]"
	}
}
