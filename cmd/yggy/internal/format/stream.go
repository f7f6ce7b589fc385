// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"io"

	"github.com/yggy/yggy/pkg/output"
	"github.com/yggy/yggy/pkg/output/subscribers"
)

// NewStream wires the output stream for a run: JSON lines on stdout in JSON
// mode, text otherwise, and diagnostics on stderr. verbosity is the number of
// -v flags.
func NewStream(f Formatter, stdout, stderr io.Writer, verbosity int) *output.Stream {
	level := output.OutputLevel(verbosity)
	if level > output.LevelTrace {
		level = output.LevelTrace
	}

	s := output.NewStream()
	if f.Mode() == ModeJSON {
		s.Subscribe(subscribers.NewJSONSubscriber(stdout))
		s.Subscribe(subscribers.NewDiagnosticSubscriber(level, stderr, false, false))
		return s
	}
	s.Subscribe(subscribers.NewHumanSubscriber(stdout, f.Color(), verbosity > 0))
	s.Subscribe(subscribers.NewDiagnosticSubscriber(level, stderr, f.Color(), true))
	return s
}
