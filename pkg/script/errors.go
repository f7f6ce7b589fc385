// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package script

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrInvalidScript is returned when a script fails to parse or validate.
	ErrInvalidScript = errors.New("invalid script")

	// ErrExpectation is returned by Runner.Run when a run completes but its
	// outcome differs from the script's expect block.
	ErrExpectation = errors.New("expectation not met")

	// ErrPollLimit is returned when auto-poll still finds queued actions
	// after the configured maximum number of polls.
	ErrPollLimit = errors.New("poll limit reached")
)

// StepError locates a validation failure in a script.
type StepError struct {
	Index int // zero-based step index, -1 for the expect block
	Line  int // source line, 0 when unknown
	Field string
	Err   error
}

func (e *StepError) Error() string {
	var b strings.Builder
	if e.Index < 0 {
		b.WriteString("expect")
	} else {
		fmt.Fprintf(&b, "step %d", e.Index+1)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	if e.Field != "" {
		b.WriteString(" " + e.Field)
	}
	return b.String() + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() []error {
	return []error{ErrInvalidScript, e.Err}
}

// Mismatch is one unmet expectation.
type Mismatch struct {
	Subject string `json:"subject"`
	Want    int    `json:"want"`
	Got     int    `json:"got"`
}

// ExpectationError lists every unmet expectation of a run.
type ExpectationError struct {
	Mismatches []Mismatch
}

func (e *ExpectationError) Error() string {
	parts := make([]string, 0, len(e.Mismatches))
	for _, m := range e.Mismatches {
		parts = append(parts, fmt.Sprintf("%s: want %d, got %d", m.Subject, m.Want, m.Got))
	}
	return ErrExpectation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ExpectationError) Unwrap() error { return ErrExpectation }

// ExitCode maps an error returned by Load, Parse or Runner.Run to a process
// exit code.
//
//   - 0: success
//   - 1: general error
//   - 2: invalid script
//   - 3: expectation not met
//   - 4: script file not found
//   - 5: poll limit reached
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch {
	case errors.Is(err, ErrInvalidScript):
		return 2
	case errors.Is(err, ErrExpectation):
		return 3
	case errors.Is(err, os.ErrNotExist):
		return 4
	case errors.Is(err, ErrPollLimit):
		return 5
	default:
		return 1
	}
}
