// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package script

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cast"

	"github.com/yggy/yggy/pkg/output"
	"github.com/yggy/yggy/pkg/tree"
)

// Anomaly is a tree anomaly observed during a run.
type Anomaly struct {
	Step   int    `json:"step"`
	Op     string `json:"op"`
	Path   string `json:"path"`
	Type   string `json:"type,omitempty"`
	Handle string `json:"handle,omitempty"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Result summarizes a run.
type Result struct {
	Name string `json:"name"`

	// Fired counts listener invocations by listener name.
	Fired     map[string]int `json:"fired"`
	Queued    int            `json:"queued"`
	Applied   int            `json:"applied"`
	Polls     int            `json:"polls"`
	Pending   int            `json:"pending"`
	Anomalies []Anomaly      `json:"anomalies,omitempty"`

	// Tree is the tree the scenario ran against, left in its final state.
	Tree *tree.Tree `json:"-"`
}

// Names returns the listener names that fired, sorted.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Fired))
	for name := range r.Fired {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary is a one-line description of the run.
func (r *Result) Summary() string {
	total := 0
	for _, n := range r.Fired {
		total += n
	}
	return fmt.Sprintf("%s: %d fired, %d applied, %d poll(s), %d anomaly(ies), %d pending",
		r.Name, total, r.Applied, r.Polls, len(r.Anomalies), r.Pending)
}

// check compares r against exp. Counts were validated when the script was
// parsed, so conversion errors are not expected here.
func (r *Result) check(exp Expect) error {
	var mismatches []Mismatch

	names := make([]string, 0, len(exp.Fired))
	for name := range exp.Fired {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		want := cast.ToInt(exp.Fired[name])
		if got := r.Fired[name]; got != want {
			mismatches = append(mismatches, Mismatch{Subject: "fired." + name, Want: want, Got: got})
		}
	}

	if exp.Anomalies != nil {
		want := cast.ToInt(exp.Anomalies)
		if got := len(r.Anomalies); got != want {
			mismatches = append(mismatches, Mismatch{Subject: "anomalies", Want: want, Got: got})
		}
	}

	if len(mismatches) == 0 {
		return nil
	}
	return &ExpectationError{Mismatches: mismatches}
}

// reason maps a tree anomaly to its output reason code.
func reason(err error) string {
	switch {
	case errors.Is(err, tree.ErrNotFound):
		return output.ReasonNotFound
	case errors.Is(err, tree.ErrDuplicate):
		return output.ReasonDuplicate
	case errors.Is(err, tree.ErrMissingHandle):
		return output.ReasonMissingHandle
	case errors.Is(err, tree.ErrStaleHandle):
		return output.ReasonStaleHandle
	case errors.Is(err, tree.ErrListenerPanic):
		return output.ReasonPanic
	case errors.Is(err, tree.ErrPayloadType):
		return output.ReasonPayloadType
	default:
		return output.ReasonOther
	}
}
