// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package script describes scenarios as YAML documents and runs them
// against a fresh tree.
//
// A scenario is a list of steps, each one a listen, deafen, dispatch or
// poll, plus optional expectations on how often each named listener fired:
//
//	name: button click
//	steps:
//	  - op: listen
//	    type: click
//	    path: ui/button
//	    name: onClick
//	    mode: once
//	  - op: dispatch
//	    type: click
//	    path: ui
//	    payload: {x: 1}
//	expect:
//	  fired:
//	    onClick: 1
package script

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Op is the kind of a step.
type Op string

const (
	OpListen   Op = "listen"
	OpDeafen   Op = "deafen"
	OpDispatch Op = "dispatch"
	OpPoll     Op = "poll"
)

// Mode selects the listener wrapper used by a listen step.
type Mode string

const (
	ModeRecord Mode = "record"
	ModeOnce   Mode = "once"
	ModeUpto   Mode = "upto"
)

// Script is a parsed scenario.
type Script struct {
	Name   string `yaml:"name" validate:"required"`
	Steps  []Step `yaml:"steps" validate:"required,min=1"`
	Expect Expect `yaml:"expect"`

	// Source is the file the script was loaded from, if any.
	Source string `yaml:"-"`
}

// Step is one scripted action.
type Step struct {
	Op   Op     `yaml:"op" validate:"required,oneof=listen deafen dispatch poll"`
	Type string `yaml:"type"`
	Path string `yaml:"path"`

	// Name identifies a listener. A listen step with a new name creates a
	// listener; one with a known name registers the same handle again.
	// A deafen step uses it to pick the handle to remove.
	Name  string `yaml:"name"`
	Mode  Mode   `yaml:"mode" validate:"omitempty,oneof=record once upto"`
	Times any    `yaml:"times"`

	Payload any   `yaml:"payload"`
	Defer   *bool `yaml:"defer"`

	Line int `yaml:"-"`
}

// Expect holds the assertions checked after a run.
type Expect struct {
	// Fired maps listener names to how many times they must have fired.
	Fired map[string]any `yaml:"fired"`
	// Anomalies, when set, is the exact number of anomalies expected.
	Anomalies any `yaml:"anomalies"`
}

// Load reads, parses and validates the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Source = path
	return s, nil
}

// Parse decodes a YAML scenario and validates it.
func Parse(data []byte) (*Script, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidScript)
	}

	var s Script
	if err := doc.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	annotateLines(doc.Content[0], s.Steps)

	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// annotateLines copies the source line of each step node onto steps.
func annotateLines(root *yaml.Node, steps []Step) {
	if root.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "steps" {
			continue
		}
		seq := root.Content[i+1]
		for j, item := range seq.Content {
			if j < len(steps) {
				steps[j].Line = item.Line
			}
		}
		return
	}
}

// Deferred reports whether the step is queued, falling back to def when
// the step does not say.
func (st Step) Deferred(def bool) bool {
	if st.Defer == nil {
		return def
	}
	return *st.Defer
}
