// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package script

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yggy/yggy/pkg/event"
)

func TestLoad_Basic(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "basic.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "basic", s.Name)
	assert.Equal(t, filepath.Join("testdata", "basic.yaml"), s.Source)
	require.Len(t, s.Steps, 4)

	assert.Equal(t, OpListen, s.Steps[0].Op)
	assert.Equal(t, ModeRecord, s.Steps[0].Mode, "mode defaults to record")
	assert.Equal(t, ModeOnce, s.Steps[1].Mode)
	assert.Equal(t, map[string]any{"x": 1}, s.Steps[2].Payload)
	assert.Nil(t, s.Steps[3].Payload)

	assert.Equal(t, 3, s.Steps[0].Line)
	assert.Equal(t, 7, s.Steps[1].Line)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStep_Deferred(t *testing.T) {
	yes, no := true, false
	assert.True(t, Step{}.Deferred(true))
	assert.False(t, Step{}.Deferred(false))
	assert.True(t, Step{Defer: &yes}.Deferred(false))
	assert.False(t, Step{Defer: &no}.Deferred(true))
}

func TestParse_WholeFloatCountsAreAccepted(t *testing.T) {
	s, err := Parse([]byte("name: x\nsteps:\n  - {op: poll, times: 2.0}\n"))
	require.NoError(t, err)
	n, err := times(s.Steps[0].Times, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
		line  int
	}{
		{
			name: "not yaml",
			doc:  "name: [",
		},
		{
			name: "empty",
			doc:  "",
		},
		{
			name: "missing name",
			doc:  "steps:\n  - op: poll\n",
		},
		{
			name: "no steps",
			doc:  "name: x\nsteps: []\n",
		},
		{
			name: "unknown op",
			doc:  "name: x\nsteps:\n  - op: shout\n",
			line: 3,
		},
		{
			name:  "listen without name",
			doc:   "name: x\nsteps:\n  - op: listen\n    type: t\n",
			field: "name",
			line:  3,
		},
		{
			name:  "dispatch without type",
			doc:   "name: x\nsteps:\n  - op: poll\n  - op: dispatch\n",
			field: "type",
			line:  4,
		},
		{
			name:  "deafen unknown listener",
			doc:   "name: x\nsteps:\n  - op: deafen\n    name: ghost\n",
			field: "name",
		},
		{
			name:  "upto without times",
			doc:   "name: x\nsteps:\n  - {op: listen, type: t, name: a, mode: upto}\n",
			field: "times",
		},
		{
			name:  "times on record",
			doc:   "name: x\nsteps:\n  - {op: listen, type: t, name: a, times: 2}\n",
			field: "times",
		},
		{
			name:  "redeclared with another mode",
			doc:   "name: x\nsteps:\n  - {op: listen, type: t, name: a}\n  - {op: listen, type: t, name: a, mode: once}\n",
			field: "mode",
		},
		{
			name:  "poll zero times",
			doc:   "name: x\nsteps:\n  - {op: poll, times: 0}\n",
			field: "times",
		},
		{
			name:  "fractional poll times",
			doc:   "name: x\nsteps:\n  - {op: poll, times: 2.9}\n",
			field: "times",
		},
		{
			name:  "fractional upto times",
			doc:   "name: x\nsteps:\n  - {op: listen, type: t, name: a, mode: upto, times: 1.5}\n",
			field: "times",
		},
		{
			name:  "fractional expected count",
			doc:   "name: x\nsteps:\n  - {op: listen, type: t, name: a}\nexpect:\n  fired:\n    a: 1.5\n",
			field: "fired.a",
		},
		{
			name:  "non-string payload keys",
			doc:   "name: x\nsteps:\n  - op: dispatch\n    type: t\n    payload: {1: a}\n",
			field: "payload",
		},
		{
			name:  "expect unknown listener",
			doc:   "name: x\nsteps:\n  - {op: poll}\nexpect:\n  fired:\n    ghost: 1\n",
			field: "fired",
		},
		{
			name:  "expect bad count",
			doc:   "name: x\nsteps:\n  - {op: listen, type: t, name: a}\nexpect:\n  fired:\n    a: lots\n",
			field: "fired.a",
		},
		{
			name:  "expect negative anomalies",
			doc:   "name: x\nsteps:\n  - {op: poll}\nexpect:\n  anomalies: -1\n",
			field: "anomalies",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidScript)

			var serr *StepError
			if tt.field == "" && tt.line == 0 {
				return
			}
			require.ErrorAs(t, err, &serr)
			if tt.field != "" {
				assert.Equal(t, tt.field, serr.Field)
			}
			if tt.line != 0 {
				assert.Equal(t, tt.line, serr.Line)
			}
		})
	}
}

func TestParse_PayloadErrorIsReachable(t *testing.T) {
	_, err := Parse([]byte("name: x\nsteps:\n  - op: dispatch\n    type: t\n    payload: {1: a}\n"))
	assert.ErrorIs(t, err, event.ErrInvalidPayload)
}

func TestParse_ReusedListenerKeepsMode(t *testing.T) {
	s, err := Parse([]byte("name: x\nsteps:\n  - {op: listen, type: t, name: a, mode: upto, times: 2}\n  - {op: listen, type: u, path: b, name: a}\n"))
	require.NoError(t, err)
	assert.Equal(t, Mode(""), s.Steps[1].Mode, "reused listeners keep the declaring step's mode")
}

func TestStepError_Message(t *testing.T) {
	err := &StepError{Index: 1, Line: 9, Field: "type", Err: assert.AnError}
	assert.Equal(t, "step 2 (line 9) type: "+assert.AnError.Error(), err.Error())

	err = &StepError{Index: -1, Field: "fired", Err: assert.AnError}
	assert.Equal(t, "expect fired: "+assert.AnError.Error(), err.Error())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{assert.AnError, 1},
		{&StepError{Index: 0, Err: assert.AnError}, 2},
		{&ExpectationError{}, 3},
		{fmt.Errorf("read: %w", os.ErrNotExist), 4},
		{fmt.Errorf("auto-poll: %w", ErrPollLimit), 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "%v", tt.err)
	}
}
