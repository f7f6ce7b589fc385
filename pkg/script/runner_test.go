// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package script

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yggy/yggy/pkg/config"
	"github.com/yggy/yggy/pkg/output"
)

type collector struct {
	events []output.OutputEvent
}

func (c *collector) Name() string { return "collector" }

func (c *collector) ShouldHandle(output.OutputEvent) bool { return true }

func (c *collector) Handle(ev output.OutputEvent) { c.events = append(c.events, ev) }

func (c *collector) types() (out []output.EventType) {
	for _, ev := range c.events {
		out = append(out, ev.Type)
	}
	return out
}

func newTestRunner(t *testing.T, mutate func(*config.RunConfig)) (*Runner, *collector) {
	t.Helper()
	cfg := config.DefaultConfig().Run
	if mutate != nil {
		mutate(&cfg)
	}
	col := &collector{}
	stream := output.NewStream()
	stream.Subscribe(col)
	return NewRunner(cfg, WithStream(stream), WithLogger(zerolog.Nop())), col
}

func mustParse(t *testing.T, doc string) *Script {
	t.Helper()
	s, err := Parse([]byte(doc))
	require.NoError(t, err)
	return s
}

func TestRun_BasicAutoPoll(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "basic.yaml"))
	require.NoError(t, err)
	r, col := newTestRunner(t, nil)

	res, err := r.Run(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"onClick": 2, "onUi": 1}, res.Fired)
	assert.Equal(t, 4, res.Queued)
	assert.Equal(t, 5, res.Applied, "four queued actions plus the once listener's own deafen")
	assert.Equal(t, 1, res.Polls)
	assert.Zero(t, res.Pending)
	assert.Empty(t, res.Anomalies)
	assert.Equal(t, []string{"onClick", "onUi"}, res.Names())
	require.NotNil(t, res.Tree)

	types := col.types()
	assert.Equal(t, output.EventSummary, types[len(types)-1])
	assert.Contains(t, types, output.EventPoll)

	var fired []string
	for _, ev := range col.events {
		if ev.Type == output.EventFired {
			fired = append(fired, ev.Name+"@"+ev.Path)
			assert.Equal(t, 5, ev.Step, "fired during auto-poll")
		}
	}
	assert.Equal(t, []string{"onUi@ui", "onClick@ui/button", "onClick@ui/button"}, fired)
}

func TestRun_ImmediateStepsAndExplicitPoll(t *testing.T) {
	s := mustParse(t, `
name: immediate
steps:
  - {op: listen, type: t, path: a, name: l, mode: upto, times: 2, defer: false}
  - {op: dispatch, type: t, path: a, defer: false}
  - {op: dispatch, type: t}
  - {op: dispatch, type: t}
  - {op: poll}
expect:
  fired: {l: 2}
`)
	r, _ := newTestRunner(t, func(c *config.RunConfig) { c.AutoPoll = false })

	res, err := r.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Fired["l"])
	assert.Equal(t, 1, res.Polls)
}

func TestRun_DefaultDeferFromConfig(t *testing.T) {
	s := mustParse(t, `
name: no-defer
steps:
  - {op: listen, type: t, name: l}
  - {op: dispatch, type: t}
expect:
  fired: {l: 1}
`)
	r, _ := newTestRunner(t, func(c *config.RunConfig) {
		c.Defer = false
		c.AutoPoll = false
	})

	res, err := r.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Zero(t, res.Queued)
	assert.Zero(t, res.Polls)
}

func TestRun_PendingWithoutAutoPoll(t *testing.T) {
	s := mustParse(t, "name: p\nsteps:\n  - {op: listen, type: t, name: l}\n")
	r, _ := newTestRunner(t, func(c *config.RunConfig) { c.AutoPoll = false })

	res, err := r.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pending)
	assert.Equal(t, 1, res.Tree.Pending())
}

func TestRun_AnomaliesAreCollected(t *testing.T) {
	s := mustParse(t, `
name: anomalies
steps:
  - {op: deafen, path: nowhere, defer: false}
  - {op: listen, type: t, path: a, name: l}
  - {op: listen, type: t, path: a, name: l}
expect:
  anomalies: 2
`)
	r, col := newTestRunner(t, nil)

	res, err := r.Run(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, res.Anomalies, 2)

	first := res.Anomalies[0]
	assert.Equal(t, 1, first.Step)
	assert.Equal(t, "deafen", first.Op)
	assert.Equal(t, "nowhere", first.Path)
	assert.Equal(t, output.ReasonNotFound, first.Reason)

	second := res.Anomalies[1]
	assert.Equal(t, output.ReasonDuplicate, second.Reason)
	assert.Equal(t, 4, second.Step, "surfaced by auto-poll")
	assert.NotEmpty(t, second.Handle)

	var reasons []string
	for _, ev := range col.events {
		if ev.Type == output.EventAnomaly {
			reasons = append(reasons, ev.Reason)
		}
	}
	assert.Equal(t, []string{output.ReasonNotFound, output.ReasonDuplicate}, reasons)
}

func TestRun_DeafenCancelsQueuedListen(t *testing.T) {
	s := mustParse(t, `
name: cancel
steps:
  - {op: listen, type: t, name: l}
  - {op: deafen, type: t, name: l, defer: false}
  - {op: dispatch, type: t}
expect:
  fired: {l: 0}
  anomalies: 0
`)
	r, _ := newTestRunner(t, nil)

	res, err := r.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Fired["l"])
}

func TestRun_ExpectationMismatch(t *testing.T) {
	s := mustParse(t, `
name: mismatch
steps:
  - {op: listen, type: t, name: l}
  - {op: dispatch, type: t}
expect:
  fired: {l: 3}
  anomalies: 1
`)
	r, col := newTestRunner(t, nil)

	res, err := r.Run(context.Background(), s)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExpectation)
	require.NotNil(t, res)

	var eerr *ExpectationError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, []Mismatch{
		{Subject: "fired.l", Want: 3, Got: 1},
		{Subject: "anomalies", Want: 1, Got: 0},
	}, eerr.Mismatches)
	assert.Contains(t, err.Error(), "fired.l: want 3, got 1")

	last := col.events[len(col.events)-1]
	assert.Equal(t, output.EventSummary, last.Type)
	assert.Equal(t, true, last.Metadata["failed"])
}

func TestRun_PollLimit(t *testing.T) {
	s := mustParse(t, "name: limit\nsteps:\n  - {op: dispatch, type: t}\n")
	r, _ := newTestRunner(t, func(c *config.RunConfig) { c.MaxPolls = 0 })

	res, err := r.Run(context.Background(), s)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPollLimit)
	assert.Equal(t, 1, res.Pending)
}

func TestRun_ContextCancelled(t *testing.T) {
	s := mustParse(t, "name: c\nsteps:\n  - {op: poll}\n")
	r, _ := newTestRunner(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Run(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ReusedHandleAtSecondPath(t *testing.T) {
	s := mustParse(t, `
name: reuse
steps:
  - {op: listen, type: t, path: a, name: l}
  - {op: listen, type: t, path: b, name: l}
  - {op: dispatch, type: t}
  - {op: deafen, path: a, name: l}
  - {op: poll}
  - {op: dispatch, type: t}
expect:
  fired: {l: 3}
`)
	r, _ := newTestRunner(t, nil)

	res, err := r.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Fired["l"])
}

func TestRun_NilScript(t *testing.T) {
	r, _ := newTestRunner(t, nil)
	_, err := r.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidScript)
}

func TestResult_Summary(t *testing.T) {
	res := &Result{Name: "x", Fired: map[string]int{"a": 2, "b": 1}, Applied: 4, Polls: 1}
	assert.Equal(t, "x: 3 fired, 4 applied, 1 poll(s), 0 anomaly(ies), 0 pending", res.Summary())
}
