// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package script

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yggy/yggy/pkg/config"
	"github.com/yggy/yggy/pkg/handle"
	"github.com/yggy/yggy/pkg/output"
	"github.com/yggy/yggy/pkg/tree"
)

// Runner executes scripts, each against a new tree.
type Runner struct {
	cfg    config.RunConfig
	stream *output.Stream
	logger zerolog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithStream sends run events to s.
func WithStream(s *output.Stream) RunnerOption {
	return func(r *Runner) {
		r.stream = s
	}
}

// WithLogger sets the logger handed to the runner and its trees.
func WithLogger(logger zerolog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner using cfg for step defaults and auto-poll.
func NewRunner(cfg config.RunConfig, opts ...RunnerOption) *Runner {
	r := &Runner{cfg: cfg, logger: log.Logger}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With().Str("component", "script").Logger()
	return r
}

// run is the state of a single Run call.
type run struct {
	*Runner
	script  *Script
	tree    *tree.Tree
	result  *Result
	handles map[string]handle.Handle
	step    int
}

// Run executes s step by step, then auto-polls when configured and checks
// s.Expect. The returned Result is non-nil whenever the script started,
// including when the error is ErrExpectation or ErrPollLimit.
func (r *Runner) Run(ctx context.Context, s *Script) (*Result, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil script", ErrInvalidScript)
	}

	st := &run{
		Runner:  r,
		script:  s,
		result:  &Result{Name: s.Name, Fired: make(map[string]int)},
		handles: make(map[string]handle.Handle),
	}
	st.tree = tree.New(
		tree.WithLogger(r.logger),
		tree.WithReporter(st.onAnomaly),
		tree.WithTracer(st.onTrace),
	)
	st.result.Tree = st.tree

	logger := r.logger.With().Str("script", s.Name).Str("tree", st.tree.ID()).Logger()
	logger.Debug().Int("steps", len(s.Steps)).Msg("running script")

	err := st.execute(ctx)
	st.result.Pending = st.tree.Pending()
	if err == nil {
		err = st.result.check(s.Expect)
	}
	st.summary(err)

	if err != nil {
		logger.Debug().Err(err).Msg("script finished with error")
	}
	return st.result, err
}

func (st *run) execute(ctx context.Context) error {
	for i := range st.script.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		st.step = i + 1
		if err := st.apply(st.script.Steps[i]); err != nil {
			return &StepError{Index: i, Line: st.script.Steps[i].Line, Err: err}
		}
	}

	if !st.cfg.AutoPoll {
		return nil
	}
	st.step = len(st.script.Steps) + 1
	for polls := 0; st.tree.Pending() > 0; polls++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if polls >= st.cfg.MaxPolls {
			return fmt.Errorf("%w: %d action(s) still queued after %d poll(s)", ErrPollLimit, st.tree.Pending(), polls)
		}
		st.poll()
	}
	return nil
}

func (st *run) apply(step Step) error {
	opts := []tree.ActionOption{
		tree.WithPath(step.Path),
		tree.WithDefer(step.Deferred(st.cfg.Defer)),
	}

	switch step.Op {
	case OpListen:
		if h, ok := st.handles[step.Name]; ok {
			st.tree.ListenHandle(h, step.Type, opts...)
			return nil
		}
		l, err := st.listener(step)
		if err != nil {
			return err
		}
		st.handles[step.Name] = st.tree.Listen(step.Type, l, opts...)

	case OpDeafen:
		h := handle.Nil
		if step.Name != "" {
			h = st.handles[step.Name]
		}
		st.tree.Deafen(step.Type, h, opts...)

	case OpDispatch:
		return st.tree.Dispatch(step.Type, step.Payload, opts...)

	case OpPoll:
		n, err := times(step.Times, 1)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			st.poll()
		}

	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

func (st *run) listener(step Step) (tree.Listener, error) {
	name := step.Name
	rec := func(payload any, c *tree.Context) {
		st.result.Fired[name]++
		ev := output.NewEvent(output.EventFired)
		ev.Step, ev.Name, ev.Path, ev.Event, ev.Handle, ev.Payload = st.step, name, c.Path, c.Type, c.Self.String(), payload
		st.stream.Emit(ev)
	}

	switch step.Mode {
	case ModeOnce:
		return tree.Once(rec), nil
	case ModeUpto:
		n, err := times(step.Times, 0)
		if err != nil {
			return nil, err
		}
		return tree.Upto(rec, n), nil
	case ModeRecord, "":
		return rec, nil
	default:
		return nil, fmt.Errorf("unknown mode %q", step.Mode)
	}
}

func (st *run) poll() {
	n := st.tree.Poll()
	st.result.Polls++
	ev := output.NewEvent(output.EventPoll)
	ev.Step, ev.Count = st.step, n
	st.stream.Emit(ev)
}

func (st *run) onTrace(a tree.Action, queued bool) {
	typ := output.EventApplied
	if queued {
		typ = output.EventQueued
		st.result.Queued++
	} else {
		st.result.Applied++
	}
	ev := output.NewEvent(typ)
	ev.Step, ev.Op, ev.Path, ev.Event = st.step, a.Kind().String(), a.Path(), a.Type()
	if !a.Handle().IsNil() {
		ev.Handle = a.Handle().String()
	}
	if a.Kind() == tree.ActionDispatch {
		ev.Payload = a.Payload()
	}
	st.stream.Emit(ev)
}

func (st *run) onAnomaly(err error) {
	an := Anomaly{Step: st.step, Reason: reason(err), Err: err}
	var aerr *tree.ActionError
	if errors.As(err, &aerr) {
		an.Op, an.Path, an.Type = aerr.Op.String(), aerr.Path, aerr.Type
		if !aerr.Handle.IsNil() {
			an.Handle = aerr.Handle.String()
		}
	}
	st.result.Anomalies = append(st.result.Anomalies, an)

	ev := output.NewEvent(output.EventAnomaly)
	ev.Step, ev.Op, ev.Path, ev.Event, ev.Handle = an.Step, an.Op, an.Path, an.Type, an.Handle
	ev.Reason, ev.Message = an.Reason, err.Error()
	st.stream.Emit(ev)
}

func (st *run) summary(err error) {
	ev := output.NewEvent(output.EventSummary)
	ev.Message = st.result.Summary()
	ev.Metadata = map[string]any{"failed": err != nil}
	if err != nil {
		ev.Metadata["error"] = err.Error()
	}
	st.stream.Emit(ev)
}
