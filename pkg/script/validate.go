// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package script

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"

	"github.com/yggy/yggy/pkg/event"
)

var validate = validator.New()

// Validate checks s for structural and semantic errors: unknown ops, missing
// fields, deafen or expect entries naming listeners never declared, and
// payloads that are not JSON-like.
func Validate(s *Script) error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidScript, describe(err))
	}

	declared := make(map[string]Mode)
	for i := range s.Steps {
		if err := validateStep(i, &s.Steps[i], declared); err != nil {
			return err
		}
	}
	return validateExpect(s.Expect, declared)
}

func validateStep(i int, st *Step, declared map[string]Mode) error {
	fail := func(field string, err error) error {
		return &StepError{Index: i, Line: st.Line, Field: field, Err: err}
	}

	if err := validate.Struct(st); err != nil {
		return fail("", errors.New(describe(err)))
	}

	switch st.Op {
	case OpListen:
		if st.Type == "" {
			return fail("type", errors.New("required for listen"))
		}
		if st.Name == "" {
			return fail("name", errors.New("required for listen"))
		}
		if mode, ok := declared[st.Name]; ok {
			if st.Mode != "" && st.Mode != mode {
				return fail("mode", fmt.Errorf("listener %q was declared as %s", st.Name, mode))
			}
			return nil
		}
		if st.Mode == "" {
			st.Mode = ModeRecord
		}
		if st.Mode == ModeUpto {
			n, err := times(st.Times, 0)
			if err != nil {
				return fail("times", err)
			}
			if n < 1 {
				return fail("times", errors.New("upto needs times >= 1"))
			}
		} else if st.Times != nil {
			return fail("times", fmt.Errorf("only valid with mode upto, not %s", st.Mode))
		}
		declared[st.Name] = st.Mode

	case OpDeafen:
		if st.Name != "" {
			if _, ok := declared[st.Name]; !ok {
				return fail("name", fmt.Errorf("unknown listener %q", st.Name))
			}
		}

	case OpDispatch:
		if st.Type == "" {
			return fail("type", errors.New("required for dispatch"))
		}
		if err := event.Validate(st.Payload); err != nil {
			return fail("payload", err)
		}

	case OpPoll:
		n, err := times(st.Times, 1)
		if err != nil {
			return fail("times", err)
		}
		if n < 1 {
			return fail("times", errors.New("poll needs times >= 1"))
		}
	}
	return nil
}

func validateExpect(exp Expect, declared map[string]Mode) error {
	names := make([]string, 0, len(exp.Fired))
	for name := range exp.Fired {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, ok := declared[name]; !ok {
			return &StepError{Index: -1, Field: "fired", Err: fmt.Errorf("unknown listener %q", name)}
		}
		n, err := toCount(exp.Fired[name])
		if err != nil || n < 0 {
			return &StepError{Index: -1, Field: "fired." + name, Err: fmt.Errorf("not a count: %v", exp.Fired[name])}
		}
	}
	if exp.Anomalies != nil {
		n, err := toCount(exp.Anomalies)
		if err != nil || n < 0 {
			return &StepError{Index: -1, Field: "anomalies", Err: fmt.Errorf("not a count: %v", exp.Anomalies)}
		}
	}
	return nil
}

// times converts a YAML scalar to a count, returning def when v is absent.
func times(v any, def int) (int, error) {
	if v == nil {
		return def, nil
	}
	n, err := toCount(v)
	if err != nil {
		return 0, fmt.Errorf("not a count: %v", v)
	}
	return n, nil
}

// toCount is cast.ToIntE without the silent truncation of fractions.
func toCount(v any) (int, error) {
	switch f := v.(type) {
	case float64:
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("%v is not a whole number", f)
		}
	case float32:
		if float64(f) != math.Trunc(float64(f)) {
			return 0, fmt.Errorf("%v is not a whole number", f)
		}
	}
	return cast.ToIntE(v)
}

// describe flattens validator errors into "field: rule" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, strings.ToLower(fe.Field())+" must satisfy "+rule)
	}
	return strings.Join(parts, ", ")
}
