// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package event defines the payloads carried by dispatches.
//
// A payload is a JSON-like value: nil, a number, a string, a bool, a slice or
// array of payloads, or a map with string keys whose values are payloads.
// Nothing else is accepted.
package event

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// ErrInvalidPayload is returned for values outside the JSON-like set.
var ErrInvalidPayload = errors.New("invalid event payload")

// Kind classifies a payload.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindBool
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// PayloadError reports where in a payload an unsupported value was found.
type PayloadError struct {
	Location string // JSONPath-like location, e.g. "$.items[2]"
	Type     string // Go type of the offending value
}

// Error implements the error interface.
func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: unsupported %s at %s", ErrInvalidPayload, e.Type, e.Location)
}

// Unwrap returns ErrInvalidPayload.
func (e *PayloadError) Unwrap() error {
	return ErrInvalidPayload
}

// KindOf returns the kind of the top-level value without inspecting its
// elements.
func KindOf(v any) (Kind, error) {
	if v == nil {
		return KindNull, nil
	}
	return kindOf(reflect.ValueOf(v), "$")
}

// Validate checks that v and everything reachable from it is a payload.
func Validate(v any) error {
	if v == nil {
		return nil
	}
	return walk(reflect.ValueOf(v), "$")
}

func kindOf(rv reflect.Value, loc string) (Kind, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber, nil
	case reflect.String:
		return KindString, nil
	case reflect.Bool:
		return KindBool, nil
	case reflect.Slice, reflect.Array:
		return KindArray, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return KindNull, &PayloadError{Location: loc, Type: rv.Type().String()}
		}
		return KindObject, nil
	case reflect.Interface:
		if rv.IsNil() {
			return KindNull, nil
		}
		return kindOf(rv.Elem(), loc)
	case reflect.Pointer:
		// only a nil pointer is JSON-like
		if rv.IsNil() {
			return KindNull, nil
		}
		return KindNull, &PayloadError{Location: loc, Type: rv.Type().String()}
	default:
		if !rv.IsValid() {
			return KindNull, nil
		}
		return KindNull, &PayloadError{Location: loc, Type: rv.Type().String()}
	}
}

func walk(rv reflect.Value, loc string) error {
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		return walk(rv.Elem(), loc)
	}

	kind, err := kindOf(rv, loc)
	if err != nil {
		return err
	}

	switch kind {
	case KindArray:
		for i := 0; i < rv.Len(); i++ {
			if err := walk(rv.Index(i), fmt.Sprintf("%s[%d]", loc, i)); err != nil {
				return err
			}
		}
	case KindObject:
		iter := rv.MapRange()
		for iter.Next() {
			if err := walk(iter.Value(), loc+"."+iter.Key().String()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Decode parses a YAML or JSON document into a payload.
func Decode(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if err := Validate(v); err != nil {
		return nil, err
	}
	return v, nil
}

// Clone returns a deep copy of a payload, so later changes to the caller's
// maps and slices do not reach it. Scalars are returned as they are.
func Clone(v any) any {
	if v == nil {
		return nil
	}
	return clone(reflect.ValueOf(v)).Interface()
}

func clone(rv reflect.Value) reflect.Value {
	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return rv
		}
		out := reflect.New(rv.Type()).Elem()
		out.Set(clone(rv.Elem()))
		return out
	case reflect.Map:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), clone(iter.Value()))
		}
		return out
	case reflect.Slice:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(clone(rv.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(rv.Type()).Elem()
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(clone(rv.Index(i)))
		}
		return out
	default:
		return rv
	}
}

// Field looks up a dotted key path through nested objects.
//
// Example: Field(map[string]any{"a": map[string]any{"b": 1}}, "a.b") -> 1, true
func Field(v any, key string) (any, bool) {
	if key == "" {
		return v, true
	}
	cur := v
	for _, part := range strings.Split(key, ".") {
		rv := reflect.ValueOf(cur)
		for rv.Kind() == reflect.Interface {
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		next := rv.MapIndex(reflect.ValueOf(part).Convert(rv.Type().Key()))
		if !next.IsValid() {
			return nil, false
		}
		cur = next.Interface()
	}
	return cur, true
}

// Number returns the field at key as a float64.
func Number(v any, key string) (float64, error) {
	f, ok := Field(v, key)
	if !ok {
		return 0, fmt.Errorf("field %q not found", key)
	}
	return cast.ToFloat64E(f)
}

// String returns the field at key as a string.
func String(v any, key string) (string, error) {
	f, ok := Field(v, key)
	if !ok {
		return "", fmt.Errorf("field %q not found", key)
	}
	return cast.ToStringE(f)
}

// Bool returns the field at key as a bool.
func Bool(v any, key string) (bool, error) {
	f, ok := Field(v, key)
	if !ok {
		return false, fmt.Errorf("field %q not found", key)
	}
	return cast.ToBoolE(f)
}
