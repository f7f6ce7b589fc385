// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package tree

import (
	"fmt"
	"reflect"
)

// Listener handles one dispatched event.
type Listener func(payload any, c *Context)

// Upto wraps l so that it runs at most count times. When the count is used
// up the wrapper deafens itself immediately, before returning, so a
// synchronous re-dispatch from inside l cannot push it past count.
//
// The count is shared by every registration of the handle. Once it is used
// up, each call deafens the registration it fired from, unless a nested
// dispatch already did.
func Upto(l Listener, count int) Listener {
	remaining := count
	return func(payload any, c *Context) {
		remaining--
		if remaining >= 0 {
			l(payload, c)
		}
		if remaining <= 0 && c.Node.Has(c.Type, c.Self) {
			c.Deafen(false)
		}
	}
}

// Once wraps l so that it runs a single time.
func Once(l Listener) Listener {
	return Upto(l, 1)
}

// Func adapts a function taking a concrete payload type. Payloads of any
// other type are reported with ErrPayloadType and fn is not called. A nil
// payload is passed as the zero value only when T is an interface type.
func Func[T any](fn func(T, *Context)) Listener {
	return func(payload any, c *Context) {
		if payload == nil && reflect.TypeFor[T]().Kind() == reflect.Interface {
			var zero T
			fn(zero, c)
			return
		}
		v, ok := payload.(T)
		if !ok {
			c.Tree.anomaly(ActionDispatch, c.Path, c.Type, c.Self,
				fmt.Errorf("%w: want %s, got %T", ErrPayloadType, reflect.TypeFor[T](), payload))
			return
		}
		fn(v, c)
	}
}
