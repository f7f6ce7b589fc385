// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package stringutil holds small string helpers for terminal output.
package stringutil

import "strings"

// Ellipsis flattens s onto one line and shortens it to at most maxRunes
// runes, marking truncation with "…". Lengths are counted in runes so
// multi-byte payloads are never cut mid-character.
func Ellipsis(s string, maxRunes int) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")

	if maxRunes <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	if maxRunes == 1 {
		return string(r[:1])
	}
	return string(r[:maxRunes-1]) + "…"
}
