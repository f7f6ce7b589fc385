// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package path handles the slash-delimited addresses that identify nodes
// in a dispatch tree. The empty string addresses the root.
package path

import "strings"

// Separator delimits path segments.
const Separator = "/"

// Split returns the segments of p in order. Empty segments produced by
// leading, trailing or repeated separators are dropped, so "" and "/" both
// yield no segments (the root).
func Split(p string) []string {
	if p == "" {
		return nil
	}
	parts := strings.Split(p, Separator)
	segments := parts[:0]
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	if len(segments) == 0 {
		return nil
	}
	return segments
}

// Join appends one segment to base. An empty base yields the segment.
//
// Example: Join("a/b", "c") -> "a/b/c"
func Join(base, segment string) string {
	if base == "" {
		return segment
	}
	return base + Separator + segment
}

// Clean returns the canonical form of p.
//
// Example: Clean("/a//b/") -> "a/b"
func Clean(p string) string {
	return strings.Join(Split(p), Separator)
}

// IsRoot reports whether p addresses the root node.
func IsRoot(p string) bool {
	return len(Split(p)) == 0
}

// Parent returns the path of p's parent. The root is its own parent.
func Parent(p string) string {
	segments := Split(p)
	if len(segments) <= 1 {
		return ""
	}
	return strings.Join(segments[:len(segments)-1], Separator)
}

// HasPrefix reports whether p is prefix itself or one of its descendants.
func HasPrefix(p, prefix string) bool {
	ps, pre := Split(p), Split(prefix)
	if len(pre) > len(ps) {
		return false
	}
	for i, seg := range pre {
		if ps[i] != seg {
			return false
		}
	}
	return true
}
