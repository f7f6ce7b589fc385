// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package path

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"root", "", nil},
		{"slash only", "/", nil},
		{"single", "a", []string{"a"}},
		{"nested", "a/b/c", []string{"a", "b", "c"}},
		{"leading and trailing", "/a/b/", []string{"a", "b"}},
		{"doubled separators", "a//b", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.in))
		})
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "a", Join("", "a"))
	assert.Equal(t, "a/b", Join("a", "b"))
	assert.Equal(t, "a/b/c", Join("a/b", "c"))
}

func TestClean(t *testing.T) {
	assert.Equal(t, "", Clean(""))
	assert.Equal(t, "", Clean("///"))
	assert.Equal(t, "a/b", Clean("/a//b/"))
}

func TestParentAndIsRoot(t *testing.T) {
	assert.True(t, IsRoot(""))
	assert.True(t, IsRoot("/"))
	assert.False(t, IsRoot("a"))

	assert.Equal(t, "", Parent(""))
	assert.Equal(t, "", Parent("a"))
	assert.Equal(t, "a/b", Parent("a/b/c"))
}

func TestHasPrefix(t *testing.T) {
	assert.True(t, HasPrefix("a/b", ""))
	assert.True(t, HasPrefix("a/b", "a"))
	assert.True(t, HasPrefix("a/b", "a/b"))
	assert.False(t, HasPrefix("a/bc", "a/b"))
	assert.False(t, HasPrefix("a", "a/b"))
	assert.False(t, HasPrefix("x/b", "a"))
}
