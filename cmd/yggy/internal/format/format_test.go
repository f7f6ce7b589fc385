// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yggy/yggy/pkg/output"
	"github.com/yggy/yggy/pkg/tree"
)

func TestPrintJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	f := New(&stdout, &stderr, ModeJSON, false)
	require.NoError(t, f.PrintJSON(map[string]string{"name": "basic"}))
	assert.Equal(t, "{\n  \"name\": \"basic\"\n}\n", stdout.String())
}

func TestPrintTable(t *testing.T) {
	headers := []string{"step", "op"}
	rows := [][]string{{"1", "listen"}, {"2", "dispatch"}}

	t.Run("text", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		f := New(&stdout, &stderr, ModeText, false)
		require.NoError(t, f.PrintTable(headers, rows))
		assert.Equal(t, "STEP  OP\n1     listen\n2     dispatch\n", stdout.String())
	})

	t.Run("json", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		f := New(&stdout, &stderr, ModeJSON, false)
		require.NoError(t, f.PrintTable(headers, rows))

		var items []map[string]string
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &items))
		assert.Equal(t, []map[string]string{{"step": "1", "op": "listen"}, {"step": "2", "op": "dispatch"}}, items)
	})
}

func TestPrintSummary(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, New(&stdout, &stderr, ModeText, false).PrintSummary("ok"))
	assert.Equal(t, "ok\n", stdout.String())

	stdout.Reset()
	require.NoError(t, New(&stdout, &stderr, ModeJSON, false).PrintSummary("ok"))
	assert.Empty(t, stdout.String())
	assert.Equal(t, "ok\n", stderr.String())
}

func TestPrintError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	f := New(&stdout, &stderr, ModeText, false)
	require.NoError(t, f.PrintError(nil))
	require.NoError(t, f.PrintError(errors.New("boom")))
	assert.Equal(t, "Error: boom\n", stderr.String())

	stdout.Reset()
	require.NoError(t, New(&stdout, &stderr, ModeJSON, false).PrintError(errors.New("boom")))
	var payload map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &payload))
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "boom", payload["error"])
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeJSON, ParseMode("JSON"))
	assert.Equal(t, ModeText, ParseMode("text"))
	assert.Equal(t, ModeText, ParseMode("yaml"))
}

func sampleTree(t *testing.T) *tree.Tree {
	t.Helper()
	tr := tree.New(tree.WithLogger(zerolog.Nop()))
	noop := func(any, *tree.Context) {}
	tr.Listen("click", noop, tree.WithPath("ui/button"), tree.Immediate())
	tr.Listen("click", noop, tree.WithPath("ui"), tree.Immediate())
	tr.Listen("hover", noop, tree.WithPath("ui"), tree.Immediate())
	tr.Listen("boot", noop, tree.Immediate())
	tr.Require("net")
	return tr
}

func TestRenderTree(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTree(&buf, sampleTree(t).Root(), false))
	assert.Equal(t, "/  boot(1)\n"+
		"├── ui  click(1) hover(1)\n"+
		"│   └── button  click(1)\n"+
		"└── net\n", buf.String())
}

func TestSnapshot(t *testing.T) {
	snap := Snapshot(sampleTree(t).Root(), "")
	assert.Equal(t, map[string]int{"boot": 1}, snap.Handlers)
	require.Len(t, snap.Children, 2)
	assert.Equal(t, "ui", snap.Children[0].Path)
	assert.Equal(t, "ui/button", snap.Children[0].Children[0].Path)
	assert.Nil(t, snap.Children[1].Handlers)
}

func TestNewStream(t *testing.T) {
	var stdout, stderr bytes.Buffer

	text := NewStream(New(&stdout, &stderr, ModeText, false), &stdout, &stderr, 9)
	assert.Equal(t, 2, text.SubscriberCount())

	js := NewStream(New(&stdout, &stderr, ModeJSON, false), &stdout, &stderr, 0)
	ev := output.NewEvent(output.EventAnomaly)
	ev.Reason = output.ReasonNotFound
	js.Emit(ev)
	assert.Contains(t, stdout.String(), `"reason":"not-found"`)
	assert.Empty(t, stderr.String(), "json mode reports anomalies on stdout only")
}
