// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yggy/yggy/pkg/path"
	"github.com/yggy/yggy/pkg/tree"
)

var (
	segmentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	typeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	branchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// TreeNode is the JSON shape of a rendered node.
type TreeNode struct {
	Path     string         `json:"path"`
	Handlers map[string]int `json:"handlers,omitempty"`
	Children []TreeNode     `json:"children,omitempty"`
}

// Snapshot converts the subtree under root into TreeNode values.
func Snapshot(root *tree.Node, base string) TreeNode {
	out := TreeNode{Path: base}
	for _, typ := range root.Types() {
		if out.Handlers == nil {
			out.Handlers = make(map[string]int)
		}
		out.Handlers[typ] = len(root.Handlers(typ))
	}
	for _, seg := range root.Children() {
		child, ok := root.Child(seg)
		if !ok {
			continue
		}
		out.Children = append(out.Children, Snapshot(child, path.Join(base, seg)))
	}
	return out
}

// RenderTree draws the subtree under root as an indented outline, listing
// the registered types and handler counts of each node.
func RenderTree(w io.Writer, root *tree.Node, colorEnabled bool) error {
	style := func(s lipgloss.Style, text string) string {
		if !colorEnabled {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	b.WriteString(style(segmentStyle, "/"))
	b.WriteString(describeTypes(root, style))
	b.WriteByte('\n')

	var walk func(n *tree.Node, prefix string)
	walk = func(n *tree.Node, prefix string) {
		children := n.Children()
		for i, seg := range children {
			child, ok := n.Child(seg)
			if !ok {
				continue
			}
			last := i == len(children)-1
			branch, next := "├── ", "│   "
			if last {
				branch, next = "└── ", "    "
			}
			b.WriteString(style(branchStyle, prefix+branch))
			b.WriteString(style(segmentStyle, seg))
			b.WriteString(describeTypes(child, style))
			b.WriteByte('\n')
			walk(child, prefix+next)
		}
	}
	walk(root, "")

	_, err := io.WriteString(w, b.String())
	return err
}

func describeTypes(n *tree.Node, style func(lipgloss.Style, string) string) string {
	types := n.Types()
	if len(types) == 0 {
		return ""
	}
	parts := make([]string, len(types))
	for i, typ := range types {
		parts[i] = fmt.Sprintf("%s(%d)", typ, len(n.Handlers(typ)))
	}
	return "  " + style(typeStyle, strings.Join(parts, " "))
}
