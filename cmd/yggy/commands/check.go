// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yggy/yggy/cmd/yggy/internal/format"
	"github.com/yggy/yggy/pkg/script"
)

// NewCheckCommand returns the "check" command, which validates a script
// without running it.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <script>",
		Short: "Validate a scenario script and list its steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := format.FromCommand(cmd)

			s, err := script.Load(args[0])
			if err != nil {
				return err
			}

			def := format.RunConfig(cmd).Defer
			rows := make([][]string, 0, len(s.Steps))
			for i, st := range s.Steps {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					strconv.Itoa(st.Line),
					string(st.Op),
					displayPath(st.Path),
					st.Type,
					st.Name,
					string(st.Mode),
					strconv.FormatBool(st.Deferred(def)),
				})
			}
			if err := f.PrintTable([]string{"step", "line", "op", "path", "type", "name", "mode", "defer"}, rows); err != nil {
				return err
			}
			return f.PrintSummary(fmt.Sprintf("✓ %s: %d step(s) valid", s.Name, len(s.Steps)))
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text, json)")
	cmd.Flags().Bool("no-color", false, "Disable colored output")

	return cmd
}

func displayPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
