// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yggy/yggy/cmd/yggy/internal/format"
	"github.com/yggy/yggy/pkg/appctx"
	"github.com/yggy/yggy/pkg/config"
	"github.com/yggy/yggy/pkg/output"
	"github.com/yggy/yggy/pkg/script"
)

// NewRunCommand returns the "run" command.
func NewRunCommand() *cobra.Command {
	var (
		watch    bool
		showTree bool
	)

	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a scenario script against a fresh tree",
		Example: `  yggy run scenarios/click.yaml
  yggy run scenarios/click.yaml -o json --show-tree
  yggy run scenarios/click.yaml --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				return runWatch(cmd, args[0], showTree)
			}
			return runScript(cmd, args[0], showTree)
		},
	}

	config.BindRunFlags(cmd.Flags())
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run the script whenever it changes")
	cmd.Flags().BoolVar(&showTree, "show-tree", false, "Print the final tree after the run")

	return cmd
}

func runScript(cmd *cobra.Command, path string, showTree bool) error {
	f := format.FromCommand(cmd)
	stream := streamFor(cmd, f)

	s, err := script.Load(path)
	if err != nil {
		return err
	}
	d := output.Diag(output.LevelVerbose, "loaded script "+s.Name)
	d.Metadata = map[string]any{"steps": len(s.Steps), "file": path}
	stream.Emit(d)

	runner := script.NewRunner(format.RunConfig(cmd),
		script.WithStream(stream),
		script.WithLogger(log.Logger),
	)
	res, err := runner.Run(cmd.Context(), s)

	if showTree && res != nil {
		if f.Mode() == format.ModeJSON {
			if perr := f.PrintJSON(format.Snapshot(res.Tree.Root(), "")); perr != nil {
				return perr
			}
		} else if perr := format.RenderTree(cmd.OutOrStdout(), res.Tree.Root(), f.Color()); perr != nil {
			return perr
		}
	}
	return err
}

// streamFor returns the stream stored on the command context, or builds one
// from the formatter.
func streamFor(cmd *cobra.Command, f format.Formatter) *output.Stream {
	if s, ok := appctx.Stream(cmd.Context()); ok {
		return s
	}
	verbosity, _ := cmd.Flags().GetCount("verbosity")
	return format.NewStream(f, cmd.OutOrStdout(), cmd.ErrOrStderr(), verbosity)
}

func runWatch(cmd *cobra.Command, path string, showTree bool) error {
	ctx := cmd.Context()
	f := format.FromCommand(cmd)

	if err := runScript(cmd, path, showTree); err != nil {
		_ = f.PrintError(err)
	}

	changed := make(chan struct{}, 1)
	w, err := script.NewWatcher(path, format.RunConfig(cmd).Debounce, log.Logger, func(string) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	for {
		select {
		case <-ctx.Done():
			<-done
			return nil
		case err := <-done:
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		case <-changed:
			if err := runScript(cmd, path, showTree); err != nil {
				_ = f.PrintError(err)
			}
		}
	}
}
