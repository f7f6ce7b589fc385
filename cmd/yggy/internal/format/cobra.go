// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yggy/yggy/pkg/appctx"
	"github.com/yggy/yggy/pkg/config"
)

// FromCommand builds a Formatter from the command's writers and the run
// configuration stored on its context, falling back to defaults.
func FromCommand(cmd *cobra.Command) Formatter {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	cfg := RunConfig(cmd)
	return New(stdout, stderr, ParseMode(cfg.Output), cfg.Color)
}

// RunConfig returns the loaded run configuration, or the defaults when the
// command runs without a config manager (e.g. in tests).
func RunConfig(cmd *cobra.Command) config.RunConfig {
	if mgr, ok := appctx.Config(cmd.Context()); ok {
		return mgr.Get().Run
	}
	return config.DefaultConfig().Run
}
