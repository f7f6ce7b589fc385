// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yggy/yggy/pkg/appctx"
	"github.com/yggy/yggy/pkg/cli"
	"github.com/yggy/yggy/pkg/config"
	"github.com/yggy/yggy/pkg/logging"
	"github.com/yggy/yggy/pkg/paths"
)

const cliExecutable = "yggy"

// NewCommand constructs the top-level yggy command, wiring global flags and
// loading configuration before any subcommand runs.
func NewCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "Run and inspect path-scoped pub/sub scenarios",
		Long: `yggy drives a hierarchical publish/subscribe tree from YAML scenario files.
Listeners are registered at slash-delimited paths; a dispatch at a path reaches
every listener at that node and below.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path := configFile
			if path == "" {
				path = paths.DefaultConfigFile()
			}
			manager := config.NewManager()
			if err := manager.Load(cmd.Flags(), path); err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			cfg := manager.Get()
			if err := logging.ConfigureGlobalLogging(cfg.Log.Level, cfg.Log.Format); err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			ctx := appctx.WithConfig(cmd.Context(), manager)
			cmd.SetContext(ctx)
			if root := cmd.Root(); root != nil && root != cmd {
				root.SetContext(ctx)
			}
			return nil
		},
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path (default $XDG_CONFIG_HOME/yggy/config.yaml)")
	cmd.PersistentFlags().CountP("verbosity", "v", "Increase output verbosity (repeatable)")
	config.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(cli.NewVersionCommand(cliExecutable))

	return cmd
}
