// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yggy/yggy/cmd/yggy/commands"
	"github.com/yggy/yggy/pkg/script"
)

// main runs the yggy CLI. Exit codes follow script.ExitCode:
//   - 0: success
//   - 1: general error
//   - 2: invalid script
//   - 3: expectation not met
//   - 4: script not found
//   - 5: poll limit reached
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.NewCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(script.ExitCode(err))
	}
}
