// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package config

import "time"

// Config is the root configuration structure for the yggy CLI.
type Config struct {
	Log LogConfig `description:"Logging configuration" koanf:"log"`
	Run RunConfig `description:"Scenario runner configuration" koanf:"run"`
}

// LogConfig holds logging related configuration.
type LogConfig struct {
	Level  string `description:"Log level: trace | debug | info | warn | error" koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `description:"Log format: json | text" koanf:"format" validate:"oneof=text json"`
}

// RunConfig controls how scenario scripts are driven against a tree.
type RunConfig struct {
	// Defer is the default for steps that do not say whether they are deferred.
	Defer bool `description:"Queue actions by default instead of applying them immediately" koanf:"defer"`
	// AutoPoll drains the queue after the last step.
	AutoPoll bool `description:"Poll until the queue is empty after the last step" koanf:"auto_poll"`
	MaxPolls int  `description:"Upper bound on polls performed by auto-poll" koanf:"max_polls" validate:"min=1,max=100000"`

	Output string `description:"Output mode: text | json" koanf:"output" validate:"oneof=text json"`
	Color  bool   `description:"Colorize text output" koanf:"color"`

	// Debounce is the quiet period before a watched script is re-run.
	Debounce time.Duration `description:"Debounce interval for --watch" koanf:"debounce" validate:"min=0"`
}
