// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package config

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Manager handles loading and accessing application configuration.
type Manager struct {
	koanfInstance *koanf.Koanf
	currentConfig Config
	mu            sync.RWMutex
}

// NewManager creates a new Manager with an empty koanf instance.
func NewManager() *Manager {
	return &Manager{
		koanfInstance: koanf.New("."),
		currentConfig: DefaultConfig(),
	}
}

// DefaultConfig returns a new Config struct populated with hardcoded default values.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Run: RunConfig{
			Defer:    true,
			AutoPoll: true,
			MaxPolls: 64,
			Output:   "text",
			Color:    true,
			Debounce: 250 * time.Millisecond,
		},
	}
}

// Load loads configuration from the default sources:
// defaults, then the YAML file at configPath, then YGGY_* variables, then flags.
func (m *Manager) Load(flags *pflag.FlagSet, configPath string) error {
	debug := false
	if flags != nil {
		if f := flags.Lookup("debug"); f != nil && f.Value.String() == "true" {
			debug = true
		}
	}
	return m.LoadWithSources(DefaultSources(configPath, flags, debug))
}

// LoadWithSources loads the given sources in ascending priority order,
// unmarshals the merged result and validates it.
func (m *Manager) LoadWithSources(sources []ConfigSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ordered := make([]ConfigSource, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})

	k := koanf.New(".")
	for _, src := range ordered {
		if err := src.Load(k); err != nil {
			return fmt.Errorf("config source %s: %w", src.Name(), err)
		}
	}

	var newCfg Config
	if err := k.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling final config: %w", err)
	}
	if err := Validate(newCfg); err != nil {
		return err
	}

	m.koanfInstance = k
	m.currentConfig = newCfg
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentConfig
}

// Koanf exposes the merged key space, mostly for diagnostics.
func (m *Manager) Koanf() *koanf.Koanf {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.koanfInstance
}

// DefaultConfigAsMap flattens DefaultConfig into koanf keys for confmap.Provider.
func DefaultConfigAsMap() map[string]interface{} {
	def := DefaultConfig()
	return map[string]interface{}{
		"log.level":  def.Log.Level,
		"log.format": def.Log.Format,

		"run.defer":     def.Run.Defer,
		"run.auto_poll": def.Run.AutoPoll,
		"run.max_polls": def.Run.MaxPolls,
		"run.output":    def.Run.Output,
		"run.color":     def.Run.Color,
		"run.debounce":  def.Run.Debounce,
	}
}

// flagKeys maps CLI flag names to koanf keys.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"defer":      "run.defer",
	"auto-poll":  "run.auto_poll",
	"max-polls":  "run.max_polls",
	"output":     "run.output",
	"debounce":   "run.debounce",
}

// BindFlags defines the global flags shared by every command.
func BindFlags(flags *pflag.FlagSet) {
	var flagvar bool
	flags.BoolVar(&flagvar, "debug", false, "Enable debug logging")

	defaults := DefaultConfig()
	flags.String("log-level", defaults.Log.Level, "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", defaults.Log.Format, "Log format (text, json)")
}

// BindRunFlags defines the flags that tune the scenario runner.
func BindRunFlags(flags *pflag.FlagSet) {
	defaults := DefaultConfig().Run

	flags.Bool("defer", defaults.Defer, "Queue steps by default instead of applying them immediately")
	flags.Bool("auto-poll", defaults.AutoPoll, "Poll until the queue is empty after the last step")
	flags.Int("max-polls", defaults.MaxPolls, "Maximum number of polls performed by auto-poll")
	flags.StringP("output", "o", defaults.Output, "Output format (text, json)")
	flags.Bool("no-color", false, "Disable colored output")
	flags.Duration("debounce", defaults.Debounce, "Debounce interval when watching a script")
}
