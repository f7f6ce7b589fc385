// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_StartsWithDefaults(t *testing.T) {
	manager := NewManager()
	require.NotNil(t, manager)
	assert.NotNil(t, manager.Koanf())
	assert.Equal(t, DefaultConfig(), manager.Get())
}

func TestDefaultConfig_ReturnsExpectedDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.Run.Defer)
	assert.True(t, cfg.Run.AutoPoll)
	assert.Equal(t, 64, cfg.Run.MaxPolls)
	assert.Equal(t, "text", cfg.Run.Output)
	assert.Equal(t, 250*time.Millisecond, cfg.Run.Debounce)
	assert.NoError(t, Validate(cfg))
}

func TestManager_Load_LoadsDefaultsWhenNoFlags(t *testing.T) {
	manager := NewManager()
	require.NoError(t, manager.Load(nil, ""))
	assert.Equal(t, DefaultConfig(), manager.Get())
}

func TestManager_Load_OverridesWithFlags(t *testing.T) {
	manager := NewManager()
	flags := newTestFlagSet()
	require.NoError(t, flags.Set("log-level", "error"))
	require.NoError(t, flags.Set("log-format", "json"))
	require.NoError(t, flags.Set("max-polls", "3"))
	require.NoError(t, flags.Set("output", "json"))
	require.NoError(t, flags.Set("defer", "false"))
	require.NoError(t, flags.Set("debounce", "1s"))

	require.NoError(t, manager.Load(flags, ""))
	cfg := manager.Get()
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 3, cfg.Run.MaxPolls)
	assert.Equal(t, "json", cfg.Run.Output)
	assert.False(t, cfg.Run.Defer)
	assert.Equal(t, time.Second, cfg.Run.Debounce)
}

func TestManager_Load_UnchangedFlagsKeepLowerSources(t *testing.T) {
	t.Setenv("YGGY_RUN_MAX_POLLS", "7")

	manager := NewManager()
	require.NoError(t, manager.Load(newTestFlagSet(), ""))
	assert.Equal(t, 7, manager.Get().Run.MaxPolls, "a flag left at its default must not mask env")
}

func TestManager_Load_NoColorFlag(t *testing.T) {
	manager := NewManager()
	flags := newTestFlagSet()
	require.NoError(t, manager.Load(flags, ""))
	assert.True(t, manager.Get().Run.Color)

	require.NoError(t, flags.Set("no-color", "true"))
	require.NoError(t, manager.Load(flags, ""))
	assert.False(t, manager.Get().Run.Color)
}

func TestManager_Load_DebugFlagSetsLogLevelToDebug(t *testing.T) {
	manager := NewManager()
	flags := newTestFlagSet()
	require.NoError(t, flags.Set("debug", "true"))
	require.NoError(t, manager.Load(flags, ""))
	assert.Equal(t, "debug", manager.Get().Log.Level)
}

func TestManager_Load_FileThenEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yggy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\nrun:\n  max_polls: 5\n  output: json\n"), 0o644))
	t.Setenv("YGGY_LOG_LEVEL", "error")

	manager := NewManager()
	require.NoError(t, manager.Load(nil, path))
	cfg := manager.Get()
	assert.Equal(t, "error", cfg.Log.Level, "env overrides file")
	assert.Equal(t, 5, cfg.Run.MaxPolls)
	assert.Equal(t, "json", cfg.Run.Output)
}

func TestManager_Load_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
		field string
	}{
		{"bad output", "YGGY_RUN_OUTPUT", "xml", "run.output"},
		{"zero polls", "YGGY_RUN_MAX_POLLS", "0", "run.maxpolls"},
		{"bad level", "YGGY_LOG_LEVEL", "loud", "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			manager := NewManager()
			err := manager.Load(nil, "")
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Contains(t, verr.Error(), tt.value)
			assert.Equal(t, DefaultConfig(), manager.Get(), "failed load keeps previous config")
		})
	}
}

func TestValidationError_Messages(t *testing.T) {
	var nilErr *ValidationError
	assert.Equal(t, "", nilErr.Error())
	assert.Equal(t, "invalid configuration", (&ValidationError{}).Error())
	assert.Equal(t, "run.output: invalid", (&ValidationError{Field: "run.output"}).Error())
}

func TestBindFlags_AddsDebugFlag(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	debugFlag := flags.Lookup("debug")
	require.NotNil(t, debugFlag)
	assert.Equal(t, "Enable debug logging", debugFlag.Usage)
	assert.Equal(t, "false", debugFlag.DefValue)
	assert.NotNil(t, flags.Lookup("log-level"))
	assert.NotNil(t, flags.Lookup("log-format"))
}

func TestBindRunFlags_Shorthands(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindRunFlags(flags)
	require.NoError(t, flags.Parse([]string{"-o", "json", "--no-color"}))

	out, err := flags.GetString("output")
	require.NoError(t, err)
	assert.Equal(t, "json", out)

	noColor, err := flags.GetBool("no-color")
	require.NoError(t, err)
	assert.True(t, noColor)
}

func newTestFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	BindRunFlags(flags)
	return flags
}
