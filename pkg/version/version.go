// Copyright 2025 Yggy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package version provides version metadata for the library and the CLI.
package version

import (
	"fmt"
	"runtime"
	"time"

	"github.com/Masterminds/semver/v3"
)

// These variables are typically injected at build time using -ldflags
var (
	// Version holds the release tag of the build, or "dev".
	Version = "dev"
	// Commit holds the commit the build was made from.
	Commit = "none"
	// BuildDate holds the build date.
	BuildDate = "unknown"
	// StartDate holds the process start time.
	StartDate = time.Now()
)

// Stamp is a semantic version descriptor tagged with a moniker.
type Stamp struct {
	Moniker string `json:"moniker"`
	Major   uint64 `json:"major"`
	Minor   uint64 `json:"minor"`
	Patch   uint64 `json:"patch"`
}

// VERSION is the library's own stamp.
var VERSION = New("yggy", 0, 1, 0)

// New builds a Stamp.
func New(moniker string, major, minor, patch uint64) Stamp {
	return Stamp{Moniker: moniker, Major: major, Minor: minor, Patch: patch}
}

// Parse builds a Stamp from a semantic version string such as "v1.2.3".
// Prerelease and build metadata are dropped.
func Parse(moniker, v string) (Stamp, error) {
	sv, err := semver.NewVersion(v)
	if err != nil {
		return Stamp{}, fmt.Errorf("parse version %q: %w", v, err)
	}
	return New(moniker, sv.Major(), sv.Minor(), sv.Patch()), nil
}

// Semver returns the stamp as a semver.Version.
func (s Stamp) Semver() *semver.Version {
	return semver.New(s.Major, s.Minor, s.Patch, "", "")
}

// String renders the stamp as "moniker vX.Y.Z".
func (s Stamp) String() string {
	return fmt.Sprintf("%s v%s", s.Moniker, s.Semver())
}

// Struct returns version information in a structured format.
type Struct struct {
	Version   string `json:"version"`
	Library   string `json:"library"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("yggy %s (library: %s, commit: %s, date: %s)", Version, VERSION.Semver(), Commit, BuildDate)
}

// Get returns version information as a Struct.
func Get() Struct {
	return Struct{
		Version:   Version,
		Library:   VERSION.Semver().String(),
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}
