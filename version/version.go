// SPDX-License-Identifier: MIT
// Copyright (c) 2026 mwkit
// Source: github.com/mwkit/bsa

// Package version reports build metadata for bsatool binaries. Values are
// injected at build time via -ldflags, with debug.ReadBuildInfo as the
// fallback for plain go install builds.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set by build flags, defaults cover development builds.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the complete build description.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// GetVersion returns the module version, preferring the compile-time value.
func GetVersion() string {
	if Version != "dev" && Version != "" {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}

	return "development"
}

// GetCommit returns the VCS revision, preferring the compile-time value.
func GetCommit() string {
	if Commit != "unknown" && Commit != "" {
		return Commit
	}

	return buildSetting("vcs.revision", "unknown")
}

// GetBuildDate returns the build timestamp, preferring the compile-time value.
func GetBuildDate() string {
	if Date != "unknown" && Date != "" {
		return Date
	}

	return buildSetting("vcs.time", "unknown")
}

// GetInfo returns the complete build description.
func GetInfo() Info {
	return Info{
		Version: GetVersion(),
		Commit:  GetCommit(),
		Date:    GetBuildDate(),
	}
}

// GetFullVersion returns "version (commit, built date)" with whatever parts
// are known.
func GetFullVersion() string {
	info := GetInfo()
	if info.Commit != "unknown" && len(info.Commit) > 7 {
		short := info.Commit[:7]
		if info.Date != "unknown" {
			return fmt.Sprintf("%s (%s, built %s)", info.Version, short, info.Date)
		}

		return fmt.Sprintf("%s (%s)", info.Version, short)
	}

	return info.Version
}

func buildSetting(key, fallback string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fallback
	}

	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}

	return fallback
}
