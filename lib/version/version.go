// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty indicates whether there were uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version. This is set manually for releases.
	Version = "0.1.0-dev"
)

// WireFormat is the version of the envelope format written by this
// build. It changes only when previously written envelopes can no
// longer be read.
const WireFormat = 1

// BuildInfo is the machine-readable form of the version information.
type BuildInfo struct {
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	Dirty      bool   `json:"dirty"`
	BuildTime  string `json:"build_time"`
	WireFormat int    `json:"wire_format"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Current returns the build information of the running binary.
func Current() BuildInfo {
	return BuildInfo{
		Version:    Version,
		Commit:     GitCommit,
		Dirty:      GitDirty == "true",
		BuildTime:  BuildTime,
		WireFormat: WireFormat,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Info returns a formatted version string suitable for --version output.
func Info() string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirty, BuildTime)
}

// Full returns detailed version information including the wire format
// and Go version.
func Full() string {
	info := Current()
	return fmt.Sprintf("%s\n  Wire format: %d\n  Go: %s\n  Platform: %s",
		Info(), info.WireFormat, info.GoVersion, info.Platform)
}
