//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

// Package version reports the vgxml build.
package version

import "runtime/debug"

var (
	// Populated at build time with -ldflags "-X ...".

	Number = "unreleased"
	Commit = ""
)

// Full returns the version number and, when known, an abbreviated commit.
// Without a commit set at build time the VCS revision recorded by the Go
// toolchain is used.
func Full() string {
	commit := Commit
	if commit == "" {
		commit = buildRevision()
	}

	switch {
	case len(commit) > 12:
		return Number + "-" + commit[:12]
	case len(commit) > 0:
		return Number + "-" + commit
	default:
		return Number
	}
}

func buildRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}

	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}
