//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package log

import "testing"

func TestParseLevel(t *testing.T) {
	var tests = []struct {
		want  Level
		input string
	}{
		{LogAlways, "always"},
		{LogError, "error"},
		{LogWarning, "warning"},
		{LogWarning, "WARN"},
		{LogInfo, "info"},
		{LogInfo, ""},
		{LogDebug, "debug"},
		{LogDebug, " verbose "},
	}

	for i := range tests {
		want := tests[i].want
		got, err := parseLevel(tests[i].input)

		if err == nil && got != want {
			t.Errorf("parseLevel(%q) = %v, want=%v", tests[i].input, got, want)
		} else if err != nil {
			t.Errorf("parseLevel(%q) = %q, want=%v", tests[i].input, err.Error(), want)
		}
	}
}

func TestParseBadLevel(t *testing.T) {
	if got, err := parseLevel("junk"); err == nil {
		t.Errorf(`parseLevel("junk") = %q, want error`, got)
	}
}

func TestEnabled(t *testing.T) {
	defer SetLevel(LogInfo)

	SetLevel(LogWarning)
	if !Enabled(LogError) {
		t.Errorf("Enabled(%v) = false at level %v, want true", LogError, LogWarning)
	}
	if Enabled(LogDebug) {
		t.Errorf("Enabled(%v) = true at level %v, want false", LogDebug, LogWarning)
	}
}

func TestUnmarshalText(t *testing.T) {
	var level Level

	if err := level.UnmarshalText([]byte("debug")); err != nil {
		t.Fatal(err)
	}
	if level != LogDebug {
		t.Errorf("UnmarshalText(%q) = %v, want %v", "debug", level, LogDebug)
	}
	if err := level.UnmarshalText([]byte("loud")); err == nil {
		t.Errorf("UnmarshalText(%q) = nil, want error", "loud")
	}
}
