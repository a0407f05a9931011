//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package valgrind

import (
	"bytes"
	"testing"
)

func TestSuppressionIsNull(t *testing.T) {
	var tests = []struct {
		supp Suppression
		want bool
	}{
		{Suppression{}, true},
		{Suppression{Name: "n"}, false},
		{Suppression{Kind: "Memcheck:Leak"}, false},
		{Suppression{RawText: "{}"}, false},
		{Suppression{Frames: []SuppressionFrame{{Object: "/lib/x.so"}}}, false},
		{Suppression{Present: true}, false},
	}

	for _, tc := range tests {
		if got := tc.supp.IsNull(); got != tc.want {
			t.Errorf("%+v.IsNull() = %t, want %t", tc.supp, got, tc.want)
		}
	}
}

func TestSuppressionString(t *testing.T) {
	s := Suppression{
		Name: "libc-leak",
		Kind: "Memcheck:Leak",
		Frames: []SuppressionFrame{
			{Function: "malloc"},
			{Object: "/lib/libc.so.6"},
			{Object: "/ignored.so", Function: "main"},
		},
	}

	want := "{\n   libc-leak\n   Memcheck:Leak\n   fun:malloc\n   obj:/lib/libc.so.6\n   fun:main\n}\n"
	if got := s.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriteSuppressions(t *testing.T) {
	errs := []Error{
		{What: "no suppression"},
		{Suppression: Suppression{RawText: "{\n   raw\n   Memcheck:Cond\n}"}},
		{Suppression: Suppression{Name: "built", Kind: "Memcheck:Free", Frames: []SuppressionFrame{{Function: "free"}}}},
		{Suppression: Suppression{Present: true}},
	}

	var buf bytes.Buffer
	if err := WriteSuppressions(&buf, errs); err != nil {
		t.Fatal(err)
	}

	want := "{\n   raw\n   Memcheck:Cond\n}\n" +
		"{\n   built\n   Memcheck:Free\n   fun:free\n}\n" +
		"{\n   \n   \n}\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSuppressionEqual(t *testing.T) {
	a := Suppression{Name: "n", Frames: []SuppressionFrame{{Function: "f"}}}
	b := Suppression{Name: "n", Frames: []SuppressionFrame{{Function: "f"}}}
	c := Suppression{Name: "n", Frames: []SuppressionFrame{{Object: "f"}}}

	if !a.Equal(b) {
		t.Error("identical suppressions are not equal")
	}
	if a.Equal(c) {
		t.Error("suppressions with different frames are equal")
	}
	if (Suppression{}).Equal(Suppression{Present: true}) {
		t.Error("a null suppression equals an empty one")
	}
}
