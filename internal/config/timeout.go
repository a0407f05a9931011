//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package config

import (
	"time"
	"unicode/utf8"
)

// A Timeout specifies a time limit as a non-negative int64 nanosecond count.
type Timeout int64

// UnmarshalText implements the encoding.TextUnmarshaler interface. Terms
// without a unit are interpreted as milliseconds. An empty value is no
// limit.
func (t *Timeout) UnmarshalText(text []byte) error {
	var x time.Duration
	var err error

	if len(text) == 0 {
		*t = 0
		return nil
	}

	if r, _ := utf8.DecodeLastRune(text); r >= '0' && r <= '9' {
		x, err = time.ParseDuration(string(text) + "ms")
	} else {
		x, err = time.ParseDuration(string(text))
	}

	if err != nil {
		return err
	}

	*t = Timeout(x)
	return nil
}

// Duration converts t for use with the time package.
func (t Timeout) Duration() time.Duration { return time.Duration(t) }

// String returns a string representing the timeout in the form "72h3m0.5s".
// The zero timeout formats as 0s.
func (t Timeout) String() string {
	if t > 0 {
		return time.Duration(t).String()
	}
	return "0s"
}

// Set implements the flag.Value interface.
func (t *Timeout) Set(s string) error { return t.UnmarshalText([]byte(s)) }

// Type names the value in pflag usage output.
func (t *Timeout) Type() string { return "timeout" }
