//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package valgrind

import (
	"errors"
	"fmt"
	"slices"
)

// Error represents an error detected by Valgrind.
type Error struct {
	Unique int64 // identity assigned by the tool
	TID    int64 // thread the error occurred on
	Kind   ErrorKind

	// What is the human readable description. For leaks this is the
	// text of the xwhat element.
	What string

	// Stacks[0] is normally the code path leading up to the error, the
	// remaining stacks provide additional information regarding it.
	Stacks      []Stack
	Suppression Suppression

	LeakedBytes      uint64
	LeakedBlocks     int64
	HelgrindThreadID int64
}

// NewError returns an Error with no helgrind thread.
func NewError() Error {
	return Error{HelgrindThreadID: -1}
}

// Equal reports whether e and other are structurally identical.
func (e Error) Equal(other Error) bool {
	return e.Unique == other.Unique &&
		e.TID == other.TID &&
		e.Kind == other.Kind &&
		e.What == other.What &&
		e.LeakedBytes == other.LeakedBytes &&
		e.LeakedBlocks == other.LeakedBlocks &&
		e.HelgrindThreadID == other.HelgrindThreadID &&
		e.Suppression.Equal(other.Suppression) &&
		slices.EqualFunc(e.Stacks, other.Stacks, Stack.Equal)
}

// ProtocolError reports a stream that violates the Valgrind XML
// protocol. Context names the offending element, e.g. "frame/ip".
type ProtocolError struct {
	Context string
	Msg     string
}

func (e *ProtocolError) Error() string {
	if e.Context == "" {
		return "valgrind: " + e.Msg
	}
	return "valgrind: " + e.Msg + " (" + e.Context + ")"
}

func protocolErrorf(context, format string, a ...interface{}) error {
	return &ProtocolError{Context: context, Msg: fmt.Sprintf(format, a...)}
}

var (
	ErrNoSource     = errors.New("valgrind: no input source set")
	ErrParserReused = errors.New("valgrind: parser already started")
	ErrCancelled    = errors.New("valgrind: parser stopped")
	ErrStalled      = errors.New("valgrind: no data received before stall timeout")

	errUnexpectedEnd = errors.New("valgrind: unexpected end of stream")
)
