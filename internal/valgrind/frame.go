//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package valgrind

import "slices"

// Frame represents a stack frame as identified (traced) by Valgrind.
type Frame struct {
	InstructionPointer uint64
	Object             string // name of the shared object or executable

	// The following fields are populated by Valgrind when debugging info
	// is available, and Valgrind was able to map the instruction pointer
	// to a function or symbol defined within Object.

	FunctionName string
	FileName     string
	Directory    string
	Line         int // -1 when unknown
}

// NewFrame returns a Frame with no known source line.
func NewFrame() Frame {
	return Frame{Line: -1}
}

// FilePath returns the full path of the source file for the frame.
func (f Frame) FilePath() string {
	if f.Directory == "" {
		return f.FileName
	}
	return f.Directory + "/" + f.FileName
}

// Stack is one call stack attached to an error. Frames are ordered
// innermost call first.
type Stack struct {
	// AuxWhat explains what the stack shows, e.g. "Address 0x0 is not
	// stack'd, malloc'd or (recently) free'd". It is empty for the stack
	// leading up to the error.
	AuxWhat          string
	File             string
	Directory        string
	Line             int64
	HelgrindThreadID int64
	Frames           []Frame
}

// NewStack returns an empty Stack with no known source line or thread.
func NewStack() Stack {
	return Stack{Line: -1, HelgrindThreadID: -1}
}

// Equal reports whether s and other describe the same stack.
func (s Stack) Equal(other Stack) bool {
	return s.AuxWhat == other.AuxWhat &&
		s.File == other.File &&
		s.Directory == other.Directory &&
		s.Line == other.Line &&
		s.HelgrindThreadID == other.HelgrindThreadID &&
		slices.Equal(s.Frames, other.Frames)
}
