//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package valgrind

import "slices"

// AnnounceThread introduces a helgrind thread and where it was created.
type AnnounceThread struct {
	HelgrindThreadID int64
	Frames           []Frame
}

// Equal reports whether a and other announce the same thread.
func (a AnnounceThread) Equal(other AnnounceThread) bool {
	return a.HelgrindThreadID == other.HelgrindThreadID &&
		slices.Equal(a.Frames, other.Frames)
}

// State is the run state carried by a <status> element.
type State int

const (
	Running State = iota
	Finished
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Finished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Status marks a run state transition of the client program.
type Status struct {
	State State
	Time  string // opaque, as printed by valgrind
}

// ProcessInfo describes the process valgrind is running. It is built from
// the top-level <pid>, <ppid>, <tool> and <args> elements.
type ProcessInfo struct {
	Pid  int64
	Ppid int64
	Tool string

	ValgrindExe  string
	ValgrindArgs []string
	Exe          string
	Args         []string
}

// A Handler receives the events decoded from a stream, in stream order.
// Done is called exactly once, last.
type Handler interface {
	Error(Error)
	AnnounceThread(AnnounceThread)
	Status(Status)
	ErrorCount(unique, count int64)
	SuppressionCount(name string, count int64)
	Done(success bool, msg string)
}

// A ProcessHandler is a Handler that also wants the process description.
// ProcessInfo is called after each preamble element with everything
// learned so far.
type ProcessHandler interface {
	Handler
	ProcessInfo(ProcessInfo)
}

// HandlerFuncs adapts a set of optional functions to the Handler
// interface. Nil fields ignore their event.
type HandlerFuncs struct {
	OnError            func(Error)
	OnAnnounceThread   func(AnnounceThread)
	OnStatus           func(Status)
	OnErrorCount       func(unique, count int64)
	OnSuppressionCount func(name string, count int64)
	OnProcessInfo      func(ProcessInfo)
	OnDone             func(success bool, msg string)
}

func (h *HandlerFuncs) Error(e Error) {
	if h.OnError != nil {
		h.OnError(e)
	}
}

func (h *HandlerFuncs) AnnounceThread(a AnnounceThread) {
	if h.OnAnnounceThread != nil {
		h.OnAnnounceThread(a)
	}
}

func (h *HandlerFuncs) Status(s Status) {
	if h.OnStatus != nil {
		h.OnStatus(s)
	}
}

func (h *HandlerFuncs) ErrorCount(unique, count int64) {
	if h.OnErrorCount != nil {
		h.OnErrorCount(unique, count)
	}
}

func (h *HandlerFuncs) SuppressionCount(name string, count int64) {
	if h.OnSuppressionCount != nil {
		h.OnSuppressionCount(name, count)
	}
}

func (h *HandlerFuncs) ProcessInfo(info ProcessInfo) {
	if h.OnProcessInfo != nil {
		h.OnProcessInfo(info)
	}
}

func (h *HandlerFuncs) Done(success bool, msg string) {
	if h.OnDone != nil {
		h.OnDone(success, msg)
	}
}

// MultiHandler forwards every event to each of its handlers in order.
type MultiHandler []Handler

func (m MultiHandler) Error(e Error) {
	for _, h := range m {
		h.Error(e)
	}
}

func (m MultiHandler) AnnounceThread(a AnnounceThread) {
	for _, h := range m {
		h.AnnounceThread(a)
	}
}

func (m MultiHandler) Status(s Status) {
	for _, h := range m {
		h.Status(s)
	}
}

func (m MultiHandler) ErrorCount(unique, count int64) {
	for _, h := range m {
		h.ErrorCount(unique, count)
	}
}

func (m MultiHandler) SuppressionCount(name string, count int64) {
	for _, h := range m {
		h.SuppressionCount(name, count)
	}
}

func (m MultiHandler) ProcessInfo(info ProcessInfo) {
	for _, h := range m {
		if ph, ok := h.(ProcessHandler); ok {
			ph.ProcessInfo(info)
		}
	}
}

func (m MultiHandler) Done(success bool, msg string) {
	for _, h := range m {
		h.Done(success, msg)
	}
}
