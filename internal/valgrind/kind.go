//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package valgrind

import "strconv"

// Tool identifies the Valgrind tool that produced a stream. It selects
// the vocabulary error kinds are decoded against.
type Tool int

const (
	ToolUnknown Tool = iota
	ToolMemcheck
	ToolPtrcheck
	ToolHelgrind
)

// ParseTool returns the Tool named by a <protocoltool> element.
func ParseTool(name string) (Tool, bool) {
	switch name {
	case "memcheck":
		return ToolMemcheck, true
	case "ptrcheck", "exp-ptrcheck":
		return ToolPtrcheck, true
	case "helgrind":
		return ToolHelgrind, true
	default:
		return ToolUnknown, false
	}
}

func (t Tool) String() string {
	switch t {
	case ToolMemcheck:
		return "memcheck"
	case ToolPtrcheck:
		return "ptrcheck"
	case ToolHelgrind:
		return "helgrind"
	default:
		return "unknown"
	}
}

// ErrorKind classifies an error. The concrete type is one of
// MemcheckKind, PtrcheckKind or HelgrindKind, depending on the tool.
type ErrorKind interface {
	Tool() Tool
	String() string

	isErrorKind()
}

// ParseErrorKind looks up the <kind> text in the vocabulary of tool.
func ParseErrorKind(tool Tool, name string) (ErrorKind, error) {
	var (
		kind ErrorKind
		ok   bool
	)

	switch tool {
	case ToolMemcheck:
		kind, ok = memcheckKinds[name]
	case ToolPtrcheck:
		kind, ok = ptrcheckKinds[name]
	case ToolHelgrind:
		kind, ok = helgrindKinds[name]
	default:
		return nil, protocolErrorf("error/kind", "could not parse error kind, tool not yet set")
	}

	if !ok {
		return nil, protocolErrorf("error/kind", "unknown %s kind %q", tool, name)
	}
	return kind, nil
}

// MemcheckKind is an error kind reported by memcheck.
type MemcheckKind int

const (
	InvalidFree MemcheckKind = iota
	MismatchedFree
	InvalidRead
	InvalidWrite
	InvalidJump
	Overlap
	InvalidMemPool
	UninitCondition
	UninitValue
	SyscallParam
	ClientCheck
	LeakDefinitelyLost
	LeakPossiblyLost
	LeakStillReachable
	LeakIndirectlyLost
)

var memcheckNames = [...]string{
	InvalidFree:        "InvalidFree",
	MismatchedFree:     "MismatchedFree",
	InvalidRead:        "InvalidRead",
	InvalidWrite:       "InvalidWrite",
	InvalidJump:        "InvalidJump",
	Overlap:            "Overlap",
	InvalidMemPool:     "InvalidMemPool",
	UninitCondition:    "UninitCondition",
	UninitValue:        "UninitValue",
	SyscallParam:       "SyscallParam",
	ClientCheck:        "ClientCheck",
	LeakDefinitelyLost: "Leak_DefinitelyLost",
	LeakPossiblyLost:   "Leak_PossiblyLost",
	LeakStillReachable: "Leak_StillReachable",
	LeakIndirectlyLost: "Leak_IndirectlyLost",
}

func (k MemcheckKind) Tool() Tool { return ToolMemcheck }
func (k MemcheckKind) isErrorKind() {}

func (k MemcheckKind) String() string {
	if k >= 0 && int(k) < len(memcheckNames) {
		return memcheckNames[k]
	}
	return "MemcheckKind(" + strconv.Itoa(int(k)) + ")"
}

// IsLeak reports whether k is one of the Leak_* kinds.
func (k MemcheckKind) IsLeak() bool {
	return k >= LeakDefinitelyLost && k <= LeakIndirectlyLost
}

// PtrcheckKind is an error kind reported by (exp-)ptrcheck.
type PtrcheckKind int

const (
	SorG PtrcheckKind = iota
	Heap
	Arith
	SysParam
)

var ptrcheckNames = [...]string{
	SorG:     "SorG",
	Heap:     "Heap",
	Arith:    "Arith",
	SysParam: "SysParam",
}

func (k PtrcheckKind) Tool() Tool { return ToolPtrcheck }
func (k PtrcheckKind) isErrorKind() {}

func (k PtrcheckKind) String() string {
	if k >= 0 && int(k) < len(ptrcheckNames) {
		return ptrcheckNames[k]
	}
	return "PtrcheckKind(" + strconv.Itoa(int(k)) + ")"
}

// HelgrindKind is an error kind reported by helgrind.
type HelgrindKind int

const (
	Race HelgrindKind = iota
	UnlockUnlocked
	UnlockForeign
	UnlockBogus
	PthAPIError
	LockOrder
	Misc
)

var helgrindNames = [...]string{
	Race:           "Race",
	UnlockUnlocked: "UnlockUnlocked",
	UnlockForeign:  "UnlockForeign",
	UnlockBogus:    "UnlockBogus",
	PthAPIError:    "PthAPIerror",
	LockOrder:      "LockOrder",
	Misc:           "Misc",
}

func (k HelgrindKind) Tool() Tool { return ToolHelgrind }
func (k HelgrindKind) isErrorKind() {}

func (k HelgrindKind) String() string {
	if k >= 0 && int(k) < len(helgrindNames) {
		return helgrindNames[k]
	}
	return "HelgrindKind(" + strconv.Itoa(int(k)) + ")"
}

var (
	memcheckKinds = make(map[string]ErrorKind, len(memcheckNames))
	ptrcheckKinds = make(map[string]ErrorKind, len(ptrcheckNames))
	helgrindKinds = make(map[string]ErrorKind, len(helgrindNames))
)

func init() {
	for i, name := range memcheckNames {
		memcheckKinds[name] = MemcheckKind(i)
	}
	for i, name := range ptrcheckNames {
		ptrcheckKinds[name] = PtrcheckKind(i)
	}
	for i, name := range helgrindNames {
		helgrindKinds[name] = HelgrindKind(i)
	}
}

// KindFromCode rebuilds an ErrorKind from its tool and numeric value, as
// carried by the binary event encoding.
func KindFromCode(tool Tool, code int) (ErrorKind, bool) {
	switch tool {
	case ToolMemcheck:
		if code >= 0 && code < len(memcheckNames) {
			return MemcheckKind(code), true
		}
	case ToolPtrcheck:
		if code >= 0 && code < len(ptrcheckNames) {
			return PtrcheckKind(code), true
		}
	case ToolHelgrind:
		if code >= 0 && code < len(helgrindNames) {
			return HelgrindKind(code), true
		}
	}
	return nil, false
}

// KindCode returns the numeric value of k within its tool's vocabulary,
// or -1 for a nil kind.
func KindCode(k ErrorKind) int {
	switch k := k.(type) {
	case MemcheckKind:
		return int(k)
	case PtrcheckKind:
		return int(k)
	case HelgrindKind:
		return int(k)
	default:
		return -1
	}
}
