//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package protocol

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/newrelic/vgxml/internal/log"
	"github.com/newrelic/vgxml/internal/valgrind"
)

// MinMessageSize is the size of the smallest Message the Encoder produces
// (no body). Anything shorter cannot be a valid message.
const MinMessageSize = 12

func decodeFrames(n int, at func(obj *Frame, j int) bool) []valgrind.Frame {
	if n == 0 {
		return nil
	}

	var f Frame
	frames := make([]valgrind.Frame, n)
	for i := range frames {
		at(&f, i)
		frames[i] = DecodeFrame(&f)
	}
	return frames
}

func decodeStrings(n int, at func(j int) []byte) []string {
	if n == 0 {
		return nil
	}

	ss := make([]string, n)
	for i := range ss {
		ss[i] = string(at(i))
	}
	return ss
}

// DecodeFrame copies an encoded Frame.
func DecodeFrame(f *Frame) valgrind.Frame {
	return valgrind.Frame{
		InstructionPointer: f.Ip(),
		Object:             string(f.Obj()),
		FunctionName:       string(f.Fn()),
		Directory:          string(f.Dir()),
		FileName:           string(f.File()),
		Line:               int(f.Line()),
	}
}

// DecodeStack copies an encoded Stack.
func DecodeStack(s *Stack) valgrind.Stack {
	return valgrind.Stack{
		AuxWhat:          string(s.AuxWhat()),
		File:             string(s.File()),
		Directory:        string(s.Dir()),
		Line:             s.Line(),
		HelgrindThreadID: s.HelgrindThreadId(),
		Frames:           decodeFrames(s.FramesLength(), s.Frames),
	}
}

// DecodeSuppression copies an encoded Suppression. A nil s is the null
// suppression.
func DecodeSuppression(s *Suppression) valgrind.Suppression {
	if s == nil {
		return valgrind.Suppression{}
	}

	supp := valgrind.Suppression{
		Name:    string(s.Name()),
		Kind:    string(s.Kind()),
		AuxKind: string(s.AuxKind()),
		RawText: string(s.RawText()),
		Present: true,
	}

	if n := s.FramesLength(); n > 0 {
		var f SuppressionFrame

		supp.Frames = make([]valgrind.SuppressionFrame, n)
		for i := 0; i < n; i++ {
			s.Frames(&f, i)
			supp.Frames[i] = valgrind.SuppressionFrame{
				Object:   string(f.Obj()),
				Function: string(f.Fun()),
			}
		}
	}
	return supp
}

// DecodeError copies an encoded Error. An unknown tool or kind code
// decodes to a nil Kind.
func DecodeError(e *Error) valgrind.Error {
	kind, _ := valgrind.KindFromCode(valgrind.Tool(e.Tool()), int(e.Kind()))

	out := valgrind.Error{
		Unique:           e.Unique(),
		TID:              e.Tid(),
		Kind:             kind,
		What:             string(e.What()),
		Suppression:      DecodeSuppression(e.Suppression(nil)),
		LeakedBytes:      e.LeakedBytes(),
		LeakedBlocks:     e.LeakedBlocks(),
		HelgrindThreadID: e.HelgrindThreadId(),
	}

	if n := e.StacksLength(); n > 0 {
		var s Stack

		out.Stacks = make([]valgrind.Stack, n)
		for i := 0; i < n; i++ {
			e.Stacks(&s, i)
			out.Stacks[i] = DecodeStack(&s)
		}
	}
	return out
}

// DecodeAnnounceThread copies an encoded AnnounceThread.
func DecodeAnnounceThread(a *AnnounceThread) valgrind.AnnounceThread {
	return valgrind.AnnounceThread{
		HelgrindThreadID: a.HelgrindThreadId(),
		Frames:           decodeFrames(a.FramesLength(), a.Frames),
	}
}

// DecodeProcessInfo copies an encoded ProcessInfo.
func DecodeProcessInfo(p *ProcessInfo) valgrind.ProcessInfo {
	return valgrind.ProcessInfo{
		Pid:          p.Pid(),
		Ppid:         p.Ppid(),
		Tool:         string(p.Tool()),
		ValgrindExe:  string(p.ValgrindExe()),
		ValgrindArgs: decodeStrings(p.ValgrindArgsLength(), p.ValgrindArgs),
		Exe:          string(p.Exe()),
		Args:         decodeStrings(p.ArgsLength(), p.Args),
	}
}

// Dispatch decodes a single Message and reports its event to h. It
// returns the message sequence number.
func Dispatch(data []byte, h valgrind.Handler) (seq uint64, err error) {
	if len(data) < MinMessageSize {
		return 0, errors.New("message too short, len=" + strconv.Itoa(len(data)))
	}

	// Check that the first offset is actually within the bounds of the message
	// length.
	offset := int(flatbuffers.GetUOffsetT(data[0:]))
	if len(data)-MinMessageSize < offset {
		return 0, errors.New("offset is too large, len=" + strconv.Itoa(offset))
	}

	// The accessors index the buffer without bounds checks of their own.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed message: %v", r)
		}
	}()

	msg := GetRootAsMessage(data, 0)
	seq = msg.Seq()

	var tbl flatbuffers.Table
	if msg.DataType() != MessageBodyNONE && !msg.Data(&tbl) {
		return seq, fmt.Errorf("%v message %d missing message body", msg.DataType(), seq)
	}

	switch msg.DataType() {
	case MessageBodyError:
		var e Error
		e.Init(tbl.Bytes, tbl.Pos)
		h.Error(DecodeError(&e))

	case MessageBodyAnnounceThread:
		var a AnnounceThread
		a.Init(tbl.Bytes, tbl.Pos)
		h.AnnounceThread(DecodeAnnounceThread(&a))

	case MessageBodyStatus:
		var s Status
		s.Init(tbl.Bytes, tbl.Pos)
		h.Status(valgrind.Status{State: valgrind.State(s.State()), Time: string(s.Time())})

	case MessageBodyErrorCount:
		var c ErrorCount
		c.Init(tbl.Bytes, tbl.Pos)
		h.ErrorCount(c.Unique(), c.Count())

	case MessageBodySuppressionCount:
		var c SuppressionCount
		c.Init(tbl.Bytes, tbl.Pos)
		h.SuppressionCount(string(c.Name()), c.Count())

	case MessageBodyProcessInfo:
		var p ProcessInfo
		p.Init(tbl.Bytes, tbl.Pos)
		if ph, ok := h.(valgrind.ProcessHandler); ok {
			ph.ProcessInfo(DecodeProcessInfo(&p))
		}

	case MessageBodyDone:
		var d Done
		d.Init(tbl.Bytes, tbl.Pos)
		h.Done(d.Success(), string(d.Message()))

	case MessageBodyNONE:
		log.Debugf("ignoring None message")

	default:
		return seq, fmt.Errorf("unknown message body %v", msg.DataType())
	}

	return seq, nil
}

// Replay reads length-prefixed messages from r and dispatches them to h
// until r ends. It returns nil at a clean end of r.
func Replay(r io.Reader, h valgrind.Handler) error {
	for {
		raw, err := ReadMessage(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if raw.Type != MessageTypeBinary {
			return fmt.Errorf("unexpected %v message", raw.Type)
		}
		if _, err := Dispatch(raw.Bytes, h); err != nil {
			return err
		}
	}
}
