//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package protocol

import (
	"io"
	"sync"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/newrelic/vgxml/internal/log"
	"github.com/newrelic/vgxml/internal/valgrind"
)

func createString(b *flatbuffers.Builder, s string) flatbuffers.UOffsetT {
	if len(s) == 0 {
		return 0
	}
	return b.CreateString(s)
}

type vectorStart func(b *flatbuffers.Builder, numElems int) flatbuffers.UOffsetT

// createVector prepends a vector of already encoded offsets. Empty vectors
// are omitted.
func createVector(b *flatbuffers.Builder, offsets []flatbuffers.UOffsetT, start vectorStart) flatbuffers.UOffsetT {
	if len(offsets) == 0 {
		return 0
	}

	start(b, len(offsets))
	for i := len(offsets) - 1; i >= 0; i-- {
		b.PrependUOffsetT(offsets[i])
	}
	return b.EndVector(len(offsets))
}

func createStrings(b *flatbuffers.Builder, ss []string, start vectorStart) flatbuffers.UOffsetT {
	offsets := make([]flatbuffers.UOffsetT, len(ss))
	for i, s := range ss {
		offsets[i] = b.CreateString(s)
	}
	return createVector(b, offsets, start)
}

func encodeFrames(b *flatbuffers.Builder, frames []valgrind.Frame, start vectorStart) flatbuffers.UOffsetT {
	offsets := make([]flatbuffers.UOffsetT, len(frames))
	for i, f := range frames {
		offsets[i] = EncodeFrame(b, f)
	}
	return createVector(b, offsets, start)
}

// EncodeFrame prepends a new Frame object to the FlatBuffer and returns
// its offset.
func EncodeFrame(b *flatbuffers.Builder, f valgrind.Frame) flatbuffers.UOffsetT {
	obj := createString(b, f.Object)
	fn := createString(b, f.FunctionName)
	dir := createString(b, f.Directory)
	file := createString(b, f.FileName)

	FrameStart(b)
	FrameAddIp(b, f.InstructionPointer)
	FrameAddObj(b, obj)
	FrameAddFn(b, fn)
	FrameAddDir(b, dir)
	FrameAddFile(b, file)
	FrameAddLine(b, int32(f.Line))
	return FrameEnd(b)
}

// EncodeStack prepends a new Stack object to the FlatBuffer and returns
// its offset.
func EncodeStack(b *flatbuffers.Builder, s valgrind.Stack) flatbuffers.UOffsetT {
	frames := encodeFrames(b, s.Frames, StackStartFramesVector)
	auxWhat := createString(b, s.AuxWhat)
	file := createString(b, s.File)
	dir := createString(b, s.Directory)

	StackStart(b)
	StackAddAuxWhat(b, auxWhat)
	StackAddFile(b, file)
	StackAddDir(b, dir)
	StackAddLine(b, s.Line)
	StackAddHelgrindThreadId(b, s.HelgrindThreadID)
	StackAddFrames(b, frames)
	return StackEnd(b)
}

// EncodeSuppression prepends a new Suppression object to the FlatBuffer
// and returns its offset, or 0 for a null suppression.
func EncodeSuppression(b *flatbuffers.Builder, s valgrind.Suppression) flatbuffers.UOffsetT {
	if s.IsNull() {
		return 0
	}

	offsets := make([]flatbuffers.UOffsetT, len(s.Frames))
	for i, f := range s.Frames {
		obj := createString(b, f.Object)
		fun := createString(b, f.Function)

		SuppressionFrameStart(b)
		SuppressionFrameAddObj(b, obj)
		SuppressionFrameAddFun(b, fun)
		offsets[i] = SuppressionFrameEnd(b)
	}
	frames := createVector(b, offsets, SuppressionStartFramesVector)

	name := createString(b, s.Name)
	kind := createString(b, s.Kind)
	auxKind := createString(b, s.AuxKind)
	rawText := createString(b, s.RawText)

	SuppressionStart(b)
	SuppressionAddName(b, name)
	SuppressionAddKind(b, kind)
	SuppressionAddAuxKind(b, auxKind)
	SuppressionAddRawText(b, rawText)
	SuppressionAddFrames(b, frames)
	return SuppressionEnd(b)
}

// EncodeError prepends a new Error object to the FlatBuffer and returns
// its offset.
func EncodeError(b *flatbuffers.Builder, e valgrind.Error) flatbuffers.UOffsetT {
	stackOffsets := make([]flatbuffers.UOffsetT, len(e.Stacks))
	for i, s := range e.Stacks {
		stackOffsets[i] = EncodeStack(b, s)
	}
	stacks := createVector(b, stackOffsets, ErrorStartStacksVector)
	supp := EncodeSuppression(b, e.Suppression)
	what := createString(b, e.What)

	var tool byte
	if e.Kind != nil {
		tool = byte(e.Kind.Tool())
	}

	ErrorStart(b)
	ErrorAddUnique(b, e.Unique)
	ErrorAddTid(b, e.TID)
	ErrorAddTool(b, tool)
	ErrorAddKind(b, int16(valgrind.KindCode(e.Kind)))
	ErrorAddWhat(b, what)
	ErrorAddStacks(b, stacks)
	ErrorAddSuppression(b, supp)
	ErrorAddLeakedBytes(b, e.LeakedBytes)
	ErrorAddLeakedBlocks(b, e.LeakedBlocks)
	ErrorAddHelgrindThreadId(b, e.HelgrindThreadID)
	return ErrorEnd(b)
}

// EncodeAnnounceThread prepends a new AnnounceThread object to the
// FlatBuffer and returns its offset.
func EncodeAnnounceThread(b *flatbuffers.Builder, a valgrind.AnnounceThread) flatbuffers.UOffsetT {
	frames := encodeFrames(b, a.Frames, AnnounceThreadStartFramesVector)

	AnnounceThreadStart(b)
	AnnounceThreadAddHelgrindThreadId(b, a.HelgrindThreadID)
	AnnounceThreadAddFrames(b, frames)
	return AnnounceThreadEnd(b)
}

// EncodeStatus prepends a new Status object to the FlatBuffer and returns
// its offset.
func EncodeStatus(b *flatbuffers.Builder, s valgrind.Status) flatbuffers.UOffsetT {
	time := createString(b, s.Time)

	StatusStart(b)
	StatusAddState(b, byte(s.State))
	StatusAddTime(b, time)
	return StatusEnd(b)
}

// EncodeErrorCount prepends a new ErrorCount object to the FlatBuffer and
// returns its offset.
func EncodeErrorCount(b *flatbuffers.Builder, unique, count int64) flatbuffers.UOffsetT {
	ErrorCountStart(b)
	ErrorCountAddUnique(b, unique)
	ErrorCountAddCount(b, count)
	return ErrorCountEnd(b)
}

// EncodeSuppressionCount prepends a new SuppressionCount object to the
// FlatBuffer and returns its offset.
func EncodeSuppressionCount(b *flatbuffers.Builder, name string, count int64) flatbuffers.UOffsetT {
	nameOffset := createString(b, name)

	SuppressionCountStart(b)
	SuppressionCountAddName(b, nameOffset)
	SuppressionCountAddCount(b, count)
	return SuppressionCountEnd(b)
}

// EncodeProcessInfo prepends a new ProcessInfo object to the FlatBuffer
// and returns its offset.
func EncodeProcessInfo(b *flatbuffers.Builder, info valgrind.ProcessInfo) flatbuffers.UOffsetT {
	valgrindArgs := createStrings(b, info.ValgrindArgs, ProcessInfoStartValgrindArgsVector)
	args := createStrings(b, info.Args, ProcessInfoStartArgsVector)
	tool := createString(b, info.Tool)
	valgrindExe := createString(b, info.ValgrindExe)
	exe := createString(b, info.Exe)

	ProcessInfoStart(b)
	ProcessInfoAddPid(b, info.Pid)
	ProcessInfoAddPpid(b, info.Ppid)
	ProcessInfoAddTool(b, tool)
	ProcessInfoAddValgrindExe(b, valgrindExe)
	ProcessInfoAddValgrindArgs(b, valgrindArgs)
	ProcessInfoAddExe(b, exe)
	ProcessInfoAddArgs(b, args)
	return ProcessInfoEnd(b)
}

// EncodeDone prepends a new Done object to the FlatBuffer and returns its
// offset.
func EncodeDone(b *flatbuffers.Builder, success bool, msg string) flatbuffers.UOffsetT {
	msgOffset := createString(b, msg)

	DoneStart(b)
	if success {
		DoneAddSuccess(b, true)
	}
	DoneAddMessage(b, msgOffset)
	return DoneEnd(b)
}

// finishMessage wraps an encoded body in a Message and finishes the
// buffer.
func finishMessage(b *flatbuffers.Builder, seq uint64, typ MessageBody, body flatbuffers.UOffsetT) []byte {
	MessageStart(b)
	MessageAddSeq(b, seq)
	MessageAddDataType(b, typ)
	MessageAddData(b, body)
	b.Finish(MessageEnd(b))
	return b.FinishedBytes()
}

// An Encoder is a valgrind.ProcessHandler that encodes each event as a
// Message and hands the finished buffer to an emit function. Messages are
// numbered from 1 in the order events arrive. Once emit fails, later
// events are dropped and Err reports the failure.
type Encoder struct {
	mu   sync.Mutex
	b    *flatbuffers.Builder
	emit func(seq uint64, msg []byte) error
	seq  uint64
	err  error
}

// NewEncoder returns an Encoder passing messages to emit. emit owns the
// slice it is given.
func NewEncoder(emit func(seq uint64, msg []byte) error) *Encoder {
	return &Encoder{
		b:    flatbuffers.NewBuilder(1024),
		emit: emit,
	}
}

// NewStreamEncoder returns an Encoder writing length-prefixed binary
// messages to w.
func NewStreamEncoder(w io.Writer) *Encoder {
	mw := &MessageWriter{W: w, Type: MessageTypeBinary}
	return NewEncoder(func(_ uint64, msg []byte) error {
		_, err := mw.Write(msg)
		return err
	})
}

// Err returns the first emit failure.
func (enc *Encoder) Err() error {
	enc.mu.Lock()
	defer enc.mu.Unlock()
	return enc.err
}

// Seq returns the number of messages encoded so far.
func (enc *Encoder) Seq() uint64 {
	enc.mu.Lock()
	defer enc.mu.Unlock()
	return enc.seq
}

func (enc *Encoder) encode(typ MessageBody, build func(b *flatbuffers.Builder) flatbuffers.UOffsetT) {
	enc.mu.Lock()
	defer enc.mu.Unlock()

	if enc.err != nil {
		return
	}

	enc.b.Reset()
	enc.seq++
	msg := finishMessage(enc.b, enc.seq, typ, build(enc.b))

	cpy := make([]byte, len(msg))
	copy(cpy, msg)

	if err := enc.emit(enc.seq, cpy); err != nil {
		log.Errorf("protocol: unable to emit %v message %d: %v", typ, enc.seq, err)
		enc.err = err
	}
}

func (enc *Encoder) Error(e valgrind.Error) {
	enc.encode(MessageBodyError, func(b *flatbuffers.Builder) flatbuffers.UOffsetT {
		return EncodeError(b, e)
	})
}

func (enc *Encoder) AnnounceThread(a valgrind.AnnounceThread) {
	enc.encode(MessageBodyAnnounceThread, func(b *flatbuffers.Builder) flatbuffers.UOffsetT {
		return EncodeAnnounceThread(b, a)
	})
}

func (enc *Encoder) Status(s valgrind.Status) {
	enc.encode(MessageBodyStatus, func(b *flatbuffers.Builder) flatbuffers.UOffsetT {
		return EncodeStatus(b, s)
	})
}

func (enc *Encoder) ErrorCount(unique, count int64) {
	enc.encode(MessageBodyErrorCount, func(b *flatbuffers.Builder) flatbuffers.UOffsetT {
		return EncodeErrorCount(b, unique, count)
	})
}

func (enc *Encoder) SuppressionCount(name string, count int64) {
	enc.encode(MessageBodySuppressionCount, func(b *flatbuffers.Builder) flatbuffers.UOffsetT {
		return EncodeSuppressionCount(b, name, count)
	})
}

func (enc *Encoder) ProcessInfo(info valgrind.ProcessInfo) {
	enc.encode(MessageBodyProcessInfo, func(b *flatbuffers.Builder) flatbuffers.UOffsetT {
		return EncodeProcessInfo(b, info)
	})
}

func (enc *Encoder) Done(success bool, msg string) {
	enc.encode(MessageBodyDone, func(b *flatbuffers.Builder) flatbuffers.UOffsetT {
		return EncodeDone(b, success, msg)
	})
}
