//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package protocol

import (
	"bytes"
	"context"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/newrelic/vgxml/internal/valgrind"
)

// parseFixture decodes a fixture into h.
func parseFixture(t *testing.T, name string, h valgrind.Handler) {
	t.Helper()

	f, err := os.Open("../valgrind/testdata/" + name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	p := valgrind.NewParser(h)
	p.SetSource(f)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("parsing %s: %v", name, err)
	}
}

func compareReports(t *testing.T, got, want *valgrind.Report) {
	t.Helper()

	if len(got.Errors) != len(want.Errors) {
		t.Fatalf("got %d errors, want %d", len(got.Errors), len(want.Errors))
	}
	for i := range want.Errors {
		if !got.Errors[i].Equal(want.Errors[i]) {
			t.Errorf("error %d:\n got %+v\nwant %+v", i, got.Errors[i], want.Errors[i])
		}
	}

	if len(got.Threads) != len(want.Threads) {
		t.Fatalf("got %d threads, want %d", len(got.Threads), len(want.Threads))
	}
	for i := range want.Threads {
		if !got.Threads[i].Equal(want.Threads[i]) {
			t.Errorf("thread %d:\n got %+v\nwant %+v", i, got.Threads[i], want.Threads[i])
		}
	}

	if !reflect.DeepEqual(got.Statuses, want.Statuses) {
		t.Errorf("statuses = %v, want %v", got.Statuses, want.Statuses)
	}
	if !reflect.DeepEqual(got.ErrorCounts, want.ErrorCounts) {
		t.Errorf("error counts = %v, want %v", got.ErrorCounts, want.ErrorCounts)
	}
	if !reflect.DeepEqual(got.SuppCounts, want.SuppCounts) {
		t.Errorf("suppression counts = %v, want %v", got.SuppCounts, want.SuppCounts)
	}
	if !reflect.DeepEqual(got.Process, want.Process) {
		t.Errorf("process = %+v, want %+v", got.Process, want.Process)
	}
	if got.Finished != want.Finished || got.Success != want.Success || got.Failure != want.Failure {
		t.Errorf("done = %t/%t/%q, want %t/%t/%q",
			got.Finished, got.Success, got.Failure, want.Finished, want.Success, want.Failure)
	}
}

func TestStreamRoundTrip(t *testing.T) {
	for _, name := range []string{"memcheck-output.xml", "helgrind-output.xml"} {
		want := valgrind.NewReport()
		buf := bytes.Buffer{}
		enc := NewStreamEncoder(&buf)

		parseFixture(t, name, valgrind.MultiHandler{want, enc})
		if err := enc.Err(); err != nil {
			t.Fatal(err)
		}

		got := valgrind.NewReport()
		if err := Replay(&buf, got); err != nil {
			t.Fatalf("%s: Replay() = %v", name, err)
		}

		compareReports(t, got, want)
	}
}

func TestEncodeErrorKinds(t *testing.T) {
	var testCases = []valgrind.Error{
		{Kind: valgrind.LeakStillReachable, LeakedBytes: 1 << 40, LeakedBlocks: 3, HelgrindThreadID: -1},
		{Kind: valgrind.Arith, Unique: -1, TID: 7, HelgrindThreadID: -1},
		{Kind: valgrind.LockOrder, HelgrindThreadID: 4},
		{What: "no kind", HelgrindThreadID: -1},
		{What: "empty suppression", HelgrindThreadID: -1, Suppression: valgrind.Suppression{Present: true}},
	}

	for _, want := range testCases {
		b := flatbuffers.NewBuilder(0)
		b.Finish(EncodeError(b, want))

		got := DecodeError(GetRootAsError(b.FinishedBytes(), 0))
		if !got.Equal(want) {
			t.Errorf("got %+v, want %+v", got, want)
		}
	}
}

func TestEncodeDefaults(t *testing.T) {
	b := flatbuffers.NewBuilder(0)
	b.Finish(EncodeFrame(b, valgrind.NewFrame()))

	if got := DecodeFrame(GetRootAsFrame(b.FinishedBytes(), 0)); got != valgrind.NewFrame() {
		t.Errorf("empty frame = %+v, want %+v", got, valgrind.NewFrame())
	}

	b.Reset()
	b.Finish(EncodeStack(b, valgrind.NewStack()))

	if got := DecodeStack(GetRootAsStack(b.FinishedBytes(), 0)); !got.Equal(valgrind.NewStack()) {
		t.Errorf("empty stack = %+v, want %+v", got, valgrind.NewStack())
	}
}

func TestEncoderSequence(t *testing.T) {
	var msgs [][]byte
	var seqs []uint64

	enc := NewEncoder(func(seq uint64, msg []byte) error {
		seqs = append(seqs, seq)
		msgs = append(msgs, msg)
		return nil
	})

	enc.Status(valgrind.Status{State: valgrind.Running, Time: "00:00:00:00.010 "})
	enc.ErrorCount(9, 2)
	enc.SuppressionCount("dl-hack3-cond-1", 12)
	enc.Done(false, "valgrind: unexpected end of stream")

	if want := []uint64{1, 2, 3, 4}; !reflect.DeepEqual(seqs, want) {
		t.Errorf("seqs = %v, want %v", seqs, want)
	}
	if enc.Seq() != 4 {
		t.Errorf("Seq() = %d, want 4", enc.Seq())
	}

	report := valgrind.NewReport()
	for i, msg := range msgs {
		seq, err := Dispatch(msg, report)
		if err != nil {
			t.Fatal(err)
		}
		if seq != seqs[i] {
			t.Errorf("message %d has seq %d, want %d", i, seq, seqs[i])
		}
	}

	if want := []valgrind.Status{{State: valgrind.Running, Time: "00:00:00:00.010 "}}; !reflect.DeepEqual(report.Statuses, want) {
		t.Errorf("statuses = %v, want %v", report.Statuses, want)
	}
	if report.ErrorCounts[9] != 2 || report.SuppCounts["dl-hack3-cond-1"] != 12 {
		t.Errorf("counts = %v %v", report.ErrorCounts, report.SuppCounts)
	}
	if !report.Finished || report.Success || report.Failure != "valgrind: unexpected end of stream" {
		t.Errorf("done = %t/%t/%q", report.Finished, report.Success, report.Failure)
	}
}

func TestEncoderEmitFailure(t *testing.T) {
	boom := errors.New("boom")
	calls := 0

	enc := NewEncoder(func(seq uint64, msg []byte) error {
		calls++
		if seq == 2 {
			return boom
		}
		return nil
	})

	enc.ErrorCount(1, 1)
	enc.ErrorCount(2, 1)
	enc.ErrorCount(3, 1)
	enc.Done(true, "")

	if calls != 2 {
		t.Errorf("emit called %d times, want 2", calls)
	}
	if enc.Err() != boom {
		t.Errorf("Err() = %v, want %v", enc.Err(), boom)
	}
}

func TestDispatchErrors(t *testing.T) {
	b := flatbuffers.NewBuilder(0)

	// A body type without a body.
	MessageStart(b)
	MessageAddSeq(b, 5)
	MessageAddDataType(b, MessageBodyError)
	b.Finish(MessageEnd(b))
	missingBody := append([]byte(nil), b.FinishedBytes()...)

	b.Reset()
	done := EncodeDone(b, true, "")
	unknown := append([]byte(nil), finishMessage(b, 6, MessageBody(99), done)...)

	tooLarge := make([]byte, 16)
	byteOrder.PutUint32(tooLarge, 100)

	var testCases = []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", nil, "message too short"},
		{"short", []byte{1, 2, 3}, "message too short"},
		{"offset", tooLarge, "offset is too large"},
		{"missing body", missingBody, "missing message body"},
		{"unknown body", unknown, "unknown message body MessageBody(99)"},
	}

	for _, tt := range testCases {
		report := valgrind.NewReport()
		_, err := Dispatch(tt.in, report)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: Dispatch() = %v, want error containing %q", tt.name, err, tt.want)
		}
		if report.Finished {
			t.Errorf("%s: event dispatched for an invalid message", tt.name)
		}
	}
}

func TestReplayRejectsRawMessages(t *testing.T) {
	buf := bytes.Buffer{}
	mw := MessageWriter{W: &buf, Type: MessageTypeRaw}
	mw.Write([]byte("<valgrindoutput/>"))

	if err := Replay(&buf, valgrind.NewReport()); err == nil {
		t.Error("Replay accepted a raw message")
	}
}
