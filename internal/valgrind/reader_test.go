//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package valgrind

import (
	"errors"
	"io"
	"testing"
	"time"
)

type readStep struct {
	data string
	err  error
}

// scriptedSource replays a fixed sequence of reads, then reports io.EOF.
type scriptedSource struct {
	steps []readStep
}

func (s *scriptedSource) Read(p []byte) (int, error) {
	if len(s.steps) == 0 {
		return 0, io.EOF
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	return copy(p, step.data), step.err
}

// deadlineSource is a scriptedSource that accepts read deadlines.
type deadlineSource struct {
	scriptedSource
	deadlines   int
	deadlineErr error
}

func (s *deadlineSource) SetReadDeadline(t time.Time) error {
	s.deadlines++
	return s.deadlineErr
}

// emptySource never produces data.
type emptySource struct{}

func (emptySource) Read(p []byte) (int, error) { return 0, nil }

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestStreamReaderRetriesEmptyReads(t *testing.T) {
	src := &scriptedSource{steps: []readStep{{}, {}, {data: "abc"}, {}, {data: "def"}}}
	r := newStreamReader(src, time.Millisecond, 0, make(chan struct{}))

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "abcdef" {
		t.Errorf("read %q, want %q", got, "abcdef")
	}
	if !r.eof {
		t.Error("end of stream not recorded")
	}
}

func TestStreamReaderDataWithEOF(t *testing.T) {
	src := &scriptedSource{steps: []readStep{{data: "ab", err: io.EOF}}}
	r := newStreamReader(src, time.Millisecond, 0, make(chan struct{}))

	buf := make([]byte, 8)
	n, err := r.Read(buf)
	if n != 2 || err != io.EOF {
		t.Errorf("Read() = %d, %v, want 2, EOF", n, err)
	}
	if !r.eof {
		t.Error("end of stream not recorded")
	}
}

func TestStreamReaderRetriesTimeouts(t *testing.T) {
	src := &deadlineSource{scriptedSource: scriptedSource{steps: []readStep{
		{err: timeoutError{}},
		{err: timeoutError{}},
		{data: "x"},
	}}}
	r := newStreamReader(src, time.Millisecond, 0, make(chan struct{}))

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "x" {
		t.Errorf("read %q, want %q", got, "x")
	}
	if src.deadlines < 4 {
		t.Errorf("got %d deadlines, want one per read", src.deadlines)
	}

	r.clearDeadline()
	if src.deadlines < 5 {
		t.Error("clearDeadline did not reset the deadline")
	}
}

func TestStreamReaderWithoutDeadlineSupport(t *testing.T) {
	src := &deadlineSource{
		scriptedSource: scriptedSource{steps: []readStep{{}, {data: "x"}}},
		deadlineErr:    errors.New("not supported"),
	}
	r := newStreamReader(src, time.Millisecond, 0, make(chan struct{}))

	if _, err := io.ReadAll(r); err != nil {
		t.Fatal(err)
	}
	if !r.noDeadline {
		t.Error("refused deadline not recorded")
	}
	if src.deadlines != 1 {
		t.Errorf("got %d deadline attempts, want 1", src.deadlines)
	}
}

func TestStreamReaderFailure(t *testing.T) {
	boom := errors.New("boom")
	src := &scriptedSource{steps: []readStep{{err: boom}}}
	r := newStreamReader(src, time.Millisecond, 0, make(chan struct{}))

	if _, err := r.Read(make([]byte, 1)); err != boom {
		t.Errorf("Read() error = %v, want %v", err, boom)
	}
	if r.eof {
		t.Error("failure recorded as end of stream")
	}
}

func TestStreamReaderStall(t *testing.T) {
	r := newStreamReader(emptySource{}, time.Millisecond, 30*time.Millisecond, make(chan struct{}))

	start := time.Now()
	_, err := r.Read(make([]byte, 1))
	if err != ErrStalled {
		t.Fatalf("Read() error = %v, want %v", err, ErrStalled)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("stalled after %v, want at least 30ms", elapsed)
	}
}

func TestStreamReaderStop(t *testing.T) {
	stop := make(chan struct{})
	r := newStreamReader(emptySource{}, time.Millisecond, 0, stop)

	result := make(chan error, 1)
	go func() {
		_, err := r.Read(make([]byte, 1))
		result <- err
	}()

	time.Sleep(20 * time.Millisecond)
	close(stop)

	select {
	case err := <-result:
		if err != ErrCancelled {
			t.Errorf("Read() error = %v, want %v", err, ErrCancelled)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Read did not return after stop")
	}

	if _, err := r.Read(make([]byte, 1)); err != ErrCancelled {
		t.Errorf("Read() after stop = %v, want %v", err, ErrCancelled)
	}
}
