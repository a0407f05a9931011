//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package valgrind

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Report accumulates the events of one stream. It implements
// ProcessHandler and is not safe for concurrent use.
type Report struct {
	Process     ProcessInfo
	Errors      []Error
	Threads     []AnnounceThread
	Statuses    []Status
	ErrorCounts map[int64]int64  // error unique -> occurrences
	SuppCounts  map[string]int64 // suppression name -> uses

	Finished bool   // Done has been reported
	Success  bool   // the stream decoded without error
	Failure  string // message reported with an unsuccessful Done
}

// NewReport returns an empty Report.
func NewReport() *Report {
	return &Report{
		ErrorCounts: make(map[int64]int64),
		SuppCounts:  make(map[string]int64),
	}
}

func (r *Report) Error(e Error)                   { r.Errors = append(r.Errors, e) }
func (r *Report) AnnounceThread(a AnnounceThread) { r.Threads = append(r.Threads, a) }
func (r *Report) Status(s Status)                 { r.Statuses = append(r.Statuses, s) }
func (r *Report) ProcessInfo(info ProcessInfo)    { r.Process = info }

func (r *Report) ErrorCount(unique, count int64) {
	if r.ErrorCounts == nil {
		r.ErrorCounts = make(map[int64]int64)
	}
	r.ErrorCounts[unique] = count
}

func (r *Report) SuppressionCount(name string, count int64) {
	if r.SuppCounts == nil {
		r.SuppCounts = make(map[string]int64)
	}
	r.SuppCounts[name] = count
}

func (r *Report) Done(success bool, msg string) {
	r.Finished = true
	r.Success = success
	r.Failure = msg
}

// Err returns the failure reported through Done, if any.
func (r *Report) Err() error {
	if !r.Finished || r.Success {
		return nil
	}
	return errors.New(r.Failure)
}

// Thread returns the announcement for a helgrind thread id.
func (r *Report) Thread(id int64) (AnnounceThread, bool) {
	for _, a := range r.Threads {
		if a.HelgrindThreadID == id {
			return a, true
		}
	}
	return AnnounceThread{}, false
}

// MarshalText renders the report the way valgrind prints it in text
// mode, each line prefixed with "==pid== ".
func (r *Report) MarshalText() ([]byte, error) {
	buf := bytes.Buffer{}
	printer := textPrinter{
		w: &linePrefixer{
			w:      &buf,
			prefix: []byte("==" + strconv.FormatInt(r.Process.Pid, 10) + "== "),
		},
	}

	for i, x := range r.Errors {
		printer.PrintError(x)
		if i < len(r.Errors)-1 {
			printer.writeln("")
		}
	}

	if len(r.Errors) > 0 || len(r.ErrorCounts) > 0 {
		if len(r.Errors) > 0 {
			printer.writeln("")
		}
		printer.PrintSummary(r.ErrorCounts, r.SuppCounts)
	}

	if printer.Err != nil {
		return nil, printer.Err
	}

	return buf.Bytes(), nil
}

type textPrinter struct {
	w   io.Writer
	Err error
}

func (tp *textPrinter) PrintError(e Error) {
	tp.writeln(e.What)
	for i, stack := range e.Stacks {
		if stack.AuxWhat != "" {
			tp.writeln(stack.AuxWhat)
		} else if i > 0 {
			tp.writeln("")
		}
		tp.PrintStack(stack.Frames)
	}
}

func (tp *textPrinter) PrintStack(frames []Frame) {
	for i, x := range frames {
		tp.PrintFrame(i, x)
	}
}

func (tp *textPrinter) PrintFrame(depth int, frame Frame) {
	lead := "   by"
	if depth == 0 {
		lead = "   at"
	}

	fn := frame.FunctionName
	if fn == "" {
		fn = "???"
	}

	switch {
	case frame.FileName != "" && frame.Line >= 0:
		tp.writef("%s 0x%X: %s (%s:%d)\n", lead, frame.InstructionPointer, fn, frame.FileName, frame.Line)
	case frame.Object != "":
		tp.writef("%s 0x%X: %s (in %s)\n", lead, frame.InstructionPointer, fn, frame.Object)
	default:
		tp.writef("%s 0x%X: %s\n", lead, frame.InstructionPointer, fn)
	}
}

// PrintSummary writes the closing error summary line.
func (tp *textPrinter) PrintSummary(errorCounts map[int64]int64, suppCounts map[string]int64) {
	var errs, suppressed int64
	for _, n := range errorCounts {
		errs += n
	}
	for _, n := range suppCounts {
		suppressed += n
	}

	tp.writef("ERROR SUMMARY: %d errors from %d contexts (suppressed: %d from %d)\n",
		errs, len(errorCounts), suppressed, len(suppCounts))
}

func (tp *textPrinter) writeln(s string) {
	if tp.Err == nil {
		_, tp.Err = tp.w.Write([]byte(s))
		if tp.Err == nil {
			_, tp.Err = tp.w.Write([]byte{'\n'})
		}
	}
}

func (tp *textPrinter) writef(format string, arg ...interface{}) {
	if tp.Err == nil {
		_, tp.Err = fmt.Fprintf(tp.w, format, arg...)
	}
}

// linePrefixer writes prefix at the start of every line. A line may
// span several writes.
type linePrefixer struct {
	w       io.Writer
	prefix  []byte
	midLine bool
}

func (lp *linePrefixer) Write(p []byte) (int, error) {
	n := 0
	for _, line := range bytes.SplitAfter(p, []byte{'\n'}) {
		if len(line) == 0 {
			continue
		}

		if !lp.midLine {
			if _, err := lp.w.Write(lp.prefix); err != nil {
				return n, err
			}
		}

		m, err := lp.w.Write(line)
		n += m
		if err != nil {
			return n, err
		}
		lp.midLine = line[len(line)-1] != '\n'
	}
	return n, nil
}
