//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package valgrind

import (
	"errors"
	"io"
	"time"

	"github.com/newrelic/vgxml/internal/log"
)

// DefaultWaitTimeout bounds a single wait for more data from a live
// source before the read is retried.
const DefaultWaitTimeout = 1000 * time.Millisecond

// idlePause is how long to back off from a source that returned neither
// data nor an error.
const idlePause = 10 * time.Millisecond

// deadliner is implemented by sources that can bound a blocking read,
// such as net.Conn and pollable *os.File pipes.
type deadliner interface {
	SetReadDeadline(t time.Time) error
}

// streamReader turns a live byte source into a reader with exactly three
// outcomes per Read: data, a definite end of stream (io.EOF), or a
// failure. "Nothing yet" is retried until the source produces data, is
// closed, or the parser is stopped.
type streamReader struct {
	src          io.Reader
	waitTimeout  time.Duration
	stallTimeout time.Duration // zero waits forever
	stop         <-chan struct{}

	eof        bool // src reported io.EOF
	noDeadline bool // src refused SetReadDeadline
	idleSince  time.Time
}

func newStreamReader(src io.Reader, wait, stall time.Duration, stop <-chan struct{}) *streamReader {
	if wait <= 0 {
		wait = DefaultWaitTimeout
	}
	return &streamReader{
		src:          src,
		waitTimeout:  wait,
		stallTimeout: stall,
		stop:         stop,
	}
}

func (r *streamReader) stopped() bool {
	select {
	case <-r.stop:
		return true
	default:
		return false
	}
}

func (r *streamReader) Read(p []byte) (int, error) {
	for {
		if r.stopped() {
			return 0, ErrCancelled
		}

		if dl, ok := r.src.(deadliner); ok && !r.noDeadline {
			if err := dl.SetReadDeadline(time.Now().Add(r.waitTimeout)); err != nil {
				// Regular files and some pipes have no deadline support.
				r.noDeadline = true
			}
		}

		n, err := r.src.Read(p)
		if isTimeout(err) {
			err = nil
		}

		if n > 0 {
			r.idleSince = time.Time{}
			if errors.Is(err, io.EOF) {
				r.eof = true
			}
			return n, err
		}

		switch {
		case err == nil:
			if !r.wait() {
				return 0, ErrCancelled
			}
		case errors.Is(err, io.EOF):
			r.eof = true
			return 0, io.EOF
		default:
			if r.stopped() {
				return 0, ErrCancelled
			}
			return 0, err
		}

		if r.idleSince.IsZero() {
			r.idleSince = time.Now()
		} else if r.stallTimeout > 0 && time.Since(r.idleSince) >= r.stallTimeout {
			return 0, ErrStalled
		}
	}
}

// wait pauses after an empty read. Reads bounded by a deadline have
// already waited. It returns false if the parser was stopped meanwhile.
func (r *streamReader) wait() bool {
	if _, ok := r.src.(deadliner); ok && !r.noDeadline {
		log.Debugf("valgrind: no data within %v, waiting for more", r.waitTimeout)
		return !r.stopped()
	}

	pause := idlePause
	if r.waitTimeout < pause {
		pause = r.waitTimeout
	}

	timer := time.NewTimer(pause)
	defer timer.Stop()

	select {
	case <-r.stop:
		return false
	case <-timer.C:
		return true
	}
}

// clearDeadline removes any deadline left on the source.
func (r *streamReader) clearDeadline() {
	if dl, ok := r.src.(deadliner); ok && !r.noDeadline {
		dl.SetReadDeadline(time.Time{})
	}
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return err != nil && errors.As(err, &te) && te.Timeout()
}
