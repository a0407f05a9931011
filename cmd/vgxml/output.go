//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/newrelic/vgxml/internal/log"
	"github.com/newrelic/vgxml/internal/observer"
	"github.com/newrelic/vgxml/internal/protocol"
	"github.com/newrelic/vgxml/internal/valgrind"
)

// observerCloseTimeout bounds the wait for queued events to reach the
// collector.
const observerCloseTimeout = 30 * time.Second

var errMultiStreamBinary = errors.New("binary output of several streams is not supported, use --observer")

// output is where the commands write decoded events.
type output struct {
	cfg *Config
	w   io.Writer

	mu    sync.Mutex // serializes reports of concurrent streams
	close func() error
}

func openOutput(cmd *cobra.Command, cfg *Config) (*output, error) {
	out := &output{cfg: cfg, w: cmd.OutOrStdout(), close: func() error { return nil }}

	if cfg.Output != "" && cfg.Output != "-" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return nil, err
		}
		out.w = f
		out.close = f.Close
	}
	return out, nil
}

// binaryOnStdout reports whether binary output goes to stdout.
func (out *output) binaryOnStdout() bool {
	return out.cfg.Format == "binary" && (out.cfg.Output == "" || out.cfg.Output == "-")
}

func (out *output) observerConfig(tool, runID string) observer.Config {
	oc := out.cfg.Observer
	if oc.RunID != "" {
		runID = oc.RunID
	}
	if runID == "" {
		host, _ := os.Hostname()
		runID = host + "-" + strconv.Itoa(os.Getpid())
	}

	return observer.Config{
		Host:      oc.Host,
		Port:      oc.Port,
		Secure:    oc.Secure,
		Proxy:     oc.Proxy,
		QueueSize: oc.QueueSize,
		Tool:      tool,
		RunID:     runID,
	}
}

// A sink receives the events of one stream. The text report and the
// suppressions are written once the stream is done.
type sink struct {
	valgrind.MultiHandler

	out        *output
	report     *valgrind.Report
	enc        *protocol.Encoder
	sender     *observer.Sender
	appendSupp bool
}

// newSink returns a sink for a stream of tool identified by runID. Only a
// single stream may be written in binary format.
func (out *output) newSink(tool, runID string, multi bool) (*sink, error) {
	s := &sink{out: out, report: valgrind.NewReport(), appendSupp: multi}
	s.MultiHandler = valgrind.MultiHandler{s.report}

	if out.cfg.Format == "binary" {
		if multi {
			return nil, errMultiStreamBinary
		}
		s.enc = protocol.NewStreamEncoder(out.w)
		s.MultiHandler = append(s.MultiHandler, s.enc)
	}

	if out.cfg.Observer.Host != "" {
		sender, err := observer.Dial(out.observerConfig(tool, runID))
		if err != nil {
			return nil, err
		}
		s.sender = sender
		s.MultiHandler = append(s.MultiHandler, sender)
	}
	return s, nil
}

// finish flushes the stream's outputs. It returns streamErr if set,
// otherwise the failure reported through Done or the output errors.
func (s *sink) finish(streamErr error) error {
	var errs []error

	if s.sender != nil {
		ctx, cancel := context.WithTimeout(context.Background(), observerCloseTimeout)
		if err := s.sender.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("observer: %v", err))
		}
		cancel()

		if n := s.sender.Dropped(); n > 0 {
			log.Warnf("observer: %d events were not forwarded", n)
		}
	}

	s.out.mu.Lock()
	defer s.out.mu.Unlock()

	if s.enc != nil {
		if err := s.enc.Err(); err != nil {
			errs = append(errs, err)
		}
	} else {
		text, err := s.report.MarshalText()
		if err == nil {
			_, err = s.out.w.Write(text)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	if s.out.cfg.SuppFile != "" {
		if err := s.writeSuppressions(); err != nil {
			errs = append(errs, err)
		}
	}

	if streamErr != nil {
		return streamErr
	}
	if err := s.report.Err(); err != nil {
		return err
	}
	return errors.Join(errs...)
}

func (s *sink) writeSuppressions() error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if s.appendSupp {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	f, err := os.OpenFile(s.out.cfg.SuppFile, flags, 0644)
	if err != nil {
		return err
	}

	if err := valgrind.WriteSuppressions(f, s.report.Errors); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// finishOnDone returns a handler that finishes s after the stream's Done.
// It is used by the servers, which own the stream lifetime.
func (s *sink) finishOnDone(peer string) valgrind.Handler {
	return append(s.MultiHandler, &valgrind.HandlerFuncs{
		OnDone: func(bool, string) {
			if err := s.finish(nil); err != nil {
				log.Warnf("stream from %s: %v", peer, err)
			}
		},
	})
}
