//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package main

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/newrelic/vgxml/internal/protocol"
	"github.com/newrelic/vgxml/internal/valgrind"
)

var errNoDone = errors.New("event stream ended before done")

// doneTracker records whether a stream delivered Done.
type doneTracker struct {
	valgrind.HandlerFuncs
	done bool
}

func newDoneTracker() *doneTracker {
	d := &doneTracker{}
	d.OnDone = func(bool, string) { d.done = true }
	return d
}

func newDecodeCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "decode [FILE|-]",
		Short: "Replay events written with --format=binary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src io.Reader = cmd.InOrStdin()
			name := "-"

			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
				name = args[0]
			}

			out, err := openOutput(cmd, cfg)
			if err != nil {
				return err
			}
			defer out.close()

			s, err := out.newSink(cfg.Valgrind.Tool, name, false)
			if err != nil {
				return err
			}

			tracker := newDoneTracker()
			err = protocol.Replay(src, valgrind.MultiHandler{s, tracker})
			if err == nil && !tracker.done {
				err = errNoDone
			}
			if err != nil && !tracker.done {
				s.Done(false, err.Error())
			}
			return s.finish(err)
		},
	}
}
