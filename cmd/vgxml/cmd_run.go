//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package main

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/newrelic/vgxml/internal/log"
	"github.com/newrelic/vgxml/internal/valgrind"
)

func newRunCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run [flags] -- PROG [ARGS...]",
		Short: "Run a program under valgrind and decode its commentary",
		Long: `Run PROG under the configured valgrind tool with the XML commentary sent
to a local socket, decoding it while the program runs. vgxml exits with
the program's exit status once the commentary has been written.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool, _ := valgrind.ParseTool(cfg.Valgrind.Tool)

			out, err := openOutput(cmd, cfg)
			if err != nil {
				return err
			}
			defer out.close()

			runID := filepath.Base(args[0]) + "-" + strconv.Itoa(os.Getpid())
			s, err := out.newSink(cfg.Valgrind.Tool, runID, false)
			if err != nil {
				return err
			}

			r := &valgrind.Runner{
				Valgrind:     cfg.Valgrind.Path,
				Tool:         tool,
				ExtraArgs:    cfg.Valgrind.Args,
				Timeout:      cfg.Valgrind.Timeout.Duration(),
				WaitTimeout:  cfg.Parser.WaitTimeout.Duration(),
				StallTimeout: cfg.Parser.StallTimeout.Duration(),
				Stdin:        cmd.InOrStdin(),
				Stdout:       cmd.OutOrStdout(),
				Stderr:       cmd.ErrOrStderr(),
			}

			// Keep the event stream free of program output.
			if out.binaryOnStdout() {
				r.Stdout = cmd.ErrOrStderr()
			}

			result, err := r.Run(cmd.Context(), s, args[0], args[1:]...)
			if err != nil {
				return err
			}

			if err := s.finish(result.ParseErr); err != nil {
				return err
			}

			var exit *exec.ExitError
			if errors.As(result.ExitErr, &exit) {
				log.Debugf("%s: %v", args[0], result.ExitErr)
				return &exitError{code: exit.ExitCode()}
			}
			return result.ExitErr
		},
	}
}
