//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/newrelic/vgxml/internal/valgrind"
)

func newParseCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [FILE|-]",
		Short: "Decode commentary from a file or standard input",
		Long: `Decode the XML commentary of a valgrind run, e.g. one written with
--xml=yes --xml-file=FILE. With no FILE, or when FILE is -, read standard
input, which may be a pipe from a running valgrind.`,
		Args: cobra.MaximumNArgs(1),
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

			p := valgrind.NewParser(s)
			p.WaitTimeout = cfg.Parser.WaitTimeout.Duration()
			p.StallTimeout = cfg.Parser.StallTimeout.Duration()
			p.SetSource(src)

			return s.finish(p.Start(cmd.Context()))
		},
	}
}
