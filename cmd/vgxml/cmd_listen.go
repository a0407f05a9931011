//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package main

import (
	"net"

	"github.com/spf13/cobra"

	"github.com/newrelic/vgxml/internal/log"
	"github.com/newrelic/vgxml/internal/valgrind"
)

// discard is the handler of a stream that cannot be reported.
var discard = &valgrind.HandlerFuncs{}

func newListenCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Decode commentary of valgrind processes started with --xml-socket",
		Long: `Accept connections from valgrind processes started with
--xml=yes --xml-socket=HOST:PORT and decode each one until it closes.
Reports are written as each stream finishes. Stop with an interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Format == "binary" {
				return errMultiStreamBinary
			}

			out, err := openOutput(cmd, cfg)
			if err != nil {
				return err
			}
			defer out.close()

			l, err := valgrind.Listen("tcp", cfg.Listen.Address)
			if err != nil {
				return err
			}
			log.Infof("listening for valgrind on %s", l.Addr())

			srv := &valgrind.Server{
				MaxConns:     cfg.Listen.MaxConnections,
				WaitTimeout:  cfg.Parser.WaitTimeout.Duration(),
				StallTimeout: cfg.Parser.StallTimeout.Duration(),
				NewHandler: func(remote net.Addr) valgrind.Handler {
					s, err := out.newSink(cfg.Valgrind.Tool, remote.String(), true)
					if err != nil {
						log.Errorf("stream from %s: %v", remote, err)
						return discard
					}
					return s.finishOnDone(remote.String())
				},
			}
			return srv.Serve(cmd.Context(), l)
		},
	}

	cmd.Flags().StringVar(&cfg.Listen.Address, "address", cfg.Listen.Address, "address to accept valgrind connections on")
	return cmd
}
