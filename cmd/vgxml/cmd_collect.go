//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package main

import (
	"net"

	"github.com/spf13/cobra"

	"github.com/newrelic/vgxml/internal/log"
	"github.com/newrelic/vgxml/internal/observer"
	"github.com/newrelic/vgxml/internal/valgrind"
)

func newCollectCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Receive event streams forwarded with --observer",
		Long: `Serve the event stream API for other vgxml processes started with
--observer=HOST:PORT. Each stream is reported as it finishes. With
--observer the streams are forwarded again.`,
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

			l, err := net.Listen("tcp", cfg.Collect.Address)
			if err != nil {
				return err
			}
			log.Infof("collecting events on %s", l.Addr())

			srv := &observer.Server{
				NewHandler: func(info observer.StreamInfo) valgrind.Handler {
					tool := info.Tool
					if tool == "" {
						tool = cfg.Valgrind.Tool
					}

					s, err := out.newSink(tool, info.RunID, true)
					if err != nil {
						log.Errorf("stream %s from %s: %v", info.RunID, info.Peer, err)
						return discard
					}
					return s.finishOnDone(info.RunID)
				},
			}
			return srv.Serve(cmd.Context(), l)
		},
	}

	cmd.Flags().StringVar(&cfg.Collect.Address, "address", cfg.Collect.Address, "address to serve the event stream API on")
	return cmd
}
