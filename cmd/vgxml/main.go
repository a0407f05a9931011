//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

// Command vgxml decodes the XML commentary of valgrind tools.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/newrelic/vgxml/internal/config"
	"github.com/newrelic/vgxml/internal/log"
	"github.com/newrelic/vgxml/internal/observer"
	"github.com/newrelic/vgxml/internal/valgrind"
)

// Config provides the effective settings for a vgxml command.
type Config struct {
	ConfigFile   string         `config:"-"`        // Location of config file
	LogFile      string         `config:"logfile"`  // stdout, stderr or a file
	LogLevel     log.Level      `config:"loglevel"` // Log level
	Format       string         `config:"-"`        // Output format: text or binary
	Output       string         `config:"-"`        // Output file, stdout when empty or "-"
	SuppFile     string         `config:"-"`        // Suppressions file to write
	ObserverAddr string         `config:"-"`        // host:port shorthand for the observer section
	Valgrind     ValgrindConfig `config:"valgrind"`
	Parser       ParserConfig   `config:"parser"`
	Listen       ListenConfig   `config:"listen"`
	Collect      CollectConfig  `config:"collect"`
	Observer     ObserverConfig `config:"observer"`
}

type ValgrindConfig struct {
	Path    string         `config:"path"`    // valgrind executable
	Tool    string         `config:"tool"`    // memcheck, helgrind or exp-ptrcheck
	Timeout config.Timeout `config:"timeout"` // Bounds a whole run when positive
	Args    []string       `config:"args"`    // Extra valgrind options
}

type ParserConfig struct {
	WaitTimeout  config.Timeout `config:"wait_timeout"`  // Each wait for more data
	StallTimeout config.Timeout `config:"stall_timeout"` // Fail after this long without data
}

type ListenConfig struct {
	Address        string `config:"address"`         // --xml-socket address
	MaxConnections int    `config:"max_connections"` // Simultaneous valgrind connections
}

type CollectConfig struct {
	Address string `config:"address"` // gRPC listen address
}

type ObserverConfig struct {
	Host      string `config:"host"`
	Port      uint16 `config:"port"`
	Secure    bool   `config:"secure"`
	Proxy     string `config:"proxy"`
	QueueSize int    `config:"queue_size"`
	RunID     string `config:"run_id"`
}

// DefaultCollectPort is the default port of vgxml collect.
const DefaultCollectPort = 31339

var defaultCfg = Config{
	LogLevel: log.LogWarning,
	LogFile:  "stderr",
	Format:   "text",
	Valgrind: ValgrindConfig{
		Path: "valgrind",
		Tool: "memcheck",
	},
	Listen: ListenConfig{
		Address: net.JoinHostPort("127.0.0.1", strconv.Itoa(valgrind.DefaultPort)),
	},
	Collect: CollectConfig{
		Address: net.JoinHostPort("127.0.0.1", strconv.Itoa(DefaultCollectPort)),
	},
	Observer: ObserverConfig{
		Port:      DefaultCollectPort,
		QueueSize: observer.DefaultQueueSize,
	},
}

// exitError carries the exit status of a program run under valgrind.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return "exit status " + strconv.Itoa(e.code) }

func newRootCmd(cfg *Config, args []string) *cobra.Command {
	root := &cobra.Command{
		Use:           "vgxml",
		Short:         "Decode the XML commentary of valgrind tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := configure(cmd, cfg, args); err != nil {
				return err
			}
			return log.Init(cfg.LogLevel, cfg.LogFile)
		},
	}
	root.SetArgs(args)

	pf := root.PersistentFlags()
	pf.StringVarP(&cfg.ConfigFile, "config", "c", cfg.ConfigFile, "config file location")
	pf.StringVar(&cfg.LogFile, "logfile", cfg.LogFile, "log to stdout, stderr or a file")
	pf.Var(&cfg.LogLevel, "loglevel", "error, warning, info or debug")
	pf.Var(config.NewFlagParserShim(cfg), "define", "set a config file keyword, e.g. valgrind.tool=helgrind")
	pf.StringVarP(&cfg.Format, "format", "f", cfg.Format, "output format: text or binary")
	pf.StringVarP(&cfg.Output, "output", "o", cfg.Output, "output file, - for stdout")
	pf.StringVar(&cfg.SuppFile, "supp", cfg.SuppFile, "write suppressions for the reported errors to this file")
	pf.StringVar(&cfg.ObserverAddr, "observer", cfg.ObserverAddr, "forward events to the collector at host:port")

	root.AddCommand(newParseCmd(cfg))
	root.AddCommand(newRunCmd(cfg))
	root.AddCommand(newListenCmd(cfg))
	root.AddCommand(newCollectCmd(cfg))
	root.AddCommand(newDecodeCmd(cfg))
	root.AddCommand(newVersionCmd())

	return root
}

// configure applies the config file, if any, and derived settings. The
// command line is parsed again after the file so that it takes
// precedence.
func configure(cmd *cobra.Command, cfg *Config, args []string) error {
	if cfg.ConfigFile != "" {
		if err := config.ParseFile(cfg.ConfigFile, cfg); err != nil {
			return err
		}

		if err := cmd.Flags().Parse(args); err != nil {
			return err
		}
	}

	if cfg.ObserverAddr != "" {
		host, port, err := net.SplitHostPort(cfg.ObserverAddr)
		if err != nil {
			return fmt.Errorf("invalid observer address: %v", err)
		}
		p, err := strconv.ParseUint(port, 10, 16)
		if err != nil {
			return fmt.Errorf("invalid observer port: %q", port)
		}
		cfg.Observer.Host = host
		cfg.Observer.Port = uint16(p)
	}

	switch cfg.Format {
	case "text", "binary":
	default:
		return fmt.Errorf("unknown format: %s", cfg.Format)
	}

	if _, ok := valgrind.ParseTool(cfg.Valgrind.Tool); !ok {
		return fmt.Errorf("unknown valgrind tool: %s", cfg.Valgrind.Tool)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cfg := defaultCfg
	err := newRootCmd(&cfg, os.Args[1:]).ExecuteContext(ctx)
	stop()

	if err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}

		fmt.Fprintln(os.Stderr, "vgxml:", err)
		os.Exit(1)
	}
}
