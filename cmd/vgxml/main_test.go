//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/newrelic/vgxml/internal/config"
	"github.com/newrelic/vgxml/internal/log"
)

const memcheckFixture = "../../internal/valgrind/testdata/memcheck-output.xml"

// execute runs vgxml with args against a fresh default config.
func execute(t *testing.T, stdin string, args ...string) (*Config, string, error) {
	t.Helper()

	cfg := defaultCfg
	var out bytes.Buffer

	root := newRootCmd(&cfg, args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})

	err := root.ExecuteContext(context.Background())
	return &cfg, out.String(), err
}

func writeFile(t *testing.T, name, data string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFile(t *testing.T) {
	_, out, err := execute(t, "", "parse", memcheckFixture)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if !strings.Contains(out, "==5787== Invalid read of size") {
		t.Errorf("report is missing the invalid read:\n%s", out)
	}
}

func TestParseStdin(t *testing.T) {
	data, err := os.ReadFile(memcheckFixture)
	if err != nil {
		t.Fatal(err)
	}

	_, fromStdin, err := execute(t, string(data), "parse")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	_, fromFile, err := execute(t, "", "parse", memcheckFixture)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if fromStdin != fromFile {
		t.Errorf("stdin report differs from file report:\n%s\n---\n%s", fromStdin, fromFile)
	}
}

func TestParseStdinWhileWritten(t *testing.T) {
	data, err := os.ReadFile(memcheckFixture)
	if err != nil {
		t.Fatal(err)
	}

	pr, pw := io.Pipe()
	go func() {
		half := len(data) / 2
		pw.Write(data[:half])
		time.Sleep(100 * time.Millisecond)
		pw.Write(data[half:])
		pw.Close()
	}()

	cfg := defaultCfg
	var out bytes.Buffer

	root := newRootCmd(&cfg, []string{"parse"})
	root.SetIn(pr)
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !strings.Contains(out.String(), "==5787== Invalid read of size") {
		t.Errorf("report is missing the invalid read:\n%s", out.String())
	}
}

func TestParseTruncated(t *testing.T) {
	data, err := os.ReadFile(memcheckFixture)
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = execute(t, string(data[:len(data)/2]), "parse")
	if err == nil {
		t.Error("parse of a truncated stream succeeded")
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	events := filepath.Join(t.TempDir(), "events.bin")

	_, out, err := execute(t, "", "parse", "--format", "binary", "-o", events, memcheckFixture)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if out != "" {
		t.Errorf("binary output to a file wrote to stdout: %q", out)
	}

	_, replayed, err := execute(t, "", "decode", events)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	_, want, err := execute(t, "", "parse", memcheckFixture)
	if err != nil {
		t.Fatal(err)
	}

	if replayed != want {
		t.Errorf("replayed report:\n%s\nwant:\n%s", replayed, want)
	}
}

func TestDecodeWithoutDone(t *testing.T) {
	_, _, err := execute(t, "", "decode")
	if err != errNoDone {
		t.Errorf("decode of an empty stream = %v, want %v", err, errNoDone)
	}
}

func TestSuppressionsFile(t *testing.T) {
	supp := filepath.Join(t.TempDir(), "out.supp")

	if _, _, err := execute(t, "", "parse", "--supp", supp, memcheckFixture); err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	data, err := os.ReadFile(supp)
	if err != nil {
		t.Fatal(err)
	}
	if text := string(data); !strings.HasPrefix(text, "{") || !strings.Contains(text, "Memcheck:") {
		t.Errorf("unexpected suppressions:\n%s", text)
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	cfgFile := writeFile(t, "vgxml.cfg", `
loglevel = debug
valgrind.tool = helgrind
valgrind.args = --num-callers=30
parser.wait_timeout = 100
parser.stall_timeout = 2s
observer.queue_size = 16
`)

	cfg, _, err := execute(t, "",
		"-c", cfgFile,
		"--loglevel", "error",
		"--define", "observer.run_id=nightly",
		"parse", memcheckFixture)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if cfg.LogLevel != log.LogError {
		t.Errorf("LogLevel = %v, want the command line value", cfg.LogLevel)
	}
	if cfg.Valgrind.Tool != "helgrind" {
		t.Errorf("Tool = %q, want helgrind", cfg.Valgrind.Tool)
	}
	if len(cfg.Valgrind.Args) != 1 || cfg.Valgrind.Args[0] != "--num-callers=30" {
		t.Errorf("Args = %q", cfg.Valgrind.Args)
	}

	parser := ParserConfig{
		WaitTimeout:  config.Timeout(100 * time.Millisecond),
		StallTimeout: config.Timeout(2 * time.Second),
	}
	if cfg.Parser != parser {
		t.Errorf("Parser = %+v, want %+v", cfg.Parser, parser)
	}
	if cfg.Observer.QueueSize != 16 || cfg.Observer.RunID != "nightly" {
		t.Errorf("Observer = %+v", cfg.Observer)
	}
}

func TestParseFlagsObserverAddress(t *testing.T) {
	tests := []struct {
		addr    string
		host    string
		port    uint16
		wantErr bool
	}{
		{addr: "", host: "", port: DefaultCollectPort},
		{addr: "collector.example.com:9000", host: "collector.example.com", port: 9000},
		{addr: "[::1]:31339", host: "::1", port: 31339},
		{addr: "collector.example.com", wantErr: true},
		{addr: "localhost:http", wantErr: true},
		{addr: "localhost:70000", wantErr: true},
	}

	for _, tc := range tests {
		cfg := defaultCfg
		cfg.ObserverAddr = tc.addr

		err := configure(newRootCmd(&cfg, nil), &cfg, nil)
		if tc.wantErr {
			if err == nil {
				t.Errorf("configure(%q) succeeded", tc.addr)
			}
			continue
		}
		if err != nil {
			t.Errorf("configure(%q) = %v", tc.addr, err)
			continue
		}
		if cfg.Observer.Host != tc.host || cfg.Observer.Port != tc.port {
			t.Errorf("configure(%q) = %s, %d, want %s, %d",
				tc.addr, cfg.Observer.Host, cfg.Observer.Port, tc.host, tc.port)
		}
	}
}

func TestInvalidSettings(t *testing.T) {
	tests := [][]string{
		{"--format", "xml", "parse", memcheckFixture},
		{"--define", "valgrind.tool=callgrind", "parse", memcheckFixture},
		{"--loglevel", "loud", "parse", memcheckFixture},
		{"-c", "missing.cfg", "parse", memcheckFixture},
		{"--format", "binary", "listen"},
		{"run"},
	}

	for _, args := range tests {
		if _, _, err := execute(t, "", args...); err == nil {
			t.Errorf("vgxml %s succeeded", strings.Join(args, " "))
		}
	}
}

func TestVersion(t *testing.T) {
	_, out, err := execute(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "vgxml version ") {
		t.Errorf("version printed %q", out)
	}
}
