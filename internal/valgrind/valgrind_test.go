//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package valgrind

import (
	"context"
	"errors"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// The test binary doubles as a fake valgrind that replays a fixture to
// the --xml-socket address.
func TestMain(m *testing.M) {
	if os.Getenv("VGXML_FAKE_VALGRIND") == "1" {
		os.Exit(fakeValgrind(os.Args[1:]))
	}
	os.Exit(m.Run())
}

func fakeValgrind(args []string) int {
	var socket string
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--xml-socket="); ok {
			socket = v
		}
	}

	code, _ := strconv.Atoi(os.Getenv("VGXML_FAKE_EXIT"))

	if d, err := time.ParseDuration(os.Getenv("VGXML_FAKE_DELAY")); err == nil {
		time.Sleep(d)
	}

	name := os.Getenv("VGXML_FAKE_XML")
	if name == "" {
		return code
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return 100
	}

	conn, err := net.Dial("tcp", socket)
	if err != nil {
		return 101
	}
	defer conn.Close()

	if _, err := conn.Write(data); err != nil {
		return 102
	}
	return code
}

func fakeRunner(t *testing.T, fixture string, exit int) *Runner {
	t.Helper()

	exe, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}

	env := append(os.Environ(), "VGXML_FAKE_VALGRIND=1", "VGXML_FAKE_EXIT="+strconv.Itoa(exit))
	if fixture != "" {
		path, err := filepath.Abs(fixture)
		if err != nil {
			t.Fatal(err)
		}
		env = append(env, "VGXML_FAKE_XML="+path)
	}

	return &Runner{
		Valgrind:    exe,
		Tool:        ToolMemcheck,
		Timeout:     30 * time.Second,
		WaitTimeout: 50 * time.Millisecond,
		Env:         env,
	}
}

func TestCommand(t *testing.T) {
	cmd := Command("", ToolPtrcheck, "127.0.0.1:1500", []string{"--leak-check=full"}, "./a.out", "-v", "x")

	want := []string{
		"valgrind",
		"--tool=exp-ptrcheck",
		"--xml=yes",
		"--xml-socket=127.0.0.1:1500",
		"--leak-check=full",
		"--",
		"./a.out",
		"-v",
		"x",
	}
	if !reflect.DeepEqual(cmd.Args, want) {
		t.Errorf("args = %q, want %q", cmd.Args, want)
	}

	cmd = Command("/opt/valgrind", ToolUnknown, "h:1", nil, "prog")
	if cmd.Args[0] != "/opt/valgrind" || cmd.Args[1] != "--tool=memcheck" {
		t.Errorf("args = %q", cmd.Args)
	}
}

func TestRunnerRun(t *testing.T) {
	r := fakeRunner(t, "testdata/memcheck-output.xml", 0)
	report := NewReport()

	result, err := r.Run(context.Background(), report, "./prog")
	if err != nil {
		t.Fatal(err)
	}
	if result.Err() != nil {
		t.Fatalf("run failed: exit=%v parse=%v", result.ExitErr, result.ParseErr)
	}

	if !report.Success || len(report.Errors) != 2 || report.Process.Pid != 5787 {
		t.Errorf("report: success=%t errors=%d pid=%d", report.Success, len(report.Errors), report.Process.Pid)
	}
}

func TestRunnerExitStatus(t *testing.T) {
	r := fakeRunner(t, "testdata/helgrind-output.xml", 3)
	report := NewReport()

	result, err := r.Run(context.Background(), report, "./prog")
	if err != nil {
		t.Fatal(err)
	}

	var exitErr *exec.ExitError
	if !errors.As(result.ExitErr, &exitErr) || exitErr.ExitCode() != 3 {
		t.Errorf("exit error = %v, want exit status 3", result.ExitErr)
	}
	if result.ParseErr != nil {
		t.Errorf("parse error = %v", result.ParseErr)
	}
	if len(report.Errors) != 1 {
		t.Errorf("got %d errors, want 1", len(report.Errors))
	}
}

func TestRunnerNoConnection(t *testing.T) {
	r := fakeRunner(t, "", 0)
	report := NewReport()

	result, err := r.Run(context.Background(), report, "./prog")
	if err != nil {
		t.Fatal(err)
	}
	if result.ParseErr != errNoConnection {
		t.Errorf("parse error = %v, want %v", result.ParseErr, errNoConnection)
	}
	if !report.Finished || report.Success {
		t.Errorf("report finished=%t success=%t, want a failed Done", report.Finished, report.Success)
	}
}

func TestRunnerCancelBeforeConnect(t *testing.T) {
	r := fakeRunner(t, "testdata/memcheck-output.xml", 0)
	r.Timeout = 0
	r.Env = append(r.Env, "VGXML_FAKE_DELAY=30s")
	report := NewReport()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type runResult struct {
		result RunResult
		err    error
	}
	done := make(chan runResult, 1)
	go func() {
		result, err := r.Run(ctx, report, "./prog")
		done <- runResult{result, err}
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case res := <-done:
		if res.err != nil {
			t.Fatal(res.err)
		}
		if res.result.ParseErr != ErrCancelled {
			t.Errorf("parse error = %v, want %v", res.result.ParseErr, ErrCancelled)
		}
		if res.result.ExitErr == nil {
			t.Error("killed valgrind reported a clean exit")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after the context was cancelled")
	}

	if !report.Finished || report.Success {
		t.Errorf("report finished=%t success=%t, want a failed Done", report.Finished, report.Success)
	}
}

func TestRunnerStartFailure(t *testing.T) {
	r := &Runner{Valgrind: filepath.Join(t.TempDir(), "missing-valgrind")}

	if _, err := r.Run(context.Background(), NewReport(), "./prog"); err == nil {
		t.Error("Run succeeded without a valgrind executable")
	}
}

func TestListen(t *testing.T) {
	ln, err := Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	if got := ln.XMLSocket(); got != ln.Addr().String() || !strings.HasPrefix(got, "127.0.0.1:") {
		t.Errorf("XMLSocket() = %q, want the listen address %v", got, ln.Addr())
	}

	if l, err := Listen("unix", filepath.Join(t.TempDir(), "vg.sock")); err == nil {
		l.Close()
		t.Error("Listen accepted a unix socket")
	}
}

func TestServerServe(t *testing.T) {
	ln, err := Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	var (
		mu      sync.Mutex
		reports []*Report
	)
	done := make(chan struct{}, 4)

	srv := &Server{
		MaxConns:    2,
		WaitTimeout: 50 * time.Millisecond,
		NewHandler: func(remote net.Addr) Handler {
			r := NewReport()
			mu.Lock()
			reports = append(reports, r)
			mu.Unlock()
			return MultiHandler{r, &HandlerFuncs{
				OnDone: func(bool, string) { done <- struct{}{} },
			}}
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ctx, ln) }()

	data, err := os.ReadFile("testdata/memcheck-output.xml")
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		conn, err := net.Dial("tcp", ln.Addr().String())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := conn.Write(data); err != nil {
			t.Fatal(err)
		}
		conn.Close()
	}

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Fatal("connection was not decoded")
		}
	}

	cancel()
	select {
	case err := <-served:
		if err != nil {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()

	if len(reports) != 2 {
		t.Fatalf("got %d connections, want 2", len(reports))
	}
	for i, r := range reports {
		if !r.Success || len(r.Errors) != 2 {
			t.Errorf("connection %d: success=%t errors=%d failure=%q", i, r.Success, len(r.Errors), r.Failure)
		}
	}
}
