//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package valgrind

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os/exec"
	"strconv"
	"time"

	"github.com/newrelic/vgxml/internal/log"
)

// DefaultPort is the default port for valgrind commentary sent to a socket.
const DefaultPort int = 1500

// acceptGrace is how long a connection may still be accepted after the
// valgrind process has exited.
const acceptGrace = 250 * time.Millisecond

// A SocketListener accepts the connections of valgrind processes started
// with --xml-socket.
type SocketListener struct {
	*net.TCPListener
}

// Listen announces on addr for valgrind commentary. An addr without a
// port listens on DefaultPort. Only TCP networks are supported.
func Listen(network, addr string) (*SocketListener, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(DefaultPort))
	}

	l, err := net.Listen(network, addr)
	if err != nil {
		return nil, err
	}

	tcp, ok := l.(*net.TCPListener)
	if !ok {
		l.Close()
		return nil, fmt.Errorf("valgrind: --xml-socket needs a TCP network, not %s", network)
	}
	return &SocketListener{tcp}, nil
}

// XMLSocket returns the --xml-socket value that connects valgrind to l.
func (l *SocketListener) XMLSocket() string {
	return l.Addr().String()
}

// Command returns the command running prog under tool with XML
// commentary sent to xmlSocket. extra is inserted before the program.
func Command(valgrind string, tool Tool, xmlSocket string, extra []string, prog string, arg ...string) *exec.Cmd {
	if valgrind == "" {
		valgrind = "valgrind"
	}
	if tool == ToolUnknown {
		tool = ToolMemcheck
	}

	name := tool.String()
	if tool == ToolPtrcheck {
		name = "exp-ptrcheck"
	}

	cmd := exec.Command(valgrind, "--tool="+name)
	cmd.Args = append(cmd.Args, "--xml=yes")
	cmd.Args = append(cmd.Args, "--xml-socket="+xmlSocket)
	cmd.Args = append(cmd.Args, extra...)
	cmd.Args = append(cmd.Args, "--")
	cmd.Args = append(cmd.Args, prog)
	cmd.Args = append(cmd.Args, arg...)
	return cmd
}

// Runner runs programs under valgrind and decodes the XML commentary
// while the program is running.
type Runner struct {
	Valgrind  string // valgrind executable, "valgrind" when empty
	Tool      Tool
	ExtraArgs []string

	// Timeout bounds the wait for valgrind to connect and, when
	// positive, the whole run.
	Timeout time.Duration

	WaitTimeout  time.Duration
	StallTimeout time.Duration

	Dir    string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// RunResult separates the ways a valgrind run can fail. ExitErr is the
// process outcome, ParseErr the outcome of decoding its commentary.
type RunResult struct {
	ExitErr  error
	ParseErr error
}

// Err returns ParseErr if set, otherwise ExitErr.
func (r RunResult) Err() error {
	if r.ParseErr != nil {
		return r.ParseErr
	}
	return r.ExitErr
}

var errNoConnection = errors.New("valgrind: process did not connect to the xml socket")

// Run starts prog under valgrind and feeds its commentary to h. The
// returned error is non-nil only if the run could not be started; h
// always receives Done once the run has started.
func (r *Runner) Run(ctx context.Context, h Handler, prog string, arg ...string) (RunResult, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	ln, err := Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return RunResult{}, err
	}
	defer ln.Close()

	cmd := Command(r.Valgrind, r.Tool, ln.XMLSocket(), r.ExtraArgs, prog, arg...)
	cmd.Dir = r.Dir
	cmd.Env = r.Env
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	log.Debugf("command: %v", cmd)

	if err := cmd.Start(); err != nil {
		return RunResult{}, fmt.Errorf("valgrind: unable to start %s: %v", cmd.Path, err)
	}

	if r.Timeout > 0 {
		ln.SetDeadline(time.Now().Add(r.Timeout))
	}

	ch := make(chan error, 1)
	go func() {
		ch <- r.acceptOne(ctx, ln, h)
	}()

	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
	}()

	var result RunResult

	select {
	case result.ExitErr = <-exited:
		// Anything valgrind managed to connect is already queued.
		ln.SetDeadline(time.Now().Add(acceptGrace))
		result.ParseErr = <-ch
	case <-ctx.Done():
		cmd.Process.Kill()
		// Accept may still be waiting for valgrind to connect.
		ln.Close()
		result.ExitErr = <-exited
		result.ParseErr = <-ch
	}

	if state := cmd.ProcessState; state != nil {
		log.Debugf("command executed in %s", state.SystemTime()+state.UserTime())
	}
	return result, nil
}

// acceptOne accepts a single connection from a valgrind process and
// decodes its commentary.
func (r *Runner) acceptOne(ctx context.Context, ln *SocketListener, h Handler) error {
	conn, err := ln.Accept()
	if err != nil {
		switch {
		case ctx.Err() != nil:
			err = ErrCancelled
		case isTimeout(err):
			err = errNoConnection
		}
		h.Done(false, err.Error())
		return err
	}
	defer conn.Close()

	p := NewParser(h)
	p.WaitTimeout = r.WaitTimeout
	p.StallTimeout = r.StallTimeout
	p.SetSource(conn)
	return p.Start(ctx)
}
