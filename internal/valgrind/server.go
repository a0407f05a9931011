//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package valgrind

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"golang.org/x/net/netutil"

	"github.com/newrelic/vgxml/internal/log"
)

// Server decodes the commentary of every valgrind process that connects
// to it, e.g. processes started with --xml-socket=host:1500.
type Server struct {
	// MaxConns caps simultaneous connections when positive.
	MaxConns int

	WaitTimeout  time.Duration
	StallTimeout time.Duration

	// NewHandler returns the handler for a new connection.
	NewHandler func(remote net.Addr) Handler
}

// Serve accepts connections on l until it fails or ctx is done, then
// waits for the active parsers to finish.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	if s.MaxConns > 0 {
		l = netutil.LimitListener(l, s.MaxConns)
	}

	var (
		wg       sync.WaitGroup
		cooldown time.Duration
	)
	defer wg.Wait()

	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-ctx.Done():
			l.Close()
		case <-stopped:
		}
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				// Transient error condition, stop accepting new connections
				// for a short while and see if the condition clears. If the
				// problem persists, double the cooldown period up to a maximum
				// of 1 second.
				if cooldown == 0 {
					cooldown = 5 * time.Millisecond
				} else {
					cooldown *= 2
				}
				if max := 1 * time.Second; cooldown > max {
					cooldown = max
				}

				log.Debugf("accept error: %v, retrying in %v", err, cooldown)
				time.Sleep(cooldown)
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		cooldown = 0
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.serve(ctx, conn)
		}()
	}
}

// serve decodes one connection until its stream ends.
func (s *Server) serve(ctx context.Context, c net.Conn) {
	defer func() {
		if err := recover(); err != nil {
			log.Errorf("listener panic: %v\n%s", err, log.StackTrace())
		}

		if err := c.Close(); err != nil {
			log.Debugf("listener: error closing valgrind connection: %v", err)
		}
	}()

	log.Infof("valgrind connected from %s", c.RemoteAddr())

	p := NewParser(s.NewHandler(c.RemoteAddr()))
	p.WaitTimeout = s.WaitTimeout
	p.StallTimeout = s.StallTimeout
	p.SetSource(c)

	if err := p.Start(ctx); err != nil {
		log.Warnf("listener: commentary from %s: %v", c.RemoteAddr(), err)
	}
}
