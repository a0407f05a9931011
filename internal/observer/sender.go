//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package observer

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/newrelic/vgxml/internal/log"
	"github.com/newrelic/vgxml/internal/protocol"
)

var (
	connectParams = grpc.ConnectParams{
		Backoff: backoff.Config{
			BaseDelay:  15 * time.Second,
			Multiplier: 2,
			MaxDelay:   300 * time.Second,
		},
	}

	// reconnectDelay is the pause before a failed stream is reopened.
	reconnectDelay = 1 * time.Second

	errSenderClosed = errors.New("observer: sender closed")
	errServerClosed = errors.New("observer: collector closed the stream")
)

// A Sender is a valgrind.ProcessHandler that streams every event to a
// collector. Events are queued and sent by a background worker, so a slow
// collector never stalls the parser.
type Sender struct {
	*protocol.Encoder

	cfg  Config
	conn *grpc.ClientConn

	queue   chan encodedMessage
	pending encodedMessage // message to resend after a reconnect

	mu      sync.Mutex
	closed  bool  // queue is closed
	final   bool  // the next message is Done
	sending bool  // Done is waiting for room, the queue stays open
	err     error // why the worker stopped, set before stopped closes

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}

	acked   atomic.Uint64
	dropped atomic.Uint64
}

func newSender(cfg Config) *Sender {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}

	s := &Sender{
		cfg:     cfg,
		queue:   make(chan encodedMessage, cfg.QueueSize),
		stopped: make(chan struct{}),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.Encoder = protocol.NewEncoder(s.enqueue)
	return s
}

// Dial connects to the collector described by cfg and starts streaming.
// Like grpc.Dial it does not wait for the connection to be established.
func Dial(cfg Config) (*Sender, error) {
	var cred grpc.DialOption

	if cfg.Secure {
		cred = grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{}))
	} else {
		cred = grpc.WithTransportCredentials(insecure.NewCredentials())
	}

	opts := []grpc.DialOption{cred, grpc.WithConnectParams(connectParams)}

	if cfg.Proxy != "" {
		dialer, err := proxyDialer(cfg.Proxy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.WithContextDialer(dialer))
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port)))
	conn, err := grpc.Dial(addr, opts...)
	if nil != err {
		log.Errorf("unable to dial to grpc endpoint %s: %v", addr, err.Error())
		return nil, err
	}

	s := newSender(cfg)
	s.conn = conn
	go s.run()

	return s, nil
}

// Done queues the final message and closes the queue. Unlike other
// events it waits for room in the queue.
func (s *Sender) Done(success bool, msg string) {
	s.mu.Lock()
	s.final = true
	s.mu.Unlock()

	s.Encoder.Done(success, msg)
	s.closeQueue()
}

// Acked returns the sequence number of the last message the collector
// acknowledged.
func (s *Sender) Acked() uint64 { return s.acked.Load() }

// Dropped returns the number of messages that were never sent.
func (s *Sender) Dropped() uint64 { return s.dropped.Load() }

// Close waits until the queued messages have been sent or ctx is done,
// then closes the connection. It returns the error that stopped the
// worker early, if any.
func (s *Sender) Close(ctx context.Context) error {
	s.closeQueue()

	select {
	case <-s.stopped:
	case <-ctx.Done():
		log.Warnf("observer: abandoning %d queued messages: %v", len(s.queue), ctx.Err())
		s.cancel()
		<-s.stopped
	}
	s.cancel()
	s.discard()

	if err := s.conn.Close(); err != nil {
		log.Debugf("observer: error closing connection: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Sender) closeQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed && !s.sending {
		s.closed = true
		close(s.queue)
	}
}

// enqueue is the Encoder's emit function.
func (s *Sender) enqueue(seq uint64, msg []byte) error {
	s.mu.Lock()

	if s.closed || s.stopping() {
		s.mu.Unlock()
		s.dropped.Add(1)
		return errSenderClosed
	}

	if s.final {
		s.sending = true
		s.mu.Unlock()
		return s.enqueueFinal(msg)
	}
	defer s.mu.Unlock()

	select {
	case s.queue <- msg:
	default:
		s.dropped.Add(1)
		log.Debugf("observer: queue full, dropping message %d", seq)
	}
	return nil
}

// enqueueFinal waits for room for the Done message without holding mu, so
// the worker can still record why it stopped. The queue cannot be closed
// meanwhile since sending is set.
func (s *Sender) enqueueFinal(msg []byte) error {
	defer func() {
		s.mu.Lock()
		s.sending = false
		s.mu.Unlock()
	}()

	select {
	case s.queue <- msg:
		return nil
	case <-s.stopped:
		s.dropped.Add(1)
		return errSenderClosed
	}
}

func (s *Sender) stopping() bool {
	select {
	case <-s.stopped:
		return true
	default:
		return false
	}
}

// run streams the queue until it is drained or a permanent error occurs.
func (s *Sender) run() {
	defer close(s.stopped)

	for {
		err := s.stream(s.ctx)
		if err == nil {
			log.Debugf("observer: all messages sent, %d acknowledged", s.Acked())
			return
		}

		if s.ctx.Err() == nil {
			switch status.Code(err) {
			case codes.Unimplemented, codes.InvalidArgument:
				log.Errorf("observer: collector rejected the stream (%s): %v", codeString(err), err)
			default:
				log.Warnf("observer: stream failed (%s): %v, reconnecting in %v",
					codeString(err), err, reconnectDelay)

				select {
				case <-time.After(reconnectDelay):
					continue
				case <-s.ctx.Done():
				}
			}
		}

		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		s.discard()
		return
	}
}

// discard counts the messages that will never be sent.
func (s *Sender) discard() {
	if s.pending != nil {
		s.pending = nil
		s.dropped.Add(1)
	}

	for {
		select {
		case _, ok := <-s.queue:
			if !ok {
				return
			}
			s.dropped.Add(1)
		default:
			return
		}
	}
}

// stream sends queued messages on a new stream. It returns nil once the
// queue is closed and the collector has acknowledged everything.
func (s *Sender) stream(ctx context.Context) error {
	ctx, cancel := context.WithCancel(metadata.AppendToOutgoingContext(ctx,
		toolKey, s.cfg.Tool,
		runIDKey, s.cfg.RunID))
	defer cancel()

	stream, err := s.conn.NewStream(ctx, &streamDesc, recordEventsMethod,
		grpc.ForceCodec(newCodec()))
	if err != nil {
		return err
	}

	log.Debugf("connected to grpc endpoint %s", s.cfg.Host)

	recvErr := make(chan error, 1)
	go func() {
		recvErr <- s.recv(stream)
	}()

	for {
		msg := s.pending
		if msg == nil {
			var ok bool

			select {
			case msg, ok = <-s.queue:
				if !ok {
					if err := stream.CloseSend(); err != nil {
						return err
					}
					return <-recvErr
				}
			case err := <-recvErr:
				if err == nil {
					err = errServerClosed
				}
				return err
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := stream.SendMsg(msg); err != nil {
			s.pending = msg
			if err == io.EOF {
				// The actual status is returned by RecvMsg.
				if err = <-recvErr; err == nil {
					err = errServerClosed
				}
			}
			return err
		}
		s.pending = nil
	}
}

func (s *Sender) recv(stream grpc.ClientStream) error {
	for {
		var seen wrapperspb.UInt64Value

		err := stream.RecvMsg(&seen)
		switch err {
		case nil:
			s.acked.Store(seen.GetValue())
		case io.EOF:
			log.Debugf("received EOF from grpc endpoint")
			return nil
		default:
			return err
		}
	}
}
