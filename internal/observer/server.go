//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package observer

import (
	"context"
	"errors"
	"io"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/newrelic/vgxml/internal/log"
	"github.com/newrelic/vgxml/internal/protocol"
	"github.com/newrelic/vgxml/internal/valgrind"
)

var errIncompleteStream = errors.New("observer: stream ended before done")

// StreamInfo describes an incoming event stream.
type StreamInfo struct {
	Tool  string
	RunID string
	Peer  net.Addr
}

// Server is a collector: it receives the event streams of Senders and
// replays each onto its own handler.
type Server struct {
	// NewHandler returns the handler for a new stream. The handler
	// always receives Done, even if the sender disappears.
	NewHandler func(StreamInfo) valgrind.Handler
}

// Serve accepts streams on l until it fails or ctx is done. Streams in
// progress are allowed to finish.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	gs := grpc.NewServer(grpc.ForceServerCodec(newCodec()))
	gs.RegisterService(&serviceDesc, s)

	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-ctx.Done():
			gs.GracefulStop()
		case <-stopped:
		}
	}()

	err := gs.Serve(l)
	if ctx.Err() != nil || errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

func firstValue(md metadata.MD, key string) string {
	if vs := md.Get(key); len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// RecordEvents handles one stream of encoded messages. Each message is
// acknowledged with its sequence number once it has been dispatched.
func (s *Server) RecordEvents(stream grpc.ServerStream) error {
	var info StreamInfo

	if md, ok := metadata.FromIncomingContext(stream.Context()); ok {
		info.Tool = firstValue(md, toolKey)
		info.RunID = firstValue(md, runIDKey)
	}
	if p, ok := peer.FromContext(stream.Context()); ok {
		info.Peer = p.Addr
	}

	log.Infof("observer: stream from %v (tool=%q run_id=%q)", info.Peer, info.Tool, info.RunID)

	h := &doneHandler{Handler: s.NewHandler(info)}
	fail := func(err error) error {
		if !h.done {
			h.Handler.Done(false, err.Error())
		}
		return err
	}

	for {
		var msg encodedMessage

		err := stream.RecvMsg(&msg)
		if err == io.EOF {
			if !h.done {
				log.Warnf("observer: stream from %v ended before done", info.Peer)
				h.Handler.Done(false, errIncompleteStream.Error())
			}
			return nil
		}
		if err != nil {
			log.Debugf("observer: stream from %v failed: %v", info.Peer, err)
			return fail(err)
		}

		if h.done {
			return status.Error(codes.InvalidArgument, "observer: message after done")
		}

		seq, err := protocol.Dispatch(msg, h)
		if err != nil {
			log.Errorf("observer: invalid message from %v: %v", info.Peer, err)
			fail(err)
			return status.Errorf(codes.InvalidArgument, "observer: %v", err)
		}

		if err := stream.SendMsg(wrapperspb.UInt64(seq)); err != nil {
			return fail(err)
		}
	}
}

// doneHandler records whether Done was dispatched.
type doneHandler struct {
	valgrind.Handler
	done bool
}

func (h *doneHandler) ProcessInfo(info valgrind.ProcessInfo) {
	if ph, ok := h.Handler.(valgrind.ProcessHandler); ok {
		ph.ProcessInfo(info)
	}
}

func (h *doneHandler) Done(success bool, msg string) {
	h.done = true
	h.Handler.Done(success, msg)
}
