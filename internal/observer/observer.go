//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

// Package observer forwards decoded valgrind events to a remote collector
// over gRPC. Events travel as FlatBuffers encoded protocol messages; the
// collector replies with the sequence number of each message it handled.
package observer

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/proxy"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"
)

const (
	serviceName        = "vgxml.v1.ReportService"
	recordEventsMethod = "/" + serviceName + "/RecordEvents"

	// Outgoing metadata keys.
	toolKey  = "tool"
	runIDKey = "run_id"

	DefaultQueueSize = 10000
)

// encodedMessage is a protocol.Message that is already encoded.
type encodedMessage []byte

// Implement a custom codec that can just send encoded messages as they are.
// Acknowledgements are protobuf values and go through the embedded codec.
type codec struct {
	encoding.Codec
}

func newCodec() *codec {
	return &codec{encoding.GetCodec("proto")}
}

func (c *codec) Marshal(v interface{}) ([]byte, error) {
	if msg, ok := v.(encodedMessage); ok {
		return []byte(msg), nil
	}

	return c.Codec.Marshal(v)
}

func (c *codec) Unmarshal(data []byte, v interface{}) error {
	if msg, ok := v.(*encodedMessage); ok {
		*msg = append((*msg)[:0], data...)
		return nil
	}

	return c.Codec.Unmarshal(data, v)
}

func (c *codec) Name() string { return c.Codec.Name() }

// reportServer is implemented by Server.
type reportServer interface {
	RecordEvents(grpc.ServerStream) error
}

var streamDesc = grpc.StreamDesc{
	StreamName:    "RecordEvents",
	ServerStreams: true,
	ClientStreams: true,
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*reportServer)(nil),
	Streams: []grpc.StreamDesc{{
		StreamName:    streamDesc.StreamName,
		ServerStreams: true,
		ClientStreams: true,
		Handler: func(srv interface{}, stream grpc.ServerStream) error {
			return srv.(reportServer).RecordEvents(stream)
		},
	}},
	Metadata: "events.fbs",
}

// Config describes the collector a Sender streams to.
type Config struct {
	Host   string
	Port   uint16
	Secure bool

	// Proxy is the URL of a SOCKS5 proxy. A URL without a scheme is
	// assumed to be socks5.
	Proxy string

	// QueueSize bounds the events waiting to be sent. Events arriving
	// while the queue is full are dropped, except for Done.
	QueueSize int

	Tool  string
	RunID string
}

func codeString(err error) string {
	return strings.ToUpper(status.Code(err).String())
}

// parseProxy parses the URL for a proxy similar to url.Parse, but adds
// support for URLs that do not specify a scheme.
func parseProxy(rawurl string) (*url.URL, error) {
	u, err := url.Parse(rawurl)
	if err != nil || !strings.Contains(rawurl, "://") {
		// Try again, assuming SOCKS5 as the scheme. If this fails, return the
		// original error so the error message matches the original URL.
		if socksURL, err := url.Parse("socks5://" + rawurl); err == nil {
			return socksURL, nil
		}
	}
	return u, err
}

// proxyDialer returns a gRPC context dialer tunneling through the proxy
// at rawurl.
func proxyDialer(rawurl string) (func(context.Context, string) (net.Conn, error), error) {
	u, err := parseProxy(rawurl)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "http", "https":
		// gRPC already honors HTTPS_PROXY for these.
		return nil, errors.New("observer: unsupported proxy scheme " + u.Scheme + ", use HTTPS_PROXY")
	}

	d, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, addr string) (net.Conn, error) {
		if cd, ok := d.(proxy.ContextDialer); ok {
			return cd.DialContext(ctx, "tcp", addr)
		}
		return d.Dial("tcp", addr)
	}, nil
}
