//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"

	"github.com/newrelic/vgxml/internal/log"
)

// Every message on a stream is preceded by an 8 byte header: the body
// length followed by the MessageType, both little endian uint32.
const (
	maxMessageSize = 2 << 20 /* 2 MB */
	msgHeaderSize  = 8
)

// MessageType identifies the encoding for a message body.
type MessageType uint32

const (
	MessageTypeRaw MessageType = iota
	MessageTypeBinary
)

var byteOrder = binary.LittleEndian

// RawMessage contains a single message's contents: Bytes does not contain the
// message header.
type RawMessage struct {
	Type  MessageType
	Bytes []byte
}

// ReadMessage reads the next message from r. It returns io.EOF only if r
// ends cleanly between messages.
func ReadMessage(r io.Reader) (RawMessage, error) {
	header := [msgHeaderSize]byte{}
	_, err := io.ReadFull(r, header[:])
	if nil != err {
		if err == io.EOF {
			return RawMessage{}, err
		}
		return RawMessage{}, fmt.Errorf("unable to read header: %v", err)
	}

	msgType := MessageType(byteOrder.Uint32(header[4:8]))
	dataSize := byteOrder.Uint32(header[0:4])
	if dataSize > maxMessageSize {
		// Debugging aid: guess whether the stream is out of sync.
		if msgType != MessageTypeBinary {
			log.Debugf("protocol: invalid message type (%d), stream may be out of sync", msgType)
		}
		return RawMessage{}, fmt.Errorf("maximum message size exceeded, (%d > %d)",
			dataSize, maxMessageSize)
	}

	msg := make([]byte, dataSize)
	_, err = io.ReadFull(r, msg)
	if nil != err {
		return RawMessage{}, fmt.Errorf("unable to read full message: %v", err)
	}

	return RawMessage{
		Type:  msgType,
		Bytes: msg,
	}, nil
}

// A MessageWriter writes data to a stream as messages.
type MessageWriter struct {
	W      io.Writer           // underlying writer
	Type   MessageType         // message encoding
	header [msgHeaderSize]byte // scratch space for message header
}

func (mw *MessageWriter) writeHeader(length uint32) (n int, err error) {
	byteOrder.PutUint32(mw.header[0:4], uint32(length))
	byteOrder.PutUint32(mw.header[4:8], uint32(mw.Type))
	return mw.W.Write(mw.header[:])
}

// Write writes len(p) bytes from p to the underlying data stream as a
// single message. When write fails to write the complete message, the
// underlying data stream should be assumed to be out of sync.
func (mw *MessageWriter) Write(p []byte) (n int, err error) {
	if len(p) > maxMessageSize {
		return 0, fmt.Errorf("maximum message size exceeded, (%d > %d)", len(p), maxMessageSize)
	}

	nw, err := mw.writeHeader(uint32(len(p)))
	if nw > 0 {
		n += nw
	}

	if err == nil && len(p) > 0 {
		nw, err = mw.W.Write(p)
		if nw > 0 {
			n += nw
		}
	}

	return
}

func (mt MessageType) String() string {
	switch mt {
	case MessageTypeRaw:
		return "raw"
	case MessageTypeBinary:
		return "binary"
	default:
		return "MessageType(" + strconv.Itoa(int(mt)) + ")"
	}
}
