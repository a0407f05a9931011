//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package valgrind

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/newrelic/vgxml/internal/log"
)

// SupportedProtocolVersion is the only XML protocol version understood.
const SupportedProtocolVersion = 4

// Parser decodes a Valgrind XML stream (--xml=yes) while the tool is
// still writing it. Each top-level element is delivered to the Handler
// as soon as its end tag has been read.
//
// A Parser decodes exactly one stream.
type Parser struct {
	// WaitTimeout bounds each wait for more data on a live source.
	// Zero means DefaultWaitTimeout.
	WaitTimeout time.Duration

	// StallTimeout, when positive, fails the parse once the source has
	// produced no data for that long.
	StallTimeout time.Duration

	handler Handler
	started atomic.Bool

	mu       sync.Mutex // guards src and tool
	src      io.Reader
	tool     Tool
	stop     chan struct{}
	stopOnce sync.Once

	dec    *xml.Decoder
	reader *streamReader
	info   ProcessInfo
}

// NewParser returns a Parser that reports events to h.
func NewParser(h Handler) *Parser {
	return &Parser{
		handler: h,
		stop:    make(chan struct{}),
	}
}

// SetSource attaches the stream to decode. It must be called before
// Start. The parser owns src until Start returns.
func (p *Parser) SetSource(src io.Reader) {
	p.mu.Lock()
	p.src = src
	p.mu.Unlock()
}

// Tool returns the tool announced by the stream so far. It may be called
// while Start is running.
func (p *Parser) Tool() Tool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tool
}

// Stop aborts a running parse by closing the source, if it can be
// closed. Start then returns ErrCancelled. Stop may be called from any
// goroutine, any number of times.
func (p *Parser) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)

		p.mu.Lock()
		src := p.src
		p.mu.Unlock()

		if c, ok := src.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.Debugf("valgrind: closing source: %v", err)
			}
		}
	})
}

// Start decodes the stream until the document element closes, the
// source fails, or the parser is stopped. Cancelling ctx stops the
// parser. Done is reported to the handler exactly once before Start
// returns, and the returned error carries the same message.
func (p *Parser) Start(ctx context.Context) error {
	if !p.started.CompareAndSwap(false, true) {
		return ErrParserReused
	}

	p.mu.Lock()
	src := p.src
	p.mu.Unlock()

	if src == nil {
		p.handler.Done(false, ErrNoSource.Error())
		return ErrNoSource
	}

	if done := ctx.Done(); done != nil {
		finished := make(chan struct{})
		defer close(finished)

		go func() {
			select {
			case <-done:
				p.Stop()
			case <-finished:
			}
		}()
	}

	p.reader = newStreamReader(src, p.WaitTimeout, p.StallTimeout, p.stop)
	defer p.reader.clearDeadline()

	p.dec = xml.NewDecoder(p.reader)

	log.Debugf("valgrind: parsing started")
	if err := p.run(); err != nil {
		log.Errorf("valgrind: parsing failed: %v", err)
		p.handler.Done(false, err.Error())
		return err
	}

	log.Debugf("valgrind: parsing finished")
	p.handler.Done(true, "")
	return nil
}

func (p *Parser) run() error {
	inDocument := false

	for {
		tok, err := p.next()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !inDocument {
				// <valgrindoutput>
				inDocument = true
				continue
			}
			if err := p.parseTopLevel(t); err != nil {
				return err
			}
		case xml.EndElement:
			// Children consume their own end tags, so this closes the
			// document element.
			return nil
		}
	}
}

func (p *Parser) parseTopLevel(start xml.StartElement) error {
	switch start.Name.Local {
	case "protocolversion":
		return p.parseProtocolVersion()
	case "protocoltool":
		return p.parseProtocolTool()
	case "error":
		e, err := p.parseError()
		if err != nil {
			return err
		}
		p.handler.Error(e)
	case "announcethread":
		a, err := p.parseAnnounceThread()
		if err != nil {
			return err
		}
		p.handler.AnnounceThread(a)
	case "status":
		s, err := p.parseStatus()
		if err != nil {
			return err
		}
		p.handler.Status(s)
	case "errorcounts":
		return p.parseErrorCounts()
	case "suppcounts":
		return p.parseSuppressionCounts()
	case "pid", "ppid", "tool", "args":
		return p.parsePreamble(start.Name.Local)
	default:
		return p.skip(start)
	}
	return nil
}

// next returns the next token, translating reader failures into the
// errors reported through Done.
func (p *Parser) next() (xml.Token, error) {
	tok, err := p.dec.Token()
	if err != nil {
		return nil, p.translate(err)
	}
	return tok, nil
}

func (p *Parser) translate(err error) error {
	var syntaxErr *xml.SyntaxError

	switch {
	case errors.Is(err, ErrCancelled), errors.Is(err, ErrStalled):
		return err
	case err == io.EOF, err == io.ErrUnexpectedEOF:
		return errUnexpectedEnd
	case errors.As(err, &syntaxErr) && p.reader.eof && syntaxErr.Msg == "unexpected EOF":
		return errUnexpectedEnd
	}
	if p.reader.stopped() {
		return ErrCancelled
	}
	return err
}

// skip consumes the remainder of an element that is not understood at
// this level, including its whole subtree.
func (p *Parser) skip(start xml.StartElement) error {
	log.Debugf("valgrind: skipping element <%s>", start.Name.Local)
	if err := p.dec.Skip(); err != nil {
		return p.translate(err)
	}
	return nil
}

// text returns the character data of the element whose start tag was
// just read, up to and including its end tag.
func (p *Parser) text() (string, error) {
	var sb strings.Builder

	for {
		tok, err := p.next()
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			if err := p.skip(t); err != nil {
				return "", err
			}
		case xml.EndElement:
			return sb.String(), nil
		}
	}
}

// children calls fn for each child element of the element whose start
// tag was just read. fn must consume the child through its end tag.
func (p *Parser) children(fn func(xml.StartElement) error) error {
	for {
		tok, err := p.next()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := fn(t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (p *Parser) hexText(context string) (uint64, error) {
	s, err := p.text()
	if err != nil {
		return 0, err
	}
	return parseHex(s, context)
}

func (p *Parser) intText(context string) (int64, error) {
	s, err := p.text()
	if err != nil {
		return 0, err
	}
	return parseInt64(s, context)
}

func (p *Parser) uintText(context string) (uint64, error) {
	s, err := p.text()
	if err != nil {
		return 0, err
	}
	return parseUint64(s, context)
}

func (p *Parser) parseProtocolVersion() error {
	s, err := p.text()
	if err != nil {
		return err
	}

	version, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return protocolErrorf("protocolversion", "could not parse protocol version from %q", s)
	}
	if version != SupportedProtocolVersion {
		return protocolErrorf("protocolversion", "protocol version %d not supported (supported version: %d)",
			version, SupportedProtocolVersion)
	}
	return nil
}

func (p *Parser) parseProtocolTool() error {
	s, err := p.text()
	if err != nil {
		return err
	}

	tool, ok := ParseTool(strings.TrimSpace(s))
	if !ok {
		return protocolErrorf("protocoltool", "valgrind tool %q not supported", s)
	}

	p.mu.Lock()
	p.tool = tool
	p.mu.Unlock()
	log.Debugf("valgrind: decoding %s errors", tool)
	return nil
}

// auxMessage is one logical explanation attached to the stack that
// follows it, built from <xauxwhat> or a run of <auxwhat> elements.
type auxMessage struct {
	text             string
	file             string
	dir              string
	line             int64
	helgrindThreadID int64
}

func newAuxMessage() auxMessage {
	return auxMessage{line: -1, helgrindThreadID: -1}
}

func (p *Parser) parseError() (Error, error) {
	e := NewError()

	var (
		frames   [][]Frame
		auxs     []auxMessage
		afterAux bool // the previous child was a plain <auxwhat>
	)

	current := newAuxMessage()
	flushAux := func() {
		if current.text != "" {
			auxs = append(auxs, current)
		}
		current = newAuxMessage()
	}

	err := p.children(func(start xml.StartElement) error {
		var err error

		prevAux := afterAux
		afterAux = false

		switch start.Name.Local {
		case "unique":
			var v uint64
			v, err = p.hexText("error/unique")
			e.Unique = int64(v)
		case "tid":
			e.TID, err = p.intText("error/tid")
		case "kind":
			var s string
			if s, err = p.text(); err == nil {
				e.Kind, err = ParseErrorKind(p.tool, strings.TrimSpace(s))
			}
		case "what":
			e.What, err = p.text()
		case "xwhat":
			err = p.parseXWhat(&e)
		case "auxwhat":
			var s string
			if s, err = p.text(); err != nil {
				return err
			}
			if prevAux {
				if current.text != "" {
					current.text += " "
				}
				current.text += s
			} else {
				flushAux()
				current.text = s
			}
			afterAux = true
		case "xauxwhat":
			flushAux()
			current, err = p.parseXAuxWhat()
		case "stack":
			var f []Frame
			f, err = p.parseStack()
			frames = append(frames, f)
		case "suppression":
			e.Suppression, err = p.parseSuppression()
		default:
			err = p.skip(start)
		}
		return err
	})
	if err != nil {
		return Error{}, err
	}

	flushAux()
	e.Stacks = pairStacks(auxs, frames)
	return e, nil
}

// pairStacks binds each aux message to the stack following it. Missing
// aux messages are assumed at the front, since the first stack usually
// has none; missing stacks are assumed at the back.
func pairStacks(auxs []auxMessage, frames [][]Frame) []Stack {
	for len(auxs) < len(frames) {
		auxs = append([]auxMessage{newAuxMessage()}, auxs...)
	}
	for len(frames) < len(auxs) {
		frames = append(frames, nil)
	}

	if len(auxs) == 0 {
		return nil
	}

	stacks := make([]Stack, len(auxs))
	for i, aux := range auxs {
		stacks[i] = Stack{
			AuxWhat:          aux.text,
			File:             aux.file,
			Directory:        aux.dir,
			Line:             aux.line,
			HelgrindThreadID: aux.helgrindThreadID,
			Frames:           frames[i],
		}
	}
	return stacks
}

func (p *Parser) parseXWhat(e *Error) error {
	return p.children(func(start xml.StartElement) error {
		var err error

		switch start.Name.Local {
		case "text":
			e.What, err = p.text()
		case "leakedbytes":
			e.LeakedBytes, err = p.uintText("error/xwhat/leakedbytes")
		case "leakedblocks":
			e.LeakedBlocks, err = p.intText("error/xwhat/leakedblocks")
		case "hthreadid":
			e.HelgrindThreadID, err = p.intText("error/xwhat/hthreadid")
		default:
			err = p.skip(start)
		}
		return err
	})
}

func (p *Parser) parseXAuxWhat() (auxMessage, error) {
	aux := newAuxMessage()

	err := p.children(func(start xml.StartElement) error {
		var err error

		switch start.Name.Local {
		case "text":
			aux.text, err = p.text()
		case "file":
			aux.file, err = p.text()
		case "dir":
			aux.dir, err = p.text()
		case "line":
			aux.line, err = p.intText("error/xauxwhat/line")
		case "hthreadid":
			aux.helgrindThreadID, err = p.intText("error/xauxwhat/hthreadid")
		default:
			err = p.skip(start)
		}
		return err
	})
	return aux, err
}

func (p *Parser) parseStack() ([]Frame, error) {
	var frames []Frame

	err := p.children(func(start xml.StartElement) error {
		if start.Name.Local != "frame" {
			return p.skip(start)
		}

		f, err := p.parseFrame()
		if err != nil {
			return err
		}
		frames = append(frames, f)
		return nil
	})
	return frames, err
}

func (p *Parser) parseFrame() (Frame, error) {
	f := NewFrame()

	err := p.children(func(start xml.StartElement) error {
		var err error

		switch start.Name.Local {
		case "ip":
			f.InstructionPointer, err = p.hexText("frame/ip")
		case "obj":
			f.Object, err = p.text()
		case "fn":
			f.FunctionName, err = p.text()
		case "dir":
			f.Directory, err = p.text()
		case "file":
			f.FileName, err = p.text()
		case "line":
			var line int64
			line, err = p.intText("frame/line")
			f.Line = int(line)
		default:
			err = p.skip(start)
		}
		return err
	})
	return f, err
}

func (p *Parser) parseSuppression() (Suppression, error) {
	s := Suppression{Present: true}

	err := p.children(func(start xml.StartElement) error {
		var err error

		switch start.Name.Local {
		case "sname":
			s.Name, err = p.text()
		case "skind":
			s.Kind, err = p.text()
		case "skaux":
			s.AuxKind, err = p.text()
		case "rawtext":
			s.RawText, err = p.text()
		case "sframe":
			var f SuppressionFrame
			f, err = p.parseSuppressionFrame()
			s.Frames = append(s.Frames, f)
		default:
			err = p.skip(start)
		}
		return err
	})
	return s, err
}

func (p *Parser) parseSuppressionFrame() (SuppressionFrame, error) {
	var f SuppressionFrame

	err := p.children(func(start xml.StartElement) error {
		var err error

		switch start.Name.Local {
		case "obj":
			f.Object, err = p.text()
		case "fun":
			f.Function, err = p.text()
		default:
			err = p.skip(start)
		}
		return err
	})
	return f, err
}

func (p *Parser) parseAnnounceThread() (AnnounceThread, error) {
	a := AnnounceThread{HelgrindThreadID: -1}

	err := p.children(func(start xml.StartElement) error {
		var err error

		switch start.Name.Local {
		case "hthreadid":
			a.HelgrindThreadID, err = p.intText("announcethread/hthreadid")
		case "stack":
			a.Frames, err = p.parseStack()
		default:
			err = p.skip(start)
		}
		return err
	})
	return a, err
}

func (p *Parser) parseStatus() (Status, error) {
	var s Status

	err := p.children(func(start xml.StartElement) error {
		switch start.Name.Local {
		case "state":
			text, err := p.text()
			if err != nil {
				return err
			}
			switch strings.TrimSpace(text) {
			case "RUNNING":
				s.State = Running
			case "FINISHED":
				s.State = Finished
			default:
				return protocolErrorf("status/state", "unknown state %q", text)
			}
			return nil
		case "time":
			text, err := p.text()
			s.Time = text
			return err
		default:
			return p.skip(start)
		}
	})
	return s, err
}

func (p *Parser) parseErrorCounts() error {
	return p.children(func(start xml.StartElement) error {
		if start.Name.Local != "pair" {
			return p.skip(start)
		}

		var unique, count int64
		err := p.children(func(start xml.StartElement) error {
			var err error

			switch start.Name.Local {
			case "unique":
				var v uint64
				v, err = p.hexText("errorcounts/pair/unique")
				unique = int64(v)
			case "count":
				count, err = p.intText("errorcounts/pair/count")
			default:
				err = p.skip(start)
			}
			return err
		})
		if err != nil {
			return err
		}

		p.handler.ErrorCount(unique, count)
		return nil
	})
}

func (p *Parser) parseSuppressionCounts() error {
	return p.children(func(start xml.StartElement) error {
		if start.Name.Local != "pair" {
			return p.skip(start)
		}

		var (
			name  string
			count int64
		)
		err := p.children(func(start xml.StartElement) error {
			var err error

			switch start.Name.Local {
			case "name":
				name, err = p.text()
			case "count":
				count, err = p.intText("suppcounts/pair/count")
			default:
				err = p.skip(start)
			}
			return err
		})
		if err != nil {
			return err
		}

		p.handler.SuppressionCount(name, count)
		return nil
	})
}

// parsePreamble decodes the process description elements that precede
// the first error and reports the accumulated ProcessInfo.
func (p *Parser) parsePreamble(name string) error {
	var err error

	switch name {
	case "pid":
		p.info.Pid, err = p.intText("pid")
	case "ppid":
		p.info.Ppid, err = p.intText("ppid")
	case "tool":
		var s string
		s, err = p.text()
		p.info.Tool = strings.TrimSpace(s)
	case "args":
		err = p.parseArgs()
	}
	if err != nil {
		return err
	}

	if ph, ok := p.handler.(ProcessHandler); ok {
		info := p.info
		info.ValgrindArgs = append([]string(nil), p.info.ValgrindArgs...)
		info.Args = append([]string(nil), p.info.Args...)
		ph.ProcessInfo(info)
	}
	return nil
}

func (p *Parser) parseArgs() error {
	return p.children(func(start xml.StartElement) error {
		var exe *string
		var args *[]string

		switch start.Name.Local {
		case "vargv":
			exe, args = &p.info.ValgrindExe, &p.info.ValgrindArgs
		case "argv":
			exe, args = &p.info.Exe, &p.info.Args
		default:
			return p.skip(start)
		}

		*args = nil
		return p.children(func(start xml.StartElement) error {
			switch start.Name.Local {
			case "exe":
				s, err := p.text()
				*exe = s
				return err
			case "arg":
				s, err := p.text()
				*args = append(*args, s)
				return err
			default:
				return p.skip(start)
			}
		})
	})
}

func parseHex(s, context string) (uint64, error) {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X") {
		t = t[2:]
	}

	v, err := strconv.ParseUint(t, 16, 64)
	if err != nil {
		return 0, protocolErrorf(context, "could not parse hex number from %q", s)
	}
	return v, nil
}

func parseInt64(s, context string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, protocolErrorf(context, "could not parse integer from %q", s)
	}
	return v, nil
}

func parseUint64(s, context string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, protocolErrorf(context, "could not parse unsigned integer from %q", s)
	}
	return v, nil
}
