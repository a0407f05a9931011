//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

// Package config implements configuration file parsing.
package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"unicode"
)

// A Decoder represents a configuration parser reading a particular
// input stream. The parser assumes that its input is encoded in UTF-8.
type Decoder struct {
	r       *bufio.Reader // input stream
	fields  typeInfo      // maps keywords to their destination
	keyword string        // current keyword
	token   bytes.Buffer  // current token
	line    int           // current line
	kwLine  int           // line of the current keyword
}

// typeInfo maps keywords to their corresponding field. Fields are
// identified by their index sequence, which is stored in the same
// format expected by Type.FieldByIndex.
type typeInfo map[string][]int

// A stateFn is a transition function for configuration parsing.
type stateFn func(*Decoder, reflect.Value) (next stateFn, err error)

// ParseFile parses the configuration in the file specified by name and
// stores the result in the value pointed to by v.
func ParseFile(name string, v interface{}) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("%s: %v", name, err)
	}
	return nil
}

// ParseString parses the configuration in s and stores the result in
// the value pointed to by v.
func ParseString(s string, v interface{}) error {
	return NewDecoder(strings.NewReader(s)).Decode(v)
}

// NewDecoder creates a new configuration parser reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode parses the configuration and stores the result in the
// value pointed to by v. Settings preceding an error have been stored
// when it returns.
//
// Decode implements the following PEG.
//
//	INI     = ((KEYWORD WS* '=' WS* VALUE) / COMMENT / WS)*
//	KEYWORD = ALPHA (ALPHA / NUMERIC / '_' / '.')*
//	VALUE   = QUOTED / DQUOTED / RAW
//	QUOTED  = '\'' .* '\''
//	DQUOTED = '"' .* '"'
//	RAW     = .* EOL
//	COMMENT = ('#' / ';') .* EOL
//
// Struct fields are matched by their config tag, or their name when
// untagged. The keywords of a nested struct are prefixed with the tag of
// the struct field and a dot, e.g. `config:"valgrind"` holds
// valgrind.path. Keywords without a matching field are ignored.
func (d *Decoder) Decode(v interface{}) (err error) {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
		return errors.New("non-struct pointer passed to Decode")
	}
	val = val.Elem()

	d.keyword = ""
	d.token.Reset()
	d.fields = getTypeInfo(val.Type())
	d.line = 1

	for state := lexInitial; state != nil && err == nil; {
		state, err = state(d, val)
	}

	if err == io.EOF {
		return nil
	}
	return err
}

// lexInitial is the entry point for configuration parsing.
func lexInitial(d *Decoder, v reflect.Value) (next stateFn, err error) {
	var ch rune

	for {
		ch, err = d.next()
		if err != nil {
			return nil, err
		}

		if unicode.IsSpace(ch) {
			continue
		}

		switch {
		case ch == '#' || ch == ';':
			return lexComment, nil
		case unicode.IsLetter(ch):
			d.kwLine = d.line
			d.token.WriteRune(ch)
			return lexKeyword, nil
		default:
			return nil, fmt.Errorf(
				"config: syntax error on line %d, expected keyword or comment, got %q",
				d.line, ch)
		}
	}
}

// lexKeyword parses a dotted, alpha-numeric identifier. When this
// function is called, the first character in the keyword has already
// been consumed.
func lexKeyword(d *Decoder, v reflect.Value) (next stateFn, err error) {
	var ch rune

	for {
		ch, err = d.next()
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("config: expected delimiter after keyword %q",
					d.token.String())
			}
			return nil, err
		}

		switch {
		case isAlnum(ch) || ch == '.':
			d.token.WriteRune(ch)
		case unicode.IsSpace(ch):
			d.keyword = d.token.String()
			d.token.Reset()
			return lexDelimiter, nil
		case ch == '=':
			d.keyword = d.token.String()
			d.token.Reset()
			return lexValue, nil
		default:
			return nil, fmt.Errorf(
				"config: invalid character %q following keyword on line %d: %s",
				ch, d.line, d.token.String())
		}
	}
}

func isAlnum(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// lexDelimiter parses the delimiter between keyword and value. Leading
// whitespace is skipped.
func lexDelimiter(d *Decoder, v reflect.Value) (next stateFn, err error) {
	var ch rune

	for {
		ch, err = d.next()
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("config: expected delimiter after keyword %q",
					d.keyword)
			}
			return nil, err
		}

		if unicode.IsSpace(ch) {
			continue
		}

		if ch == '=' {
			return lexValue, nil
		}

		return nil, fmt.Errorf("config: expected delimiter after keyword '%s', got %q",
			d.keyword, ch)
	}
}

// lexValue parses the value following a keyword plus delimiter.
func lexValue(d *Decoder, v reflect.Value) (next stateFn, err error) {
	var ch rune

	// skip leading space, stopping at the first non-space character or EOL
	for {
		ch, err = d.next()
		if err != nil {
			if err != io.EOF {
				return nil, err
			}

			err = d.processKeyword(v)
			if err != nil {
				return nil, err
			}
			return nil, nil
		}

		if ch == '\n' {
			// remainder of the line was blank
			err = d.processKeyword(v)
			if err != nil {
				return nil, err
			}
			return lexInitial, nil
		}

		if !unicode.IsSpace(ch) {
			break
		}
	}

	switch ch {
	case '\'':
		return lexSingleQuoteString, nil
	case '"':
		return lexDoubleQuoteString, nil
	default:
		d.token.WriteRune(ch)
		return lexRawString, nil
	}
}

// readQuoted reads the remainder of a quoted string up to and excluding
// the closing quote.
func (d *Decoder) readQuoted(quote byte) ([]byte, error) {
	value, err := d.r.ReadBytes(quote)
	d.line += bytes.Count(value, []byte{'\n'})

	if err != nil {
		if err != io.EOF {
			return nil, err
		}
		return nil, fmt.Errorf("config: unexpected EOF: %q is missing a closing quote",
			d.keyword)
	}
	return value[:len(value)-1], nil
}

// lexSingleQuoteString parses the remainder of a single quoted string.
// When this function is called, the opening quote has already been
// consumed.
func lexSingleQuoteString(d *Decoder, v reflect.Value) (next stateFn, err error) {
	value, err := d.readQuoted('\'')
	if err != nil {
		return nil, err
	}

	d.token.Write(value)
	if err := d.processKeyword(v); err != nil {
		return nil, err
	}
	return lexInitial, nil
}

var unescapeReplacer = strings.NewReplacer(
	"\\b", "\u0008",
	"\\t", "\u0009",
	"\\n", "\u000A",
	"\\v", "\u000B",
	"\\f", "\u000C",
	"\\r", "\u000D",
	"\\\\", "\u005C",
)

// lexDoubleQuoteString parses the remainder of a double quoted string.
// When this function is called, the opening quote has already been
// consumed. A double quote cannot be escaped.
func lexDoubleQuoteString(d *Decoder, v reflect.Value) (next stateFn, err error) {
	value, err := d.readQuoted('"')
	if err != nil {
		return nil, err
	}

	unescapeReplacer.WriteString(&d.token, string(value))
	if err := d.processKeyword(v); err != nil {
		return nil, err
	}
	return lexInitial, nil
}

func stripTrailingComment(line []byte) []byte {
	if i := bytes.IndexAny(line, "#;"); i != -1 {
		return line[:i]
	}
	return line
}

func trimRight(s []byte) []byte {
	return bytes.TrimRightFunc(s, unicode.IsSpace)
}

// lexRawString parses the remainder of an unquoted value. Unquoted
// values terminate at end of line, and do not include trailing whitespace.
func lexRawString(d *Decoder, v reflect.Value) (next stateFn, err error) {
	value, err := d.r.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return nil, err
	}

	d.token.Write(trimRight(stripTrailingComment(value)))

	// A value starting with a comment is empty.
	if d.token.Len() > 0 && bytes.ContainsAny(d.token.Bytes()[:1], "#;") {
		d.token.Reset()
	}

	if pkErr := d.processKeyword(v); pkErr != nil {
		return nil, pkErr
	}
	d.line++

	if err == io.EOF {
		return nil, nil
	}
	return lexInitial, nil
}

// lexComment parses the remainder of a comment. When this function is called,
// the comment start character has already been read. Comments extend until
// EOL or EOF, whichever comes first. The contents of the comment are ignored.
func lexComment(d *Decoder, v reflect.Value) (next stateFn, err error) {
	var isPrefix bool

	for {
		_, isPrefix, err = d.r.ReadLine()
		if err != nil {
			return nil, err
		}

		if !isPrefix {
			d.line++
			return lexInitial, nil
		}
	}
}

// next reads and returns the next character from the input stream.
func (d *Decoder) next() (r rune, err error) {
	r, _, err = d.r.ReadRune()
	if r == '\n' {
		d.line++
	}
	return r, err
}

// processKeyword stores the value for the current keyword.
func (d *Decoder) processKeyword(v reflect.Value) error {
	defer func() {
		d.keyword = ""
		d.token.Reset()
	}()

	if idx, ok := d.fields[d.keyword]; ok {
		err := unmarshalValue(v.FieldByIndex(idx), d.keyword, d.token.Bytes())
		if err != nil {
			return fmt.Errorf("%v (line %d)", err, d.kwLine)
		}
	}

	// no match found, ignore keyword
	return nil
}

// getTypeInfo returns a mapping of the keywords for all marshalable fields
// reachable from t to their index sequence.
func getTypeInfo(t reflect.Type) typeInfo {
	info := make(typeInfo)
	for i, n := 0, t.NumField(); i < n; i++ {
		field := t.Field(i)
		tag := field.Tag.Get("config")

		// skip unexported and ignored fields
		if field.PkgPath != "" || tag == "-" {
			continue
		}

		keyword := tag
		if keyword == "" {
			keyword = field.Name
		}

		// Structs implementing TextUnmarshaler are values, not sections.
		isSection := field.Type.Kind() == reflect.Struct &&
			!reflect.PointerTo(field.Type).Implements(textUnmarshalerType)

		if isSection {
			for sub, idx := range getTypeInfo(field.Type) {
				info[keyword+"."+sub] = append([]int{i}, idx...)
			}
		} else {
			info[keyword] = field.Index
		}
	}

	return info
}

// FlagParserShim is a flag.Value that unmarshals flag values using
// ParseString()
type FlagParserShim struct {
	v interface{}
}

// NewFlagParserShim creates a FlagParserShim from a pointer.
func NewFlagParserShim(v interface{}) *FlagParserShim {
	return &FlagParserShim{v}
}

// Set parses a configuration setting value.
func (cv *FlagParserShim) Set(s string) error {
	return ParseString(s, cv.v)
}

// String always returns an empty string. It's implemented to satisfy the
// flag.Value interface.
func (cv *FlagParserShim) String() string {
	return ""
}

// Type names the value in pflag usage output.
func (cv *FlagParserShim) Type() string {
	return "key=value"
}
