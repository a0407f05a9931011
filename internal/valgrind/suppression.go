//
// Copyright 2020 New Relic Corporation. All rights reserved.
// SPDX-License-Identifier: Apache-2.0
//

package valgrind

import (
	"bytes"
	"io"
	"slices"
	"strings"
)

// SuppressionFrame is one frame pattern of a suppression. Exactly one of
// Function and Object is expected to be set; Function wins when both are.
type SuppressionFrame struct {
	Object   string
	Function string
}

// String returns the frame in suppression file syntax, "fun:name" or
// "obj:name".
func (f SuppressionFrame) String() string {
	if f.Function != "" {
		return "fun:" + f.Function
	}
	return "obj:" + f.Object
}

// Suppression is a rule telling Valgrind not to report matching errors.
type Suppression struct {
	Name    string
	Kind    string
	AuxKind string

	// RawText is the suppression exactly as Valgrind printed it. It is
	// what gets written to suppression files.
	RawText string
	Frames  []SuppressionFrame

	// Present is set when the error carried a <suppression> element,
	// even an empty one.
	Present bool
}

// IsNull reports whether s carries no suppression at all, which is the
// case for errors Valgrind did not provide one for. Setting any field
// makes s non-null.
func (s Suppression) IsNull() bool {
	return !s.Present && s.Name == "" && s.Kind == "" && s.AuxKind == "" &&
		s.RawText == "" && len(s.Frames) == 0
}

// Equal reports whether s and other are the same suppression.
func (s Suppression) Equal(other Suppression) bool {
	return s.IsNull() == other.IsNull() &&
		s.Name == other.Name &&
		s.Kind == other.Kind &&
		s.AuxKind == other.AuxKind &&
		s.RawText == other.RawText &&
		slices.Equal(s.Frames, other.Frames)
}

// String synthesizes a suppression file entry from the parsed fields.
// Use RawText to echo a suppression received from Valgrind.
func (s Suppression) String() string {
	const indent = "   "

	var sb strings.Builder
	sb.WriteString("{\n")
	sb.WriteString(indent + s.Name + "\n")
	sb.WriteString(indent + s.Kind + "\n")
	for _, frame := range s.Frames {
		sb.WriteString(indent + frame.String() + "\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}

// WriteSuppressions appends a suppression file entry for every error
// in errs that has one. RawText is written verbatim when present.
func WriteSuppressions(w io.Writer, errs []Error) error {
	var buf bytes.Buffer

	for _, e := range errs {
		supp := e.Suppression
		if supp.IsNull() {
			continue
		}

		text := supp.RawText
		if strings.TrimSpace(text) == "" {
			text = supp.String()
		}

		buf.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			buf.WriteByte('\n')
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}
