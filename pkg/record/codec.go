// SPDX-License-Identifier: Apache-2.0
package record

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrMalformedRecord marks a decrypted line that carries no key/value separator
var ErrMalformedRecord = errors.New("malformed record")

// separators are tried in order; the first one present in a line wins.
// Only the colon scheme is accepted.
var separators = []string{": ", ":"}

// MalformedLineError describes a skipped line. Line is 1-based.
type MalformedLineError struct {
	Line int
	Text string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("line %d has no key/value separator: %q", e.Line, e.Text)
}

func (e *MalformedLineError) Unwrap() error {
	return ErrMalformedRecord
}

// Encode renders a record as plaintext: the password on the first line,
// then one "key: value" line per remaining field
func Encode(r *Record) string {
	var b strings.Builder
	b.WriteString(r.Password())
	b.WriteString("\n")
	for _, key := range r.keys {
		if key == PasswordField {
			continue
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(r.values[key])
		b.WriteString("\n")
	}
	return b.String()
}

// Decode parses plaintext produced by Encode. The first line is always the
// password, verbatim. Lines without a separator are skipped and reported.
func Decode(text string) (*Record, []*MalformedLineError) {
	lines := strings.Split(text, "\n")
	r := New()
	r.Set(PasswordField, strings.TrimSuffix(lines[0], "\r"))

	var malformed []*MalformedLineError
	for i, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		key, value, ok := splitField(line)
		if !ok {
			lineErr := &MalformedLineError{Line: i + 2, Text: line}
			log.Warnf("Skipping malformed record line %d", lineErr.Line)
			malformed = append(malformed, lineErr)
			continue
		}
		r.Set(key, value)
	}

	return r, malformed
}

// splitField splits on the first separator occurrence; the rest of the line is the value
func splitField(line string) (string, string, bool) {
	for _, sep := range separators {
		if key, value, found := strings.Cut(line, sep); found {
			return key, value, true
		}
	}
	return "", "", false
}
